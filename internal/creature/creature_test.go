package creature_test

import (
	"bytes"
	"testing"

	"parley/internal/creature"
	"parley/internal/gff"
)

func TestCreatureRoundTrip(t *testing.T) {
	c := creature.New()
	c.TemplateResRef = "npc_guard"
	c.Tag = "guard_captain"
	c.FirstName = gff.LocString{StrRef: gff.NoStrRef, Substrings: []gff.Substring{{ID: 0, Text: "Aldric"}}}
	c.Race = 6
	c.Conversation = "dlg_guard"
	c.Inventory = append(c.Inventory, &creature.Item{ResRef: "it_gatekey", Dropable: true})
	c.Equipped = append(c.Equipped, &creature.EquippedItem{Slot: 0x00010000, ResRef: "wp_longsword"})

	data, err := creature.Encode(c)
	if err != nil {
		t.Fatalf("Encode returned error: %v", err)
	}
	decoded, err := creature.Decode(data)
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	if decoded.TemplateResRef != "npc_guard" || decoded.Tag != "guard_captain" || decoded.Race != 6 {
		t.Fatalf("identity lost: %+v", decoded)
	}
	if decoded.FirstName.First() != "Aldric" {
		t.Fatalf("FirstName = %q", decoded.FirstName.First())
	}
	if decoded.Conversation != "dlg_guard" {
		t.Fatalf("Conversation = %q", decoded.Conversation)
	}
	if len(decoded.Inventory) != 1 || decoded.Inventory[0].ResRef != "it_gatekey" || !decoded.Inventory[0].Dropable {
		t.Fatalf("inventory lost: %+v", decoded.Inventory)
	}
	if len(decoded.Equipped) != 1 || decoded.Equipped[0].Slot != 0x00010000 || decoded.Equipped[0].ResRef != "wp_longsword" {
		t.Fatalf("equipped slot not preserved through type reassignment: %+v", decoded.Equipped)
	}

	second, err := creature.Encode(decoded)
	if err != nil {
		t.Fatalf("re-Encode returned error: %v", err)
	}
	if !bytes.Equal(data, second) {
		t.Fatal("load/save cycle changed the byte layout")
	}
}

func TestCreaturePreservesUnknownFields(t *testing.T) {
	c := creature.New()
	c.TemplateResRef = "npc_rat"
	data, err := creature.Encode(c)
	if err != nil {
		t.Fatalf("Encode returned error: %v", err)
	}

	f, err := gff.Decode(data)
	if err != nil {
		t.Fatalf("gff.Decode returned error: %v", err)
	}
	f.Root.Set("ChallengeRating", gff.TypeFloat, float32(0.25))
	withExtra, err := gff.Encode(f)
	if err != nil {
		t.Fatalf("gff.Encode returned error: %v", err)
	}

	decoded, err := creature.Decode(withExtra)
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	resaved, err := creature.Encode(decoded)
	if err != nil {
		t.Fatalf("re-Encode returned error: %v", err)
	}
	if !bytes.Equal(withExtra, resaved) {
		t.Fatal("unrecognized blueprint field did not survive byte-for-byte")
	}
}
