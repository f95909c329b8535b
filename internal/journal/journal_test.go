package journal_test

import (
	"bytes"
	"testing"

	"parley/internal/gff"
	"parley/internal/journal"
)

func TestJournalRoundTrip(t *testing.T) {
	j := journal.New()
	gate := j.AddCategory("q_gate")
	gate.Name = gff.LocString{StrRef: gff.NoStrRef, Substrings: []gff.Substring{{ID: 0, Text: "The Locked Gate"}}}
	gate.Priority = 2
	gate.XP = 150
	stage := gate.AddEntry(10)
	stage.Text = gff.LocString{StrRef: gff.NoStrRef, Substrings: []gff.Substring{{ID: 0, Text: "Find the gate key."}}}
	done := gate.AddEntry(20)
	done.End = true
	done.Text = gff.LocString{StrRef: gff.NoStrRef, Substrings: []gff.Substring{{ID: 0, Text: "The gate stands open."}}}

	data, err := journal.Encode(j)
	if err != nil {
		t.Fatalf("Encode returned error: %v", err)
	}
	decoded, err := journal.Decode(data)
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	if len(decoded.Categories) != 1 {
		t.Fatalf("category count = %d, want 1", len(decoded.Categories))
	}
	cat := decoded.Categories[0]
	if cat.Tag != "q_gate" || cat.Priority != 2 || cat.XP != 150 {
		t.Fatalf("category scalars lost: %+v", cat)
	}
	if cat.Name.First() != "The Locked Gate" {
		t.Fatalf("category name = %q", cat.Name.First())
	}
	if len(cat.Entries) != 2 {
		t.Fatalf("entry count = %d, want 2", len(cat.Entries))
	}
	if cat.Entries[0].ID != 10 || cat.Entries[0].End {
		t.Fatalf("first entry = %+v", cat.Entries[0])
	}
	if cat.Entries[1].ID != 20 || !cat.Entries[1].End {
		t.Fatalf("second entry = %+v", cat.Entries[1])
	}

	second, err := journal.Encode(decoded)
	if err != nil {
		t.Fatalf("re-Encode returned error: %v", err)
	}
	if !bytes.Equal(data, second) {
		t.Fatal("load/save cycle changed the byte layout")
	}
}

func TestJournalPreservesUnknownFields(t *testing.T) {
	j := journal.New()
	j.AddCategory("q_side")
	data, err := journal.Encode(j)
	if err != nil {
		t.Fatalf("Encode returned error: %v", err)
	}

	f, err := gff.Decode(data)
	if err != nil {
		t.Fatalf("gff.Decode returned error: %v", err)
	}
	f.Root.List("Categories")[0].Set("PictureRes", gff.TypeResRef, "jrl_art_07")
	withExtra, err := gff.Encode(f)
	if err != nil {
		t.Fatalf("gff.Encode returned error: %v", err)
	}

	decoded, err := journal.Decode(withExtra)
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	resaved, err := journal.Encode(decoded)
	if err != nil {
		t.Fatalf("re-Encode returned error: %v", err)
	}
	if !bytes.Equal(withExtra, resaved) {
		t.Fatal("unrecognized category field did not survive byte-for-byte")
	}
}

func TestJournalRejectsWrongFamily(t *testing.T) {
	data, err := gff.Encode(&gff.File{Type: "DLG ", Root: gff.NewStruct(gff.RootStructType)})
	if err != nil {
		t.Fatalf("Encode returned error: %v", err)
	}
	if _, err := journal.Decode(data); err == nil {
		t.Fatal("conversation container decoded as a journal")
	}
}
