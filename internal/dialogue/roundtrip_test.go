package dialogue_test

import (
	"bytes"
	"testing"

	"parley/internal/dialogue"
	"parley/internal/gff"
)

func buildConversation(t *testing.T) *dialogue.Conversation {
	t.Helper()
	c := dialogue.New()
	c.DelayEntry = 2
	c.EndScript = "end_normal"
	c.AbortScript = "end_abort"

	greet := c.AddNode(dialogue.KindEntry)
	greet.Text = line("Halt. State your business.")
	greet.Speaker = "guard_captain"
	greet.Script = "act_alert"
	greet.Params = []dialogue.Param{{Key: "alert_level", Value: "2"}}

	answer := c.AddNode(dialogue.KindReply)
	answer.Text = line("Just passing through.")
	questEntry := uint32(10)
	answer.Quest = "q_gate"
	answer.QuestEntry = &questEntry

	followup := c.AddNode(dialogue.KindEntry)
	followup.Text = line("Move along, then.")
	followup.Sound = "vo_guard_03"

	if _, err := c.AddStart(greet.ID); err != nil {
		t.Fatalf("AddStart: %v", err)
	}
	start := c.Starts[0]
	start.Active = "chk_gate_open"
	if _, err := c.AddPointer(greet, answer.ID); err != nil {
		t.Fatalf("AddPointer: %v", err)
	}
	p, err := c.AddPointer(answer, followup.ID)
	if err != nil {
		t.Fatalf("AddPointer: %v", err)
	}
	p.Active = "chk_reputation"
	p.Params = []dialogue.Param{{Key: "faction", Value: "militia"}}
	return c
}

func TestConversationRoundTrip(t *testing.T) {
	c := buildConversation(t)
	data, err := dialogue.Encode(c)
	if err != nil {
		t.Fatalf("Encode returned error: %v", err)
	}

	decoded, err := dialogue.Decode(data)
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	if decoded.Len() != 3 {
		t.Fatalf("node count = %d, want 3", decoded.Len())
	}
	if decoded.DelayEntry != 2 || decoded.EndScript != "end_normal" || decoded.AbortScript != "end_abort" {
		t.Fatalf("conversation scalars lost: %+v", decoded)
	}
	if decoded.NumWords != c.NumWords || decoded.NumWords == 0 {
		t.Fatalf("NumWords = %d, want %d", decoded.NumWords, c.NumWords)
	}

	nodes := decoded.Nodes()
	greet := nodes[0]
	if greet.Kind != dialogue.KindEntry || greet.Text.First() != "Halt. State your business." {
		t.Fatalf("first node = %+v", greet)
	}
	if greet.Speaker != "guard_captain" || greet.Script != "act_alert" {
		t.Fatalf("entry metadata lost: %+v", greet)
	}
	if len(greet.Params) != 1 || greet.Params[0] != (dialogue.Param{Key: "alert_level", Value: "2"}) {
		t.Fatalf("action params lost: %+v", greet.Params)
	}

	var answer *dialogue.Node
	for _, n := range nodes {
		if n.Kind == dialogue.KindReply {
			answer = n
		}
	}
	if answer == nil || answer.Quest != "q_gate" || answer.QuestEntry == nil || *answer.QuestEntry != 10 {
		t.Fatalf("reply quest data lost: %+v", answer)
	}
	if len(answer.Pointers) != 1 || answer.Pointers[0].Active != "chk_reputation" {
		t.Fatalf("guarded pointer lost: %+v", answer.Pointers)
	}
	if len(decoded.Starts) != 1 || decoded.Starts[0].Active != "chk_gate_open" {
		t.Fatalf("starting pointer lost: %+v", decoded.Starts)
	}

	// A second encode of the decoded conversation is byte-identical: node
	// table order follows the same discovery order both ways.
	second, err := dialogue.Encode(decoded)
	if err != nil {
		t.Fatalf("re-Encode returned error: %v", err)
	}
	if !bytes.Equal(data, second) {
		t.Fatal("load/save cycle changed the byte layout")
	}
}

func TestUnknownFieldsSurviveRoundTrip(t *testing.T) {
	data, err := dialogue.Encode(buildConversation(t))
	if err != nil {
		t.Fatalf("Encode returned error: %v", err)
	}

	// Plant a field no overlay knows about on the first entry, the way an
	// engine-version extension would.
	f, err := gff.Decode(data)
	if err != nil {
		t.Fatalf("gff.Decode returned error: %v", err)
	}
	f.Root.List("EntryList")[0].Set("XP_Bonus", gff.TypeDWord, uint32(42))
	withExtra, err := gff.Encode(f)
	if err != nil {
		t.Fatalf("gff.Encode returned error: %v", err)
	}

	c, err := dialogue.Decode(withExtra)
	if err != nil {
		t.Fatalf("dialogue.Decode returned error: %v", err)
	}
	resaved, err := dialogue.Encode(c)
	if err != nil {
		t.Fatalf("dialogue.Encode returned error: %v", err)
	}
	if !bytes.Equal(withExtra, resaved) {
		t.Fatal("unrecognized field did not survive a load/save cycle byte-for-byte")
	}

	check, err := gff.Decode(resaved)
	if err != nil {
		t.Fatalf("gff.Decode returned error: %v", err)
	}
	if got := check.Root.List("EntryList")[0].DWord("XP_Bonus"); got != 42 {
		t.Fatalf("XP_Bonus = %d, want 42", got)
	}
}

func TestSharedReplySerializesOneNode(t *testing.T) {
	c, _, _, _, _, _ := sharedReply(t)
	data, err := dialogue.Encode(c)
	if err != nil {
		t.Fatalf("Encode returned error: %v", err)
	}

	f, err := gff.Decode(data)
	if err != nil {
		t.Fatalf("gff.Decode returned error: %v", err)
	}
	if got := len(f.Root.List("ReplyList")); got != 1 {
		t.Fatalf("reply table has %d rows, want 1 shared reply", got)
	}

	decoded, err := dialogue.Decode(data)
	if err != nil {
		t.Fatalf("dialogue.Decode returned error: %v", err)
	}
	var originals, links int
	for _, n := range decoded.Nodes() {
		for _, p := range n.Pointers {
			if p.IsLink {
				links++
			} else {
				originals++
			}
		}
	}
	if originals != 1 || links != 1 {
		t.Fatalf("pointer classification = %d originals, %d links, want 1 and 1", originals, links)
	}
}

func TestDecodeRejectsWrongFamilyAndBadIndices(t *testing.T) {
	root := gff.NewStruct(gff.RootStructType)
	journal, err := gff.Encode(&gff.File{Type: "JRL ", Root: root})
	if err != nil {
		t.Fatalf("Encode returned error: %v", err)
	}
	if _, err := dialogue.Decode(journal); err == nil {
		t.Fatal("journal container decoded as a conversation")
	}

	// A starting pointer whose index is outside the entry table.
	start := gff.NewStruct(0)
	start.Set("Active", gff.TypeResRef, "")
	start.Set("Index", gff.TypeDWord, uint32(7))
	dlgRoot := gff.NewStruct(gff.RootStructType)
	dlgRoot.Set("EntryList", gff.TypeList, []*gff.Struct(nil))
	dlgRoot.Set("ReplyList", gff.TypeList, []*gff.Struct(nil))
	dlgRoot.Set("StartingList", gff.TypeList, []*gff.Struct{start})
	data, err := gff.Encode(&gff.File{Type: dialogue.FileType, Root: dlgRoot})
	if err != nil {
		t.Fatalf("Encode returned error: %v", err)
	}
	if _, err := dialogue.Decode(data); err == nil {
		t.Fatal("out-of-range starting index accepted")
	}
}
