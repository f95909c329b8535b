package dialogue_test

import (
	"testing"

	"parley/internal/dialogue"
	"parley/internal/gff"
)

func line(text string) gff.LocString {
	return gff.LocString{
		StrRef:     gff.NoStrRef,
		Substrings: []gff.Substring{{ID: 0, Text: text}},
	}
}

// sharedReply builds two starting entries that both offer the same reply.
func sharedReply(t *testing.T) (c *dialogue.Conversation, a, b, r *dialogue.Node, aToR, bToR *dialogue.Pointer) {
	t.Helper()
	c = dialogue.New()
	a = c.AddNode(dialogue.KindEntry)
	a.Text = line("Greetings.")
	b = c.AddNode(dialogue.KindEntry)
	b.Text = line("You again.")
	r = c.AddNode(dialogue.KindReply)
	r.Text = line("Farewell.")

	if _, err := c.AddStart(a.ID); err != nil {
		t.Fatalf("AddStart(a): %v", err)
	}
	if _, err := c.AddStart(b.ID); err != nil {
		t.Fatalf("AddStart(b): %v", err)
	}
	var err error
	aToR, err = c.AddPointer(a, r.ID)
	if err != nil {
		t.Fatalf("AddPointer(a, r): %v", err)
	}
	bToR, err = c.AddPointer(b, r.ID)
	if err != nil {
		t.Fatalf("AddPointer(b, r): %v", err)
	}
	return c, a, b, r, aToR, bToR
}

func TestFirstPointerIsOriginalLaterOnesAreLinks(t *testing.T) {
	_, _, _, _, aToR, bToR := sharedReply(t)
	if aToR.IsLink {
		t.Fatal("first pointer at the reply classified as link")
	}
	if !bToR.IsLink {
		t.Fatal("second pointer at the reply classified as original")
	}
}

func TestDeletingOriginalPromotesSurvivingLink(t *testing.T) {
	c, _, _, _, aToR, bToR := sharedReply(t)
	if err := c.DeletePointer(aToR); err != nil {
		t.Fatalf("DeletePointer: %v", err)
	}
	if bToR.IsLink {
		t.Fatal("surviving pointer was not promoted to original")
	}
}

func TestDeleteAndRestoreKeepsOriginalClassification(t *testing.T) {
	c, a, _, _, aToR, bToR := sharedReply(t)

	removal, err := c.DeleteNode(a.ID)
	if err != nil {
		t.Fatalf("DeleteNode: %v", err)
	}
	if _, ok := c.Node(a.ID); ok {
		t.Fatal("deleted node still resolvable")
	}
	if bToR.IsLink {
		t.Fatal("after deleting a, b's pointer should be the original")
	}

	if err := c.Restore(removal); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if aToR.IsLink {
		t.Fatal("restored pointer came back as link, want original")
	}
	if !bToR.IsLink {
		t.Fatal("b's pointer should demote back to link after restore")
	}
	if len(c.Starts) != 2 || c.Starts[0].Target != a.ID {
		t.Fatalf("start order not restored: %+v", c.Starts)
	}
}

func TestCyclesDoNotRecurseForever(t *testing.T) {
	c := dialogue.New()
	e := c.AddNode(dialogue.KindEntry)
	r := c.AddNode(dialogue.KindReply)
	if _, err := c.AddStart(e.ID); err != nil {
		t.Fatalf("AddStart: %v", err)
	}
	if _, err := c.AddPointer(e, r.ID); err != nil {
		t.Fatalf("AddPointer(e, r): %v", err)
	}
	back, err := c.AddPointer(r, e.ID)
	if err != nil {
		t.Fatalf("AddPointer(r, e): %v", err)
	}
	if !back.IsLink {
		t.Fatal("cycle-closing pointer should classify as link")
	}
}

func TestPointersMustAlternateKinds(t *testing.T) {
	c := dialogue.New()
	e1 := c.AddNode(dialogue.KindEntry)
	e2 := c.AddNode(dialogue.KindEntry)
	r := c.AddNode(dialogue.KindReply)

	if _, err := c.AddPointer(e1, e2.ID); err == nil {
		t.Fatal("entry -> entry pointer accepted")
	}
	if _, err := c.AddStart(r.ID); err == nil {
		t.Fatal("starting pointer at a reply accepted")
	}
}

func TestEveryReachableNodeHasExactlyOneOriginal(t *testing.T) {
	c, _, _, _, _, _ := sharedReply(t)
	e := c.AddNode(dialogue.KindEntry)
	if _, err := c.AddStart(e.ID); err != nil {
		t.Fatalf("AddStart: %v", err)
	}
	// Close a diamond plus a cycle back into the existing graph.
	nodes := c.Nodes()
	r := nodes[2]
	if _, err := c.AddPointer(r, e.ID); err != nil {
		t.Fatalf("AddPointer: %v", err)
	}

	originals := make(map[int]int)
	count := func(p *dialogue.Pointer) {
		if !p.IsLink {
			originals[p.Target]++
		}
	}
	for _, s := range c.Starts {
		count(s)
	}
	for _, n := range c.Nodes() {
		for _, p := range n.Pointers {
			count(p)
		}
	}
	for id := range c.Reachable() {
		if originals[id] != 1 {
			t.Fatalf("node %d has %d original pointers, want 1", id, originals[id])
		}
	}
}

func TestDuplicateAsCopyCreatesLinksToSharedTargets(t *testing.T) {
	c, a, _, r, _, _ := sharedReply(t)
	dup, err := c.DuplicateAsCopy(a.ID)
	if err != nil {
		t.Fatalf("DuplicateAsCopy: %v", err)
	}
	if dup.Text.First() != a.Text.First() {
		t.Fatalf("copy text = %q, want %q", dup.Text.First(), a.Text.First())
	}
	if len(dup.Pointers) != 1 || dup.Pointers[0].Target != r.ID {
		t.Fatalf("copy pointers = %+v", dup.Pointers)
	}
	if _, err := c.AddStart(dup.ID); err != nil {
		t.Fatalf("AddStart: %v", err)
	}
	if !dup.Pointers[0].IsLink {
		t.Fatal("copied pointer at an already-introduced node should be a link")
	}
}

func TestMovePointerReparents(t *testing.T) {
	c, a, b, r, aToR, _ := sharedReply(t)
	if err := c.MovePointer(aToR, a, b); err != nil {
		t.Fatalf("MovePointer: %v", err)
	}
	if len(a.Pointers) != 0 {
		t.Fatalf("source still owns %d pointers", len(a.Pointers))
	}
	found := false
	for _, p := range b.Pointers {
		if p == aToR && p.Target == r.ID {
			found = true
		}
	}
	if !found {
		t.Fatal("pointer not attached to new owner")
	}
}
