package dialogue

import (
	"fmt"

	"parley/internal/gff"
)

// Decode parses a conversation container from raw bytes.
func Decode(data []byte) (*Conversation, error) {
	f, err := gff.Decode(data)
	if err != nil {
		return nil, err
	}
	return FromFile(f)
}

// FromFile builds a conversation from a decoded container. Node pointers are
// resolved against the entry and reply tables; an index outside either table
// is a dangling reference. Link/original classification is recomputed from
// the topology rather than trusted from the stored flags.
func FromFile(f *gff.File) (*Conversation, error) {
	if f.Type != FileType {
		return nil, fmt.Errorf("%w: file type %q", ErrNotDialogue, f.Type)
	}
	root := f.Root

	c := New()
	c.root = root
	c.DelayEntry = root.DWord("DelayEntry")
	c.DelayReply = root.DWord("DelayReply")
	c.NumWords = root.DWord("NumWords")
	c.EndScript = root.ResRef("EndConversation")
	c.AbortScript = root.ResRef("EndConverAbort")
	c.PreventZoomIn = root.Byte("PreventZoomIn") != 0

	entries := root.List("EntryList")
	replies := root.List("ReplyList")

	// Entries occupy handles [0,len(entries)); replies follow. Handles are
	// arena-local and never reused, so later additions cannot collide.
	for _, s := range entries {
		node := c.AddNode(KindEntry)
		decodeNode(node, s)
	}
	for _, s := range replies {
		node := c.AddNode(KindReply)
		decodeNode(node, s)
	}

	entryID := func(index uint32) (int, error) {
		if index >= uint32(len(entries)) {
			return 0, fmt.Errorf("%w: entry index %d of %d", gff.ErrDanglingReference, index, len(entries))
		}
		return int(index), nil
	}
	replyID := func(index uint32) (int, error) {
		if index >= uint32(len(replies)) {
			return 0, fmt.Errorf("%w: reply index %d of %d", gff.ErrDanglingReference, index, len(replies))
		}
		return len(entries) + int(index), nil
	}

	for i, s := range entries {
		node := c.nodes[i]
		for _, ps := range s.List("RepliesList") {
			target, err := replyID(ps.DWord("Index"))
			if err != nil {
				return nil, fmt.Errorf("entry %d: %w", i, err)
			}
			node.Pointers = append(node.Pointers, decodePointer(ps, target))
		}
	}
	for i, s := range replies {
		node := c.nodes[len(entries)+i]
		for _, ps := range s.List("EntriesList") {
			target, err := entryID(ps.DWord("Index"))
			if err != nil {
				return nil, fmt.Errorf("reply %d: %w", i, err)
			}
			node.Pointers = append(node.Pointers, decodePointer(ps, target))
		}
	}
	for i, ps := range root.List("StartingList") {
		target, err := entryID(ps.DWord("Index"))
		if err != nil {
			return nil, fmt.Errorf("starting pointer %d: %w", i, err)
		}
		c.Starts = append(c.Starts, decodePointer(ps, target))
	}

	c.refreshLinks()
	return c, nil
}

func decodeNode(n *Node, s *gff.Struct) {
	n.backing = s
	n.Text = s.LocString("Text")
	n.Speaker = s.String("Speaker")
	n.Script = s.ResRef("Script")
	n.Params = decodeParams(s.List("ActionParams"))
	n.Delay = s.DWord("Delay")
	if !s.Has("Delay") {
		n.Delay = DefaultDelay
	}
	n.Comment = s.String("Comment")
	n.Sound = s.ResRef("Sound")
	n.Quest = s.String("Quest")
	if s.Has("QuestEntry") {
		v := s.DWord("QuestEntry")
		n.QuestEntry = &v
	}
	n.Animation = s.DWord("Animation")
	n.AnimLoop = s.Byte("AnimLoop") != 0
}

func decodePointer(s *gff.Struct, target int) *Pointer {
	return &Pointer{
		Target:  target,
		Active:  s.ResRef("Active"),
		Params:  decodeParams(s.List("ConditionParams")),
		Comment: s.String("LinkComment"),
		backing: s,
	}
}

func decodeParams(list []*gff.Struct) []Param {
	if len(list) == 0 {
		return nil
	}
	out := make([]Param, 0, len(list))
	for _, s := range list {
		out = append(out, Param{Key: s.String("Key"), Value: s.String("Value")})
	}
	return out
}
