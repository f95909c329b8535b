package dialogue

import (
	"fmt"
	"strings"

	"parley/internal/gff"
)

// Encode serializes the conversation back into container bytes.
func Encode(c *Conversation) ([]byte, error) {
	f, err := c.File()
	if err != nil {
		return nil, err
	}
	return gff.Encode(f)
}

// File rebuilds the container struct tree. Emission follows the same
// entry-point-first depth-first discovery order the decoder uses, so a
// conversation that is loaded and saved without edits keeps its node table
// order. Nodes unreachable from any start are appended afterward in pool
// order; pruning them is the orphan service's call, not the writer's.
//
// Unrecognized fields survive on each node's backing struct; recognized
// fields are rewritten in place so their position in the struct is stable.
func (c *Conversation) File() (*gff.File, error) {
	c.refreshLinks()

	entryOrder, replyOrder := c.emissionOrder()
	entryIndex := make(map[int]uint32, len(entryOrder))
	replyIndex := make(map[int]uint32, len(replyOrder))
	for i, n := range entryOrder {
		entryIndex[n.ID] = uint32(i)
	}
	for i, n := range replyOrder {
		replyIndex[n.ID] = uint32(i)
	}

	targetIndex := func(p *Pointer) (uint32, error) {
		node, ok := c.byID[p.Target]
		if !ok {
			return 0, fmt.Errorf("%w: pointer at missing node %d (run orphan repair)", ErrNoSuchNode, p.Target)
		}
		if node.Kind == KindEntry {
			return entryIndex[node.ID], nil
		}
		return replyIndex[node.ID], nil
	}

	entryList := make([]*gff.Struct, 0, len(entryOrder))
	for _, n := range entryOrder {
		s, err := encodeNode(n, targetIndex)
		if err != nil {
			return nil, err
		}
		entryList = append(entryList, s)
	}
	replyList := make([]*gff.Struct, 0, len(replyOrder))
	for _, n := range replyOrder {
		s, err := encodeNode(n, targetIndex)
		if err != nil {
			return nil, err
		}
		replyList = append(replyList, s)
	}

	startList := make([]*gff.Struct, 0, len(c.Starts))
	for _, p := range c.Starts {
		index, err := targetIndex(p)
		if err != nil {
			return nil, fmt.Errorf("starting pointer: %w", err)
		}
		s := p.backing
		if s == nil {
			s = gff.NewStruct(0)
			s.Set("Active", gff.TypeResRef, "")
			p.backing = s
		}
		setStringIfSet(s, "Active", gff.TypeResRef, p.Active)
		s.Set("Index", gff.TypeDWord, index)
		encodeParams(s, "ConditionParams", p.Params)
		startList = append(startList, s)
	}

	if !c.KeepWordCount {
		c.NumWords = c.countWords()
	}

	root := c.root
	if root == nil {
		root = gff.NewStruct(gff.RootStructType)
		c.root = root
	}
	root.Set("DelayEntry", gff.TypeDWord, c.DelayEntry)
	root.Set("DelayReply", gff.TypeDWord, c.DelayReply)
	root.Set("NumWords", gff.TypeDWord, c.NumWords)
	root.Set("EndConversation", gff.TypeResRef, c.EndScript)
	root.Set("EndConverAbort", gff.TypeResRef, c.AbortScript)
	setFlag(root, "PreventZoomIn", c.PreventZoomIn)
	root.Set("EntryList", gff.TypeList, entryList)
	root.Set("ReplyList", gff.TypeList, replyList)
	root.Set("StartingList", gff.TypeList, startList)

	return &gff.File{Type: FileType, Version: gff.Version32, Root: root}, nil
}

// emissionOrder lists entries and replies in discovery order: depth-first
// from the starting pointers, then any unreachable nodes in pool order.
func (c *Conversation) emissionOrder() (entries, replies []*Node) {
	seen := make(map[int]bool, len(c.nodes))
	var walk func(id int)
	walk = func(id int) {
		node, ok := c.byID[id]
		if !ok || seen[id] {
			return
		}
		seen[id] = true
		if node.Kind == KindEntry {
			entries = append(entries, node)
		} else {
			replies = append(replies, node)
		}
		for _, p := range node.Pointers {
			walk(p.Target)
		}
	}
	for _, start := range c.Starts {
		walk(start.Target)
	}
	for _, n := range c.nodes {
		if seen[n.ID] {
			continue
		}
		seen[n.ID] = true
		if n.Kind == KindEntry {
			entries = append(entries, n)
		} else {
			replies = append(replies, n)
		}
	}
	return entries, replies
}

func encodeNode(n *Node, targetIndex func(*Pointer) (uint32, error)) (*gff.Struct, error) {
	s := n.backing
	if s == nil {
		s = freshNodeStruct(n.Kind)
		n.backing = s
	}

	s.Set("Text", gff.TypeLocString, n.Text)
	if n.Kind == KindEntry {
		setStringIfSet(s, "Speaker", gff.TypeString, n.Speaker)
	}
	setStringIfSet(s, "Script", gff.TypeResRef, n.Script)
	encodeParams(s, "ActionParams", n.Params)
	if n.Delay != DefaultDelay || s.Has("Delay") {
		s.Set("Delay", gff.TypeDWord, n.Delay)
	}
	setStringIfSet(s, "Comment", gff.TypeString, n.Comment)
	setStringIfSet(s, "Sound", gff.TypeResRef, n.Sound)
	setStringIfSet(s, "Quest", gff.TypeString, n.Quest)
	if n.QuestEntry != nil {
		s.Set("QuestEntry", gff.TypeDWord, *n.QuestEntry)
	} else {
		s.Remove("QuestEntry")
	}
	setDWordIfSet(s, "Animation", n.Animation)
	setFlag(s, "AnimLoop", n.AnimLoop)

	pointers := make([]*gff.Struct, 0, len(n.Pointers))
	for _, p := range n.Pointers {
		index, err := targetIndex(p)
		if err != nil {
			return nil, err
		}
		ps := p.backing
		if ps == nil {
			ps = gff.NewStruct(0)
			ps.Set("Active", gff.TypeResRef, "")
			p.backing = ps
		}
		setStringIfSet(ps, "Active", gff.TypeResRef, p.Active)
		ps.Set("Index", gff.TypeDWord, index)
		ps.Set("IsChild", gff.TypeByte, boolByte(p.IsLink))
		setStringIfSet(ps, "LinkComment", gff.TypeString, p.Comment)
		encodeParams(ps, "ConditionParams", p.Params)
		pointers = append(pointers, ps)
	}
	if n.Kind == KindEntry {
		s.Set("RepliesList", gff.TypeList, pointers)
	} else {
		s.Set("EntriesList", gff.TypeList, pointers)
	}
	return s, nil
}

// freshNodeStruct seeds the standard field shape for nodes created in the
// editor, in the order the engine's own writer uses, so new nodes group with
// decoded ones during type assignment.
func freshNodeStruct(kind Kind) *gff.Struct {
	s := gff.NewStruct(0)
	s.Set("Text", gff.TypeLocString, gff.LocString{StrRef: gff.NoStrRef})
	if kind == KindEntry {
		s.Set("Speaker", gff.TypeString, "")
	}
	s.Set("Script", gff.TypeResRef, "")
	s.Set("Delay", gff.TypeDWord, uint32(DefaultDelay))
	s.Set("Comment", gff.TypeString, "")
	s.Set("Sound", gff.TypeResRef, "")
	s.Set("Quest", gff.TypeString, "")
	return s
}

func encodeParams(s *gff.Struct, label string, params []Param) {
	if len(params) == 0 {
		if s.Has(label) {
			s.Set(label, gff.TypeList, []*gff.Struct(nil))
		}
		return
	}
	list := make([]*gff.Struct, 0, len(params))
	for _, p := range params {
		ps := gff.NewStruct(0)
		ps.Set("Key", gff.TypeString, p.Key)
		ps.Set("Value", gff.TypeString, p.Value)
		list = append(list, ps)
	}
	s.Set(label, gff.TypeList, list)
}

// setStringIfSet writes a string-typed field unless the value is empty and
// the field was never present, so optional fields a file omits stay omitted.
func setStringIfSet(s *gff.Struct, label string, typ gff.FieldType, v string) {
	if v == "" && !s.Has(label) {
		return
	}
	s.Set(label, typ, v)
}

// setFlag writes a boolean byte field, leaving the struct untouched when the
// flag is clear and the field was never present.
func setFlag(s *gff.Struct, label string, v bool) {
	if !v && !s.Has(label) {
		return
	}
	s.Set(label, gff.TypeByte, boolByte(v))
}

func setDWordIfSet(s *gff.Struct, label string, v uint32) {
	if v == 0 && !s.Has(label) {
		return
	}
	s.Set(label, gff.TypeDWord, v)
}

func boolByte(v bool) uint8 {
	if v {
		return 1
	}
	return 0
}

// countWords totals whitespace-separated words across every language variant
// of every node, matching the NumWords bookkeeping the engine maintains.
func (c *Conversation) countWords() uint32 {
	var total uint32
	for _, n := range c.nodes {
		for _, sub := range n.Text.Substrings {
			total += uint32(len(strings.Fields(sub.Text)))
		}
	}
	return total
}
