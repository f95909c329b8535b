package dialogue

import (
	"errors"
	"fmt"

	"parley/internal/gff"
)

// FileType is the container tag carried by conversation files.
const FileType = "DLG "

// DefaultDelay is the sentinel meaning "use the conversation default" in a
// node's Delay field.
const DefaultDelay = 0xFFFFFFFF

var (
	// ErrNotDialogue reports a container whose type tag is not a conversation.
	ErrNotDialogue = errors.New("dialogue: not a conversation file")
	// ErrNoSuchNode reports a node handle that is not in the pool.
	ErrNoSuchNode = errors.New("dialogue: no such node")
	// ErrKindMismatch reports a pointer that would join two nodes of the
	// same kind; conversations alternate between entries and replies.
	ErrKindMismatch = errors.New("dialogue: pointer would not alternate entry/reply")
)

// Kind distinguishes the two node kinds of a conversation.
type Kind int

const (
	// KindEntry is a line authored for a non-player speaker.
	KindEntry Kind = iota
	// KindReply is a player response line.
	KindReply
)

func (k Kind) String() string {
	if k == KindEntry {
		return "entry"
	}
	return "reply"
}

// Param is one key/value script parameter.
type Param struct {
	Key   string
	Value string
}

// Node is a single line of conversation and its outgoing pointers.
type Node struct {
	ID   int
	Kind Kind

	Text    gff.LocString
	Speaker string // entries only: tag of the speaking creature
	Script  string // action script fired when the line plays
	Params  []Param
	Delay   uint32
	Comment string
	Sound   string

	// Quest and QuestEntry tie the line to a journal category. QuestEntry
	// is nil when the line advances no specific journal entry.
	Quest      string
	QuestEntry *uint32

	Animation uint32
	AnimLoop  bool

	Pointers []*Pointer

	backing *gff.Struct
}

// Pointer is a directed edge at a target node. IsLink is a cache of the
// traversal-order classification; it is refreshed after every structural
// mutation and on decode, so it can never drift from the topology.
type Pointer struct {
	Target int
	IsLink bool

	Active  string // guard script deciding whether the edge is offered
	Params  []Param
	Comment string

	backing *gff.Struct
}

// Conversation owns the node pool, the starting pointers, and the
// conversation-level scripts and delays.
type Conversation struct {
	DelayEntry    uint32
	DelayReply    uint32
	NumWords      uint32
	EndScript     string // run on normal conversation end
	AbortScript   string // run when the conversation is aborted
	PreventZoomIn bool

	// KeepWordCount stops the encoder from recomputing NumWords on save.
	KeepWordCount bool

	// Starts are the designated entry points; each targets an entry node.
	Starts []*Pointer

	nodes  []*Node
	byID   map[int]*Node
	nextID int

	root *gff.Struct
}

// New returns an empty conversation with default delays.
func New() *Conversation {
	return &Conversation{
		DelayEntry: 0,
		DelayReply: 0,
		byID:       make(map[int]*Node),
	}
}

// Node resolves a handle, reporting whether it is in the pool.
func (c *Conversation) Node(id int) (*Node, bool) {
	n, ok := c.byID[id]
	return n, ok
}

// Nodes returns the pool in container order. The slice is shared; callers
// mutate the graph through Conversation methods only.
func (c *Conversation) Nodes() []*Node {
	return c.nodes
}

// Len returns the number of nodes in the pool.
func (c *Conversation) Len() int {
	return len(c.nodes)
}

// AddNode creates a node of the given kind with no pointers. Until a pointer
// or starting pointer targets it, the node is an orphan candidate.
func (c *Conversation) AddNode(kind Kind) *Node {
	n := &Node{
		ID:    c.nextID,
		Kind:  kind,
		Text:  gff.LocString{StrRef: gff.NoStrRef},
		Delay: DefaultDelay,
	}
	c.nextID++
	c.nodes = append(c.nodes, n)
	c.byID[n.ID] = n
	return n
}

// AddPointer adds an outgoing pointer from a node. Entries point at replies
// and replies at entries; anything else is rejected. The new pointer's
// link/original classification is recomputed immediately.
func (c *Conversation) AddPointer(from *Node, target int) (*Pointer, error) {
	t, ok := c.byID[target]
	if !ok {
		return nil, fmt.Errorf("%w: id %d", ErrNoSuchNode, target)
	}
	if t.Kind == from.Kind {
		return nil, fmt.Errorf("%w: %s -> %s", ErrKindMismatch, from.Kind, t.Kind)
	}
	p := &Pointer{Target: target}
	from.Pointers = append(from.Pointers, p)
	c.refreshLinks()
	return p, nil
}

// AddStart appends a starting pointer at an entry node.
func (c *Conversation) AddStart(target int) (*Pointer, error) {
	return c.InsertStart(len(c.Starts), target)
}

// InsertStart adds a starting pointer at the given position in the start
// list. Traversal (and therefore original/link classification) follows start
// order, so position matters.
func (c *Conversation) InsertStart(at int, target int) (*Pointer, error) {
	t, ok := c.byID[target]
	if !ok {
		return nil, fmt.Errorf("%w: id %d", ErrNoSuchNode, target)
	}
	if t.Kind != KindEntry {
		return nil, fmt.Errorf("%w: starting pointer at a %s", ErrKindMismatch, t.Kind)
	}
	if at < 0 || at > len(c.Starts) {
		at = len(c.Starts)
	}
	p := &Pointer{Target: target}
	c.Starts = append(c.Starts, nil)
	copy(c.Starts[at+1:], c.Starts[at:])
	c.Starts[at] = p
	c.refreshLinks()
	return p, nil
}

// DuplicateAsLink adds a pointer from a node at an existing node. If the
// target is already introduced elsewhere the new pointer classifies as a
// link; the name records intent, the mechanics are AddPointer's.
func (c *Conversation) DuplicateAsLink(from *Node, target int) (*Pointer, error) {
	return c.AddPointer(from, target)
}

// DuplicateAsCopy creates a new node with the source node's content and
// copies of its outgoing pointers. The copy shares targets with the source,
// so the copied pointers classify as links once the copy is reachable.
func (c *Conversation) DuplicateAsCopy(id int) (*Node, error) {
	src, ok := c.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: id %d", ErrNoSuchNode, id)
	}
	dup := c.AddNode(src.Kind)
	dup.Text = copyLocString(src.Text)
	dup.Speaker = src.Speaker
	dup.Script = src.Script
	dup.Params = append([]Param(nil), src.Params...)
	dup.Delay = src.Delay
	dup.Comment = src.Comment
	dup.Sound = src.Sound
	dup.Quest = src.Quest
	if src.QuestEntry != nil {
		v := *src.QuestEntry
		dup.QuestEntry = &v
	}
	dup.Animation = src.Animation
	dup.AnimLoop = src.AnimLoop
	for _, p := range src.Pointers {
		dup.Pointers = append(dup.Pointers, &Pointer{
			Target:  p.Target,
			Active:  p.Active,
			Params:  append([]Param(nil), p.Params...),
			Comment: p.Comment,
		})
	}
	c.refreshLinks()
	return dup, nil
}

func copyLocString(l gff.LocString) gff.LocString {
	out := gff.LocString{StrRef: l.StrRef}
	out.Substrings = append(out.Substrings, l.Substrings...)
	return out
}
