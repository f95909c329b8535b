package dialogue

import "fmt"

// refreshLinks recomputes the link/original classification of every pointer.
// Depth-first traversal from the starting pointers, in start order: the
// first pointer to reach a node is its original, every later pointer at the
// same node is a link. The visited check happens before recursing into a
// target's own pointers, so cycles terminate.
//
// Nodes unreachable from any start are walked afterward in pool order so
// their islands get a consistent classification too; they remain orphan
// candidates either way.
func (c *Conversation) refreshLinks() {
	seen := make(map[int]bool, len(c.nodes))

	var visit func(n *Node)
	classify := func(p *Pointer) {
		target, ok := c.byID[p.Target]
		if !ok {
			return
		}
		if seen[target.ID] {
			p.IsLink = true
			return
		}
		seen[target.ID] = true
		p.IsLink = false
		visit(target)
	}
	visit = func(n *Node) {
		for _, p := range n.Pointers {
			classify(p)
		}
	}

	for _, start := range c.Starts {
		classify(start)
	}
	for _, n := range c.nodes {
		if !seen[n.ID] {
			seen[n.ID] = true
			visit(n)
		}
	}
}

// pointerSlot records where a pointer lived so a removal can be undone.
// An owner of startsOwner means the conversation's start list.
type pointerSlot struct {
	owner int
	index int
	ptr   *Pointer
}

const startsOwner = -1

// NodeRemoval captures everything DeleteNode tore out of the graph. Callers
// keep it for undo; Restore puts the node and all incoming pointers back
// where they were.
type NodeRemoval struct {
	Node *Node

	poolIndex int
	incoming  []pointerSlot
}

// DeleteNode removes a node, its outgoing pointers (they leave with the
// node), and every pointer terminating at it. If the node's original pointer
// is among the removed while link pointers to other nodes survive elsewhere,
// the subsequent reclassification promotes the surviving pointer nearest the
// roots in traversal order to original.
func (c *Conversation) DeleteNode(id int) (*NodeRemoval, error) {
	node, ok := c.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: id %d", ErrNoSuchNode, id)
	}

	removal := &NodeRemoval{Node: node}
	for i, n := range c.nodes {
		if n == node {
			removal.poolIndex = i
			break
		}
	}

	keepStarts := c.Starts[:0]
	for i, p := range c.Starts {
		if p.Target == id {
			removal.incoming = append(removal.incoming, pointerSlot{owner: startsOwner, index: i, ptr: p})
			continue
		}
		keepStarts = append(keepStarts, p)
	}
	c.Starts = keepStarts

	for _, owner := range c.nodes {
		if owner == node {
			continue
		}
		kept := owner.Pointers[:0]
		for i, p := range owner.Pointers {
			if p.Target == id {
				removal.incoming = append(removal.incoming, pointerSlot{owner: owner.ID, index: i, ptr: p})
				continue
			}
			kept = append(kept, p)
		}
		owner.Pointers = kept
	}

	c.nodes = append(c.nodes[:removal.poolIndex], c.nodes[removal.poolIndex+1:]...)
	delete(c.byID, id)
	c.refreshLinks()
	return removal, nil
}

// Restore reverses a DeleteNode: the node returns to its pool position and
// every removed pointer to its former owner and slot. Classification is then
// recomputed, so a restored original pointer comes back as original, not as
// a link.
func (c *Conversation) Restore(removal *NodeRemoval) error {
	if removal == nil || removal.Node == nil {
		return fmt.Errorf("dialogue: nothing to restore")
	}
	if _, exists := c.byID[removal.Node.ID]; exists {
		return fmt.Errorf("dialogue: node %d already present", removal.Node.ID)
	}

	at := removal.poolIndex
	if at < 0 || at > len(c.nodes) {
		at = len(c.nodes)
	}
	c.nodes = append(c.nodes, nil)
	copy(c.nodes[at+1:], c.nodes[at:])
	c.nodes[at] = removal.Node
	c.byID[removal.Node.ID] = removal.Node

	for _, slot := range removal.incoming {
		if slot.owner == startsOwner {
			at := slot.index
			if at < 0 || at > len(c.Starts) {
				at = len(c.Starts)
			}
			c.Starts = append(c.Starts, nil)
			copy(c.Starts[at+1:], c.Starts[at:])
			c.Starts[at] = slot.ptr
			continue
		}
		owner, ok := c.byID[slot.owner]
		if !ok {
			// The owning node was deleted after this removal; its
			// pointer cannot come back.
			continue
		}
		at := slot.index
		if at < 0 || at > len(owner.Pointers) {
			at = len(owner.Pointers)
		}
		owner.Pointers = append(owner.Pointers, nil)
		copy(owner.Pointers[at+1:], owner.Pointers[at:])
		owner.Pointers[at] = slot.ptr
	}

	c.refreshLinks()
	return nil
}

// DeletePointer removes a single pointer from its owner (a node or the
// start list). Classification is recomputed, so deleting an original
// pointer promotes a surviving link to the target, if any.
func (c *Conversation) DeletePointer(p *Pointer) error {
	for i, s := range c.Starts {
		if s == p {
			c.Starts = append(c.Starts[:i], c.Starts[i+1:]...)
			c.refreshLinks()
			return nil
		}
	}
	for _, n := range c.nodes {
		for i, q := range n.Pointers {
			if q == p {
				n.Pointers = append(n.Pointers[:i], n.Pointers[i+1:]...)
				c.refreshLinks()
				return nil
			}
		}
	}
	return fmt.Errorf("dialogue: pointer not found")
}

// MovePointer reparents a pointer from one node to another of the same
// kind, keeping the pointer's target, guard, and comment.
func (c *Conversation) MovePointer(p *Pointer, from, to *Node) error {
	if from.Kind != to.Kind {
		return fmt.Errorf("%w: reparent %s -> %s", ErrKindMismatch, from.Kind, to.Kind)
	}
	for i, q := range from.Pointers {
		if q == p {
			from.Pointers = append(from.Pointers[:i], from.Pointers[i+1:]...)
			to.Pointers = append(to.Pointers, p)
			c.refreshLinks()
			return nil
		}
	}
	return fmt.Errorf("dialogue: pointer not owned by source node")
}
