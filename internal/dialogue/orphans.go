package dialogue

// Reachable returns the set of node IDs reachable from the starting
// pointers, following every pointer, original or link.
func (c *Conversation) Reachable() map[int]bool {
	seen := make(map[int]bool, len(c.nodes))
	var walk func(id int)
	walk = func(id int) {
		node, ok := c.byID[id]
		if !ok || seen[id] {
			return
		}
		seen[id] = true
		for _, p := range node.Pointers {
			walk(p.Target)
		}
	}
	for _, start := range c.Starts {
		walk(start.Target)
	}
	return seen
}

// RemoveOrphanedPointers deletes every pointer whose target node is no
// longer in the pool and returns how many were removed. Running it again
// with no intervening mutation removes nothing.
func (c *Conversation) RemoveOrphanedPointers() int {
	removed := 0

	keepStarts := c.Starts[:0]
	for _, p := range c.Starts {
		if _, ok := c.byID[p.Target]; !ok {
			removed++
			continue
		}
		keepStarts = append(keepStarts, p)
	}
	c.Starts = keepStarts

	for _, n := range c.nodes {
		kept := n.Pointers[:0]
		for _, p := range n.Pointers {
			if _, ok := c.byID[p.Target]; !ok {
				removed++
				continue
			}
			kept = append(kept, p)
		}
		n.Pointers = kept
	}

	if removed > 0 {
		c.refreshLinks()
	}
	return removed
}

// RemoveOrphanedNodes deletes every node unreachable from the starting
// pointers, along with the pointers those nodes own, and returns the removed
// nodes in pool order so callers can offer recovery. Idempotent: a second
// run removes nothing.
func (c *Conversation) RemoveOrphanedNodes() []*Node {
	reachable := c.Reachable()

	var removed []*Node
	kept := c.nodes[:0]
	for _, n := range c.nodes {
		if reachable[n.ID] {
			kept = append(kept, n)
			continue
		}
		removed = append(removed, n)
		delete(c.byID, n.ID)
	}
	c.nodes = kept

	if len(removed) > 0 {
		c.refreshLinks()
	}
	return removed
}
