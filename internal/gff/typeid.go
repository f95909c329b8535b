package gff

import "sort"

// assignTypeIDs derives the on-disk type ID for every struct in emission
// order. The engine's writer groups non-root structs by their exact ordered
// field-label signature, sorts the groups by descending population, and hands
// out ascending IDs starting at zero, so the most common shape in a file is
// always type 0. Ties keep first-appearance order. The root struct keeps the
// sentinel, and pinned structs keep their decoded ID untouched.
//
// The assignment is a pure function of the final struct set, so encoding the
// same tree twice always produces identical IDs.
func assignTypeIDs(structs []*Struct) []uint32 {
	type group struct {
		count   int
		members []int
	}

	ids := make([]uint32, len(structs))
	bySignature := make(map[string]*group)
	var order []*group

	for i, s := range structs {
		if i == 0 {
			ids[0] = RootStructType
			continue
		}
		if s.TypePinned {
			ids[i] = s.TypeID
			continue
		}
		sig := s.signature()
		g, ok := bySignature[sig]
		if !ok {
			g = &group{}
			bySignature[sig] = g
			order = append(order, g)
		}
		g.count++
		g.members = append(g.members, i)
	}

	sort.SliceStable(order, func(a, b int) bool {
		return order[a].count > order[b].count
	})

	for rank, g := range order {
		for _, member := range g.members {
			ids[member] = uint32(rank)
		}
	}
	return ids
}
