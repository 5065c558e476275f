package model

import "sort"

// EdgeFilter selects which member edges a walk follows.
type EdgeFilter func(from *Shape, edge *Member) bool

// SerdeEdges is the edge filter for document serde reachability: structure
// members, union members, list/set elements, and map values.
func SerdeEdges(from *Shape, edge *Member) bool {
	switch from.Type {
	case ShapeTypeStructure, ShapeTypeUnion:
		return true
	case ShapeTypeList, ShapeTypeSet:
		return edge.Name == "member"
	case ShapeTypeMap:
		return edge.Name == "value"
	default:
		return false
	}
}

// Walk visits every shape reachable from the seed along edges accepted by the
// filter, depth first. The visited set bounds re-entry, so walks over
// recursive shapes terminate. Unresolvable targets are skipped; callers that
// need hard failure use ExpectShape directly.
func (m *Model) Walk(seed *Shape, filter EdgeFilter, visit func(*Shape)) {
	seen := map[ShapeID]struct{}{}

	var walk func(s *Shape)
	walk = func(s *Shape) {
		if _, ok := seen[s.ID]; ok {
			return
		}
		seen[s.ID] = struct{}{}
		visit(s)

		for _, mem := range s.Members() {
			if !filter(s, mem) {
				continue
			}
			target, ok := m.Shape(mem.Target)
			if !ok {
				continue
			}
			walk(target)
		}
	}
	walk(seed)
}

// SerdeClosure computes the structure and union shapes reachable from the
// members of the seed shapes along serde edges. A seed itself is included
// only when it is also reachable as a nested member; top-level seed serde is
// handled by the operation (de)serializers. The result is deduplicated and
// sorted by shape ID.
func (m *Model) SerdeClosure(seeds ...*Shape) []*Shape {
	byID := map[ShapeID]*Shape{}

	collect := func(s *Shape) {
		if s.Type == ShapeTypeStructure || s.Type == ShapeTypeUnion {
			byID[s.ID] = s
		}
	}
	for _, seed := range seeds {
		for _, mem := range seed.Members() {
			if !SerdeEdges(seed, mem) {
				continue
			}
			target, ok := m.Shape(mem.Target)
			if !ok {
				continue
			}
			m.Walk(target, SerdeEdges, collect)
		}
	}

	ids := make([]ShapeID, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })

	out := make([]*Shape, len(ids))
	for i, id := range ids {
		out[i] = byID[id]
	}
	return out
}
