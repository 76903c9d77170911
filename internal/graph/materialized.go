package graph

// MaterializedInputs groups a node's incoming edges by input index. Index i
// of Slots holds every edge feeding input slot i, in the order Connect was
// called; a slot with no edges is an empty (nil) slice, not an absent one
// (the slice is as long as the highest populated index + 1).
type MaterializedInputs struct {
	Slots [][]Edge
}

// Materialize groups dst's incoming edges by InputIndex. exclude, if
// non-nil, drops edges whose source node should not participate (the type
// inference pass uses this to exclude the implicit Start edge, which
// carries no value).
func Materialize(g *DiGraph, dst NodeHandle, exclude func(src NodeHandle) bool) MaterializedInputs {
	var slots [][]Edge
	for _, eh := range g.Node(dst).InEdges() {
		e := g.Edge(eh)
		if exclude != nil && exclude(e.Src) {
			continue
		}
		for len(slots) <= e.InputIndex {
			slots = append(slots, nil)
		}
		slots[e.InputIndex] = append(slots[e.InputIndex], e)
	}
	return MaterializedInputs{Slots: slots}
}

// ExcludeNode returns a predicate rejecting edges sourced from exactly h,
// suitable for Materialize's exclude parameter (e.g. excluding the Start
// node's implicit edge).
func ExcludeNode(h NodeHandle) func(NodeHandle) bool {
	return func(src NodeHandle) bool { return src == h }
}

// Len returns the number of declared slots (the index of the last
// populated slot plus one).
func (m MaterializedInputs) Len() int { return len(m.Slots) }

// Slot returns the edges feeding input index i, or nil if i is out of range
// or has no sources.
func (m MaterializedInputs) Slot(i int) []Edge {
	if i < 0 || i >= len(m.Slots) {
		return nil
	}
	return m.Slots[i]
}
