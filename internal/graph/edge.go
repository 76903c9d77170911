package graph

import "waveling/internal/diag"

// EdgeHandle identifies an edge within a DiGraph.
type EdgeHandle int

// Edge connects Src's output to one declared input slot of Dst. InputIndex
// selects which of Dst's input slots this edge feeds; a slot may receive
// more than one edge (e.g. Final collects many writers), which is the
// multiple-sources-into-one-slot pattern the unifier walks.
type Edge struct {
	Src        NodeHandle
	Dst        NodeHandle
	InputIndex int
	Loc        *diag.SourceLocation
}
