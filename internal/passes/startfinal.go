// Package passes implements the structural passes that run over a
// graph.Program before it can be lowered to the instruction IR: wiring
// implicit Start/Final edges, unifying vector widths, and inferring a type
// for every node.
package passes

import (
	"errors"
	"fmt"

	"waveling/internal/diag"
	"waveling/internal/graph"
)

// ErrIllegalBoundaryEdge is returned when the program already contains an
// explicit edge to/from Start/Final that the op in question never gets.
var ErrIllegalBoundaryEdge = errors.New("passes: illegal explicit Start/Final edge")

// InsertStartFinalEdges validates the program's existing edges against the
// op descriptor table's implicit-edge classification, then idempotently
// wires the synthetic Start->node and node->Final edges every op in that
// classification needs. Every existing-edge violation is collected before
// the pass fails, per the accumulate-then-fail-once diagnostic policy.
func InsertStartFinalEdges(p *graph.Program) error {
	if _, err := p.Graph.TopologicalSort(); err != nil {
		return err
	}

	var diags diag.Collection
	for h := 0; h < p.Graph.NumNodes(); h++ {
		node := p.Graph.Node(graph.NodeHandle(h))
		if graph.NodeHandle(h) == p.Start || graph.NodeHandle(h) == p.Final {
			continue
		}
		descriptor := node.Op.Descriptor()
		for _, eh := range node.InEdges() {
			e := p.Graph.Edge(eh)
			if e.Src == p.Start && descriptor.ImplicitEdges != graph.ImplicitFromStart {
				diags.Push(diag.New("%s: %v", ErrIllegalBoundaryEdge, node.Op).
					WithRef("explicit edge from Start", h))
			}
		}
		for _, eh := range node.OutEdges() {
			e := p.Graph.Edge(eh)
			if e.Dst == p.Final && descriptor.ImplicitEdges != graph.ImplicitToFinal {
				diags.Push(diag.New("%s: %v", ErrIllegalBoundaryEdge, node.Op).
					WithRef("explicit edge to Final", h))
			}
		}
	}
	if err := diags.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrIllegalBoundaryEdge, err)
	}

	for h := 0; h < p.Graph.NumNodes(); h++ {
		nh := graph.NodeHandle(h)
		if nh == p.Start || nh == p.Final {
			continue
		}
		descriptor := p.Graph.Node(nh).Op.Descriptor()
		switch descriptor.ImplicitEdges {
		case graph.ImplicitFromStart:
			if !p.Graph.HasEdge(p.Start, nh, 0) {
				if _, err := p.Graph.Connect(p.Start, nh, 0, nil); err != nil {
					return fmt.Errorf("passes: insert start edge: %w", err)
				}
			}
		case graph.ImplicitToFinal:
			if !p.Graph.HasEdge(nh, p.Final, 0) {
				if _, err := p.Graph.Connect(nh, p.Final, 0, nil); err != nil {
					return fmt.Errorf("passes: insert final edge: %w", err)
				}
			}
		}
	}
	return nil
}
