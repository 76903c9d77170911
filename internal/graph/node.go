package graph

import "waveling/internal/dtype"

// NodeHandle identifies a node within a DiGraph. Handles are dense indices
// assigned at creation time; the graph never deletes nodes once added, so a
// plain int is sufficient (the back-IR uses generation-checked handles
// instead, though its arenas never free slots either).
type NodeHandle int

// Node is one vertex of the front-IR graph: an operation plus the inferred
// type the structural passes fill in. Nodes carry no source location; edges
// carry a Loc.
type Node struct {
	Op   Op
	Type *dtype.VectorDescriptor

	out []EdgeHandle
	in  []EdgeHandle
}

// OutEdges returns the handles of edges leaving this node.
func (n *Node) OutEdges() []EdgeHandle { return n.out }

// InEdges returns the handles of edges entering this node.
func (n *Node) InEdges() []EdgeHandle { return n.in }
