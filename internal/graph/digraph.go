package graph

import (
	"errors"
	"fmt"

	"waveling/internal/diag"
)

var (
	// ErrUnknownNode is returned when a handle does not name a node in the graph.
	ErrUnknownNode = errors.New("graph: unknown node handle")
	// ErrDuplicateEdge is returned by Connect when the exact (src, dst,
	// input_index) triple already exists.
	ErrDuplicateEdge = errors.New("graph: duplicate edge")
)

type edgeKey struct {
	src, dst   NodeHandle
	inputIndex int
}

// DiGraph is a directed graph of Node/Edge with stable handles. Nodes and
// edges are append-only: once created, a handle stays valid for the life of
// the graph.
type DiGraph struct {
	nodes []Node
	edges []Edge
	seen  map[edgeKey]struct{}
}

// NewDiGraph returns an empty graph.
func NewDiGraph() *DiGraph {
	return &DiGraph{seen: make(map[edgeKey]struct{})}
}

// AddNode appends a node and returns its handle.
func (g *DiGraph) AddNode(op Op) NodeHandle {
	h := NodeHandle(len(g.nodes))
	g.nodes = append(g.nodes, Node{Op: op})
	return h
}

// Node returns a pointer to the node for h, allowing in-place mutation of
// its inferred Type. Panics-free: returns nil if h is out of range.
func (g *DiGraph) Node(h NodeHandle) *Node {
	if int(h) < 0 || int(h) >= len(g.nodes) {
		return nil
	}
	return &g.nodes[int(h)]
}

// NumNodes returns the number of nodes in the graph.
func (g *DiGraph) NumNodes() int { return len(g.nodes) }

// Edge returns the edge for h.
func (g *DiGraph) Edge(h EdgeHandle) Edge { return g.edges[int(h)] }

// Connect adds an edge from src's output into dst's input slot inputIndex.
// Rejects unknown handles and exact-duplicate (src, dst, input_index)
// triples; does not otherwise validate shape (callers consult the op
// descriptor table for that).
func (g *DiGraph) Connect(src, dst NodeHandle, inputIndex int, loc *diag.SourceLocation) (EdgeHandle, error) {
	if g.Node(src) == nil {
		return 0, fmt.Errorf("graph: connect: src %d: %w", src, ErrUnknownNode)
	}
	if g.Node(dst) == nil {
		return 0, fmt.Errorf("graph: connect: dst %d: %w", dst, ErrUnknownNode)
	}
	key := edgeKey{src, dst, inputIndex}
	if _, dup := g.seen[key]; dup {
		return 0, fmt.Errorf("graph: connect %d->%d[%d]: %w", src, dst, inputIndex, ErrDuplicateEdge)
	}
	g.seen[key] = struct{}{}

	h := EdgeHandle(len(g.edges))
	g.edges = append(g.edges, Edge{Src: src, Dst: dst, InputIndex: inputIndex, Loc: loc})
	g.nodes[int(src)].out = append(g.nodes[int(src)].out, h)
	g.nodes[int(dst)].in = append(g.nodes[int(dst)].in, h)
	return h, nil
}

// HasEdge reports whether the exact (src, dst, input_index) triple exists.
func (g *DiGraph) HasEdge(src, dst NodeHandle, inputIndex int) bool {
	_, ok := g.seen[edgeKey{src, dst, inputIndex}]
	return ok
}

// TopologicalSort returns node handles in an order where every edge points
// from an earlier handle to a later one. Fails with a diagnostic naming one
// node that participates in a cycle when the graph is not a DAG.
func (g *DiGraph) TopologicalSort() ([]NodeHandle, error) {
	indegree := make([]int, len(g.nodes))
	for _, e := range g.edges {
		indegree[int(e.Dst)]++
	}

	queue := make([]NodeHandle, 0, len(g.nodes))
	for i, d := range indegree {
		if d == 0 {
			queue = append(queue, NodeHandle(i))
		}
	}

	order := make([]NodeHandle, 0, len(g.nodes))
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		order = append(order, n)
		for _, eh := range g.nodes[int(n)].out {
			e := g.edges[int(eh)]
			indegree[int(e.Dst)]--
			if indegree[int(e.Dst)] == 0 {
				queue = append(queue, e.Dst)
			}
		}
	}

	if len(order) != len(g.nodes) {
		for i, d := range indegree {
			if d > 0 {
				d := diag.New("cycle detected in operation graph").
					WithRef("node participates in a cycle", i)
				return nil, fmt.Errorf("graph: %w", diagErr{d})
			}
		}
	}
	return order, nil
}

// diagErr adapts a single diag.Diagnostic to the error interface so
// TopologicalSort's failure carries a renderable diagnostic without forcing
// every caller to depend on diag.Collection for a single-diagnostic failure.
type diagErr struct{ d diag.Diagnostic }

func (e diagErr) Error() string { return e.d.Message }

// Diagnostic unwraps the underlying diagnostic for renderers.
func (e diagErr) Diagnostic() diag.Diagnostic { return e.d }
