package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"waveling/internal/dtype"
)

func TestConnectRejectsUnknownHandles(t *testing.T) {
	g := NewDiGraph()
	a := g.AddNode(Negate())
	_, err := g.Connect(a, NodeHandle(99), 0, nil)
	assert.ErrorIs(t, err, ErrUnknownNode)
}

func TestConnectRejectsExactDuplicateEdge(t *testing.T) {
	g := NewDiGraph()
	a := g.AddNode(Negate())
	b := g.AddNode(Negate())
	_, err := g.Connect(a, b, 0, nil)
	require.NoError(t, err)
	_, err = g.Connect(a, b, 0, nil)
	assert.ErrorIs(t, err, ErrDuplicateEdge)
}

func TestConnectAllowsSameSrcDstDifferentInputIndex(t *testing.T) {
	g := NewDiGraph()
	a := g.AddNode(Negate())
	b := g.AddNode(BinOp(OpAdd))
	_, err := g.Connect(a, b, 0, nil)
	require.NoError(t, err)
	_, err = g.Connect(a, b, 1, nil)
	assert.NoError(t, err)
}

func TestTopologicalSortOrdersEdgesForward(t *testing.T) {
	g := NewDiGraph()
	start := g.AddNode(Start())
	c := g.AddNode(ConstantOp(nil))
	add := g.AddNode(BinOp(OpAdd))
	final := g.AddNode(Final())

	_, _ = g.Connect(start, c, 0, nil)
	_, _ = g.Connect(c, add, 0, nil)
	_, _ = g.Connect(c, add, 1, nil)
	_, _ = g.Connect(add, final, 0, nil)

	order, err := g.TopologicalSort()
	require.NoError(t, err)
	require.Len(t, order, 4)

	pos := make(map[NodeHandle]int, len(order))
	for i, h := range order {
		pos[h] = i
	}
	assert.Less(t, pos[start], pos[c])
	assert.Less(t, pos[c], pos[add])
	assert.Less(t, pos[add], pos[final])
}

func TestTopologicalSortDetectsCycle(t *testing.T) {
	g := NewDiGraph()
	a := g.AddNode(Negate())
	b := g.AddNode(Negate())
	_, _ = g.Connect(a, b, 0, nil)
	_, _ = g.Connect(b, a, 0, nil)

	_, err := g.TopologicalSort()
	require.Error(t, err)

	var de diagErr
	require.ErrorAs(t, err, &de)
	assert.Len(t, de.d.Refs, 1)
}

func TestMaterializeGroupsByInputIndexAndExcludesSource(t *testing.T) {
	g := NewDiGraph()
	start := g.AddNode(Start())
	x := g.AddNode(Negate())
	y := g.AddNode(Negate())
	add := g.AddNode(BinOp(OpAdd))

	_, _ = g.Connect(start, add, 0, nil)
	_, _ = g.Connect(x, add, 0, nil)
	_, _ = g.Connect(y, add, 1, nil)

	mi := Materialize(g, add, ExcludeNode(start))
	require.Equal(t, 2, mi.Len())
	require.Len(t, mi.Slot(0), 1)
	assert.Equal(t, x, mi.Slot(0)[0].Src)
	require.Len(t, mi.Slot(1), 1)
	assert.Equal(t, y, mi.Slot(1)[0].Src)
}

func TestProgramStartsWithExactlyOneStartAndFinal(t *testing.T) {
	p := NewProgram()
	assert.NotEqual(t, p.Start, p.Final)
	assert.Equal(t, OpStart, p.Graph.Node(p.Start).Op.Kind)
	assert.Equal(t, OpFinal, p.Graph.Node(p.Final).Op.Kind)
	assert.Equal(t, 2, p.Graph.NumNodes())
}

func TestProgramTablesAssignStableIndices(t *testing.T) {
	p := NewProgram()
	i0 := p.AddInput("in", dtype.Scalar(dtype.F32))
	i1 := p.AddInput("in2", dtype.Scalar(dtype.F32))
	assert.Equal(t, 0, i0)
	assert.Equal(t, 1, i1)
	assert.Equal(t, "in", p.Inputs[i0].Name)
	assert.Equal(t, "in2", p.Inputs[i1].Name)
}
