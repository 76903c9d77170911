package passes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"waveling/internal/constant"
	"waveling/internal/diag"
	"waveling/internal/dtype"
	"waveling/internal/graph"
)

func TestInsertStartFinalEdgesWiresSourcesAndSinks(t *testing.T) {
	p := graph.NewProgram()
	one, err := constant.NewF32([]float32{1})
	require.NoError(t, err)
	c := p.AddOp(graph.ConstantOp(one))
	out := p.AddOutput("out", dtype.Scalar(dtype.F32))
	w := p.AddOp(graph.WriteOutput(out))
	_, err = p.Graph.Connect(c, w, 0, nil)
	require.NoError(t, err)

	require.NoError(t, InsertStartFinalEdges(p))

	assert.True(t, p.Graph.HasEdge(p.Start, c, 0))
	assert.True(t, p.Graph.HasEdge(w, p.Final, 0))
}

func TestInsertStartFinalEdgesIsIdempotent(t *testing.T) {
	p := graph.NewProgram()
	one, err := constant.NewF32([]float32{1})
	require.NoError(t, err)
	c := p.AddOp(graph.ConstantOp(one))

	require.NoError(t, InsertStartFinalEdges(p))
	require.NoError(t, InsertStartFinalEdges(p))
	assert.True(t, p.Graph.HasEdge(p.Start, c, 0))
}

func TestInsertStartFinalEdgesRejectsIllegalExplicitStartEdge(t *testing.T) {
	p := graph.NewProgram()
	add := p.AddOp(graph.BinOp(graph.OpAdd))
	_, err := p.Graph.Connect(p.Start, add, 0, nil)
	require.NoError(t, err)

	err = InsertStartFinalEdges(p)
	require.Error(t, err)
	assert.ErrorIs(t, err, diag.ErrHasDiagnostics)
}
