package lower

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"waveling/internal/constant"
	"waveling/internal/dtype"
	"waveling/internal/graph"
	"waveling/internal/interp"
	"waveling/internal/passes"
)

func runPasses(t *testing.T, p *graph.Program) *passes.TypeMap {
	t.Helper()
	require.NoError(t, passes.InsertStartFinalEdges(p))
	tm, err := passes.InferTypes(p)
	require.NoError(t, err)
	return tm
}

// TestFromProgramLowersSummedInputsToOutput mirrors out = a + b, including
// a second edge into output's input slot to exercise implicit summation:
// out = a + b + c.
func TestFromProgramLowersSummedInputsToOutput(t *testing.T) {
	p := graph.NewProgram()
	a := p.AddInput("a", dtype.Scalar(dtype.F32))
	bIdx := p.AddInput("b", dtype.Scalar(dtype.F32))
	cIdx := p.AddInput("c", dtype.Scalar(dtype.F32))
	out := p.AddOutput("out", dtype.Scalar(dtype.F32))

	readA := p.AddOp(graph.ReadInput(a))
	readB := p.AddOp(graph.ReadInput(bIdx))
	readC := p.AddOp(graph.ReadInput(cIdx))
	add := p.AddOp(graph.BinOp(graph.OpAdd))
	write := p.AddOp(graph.WriteOutput(out))

	_, err := p.Graph.Connect(readA, add, 0, nil)
	require.NoError(t, err)
	_, err = p.Graph.Connect(readB, add, 1, nil)
	require.NoError(t, err)
	_, err = p.Graph.Connect(add, write, 0, nil)
	require.NoError(t, err)
	_, err = p.Graph.Connect(readC, write, 0, nil)
	require.NoError(t, err)

	tm := runPasses(t, p)

	ctx, err := FromProgram(p, tm, 4, 48000)
	require.NoError(t, err)

	m, err := interp.NewInterpreter(ctx)
	require.NoError(t, err)
	require.NoError(t, m.WriteInput(a, []float32{1, 2, 3, 4}))
	require.NoError(t, m.WriteInput(bIdx, []float32{10, 20, 30, 40}))
	require.NoError(t, m.WriteInput(cIdx, []float32{100, 200, 300, 400}))
	require.NoError(t, m.RunBlock())

	got, err := m.ReadOutput(out)
	require.NoError(t, err)
	assert.Equal(t, []float32{111, 222, 333, 444}, got)
}

// TestFromProgramLowersAccumulatorState mirrors a running sum kept in
// state, read and rewritten at the same absolute index every sample.
func TestFromProgramLowersAccumulatorState(t *testing.T) {
	p := graph.NewProgram()
	in := p.AddInput("in", dtype.Scalar(dtype.F32))
	out := p.AddOutput("out", dtype.Scalar(dtype.F32))
	acc := p.AddState("acc", dtype.Scalar(dtype.F32), 1)

	zero, err := constant.NewI64([]int64{0})
	require.NoError(t, err)
	zeroNode := p.AddOp(graph.ConstantOp(zero))

	readIn := p.AddOp(graph.ReadInput(in))
	readAcc := p.AddOp(graph.ReadState(acc, 0))
	add := p.AddOp(graph.BinOp(graph.OpAdd))
	writeAcc := p.AddOp(graph.WriteState(acc, 0))
	writeOut := p.AddOp(graph.WriteOutput(out))

	_, err = p.Graph.Connect(zeroNode, readAcc, 0, nil)
	require.NoError(t, err)
	_, err = p.Graph.Connect(readAcc, add, 0, nil)
	require.NoError(t, err)
	_, err = p.Graph.Connect(readIn, add, 1, nil)
	require.NoError(t, err)
	_, err = p.Graph.Connect(add, writeAcc, 0, nil)
	require.NoError(t, err)
	_, err = p.Graph.Connect(zeroNode, writeAcc, 1, nil)
	require.NoError(t, err)
	_, err = p.Graph.Connect(add, writeOut, 0, nil)
	require.NoError(t, err)

	tm := runPasses(t, p)

	ctx, err := FromProgram(p, tm, 4, 48000)
	require.NoError(t, err)

	m, err := interp.NewInterpreter(ctx)
	require.NoError(t, err)
	require.NoError(t, m.WriteInput(in, []float32{1, 1, 1, 1}))
	require.NoError(t, m.RunBlock())

	got, err := m.ReadOutput(out)
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2, 3, 4}, got)
}

// TestFromProgramLowersClock mirrors out = clock (as f32).
func TestFromProgramLowersClock(t *testing.T) {
	p := graph.NewProgram()
	out := p.AddOutput("out", dtype.Scalar(dtype.F32))

	clock := p.AddOp(graph.Clock())
	cast := p.AddOp(graph.Cast(dtype.F32))
	write := p.AddOp(graph.WriteOutput(out))

	_, err := p.Graph.Connect(clock, cast, 0, nil)
	require.NoError(t, err)
	_, err = p.Graph.Connect(cast, write, 0, nil)
	require.NoError(t, err)

	tm := runPasses(t, p)
	ctx, err := FromProgram(p, tm, 2, 48000)
	require.NoError(t, err)

	m, err := interp.NewInterpreter(ctx)
	require.NoError(t, err)
	require.NoError(t, m.RunBlock())

	got, err := m.ReadOutput(out)
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 1}, got)
}
