package interp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"waveling/internal/constant"
	"waveling/internal/dtype"
	"waveling/internal/ir"
)

func newCtx(t *testing.T, blockSize int) (*ir.Context, *ir.Builder) {
	t.Helper()
	ctx, err := ir.NewContext(blockSize, 48000)
	require.NoError(t, err)
	return ctx, ir.NewBuilder(ctx)
}

// TestMachineScalarAddPassesInputsThrough mirrors adding two inputs and
// writing the result straight to the output: out[k] = a[k] + b[k].
func TestMachineScalarAddPassesInputsThrough(t *testing.T) {
	_, b := newCtx(t, 4)
	a := b.AddInput("a", dtype.ScalarBufferType(dtype.F32))
	bb := b.AddInput("b", dtype.ScalarBufferType(dtype.F32))
	out := b.AddOutput("out", dtype.ScalarBufferType(dtype.F32))

	va, err := b.ReadInput(a)
	require.NoError(t, err)
	vb, err := b.ReadInput(bb)
	require.NoError(t, err)
	sum, err := b.Add(va, vb)
	require.NoError(t, err)
	_, err = b.WriteOutput(out, sum)
	require.NoError(t, err)

	m, err := NewInterpreter(b.Finish())
	require.NoError(t, err)
	require.NoError(t, m.WriteInput(a, []float32{1, 2, 3, 4}))
	require.NoError(t, m.WriteInput(bb, []float32{10, 20, 30, 40}))
	require.NoError(t, m.RunBlock())

	got, err := m.ReadOutput(out)
	require.NoError(t, err)
	assert.Equal(t, []float32{11, 22, 33, 44}, got)
}

// TestMachineStateRoundTripsAccumulator mirrors a running accumulator:
// state[0] holds the sum so far, read and rewritten every sample.
func TestMachineStateRoundTripsAccumulator(t *testing.T) {
	_, b := newCtx(t, 4)
	in := b.AddInput("in", dtype.ScalarBufferType(dtype.F32))
	out := b.AddOutput("out", dtype.ScalarBufferType(dtype.F32))
	acc := b.AddState("acc", dtype.ScalarBufferType(dtype.F32))

	zero, err := constant.NewI64([]int64{0})
	require.NoError(t, err)
	vzero, err := b.EmitConstant(zero)
	require.NoError(t, err)

	prev, err := b.ReadState(acc, vzero)
	require.NoError(t, err)
	vin, err := b.ReadInput(in)
	require.NoError(t, err)
	next, err := b.Add(prev, vin)
	require.NoError(t, err)
	_, err = b.WriteState(acc, vzero, next)
	require.NoError(t, err)
	_, err = b.WriteOutput(out, next)
	require.NoError(t, err)

	m, err := NewInterpreter(b.Finish())
	require.NoError(t, err)
	require.NoError(t, m.WriteInput(in, []float32{1, 1, 1, 1}))
	require.NoError(t, m.RunBlock())

	got, err := m.ReadOutput(out)
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2, 3, 4}, got)

	require.NoError(t, m.WriteInput(in, []float32{1, 1, 1, 1}))
	require.NoError(t, m.RunBlock())
	got, err = m.ReadOutput(out)
	require.NoError(t, err)
	assert.Equal(t, []float32{5, 6, 7, 8}, got)
}

// TestMachineStateRelativeReadImplementsDelayLine mirrors a one-sample
// delay using the ring buffer's relative addressing.
func TestMachineStateRelativeReadImplementsDelayLine(t *testing.T) {
	_, b := newCtx(t, 4)
	in := b.AddInput("in", dtype.ScalarBufferType(dtype.F32))
	out := b.AddOutput("out", dtype.ScalarBufferType(dtype.F32))
	delay := b.AddState("delay", dtype.BufferType{Primitive: dtype.F32, VectorWidth: 1, BufferLength: 4})

	minusOne, err := constant.NewI64([]int64{-1})
	require.NoError(t, err)
	vMinusOne, err := b.EmitConstant(minusOne)
	require.NoError(t, err)
	zero, err := constant.NewI64([]int64{0})
	require.NoError(t, err)
	vZero, err := b.EmitConstant(zero)
	require.NoError(t, err)

	delayed, err := b.ReadStateRelative(delay, vMinusOne)
	require.NoError(t, err)
	_, err = b.WriteOutput(out, delayed)
	require.NoError(t, err)

	vin, err := b.ReadInput(in)
	require.NoError(t, err)
	_, err = b.WriteStateRelative(delay, vZero, vin)
	require.NoError(t, err)

	m, err := NewInterpreter(b.Finish())
	require.NoError(t, err)
	require.NoError(t, m.WriteInput(in, []float32{1, 2, 3, 4}))
	require.NoError(t, m.RunBlock())

	got, err := m.ReadOutput(out)
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 1, 2, 3}, got)
}

func TestMachineRejectsNonF32Input(t *testing.T) {
	_, b := newCtx(t, 4)
	b.AddInput("in", dtype.VectorBufferType(dtype.I32, 2))
	_, err := NewInterpreter(b.Finish())
	assert.ErrorIs(t, err, ErrUnsupportedIOType)
}

// TestMachineHandlesVectorWidthInputOutput mirrors a stereo-style pair of
// lanes: the host buffer is one width-wide frame per sample.
func TestMachineHandlesVectorWidthInputOutput(t *testing.T) {
	_, b := newCtx(t, 2)
	in := b.AddInput("in", dtype.VectorBufferType(dtype.F32, 2))
	out := b.AddOutput("out", dtype.VectorBufferType(dtype.F32, 2))

	vin, err := b.ReadInput(in)
	require.NoError(t, err)
	_, err = b.WriteOutput(out, vin)
	require.NoError(t, err)

	m, err := NewInterpreter(b.Finish())
	require.NoError(t, err)
	require.NoError(t, m.WriteInput(in, []float32{1, 2, 3, 4}))
	require.NoError(t, m.RunBlock())

	got, err := m.ReadOutput(out)
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2, 3, 4}, got)
}

func TestMachinePropertyReadsConvertedValue(t *testing.T) {
	_, b := newCtx(t, 2)
	out := b.AddOutput("out", dtype.ScalarBufferType(dtype.F32))
	prop := b.AddProperty("gain")

	vp, err := b.ReadProperty(prop)
	require.NoError(t, err)
	vp32, err := b.ToF32(vp)
	require.NoError(t, err)
	_, err = b.WriteOutput(out, vp32)
	require.NoError(t, err)

	m, err := NewInterpreter(b.Finish())
	require.NoError(t, err)
	require.NoError(t, m.SetProperty(prop, 2.5))
	require.NoError(t, m.RunBlock())

	got, err := m.ReadOutput(out)
	require.NoError(t, err)
	assert.Equal(t, []float32{2.5, 2.5}, got)
}
