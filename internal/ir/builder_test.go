package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"waveling/internal/constant"
	"waveling/internal/dtype"
)

func newTestBuilder(t *testing.T) *Builder {
	t.Helper()
	ctx, err := NewContext(64, 48000)
	require.NoError(t, err)
	return NewBuilder(ctx)
}

func TestNewContextRejectsNonPowerOfTwoBlockSize(t *testing.T) {
	_, err := NewContext(48, 48000)
	assert.ErrorIs(t, err, ErrInvalidBlockSize)
}

func TestNewContextAcceptsPowerOfTwoBlockSize(t *testing.T) {
	_, err := NewContext(256, 48000)
	assert.NoError(t, err)
}

func TestBuilderAddEmitsScheduledInstruction(t *testing.T) {
	b := newTestBuilder(t)
	one, err := constant.NewF32([]float32{1})
	require.NoError(t, err)
	two, err := constant.NewF32([]float32{2})
	require.NoError(t, err)

	v1, err := b.EmitConstant(one)
	require.NoError(t, err)
	v2, err := b.EmitConstant(two)
	require.NoError(t, err)

	sum, err := b.Add(v1, v2)
	require.NoError(t, err)

	sumType, ok := b.Finish().Value(sum)
	require.True(t, ok)
	assert.Equal(t, dtype.ScalarBufferType(dtype.F32), sumType.Type)

	require.Len(t, b.Finish().Schedule(), 1)
	inst, ok := b.Finish().Instruction(b.Finish().Schedule()[0])
	require.True(t, ok)
	assert.Equal(t, IAdd, inst.Kind)
}

func TestBuilderAddRejectsMismatchedTypes(t *testing.T) {
	b := newTestBuilder(t)
	f, err := constant.NewF32([]float32{1})
	require.NoError(t, err)
	i, err := constant.NewI32([]int32{1})
	require.NoError(t, err)

	vf, err := b.EmitConstant(f)
	require.NoError(t, err)
	vi, err := b.EmitConstant(i)
	require.NoError(t, err)

	_, err = b.Add(vf, vi)
	assert.ErrorIs(t, err, ErrTypeMismatch)
}

func TestBuilderAddRejectsBool(t *testing.T) {
	b := newTestBuilder(t)
	t1, err := constant.NewBool([]bool{true})
	require.NoError(t, err)
	t2, err := constant.NewBool([]bool{false})
	require.NoError(t, err)

	v1, err := b.EmitConstant(t1)
	require.NoError(t, err)
	v2, err := b.EmitConstant(t2)
	require.NoError(t, err)

	_, err = b.Add(v1, v2)
	assert.ErrorIs(t, err, ErrPrimitiveNotAllowed)
}

func TestBuilderPowRejectsIntegral(t *testing.T) {
	b := newTestBuilder(t)
	a, err := constant.NewI32([]int32{2})
	require.NoError(t, err)
	c, err := constant.NewI32([]int32{3})
	require.NoError(t, err)

	va, err := b.EmitConstant(a)
	require.NoError(t, err)
	vc, err := b.EmitConstant(c)
	require.NoError(t, err)

	_, err = b.Pow(va, vc)
	assert.ErrorIs(t, err, ErrPrimitiveNotAllowed)
}

func TestBuilderWriteOutputValidatesDeclaredType(t *testing.T) {
	b := newTestBuilder(t)
	out := b.AddOutput("out", dtype.ScalarBufferType(dtype.F32))

	wrong, err := constant.NewI64([]int64{1})
	require.NoError(t, err)
	v, err := b.EmitConstant(wrong)
	require.NoError(t, err)

	_, err = b.WriteOutput(out, v)
	assert.ErrorIs(t, err, ErrTypeMismatch)
}

func TestBuilderReadStateRejectsNonIntegralIndex(t *testing.T) {
	b := newTestBuilder(t)
	state := b.AddState("acc", dtype.ScalarBufferType(dtype.F32))

	badIndex, err := constant.NewF32([]float32{1.5})
	require.NoError(t, err)
	vi, err := b.EmitConstant(badIndex)
	require.NoError(t, err)

	_, err = b.ReadState(state, vi)
	assert.ErrorIs(t, err, ErrBadIndexType)
}

func TestBuilderReadWriteStateRoundTripsType(t *testing.T) {
	b := newTestBuilder(t)
	state := b.AddState("delay", dtype.BufferType{Primitive: dtype.F32, VectorWidth: 1, BufferLength: 512})

	idx, err := constant.NewI64([]int64{0})
	require.NoError(t, err)
	vidx, err := b.EmitConstant(idx)
	require.NoError(t, err)

	val, err := constant.NewF32([]float32{0.5})
	require.NoError(t, err)
	vval, err := b.EmitConstant(val)
	require.NoError(t, err)

	_, err = b.WriteState(state, vidx, vval)
	require.NoError(t, err)

	read, err := b.ReadState(state, vidx)
	require.NoError(t, err)

	readType, ok := b.Finish().Value(read)
	require.True(t, ok)
	assert.Equal(t, dtype.ScalarBufferType(dtype.F32), readType.Type)
}

func TestBuilderFastTrigRejectsIntegral(t *testing.T) {
	b := newTestBuilder(t)
	v, err := constant.NewI32([]int32{1})
	require.NoError(t, err)
	vv, err := b.EmitConstant(v)
	require.NoError(t, err)

	_, err = b.FastSin(vv)
	assert.ErrorIs(t, err, ErrPrimitiveNotAllowed)
}

func TestBuilderCastKeepsWidthChangesPrimitive(t *testing.T) {
	b := newTestBuilder(t)
	v, err := constant.NewI32([]int32{1, 2, 3})
	require.NoError(t, err)
	vv, err := b.EmitConstant(v)
	require.NoError(t, err)

	out, err := b.ToF64(vv)
	require.NoError(t, err)

	outType, ok := b.Finish().Value(out)
	require.True(t, ok)
	assert.Equal(t, dtype.BufferType{Primitive: dtype.F64, VectorWidth: 3, BufferLength: 1}, outType.Type)
}
