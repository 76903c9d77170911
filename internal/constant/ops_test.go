package constant

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddBroadcastScalarAgainstVector(t *testing.T) {
	l, err := NewF32([]float32{1, 2, 3, 4})
	require.NoError(t, err)
	r, err := NewF32([]float32{10})
	require.NoError(t, err)

	out, err := Add(l, r)
	require.NoError(t, err)
	assert.Equal(t, []float32{11, 12, 13, 14}, out.F32)
}

func TestBroadcastCommutativeBoundaryCases(t *testing.T) {
	w, err := NewI32([]int32{1, 2, 3})
	require.NoError(t, err)
	one, err := NewI32([]int32{5})
	require.NoError(t, err)

	lr, err := Add(w, one)
	require.NoError(t, err)
	rl, err := Add(one, w)
	require.NoError(t, err)
	assert.Equal(t, lr.I32, rl.I32)
	assert.Equal(t, 3, lr.Width())
}

func TestIncompatibleWidthsFails(t *testing.T) {
	a, _ := NewI32([]int32{1, 2})
	b, _ := NewI32([]int32{1, 2, 3})
	_, err := Add(a, b)
	assert.ErrorIs(t, err, ErrIncompatibleWidths)
}

func TestIncompatibleTypesFails(t *testing.T) {
	a, _ := NewI32([]int32{1})
	b, _ := NewF32([]float32{1})
	_, err := Add(a, b)
	assert.ErrorIs(t, err, ErrIncompatibleTypes)
}

func TestZeroWidthRejectedAtConstruction(t *testing.T) {
	_, err := NewI32(nil)
	assert.ErrorIs(t, err, ErrZeroWidthConstant)
}

func TestBoolRejectsArithmetic(t *testing.T) {
	a, _ := NewBool([]bool{true})
	b, _ := NewBool([]bool{false})
	_, err := Add(a, b)
	assert.ErrorIs(t, err, ErrUnsupportedPrimitive)
}

func TestIntegralRejectsPow(t *testing.T) {
	a, _ := NewI32([]int32{2})
	b, _ := NewI32([]int32{3})
	_, err := Pow(a, b)
	assert.ErrorIs(t, err, ErrUnsupportedPrimitive)
}

func TestPowFloatOnly(t *testing.T) {
	a, _ := NewF64([]float64{2})
	b, _ := NewF64([]float64{10})
	out, err := Pow(a, b)
	require.NoError(t, err)
	assert.InDelta(t, 1024.0, out.F64[0], 1e-9)
}

func TestRemPositiveBiased(t *testing.T) {
	a, _ := NewI32([]int32{-1})
	b, _ := NewI32([]int32{4})
	out, err := Rem(a, b)
	require.NoError(t, err)
	assert.Equal(t, int32(3), out.I32[0])
}

func TestClampBroadcastsAllThreeOperands(t *testing.T) {
	x, _ := NewF64([]float64{-5, 0, 5, 50})
	lo, _ := NewF64([]float64{0})
	hi, _ := NewF64([]float64{10})

	out, err := Clamp(x, lo, hi)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0, 5, 10}, out.F64)
}

func TestNegateRepeatsOperandAsBinaryPattern(t *testing.T) {
	x, _ := NewI64([]int64{1, -2, 3})
	out, err := Negate(x)
	require.NoError(t, err)
	assert.Equal(t, []int64{-1, 2, -3}, out.I64)
}

func TestBroadcastingLawForEveryOp(t *testing.T) {
	l, _ := NewF64([]float64{1, 2, 3, 4})
	r, _ := NewF64([]float64{2})

	cases := []struct {
		name string
		fn   func(l, r *Constant) (*Constant, error)
		want func(a, b float64) float64
	}{
		{"add", Add, func(a, b float64) float64 { return a + b }},
		{"sub", Sub, func(a, b float64) float64 { return a - b }},
		{"mul", Mul, func(a, b float64) float64 { return a * b }},
		{"div", Div, func(a, b float64) float64 { return a / b }},
		{"min", Min, math.Min},
		{"max", Max, math.Max},
	}

	for _, tc := range cases {
		out, err := tc.fn(l, r)
		require.NoError(t, err, tc.name)
		for k := 0; k < out.Width(); k++ {
			want := tc.want(l.F64[k%len(l.F64)], r.F64[k%len(r.F64)])
			assert.InDelta(t, want, out.F64[k], 1e-12, "%s[%d]", tc.name, k)
		}
	}
}
