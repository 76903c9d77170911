package fixture

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"waveling/internal/constant"
	"waveling/internal/dtype"
	"waveling/internal/ir"
)

func TestRunScalarGain(t *testing.T) {
	spec := Spec{
		SampleRate: 48000,
		BlockSize:  4,
		Inputs:     []string{"in"},
		Outputs:    []string{"out"},
		Build: func(b *ir.Builder, ins, outs []int) error {
			v, err := b.ReadInput(ins[0])
			if err != nil {
				return err
			}
			c, err := constant.NewF32([]float32{2})
			if err != nil {
				return err
			}
			two, err := b.EmitConstant(c)
			if err != nil {
				return err
			}
			doubled, err := b.Mul(v, two)
			if err != nil {
				return err
			}
			_, err = b.WriteOutput(outs[0], doubled)
			return err
		},
	}

	result, err := Run(spec,
		[]dtype.BufferType{dtype.ScalarBufferType(dtype.F32)},
		[]dtype.BufferType{dtype.ScalarBufferType(dtype.F32)},
		[][]float32{{1, 2, 3, 4}},
	)
	require.NoError(t, err)

	ok, msg := CompareFloat32s(result.Outputs[0], []float32{2, 4, 6, 8})
	assert.True(t, ok, msg)
}

func TestCompareFloat32sTreatsNaNAndInfAsEqual(t *testing.T) {
	got := []float32{float32(math.NaN()), float32(math.Inf(1)), float32(math.Inf(-1)), 1.000001}
	want := []float32{float32(math.NaN()), float32(math.Inf(1)), float32(math.Inf(-1)), 1.000002}
	ok, msg := CompareFloat32s(got, want)
	assert.True(t, ok, msg)
}

func TestCompareFloat32sRejectsDivergentFiniteValues(t *testing.T) {
	ok, _ := CompareFloat32s([]float32{1.0}, []float32{1.1})
	assert.False(t, ok)
}

func TestCompareFloat32sRejectsLengthMismatch(t *testing.T) {
	ok, _ := CompareFloat32s([]float32{1, 2}, []float32{1})
	assert.False(t, ok)
}
