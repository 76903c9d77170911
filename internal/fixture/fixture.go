// Package fixture provides a small test harness for building an
// ir.Context, running it for one block, and comparing its output against
// an oracle.
package fixture

import (
	"fmt"
	"math"

	"waveling/internal/dtype"
	"waveling/internal/interp"
	"waveling/internal/ir"
)

// Spec describes the inputs, outputs, and per-sample body a single
// fixture run wires up.
type Spec struct {
	SampleRate int
	BlockSize  int

	// Inputs and Outputs name each host buffer slot in declaration order.
	// Build receives the indices AddInput/AddOutput assigned, in the same
	// order, via the ins/outs slices it's called with.
	Inputs  []string
	Outputs []string

	// Build constructs the per-sample program body against b, given the
	// input and output indices declared from Inputs/Outputs.
	Build func(b *ir.Builder, ins, outs []int) error
}

// Result holds one RunBlock's worth of output buffers, keyed by the
// declaration order of Spec.Outputs.
type Result struct {
	Outputs [][]float32
}

// Run builds a Context from spec, feeds inputBlocks to the corresponding
// declared inputs, executes exactly one block, and returns the resulting
// output buffers. inputBlocks must have one entry per Spec.Inputs, each
// sized vector_width x block_size for that input's declared type.
func Run(spec Spec, inputTypes, outputTypes []dtype.BufferType, inputBlocks [][]float32) (*Result, error) {
	if len(inputTypes) != len(spec.Inputs) {
		return nil, fmt.Errorf("fixture: %d input types for %d declared inputs", len(inputTypes), len(spec.Inputs))
	}
	if len(outputTypes) != len(spec.Outputs) {
		return nil, fmt.Errorf("fixture: %d output types for %d declared outputs", len(outputTypes), len(spec.Outputs))
	}
	if len(inputBlocks) != len(spec.Inputs) {
		return nil, fmt.Errorf("fixture: %d input blocks for %d declared inputs", len(inputBlocks), len(spec.Inputs))
	}

	ctx, err := ir.NewContext(spec.BlockSize, int64(spec.SampleRate))
	if err != nil {
		return nil, fmt.Errorf("fixture: %w", err)
	}
	b := ir.NewBuilder(ctx)

	ins := make([]int, len(spec.Inputs))
	for i, name := range spec.Inputs {
		ins[i] = b.AddInput(name, inputTypes[i])
	}
	outs := make([]int, len(spec.Outputs))
	for i, name := range spec.Outputs {
		outs[i] = b.AddOutput(name, outputTypes[i])
	}

	if err := spec.Build(b, ins, outs); err != nil {
		return nil, fmt.Errorf("fixture: build: %w", err)
	}

	m, err := interp.NewInterpreter(b.Finish())
	if err != nil {
		return nil, fmt.Errorf("fixture: %w", err)
	}
	for i, block := range inputBlocks {
		if err := m.WriteInput(ins[i], block); err != nil {
			return nil, fmt.Errorf("fixture: write input %q: %w", spec.Inputs[i], err)
		}
	}
	if err := m.RunBlock(); err != nil {
		return nil, fmt.Errorf("fixture: run block: %w", err)
	}

	result := &Result{Outputs: make([][]float32, len(outs))}
	for i, idx := range outs {
		got, err := m.ReadOutput(idx)
		if err != nil {
			return nil, fmt.Errorf("fixture: read output %q: %w", spec.Outputs[i], err)
		}
		result.Outputs[i] = got
	}
	return result, nil
}

// absTolerance is the finite-value agreement threshold CompareFloat32s
// uses, matching the oracle comparison's precision.
const absTolerance = 1e-5

// CompareFloat32s reports whether got and want are the same length and
// every pair of elements is structurally equal: both NaN, both the same
// infinity, or finite and within absTolerance of each other.
func CompareFloat32s(got, want []float32) (bool, string) {
	if len(got) != len(want) {
		return false, fmt.Sprintf("length mismatch: got %d, want %d", len(got), len(want))
	}
	for i := range got {
		if !sampleEqual(float64(got[i]), float64(want[i])) {
			return false, fmt.Sprintf("sample %d: got %v, want %v", i, got[i], want[i])
		}
	}
	return true, ""
}

func sampleEqual(a, b float64) bool {
	if math.IsNaN(a) && math.IsNaN(b) {
		return true
	}
	if math.IsInf(a, 1) && math.IsInf(b, 1) {
		return true
	}
	if math.IsInf(a, -1) && math.IsInf(b, -1) {
		return true
	}
	return math.Abs(a-b) <= absTolerance
}
