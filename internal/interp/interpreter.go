// Package interp executes a lowered instruction-IR Context sample by
// sample: it holds the persistent state memory across blocks, shuttles
// host I/O buffers in and out, and re-derives every transient value fresh
// on each sample by walking the Context's schedule in order.
package interp

import (
	"errors"
	"fmt"

	"waveling/internal/constant"
	"waveling/internal/dtype"
	"waveling/internal/ir"
)

var (
	ErrUnknownInput      = errors.New("interp: unknown input index")
	ErrUnknownOutput     = errors.New("interp: unknown output index")
	ErrUnknownProperty   = errors.New("interp: unknown property index")
	ErrUnknownValue      = errors.New("interp: value not available")
	ErrBlockSizeMismatch = errors.New("interp: buffer length does not match context block size")
	ErrUnsupportedIOType = errors.New("interp: inputs and outputs must be F32")
)

// Interpreter runs one Context's worth of per-sample instructions. An
// Interpreter is not safe for concurrent use: RunBlock mutates state
// memory in place.
type Interpreter struct {
	ctx *ir.Context

	states     []*stateStore
	properties []*constant.Constant

	inputBuffers  [][]float32
	outputBuffers [][]float32

	blockCounter int64
	transient    map[ir.InstructionRef]*constant.Constant
}

// NewInterpreter allocates state memory, zeroed properties, and host I/O
// buffers for ctx. Inputs and outputs must be F32, the one currently
// supported host-facing sample format, at any vector width; each input or
// output buffer is block_size x width floats, one width-wide frame per
// sample.
func NewInterpreter(ctx *ir.Context) (*Interpreter, error) {
	for i, in := range ctx.Inputs {
		if in.Type.Primitive != dtype.F32 {
			return nil, fmt.Errorf("%w: input %d (%s) is %s", ErrUnsupportedIOType, i, in.Name, in.Type)
		}
	}
	for i, out := range ctx.Outputs {
		if out.Type.Primitive != dtype.F32 {
			return nil, fmt.Errorf("%w: output %d (%s) is %s", ErrUnsupportedIOType, i, out.Name, out.Type)
		}
	}

	states := make([]*stateStore, len(ctx.States))
	for i, sd := range ctx.States {
		states[i] = newStateStore(sd.Type)
	}

	properties := make([]*constant.Constant, len(ctx.Properties))
	for i := range ctx.Properties {
		properties[i] = zeroConstant(dtype.F64, 1)
	}

	inputBuffers := make([][]float32, len(ctx.Inputs))
	for i, in := range ctx.Inputs {
		inputBuffers[i] = make([]float32, in.Type.VectorWidth*ctx.BlockSize)
	}
	outputBuffers := make([][]float32, len(ctx.Outputs))
	for i, out := range ctx.Outputs {
		outputBuffers[i] = make([]float32, out.Type.VectorWidth*ctx.BlockSize)
	}

	return &Interpreter{
		ctx:           ctx,
		states:        states,
		properties:    properties,
		inputBuffers:  inputBuffers,
		outputBuffers: outputBuffers,
	}, nil
}

// WriteInput copies block into input index's buffer for the next RunBlock.
// block must hold exactly vector_width x block_size floats, one
// width-wide frame per sample.
func (m *Interpreter) WriteInput(index int, block []float32) error {
	if index < 0 || index >= len(m.inputBuffers) {
		return fmt.Errorf("%w: %d", ErrUnknownInput, index)
	}
	if len(block) != len(m.inputBuffers[index]) {
		return fmt.Errorf("%w: got %d, want %d", ErrBlockSizeMismatch, len(block), len(m.inputBuffers[index]))
	}
	copy(m.inputBuffers[index], block)
	return nil
}

// ReadOutput returns a copy of output index's buffer from the last
// RunBlock, vector_width x block_size floats, one width-wide frame per
// sample.
func (m *Interpreter) ReadOutput(index int) ([]float32, error) {
	if index < 0 || index >= len(m.outputBuffers) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownOutput, index)
	}
	out := make([]float32, len(m.outputBuffers[index]))
	copy(out, m.outputBuffers[index])
	return out, nil
}

// SetProperty stores value as property index's F64 scalar for every
// sample until changed again.
func (m *Interpreter) SetProperty(index int, value float64) error {
	if index < 0 || index >= len(m.properties) {
		return fmt.Errorf("%w: %d", ErrUnknownProperty, index)
	}
	c, err := constant.NewF64([]float64{value})
	if err != nil {
		return err
	}
	m.properties[index] = c
	return nil
}

// RunBlock executes one block of BlockSize samples in order, advancing the
// block counter used by ReadTimeSamples/ReadTimeSeconds and by relative
// state addressing.
func (m *Interpreter) RunBlock() error {
	for k := 0; k < m.ctx.BlockSize; k++ {
		if err := m.runSample(k); err != nil {
			return err
		}
	}
	m.blockCounter++
	return nil
}

func (m *Interpreter) runSample(blockOffset int) error {
	m.transient = make(map[ir.InstructionRef]*constant.Constant, m.ctx.NumInstructions())
	sampleIndex := m.blockCounter*int64(m.ctx.BlockSize) + int64(blockOffset)

	for _, iref := range m.ctx.Schedule() {
		inst, ok := m.ctx.Instruction(iref)
		if !ok {
			return fmt.Errorf("interp: schedule referenced unknown instruction %s", iref)
		}
		if err := m.exec(iref, inst, blockOffset, sampleIndex); err != nil {
			return fmt.Errorf("interp: sample %d: %w", sampleIndex, err)
		}
	}
	return nil
}

func (m *Interpreter) resolve(ref ir.ValueRef) (*constant.Constant, error) {
	d, ok := m.ctx.Value(ref)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownValue, ref)
	}
	if d.Kind == ir.ValueConstantLiteral {
		c, ok := m.ctx.Constant(d.Constant)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownValue, ref)
		}
		return c, nil
	}
	v, ok := m.transient[d.Instruction]
	if !ok {
		return nil, fmt.Errorf("%w: %s not yet produced this sample", ErrUnknownValue, ref)
	}
	return v, nil
}

func (m *Interpreter) exec(iref ir.InstructionRef, inst ir.Instruction, blockOffset int, sampleIndex int64) error {
	store := func(v *constant.Constant, err error) error {
		if err != nil {
			return err
		}
		m.transient[iref] = v
		return nil
	}

	switch inst.Kind {
	case ir.IAdd, ir.ISub, ir.IMul, ir.IDiv, ir.IMin, ir.IMax, ir.IModPositive, ir.IPow:
		l, err := m.resolve(inst.L)
		if err != nil {
			return err
		}
		r, err := m.resolve(inst.R)
		if err != nil {
			return err
		}
		return store(binaryFor(inst.Kind)(l, r))

	case ir.IClamp:
		x, err := m.resolve(inst.X)
		if err != nil {
			return err
		}
		lo, err := m.resolve(inst.Lo)
		if err != nil {
			return err
		}
		hi, err := m.resolve(inst.Hi)
		if err != nil {
			return err
		}
		return store(constant.Clamp(x, lo, hi))

	case ir.INegate:
		x, err := m.resolve(inst.X)
		if err != nil {
			return err
		}
		return store(constant.Negate(x))

	case ir.IToF32:
		x, err := m.resolve(inst.X)
		if err != nil {
			return err
		}
		return store(castTo(x, dtype.F32))

	case ir.IToF64:
		x, err := m.resolve(inst.X)
		if err != nil {
			return err
		}
		return store(castTo(x, dtype.F64))

	case ir.IFastSin, ir.IFastCos, ir.IFastTan, ir.IFastSinh, ir.IFastCosh, ir.IFastTanh:
		x, err := m.resolve(inst.X)
		if err != nil {
			return err
		}
		return store(applyUnaryFloat(x, trigFor(inst.Kind)))

	case ir.IReadInput:
		width := inst.Type.VectorWidth
		start := blockOffset * width
		frame := make([]float32, width)
		copy(frame, m.inputBuffers[inst.ExternalIndex][start:start+width])
		v, err := constant.NewF32(frame)
		return store(v, err)

	case ir.IWriteOutput:
		value, err := m.resolve(inst.Value)
		if err != nil {
			return err
		}
		frame, err := vectorF32(value)
		if err != nil {
			return err
		}
		buf := m.outputBuffers[inst.ExternalIndex]
		width := len(frame)
		start := blockOffset * width
		if start+width > len(buf) {
			return fmt.Errorf("interp: output %d: frame overruns buffer", inst.ExternalIndex)
		}
		copy(buf[start:start+width], frame)
		return nil

	case ir.IReadProperty:
		m.transient[iref] = m.properties[inst.ExternalIndex]
		return nil

	case ir.IReadState, ir.IReadStateRelative:
		offset, err := m.resolve(inst.Index())
		if err != nil {
			return err
		}
		n, err := scalarInt(offset)
		if err != nil {
			return err
		}
		base := n
		if inst.Kind == ir.IReadStateRelative {
			base = sampleIndex + n
		}
		m.transient[iref] = m.states[inst.StateRef].Get(base)
		return nil

	case ir.IWriteState, ir.IWriteStateRelative:
		offset, err := m.resolve(inst.Index())
		if err != nil {
			return err
		}
		n, err := scalarInt(offset)
		if err != nil {
			return err
		}
		value, err := m.resolve(inst.Value)
		if err != nil {
			return err
		}
		base := n
		if inst.Kind == ir.IWriteStateRelative {
			base = sampleIndex + n
		}
		m.states[inst.StateRef].Set(base, value)
		return nil

	case ir.IReadTimeSamples:
		v, err := constant.NewI64([]int64{sampleIndex})
		return store(v, err)

	case ir.IReadTimeSeconds:
		v, err := constant.NewF64([]float64{float64(sampleIndex) / float64(m.ctx.SampleRate)})
		return store(v, err)

	default:
		return fmt.Errorf("interp: unhandled instruction kind %s", inst.Kind)
	}
}

func binaryFor(kind ir.InstructionKind) func(l, r *constant.Constant) (*constant.Constant, error) {
	switch kind {
	case ir.IAdd:
		return constant.Add
	case ir.ISub:
		return constant.Sub
	case ir.IMul:
		return constant.Mul
	case ir.IDiv:
		return constant.Div
	case ir.IMin:
		return constant.Min
	case ir.IMax:
		return constant.Max
	case ir.IModPositive:
		return constant.Rem
	default:
		return constant.Pow
	}
}

func trigFor(kind ir.InstructionKind) func(float64) float64 {
	switch kind {
	case ir.IFastSin:
		return fastSin
	case ir.IFastCos:
		return fastCos
	case ir.IFastTan:
		return fastTan
	case ir.IFastSinh:
		return fastSinh
	case ir.IFastCosh:
		return fastCosh
	default:
		return fastTanh
	}
}
