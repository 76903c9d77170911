package ir

import (
	"errors"
	"fmt"

	"waveling/internal/constant"
	"waveling/internal/dtype"
)

var (
	ErrUnknownValue        = errors.New("ir: unknown value reference")
	ErrUnknownState        = errors.New("ir: unknown state reference")
	ErrTypeMismatch        = errors.New("ir: operand type mismatch")
	ErrPrimitiveNotAllowed = errors.New("ir: primitive not allowed for this instruction")
	ErrBadIndexType        = errors.New("ir: state index must be an integral scalar")
	ErrUnknownInput        = errors.New("ir: unknown input index")
	ErrUnknownOutput       = errors.New("ir: unknown output index")
	ErrUnknownProperty     = errors.New("ir: unknown property index")
)

// Builder constructs a Context one instruction at a time, validating every
// operand's shape and type before the instruction is appended to the
// arena: nothing reaches the schedule until the call that produces it has
// fully passed validation, so a Context built by Builder never contains a
// partially-checked instruction.
type Builder struct {
	ctx *Context
}

// NewBuilder wraps ctx for incremental construction.
func NewBuilder(ctx *Context) *Builder { return &Builder{ctx: ctx} }

// AddInput declares an external input and returns its stable index.
func (b *Builder) AddInput(name string, t dtype.BufferType) int {
	b.ctx.Inputs = append(b.ctx.Inputs, InputDescriptor{Name: name, Type: t})
	return len(b.ctx.Inputs) - 1
}

// AddOutput declares an external output and returns its stable index.
func (b *Builder) AddOutput(name string, t dtype.BufferType) int {
	b.ctx.Outputs = append(b.ctx.Outputs, OutputDescriptor{Name: name, Type: t})
	return len(b.ctx.Outputs) - 1
}

// AddProperty declares a host-settable F64 property and returns its stable
// index.
func (b *Builder) AddProperty(name string) int {
	b.ctx.Properties = append(b.ctx.Properties, PropertyDescriptor{Name: name})
	return len(b.ctx.Properties) - 1
}

// AddState declares a persistent state slot and returns its stable handle.
func (b *Builder) AddState(name string, t dtype.BufferType) StateRef {
	b.ctx.States = append(b.ctx.States, StateDescriptor{Name: name, Type: t})
	return StateRef(len(b.ctx.States) - 1)
}

// Finish returns the Context under construction. The Builder remains
// usable afterward; Finish does not freeze the Context.
func (b *Builder) Finish() *Context { return b.ctx }

func (b *Builder) valueType(r ValueRef) (dtype.BufferType, error) {
	d, ok := b.ctx.Value(r)
	if !ok {
		return dtype.BufferType{}, fmt.Errorf("%w: %s", ErrUnknownValue, r)
	}
	return d.Type, nil
}

func (b *Builder) emitValue(kind InstructionKind, t dtype.BufferType, inst Instruction) ValueRef {
	inst.Kind = kind
	inst.Type = t
	ih := b.ctx.instructions.Alloc(inst)
	ref := InstructionRef{h: ih}
	b.ctx.schedule = append(b.ctx.schedule, ref)
	vh := b.ctx.values.Alloc(ValueDescriptor{Kind: ValueComputed, Type: t, Instruction: ref})
	return ValueRef{h: vh}
}

func (b *Builder) emitEffect(kind InstructionKind, inst Instruction) InstructionRef {
	inst.Kind = kind
	ih := b.ctx.instructions.Alloc(inst)
	ref := InstructionRef{h: ih}
	b.ctx.schedule = append(b.ctx.schedule, ref)
	return ref
}

// EmitConstant inlines a literal as a value with no producing instruction.
func (b *Builder) EmitConstant(c *constant.Constant) (ValueRef, error) {
	d, err := c.Descriptor()
	if err != nil {
		return ValueRef{}, fmt.Errorf("ir: emit constant: %w", err)
	}
	t := dtype.FromVectorDescriptor(d)
	ch := b.ctx.constants.Alloc(c)
	cr := ConstantRef{h: ch}
	vh := b.ctx.values.Alloc(ValueDescriptor{Kind: ValueConstantLiteral, Type: t, Constant: cr})
	return ValueRef{h: vh}, nil
}

// broadcastWidth validates that two vector widths are broadcast-compatible
// (equal, or either is 1) and returns the wider of the two.
func broadcastWidth(kind InstructionKind, l, r ValueRef, w1, w2 int) (int, error) {
	if w1 != w2 && w1 != 1 && w2 != 1 {
		return 0, fmt.Errorf("%w: %s(%s, %s): widths %d and %d are not broadcast-compatible", ErrTypeMismatch, kind, l, r, w1, w2)
	}
	if w1 > w2 {
		return w1, nil
	}
	return w2, nil
}

func (b *Builder) binary(kind InstructionKind, l, r ValueRef, denied dtype.PrimitiveSet) (ValueRef, error) {
	lt, err := b.valueType(l)
	if err != nil {
		return ValueRef{}, err
	}
	rt, err := b.valueType(r)
	if err != nil {
		return ValueRef{}, err
	}
	if lt.Primitive != rt.Primitive {
		return ValueRef{}, fmt.Errorf("%w: %s(%s, %s): %s vs %s", ErrTypeMismatch, kind, l, r, lt, rt)
	}
	width, err := broadcastWidth(kind, l, r, lt.VectorWidth, rt.VectorWidth)
	if err != nil {
		return ValueRef{}, err
	}
	if denied.Contains(lt.Primitive) {
		return ValueRef{}, fmt.Errorf("%w: %s for %s", ErrPrimitiveNotAllowed, kind, lt.Primitive)
	}
	outType := dtype.BufferType{Primitive: lt.Primitive, VectorWidth: width, BufferLength: 1}
	return b.emitValue(kind, outType, Instruction{L: l, R: r}), nil
}

var denyBool = dtype.NewPrimitiveSet(dtype.Bool)
var denyNonFloat = dtype.NewPrimitiveSet(dtype.Bool, dtype.I32, dtype.I64)

// Add, Sub, Mul, Div, Min, Max compute the named binary operation over
// matching non-Bool operand types.
func (b *Builder) Add(l, r ValueRef) (ValueRef, error) { return b.binary(IAdd, l, r, denyBool) }
func (b *Builder) Sub(l, r ValueRef) (ValueRef, error) { return b.binary(ISub, l, r, denyBool) }
func (b *Builder) Mul(l, r ValueRef) (ValueRef, error) { return b.binary(IMul, l, r, denyBool) }
func (b *Builder) Div(l, r ValueRef) (ValueRef, error) { return b.binary(IDiv, l, r, denyBool) }
func (b *Builder) Min(l, r ValueRef) (ValueRef, error) { return b.binary(IMin, l, r, denyBool) }
func (b *Builder) Max(l, r ValueRef) (ValueRef, error) { return b.binary(IMax, l, r, denyBool) }

// ModPositive computes a Euclidean-biased remainder.
func (b *Builder) ModPositive(l, r ValueRef) (ValueRef, error) {
	return b.binary(IModPositive, l, r, denyBool)
}

// Pow computes l ** r. Float primitives only.
func (b *Builder) Pow(l, r ValueRef) (ValueRef, error) { return b.binary(IPow, l, r, denyNonFloat) }

// Clamp computes max(lo, min(hi, x)), requiring all three operands to share
// a primitive and be pairwise broadcast-compatible in width.
func (b *Builder) Clamp(x, lo, hi ValueRef) (ValueRef, error) {
	xt, err := b.valueType(x)
	if err != nil {
		return ValueRef{}, err
	}
	lot, err := b.valueType(lo)
	if err != nil {
		return ValueRef{}, err
	}
	hit, err := b.valueType(hi)
	if err != nil {
		return ValueRef{}, err
	}
	if xt.Primitive != lot.Primitive || xt.Primitive != hit.Primitive {
		return ValueRef{}, fmt.Errorf("%w: clamp(%s, %s, %s): %s, %s, %s", ErrTypeMismatch, x, lo, hi, xt, lot, hit)
	}
	width, err := broadcastWidth(IClamp, x, lo, xt.VectorWidth, lot.VectorWidth)
	if err != nil {
		return ValueRef{}, err
	}
	width, err = broadcastWidth(IClamp, x, hi, width, hit.VectorWidth)
	if err != nil {
		return ValueRef{}, err
	}
	if denyBool.Contains(xt.Primitive) {
		return ValueRef{}, fmt.Errorf("%w: clamp for %s", ErrPrimitiveNotAllowed, xt.Primitive)
	}
	outType := dtype.BufferType{Primitive: xt.Primitive, VectorWidth: width, BufferLength: 1}
	return b.emitValue(IClamp, outType, Instruction{X: x, Lo: lo, Hi: hi}), nil
}

// Negate computes -x. Rejects Bool.
func (b *Builder) Negate(x ValueRef) (ValueRef, error) {
	xt, err := b.valueType(x)
	if err != nil {
		return ValueRef{}, err
	}
	if denyBool.Contains(xt.Primitive) {
		return ValueRef{}, fmt.Errorf("%w: negate for %s", ErrPrimitiveNotAllowed, xt.Primitive)
	}
	return b.emitValue(INegate, xt, Instruction{X: x}), nil
}

func (b *Builder) cast(kind InstructionKind, target dtype.Primitive, x ValueRef) (ValueRef, error) {
	xt, err := b.valueType(x)
	if err != nil {
		return ValueRef{}, err
	}
	t := dtype.BufferType{Primitive: target, VectorWidth: xt.VectorWidth, BufferLength: xt.BufferLength}
	return b.emitValue(kind, t, Instruction{X: x}), nil
}

// ToF32 casts x's primitive to F32, keeping its width.
func (b *Builder) ToF32(x ValueRef) (ValueRef, error) { return b.cast(IToF32, dtype.F32, x) }

// ToF64 casts x's primitive to F64, keeping its width.
func (b *Builder) ToF64(x ValueRef) (ValueRef, error) { return b.cast(IToF64, dtype.F64, x) }

func (b *Builder) fastTrig(kind InstructionKind, x ValueRef) (ValueRef, error) {
	xt, err := b.valueType(x)
	if err != nil {
		return ValueRef{}, err
	}
	if !xt.Primitive.IsFloat() {
		return ValueRef{}, fmt.Errorf("%w: %s requires a float operand, got %s", ErrPrimitiveNotAllowed, kind, xt.Primitive)
	}
	return b.emitValue(kind, xt, Instruction{X: x}), nil
}

// FastSin, FastCos, FastTan compute polynomial-approximated trig functions,
// accurate on [-2pi, 2pi]; FastSinh, FastCosh, FastTanh are computed from
// math.Exp and math.Tanh. Float primitives only.
func (b *Builder) FastSin(x ValueRef) (ValueRef, error)  { return b.fastTrig(IFastSin, x) }
func (b *Builder) FastCos(x ValueRef) (ValueRef, error)  { return b.fastTrig(IFastCos, x) }
func (b *Builder) FastTan(x ValueRef) (ValueRef, error)  { return b.fastTrig(IFastTan, x) }
func (b *Builder) FastSinh(x ValueRef) (ValueRef, error) { return b.fastTrig(IFastSinh, x) }
func (b *Builder) FastCosh(x ValueRef) (ValueRef, error) { return b.fastTrig(IFastCosh, x) }
func (b *Builder) FastTanh(x ValueRef) (ValueRef, error) { return b.fastTrig(IFastTanh, x) }

// ReadInput reads external input index.
func (b *Builder) ReadInput(index int) (ValueRef, error) {
	if index < 0 || index >= len(b.ctx.Inputs) {
		return ValueRef{}, fmt.Errorf("%w: %d", ErrUnknownInput, index)
	}
	return b.emitValue(IReadInput, b.ctx.Inputs[index].Type, Instruction{ExternalIndex: index}), nil
}

// WriteOutput writes value to external output index. value's type must
// match the declared output type exactly.
func (b *Builder) WriteOutput(index int, value ValueRef) (InstructionRef, error) {
	if index < 0 || index >= len(b.ctx.Outputs) {
		return InstructionRef{}, fmt.Errorf("%w: %d", ErrUnknownOutput, index)
	}
	vt, err := b.valueType(value)
	if err != nil {
		return InstructionRef{}, err
	}
	want := b.ctx.Outputs[index].Type
	if !vt.Equal(want) {
		return InstructionRef{}, fmt.Errorf("%w: output %d: expected %s, found %s", ErrTypeMismatch, index, want, vt)
	}
	return b.emitEffect(IWriteOutput, Instruction{ExternalIndex: index, Value: value}), nil
}

// ReadProperty reads host-settable property index as an F64 scalar.
func (b *Builder) ReadProperty(index int) (ValueRef, error) {
	if index < 0 || index >= len(b.ctx.Properties) {
		return ValueRef{}, fmt.Errorf("%w: %d", ErrUnknownProperty, index)
	}
	return b.emitValue(IReadProperty, dtype.ScalarBufferType(dtype.F64), Instruction{ExternalIndex: index}), nil
}

func (b *Builder) stateType(state StateRef) (dtype.BufferType, error) {
	if int(state) < 0 || int(state) >= len(b.ctx.States) {
		return dtype.BufferType{}, fmt.Errorf("%w: %d", ErrUnknownState, int(state))
	}
	return b.ctx.States[state].Type, nil
}

func (b *Builder) checkIndex(index ValueRef) error {
	it, err := b.valueType(index)
	if err != nil {
		return err
	}
	if !it.Primitive.IsInteger() || !it.IsScalar() {
		return fmt.Errorf("%w: got %s", ErrBadIndexType, it)
	}
	return nil
}

func (b *Builder) readState(kind InstructionKind, state StateRef, index ValueRef) (ValueRef, error) {
	st, err := b.stateType(state)
	if err != nil {
		return ValueRef{}, err
	}
	if err := b.checkIndex(index); err != nil {
		return ValueRef{}, err
	}
	return b.emitValue(kind, dtype.FromVectorDescriptor(st.Vector()), Instruction{StateRef: state, index: index}), nil
}

func (b *Builder) writeState(kind InstructionKind, state StateRef, index, value ValueRef) (InstructionRef, error) {
	st, err := b.stateType(state)
	if err != nil {
		return InstructionRef{}, err
	}
	if err := b.checkIndex(index); err != nil {
		return InstructionRef{}, err
	}
	vt, err := b.valueType(value)
	if err != nil {
		return InstructionRef{}, err
	}
	want := dtype.FromVectorDescriptor(st.Vector())
	if !vt.Equal(want) {
		return InstructionRef{}, fmt.Errorf("%w: state %d: expected %s, found %s", ErrTypeMismatch, int(state), want, vt)
	}
	return b.emitEffect(kind, Instruction{StateRef: state, index: index, Value: value}), nil
}

// ReadState reads state at an absolute sample index, modulo the state's
// buffer length.
func (b *Builder) ReadState(state StateRef, index ValueRef) (ValueRef, error) {
	return b.readState(IReadState, state, index)
}

// ReadStateRelative reads state at an offset relative to the current
// sample, modulo the state's buffer length.
func (b *Builder) ReadStateRelative(state StateRef, offset ValueRef) (ValueRef, error) {
	return b.readState(IReadStateRelative, state, offset)
}

// WriteState writes value into state at an absolute sample index, modulo
// the state's buffer length.
func (b *Builder) WriteState(state StateRef, index, value ValueRef) (InstructionRef, error) {
	return b.writeState(IWriteState, state, index, value)
}

// WriteStateRelative writes value into state at an offset relative to the
// current sample, modulo the state's buffer length.
func (b *Builder) WriteStateRelative(state StateRef, offset, value ValueRef) (InstructionRef, error) {
	return b.writeState(IWriteStateRelative, state, offset, value)
}

// ReadTimeSamples returns the current global sample index as an I64 scalar.
func (b *Builder) ReadTimeSamples() ValueRef {
	return b.emitValue(IReadTimeSamples, dtype.ScalarBufferType(dtype.I64), Instruction{})
}

// ReadTimeSeconds returns the current global time in seconds as an F64
// scalar, computed from the sample index and the context's sample rate.
func (b *Builder) ReadTimeSeconds() ValueRef {
	return b.emitValue(IReadTimeSeconds, dtype.ScalarBufferType(dtype.F64), Instruction{})
}
