package graph

import "waveling/internal/dtype"

// ConstraintKind is the closed set of ways an op derives its output type
// from its inputs and the program's external interface tables. Kept
// declarative and table-driven rather than branched in the inference pass
// itself, per the op descriptor table in op.go.
type ConstraintKind int

const (
	// ConstraintExact fixes the op's type regardless of its inputs.
	ConstraintExact ConstraintKind = iota
	// ConstraintPrimitive replaces the unified descriptor's primitive
	// with a fixed one, keeping the unified width (Cast).
	ConstraintPrimitive
	// ConstraintNotPrimitive uses the unified descriptor as-is; the
	// denylist on the op's inputs already rules out the forbidden primitive.
	ConstraintNotPrimitive
	// ConstraintFromInput ignores the unified descriptor and looks up
	// Program.Inputs[TableIndex].
	ConstraintFromInput
	// ConstraintFromOutput cross-checks the unified descriptor against
	// Program.Outputs[TableIndex] and diagnoses a mismatch.
	ConstraintFromOutput
	// ConstraintFromProperty ignores the unified descriptor and looks up
	// the scalar type of Program.Properties[TableIndex].
	ConstraintFromProperty
	// ConstraintFromState looks up Program.States[TableIndex].Type for a
	// read, or cross-checks the unified descriptor against it for a write.
	ConstraintFromState
)

// TypeConstraint is the per-op rule the type inference pass applies to the
// unified input descriptor (or ignores it entirely, for rules that read
// the program's external interface tables instead).
type TypeConstraint struct {
	Kind ConstraintKind

	// ConstraintExact
	Exact            *dtype.VectorDescriptor // nil means Never
	CaresAboutInputs bool

	// ConstraintPrimitive
	Primitive dtype.Primitive

	// ConstraintFromInput, ConstraintFromOutput, ConstraintFromProperty, ConstraintFromState
	TableIndex int
}

// Constraint returns the type-inference rule for o. Panics-free: unknown
// kinds fall back to ConstraintNotPrimitive, which uses the unified
// descriptor unchanged.
func (o Op) Constraint() TypeConstraint {
	switch o.Kind {
	case OpStart, OpFinal:
		return TypeConstraint{Kind: ConstraintExact, Exact: nil, CaresAboutInputs: false}
	case OpConstant:
		d, _ := o.Constant.Descriptor()
		return TypeConstraint{Kind: ConstraintExact, Exact: &d, CaresAboutInputs: false}
	case OpClock:
		d := dtype.Scalar(dtype.I64)
		return TypeConstraint{Kind: ConstraintExact, Exact: &d, CaresAboutInputs: false}
	case OpSr:
		d := dtype.Scalar(dtype.I64)
		return TypeConstraint{Kind: ConstraintExact, Exact: &d, CaresAboutInputs: false}
	case OpReadInput:
		return TypeConstraint{Kind: ConstraintFromInput, TableIndex: o.Index}
	case OpWriteOutput:
		return TypeConstraint{Kind: ConstraintFromOutput, TableIndex: o.Index}
	case OpReadProperty:
		return TypeConstraint{Kind: ConstraintFromProperty, TableIndex: o.Index}
	case OpReadState, OpWriteState:
		return TypeConstraint{Kind: ConstraintFromState, TableIndex: o.State}
	case OpCast:
		return TypeConstraint{Kind: ConstraintPrimitive, Primitive: o.CastTarget}
	default:
		return TypeConstraint{Kind: ConstraintNotPrimitive}
	}
}
