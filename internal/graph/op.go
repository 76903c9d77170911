// Package graph implements the front-IR: a directed graph of typed
// operation nodes with input-indexed edges, two synthetic boundary nodes
// (Start, Final), and the op descriptor table the structural passes walk.
package graph

import (
	"fmt"

	"waveling/internal/constant"
	"waveling/internal/dtype"
)

// OpKind is the closed set of operation tags. Op is modeled as a tagged
// struct rather than an interface hierarchy: the set is closed and small
// enough that a discriminant plus a handful of payload fields reads more
// directly than a type switch over implementations.
type OpKind int

const (
	OpStart OpKind = iota
	OpFinal
	OpConstant
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpNegate
	OpCast
	OpReadInput
	OpWriteOutput
	OpReadProperty
	OpReadState
	OpWriteState
	OpClock
	OpSr
)

var opKindNames = [...]string{
	"Start", "Final", "Constant", "Add", "Sub", "Mul", "Div", "Negate", "Cast",
	"ReadInput", "WriteOutput", "ReadProperty", "ReadState", "WriteState", "Clock", "Sr",
}

func (k OpKind) String() string {
	if int(k) < 0 || int(k) >= len(opKindNames) {
		return fmt.Sprintf("OpKind(%d)", int(k))
	}
	return opKindNames[k]
}

// IsBinOp reports whether k is one of the four arithmetic BinOp variants.
func (k OpKind) IsBinOp() bool {
	switch k {
	case OpAdd, OpSub, OpMul, OpDiv:
		return true
	default:
		return false
	}
}

// Op is the closed tagged union of operation variants. Only the fields
// relevant to Kind are meaningful; the rest are zero.
type Op struct {
	Kind OpKind

	// OpConstant
	Constant *constant.Constant
	// OpCast
	CastTarget dtype.Primitive
	// OpReadInput, OpWriteOutput, OpReadProperty
	Index int
	// OpReadState, OpWriteState
	State   int
	Modulus int
}

func (o Op) String() string {
	switch o.Kind {
	case OpConstant:
		return fmt.Sprintf("Constant(%v)", o.Constant)
	case OpCast:
		return fmt.Sprintf("Cast(%s)", o.CastTarget)
	case OpReadInput:
		return fmt.Sprintf("ReadInput(%d)", o.Index)
	case OpWriteOutput:
		return fmt.Sprintf("WriteOutput(%d)", o.Index)
	case OpReadProperty:
		return fmt.Sprintf("ReadProperty(%d)", o.Index)
	case OpReadState:
		return fmt.Sprintf("ReadState{state=%d, modulus=%d}", o.State, o.Modulus)
	case OpWriteState:
		return fmt.Sprintf("WriteState{state=%d, modulus=%d}", o.State, o.Modulus)
	default:
		return o.Kind.String()
	}
}

// Start builds the singleton Start op.
func Start() Op { return Op{Kind: OpStart} }

// Final builds the singleton Final op.
func Final() Op { return Op{Kind: OpFinal} }

// ConstantOp builds a Constant op wrapping a literal.
func ConstantOp(c *constant.Constant) Op { return Op{Kind: OpConstant, Constant: c} }

// BinOp builds one of Add/Sub/Mul/Div. kind must be one of those four.
func BinOp(kind OpKind) Op { return Op{Kind: kind} }

// Negate builds a Negate op.
func Negate() Op { return Op{Kind: OpNegate} }

// Cast builds a Cast op targeting the given primitive.
func Cast(target dtype.Primitive) Op { return Op{Kind: OpCast, CastTarget: target} }

// ReadInput builds a ReadInput op for external input index i.
func ReadInput(i int) Op { return Op{Kind: OpReadInput, Index: i} }

// WriteOutput builds a WriteOutput op for external output index i.
func WriteOutput(i int) Op { return Op{Kind: OpWriteOutput, Index: i} }

// ReadProperty builds a ReadProperty op for external property index i.
func ReadProperty(i int) Op { return Op{Kind: OpReadProperty, Index: i} }

// ReadState builds a ReadState op.
func ReadState(state, modulus int) Op { return Op{Kind: OpReadState, State: state, Modulus: modulus} }

// WriteState builds a WriteState op.
func WriteState(state, modulus int) Op {
	return Op{Kind: OpWriteState, State: state, Modulus: modulus}
}

// Clock builds the Clock op.
func Clock() Op { return Op{Kind: OpClock} }

// Sr builds the sample-rate op.
func Sr() Op { return Op{Kind: OpSr} }

// ImplicitEdgeKind classifies which synthetic boundary edge, if any, the
// insert-start-final-edges pass should wire for a node with this op.
type ImplicitEdgeKind int

const (
	ImplicitNone ImplicitEdgeKind = iota
	ImplicitFromStart
	ImplicitToFinal
)

// InputKind distinguishes inputs that feed the node's broadcast-unified
// output type (Data) from inputs that are pure ordering/scheduling
// dependencies whose own primitive is still validated against the
// denylist, but whose type never drives the node's own output (PureDependency).
type InputKind int

const (
	InputData InputKind = iota
	InputPureDependency
)

// InputDescriptor describes one declared input slot of an op.
type InputDescriptor struct {
	Kind   InputKind
	Denied dtype.PrimitiveSet
}

// OpDescriptor is the static, declarative shape/edge table entry for one
// OpKind: whether it's commutative, what implicit boundary edge it needs,
// and its declared input slots. Both the start/final pass and the
// type-inference pass consume this table instead of branching on the op
// kind themselves.
type OpDescriptor struct {
	Commutative   bool
	ImplicitEdges ImplicitEdgeKind
	Inputs        []InputDescriptor
}

var denyBool = dtype.NewPrimitiveSet(dtype.Bool)
var denyNonIntegral = dtype.NewPrimitiveSet(dtype.Bool, dtype.F32, dtype.F64)

// Descriptor returns the static shape/edge rules for k.
func (k OpKind) Descriptor() OpDescriptor {
	switch k {
	case OpStart, OpFinal:
		return OpDescriptor{ImplicitEdges: ImplicitNone}
	case OpConstant, OpClock, OpSr:
		return OpDescriptor{ImplicitEdges: ImplicitFromStart}
	case OpReadInput, OpReadProperty:
		return OpDescriptor{ImplicitEdges: ImplicitFromStart}
	case OpAdd, OpMul:
		return OpDescriptor{
			Commutative:   true,
			ImplicitEdges: ImplicitNone,
			Inputs: []InputDescriptor{
				{Kind: InputData, Denied: denyBool},
				{Kind: InputData, Denied: denyBool},
			},
		}
	case OpSub, OpDiv:
		return OpDescriptor{
			ImplicitEdges: ImplicitNone,
			Inputs: []InputDescriptor{
				{Kind: InputData, Denied: denyBool},
				{Kind: InputData, Denied: denyBool},
			},
		}
	case OpNegate:
		return OpDescriptor{
			ImplicitEdges: ImplicitNone,
			Inputs:        []InputDescriptor{{Kind: InputData, Denied: denyBool}},
		}
	case OpCast:
		return OpDescriptor{
			ImplicitEdges: ImplicitNone,
			Inputs:        []InputDescriptor{{Kind: InputData}},
		}
	case OpWriteOutput:
		return OpDescriptor{
			ImplicitEdges: ImplicitToFinal,
			Inputs:        []InputDescriptor{{Kind: InputData}},
		}
	case OpReadState:
		return OpDescriptor{
			ImplicitEdges: ImplicitNone,
			Inputs:        []InputDescriptor{{Kind: InputPureDependency, Denied: denyNonIntegral}},
		}
	case OpWriteState:
		return OpDescriptor{
			ImplicitEdges: ImplicitToFinal,
			Inputs: []InputDescriptor{
				{Kind: InputData},
				{Kind: InputPureDependency, Denied: denyNonIntegral},
			},
		}
	default:
		return OpDescriptor{ImplicitEdges: ImplicitNone}
	}
}

// Descriptor is a convenience accessor for o.Kind.Descriptor().
func (o Op) Descriptor() OpDescriptor { return o.Kind.Descriptor() }
