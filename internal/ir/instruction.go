package ir

import (
	"fmt"

	"waveling/internal/dtype"
)

// InstructionKind is the closed set of instruction-IR operations.
type InstructionKind int

const (
	IAdd InstructionKind = iota
	ISub
	IMul
	IDiv
	IMin
	IMax
	IModPositive
	IPow
	IClamp
	INegate
	IToF32
	IToF64
	IFastSin
	IFastCos
	IFastTan
	IFastSinh
	IFastCosh
	IFastTanh
	IReadInput
	IWriteOutput
	IReadProperty
	IReadState
	IReadStateRelative
	IWriteState
	IWriteStateRelative
	IReadTimeSamples
	IReadTimeSeconds
)

var instructionKindNames = [...]string{
	"Add", "Sub", "Mul", "Div", "Min", "Max", "ModPositive", "Pow", "Clamp", "Negate",
	"ToF32", "ToF64",
	"FastSin", "FastCos", "FastTan", "FastSinh", "FastCosh", "FastTanh",
	"ReadInput", "WriteOutput", "ReadProperty",
	"ReadState", "ReadStateRelative", "WriteState", "WriteStateRelative",
	"ReadTimeSamples", "ReadTimeSeconds",
}

func (k InstructionKind) String() string {
	if int(k) < 0 || int(k) >= len(instructionKindNames) {
		return fmt.Sprintf("InstructionKind(%d)", int(k))
	}
	return instructionKindNames[k]
}

// IsBinary reports whether k takes exactly two value operands (L, R).
func (k InstructionKind) IsBinary() bool {
	switch k {
	case IAdd, ISub, IMul, IDiv, IMin, IMax, IModPositive, IPow:
		return true
	default:
		return false
	}
}

// IsUnary reports whether k takes exactly one value operand (X).
func (k InstructionKind) IsUnary() bool {
	switch k {
	case INegate, IToF32, IToF64, IFastSin, IFastCos, IFastTan, IFastSinh, IFastCosh, IFastTanh:
		return true
	default:
		return false
	}
}

// Instruction is one entry in a Context's schedule. Only the fields
// relevant to Kind are meaningful.
type Instruction struct {
	Kind InstructionKind
	Type dtype.BufferType // zero value for side-effecting instructions with no result

	L, R   ValueRef // binary operands
	X      ValueRef // unary operand
	Lo, Hi ValueRef // Clamp bounds

	index ValueRef // ReadState/WriteState index, or ReadStateRelative/WriteStateRelative offset
	Value ValueRef // WriteOutput/WriteState/WriteStateRelative value

	StateRef      StateRef
	ExternalIndex int // ReadInput/WriteOutput/ReadProperty table index
}

// Index returns the state index/offset operand for state instructions.
func (i Instruction) Index() ValueRef { return i.index }

func (i Instruction) String() string {
	switch i.Kind {
	case IReadInput, IReadProperty:
		return fmt.Sprintf("%s(%d)", i.Kind, i.ExternalIndex)
	case IWriteOutput:
		return fmt.Sprintf("%s(%d, %s)", i.Kind, i.ExternalIndex, i.Value)
	case IReadState, IReadStateRelative:
		return fmt.Sprintf("%s(state=%d, %s)", i.Kind, int(i.StateRef), i.index)
	case IWriteState, IWriteStateRelative:
		return fmt.Sprintf("%s(state=%d, %s, %s)", i.Kind, int(i.StateRef), i.index, i.Value)
	default:
		return i.Kind.String()
	}
}
