// Package constant implements homogeneous constant vectors and their
// broadcasting element-wise arithmetic, per spec §4.1: one operand of width 1
// broadcasts against a wider operand; equal non-unit widths line up;
// mismatched non-unit widths, mismatched primitives, and zero-width operands
// all fail.
package constant

import (
	"errors"
	"fmt"

	"waveling/internal/dtype"
)

// Sentinel errors for the three ways a fold can fail to apply, plus
// unsupported-operation errors for primitives an op does not support.
var (
	ErrIncompatibleWidths    = errors.New("constant: incompatible widths")
	ErrIncompatibleTypes     = errors.New("constant: incompatible primitives")
	ErrZeroWidthConstant     = errors.New("constant: zero-width constant")
	ErrUnsupportedPrimitive  = errors.New("constant: operation not supported for primitive")
)

// Constant is a tagged, homogeneous vector of one primitive. Exactly one of
// the typed slices is populated, selected by Primitive.
type Constant struct {
	Primitive dtype.Primitive
	Bool      []bool
	I32       []int32
	I64       []int64
	F32       []float32
	F64       []float64
}

// Width returns the number of elements, regardless of primitive.
func (c *Constant) Width() int {
	switch c.Primitive {
	case dtype.Bool:
		return len(c.Bool)
	case dtype.I32:
		return len(c.I32)
	case dtype.I64:
		return len(c.I64)
	case dtype.F32:
		return len(c.F32)
	case dtype.F64:
		return len(c.F64)
	default:
		return 0
	}
}

// Descriptor returns the vector descriptor this constant presents, or an
// error if it's empty (the creator rejects this, but callers that received a
// Constant through some other path should still check).
func (c *Constant) Descriptor() (dtype.VectorDescriptor, error) {
	w := c.Width()
	if w < 1 {
		return dtype.VectorDescriptor{}, fmt.Errorf("constant: %w", ErrZeroWidthConstant)
	}
	return dtype.VectorDescriptor{Primitive: c.Primitive, Width: w}, nil
}

func newConstant(primitive dtype.Primitive, width int, set func(*Constant)) (*Constant, error) {
	if width < 1 {
		return nil, fmt.Errorf("constant: %w", ErrZeroWidthConstant)
	}
	c := &Constant{Primitive: primitive}
	set(c)
	return c, nil
}

// NewBool builds a Bool constant. Rejects an empty slice.
func NewBool(values []bool) (*Constant, error) {
	return newConstant(dtype.Bool, len(values), func(c *Constant) { c.Bool = values })
}

// NewI32 builds an I32 constant. Rejects an empty slice.
func NewI32(values []int32) (*Constant, error) {
	return newConstant(dtype.I32, len(values), func(c *Constant) { c.I32 = values })
}

// NewI64 builds an I64 constant. Rejects an empty slice.
func NewI64(values []int64) (*Constant, error) {
	return newConstant(dtype.I64, len(values), func(c *Constant) { c.I64 = values })
}

// NewF32 builds an F32 constant. Rejects an empty slice.
func NewF32(values []float32) (*Constant, error) {
	return newConstant(dtype.F32, len(values), func(c *Constant) { c.F32 = values })
}

// NewF64 builds an F64 constant. Rejects an empty slice.
func NewF64(values []float64) (*Constant, error) {
	return newConstant(dtype.F64, len(values), func(c *Constant) { c.F64 = values })
}
