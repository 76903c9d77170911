package constant

import (
	"fmt"
	"math"

	"waveling/internal/dtype"
)

// Add computes l + r with broadcasting. Rejects Bool.
func Add(l, r *Constant) (*Constant, error) {
	return applyBinary("add", l, r, binaryOps{
		i32: func(a, b int32) int32 { return a + b },
		i64: func(a, b int64) int64 { return a + b },
		f32: func(a, b float32) float32 { return a + b },
		f64: func(a, b float64) float64 { return a + b },
	})
}

// Sub computes l - r with broadcasting. Not commutative. Rejects Bool.
func Sub(l, r *Constant) (*Constant, error) {
	return applyBinary("sub", l, r, binaryOps{
		i32: func(a, b int32) int32 { return a - b },
		i64: func(a, b int64) int64 { return a - b },
		f32: func(a, b float32) float32 { return a - b },
		f64: func(a, b float64) float64 { return a - b },
	})
}

// Mul computes l * r with broadcasting. Rejects Bool.
func Mul(l, r *Constant) (*Constant, error) {
	return applyBinary("mul", l, r, binaryOps{
		i32: func(a, b int32) int32 { return a * b },
		i64: func(a, b int64) int64 { return a * b },
		f32: func(a, b float32) float32 { return a * b },
		f64: func(a, b float64) float64 { return a * b },
	})
}

// Div computes l / r with broadcasting. Not commutative. Rejects Bool.
func Div(l, r *Constant) (*Constant, error) {
	return applyBinary("div", l, r, binaryOps{
		i32: func(a, b int32) int32 { return a / b },
		i64: func(a, b int64) int64 { return a / b },
		f32: func(a, b float32) float32 { return a / b },
		f64: func(a, b float64) float64 { return a / b },
	})
}

// Rem computes a positive-biased remainder (Euclidean): the result always
// has the same sign as the divisor's magnitude convention, i.e. is in
// [0, |b|) for integers and [0, |b|) for floats, unlike Go's native %/Mod.
func Rem(l, r *Constant) (*Constant, error) {
	return applyBinary("rem", l, r, binaryOps{
		i32: func(a, b int32) int32 { return euclidModI32(a, b) },
		i64: func(a, b int64) int64 { return euclidModI64(a, b) },
		f32: func(a, b float32) float32 { return euclidModF32(a, b) },
		f64: func(a, b float64) float64 { return euclidModF64(a, b) },
	})
}

// Min computes the element-wise minimum with broadcasting.
func Min(l, r *Constant) (*Constant, error) {
	return applyBinary("min", l, r, binaryOps{
		i32: func(a, b int32) int32 { return minOrdered(a, b) },
		i64: func(a, b int64) int64 { return minOrdered(a, b) },
		f32: func(a, b float32) float32 { return minOrdered(a, b) },
		f64: func(a, b float64) float64 { return minOrdered(a, b) },
	})
}

// Max computes the element-wise maximum with broadcasting.
func Max(l, r *Constant) (*Constant, error) {
	return applyBinary("max", l, r, binaryOps{
		i32: func(a, b int32) int32 { return maxOrdered(a, b) },
		i64: func(a, b int64) int64 { return maxOrdered(a, b) },
		f32: func(a, b float32) float32 { return maxOrdered(a, b) },
		f64: func(a, b float64) float64 { return maxOrdered(a, b) },
	})
}

// Pow computes l ** r. Float primitives only; integrals reject pow.
func Pow(l, r *Constant) (*Constant, error) {
	return applyBinary("pow", l, r, binaryOps{
		f32: func(a, b float32) float32 { return float32(math.Pow(float64(a), float64(b))) },
		f64: func(a, b float64) float64 { return math.Pow(a, b) },
	})
}

// Negate computes -x, modeled as the binary broadcast pattern with the
// operand presented on both sides (so width handling is identical to a
// binary fold, even though there is only one real operand). Rejects Bool.
func Negate(x *Constant) (*Constant, error) {
	width := x.Width()
	if width == 0 {
		return nil, fmt.Errorf("constant: negate: %w", ErrZeroWidthConstant)
	}
	switch x.Primitive {
	case dtype.I32:
		return NewI32(elementwiseBinary(x.I32, x.I32, width, func(a, _ int32) int32 { return -a }))
	case dtype.I64:
		return NewI64(elementwiseBinary(x.I64, x.I64, width, func(a, _ int64) int64 { return -a }))
	case dtype.F32:
		return NewF32(elementwiseBinary(x.F32, x.F32, width, func(a, _ float32) float32 { return -a }))
	case dtype.F64:
		return NewF64(elementwiseBinary(x.F64, x.F64, width, func(a, _ float64) float64 { return -a }))
	default:
		return nil, fmt.Errorf("constant: negate: %w for Bool", ErrUnsupportedPrimitive)
	}
}

// Clamp computes max(lo, min(hi, x)) element-wise, broadcasting all three
// operands pairwise.
func Clamp(x, lo, hi *Constant) (*Constant, error) {
	if x.Primitive != lo.Primitive || x.Primitive != hi.Primitive {
		return nil, fmt.Errorf("constant: clamp: %w", ErrIncompatibleTypes)
	}
	width, err := pairwiseBroadcastWidth(x.Width(), lo.Width(), hi.Width())
	if err != nil {
		return nil, fmt.Errorf("constant: clamp: %w", err)
	}

	switch x.Primitive {
	case dtype.I32:
		return NewI32(elementwiseTernary(x.I32, lo.I32, hi.I32, width, clampOrdered[int32]))
	case dtype.I64:
		return NewI64(elementwiseTernary(x.I64, lo.I64, hi.I64, width, clampOrdered[int64]))
	case dtype.F32:
		return NewF32(elementwiseTernary(x.F32, lo.F32, hi.F32, width, clampOrdered[float32]))
	case dtype.F64:
		return NewF64(elementwiseTernary(x.F64, lo.F64, hi.F64, width, clampOrdered[float64]))
	default:
		return nil, fmt.Errorf("constant: clamp: %w for Bool", ErrUnsupportedPrimitive)
	}
}

func clampOrdered[T numeric](x, lo, hi T) T {
	return maxOrdered(lo, minOrdered(hi, x))
}

func minOrdered[T numeric](a, b T) T {
	if a < b {
		return a
	}
	return b
}

func maxOrdered[T numeric](a, b T) T {
	if a > b {
		return a
	}
	return b
}

func euclidModI32(a, b int32) int32 {
	m := a % b
	if m < 0 {
		if b < 0 {
			m -= b
		} else {
			m += b
		}
	}
	return m
}

func euclidModI64(a, b int64) int64 {
	m := a % b
	if m < 0 {
		if b < 0 {
			m -= b
		} else {
			m += b
		}
	}
	return m
}

func euclidModF32(a, b float32) float32 {
	m := float32(math.Mod(float64(a), float64(b)))
	if m < 0 {
		if b < 0 {
			m -= b
		} else {
			m += b
		}
	}
	return m
}

func euclidModF64(a, b float64) float64 {
	m := math.Mod(a, b)
	if m < 0 {
		if b < 0 {
			m -= b
		} else {
			m += b
		}
	}
	return m
}
