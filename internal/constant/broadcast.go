package constant

import (
	"fmt"

	"waveling/internal/dtype"
)

// numeric is the set of element types a fold can run over directly.
type numeric interface {
	~int32 | ~int64 | ~float32 | ~float64
}

// broadcastWidth validates a pair of widths per the broadcasting law (one
// operand of width 1 repeats to match the other; equal non-unit widths line
// up; anything else fails) and returns the output width.
func broadcastWidth(lw, rw int) (int, error) {
	if lw == 0 || rw == 0 {
		return 0, fmt.Errorf("constant: %w", ErrZeroWidthConstant)
	}
	if lw == rw || lw == 1 || rw == 1 {
		if lw > rw {
			return lw, nil
		}
		return rw, nil
	}
	return 0, fmt.Errorf("constant: %w: widths %d and %d", ErrIncompatibleWidths, lw, rw)
}

// pairwiseBroadcastWidth generalizes broadcastWidth to N operands: every
// pair must independently satisfy the broadcasting law. Used by Clamp's
// three operands.
func pairwiseBroadcastWidth(widths ...int) (int, error) {
	max := 0
	for _, w := range widths {
		if w == 0 {
			return 0, fmt.Errorf("constant: %w", ErrZeroWidthConstant)
		}
		if w > max {
			max = w
		}
	}
	for i := 0; i < len(widths); i++ {
		for j := i + 1; j < len(widths); j++ {
			wi, wj := widths[i], widths[j]
			if wi != wj && wi != 1 && wj != 1 {
				return 0, fmt.Errorf("constant: %w: widths %d and %d", ErrIncompatibleWidths, wi, wj)
			}
		}
	}
	return max, nil
}

// elementwiseBinary applies op to l and r broadcast to width, indexing each
// operand by k mod its own length.
func elementwiseBinary[T numeric](l, r []T, width int, op func(a, b T) T) []T {
	out := make([]T, width)
	for k := range out {
		out[k] = op(l[k%len(l)], r[k%len(r)])
	}
	return out
}

// elementwiseTernary applies op to x, lo, hi broadcast to width.
func elementwiseTernary[T numeric](x, lo, hi []T, width int, op func(x, lo, hi T) T) []T {
	out := make([]T, width)
	for k := range out {
		out[k] = op(x[k%len(x)], lo[k%len(lo)], hi[k%len(hi)])
	}
	return out
}

// binaryOps bundles the per-primitive element function for one fold. A nil
// entry means the fold is not supported for that primitive.
type binaryOps struct {
	i32 func(a, b int32) int32
	i64 func(a, b int64) int64
	f32 func(a, b float32) float32
	f64 func(a, b float64) float64
}

func applyBinary(name string, l, r *Constant, ops binaryOps) (*Constant, error) {
	if l.Primitive != r.Primitive {
		return nil, fmt.Errorf("constant: %s: %w", name, ErrIncompatibleTypes)
	}
	width, err := broadcastWidth(l.Width(), r.Width())
	if err != nil {
		return nil, fmt.Errorf("constant: %s: %w", name, err)
	}

	switch l.Primitive {
	case dtype.I32:
		if ops.i32 == nil {
			return nil, fmt.Errorf("constant: %s: %w for I32", name, ErrUnsupportedPrimitive)
		}
		return NewI32(elementwiseBinary(l.I32, r.I32, width, ops.i32))
	case dtype.I64:
		if ops.i64 == nil {
			return nil, fmt.Errorf("constant: %s: %w for I64", name, ErrUnsupportedPrimitive)
		}
		return NewI64(elementwiseBinary(l.I64, r.I64, width, ops.i64))
	case dtype.F32:
		if ops.f32 == nil {
			return nil, fmt.Errorf("constant: %s: %w for F32", name, ErrUnsupportedPrimitive)
		}
		return NewF32(elementwiseBinary(l.F32, r.F32, width, ops.f32))
	case dtype.F64:
		if ops.f64 == nil {
			return nil, fmt.Errorf("constant: %s: %w for F64", name, ErrUnsupportedPrimitive)
		}
		return NewF64(elementwiseBinary(l.F64, r.F64, width, ops.f64))
	default:
		return nil, fmt.Errorf("constant: %s: %w for Bool", name, ErrUnsupportedPrimitive)
	}
}
