package interp

import (
	"errors"
	"fmt"

	"waveling/internal/constant"
	"waveling/internal/dtype"
)

// ErrUnsupportedPrimitive is returned when an interpreter-only operation
// (a cast or a trig approximation) is applied to a primitive it does not
// support. The builder already rejects the illegal combinations the graph
// can express; this only guards against a malformed Context built outside
// the normal Builder path.
var ErrUnsupportedPrimitive = errors.New("interp: unsupported primitive")

// applyUnaryFloat maps f over every lane of c, which must be F32 or F64.
func applyUnaryFloat(c *constant.Constant, f func(float64) float64) (*constant.Constant, error) {
	switch c.Primitive {
	case dtype.F32:
		out := make([]float32, len(c.F32))
		for i, v := range c.F32 {
			out[i] = float32(f(float64(v)))
		}
		return constant.NewF32(out)
	case dtype.F64:
		out := make([]float64, len(c.F64))
		for i, v := range c.F64 {
			out[i] = f(v)
		}
		return constant.NewF64(out)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedPrimitive, c.Primitive)
	}
}

// castTo converts every lane of c to target, which must be F32 or F64. The
// source may be any primitive, matching Builder.cast's lack of a source
// denylist.
func castTo(c *constant.Constant, target dtype.Primitive) (*constant.Constant, error) {
	widened := make([]float64, c.Width())
	switch c.Primitive {
	case dtype.Bool:
		for i, v := range c.Bool {
			if v {
				widened[i] = 1
			}
		}
	case dtype.I32:
		for i, v := range c.I32 {
			widened[i] = float64(v)
		}
	case dtype.I64:
		for i, v := range c.I64 {
			widened[i] = float64(v)
		}
	case dtype.F32:
		for i, v := range c.F32 {
			widened[i] = float64(v)
		}
	case dtype.F64:
		copy(widened, c.F64)
	}

	switch target {
	case dtype.F32:
		out := make([]float32, len(widened))
		for i, v := range widened {
			out[i] = float32(v)
		}
		return constant.NewF32(out)
	case dtype.F64:
		return constant.NewF64(widened)
	default:
		return nil, fmt.Errorf("%w: cast target %s", ErrUnsupportedPrimitive, target)
	}
}

// scalarInt reads a width-1 integral constant as an int64.
func scalarInt(c *constant.Constant) (int64, error) {
	switch c.Primitive {
	case dtype.I32:
		if len(c.I32) != 1 {
			return 0, fmt.Errorf("interp: expected scalar I32 index, got width %d", c.Width())
		}
		return int64(c.I32[0]), nil
	case dtype.I64:
		if len(c.I64) != 1 {
			return 0, fmt.Errorf("interp: expected scalar I64 index, got width %d", c.Width())
		}
		return c.I64[0], nil
	default:
		return 0, fmt.Errorf("%w: index must be I32 or I64, got %s", ErrUnsupportedPrimitive, c.Primitive)
	}
}

// vectorF32 returns a copy of c's lanes, which must be F32.
func vectorF32(c *constant.Constant) ([]float32, error) {
	if c.Primitive != dtype.F32 {
		return nil, fmt.Errorf("interp: expected F32, got %s", c.Primitive)
	}
	out := make([]float32, len(c.F32))
	copy(out, c.F32)
	return out, nil
}
