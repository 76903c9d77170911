package interp

import (
	"waveling/internal/constant"
	"waveling/internal/dtype"
)

// stateStore backs one persistent state slot: a ring of BufferLength
// vectors, each VectorWidth lanes wide, indexed modularly (Euclidean, so a
// negative index still lands in range rather than panicking).
type stateStore struct {
	primitive dtype.Primitive
	width     int
	slots     []*constant.Constant
}

func newStateStore(t dtype.BufferType) *stateStore {
	length := t.BufferLength
	if length < 1 {
		length = 1
	}
	slots := make([]*constant.Constant, length)
	for i := range slots {
		slots[i] = zeroConstant(t.Primitive, t.VectorWidth)
	}
	return &stateStore{primitive: t.Primitive, width: t.VectorWidth, slots: slots}
}

func properMod(a, n int64) int64 {
	m := a % n
	if m < 0 {
		m += n
	}
	return m
}

// Get returns the vector stored at ring index i, reducing i modulo the
// ring's length.
func (s *stateStore) Get(i int64) *constant.Constant {
	return s.slots[properMod(i, int64(len(s.slots)))]
}

// Set stores v at ring index i, reducing i modulo the ring's length.
func (s *stateStore) Set(i int64, v *constant.Constant) {
	s.slots[properMod(i, int64(len(s.slots)))] = v
}

func zeroConstant(p dtype.Primitive, width int) *constant.Constant {
	if width < 1 {
		width = 1
	}
	var c *constant.Constant
	switch p {
	case dtype.Bool:
		c, _ = constant.NewBool(make([]bool, width))
	case dtype.I32:
		c, _ = constant.NewI32(make([]int32, width))
	case dtype.I64:
		c, _ = constant.NewI64(make([]int64, width))
	case dtype.F32:
		c, _ = constant.NewF32(make([]float32, width))
	default:
		c, _ = constant.NewF64(make([]float64, width))
	}
	return c
}
