package passes

import (
	"errors"
	"fmt"

	"waveling/internal/dtype"
	"waveling/internal/graph"
)

var (
	// ErrDeniedPrimitive is returned when a presented value's primitive is
	// on the unifier's denylist.
	ErrDeniedPrimitive = errors.New("passes: primitive not allowed here")
	// ErrPrimitiveMismatch is returned when a presented value's primitive
	// differs from the primitive already accepted.
	ErrPrimitiveMismatch = errors.New("passes: primitive mismatch")
	// ErrWidthMismatch is returned when a presented value's width cannot
	// broadcast against the width already accepted.
	ErrWidthMismatch = errors.New("passes: incompatible widths")
	// ErrZeroWidth is returned when a presented value has width zero.
	ErrZeroWidth = errors.New("passes: zero-width value")
)

// VectorUnifier accumulates a single broadcast-unified VectorDescriptor
// across a sequence of Present calls, the way a node's materialized Data
// inputs are folded into one output descriptor during type inference.
type VectorUnifier struct {
	denylist dtype.PrimitiveSet

	hasValue bool
	current  dtype.VectorDescriptor
	lastNode graph.NodeHandle
}

// NewVectorUnifier returns an empty unifier that rejects any primitive in
// denylist (which may be nil for no denylist).
func NewVectorUnifier(denylist dtype.PrimitiveSet) *VectorUnifier {
	return &VectorUnifier{denylist: denylist}
}

// HasValue reports whether any value has been successfully presented.
func (u *VectorUnifier) HasValue() bool { return u.hasValue }

// Current returns the unified descriptor and whether one exists.
func (u *VectorUnifier) Current() (dtype.VectorDescriptor, bool) { return u.current, u.hasValue }

// Present folds d (sourced from node) into the unifier. Every call rejects
// a denied primitive and a width below 1. On the first call, d is otherwise
// accepted. On later calls, d's primitive must match the accepted
// primitive, its width must be broadcastable against the current width,
// and the unified width becomes max(current, d.Width).
func (u *VectorUnifier) Present(node graph.NodeHandle, d dtype.VectorDescriptor) error {
	if u.denylist.Contains(d.Primitive) {
		return fmt.Errorf("%w: %s at node %d", ErrDeniedPrimitive, d.Primitive, node)
	}

	if u.hasValue && u.current.Primitive != d.Primitive {
		err := fmt.Errorf("%w: %s (node %d) vs %s (node %d)",
			ErrPrimitiveMismatch, u.current.Primitive, u.lastNode, d.Primitive, node)
		return err
	}

	if d.Width < 1 {
		return fmt.Errorf("%w: node %d", ErrZeroWidth, node)
	}

	if !u.hasValue {
		u.current = d
		u.hasValue = true
		u.lastNode = node
		return nil
	}

	if u.current.Width != d.Width && u.current.Width != 1 && d.Width != 1 {
		err := fmt.Errorf("%w: width %d (node %d) vs width %d (node %d)",
			ErrWidthMismatch, u.current.Width, u.lastNode, d.Width, node)
		return err
	}

	if d.Width > u.current.Width {
		u.current.Width = d.Width
	}
	u.lastNode = node
	return nil
}
