package ir

import (
	"errors"
	"fmt"

	"waveling/internal/constant"
)

// ErrInvalidBlockSize is returned when a Context is constructed with a
// block size that is not a power of two, or is less than one.
var ErrInvalidBlockSize = errors.New("ir: block size must be a power of two >= 1")

// Context is a complete, lowered program: the flat arenas backing every
// handle type, the external interface tables, and the ordered schedule of
// instructions to run once per sample.
type Context struct {
	constants    Arena[*constant.Constant]
	values       Arena[ValueDescriptor]
	instructions Arena[Instruction]

	schedule []InstructionRef

	Inputs     []InputDescriptor
	Outputs    []OutputDescriptor
	Properties []PropertyDescriptor
	States     []StateDescriptor

	BlockSize  int
	SampleRate int64
}

// NewContext validates blockSize and sampleRate and returns an empty
// Context. blockSize must be a power of two no smaller than one.
func NewContext(blockSize int, sampleRate int64) (*Context, error) {
	if blockSize < 1 || blockSize&(blockSize-1) != 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidBlockSize, blockSize)
	}
	if sampleRate < 1 {
		return nil, fmt.Errorf("ir: sample rate must be >= 1, got %d", sampleRate)
	}
	return &Context{BlockSize: blockSize, SampleRate: sampleRate}, nil
}

// Schedule returns the ordered list of instructions to execute once per
// sample, in program order.
func (c *Context) Schedule() []InstructionRef { return c.schedule }

// Value returns the descriptor for r.
func (c *Context) Value(r ValueRef) (ValueDescriptor, bool) { return c.values.Get(r.h) }

// Instruction returns the instruction for r.
func (c *Context) Instruction(r InstructionRef) (Instruction, bool) { return c.instructions.Get(r.h) }

// Constant returns the literal for r.
func (c *Context) Constant(r ConstantRef) (*constant.Constant, bool) { return c.constants.Get(r.h) }

// NumInstructions returns the number of instructions ever allocated
// (including any not present in Schedule, though the builder never leaves
// orphans in normal operation).
func (c *Context) NumInstructions() int { return c.instructions.Len() }
