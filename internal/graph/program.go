package graph

import "waveling/internal/dtype"

// InputSlot describes one external input declared on a program.
type InputSlot struct {
	Name string
	Type dtype.VectorDescriptor
}

// OutputSlot describes one external output declared on a program.
type OutputSlot struct {
	Name string
	Type dtype.VectorDescriptor
}

// PropertySlot describes one host-settable scalar property. Properties are
// always F64 at the host boundary, matching the interpreter's property
// buffer.
type PropertySlot struct {
	Name string
}

// Type returns the property's scalar vector descriptor.
func (p PropertySlot) Type() dtype.VectorDescriptor { return dtype.Scalar(dtype.F64) }

// StateSlot describes one piece of persistent per-voice state: a vector of
// Type.Width lanes, each holding a ring buffer of Length samples.
type StateSlot struct {
	Name   string
	Type   dtype.VectorDescriptor
	Length int
}

// Program is a complete front-IR unit: the operation graph plus the
// append-only external interface tables referenced by ReadInput,
// WriteOutput, ReadProperty, ReadState and WriteState nodes. Slot indices
// are stable for the program's lifetime; tables only grow.
type Program struct {
	Graph *DiGraph

	Inputs     []InputSlot
	Outputs    []OutputSlot
	Properties []PropertySlot
	States     []StateSlot

	Start NodeHandle
	Final NodeHandle
}

// NewProgram returns a program with exactly one Start and one Final node
// already created; this is the only way to obtain those handles, so a
// Program can never end up with more than one of either.
func NewProgram() *Program {
	g := NewDiGraph()
	start := g.AddNode(Start())
	final := g.AddNode(Final())
	return &Program{Graph: g, Start: start, Final: final}
}

// AddInput declares a new external input and returns its stable index.
func (p *Program) AddInput(name string, t dtype.VectorDescriptor) int {
	p.Inputs = append(p.Inputs, InputSlot{Name: name, Type: t})
	return len(p.Inputs) - 1
}

// AddOutput declares a new external output and returns its stable index.
func (p *Program) AddOutput(name string, t dtype.VectorDescriptor) int {
	p.Outputs = append(p.Outputs, OutputSlot{Name: name, Type: t})
	return len(p.Outputs) - 1
}

// AddProperty declares a new host-settable property and returns its stable index.
func (p *Program) AddProperty(name string) int {
	p.Properties = append(p.Properties, PropertySlot{Name: name})
	return len(p.Properties) - 1
}

// AddState declares a new persistent state slot and returns its stable index.
func (p *Program) AddState(name string, t dtype.VectorDescriptor, length int) int {
	p.States = append(p.States, StateSlot{Name: name, Type: t, Length: length})
	return len(p.States) - 1
}

// AddOp is a convenience wrapper over Graph.AddNode.
func (p *Program) AddOp(op Op) NodeHandle { return p.Graph.AddNode(op) }
