// Package diag implements the accumulating diagnostic surface used by every
// structural pass over the graph IR: a Diagnostic carries a message, an
// optional source location (a stack of frames, outermost first), and zero or
// more node references annotating specific graph nodes by id.
package diag

import "fmt"

// Frame is one stack frame of a source location, e.g. the call site inside
// lowering that produced a node, plus the caller that invoked lowering.
// Frames are stored outermost-first; rendering indents each frame deeper.
type Frame struct {
	File     string
	Line     int
	Column   int
	Function string
	Source   string // the rendered source line, if available
}

// SourceLocation is an ordered stack of frames, outermost first.
type SourceLocation struct {
	Frames []Frame
}

// NewSourceLocation builds a location from frames in outermost-first order.
func NewSourceLocation(frames ...Frame) *SourceLocation {
	return &SourceLocation{Frames: frames}
}

// NodeRef annotates a diagnostic with a specific graph node. NodeID is the
// node's stable handle rendered as an int so this package does not need to
// import the graph package.
type NodeRef struct {
	Reason string
	NodeID int
	Loc    *SourceLocation
}

// Diagnostic is a single accumulated message.
type Diagnostic struct {
	Message string
	Loc     *SourceLocation
	Refs    []NodeRef
}

// WithRef returns a copy of d with an additional node reference.
func (d Diagnostic) WithRef(reason string, nodeID int) Diagnostic {
	d.Refs = append(append([]NodeRef{}, d.Refs...), NodeRef{Reason: reason, NodeID: nodeID})
	return d
}

func (d Diagnostic) String() string {
	return d.Message
}

// New builds a bare diagnostic with no location or refs.
func New(format string, args ...any) Diagnostic {
	return Diagnostic{Message: fmt.Sprintf(format, args...)}
}
