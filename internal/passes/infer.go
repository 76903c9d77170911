package passes

import (
	"errors"
	"fmt"

	"waveling/internal/diag"
	"waveling/internal/dtype"
	"waveling/internal/graph"
)

// ErrTypeInference is the sentinel wrapped by InferTypes' failure when one
// or more nodes could not be resolved, even though no single diagnostic
// was raised against them (e.g. every source of a node was itself
// unresolved).
var ErrTypeInference = errors.New("passes: type inference did not resolve every node")

// nodeType is the per-node inference result: either resolved to a
// VectorDescriptor, resolved to Never (isNever, descriptor unused), or
// absent from the map entirely (uncheckable).
type nodeType struct {
	descriptor dtype.VectorDescriptor
	isNever    bool
}

// TypeMap is the result of InferTypes: the resolved type, if any, for
// every node that resolved.
type TypeMap struct {
	byNode map[graph.NodeHandle]nodeType
}

func newTypeMap() *TypeMap { return &TypeMap{byNode: make(map[graph.NodeHandle]nodeType)} }

func (m *TypeMap) set(h graph.NodeHandle, d dtype.VectorDescriptor) {
	m.byNode[h] = nodeType{descriptor: d}
}

func (m *TypeMap) setNever(h graph.NodeHandle) {
	m.byNode[h] = nodeType{isNever: true}
}

func (m *TypeMap) resolved(h graph.NodeHandle) (nodeType, bool) {
	nt, ok := m.byNode[h]
	return nt, ok
}

// Lookup returns the resolved descriptor for h and whether it resolved to
// a concrete (non-Never) type.
func (m *TypeMap) Lookup(h graph.NodeHandle) (dtype.VectorDescriptor, bool) {
	nt, ok := m.byNode[h]
	if !ok || nt.isNever {
		return dtype.VectorDescriptor{}, false
	}
	return nt.descriptor, true
}

// IsNever reports whether h resolved to the Never type.
func (m *TypeMap) IsNever(h graph.NodeHandle) bool {
	nt, ok := m.byNode[h]
	return ok && nt.isNever
}

// Len returns the number of nodes that resolved (to either a concrete type
// or Never).
func (m *TypeMap) Len() int { return len(m.byNode) }

// InferTypes walks the program's nodes in topological order and assigns
// each one a type, per the op's constraint (graph.TypeConstraint): a fixed
// type, a primitive substitution into the broadcast-unified input
// descriptor, or a lookup against the program's input/output/property/
// state tables. Diagnostics accumulate across the whole program and the
// pass fails once, at the end, rather than on the first violation.
func InferTypes(p *graph.Program) (*TypeMap, error) {
	order, err := p.Graph.TopologicalSort()
	if err != nil {
		return nil, err
	}

	tm := newTypeMap()
	var diags diag.Collection

	for _, h := range order {
		node := p.Graph.Node(h)
		constraint := node.Op.Constraint()

		if constraint.Kind == graph.ConstraintExact {
			if constraint.Exact == nil {
				tm.setNever(h)
			} else {
				tm.set(h, *constraint.Exact)
			}
			node.Type = exactPtr(tm, h)
			continue
		}

		descriptor := node.Op.Descriptor()
		mi := graph.Materialize(p.Graph, h, graph.ExcludeNode(p.Start))

		if len(descriptor.Inputs) < mi.Len() {
			diags.Push(diag.New("%v: found %d inputs, expected %d", node.Op, mi.Len(), len(descriptor.Inputs)).
				WithRef("sink", int(h)))
			continue
		}
		if len(descriptor.Inputs) > mi.Len() {
			diags.Push(diag.New("%v: needed %d inputs but only found %d", node.Op, len(descriptor.Inputs), mi.Len()).
				WithRef("sink", int(h)))
			continue
		}
		missingInput := false
		for i := 0; i < len(descriptor.Inputs); i++ {
			if len(mi.Slot(i)) == 0 {
				diags.Push(diag.New("%v: missing input %d", node.Op, i).WithRef("sink", int(h)))
				missingInput = true
				break
			}
		}
		if missingInput {
			continue
		}

		unifier := NewVectorUnifier(nil)
		uncheckable := 0
		sawNever := false
		sawData := false
		failed := false

		for slotIdx, edges := range mi.Slots {
			var denied dtype.PrimitiveSet
			kind := graph.InputData
			if slotIdx < len(descriptor.Inputs) {
				denied = descriptor.Inputs[slotIdx].Denied
				kind = descriptor.Inputs[slotIdx].Kind
			}
			for _, e := range edges {
				nt, known := tm.resolved(e.Src)
				if !known {
					uncheckable++
					continue
				}
				if nt.isNever {
					sawNever = true
					continue
				}
				if denied.Contains(nt.descriptor.Primitive) {
					diags.Push(diag.New("primitive %s is not allowed here", nt.descriptor.Primitive).
						WithRef("source", int(e.Src)).WithRef("sink", int(h)))
					failed = true
					continue
				}
				if kind == graph.InputData {
					sawData = true
					if uerr := unifier.Present(e.Src, nt.descriptor); uerr != nil {
						diags.Push(diag.New("%s", uerr).WithRef("sink", int(h)))
						failed = true
					}
				}
			}
		}

		if uncheckable > 0 || failed {
			continue
		}

		unified, hasUnified := unifier.Current()

		switch constraint.Kind {
		case graph.ConstraintPrimitive:
			if !hasUnified {
				diags.Push(diag.New("%v: missing input to determine width", node.Op).WithRef("sink", int(h)))
				continue
			}
			unified.Primitive = constraint.Primitive
			tm.set(h, unified)

		case graph.ConstraintNotPrimitive:
			if !hasUnified {
				if sawNever && !sawData {
					tm.setNever(h)
				} else {
					diags.Push(diag.New("%v: missing input", node.Op).WithRef("sink", int(h)))
					continue
				}
			} else {
				tm.set(h, unified)
			}

		case graph.ConstraintFromInput:
			tm.set(h, p.Inputs[constraint.TableIndex].Type)

		case graph.ConstraintFromProperty:
			tm.set(h, p.Properties[constraint.TableIndex].Type())

		case graph.ConstraintFromOutput:
			want := p.Outputs[constraint.TableIndex].Type
			if hasUnified && !unified.Equal(want) {
				diags.Push(diag.New("type mismatch: expected %s, found %s", want, unified).
					WithRef("declared output", int(h)))
				continue
			}
			tm.set(h, want)

		case graph.ConstraintFromState:
			want := p.States[constraint.TableIndex].Type
			if node.Op.Kind == graph.OpWriteState {
				if hasUnified && !unified.Equal(want) {
					diags.Push(diag.New("type mismatch: expected %s, found %s", want, unified).
						WithRef("declared state", int(h)))
					continue
				}
			}
			tm.set(h, want)
		}

		node.Type = exactPtr(tm, h)
	}

	if err := diags.Err(); err != nil {
		return nil, err
	}

	if tm.Len() != p.Graph.NumNodes() {
		return nil, fmt.Errorf("%w: %d of %d nodes resolved", ErrTypeInference, tm.Len(), p.Graph.NumNodes())
	}

	return tm, nil
}

func exactPtr(tm *TypeMap, h graph.NodeHandle) *dtype.VectorDescriptor {
	if d, ok := tm.Lookup(h); ok {
		return &d
	}
	return nil
}
