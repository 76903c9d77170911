// Package lower translates a type-checked graph.Program into the
// equivalent ir.Context, the step the pipeline runs between the
// structural passes and the interpreter. It is not part of the core
// compiler's specified algorithms; it exists so a front-end (the CLI, the
// language server, the fixture language) has a concrete way to turn a
// graph it built into something interp.Interpreter can run.
package lower

import (
	"errors"
	"fmt"

	"waveling/internal/constant"
	"waveling/internal/dtype"
	"waveling/internal/graph"
	"waveling/internal/ir"
	"waveling/internal/passes"
)

var (
	// ErrUnsupportedCastTarget is returned when a graph Cast node targets a
	// primitive the instruction set has no cast instruction for. The
	// instruction IR only defines ToF32/ToF64 (spec.md's instruction
	// table); casts to Bool/I32/I64 exist at the graph level (Cast accepts
	// any primitive) but cannot be lowered.
	ErrUnsupportedCastTarget = errors.New("lower: instruction set has no cast to this primitive")
	// ErrMissingOperand is returned when a node has no resolved source on
	// an input slot FromProgram needs a value from. InferTypes having
	// already succeeded on prog makes this an internal inconsistency
	// between the type map and the graph it was computed from.
	ErrMissingOperand = errors.New("lower: node has no resolved operand on a required input")
)

// FromProgram walks prog's graph in topological order and emits the
// equivalent back-IR instruction sequence into a fresh Context sized for
// blockSize samples per block at sampleRate Hz. tm must be the TypeMap
// InferTypes returned for prog: every node it resolved to a concrete
// (non-Never) type gets exactly one ir.ValueRef, recorded by node handle
// so its consumers can look it up. Nodes InferTypes resolved to Never
// (Start, Final, and any node only reachable from them) produce no
// instruction.
func FromProgram(prog *graph.Program, tm *passes.TypeMap, blockSize int, sampleRate int64) (*ir.Context, error) {
	ctx, err := ir.NewContext(blockSize, sampleRate)
	if err != nil {
		return nil, err
	}
	b := ir.NewBuilder(ctx)

	for _, in := range prog.Inputs {
		b.AddInput(in.Name, vectorToBuffer(in.Type))
	}
	for _, out := range prog.Outputs {
		b.AddOutput(out.Name, vectorToBuffer(out.Type))
	}
	for _, p := range prog.Properties {
		b.AddProperty(p.Name)
	}
	for _, s := range prog.States {
		b.AddState(s.Name, dtype.BufferType{
			Primitive:    s.Type.Primitive,
			VectorWidth:  s.Type.Width,
			BufferLength: s.Length,
		})
	}

	order, err := prog.Graph.TopologicalSort()
	if err != nil {
		return nil, err
	}

	values := make(map[graph.NodeHandle]ir.ValueRef, prog.Graph.NumNodes())

	resolve := func(h graph.NodeHandle) (ir.ValueRef, error) {
		v, ok := values[h]
		if !ok {
			return ir.ValueRef{}, fmt.Errorf("%w: node %d", ErrMissingOperand, h)
		}
		return v, nil
	}

	// sum folds every edge feeding one input slot into a chain of Adds,
	// realizing the graph's "multiple sources into one input slot means
	// implicit summation" rule as an explicit instruction sequence.
	sum := func(edges []graph.Edge) (ir.ValueRef, error) {
		if len(edges) == 0 {
			return ir.ValueRef{}, ErrMissingOperand
		}
		acc, err := resolve(edges[0].Src)
		if err != nil {
			return ir.ValueRef{}, err
		}
		for _, e := range edges[1:] {
			v, err := resolve(e.Src)
			if err != nil {
				return ir.ValueRef{}, err
			}
			if acc, err = b.Add(acc, v); err != nil {
				return ir.ValueRef{}, err
			}
		}
		return acc, nil
	}

	for _, h := range order {
		if h == prog.Start || h == prog.Final || tm.IsNever(h) {
			continue
		}

		node := prog.Graph.Node(h)
		mi := graph.Materialize(prog.Graph, h, graph.ExcludeNode(prog.Start))
		operand := func(slot int) (ir.ValueRef, error) { return sum(mi.Slot(slot)) }

		v, err := lowerNode(b, sampleRate, node.Op, operand)
		if err != nil {
			return nil, fmt.Errorf("lower: node %d (%s): %w", h, node.Op, err)
		}
		if v != nil {
			values[h] = *v
		}
	}

	return ctx, nil
}

// lowerNode emits the instruction(s) for one graph node and returns the
// value it produces, or nil for an effect-only op (WriteOutput, WriteState).
func lowerNode(b *ir.Builder, sampleRate int64, op graph.Op, operand func(int) (ir.ValueRef, error)) (*ir.ValueRef, error) {
	switch op.Kind {
	case graph.OpConstant:
		v, err := b.EmitConstant(op.Constant)
		return ref(v, err)

	case graph.OpClock:
		return ref(b.ReadTimeSamples(), nil)

	case graph.OpSr:
		c, err := constant.NewI64([]int64{sampleRate})
		if err != nil {
			return nil, err
		}
		v, err := b.EmitConstant(c)
		return ref(v, err)

	case graph.OpAdd, graph.OpSub, graph.OpMul, graph.OpDiv:
		l, err := operand(0)
		if err != nil {
			return nil, err
		}
		r, err := operand(1)
		if err != nil {
			return nil, err
		}
		switch op.Kind {
		case graph.OpAdd:
			return ref(b.Add(l, r))
		case graph.OpSub:
			return ref(b.Sub(l, r))
		case graph.OpMul:
			return ref(b.Mul(l, r))
		default:
			return ref(b.Div(l, r))
		}

	case graph.OpNegate:
		x, err := operand(0)
		if err != nil {
			return nil, err
		}
		return ref(b.Negate(x))

	case graph.OpCast:
		x, err := operand(0)
		if err != nil {
			return nil, err
		}
		switch op.CastTarget {
		case dtype.F32:
			return ref(b.ToF32(x))
		case dtype.F64:
			return ref(b.ToF64(x))
		default:
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedCastTarget, op.CastTarget)
		}

	case graph.OpReadInput:
		return ref(b.ReadInput(op.Index))

	case graph.OpWriteOutput:
		v, err := operand(0)
		if err != nil {
			return nil, err
		}
		_, err = b.WriteOutput(op.Index, v)
		return nil, err

	case graph.OpReadProperty:
		return ref(b.ReadProperty(op.Index))

	case graph.OpReadState:
		idx, err := operand(0)
		if err != nil {
			return nil, err
		}
		if op.Modulus != 0 {
			return ref(b.ReadStateRelative(ir.StateRef(op.State), idx))
		}
		return ref(b.ReadState(ir.StateRef(op.State), idx))

	case graph.OpWriteState:
		value, err := operand(0)
		if err != nil {
			return nil, err
		}
		idx, err := operand(1)
		if err != nil {
			return nil, err
		}
		if op.Modulus != 0 {
			_, err = b.WriteStateRelative(ir.StateRef(op.State), idx, value)
		} else {
			_, err = b.WriteState(ir.StateRef(op.State), idx, value)
		}
		return nil, err

	default:
		return nil, fmt.Errorf("lower: unhandled op kind %s", op.Kind)
	}
}

func ref(v ir.ValueRef, err error) (*ir.ValueRef, error) {
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func vectorToBuffer(v dtype.VectorDescriptor) dtype.BufferType {
	return dtype.BufferType{Primitive: v.Primitive, VectorWidth: v.Width, BufferLength: 1}
}
