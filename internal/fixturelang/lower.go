package fixturelang

import (
	"fmt"
	"regexp"
	"strconv"

	"waveling/internal/constant"
	"waveling/internal/diag"
	"waveling/internal/dtype"
	"waveling/internal/graph"
)

var typePattern = regexp.MustCompile(`^(bool|i32|i64|f32|f64)(x([0-9]+))?$`)

// parseType splits a type spelling like "f32x4" (or the width-1 shorthand
// "f64") into its primitive and width.
func parseType(raw string) (dtype.Primitive, int, error) {
	m := typePattern.FindStringSubmatch(raw)
	if m == nil {
		return 0, 0, fmt.Errorf("invalid type %q", raw)
	}
	prim, err := parsePrimitive(m[1])
	if err != nil {
		return 0, 0, err
	}
	width := 1
	if m[3] != "" {
		width, err = strconv.Atoi(m[3])
		if err != nil || width < 1 {
			return 0, 0, fmt.Errorf("invalid width in type %q", raw)
		}
	}
	return prim, width, nil
}

func parsePrimitive(raw string) (dtype.Primitive, error) {
	switch raw {
	case "bool":
		return dtype.Bool, nil
	case "i32":
		return dtype.I32, nil
	case "i64":
		return dtype.I64, nil
	case "f32":
		return dtype.F32, nil
	case "f64":
		return dtype.F64, nil
	default:
		return 0, fmt.Errorf("unknown primitive %q", raw)
	}
}

type scope struct {
	inputs     map[string]int
	outputs    map[string]int
	properties map[string]int
	states     map[string]int
}

type lowerer struct {
	prog  *graph.Program
	scope scope
	diags diag.Collection
}

// Lower walks f and builds the equivalent graph.Program, mirroring the
// distilled surface grammar's AST-walk-with-one-handler-per-node-kind
// lowering shape. Every declaration and statement that fails to resolve
// (unknown name, malformed type) pushes a diagnostic and is skipped rather
// than aborting the whole walk, so independent problems in the same source
// are all reported together.
func Lower(f *File) (*graph.Program, []diag.Diagnostic) {
	l := &lowerer{
		prog: graph.NewProgram(),
		scope: scope{
			inputs:     map[string]int{},
			outputs:    map[string]int{},
			properties: map[string]int{},
			states:     map[string]int{},
		},
	}

	for _, d := range f.Decls {
		l.lowerDecl(d)
	}
	if f.Stage != nil {
		for _, s := range f.Stage.Stmts {
			l.lowerStmt(s)
		}
	}

	if l.diags.Empty() {
		return l.prog, nil
	}
	return nil, l.diags.All()
}

func (l *lowerer) lowerDecl(d *Decl) {
	switch {
	case d.Input != nil:
		prim, width, err := parseType(d.Input.Type)
		if err != nil {
			l.diags.Pushf("input %s: %s", d.Input.Name, err)
			return
		}
		l.scope.inputs[d.Input.Name] = l.prog.AddInput(d.Input.Name, dtype.VectorDescriptor{Primitive: prim, Width: width})

	case d.Output != nil:
		prim, width, err := parseType(d.Output.Type)
		if err != nil {
			l.diags.Pushf("output %s: %s", d.Output.Name, err)
			return
		}
		l.scope.outputs[d.Output.Name] = l.prog.AddOutput(d.Output.Name, dtype.VectorDescriptor{Primitive: prim, Width: width})

	case d.Property != nil:
		// A property is always an F64 scalar at the host boundary
		// (graph.PropertySlot.Type is hardcoded); anything else declared
		// here is a fixture-source mistake, not a core type.
		if d.Property.Type != "f64" {
			l.diags.Pushf("property %s: declared type %q, properties are always f64", d.Property.Name, d.Property.Type)
		}
		l.scope.properties[d.Property.Name] = l.prog.AddProperty(d.Property.Name)

	case d.State != nil:
		prim, width, err := parseType(d.State.Type)
		if err != nil {
			l.diags.Pushf("state %s: %s", d.State.Name, err)
			return
		}
		length, err := strconv.Atoi(d.State.Length)
		if err != nil || length < 1 {
			l.diags.Pushf("state %s: invalid length %q", d.State.Name, d.State.Length)
			return
		}
		l.scope.states[d.State.Name] = l.prog.AddState(d.State.Name, dtype.VectorDescriptor{Primitive: prim, Width: width}, length)
	}
}

func (l *lowerer) lowerStmt(s *Stmt) {
	switch {
	case s.Write != nil:
		idx, ok := l.scope.outputs[s.Write.Output]
		if !ok {
			l.diags.Pushf("write: unknown output %q", s.Write.Output)
			return
		}
		v, ok := l.lowerExpr(s.Write.Value)
		if !ok {
			return
		}
		node := l.prog.AddOp(graph.WriteOutput(idx))
		l.connect(v, node, 0)

	case s.StateWrite != nil:
		idx, ok := l.scope.states[s.StateWrite.State]
		if !ok {
			l.diags.Pushf("let: unknown state %q", s.StateWrite.State)
			return
		}
		val, okVal := l.lowerExpr(s.StateWrite.Value)
		indexVal, okIdx := l.lowerExpr(s.StateWrite.Index)
		if !okVal || !okIdx {
			return
		}
		modulus := 0
		if s.StateWrite.Relative {
			modulus = 1
		}
		node := l.prog.AddOp(graph.WriteState(idx, modulus))
		l.connect(val, node, 0)
		l.connect(indexVal, node, 1)
	}
}

func (l *lowerer) connect(src, dst graph.NodeHandle, slot int) {
	if _, err := l.prog.Graph.Connect(src, dst, slot, nil); err != nil {
		l.diags.Pushf("connect: %s", err)
	}
}

// lowerExpr lowers the lowest-precedence level (+ and -), left to right.
func (l *lowerer) lowerExpr(e *Expr) (graph.NodeHandle, bool) {
	acc, ok := l.lowerMul(e.Left)
	if !ok {
		return 0, false
	}
	for _, op := range e.Ops {
		rhs, ok := l.lowerMul(op.Right)
		if !ok {
			return 0, false
		}
		kind := graph.OpAdd
		if op.Operator == "-" {
			kind = graph.OpSub
		}
		node := l.prog.AddOp(graph.BinOp(kind))
		l.connect(acc, node, 0)
		l.connect(rhs, node, 1)
		acc = node
	}
	return acc, true
}

// lowerMul lowers * and /, binding tighter than lowerExpr's + and -.
func (l *lowerer) lowerMul(m *MulExpr) (graph.NodeHandle, bool) {
	acc, ok := l.lowerUnary(m.Left)
	if !ok {
		return 0, false
	}
	for _, op := range m.Ops {
		rhs, ok := l.lowerUnary(op.Right)
		if !ok {
			return 0, false
		}
		kind := graph.OpMul
		if op.Operator == "/" {
			kind = graph.OpDiv
		}
		node := l.prog.AddOp(graph.BinOp(kind))
		l.connect(acc, node, 0)
		l.connect(rhs, node, 1)
		acc = node
	}
	return acc, true
}

func (l *lowerer) lowerUnary(u *UnaryExpr) (graph.NodeHandle, bool) {
	v, ok := l.lowerPrimary(u.Value)
	if !ok {
		return 0, false
	}
	if !u.Negate {
		return v, true
	}
	node := l.prog.AddOp(graph.Negate())
	l.connect(v, node, 0)
	return node, true
}

func (l *lowerer) lowerPrimary(p *PrimaryExpr) (graph.NodeHandle, bool) {
	switch {
	case p.Cast != nil:
		target, err := parsePrimitive(p.Cast.Target)
		if err != nil {
			l.diags.Pushf("cast: %s", err)
			return 0, false
		}
		v, ok := l.lowerExpr(p.Cast.Value)
		if !ok {
			return 0, false
		}
		node := l.prog.AddOp(graph.Cast(target))
		l.connect(v, node, 0)
		return node, true

	case p.Read != nil:
		idx, ok := l.scope.inputs[p.Read.Input]
		if !ok {
			l.diags.Pushf("read: unknown input %q", p.Read.Input)
			return 0, false
		}
		return l.prog.AddOp(graph.ReadInput(idx)), true

	case p.State != nil:
		idx, ok := l.scope.states[p.State.Name]
		if !ok {
			l.diags.Pushf("state: unknown state %q", p.State.Name)
			return 0, false
		}
		indexVal, ok := l.lowerExpr(p.State.Index)
		if !ok {
			return 0, false
		}
		modulus := 0
		if p.State.Relative {
			modulus = 1
		}
		node := l.prog.AddOp(graph.ReadState(idx, modulus))
		l.connect(indexVal, node, 0)
		return node, true

	case p.Property != nil:
		idx, ok := l.scope.properties[p.Property.Name]
		if !ok {
			l.diags.Pushf("property: unknown property %q", p.Property.Name)
			return 0, false
		}
		return l.prog.AddOp(graph.ReadProperty(idx)), true

	case p.Clock:
		return l.prog.AddOp(graph.Clock()), true

	case p.Sr:
		return l.prog.AddOp(graph.Sr()), true

	case p.Bool != nil:
		v, err := constant.NewBool([]bool{*p.Bool == "true"})
		if err != nil {
			l.diags.Pushf("bool literal: %s", err)
			return 0, false
		}
		return l.prog.AddOp(graph.ConstantOp(v)), true

	case p.Number != nil:
		f, err := strconv.ParseFloat(*p.Number, 64)
		if err != nil {
			l.diags.Pushf("number literal %q: %s", *p.Number, err)
			return 0, false
		}
		v, err := constant.NewF64([]float64{f})
		if err != nil {
			l.diags.Pushf("number literal: %s", err)
			return 0, false
		}
		return l.prog.AddOp(graph.ConstantOp(v)), true

	case p.Paren != nil:
		return l.lowerExpr(p.Paren)

	default:
		l.diags.Pushf("empty expression")
		return 0, false
	}
}
