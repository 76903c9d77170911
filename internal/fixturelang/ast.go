// Package fixturelang implements a small textual format for declaring a
// program's inputs, outputs, properties and states plus a stage body of
// expressions, and lowering it into a graph.Program. It exists only to give
// the CLI, language server and fixture tests something concrete to parse;
// it carries none of the core compiler's own invariants.
package fixturelang

import "github.com/alecthomas/participle/v2/lexer"

// File is the root of a parsed fixture source: zero or more declarations
// followed by exactly one stage body.
type File struct {
	Decls []*Decl    `@@*`
	Stage *StageDecl `@@`
}

// Decl is one top-level declaration.
type Decl struct {
	Input    *InputDecl    `  @@`
	Output   *OutputDecl   `| @@`
	Property *PropertyDecl `| @@`
	State    *StateDecl    `| @@`
}

// InputDecl declares one external input, e.g. "input left: f32x1;".
type InputDecl struct {
	Pos  lexer.Position
	Name string `"input" @Ident ":"`
	Type string `@Ident ";"`
}

// OutputDecl declares one external output.
type OutputDecl struct {
	Pos  lexer.Position
	Name string `"output" @Ident ":"`
	Type string `@Ident ";"`
}

// PropertyDecl declares one host-settable property. Type must spell "f64";
// Lower reports a diagnostic for anything else, since a property is always
// an F64 scalar at the host boundary.
type PropertyDecl struct {
	Pos  lexer.Position
	Name string `"property" @Ident ":"`
	Type string `@Ident ";"`
}

// StateDecl declares one piece of persistent state, e.g. "state acc: f32x1[1];".
type StateDecl struct {
	Pos    lexer.Position
	Name   string `"state" @Ident ":"`
	Type   string `@Ident`
	Length string `"[" @Number "]" ";"`
}

// StageDecl is the program body: a sequence of write/state-write statements.
type StageDecl struct {
	Pos   lexer.Position
	Stmts []*Stmt `"stage" "{" @@* "}"`
}

// Stmt is one stage-body statement.
type Stmt struct {
	Write      *WriteStmt      `  @@`
	StateWrite *StateWriteStmt `| @@`
}

// WriteStmt assigns an expression's value to a declared output.
type WriteStmt struct {
	Pos    lexer.Position
	Output string `"write" @Ident "="`
	Value  *Expr  `@@ ";"`
}

// StateWriteStmt writes an expression's value into a declared state, at an
// absolute index ("let acc[0] = ...;") or a relative one ("let acc~[0] = ...;").
type StateWriteStmt struct {
	Pos      lexer.Position
	State    string `"let" @Ident`
	Relative bool   `[ @"~" ]`
	Index    *Expr  `"[" @@ "]" "="`
	Value    *Expr  `@@ ";"`
}

// Expr is the lowest-precedence level: a left-to-right chain of +/- over
// MulExpr terms.
type Expr struct {
	Pos  lexer.Position
	Left *MulExpr `@@`
	Ops  []*AddOp `{ @@ }`
}

// AddOp is one "+ term" or "- term" continuation of an Expr.
type AddOp struct {
	Operator string   `@("+" | "-")`
	Right    *MulExpr `@@`
}

// MulExpr is a left-to-right chain of * and / over UnaryExpr terms,
// binding tighter than AddOp.
type MulExpr struct {
	Left *UnaryExpr `@@`
	Ops  []*MulOp   `{ @@ }`
}

// MulOp is one "* term" or "/ term" continuation of a MulExpr.
type MulOp struct {
	Operator string     `@("*" | "/")`
	Right    *UnaryExpr `@@`
}

// UnaryExpr is an optional leading negation over a PrimaryExpr.
type UnaryExpr struct {
	Negate bool         `[ @"-" ]`
	Value  *PrimaryExpr `@@`
}

// PrimaryExpr is one leaf or parenthesized expression.
type PrimaryExpr struct {
	Pos      lexer.Position
	Cast     *CastExpr     `  @@`
	Read     *ReadExpr     `| @@`
	State    *StateExpr    `| @@`
	Property *PropertyExpr `| @@`
	Clock    bool          `| @"clock"`
	Sr       bool          `| @"sr"`
	Bool     *string       `| @("true" | "false")`
	Number   *string       `| @Number`
	Paren    *Expr         `| "(" @@ ")"`
}

// CastExpr is "cast<T>(expr)", lowering to a graph Cast node.
type CastExpr struct {
	Target string `"cast" "<" @Ident ">" "("`
	Value  *Expr  `@@ ")"`
}

// ReadExpr is "read <input-name>", lowering to a graph ReadInput node.
type ReadExpr struct {
	Input string `"read" @Ident`
}

// StateExpr is "state <name>[idx]" (absolute) or "state <name>~[idx]"
// (relative), lowering to a graph ReadState node.
type StateExpr struct {
	Name     string `"state" @Ident`
	Relative bool   `[ @"~" ]`
	Index    *Expr  `"[" @@ "]"`
}

// PropertyExpr is "property <name>", lowering to a graph ReadProperty node.
type PropertyExpr struct {
	Name string `"property" @Ident`
}
