// ast.go — the closed set of Kantor AST nodes.
//
// Nodes are immutable value objects: construction and display only, no
// validation (all semantic checks happen in the evaluator). Decl and Expr
// are sealed by unexported marker methods so the evaluator's type switch
// covers every variant.
package kantor

import (
	"fmt"
	"strconv"
	"strings"
)

// Node is the common interface of all AST nodes.
type Node interface {
	// Pos returns the node's 1-based line and column.
	Pos() (line, col int)
	String() string
}

// Decl is a top-level declaration: a type definition or a set definition.
type Decl interface {
	Node
	declNode()
}

// Expr is an expression node.
type Expr interface {
	Node
	exprNode()
}

// Program is the ordered sequence of top-level declarations of one parse.
type Program struct {
	Decls []Decl
}

// pos is the embedded source position of a node.
type pos struct {
	Line, Col int
}

func (p pos) Pos() (int, int) { return p.Line, p.Col }

// TypeField is one (field-name, field-type-name) pair of a record shape.
type TypeField struct {
	Name     string
	TypeName string
}

// TypeDef declares a named record shape: type Name: Record(f: t, ...).
type TypeDef struct {
	pos
	Name   string
	Fields []TypeField
}

// SetDef binds a name to the value of a set expression, optionally
// validated against a declared type: let Name [: Type] = expr.
type SetDef struct {
	pos
	Name     string
	TypeName string // "" when no type annotation is present
	Expr     Expr
}

// Ident is a bare identifier.
type Ident struct {
	pos
	Name string
}

// NumberLit is an integer or floating literal, selected by whether the
// lexeme contained a fractional part.
type NumberLit struct {
	pos
	IsInt bool
	Int   int64
	Num   float64
}

// StringLit is a double-quoted string literal (decoded).
type StringLit struct {
	pos
	Value string
}

// SetLit is a brace-delimited literal set: {e1, e2, ...}.
type SetLit struct {
	pos
	Elems []Expr
}

// TupleLit is a parenthesized tuple: (e1, e2, ...). The empty tuple () is
// a TupleLit with no elements.
type TupleLit struct {
	pos
	Elems []Expr
}

// FieldAssign is one field: value entry of a record instance literal.
type FieldAssign struct {
	Name  string
	Value Expr
}

// RecordLit is a record instance: (name: expr, ...).
type RecordLit struct {
	pos
	Fields []FieldAssign
}

// SetOp is a binary set operation. Op is one of "|", "&", "*".
type SetOp struct {
	pos
	Left  Expr
	Op    string
	Right Expr
}

// Comprehension is a set comprehension { outs | vars of Source, pred }.
// Source is restricted to a bare identifier by the grammar. Pred may be nil.
type Comprehension struct {
	pos
	Outs   []Expr
	Vars   []string
	Source *Ident
	Pred   Expr
}

// Attr is attribute access: obj.Name.
type Attr struct {
	pos
	Obj  Expr
	Name string
}

// Cmp is a comparison. Op is one of "==", "!=", "<", "<=", ">", ">=".
type Cmp struct {
	pos
	Left  Expr
	Op    string
	Right Expr
}

func (*TypeDef) declNode() {}
func (*SetDef) declNode()  {}

func (*Ident) exprNode()         {}
func (*NumberLit) exprNode()     {}
func (*StringLit) exprNode()     {}
func (*SetLit) exprNode()        {}
func (*TupleLit) exprNode()      {}
func (*RecordLit) exprNode()     {}
func (*SetOp) exprNode()         {}
func (*Comprehension) exprNode() {}
func (*Attr) exprNode()          {}
func (*Cmp) exprNode()           {}

// --- debug display --------------------------------------------------------

func (d *TypeDef) String() string {
	parts := make([]string, len(d.Fields))
	for i, f := range d.Fields {
		parts[i] = f.Name + ": " + f.TypeName
	}
	return fmt.Sprintf("type %s: Record(%s)", d.Name, strings.Join(parts, ", "))
}

func (d *SetDef) String() string {
	if d.TypeName != "" {
		return fmt.Sprintf("let %s: %s = %s", d.Name, d.TypeName, d.Expr)
	}
	return fmt.Sprintf("let %s = %s", d.Name, d.Expr)
}

func (e *Ident) String() string { return e.Name }

func (e *NumberLit) String() string {
	if e.IsInt {
		return strconv.FormatInt(e.Int, 10)
	}
	return strconv.FormatFloat(e.Num, 'g', -1, 64)
}

func (e *StringLit) String() string { return strconv.Quote(e.Value) }

func (e *SetLit) String() string {
	return "{" + joinExprs(e.Elems) + "}"
}

func (e *TupleLit) String() string {
	return "(" + joinExprs(e.Elems) + ")"
}

func (e *RecordLit) String() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Name + ": " + f.Value.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func (e *SetOp) String() string {
	return fmt.Sprintf("(%s %s %s)", e.Left, e.Op, e.Right)
}

func (e *Comprehension) String() string {
	var b strings.Builder
	b.WriteString("{ ")
	if len(e.Outs) == 1 {
		b.WriteString(e.Outs[0].String())
	} else {
		b.WriteString("(" + joinExprs(e.Outs) + ")")
	}
	b.WriteString(" | ")
	if len(e.Vars) == 1 {
		b.WriteString(e.Vars[0])
	} else {
		b.WriteString("(" + strings.Join(e.Vars, ", ") + ")")
	}
	b.WriteString(" of ")
	b.WriteString(e.Source.Name)
	if e.Pred != nil {
		b.WriteString(", ")
		b.WriteString(e.Pred.String())
	}
	b.WriteString(" }")
	return b.String()
}

func (e *Attr) String() string { return e.Obj.String() + "." + e.Name }

func (e *Cmp) String() string {
	return fmt.Sprintf("(%s %s %s)", e.Left, e.Op, e.Right)
}

func joinExprs(es []Expr) string {
	parts := make([]string, len(es))
	for i, e := range es {
		parts[i] = e.String()
	}
	return strings.Join(parts, ", ")
}
