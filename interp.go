// interp.go — public API surface of the Kantor interpreter.
//
// An Interp owns two disjoint namespaces: the value environment (set
// bindings made by `let`) and the type namespace (shapes declared by
// `type`). Declarations are processed strictly sequentially; an error in
// declaration k aborts the program run, but bindings made by declarations
// 1..k-1 remain. Drivers that want to continue past failures (the REPL)
// call EvalDecl per declaration instead of EvalProgram.
package kantor

import "fmt"

// Result is the outcome of one declaration: a type-definition
// acknowledgment (IsType set, Shape populated) or a defined set's value.
// TypeName carries the declared type annotation, if any, as the
// formatter's field-order hint.
type Result struct {
	Name     string
	TypeName string
	IsType   bool
	Shape    Shape
	Value    Value
}

// Interp evaluates Kantor programs against a persistent environment.
// A single Interp instance must not be used concurrently.
type Interp struct {
	Global *Env
	types  map[string]Shape
}

// New returns an interpreter with empty value and type namespaces.
func New() *Interp {
	return &Interp{Global: NewEnv(nil), types: map[string]Shape{}}
}

// Types exposes the type namespace for formatting. Callers must treat the
// map as read-only.
func (ip *Interp) Types() map[string]Shape { return ip.types }

// EvalSource parses and evaluates a complete source string.
func (ip *Interp) EvalSource(src string) ([]Result, error) {
	prog, err := Parse(src)
	if err != nil {
		return nil, err
	}
	return ip.EvalProgram(prog)
}

// EvalProgram processes each declaration in order. It fails fast: the
// results of the declarations evaluated before the failure are returned
// alongside the error, and their bindings remain in the environment.
func (ip *Interp) EvalProgram(prog *Program) ([]Result, error) {
	var results []Result
	for _, d := range prog.Decls {
		r, err := ip.EvalDecl(d)
		if err != nil {
			return results, err
		}
		results = append(results, r)
	}
	return results, nil
}

// EvalDecl evaluates a single declaration, mutating the environment on
// success.
func (ip *Interp) EvalDecl(d Decl) (Result, error) {
	switch d := d.(type) {
	case *TypeDef:
		// Redefinition silently replaces the prior shape.
		shape := Shape{Fields: d.Fields}
		ip.types[d.Name] = shape
		return Result{Name: d.Name, IsType: true, Shape: shape}, nil

	case *SetDef:
		v, err := ip.evalExpr(d.Expr, ip.Global)
		if err != nil {
			return Result{}, err
		}
		if d.TypeName != "" {
			if err := ip.validate(d, v); err != nil {
				return Result{}, err
			}
		}
		// Unconditionally overwrites any prior binding of the name.
		ip.Global.Define(d.Name, v)
		return Result{Name: d.Name, TypeName: d.TypeName, Value: v}, nil

	default:
		return Result{}, errAt(d, KindValue, "cannot evaluate declaration %T", d)
	}
}

// validate checks every element of a typed set definition against the
// declared shape.
func (ip *Interp) validate(d *SetDef, v Value) error {
	shape, ok := ip.types[d.TypeName]
	if !ok {
		return errAt(d, KindType, "type %q not defined for set %q", d.TypeName, d.Name)
	}
	if v.Tag != VTSet {
		return errAt(d, KindType,
			"set definition for %q of type %q evaluated to %s, not a set",
			d.Name, d.TypeName, v.KindName())
	}
	for _, elem := range v.Data.(*SetObject).Elems() {
		if shape.Positional {
			if elem.Tag != VTTuple {
				return errAt(d, KindType, "expected tuple for type %q, got %s",
					d.TypeName, elem.KindName())
			}
			if got := len(elem.Data.([]Value)); got != len(shape.Elems) {
				return errAt(d, KindType,
					"tuple has wrong arity for type %q: expected %d, got %d",
					d.TypeName, len(shape.Elems), got)
			}
			continue
		}
		if elem.Tag != VTRecord {
			return errAt(d, KindType, "expected record for type %q, got %s",
				d.TypeName, elem.KindName())
		}
		// Extra fields are tolerated; missing declared fields are not.
		rec := elem.Data.(*RecordObject)
		var missing []string
		for _, f := range shape.Fields {
			if _, ok := rec.Fields[f.Name]; !ok {
				missing = append(missing, f.Name)
			}
		}
		if len(missing) > 0 {
			return errAt(d, KindType,
				"record %s is missing fields for type %q: %v",
				FormatValue(elem, ip.types, d.TypeName), d.TypeName, missing)
		}
	}
	return nil
}

// errAt builds a kinded error at a node's position.
func errAt(n Node, kind Kind, format string, args ...any) *Error {
	line, col := n.Pos()
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Line: line, Col: col}
}
