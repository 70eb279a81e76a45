// eval.go — tree-walking expression evaluation.
//
// evalExpr is an exhaustive switch over the sealed Expr set. Errors are
// *Error results carrying the node's position; nothing panics across the
// package API. The two documented non-error lenient behaviors live here:
// a comprehension element that cannot be destructured is skipped, and a
// mutable set is frozen by the collection constructors on insertion (see
// value.go).
package kantor

func (ip *Interp) evalExpr(e Expr, env *Env) (Value, error) {
	switch e := e.(type) {
	case *Ident:
		return ip.evalIdent(e, env)

	case *NumberLit:
		if e.IsInt {
			return IntVal(e.Int), nil
		}
		return NumVal(e.Num), nil

	case *StringLit:
		return StrVal(e.Value), nil

	case *TupleLit:
		elems := make([]Value, len(e.Elems))
		for i, el := range e.Elems {
			v, err := ip.evalExpr(el, env)
			if err != nil {
				return Value{}, err
			}
			elems[i] = v
		}
		return TupleVal(elems), nil

	case *RecordLit:
		rec := NewRecord()
		for _, f := range e.Fields {
			v, err := ip.evalExpr(f.Value, env)
			if err != nil {
				return Value{}, err
			}
			rec.Set(f.Name, v)
		}
		return RecordVal(rec), nil

	case *SetLit:
		s := NewSet()
		for _, el := range e.Elems {
			v, err := ip.evalExpr(el, env)
			if err != nil {
				return Value{}, err
			}
			s.Add(v)
		}
		return SetVal(s), nil

	case *SetOp:
		return ip.evalSetOp(e, env)

	case *Comprehension:
		return ip.evalComprehension(e, env)

	case *Attr:
		return ip.evalAttr(e, env)

	case *Cmp:
		return ip.evalCmp(e, env)

	default:
		// Unreachable with a sealed Expr set; reported distinctly anyway.
		return Value{}, errAt(e, KindValue, "cannot evaluate expression %T", e)
	}
}

func (ip *Interp) evalIdent(e *Ident, env *Env) (Value, error) {
	if v, ok := env.Get(e.Name); ok {
		return v, nil
	}
	if _, ok := ip.types[e.Name]; ok {
		return Value{}, errAt(e, KindName, "%q is a type, not a value in this context", e.Name)
	}
	return Value{}, errAt(e, KindName, "identifier %q not found in the current scope", e.Name)
}

func (ip *Interp) evalSetOp(e *SetOp, env *Env) (Value, error) {
	lv, err := ip.evalExpr(e.Left, env)
	if err != nil {
		return Value{}, err
	}
	rv, err := ip.evalExpr(e.Right, env)
	if err != nil {
		return Value{}, err
	}
	// Records pass the set-likeness check as sets of (field, value) pairs.
	left, ok := asSetView(lv)
	if !ok {
		return Value{}, errAt(e, KindType,
			"left operand of set operation %q must be a set, got %s", e.Op, lv.KindName())
	}
	right, ok := asSetView(rv)
	if !ok {
		return Value{}, errAt(e, KindType,
			"right operand of set operation %q must be a set, got %s", e.Op, rv.KindName())
	}

	out := NewSet()
	switch e.Op {
	case "|":
		for _, v := range left.Elems() {
			out.Add(v)
		}
		for _, v := range right.Elems() {
			out.Add(v)
		}
	case "&":
		for _, v := range left.Elems() {
			if right.Has(v) {
				out.Add(v)
			}
		}
	case "*":
		// Either operand empty yields the empty set, never an error.
		for _, l := range left.Elems() {
			for _, r := range right.Elems() {
				out.Add(TupleVal([]Value{l, r}))
			}
		}
	default:
		return Value{}, errAt(e, KindValue, "unknown set operator %q", e.Op)
	}
	return SetVal(out), nil
}

func (ip *Interp) evalComprehension(e *Comprehension, env *Env) (Value, error) {
	sv, err := ip.evalExpr(e.Source, env)
	if err != nil {
		return Value{}, err
	}
	src, ok := asSetView(sv)
	if !ok {
		return Value{}, errAt(e, KindType,
			"set comprehension source must be a set, got %s", sv.KindName())
	}

	out := NewSet()
	for _, elem := range src.Elems() {
		// Bind input variables in a child scope; shadowing only, the
		// outer environment is untouched.
		child := NewEnv(env)
		if len(e.Vars) == 1 {
			child.Define(e.Vars[0], elem)
		} else if elem.Tag == VTTuple && len(elem.Data.([]Value)) == len(e.Vars) {
			for i, name := range e.Vars {
				child.Define(name, elem.Data.([]Value)[i])
			}
		} else {
			// Arity mismatch on this element: skipped, not fatal. This
			// permits heterogeneous sources.
			continue
		}

		if e.Pred != nil {
			pv, err := ip.evalExpr(e.Pred, child)
			if err != nil {
				return Value{}, err
			}
			if !isTruthy(pv) {
				continue
			}
		}

		var item Value
		if len(e.Outs) == 1 {
			item, err = ip.evalExpr(e.Outs[0], child)
			if err != nil {
				return Value{}, err
			}
		} else {
			parts := make([]Value, len(e.Outs))
			for i, o := range e.Outs {
				parts[i], err = ip.evalExpr(o, child)
				if err != nil {
					return Value{}, err
				}
			}
			item = TupleVal(parts)
		}
		out.Add(item)
	}
	return SetVal(out), nil
}

func (ip *Interp) evalAttr(e *Attr, env *Env) (Value, error) {
	obj, err := ip.evalExpr(e.Obj, env)
	if err != nil {
		return Value{}, err
	}
	if obj.Tag != VTRecord {
		return Value{}, errAt(e, KindType,
			"cannot access attribute %q on %s value", e.Name, obj.KindName())
	}
	v, ok := obj.Data.(*RecordObject).Get(e.Name)
	if !ok {
		return Value{}, errAt(e, KindAttribute,
			"record %s has no attribute %q", FormatValue(obj, ip.types, ""), e.Name)
	}
	return v, nil
}

func (ip *Interp) evalCmp(e *Cmp, env *Env) (Value, error) {
	lv, err := ip.evalExpr(e.Left, env)
	if err != nil {
		return Value{}, err
	}
	rv, err := ip.evalExpr(e.Right, env)
	if err != nil {
		return Value{}, err
	}

	switch e.Op {
	case "==":
		return BoolVal(equalValues(lv, rv)), nil
	case "!=":
		return BoolVal(!equalValues(lv, rv)), nil
	}

	c, err := compareValues(lv, rv)
	if err != nil {
		return Value{}, errAt(e, KindType, "cannot compare with %q: %s", e.Op, err)
	}
	switch e.Op {
	case "<":
		return BoolVal(c < 0), nil
	case "<=":
		return BoolVal(c <= 0), nil
	case ">":
		return BoolVal(c > 0), nil
	case ">=":
		return BoolVal(c >= 0), nil
	default:
		return Value{}, errAt(e, KindValue, "unknown comparison operator %q", e.Op)
	}
}
