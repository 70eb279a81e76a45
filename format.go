// format.go — rendering of values and declaration results for display.
//
// Records render as (name: value, ...) using the hinted type's declared
// field order when one is available, falling back to alphabetical order.
// Sets render as a brace list, sorted when the elements are mutually
// orderable and in insertion order otherwise. The type-name hint
// propagates into set elements, so `let Users: Person = {...}` prints its
// records in Person's declared order.
package kantor

import (
	"sort"
	"strconv"
	"strings"
)

// FormatValue renders v. types is the interpreter's type namespace and
// hint an optional type name used for record field ordering; both may be
// zero.
func FormatValue(v Value, types map[string]Shape, hint string) string {
	switch v.Tag {
	case VTInt:
		return strconv.FormatInt(v.Data.(int64), 10)
	case VTNum:
		return formatFloat(v.Data.(float64))
	case VTStr:
		return quoteString(v.Data.(string))
	case VTBool:
		if v.Data.(bool) {
			return "true"
		}
		return "false"
	case VTTuple:
		elems := v.Data.([]Value)
		parts := make([]string, len(elems))
		for i, e := range elems {
			parts[i] = FormatValue(e, types, "")
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case VTSet:
		return formatSet(v.Data.(*SetObject), types, hint)
	case VTRecord:
		return formatRecord(v.Data.(*RecordObject), types, hint)
	default:
		return "<unknown>"
	}
}

func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	// Keep a visible fractional part so floats round-trip as floats.
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

func quoteString(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

func formatSet(s *SetObject, types map[string]Shape, hint string) string {
	if s.Len() == 0 {
		return "{}"
	}
	elems := s.Elems()
	ordered := sortedElems(elems)
	parts := make([]string, len(ordered))
	for i, e := range ordered {
		parts[i] = FormatValue(e, types, hint)
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// sortedElems returns the elements deterministically sorted when they are
// mutually orderable, else in insertion order.
func sortedElems(elems []Value) []Value {
	out := make([]Value, len(elems))
	copy(out, elems)
	comparable := true
	sort.SliceStable(out, func(i, j int) bool {
		c, err := compareValues(out[i], out[j])
		if err != nil {
			comparable = false
			return false
		}
		return c < 0
	})
	if !comparable {
		copy(out, elems)
	}
	return out
}

func formatRecord(r *RecordObject, types map[string]Shape, hint string) string {
	var order []string
	if hint != "" {
		if shape, ok := types[hint]; ok && !shape.Positional {
			for _, f := range shape.Fields {
				order = append(order, f.Name)
			}
		}
	}
	if order == nil {
		order = make([]string, 0, len(r.Fields))
		for name := range r.Fields {
			order = append(order, name)
		}
		sort.Strings(order)
	}
	var parts []string
	for _, name := range order {
		if v, ok := r.Fields[name]; ok {
			parts = append(parts, name+": "+FormatValue(v, types, ""))
		}
	}
	// Hinted order lists only declared fields; tolerated extras follow
	// alphabetically.
	if hint != "" {
		var extras []string
		for name := range r.Fields {
			if !containsName(order, name) {
				extras = append(extras, name)
			}
		}
		sort.Strings(extras)
		for _, name := range extras {
			parts = append(parts, name+": "+FormatValue(r.Fields[name], types, ""))
		}
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func containsName(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

// FormatShape renders a type shape as it appears in a definition.
func FormatShape(s Shape) string {
	if s.Positional {
		return "Tuple(" + strings.Join(s.Elems, ", ") + ")"
	}
	parts := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		parts[i] = f.Name + ": " + f.TypeName
	}
	return "Record(" + strings.Join(parts, ", ") + ")"
}

// FormatResult renders one declaration result for display.
func FormatResult(r Result, types map[string]Shape) string {
	if r.IsType {
		return "Type '" + r.Name + "' defined: " + FormatShape(r.Shape)
	}
	return "Set '" + r.Name + "' defined. Value: " + FormatValue(r.Value, types, r.TypeName)
}
