// value.go — the Kantor runtime value model.
//
// Value is a tagged sum: integers, floats, strings, booleans, tuples, sets
// and records. Sets and records need identity semantics so that any value —
// including other collections — can be a set element. Identity is a
// canonical key string: scalars render their payload, tuples concatenate
// element keys in order, sets sort element keys (order-insensitive), and
// records sort (field, key) pairs. Two values are equal iff their keys are
// equal, and sets deduplicate by key.
//
// Mutable sets are frozen before they become an element of an outer set,
// tuple, or record. Freezing happens in the collection constructors
// (freezeValue), never ad hoc in the evaluator.
package kantor

import (
	"math"
	"sort"
	"strconv"
	"strings"
)

// ValueTag enumerates the runtime kinds a Value may hold.
type ValueTag int

const (
	VTInt    ValueTag = iota // int64
	VTNum                    // float64
	VTStr                    // string
	VTBool                   // bool
	VTTuple                  // []Value
	VTSet                    // *SetObject
	VTRecord                 // *RecordObject
)

// Value is the universal runtime carrier. Tag determines which Go type
// Data holds (see ValueTag).
type Value struct {
	Tag  ValueTag
	Data any
}

// KindName returns the user-facing name of the value's kind, for error
// messages.
func (v Value) KindName() string {
	switch v.Tag {
	case VTInt:
		return "integer"
	case VTNum:
		return "float"
	case VTStr:
		return "string"
	case VTBool:
		return "boolean"
	case VTTuple:
		return "tuple"
	case VTSet:
		return "set"
	case VTRecord:
		return "record"
	default:
		return "unknown"
	}
}

// Primitive constructors.
func IntVal(n int64) Value   { return Value{Tag: VTInt, Data: n} }
func NumVal(f float64) Value { return Value{Tag: VTNum, Data: f} }
func StrVal(s string) Value  { return Value{Tag: VTStr, Data: s} }
func BoolVal(b bool) Value   { return Value{Tag: VTBool, Data: b} }

// TupleVal builds a tuple value. Any element that is a mutable set is
// frozen first.
func TupleVal(elems []Value) Value {
	out := make([]Value, len(elems))
	for i, e := range elems {
		out[i] = freezeValue(e)
	}
	return Value{Tag: VTTuple, Data: out}
}

// SetObject is the backing store of a set value. Entries is keyed by the
// canonical identity key; Keys preserves insertion order for the
// formatter's unorderable-elements fallback. Frozen marks the immutable
// form required of sets nested inside other collections.
type SetObject struct {
	Entries map[string]Value
	Keys    []string
	Frozen  bool
}

// NewSet creates an empty, mutable set.
func NewSet() *SetObject {
	return &SetObject{Entries: map[string]Value{}}
}

// SetVal wraps a SetObject into a Value.
func SetVal(s *SetObject) Value { return Value{Tag: VTSet, Data: s} }

// Add inserts v, freezing it if it is a mutable set. Duplicates (by value
// equality) collapse to one.
func (s *SetObject) Add(v Value) {
	v = freezeValue(v)
	k := v.Key()
	if _, ok := s.Entries[k]; ok {
		return
	}
	s.Entries[k] = v
	s.Keys = append(s.Keys, k)
}

// Has reports whether an equal value is in the set.
func (s *SetObject) Has(v Value) bool {
	_, ok := s.Entries[freezeValue(v).Key()]
	return ok
}

// Len returns the number of elements.
func (s *SetObject) Len() int { return len(s.Keys) }

// Elems returns the elements in insertion order.
func (s *SetObject) Elems() []Value {
	out := make([]Value, len(s.Keys))
	for i, k := range s.Keys {
		out[i] = s.Entries[k]
	}
	return out
}

// freeze returns the immutable form. The backing maps are shared: nothing
// mutates a set after evaluation builds it.
func (s *SetObject) freeze() *SetObject {
	if s.Frozen {
		return s
	}
	c := *s
	c.Frozen = true
	return &c
}

// RecordObject is an unordered collection of unique (field, Value) pairs.
// Keys preserves the literal's field order for display only; identity and
// equality ignore it.
type RecordObject struct {
	Fields map[string]Value
	Keys   []string
}

// NewRecord creates an empty record.
func NewRecord() *RecordObject {
	return &RecordObject{Fields: map[string]Value{}}
}

// RecordVal wraps a RecordObject into a Value.
func RecordVal(r *RecordObject) Value { return Value{Tag: VTRecord, Data: r} }

// Set assigns a field, freezing a mutable set value. A repeated field name
// overwrites in place, keeping the first position.
func (r *RecordObject) Set(name string, v Value) {
	v = freezeValue(v)
	if _, ok := r.Fields[name]; !ok {
		r.Keys = append(r.Keys, name)
	}
	r.Fields[name] = v
}

// Get returns the value of a field.
func (r *RecordObject) Get(name string) (Value, bool) {
	v, ok := r.Fields[name]
	return v, ok
}

// freezeValue converts a mutable set to its frozen form; all other values
// pass through (they are immutable already).
func freezeValue(v Value) Value {
	if v.Tag == VTSet {
		return SetVal(v.Data.(*SetObject).freeze())
	}
	return v
}

// asSetView views a value as a set where the language accepts "set-like"
// operands: a set is itself, and a record is the set of its (field, value)
// 2-tuples. Anything else is not set-like.
func asSetView(v Value) (*SetObject, bool) {
	switch v.Tag {
	case VTSet:
		return v.Data.(*SetObject), true
	case VTRecord:
		r := v.Data.(*RecordObject)
		s := NewSet()
		for _, name := range r.Keys {
			s.Add(TupleVal([]Value{StrVal(name), r.Fields[name]}))
		}
		return s, true
	default:
		return nil, false
	}
}

// --- identity ---------------------------------------------------------------

// numKey renders an integral float the same as the equal integer, so that
// 1 and 1.0 are one set element.
func numKey(f float64) string {
	if f == math.Trunc(f) && !math.IsInf(f, 0) &&
		f >= math.MinInt64 && f <= math.MaxInt64 {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// Key returns the canonical identity key. Values are equal iff their keys
// are equal; sets and records hash their contents order-insensitively.
func (v Value) Key() string {
	switch v.Tag {
	case VTInt:
		return "n:" + strconv.FormatInt(v.Data.(int64), 10)
	case VTNum:
		return "n:" + numKey(v.Data.(float64))
	case VTStr:
		return "s:" + strconv.Quote(v.Data.(string))
	case VTBool:
		if v.Data.(bool) {
			return "b:true"
		}
		return "b:false"
	case VTTuple:
		elems := v.Data.([]Value)
		parts := make([]string, len(elems))
		for i, e := range elems {
			parts[i] = e.Key()
		}
		return "t:(" + strings.Join(parts, ",") + ")"
	case VTSet:
		s := v.Data.(*SetObject)
		keys := make([]string, len(s.Keys))
		copy(keys, s.Keys)
		sort.Strings(keys)
		return "S:{" + strings.Join(keys, ",") + "}"
	case VTRecord:
		r := v.Data.(*RecordObject)
		parts := make([]string, 0, len(r.Fields))
		for name, fv := range r.Fields {
			parts = append(parts, strconv.Quote(name)+"="+fv.Key())
		}
		sort.Strings(parts)
		return "r:(" + strings.Join(parts, ",") + ")"
	default:
		return "?"
	}
}

// equalValues is value equality: identical canonical keys.
func equalValues(a, b Value) bool { return a.Key() == b.Key() }

// orderError is the sentinel-ish failure of compareValues; the evaluator
// maps it to a KindType error with position, the formatter to the
// insertion-order fallback.
type orderError struct{ a, b Value }

func (e *orderError) Error() string {
	return "values of kind " + e.a.KindName() + " and " + e.b.KindName() + " are not mutually ordered"
}

func isNumeric(v Value) bool { return v.Tag == VTInt || v.Tag == VTNum }

func asFloat(v Value) float64 {
	if v.Tag == VTInt {
		return float64(v.Data.(int64))
	}
	return v.Data.(float64)
}

// compareValues applies natural ordering: numbers order against numbers
// (integer and float interchangeably), strings against strings, booleans
// against booleans (false < true), and tuples lexicographically. Sets,
// records, and any cross-kind pairing are not mutually ordered.
func compareValues(a, b Value) (int, error) {
	if isNumeric(a) && isNumeric(b) {
		if a.Tag == VTInt && b.Tag == VTInt {
			x, y := a.Data.(int64), b.Data.(int64)
			switch {
			case x < y:
				return -1, nil
			case x > y:
				return 1, nil
			}
			return 0, nil
		}
		x, y := asFloat(a), asFloat(b)
		switch {
		case x < y:
			return -1, nil
		case x > y:
			return 1, nil
		}
		return 0, nil
	}
	if a.Tag != b.Tag {
		return 0, &orderError{a, b}
	}
	switch a.Tag {
	case VTStr:
		return strings.Compare(a.Data.(string), b.Data.(string)), nil
	case VTBool:
		x, y := a.Data.(bool), b.Data.(bool)
		switch {
		case x == y:
			return 0, nil
		case !x:
			return -1, nil
		}
		return 1, nil
	case VTTuple:
		xs, ys := a.Data.([]Value), b.Data.([]Value)
		n := len(xs)
		if len(ys) < n {
			n = len(ys)
		}
		for i := 0; i < n; i++ {
			c, err := compareValues(xs[i], ys[i])
			if err != nil {
				return 0, err
			}
			if c != 0 {
				return c, nil
			}
		}
		switch {
		case len(xs) < len(ys):
			return -1, nil
		case len(xs) > len(ys):
			return 1, nil
		}
		return 0, nil
	default:
		return 0, &orderError{a, b}
	}
}

// isTruthy decides comprehension predicates: false, zero, the empty string
// and empty collections are falsy.
func isTruthy(v Value) bool {
	switch v.Tag {
	case VTBool:
		return v.Data.(bool)
	case VTInt:
		return v.Data.(int64) != 0
	case VTNum:
		return v.Data.(float64) != 0
	case VTStr:
		return v.Data.(string) != ""
	case VTTuple:
		return len(v.Data.([]Value)) > 0
	case VTSet:
		return v.Data.(*SetObject).Len() > 0
	case VTRecord:
		return len(v.Data.(*RecordObject).Fields) > 0
	default:
		return false
	}
}
