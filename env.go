// env.go — lexical environments and type shapes.
package kantor

// Env is a lexical environment frame with a parent link. Lookups walk
// parent-ward; Define always binds in the current frame, shadowing any
// outer binding. Comprehension scopes are child frames over the outer
// environment — the outer frame is never mutated.
type Env struct {
	parent *Env
	table  map[string]Value
}

// NewEnv creates a new frame with the given parent (which may be nil).
func NewEnv(parent *Env) *Env {
	return &Env{parent: parent, table: map[string]Value{}}
}

// Define binds name to v in the current frame.
func (e *Env) Define(name string, v Value) { e.table[name] = v }

// Get retrieves the nearest visible binding for name.
func (e *Env) Get(name string) (Value, bool) {
	if v, ok := e.table[name]; ok {
		return v, true
	}
	if e.parent != nil {
		return e.parent.Get(name)
	}
	return Value{}, false
}

// Names returns the names bound in this frame only (not ancestors), in no
// particular order. Used by the REPL's :env command and completion.
func (e *Env) Names() []string {
	out := make([]string, 0, len(e.table))
	for name := range e.table {
		out = append(out, name)
	}
	return out
}

// Shape is a type shape from the type namespace: either named record
// fields or a positional element list. The grammar only produces named
// shapes today; positional validation is the extension path for tuple
// types.
type Shape struct {
	Positional bool
	Fields     []TypeField // named shape
	Elems      []string    // positional shape: element type names
}
