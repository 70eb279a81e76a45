// errors.go — the single structured error type and caret-snippet rendering.
//
// Every failure in the lexer, parser and evaluator is a *Error carrying one
// of the enumerated kinds plus a 1-based source position. Syntax errors from
// the parser additionally carry the set of token types that would have been
// acceptable and the offending token's text.
//
// WrapErrorWithSource turns a *Error into a readable snippet with the
// offending line, one line of context either side, and a caret under the
// column:
//
//	SYNTAX ERROR at 3:12: expected '}', found ')'
//
//	   2 | let A = {1, 2
//	   3 |              )
//	       |            ^
//	   4 | let B = A
//
// Errors without a position (Line == 0) are returned unchanged.
package kantor

import (
	"fmt"
	"strings"
)

// Kind enumerates the error categories surfaced by the interpreter.
type Kind int

const (
	KindSyntax    Kind = iota // grammar/lexical mismatch
	KindName                  // unresolved identifier, or wrong namespace
	KindType                  // wrong value kind, arity, or shape mismatch
	KindAttribute             // field access on a non-record or missing field
	KindValue                 // malformed literal or unreachable operator
)

func (k Kind) String() string {
	switch k {
	case KindSyntax:
		return "SYNTAX ERROR"
	case KindName:
		return "NAME ERROR"
	case KindType:
		return "TYPE ERROR"
	case KindAttribute:
		return "ATTRIBUTE ERROR"
	case KindValue:
		return "VALUE ERROR"
	default:
		return "ERROR"
	}
}

// Error is the error type for all lexer, parser and evaluator failures.
// Line and Col are 1-based; a zero Line means no position is known.
type Error struct {
	Kind Kind
	Msg  string
	Line int
	Col  int

	// Syntax errors only.
	Expected []TokenType // acceptable token types at the failure point
	Got      string      // offending token text
	AtEOF    bool        // the failure was hitting end of input
}

// IsIncomplete reports whether err is a syntax error caused by running out
// of input — more source could still complete the construct. REPLs use it
// to decide on a continuation prompt.
func IsIncomplete(err error) bool {
	e, ok := err.(*Error)
	return ok && e.Kind == KindSyntax && e.AtEOF
}

func (e *Error) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s at %d:%d: %s", e.Kind, e.Line, e.Col, e.Msg)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

// AsError unwraps err into a *Error, if it is one.
func AsError(err error) (*Error, bool) {
	e, ok := err.(*Error)
	return e, ok
}

// WrapErrorWithSource returns an error augmented with a caret-annotated
// snippet of the provided source. Non-*Error values and errors without a
// position are returned unchanged.
func WrapErrorWithSource(err error, src string) error {
	return WrapErrorWithName(err, "", src)
}

func WrapErrorWithName(err error, srcName string, src string) error {
	e, ok := err.(*Error)
	if !ok || e.Line == 0 {
		return err
	}
	return fmt.Errorf("%s", snippet(src, e.Kind.String(), srcName, e.Line, e.Col, e.Msg))
}

// snippet builds the header-plus-caret rendering. Coordinates are 1-based
// and clamped to the source bounds.
func snippet(src, header, name string, line, col int, msg string) string {
	lines := strings.Split(src, "\n")
	if line < 1 {
		line = 1
	}
	if col < 1 {
		col = 1
	}
	if len(lines) == 0 {
		lines = []string{""}
	}
	if line > len(lines) {
		line = len(lines)
	}
	lineTxt := lines[line-1]

	var b strings.Builder
	if name != "" {
		fmt.Fprintf(&b, "%s in %s at %d:%d: %s\n\n", header, name, line, col, msg)
	} else {
		fmt.Fprintf(&b, "%s at %d:%d: %s\n\n", header, line, col, msg)
	}
	if line > 1 {
		fmt.Fprintf(&b, "%4d | %s\n", line-1, lines[line-2])
	}
	fmt.Fprintf(&b, "%4d | %s\n", line, lineTxt)
	caretPad := col - 1
	if caretPad > len(lineTxt) {
		caretPad = len(lineTxt)
	}
	fmt.Fprintf(&b, "     | %s^\n", strings.Repeat(" ", caretPad))
	if line < len(lines) {
		fmt.Fprintf(&b, "%4d | %s\n", line+1, lines[line])
	}
	return b.String()
}
