package kantor

import (
	"strings"
	"testing"
)

// --- helpers ---------------------------------------------------------------

func mustEval(t *testing.T, ip *Interp, src string) []Result {
	t.Helper()
	results, err := ip.EvalSource(src)
	if err != nil {
		t.Fatalf("eval error:\n%s\nsource:\n%s", err, src)
	}
	return results
}

func evalProgram(t *testing.T, src string) *Interp {
	t.Helper()
	ip := New()
	mustEval(t, ip, src)
	return ip
}

func globalVal(t *testing.T, ip *Interp, name string) Value {
	t.Helper()
	v, ok := ip.Global.Get(name)
	if !ok {
		t.Fatalf("%q is not defined", name)
	}
	return v
}

func globalSet(t *testing.T, ip *Interp, name string) *SetObject {
	t.Helper()
	v := globalVal(t, ip, name)
	if v.Tag != VTSet {
		t.Fatalf("%q is a %s, want set", name, v.KindName())
	}
	return v.Data.(*SetObject)
}

func wantFormatted(t *testing.T, ip *Interp, name, want string) {
	t.Helper()
	if got := FormatValue(globalVal(t, ip, name), ip.Types(), ""); got != want {
		t.Fatalf("%s: want %s, got %s", name, want, got)
	}
}

func wantSameValue(t *testing.T, ip *Interp, a, b string) {
	t.Helper()
	if !equalValues(globalVal(t, ip, a), globalVal(t, ip, b)) {
		t.Fatalf("%s and %s must be equal values", a, b)
	}
}

func mustFailEval(t *testing.T, src string, kind Kind, substr string) *Error {
	t.Helper()
	_, err := New().EvalSource(src)
	if err == nil {
		t.Fatalf("eval succeeded, want %v containing %q\nsource:\n%s", kind, substr, src)
	}
	e, ok := AsError(err)
	if !ok {
		t.Fatalf("eval error is %T, want *Error", err)
	}
	if e.Kind != kind {
		t.Fatalf("eval error kind: want %v, got %v (%s)", kind, e.Kind, e.Msg)
	}
	if !strings.Contains(e.Msg, substr) {
		t.Fatalf("eval error: want substring %q, got %q", substr, e.Msg)
	}
	return e
}

// --- literals and definitions ----------------------------------------------

func TestEvalSetLiteralDeduplicates(t *testing.T) {
	ip := evalProgram(t, `let A = {1, 2, 2, 1.0, "1"}`)
	if got := globalSet(t, ip, "A").Len(); got != 3 {
		t.Fatalf("want 3 distinct elements, got %d", got)
	}
	wantFormatted(t, ip, "A", `{1, 2, "1"}`)
}

func TestEvalNestedCollections(t *testing.T) {
	ip := evalProgram(t, `let A = {{1, 2}, {2, 1}, (1, {3}), (x: {4})}`)
	if got := globalSet(t, ip, "A").Len(); got != 3 {
		t.Fatalf("inner sets with equal elements must collapse; got %d", got)
	}
}

func TestEvalRebindingReplacesValue(t *testing.T) {
	ip := evalProgram(t, "let A = {1}\nlet A = {2}")
	wantFormatted(t, ip, "A", "{2}")
}

func TestEvalDefinitionsPersistAcrossCalls(t *testing.T) {
	ip := evalProgram(t, "let A = {1, 2}")
	mustEval(t, ip, "let B = A | {3}")
	wantFormatted(t, ip, "B", "{1, 2, 3}")
}

func TestEvalFailFastKeepsEarlierBindings(t *testing.T) {
	ip := New()
	results, err := ip.EvalSource("let A = {1}\nlet B = Nope\nlet C = {2}")
	if err == nil {
		t.Fatalf("want name error")
	}
	if len(results) != 1 || results[0].Name != "A" {
		t.Fatalf("want one result before the failure, got %v", results)
	}
	if _, ok := ip.Global.Get("A"); !ok {
		t.Fatalf("binding made before the failure must survive")
	}
	if _, ok := ip.Global.Get("C"); ok {
		t.Fatalf("declaration after the failure must not run")
	}
}

func TestEvalNameErrors(t *testing.T) {
	mustFailEval(t, "let A = Missing", KindName, `"Missing" not found`)
	mustFailEval(t, "type T: Record(x: Int)\nlet A = T", KindName, "is a type, not a value")
}

// --- set operations ---------------------------------------------------------

func TestEvalUnionIntersection(t *testing.T) {
	ip := evalProgram(t, `
let A = {1, 2, 3}
let B = {3, 4}
let U1 = A | B
let U2 = B | A
let I1 = A & B
let I2 = B & A
`)
	wantFormatted(t, ip, "U1", "{1, 2, 3, 4}")
	wantSameValue(t, ip, "U1", "U2")
	wantFormatted(t, ip, "I1", "{3}")
	wantSameValue(t, ip, "I1", "I2")
}

func TestEvalSetOpsAssociativeAndDistributive(t *testing.T) {
	ip := evalProgram(t, `
let A = {1, 2}
let B = {2, 3}
let C = {3, 4}
let BC = B | C
let AB = A | B
let L1 = AB | C
let R1 = A | BC
let L2 = A & BC
let AiB = A & B
let AiC = A & C
let R2 = AiB | AiC
`)
	wantSameValue(t, ip, "L1", "R1")
	wantSameValue(t, ip, "L2", "R2")
}

func TestEvalCrossDistributesOverUnion(t *testing.T) {
	ip := evalProgram(t, `
let A = {1, 2}
let B = {2, 3}
let C = {"x", "y"}
let AB = A | B
let L = AB * C
let AC = A * C
let BC = B * C
let R = AC | BC
`)
	wantSameValue(t, ip, "L", "R")
}

func TestEvalCrossProduct(t *testing.T) {
	ip := evalProgram(t, `
let A = {1, 2}
let B = {"x"}
let P = A * B
`)
	p := globalSet(t, ip, "P")
	if p.Len() != 2 {
		t.Fatalf("want 2 pairs, got %d", p.Len())
	}
	if !p.Has(TupleVal([]Value{IntVal(1), StrVal("x")})) {
		t.Fatalf("missing pair (1, \"x\")")
	}
	wantFormatted(t, ip, "P", `{(1, "x"), (2, "x")}`)
}

func TestEvalCrossProductEmptyOperand(t *testing.T) {
	ip := evalProgram(t, "let A = {1, 2}\nlet E = {}\nlet P = A * E\nlet Q = E * A")
	if globalSet(t, ip, "P").Len() != 0 || globalSet(t, ip, "Q").Len() != 0 {
		t.Fatalf("cross product with an empty operand must be empty")
	}
}

func TestEvalRecordAsSetOperand(t *testing.T) {
	// A record participates in set operations as its (field, value) pairs.
	ip := New()
	ip.Global.Define("R", recOf("x", IntVal(1), "y", IntVal(2)))
	mustEval(t, ip, `let U = R | {("z", 3)}`)
	wantFormatted(t, ip, "U", `{("x", 1), ("y", 2), ("z", 3)}`)
}

func TestEvalSetOpOnScalarFails(t *testing.T) {
	ip := New()
	ip.Global.Define("n", IntVal(7))
	_, err := ip.EvalSource("let A = n | {1}")
	e, ok := AsError(err)
	if !ok || e.Kind != KindType {
		t.Fatalf("want type error for scalar operand, got %v", err)
	}
	if !strings.Contains(e.Msg, "left operand") {
		t.Fatalf("want left-operand message, got %q", e.Msg)
	}
}

func TestEvalComprehensionOverScalarFails(t *testing.T) {
	ip := New()
	ip.Global.Define("n", IntVal(7))
	_, err := ip.EvalSource("let A = {x | x of n}")
	e, ok := AsError(err)
	if !ok || e.Kind != KindType {
		t.Fatalf("want type error for scalar source, got %v", err)
	}
}

// --- comprehensions ---------------------------------------------------------

func TestEvalComprehensionIdentity(t *testing.T) {
	ip := evalProgram(t, "let A = {1, 2, 3}\nlet B = {x | x of A}")
	wantSameValue(t, ip, "A", "B")
}

func TestEvalComprehensionPredicate(t *testing.T) {
	ip := evalProgram(t, "let A = {1, 2, 3, 4}\nlet B = {x | x of A, x > 2}")
	wantFormatted(t, ip, "B", "{3, 4}")
}

func TestEvalComprehensionProjection(t *testing.T) {
	ip := evalProgram(t, `
let Users = {(name: "ana", age: 35), (name: "bo", age: 17)}
let Names = {p.name | p of Users}
let Adults = {p.name | p of Users, p.age >= 18}
`)
	wantFormatted(t, ip, "Names", `{"ana", "bo"}`)
	wantFormatted(t, ip, "Adults", `{"ana"}`)
}

func TestEvalComprehensionDestructuring(t *testing.T) {
	ip := evalProgram(t, `
let A = {1, 2}
let B = {"x", "y"}
let P = A * B
let Lefts = {a | (a, b) of P}
let Swapped = {(b, a) | (a, b) of P}
`)
	wantFormatted(t, ip, "Lefts", "{1, 2}")
	if globalSet(t, ip, "Swapped").Len() != 4 {
		t.Fatalf("swap must keep all 4 pairs")
	}
	if !globalSet(t, ip, "Swapped").Has(TupleVal([]Value{StrVal("x"), IntVal(1)})) {
		t.Fatalf("missing swapped pair (\"x\", 1)")
	}
}

func TestEvalComprehensionAritySkip(t *testing.T) {
	// Elements that do not destructure to the variable pattern are skipped.
	ip := evalProgram(t, `
let Mixed = {(1, 2), (3, 4, 5), 6}
let Pairs = {(a, b) | (a, b) of Mixed}
`)
	wantFormatted(t, ip, "Pairs", "{(1, 2)}")
}

func TestEvalComprehensionScopeDoesNotLeak(t *testing.T) {
	ip := evalProgram(t, "let A = {1}\nlet B = {x | x of A}")
	if _, ok := ip.Global.Get("x"); ok {
		t.Fatalf("comprehension variable must not escape into the global scope")
	}
}

func TestEvalComprehensionShadowsOuterBinding(t *testing.T) {
	ip := evalProgram(t, `
let x = {9}
let A = {1, 2}
let B = {x | x of A}
`)
	wantFormatted(t, ip, "x", "{9}")
	wantFormatted(t, ip, "B", "{1, 2}")
}

func TestEvalComprehensionTruthyPredicate(t *testing.T) {
	// Non-boolean predicates follow truthiness: 0, "" and {} are falsy.
	ip := evalProgram(t, `
let A = {0, 1, 2}
let B = {x | x of A, x}
`)
	wantFormatted(t, ip, "B", "{1, 2}")
}

func TestEvalChainedComparisonIsNotOrderable(t *testing.T) {
	// 1 < 2 < 3 associates left, so the boolean result of (1 < 2) meets
	// the integer 3 and the pair has no ordering.
	mustFailEval(t, "let A = {1}\nlet B = {x | x of A, 1 < 2 < 3}",
		KindType, "cannot compare")
}

// --- attribute access -------------------------------------------------------

func TestEvalAttributeErrors(t *testing.T) {
	mustFailEval(t, "let A = {1}\nlet B = {x.name | x of A}",
		KindType, "cannot access attribute")
	mustFailEval(t, `let A = {(name: "ana")}`+"\nlet B = {x.age | x of A}",
		KindAttribute, `no attribute "age"`)
}

// --- typed definitions ------------------------------------------------------

func TestEvalTypedDefinition(t *testing.T) {
	ip := evalProgram(t, `
type Person: Record(name: String, age: Int)
let Users: Person = {(name: "ana", age: 35)}
`)
	if globalSet(t, ip, "Users").Len() != 1 {
		t.Fatalf("typed definition must bind")
	}
}

func TestEvalTypedDefinitionToleratesExtraFields(t *testing.T) {
	evalProgram(t, `
type Person: Record(name: String)
let Users: Person = {(name: "ana", nickname: "a")}
`)
}

func TestEvalTypedDefinitionMissingField(t *testing.T) {
	mustFailEval(t, `
type Person: Record(name: String, age: Int)
let Users: Person = {(name: "ana")}
`, KindType, "missing fields")
}

func TestEvalTypedDefinitionNonRecordElement(t *testing.T) {
	mustFailEval(t, `
type Person: Record(name: String)
let Users: Person = {1}
`, KindType, "expected record")
}

func TestEvalTypedDefinitionUnknownType(t *testing.T) {
	mustFailEval(t, "let Users: Ghost = {}", KindType, `"Ghost" not defined`)
}

func TestEvalTypeRedefinitionReplaces(t *testing.T) {
	ip := evalProgram(t, `
type T: Record(a: Int)
type T: Record(b: Int)
`)
	shape := ip.Types()["T"]
	if len(shape.Fields) != 1 || shape.Fields[0].Name != "b" {
		t.Fatalf("redefinition must replace the shape, got %v", shape.Fields)
	}
}

// --- results ----------------------------------------------------------------

func TestEvalResults(t *testing.T) {
	ip := New()
	results := mustEval(t, ip, `
type Person: Record(name: String)
let Users: Person = {(name: "ana")}
`)
	if len(results) != 2 {
		t.Fatalf("want 2 results, got %d", len(results))
	}
	if !results[0].IsType || results[0].Name != "Person" {
		t.Fatalf("first result must acknowledge the type, got %+v", results[0])
	}
	if results[1].IsType || results[1].Name != "Users" || results[1].TypeName != "Person" {
		t.Fatalf("second result must carry the set and its annotation, got %+v", results[1])
	}
	if got := FormatResult(results[0], ip.Types()); got != "Type 'Person' defined: Record(name: String)" {
		t.Fatalf("type result rendering: %q", got)
	}
	if got := FormatResult(results[1], ip.Types()); got != `Set 'Users' defined. Value: {(name: "ana")}` {
		t.Fatalf("set result rendering: %q", got)
	}
}
