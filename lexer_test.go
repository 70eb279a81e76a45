package kantor

import (
	"strings"
	"testing"
)

// --- helpers ---------------------------------------------------------------

func mustScan(t *testing.T, src string) []Token {
	t.Helper()
	toks, err := NewLexer(src).Scan()
	if err != nil {
		t.Fatalf("scan error for %q: %v", src, err)
	}
	return toks
}

func wantTypes(t *testing.T, src string, want []TokenType) []Token {
	t.Helper()
	toks := mustScan(t, src)
	if len(toks) != len(want) {
		t.Fatalf("token count for %q: want %d, got %d (%v)", src, len(want), len(toks), toks)
	}
	for i, tt := range want {
		if toks[i].Type != tt {
			t.Fatalf("token %d of %q: want %s, got %s (%q)", i, src, tt, toks[i].Type, toks[i].Lexeme)
		}
	}
	return toks
}

func mustFailScan(t *testing.T, src, substr string) *Error {
	t.Helper()
	_, err := NewLexer(src).Scan()
	if err == nil {
		t.Fatalf("scan of %q succeeded, want error containing %q", src, substr)
	}
	e, ok := AsError(err)
	if !ok {
		t.Fatalf("scan error for %q is %T, want *Error", src, err)
	}
	if e.Kind != KindSyntax {
		t.Fatalf("scan error kind for %q: want %v, got %v", src, KindSyntax, e.Kind)
	}
	if !strings.Contains(e.Msg, substr) {
		t.Fatalf("scan error for %q: want substring %q, got %q", src, substr, e.Msg)
	}
	return e
}

// --- tests -----------------------------------------------------------------

func TestScanDeclaration(t *testing.T) {
	toks := wantTypes(t, `let Users: Person = {1, 2.5, "ana"}`, []TokenType{
		LET, IDENT, COLON, IDENT, ASSIGN,
		LBRACE, NUMBER, COMMA, NUMBER, COMMA, STRING, RBRACE, EOF,
	})
	if toks[1].Lexeme != "Users" || toks[3].Lexeme != "Person" {
		t.Fatalf("identifier lexemes wrong: %q, %q", toks[1].Lexeme, toks[3].Lexeme)
	}
	if toks[6].Lexeme != "1" || toks[8].Lexeme != "2.5" {
		t.Fatalf("number lexemes wrong: %q, %q", toks[6].Lexeme, toks[8].Lexeme)
	}
}

func TestScanOperators(t *testing.T) {
	wantTypes(t, "| & * = == != < <= > >= . : ,", []TokenType{
		PIPE, AMP, STAR, ASSIGN, EQ, NEQ,
		LESS, LESS_EQ, GREATER, GREATER_EQ, DOT, COLON, COMMA, EOF,
	})
}

func TestScanKeywords(t *testing.T) {
	toks := wantTypes(t, "let type of filter Record lettuce record", []TokenType{
		LET, TYPE, OF, FILTER, RECORD, IDENT, IDENT, EOF,
	})
	if toks[5].Lexeme != "lettuce" {
		t.Fatalf("keyword prefix must stay an identifier, got %q", toks[5].Lexeme)
	}
	// keywords are case-sensitive
	if toks[6].Lexeme != "record" {
		t.Fatalf("lowercase record must stay an identifier, got %q", toks[6].Lexeme)
	}
}

func TestScanComments(t *testing.T) {
	wantTypes(t, "// a comment\nlet A = {} // trailing\n", []TokenType{
		LET, IDENT, ASSIGN, LBRACE, RBRACE, EOF,
	})
}

func TestScanNumberDotDisambiguation(t *testing.T) {
	// A dot followed by a digit extends the number.
	toks := wantTypes(t, "3.14", []TokenType{NUMBER, EOF})
	if toks[0].Lexeme != "3.14" {
		t.Fatalf("want lexeme 3.14, got %q", toks[0].Lexeme)
	}

	// A dot followed by a letter is attribute access.
	toks = wantTypes(t, "p.age", []TokenType{IDENT, DOT, IDENT, EOF})
	if toks[2].Lexeme != "age" {
		t.Fatalf("want attribute age, got %q", toks[2].Lexeme)
	}

	// Even after a number the dot stays a DOT when no digit follows.
	wantTypes(t, "3.x", []TokenType{NUMBER, DOT, IDENT, EOF})
}

func TestScanStringEscapes(t *testing.T) {
	toks := wantTypes(t, `"a\"b\\c\n\t\r"`, []TokenType{STRING, EOF})
	if want := "a\"b\\c\n\t\r"; toks[0].Lexeme != want {
		t.Fatalf("decoded string: want %q, got %q", want, toks[0].Lexeme)
	}
}

func TestScanPositions(t *testing.T) {
	toks := mustScan(t, "let A = {}\nlet B = A")
	// second 'let' starts line 2, column 0
	if toks[5].Type != LET || toks[5].Line != 2 || toks[5].Col != 0 {
		t.Fatalf("second let position: got line %d col %d", toks[5].Line, toks[5].Col)
	}
	// 'B' follows at column 4
	if toks[6].Lexeme != "B" || toks[6].Col != 4 {
		t.Fatalf("B position: got col %d", toks[6].Col)
	}
}

func TestScanErrors(t *testing.T) {
	e := mustFailScan(t, `let A = "oops`, "not terminated")
	if !IsIncomplete(e) {
		t.Fatalf("unterminated string at end of input should read as incomplete")
	}

	mustFailScan(t, "let A = \"bad\nline\"", "not terminated")
	mustFailScan(t, `let A = "bad \q escape"`, "invalid escape")
	mustFailScan(t, "let A = 1 ! 2", "unexpected character")
	mustFailScan(t, "let A = #", "unexpected character")
}
