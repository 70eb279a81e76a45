// parser.go — recursive-descent parser for Kantor.
//
// GRAMMAR
// -------
// program        := declaration* EOF
// declaration    := typeDefinition | setDefinition
// typeDefinition := "type" IDENT ":" "Record" "(" (IDENT ":" IDENT ("," ...)* )? ")"
// setDefinition  := "let" IDENT (":" IDENT)? "=" setExpr
// setExpr        := primarySet (("|" | "&" | "*") primarySet)*
// primarySet     := braceExpr | IDENT
// braceExpr      := "{" "}"
//                 | "{" predExpr "|" inVars "of" IDENT ("," predExpr)? "}"
//                 | "{" predExpr ("," predExpr)* ","? "}"
// inVars         := IDENT | "(" IDENT ("," IDENT)* ")"
// predExpr       := term (cmpOp term)*            // loops: chains left-assoc
// term           := primary ("." IDENT)*
// primary        := NUMBER | STRING | IDENT | braceExpr | parenExpr
// parenExpr      := recordLit | "(" ")" | "(" predExpr ("," predExpr)* ","? ")"
//                 | "(" predExpr ")"
// recordLit      := "(" IDENT ":" predExpr ("," IDENT ":" predExpr)* ")"
//
// The three set operators share a single precedence level and associate
// strictly left to right. A "(" needs one token of lookahead past the next
// token to split record instances (IDENT ":" follows) from tuples and
// transparent grouping. The comparison level deliberately loops, so
// `a < b < c` parses as `(a < b) < c`; whether that evaluates is the
// evaluator's business.
package kantor

import (
	"fmt"
	"strconv"
	"strings"
)

// Parse scans and parses a complete Kantor source string.
func Parse(src string) (*Program, error) {
	toks, err := NewLexer(src).Scan()
	if err != nil {
		return nil, err
	}
	return ParseTokens(toks)
}

// ParseTokens parses a token stream produced by Lexer.Scan. The stream must
// be terminated by an EOF token.
func ParseTokens(toks []Token) (*Program, error) {
	if len(toks) == 0 || toks[len(toks)-1].Type != EOF {
		toks = append(toks, Token{Type: EOF, Line: 1, Col: 0})
	}
	p := &parser{toks: toks}
	return p.program()
}

type parser struct {
	toks []Token
	i    int
}

// ─────────────────────────── token basics & helpers ─────────────────────────

func (p *parser) peek() Token {
	if p.i >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.i]
}

// peekAt looks n tokens past the current one (peekAt(0) == peek()).
func (p *parser) peekAt(n int) Token {
	idx := p.i + n
	if idx >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[idx]
}

func (p *parser) prev() Token { return p.toks[p.i-1] }

func (p *parser) atEnd() bool { return p.peek().Type == EOF }

func (p *parser) advance() Token {
	tok := p.peek()
	if tok.Type != EOF {
		p.i++
	}
	return tok
}

func (p *parser) check(tt TokenType) bool { return p.peek().Type == tt }

func (p *parser) match(tts ...TokenType) bool {
	for _, tt := range tts {
		if p.peek().Type == tt {
			p.advance()
			return true
		}
	}
	return false
}

// expect consumes a token of the given type or fails with a syntax error
// carrying the expected set and the offending token.
func (p *parser) expect(tt TokenType) (Token, error) {
	if p.check(tt) {
		return p.advance(), nil
	}
	return Token{}, p.unexpected(fmt.Sprintf("expected %s", tt), tt)
}

// unexpected builds a syntax error at the current token.
func (p *parser) unexpected(msg string, expected ...TokenType) error {
	got := p.peek()
	full := msg
	if got.Type == EOF {
		full += ", found end of input"
	} else {
		full += fmt.Sprintf(", found %s (%q)", got.Type, got.Lexeme)
	}
	return &Error{
		Kind:     KindSyntax,
		Msg:      full,
		Line:     got.Line,
		Col:      got.Col + 1,
		Expected: expected,
		AtEOF:    got.Type == EOF,
		Got:      got.Lexeme,
	}
}

func at(tok Token) pos { return pos{Line: tok.Line, Col: tok.Col + 1} }

// ───────────────────────────────── top level ────────────────────────────────

func (p *parser) program() (*Program, error) {
	prog := &Program{}
	for !p.atEnd() {
		var d Decl
		var err error
		switch p.peek().Type {
		case TYPE:
			d, err = p.typeDefinition()
		case LET:
			d, err = p.setDefinition()
		default:
			return nil, p.unexpected("unexpected token at top level", TYPE, LET)
		}
		if err != nil {
			return nil, err
		}
		prog.Decls = append(prog.Decls, d)
	}
	return prog, nil
}

func (p *parser) typeDefinition() (*TypeDef, error) {
	kw, _ := p.expect(TYPE)
	name, err := p.expect(IDENT)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(COLON); err != nil {
		return nil, err
	}

	// Only the Record shape is supported today; a positional (tuple) shape
	// is the designated extension point.
	if !p.check(RECORD) {
		return nil, p.unexpected(
			fmt.Sprintf("unsupported type shape for %q (only Record is supported)", name.Lexeme),
			RECORD)
	}
	p.advance()

	if _, err := p.expect(LPAREN); err != nil {
		return nil, err
	}
	var fields []TypeField
	if !p.check(RPAREN) {
		for {
			fname, err := p.expect(IDENT)
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(COLON); err != nil {
				return nil, err
			}
			ftype, err := p.expect(IDENT)
			if err != nil {
				return nil, err
			}
			fields = append(fields, TypeField{Name: fname.Lexeme, TypeName: ftype.Lexeme})
			if !p.match(COMMA) {
				break
			}
		}
	}
	if _, err := p.expect(RPAREN); err != nil {
		return nil, err
	}
	return &TypeDef{pos: at(kw), Name: name.Lexeme, Fields: fields}, nil
}

func (p *parser) setDefinition() (*SetDef, error) {
	kw, _ := p.expect(LET)
	name, err := p.expect(IDENT)
	if err != nil {
		return nil, err
	}
	typeName := ""
	if p.match(COLON) {
		tn, err := p.expect(IDENT)
		if err != nil {
			return nil, err
		}
		typeName = tn.Lexeme
	}
	if _, err := p.expect(ASSIGN); err != nil {
		return nil, err
	}
	expr, err := p.setExpr()
	if err != nil {
		return nil, err
	}
	return &SetDef{pos: at(kw), Name: name.Lexeme, TypeName: typeName, Expr: expr}, nil
}

// ──────────────────────────────── set expressions ───────────────────────────

// setExpr parses a primary set expression followed by any number of binary
// set operations, all at one precedence level, left-associative.
func (p *parser) setExpr() (Expr, error) {
	node, err := p.primarySet("expected set expression (starting with '{' or identifier)")
	if err != nil {
		return nil, err
	}
	for p.check(PIPE) || p.check(AMP) || p.check(STAR) {
		op := p.advance()
		right, err := p.primarySet(fmt.Sprintf("expected set expression after operator %q", op.Lexeme))
		if err != nil {
			return nil, err
		}
		node = &SetOp{pos: at(op), Left: node, Op: op.Lexeme, Right: right}
	}
	return node, nil
}

func (p *parser) primarySet(errMsg string) (Expr, error) {
	switch p.peek().Type {
	case LBRACE:
		return p.braceExpr()
	case IDENT:
		tok := p.advance()
		return &Ident{pos: at(tok), Name: tok.Lexeme}, nil
	default:
		return nil, p.unexpected(errMsg, LBRACE, IDENT)
	}
}

// braceExpr parses either a literal set or a comprehension, entered at '{'.
func (p *parser) braceExpr() (Expr, error) {
	open, err := p.expect(LBRACE)
	if err != nil {
		return nil, err
	}

	if p.match(RBRACE) { // empty set {}
		return &SetLit{pos: at(open)}, nil
	}

	first, err := p.predExpr()
	if err != nil {
		return nil, err
	}

	if p.match(PIPE) { // comprehension
		vars, err := p.inVars()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(OF); err != nil {
			return nil, err
		}
		// Comprehensions may only iterate a named set.
		src, err := p.expect(IDENT)
		if err != nil {
			return nil, err
		}
		var pred Expr
		if p.match(COMMA) {
			pred, err = p.predExpr()
			if err != nil {
				return nil, err
			}
		}
		if _, err := p.expect(RBRACE); err != nil {
			return nil, err
		}
		// A parenthesized first expression contributes its components as
		// multiple outputs (tuple-valued comprehension).
		var outs []Expr
		if tup, ok := first.(*TupleLit); ok {
			outs = tup.Elems
		} else {
			outs = []Expr{first}
		}
		return &Comprehension{
			pos:    at(open),
			Outs:   outs,
			Vars:   vars,
			Source: &Ident{pos: at(src), Name: src.Lexeme},
			Pred:   pred,
		}, nil
	}

	// literal set
	elems := []Expr{first}
	for p.match(COMMA) {
		if p.check(RBRACE) { // trailing comma
			break
		}
		e, err := p.predExpr()
		if err != nil {
			return nil, err
		}
		elems = append(elems, e)
	}
	if _, err := p.expect(RBRACE); err != nil {
		return nil, err
	}
	return &SetLit{pos: at(open), Elems: elems}, nil
}

// inVars parses the comprehension input variables: a single identifier, or
// a parenthesized list for tuple destructuring.
func (p *parser) inVars() ([]string, error) {
	if p.match(LPAREN) {
		var vars []string
		for {
			v, err := p.expect(IDENT)
			if err != nil {
				return nil, err
			}
			vars = append(vars, v.Lexeme)
			if p.match(COMMA) {
				continue
			}
			if p.match(RPAREN) {
				return vars, nil
			}
			return nil, p.unexpected("expected ',' or ')' in comprehension input variables", COMMA, RPAREN)
		}
	}
	v, err := p.expect(IDENT)
	if err != nil {
		return nil, err
	}
	return []string{v.Lexeme}, nil
}

// ───────────────────────────── predicate expressions ────────────────────────

func (p *parser) predExpr() (Expr, error) {
	return p.comparison()
}

func isCmpOp(tt TokenType) bool {
	switch tt {
	case EQ, NEQ, LESS, LESS_EQ, GREATER, GREATER_EQ:
		return true
	}
	return false
}

func (p *parser) comparison() (Expr, error) {
	node, err := p.term()
	if err != nil {
		return nil, err
	}
	for isCmpOp(p.peek().Type) {
		op := p.advance()
		right, err := p.term()
		if err != nil {
			return nil, err
		}
		node = &Cmp{pos: at(op), Left: node, Op: op.Lexeme, Right: right}
	}
	return node, nil
}

// term parses a primary followed by a left-associative chain of .field
// attribute accesses.
func (p *parser) term() (Expr, error) {
	node, err := p.primary()
	if err != nil {
		return nil, err
	}
	for p.match(DOT) {
		name, err := p.expect(IDENT)
		if err != nil {
			return nil, err
		}
		node = &Attr{pos: at(name), Obj: node, Name: name.Lexeme}
	}
	return node, nil
}

func (p *parser) primary() (Expr, error) {
	tok := p.peek()
	switch tok.Type {
	case NUMBER:
		p.advance()
		return numberLit(tok)
	case STRING:
		p.advance()
		return &StringLit{pos: at(tok), Value: tok.Lexeme}, nil
	case IDENT:
		p.advance()
		return &Ident{pos: at(tok), Name: tok.Lexeme}, nil
	case LBRACE: // sets nest inside expressions
		return p.braceExpr()
	case LPAREN:
		return p.parenExpr()
	default:
		return nil, p.unexpected("unexpected token in expression",
			NUMBER, STRING, IDENT, LBRACE, LPAREN)
	}
}

// parenExpr disambiguates the three '(' forms with one token of lookahead:
// record instance ('(' IDENT ':' ...), empty tuple, and tuple-or-grouping.
func (p *parser) parenExpr() (Expr, error) {
	if p.peekAt(1).Type == IDENT && p.peekAt(2).Type == COLON {
		return p.recordLit()
	}

	open, _ := p.expect(LPAREN)
	if p.match(RPAREN) { // empty tuple ()
		return &TupleLit{pos: at(open)}, nil
	}

	first, err := p.predExpr()
	if err != nil {
		return nil, err
	}

	if p.check(COMMA) { // tuple
		elems := []Expr{first}
		for p.match(COMMA) {
			if p.check(RPAREN) { // trailing comma
				break
			}
			e, err := p.predExpr()
			if err != nil {
				return nil, err
			}
			elems = append(elems, e)
		}
		if _, err := p.expect(RPAREN); err != nil {
			return nil, err
		}
		return &TupleLit{pos: at(open), Elems: elems}, nil
	}

	// transparent grouping
	if _, err := p.expect(RPAREN); err != nil {
		return nil, err
	}
	return first, nil
}

func (p *parser) recordLit() (*RecordLit, error) {
	open, err := p.expect(LPAREN)
	if err != nil {
		return nil, err
	}
	var fields []FieldAssign
	if !p.check(RPAREN) {
		for {
			name, err := p.expect(IDENT)
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(COLON); err != nil {
				return nil, err
			}
			val, err := p.predExpr()
			if err != nil {
				return nil, err
			}
			fields = append(fields, FieldAssign{Name: name.Lexeme, Value: val})
			if !p.match(COMMA) {
				break
			}
		}
	}
	if _, err := p.expect(RPAREN); err != nil {
		return nil, err
	}
	return &RecordLit{pos: at(open), Fields: fields}, nil
}

// numberLit converts a NUMBER token's lexeme, choosing integer or floating
// by the presence of a fractional part.
func numberLit(tok Token) (*NumberLit, error) {
	if strings.Contains(tok.Lexeme, ".") {
		f, err := strconv.ParseFloat(tok.Lexeme, 64)
		if err != nil {
			return nil, &Error{Kind: KindValue, Line: tok.Line, Col: tok.Col + 1,
				Msg: fmt.Sprintf("invalid number literal: %q", tok.Lexeme)}
		}
		return &NumberLit{pos: at(tok), Num: f}, nil
	}
	n, err := strconv.ParseInt(tok.Lexeme, 10, 64)
	if err != nil {
		return nil, &Error{Kind: KindValue, Line: tok.Line, Col: tok.Col + 1,
			Msg: fmt.Sprintf("invalid number literal: %q", tok.Lexeme)}
	}
	return &NumberLit{pos: at(tok), IsInt: true, Int: n}, nil
}
