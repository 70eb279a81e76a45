// lexer.go — byte-wise scanner for Kantor source.
package kantor

import "fmt"

// Lexer scans a Kantor source string into tokens.
type Lexer struct {
	src    string
	start  int // start index of current token
	cur    int // current index
	line   int // 1-based
	col    int // 0-based column within line
	tokens []Token

	// precise token start position
	tokStartLine int
	tokStartCol  int
}

// NewLexer creates a new lexer for the given source.
func NewLexer(src string) *Lexer {
	return &Lexer{src: src, line: 1}
}

func (l *Lexer) isAtEnd() bool { return l.cur >= len(l.src) }

func (l *Lexer) peek() (byte, bool) {
	if l.isAtEnd() {
		return 0, false
	}
	return l.src[l.cur], true
}

func (l *Lexer) peekN(n int) (byte, bool) {
	idx := l.cur + n
	if idx >= len(l.src) {
		return 0, false
	}
	return l.src[idx], true
}

func (l *Lexer) advance() (byte, bool) {
	if l.isAtEnd() {
		return 0, false
	}
	ch := l.src[l.cur]
	l.cur++
	if ch == '\n' {
		l.line++
		l.col = 0
	} else {
		l.col++
	}
	return ch, true
}

func (l *Lexer) addToken(tt TokenType) Token {
	tok := Token{
		Type:   tt,
		Lexeme: l.src[l.start:l.cur],
		Line:   l.tokStartLine,
		Col:    l.tokStartCol,
	}
	l.tokens = append(l.tokens, tok)
	l.start = l.cur
	return tok
}

// addTokenText is for tokens whose lexeme differs from the raw source slice
// (decoded string literals).
func (l *Lexer) addTokenText(tt TokenType, text string) Token {
	tok := Token{Type: tt, Lexeme: text, Line: l.tokStartLine, Col: l.tokStartCol}
	l.tokens = append(l.tokens, tok)
	l.start = l.cur
	return tok
}

func (l *Lexer) err(msg string) error {
	return &Error{Kind: KindSyntax, Msg: msg, Line: l.line, Col: l.col + 1, AtEOF: l.cur >= len(l.src)}
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }
func isAlpha(b byte) bool { return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || b == '_' }
func isAlphaNum(b byte) bool {
	return isAlpha(b) || isDigit(b)
}

// skipWhitespaceAndComments eats spaces, tabs, newlines and '//' line comments.
func (l *Lexer) skipWhitespaceAndComments() {
	for !l.isAtEnd() {
		ch, _ := l.peek()
		switch {
		case ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n':
			l.advance()
			l.start = l.cur
		case ch == '/':
			b2, ok := l.peekN(1)
			if !ok || b2 != '/' {
				return
			}
			for {
				b, ok := l.peek()
				if !ok || b == '\n' {
					break
				}
				l.advance()
			}
			l.start = l.cur
		default:
			return
		}
	}
}

// scanString parses a double-quoted string literal with a small escape set.
// The opening quote has already been consumed.
func (l *Lexer) scanString() (string, error) {
	var out []byte
	for !l.isAtEnd() {
		ch, _ := l.advance()
		if ch == '"' {
			return string(out), nil
		}
		if ch == '\n' {
			return "", l.err("string was not terminated")
		}
		if ch == '\\' {
			esc, ok := l.advance()
			if !ok {
				return "", l.err("unfinished escape sequence")
			}
			switch esc {
			case '"':
				out = append(out, '"')
			case '\\':
				out = append(out, '\\')
			case 'n':
				out = append(out, '\n')
			case 'r':
				out = append(out, '\r')
			case 't':
				out = append(out, '\t')
			default:
				return "", l.err(fmt.Sprintf("invalid escape sequence: \\%c", esc))
			}
			continue
		}
		out = append(out, ch)
	}
	return "", l.err("string was not terminated")
}

// scanNumber consumes digits with an optional fractional part. The dot is
// consumed only when followed by a digit, so a DOT token after a number is
// still available for attribute access.
func (l *Lexer) scanNumber() {
	for {
		b, ok := l.peek()
		if !ok || !isDigit(b) {
			break
		}
		l.advance()
	}
	if b, ok := l.peek(); ok && b == '.' {
		if b2, ok2 := l.peekN(1); ok2 && isDigit(b2) {
			l.advance() // '.'
			for {
				b, ok := l.peek()
				if !ok || !isDigit(b) {
					break
				}
				l.advance()
			}
		}
	}
}

func (l *Lexer) scanIdentifier() string {
	for {
		b, ok := l.peek()
		if !ok || !isAlphaNum(b) {
			break
		}
		l.advance()
	}
	return l.src[l.start:l.cur]
}

func (l *Lexer) scanToken() (Token, error) {
	l.skipWhitespaceAndComments()
	l.tokStartLine = l.line
	l.tokStartCol = l.col
	l.start = l.cur

	if l.isAtEnd() {
		return l.addToken(EOF), nil
	}

	ch, _ := l.advance()

	switch ch {
	case '{':
		return l.addToken(LBRACE), nil
	case '}':
		return l.addToken(RBRACE), nil
	case '(':
		return l.addToken(LPAREN), nil
	case ')':
		return l.addToken(RPAREN), nil
	case ',':
		return l.addToken(COMMA), nil
	case ':':
		return l.addToken(COLON), nil
	case '.':
		return l.addToken(DOT), nil
	case '|':
		return l.addToken(PIPE), nil
	case '&':
		return l.addToken(AMP), nil
	case '*':
		return l.addToken(STAR), nil
	case '=':
		if b, ok := l.peek(); ok && b == '=' {
			l.advance()
			return l.addToken(EQ), nil
		}
		return l.addToken(ASSIGN), nil
	case '!':
		if b, ok := l.peek(); ok && b == '=' {
			l.advance()
			return l.addToken(NEQ), nil
		}
		return Token{}, l.err("unexpected character: '!'")
	case '<':
		if b, ok := l.peek(); ok && b == '=' {
			l.advance()
			return l.addToken(LESS_EQ), nil
		}
		return l.addToken(LESS), nil
	case '>':
		if b, ok := l.peek(); ok && b == '=' {
			l.advance()
			return l.addToken(GREATER_EQ), nil
		}
		return l.addToken(GREATER), nil
	}

	// Strings
	if ch == '"' {
		text, err := l.scanString()
		if err != nil {
			return Token{}, err
		}
		return l.addTokenText(STRING, text), nil
	}

	// Numbers
	if isDigit(ch) {
		l.scanNumber()
		return l.addToken(NUMBER), nil
	}

	// Identifiers / keywords
	if isAlpha(ch) {
		lex := l.scanIdentifier()
		if tt, ok := keywords[lex]; ok {
			return l.addToken(tt), nil
		}
		return l.addToken(IDENT), nil
	}

	return Token{}, l.err(fmt.Sprintf("unexpected character: %q", ch))
}

// Scan tokenizes the entire source and returns tokens (EOF included).
func (l *Lexer) Scan() ([]Token, error) {
	for {
		tok, err := l.scanToken()
		if err != nil {
			return nil, err
		}
		if tok.Type == EOF {
			return l.tokens, nil
		}
	}
}
