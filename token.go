// token.go — lexical token types for the Kantor language.
package kantor

// TokenType represents the kind of token.
type TokenType int

const (
	// Special
	EOF TokenType = iota
	ILLEGAL

	// Literals & identifiers
	IDENT
	NUMBER
	STRING

	// Punctuation
	LBRACE // "{"
	RBRACE // "}"
	LPAREN // "("
	RPAREN // ")"
	COMMA  // ","
	COLON  // ":"
	DOT    // "."

	// Operators
	ASSIGN     // "="
	PIPE       // "|"  set union; also comprehension separator
	AMP        // "&"  set intersection
	STAR       // "*"  cross product
	EQ         // "=="
	NEQ        // "!="
	LESS       // "<"
	LESS_EQ    // "<="
	GREATER    // ">"
	GREATER_EQ // ">="

	// Keywords
	LET
	TYPE
	OF
	FILTER // reserved; accepted by no production yet
	RECORD
)

var tokenNames = map[TokenType]string{
	EOF:        "end of input",
	ILLEGAL:    "illegal character",
	IDENT:      "identifier",
	NUMBER:     "number",
	STRING:     "string",
	LBRACE:     "'{'",
	RBRACE:     "'}'",
	LPAREN:     "'('",
	RPAREN:     "')'",
	COMMA:      "','",
	COLON:      "':'",
	DOT:        "'.'",
	ASSIGN:     "'='",
	PIPE:       "'|'",
	AMP:        "'&'",
	STAR:       "'*'",
	EQ:         "'=='",
	NEQ:        "'!='",
	LESS:       "'<'",
	LESS_EQ:    "'<='",
	GREATER:    "'>'",
	GREATER_EQ: "'>='",
	LET:        "'let'",
	TYPE:       "'type'",
	OF:         "'of'",
	FILTER:     "'filter'",
	RECORD:     "'Record'",
}

func (tt TokenType) String() string {
	if s, ok := tokenNames[tt]; ok {
		return s
	}
	return "unknown token"
}

// Token is a lexical token with its literal text and source position.
// Line is 1-based; Col is a 0-based column within the line (rendered
// 1-based by the error snippet printer).
type Token struct {
	Type   TokenType
	Lexeme string
	Line   int
	Col    int
}

// keywords map
var keywords = map[string]TokenType{
	"let":    LET,
	"type":   TYPE,
	"of":     OF,
	"filter": FILTER,
	"Record": RECORD,
}
