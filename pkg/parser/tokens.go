package parser

import "github.com/sandrolain/gojexp/pkg/types"

// TokenType represents the type of a lexical token.
type TokenType uint8

const (
	TokenEOF TokenType = iota

	// Literals
	TokenNumber   // 12, 1.5e2
	TokenString   // "text"
	TokenBoolean  // true, false
	TokenNull     // null
	TokenTemplate // `text $path`

	TokenName  // identifier
	TokenPunct // operators and delimiters
	TokenEOL   // \r or \n
)

// String returns a string representation of the token type.
func (tt TokenType) String() string {
	switch tt {
	case TokenEOF:
		return "(eof)"
	case TokenNumber:
		return "(number)"
	case TokenString:
		return "(string)"
	case TokenBoolean:
		return "(boolean)"
	case TokenNull:
		return "(null)"
	case TokenTemplate:
		return "(template)"
	case TokenName:
		return "(name)"
	case TokenPunct:
		return "(punctuation)"
	case TokenEOL:
		return "(eol)"
	default:
		return "(unknown)"
	}
}

// Token is a lexical token.
type Token struct {
	Type TokenType
	// Term is the source text of the token.
	Term string
	// Value is the decoded literal for Number, String, Boolean and Null.
	Value types.Value
	// Pos is the byte offset the token is reported at. Punctuation, numbers
	// and strings report their first byte; names, keywords and templates
	// report the offset just past their last byte.
	Pos int
	// Parts holds the segments of a template.
	Parts []TemplatePart
}

// Is reports whether t is the punctuation or EOL token sym.
func (t *Token) Is(sym string) bool {
	return t != nil && (t.Type == TokenPunct || t.Type == TokenEOL) && t.Term == sym
}

// TemplatePart is a literal run of text or the source of an embedded path.
type TemplatePart struct {
	Text   string
	IsPath bool
}

// punct1 lists the single-byte punctuation that never combines.
var punct1 = [...]bool{
	',': true, '(': true, ')': true, '[': true, ']': true, '{': true, '}': true,
	':': true, ';': true, '@': true, '*': true, '/': true, '%': true, '.': true,
	'-': true, '^': true, '$': true,
}

func isPunct1(r rune) bool {
	return r >= 0 && int(r) < len(punct1) && punct1[r]
}

// lookupKeyword returns the literal token for a reserved name, or TokenName.
func lookupKeyword(s string) (TokenType, types.Value) {
	switch s {
	case "null":
		return TokenNull, types.Null
	case "true":
		return TokenBoolean, types.True
	case "false":
		return TokenBoolean, types.False
	default:
		return TokenName, types.Null
	}
}
