package parser

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/sandrolain/gojexp/pkg/types"
)

const eof = -1

var numberRe = regexp.MustCompile(`^[0-9]*\.?[0-9]+([eE][-+]?[0-9]+)?`)

// Lexer converts an expression into a sequence of tokens on demand.
// The implementation is based on Rob Pike's "Lexical Scanning in Go" technique.
type Lexer struct {
	input   string // Input string being scanned
	start   int    // Start position of current token
	current int    // Current position in input
	width   int    // Width of last rune read
}

// NewLexer creates a new lexer from the provided input string.
func NewLexer(input string) *Lexer {
	return &Lexer{input: input}
}

// Next returns the next token. At the end of the input it returns a token
// of type TokenEOF.
func (l *Lexer) Next() (Token, error) {
	for {
		l.acceptAll(isSpace)
		l.ignore()
		if !l.acceptRune('#') {
			break
		}
		for r := l.nextRune(); r != eof && r != '\r' && r != '\n'; r = l.nextRune() {
		}
	}

	ch := l.nextRune()
	switch {
	case ch == eof:
		return Token{Type: TokenEOF, Pos: l.current}, nil
	case isPunct1(ch):
		return l.tokenAt(TokenPunct, l.start), nil
	case ch == '=' || ch == '!' || ch == '>':
		l.acceptRune('=')
		return l.tokenAt(TokenPunct, l.start), nil
	case ch == '<':
		if l.acceptRune('=') {
			l.acceptRune('>')
		}
		return l.tokenAt(TokenPunct, l.start), nil
	case ch == '+':
		l.acceptRune('+')
		return l.tokenAt(TokenPunct, l.start), nil
	case ch == '|' || ch == '&':
		if !l.acceptRune(ch) {
			return Token{}, types.UnexpectedToken(string(ch), l.current)
		}
		return l.tokenAt(TokenPunct, l.start), nil
	case ch == '"':
		return l.scanString()
	case ch == '`':
		return l.scanTemplate()
	case ch == '\r' || ch == '\n':
		return l.tokenAt(TokenEOL, l.start), nil
	case ch >= '0' && ch <= '9':
		l.backup()
		return l.scanNumber()
	case unicode.IsLetter(ch) || ch == '_':
		l.acceptAll(isNameChar)
		t := l.newToken(TokenName)
		t.Type, t.Value = lookupKeyword(t.Term)
		return t, nil
	}
	return Token{}, types.UnexpectedToken(string(ch), l.start)
}

// tokenAt emits the pending token reported at pos instead of its end.
func (l *Lexer) tokenAt(tt TokenType, pos int) Token {
	t := l.newToken(tt)
	t.Pos = pos
	return t
}

// scanString reads a string literal. The opening quote has already been
// consumed.
func (l *Lexer) scanString() (Token, error) {
	pos := l.start
	var sb strings.Builder
	for {
		switch r := l.nextRune(); r {
		case eof:
			return Token{}, types.UnexpectedEOF()
		case '"':
			t := l.tokenAt(TokenString, pos)
			t.Value = types.Str(sb.String())
			return t, nil
		case '\\':
			e := l.nextRune()
			if e == eof {
				return Token{}, types.UnexpectedEOF()
			}
			d, ok := unescape(e)
			if !ok {
				return Token{}, types.ParseErrorf("unexpected '\\%c' at pos %d", e, l.current)
			}
			sb.WriteRune(d)
		default:
			sb.WriteRune(r)
		}
	}
}

// unescape decodes the character following a backslash. Both the letter
// form (\n) and the raw control character are accepted.
func unescape(r rune) (rune, bool) {
	switch r {
	case '\\', '"', '\b', '\t', '\n', '\f', '\r':
		return r, true
	case 'b':
		return '\b', true
	case 't':
		return '\t', true
	case 'n':
		return '\n', true
	case 'f':
		return '\f', true
	case 'r':
		return '\r', true
	}
	return r, false
}

func (l *Lexer) scanNumber() (Token, error) {
	term := numberRe.FindString(l.input[l.current:])
	l.current += len(term)
	t := l.tokenAt(TokenNumber, l.start)
	if strings.ContainsAny(term, ".eE") {
		f, err := strconv.ParseFloat(term, 64)
		if err != nil {
			return Token{}, types.UnexpectedToken(term, t.Pos).WithCause(err)
		}
		t.Value = types.Float(f)
		return t, nil
	}
	i, err := strconv.ParseInt(term, 10, 64)
	if err != nil {
		return Token{}, types.UnexpectedToken(term, t.Pos).WithCause(err)
	}
	t.Value = types.Int(i)
	return t, nil
}

// scanTemplate reads a backtick template. The opening backtick has already
// been consumed. Every unescaped $ flushes the pending text and starts an
// embedded path whose extent is found by extractPath.
func (l *Lexer) scanTemplate() (Token, error) {
	var (
		parts   []TemplatePart
		buf     strings.Builder
		escaped bool
	)
	for {
		r := l.nextRune()
		if r == eof {
			break
		}
		if r == '\\' {
			if escaped {
				buf.WriteRune(r)
			}
			escaped = !escaped
			continue
		}
		if r == '$' && !escaped {
			parts = append(parts, TemplatePart{Text: buf.String()})
			buf.Reset()
			l.backup()
			parts = append(parts, TemplatePart{Text: l.extractPath(), IsPath: true})
			continue
		}
		if r == '`' && !escaped {
			break
		}
		buf.WriteRune(r)
		escaped = false
	}
	if buf.Len() > 0 {
		parts = append(parts, TemplatePart{Text: buf.String()})
	}
	t := l.newToken(TokenTemplate)
	t.Parts = parts
	return t, nil
}

// extractPath returns the source of the path starting at the $ under the
// cursor without parsing it. A ${...} path extends to the matching brace;
// a bare path extends over letters, dots and quoted runs.
func (l *Lexer) extractPath() string {
	var (
		buf                       strings.Builder
		escaped, enclosed, quoted bool
	)
	l.nextRune()
	buf.WriteByte('$')
	if l.acceptRune('{') {
		enclosed = true
	}

Loop:
	for {
		r := l.nextRune()
		switch {
		case r == eof:
			break Loop
		case r == '\\':
			if escaped {
				buf.WriteRune(r)
			}
			escaped = !escaped
		case r == '}' && !quoted:
			break Loop
		case r == '"':
			quoted = !quoted
			buf.WriteRune(r)
		case quoted || enclosed || unicode.IsLetter(r) || r == '.':
			buf.WriteRune(r)
		default:
			l.backup()
			break Loop
		}
	}
	if escaped {
		l.current--
	}
	return buf.String()
}

func (l *Lexer) newToken(tt TokenType) Token {
	t := Token{
		Type: tt,
		Term: l.input[l.start:l.current],
		Pos:  l.current,
	}
	l.width = 0
	l.start = l.current
	return t
}

func (l *Lexer) nextRune() rune {
	if l.current >= len(l.input) {
		l.width = 0
		return eof
	}
	r, w := utf8.DecodeRuneInString(l.input[l.current:])
	l.width = w
	l.current += w
	return r
}

func (l *Lexer) backup() {
	l.current -= l.width
	l.width = 0
}

func (l *Lexer) ignore() {
	l.start = l.current
}

func (l *Lexer) acceptRune(r rune) bool {
	return l.accept(func(c rune) bool {
		return c == r
	})
}

func (l *Lexer) accept(isValid func(rune) bool) bool {
	if isValid(l.nextRune()) {
		return true
	}
	l.backup()
	return false
}

func (l *Lexer) acceptAll(isValid func(rune) bool) bool {
	var matched bool
	for l.accept(isValid) {
		matched = true
	}
	return matched
}

// Character classification functions

func isSpace(r rune) bool {
	return r == ' ' || r == '\t'
}

func isNameChar(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}
