// Package parser turns expression source into compiled statements.
//
// Statements are separated by ';' or line breaks. Each statement is parsed
// by one of two precedence-climbing algorithms sharing the same operator
// table and primary grammar:
//   - the level-by-level climber, which descends one precedence level per
//     call and is the default
//   - the forward-scanning climber (WithOptimize), which jumps directly to
//     the level of the next operator
//
// Both algorithms produce identical trees; the canonical dump returned by
// ASTNode.String makes this easy to check.
//
// # Example
//
//	stmts, err := parser.Compile("x = [1, 2, 3]; x.sum()")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(stmts[1]) // sum(x)
package parser

import (
	"github.com/sandrolain/gojexp/pkg/types"
)

// Compile parses every statement of source. Empty statements such as ()
// are dropped.
func Compile(source string, opts ...CompileOption) ([]*types.Expression, error) {
	p := NewParser(source, opts...)
	nodes, err := p.Parse()
	if err != nil {
		return nil, err
	}
	out := make([]*types.Expression, len(nodes))
	for i, n := range nodes {
		out[i] = types.NewExpression(n, source).WithArena(p.arena, p.opts.Optimize)
	}
	return out, nil
}

// Parser holds the state of one compilation.
type Parser struct {
	lexer  *Lexer
	cur    *Token
	eof    bool
	lexErr error
	opts   CompileOptions
	arena  *types.NodeArena
	depth  int
}

// NewParser creates a new parser for the given input string.
func NewParser(input string, opts ...CompileOption) *Parser {
	return &Parser{
		lexer: NewLexer(input),
		opts:  newOptions(opts),
		arena: types.NewNodeArena(),
	}
}

// sub returns a parser for an embedded source sharing p's options and arena.
func (p *Parser) sub(input string) *Parser {
	return &Parser{
		lexer: NewLexer(input),
		opts:  p.opts,
		arena: p.arena,
		depth: p.depth,
	}
}

// Parse parses all statements.
func (p *Parser) Parse() ([]*types.ASTNode, error) {
	return p.statements(false)
}

func (p *Parser) statements(firstOnly bool) ([]*types.ASTNode, error) {
	var nodes []*types.ASTNode
	for {
		n, err := p.expression(0)
		if err != nil {
			return nil, p.fail(err)
		}
		if n != nil {
			nodes = append(nodes, n)
		}
		if firstOnly {
			break
		}
		t, ok := p.peek()
		if !ok {
			break
		}
		if !t.Is(";") && !t.Is("\n") && !t.Is("\r") {
			return nil, p.unexpected(t)
		}
		p.next()
		if _, ok := p.peek(); !ok {
			break
		}
	}
	if p.lexErr != nil {
		return nil, p.lexErr
	}
	return nodes, nil
}

// expression parses at the given precedence level with the selected
// algorithm.
func (p *Parser) expression(level int) (*types.ASTNode, error) {
	if p.opts.Optimize {
		return p.parseRAOpt(level)
	}
	return p.parseRA(level)
}

// peek returns the current token. ok is false at the end of input or after
// a tokenizer error, which is then reported in place of any parse error.
func (p *Parser) peek() (*Token, bool) {
	if p.cur == nil && !p.eof && p.lexErr == nil {
		t, err := p.lexer.Next()
		switch {
		case err != nil:
			p.lexErr = err
		case t.Type == TokenEOF:
			p.eof = true
		default:
			p.cur = &t
		}
	}
	return p.cur, p.cur != nil
}

// peekIs reports whether the current token is the symbol sym.
func (p *Parser) peekIs(sym string) bool {
	t, ok := p.peek()
	return ok && t.Term == sym
}

func (p *Parser) next() {
	p.cur = nil
}

// mustPeek is peek that fails at the end of input.
func (p *Parser) mustPeek() (*Token, error) {
	t, ok := p.peek()
	if !ok {
		return nil, p.fail(types.UnexpectedEOF())
	}
	return t, nil
}

// consume takes the current token, which must be sym.
func (p *Parser) consume(sym string) (*Token, error) {
	t, err := p.mustPeek()
	if err != nil {
		return nil, err
	}
	p.next()
	if t.Term != sym {
		e := types.ParseErrorf("expect '%s' at %d", sym, t.Pos)
		e.Position = t.Pos
		e.Token = t.Term
		return nil, e
	}
	return t, nil
}

func (p *Parser) fail(err error) error {
	if p.lexErr != nil {
		return p.lexErr
	}
	return err
}

func (p *Parser) unexpected(t *Token) error {
	return p.fail(types.UnexpectedToken(t.Term, t.Pos))
}

func (p *Parser) enter() error {
	p.depth++
	if p.depth > p.opts.MaxDepth {
		return types.ParseErrorf("expression nested deeper than %d levels", p.opts.MaxDepth)
	}
	return nil
}

func (p *Parser) leave() {
	p.depth--
}

// parseEnclosed parses a left...right list of level-0 expressions separated
// by sep. Elements may be nil when they are empty parentheses.
func (p *Parser) parseEnclosed(left, right, sep string) ([]*types.ASTNode, error) {
	return enclosed(p, left, right, sep, func() (*types.ASTNode, error) {
		return p.expression(0)
	})
}

func enclosed[T any](p *Parser, left, right, sep string, parse func() (T, error)) ([]T, error) {
	if _, err := p.consume(left); err != nil {
		return nil, err
	}
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()

	var items []T
	if p.peekIs(right) {
		p.next()
		return items, nil
	}
	for {
		item, err := parse()
		if err != nil {
			return nil, err
		}
		items = append(items, item)

		t, err := p.mustPeek()
		if err != nil {
			return nil, err
		}
		switch t.Term {
		case right:
			p.next()
			return items, nil
		case sep:
			p.next()
		default:
			return nil, p.unexpected(t)
		}
		if _, ok := p.peek(); !ok {
			return nil, p.fail(types.UnexpectedEOF())
		}
		if p.peekIs(right) {
			p.next()
			return items, nil
		}
	}
}
