package parser

import (
	"github.com/sandrolain/gojexp/pkg/types"
)

// parseHighest parses a primary or a parenthesised group. Empty
// parentheses yield a nil node; a single element yields the element itself.
func (p *Parser) parseHighest() (*types.ASTNode, error) {
	t, err := p.mustPeek()
	if err != nil {
		return nil, err
	}
	if !t.Is("(") {
		return p.parseValue()
	}

	pos := t.Pos
	items, err := p.parseEnclosed("(", ")", ",")
	if err != nil {
		return nil, err
	}
	switch len(items) {
	case 0:
		return nil, nil
	case 1:
		return items[0], nil
	}
	n := p.arena.Alloc(types.NodeGroup, pos)
	n.Arguments = items
	return n, nil
}

func (p *Parser) parseValue() (*types.ASTNode, error) {
	t, err := p.mustPeek()
	if err != nil {
		return nil, err
	}
	switch t.Type {
	case TokenString, TokenNull, TokenNumber, TokenBoolean:
		p.next()
		n := p.arena.Alloc(types.NodeLiteral, t.Pos)
		n.Value = t.Value
		return n, nil
	case TokenTemplate:
		p.next()
		return p.parseTemplate(t)
	case TokenName:
		p.next()
		return p.parseName(t)
	case TokenPunct:
		switch t.Term {
		case "{":
			return p.parseMap(t)
		case "[":
			items, err := p.parseEnclosed("[", "]", ",")
			if err != nil {
				return nil, err
			}
			n := p.arena.Alloc(types.NodeList, t.Pos)
			n.Arguments = items
			return n, nil
		case "@":
			p.next()
			stmts, err := p.parseEnclosed("{", "}", ";")
			if err != nil {
				return nil, err
			}
			n := p.arena.Alloc(types.NodeBlock, t.Pos)
			n.Block = &types.Block{Statements: stmts}
			return n, nil
		case "$":
			return p.parseJSONPath()
		}
	}
	return nil, p.unexpected(t)
}

// parseName resolves a name token. Registered functions must be called;
// any other name is a variable, optionally invoked as a stored block.
func (p *Parser) parseName(t *Token) (*types.ASTNode, error) {
	if _, ok := p.opts.Functions.Lookup(t.Term); ok {
		args, err := p.parseEnclosed("(", ")", ",")
		if err != nil {
			return nil, err
		}
		n := p.arena.Alloc(types.NodeCall, t.Pos)
		n.Name = t.Term
		n.Arguments = args
		return n, nil
	}

	n := p.arena.Alloc(types.NodeName, t.Pos)
	n.Name = t.Term
	if p.peekIs("(") {
		args, err := p.parseEnclosed("(", ")", ",")
		if err != nil {
			return nil, err
		}
		n.Arguments = args
		n.HasArgs = true
	}
	return n, nil
}

type keyValue struct {
	key   string
	value *types.ASTNode
}

func (p *Parser) parseMap(open *Token) (*types.ASTNode, error) {
	pairs, err := enclosed(p, "{", "}", ",", func() (keyValue, error) {
		t, err := p.mustPeek()
		if err != nil {
			return keyValue{}, err
		}
		p.next()
		if t.Type != TokenString {
			return keyValue{}, p.unexpected(t)
		}
		if _, err := p.consume(":"); err != nil {
			return keyValue{}, err
		}
		v, err := p.expression(0)
		if err != nil {
			return keyValue{}, err
		}
		key, _ := t.Value.AsString()
		return keyValue{key: key, value: v}, nil
	})
	if err != nil {
		return nil, err
	}
	n := p.arena.Alloc(types.NodeMap, open.Pos)
	for _, kv := range pairs {
		n.Keys = append(n.Keys, kv.key)
		n.Arguments = append(n.Arguments, kv.value)
	}
	return n, nil
}

// parseTemplate compiles the embedded paths of a template token. Each path
// is parsed on its own and only its first statement is kept.
func (p *Parser) parseTemplate(t *Token) (*types.ASTNode, error) {
	n := p.arena.Alloc(types.NodeTemplate, t.Pos)
	for _, part := range t.Parts {
		if !part.IsPath {
			lit := p.arena.Alloc(types.NodeLiteral, t.Pos)
			lit.Value = types.Str(part.Text)
			n.Arguments = append(n.Arguments, lit)
			continue
		}
		nodes, err := p.sub(part.Text).statements(true)
		if err != nil {
			return nil, err
		}
		if len(nodes) == 0 {
			return nil, types.UnexpectedToken(part.Text, t.Pos)
		}
		n.Arguments = append(n.Arguments, nodes[0])
	}
	return n, nil
}
