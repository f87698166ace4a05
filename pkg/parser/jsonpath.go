package parser

import (
	"github.com/sandrolain/gojexp/pkg/types"
)

// parseJSONPath parses
//
//	"$" ["{"] [target] { "." [name] | "[" ( "]" | index "]" | "@{" block "}" "]" ) } ["}"]
//
// where a "." without a name selects the root and may only come first.
func (p *Parser) parseJSONPath() (*types.ASTNode, error) {
	dollar, err := p.consume("$")
	if err != nil {
		return nil, err
	}
	n := p.arena.Alloc(types.NodePath, dollar.Pos)

	isEnclosed := p.peekIs("{")
	if isEnclosed {
		p.next()
	}
	if name, ok := p.parseJSONName(); ok {
		n.Target, n.HasTarget = name, true
	}

Loop:
	for {
		t, ok := p.peek()
		if !ok || t.Type != TokenPunct {
			break
		}
		switch t.Term {
		case "[":
			p.next()
			step, err := p.parseIndexStep()
			if err != nil {
				return nil, err
			}
			n.Steps = append(n.Steps, step)
		case ".":
			if len(n.Steps) == 1 && n.Steps[0].Kind == types.StepRoot {
				return nil, p.unexpected(t)
			}
			p.next()
			if name, ok := p.parseJSONName(); ok {
				n.Steps = append(n.Steps, types.PathStep{Kind: types.StepProperty, Property: name})
				continue
			}
			if len(n.Steps) > 0 {
				t, err := p.mustPeek()
				if err != nil {
					return nil, err
				}
				return nil, p.unexpected(t)
			}
			n.Steps = append(n.Steps, types.PathStep{Kind: types.StepRoot})
		default:
			break Loop
		}
	}

	var closer *Token
	if isEnclosed {
		t, err := p.mustPeek()
		if err != nil {
			return nil, err
		}
		if !t.Is("}") {
			return nil, p.unexpected(t)
		}
		p.next()
		closer = t
	}

	if len(n.Steps) == 0 && !n.HasTarget {
		if closer != nil {
			return nil, p.unexpected(closer)
		}
		t, err := p.mustPeek()
		if err != nil {
			return nil, err
		}
		return nil, p.unexpected(t)
	}
	return n, nil
}

// parseJSONName accepts a bare name or a string literal as a path segment.
func (p *Parser) parseJSONName() (string, bool) {
	t, ok := p.peek()
	if !ok {
		return "", false
	}
	switch t.Type {
	case TokenName:
		p.next()
		return t.Term, true
	case TokenString:
		p.next()
		s, _ := t.Value.AsString()
		return s, true
	}
	return "", false
}

// parseIndexStep parses what follows "[" in a path.
func (p *Parser) parseIndexStep() (types.PathStep, error) {
	t, err := p.mustPeek()
	if err != nil {
		return types.PathStep{}, err
	}
	switch {
	case t.Is("]"):
		p.next()
		return types.PathStep{Kind: types.StepAll}, nil
	case t.Is("@"):
		p.next()
		stmts, err := p.parseEnclosed("{", "}", ";")
		if err != nil {
			return types.PathStep{}, err
		}
		if _, err := p.consume("]"); err != nil {
			return types.PathStep{}, err
		}
		return types.PathStep{Kind: types.StepFilter, Filter: &types.Block{Statements: stmts}}, nil
	case t.Type == TokenNumber:
		p.next()
		i, err := pathIndex(t)
		if err != nil {
			return types.PathStep{}, err
		}
		if _, err := p.consume("]"); err != nil {
			return types.PathStep{}, err
		}
		return types.PathStep{Kind: types.StepIndex, Index: i}, nil
	case t.Is("-"):
		p.next()
		num, err := p.mustPeek()
		if err != nil {
			return types.PathStep{}, err
		}
		if num.Type != TokenNumber {
			return types.PathStep{}, p.unexpected(t)
		}
		p.next()
		i, err := pathIndex(num)
		if err != nil {
			return types.PathStep{}, err
		}
		if _, err := p.consume("]"); err != nil {
			return types.PathStep{}, err
		}
		return types.PathStep{Kind: types.StepIndex, Index: -i}, nil
	}
	return types.PathStep{}, p.unexpected(t)
}

func pathIndex(t *Token) (int, error) {
	if !t.Value.IsInteger() {
		return 0, types.UnexpectedToken(t.Term, t.Pos)
	}
	i, _ := t.Value.AsInteger()
	if i > 1<<31-1 {
		return 0, types.UnexpectedToken(t.Term, t.Pos)
	}
	return int(i), nil
}
