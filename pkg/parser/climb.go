package parser

import (
	"github.com/sandrolain/gojexp/pkg/operators"
	"github.com/sandrolain/gojexp/pkg/types"
)

func lookup(t *Token, level, arity int) *operators.Operator {
	if t.Type != TokenPunct {
		return nil
	}
	return operators.Lookup(t.Term, level, arity)
}

func lookupForward(t *Token, level, arity int) (*operators.Operator, int) {
	if t.Type != TokenPunct {
		return nil, operators.Levels
	}
	return operators.LookupForward(t.Term, level, arity)
}

func (p *Parser) unaryNode(op *operators.Operator, pos int, operand *types.ASTNode) (*types.ASTNode, error) {
	if operand == nil {
		return nil, p.fail(types.UnexpectedEOF())
	}
	n := p.arena.Alloc(types.NodeUnary, pos)
	n.Operator = op.Symbol
	n.Level = op.Level
	n.Postfix = op.Postfix()
	n.LHS = operand
	return n, nil
}

func (p *Parser) binaryNode(op *operators.Operator, pos int, lhs, rhs *types.ASTNode) (*types.ASTNode, error) {
	if rhs == nil {
		return nil, p.fail(types.UnexpectedEOF())
	}
	n := p.arena.Alloc(types.NodeBinary, pos)
	n.Operator = op.Symbol
	n.Level = op.Level
	n.LHS = lhs
	n.RHS = rhs
	return n, nil
}

// parseRA parses one precedence level:
//
//	<L> ::= "op" <L> | <L+1> "op" | <L+1> "op" <L+refer> | <L+1>
//
// Prefix operators recurse at the same level, right-associative binary
// operators recurse into their own level and left-associative ones are
// folded by parseLA.
func (p *Parser) parseRA(level int) (*types.ASTNode, error) {
	if level == operators.Levels {
		return p.parseHighest()
	}
	t, ok := p.peek()
	if !ok {
		return nil, nil
	}

	if op := lookup(t, level, 1); op != nil && op.Prefix() {
		p.next()
		operand, err := p.parseRA(level)
		if err != nil {
			return nil, err
		}
		return p.unaryNode(op, t.Pos, operand)
	}

	r, err := p.parseRA(level + 1)
	if err != nil {
		return nil, err
	}
	t, ok = p.peek()
	if !ok {
		return r, nil
	}
	if op := lookup(t, level, 1); op != nil && op.Postfix() {
		if r == nil {
			return nil, p.unexpected(t)
		}
		p.next()
		return p.unaryNode(op, t.Pos, r)
	}
	op := lookup(t, level, 2)
	if op == nil {
		return r, nil
	}
	if r == nil {
		return nil, p.unexpected(t)
	}
	p.next()
	if op.Assoc == operators.Right {
		rhs, err := p.parseRA(level + op.Refer)
		if err != nil {
			return nil, err
		}
		return p.binaryNode(op, t.Pos, r, rhs)
	}
	return p.parseLA(r, op, t.Pos, level+op.Refer)
}

// parseLA folds a chain of left-associative operators of one level:
//
//	<L> ::= <L+1> { "op" <L+1> }
func (p *Parser) parseLA(lhs *types.ASTNode, op *operators.Operator, pos, level int) (*types.ASTNode, error) {
	for {
		rhs, err := p.parseRA(level + 1)
		if err != nil {
			return nil, err
		}
		if lhs, err = p.binaryNode(op, pos, lhs, rhs); err != nil {
			return nil, err
		}
		t, ok := p.peek()
		if !ok {
			return lhs, nil
		}
		next := lookup(t, level, 2)
		if next == nil {
			return lhs, nil
		}
		p.next()
		op, pos = next, t.Pos
	}
}

// parseRAOpt is the forward-scanning counterpart of parseRA. Rather than
// descending one level per call, it looks up the level of the next operator
// directly and parses its operands from there.
//
// Every parseRA frame applies at most one postfix or binary operator of its
// own level and then returns, so the operators following an operand must sit
// at strictly decreasing levels. ceiling is the lowest level already closed:
// the next operator is searched below it, never at or above.
func (p *Parser) parseRAOpt(level int) (*types.ASTNode, error) {
	if level == operators.Levels {
		return p.parseHighest()
	}
	t, ok := p.peek()
	if !ok {
		return nil, nil
	}

	var r *types.ASTNode
	var err error
	ceiling := operators.Levels
	if op, l := prefixFrom(t, level); op != nil {
		p.next()
		operand, err := p.parseRAOpt(l)
		if err != nil {
			return nil, err
		}
		if r, err = p.unaryNode(op, t.Pos, operand); err != nil {
			return nil, err
		}
		ceiling = l
	} else if r, err = p.parseHighest(); err != nil {
		return nil, err
	}

	for {
		t, ok := p.peek()
		if !ok {
			return r, nil
		}
		op, l := stepBelow(t, level, ceiling)
		if op == nil {
			return r, nil
		}
		if r == nil {
			return nil, p.unexpected(t)
		}
		p.next()
		switch {
		case op.Postfix():
			r, err = p.unaryNode(op, t.Pos, r)
		case op.Assoc == operators.Right:
			var rhs *types.ASTNode
			if rhs, err = p.parseRAOpt(l + op.Refer); err == nil {
				r, err = p.binaryNode(op, t.Pos, r, rhs)
			}
		default:
			r, err = p.parseLAOpt(r, op, t.Pos, l+op.Refer)
		}
		if err != nil {
			return nil, err
		}
		ceiling = l
	}
}

// prefixFrom returns the first prefix operator for t declared at level or
// above.
func prefixFrom(t *Token, level int) (*operators.Operator, int) {
	for op, l := lookupForward(t, level, 1); op != nil; op, l = lookupForward(t, l+1, 1) {
		if op.Prefix() {
			return op, l
		}
	}
	return nil, operators.Levels
}

// stepBelow returns the postfix or binary operator for t at the highest
// level in [level, ceiling), the one the innermost open parseRA frame would
// apply.
func stepBelow(t *Token, level, ceiling int) (*operators.Operator, int) {
	for l := ceiling - 1; l >= level; l-- {
		if op := lookup(t, l, 1); op != nil && op.Postfix() {
			return op, l
		}
		if op := lookup(t, l, 2); op != nil {
			return op, l
		}
	}
	return nil, operators.Levels
}

// parseLAOpt is the forward-scanning counterpart of parseLA.
func (p *Parser) parseLAOpt(lhs *types.ASTNode, op *operators.Operator, pos, level int) (*types.ASTNode, error) {
	for {
		rhs, err := p.parseRAOpt(level + 1)
		if err != nil {
			return nil, err
		}
		if lhs, err = p.binaryNode(op, pos, lhs, rhs); err != nil {
			return nil, err
		}
		t, ok := p.peek()
		if !ok {
			return lhs, nil
		}
		next := lookup(t, level, 2)
		if next == nil {
			return lhs, nil
		}
		p.next()
		op, pos = next, t.Pos
	}
}
