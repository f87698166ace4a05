package evaluator

import (
	"context"

	"github.com/sandrolain/gojexp/pkg/functions"
	"github.com/sandrolain/gojexp/pkg/types"
)

// caller exposes the evaluation in progress to context-aware functions.
type caller struct {
	e   *Evaluator
	ctx context.Context
	c   *Context
}

func (cl *caller) Fork() functions.Scope {
	return &scope{e: cl.e, ctx: cl.ctx, c: cl.c.Fork()}
}

// scope is a forked Context plus the evaluation it belongs to.
type scope struct {
	e   *Evaluator
	ctx context.Context
	c   *Context
}

func (s *scope) Set(name string, v types.Value) {
	s.c.Set(name, v)
}

// Invoke runs a block, or each block of a vector in turn, in the scope.
func (s *scope) Invoke(fn types.Value) (types.Value, error) {
	if !fn.IsVector() {
		return s.invoke(fn)
	}
	blocks, _ := fn.AsVector()
	r := types.Null
	for _, b := range blocks {
		var err error
		if r, err = s.invoke(b); err != nil {
			return types.Null, err
		}
	}
	return r, nil
}

func (s *scope) invoke(fn types.Value) (types.Value, error) {
	b, err := fn.AsBlock()
	if err != nil {
		return types.Null, err
	}
	return s.e.evalBlock(s.ctx, b, s.c)
}

func (s *scope) Eval(source string) (types.Value, error) {
	stmts, err := s.e.Compile(source)
	if err != nil {
		return types.Null, err
	}
	if len(stmts) == 0 {
		return types.Null, nil
	}
	return s.e.evalNode(s.ctx, stmts[0].AST(), s.c)
}
