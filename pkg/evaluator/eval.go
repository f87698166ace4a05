package evaluator

import (
	"context"
	"errors"
	"slices"
	"strings"

	"github.com/sandrolain/gojexp/pkg/functions"
	"github.com/sandrolain/gojexp/pkg/operators"
	"github.com/sandrolain/gojexp/pkg/types"
)

func (e *Evaluator) evalNode(ctx context.Context, node *types.ASTNode, c *Context) (types.Value, error) {
	// Check context cancellation
	select {
	case <-ctx.Done():
		return types.Null, types.EvalErrorf("evaluation aborted").WithCause(ctx.Err())
	default:
	}

	if node == nil {
		return types.Null, nil
	}

	if d := depthCounter(ctx); d != nil && e.opts.MaxDepth > 0 {
		*d++
		defer func() { *d-- }()
		if *d > e.opts.MaxDepth {
			return types.Null, types.EvalErrorf("maximum recursion depth %d exceeded", e.opts.MaxDepth)
		}
	}

	switch node.Type {
	case types.NodeLiteral:
		return node.Value, nil
	case types.NodeList:
		items, err := e.evalNodes(ctx, node.Arguments, c)
		if err != nil {
			return types.Null, err
		}
		return types.Vec(items), nil
	case types.NodeMap:
		return e.evalMap(ctx, node, c)
	case types.NodeGroup:
		return e.evalSequence(ctx, node.Arguments, c)
	case types.NodeBlock:
		return types.BlockValue(node.Block), nil
	case types.NodeTemplate:
		return e.evalTemplate(ctx, node, c)
	case types.NodePath:
		return e.evalPath(ctx, node, c)
	case types.NodeUnary:
		return e.evalUnary(ctx, node, c)
	case types.NodeBinary:
		return e.evalBinary(ctx, node, c)
	case types.NodeName:
		return e.evalName(ctx, node, c)
	case types.NodeCall:
		return e.evalCall(ctx, node, node.Arguments, c)
	}
	return types.Null, types.EvalErrorf("unsupported node type %q", node.Type)
}

func (e *Evaluator) evalNodes(ctx context.Context, nodes []*types.ASTNode, c *Context) ([]types.Value, error) {
	out := make([]types.Value, len(nodes))
	for i, n := range nodes {
		v, err := e.evalNode(ctx, n, c)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// evalSequence evaluates nodes in order and returns the last value.
func (e *Evaluator) evalSequence(ctx context.Context, nodes []*types.ASTNode, c *Context) (types.Value, error) {
	r := types.Null
	for _, n := range nodes {
		var err error
		if r, err = e.evalNode(ctx, n, c); err != nil {
			return types.Null, err
		}
	}
	return r, nil
}

func (e *Evaluator) evalMap(ctx context.Context, node *types.ASTNode, c *Context) (types.Value, error) {
	fields := make(map[string]types.Value, len(node.Keys))
	for i, k := range node.Keys {
		v, err := e.evalNode(ctx, node.Arguments[i], c)
		if err != nil {
			return types.Null, err
		}
		fields[k] = v
	}
	return types.Object(fields), nil
}

// evalBlock runs the statements of b in c, which the caller has already
// forked when a scratch scope is wanted.
func (e *Evaluator) evalBlock(ctx context.Context, b *types.Block, c *Context) (types.Value, error) {
	return e.evalSequence(ctx, b.Statements, c)
}

func (e *Evaluator) evalTemplate(ctx context.Context, node *types.ASTNode, c *Context) (types.Value, error) {
	var sb strings.Builder
	for _, part := range node.Arguments {
		v, err := e.evalNode(ctx, part, c)
		if err != nil {
			return types.Null, err
		}
		if v.IsExpression() {
			b, _ := v.AsBlock()
			if v, err = e.evalBlock(ctx, b, c); err != nil {
				return types.Null, err
			}
		}
		if s, err := v.AsString(); err == nil {
			sb.WriteString(s)
		} else {
			sb.WriteString(v.String())
		}
	}
	return types.Str(sb.String()), nil
}

func (e *Evaluator) evalUnary(ctx context.Context, node *types.ASTNode, c *Context) (types.Value, error) {
	op := operators.Lookup(node.Operator, node.Level, 1)
	if op == nil {
		return types.Null, types.EvalErrorf("unknown operator '%s'", node.Operator)
	}
	x, err := e.evalNode(ctx, node.LHS, c)
	if err != nil {
		return types.Null, err
	}
	if !op.Scalable || !x.IsVector() {
		return op.Unary(x)
	}
	items, _ := x.AsVector()
	out := make([]types.Value, len(items))
	for i, it := range items {
		if out[i], err = op.Unary(it); err != nil {
			return types.Null, err
		}
	}
	return types.Vec(out), nil
}

func (e *Evaluator) evalBinary(ctx context.Context, node *types.ASTNode, c *Context) (types.Value, error) {
	switch node.Operator {
	case "=":
		return e.evalAssign(ctx, node, c)
	case ".":
		if node.RHS == nil || node.RHS.Type != types.NodeCall {
			return types.Null, types.EvalErrorf("second arg of '.' operator must be a function")
		}
		args := make([]*types.ASTNode, 0, len(node.RHS.Arguments)+1)
		args = append(args, node.LHS)
		args = append(args, node.RHS.Arguments...)
		return e.evalCall(ctx, node.RHS, args, c)
	}

	op := operators.Lookup(node.Operator, node.Level, 2)
	if op == nil || op.Binary == nil {
		return types.Null, types.EvalErrorf("unknown operator '%s'", node.Operator)
	}
	x, err := e.evalNode(ctx, node.LHS, c)
	if err != nil {
		return types.Null, err
	}
	y, err := e.evalNode(ctx, node.RHS, c)
	if err != nil {
		return types.Null, err
	}
	if op.Scalable {
		return broadcast(op, x, y)
	}
	return op.Binary(x, y)
}

func (e *Evaluator) evalAssign(ctx context.Context, node *types.ASTNode, c *Context) (types.Value, error) {
	if node.LHS == nil || node.LHS.Type != types.NodeName {
		return types.Null, types.EvalErrorf("try to assign value to non-variable name")
	}
	x, err := e.evalNode(ctx, node.LHS, c)
	if err != nil {
		return types.Null, err
	}
	y, err := e.evalNode(ctx, node.RHS, c)
	if err != nil {
		return types.Null, err
	}
	r, err := operators.Assign(x, y)
	if err != nil {
		return types.Null, err
	}
	c.Set(node.LHS.Name, r)
	return r, nil
}

// broadcast applies op elementwise when either operand is a vector.
func broadcast(op *operators.Operator, x, y types.Value) (types.Value, error) {
	xv, yv := x.IsVector(), y.IsVector()
	if !xv && !yv {
		return op.Binary(x, y)
	}

	var xs, ys []types.Value
	n := 0
	switch {
	case xv && yv:
		xs, _ = x.AsVector()
		ys, _ = y.AsVector()
		if len(xs) != len(ys) {
			return types.Null, types.EvalErrorf("the length of vectors of cross broadcast must be same")
		}
		n = len(xs)
	case xv:
		xs, _ = x.AsVector()
		n = len(xs)
	default:
		ys, _ = y.AsVector()
		n = len(ys)
	}

	out := make([]types.Value, n)
	for i := range out {
		a, b := x, y
		if xs != nil {
			a = xs[i]
		}
		if ys != nil {
			b = ys[i]
		}
		var err error
		if out[i], err = op.Binary(a, b); err != nil {
			return types.Null, err
		}
	}
	return types.Vec(out), nil
}

func (e *Evaluator) evalName(ctx context.Context, node *types.ASTNode, c *Context) (types.Value, error) {
	if !node.HasArgs {
		return c.GetVariable(node.Name), nil
	}
	args, err := e.evalNodes(ctx, node.Arguments, c)
	if err != nil {
		return types.Null, err
	}
	fn, ok := c.Lookup(node.Name)
	if !ok {
		return types.Null, e.unknownFunction(node.Name)
	}
	b, err := fn.AsBlock()
	if err != nil {
		return types.Null, err
	}
	if len(args) > 1 {
		return types.Null, types.EvalErrorf("only 1 args supported")
	}
	scope := c.Fork()
	if len(args) == 1 {
		scope.Set(CurrentName, args[0])
	}
	return e.evalBlock(ctx, b, scope)
}

func (e *Evaluator) unknownFunction(name string) error {
	err := types.EvalErrorf("unknown function '%s'", name).WithToken(name)
	if hint := e.opts.Functions.Suggest(name, 1); len(hint) > 0 {
		err.Message += ", did you mean '" + hint[0] + "'?"
	}
	return err
}

// evalCall calls the function named by node with argNodes, which differ
// from node.Arguments when the call is the right side of '.'.
func (e *Evaluator) evalCall(ctx context.Context, node *types.ASTNode, argNodes []*types.ASTNode, c *Context) (types.Value, error) {
	def, ok := e.opts.Functions.Lookup(node.Name)
	if !ok {
		return types.Null, e.unknownFunction(node.Name)
	}
	if err := def.CheckArity(len(argNodes)); err != nil {
		return types.Null, err
	}
	args, err := e.evalNodes(ctx, argNodes, c)
	if err != nil {
		return types.Null, err
	}

	cl := &caller{e: e, ctx: ctx, c: c}
	if !def.Scalable || len(args) == 0 || !args[0].IsVector() {
		return call(def, cl, args)
	}

	items, _ := args[0].AsVector()
	out := make([]types.Value, len(items))
	elemArgs := slices.Clone(args)
	for i, it := range items {
		elemArgs[0] = it
		if out[i], err = call(def, cl, elemArgs); err != nil {
			return types.Null, err
		}
	}
	return types.Vec(out), nil
}

// call invokes def and turns foreign errors from registered functions into
// evaluation errors.
func call(def *functions.Def, cl functions.Caller, args []types.Value) (types.Value, error) {
	r, err := def.Call(cl, args)
	if err == nil {
		return r, nil
	}
	var te *types.Error
	if errors.As(err, &te) {
		return types.Null, err
	}
	return types.Null, types.EvalErrorf("function %s failed", def.Name).WithCause(err)
}
