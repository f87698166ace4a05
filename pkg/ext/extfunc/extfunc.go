// Package extfunc provides combinators over @{...} blocks.
package extfunc

import (
	"github.com/sandrolain/gojexp/pkg/functions"
	"github.com/sandrolain/gojexp/pkg/types"
)

// All returns all block combinator definitions.
func All() []functions.Def {
	return []functions.Def{
		Pipe(),
		Iterate(),
		When(),
	}
}

// Pipe returns the definition for pipe(v, @{...}, ...). Each block sees
// the result of the previous one as _.
//
//	pipe(3, @{_ * 2}, @{_ + 1})  =>  7
func Pipe() functions.Def {
	return functions.Def{
		Name: "pipe", Required: functions.Variadic,
		Doc: "thread a value through blocks left to right",
		CtxFn: func(c functions.Caller, args []types.Value) (types.Value, error) {
			if len(args) == 0 {
				return types.Null, types.EvalErrorf("invalid argument count")
			}
			v := args[0]
			scope := c.Fork()
			for i, fn := range args[1:] {
				if !fn.IsExpression() {
					return types.Null, types.EvalErrorf("pipe: argument %d is not a block", i+2)
				}
				scope.Set(functions.CurrentName, v)
				r, err := scope.Invoke(fn)
				if err != nil {
					return types.Null, err
				}
				v = r
			}
			return v, nil
		},
	}
}

// Iterate returns the definition for iterate(v, n, @{...}), the block
// applied n times starting from v.
func Iterate() functions.Def {
	return functions.Def{
		Name: "iterate", Required: 3,
		Doc: "apply a block n times",
		CtxFn: func(c functions.Caller, args []types.Value) (types.Value, error) {
			n, err := args[1].AsInteger()
			if err != nil {
				return types.Null, err
			}
			if n < 0 {
				return types.Null, types.EvalErrorf("iterate: negative count %d", n)
			}
			v := args[0]
			scope := c.Fork()
			for range n {
				scope.Set(functions.CurrentName, v)
				if v, err = scope.Invoke(args[2]); err != nil {
					return types.Null, err
				}
			}
			return v, nil
		},
	}
}

// When returns the definition for when(v, @{pred}, @{then}): the result
// of then when pred holds for v, v itself otherwise.
func When() functions.Def {
	return functions.Def{
		Name: "when", Required: 3,
		Doc: "apply a block only when a predicate block holds",
		CtxFn: func(c functions.Caller, args []types.Value) (types.Value, error) {
			scope := c.Fork()
			scope.Set(functions.CurrentName, args[0])
			ok, err := scope.Invoke(args[1])
			if err != nil {
				return types.Null, err
			}
			b, err := ok.AsBoolean()
			if err != nil {
				return types.Null, err
			}
			if !b {
				return args[0], nil
			}
			return scope.Invoke(args[2])
		},
	}
}
