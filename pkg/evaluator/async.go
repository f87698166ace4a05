package evaluator

import (
	"context"

	"github.com/sandrolain/gojexp/pkg/types"
)

// Pool runs submitted work. *errgroup.Group satisfies it.
type Pool interface {
	Go(f func() error)
}

// Future is the pending result of an asynchronous evaluation.
type Future struct {
	done  chan struct{}
	value types.Value
	err   error
}

// Done is closed once the result is available.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Get waits for the result or for ctx to end, whichever comes first.
func (f *Future) Get(ctx context.Context) (types.Value, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		return types.Null, ctx.Err()
	}
}

// EvalAsync submits the evaluation of stmts to pool and returns at once.
// A nil pool runs the evaluation on a new goroutine. The error, if any, is
// reported both by the Future and to the pool.
func (e *Evaluator) EvalAsync(ctx context.Context, pool Pool, stmts []*types.Expression, c *Context) *Future {
	f := &Future{done: make(chan struct{})}
	run := func() error {
		defer close(f.done)
		f.value, f.err = e.EvalAll(ctx, stmts, c)
		return f.err
	}
	if pool == nil {
		go func() { _ = run() }()
	} else {
		pool.Go(run)
	}
	return f
}
