// Package evaluator implements the gojexp tree-walking interpreter.
//
// The evaluator receives the statements produced by the parser and evaluates
// them against a [Context]. It supports:
//   - Operators with elementwise broadcasting over vectors
//   - Built-in and registered functions, scalable over a vector argument
//   - @{...} blocks invoked as callables with a forked scope
//   - JSON paths and template strings
//   - Timeout and cancellation via context.Context
//
// # Example
//
//	ev := evaluator.New()
//	stmts, err := ev.Compile(`x = 2; x ^ 10`)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := ev.EvalAll(ctx, stmts, evaluator.NewContext())
//
// # Concurrency
//
// Compiled statements are immutable. An Evaluator may be shared by any
// number of goroutines, each evaluating against its own Context or a shared
// one.
package evaluator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sandrolain/gojexp/pkg/cache"
	"github.com/sandrolain/gojexp/pkg/functions"
	"github.com/sandrolain/gojexp/pkg/log"
	"github.com/sandrolain/gojexp/pkg/parser"
	"github.com/sandrolain/gojexp/pkg/types"
)

// DefaultMaxDepth bounds the nesting of node evaluations, block calls
// included.
const DefaultMaxDepth = 10000

// Evaluator evaluates compiled statements.
type Evaluator struct {
	opts   EvalOptions
	logger log.Logger
}

// EvalOptions configures evaluator behavior.
type EvalOptions struct {
	// Optimize selects the forward-scanning parser for sources compiled
	// during evaluation (jsonGet) and by Compile.
	Optimize bool
	// Functions resolves calls. Defaults to the built-in registry.
	Functions *functions.Registry
	// Cache holds compiled sources. Nil disables caching.
	Cache *cache.Cache[[]*types.Expression]
	// MaxDepth limits evaluation recursion.
	MaxDepth int
	// MaxNesting limits syntactic nesting at compile time.
	MaxNesting int
	// Timeout bounds one evaluation. Zero means no limit.
	Timeout time.Duration
	// Logger receives trace output. The zero Logger discards it.
	Logger log.Logger
}

// EvalOption configures evaluation behavior.
type EvalOption func(*EvalOptions)

// New creates a new Evaluator.
func New(opts ...EvalOption) *Evaluator {
	options := EvalOptions{
		MaxDepth:   DefaultMaxDepth,
		MaxNesting: parser.DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(&options)
	}
	if options.Functions == nil {
		options.Functions = functions.Default()
	}
	return &Evaluator{opts: options, logger: options.Logger}
}

// WithOptimize selects the forward-scanning parser.
func WithOptimize(enabled bool) EvalOption {
	return func(opts *EvalOptions) {
		opts.Optimize = enabled
	}
}

// WithFunctions sets the function registry.
func WithFunctions(r *functions.Registry) EvalOption {
	return func(opts *EvalOptions) {
		opts.Functions = r
	}
}

// WithDefs registers defs on a copy of the registry configured so far, so
// the shared built-in registry is never modified. It panics if a
// definition is invalid.
func WithDefs(defs ...functions.Def) EvalOption {
	return func(opts *EvalOptions) {
		base := opts.Functions
		if base == nil {
			base = functions.Default()
		}
		r := base.Clone()
		if err := r.Register(defs...); err != nil {
			panic(fmt.Sprintf("evaluator: %v", err))
		}
		opts.Functions = r
	}
}

// WithCache attaches a compilation cache.
func WithCache(c *cache.Cache[[]*types.Expression]) EvalOption {
	return func(opts *EvalOptions) {
		opts.Cache = c
	}
}

// WithMaxDepth sets the maximum evaluation recursion depth.
func WithMaxDepth(depth int) EvalOption {
	return func(opts *EvalOptions) {
		opts.MaxDepth = depth
	}
}

// WithMaxNesting sets the maximum syntactic nesting accepted by Compile.
func WithMaxNesting(depth int) EvalOption {
	return func(opts *EvalOptions) {
		opts.MaxNesting = depth
	}
}

// WithTimeout sets the evaluation timeout.
func WithTimeout(timeout time.Duration) EvalOption {
	return func(opts *EvalOptions) {
		opts.Timeout = timeout
	}
}

// WithLogger sets the logger.
func WithLogger(logger log.Logger) EvalOption {
	return func(opts *EvalOptions) {
		opts.Logger = logger
	}
}

// Options returns the effective options.
func (e *Evaluator) Options() EvalOptions {
	return e.opts
}

// Functions returns the registry used to resolve calls.
func (e *Evaluator) Functions() *functions.Registry {
	return e.opts.Functions
}

func (e *Evaluator) compileOptions() []parser.CompileOption {
	return []parser.CompileOption{
		parser.WithOptimize(e.opts.Optimize),
		parser.WithFunctions(e.opts.Functions),
		parser.WithMaxDepth(e.opts.MaxNesting),
	}
}

func (e *Evaluator) algorithm() string {
	if e.opts.Optimize {
		return "forward"
	}
	return "simple"
}

// Compile parses source with the evaluator's options, going through the
// cache when one is configured.
func (e *Evaluator) Compile(source string) ([]*types.Expression, error) {
	compile := func() ([]*types.Expression, error) {
		stmts, err := parser.Compile(source, e.compileOptions()...)
		if err != nil {
			return nil, err
		}
		e.logger.TraceContext(context.Background(), "compiled",
			slog.String("source", source),
			slog.String("algorithm", e.algorithm()),
			slog.Int("statements", len(stmts)))
		return stmts, nil
	}
	if e.opts.Cache == nil {
		return compile()
	}

	key := cache.NewKey(source, e.algorithm(), fmt.Sprintf("%p/%d", e.opts.Functions, e.opts.MaxNesting))
	if stmts, ok := e.opts.Cache.Get(key); ok {
		e.logger.TraceContext(context.Background(), "cache hit", slog.String("source", source))
		return stmts, nil
	}
	e.logger.TraceContext(context.Background(), "cache miss", slog.String("source", source))
	stmts, err := compile()
	if err != nil {
		return nil, err
	}
	e.opts.Cache.Set(key, stmts)
	return stmts, nil
}

// Eval evaluates one statement against c.
func (e *Evaluator) Eval(ctx context.Context, expr *types.Expression, c *Context) (types.Value, error) {
	if expr == nil {
		return types.Null, fmt.Errorf("invalid expression")
	}
	return e.EvalAll(ctx, []*types.Expression{expr}, c)
}

// EvalAll evaluates statements in order against c and returns the value of
// the last one. No statements yield Null.
func (e *Evaluator) EvalAll(ctx context.Context, stmts []*types.Expression, c *Context) (types.Value, error) {
	if c == nil {
		c = NewContext()
	}

	// Apply timeout if configured
	if e.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.opts.Timeout)
		defer cancel()
	}

	// One depth counter per evaluation tree, shared by nested block calls.
	ctx = withDepthCounter(ctx)

	trace := e.logger.Enabled(ctx, log.LevelTrace)
	start := time.Now()
	r := types.Null
	for _, s := range stmts {
		if trace {
			e.logger.TraceContext(ctx, "evaluating", slog.String("statement", s.String()))
		}
		var err error
		if r, err = e.evalNode(ctx, s.AST(), c); err != nil {
			e.logger.TraceContext(ctx, "evaluation failed", slog.String("error", err.Error()))
			return types.Null, err
		}
	}
	if trace {
		e.logger.TraceContext(ctx, "evaluated",
			slog.String("result", r.String()),
			slog.Duration("elapsed", time.Since(start)))
	}
	return r, nil
}

type depthKey struct{}

// withDepthCounter attaches a fresh recursion counter to ctx.
func withDepthCounter(ctx context.Context) context.Context {
	d := 0
	return context.WithValue(ctx, depthKey{}, &d)
}

func depthCounter(ctx context.Context) *int {
	if d, ok := ctx.Value(depthKey{}).(*int); ok {
		return d
	}
	return nil
}
