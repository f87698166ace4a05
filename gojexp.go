// Package gojexp is an embeddable expression language over JSON-like
// documents.
//
// Expressions combine arithmetic with vector broadcasting, maps, dates,
// @{...} blocks, $ JSON paths and backtick templates. They are evaluated
// against a Context holding variables and the current document.
//
// # Quick Start
//
//	// Simple evaluation
//	result, err := gojexp.Eval("sum($.items[].price)", c)
//
//	// Compile once, evaluate many times
//	expr, err := gojexp.Build("$.price * (1 + vat)")
//	r1, _ := expr.Evaluate(c1)
//	r2, _ := expr.Evaluate(c2)
//
//	// With options
//	result, err := gojexp.Eval(src, c,
//	    gojexp.WithOptimize(true),
//	    gojexp.WithTimeout(5*time.Second),
//	)
//
// # More Information
//
//   - Parser: github.com/sandrolain/gojexp/pkg/parser
//   - Evaluator: github.com/sandrolain/gojexp/pkg/evaluator
//   - Functions: github.com/sandrolain/gojexp/pkg/functions
//   - Types: github.com/sandrolain/gojexp/pkg/types
package gojexp

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/sandrolain/gojexp/pkg/cache"
	"github.com/sandrolain/gojexp/pkg/document"
	"github.com/sandrolain/gojexp/pkg/evaluator"
	"github.com/sandrolain/gojexp/pkg/functions"
	"github.com/sandrolain/gojexp/pkg/log"
	"github.com/sandrolain/gojexp/pkg/types"
)

type (
	// Option configures compilation and evaluation.
	Option = evaluator.EvalOption
	// Context holds variables and the current document.
	Context = evaluator.Context
	// Future is the pending result of EvaluateAsync.
	Future = evaluator.Future
	// Pool runs asynchronous evaluations; *errgroup.Group satisfies it.
	Pool = evaluator.Pool
	// Value is the result of an evaluation.
	Value = types.Value
)

// DefaultTimeout bounds Eval.
const DefaultTimeout = 30 * time.Second

// Version returns the current version of gojexp.
func Version() string {
	return "v0.1.0-dev"
}

// Expression is one compiled statement bound to the options it was
// compiled with. It is safe for concurrent use.
type Expression struct {
	expr *types.Expression
	ev   *evaluator.Evaluator
}

// Compile compiles every statement of text.
func Compile(text string, opts ...Option) ([]*Expression, error) {
	ev := evaluator.New(opts...)
	stmts, err := ev.Compile(text)
	if err != nil {
		return nil, err
	}
	out := make([]*Expression, len(stmts))
	for i, s := range stmts {
		out[i] = &Expression{expr: s, ev: ev}
	}
	return out, nil
}

// Build compiles text and returns its first statement.
func Build(text string, opts ...Option) (*Expression, error) {
	stmts, err := Compile(text, opts...)
	if err != nil {
		return nil, err
	}
	if len(stmts) == 0 {
		return nil, types.ParseErrorf("empty expression")
	}
	return stmts[0], nil
}

// MustCompile is like Compile but panics if text cannot be compiled.
// It simplifies safe initialization of global variables.
func MustCompile(text string, opts ...Option) []*Expression {
	stmts, err := Compile(text, opts...)
	if err != nil {
		panic(fmt.Sprintf("gojexp: Compile(%q): %v", text, err))
	}
	return stmts
}

// Evaluate evaluates x against c. A nil c is an empty context.
func (x *Expression) Evaluate(c *Context) (Value, error) {
	return x.EvaluateContext(context.Background(), c)
}

// EvaluateContext evaluates x against c, stopping when ctx ends.
func (x *Expression) EvaluateContext(ctx context.Context, c *Context) (Value, error) {
	return x.ev.Eval(ctx, x.expr, c)
}

// EvaluateAsync submits the evaluation of x to pool. A nil pool runs it on
// a new goroutine.
func (x *Expression) EvaluateAsync(pool Pool, c *Context) *Future {
	return x.ev.EvalAsync(context.Background(), pool, []*types.Expression{x.expr}, c)
}

// Dump renders the parsed tree of x with explicit parentheses.
func (x *Expression) Dump() string {
	return x.expr.String()
}

// Source returns the text x was parsed from.
func (x *Expression) Source() string {
	return x.expr.Source()
}

// Eval compiles text, evaluates every statement in order against c and
// returns the value of the last one. Evaluation is bounded by
// DefaultTimeout.
func Eval(text string, c *Context, opts ...Option) (Value, error) {
	ctx, cancel := context.WithTimeout(context.Background(), DefaultTimeout)
	defer cancel()
	return EvalWithContext(ctx, text, c, opts...)
}

// EvalWithContext is like Eval with a caller-supplied context.
func EvalWithContext(ctx context.Context, text string, c *Context, opts ...Option) (Value, error) {
	ev := evaluator.New(opts...)
	stmts, err := ev.Compile(text)
	if err != nil {
		return types.Null, err
	}
	return ev.EvalAll(ctx, stmts, c)
}

// NewContext returns a context holding only the constants pi and e.
func NewContext() *Context {
	return evaluator.NewContext()
}

// BuildContext decodes doc, whose format is detected, and binds it as the
// current document.
func BuildContext(doc []byte) (*Context, error) {
	raw, err := document.Parse(doc, document.Auto)
	if err != nil {
		return nil, err
	}
	return evaluator.NewDocumentContext(raw)
}

// BuildContextFrom reads a document in format f from r and binds it as the
// current document.
func BuildContextFrom(r io.Reader, f document.Format) (*Context, error) {
	raw, err := document.Read(r, f)
	if err != nil {
		return nil, err
	}
	return evaluator.NewDocumentContext(raw)
}

// NewCache returns a compilation cache to share through WithCache.
func NewCache(capacity int) *cache.Cache[[]*types.Expression] {
	return cache.New[[]*types.Expression](capacity)
}

// WithOptimize selects the forward-scanning parser.
func WithOptimize(enabled bool) Option {
	return evaluator.WithOptimize(enabled)
}

// WithFunctions adds function definitions on top of the built-in library.
// It panics if a definition is invalid.
func WithFunctions(defs ...functions.Def) Option {
	return evaluator.WithDefs(defs...)
}

// WithCache attaches a compilation cache.
func WithCache(c *cache.Cache[[]*types.Expression]) Option {
	return evaluator.WithCache(c)
}

// WithLogger sets the logger receiving trace output.
func WithLogger(l log.Logger) Option {
	return evaluator.WithLogger(l)
}

// WithMaxDepth sets the maximum evaluation recursion depth.
func WithMaxDepth(depth int) Option {
	return evaluator.WithMaxDepth(depth)
}

// WithTimeout bounds every evaluation.
func WithTimeout(d time.Duration) Option {
	return evaluator.WithTimeout(d)
}
