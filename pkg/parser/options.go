package parser

import "github.com/sandrolain/gojexp/pkg/functions"

// DefaultMaxDepth bounds the nesting of parentheses, brackets and blocks.
const DefaultMaxDepth = 512

// CompileOption configures compilation behavior.
type CompileOption func(*CompileOptions)

// CompileOptions holds parser configuration.
type CompileOptions struct {
	// Optimize selects the forward-scanning precedence climber. Both
	// climbers produce the same trees.
	Optimize bool
	// Functions resolves names followed by an argument list to built-in
	// calls. Nil means functions.Default().
	Functions *functions.Registry
	// MaxDepth limits nesting to prevent stack exhaustion.
	MaxDepth int
}

// WithOptimize selects the forward-scanning algorithm.
func WithOptimize(enable bool) CompileOption {
	return func(opts *CompileOptions) {
		opts.Optimize = enable
	}
}

// WithFunctions sets the registry used to recognise function calls.
func WithFunctions(r *functions.Registry) CompileOption {
	return func(opts *CompileOptions) {
		opts.Functions = r
	}
}

// WithMaxDepth sets the maximum nesting depth.
func WithMaxDepth(depth int) CompileOption {
	return func(opts *CompileOptions) {
		opts.MaxDepth = depth
	}
}

func newOptions(opts []CompileOption) CompileOptions {
	options := CompileOptions{MaxDepth: DefaultMaxDepth}
	for _, opt := range opts {
		opt(&options)
	}
	if options.Functions == nil {
		options.Functions = functions.Default()
	}
	if options.MaxDepth <= 0 {
		options.MaxDepth = DefaultMaxDepth
	}
	return options
}
