// Package functions defines built-in and user-registered functions.
//
// A function is described by a [Def]: its name, how many arguments it
// requires and accepts, whether it broadcasts over a vector first argument,
// and its implementation. Context-aware implementations receive a [Caller]
// through which they can evaluate block arguments such as @{_ > 2}.
//
// # Example
//
//	reg := functions.Default().Clone()
//	err := reg.Register(functions.Def{
//	    Name:     "double",
//	    Required: 1,
//	    Scalable: true,
//	    Fn: func(args []types.Value) (types.Value, error) {
//	        return operators.Multiply(args[0], types.Int(2))
//	    },
//	})
package functions

import (
	"slices"
	"sync"
	"unicode"

	"github.com/sahilm/fuzzy"

	"github.com/sandrolain/gojexp/pkg/types"
)

// Variadic is the Required value of functions accepting any number of
// arguments.
const Variadic = -1

// Fn is a context-free implementation.
type Fn func(args []types.Value) (types.Value, error)

// CtxFn is an implementation that needs to evaluate blocks.
type CtxFn func(c Caller, args []types.Value) (types.Value, error)

// Def describes a function.
type Def struct {
	Name string
	// Required is the number of mandatory arguments, or Variadic.
	Required int
	Optional int
	// Scalable functions are mapped over the elements of a vector first
	// argument instead of being called once.
	Scalable bool

	Fn    Fn
	CtxFn CtxFn

	// Doc is a one-line description shown by the REPL.
	Doc string
}

// CheckArity validates an argument count against the declaration.
func (d *Def) CheckArity(n int) error {
	if d.Required == Variadic {
		return nil
	}
	if n > d.Required+d.Optional || n < d.Required {
		return types.EvalErrorf("invalid argument count")
	}
	return nil
}

// Call invokes the implementation.
func (d *Def) Call(c Caller, args []types.Value) (types.Value, error) {
	if d.CtxFn != nil {
		return d.CtxFn(c, args)
	}
	return d.Fn(args)
}

// Caller gives context-aware functions access to the evaluation in
// progress.
type Caller interface {
	// Fork returns a scope whose bindings start as a copy of the calling
	// context. Writes to the scope never reach the caller.
	Fork() Scope
}

// Scope is a child evaluation context.
type Scope interface {
	// Set binds name to v in the scope.
	Set(name string, v types.Value)
	// Invoke evaluates a block value, or each block of a vector of blocks,
	// in the scope and returns the last statement's value.
	Invoke(fn types.Value) (types.Value, error)
	// Eval compiles source with the caller's options and evaluates its
	// first statement in the scope.
	Eval(source string) (types.Value, error)
}

// Registry maps names to definitions. It is safe for concurrent use.
type Registry struct {
	mu   sync.RWMutex
	defs map[string]*Def
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{defs: map[string]*Def{}}
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns the shared registry holding the built-in library.
// Callers that want to add functions should Clone it first.
func Default() *Registry {
	defaultOnce.Do(func() {
		defaultRegistry = NewRegistry()
		if err := defaultRegistry.Register(builtins()...); err != nil {
			panic(err)
		}
	})
	return defaultRegistry
}

// Register adds or replaces definitions.
func (r *Registry) Register(defs ...Def) error {
	for i := range defs {
		if err := validate(&defs[i]); err != nil {
			return err
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range defs {
		d := defs[i]
		r.defs[d.Name] = &d
	}
	return nil
}

func validate(d *Def) error {
	if d.Name == "" {
		return types.EvalErrorf("function name must not be empty")
	}
	for i, c := range d.Name {
		if !unicode.IsLetter(c) && c != '_' && (i == 0 || !unicode.IsDigit(c)) {
			return types.EvalErrorf("invalid function name '%s'", d.Name)
		}
	}
	if (d.Fn == nil) == (d.CtxFn == nil) {
		return types.EvalErrorf("function '%s' needs exactly one implementation", d.Name)
	}
	if d.Required < Variadic || d.Optional < 0 {
		return types.EvalErrorf("function '%s' has an invalid arity", d.Name)
	}
	return nil
}

// Lookup returns the definition registered under name.
func (r *Registry) Lookup(name string) (*Def, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.defs[name]
	return d, ok
}

// Names returns all registered names in ascending order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.defs))
	for n := range r.defs {
		names = append(names, n)
	}
	r.mu.RUnlock()
	slices.Sort(names)
	return names
}

// Clone returns an independent copy of r.
func (r *Registry) Clone() *Registry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c := &Registry{defs: make(map[string]*Def, len(r.defs))}
	for k, v := range r.defs {
		c.defs[k] = v
	}
	return c
}

// Suggest returns up to limit registered names that fuzzily match name,
// best match first.
func (r *Registry) Suggest(name string, limit int) []string {
	names := r.Names()
	matches := fuzzy.Find(name, names)
	out := make([]string, 0, min(limit, len(matches)))
	for _, m := range matches {
		if len(out) == limit {
			break
		}
		out = append(out, m.Str)
	}
	return out
}
