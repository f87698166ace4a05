// Package extwasm exposes the functions exported by a WebAssembly module as
// expression functions, running them with the wazero runtime.
//
// Only exports whose parameters and results are i32, i64, f32 or f64 are
// exposed. Integer parameters take Integers (Decimals are truncated), float
// parameters take any number. A single result is returned as is, several
// results as a vector, none as null. Every function broadcasts over a
// vector first argument.
//
// # Example
//
//	m, err := extwasm.Load(ctx, wasmBytes, extwasm.WithPrefix("wasm_"))
//	if err != nil {
//	    return err
//	}
//	defer m.Close(ctx)
//	result, err := gojexp.Eval("wasm_add(1, 2)", nil, gojexp.WithFunctions(m.Functions()...))
package extwasm

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"unicode"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"

	"github.com/sandrolain/gojexp/pkg/functions"
	"github.com/sandrolain/gojexp/pkg/types"
)

type options struct {
	prefix string
	wasi   bool
}

// Option configures Load.
type Option func(*options)

// WithPrefix prepends prefix to every exposed function name.
func WithPrefix(prefix string) Option {
	return func(o *options) { o.prefix = prefix }
}

// WithWASI instantiates the WASI preview1 host module before the module,
// for binaries built with GOOS=wasip1 or similar toolchains.
func WithWASI() Option {
	return func(o *options) { o.wasi = true }
}

// Module is an instantiated WebAssembly module. Calls into it are
// serialized.
type Module struct {
	mu   sync.Mutex
	rt   wazero.Runtime
	mod  api.Module
	defs []functions.Def
}

// Load compiles and instantiates the module in bin.
func Load(ctx context.Context, bin []byte, opts ...Option) (*Module, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	rt := wazero.NewRuntime(ctx)
	if o.wasi {
		if _, err := wasi_snapshot_preview1.Instantiate(ctx, rt); err != nil {
			_ = rt.Close(ctx)
			return nil, fmt.Errorf("instantiate WASI: %w", err)
		}
	}
	compiled, err := rt.CompileModule(ctx, bin)
	if err != nil {
		_ = rt.Close(ctx)
		return nil, fmt.Errorf("compile module: %w", err)
	}
	mod, err := rt.InstantiateModule(ctx, compiled, wazero.NewModuleConfig().WithStartFunctions())
	if err != nil {
		_ = rt.Close(ctx)
		return nil, fmt.Errorf("instantiate module: %w", err)
	}

	m := &Module{rt: rt, mod: mod}
	exports := compiled.ExportedFunctions()
	names := make([]string, 0, len(exports))
	for name := range exports {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		def := exports[name]
		if !validName(o.prefix+name) || !numeric(def.ParamTypes()) || !numeric(def.ResultTypes()) {
			continue
		}
		m.defs = append(m.defs, m.define(o.prefix+name, name, def))
	}
	return m, nil
}

// Functions returns the definitions of the exposed exports, sorted by name.
func (m *Module) Functions() []functions.Def {
	return slices.Clone(m.defs)
}

// Close releases the runtime. Functions must not be called afterwards.
func (m *Module) Close(ctx context.Context) error {
	return m.rt.Close(ctx)
}

func (m *Module) define(name, export string, def api.FunctionDefinition) functions.Def {
	params, results := def.ParamTypes(), def.ResultTypes()
	return functions.Def{
		Name:     name,
		Required: len(params),
		Scalable: len(params) > 0,
		Doc:      fmt.Sprintf("WebAssembly export %s%s", export, signature(params, results)),
		Fn: func(args []types.Value) (types.Value, error) {
			in := make([]uint64, len(params))
			for i, t := range params {
				var err error
				if in[i], err = encode(t, args[i]); err != nil {
					return types.Null, err
				}
			}

			m.mu.Lock()
			out, err := m.mod.ExportedFunction(export).Call(context.Background(), in...)
			m.mu.Unlock()
			if err != nil {
				return types.Null, err
			}

			vals := make([]types.Value, len(results))
			for i, t := range results {
				vals[i] = decode(t, out[i])
			}
			switch len(vals) {
			case 0:
				return types.Null, nil
			case 1:
				return vals[0], nil
			}
			return types.Vec(vals), nil
		},
	}
}

func encode(t api.ValueType, v types.Value) (uint64, error) {
	switch t {
	case api.ValueTypeI32:
		i, err := v.AsInteger()
		return api.EncodeI32(int32(i)), err
	case api.ValueTypeI64:
		i, err := v.AsInteger()
		return api.EncodeI64(i), err
	case api.ValueTypeF32:
		f, err := v.AsFloat()
		return api.EncodeF32(float32(f)), err
	}
	f, err := v.AsFloat()
	return api.EncodeF64(f), err
}

func decode(t api.ValueType, raw uint64) types.Value {
	switch t {
	case api.ValueTypeI32:
		return types.Int(int64(api.DecodeI32(raw)))
	case api.ValueTypeI64:
		return types.Int(int64(raw))
	case api.ValueTypeF32:
		return types.Float(float64(api.DecodeF32(raw)))
	}
	return types.Float(api.DecodeF64(raw))
}

func numeric(ts []api.ValueType) bool {
	for _, t := range ts {
		switch t {
		case api.ValueTypeI32, api.ValueTypeI64, api.ValueTypeF32, api.ValueTypeF64:
		default:
			return false
		}
	}
	return true
}

func signature(params, results []api.ValueType) string {
	s := "("
	for i, t := range params {
		if i > 0 {
			s += ", "
		}
		s += api.ValueTypeName(t)
	}
	s += ")"
	for _, t := range results {
		s += " " + api.ValueTypeName(t)
	}
	return s
}

func validName(name string) bool {
	if name == "" {
		return false
	}
	for i, c := range name {
		if !unicode.IsLetter(c) && c != '_' && (i == 0 || !unicode.IsDigit(c)) {
			return false
		}
	}
	return true
}
