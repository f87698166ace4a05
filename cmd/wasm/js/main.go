//go:build js && wasm

// Command gojexp-js is the WebAssembly entrypoint for browsers and Node.js.
//
// It exposes a global `gojexp` object with the following API:
//
//	gojexp.version()                     → string
//	gojexp.eval(expression, docJSON)     → rendered result  (throws on error)
//	gojexp.compile(expression)           → { eval(docJSON) → rendered result, dump() → string }
//
// docJSON may be empty, in which case _ is unbound.
//
// Build:
//
//	GOOS=js GOARCH=wasm go build -o gojexp.wasm ./cmd/wasm/js/
//
// Usage in Node.js:
//
//	const result = gojexp.eval('sum($.x[])', JSON.stringify({x: [1, 2]}))
//	console.log(result) // '3'
package main

import (
	"fmt"
	"syscall/js"

	"github.com/sandrolain/gojexp"
)

// jsThrow panics with a JS Error so the caller receives a thrown exception.
func jsThrow(msg string) {
	panic(js.Global().Get("Error").New(msg))
}

func contextOf(fn string, docJSON string) *gojexp.Context {
	if docJSON == "" {
		return gojexp.NewContext()
	}
	c, err := gojexp.BuildContext([]byte(docJSON))
	if err != nil {
		jsThrow(fmt.Sprintf("%s: invalid document: %v", fn, err))
	}
	return c
}

// jsEval implements gojexp.eval(expression, docJSON).
func jsEval(_ js.Value, args []js.Value) any {
	if len(args) < 1 {
		jsThrow("gojexp.eval requires an expression and an optional document")
	}
	doc := ""
	if len(args) > 1 {
		doc = args[1].String()
	}
	result, err := gojexp.Eval(args[0].String(), contextOf("gojexp.eval", doc))
	if err != nil {
		jsThrow(fmt.Sprintf("gojexp.eval: %v", err))
	}
	return result.String()
}

// jsCompile implements gojexp.compile(expression).
func jsCompile(_ js.Value, args []js.Value) any {
	if len(args) < 1 {
		jsThrow("gojexp.compile requires 1 argument: expression (string)")
	}
	stmts, err := gojexp.Compile(args[0].String())
	if err != nil {
		jsThrow(fmt.Sprintf("gojexp.compile: %v", err))
	}

	evalFn := js.FuncOf(func(_ js.Value, inner []js.Value) any {
		doc := ""
		if len(inner) > 0 {
			doc = inner[0].String()
		}
		c := contextOf("compiled.eval", doc)
		r := gojexp.Value{}
		for _, s := range stmts {
			var err error
			if r, err = s.Evaluate(c); err != nil {
				jsThrow(fmt.Sprintf("compiled.eval: %v", err))
			}
		}
		return r.String()
	})
	dumpFn := js.FuncOf(func(js.Value, []js.Value) any {
		out := ""
		for i, s := range stmts {
			if i > 0 {
				out += "\n"
			}
			out += s.Dump()
		}
		return out
	})

	return js.ValueOf(map[string]any{"eval": evalFn, "dump": dumpFn})
}

func main() {
	api := map[string]any{
		"eval":    js.FuncOf(jsEval),
		"compile": js.FuncOf(jsCompile),
		"version": js.FuncOf(func(js.Value, []js.Value) any {
			return gojexp.Version()
		}),
	}
	js.Global().Set("gojexp", js.ValueOf(api))

	// The JS event loop owns execution from here.
	select {}
}
