//go:build wasip1

// Command gojexp-wasi is the WASI (wasip1) entrypoint for hosts that run
// WebAssembly System Interface modules.
//
// Protocol: one JSON object on stdin, one JSON object on stdout.
//
//	stdin:  { "expression": "<source>", "document": <any JSON value>, "optimize": false }
//	stdout: { "result": "<rendered value>" }   on success
//	        { "error": "<message>", "kind": "ParseError" | "EvaluationError" }   on failure (exit code 1)
//
// The document is bound to _, so $ paths address it. The result is the
// display form of the last statement's value.
//
// Build:
//
//	GOOS=wasip1 GOARCH=wasm go build -o gojexp.wasm ./cmd/wasm/wasi/
//
// Usage with wasmtime CLI:
//
//	echo '{"expression":"sum($.x[])","document":{"x":[1,2]}}' | wasmtime gojexp.wasm
package main

import (
	"encoding/json"
	"errors"
	"os"

	"github.com/sandrolain/gojexp"
	"github.com/sandrolain/gojexp/pkg/types"
)

type request struct {
	Expression string          `json:"expression"`
	Document   json.RawMessage `json:"document"`
	Optimize   bool            `json:"optimize"`
}

type response struct {
	Result string `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
	Kind   string `json:"kind,omitempty"`
}

func writeResponse(r response, exitCode int) {
	_ = json.NewEncoder(os.Stdout).Encode(r)
	os.Exit(exitCode)
}

func fail(err error) {
	r := response{Error: err.Error()}
	var te *types.Error
	if errors.As(err, &te) {
		r.Kind = te.Kind.String()
	}
	writeResponse(r, 1)
}

func main() {
	var req request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeResponse(response{Error: "invalid request JSON: " + err.Error()}, 1)
	}

	c := gojexp.NewContext()
	if len(req.Document) > 0 {
		var err error
		if c, err = gojexp.BuildContext(req.Document); err != nil {
			fail(err)
		}
	}

	result, err := gojexp.Eval(req.Expression, c, gojexp.WithOptimize(req.Optimize))
	if err != nil {
		fail(err)
	}
	writeResponse(response{Result: result.String()}, 0)
}
