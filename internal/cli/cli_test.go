package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sandrolain/gojexp/pkg/parser"
	"github.com/sandrolain/gojexp/pkg/types"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := Run(context.Background(), &out, func(int) {}, args...)
	return out.String(), err
}

func TestEval(t *testing.T) {
	dir := t.TempDir()
	doc := filepath.Join(dir, "order.yaml")
	if err := os.WriteFile(doc, []byte("items:\n  - price: 10\n  - price: 32\nvat: 0.5\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"single", []string{"eval", "1 + 2"}, "3\n"},
		{"default command", []string{"2 * 21"}, "42\n"},
		{"shared context", []string{"eval", "x = 4", "x * x"}, "4\n16\n"},
		{"json var", []string{"--var", "x=5", "eval", "x * 2"}, "10\n"},
		{"string var", []string{"--var", "name=bob", "eval", `name == "bob"`}, "true\n"},
		{"document", []string{"--doc", doc, "eval", "sum($.items[].price) * (1 + $.vat)"}, "63.0\n"},
		{"forward parser", []string{"--optimize", "eval", "2 + 3 * 4"}, "14\n"},
		{"extensions", []string{"--ext", "eval", "median([3, 1, 2])"}, "2.0\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := run(t, tt.args...)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("output %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEvalErrors(t *testing.T) {
	tests := []struct {
		expr string
		code int
	}{
		{"12 +", ExitParse},
		{"true = 12", ExitEvaluation},
		{"logb(12)", ExitEvaluation},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			_, err := run(t, "eval", tt.expr)
			if err == nil {
				t.Fatal("expected an error")
			}
			if got := ExitCode(err); got != tt.code {
				t.Errorf("ExitCode(%v) = %d, want %d", err, got, tt.code)
			}
		})
	}
}

func TestMissingDocument(t *testing.T) {
	if _, err := run(t, "--doc", filepath.Join(t.TempDir(), "none.json"), "eval", "1"); err == nil {
		t.Error("expected an error for a missing document")
	}
}

func TestDump(t *testing.T) {
	for _, src := range []string{"1 + 2 * 3", "1 - -2 ^ 4", "x = [1, 2]; $x[0]", "x && !y || z"} {
		t.Run(src, func(t *testing.T) {
			got, err := run(t, "dump", src)
			if err != nil {
				t.Fatal(err)
			}
			stmts, err := parser.Compile(src)
			if err != nil {
				t.Fatal(err)
			}
			var want strings.Builder
			for _, s := range stmts {
				want.WriteString(s.String() + "\n")
			}
			if got != want.String() {
				t.Errorf("dump %q, want %q", got, want.String())
			}
		})
	}

	_, err := run(t, "dump", "1 +")
	if !types.IsParseError(err) {
		t.Errorf("dump of invalid source: %v, want a parse error", err)
	}
	if errors.Is(err, ErrAlgorithmsDisagree) {
		t.Error("parse failure reported as disagreement")
	}
}

func TestDecodeVar(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"12", "12"},
		{"[1, 2]", "[1, 2]"},
		{`{"a": true}`, `{"a": true}`},
		{"true", "true"},
	}
	for _, tt := range tests {
		if got := decodeVar(tt.in).String(); got != tt.want {
			t.Errorf("decodeVar(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
	if v := decodeVar("plain words"); !v.IsString() {
		t.Errorf("decodeVar of plain text is %s, want a string", v.Kind())
	}
}
