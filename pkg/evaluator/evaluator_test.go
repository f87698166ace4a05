package evaluator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/sandrolain/gojexp/pkg/cache"
	"github.com/sandrolain/gojexp/pkg/functions"
	"github.com/sandrolain/gojexp/pkg/log"
	"github.com/sandrolain/gojexp/pkg/operators"
	"github.com/sandrolain/gojexp/pkg/types"
)

func loadDoc(t *testing.T, path string) any {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return decodeDoc(t, string(data))
}

func decodeDoc(t *testing.T, src string) any {
	t.Helper()
	dec := json.NewDecoder(strings.NewReader(src))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return doc
}

func traceLogger(w io.Writer) log.Logger {
	return log.Make(w, log.WithLevel(log.LevelTrace))
}

func run(t *testing.T, ev *Evaluator, src string, c *Context) (types.Value, error) {
	t.Helper()
	stmts, err := ev.Compile(src)
	if err != nil {
		return types.Null, err
	}
	return ev.EvalAll(context.Background(), stmts, c)
}

// evalBoth evaluates src with both parsing algorithms against forks of c
// and requires identical renderings.
func evalBoth(t *testing.T, src string, c *Context) string {
	t.Helper()
	var out [2]string
	for i, optimize := range []bool{false, true} {
		ev := New(WithOptimize(optimize))
		v, err := run(t, ev, src, c.Fork())
		if err != nil {
			t.Fatalf("%q (optimize=%v): %v", src, optimize, err)
		}
		out[i] = v.String()
	}
	if out[0] != out[1] {
		t.Fatalf("%q: algorithms disagree: %s vs %s", src, out[0], out[1])
	}
	return out[0]
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", "null"},
		{"1 + 2 * 3", "7"},
		{"2^-2", "0.25"},
		{"-(-1)", "1"},
		{"(-1)", "-1"},
		{"(1, 2, 3)", "3"},
		{"12e2", "1200.0"},
		{"4/2", "2.0"},
		{"7 % 4", "3.0"},
		{"3! + 1", "7"},
		{"0!", "1"},
		{`"hello" + " world"`, `"hello world"`},
		{"[1,2,3]", "[1, 2, 3]"},
		{`{ "x" : 12, "y":[], "z": {  }  }`, `{"x": 12, "y": [], "z": {}}`},
		{`{"x": 1, "x": 2}`, `{"x": 2}`},
		{`{"x": -22, "y": +43, "z": 1+1}`, `{"x": -22, "y": 43, "z": 2}`},
		{"[-1, 22, -99, +43]", "[-1, 22, -99, 43]"},

		// logic and comparison
		{"false || true && !false", "true"},
		{"!(3 < 3)", "true"},
		{`"abc" < "def"`, "true"},
		{`"hello" != " hello"`, "true"},
		{"[1, 2] == [1, 2]", "[true, true]"},
		{"2 <=> 3", "-1"},

		// broadcasting
		{"pow([1,2,3], 2)", "[1.0, 4.0, 9.0]"},
		{"[1,2,3] * 2", "[2, 4, 6]"},
		{"2 * [1,2,3]", "[2, 4, 6]"},
		{"[1,2,3] * [1,2,3]", "[1, 4, 9]"},
		{"-[1, -2]", "[-1, 2]"},
		{"[2]*2 == map([2], @{_*2})", "[true]"},
		{"[1, null] ++ [false, 4]", "[1, null, false, 4]"},

		// member access rewrites into calls
		{"[1,2,3,4,5].filter(@{_ > 3})", "[4, 5]"},
		{"[].length() > 2", "false"},
		{"[[],[2,3],[4],[5,6,7]].filter(@{_.length() > 2})", "[[5, 6, 7]]"},
		{"[[],[2,3],[4],[5,6,7]].map(@{length(_)})", "[0, 2, 1, 3]"},
		{"filter([1,2,3,4,5], @{_>2}).take(2).sum()", "7"},
		{"[1,2,3,4,5,6,7].filter(@{_>2}).sort().take(4).max()", "6"},
		{"[1,2,3,4,5,6,7].take(2).sum() + [1,2,3,4,5,6,7].take(3).sum()", "9"},
		{"[1,2,3,4].take([1,2].sum()).length()", "3"},
		{"([1,2,3,4]-[4,3,2,1]).sum()", "0"},
		{"[1,2,3,4]-[4,3,2,1].sum()", "[-9, -8, -7, -6]"},

		// functions
		{"filter([12,23,44,31], @{_ > 20})", "[23, 44, 31]"},
		{"map([1,2,3,4], @{_^2})", "[1.0, 4.0, 9.0, 16.0]"},
		{"reduce([1,2,3], 0, @{_ * 10})", "30"},
		{"concat(1, true, 4/2)", "[1, true, 2.0]"},
		{"uniq([3,4,4,5,6,6,6,1,2])", "[3, 4, 5, 6, 1, 2]"},
		{`uniq([{"x":1,"y":3}, {"x":2,"y":3}, {"x":2,"y":5}, {"x":3,"y":3}], @{choice($a.x == $b.x, choice($a.y < $b.y, 0, -1), 1)})`,
			`[{"x": 1, "y": 3}, {"x": 2, "y": 5}, {"x": 3, "y": 3}]`},
		{"[3,4,5.0,6,1,2].sort()", "[1, 2, 3, 4, 5.0, 6]"},
		{"sort([3,4,5.0,6,1,2], @{a<=>b})", "[1, 2, 3, 4, 5.0, 6]"},
		{"sort([3,4,5,6,1,2], @{ b <=> a })", "[6, 5, 4, 3, 2, 1]"},
		{`sort(["def", "abc"])`, `["abc", "def"]`},
		{`sort([{"x":{"y": 2}}, {"x":{"y": 3}}, {"x":{"y": 1}}], @{ $a.x.y <=> $b.x.y })`,
			`[{"x": {"y": 1}}, {"x": {"y": 2}}, {"x": {"y": 3}}]`},
		{`sort(toDate(["2020-01-01", "2023-01-01T12:01"]), @{b <=> a})`, `["2023-01-01T12:01", "2020-01-01"]`},
		{`sort(toDateFmt(["2020-01-01", "2023-01-01"], "yyyy-MM-dd"), @{b <=> a})`, `["2023-01-01", "2020-01-01"]`},
		{`toNumber([12, "23", false, 11.3])`, "[12, 23.0, 0, 11.3]"},
		{`toBoolean([12, false, 0, "true"])`, "[true, false, false, true]"},
		{`choice(3 > 2, "hello", 42)`, `"hello"`},
		{`replaceAll("12&3&456", ("&"), "")`, `"123456"`},
		{`replaceAll("12&3&456", ("\\d"), "")`, `"&&"`},
		{`regMatch("2022", "\\\\d+")`, "true"},
		{`regMatch(null, ".*\\\\d+")`, "false"},
		{`formatDate(toDateFmt("2024-04-01 10:22:25", "yyyy-MM-dd HH:mm:ss"), "HH:mm:ss")`, `"10:22:25"`},
		{`betweenDate(toDate("2024-06-10"), toDate("2024-05-01"), "MONTHS")`, "1"},
		{"round(1.235, 2, \"HALF_DOWN\")", "1.23"},

		// dates
		{`toDate("2023-01-02T13:23:14")+"1y"+"2M"+"3d"+"4h"+"4m"+"6s"`, `"2024-03-05T17:27:20"`},
		{`toDate("2023-01-02T13:23:14")-"1y"-"2M"-"3d"-"4h"-"4m"-"6s"`, `"2021-10-30T09:19:08"`},

		// variables and blocks
		{"x = y = 12; x * y", "144"},
		{"x=@{_+12}; x(12)", "24"},
		{"x=@{1+2;3*3}; x(1)", "9"},
		{"x=1;y=7;z=@{x+1;x+y};z()", "8"},
		{"f = @{_ * 2}; [f(1), f(2)]", "[2, 4]"},
		{"z = @{x = 99}; z(1); x", "null"},
		{"x = null; x != null && x > 1", "false"},
		{"x = null; y = 12; z = 4; y >= 12 && x == null && z > 1", "true"},
		{"x = 3; e > 2 && pi > 3", "true"},

		// paths over variables
		{"x = [1,2,3,5]; $x[-1]", "5"},
		{`x = [false, 2.2, "hello"]; $x[1]`, "2.2"},
		{`x = {"f": false, "v": 2.2}; $x.f`, "false"},
		{`x = {"a": [1, -2]}; ${x.a[1]}.abs()`, "2"},
		{`x = {"a b": 1}; $x."a b"`, "1"},
		{"x = [[1, 2], [3]]; $x[][0]", "1, 3"},
		{"x = [1, 2]; $x[9]", "null"},
		{"$undefined.a[0]", "null"},

		// templates
		{"name = \"Fox\"; `name: $name`", `"name: Fox"`},
		{"x = false; y = 42; `x is $x, y is $y`", `"x is false, y is 42"`},
		{"``", `""`},
		{"x = [1, 2]; `$x`", `"[1, 2]"`},

		// jsonGet
		{`x = [1,2,3]; jsonGet(x, "$[2]")`, "3"},
		{`x = [1,2,3]; jsonGet(x, "$.[]")`, "1, 2, 3"},
		{`y = {"a": 212, "b": [false, true]}; jsonGet(y, "$.b[1]")`, "true"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := evalBoth(t, tt.input, NewContext()); got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestDocumentPaths(t *testing.T) {
	c, err := NewDocumentContext(loadDoc(t, "testdata/doc.json"))
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		input string
		want  string
	}{
		{`$."%%%"`, "42"},
		{`$."#$@#%!!$()"`, "22"},
		{"$.k", "119.0"},
		{"$.s.y", "12"},
		{"$.s.u.d", "3.14"},
		{"$.s.u.z[0]", "11"},
		{"$.s.u.z[7]", "null"},
		{"$.s.u.z[7].x", "null"},
		{"$.s.hello", "null"},
		{"$.s.u.z[]", "11, 12, 13"},
		{"$.x[1].y[0]", "2"},
		{"$.x[].y[0]", "1, 2, null, 1"},
		{"length($.x[].y[])", "9"},
		{"sum($.x[].y[])", "14"},
		{"$.x[0].z", `"hello"`},
		{"$.x[1].z", "false"},
		{"$.x[]", `{"y": [1, 2, 3], "z": "hello"}, {"y": [2], "z": false}, {"y": null, "z": "yeah"}, {"y": [1, 2, 1, 2], "z": null}`},
		{"$.x", `[{"y": [1, 2, 3], "z": "hello"}, {"y": [2], "z": false}, {"y": null, "z": "yeah"}, {"y": [1, 2, 1, 2], "z": null}]`},
		{"length($.empty[])", "0"},
		{`length($.x[@{$.z == "hello" || $.z == "yeah"}])`, "2"},
		{`$.x[@{$.z == "hello"}]`, `{"y": [1, 2, 3], "z": "hello"}`},
		{`length($.x[@{$.z == "nope"}])`, "0"},
		{`filter($.x, @{$.z == "hello"}).length()`, "1"},
		{"`first=${.x[0].z}`", `"first=hello"`},
		{`x = [1,2,3]; y = [{"x":1}, {"x":4}, {"x":2}]; map(x, @{i=_; $y[@{$.x == i+1}]}).filter(@{_.length() != 0})`,
			`[{"x": 2}, {"x": 4}]`},
		{`x = [1,2,3]; y = [{"x":1}, {"x":4}, {"x":2}]; filter(y, @{(x+1).contains($_.x)})`, `[{"x": 4}, {"x": 2}]`},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := evalBoth(t, tt.input, c); got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}

	v, err := run(t, New(), "$.x[]", c)
	if err != nil || !v.Multiple() {
		t.Errorf("$.x[] = %v, %v; want a multiple vector", v, err)
	}
	v, err = run(t, New(), "$.x", c)
	if err != nil || v.Multiple() {
		t.Errorf("$.x = %v, %v; want a plain vector", v, err)
	}
}

func TestRootDocument(t *testing.T) {
	c, err := NewDocumentContext(decodeDoc(t, "[11, 22, 33]"))
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		input    string
		want     string
		multiple bool
	}{
		{"$.", "[11, 22, 33]", false},
		{"$.[]", "11, 22, 33", true},
		{"$.[1]", "22", false},
		{"$[1]", "22", false},
		{"x = 12; y = [x, x^2, x/x]; $y[1]", "144.0", false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			v, err := run(t, New(), tt.input, c.Fork())
			if err != nil {
				t.Fatal(err)
			}
			if v.String() != tt.want || v.Multiple() != tt.multiple {
				t.Errorf("got %s (multiple=%v), want %s (multiple=%v)", v, v.Multiple(), tt.want, tt.multiple)
			}
		})
	}
}

func TestFilterScopes(t *testing.T) {
	c, err := NewDocumentContext(decodeDoc(t, `{"x": 12, "y": [11, 12, 13, 14]}`))
	if err != nil {
		t.Fatal(err)
	}
	ev := New()
	for _, src := range []string{"x = $.x", "y = 11"} {
		if _, err := run(t, ev, src, c); err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		input string
		want  string
	}{
		{"sum($.y[@{_>12}])", "27"},
		{"sum($.y[@{_>$x}])", "27"},
		{"sum($.y[@{_>$y}])", "39"},
		{"sum($.y[@{_>(y=12)}])", "27"},
		{"sum(filter($.y, @{_>(y=$x)}))", "27"},
		{"y", "11"},
	}
	for _, tt := range tests {
		v, err := run(t, ev, tt.input, c)
		if err != nil {
			t.Fatalf("%s: %v", tt.input, err)
		}
		if v.String() != tt.want {
			t.Errorf("%s = %s, want %s", tt.input, v, tt.want)
		}
	}
}

func TestTemplates(t *testing.T) {
	tests := []struct {
		doc   string
		input string
		want  string
	}{
		{`{"x": 12}`, "`x=$.x`", "x=12"},
		{`{"x": "12"}`, "`x=$.x`", "x=12"},
		{`{"x": "12"}`, "`\\$x=$.x`", "$x=12"},
		{`{"x": 12}`, "`\\\\x=$.x \\`$.x\\` x`", "\\x=12 `12` x"},
		{`{"x": 12}`, "`x=${.x} ${.x}$.x`", "x=12 1212"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			c, err := NewDocumentContext(decodeDoc(t, tt.doc))
			if err != nil {
				t.Fatal(err)
			}
			v, err := run(t, New(), tt.input, c)
			if err != nil {
				t.Fatal(err)
			}
			if s, _ := v.AsString(); s != tt.want {
				t.Errorf("got %q, want %q", s, tt.want)
			}
		})
	}
}

func TestEvaluationErrors(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"true = 12", "try to assign value to non-variable name"},
		{"x.y", "second arg of '.' operator must be a function"},
		{"[1,2,3] * [1]", "the length of vectors of cross broadcast must be same"},
		{"x=@{_+12}; x(23, 22)", "only 1 args supported"},
		{"x = 3; x(1)", "cannot cast '3' to Expression"},
		{"fltr([1])", "unknown function 'fltr', did you mean 'filter'?"},
		{"logb(12)", "invalid argument count"},
		{"logb(12, 13, 14)", "invalid argument count"},
		{"sum([false, true])", "number vector required"},
		{"avg([])", "non-empty vector required"},
		{"min([])", "non-empty vector required"},
		{"max([])", "non-empty vector required"},
		{"sort([3,4,5,false,1,2])", "Homogeneous Vector required"},
		{"sort([3,4,5,4,1,2], 123)", "cannot cast '123' to Expression"},
		{`sort([1, 2], @{"x"})`, `comparator must return a number, got "x"`},
		{"uniq([false,4,4,5])", "Homogeneous Vector required"},
		{"union([1,2,3,4], false)", "cannot cast 'false' to Vector"},
		{"toNumber(null)", ""},
		{`toBoolean("bad")`, ""},
		{`toDate("2023 12 12")`, "fail to cast to DateTime: not matched"},
		{`regMatch("d2022", "*\\\\d+")`, ""},
		{`round(1.235, -2, "HALF_UP")`, ""},
		{`round(1.235, 2, "HALF")`, ""},
		{`toDate("2023-01-02T13:23:14") + "1Y"`, "'1Y' is not valid DateTime offset"},
		{`formatDate(toDate("2024-04-01"), "XX")`, "fail to format DateTime to String"},
		{"filter([1, 2], @{_})", "cannot cast '1' to Boolean"},
		{`x = 1; $x.a`, "cannot cast '1' to Map"},
		{`x = {"a": 1}; $x[0]`, `cannot cast '{"a": 1}' to Vector`},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := run(t, New(), tt.input, NewContext())
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not contain %q", err, tt.want)
			}
			if !types.IsEvaluationError(err) {
				t.Errorf("error %q is not an evaluation error", err)
			}
		})
	}
}

func TestCustomFunctions(t *testing.T) {
	reg := functions.Default().Clone()
	err := reg.Register(
		functions.Def{
			Name: "twice", Required: 1, Scalable: true,
			Fn: func(args []types.Value) (types.Value, error) {
				n, err := args[0].AsInteger()
				if err != nil {
					return types.Null, err
				}
				return types.Int(2 * n), nil
			},
		},
		functions.Def{
			Name: "boom", Required: 0,
			Fn: func([]types.Value) (types.Value, error) {
				return types.Null, errors.New("kaboom")
			},
		},
	)
	if err != nil {
		t.Fatal(err)
	}
	ev := New(WithFunctions(reg))

	v, err := run(t, ev, "twice([1, 2]).sum()", NewContext())
	if err != nil || v.String() != "6" {
		t.Errorf("twice = %v, %v", v, err)
	}

	_, err = run(t, ev, "boom()", NewContext())
	if err == nil || !types.IsEvaluationError(err) || err.Error() != "function boom failed: kaboom" {
		t.Errorf("boom() error = %v", err)
	}

	// The default registry does not know twice.
	if _, err := run(t, New(), "twice(1)", NewContext()); err == nil {
		t.Error("twice resolved without registration")
	}
}

// TestScalableOperatorsBroadcast walks every scalable entry of the operator
// table and checks that applying it to a vector equals applying it to each
// element in turn, with the vector on either side.
func TestScalableOperatorsBroadcast(t *testing.T) {
	numbers := []string{"1", "2", "3"}
	bools := []string{"true", "false", "true"}
	list := func(items []string) string { return "[" + strings.Join(items, ", ") + "]" }
	elementwise := func(t *testing.T, items []string, apply func(string) string) string {
		t.Helper()
		out := make([]string, len(items))
		for i, it := range items {
			out[i] = evalBoth(t, apply("("+it+")"), NewContext())
		}
		return "[" + strings.Join(out, ", ") + "]"
	}

	covered := 0
	for _, op := range operators.All() {
		if !op.Scalable {
			continue
		}
		covered++
		switch {
		case op.Prefix():
			items := numbers
			if op.Symbol == "!" {
				items = bools
			}
			t.Run("prefix "+op.Symbol, func(t *testing.T) {
				got := evalBoth(t, op.Symbol+list(items), NewContext())
				want := elementwise(t, items, func(x string) string { return op.Symbol + x })
				if got != want {
					t.Errorf("%s%s = %s, want %s", op.Symbol, list(items), got, want)
				}
			})
		case op.Postfix():
			t.Run("postfix "+op.Symbol, func(t *testing.T) {
				got := evalBoth(t, "("+list(numbers)+")"+op.Symbol, NewContext())
				want := elementwise(t, numbers, func(x string) string { return x + op.Symbol })
				if got != want {
					t.Errorf("(%s)%s = %s, want %s", list(numbers), op.Symbol, got, want)
				}
			})
		default:
			items, scalars := numbers, []string{"2"}
			if op.Symbol == "&&" || op.Symbol == "||" {
				items, scalars = bools, []string{"true", "false"}
			}
			for _, s := range scalars {
				t.Run(op.Symbol+" "+s, func(t *testing.T) {
					vs := list(items) + " " + op.Symbol + " " + s
					if got, want := evalBoth(t, vs, NewContext()),
						elementwise(t, items, func(x string) string { return x + " " + op.Symbol + " (" + s + ")" }); got != want {
						t.Errorf("%s = %s, want %s", vs, got, want)
					}
					sv := s + " " + op.Symbol + " " + list(items)
					if got, want := evalBoth(t, sv, NewContext()),
						elementwise(t, items, func(x string) string { return "(" + s + ") " + op.Symbol + " " + x }); got != want {
						t.Errorf("%s = %s, want %s", sv, got, want)
					}
				})
			}
		}
	}
	if covered == 0 {
		t.Fatal("no scalable operators in the table")
	}
}

func TestCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ev := New()
	stmts, err := ev.Compile("1 + 1")
	if err != nil {
		t.Fatal(err)
	}
	_, err = ev.EvalAll(ctx, stmts, NewContext())
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestMaxDepth(t *testing.T) {
	ev := New(WithMaxDepth(200))
	_, err := run(t, ev, "f = @{f(_)}; f(1)", NewContext())
	if err == nil || err.Error() != "maximum recursion depth 200 exceeded" {
		t.Errorf("err = %v", err)
	}

	// The counter unwinds between statements.
	v, err := run(t, ev, "g = @{_ + 1}; g(1); g(2)", NewContext())
	if err != nil || v.String() != "3" {
		t.Errorf("got %v, %v", v, err)
	}
}

func TestCompileCache(t *testing.T) {
	c := cache.New[[]*types.Expression](8)
	ev := New(WithCache(c))
	for range 3 {
		if _, err := run(t, ev, `jsonGet([1, 2], "$[0]")`, NewContext()); err != nil {
			t.Fatal(err)
		}
	}
	// The outer source and the jsonGet path each miss once.
	hits, misses := c.Stats()
	if hits != 4 || misses != 2 {
		t.Errorf("hits=%d misses=%d, want 4 and 2", hits, misses)
	}
}

func TestTraceLogging(t *testing.T) {
	var buf bytes.Buffer
	ev := New(WithLogger(traceLogger(&buf)))
	if _, err := run(t, ev, "1 + 1", NewContext()); err != nil {
		t.Fatal(err)
	}
	for _, msg := range []string{"compiled", "evaluating", "evaluated"} {
		if !strings.Contains(buf.String(), msg) {
			t.Errorf("trace output lacks %q:\n%s", msg, buf.String())
		}
	}
}

func TestJSONGetParseError(t *testing.T) {
	_, err := run(t, New(), `jsonGet(1, "$.x.")`, NewContext())
	if err == nil || !types.IsParseError(err) {
		t.Errorf("err = %v, want a parse error", err)
	}
}

func TestUnboundPathIsNull(t *testing.T) {
	v, err := run(t, New(), "$nothing.a[0]", NewContext())
	if err != nil || !v.IsNull() {
		t.Errorf("got %v, %v", v, err)
	}
}
