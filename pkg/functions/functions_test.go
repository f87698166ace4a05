package functions

import (
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/sandrolain/gojexp/pkg/types"
)

// fakeScope runs Go closures in place of compiled blocks.
type fakeScope struct {
	vars   map[string]types.Value
	blocks map[*types.Block]func(vars map[string]types.Value) types.Value
	eval   func(source string, vars map[string]types.Value) (types.Value, error)
}

func (s *fakeScope) Set(name string, v types.Value) { s.vars[name] = v }

func (s *fakeScope) Invoke(fn types.Value) (types.Value, error) {
	if fn.IsVector() {
		r := types.Null
		for _, f := range fn.Items() {
			var err error
			if r, err = s.Invoke(f); err != nil {
				return types.Null, err
			}
		}
		return r, nil
	}
	b, err := fn.AsBlock()
	if err != nil {
		return types.Null, err
	}
	return s.blocks[b](s.vars), nil
}

func (s *fakeScope) Eval(source string) (types.Value, error) {
	return s.eval(source, s.vars)
}

type fakeCaller struct {
	blocks map[*types.Block]func(vars map[string]types.Value) types.Value
	forks  int
	eval   func(source string, vars map[string]types.Value) (types.Value, error)
}

func (c *fakeCaller) Fork() Scope {
	c.forks++
	return &fakeScope{vars: map[string]types.Value{}, blocks: c.blocks, eval: c.eval}
}

func (c *fakeCaller) block(fn func(vars map[string]types.Value) types.Value) types.Value {
	if c.blocks == nil {
		c.blocks = map[*types.Block]func(map[string]types.Value) types.Value{}
	}
	b := &types.Block{}
	c.blocks[b] = fn
	return types.BlockValue(b)
}

func ints(ns ...int64) types.Value {
	items := make([]types.Value, len(ns))
	for i, n := range ns {
		items[i] = types.Int(n)
	}
	return types.Vec(items)
}

func call(t *testing.T, c Caller, name string, args ...types.Value) (types.Value, error) {
	t.Helper()
	def, ok := Default().Lookup(name)
	if !ok {
		t.Fatalf("function %q not registered", name)
	}
	if err := def.CheckArity(len(args)); err != nil {
		return types.Null, err
	}
	return def.Call(c, args)
}

func TestBuiltins(t *testing.T) {
	tests := []struct {
		name    string
		fn      string
		args    []types.Value
		want    string
		wantErr string
	}{
		{name: "abs int", fn: "abs", args: []types.Value{types.Int(-3)}, want: "3"},
		{name: "abs float", fn: "abs", args: []types.Value{types.Float(-1.5)}, want: "1.5"},
		{name: "pow", fn: "pow", args: []types.Value{types.Int(2), types.Int(2)}, want: "4.0"},
		{name: "logb", fn: "logb", args: []types.Value{types.Int(2), types.Int(8)}, want: "3.0"},
		{name: "floor", fn: "floor", args: []types.Value{types.Float(2.7)}, want: "2.0"},
		{name: "signum", fn: "signum", args: []types.Value{types.Int(-9)}, want: "-1.0"},
		{name: "sqrt string", fn: "sqrt", args: []types.Value{types.Str("4")}, wantErr: "cannot cast"},

		{name: "sum empty", fn: "sum", args: []types.Value{ints()}, want: "0"},
		{name: "sum ints", fn: "sum", args: []types.Value{ints(1, 2, 3)}, want: "6"},
		{name: "sum mixed", fn: "sum", args: []types.Value{types.Vec([]types.Value{types.Int(1), types.Float(0.5)})}, want: "1.5"},
		{name: "sum skips null", fn: "sum", args: []types.Value{types.Vec([]types.Value{types.Int(1), types.Null})}, want: "1"},
		{name: "sum strings", fn: "sum", args: []types.Value{types.Vec([]types.Value{types.Str("a")})}, wantErr: "number vector required"},
		{name: "sum mixed kinds", fn: "sum", args: []types.Value{types.Vec([]types.Value{types.Str("a"), types.Int(1)})}, wantErr: "Homogeneous Vector required"},
		{name: "avg", fn: "avg", args: []types.Value{ints(1, 2)}, want: "1.5"},
		{name: "avg empty", fn: "avg", args: []types.Value{ints()}, wantErr: "non-empty vector required"},
		{name: "max", fn: "max", args: []types.Value{ints(4, 9, 2)}, want: "9"},
		{name: "min decimal", fn: "min", args: []types.Value{types.Vec([]types.Value{types.Float(1.5), types.Int(1)})}, want: "1.0"},
		{name: "min empty", fn: "min", args: []types.Value{ints()}, wantErr: "non-empty vector required"},

		{name: "toString", fn: "toString", args: []types.Value{types.Str("a")}, want: `"\"a\""`},
		{name: "toNumber commas", fn: "toNumber", args: []types.Value{types.Str("1,234.5")}, want: "1234.5"},
		{name: "toNumber bool", fn: "toNumber", args: []types.Value{types.True}, want: "1"},
		{name: "toNumber bad", fn: "toNumber", args: []types.Value{types.Str("x")}, wantErr: "fail to cast string to number"},
		{name: "toNumber map", fn: "toNumber", args: []types.Value{types.Object(nil)}, wantErr: "fail to cast to number, source type is Map"},
		{name: "toBoolean number", fn: "toBoolean", args: []types.Value{types.Float(0.1)}, want: "true"},
		{name: "toBoolean string", fn: "toBoolean", args: []types.Value{types.Str("false")}, want: "false"},
		{name: "toBoolean bad", fn: "toBoolean", args: []types.Value{types.Str("yes")}, wantErr: "fail to cast string to boolean: yes"},
		{name: "toBoolean null", fn: "toBoolean", args: []types.Value{types.Null}, wantErr: "fail to cast to boolean, source type is Null"},

		{name: "toDate", fn: "toDate", args: []types.Value{types.Str("2022-09-01")}, want: `"2022-09-01"`},
		{name: "toDate bad", fn: "toDate", args: []types.Value{types.Str("soon")}, wantErr: "fail to cast to DateTime: not matched"},
		{name: "toDateFmt", fn: "toDateFmt", args: []types.Value{types.Str("2022 9 1"), types.Str("yyyy M d")}, want: `"2022 9 1"`},
		{name: "toDateFmt bad", fn: "toDateFmt", args: []types.Value{types.Str("2022 9 1"), types.Str("yyyy MM d")}, wantErr: "fail to cast to DateTime: 2022 9 1"},

		{name: "length", fn: "length", args: []types.Value{types.Vec([]types.Value{types.Int(12), types.False, types.Null})}, want: "3"},
		{name: "choice", fn: "choice", args: []types.Value{types.False, types.Int(1), types.Int(2)}, want: "2"},
		{name: "contains value", fn: "contains", args: []types.Value{ints(1, 2), types.Int(2)}, want: "true"},
		{name: "contains all", fn: "contains", args: []types.Value{ints(1, 2), ints(2, 3)}, want: "false"},
		{name: "union", fn: "union", args: []types.Value{ints(1, 2, 2), ints(3, 1)}, want: "[1, 2, 3]"},
		{name: "intersect", fn: "intersect", args: []types.Value{ints(1, 2, 3), ints(3, 1)}, want: "[1, 3]"},
		{name: "diff", fn: "diff", args: []types.Value{ints(1, 2, 3), ints(3, 1)}, want: "[2]"},
		{name: "symDiff", fn: "symDiff", args: []types.Value{ints(1, 2, 3), ints(3, 4)}, want: "[1, 2, 4]"},
		{name: "concat", fn: "concat", args: []types.Value{types.Int(1), types.Str("a")}, want: `[1, "a"]`},
		{name: "take", fn: "take", args: []types.Value{ints(1, 2, 3), types.Int(2)}, want: "[1, 2]"},
		{name: "take negative", fn: "take", args: []types.Value{ints(1, 2, 3), types.Int(-1)}, want: "[]"},
		{name: "add", fn: "add", args: []types.Value{types.Int(1), types.Int(2), types.Int(3), types.Int(4), types.Int(5)}, want: "15"},
		{name: "add arity", fn: "add", args: []types.Value{types.Int(1)}, wantErr: "invalid argument count"},

		{name: "regMatch", fn: "regMatch", args: []types.Value{types.Str("abc123"), types.Str(`[a-z]+\\d+`)}, want: "true"},
		{name: "regMatch partial", fn: "regMatch", args: []types.Value{types.Str("abc123"), types.Str(`[a-z]+`)}, want: "false"},
		{name: "regMatch null", fn: "regMatch", args: []types.Value{types.Null, types.Str(`.*`)}, want: "false"},
		{name: "regMatch invalid", fn: "regMatch", args: []types.Value{types.Str("a"), types.Str(`(`)}, wantErr: "invalid regex: ("},
		{name: "replaceAll", fn: "replaceAll", args: []types.Value{types.Str("a-b-c"), types.Str("-"), types.Str("+")}, want: `"a+b+c"`},

		{name: "round default", fn: "round", args: []types.Value{types.Float(2.345)}, want: "2.35"},
		{name: "round half even", fn: "round", args: []types.Value{types.Float(2.345), types.Int(2), types.Str("HALF_EVEN")}, want: "2.34"},
		{name: "round half down", fn: "round", args: []types.Value{types.Float(2.5), types.Int(0), types.Str("HALF_DOWN")}, want: "2.0"},
		{name: "round up negative", fn: "round", args: []types.Value{types.Float(-2.01), types.Int(1), types.Str("UP")}, want: "-2.1"},
		{name: "round floor", fn: "round", args: []types.Value{types.Float(-2.01), types.Int(1), types.Str("FLOOR")}, want: "-2.1"},
		{name: "round ceiling", fn: "round", args: []types.Value{types.Float(-2.01), types.Int(1), types.Str("CEILING")}, want: "-2.0"},
		{name: "round scale", fn: "round", args: []types.Value{types.Int(1), types.Int(-1)}, wantErr: "scale of round() must not be negative"},
		{name: "round huge scale", fn: "round", args: []types.Value{types.Float(1.2), types.Int(1_000_000_000)}, want: "1.2"},
		{name: "round tiny value huge scale", fn: "round", args: []types.Value{types.Float(5e-324), types.Int(math.MaxInt64), types.Str("UP")}, want: "5.0E-324"},
		{name: "round mode", fn: "round", args: []types.Value{types.Int(1), types.Int(1), types.Str("SIDEWAYS")}, wantErr: "invalid rounding mode: SIDEWAYS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := call(t, &fakeCaller{}, tt.fn, tt.args...)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("%s() error = %v, want %q", tt.fn, err, tt.wantErr)
				}
				if !types.IsEvaluationError(err) {
					t.Fatalf("%s() error kind = %v, want evaluation error", tt.fn, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("%s() unexpected error: %v", tt.fn, err)
			}
			if got.String() != tt.want {
				t.Errorf("%s() = %s, want %s", tt.fn, got, tt.want)
			}
		})
	}
}

func TestMapFunctions(t *testing.T) {
	m := types.Object(map[string]types.Value{"b": types.Int(2), "a": types.Int(1)})
	got, err := call(t, &fakeCaller{}, "keys", m)
	if err != nil || got.String() != `["a", "b"]` {
		t.Fatalf("keys() = %s, %v", got, err)
	}
	got, err = call(t, &fakeCaller{}, "values", m)
	if err != nil || got.String() != `[1, 2]` {
		t.Fatalf("values() = %s, %v", got, err)
	}

	left := types.MustOf([]any{
		map[string]any{"id": 1, "name": "a"},
		map[string]any{"id": 2, "name": "b"},
	})
	right := types.MustOf([]any{
		map[string]any{"ref": 2, "name": "B"},
	})
	got, err = call(t, &fakeCaller{}, "join", left, right, types.Str("id"), types.Str("ref"))
	if err != nil {
		t.Fatalf("join() error: %v", err)
	}
	want := []any{map[string]any{"id": int64(2), "ref": int64(2), "name": "B"}}
	if diff := cmp.Diff(want, got.Raw()); diff != "" {
		t.Errorf("join() mismatch (-want +got):\n%s", diff)
	}
}

func TestHigherOrder(t *testing.T) {
	c := &fakeCaller{}
	gt2 := c.block(func(vars map[string]types.Value) types.Value {
		n, _ := vars["_"].AsInteger()
		return types.Bool(n > 2)
	})
	double := c.block(func(vars map[string]types.Value) types.Value {
		n, _ := vars["_"].AsInteger()
		return types.Int(n * 2)
	})
	notBool := c.block(func(map[string]types.Value) types.Value { return types.Int(1) })
	desc := c.block(func(vars map[string]types.Value) types.Value {
		r, _ := vars["b"].Compare(vars["a"])
		return types.Int(int64(r))
	})
	same := c.block(func(vars map[string]types.Value) types.Value {
		r, _ := vars["b"].Compare(vars["a"])
		return types.Int(int64(r))
	})
	acc := types.Int(0)
	sum := c.block(func(vars map[string]types.Value) types.Value {
		a, _ := acc.AsInteger()
		n, _ := vars["_"].AsInteger()
		acc = types.Int(a + n)
		return acc
	})

	tests := []struct {
		name    string
		fn      string
		args    []types.Value
		want    string
		wantErr string
	}{
		{name: "filter", fn: "filter", args: []types.Value{ints(1, 2, 3, 4), gt2}, want: "[3, 4]"},
		{name: "filter multiple", fn: "filter", args: []types.Value{types.MultiVec([]types.Value{types.Int(3), types.Int(1)}), gt2}, want: "3"},
		{name: "filter strict", fn: "filter", args: []types.Value{ints(1), notBool}, wantErr: "cannot cast"},
		{name: "map", fn: "map", args: []types.Value{ints(1, 2), double}, want: "[2, 4]"},
		{name: "map block vector", fn: "map", args: []types.Value{ints(1, 2), types.Vec([]types.Value{gt2, double})}, want: "[2, 4]"},
		{name: "reduce", fn: "reduce", args: []types.Value{ints(1, 2, 3), types.Int(0), sum}, want: "6"},
		{name: "reduce empty", fn: "reduce", args: []types.Value{ints(), types.Str("id"), sum}, want: `"id"`},
		{name: "sort", fn: "sort", args: []types.Value{ints(3, 1, 2)}, want: "[1, 2, 3]"},
		{name: "sort predicate", fn: "sort", args: []types.Value{ints(3, 1, 2), desc}, want: "[3, 2, 1]"},
		{name: "sort predicate type", fn: "sort", args: []types.Value{ints(3, 1), gt2}, wantErr: "comparator must return a number"},
		{name: "sort mixed", fn: "sort", args: []types.Value{types.Vec([]types.Value{types.Int(1), types.Str("a")})}, wantErr: "Homogeneous Vector required"},
		{name: "uniq adjacent", fn: "uniq", args: []types.Value{ints(3, 4, 4, 5, 6, 6, 6, 1, 2)}, want: "[3, 4, 5, 6, 1, 2]"},
		{name: "uniq predicate", fn: "uniq", args: []types.Value{ints(1, 1, 3, 2), same}, want: "[1, 3]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acc = types.Int(0)
			got, err := call(t, c, tt.fn, tt.args...)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("%s() error = %v, want %q", tt.fn, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("%s() unexpected error: %v", tt.fn, err)
			}
			if got.String() != tt.want {
				t.Errorf("%s() = %s, want %s", tt.fn, got, tt.want)
			}
		})
	}
}

func TestFilterForksOnce(t *testing.T) {
	c := &fakeCaller{}
	yes := c.block(func(map[string]types.Value) types.Value { return types.True })
	if _, err := call(t, c, "filter", ints(1, 2, 3), yes); err != nil {
		t.Fatal(err)
	}
	if c.forks != 1 {
		t.Errorf("filter forked %d times, want 1", c.forks)
	}
}

func TestComparatorForksPerComparison(t *testing.T) {
	for _, fn := range []string{"uniq", "sort"} {
		t.Run(fn, func(t *testing.T) {
			c := &fakeCaller{}
			// Compares equal unless an earlier comparison left "seen" behind.
			sticky := c.block(func(vars map[string]types.Value) types.Value {
				if _, ok := vars["seen"]; ok {
					return types.Int(1)
				}
				vars["seen"] = types.True
				return types.Int(0)
			})
			got, err := call(t, c, fn, ints(1, 1, 1), sticky)
			if err != nil {
				t.Fatal(err)
			}
			want := "[1, 1, 1]"
			if fn == "uniq" {
				want = "[1]"
			}
			if got.String() != want {
				t.Errorf("%s() = %s, want %s", fn, got, want)
			}
			if c.forks < 2 {
				t.Errorf("%s() forked %d times, want one fork per comparison", fn, c.forks)
			}
		})
	}
}

func TestJSONGet(t *testing.T) {
	c := &fakeCaller{eval: func(source string, vars map[string]types.Value) (types.Value, error) {
		if source != "$.a" {
			t.Fatalf("source = %q", source)
		}
		m, err := vars["_"].AsMap()
		if err != nil {
			return types.Null, err
		}
		return m["a"], nil
	}}
	doc := types.Object(map[string]types.Value{"a": types.Int(7)})
	got, err := call(t, c, "jsonGet", doc, types.Str("$.a"))
	if err != nil || got.String() != "7" {
		t.Fatalf("jsonGet() = %s, %v", got, err)
	}
}

func TestBetweenDate(t *testing.T) {
	start, _ := types.ParseDateTime("2020-01-01 00:00:00", "yyyy-MM-dd HH:mm:ss")
	end, _ := types.ParseDateTime("2023-01-01 12:00:00", "yyyy-MM-dd HH:mm:ss")
	a := types.Date(end, types.DefaultDateTimePattern)
	b := types.Date(start, types.DefaultDateTimePattern)

	tests := []struct {
		unit    string
		want    string
		wantErr string
	}{
		{unit: "", want: "1096"},
		{unit: "YEARS", want: "3"},
		{unit: "HOURS", want: "26316"},
		{unit: "FORTNIGHTS", wantErr: "fail to format cal betweenDate"},
	}
	for _, tt := range tests {
		t.Run(tt.unit, func(t *testing.T) {
			args := []types.Value{a, b}
			if tt.unit != "" {
				args = append(args, types.Str(tt.unit))
			}
			got, err := call(t, &fakeCaller{}, "betweenDate", args...)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("error = %v, want %q", err, tt.wantErr)
				}
				return
			}
			if err != nil || got.String() != tt.want {
				t.Fatalf("betweenDate() = %s, %v, want %s", got, err, tt.want)
			}
		})
	}
}

func TestRand(t *testing.T) {
	for range 100 {
		v, _ := fnRand(nil)
		f, _ := v.AsFloat()
		if f < 0 || f >= 1 || math.IsNaN(f) {
			t.Fatalf("rand() = %v", f)
		}
	}
}

func TestRegistry(t *testing.T) {
	r := Default().Clone()
	err := r.Register(Def{Name: "twice", Required: 1, Scalable: true, Fn: func(args []types.Value) (types.Value, error) {
		n, err := args[0].AsInteger()
		return types.Int(n * 2), err
	}})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := r.Lookup("twice"); !ok {
		t.Fatal("twice not registered")
	}
	if _, ok := Default().Lookup("twice"); ok {
		t.Fatal("Clone shares definitions with Default")
	}

	bad := []Def{
		{Name: "", Fn: fnRand},
		{Name: "1x", Fn: fnRand},
		{Name: "both", Fn: fnRand, CtxFn: fnFilter},
		{Name: "none"},
		{Name: "arity", Required: -2, Fn: fnRand},
	}
	for _, d := range bad {
		if err := r.Register(d); err == nil {
			t.Errorf("Register(%q) succeeded, want error", d.Name)
		}
	}

	if got := r.Suggest("fltr", 1); len(got) != 1 || got[0] != "filter" {
		t.Errorf("Suggest(fltr) = %v", got)
	}
	names := r.Names()
	for i := 1; i < len(names); i++ {
		if names[i-1] >= names[i] {
			t.Fatalf("Names() not sorted at %d: %v", i, names[i-1:i+1])
		}
	}
}
