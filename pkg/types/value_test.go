package types_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/sandrolain/gojexp/pkg/types"
)

func TestValueRender(t *testing.T) {
	tests := []struct {
		name  string
		value types.Value
		want  string
	}{
		{"null", types.Null, "null"},
		{"integer", types.Int(12), "12"},
		{"decimal whole", types.Float(12), "12.0"},
		{"decimal fraction", types.Float(0.25), "0.25"},
		{"decimal large", types.Float(1.5e22), "1.5E22"},
		{"decimal small", types.Float(0.0001), "1.0E-4"},
		{"string", types.Str(`a"b`), `"a\"b"`},
		{"html is not escaped", types.Str("<a>"), `"<a>"`},
		{"boolean", types.True, "true"},
		{"vector", types.Vec([]types.Value{types.Int(1), types.Str("x")}), `[1, "x"]`},
		{"multiple vector", types.MultiVec([]types.Value{types.Int(1), types.Int(2)}), "1, 2"},
		{"enclosed", types.Group([]types.Value{types.Int(1), types.Int(2)}), "(1, 2)"},
		{"map sorted", types.Object(map[string]types.Value{"b": types.Int(2), "a": types.Int(1)}), `{"a": 1, "b": 2}`},
		{"empty map", types.Object(nil), "{}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.value.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValueUnwrap(t *testing.T) {
	v := types.Group([]types.Value{types.Group([]types.Value{types.Int(7)})})
	if v.Kind() != types.KindInteger {
		t.Fatalf("Kind() = %s, want Integer", v.Kind())
	}
	if v.RawKind() != types.KindEnclosed {
		t.Fatalf("RawKind() = %s, want Enclosed", v.RawKind())
	}
	i, err := v.AsInteger()
	if err != nil || i != 7 {
		t.Fatalf("AsInteger() = %d, %v", i, err)
	}
	if !v.Equal(types.Int(7)) {
		t.Fatal("single-element group should equal its element")
	}
}

func TestValueHomogeneity(t *testing.T) {
	tests := []struct {
		name        string
		items       []types.Value
		homogeneous bool
		kind        types.Kind
		typed       bool
	}{
		{"empty", nil, true, types.KindNull, false},
		{"integers", []types.Value{types.Int(1), types.Int(2)}, true, types.KindInteger, true},
		{"promoted", []types.Value{types.Int(1), types.Float(2.5)}, true, types.KindDecimal, true},
		{"null adopts", []types.Value{types.Null, types.Int(1)}, true, types.KindInteger, true},
		{"mixed", []types.Value{types.Int(1), types.Str("a")}, false, types.KindInteger, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := types.Vec(tt.items)
			if got := v.IsHomogeneous(); got != tt.homogeneous {
				t.Errorf("IsHomogeneous() = %v, want %v", got, tt.homogeneous)
			}
			kind, ok := v.HomogeneousKind()
			if ok != tt.typed || kind != tt.kind {
				t.Errorf("HomogeneousKind() = %s, %v, want %s, %v", kind, ok, tt.kind, tt.typed)
			}
		})
	}
}

func TestValueEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b types.Value
		want bool
	}{
		{"same integer", types.Int(1), types.Int(1), true},
		{"integer vs decimal", types.Int(12), types.Float(12), false},
		{"vectors", types.Vec([]types.Value{types.Int(1)}), types.MultiVec([]types.Value{types.Int(1)}), true},
		{"vector length", types.Vec([]types.Value{types.Int(1)}), types.Vec([]types.Value{types.Int(1), types.Int(1)}), false},
		{"maps", types.MustOf(map[string]any{"a": 1}), types.MustOf(map[string]any{"a": 1}), true},
		{"null", types.Null, types.Null, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Equal(tt.b); got != tt.want {
				t.Errorf("Equal() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestValueCompare(t *testing.T) {
	tests := []struct {
		name    string
		a, b    types.Value
		want    int
		wantErr string
	}{
		{"numbers", types.Int(1), types.Float(1.5), -1, ""},
		{"strings", types.Str("b"), types.Str("a"), 1, ""},
		{"booleans", types.False, types.True, -1, ""},
		{"null first", types.Null, types.Int(3), 0, ""},
		{"vector", types.Vec(nil), types.Vec(nil), 0, "'[]' and '[]' is not comparable"},
		{"cast failure", types.Int(1), types.Str("a"), 0, `cannot cast '"a"' to Decimal`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.a.Compare(tt.b)
			if tt.wantErr != "" {
				if err == nil || err.Error() != tt.wantErr {
					t.Fatalf("Compare() error = %v, want %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("Compare() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestValueCastErrors(t *testing.T) {
	_, err := types.Str("x").AsBoolean()
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, types.ErrEvaluation) {
		t.Errorf("expected evaluation error, got %v", err)
	}
	if err.Error() != `cannot cast '"x"' to Boolean` {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestOfAndRaw(t *testing.T) {
	raw := map[string]any{
		"n":    int64(3),
		"f":    1.5,
		"s":    "x",
		"list": []any{true, nil},
	}
	v, err := types.Of(raw)
	if err != nil {
		t.Fatal(err)
	}
	if v.String() != `{"f": 1.5, "list": [true, null], "n": 3, "s": "x"}` {
		t.Errorf("unexpected rendering %s", v)
	}
	if diff := cmp.Diff(raw, v.Raw()); diff != "" {
		t.Errorf("Raw() mismatch (-want +got):\n%s", diff)
	}

	if _, err := types.Of(struct{}{}); err == nil || err.Error() != "struct {} type not supported as Value" {
		t.Errorf("Of(struct{}{}) error = %v", err)
	}
}

func TestDistinct(t *testing.T) {
	got := types.Distinct([]types.Value{types.Int(1), types.Int(2), types.Int(1), types.Float(1)})
	if types.Vec(got).String() != "[1, 2, 1.0]" {
		t.Errorf("Distinct() = %s", types.Vec(got))
	}
}

func TestErrorKinds(t *testing.T) {
	err := types.UnexpectedToken("a", 7)
	if err.Error() != "unexpected 'a' at pos 7" {
		t.Errorf("message = %q", err.Error())
	}
	if !types.IsParseError(err) || types.IsEvaluationError(err) {
		t.Error("expected a parse error")
	}
	if err.Position != 7 || err.Token != "a" {
		t.Errorf("position/token = %d/%q", err.Position, err.Token)
	}
	wrapped := types.EvalErrorf("invalid regex: %s", "(").WithCause(errors.New("missing )"))
	if wrapped.Error() != "invalid regex: (: missing )" {
		t.Errorf("wrapped message = %q", wrapped.Error())
	}
}
