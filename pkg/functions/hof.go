package functions

import (
	"slices"

	"github.com/sandrolain/gojexp/pkg/types"
)

// CurrentName is the variable bound to the element under evaluation.
const CurrentName = "_"

func fnFilter(c Caller, args []types.Value) (types.Value, error) {
	items, err := args[0].AsVector()
	if err != nil {
		return types.Null, err
	}
	scope := c.Fork()
	out := make([]types.Value, 0, len(items))
	for _, it := range items {
		scope.Set(CurrentName, it)
		r, err := scope.Invoke(args[1])
		if err != nil {
			return types.Null, err
		}
		ok, err := r.AsBoolean()
		if err != nil {
			return types.Null, err
		}
		if ok {
			out = append(out, it)
		}
	}
	if args[0].Multiple() {
		return types.MultiVec(out), nil
	}
	return types.Vec(out), nil
}

func fnMap(c Caller, args []types.Value) (types.Value, error) {
	items, err := args[0].AsVector()
	if err != nil {
		return types.Null, err
	}
	scope := c.Fork()
	out := make([]types.Value, len(items))
	for i, it := range items {
		scope.Set(CurrentName, it)
		if out[i], err = scope.Invoke(args[1]); err != nil {
			return types.Null, err
		}
	}
	return types.Vec(out), nil
}

func fnReduce(c Caller, args []types.Value) (types.Value, error) {
	items, err := args[0].AsVector()
	if err != nil {
		return types.Null, err
	}
	scope := c.Fork()
	r := args[1]
	for _, it := range items {
		scope.Set(CurrentName, it)
		if r, err = scope.Invoke(args[2]); err != nil {
			return types.Null, err
		}
	}
	return r, nil
}

func fnJSONGet(c Caller, args []types.Value) (types.Value, error) {
	path, err := args[1].AsString()
	if err != nil {
		return types.Null, err
	}
	scope := c.Fork()
	scope.Set(CurrentName, args[0])
	return scope.Eval(path)
}

// comparator evaluates a two-argument block over a and b in a fresh fork
// of c and returns its result as an ordering. Assignments made by one
// comparison are not seen by the next.
func comparator(c Caller, fn, a, b types.Value) (int64, error) {
	scope := c.Fork()
	scope.Set("a", a)
	scope.Set("b", b)
	r, err := scope.Invoke(fn)
	if err != nil {
		return 0, err
	}
	if !r.IsNumber() {
		return 0, types.EvalErrorf("comparator must return a number, got %s", r.String())
	}
	return r.AsInteger()
}

func homogeneous(v types.Value) ([]types.Value, error) {
	items, err := v.AsVector()
	if err != nil {
		return nil, err
	}
	if !v.IsHomogeneous() {
		return nil, types.EvalErrorf("Homogeneous Vector required")
	}
	return items, nil
}

func fnSort(c Caller, args []types.Value) (types.Value, error) {
	items, err := homogeneous(args[0])
	if err != nil {
		return types.Null, err
	}
	sorted := slices.Clone(items)
	var firstErr error
	cmp := func(a, b types.Value) int {
		if firstErr != nil {
			return 0
		}
		r, err := a.Compare(b)
		if err != nil {
			firstErr = err
		}
		return r
	}
	if len(args) > 1 && !args[1].IsNull() {
		cmp = func(a, b types.Value) int {
			if firstErr != nil {
				return 0
			}
			r, err := comparator(c, args[1], a, b)
			if err != nil {
				firstErr = err
			}
			return int(max(-1, min(r, 1)))
		}
	}
	slices.SortStableFunc(sorted, cmp)
	if firstErr != nil {
		return types.Null, firstErr
	}
	return types.Vec(sorted), nil
}

func fnUniq(c Caller, args []types.Value) (types.Value, error) {
	items, err := homogeneous(args[0])
	if err != nil {
		return types.Null, err
	}
	out := make([]types.Value, 0, len(items))
	if len(args) < 2 || args[1].IsNull() {
		for _, it := range items {
			if len(out) == 0 || !out[len(out)-1].Equal(it) {
				out = append(out, it)
			}
		}
		return types.Vec(out), nil
	}

	for _, it := range items {
		if len(out) == 0 {
			out = append(out, it)
			continue
		}
		r, err := comparator(c, args[1], out[len(out)-1], it)
		if err != nil {
			return types.Null, err
		}
		switch {
		case r == 0:
			out[len(out)-1] = it
		case r > 0:
			out = append(out, it)
		}
	}
	return types.Vec(out), nil
}
