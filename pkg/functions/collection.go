package functions

import (
	"maps"

	"github.com/sandrolain/gojexp/pkg/types"
)

func fnLength(args []types.Value) (types.Value, error) {
	items, err := args[0].AsVector()
	if err != nil {
		return types.Null, err
	}
	return types.Int(int64(len(items))), nil
}

func fnChoice(args []types.Value) (types.Value, error) {
	c, err := args[0].AsBoolean()
	if err != nil {
		return types.Null, err
	}
	if c {
		return args[1], nil
	}
	return args[2], nil
}

func fnConcat(args []types.Value) (types.Value, error) {
	return types.Vec(append([]types.Value(nil), args...)), nil
}

// vectors returns the elements of the first two arguments.
func vectors(args []types.Value) (a, b []types.Value, err error) {
	if a, err = args[0].AsVector(); err != nil {
		return nil, nil, err
	}
	if b, err = args[1].AsVector(); err != nil {
		return nil, nil, err
	}
	return a, b, nil
}

func fnContains(args []types.Value) (types.Value, error) {
	haystack, err := args[0].AsVector()
	if err != nil {
		return types.Null, err
	}
	if args[1].IsVector() {
		for _, it := range args[1].Items() {
			if types.IndexOf(haystack, it) < 0 {
				return types.False, nil
			}
		}
		return types.True, nil
	}
	return types.Bool(types.IndexOf(haystack, args[1]) >= 0), nil
}

func fnUnion(args []types.Value) (types.Value, error) {
	a, b, err := vectors(args)
	if err != nil {
		return types.Null, err
	}
	all := make([]types.Value, 0, len(a)+len(b))
	all = append(append(all, a...), b...)
	return types.Vec(types.Distinct(all)), nil
}

func fnIntersect(args []types.Value) (types.Value, error) {
	a, b, err := vectors(args)
	if err != nil {
		return types.Null, err
	}
	return types.Vec(keep(a, func(v types.Value) bool { return types.IndexOf(b, v) >= 0 })), nil
}

func fnDiff(args []types.Value) (types.Value, error) {
	a, b, err := vectors(args)
	if err != nil {
		return types.Null, err
	}
	return types.Vec(keep(a, func(v types.Value) bool { return types.IndexOf(b, v) < 0 })), nil
}

func fnSymDiff(args []types.Value) (types.Value, error) {
	a, b, err := vectors(args)
	if err != nil {
		return types.Null, err
	}
	all := make([]types.Value, 0, len(a)+len(b))
	all = types.Distinct(append(append(all, a...), b...))
	return types.Vec(keep(all, func(v types.Value) bool {
		return types.IndexOf(a, v) < 0 || types.IndexOf(b, v) < 0
	})), nil
}

func keep(items []types.Value, pred func(types.Value) bool) []types.Value {
	out := make([]types.Value, 0, len(items))
	for _, it := range items {
		if pred(it) {
			out = append(out, it)
		}
	}
	return out
}

func fnTake(args []types.Value) (types.Value, error) {
	items, err := args[0].AsVector()
	if err != nil {
		return types.Null, err
	}
	n, err := args[1].AsInteger()
	if err != nil {
		return types.Null, err
	}
	n = max(0, min(n, int64(len(items))))
	return types.Vec(append([]types.Value(nil), items[:n]...)), nil
}

func fnKeys(args []types.Value) (types.Value, error) {
	m, err := args[0].AsMap()
	if err != nil {
		return types.Null, err
	}
	keys := types.SortedKeys(m)
	out := make([]types.Value, len(keys))
	for i, k := range keys {
		out[i] = types.Str(k)
	}
	return types.Vec(out), nil
}

func fnValues(args []types.Value) (types.Value, error) {
	m, err := args[0].AsMap()
	if err != nil {
		return types.Null, err
	}
	keys := types.SortedKeys(m)
	out := make([]types.Value, len(keys))
	for i, k := range keys {
		out[i] = m[k]
	}
	return types.Vec(out), nil
}

func fnJoin(args []types.Value) (types.Value, error) {
	left, right, err := vectors(args)
	if err != nil {
		return types.Null, err
	}
	lk, err := args[2].AsString()
	if err != nil {
		return types.Null, err
	}
	rk, err := args[3].AsString()
	if err != nil {
		return types.Null, err
	}
	var out []types.Value
	for _, l := range left {
		lm, err := l.AsMap()
		if err != nil {
			return types.Null, err
		}
		for _, r := range right {
			rm, err := r.AsMap()
			if err != nil {
				return types.Null, err
			}
			if !lm[lk].Equal(rm[rk]) {
				continue
			}
			joined := maps.Clone(lm)
			if joined == nil {
				joined = map[string]types.Value{}
			}
			maps.Copy(joined, rm)
			out = append(out, types.Object(joined))
		}
	}
	return types.Vec(out), nil
}
