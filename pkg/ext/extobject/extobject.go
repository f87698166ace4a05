// Package extobject provides map functions beyond keys and values.
//
// Maps are immutable: every function returns a new map.
package extobject

import (
	"maps"

	"github.com/sandrolain/gojexp/pkg/functions"
	"github.com/sandrolain/gojexp/pkg/types"
)

// KeyName is the variable holding the current key inside mapValues and
// mapKeys blocks. The value is bound to _.
const KeyName = "key"

// All returns all map function definitions.
func All() []functions.Def {
	return []functions.Def{
		Pairs(),
		FromPairs(),
		Pick(),
		Omit(),
		DeepMerge(),
		Invert(),
		Size(),
		Rename(),
		MapValues(),
		MapKeys(),
	}
}

// Pairs returns the definition for pairs(m), the [key, value] pairs of m
// in key order.
func Pairs() functions.Def {
	return functions.Def{
		Name: "pairs", Required: 1, Scalable: true,
		Doc: "[key, value] pairs in key order",
		Fn: func(args []types.Value) (types.Value, error) {
			m, err := args[0].AsMap()
			if err != nil {
				return types.Null, err
			}
			out := make([]types.Value, 0, len(m))
			for _, k := range types.SortedKeys(m) {
				out = append(out, types.Vec([]types.Value{types.Str(k), m[k]}))
			}
			return types.Vec(out), nil
		},
	}
}

// FromPairs returns the definition for fromPairs(v), the inverse of pairs.
// Later pairs overwrite earlier ones.
func FromPairs() functions.Def {
	return functions.Def{
		Name: "fromPairs", Required: 1,
		Doc: "map built from [key, value] pairs",
		Fn: func(args []types.Value) (types.Value, error) {
			items, err := args[0].AsVector()
			if err != nil {
				return types.Null, err
			}
			out := make(map[string]types.Value, len(items))
			for i, it := range items {
				pair, err := it.AsVector()
				if err != nil || len(pair) != 2 {
					return types.Null, types.EvalErrorf("fromPairs: element %d must be a [key, value] pair", i)
				}
				k, err := pair[0].AsString()
				if err != nil {
					return types.Null, err
				}
				out[k] = pair[1]
			}
			return types.Object(out), nil
		},
	}
}

// Pick returns the definition for pick(m, keys).
func Pick() functions.Def {
	return functions.Def{
		Name: "pick", Required: 2,
		Doc: "m restricted to keys",
		Fn: func(args []types.Value) (types.Value, error) {
			m, keys, err := mapAndKeys(args)
			if err != nil {
				return types.Null, err
			}
			out := make(map[string]types.Value, len(keys))
			for _, k := range keys {
				if v, ok := m[k]; ok {
					out[k] = v
				}
			}
			return types.Object(out), nil
		},
	}
}

// Omit returns the definition for omit(m, keys).
func Omit() functions.Def {
	return functions.Def{
		Name: "omit", Required: 2,
		Doc: "m without keys",
		Fn: func(args []types.Value) (types.Value, error) {
			m, keys, err := mapAndKeys(args)
			if err != nil {
				return types.Null, err
			}
			out := maps.Clone(m)
			for _, k := range keys {
				delete(out, k)
			}
			return types.Object(out), nil
		},
	}
}

// mapAndKeys reads a map and a vector of strings. A single string is
// accepted as a one-key vector.
func mapAndKeys(args []types.Value) (map[string]types.Value, []string, error) {
	m, err := args[0].AsMap()
	if err != nil {
		return nil, nil, err
	}
	if s, err := args[1].AsString(); err == nil {
		return m, []string{s}, nil
	}
	items, err := args[1].AsVector()
	if err != nil {
		return nil, nil, err
	}
	keys := make([]string, len(items))
	for i, it := range items {
		if keys[i], err = it.AsString(); err != nil {
			return nil, nil, err
		}
	}
	return m, keys, nil
}

// DeepMerge returns the definition for deepMerge(a, b, ...). Nested maps
// are merged recursively; any other value of a later map wins.
func DeepMerge() functions.Def {
	return functions.Def{
		Name: "deepMerge", Required: functions.Variadic,
		Doc: "recursive merge of maps, later wins",
		Fn: func(args []types.Value) (types.Value, error) {
			out := map[string]types.Value{}
			for _, a := range args {
				m, err := a.AsMap()
				if err != nil {
					return types.Null, err
				}
				out = merge(out, m)
			}
			return types.Object(out), nil
		},
	}
}

func merge(dst, src map[string]types.Value) map[string]types.Value {
	out := maps.Clone(dst)
	for k, v := range src {
		if prev, ok := out[k]; ok && prev.IsMap() && v.IsMap() {
			pm, _ := prev.AsMap()
			vm, _ := v.AsMap()
			out[k] = types.Object(merge(pm, vm))
			continue
		}
		out[k] = v
	}
	return out
}

// Invert returns the definition for invert(m). Values are rendered to
// strings; keys are visited in order so the last key wins on collisions.
func Invert() functions.Def {
	return functions.Def{
		Name: "invert", Required: 1, Scalable: true,
		Doc: "map from values to keys",
		Fn: func(args []types.Value) (types.Value, error) {
			m, err := args[0].AsMap()
			if err != nil {
				return types.Null, err
			}
			out := make(map[string]types.Value, len(m))
			for _, k := range types.SortedKeys(m) {
				out[keyOf(m[k])] = types.Str(k)
			}
			return types.Object(out), nil
		},
	}
}

func keyOf(v types.Value) string {
	if s, err := v.AsString(); err == nil {
		return s
	}
	return v.String()
}

// Size returns the definition for size(m).
func Size() functions.Def {
	return functions.Def{
		Name: "size", Required: 1, Scalable: true,
		Doc: "number of keys",
		Fn: func(args []types.Value) (types.Value, error) {
			m, err := args[0].AsMap()
			if err != nil {
				return types.Null, err
			}
			return types.Int(int64(len(m))), nil
		},
	}
}

// Rename returns the definition for rename(m, mapping), where mapping maps
// old key names to new ones.
func Rename() functions.Def {
	return functions.Def{
		Name: "rename", Required: 2,
		Doc: "m with keys renamed through a mapping",
		Fn: func(args []types.Value) (types.Value, error) {
			m, err := args[0].AsMap()
			if err != nil {
				return types.Null, err
			}
			mapping, err := args[1].AsMap()
			if err != nil {
				return types.Null, err
			}
			out := make(map[string]types.Value, len(m))
			for _, k := range types.SortedKeys(m) {
				name := k
				if to, ok := mapping[k]; ok {
					if name, err = to.AsString(); err != nil {
						return types.Null, err
					}
				}
				out[name] = m[k]
			}
			return types.Object(out), nil
		},
	}
}

// MapValues returns the definition for mapValues(m, @{...}). The block
// sees the value as _ and the key as key.
func MapValues() functions.Def {
	return functions.Def{
		Name: "mapValues", Required: 2,
		Doc: "m with every value replaced by the block result",
		CtxFn: func(c functions.Caller, args []types.Value) (types.Value, error) {
			out := map[string]types.Value{}
			err := eachEntry(c, args[0], args[1], func(k string, _, r types.Value) error {
				out[k] = r
				return nil
			})
			if err != nil {
				return types.Null, err
			}
			return types.Object(out), nil
		},
	}
}

// MapKeys returns the definition for mapKeys(m, @{...}). The block sees
// the value as _ and the key as key and must return the new key.
func MapKeys() functions.Def {
	return functions.Def{
		Name: "mapKeys", Required: 2,
		Doc: "m with every key replaced by the block result",
		CtxFn: func(c functions.Caller, args []types.Value) (types.Value, error) {
			out := map[string]types.Value{}
			err := eachEntry(c, args[0], args[1], func(_ string, v, r types.Value) error {
				out[keyOf(r)] = v
				return nil
			})
			if err != nil {
				return types.Null, err
			}
			return types.Object(out), nil
		},
	}
}

func eachEntry(c functions.Caller, v, fn types.Value, visit func(k string, v, r types.Value) error) error {
	m, err := v.AsMap()
	if err != nil {
		return err
	}
	scope := c.Fork()
	for _, k := range types.SortedKeys(m) {
		scope.Set(functions.CurrentName, m[k])
		scope.Set(KeyName, types.Str(k))
		r, err := scope.Invoke(fn)
		if err != nil {
			return err
		}
		if err := visit(k, m[k], r); err != nil {
			return err
		}
	}
	return nil
}
