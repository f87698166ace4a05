// Package extarray provides vector functions beyond the built-in library,
// including block-driven aggregations such as groupBy and sumBy.
package extarray

import (
	"fmt"
	"math"

	"github.com/sandrolain/gojexp/pkg/functions"
	"github.com/sandrolain/gojexp/pkg/types"
)

// All returns all vector function definitions.
func All() []functions.Def {
	return []functions.Def{
		First(),
		Last(),
		Skip(),
		Slice(),
		Flatten(),
		Chunk(),
		Range(),
		ZipLongest(),
		Window(),
		GroupBy(),
		CountBy(),
		SumBy(),
		MinBy(),
		MaxBy(),
		Accumulate(),
	}
}

// First returns the definition for first(v), null when v is empty.
func First() functions.Def {
	return functions.Def{
		Name: "first", Required: 1,
		Doc: "first element or null",
		Fn: func(args []types.Value) (types.Value, error) {
			items, err := args[0].AsVector()
			if err != nil || len(items) == 0 {
				return types.Null, err
			}
			return items[0], nil
		},
	}
}

// Last returns the definition for last(v), null when v is empty.
func Last() functions.Def {
	return functions.Def{
		Name: "last", Required: 1,
		Doc: "last element or null",
		Fn: func(args []types.Value) (types.Value, error) {
			items, err := args[0].AsVector()
			if err != nil || len(items) == 0 {
				return types.Null, err
			}
			return items[len(items)-1], nil
		},
	}
}

// Skip returns the definition for skip(v, n).
func Skip() functions.Def {
	return functions.Def{
		Name: "skip", Required: 2,
		Doc: "all but the first n elements",
		Fn: func(args []types.Value) (types.Value, error) {
			items, err := args[0].AsVector()
			if err != nil {
				return types.Null, err
			}
			n, err := args[1].AsInteger()
			if err != nil {
				return types.Null, err
			}
			n = max(0, min(n, int64(len(items))))
			return types.Vec(append([]types.Value(nil), items[n:]...)), nil
		},
	}
}

// Slice returns the definition for slice(v, start [, end]). Negative
// indices count from the end; end is exclusive.
func Slice() functions.Def {
	return functions.Def{
		Name: "slice", Required: 2, Optional: 1,
		Doc: "elements from start up to end, negative indices from the back",
		Fn: func(args []types.Value) (types.Value, error) {
			items, err := args[0].AsVector()
			if err != nil {
				return types.Null, err
			}
			n := len(items)
			start, err := args[1].AsInteger()
			if err != nil {
				return types.Null, err
			}
			end := int64(n)
			if len(args) > 2 && !args[2].IsNull() {
				if end, err = args[2].AsInteger(); err != nil {
					return types.Null, err
				}
			}
			s, e := normaliseIndex(start, n), normaliseIndex(end, n)
			if s >= e {
				return types.Vec(nil), nil
			}
			return types.Vec(append([]types.Value(nil), items[s:e]...)), nil
		},
	}
}

// Flatten returns the definition for flatten(v [, depth]). A missing or
// negative depth flattens completely.
func Flatten() functions.Def {
	return functions.Def{
		Name: "flatten", Required: 1, Optional: 1,
		Doc: "nested vectors spliced into one",
		Fn: func(args []types.Value) (types.Value, error) {
			items, err := args[0].AsVector()
			if err != nil {
				return types.Null, err
			}
			depth := int64(-1)
			if len(args) > 1 && !args[1].IsNull() {
				if depth, err = args[1].AsInteger(); err != nil {
					return types.Null, err
				}
			}
			return types.Vec(flatten(nil, items, depth)), nil
		},
	}
}

func flatten(out, items []types.Value, depth int64) []types.Value {
	for _, it := range items {
		if it.IsVector() && depth != 0 {
			next := depth - 1
			if depth < 0 {
				next = depth
			}
			out = flatten(out, it.Items(), next)
			continue
		}
		out = append(out, it)
	}
	return out
}

// Chunk returns the definition for chunk(v, size).
func Chunk() functions.Def {
	return functions.Def{
		Name: "chunk", Required: 2,
		Doc: "consecutive groups of size elements",
		Fn: func(args []types.Value) (types.Value, error) {
			items, err := args[0].AsVector()
			if err != nil {
				return types.Null, err
			}
			size, err := args[1].AsInteger()
			if err != nil {
				return types.Null, err
			}
			if size <= 0 {
				return types.Null, fmt.Errorf("size must be a positive integer")
			}
			var chunks []types.Value
			for i := 0; i < len(items); i += int(size) {
				end := min(i+int(size), len(items))
				chunks = append(chunks, types.Vec(append([]types.Value(nil), items[i:end]...)))
			}
			return types.Vec(chunks), nil
		},
	}
}

// maxRangeItems bounds the output of range().
const maxRangeItems = 100000

// Range returns the definition for range(start, end [, step]). end is
// inclusive. Integer bounds and step give Integers.
func Range() functions.Def {
	return functions.Def{
		Name: "range", Required: 2, Optional: 1,
		Doc: "numbers from start to end inclusive by step",
		Fn: func(args []types.Value) (types.Value, error) {
			step := types.Int(1)
			if len(args) > 2 && !args[2].IsNull() {
				step = args[2]
			}
			ints := args[0].IsInteger() && args[1].IsInteger() && step.IsInteger()

			start, err := args[0].AsFloat()
			if err != nil {
				return types.Null, err
			}
			end, err := args[1].AsFloat()
			if err != nil {
				return types.Null, err
			}
			s, err := step.AsFloat()
			if err != nil {
				return types.Null, err
			}
			if s == 0 {
				return types.Null, fmt.Errorf("step must not be zero")
			}

			var out []types.Value
			for i := 0; ; i++ {
				v := start + float64(i)*s
				if (s > 0 && v > end) || (s < 0 && v < end) {
					break
				}
				if i >= maxRangeItems {
					return types.Null, fmt.Errorf("range would produce more than %d items", maxRangeItems)
				}
				if ints {
					out = append(out, types.Int(int64(v)))
				} else {
					out = append(out, types.Float(math.Round(v*1e10)/1e10))
				}
			}
			return types.Vec(out), nil
		},
	}
}

// ZipLongest returns the definition for zipLongest(a, b [, fill]).
func ZipLongest() functions.Def {
	return functions.Def{
		Name: "zipLongest", Required: 2, Optional: 1,
		Doc: "pairs of elements, the shorter vector padded with fill",
		Fn: func(args []types.Value) (types.Value, error) {
			a, err := args[0].AsVector()
			if err != nil {
				return types.Null, err
			}
			b, err := args[1].AsVector()
			if err != nil {
				return types.Null, err
			}
			fill := types.Null
			if len(args) > 2 {
				fill = args[2]
			}
			out := make([]types.Value, max(len(a), len(b)))
			for i := range out {
				x, y := fill, fill
				if i < len(a) {
					x = a[i]
				}
				if i < len(b) {
					y = b[i]
				}
				out[i] = types.Vec([]types.Value{x, y})
			}
			return types.Vec(out), nil
		},
	}
}

// Window returns the definition for window(v, size, step).
func Window() functions.Def {
	return functions.Def{
		Name: "window", Required: 3,
		Doc: "sliding windows of size elements, step apart",
		Fn: func(args []types.Value) (types.Value, error) {
			items, err := args[0].AsVector()
			if err != nil {
				return types.Null, err
			}
			size, err := args[1].AsInteger()
			if err != nil {
				return types.Null, err
			}
			step, err := args[2].AsInteger()
			if err != nil {
				return types.Null, err
			}
			if size <= 0 || step <= 0 {
				return types.Null, fmt.Errorf("size and step must be positive")
			}
			var out []types.Value
			for i := 0; i+int(size) <= len(items); i += int(step) {
				out = append(out, types.Vec(append([]types.Value(nil), items[i:i+int(size)]...)))
			}
			return types.Vec(out), nil
		},
	}
}

// each evaluates fn with _ bound to every element of v in a forked scope.
func each(c functions.Caller, v, fn types.Value, visit func(item, r types.Value) error) error {
	items, err := v.AsVector()
	if err != nil {
		return err
	}
	scope := c.Fork()
	for _, it := range items {
		scope.Set(functions.CurrentName, it)
		r, err := scope.Invoke(fn)
		if err != nil {
			return err
		}
		if err := visit(it, r); err != nil {
			return err
		}
	}
	return nil
}

func groupKey(v types.Value) string {
	if s, err := v.AsString(); err == nil {
		return s
	}
	return v.String()
}

// GroupBy returns the definition for groupBy(v, @{key}).
func GroupBy() functions.Def {
	return functions.Def{
		Name: "groupBy", Required: 2,
		Doc: "map from block result to the elements producing it",
		CtxFn: func(c functions.Caller, args []types.Value) (types.Value, error) {
			groups := map[string][]types.Value{}
			err := each(c, args[0], args[1], func(it, r types.Value) error {
				k := groupKey(r)
				groups[k] = append(groups[k], it)
				return nil
			})
			if err != nil {
				return types.Null, err
			}
			out := make(map[string]types.Value, len(groups))
			for k, v := range groups {
				out[k] = types.Vec(v)
			}
			return types.Object(out), nil
		},
	}
}

// CountBy returns the definition for countBy(v, @{key}).
func CountBy() functions.Def {
	return functions.Def{
		Name: "countBy", Required: 2,
		Doc: "map from block result to the number of elements producing it",
		CtxFn: func(c functions.Caller, args []types.Value) (types.Value, error) {
			counts := map[string]int64{}
			err := each(c, args[0], args[1], func(_, r types.Value) error {
				counts[groupKey(r)]++
				return nil
			})
			if err != nil {
				return types.Null, err
			}
			out := make(map[string]types.Value, len(counts))
			for k, n := range counts {
				out[k] = types.Int(n)
			}
			return types.Object(out), nil
		},
	}
}

// SumBy returns the definition for sumBy(v, @{number}). The sum stays an
// Integer while every block result is one.
func SumBy() functions.Def {
	return functions.Def{
		Name: "sumBy", Required: 2,
		Doc: "sum of the block results",
		CtxFn: func(c functions.Caller, args []types.Value) (types.Value, error) {
			var (
				isum int64
				fsum float64
				ints = true
			)
			err := each(c, args[0], args[1], func(_, r types.Value) error {
				if r.IsInteger() && ints {
					i, _ := r.AsInteger()
					isum += i
					return nil
				}
				f, err := r.AsFloat()
				if err != nil {
					return err
				}
				if ints {
					fsum, ints = float64(isum), false
				}
				fsum += f
				return nil
			})
			if err != nil {
				return types.Null, err
			}
			if ints {
				return types.Int(isum), nil
			}
			return types.Float(fsum), nil
		},
	}
}

func extremeBy(name, doc string, better func(a, b float64) bool) functions.Def {
	return functions.Def{
		Name: name, Required: 2, Doc: doc,
		CtxFn: func(c functions.Caller, args []types.Value) (types.Value, error) {
			best, found := types.Null, false
			var bestKey float64
			err := each(c, args[0], args[1], func(it, r types.Value) error {
				f, err := r.AsFloat()
				if err != nil {
					return err
				}
				if !found || better(f, bestKey) {
					best, bestKey, found = it, f, true
				}
				return nil
			})
			if err != nil {
				return types.Null, err
			}
			return best, nil
		},
	}
}

// MinBy returns the definition for minBy(v, @{number}).
func MinBy() functions.Def {
	return extremeBy("minBy", "element with the smallest block result",
		func(a, b float64) bool { return a < b })
}

// MaxBy returns the definition for maxBy(v, @{number}).
func MaxBy() functions.Def {
	return extremeBy("maxBy", "element with the largest block result",
		func(a, b float64) bool { return a > b })
}

// Accumulate returns the definition for accumulate(v, @{...}, init). The
// block sees the running value as a and the element as b; the result holds
// init followed by every intermediate value.
func Accumulate() functions.Def {
	return functions.Def{
		Name: "accumulate", Required: 3,
		Doc: "running fold over a and b, with every intermediate value",
		CtxFn: func(c functions.Caller, args []types.Value) (types.Value, error) {
			items, err := args[0].AsVector()
			if err != nil {
				return types.Null, err
			}
			scope := c.Fork()
			acc := args[2]
			out := make([]types.Value, 0, len(items)+1)
			out = append(out, acc)
			for _, it := range items {
				scope.Set("a", acc)
				scope.Set("b", it)
				if acc, err = scope.Invoke(args[1]); err != nil {
					return types.Null, err
				}
				out = append(out, acc)
			}
			return types.Vec(out), nil
		},
	}
}

func normaliseIndex(idx int64, length int) int {
	if idx < 0 {
		idx += int64(length)
	}
	return int(max(0, min(idx, int64(length))))
}
