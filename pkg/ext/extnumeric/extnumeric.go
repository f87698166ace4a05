// Package extnumeric provides numeric helpers and descriptive statistics
// over number vectors.
//
// The statistics functions skip null elements and return null for an empty
// vector, unlike the built-in avg, min and max which reject it.
package extnumeric

import (
	"math"
	"slices"

	"github.com/sandrolain/gojexp/pkg/functions"
	"github.com/sandrolain/gojexp/pkg/types"
)

// All returns all numeric function definitions.
func All() []functions.Def {
	return []functions.Def{
		Trunc(),
		Clamp(),
		Atan2(),
		Hypot(),
		Median(),
		Variance(),
		Stddev(),
		Percentile(),
		Mode(),
	}
}

// Trunc returns the definition for trunc(n), n rounded toward zero.
// Integers are returned unchanged.
func Trunc() functions.Def {
	return functions.Def{
		Name: "trunc", Required: 1, Scalable: true,
		Doc: "round toward zero",
		Fn: func(args []types.Value) (types.Value, error) {
			n, err := args[0].AsNumber()
			if err != nil || n.IsInteger() {
				return n, err
			}
			f, _ := n.AsFloat()
			return types.Float(math.Trunc(f)), nil
		},
	}
}

// Clamp returns the definition for clamp(n, lo, hi). The result keeps the
// integer kind when all three arguments are integers.
func Clamp() functions.Def {
	return functions.Def{
		Name: "clamp", Required: 3, Scalable: true,
		Doc: "n limited to [lo, hi]",
		Fn: func(args []types.Value) (types.Value, error) {
			for _, a := range args {
				if _, err := a.AsNumber(); err != nil {
					return types.Null, err
				}
			}
			lo, _ := args[1].AsFloat()
			hi, _ := args[2].AsFloat()
			if lo > hi {
				return types.Null, types.EvalErrorf("clamp: lower bound %s exceeds upper bound %s",
					args[1], args[2])
			}
			switch n, _ := args[0].AsFloat(); {
			case n < lo:
				return args[1].Unwrap(), nil
			case n > hi:
				return args[2].Unwrap(), nil
			}
			return args[0].Unwrap(), nil
		},
	}
}

// Atan2 returns the definition for atan2(y, x).
func Atan2() functions.Def {
	return float2("atan2", "arc tangent of y/x using the signs of both", math.Atan2)
}

// Hypot returns the definition for hypot(x, y).
func Hypot() functions.Def {
	return float2("hypot", "sqrt(x*x + y*y)", math.Hypot)
}

func float2(name, doc string, fn func(a, b float64) float64) functions.Def {
	return functions.Def{
		Name: name, Required: 2, Scalable: true,
		Doc: doc,
		Fn: func(args []types.Value) (types.Value, error) {
			a, err := args[0].AsFloat()
			if err != nil {
				return types.Null, err
			}
			b, err := args[1].AsFloat()
			if err != nil {
				return types.Null, err
			}
			return types.Float(fn(a, b)), nil
		},
	}
}

// Median returns the definition for median(v).
func Median() functions.Def {
	return stat("median", "middle value of a number vector", func(nums []float64) float64 {
		slices.Sort(nums)
		mid := len(nums) / 2
		if len(nums)%2 == 0 {
			return (nums[mid-1] + nums[mid]) / 2
		}
		return nums[mid]
	})
}

// Variance returns the definition for variance(v), the population
// variance.
func Variance() functions.Def {
	return stat("variance", "population variance of a number vector", variance)
}

// Stddev returns the definition for stddev(v), the population standard
// deviation.
func Stddev() functions.Def {
	return stat("stddev", "population standard deviation of a number vector", func(nums []float64) float64 {
		return math.Sqrt(variance(nums))
	})
}

// Percentile returns the definition for percentile(v, p) with p in
// [0, 100], interpolating linearly between the closest ranks.
func Percentile() functions.Def {
	return functions.Def{
		Name: "percentile", Required: 2,
		Doc: "p-th percentile of a number vector",
		Fn: func(args []types.Value) (types.Value, error) {
			nums, err := floats(args[0])
			if err != nil {
				return types.Null, err
			}
			p, err := args[1].AsFloat()
			if err != nil {
				return types.Null, err
			}
			if p < 0 || p > 100 {
				return types.Null, types.EvalErrorf("percentile: p must be between 0 and 100")
			}
			if len(nums) == 0 {
				return types.Null, nil
			}
			slices.Sort(nums)
			idx := p / 100 * float64(len(nums)-1)
			lo, hi := int(math.Floor(idx)), int(math.Ceil(idx))
			frac := idx - float64(lo)
			return types.Float(nums[lo]*(1-frac) + nums[hi]*frac), nil
		},
	}
}

// Mode returns the definition for mode(v): the most frequent element, or
// a vector of the tied elements in first-seen order.
func Mode() functions.Def {
	return functions.Def{
		Name: "mode", Required: 1,
		Doc: "most frequent element(s) of a vector",
		Fn: func(args []types.Value) (types.Value, error) {
			items, err := args[0].AsVector()
			if err != nil {
				return types.Null, err
			}
			distinct := types.Distinct(items)
			if len(distinct) == 0 {
				return types.Null, nil
			}
			counts := make([]int, len(distinct))
			for _, it := range items {
				counts[types.IndexOf(distinct, it)]++
			}
			best := slices.Max(counts)
			var modes []types.Value
			for i, c := range counts {
				if c == best {
					modes = append(modes, distinct[i])
				}
			}
			if len(modes) == 1 {
				return modes[0], nil
			}
			return types.Vec(modes), nil
		},
	}
}

func stat(name, doc string, fn func([]float64) float64) functions.Def {
	return functions.Def{
		Name: name, Required: 1,
		Doc: doc,
		Fn: func(args []types.Value) (types.Value, error) {
			nums, err := floats(args[0])
			if err != nil || len(nums) == 0 {
				return types.Null, err
			}
			return types.Float(fn(nums)), nil
		},
	}
}

// floats returns the non-null elements of a number vector as a fresh
// slice.
func floats(v types.Value) ([]float64, error) {
	items, err := v.AsVector()
	if err != nil {
		return nil, err
	}
	nums := make([]float64, 0, len(items))
	for _, it := range items {
		if it.IsNull() {
			continue
		}
		f, err := it.AsFloat()
		if err != nil {
			return nil, err
		}
		nums = append(nums, f)
	}
	return nums, nil
}

func variance(nums []float64) float64 {
	var sum float64
	for _, n := range nums {
		sum += n
	}
	mean := sum / float64(len(nums))
	var v float64
	for _, n := range nums {
		d := n - mean
		v += d * d
	}
	return v / float64(len(nums))
}
