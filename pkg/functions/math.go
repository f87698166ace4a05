package functions

import (
	"math"
	"math/rand/v2"

	"github.com/sandrolain/gojexp/pkg/types"
)

func floatFn(fn func(float64) float64) Fn {
	return func(args []types.Value) (types.Value, error) {
		x, err := args[0].AsFloat()
		if err != nil {
			return types.Null, err
		}
		return types.Float(fn(x)), nil
	}
}

func signum(x float64) float64 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return x // keeps NaN and signed zero
}

func fnAbs(args []types.Value) (types.Value, error) {
	if args[0].IsInteger() {
		i, _ := args[0].AsInteger()
		if i < 0 {
			i = -i
		}
		return types.Int(i), nil
	}
	x, err := args[0].AsFloat()
	if err != nil {
		return types.Null, err
	}
	return types.Float(math.Abs(x)), nil
}

func fnPow(args []types.Value) (types.Value, error) {
	x, err := args[0].AsFloat()
	if err != nil {
		return types.Null, err
	}
	y, err := args[1].AsFloat()
	if err != nil {
		return types.Null, err
	}
	return types.Float(math.Pow(x, y)), nil
}

func fnLogb(args []types.Value) (types.Value, error) {
	b, err := args[0].AsFloat()
	if err != nil {
		return types.Null, err
	}
	x, err := args[1].AsFloat()
	if err != nil {
		return types.Null, err
	}
	return types.Float(math.Log(x) / math.Log(b)), nil
}

func fnRand([]types.Value) (types.Value, error) {
	return types.Float(rand.Float64()), nil
}

func fnAdd(args []types.Value) (types.Value, error) {
	var n int64
	for _, a := range args {
		i, err := a.AsInteger()
		if err != nil {
			return types.Null, err
		}
		n += i
	}
	return types.Int(n), nil
}
