package functions

import (
	"github.com/sandrolain/gojexp/pkg/types"
)

// numberVector returns the elements of a homogeneous vector and their
// promoted kind.
func numberVector(v types.Value) ([]types.Value, types.Kind, error) {
	items, err := v.AsVector()
	if err != nil {
		return nil, types.KindNull, err
	}
	if !v.IsHomogeneous() {
		return nil, types.KindNull, types.EvalErrorf("Homogeneous Vector required")
	}
	k, _ := v.HomogeneousKind()
	return items, k, nil
}

func fnSum(args []types.Value) (types.Value, error) {
	items, err := args[0].AsVector()
	if err != nil {
		return types.Null, err
	}
	if len(items) == 0 {
		return types.Int(0), nil
	}
	items, kind, err := numberVector(args[0])
	if err != nil {
		return types.Null, err
	}
	switch kind {
	case types.KindDecimal:
		var s float64
		for _, it := range items {
			if it.IsNull() {
				continue
			}
			f, _ := it.AsFloat()
			s += f
		}
		return types.Float(s), nil
	case types.KindInteger:
		var s int64
		for _, it := range items {
			if it.IsNull() {
				continue
			}
			i, _ := it.AsInteger()
			s += i
		}
		return types.Int(s), nil
	}
	return types.Null, types.EvalErrorf("number vector required")
}

func fnAvg(args []types.Value) (types.Value, error) {
	items, err := args[0].AsVector()
	if err != nil {
		return types.Null, err
	}
	if len(items) == 0 {
		return types.Null, types.EvalErrorf("non-empty vector required")
	}
	s, err := fnSum(args)
	if err != nil {
		return types.Null, err
	}
	f, _ := s.AsFloat()
	return types.Float(f / float64(len(items))), nil
}

func fnMax(args []types.Value) (types.Value, error) {
	return extremum(args[0], 1)
}

func fnMin(args []types.Value) (types.Value, error) {
	return extremum(args[0], -1)
}

// extremum picks the element e for which e.Compare(best) has the given sign.
func extremum(v types.Value, sign int) (types.Value, error) {
	items, kind, err := numberVector(v)
	if err != nil {
		return types.Null, err
	}
	if _, ok := v.HomogeneousKind(); !ok {
		return types.Null, types.EvalErrorf("non-empty vector required")
	}
	switch kind {
	case types.KindInteger:
		var best int64
		for i, it := range items {
			n, err := it.AsInteger()
			if err != nil {
				return types.Null, err
			}
			if i == 0 || (sign > 0 && n > best) || (sign < 0 && n < best) {
				best = n
			}
		}
		return types.Int(best), nil
	case types.KindDecimal:
		var best float64
		for i, it := range items {
			f, err := it.AsFloat()
			if err != nil {
				return types.Null, err
			}
			if i == 0 || (sign > 0 && f > best) || (sign < 0 && f < best) {
				best = f
			}
		}
		return types.Float(best), nil
	}
	return types.Null, types.EvalErrorf("number vector required")
}
