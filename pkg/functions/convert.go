package functions

import (
	"strconv"
	"strings"

	"github.com/sandrolain/gojexp/pkg/types"
)

func fnToString(args []types.Value) (types.Value, error) {
	return types.Str(args[0].String()), nil
}

func fnToNumber(args []types.Value) (types.Value, error) {
	v := args[0].Unwrap()
	switch v.Kind() {
	case types.KindInteger, types.KindDecimal:
		return v, nil
	case types.KindBoolean:
		if b, _ := v.AsBoolean(); b {
			return types.Int(1), nil
		}
		return types.Int(0), nil
	case types.KindString:
		s, _ := v.AsString()
		f, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
		if err != nil {
			return types.Null, types.EvalErrorf("fail to cast string to number: %s", numError(err)).WithCause(err)
		}
		return types.Float(f), nil
	}
	return types.Null, types.EvalErrorf("fail to cast to number, source type is %s", v.Kind())
}

func numError(err error) string {
	if ne, ok := err.(*strconv.NumError); ok {
		return ne.Err.Error() + ": " + strconv.Quote(ne.Num)
	}
	return err.Error()
}

func fnToBoolean(args []types.Value) (types.Value, error) {
	v := args[0].Unwrap()
	switch v.Kind() {
	case types.KindInteger, types.KindDecimal:
		f, _ := v.AsFloat()
		return types.Bool(f != 0), nil
	case types.KindBoolean:
		return v, nil
	case types.KindString:
		s, _ := v.AsString()
		switch s {
		case "true":
			return types.True, nil
		case "false":
			return types.False, nil
		}
		return types.Null, types.EvalErrorf("fail to cast string to boolean: %s", s)
	}
	return types.Null, types.EvalErrorf("fail to cast to boolean, source type is %s", v.Kind())
}
