package functions

import (
	"github.com/sandrolain/gojexp/pkg/types"
)

func fnNow([]types.Value) (types.Value, error) {
	return types.Date(types.Now(), types.DefaultDateTimePattern), nil
}

func fnToDate(args []types.Value) (types.Value, error) {
	s, err := args[0].AsString()
	if err != nil {
		return types.Null, err
	}
	t, pattern, err := types.ProbeDateTime(s)
	if err != nil {
		return types.Null, types.EvalErrorf("fail to cast to DateTime: not matched")
	}
	return types.Date(t, pattern), nil
}

func fnToDateFmt(args []types.Value) (types.Value, error) {
	s, err := args[0].AsString()
	if err != nil {
		return types.Null, err
	}
	pattern, err := args[1].AsString()
	if err != nil {
		return types.Null, err
	}
	t, err := types.ParseDateTime(s, pattern)
	if err != nil {
		return types.Null, types.EvalErrorf("fail to cast to DateTime: %s", s).WithCause(err)
	}
	return types.Date(t, pattern), nil
}

func fnFormatDate(args []types.Value) (types.Value, error) {
	t, _, err := args[0].AsDateTime()
	if err != nil {
		return types.Null, err
	}
	pattern, err := args[1].AsString()
	if err != nil {
		return types.Null, err
	}
	s, err := types.FormatDateTime(t, pattern)
	if err != nil {
		return types.Null, types.EvalErrorf("fail to format DateTime to String: %s", err).WithCause(err)
	}
	return types.Str(s), nil
}

func fnBetweenDate(args []types.Value) (types.Value, error) {
	unit := "DAYS"
	if len(args) > 2 {
		u, err := args[2].AsString()
		if err != nil {
			return types.Null, err
		}
		unit = u
	}
	end, _, err := args[0].AsDateTime()
	if err != nil {
		return types.Null, err
	}
	start, _, err := args[1].AsDateTime()
	if err != nil {
		return types.Null, err
	}
	n, err := types.Until(start, end, unit)
	if err != nil {
		return types.Null, types.EvalErrorf("fail to format cal betweenDate: %s", err).WithCause(err)
	}
	return types.Int(n), nil
}
