// Package extdatetime provides date-time functions beyond toDate,
// formatDate and betweenDate.
//
// Every function takes and returns DateTime values; a result keeps the
// pattern of its input so it renders the same way.
package extdatetime

import (
	"strings"
	"time"

	"github.com/sandrolain/gojexp/pkg/functions"
	"github.com/sandrolain/gojexp/pkg/types"
)

// All returns all date-time function definitions.
func All() []functions.Def {
	return []functions.Def{
		DateAdd(),
		DateComponents(),
		DateStartOf(),
		DateEndOf(),
		Epoch(),
	}
}

var unitLetters = map[string]byte{
	"year":   'y',
	"month":  'M',
	"day":    'd',
	"hour":   'h',
	"minute": 'm',
	"second": 's',
}

func unitOf(v types.Value) (string, error) {
	s, err := v.AsString()
	if err != nil {
		return "", err
	}
	unit := strings.TrimSuffix(strings.ToLower(s), "s")
	if _, ok := unitLetters[unit]; !ok {
		return "", types.EvalErrorf("unsupported unit '%s'", s)
	}
	return unit, nil
}

// DateAdd returns the definition for dateAdd(date, amount, unit). Unlike
// the + operator the amount may be negative. Units: year, month, day,
// hour, minute, second (a trailing s is accepted).
func DateAdd() functions.Def {
	return functions.Def{
		Name: "dateAdd", Required: 3, Scalable: true,
		Doc: "date shifted by a signed amount of a unit",
		Fn: func(args []types.Value) (types.Value, error) {
			t, pattern, err := args[0].AsDateTime()
			if err != nil {
				return types.Null, err
			}
			n, err := args[1].AsInteger()
			if err != nil {
				return types.Null, err
			}
			unit, err := unitOf(args[2])
			if err != nil {
				return types.Null, err
			}
			shifted, err := types.ShiftDateTime(t, int(n), unitLetters[unit])
			if err != nil {
				return types.Null, types.EvalErrorf("dateAdd: %v", err)
			}
			return types.Date(shifted, pattern), nil
		},
	}
}

// DateComponents returns the definition for dateComponents(date), a map
// of the calendar fields. weekday counts from 0 for Sunday.
func DateComponents() functions.Def {
	return functions.Def{
		Name: "dateComponents", Required: 1, Scalable: true,
		Doc: "map of the calendar fields of a date",
		Fn: func(args []types.Value) (types.Value, error) {
			t, _, err := args[0].AsDateTime()
			if err != nil {
				return types.Null, err
			}
			return types.Object(map[string]types.Value{
				"year":        types.Int(int64(t.Year())),
				"month":       types.Int(int64(t.Month())),
				"day":         types.Int(int64(t.Day())),
				"hour":        types.Int(int64(t.Hour())),
				"minute":      types.Int(int64(t.Minute())),
				"second":      types.Int(int64(t.Second())),
				"millisecond": types.Int(int64(t.Nanosecond() / 1e6)),
				"weekday":     types.Int(int64(t.Weekday())),
				"yearDay":     types.Int(int64(t.YearDay())),
			}), nil
		},
	}
}

// DateStartOf returns the definition for dateStartOf(date, unit), the
// first instant of the unit containing date.
func DateStartOf() functions.Def {
	return truncation("dateStartOf", "first instant of the unit containing a date", startOf)
}

// DateEndOf returns the definition for dateEndOf(date, unit), the last
// millisecond of the unit containing date.
func DateEndOf() functions.Def {
	return truncation("dateEndOf", "last millisecond of the unit containing a date",
		func(t time.Time, unit string) time.Time {
			next, _ := types.ShiftDateTime(startOf(t, unit), 1, unitLetters[unit])
			return next.Add(-time.Millisecond)
		})
}

func truncation(name, doc string, fn func(time.Time, string) time.Time) functions.Def {
	return functions.Def{
		Name: name, Required: 2, Scalable: true,
		Doc: doc,
		Fn: func(args []types.Value) (types.Value, error) {
			t, pattern, err := args[0].AsDateTime()
			if err != nil {
				return types.Null, err
			}
			unit, err := unitOf(args[1])
			if err != nil {
				return types.Null, err
			}
			return types.Date(fn(t, unit), pattern), nil
		},
	}
}

func startOf(t time.Time, unit string) time.Time {
	y, mo, d := t.Date()
	switch unit {
	case "year":
		return time.Date(y, 1, 1, 0, 0, 0, 0, time.UTC)
	case "month":
		return time.Date(y, mo, 1, 0, 0, 0, 0, time.UTC)
	case "day":
		return time.Date(y, mo, d, 0, 0, 0, 0, time.UTC)
	case "hour":
		return t.Truncate(time.Hour)
	case "minute":
		return t.Truncate(time.Minute)
	default:
		return t.Truncate(time.Second)
	}
}

// Epoch returns the definition for epoch(date), milliseconds since the
// Unix epoch, or epoch(ms) building a date from them.
func Epoch() functions.Def {
	return functions.Def{
		Name: "epoch", Required: 1, Scalable: true,
		Doc: "milliseconds since 1970 for a date, or the date for a number",
		Fn: func(args []types.Value) (types.Value, error) {
			if t, _, err := args[0].AsDateTime(); err == nil {
				return types.Int(t.UnixMilli()), nil
			}
			ms, err := args[0].AsInteger()
			if err != nil {
				return types.Null, types.EvalErrorf("epoch: DateTime or number required, got %s", args[0].Kind())
			}
			return types.Date(time.UnixMilli(ms).UTC(), ""), nil
		},
	}
}
