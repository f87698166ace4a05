package operators

import (
	"math"
	"regexp"
	"strconv"
	"time"

	"github.com/sandrolain/gojexp/pkg/types"
)

var dateOffsetRe = regexp.MustCompile(`^(\d+)([yMdhms])$`)

func shiftDate(t time.Time, offset types.Value, sign int) (time.Time, error) {
	s, err := offset.AsString()
	if err != nil {
		return t, err
	}
	m := dateOffsetRe.FindStringSubmatch(s)
	if m == nil {
		return t, types.EvalErrorf("'%s' is not valid DateTime offset", s)
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return t, types.EvalErrorf("'%s' is not valid DateTime offset", s)
	}
	return types.ShiftDateTime(t, sign*n, m[2][0])
}

// bothIntegers reports whether both operands are Integer and returns them.
func bothIntegers(lhs, rhs types.Value) (int64, int64, bool) {
	if !lhs.IsInteger() || !rhs.IsInteger() {
		return 0, 0, false
	}
	a, _ := lhs.AsInteger()
	b, _ := rhs.AsInteger()
	return a, b, true
}

func floats(lhs, rhs types.Value) (float64, float64, error) {
	a, err := lhs.AsFloat()
	if err != nil {
		return 0, 0, err
	}
	b, err := rhs.AsFloat()
	if err != nil {
		return 0, 0, err
	}
	return a, b, nil
}

// Add implements '+': integer or decimal sum, string concatenation, or a
// DateTime shifted forward by an offset such as "3d".
func Add(lhs, rhs types.Value) (types.Value, error) {
	switch lhs.Kind() {
	case types.KindInteger, types.KindDecimal:
		if a, b, ok := bothIntegers(lhs, rhs); ok {
			return types.Int(a + b), nil
		}
		a, b, err := floats(lhs, rhs)
		if err != nil {
			return types.Null, err
		}
		return types.Float(a + b), nil
	case types.KindString:
		a, _ := lhs.AsString()
		b, err := rhs.AsString()
		if err != nil {
			return types.Null, err
		}
		return types.Str(a + b), nil
	case types.KindDateTime:
		t, pattern, _ := lhs.AsDateTime()
		shifted, err := shiftDate(t, rhs, 1)
		if err != nil {
			return types.Null, err
		}
		return types.Date(shifted, pattern), nil
	}
	return types.Null, types.EvalErrorf("fail to add two types: %s vs %s", lhs.Kind(), rhs.Kind())
}

// Subtract implements '-'. A DateTime minus a DateTime yields the whole
// number of days from the right operand to the left one.
func Subtract(lhs, rhs types.Value) (types.Value, error) {
	switch lhs.Kind() {
	case types.KindInteger, types.KindDecimal:
		if a, b, ok := bothIntegers(lhs, rhs); ok {
			return types.Int(a - b), nil
		}
		a, b, err := floats(lhs, rhs)
		if err != nil {
			return types.Null, err
		}
		return types.Float(a - b), nil
	case types.KindDateTime:
		t, pattern, _ := lhs.AsDateTime()
		if rhs.IsDateTime() {
			u, _, _ := rhs.AsDateTime()
			return types.Int(int64(t.Sub(u) / (24 * time.Hour))), nil
		}
		shifted, err := shiftDate(t, rhs, -1)
		if err != nil {
			return types.Null, err
		}
		return types.Date(shifted, pattern), nil
	}
	return types.Null, types.EvalErrorf("fail to subtract two types: %s vs %s", lhs.Kind(), rhs.Kind())
}

// Multiply implements '*'. The product stays Integer when both operands are.
func Multiply(lhs, rhs types.Value) (types.Value, error) {
	if a, b, ok := bothIntegers(lhs, rhs); ok {
		return types.Int(a * b), nil
	}
	a, b, err := floats(lhs, rhs)
	if err != nil {
		return types.Null, err
	}
	return types.Float(a * b), nil
}

// Divide implements '/' with floating-point semantics.
func Divide(lhs, rhs types.Value) (types.Value, error) {
	a, b, err := floats(lhs, rhs)
	if err != nil {
		return types.Null, err
	}
	return types.Float(a / b), nil
}

// Modulo implements '%' with floating-point semantics.
func Modulo(lhs, rhs types.Value) (types.Value, error) {
	a, b, err := floats(lhs, rhs)
	if err != nil {
		return types.Null, err
	}
	return types.Float(math.Mod(a, b)), nil
}

// Power implements '^'.
func Power(lhs, rhs types.Value) (types.Value, error) {
	a, b, err := floats(lhs, rhs)
	if err != nil {
		return types.Null, err
	}
	return types.Float(math.Pow(a, b)), nil
}

// Negate implements prefix '-'.
func Negate(v types.Value) (types.Value, error) {
	return Multiply(v, types.Int(-1))
}

// Plus implements prefix '+', which only checks that v is a number.
func Plus(v types.Value) (types.Value, error) {
	return v.AsNumber()
}

// Factorial implements postfix '!'. Decimal operands are truncated.
func Factorial(v types.Value) (types.Value, error) {
	n, err := v.AsInteger()
	if err != nil {
		return types.Null, err
	}
	if n < 0 {
		return types.Null, types.EvalErrorf("negative number for fact")
	}
	r := int64(1)
	for i := int64(2); i <= n; i++ {
		r *= i
	}
	return types.Int(r), nil
}

// Concat implements '++' over two vectors.
func Concat(lhs, rhs types.Value) (types.Value, error) {
	a, err := lhs.AsVector()
	if err != nil {
		return types.Null, err
	}
	b, err := rhs.AsVector()
	if err != nil {
		return types.Null, err
	}
	out := make([]types.Value, 0, len(a)+len(b))
	out = append(out, a...)
	return types.Vec(append(out, b...)), nil
}

// Assign implements '=' once the evaluator has checked the target: the
// result is the assigned value.
func Assign(_, rhs types.Value) (types.Value, error) {
	return rhs, nil
}
