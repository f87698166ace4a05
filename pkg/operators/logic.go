package operators

import "github.com/sandrolain/gojexp/pkg/types"

// And implements '&&'. Both operands must be Boolean.
func And(lhs, rhs types.Value) (types.Value, error) {
	a, err := lhs.AsBoolean()
	if err != nil {
		return types.Null, err
	}
	b, err := rhs.AsBoolean()
	if err != nil {
		return types.Null, err
	}
	return types.Bool(a && b), nil
}

// Or implements '||'. Both operands must be Boolean.
func Or(lhs, rhs types.Value) (types.Value, error) {
	a, err := lhs.AsBoolean()
	if err != nil {
		return types.Null, err
	}
	b, err := rhs.AsBoolean()
	if err != nil {
		return types.Null, err
	}
	return types.Bool(a || b), nil
}

// Not implements prefix '!'.
func Not(v types.Value) (types.Value, error) {
	b, err := v.AsBoolean()
	if err != nil {
		return types.Null, err
	}
	return types.Bool(!b), nil
}

func compareWith(pred func(int) bool) func(lhs, rhs types.Value) (types.Value, error) {
	return func(lhs, rhs types.Value) (types.Value, error) {
		c, err := lhs.Compare(rhs)
		if err != nil {
			return types.Null, err
		}
		return types.Bool(pred(c)), nil
	}
}

var (
	Greater      = compareWith(func(c int) bool { return c > 0 })
	GreaterEqual = compareWith(func(c int) bool { return c >= 0 })
	Less         = compareWith(func(c int) bool { return c < 0 })
	LessEqual    = compareWith(func(c int) bool { return c <= 0 })
)

// Equal implements '==' with structural equality.
func Equal(lhs, rhs types.Value) (types.Value, error) {
	return types.Bool(lhs.Equal(rhs)), nil
}

// NotEqual implements '!='.
func NotEqual(lhs, rhs types.Value) (types.Value, error) {
	return types.Bool(!lhs.Equal(rhs)), nil
}

// ThreeWay implements '<=>', returning -1, 0 or 1.
func ThreeWay(lhs, rhs types.Value) (types.Value, error) {
	c, err := lhs.Compare(rhs)
	if err != nil {
		return types.Null, err
	}
	return types.Int(int64(c)), nil
}
