package types

import (
	"cmp"
	"strings"
)

// Equal reports structural equality. Kinds must match exactly, so Integer 12
// and Decimal 12.0 differ. The multiple flag of vectors is ignored.
func (v Value) Equal(o Value) bool {
	a, b := v.Unwrap(), o.Unwrap()
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindNull:
		return true
	case KindInteger:
		return a.i == b.i
	case KindDecimal:
		return a.f == b.f
	case KindString:
		return a.s == b.s
	case KindBoolean:
		return a.b == b.b
	case KindVector, KindEnclosed:
		if len(a.seq.items) != len(b.seq.items) {
			return false
		}
		for i := range a.seq.items {
			if !a.seq.items[i].Equal(b.seq.items[i]) {
				return false
			}
		}
		return true
	case KindMap:
		if len(a.fields) != len(b.fields) {
			return false
		}
		for k, av := range a.fields {
			bv, ok := b.fields[k]
			if !ok || !av.Equal(bv) {
				return false
			}
		}
		return true
	case KindExpression:
		return a.block == b.block
	case KindDateTime:
		return a.date.t.Equal(b.date.t)
	}
	return false
}

// Compare orders v against o and returns -1, 0 or 1. The receiver's kind
// selects the ordering: Null compares equal to everything, numbers compare
// numerically, strings lexicographically, dates chronologically and false
// sorts before true. The other operand is cast to the receiver's kind.
func (v Value) Compare(o Value) (int, error) {
	a := v.Unwrap()
	switch a.kind {
	case KindNull:
		return 0, nil
	case KindBoolean:
		b, err := o.AsBoolean()
		if err != nil {
			return 0, err
		}
		switch {
		case a.b == b:
			return 0, nil
		case a.b:
			return 1, nil
		default:
			return -1, nil
		}
	case KindInteger, KindDecimal:
		b, err := o.AsNumber()
		if err != nil {
			return 0, err
		}
		if a.kind == KindInteger && b.kind == KindInteger {
			return cmp.Compare(a.i, b.i), nil
		}
		af, _ := a.AsFloat()
		bf, _ := b.AsFloat()
		return cmp.Compare(af, bf), nil
	case KindString:
		b, err := o.AsString()
		if err != nil {
			return 0, err
		}
		return strings.Compare(a.s, b), nil
	case KindDateTime:
		b, _, err := o.AsDateTime()
		if err != nil {
			return 0, err
		}
		return a.date.t.Compare(b), nil
	}
	return 0, EvalErrorf("'%s' and '%s' is not comparable", v.String(), o.String())
}

// IndexOf returns the index of the first element of items equal to v, or -1.
func IndexOf(items []Value, v Value) int {
	for i, it := range items {
		if it.Equal(v) {
			return i
		}
	}
	return -1
}

// Distinct returns items with later duplicates removed, keeping first-seen
// order.
func Distinct(items []Value) []Value {
	out := make([]Value, 0, len(items))
	for _, it := range items {
		if IndexOf(out, it) < 0 {
			out = append(out, it)
		}
	}
	return out
}
