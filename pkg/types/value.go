package types

import (
	"time"
)

// Kind is the type tag of a [Value].
type Kind uint8

const (
	KindNull Kind = iota
	KindInteger
	KindDecimal
	KindString
	KindBoolean
	KindVector
	KindEnclosed
	KindMap
	KindExpression
	KindDateTime
)

// String returns the name of the kind.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "Null"
	case KindInteger:
		return "Integer"
	case KindDecimal:
		return "Decimal"
	case KindString:
		return "String"
	case KindBoolean:
		return "Boolean"
	case KindVector:
		return "Vector"
	case KindEnclosed:
		return "Enclosed"
	case KindMap:
		return "Map"
	case KindExpression:
		return "Expression"
	case KindDateTime:
		return "DateTime"
	default:
		return "Unknown"
	}
}

// IsNumeric reports whether k is Integer or Decimal.
func (k Kind) IsNumeric() bool {
	return k == KindInteger || k == KindDecimal
}

// Value is an immutable tagged value. The zero Value is Null.
//
// Vectors and enclosed groups share their element slice between copies of
// the Value; callers must not mutate slices obtained from [Value.Items].
type Value struct {
	kind   Kind
	b      bool
	i      int64
	f      float64
	s      string
	seq    *sequence
	fields map[string]Value
	block  *Block
	date   *dateTime
}

// sequence backs Vector and Enclosed values.
type sequence struct {
	items    []Value
	multiple bool

	homogeneous bool
	typed       bool // false for an empty vector
	elemKind    Kind
}

type dateTime struct {
	t       time.Time
	pattern string
}

// Null is the null value.
var Null = Value{}

// True and False are the two boolean values.
var (
	True  = Value{kind: KindBoolean, b: true}
	False = Value{kind: KindBoolean}
)

// Int returns an Integer value.
func Int(i int64) Value { return Value{kind: KindInteger, i: i} }

// Float returns a Decimal value.
func Float(f float64) Value { return Value{kind: KindDecimal, f: f} }

// Str returns a String value.
func Str(s string) Value { return Value{kind: KindString, s: s} }

// Bool returns a Boolean value.
func Bool(b bool) Value {
	if b {
		return True
	}
	return False
}

// Vec returns a Vector value over items.
func Vec(items []Value) Value {
	return Value{kind: KindVector, seq: newSequence(items, false)}
}

// MultiVec returns a Vector value flagged as the result of a fan-out path
// step. The flag only changes how the vector renders.
func MultiVec(items []Value) Value {
	return Value{kind: KindVector, seq: newSequence(items, true)}
}

// Group returns an Enclosed value, the result of a parenthesised group.
func Group(items []Value) Value {
	return Value{kind: KindEnclosed, seq: newSequence(items, false)}
}

// Object returns a Map value. The map is owned by the returned Value.
func Object(fields map[string]Value) Value {
	if fields == nil {
		fields = map[string]Value{}
	}
	return Value{kind: KindMap, fields: fields}
}

// BlockValue returns an Expression value wrapping a compiled block.
func BlockValue(b *Block) Value {
	return Value{kind: KindExpression, block: b}
}

// Date returns a DateTime value that renders with pattern.
func Date(t time.Time, pattern string) Value {
	if pattern == "" {
		pattern = DefaultDateTimePattern
	}
	return Value{kind: KindDateTime, date: &dateTime{t: t, pattern: pattern}}
}

func newSequence(items []Value, multiple bool) *sequence {
	if items == nil {
		items = []Value{}
	}
	s := &sequence{items: items, multiple: multiple, homogeneous: true}
	for _, v := range items {
		k := v.Kind()
		if !s.typed {
			s.elemKind = k
			s.typed = true
			continue
		}
		s.homogeneous = s.homogeneous && equivalentKinds(s.elemKind, k)
		s.elemKind = compatibleKind(s.elemKind, k)
	}
	return s
}

func equivalentKinds(a, b Kind) bool {
	return a == KindNull || b == KindNull || a == b || (a.IsNumeric() && b.IsNumeric())
}

func compatibleKind(a, b Kind) Kind {
	switch {
	case a == KindNull:
		return b
	case a != b && a.IsNumeric() && b.IsNumeric():
		return KindDecimal
	default:
		return a
	}
}

// Unwrap returns the single element of a one-element Enclosed value,
// recursively. Any other value is returned unchanged.
func (v Value) Unwrap() Value {
	for v.kind == KindEnclosed && len(v.seq.items) == 1 {
		v = v.seq.items[0]
	}
	return v
}

// Kind returns the kind of the unwrapped value.
func (v Value) Kind() Kind { return v.Unwrap().kind }

// RawKind returns the kind without unwrapping enclosed groups.
func (v Value) RawKind() Kind { return v.kind }

func (v Value) IsNull() bool       { return v.Kind() == KindNull }
func (v Value) IsInteger() bool    { return v.Kind() == KindInteger }
func (v Value) IsDecimal() bool    { return v.Kind() == KindDecimal }
func (v Value) IsNumber() bool     { return v.Kind().IsNumeric() }
func (v Value) IsString() bool     { return v.Kind() == KindString }
func (v Value) IsBoolean() bool    { return v.Kind() == KindBoolean }
func (v Value) IsVector() bool     { return v.Kind() == KindVector }
func (v Value) IsMap() bool        { return v.Kind() == KindMap }
func (v Value) IsExpression() bool { return v.Kind() == KindExpression }
func (v Value) IsDateTime() bool   { return v.Kind() == KindDateTime }

// Multiple reports whether v is a vector produced by a fan-out path step.
func (v Value) Multiple() bool {
	u := v.Unwrap()
	return u.kind == KindVector && u.seq.multiple
}

// Items returns the elements of a Vector or Enclosed value, nil otherwise.
func (v Value) Items() []Value {
	if v.seq == nil {
		return nil
	}
	return v.seq.items
}

// IsHomogeneous reports whether v is a vector whose elements share one type
// under Integer/Decimal promotion, Null being compatible with anything.
func (v Value) IsHomogeneous() bool {
	u := v.Unwrap()
	return u.kind == KindVector && u.seq.homogeneous
}

// HomogeneousKind returns the promoted element kind of a vector. ok is false
// for empty vectors and non-vectors.
func (v Value) HomogeneousKind() (k Kind, ok bool) {
	u := v.Unwrap()
	if u.kind != KindVector || !u.seq.typed {
		return KindNull, false
	}
	return u.seq.elemKind, true
}

func castError(v Value, k Kind) *Error {
	return EvalErrorf("cannot cast '%s' to %s", v.String(), k)
}

// AsInteger returns the integer payload. Decimals are truncated.
func (v Value) AsInteger() (int64, error) {
	u := v.Unwrap()
	switch u.kind {
	case KindInteger:
		return u.i, nil
	case KindDecimal:
		return int64(u.f), nil
	}
	return 0, castError(v, KindInteger)
}

// AsFloat returns the numeric payload as a float64.
func (v Value) AsFloat() (float64, error) {
	u := v.Unwrap()
	switch u.kind {
	case KindInteger:
		return float64(u.i), nil
	case KindDecimal:
		return u.f, nil
	}
	return 0, castError(v, KindDecimal)
}

// AsNumber returns v unwrapped if it is numeric.
func (v Value) AsNumber() (Value, error) {
	u := v.Unwrap()
	if u.kind.IsNumeric() {
		return u, nil
	}
	return Null, castError(v, KindDecimal)
}

// AsString returns the string payload.
func (v Value) AsString() (string, error) {
	u := v.Unwrap()
	if u.kind == KindString {
		return u.s, nil
	}
	return "", castError(v, KindString)
}

// AsBoolean returns the boolean payload. No truthiness is applied.
func (v Value) AsBoolean() (bool, error) {
	u := v.Unwrap()
	if u.kind == KindBoolean {
		return u.b, nil
	}
	return false, castError(v, KindBoolean)
}

// AsVector returns the elements of a vector.
func (v Value) AsVector() ([]Value, error) {
	u := v.Unwrap()
	if u.kind == KindVector {
		return u.seq.items, nil
	}
	return nil, castError(v, KindVector)
}

// AsMap returns the fields of a map. The returned map must not be mutated.
func (v Value) AsMap() (map[string]Value, error) {
	u := v.Unwrap()
	if u.kind == KindMap {
		return u.fields, nil
	}
	return nil, castError(v, KindMap)
}

// AsBlock returns the compiled block of an Expression value.
func (v Value) AsBlock() (*Block, error) {
	u := v.Unwrap()
	if u.kind == KindExpression {
		return u.block, nil
	}
	return nil, castError(v, KindExpression)
}

// AsDateTime returns the instant and the rendering pattern of a DateTime.
func (v Value) AsDateTime() (time.Time, string, error) {
	u := v.Unwrap()
	if u.kind == KindDateTime {
		return u.date.t, u.date.pattern, nil
	}
	return time.Time{}, "", castError(v, KindDateTime)
}
