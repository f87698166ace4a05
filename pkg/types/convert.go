package types

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"
)

// Of converts a raw Go value into a Value. It accepts the shapes produced by
// JSON, YAML and TOML decoders: nil, booleans, every integer and float type,
// strings, json.Number, time.Time, slices and string- or any-keyed maps.
func Of(raw any) (Value, error) {
	switch x := raw.(type) {
	case nil:
		return Null, nil
	case Value:
		return x, nil
	case *Value:
		if x == nil {
			return Null, nil
		}
		return *x, nil
	case bool:
		return Bool(x), nil
	case int:
		return Int(int64(x)), nil
	case int8:
		return Int(int64(x)), nil
	case int16:
		return Int(int64(x)), nil
	case int32:
		return Int(int64(x)), nil
	case int64:
		return Int(x), nil
	case uint:
		return ofUnsigned(uint64(x)), nil
	case uint8:
		return Int(int64(x)), nil
	case uint16:
		return Int(int64(x)), nil
	case uint32:
		return Int(int64(x)), nil
	case uint64:
		return ofUnsigned(x), nil
	case float32:
		return Float(float64(x)), nil
	case float64:
		return Float(x), nil
	case string:
		return Str(x), nil
	case json.Number:
		if i, err := strconv.ParseInt(string(x), 10, 64); err == nil {
			return Int(i), nil
		}
		f, err := strconv.ParseFloat(string(x), 64)
		if err != nil {
			return Null, EvalErrorf("%s is not a valid number", x)
		}
		return Float(f), nil
	case time.Time:
		return Date(x, DefaultDateTimePattern), nil
	case *Block:
		return BlockValue(x), nil
	case []Value:
		return Vec(x), nil
	case []any:
		items := make([]Value, len(x))
		for i, e := range x {
			v, err := Of(e)
			if err != nil {
				return Null, err
			}
			items[i] = v
		}
		return Vec(items), nil
	case []string:
		items := make([]Value, len(x))
		for i, e := range x {
			items[i] = Str(e)
		}
		return Vec(items), nil
	case []map[string]any:
		items := make([]Value, len(x))
		for i, e := range x {
			v, err := Of(e)
			if err != nil {
				return Null, err
			}
			items[i] = v
		}
		return Vec(items), nil
	case map[string]Value:
		return Object(x), nil
	case map[string]any:
		fields := make(map[string]Value, len(x))
		for k, e := range x {
			v, err := Of(e)
			if err != nil {
				return Null, err
			}
			fields[k] = v
		}
		return Object(fields), nil
	case map[any]any:
		fields := make(map[string]Value, len(x))
		for k, e := range x {
			v, err := Of(e)
			if err != nil {
				return Null, err
			}
			fields[fmt.Sprint(k)] = v
		}
		return Object(fields), nil
	}
	return Null, EvalErrorf("%T type not supported as Value", raw)
}

// MustOf is like [Of] but panics on unsupported input.
func MustOf(raw any) Value {
	v, err := Of(raw)
	if err != nil {
		panic(err)
	}
	return v
}

func ofUnsigned(u uint64) Value {
	if u > math.MaxInt64 {
		return Float(float64(u))
	}
	return Int(int64(u))
}

// Raw converts v back into plain Go data: nil, int64, float64, string, bool,
// []any, map[string]any or time.Time. Expression values yield their *Block.
func (v Value) Raw() any {
	u := v.Unwrap()
	switch u.kind {
	case KindInteger:
		return u.i
	case KindDecimal:
		return u.f
	case KindString:
		return u.s
	case KindBoolean:
		return u.b
	case KindVector, KindEnclosed:
		out := make([]any, len(u.seq.items))
		for i, it := range u.seq.items {
			out[i] = it.Raw()
		}
		return out
	case KindMap:
		out := make(map[string]any, len(u.fields))
		for k, it := range u.fields {
			out[k] = it.Raw()
		}
		return out
	case KindExpression:
		return u.block
	case KindDateTime:
		return u.date.t
	}
	return nil
}
