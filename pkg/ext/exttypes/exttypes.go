// Package exttypes provides type predicates and null handling helpers.
// None of them broadcast: a vector argument is inspected as a whole.
package exttypes

import (
	"github.com/sandrolain/gojexp/pkg/functions"
	"github.com/sandrolain/gojexp/pkg/types"
)

// All returns all type function definitions.
func All() []functions.Def {
	return []functions.Def{
		is("isString", "whether v is a String", types.Value.IsString),
		is("isNumber", "whether v is an Integer or a Decimal", types.Value.IsNumber),
		is("isInteger", "whether v is an Integer", types.Value.IsInteger),
		is("isBoolean", "whether v is a Boolean", types.Value.IsBoolean),
		is("isVector", "whether v is a Vector", types.Value.IsVector),
		is("isMap", "whether v is a Map", types.Value.IsMap),
		is("isNull", "whether v is null", types.Value.IsNull),
		is("isBlock", "whether v is an @{} block", types.Value.IsExpression),
		is("isDate", "whether v is a DateTime", types.Value.IsDateTime),
		IsEmpty(),
		TypeOf(),
		Default(),
		Identity(),
	}
}

func is(name, doc string, pred func(types.Value) bool) functions.Def {
	return functions.Def{
		Name: name, Required: 1, Doc: doc,
		Fn: func(args []types.Value) (types.Value, error) {
			return types.Bool(pred(args[0])), nil
		},
	}
}

// IsEmpty returns the definition for isEmpty(v), true for null, "", []
// and {}.
func IsEmpty() functions.Def {
	return functions.Def{
		Name: "isEmpty", Required: 1,
		Doc: `whether v is null, "", [] or {}`,
		Fn: func(args []types.Value) (types.Value, error) {
			v := args[0]
			switch v.Kind() {
			case types.KindNull:
				return types.True, nil
			case types.KindString:
				s, _ := v.AsString()
				return types.Bool(s == ""), nil
			case types.KindVector:
				items, _ := v.AsVector()
				return types.Bool(len(items) == 0), nil
			case types.KindMap:
				m, _ := v.AsMap()
				return types.Bool(len(m) == 0), nil
			}
			return types.False, nil
		},
	}
}

// TypeOf returns the definition for typeOf(v), the kind name of v.
func TypeOf() functions.Def {
	return functions.Def{
		Name: "typeOf", Required: 1,
		Doc: "kind name of v",
		Fn: func(args []types.Value) (types.Value, error) {
			return types.Str(args[0].Kind().String()), nil
		},
	}
}

// Default returns the definition for default(v, fallback).
func Default() functions.Def {
	return functions.Def{
		Name: "default", Required: 2,
		Doc: "v unless it is null, else fallback",
		Fn: func(args []types.Value) (types.Value, error) {
			if args[0].IsNull() {
				return args[1], nil
			}
			return args[0], nil
		},
	}
}

// Identity returns the definition for identity(v).
func Identity() functions.Def {
	return functions.Def{
		Name: "identity", Required: 1,
		Doc: "v unchanged",
		Fn: func(args []types.Value) (types.Value, error) {
			return args[0], nil
		},
	}
}
