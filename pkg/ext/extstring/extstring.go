// Package extstring provides string functions beyond the built-in library.
// Register them with gojexp.WithFunctions or the ext.WithString helper.
//
// Every function broadcasts over a vector first argument.
package extstring

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/sandrolain/gojexp/pkg/functions"
	"github.com/sandrolain/gojexp/pkg/types"
)

// All returns all extended string function definitions.
func All() []functions.Def {
	return []functions.Def{
		StartsWith(),
		EndsWith(),
		IndexOf(),
		LastIndexOf(),
		Capitalize(),
		TitleCase(),
		CamelCase(),
		SnakeCase(),
		KebabCase(),
		Repeat(),
		Words(),
		Template(),
	}
}

// stringFn adapts a string transformation to a scalable definition.
func stringFn(name, doc string, fn func(string) string) functions.Def {
	return functions.Def{
		Name:     name,
		Required: 1,
		Scalable: true,
		Doc:      doc,
		Fn: func(args []types.Value) (types.Value, error) {
			s, err := args[0].AsString()
			if err != nil {
				return types.Null, err
			}
			return types.Str(fn(s)), nil
		},
	}
}

// strings2 returns the first two arguments as strings.
func strings2(args []types.Value) (string, string, error) {
	a, err := args[0].AsString()
	if err != nil {
		return "", "", err
	}
	b, err := args[1].AsString()
	if err != nil {
		return "", "", err
	}
	return a, b, nil
}

// StartsWith returns the definition for startsWith(str, prefix).
func StartsWith() functions.Def {
	return functions.Def{
		Name: "startsWith", Required: 2, Scalable: true,
		Doc: "whether str begins with prefix",
		Fn: func(args []types.Value) (types.Value, error) {
			s, prefix, err := strings2(args)
			if err != nil {
				return types.Null, err
			}
			return types.Bool(strings.HasPrefix(s, prefix)), nil
		},
	}
}

// EndsWith returns the definition for endsWith(str, suffix).
func EndsWith() functions.Def {
	return functions.Def{
		Name: "endsWith", Required: 2, Scalable: true,
		Doc: "whether str ends with suffix",
		Fn: func(args []types.Value) (types.Value, error) {
			s, suffix, err := strings2(args)
			if err != nil {
				return types.Null, err
			}
			return types.Bool(strings.HasSuffix(s, suffix)), nil
		},
	}
}

// IndexOf returns the definition for indexOf(str, search [, start]).
// Positions are byte offsets; -1 means not found.
func IndexOf() functions.Def {
	return functions.Def{
		Name: "indexOf", Required: 2, Optional: 1, Scalable: true,
		Doc: "byte offset of the first occurrence of search, or -1",
		Fn: func(args []types.Value) (types.Value, error) {
			s, search, err := strings2(args)
			if err != nil {
				return types.Null, err
			}
			start := int64(0)
			if len(args) > 2 && !args[2].IsNull() {
				if start, err = args[2].AsInteger(); err != nil {
					return types.Null, err
				}
				start = max(start, 0)
			}
			if start >= int64(len(s)) {
				return types.Int(-1), nil
			}
			idx := strings.Index(s[start:], search)
			if idx < 0 {
				return types.Int(-1), nil
			}
			return types.Int(int64(idx) + start), nil
		},
	}
}

// LastIndexOf returns the definition for lastIndexOf(str, search).
func LastIndexOf() functions.Def {
	return functions.Def{
		Name: "lastIndexOf", Required: 2, Scalable: true,
		Doc: "byte offset of the last occurrence of search, or -1",
		Fn: func(args []types.Value) (types.Value, error) {
			s, search, err := strings2(args)
			if err != nil {
				return types.Null, err
			}
			return types.Int(int64(strings.LastIndex(s, search))), nil
		},
	}
}

// Capitalize returns the definition for capitalize(str), which uppercases
// the first character and lowercases the rest.
func Capitalize() functions.Def {
	return stringFn("capitalize", "first letter upper case, the rest lower case", func(s string) string {
		if s == "" {
			return s
		}
		runes := []rune(strings.ToLower(s))
		runes[0] = unicode.ToUpper(runes[0])
		return string(runes)
	})
}

var titleCaser = cases.Title(language.Und)

// TitleCase returns the definition for titleCase(str).
func TitleCase() functions.Def {
	return stringFn("titleCase", "every word capitalized", func(s string) string {
		return titleCaser.String(s)
	})
}

// splitWordsRe matches word separators and lower-to-upper case boundaries.
var splitWordsRe = regexp.MustCompile(`[_\-\s]+|([a-z])([A-Z])`)

func splitIntoWords(s string) []string {
	expanded := splitWordsRe.ReplaceAllStringFunc(s, func(m string) string {
		if len(m) == 2 && m[0] >= 'a' && m[0] <= 'z' {
			return m[:1] + " " + m[1:]
		}
		return " "
	})
	return strings.Fields(expanded)
}

// CamelCase returns the definition for camelCase(str).
func CamelCase() functions.Def {
	return stringFn("camelCase", "words joined in camelCase", func(s string) string {
		words := splitIntoWords(s)
		if len(words) == 0 {
			return ""
		}
		var b strings.Builder
		b.WriteString(strings.ToLower(words[0]))
		for _, w := range words[1:] {
			runes := []rune(strings.ToLower(w))
			runes[0] = unicode.ToUpper(runes[0])
			b.WriteString(string(runes))
		}
		return b.String()
	})
}

func joinLower(s, sep string) string {
	words := splitIntoWords(s)
	for i, w := range words {
		words[i] = strings.ToLower(w)
	}
	return strings.Join(words, sep)
}

// SnakeCase returns the definition for snakeCase(str).
func SnakeCase() functions.Def {
	return stringFn("snakeCase", "words joined in snake_case", func(s string) string {
		return joinLower(s, "_")
	})
}

// KebabCase returns the definition for kebabCase(str).
func KebabCase() functions.Def {
	return stringFn("kebabCase", "words joined in kebab-case", func(s string) string {
		return joinLower(s, "-")
	})
}

// Repeat returns the definition for repeat(str, n).
func Repeat() functions.Def {
	return functions.Def{
		Name: "repeat", Required: 2, Scalable: true,
		Doc: "str repeated n times",
		Fn: func(args []types.Value) (types.Value, error) {
			s, err := args[0].AsString()
			if err != nil {
				return types.Null, err
			}
			n, err := args[1].AsInteger()
			if err != nil {
				return types.Null, err
			}
			if n < 0 {
				return types.Null, fmt.Errorf("count must not be negative, got %d", n)
			}
			return types.Str(strings.Repeat(s, int(n))), nil
		},
	}
}

// Words returns the definition for words(str), splitting on white space.
func Words() functions.Def {
	return functions.Def{
		Name: "words", Required: 1, Scalable: true,
		Doc: "white-space separated words",
		Fn: func(args []types.Value) (types.Value, error) {
			s, err := args[0].AsString()
			if err != nil {
				return types.Null, err
			}
			parts := strings.Fields(s)
			out := make([]types.Value, len(parts))
			for i, p := range parts {
				out[i] = types.Str(p)
			}
			return types.Vec(out), nil
		},
	}
}

var placeholderRe = regexp.MustCompile(`\{\{(\w+)\}\}`)

// Template returns the definition for template(str, bindings), replacing
// {{key}} placeholders with fields of the bindings map. Strings are
// inserted bare, other values in display form. Unknown keys are kept.
func Template() functions.Def {
	return functions.Def{
		Name: "template", Required: 2, Scalable: true,
		Doc: "replace {{key}} placeholders with map fields",
		Fn: func(args []types.Value) (types.Value, error) {
			tmpl, err := args[0].AsString()
			if err != nil {
				return types.Null, err
			}
			bindings, err := args[1].AsMap()
			if err != nil {
				return types.Null, err
			}
			out := placeholderRe.ReplaceAllStringFunc(tmpl, func(m string) string {
				v, ok := bindings[m[2:len(m)-2]]
				if !ok {
					return m
				}
				if s, err := v.AsString(); err == nil {
					return s
				}
				return v.String()
			})
			return types.Str(out), nil
		},
	}
}
