// Package ext provides optional extension functions for gojexp that go
// beyond the built-in library.
//
// The extension functions live in sub-packages grouped by category:
//   - extstring – startsWith, endsWith, indexOf, camelCase, template, …
//   - extarray  – first, last, skip, slice, flatten, chunk, groupBy, sumBy, …
//   - exttypes  – isString, isVector, isEmpty, typeOf, default, …
//   - extnumeric – trunc, clamp, median, stddev, percentile, mode, …
//   - extobject – pairs, fromPairs, pick, omit, deepMerge, mapValues, …
//   - extdatetime – dateAdd, dateStartOf, dateEndOf, dateComponents, epoch
//   - extformat – csv, toCSV, parseDocument, toYAML, toTOML
//   - extfunc   – pipe, iterate, when
//   - extcrypto – uuid, hash, hmac
//   - extwasm   – exports of a WebAssembly module, loaded at run time
//
// # Integration – all static extensions at once
//
//	import "github.com/sandrolain/gojexp/pkg/ext"
//
//	result, err := gojexp.Eval(`"a_b".camelCase()`, nil, ext.WithAll())
//
// # Integration – by category
//
//	result, err := gojexp.Eval(expr, c,
//	    ext.WithString(),
//	    ext.WithArray(),
//	)
//
// # Integration – single function from a sub-package
//
//	result, err := gojexp.Eval(expr, c,
//	    gojexp.WithFunctions(extstring.StartsWith()),
//	)
package ext

import (
	"github.com/sandrolain/gojexp/pkg/evaluator"
	"github.com/sandrolain/gojexp/pkg/ext/extarray"
	"github.com/sandrolain/gojexp/pkg/ext/extcrypto"
	"github.com/sandrolain/gojexp/pkg/ext/extdatetime"
	"github.com/sandrolain/gojexp/pkg/ext/extformat"
	"github.com/sandrolain/gojexp/pkg/ext/extfunc"
	"github.com/sandrolain/gojexp/pkg/ext/extnumeric"
	"github.com/sandrolain/gojexp/pkg/ext/extobject"
	"github.com/sandrolain/gojexp/pkg/ext/extstring"
	"github.com/sandrolain/gojexp/pkg/ext/exttypes"
	"github.com/sandrolain/gojexp/pkg/functions"
)

// All returns every static extension definition.
func All() []functions.Def {
	var all []functions.Def
	all = append(all, extstring.All()...)
	all = append(all, extarray.All()...)
	all = append(all, exttypes.All()...)
	all = append(all, extnumeric.All()...)
	all = append(all, extobject.All()...)
	all = append(all, extdatetime.All()...)
	all = append(all, extformat.All()...)
	all = append(all, extfunc.All()...)
	all = append(all, extcrypto.All()...)
	return all
}

// WithAll returns an EvalOption that registers all static extensions.
func WithAll() evaluator.EvalOption {
	return evaluator.WithDefs(All()...)
}

// WithString returns an EvalOption for the string functions.
func WithString() evaluator.EvalOption {
	return evaluator.WithDefs(extstring.All()...)
}

// WithArray returns an EvalOption for the vector functions.
func WithArray() evaluator.EvalOption {
	return evaluator.WithDefs(extarray.All()...)
}

// WithTypes returns an EvalOption for the type predicates.
func WithTypes() evaluator.EvalOption {
	return evaluator.WithDefs(exttypes.All()...)
}

// WithCrypto returns an EvalOption for the hashing functions.
func WithCrypto() evaluator.EvalOption {
	return evaluator.WithDefs(extcrypto.All()...)
}

// WithNumeric returns an EvalOption for the numeric and statistics
// functions.
func WithNumeric() evaluator.EvalOption {
	return evaluator.WithDefs(extnumeric.All()...)
}

// WithObject returns an EvalOption for the map functions.
func WithObject() evaluator.EvalOption {
	return evaluator.WithDefs(extobject.All()...)
}

// WithDateTime returns an EvalOption for the date-time functions.
func WithDateTime() evaluator.EvalOption {
	return evaluator.WithDefs(extdatetime.All()...)
}

// WithFormat returns an EvalOption for the CSV and document functions.
func WithFormat() evaluator.EvalOption {
	return evaluator.WithDefs(extformat.All()...)
}

// WithFunc returns an EvalOption for the block combinators.
func WithFunc() evaluator.EvalOption {
	return evaluator.WithDefs(extfunc.All()...)
}
