package functions

import "math"

func builtins() []Def {
	defs := []Def{
		{Name: "abs", Required: 1, Scalable: true, Fn: fnAbs, Doc: "absolute value, keeps integers"},
		{Name: "pow", Required: 2, Scalable: true, Fn: fnPow, Doc: "x raised to y"},
		{Name: "logb", Required: 2, Scalable: true, Fn: fnLogb, Doc: "logarithm of x in base b"},

		{Name: "max", Required: 1, Fn: fnMax, Doc: "largest element of a number vector"},
		{Name: "min", Required: 1, Fn: fnMin, Doc: "smallest element of a number vector"},
		{Name: "avg", Required: 1, Fn: fnAvg, Doc: "mean of a number vector"},
		{Name: "sum", Required: 1, Fn: fnSum, Doc: "sum of a number vector"},

		{Name: "toString", Required: 1, Scalable: true, Fn: fnToString, Doc: "display form of a value"},
		{Name: "toNumber", Required: 1, Scalable: true, Fn: fnToNumber, Doc: "cast to number"},
		{Name: "toBoolean", Required: 1, Scalable: true, Fn: fnToBoolean, Doc: "cast to boolean"},

		{Name: "now", Fn: fnNow, Doc: "current local date-time"},
		{Name: "rand", Fn: fnRand, Doc: "random number in [0, 1)"},
		{Name: "toDate", Required: 1, Scalable: true, Fn: fnToDate, Doc: "parse a date-time with the known patterns"},
		{Name: "toDateFmt", Required: 2, Scalable: true, Fn: fnToDateFmt, Doc: "parse a date-time with a pattern"},
		{Name: "formatDate", Required: 2, Scalable: true, Fn: fnFormatDate, Doc: "format a date-time with a pattern"},
		{Name: "betweenDate", Required: 2, Optional: 1, Scalable: true, Fn: fnBetweenDate, Doc: "whole units from the second date to the first"},

		{Name: "length", Required: 1, Fn: fnLength, Doc: "number of elements"},
		{Name: "count", Required: 1, Fn: fnLength, Doc: "number of elements"},
		{Name: "choice", Required: 3, Fn: fnChoice, Doc: "second argument if the first is true, else the third"},
		{Name: "contains", Required: 2, Fn: fnContains, Doc: "whether a vector holds a value or every value of a vector"},
		{Name: "union", Required: 2, Fn: fnUnion, Doc: "distinct elements of both vectors"},
		{Name: "intersect", Required: 2, Fn: fnIntersect, Doc: "elements of the first vector present in the second"},
		{Name: "diff", Required: 2, Fn: fnDiff, Doc: "elements of the first vector missing from the second"},
		{Name: "symDiff", Required: 2, Fn: fnSymDiff, Doc: "elements present in exactly one vector"},
		{Name: "concat", Required: Variadic, Fn: fnConcat, Doc: "vector of the arguments"},
		{Name: "take", Required: 2, Fn: fnTake, Doc: "first n elements"},
		{Name: "keys", Required: 1, Scalable: true, Fn: fnKeys, Doc: "sorted keys of a map"},
		{Name: "values", Required: 1, Scalable: true, Fn: fnValues, Doc: "values of a map in key order"},
		{Name: "join", Required: 4, Fn: fnJoin, Doc: "inner join of two map vectors on a key of each"},
		{Name: "add", Required: 5, Fn: fnAdd, Doc: "sum of five integers"},

		{Name: "filter", Required: 2, CtxFn: fnFilter, Doc: "elements for which the block returns true"},
		{Name: "map", Required: 2, CtxFn: fnMap, Doc: "block applied to every element"},
		{Name: "reduce", Required: 3, CtxFn: fnReduce, Doc: "fold a vector through a block"},
		{Name: "jsonGet", Required: 2, CtxFn: fnJSONGet, Doc: "evaluate a path string against a value"},
		{Name: "sort", Required: 1, Optional: 1, CtxFn: fnSort, Doc: "sort a vector, optionally with a comparator over a and b"},
		{Name: "uniq", Required: 1, Optional: 1, CtxFn: fnUniq, Doc: "collapse duplicates, optionally with a comparator over a and b"},

		{Name: "regMatch", Required: 2, Scalable: true, Fn: fnRegMatch, Doc: "whether a string fully matches a regexp"},
		{Name: "replaceAll", Required: 3, Scalable: true, Fn: fnReplaceAll, Doc: "replace every regexp match"},

		{Name: "round", Required: 1, Optional: 2, Scalable: true, Fn: fnRound, Doc: "round to a scale with a rounding mode"},
	}
	for _, m := range unaryMath {
		defs = append(defs, Def{Name: m.name, Required: 1, Scalable: true, Fn: floatFn(m.fn), Doc: m.doc})
	}
	return defs
}

var unaryMath = []struct {
	name string
	fn   func(float64) float64
	doc  string
}{
	{"sin", math.Sin, "sine"},
	{"cos", math.Cos, "cosine"},
	{"tan", math.Tan, "tangent"},
	{"cot", func(x float64) float64 { return 1 / math.Tan(x) }, "cotangent"},
	{"log", math.Log, "natural logarithm"},
	{"log2", func(x float64) float64 { return math.Log(x) / math.Log(2) }, "base-2 logarithm"},
	{"log10", math.Log10, "base-10 logarithm"},
	{"log1p", math.Log1p, "log(1 + x)"},
	{"acos", math.Acos, "arc cosine"},
	{"asin", math.Asin, "arc sine"},
	{"atan", math.Atan, "arc tangent"},
	{"cbrt", math.Cbrt, "cube root"},
	{"floor", math.Floor, "round toward negative infinity"},
	{"ceil", math.Ceil, "round toward positive infinity"},
	{"sinh", math.Sinh, "hyperbolic sine"},
	{"cosh", math.Cosh, "hyperbolic cosine"},
	{"tanh", math.Tanh, "hyperbolic tangent"},
	{"sqrt", math.Sqrt, "square root"},
	{"exp", math.Exp, "e raised to x"},
	{"expm1", math.Expm1, "exp(x) - 1"},
	{"signum", signum, "sign of x"},
	{"csc", func(x float64) float64 { return 1 / math.Sin(x) }, "cosecant"},
	{"sec", func(x float64) float64 { return 1 / math.Cos(x) }, "secant"},
	{"csch", func(x float64) float64 { return 1 / math.Sinh(x) }, "hyperbolic cosecant"},
	{"sech", func(x float64) float64 { return 1 / math.Cosh(x) }, "hyperbolic secant"},
	{"coth", func(x float64) float64 { return math.Cosh(x) / math.Sinh(x) }, "hyperbolic cotangent"},
	{"toRadian", func(x float64) float64 { return x * math.Pi / 180 }, "degrees to radians"},
	{"toDegree", func(x float64) float64 { return x * 180 / math.Pi }, "radians to degrees"},
}
