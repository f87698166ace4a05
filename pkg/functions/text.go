package functions

import (
	"regexp"
	"strings"

	"github.com/sandrolain/gojexp/pkg/cache"
	"github.com/sandrolain/gojexp/pkg/types"
)

// regexps holds compiled patterns shared by every evaluation.
var regexps = cache.New[*regexp.Regexp](cache.DefaultCapacity)

func compileRegexp(pattern string) (*regexp.Regexp, error) {
	return regexps.GetOrCompile(cache.NewKey(pattern), func() (*regexp.Regexp, error) {
		return regexp.Compile(pattern)
	})
}

func fnRegMatch(args []types.Value) (types.Value, error) {
	if args[0].IsNull() {
		return types.False, nil
	}
	s, err := args[0].AsString()
	if err != nil {
		return types.Null, err
	}
	pattern, err := args[1].AsString()
	if err != nil {
		return types.Null, err
	}
	pattern = strings.ReplaceAll(pattern, `\\`, `\`)
	re, err := compileRegexp(`^(?:` + pattern + `)$`)
	if err != nil {
		return types.Null, types.EvalErrorf("invalid regex: %s", pattern).WithCause(err)
	}
	return types.Bool(re.MatchString(s)), nil
}

func fnReplaceAll(args []types.Value) (types.Value, error) {
	s, err := args[0].AsString()
	if err != nil {
		return types.Null, err
	}
	pattern, err := args[1].AsString()
	if err != nil {
		return types.Null, err
	}
	repl, err := args[2].AsString()
	if err != nil {
		return types.Null, err
	}
	re, err := compileRegexp(pattern)
	if err != nil {
		return types.Null, types.EvalErrorf("invalid regex: %s", pattern).WithCause(err)
	}
	return types.Str(re.ReplaceAllString(s, repl)), nil
}
