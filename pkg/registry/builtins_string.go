package registry

import (
	"context"
	"regexp"
	"strings"

	"github.com/objectql/objectql/pkg/types"
)

// WithStringBuiltins registers the text built-ins of spec §4.4: replace,
// upper, lower, substring, concat, length, contains, startsWith, endsWith.
// Grounded on the teacher's `pkg/ext/extstring` category pack, which groups
// the same shape of functions (string in, string or bool out) behind one
// registration call.
func WithStringBuiltins() RegistryOption {
	return func(r *Registry) {
		r.MustRegister("replace", fnReplace)
		r.MustRegister("upper", fnUpper)
		r.MustRegister("lower", fnLower)
		r.MustRegister("substring", fnSubstring)
		r.MustRegister("concat", fnConcat)
		r.MustRegister("length", fnLength)
		r.MustRegister("contains", fnContains)
		r.MustRegister("startsWith", fnStartsWith)
		r.MustRegister("endsWith", fnEndsWith)
	}
}

func argString(args []types.Value, i int) (string, bool) {
	if i >= len(args) || types.IsNull(args[i]) {
		return "", false
	}
	s, ok := args[i].(string)
	return s, ok
}

// fnReplace(text, pattern, replacement) replaces every regex match of
// pattern in text with replacement. Any Null argument yields Null (spec
// §4.4's "any-null ⇒ Null"), not just a Null text.
func fnReplace(_ context.Context, args []types.Value) (types.Value, error) {
	if len(args) != 3 {
		return nil, types.NewError(types.ErrArgument, "replace expects 3 arguments")
	}
	if types.IsNull(args[0]) || types.IsNull(args[1]) || types.IsNull(args[2]) {
		return nil, nil
	}
	text, ok := argString(args, 0)
	if !ok {
		return nil, types.NewError(types.ErrArgument, "replace: text must be text")
	}
	pattern, ok := argString(args, 1)
	if !ok {
		return nil, types.NewError(types.ErrArgument, "replace: pattern must be text")
	}
	replacement, ok := argString(args, 2)
	if !ok {
		return nil, types.NewError(types.ErrArgument, "replace: replacement must be text")
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, types.NewError(types.ErrArgument, "replace: invalid pattern").WithCause(err)
	}
	return re.ReplaceAllString(text, replacement), nil
}

func fnUpper(_ context.Context, args []types.Value) (types.Value, error) {
	s, ok := argString(args, 0)
	if !ok {
		return nil, nil
	}
	return strings.ToUpper(s), nil
}

func fnLower(_ context.Context, args []types.Value) (types.Value, error) {
	s, ok := argString(args, 0)
	if !ok {
		return nil, nil
	}
	return strings.ToLower(s), nil
}

// fnSubstring(text, start[, end]) is 0-based with end clamped to len(s), an
// absolute index rather than a length, matching the forgiving out-of-range
// clamping common to embeddable query languages. Per spec §4.4, a Null in
// either of the first two arguments makes the whole call Null; only the
// trailing, optional end argument treats Null as "unspecified".
func fnSubstring(_ context.Context, args []types.Value) (types.Value, error) {
	if len(args) < 2 {
		return nil, types.NewError(types.ErrArgument, "substring expects at least 2 arguments")
	}
	if types.IsNull(args[1]) {
		return nil, nil
	}
	s, ok := argString(args, 0)
	if !ok {
		return nil, nil
	}
	runes := []rune(s)
	start, _ := types.AsFloat64(args[1])
	startIdx := clampIndex(int(start), len(runes))

	end := len(runes)
	if len(args) >= 3 && !types.IsNull(args[2]) {
		n, _ := types.AsFloat64(args[2])
		end = clampIndex(int(n), len(runes))
	}
	if end < startIdx {
		end = startIdx
	}
	return string(runes[startIdx:end]), nil
}

func clampIndex(i, length int) int {
	if i < 0 {
		return 0
	}
	if i > length {
		return length
	}
	return i
}

// fnConcat joins its arguments' display strings; Null arguments contribute
// an empty string rather than aborting the whole call.
func fnConcat(_ context.Context, args []types.Value) (types.Value, error) {
	var b strings.Builder
	for _, a := range args {
		if types.IsNull(a) {
			continue
		}
		b.WriteString(types.ToDisplayString(a))
	}
	return b.String(), nil
}

// fnLength returns the rune length of text or the element count of a list;
// Null stays Null, and any other type yields 0 rather than crashing
// (spec §4.4's table; SPEC_FULL.md §C.5's safer contract in place of the
// original's unchecked-cast crash).
func fnLength(_ context.Context, args []types.Value) (types.Value, error) {
	if len(args) == 0 || types.IsNull(args[0]) {
		return nil, nil
	}
	switch v := args[0].(type) {
	case string:
		return int64(len([]rune(v))), nil
	case []interface{}:
		return int64(len(v)), nil
	default:
		return int64(0), nil
	}
}

// argCaseInsensitive reads the optional trailing boolean flag shared by
// contains/startsWith/endsWith (spec §4.4's "2 or 3" arity); a missing or
// Null third argument means case-sensitive.
func argCaseInsensitive(args []types.Value, i int) bool {
	if i >= len(args) || types.IsNull(args[i]) {
		return false
	}
	b, _ := args[i].(bool)
	return b
}

// fnContains/fnStartsWith/fnEndsWith are contains(s, t[, ci]),
// startsWith(s, p[, ci]), endsWith(s, p[, ci]): an optional trailing boolean
// requests case-insensitive comparison (spec §4.4).
func fnContains(_ context.Context, args []types.Value) (types.Value, error) {
	s, ok1 := argString(args, 0)
	sub, ok2 := argString(args, 1)
	if !ok1 || !ok2 {
		return false, nil
	}
	if argCaseInsensitive(args, 2) {
		s, sub = strings.ToLower(s), strings.ToLower(sub)
	}
	return strings.Contains(s, sub), nil
}

func fnStartsWith(_ context.Context, args []types.Value) (types.Value, error) {
	s, ok1 := argString(args, 0)
	prefix, ok2 := argString(args, 1)
	if !ok1 || !ok2 {
		return false, nil
	}
	if argCaseInsensitive(args, 2) {
		s, prefix = strings.ToLower(s), strings.ToLower(prefix)
	}
	return strings.HasPrefix(s, prefix), nil
}

func fnEndsWith(_ context.Context, args []types.Value) (types.Value, error) {
	s, ok1 := argString(args, 0)
	suffix, ok2 := argString(args, 1)
	if !ok1 || !ok2 {
		return false, nil
	}
	if argCaseInsensitive(args, 2) {
		s, suffix = strings.ToLower(s), strings.ToLower(suffix)
	}
	return strings.HasSuffix(s, suffix), nil
}
