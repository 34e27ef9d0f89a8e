// Package types defines the core value and AST representation shared by the
// lexer, parser, path resolver, function registry and evaluator.
//
// This package contains:
//   - Value coercion helpers over the runtime value representation
//   - ASTNode: the abstract syntax tree produced by the parser
//   - Error: structured, code-carrying errors
//   - Expression: a compiled, reusable query
package types

import (
	"fmt"
	"strconv"
	"strings"
)

// Value is the runtime value carried through evaluation. ObjectQL does not
// box values in a tagged struct; a bare interface{} holding one of the
// following concrete types is the value model described in spec §3:
//
//	nil                    -- Null: absent/unresolved property
//	bool                   -- Bool
//	int64                  -- Integer
//	float64                -- Float
//	string                 -- String
//	[]interface{}          -- List
//	map[string]interface{} -- Map
//
// A deserialized JSON document produced by encoding/json already uses this
// same shape (float64 for all JSON numbers), so callers that only ever pass
// JSON-derived data need no conversion; callers constructing data by hand may
// use int64 directly to get integer-preserving arithmetic (§4.5).
type Value = interface{}

// IsNull reports whether v represents ObjectQL's Null.
func IsNull(v Value) bool {
	return v == nil
}

// AsNumber returns v as a Go number (int64 or float64) and true if v is
// numeric. Bool is never numeric (spec §3: "Booleans are not numbers").
func AsNumber(v Value) (Value, bool) {
	switch v.(type) {
	case int64, float64:
		return v, true
	default:
		return nil, false
	}
}

// AsFloat64 coerces a numeric Value to float64. Panics-free: returns
// (0, false) for non-numeric input.
func AsFloat64(v Value) (float64, bool) {
	switch n := v.(type) {
	case int64:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

// IsInteger reports whether v is the Integer numeric sub-type.
func IsInteger(v Value) bool {
	_, ok := v.(int64)
	return ok
}

// ToDisplayString renders v the way text-context coercion does throughout
// the evaluator (§4.5 relies on "string form" for concat, IN membership,
// text match, and boolean-string coercion). Null has no display string;
// callers must check IsNull first.
func ToDisplayString(v Value) string {
	switch t := v.(type) {
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	case []interface{}:
		parts := make([]string, len(t))
		for i, e := range t {
			parts[i] = ToDisplayString(e)
		}
		return "[" + strings.Join(parts, ",") + "]"
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", t)
	}
}

// ParseBoolLoose implements the deprecated (§9) boolean coercion rule for
// non-boolean identifiers in boolean expression contexts: the literal text
// "true" (case-insensitive) is true, anything else -- including Null -- is
// false.
func ParseBoolLoose(v Value) bool {
	if IsNull(v) {
		return false
	}
	if b, ok := v.(bool); ok {
		return b
	}
	return strings.EqualFold(ToDisplayString(v), "true")
}

// Equal compares two already-resolved values: numeric operands compare via
// float64, everything else via Go's ==. Two Null values are equal. The
// evaluator's relational, IN and text-match code does not call it.
func Equal(a, b Value) bool {
	af, aok := AsFloat64(a)
	bf, bok := AsFloat64(b)
	if aok && bok {
		return af == bf
	}
	return a == b
}
