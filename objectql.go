// Package objectql provides an embeddable boolean-predicate query language
// for tree-shaped data (maps, lists, scalars) typically produced by
// deserializing JSON.
//
// ObjectQL is designed for guard-condition and access-rule style checks over
// in-memory documents, focusing on:
//   - Simplicity: a small surface grammar of comparisons, ranges, membership
//     and text matching, not a general transformation language
//   - Extensibility: a function registry seeded with built-ins and open to
//     host-supplied callables
//   - Reuse: compile a query once, evaluate it against many documents
//
// # Quick Start
//
//	// Simple evaluation
//	ok, err := objectql.Evaluate(data, "age >= 18")
//
//	// Compile once, evaluate many times
//	expr, err := objectql.Compile("status >+< ['active', 'pending']")
//	ok1, _ := evaluator.New().Eval(ctx, expr, data1)
//	ok2, _ := evaluator.New().Eval(ctx, expr, data2)
//
//	// A bound evaluator keeps custom function registrations across queries
//	ev, err := objectql.NewEvaluator(data)
//	ev.Register("isVIP", myVIPCheck)
//	ok, err := ev.Evaluate("isVIP(customerId)")
//
//	// Caching skips reparsing a query string seen before, on the same evaluator
//	ev, err := objectql.NewEvaluator(data, evaluator.WithCaching(true))
//	ok, err := ev.Evaluate("age >= 18") // parses
//	ok, err = ev.Evaluate("age >= 18")  // served from the cache
//
// # More Information
//
// For detailed documentation, see:
//   - Parser: github.com/objectql/objectql/pkg/parser
//   - Evaluator: github.com/objectql/objectql/pkg/evaluator
//   - Function registry: github.com/objectql/objectql/pkg/registry
//   - Types: github.com/objectql/objectql/pkg/types
package objectql

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/objectql/objectql/pkg/evaluator"
	"github.com/objectql/objectql/pkg/parser"
	"github.com/objectql/objectql/pkg/registry"
	"github.com/objectql/objectql/pkg/types"
)

// Version returns the current version of ObjectQL.
func Version() string {
	return "v0.1.0-dev"
}

// Compile compiles an ObjectQL query for repeated evaluation.
//
// The compiled expression can be evaluated multiple times against different
// data through an [evaluator.Evaluator]. It is immutable and safe for
// concurrent use.
func Compile(query string, opts ...parser.CompileOption) (*types.Expression, error) {
	return parser.Compile(query, opts...)
}

// MustCompile is like Compile but panics if the query cannot be compiled.
// It simplifies safe initialization of global variables.
func MustCompile(query string) *types.Expression {
	expr, err := Compile(query)
	if err != nil {
		panic(fmt.Sprintf("objectql: Compile(%q): %v", query, err))
	}
	return expr
}

// Evaluate is spec §6.2's `evaluate(root, query) -> Bool`: it constructs a
// default evaluator, compiles query, and returns the single Boolean the
// query's predication evaluates to against root.
//
// root may be an already-decoded Value (map[string]interface{}, and so on)
// or a JSON-encoded string; a blank query or a root that cannot be decoded
// is an ArgumentError raised before parsing begins.
func Evaluate(root interface{}, query string, opts ...evaluator.EvalOption) (bool, error) {
	rootVal, err := coerceRoot(root)
	if err != nil {
		return false, err
	}
	expr, err := compileNonEmpty(query)
	if err != nil {
		return false, err
	}
	result, err := evaluator.New(opts...).Eval(context.Background(), expr, rootVal)
	if err != nil {
		return false, wrapEvaluationError(query, err)
	}
	return result, nil
}

// Evaluator binds a root data value to a reusable [evaluator.Evaluator]
// (spec §6.2's `new_evaluator(root) -> Evaluator`), so custom function
// registrations survive across queries evaluated against the same document.
type Evaluator struct {
	root types.Value
	eval *evaluator.Evaluator
}

// NewEvaluator is spec §6.2's `new_evaluator(root) -> Evaluator`.
func NewEvaluator(root interface{}, opts ...evaluator.EvalOption) (*Evaluator, error) {
	rootVal, err := coerceRoot(root)
	if err != nil {
		return nil, err
	}
	return &Evaluator{root: rootVal, eval: evaluator.New(opts...)}, nil
}

// Register is spec §6.2's `evaluator.register(name, callable)`.
func (e *Evaluator) Register(name string, fn registry.Callable) error {
	return e.eval.Register(name, fn)
}

// Evaluate compiles query and evaluates it against the root value this
// Evaluator was constructed with, reusing its function registry. When the
// underlying [evaluator.Evaluator] was built with [evaluator.WithCaching],
// this is where "compile once, evaluate many times" actually happens: the
// compiled [types.Expression] is looked up by query string through
// [cache.Cache.GetOrCompile] instead of being reparsed on every call.
func (e *Evaluator) Evaluate(query string) (bool, error) {
	expr, err := e.compile(query)
	if err != nil {
		return false, err
	}
	result, err := e.eval.Eval(context.Background(), expr, e.root)
	if err != nil {
		return false, wrapEvaluationError(query, err)
	}
	return result, nil
}

func (e *Evaluator) compile(query string) (*types.Expression, error) {
	if strings.TrimSpace(query) == "" {
		return nil, types.NewError(types.ErrArgument, "query must not be empty")
	}
	if c := e.eval.Cache(); c != nil {
		return c.GetOrCompile(query, func() (*types.Expression, error) { return Compile(query) })
	}
	return Compile(query)
}

// EvaluateWith is the package-level spelling of spec §6.2's
// `evaluate_with(evaluator, query) -> Bool`.
func EvaluateWith(e *Evaluator, query string) (bool, error) {
	return e.Evaluate(query)
}

func compileNonEmpty(query string) (*types.Expression, error) {
	if strings.TrimSpace(query) == "" {
		return nil, types.NewError(types.ErrArgument, "query must not be empty")
	}
	expr, err := Compile(query)
	if err != nil {
		return nil, err
	}
	return expr, nil
}

// coerceRoot accepts either an already-decoded Value or a JSON string
// (spec §6.2's `Value|JsonString`), decoding the latter with encoding/json,
// whose float64-for-every-number output already matches ObjectQL's value
// model (pkg/types.Value).
func coerceRoot(root interface{}) (types.Value, error) {
	s, isString := root.(string)
	if !isString {
		return root, nil
	}
	var decoded interface{}
	if err := json.Unmarshal([]byte(s), &decoded); err != nil {
		return nil, types.NewError(types.ErrArgument, "root is not a valid JSON string: "+err.Error())
	}
	return decoded, nil
}

// wrapEvaluationError implements spec §7's outer-entry-point wrapping:
// "Error evaluating query '<query>': <cause-msg>", preserving the cause
// chain for errors.Is/errors.As.
func wrapEvaluationError(query string, cause error) error {
	return types.NewError(types.ErrEvaluation, fmt.Sprintf("Error evaluating query '%s': %s", query, cause.Error())).WithCause(cause)
}
