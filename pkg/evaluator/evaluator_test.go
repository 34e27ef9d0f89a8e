package evaluator_test

import (
	"context"
	"testing"
	"time"

	"github.com/objectql/objectql/pkg/evaluator"
	"github.com/objectql/objectql/pkg/parser"
	"github.com/objectql/objectql/pkg/registry"
	"github.com/objectql/objectql/pkg/types"
)

// d1 is spec.md §8's first end-to-end scenario document.
func d1() map[string]interface{} {
	return map[string]interface{}{
		"age":      int64(25),
		"name":     "John Doe",
		"status":   "active",
		"scores":   []interface{}{int64(10), int64(20), int64(30)},
		"isActive": true,
		"nested":   map[string]interface{}{"value": int64(42)},
		"missing":  nil,
		"text":     "Hello World",
	}
}

// d2 is spec.md §8's nested "person" document, ported verbatim from the
// original source's QueryEvaluatorTest deep-nesting fixture (Alice Johnson,
// two phones, a Springfield address, and two orders).
func d2() map[string]interface{} {
	return map[string]interface{}{
		"person": map[string]interface{}{
			"id":   int64(12345),
			"name": "Alice Johnson",
			"age":  int64(34),
			"contact": map[string]interface{}{
				"email": "alice.johnson@example.com",
				"phones": []interface{}{
					map[string]interface{}{"type": "mobile", "number": "555-1234", "active": true},
					map[string]interface{}{"type": "home", "number": "555-5678", "active": false},
				},
				"address": map[string]interface{}{
					"street": "123 Elm Street",
					"city":   "Springfield",
					"zip":    "62701",
					"coordinates": map[string]interface{}{
						"lat": 39.7817,
						"lon": -89.6501,
					},
				},
			},
			"orders": []interface{}{
				map[string]interface{}{
					"orderId": "ORD001",
					"total":   199.95,
					"items": []interface{}{
						map[string]interface{}{"product": "Laptop", "price": 149.99, "quantity": int64(1)},
						map[string]interface{}{"product": "Mouse", "price": 24.99, "quantity": int64(2)},
					},
					"status": "shipped",
				},
				map[string]interface{}{
					"orderId": "ORD002",
					"total":   75.50,
					"items": []interface{}{
						map[string]interface{}{"product": "Keyboard", "price": 75.50, "quantity": int64(1)},
					},
					"status": "pending",
				},
			},
			"preferences": map[string]interface{}{
				"notifications": true,
				"theme":         "dark",
			},
		},
	}
}

func evalBool(t *testing.T, query string, root interface{}) bool {
	t.Helper()
	expr, err := parser.Parse(query)
	if err != nil {
		t.Fatalf("Parse(%q) error: %v", query, err)
	}
	result, err := evaluator.New().Eval(context.Background(), expr, root)
	if err != nil {
		t.Fatalf("Eval(%q) error: %v", query, err)
	}
	return result
}

func TestEval_EndToEndScenarios(t *testing.T) {
	data1 := d1()
	data2 := d2()

	tests := []struct {
		query string
		root  interface{}
		want  bool
	}{
		{`age >=< [18, 65]`, data1, true},
		{`missing >=< [10, 20]`, data1, false},
		{`status >+< ['active', 'pending']`, data1, true},
		{`name ~ 'John%'`, data1, true},
		{`nested.value * 2 == 84`, data1, true},
		{`replace(missing, 'a', 'b') == null`, data1, true},
		{`scores[1] == 20`, data1, true},
		{`person.contact.phones[0].active == true AND person.contact.address.city == 'Springfield'`, data2, true},
		{`person.orders[1].items[0].price == person.orders[1].total AND person.orders[1].status == 'pending'`, data2, true},
		{`(person.age + person.contact.address.coordinates.lat) >=< [70, 80] AND person.contact.email ~~ 'alice%'`, data2, true},
	}

	for _, tt := range tests {
		if got := evalBool(t, tt.query, tt.root); got != tt.want {
			t.Errorf("eval(%q) = %v, want %v", tt.query, got, tt.want)
		}
	}
}

func TestEval_NullAbsorptionInArithmetic(t *testing.T) {
	// spec.md §8: "Null-absorption. For every arithmetic operator op,
	// Null op x = x op Null = Null."
	expr, err := parser.Parse(`missing + 1 == 1`)
	if err != nil {
		t.Fatal(err)
	}
	result, err := evaluator.New().Eval(context.Background(), expr, d1())
	if err != nil {
		t.Fatal(err)
	}
	if result {
		t.Fatal("missing + 1 == 1 should be false: Null-absorbing arithmetic never equals a number")
	}
}

func TestEval_IntegerEqualityIsExactPastFloat64Precision(t *testing.T) {
	// spec.md §4.5: relational equality "compares integer-to-integer
	// exactly, otherwise via Float" -- 9007199254740993 (2^53 + 1) would
	// round-trip incorrectly through float64, so this only passes if "=="
	// compares the two int64 operands directly.
	root := map[string]interface{}{"id": int64(9007199254740993)}
	expr, err := parser.Parse(`id == 9007199254740993`)
	if err != nil {
		t.Fatal(err)
	}
	result, err := evaluator.New().Eval(context.Background(), expr, root)
	if err != nil {
		t.Fatal(err)
	}
	if !result {
		t.Fatal("id == 9007199254740993 should be true for an exact int64 match")
	}
}

func TestEval_UnknownFunctionIsError(t *testing.T) {
	expr, err := parser.Parse(`unknown(5)`)
	if err != nil {
		t.Fatal(err)
	}
	_, err = evaluator.New().Eval(context.Background(), expr, d1())
	if err == nil {
		t.Fatal("expected an UnknownFunction error")
	}
	objErr, ok := err.(*types.Error)
	if !ok || objErr.Code != types.ErrUnknownFunction {
		t.Fatalf("error = %v, want UnknownFunction", err)
	}
}

func TestEval_CustomFunctionRegistration(t *testing.T) {
	eval := evaluator.New(evaluator.WithCustomFunction("isEven", func(_ context.Context, args []types.Value) (types.Value, error) {
		n, _ := types.AsFloat64(args[0])
		return int64(n)%2 == 0, nil
	}))
	expr, err := parser.Parse(`isEven(age)`)
	if err != nil {
		t.Fatal(err)
	}
	result, err := eval.Eval(context.Background(), expr, d1())
	if err != nil {
		t.Fatal(err)
	}
	if result {
		t.Fatal("isEven(25) should be false")
	}
}

func TestEval_RegistryIdempotence(t *testing.T) {
	// spec.md §8: "Registering the same name twice leaves only the latest
	// callable visible."
	r := registry.New()
	r.MustRegister("f", func(_ context.Context, _ []types.Value) (types.Value, error) { return int64(1), nil })
	r.MustRegister("f", func(_ context.Context, _ []types.Value) (types.Value, error) { return int64(2), nil })

	eval := evaluator.New(evaluator.WithRegistry(r))
	expr, err := parser.Parse(`f() == 2`)
	if err != nil {
		t.Fatal(err)
	}
	result, err := eval.Eval(context.Background(), expr, d1())
	if err != nil {
		t.Fatal(err)
	}
	if !result {
		t.Fatal("f() should resolve to the second registration's value, 2")
	}
}

func TestEval_InstanceTagRequiresConfiguration(t *testing.T) {
	expr, err := parser.Parse(`scores[@primary] == 10`)
	if err != nil {
		t.Fatal(err)
	}
	_, err = evaluator.New().Eval(context.Background(), expr, d1())
	if err == nil {
		t.Fatal("expected a TypeMismatch error for an unconfigured instance tag")
	}

	eval := evaluator.New(evaluator.WithInstanceTags(map[string]int{"primary": 0}))
	result, err := eval.Eval(context.Background(), expr, d1())
	if err != nil {
		t.Fatal(err)
	}
	if !result {
		t.Fatal("scores[@primary] should resolve to scores[0] == 10")
	}
}

func TestEval_Timeout(t *testing.T) {
	eval := evaluator.New(evaluator.WithTimeout(time.Nanosecond))
	expr, err := parser.Parse(`age >= 18`)
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := eval.Eval(ctx, expr, d1()); err == nil {
		t.Fatal("expected an error evaluating with an already-cancelled context")
	}
}
