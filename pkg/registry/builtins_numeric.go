package registry

import (
	"context"
	"math"

	"github.com/objectql/objectql/pkg/types"
)

// WithNumericBuiltins registers the numeric built-ins of spec §4.4: min,
// max, abs, round, ceil, floor, sqrt. Grounded on the teacher's
// `pkg/ext/extnumeric` category pack.
func WithNumericBuiltins() RegistryOption {
	return func(r *Registry) {
		r.MustRegister("min", fnMin)
		r.MustRegister("max", fnMax)
		r.MustRegister("abs", fnAbs)
		r.MustRegister("round", fnRound)
		r.MustRegister("ceil", fnCeil)
		r.MustRegister("floor", fnFloor)
		r.MustRegister("sqrt", fnSqrt)
	}
}

func argNumber(args []types.Value, i int) (types.Value, bool) {
	if i >= len(args) {
		return nil, false
	}
	return types.AsNumber(args[i])
}

// fnMin/fnMax take one or more numeric arguments and always return Float,
// matching spec §4.4's "min(xs...)"/"max(xs...)" contract. Null arguments are
// skipped rather than rejected -- spec §4.4 defines these as "Numeric
// min/max over non-null args", erroring only once none remain.
func fnMin(_ context.Context, args []types.Value) (types.Value, error) {
	return numericPick(args, "min", func(a, b float64) bool { return a <= b })
}

func fnMax(_ context.Context, args []types.Value) (types.Value, error) {
	return numericPick(args, "max", func(a, b float64) bool { return a >= b })
}

func numericPick(args []types.Value, name string, keepLeft func(a, b float64) bool) (types.Value, error) {
	if len(args) < 1 {
		return nil, types.NewError(types.ErrArgument, name+" expects at least 1 argument")
	}
	var best float64
	seen := false
	for i := range args {
		if types.IsNull(args[i]) {
			continue
		}
		n, ok := argNumber(args, i)
		if !ok {
			return nil, types.NewError(types.ErrArgument, name+" expects numeric arguments")
		}
		f, _ := types.AsFloat64(n)
		if !seen {
			best = f
			seen = true
			continue
		}
		if !keepLeft(best, f) {
			best = f
		}
	}
	if !seen {
		return nil, types.NewError(types.ErrArgument, name+" expects at least one non-null numeric argument")
	}
	return best, nil
}

// fnAbs is Null-pass-through per spec §4.4: abs(missing) returns Null rather
// than erroring, the same as every other single-argument numeric built-in
// below.
func fnAbs(_ context.Context, args []types.Value) (types.Value, error) {
	if len(args) > 0 && types.IsNull(args[0]) {
		return nil, nil
	}
	n, ok := argNumber(args, 0)
	if !ok {
		return nil, types.NewError(types.ErrArgument, "abs expects a numeric argument")
	}
	if i, isInt := n.(int64); isInt {
		if i < 0 {
			return -i, nil
		}
		return i, nil
	}
	f, _ := types.AsFloat64(n)
	return math.Abs(f), nil
}

func fnRound(_ context.Context, args []types.Value) (types.Value, error) {
	if len(args) > 0 && types.IsNull(args[0]) {
		return nil, nil
	}
	n, ok := argNumber(args, 0)
	if !ok {
		return nil, types.NewError(types.ErrArgument, "round expects a numeric argument")
	}
	if i, isInt := n.(int64); isInt {
		return i, nil
	}
	f, _ := types.AsFloat64(n)
	return int64(math.Round(f)), nil
}

func fnCeil(_ context.Context, args []types.Value) (types.Value, error) {
	if len(args) > 0 && types.IsNull(args[0]) {
		return nil, nil
	}
	n, ok := argNumber(args, 0)
	if !ok {
		return nil, types.NewError(types.ErrArgument, "ceil expects a numeric argument")
	}
	if i, isInt := n.(int64); isInt {
		return i, nil
	}
	f, _ := types.AsFloat64(n)
	return int64(math.Ceil(f)), nil
}

func fnFloor(_ context.Context, args []types.Value) (types.Value, error) {
	if len(args) > 0 && types.IsNull(args[0]) {
		return nil, nil
	}
	n, ok := argNumber(args, 0)
	if !ok {
		return nil, types.NewError(types.ErrArgument, "floor expects a numeric argument")
	}
	if i, isInt := n.(int64); isInt {
		return i, nil
	}
	f, _ := types.AsFloat64(n)
	return int64(math.Floor(f)), nil
}

// fnSqrt always returns Float, matching the original source's Math.pow-based
// promotion for every non-trivial numeric transform (SPEC_FULL.md §C.2).
func fnSqrt(_ context.Context, args []types.Value) (types.Value, error) {
	if len(args) > 0 && types.IsNull(args[0]) {
		return nil, nil
	}
	n, ok := argNumber(args, 0)
	if !ok {
		return nil, types.NewError(types.ErrArgument, "sqrt expects a numeric argument")
	}
	f, _ := types.AsFloat64(n)
	if f < 0 {
		return nil, types.NewError(types.ErrArgument, "sqrt expects a non-negative argument")
	}
	return math.Sqrt(f), nil
}
