package evaluator

import (
	"context"
	"math"

	"github.com/objectql/objectql/pkg/path"
	"github.com/objectql/objectql/pkg/types"
)

// resolvePath resolves an identifier node's path against the document being
// evaluated (spec §4.3).
func (ec *evalCtx) resolvePath(node *types.ASTNode) (types.Value, error) {
	return path.Resolve(ec.root, node.Path, ec.evaluator.opts.InstanceTags)
}

// evalGeneric evaluates any node that can appear as a raw scalar operand:
// a literal, an identifier path, a call result, or a nested math expression.
// It never coerces the result -- callers that need a specific type (numeric
// comparison, boolean condition, ...) check the returned Value themselves.
func (ec *evalCtx) evalGeneric(ctx context.Context, node *types.ASTNode) (types.Value, error) {
	switch node.Type {
	case types.NodeIntLit:
		return node.IntValue, nil
	case types.NodeFloatLit:
		return node.FloatValue, nil
	case types.NodeBoolLit:
		return node.BoolValue, nil
	case types.NodeNull:
		return nil, nil
	case types.NodeTextLit:
		return node.StringValue, nil
	case types.NodeIdentifier:
		return ec.resolvePath(node)
	case types.NodeCall:
		return ec.evalCall(ctx, node)
	case types.NodePower:
		return ec.evalPower(node)
	case types.NodeArith:
		return ec.evalArith(ctx, node)
	default:
		return nil, types.NewError(types.ErrTypeMismatch, "node cannot be used as a scalar operand: "+node.String())
	}
}

// evalCall resolves a function call's arguments generically and dispatches
// to the registry (spec §4.4).
func (ec *evalCtx) evalCall(ctx context.Context, node *types.ASTNode) (types.Value, error) {
	args := make([]types.Value, len(node.Args))
	for i, argNode := range node.Args {
		v, err := ec.evalGeneric(ctx, argNode)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	return ec.evaluator.registry.Call(ctx, node.FuncName, args)
}

// evalPower evaluates the restricted `base^exponent` literal form (spec
// §4.1). The result is always Float, matching the numeric tower's rule that
// any transcendental-leaning operation promotes out of Integer
// (SPEC_FULL.md §C.2).
func (ec *evalCtx) evalPower(node *types.ASTNode) (types.Value, error) {
	base, err := ec.evalGeneric(context.Background(), node.LHS)
	if err != nil {
		return nil, err
	}
	exp, err := ec.evalGeneric(context.Background(), node.RHS)
	if err != nil {
		return nil, err
	}
	bf, _ := types.AsFloat64(base)
	ef, _ := types.AsFloat64(exp)
	return math.Pow(bf, ef), nil
}

// evalArith evaluates "+", "-", "*", "/", "%" (spec §4.1's mathExpr). Null
// absorbs: an arithmetic expression touching Null evaluates to Null rather
// than erroring, matching every other operator's null-absorption rule.
// Two Integer operands stay Integer for every operator, including "/", which
// truncates like Go's native integer division; any Float operand promotes
// the whole expression to Float.
func (ec *evalCtx) evalArith(ctx context.Context, node *types.ASTNode) (types.Value, error) {
	lhs, err := ec.evalGeneric(ctx, node.LHS)
	if err != nil {
		return nil, err
	}
	rhs, err := ec.evalGeneric(ctx, node.RHS)
	if err != nil {
		return nil, err
	}
	if types.IsNull(lhs) || types.IsNull(rhs) {
		return nil, nil
	}

	li, lIsInt := lhs.(int64)
	ri, rIsInt := rhs.(int64)
	if lIsInt && rIsInt {
		switch node.Op {
		case "+":
			return li + ri, nil
		case "-":
			return li - ri, nil
		case "*":
			return li * ri, nil
		case "/":
			if ri == 0 {
				return nil, types.NewError(types.ErrEvaluation, "division by zero")
			}
			return li / ri, nil
		case "%":
			if ri == 0 {
				return nil, types.NewError(types.ErrEvaluation, "division by zero")
			}
			return li % ri, nil
		}
	}

	lf, lok := types.AsFloat64(lhs)
	rf, rok := types.AsFloat64(rhs)
	if !lok || !rok {
		return nil, types.NewError(types.ErrTypeMismatch, "arithmetic operands must be numeric")
	}
	switch node.Op {
	case "+":
		return lf + rf, nil
	case "-":
		return lf - rf, nil
	case "*":
		return lf * rf, nil
	case "/":
		if rf == 0 {
			return nil, types.NewError(types.ErrEvaluation, "division by zero")
		}
		return lf / rf, nil
	case "%":
		if rf == 0 {
			return nil, types.NewError(types.ErrEvaluation, "division by zero")
		}
		return math.Mod(lf, rf), nil
	default:
		return nil, types.NewError(types.ErrEvaluation, "unknown arithmetic operator: "+node.Op)
	}
}

// evalText evaluates a text-side operand of a text-match expression,
// reporting whether it resolved to Null so callers can apply null
// absorption instead of matching against an empty string.
func (ec *evalCtx) evalText(ctx context.Context, node *types.ASTNode) (text string, isNull bool, err error) {
	switch node.Type {
	case types.NodeTextLit:
		return node.StringValue, false, nil
	case types.NodeNull:
		return "", true, nil
	case types.NodeIdentifier:
		v, err := ec.resolvePath(node)
		if err != nil {
			return "", false, err
		}
		if types.IsNull(v) {
			return "", true, nil
		}
		return types.ToDisplayString(v), false, nil
	case types.NodeCall:
		v, err := ec.evalCall(ctx, node)
		if err != nil {
			return "", false, err
		}
		if types.IsNull(v) {
			return "", true, nil
		}
		return types.ToDisplayString(v), false, nil
	default:
		return "", false, types.NewError(types.ErrTypeMismatch, "expected a text operand")
	}
}
