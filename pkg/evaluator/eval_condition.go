package evaluator

import (
	"context"
	"fmt"

	"github.com/objectql/objectql/pkg/types"
)

// evalPredication evaluates the AND/OR tree at the top of every query
// (spec §4.5 "Predication"). Go's && and || already short-circuit, which
// spec §4.5 explicitly permits.
func (ec *evalCtx) evalPredication(ctx context.Context, node *types.ASTNode) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, types.NewError(types.ErrEvaluation, "evaluation cancelled: "+err.Error())
	}
	switch node.Type {
	case types.NodeAnd:
		l, err := ec.evalPredication(ctx, node.LHS)
		if err != nil {
			return false, err
		}
		if !l {
			return false, nil
		}
		return ec.evalPredication(ctx, node.RHS)
	case types.NodeOr:
		l, err := ec.evalPredication(ctx, node.LHS)
		if err != nil {
			return false, err
		}
		if l {
			return true, nil
		}
		return ec.evalPredication(ctx, node.RHS)
	default:
		return ec.evalCondition(ctx, node)
	}
}

// evalCondition evaluates any node that can stand as a Predication leaf.
func (ec *evalCtx) evalCondition(ctx context.Context, node *types.ASTNode) (bool, error) {
	switch node.Type {
	case types.NodeBoolLit:
		return node.BoolValue, nil
	case types.NodeBoolCompare:
		return ec.evalBoolCompare(ctx, node)
	case types.NodeRelational:
		return ec.evalRelational(ctx, node)
	case types.NodeBetween:
		return ec.evalBetween(ctx, node)
	case types.NodeIn:
		return ec.evalIn(ctx, node)
	case types.NodeTextMatch:
		return ec.evalTextMatch(ctx, node)
	case types.NodeCall:
		v, err := ec.evalCall(ctx, node)
		if err != nil {
			return false, err
		}
		b, ok := v.(bool)
		if !ok {
			return false, types.NewError(types.ErrTypeMismatch,
				fmt.Sprintf("function %s did not return a boolean", node.FuncName))
		}
		return b, nil
	case types.NodeIdentifier:
		// A bare identifier standing alone as a condition uses the
		// deprecated loose boolean coercion (spec §4.5, §9).
		v, err := ec.resolvePath(node)
		if err != nil {
			return false, err
		}
		return types.ParseBoolLoose(v), nil
	default:
		return false, types.NewError(types.ErrTypeMismatch, "expression cannot be used as a condition")
	}
}

// evalBoolCompare evaluates a literal-or-identifier boolean "==" / "!=".
func (ec *evalCtx) evalBoolCompare(ctx context.Context, node *types.ASTNode) (bool, error) {
	lhs, err := ec.evalBoolOperand(ctx, node.LHS)
	if err != nil {
		return false, err
	}
	rhs, err := ec.evalBoolOperand(ctx, node.RHS)
	if err != nil {
		return false, err
	}
	if node.Op == "!=" {
		return lhs != rhs, nil
	}
	return lhs == rhs, nil
}

// evalBoolOperand evaluates a boolExpr operand: a literal, or an identifier
// resolved with the deprecated loose coercion, or a call required to return
// an actual bool (spec §9's deprecation only covers identifiers).
func (ec *evalCtx) evalBoolOperand(ctx context.Context, node *types.ASTNode) (bool, error) {
	switch node.Type {
	case types.NodeBoolLit:
		return node.BoolValue, nil
	case types.NodeIdentifier:
		v, err := ec.resolvePath(node)
		if err != nil {
			return false, err
		}
		return types.ParseBoolLoose(v), nil
	case types.NodeCall:
		v, err := ec.evalCall(ctx, node)
		if err != nil {
			return false, err
		}
		b, ok := v.(bool)
		if !ok {
			return false, types.NewError(types.ErrTypeMismatch,
				fmt.Sprintf("function %s did not return a boolean", node.FuncName))
		}
		return b, nil
	default:
		v, err := ec.evalGeneric(ctx, node)
		if err != nil {
			return false, err
		}
		b, ok := v.(bool)
		if !ok {
			return false, types.NewError(types.ErrTypeMismatch, "expected a boolean operand")
		}
		return b, nil
	}
}

// evalRelational evaluates a mathExpr/boolExpr comparison (spec §4.5
// "Relational"). Either operand resolving to Null makes the whole
// comparison false without a type check; two numbers compare numerically
// with all six operators, two bools compare with "==" / "!=" only,
// anything else is a TypeMismatch. Two Integers compare exactly via int64
// for "==" / "!=" (spec §4.5) instead of going through Float, so equality
// stays exact past 2^53; every other operator, and any Float operand,
// compares via Float as before.
func (ec *evalCtx) evalRelational(ctx context.Context, node *types.ASTNode) (bool, error) {
	lhs, err := ec.evalGeneric(ctx, node.LHS)
	if err != nil {
		return false, err
	}
	rhs, err := ec.evalGeneric(ctx, node.RHS)
	if err != nil {
		return false, err
	}
	if types.IsNull(lhs) || types.IsNull(rhs) {
		return false, nil
	}

	if li, lok := lhs.(int64); lok {
		if ri, rok := rhs.(int64); rok {
			switch node.Op {
			case "==":
				return li == ri, nil
			case "!=":
				return li != ri, nil
			}
			return compareNumbers(float64(li), float64(ri), node.Op)
		}
	}
	if lf, lok := types.AsFloat64(lhs); lok {
		if rf, rok := types.AsFloat64(rhs); rok {
			return compareNumbers(lf, rf, node.Op)
		}
	}
	if lb, lok := lhs.(bool); lok {
		if rb, rok := rhs.(bool); rok {
			switch node.Op {
			case "==":
				return lb == rb, nil
			case "!=":
				return lb != rb, nil
			default:
				return false, types.NewError(types.ErrTypeMismatch,
					fmt.Sprintf("operator %s does not apply to boolean operands", node.Op))
			}
		}
	}
	return false, types.NewError(types.ErrTypeMismatch, "relational operands must both be numbers or both be booleans")
}

func compareNumbers(a, b float64, op string) (bool, error) {
	switch op {
	case "==":
		return a == b, nil
	case "!=":
		return a != b, nil
	case "<":
		return a < b, nil
	case "<=":
		return a <= b, nil
	case ">":
		return a > b, nil
	case ">=":
		return a >= b, nil
	default:
		return false, types.NewError(types.ErrEvaluation, "unknown relational operator: "+op)
	}
}

// evalBetween evaluates spec §4.5's inclusive numeric range check.
func (ec *evalCtx) evalBetween(ctx context.Context, node *types.ASTNode) (bool, error) {
	val, err := ec.evalGeneric(ctx, node.Val)
	if err != nil {
		return false, err
	}
	lo, err := ec.evalGeneric(ctx, node.Lo)
	if err != nil {
		return false, err
	}
	hi, err := ec.evalGeneric(ctx, node.Hi)
	if err != nil {
		return false, err
	}
	if types.IsNull(val) || types.IsNull(lo) || types.IsNull(hi) {
		return false, nil
	}
	vf, ok1 := types.AsFloat64(val)
	lf, ok2 := types.AsFloat64(lo)
	hf, ok3 := types.AsFloat64(hi)
	if !ok1 || !ok2 || !ok3 {
		return false, types.NewError(types.ErrTypeMismatch, "BETWEEN operands must be numbers")
	}
	return vf >= lf && vf <= hf, nil
}

// evalIn evaluates spec §4.5's IN / NOT IN membership check. Membership
// compares numerically if the left operand is a number, otherwise by
// display-string equality; a Null left operand is never a member, in
// either direction, matching the null-absorption rule of every other
// comparison operator.
func (ec *evalCtx) evalIn(ctx context.Context, node *types.ASTNode) (bool, error) {
	lhs, err := ec.evalGeneric(ctx, node.LHS)
	if err != nil {
		return false, err
	}
	if types.IsNull(lhs) {
		return false, nil
	}

	var list []types.Value
	if node.RHSPath != nil {
		v, err := ec.resolvePath(node.RHSPath)
		if err != nil {
			return false, err
		}
		l, ok := v.([]interface{})
		if !ok {
			if types.IsNull(v) {
				list = nil
			} else {
				return false, types.NewError(types.ErrTypeMismatch, "IN target identifier does not resolve to a list")
			}
		} else {
			list = l
		}
	} else {
		for _, elemNode := range node.List {
			v, err := ec.evalGeneric(ctx, elemNode)
			if err != nil {
				return false, err
			}
			list = append(list, v)
		}
	}

	found := false
	if lf, lok := types.AsFloat64(lhs); lok {
		for _, elem := range list {
			if ef, ok := types.AsFloat64(elem); ok && ef == lf {
				found = true
				break
			}
		}
	} else {
		lhsStr := types.ToDisplayString(lhs)
		for _, elem := range list {
			if !types.IsNull(elem) && types.ToDisplayString(elem) == lhsStr {
				found = true
				break
			}
		}
	}

	if node.Negated {
		return !found, nil
	}
	return found, nil
}
