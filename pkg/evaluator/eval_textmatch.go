package evaluator

import (
	"context"
	"regexp"
	"strings"

	"github.com/objectql/objectql/pkg/types"
)

// evalTextMatch evaluates every textMatch form: LIKE/ILIKE (and their NOT
// spellings) plus the "==" / "!=" equality form (spec.md §4.5 "Text match").
func (ec *evalCtx) evalTextMatch(ctx context.Context, node *types.ASTNode) (bool, error) {
	text, textNull, err := ec.evalText(ctx, node.LHS)
	if err != nil {
		return false, err
	}
	pattern, patternNull, err := ec.evalText(ctx, node.RHS)
	if err != nil {
		return false, err
	}

	if node.Op == "==" || node.Op == "!=" {
		return ec.evalTextEquality(node, text, textNull, pattern, patternNull)
	}

	// Match operators can never legally pair with a literal NULL operand
	// (rejected at parse time), so any Null here came from resolving a
	// missing property or a call, and the whole match is false.
	if textNull || patternNull {
		return false, nil
	}

	caseInsensitive := node.Op == "ILIKE"
	re, err := ec.evaluator.wildcardRegexp(pattern, caseInsensitive)
	if err != nil {
		return false, err
	}
	matched := re.MatchString(text)
	if node.Negated {
		return !matched, nil
	}
	return matched, nil
}

// evalTextEquality implements "==" / "!=" against text expressions,
// including the two literal-NULL slots (spec.md line 87 and §4.5 "Text
// match"): if exactly one side is the literal NULL, the result depends
// only on whether the other side is null; if both sides are the literal
// NULL, the result is true. Otherwise, a Null from a missing property (as
// opposed to the literal) makes "==" false and "!=" true; with both sides
// resolved, comparison is exact string equality.
func (ec *evalCtx) evalTextEquality(node *types.ASTNode, text string, textNull bool, pattern string, patternNull bool) (bool, error) {
	lhsLiteralNull := node.LHS.Type == types.NodeNull
	rhsLiteralNull := node.RHS.Type == types.NodeNull

	var result bool
	switch {
	case lhsLiteralNull && rhsLiteralNull:
		result = true
	case lhsLiteralNull:
		result = patternNull
	case rhsLiteralNull:
		result = textNull
	case textNull || patternNull:
		result = false
	default:
		result = text == pattern
	}

	if node.Op == "!=" {
		return !result, nil
	}
	return result, nil
}

// wildcardRegexp compiles pattern's single wildcard, "%" (matching any
// run of characters, including none), into an anchored regular expression,
// caching the result since the same LIKE pattern is typically evaluated
// against many documents.
func (e *Evaluator) wildcardRegexp(pattern string, caseInsensitive bool) (*regexp.Regexp, error) {
	key := pattern
	if caseInsensitive {
		key = "i:" + pattern
	} else {
		key = "s:" + pattern
	}

	e.patternMu.RLock()
	re, ok := e.patternCache[key]
	e.patternMu.RUnlock()
	if ok {
		return re, nil
	}

	parts := strings.Split(pattern, "%")
	for i, p := range parts {
		parts[i] = regexp.QuoteMeta(p)
	}
	src := "^" + strings.Join(parts, ".*") + "$"
	if caseInsensitive {
		src = "(?i)" + src
	}
	compiled, err := regexp.Compile(src)
	if err != nil {
		return nil, types.NewError(types.ErrEvaluation, "invalid LIKE pattern: "+err.Error())
	}

	e.patternMu.Lock()
	e.patternCache[key] = compiled
	e.patternMu.Unlock()
	return compiled, nil
}
