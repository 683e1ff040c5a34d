package transform

import (
	"fmt"
	"math"
	"strings"

	"github.com/jigardalal/databridge/pkg/utils"
)

// evaluate walks the AST and produces a value: float64, string, bool, nil
// (undefined) or []interface{} from split.
func evaluate(n node) (interface{}, error) {
	switch node := n.(type) {
	case *literalNode:
		return node.value, nil
	case *unaryNode:
		return evalUnary(node)
	case *binaryNode:
		return evalBinary(node)
	case *ternaryNode:
		cond, err := evaluate(node.cond)
		if err != nil {
			return nil, err
		}
		if truthy(cond) {
			return evaluate(node.then)
		}
		return evaluate(node.els)
	case *callNode:
		return evalCall(node)
	case *indexNode:
		return evalIndex(node)
	case *memberNode:
		return evalMember(node)
	}
	return nil, fmt.Errorf("unsupported expression node %T", n)
}

func evalUnary(n *unaryNode) (interface{}, error) {
	v, err := evaluate(n.operand)
	if err != nil {
		return nil, err
	}
	switch n.op {
	case tokBang:
		return !truthy(v), nil
	case tokMinus:
		f, err := asNumber(v)
		if err != nil {
			return nil, err
		}
		return -f, nil
	}
	return nil, fmt.Errorf("unsupported unary operator")
}

func evalBinary(n *binaryNode) (interface{}, error) {
	// Short-circuit logic first.
	if n.op == tokAnd || n.op == tokOr {
		left, err := evaluate(n.left)
		if err != nil {
			return nil, err
		}
		if n.op == tokAnd && !truthy(left) {
			return left, nil
		}
		if n.op == tokOr && truthy(left) {
			return left, nil
		}
		return evaluate(n.right)
	}

	left, err := evaluate(n.left)
	if err != nil {
		return nil, err
	}
	right, err := evaluate(n.right)
	if err != nil {
		return nil, err
	}

	switch n.op {
	case tokPlus:
		// String on either side means concatenation; undefined renders as
		// the literal text "undefined", matching how it was resolved.
		if isString(left) || isString(right) {
			return concatText(left) + concatText(right), nil
		}
		l, err := asNumber(left)
		if err != nil {
			return nil, err
		}
		r, err := asNumber(right)
		if err != nil {
			return nil, err
		}
		return l + r, nil
	case tokMinus, tokStar, tokSlash, tokPercent:
		l, err := asNumber(left)
		if err != nil {
			return nil, err
		}
		r, err := asNumber(right)
		if err != nil {
			return nil, err
		}
		switch n.op {
		case tokMinus:
			return l - r, nil
		case tokStar:
			return l * r, nil
		case tokSlash:
			if r == 0 {
				return nil, fmt.Errorf("division by zero")
			}
			return l / r, nil
		default:
			if r == 0 {
				return nil, fmt.Errorf("modulo by zero")
			}
			return math.Mod(l, r), nil
		}
	case tokEq:
		return looseEqual(left, right), nil
	case tokNotEq:
		return !looseEqual(left, right), nil
	case tokLt, tokLtEq, tokGt, tokGtEq:
		return compare(n.op, left, right)
	}
	return nil, fmt.Errorf("unsupported binary operator")
}

func evalIndex(n *indexNode) (interface{}, error) {
	target, err := evaluate(n.target)
	if err != nil {
		return nil, err
	}
	idxVal, err := evaluate(n.index)
	if err != nil {
		return nil, err
	}
	idx, err := asNumber(idxVal)
	if err != nil {
		return nil, err
	}
	i := int(idx)

	switch t := target.(type) {
	case []interface{}:
		if i < 0 || i >= len(t) {
			return nil, nil
		}
		return t[i], nil
	case string:
		if i < 0 || i >= len(t) {
			return nil, nil
		}
		return string(t[i]), nil
	}
	return nil, fmt.Errorf("cannot index a %s", typeName(target))
}

func evalMember(n *memberNode) (interface{}, error) {
	target, err := evaluate(n.target)
	if err != nil {
		return nil, err
	}
	if n.name != "length" {
		return nil, fmt.Errorf("unknown property %q", n.name)
	}
	switch t := target.(type) {
	case string:
		return float64(len(t)), nil
	case []interface{}:
		return float64(len(t)), nil
	}
	return nil, fmt.Errorf("%s has no length", typeName(target))
}

// truthy follows the conventions spreadsheet users expect from formulas:
// undefined, false, 0 and "" are false, everything else true.
func truthy(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		return t != ""
	case []interface{}:
		return true
	}
	return true
}

func isString(v interface{}) bool {
	_, ok := v.(string)
	return ok
}

// concatText renders a value for string concatenation.
func concatText(v interface{}) string {
	if v == nil {
		return "undefined"
	}
	if s, ok := v.(string); ok {
		return s
	}
	return utils.Stringify(v)
}

func asNumber(v interface{}) (float64, error) {
	switch t := v.(type) {
	case float64:
		return t, nil
	case bool:
		if t {
			return 1, nil
		}
		return 0, nil
	case string:
		trimmed := strings.TrimSpace(t)
		if trimmed == "" {
			return 0, nil
		}
		var f float64
		if _, err := fmt.Sscanf(trimmed, "%g", &f); err != nil {
			return 0, fmt.Errorf("%q is not a number", t)
		}
		return f, nil
	case nil:
		return 0, fmt.Errorf("undefined is not a number")
	}
	return 0, fmt.Errorf("%s is not a number", typeName(v))
}

func looseEqual(a, b interface{}) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	af, aerr := strictNumber(a)
	bf, berr := strictNumber(b)
	if aerr == nil && berr == nil {
		return af == bf
	}
	return concatText(a) == concatText(b)
}

// strictNumber converts without string coercion, so "5" == 5 compares
// numerically only when one side already is a number and the other parses.
func strictNumber(v interface{}) (float64, error) {
	switch t := v.(type) {
	case float64:
		return t, nil
	case string:
		var f float64
		if _, err := fmt.Sscanf(strings.TrimSpace(t), "%g", &f); err != nil {
			return 0, err
		}
		return f, nil
	}
	return 0, fmt.Errorf("not numeric")
}

func compare(op tokenKind, a, b interface{}) (interface{}, error) {
	as, aok := a.(string)
	bs, bok := b.(string)
	if aok && bok {
		switch op {
		case tokLt:
			return as < bs, nil
		case tokLtEq:
			return as <= bs, nil
		case tokGt:
			return as > bs, nil
		default:
			return as >= bs, nil
		}
	}
	af, err := asNumber(a)
	if err != nil {
		return nil, err
	}
	bf, err := asNumber(b)
	if err != nil {
		return nil, err
	}
	switch op {
	case tokLt:
		return af < bf, nil
	case tokLtEq:
		return af <= bf, nil
	case tokGt:
		return af > bf, nil
	default:
		return af >= bf, nil
	}
}

func typeName(v interface{}) string {
	switch v.(type) {
	case nil:
		return "undefined"
	case string:
		return "string"
	case float64:
		return "number"
	case bool:
		return "boolean"
	case []interface{}:
		return "list"
	}
	return fmt.Sprintf("%T", v)
}
