package expression

import (
	"fmt"
	"math"
	"math/big"
	"strconv"

	"github.com/hyperarc/semanticabi/pkg/semanticabi/transformerror"
)

func parseNumberLiteral(text string) (any, error) {
	if n, err := strconv.ParseInt(text, 10, 64); err == nil {
		return n, nil
	}
	if f, err := strconv.ParseFloat(text, 64); err == nil {
		return f, nil
	}
	return nil, fmt.Errorf("could not convert %q to a number", text)
}

func evaluate(node Node, variables map[string]any) (any, error) {
	switch n := node.(type) {
	case NumberNode:
		return n.Value, nil
	case StringNode:
		return n.Value, nil
	case VariableNode:
		v, ok := variables[n.Name]
		if !ok || v == nil {
			return nil, transformerror.New("unknown variable: %s", n.Name)
		}
		return v, nil
	case UnaryNode:
		v, err := evaluate(n.Operand, variables)
		if err != nil {
			return nil, err
		}
		return negate(v)
	case BinaryNode:
		left, err := evaluate(n.Left, variables)
		if err != nil {
			return nil, err
		}
		right, err := evaluate(n.Right, variables)
		if err != nil {
			return nil, err
		}
		return applyBinary(n.Op, left, right)
	default:
		return nil, fmt.Errorf("unknown expression node %T", node)
	}
}

func negate(v any) (any, error) {
	switch t := v.(type) {
	case int64:
		return -t, nil
	case float64:
		return -t, nil
	case *big.Int:
		return new(big.Int).Neg(t), nil
	default:
		return nil, fmt.Errorf("cannot negate value of type %T", v)
	}
}

func applyBinary(op string, left, right any) (any, error) {
	if op == "||" {
		return concat(left, right)
	}

	lf, lok := asFloat(left)
	rf, rok := asFloat(right)
	if !lok || !rok {
		return nil, fmt.Errorf("operator %s requires numeric operands, got %T and %T", op, left, right)
	}

	switch op {
	case "+":
		return addNumeric(left, right, lf, rf)
	case "-":
		return subNumeric(left, right, lf, rf)
	case "*":
		return mulNumeric(left, right, lf, rf)
	case "/":
		if rf == 0 {
			return nil, transformerror.New("division by zero")
		}
		return lf / rf, nil
	case "**":
		return powNumeric(lf, rf)
	default:
		return nil, fmt.Errorf("unknown operator: %s", op)
	}
}

// concat mirrors Python's polymorphic `+`: sums two numbers, concatenates two strings. Mixed
// operand types are an error, matching the TypeError Python would raise.
func concat(left, right any) (any, error) {
	ls, lIsStr := left.(string)
	rs, rIsStr := right.(string)
	if lIsStr && rIsStr {
		return ls + rs, nil
	}

	lf, lok := asFloat(left)
	rf, rok := asFloat(right)
	if lok && rok {
		return addNumeric(left, right, lf, rf)
	}

	return nil, fmt.Errorf("cannot concatenate %T with %T", left, right)
}

func asFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case int64:
		return float64(t), true
	case float64:
		return t, true
	case *big.Int:
		f := new(big.Float).SetInt(t)
		result, _ := f.Float64()
		return result, true
	default:
		return 0, false
	}
}

// asBigInt reports whether v can participate in exact integer arithmetic, widening an int64 up
// to *big.Int so a uint256-sized flattened parameter never loses precision against a narrower one.
func asBigInt(v any) (*big.Int, bool) {
	switch t := v.(type) {
	case int64:
		return big.NewInt(t), true
	case *big.Int:
		return t, true
	default:
		return nil, false
	}
}

func bothBigInt(left, right any) (*big.Int, *big.Int, bool) {
	lb, lok := asBigInt(left)
	rb, rok := asBigInt(right)
	if !lok || !rok {
		return nil, nil, false
	}
	return lb, rb, true
}

// exactResult keeps an exact result as an int64 when both operands were int64 and it fits, and
// returns the *big.Int otherwise.
func exactResult(left, right any, result *big.Int) any {
	_, lInt := left.(int64)
	_, rInt := right.(int64)
	if lInt && rInt && result.IsInt64() {
		return result.Int64()
	}
	return result
}

func addNumeric(left, right any, lf, rf float64) (any, error) {
	if lb, rb, ok := bothBigInt(left, right); ok {
		return exactResult(left, right, new(big.Int).Add(lb, rb)), nil
	}
	return lf + rf, nil
}

func subNumeric(left, right any, lf, rf float64) (any, error) {
	if lb, rb, ok := bothBigInt(left, right); ok {
		return exactResult(left, right, new(big.Int).Sub(lb, rb)), nil
	}
	return lf - rf, nil
}

func mulNumeric(left, right any, lf, rf float64) (any, error) {
	if lb, rb, ok := bothBigInt(left, right); ok {
		return exactResult(left, right, new(big.Int).Mul(lb, rb)), nil
	}
	return lf * rf, nil
}

func powNumeric(lf, rf float64) (any, error) {
	return math.Pow(lf, rf), nil
}
