// Package value holds small conversion helpers shared by the column transforms and the
// pipeline steps: turning the hex-encoded strings that come back from JSON-RPC into the
// Go-native ints and floats the rest of the compiler works with.
package value

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"
)

// HexToInt converts a "0x..."-prefixed hex string to an int64. Values that are already
// numeric (as can happen with fields decoded upstream) are passed through unchanged.
func HexToInt(v any) (int64, error) {
	switch t := v.(type) {
	case string:
		trimmed := strings.TrimPrefix(t, "0x")
		if trimmed == "" {
			return 0, nil
		}
		n, ok := new(big.Int).SetString(trimmed, 16)
		if !ok {
			return 0, fmt.Errorf("could not parse hex int %q", t)
		}
		return n.Int64(), nil
	case int64:
		return t, nil
	case int:
		return int64(t), nil
	default:
		return 0, fmt.Errorf("cannot convert %T to int", v)
	}
}

// HexToBigInt is the arbitrary-precision counterpart of HexToInt, used for uint256/int256
// parameter values that don't fit in an int64.
func HexToBigInt(v any) (*big.Int, error) {
	switch t := v.(type) {
	case string:
		trimmed := strings.TrimPrefix(t, "0x")
		if trimmed == "" {
			return big.NewInt(0), nil
		}
		n, ok := new(big.Int).SetString(trimmed, 16)
		if !ok {
			return nil, fmt.Errorf("could not parse hex int %q", t)
		}
		return n, nil
	case *big.Int:
		return t, nil
	case int64:
		return big.NewInt(t), nil
	default:
		return nil, fmt.Errorf("cannot convert %T to big.Int", v)
	}
}

// HexToFloat converts a hex string or a numeric value to a float64.
func HexToFloat(v any) (float64, error) {
	if v == nil {
		return 0, nil
	}

	switch t := v.(type) {
	case string:
		trimmed := strings.TrimPrefix(t, "0x")
		if trimmed == "" {
			return 0, nil
		}
		n, ok := new(big.Int).SetString(trimmed, 16)
		if !ok {
			return 0, fmt.Errorf("could not parse hex float %q", t)
		}
		f := new(big.Float).SetInt(n)
		result, _ := f.Float64()
		return result, nil
	case int64:
		return float64(t), nil
	case float64:
		return t, nil
	default:
		return 0, fmt.Errorf("cannot convert %T to float", v)
	}
}

// StringToNumber parses a numeric literal the way the expression evaluator needs it: try an
// integer first, fall back to a float, and fail only if neither parse succeeds.
func StringToNumber(s string) (any, error) {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f, nil
	}
	return nil, fmt.Errorf("could not convert %q to a number", s)
}
