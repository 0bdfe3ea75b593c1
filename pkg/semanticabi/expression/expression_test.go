package expression

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperarc/semanticabi/pkg/semanticabi/transformerror"
)

func TestEvaluateArithmetic(t *testing.T) {
	tests := []struct {
		name     string
		expr     string
		vars     map[string]any
		expected any
	}{
		{"addition", "1 + 2", nil, int64(3)},
		{"precedence", "2 + 3 * 4", nil, int64(14)},
		{"parens", "(2 + 3) * 4", nil, int64(20)},
		{"pow right assoc", "2 ** 3 ** 2", nil, float64(512)},
		{"division is float", "7 / 2", nil, float64(3.5)},
		{"unary minus", "-5 + 3", nil, int64(-2)},
		{"variable lookup", "amount * 2", map[string]any{"amount": int64(21)}, int64(42)},
		{"concat strings", "'foo' || 'bar'", nil, "foobar"},
		{"concat numbers sums", "1 || 2", nil, int64(3)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := Parse(tt.expr)
			require.NoError(t, err)
			result, err := e.Evaluate(tt.vars)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestEvaluateBigIntArithmeticStaysExact(t *testing.T) {
	// a uint256-sized value, well beyond int64 range
	huge, ok := new(big.Int).SetString("115792089237316195423570985008687907853269984665640564039457", 10)
	require.True(t, ok)

	e, err := Parse("value * 2")
	require.NoError(t, err)
	result, err := e.Evaluate(map[string]any{"value": huge})
	require.NoError(t, err)

	want := new(big.Int).Mul(huge, big.NewInt(2))
	assert.Equal(t, want, result)
}

func TestEvaluateBigIntWithInt64MixStaysExact(t *testing.T) {
	value := new(big.Int).SetInt64(1000)

	e, err := Parse("value - fee")
	require.NoError(t, err)
	result, err := e.Evaluate(map[string]any{"value": value, "fee": int64(40)})
	require.NoError(t, err)

	assert.Equal(t, big.NewInt(960), result)
}

func TestEvaluateUnknownVariableIsTransformError(t *testing.T) {
	e, err := Parse("missing + 1")
	require.NoError(t, err)
	_, err = e.Evaluate(nil)
	require.Error(t, err)
	assert.True(t, transformerror.Is(err))
}

func TestEvaluateDivisionByZeroIsTransformError(t *testing.T) {
	e, err := Parse("amount / divisor")
	require.NoError(t, err)
	_, err = e.Evaluate(map[string]any{"amount": int64(10), "divisor": int64(0)})
	require.Error(t, err)
	assert.True(t, transformerror.Is(err))
	assert.Contains(t, err.Error(), "division by zero")
}

func TestColumnNames(t *testing.T) {
	e, err := Parse("(a + b) * c - a")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b", "c"}, e.ColumnNames())
}
