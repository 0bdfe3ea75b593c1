package column

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumericColumnTransformCoercesFloatColumnsToFloat64(t *testing.T) {
	col := Float64("value")

	v, err := col.Transform(map[string]any{"value": new(big.Int).SetInt64(2000)})
	require.NoError(t, err)
	assert.Equal(t, float64(2000), v)

	v, err = col.Transform(map[string]any{"value": int64(7)})
	require.NoError(t, err)
	assert.Equal(t, float64(7), v)

	v, err = col.Transform(map[string]any{"value": 3.5})
	require.NoError(t, err)
	assert.Equal(t, 3.5, v)
}

func TestNumericColumnTransformLeavesWideIntegersAsBigInt(t *testing.T) {
	col := Int64("amount")

	huge := new(big.Int).SetInt64(1000)
	v, err := col.Transform(map[string]any{"amount": huge})
	require.NoError(t, err)
	assert.Equal(t, huge, v)
}

func TestNumericColumnTransformCoercesInt256ToDecimalString(t *testing.T) {
	col := Int256("amount")

	huge, ok := new(big.Int).SetString("115792089237316195423570985008687907853269984665640564039457", 10)
	require.True(t, ok)

	v, err := col.Transform(map[string]any{"amount": huge})
	require.NoError(t, err)
	assert.Equal(t, huge.String(), v)
}

func TestNumericColumnTransformNilValuePassesThrough(t *testing.T) {
	col := Float64("value")

	v, err := col.Transform(map[string]any{})
	require.NoError(t, err)
	assert.Nil(t, v)
}
