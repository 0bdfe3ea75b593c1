package abi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func transferEventInputs(t *testing.T) Parameters {
	t.Helper()
	inputs, err := ParametersFromJSON([]ParameterJSON{
		{Name: "from", Type: "address", Indexed: true},
		{Name: "to", Type: "address", Indexed: true},
		{Name: "value", Type: "uint256", Indexed: false},
	})
	require.NoError(t, err)
	return inputs
}

func TestEventHashMatchesKnownTransferTopic(t *testing.T) {
	event := NewEvent("Transfer", transferEventInputs(t), nil)
	assert.Equal(t, "ddf252ad1be2c89b69c2b068fc378daa952ba7f163c4a11628f55a4df523b3ef", event.Hash())
	assert.Equal(t, 2, event.NumIndexed())
}

func TestEventIsOf(t *testing.T) {
	event := NewEvent("Transfer", transferEventInputs(t), nil)

	topics := []string{
		"0x" + event.Hash(),
		"0x000000000000000000000000aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa",
		"0x000000000000000000000000bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb",
	}

	assert.True(t, event.IsOf(topics, true))
	assert.False(t, event.IsOf(topics[:2], true))
}

func TestEventDecode(t *testing.T) {
	event := NewEvent("Transfer", transferEventInputs(t), nil)

	topics := []string{
		"0x" + event.Hash(),
		"0x000000000000000000000000aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa",
		"0x000000000000000000000000bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb",
	}
	data := "0x00000000000000000000000000000000000000000000000000000000000003e8"

	decoded, err := event.Decode(topics, data)
	require.NoError(t, err)

	json := decoded.ToJSON()
	assert.Equal(t, "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", json["from"])
	assert.Equal(t, "0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb", json["to"])
}

func TestFunctionHashIsFirstFourBytes(t *testing.T) {
	inputs, err := ParametersFromJSON([]ParameterJSON{
		{Name: "to", Type: "address"},
		{Name: "amount", Type: "uint256"},
	})
	require.NoError(t, err)
	outputs, err := ParametersFromJSON([]ParameterJSON{{Name: "success", Type: "bool"}})
	require.NoError(t, err)

	fn := NewFunction("transfer", TypeFunction, inputs, outputs, nil)
	assert.Len(t, fn.Hash(), 8)
}
