package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErigonTraceToAddressSuccessfulCreation(t *testing.T) {
	trace := NewErigonTrace(Ethereum, ErigonTraceJSON{
		Action: map[string]any{"init": "0x6080", "from": "0xAAA"},
		Result: map[string]any{"address": "0xBEEF000000000000000000000000000000BEEF"},
		Type:   "call",
	})

	assert.Equal(t, "0xbeef000000000000000000000000000000beef", trace.ToAddress())
}

func TestErigonTraceToAddressFailedCreation(t *testing.T) {
	trace := NewErigonTrace(Ethereum, ErigonTraceJSON{
		Action: map[string]any{"init": "0x6080", "from": "0xAAA"},
		Error:  "out of gas",
		Type:   "call",
	})

	assert.Equal(t, "0x0000000000000000000000000000000000000000", trace.ToAddress())
}

func TestErigonTraceToAddressPlainCall(t *testing.T) {
	trace := NewErigonTrace(Ethereum, ErigonTraceJSON{
		Action: map[string]any{"from": "0xAAA", "to": "0xCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCC"},
		Type:   "call",
	})

	assert.Equal(t, "0xcccccccccccccccccccccccccccccccccccccccc", trace.ToAddress())
}

func TestHashTraceAddress(t *testing.T) {
	assert.Equal(t, "0_3_1", HashTraceAddress([]int{0, 3, 1}))
	assert.Equal(t, "", HashTraceAddress(nil))
}
