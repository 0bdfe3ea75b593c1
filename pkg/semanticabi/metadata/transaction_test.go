package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPositiveTransferablesIncludesInternalAndPrimaryValue(t *testing.T) {
	traces, err := NewGethTraces(Ethereum, 100, "0xblock", []string{"0xtx1"}, []GethTraceJSON{
		{
			From:  "0xfrom000000000000000000000000000000from1",
			To:    "0xto0000000000000000000000000000000000to1",
			Value: "0xde0b6b3a7640000",
			Type:  "CALL",
			Calls: []GethTraceJSON{
				{
					From:  "0xto0000000000000000000000000000000000to1",
					To:    "0xsub000000000000000000000000000000sub1",
					Value: "0x2386f26fc10000",
					Type:  "CALL",
				},
			},
		},
	})
	require.NoError(t, err)

	transactionTraces, ok := traces.Traces("0xtx1")
	require.True(t, ok)

	raw := RawTransactionJSON{
		Hash:  "0xtx1",
		From:  "0xfrom000000000000000000000000000000from1",
		To:    "0xto0000000000000000000000000000000000to1",
		Value: "0xde0b6b3a7640000",
	}
	receipt := &EthReceipt{TransactionHash: "0xtx1", Status: "0x1"}

	tx := NewEthTransaction(Ethereum, raw, receipt, transactionTraces)

	transferables := tx.PositiveTransferables()
	require.Len(t, transferables, 2)
	assert.Equal(t, TransferInternal, transferables[0].TransferType())
	assert.Equal(t, TransferPrimary, transferables[1].TransferType())
	assert.Equal(t, tx.FromAddress(), transferables[1].FromAddress())
}

func TestPositiveTransferablesEmptyWhenNoValueMoved(t *testing.T) {
	raw := RawTransactionJSON{Hash: "0xtx2", From: "0xfrom000000000000000000000000000000from2", To: "0xto0000000000000000000000000000000000to2", Value: "0x0"}
	receipt := &EthReceipt{TransactionHash: "0xtx2", Status: "0x1"}

	tx := NewEthTransaction(Ethereum, raw, receipt, nil)
	assert.Empty(t, tx.PositiveTransferables())
}
