package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperarc/semanticabi/pkg/semanticabi/metadata"
)

func TestTokenTransferStepIncludesNativeValueMovements(t *testing.T) {
	traces, err := metadata.NewGethTraces(metadata.Ethereum, 100, "0xblock", []string{"0xtx1"}, []metadata.GethTraceJSON{
		{
			From:  "0xfrom000000000000000000000000000000from1",
			To:    "0xto0000000000000000000000000000000000to1",
			Value: "0xde0b6b3a7640000",
			Type:  "CALL",
			Calls: []metadata.GethTraceJSON{
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

	raw := metadata.RawTransactionJSON{
		Hash:  "0xtx1",
		From:  "0xfrom000000000000000000000000000000from1",
		To:    "0xto0000000000000000000000000000000000to1",
		Value: "0xde0b6b3a7640000",
	}
	receipt := &metadata.EthReceipt{TransactionHash: "0xtx1", Status: "0x1"}
	transaction := metadata.NewEthTransaction(metadata.Ethereum, raw, receipt, transactionTraces)

	step := NewTokenTransferStep()
	rows, err := Transform(step, nil, transaction)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	for _, row := range rows {
		assert.Equal(t, metadata.TokenEth.Code, row["tokenType"])
		assert.Nil(t, row["tokenId"])
	}
}

func TestTokenTransferStepEmptyWhenNoValueMoved(t *testing.T) {
	raw := metadata.RawTransactionJSON{Hash: "0xtx2", From: "0xfrom000000000000000000000000000000from2", To: "0xto0000000000000000000000000000000000to2", Value: "0x0"}
	receipt := &metadata.EthReceipt{TransactionHash: "0xtx2", Status: "0x1"}
	transaction := metadata.NewEthTransaction(metadata.Ethereum, raw, receipt, nil)

	step := NewTokenTransferStep()
	rows, err := Transform(step, nil, transaction)
	require.NoError(t, err)
	assert.Empty(t, rows)
}
