package transform

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperarc/semanticabi/pkg/semanticabi/metadata"
	"github.com/hyperarc/semanticabi/pkg/semanticabi/semantic"
)

const transferEventHash = "0xddf252ad1be2c89b69c2b068fc378daa952ba7f163c4a11628f55a4df523b3ef"

func transferDoc() semantic.SemanticAbiJSON {
	return semantic.SemanticAbiJSON{
		Metadata: semantic.MetadataJSON{Chains: []string{"ethereum"}},
		Events: []semantic.ItemJSON{
			{
				Type:      "event",
				Name:      "Transfer",
				IsPrimary: true,
				Inputs: []semantic.ParameterJSON{
					{Name: "from", Type: "address", Indexed: true},
					{Name: "to", Type: "address", Indexed: true},
					{Name: "value", Type: "uint256"},
				},
			},
		},
	}
}

func blockWithTransferLog(t *testing.T) *metadata.EthBlock {
	t.Helper()

	raw := metadata.RawTransactionJSON{
		Hash: "0xTx1",
		From: "0xFrom000000000000000000000000000000From1",
	}
	receipt := metadata.EthReceipt{
		TransactionHash: "0xtx1",
		Status:          "0x1",
		GasUsed:         "0x5208",
		Logs: []metadata.EthLog{
			{
				Address: "0xCoNtRaCt00000000000000000000000000000000",
				Topics: []string{
					transferEventHash,
					"0x000000000000000000000000aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa",
					"0x000000000000000000000000bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb",
				},
				Data:     "0x00000000000000000000000000000000000000000000000000000000000003e8",
				LogIndex: "0x0",
			},
		},
	}

	blockJSON := metadata.EthBlockJSON{
		Block: metadata.BlockInfoJSON{
			Hash:         "0xblock",
			Number:       "0x64",
			Timestamp:    "0x5",
			Transactions: []metadata.RawTransactionJSON{raw},
		},
		Receipts: []metadata.EthReceipt{receipt},
	}

	return metadata.NewEthBlock(metadata.Ethereum, blockJSON)
}

func TestSemanticTransformerTransformsMatchingLog(t *testing.T) {
	abi, err := semantic.FromJSON(transferDoc())
	require.NoError(t, err)

	transformer, err := New(abi)
	require.NoError(t, err)

	block := blockWithTransferLog(t)
	rows, err := transformer.Transform(block)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	assert.Equal(t, "event", rows[0]["itemType"])
	assert.Equal(t, "0xcontract00000000000000000000000000000000", rows[0]["contractAddress"])
	assert.Nil(t, rows[0]["transform_error"])
}

func TestSemanticTransformerSkipsOtherChains(t *testing.T) {
	doc := transferDoc()
	doc.Metadata.Chains = []string{"base"}

	abi, err := semantic.FromJSON(doc)
	require.NoError(t, err)

	transformer, err := New(abi)
	require.NoError(t, err)

	block := blockWithTransferLog(t)
	rows, err := transformer.Transform(block)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestSemanticTransformerSchemaIncludesDefaultAndFlattenedColumns(t *testing.T) {
	abi, err := semantic.FromJSON(transferDoc())
	require.NoError(t, err)

	transformer, err := New(abi)
	require.NoError(t, err)

	assert.True(t, transformer.Schema().HasColumn("from"))
	assert.True(t, transformer.Schema().HasColumn("to"))
	assert.True(t, transformer.Schema().HasColumn("value"))
	assert.True(t, transformer.Schema().HasColumn("transactionHash"))
	assert.True(t, transformer.Schema().HasColumn("transform_error"))
}

func batchDoc() semantic.SemanticAbiJSON {
	return semantic.SemanticAbiJSON{
		Metadata: semantic.MetadataJSON{Chains: []string{"ethereum"}},
		Events: []semantic.ItemJSON{
			{
				Type:      "event",
				Name:      "Batch",
				IsPrimary: true,
				Explode:   []string{"amounts"},
				Inputs: []semantic.ParameterJSON{
					{Name: "amounts", Type: "uint256[]"},
				},
			},
		},
	}
}

// amountsArrayData ABI-encodes a single dynamic uint256[] parameter: a head word pointing at the
// tail, a length word, then one word per element.
func amountsArrayData(values ...int) string {
	word := func(n int) string { return fmt.Sprintf("%064x", n) }
	data := "0x" + word(32) + word(len(values))
	for _, v := range values {
		data += word(v)
	}
	return data
}

func TestSemanticTransformerExplodesArrayIntoOneRowPerElement(t *testing.T) {
	abi, err := semantic.FromJSON(batchDoc())
	require.NoError(t, err)

	transformer, err := New(abi)
	require.NoError(t, err)

	eventHash := "0x" + abi.PrimaryEvents()[0].Hash()

	raw := metadata.RawTransactionJSON{Hash: "0xTx1", From: "0xFrom000000000000000000000000000000From1"}
	receipt := metadata.EthReceipt{
		TransactionHash: "0xtx1",
		Status:          "0x1",
		GasUsed:         "0x5208",
		Logs: []metadata.EthLog{
			{
				Address:  "0xCoNtRaCt00000000000000000000000000000000",
				Topics:   []string{eventHash},
				Data:     amountsArrayData(10, 20, 30),
				LogIndex: "0x0",
			},
		},
	}

	blockJSON := metadata.EthBlockJSON{
		Block: metadata.BlockInfoJSON{
			Hash:         "0xblock",
			Number:       "0x64",
			Timestamp:    "0x5",
			Transactions: []metadata.RawTransactionJSON{raw},
		},
		Receipts: []metadata.EthReceipt{receipt},
	}
	block := metadata.NewEthBlock(metadata.Ethereum, blockJSON)

	rows, err := transformer.Transform(block)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	for i, row := range rows {
		assert.Equal(t, uint16(i), row["explodeIndex"])
		assert.Nil(t, row["transform_error"])
	}
	assert.Equal(t, "10", fmt.Sprint(rows[0]["amounts"]))
	assert.Equal(t, "20", fmt.Sprint(rows[1]["amounts"]))
	assert.Equal(t, "30", fmt.Sprint(rows[2]["amounts"]))
}

// twoUint256ArraysData ABI-encodes two dynamic uint256[] parameters: two head words pointing at
// their respective tails, then each tail's length word followed by its elements.
func twoUint256ArraysData(a, b []int) string {
	word := func(n int) string { return fmt.Sprintf("%064x", n) }

	firstTailOffset := 64
	secondTailOffset := firstTailOffset + 32 + 32*len(a)

	data := "0x" + word(firstTailOffset) + word(secondTailOffset)
	data += word(len(a))
	for _, v := range a {
		data += word(v)
	}
	data += word(len(b))
	for _, v := range b {
		data += word(v)
	}
	return data
}

func batchPairDoc() semantic.SemanticAbiJSON {
	return semantic.SemanticAbiJSON{
		Metadata: semantic.MetadataJSON{Chains: []string{"ethereum"}},
		Events: []semantic.ItemJSON{
			{
				Type:      "event",
				Name:      "OrdersFulfilled",
				IsPrimary: true,
				Explode:   []string{"offerAmounts", "considerationAmounts"},
				Inputs: []semantic.ParameterJSON{
					{Name: "offerAmounts", Type: "uint256[]"},
					{Name: "considerationAmounts", Type: "uint256[]"},
				},
			},
		},
	}
}

func TestSemanticTransformerExplodesMultiplePathsInLockstep(t *testing.T) {
	abi, err := semantic.FromJSON(batchPairDoc())
	require.NoError(t, err)

	transformer, err := New(abi)
	require.NoError(t, err)

	eventHash := "0x" + abi.PrimaryEvents()[0].Hash()

	raw := metadata.RawTransactionJSON{Hash: "0xTx1", From: "0xFrom000000000000000000000000000000From1"}
	receipt := metadata.EthReceipt{
		TransactionHash: "0xtx1",
		Status:          "0x1",
		GasUsed:         "0x5208",
		Logs: []metadata.EthLog{
			{
				Address:  "0xCoNtRaCt00000000000000000000000000000000",
				Topics:   []string{eventHash},
				Data:     twoUint256ArraysData([]int{10, 20, 30}, []int{1, 2, 3}),
				LogIndex: "0x0",
			},
		},
	}

	blockJSON := metadata.EthBlockJSON{
		Block: metadata.BlockInfoJSON{
			Hash:         "0xblock",
			Number:       "0x64",
			Timestamp:    "0x5",
			Transactions: []metadata.RawTransactionJSON{raw},
		},
		Receipts: []metadata.EthReceipt{receipt},
	}
	block := metadata.NewEthBlock(metadata.Ethereum, blockJSON)

	rows, err := transformer.Transform(block)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	for _, row := range rows {
		assert.Nil(t, row["transform_error"])
	}
	assert.Equal(t, "10", fmt.Sprint(rows[0]["offerAmounts"]))
	assert.Equal(t, "1", fmt.Sprint(rows[0]["considerationAmounts"]))
	assert.Equal(t, "20", fmt.Sprint(rows[1]["offerAmounts"]))
	assert.Equal(t, "2", fmt.Sprint(rows[1]["considerationAmounts"]))
	assert.Equal(t, "30", fmt.Sprint(rows[2]["offerAmounts"]))
	assert.Equal(t, "3", fmt.Sprint(rows[2]["considerationAmounts"]))
}

func TestSemanticTransformerExplodeReportsMismatchedLengths(t *testing.T) {
	abi, err := semantic.FromJSON(batchPairDoc())
	require.NoError(t, err)

	transformer, err := New(abi)
	require.NoError(t, err)

	eventHash := "0x" + abi.PrimaryEvents()[0].Hash()

	raw := metadata.RawTransactionJSON{Hash: "0xTx2", From: "0xFrom000000000000000000000000000000From2"}
	receipt := metadata.EthReceipt{
		TransactionHash: "0xtx2",
		Status:          "0x1",
		GasUsed:         "0x5208",
		Logs: []metadata.EthLog{
			{
				Address:  "0xCoNtRaCt00000000000000000000000000000000",
				Topics:   []string{eventHash},
				Data:     twoUint256ArraysData([]int{10, 20, 30}, []int{1, 2}),
				LogIndex: "0x0",
			},
		},
	}

	blockJSON := metadata.EthBlockJSON{
		Block: metadata.BlockInfoJSON{
			Hash:         "0xblock",
			Number:       "0x64",
			Timestamp:    "0x5",
			Transactions: []metadata.RawTransactionJSON{raw},
		},
		Receipts: []metadata.EthReceipt{receipt},
	}
	block := metadata.NewEthBlock(metadata.Ethereum, blockJSON)

	rows, err := transformer.Transform(block)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestSemanticTransformerEvaluatesItemExpressions(t *testing.T) {
	doc := transferDoc()
	doc.Events[0].Expressions = []semantic.ExpressionJSON{
		{Name: "doubled", Expression: "value * 2", Type: "double"},
	}

	abi, err := semantic.FromJSON(doc)
	require.NoError(t, err)

	transformer, err := New(abi)
	require.NoError(t, err)
	assert.True(t, transformer.Schema().HasColumn("doubled"))

	rows, err := transformer.Transform(blockWithTransferLog(t))
	require.NoError(t, err)
	require.Len(t, rows, 1)

	assert.Equal(t, float64(2000), rows[0]["doubled"])
}
