package pipeline

import (
	"github.com/samber/lo"

	"github.com/hyperarc/semanticabi/pkg/semanticabi/column"
	"github.com/hyperarc/semanticabi/pkg/semanticabi/metadata"
	"github.com/hyperarc/semanticabi/pkg/semanticabi/schema"
	"github.com/hyperarc/semanticabi/pkg/semanticabi/value"
)

// defaultColumnExtractor pulls one default column's raw value out of a block/transaction/item
// triple, before the column's own Transform does its typing.
type defaultColumnExtractor func(block *metadata.EthBlock, transaction *metadata.EthTransaction, item TransformItem) (any, error)

type defaultColumnSpec struct {
	column    column.Column
	extractor defaultColumnExtractor
}

func defaultColumnSpecs() []defaultColumnSpec {
	return []defaultColumnSpec{
		{
			column: column.NewEnum("chain"),
			extractor: func(block *metadata.EthBlock, transaction *metadata.EthTransaction, item TransformItem) (any, error) {
				return string(block.Chain), nil
			},
		},
		{
			column: column.NewBlockHash("blockHash"),
			extractor: func(block *metadata.EthBlock, transaction *metadata.EthTransaction, item TransformItem) (any, error) {
				return block.JSON.Block.Hash, nil
			},
		},
		{
			column: column.Uint32("blockNumber", column.WithHigherOrderType(column.NumericIndex)),
			extractor: func(block *metadata.EthBlock, transaction *metadata.EthTransaction, item TransformItem) (any, error) {
				return block.Number()
			},
		},
		{
			column: column.Int64("blockTimestamp"),
			extractor: func(block *metadata.EthBlock, transaction *metadata.EthTransaction, item TransformItem) (any, error) {
				return block.Timestamp()
			},
		},
		{
			column: column.NewTransactionHash("transactionHash"),
			extractor: func(block *metadata.EthBlock, transaction *metadata.EthTransaction, item TransformItem) (any, error) {
				return transaction.Hash(), nil
			},
		},
		{
			column: column.NewAddressHash("transactionFrom"),
			extractor: func(block *metadata.EthBlock, transaction *metadata.EthTransaction, item TransformItem) (any, error) {
				return transaction.FromAddress(), nil
			},
		},
		{
			column: column.NewAddressHash("transactionTo", column.Nullable()),
			extractor: func(block *metadata.EthBlock, transaction *metadata.EthTransaction, item TransformItem) (any, error) {
				// a transaction with neither a recipient nor a created contract has a nil transactionTo
				to, err := transaction.ToAddress()
				if err != nil {
					return nil, nil
				}
				return to, nil
			},
		},
		{
			column: column.NewAddressHash("contractAddress"),
			extractor: func(block *metadata.EthBlock, transaction *metadata.EthTransaction, item TransformItem) (any, error) {
				return item.ContractAddress(), nil
			},
		},
		{
			column: column.Uint8("status", column.WithHigherOrderType(column.NumericEnum)),
			extractor: func(block *metadata.EthBlock, transaction *metadata.EthTransaction, item TransformItem) (any, error) {
				return value.HexToInt(transaction.Receipt().Status)
			},
		},
		{
			column: column.Float64("gasUsed", column.WithHigherOrderType(column.NumericCurrency)),
			extractor: func(block *metadata.EthBlock, transaction *metadata.EthTransaction, item TransformItem) (any, error) {
				return value.HexToFloat(transaction.Receipt().GasUsed)
			},
		},
		{
			column: column.NewEnum("itemType"),
			extractor: func(block *metadata.EthBlock, transaction *metadata.EthTransaction, item TransformItem) (any, error) {
				return item.ItemType(), nil
			},
		},
		{
			column: column.NewString("internalIndex"),
			extractor: func(block *metadata.EthBlock, transaction *metadata.EthTransaction, item TransformItem) (any, error) {
				return item.InternalIndex(), nil
			},
		},
	}
}

// DefaultColumnsStep appends the fixed set of columns every row carries regardless of which
// item produced it: chain/block/transaction identity, the item's own contract address and kind,
// and its position within the block.
type DefaultColumnsStep struct {
	SubsequentStep
	schema schema.AbiSchema
	specs  []defaultColumnSpec
}

func NewDefaultColumnsStep(previous Step) (*DefaultColumnsStep, error) {
	specs := defaultColumnSpecs()
	cols := lo.Map(specs, func(spec defaultColumnSpec, _ int) column.Column { return spec.column })

	newSchema, err := previous.Schema().WithColumns(cols, false)
	if err != nil {
		return nil, err
	}

	s := &DefaultColumnsStep{schema: newSchema, specs: specs}
	s.SubsequentStep = NewSubsequentStep(previous, s.innerTransformItem, nil)
	return s, nil
}

func (s *DefaultColumnsStep) Schema() schema.AbiSchema { return s.schema }

func (s *DefaultColumnsStep) innerTransformItem(
	block *metadata.EthBlock,
	transaction *metadata.EthTransaction,
	item TransformItem,
	previousData map[string]any,
	_ int,
) (map[string]any, error) {
	row := cloneRow(previousData)
	for _, spec := range s.specs {
		v, err := spec.extractor(block, transaction, item)
		if err != nil {
			return nil, err
		}
		row[spec.column.Name()] = v
	}
	return row, nil
}
