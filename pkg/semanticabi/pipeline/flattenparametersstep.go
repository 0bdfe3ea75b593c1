package pipeline

import (
	"github.com/hyperarc/semanticabi/pkg/semanticabi/metadata"
	"github.com/hyperarc/semanticabi/pkg/semanticabi/schema"
)

// FlattenParametersStep appends one column per non-array leaf parameter of the previous step's
// item (its inputs, and its outputs too if it's a function), and sets each row's value by
// navigating the item's decoded result.
type FlattenParametersStep struct {
	SubsequentStep
	schema    schema.AbiSchema
	flattener *ParameterFlattener
}

func NewFlattenParametersStep(previous Step) (*FlattenParametersStep, error) {
	flattener := NewParameterFlattener(previous.AbiItem(), DefaultFlattenPredicate{})

	newSchema, err := previous.Schema().WithColumns(flattener.DatasetColumns(), false)
	if err != nil {
		return nil, err
	}

	s := &FlattenParametersStep{schema: newSchema, flattener: flattener}
	s.SubsequentStep = NewSubsequentStep(previous, s.innerTransformItem, nil)
	return s, nil
}

func (s *FlattenParametersStep) Schema() schema.AbiSchema { return s.schema }

func (s *FlattenParametersStep) innerTransformItem(
	block *metadata.EthBlock,
	transaction *metadata.EthTransaction,
	item TransformItem,
	previousData map[string]any,
	_ int,
) (map[string]any, error) {
	decoded, err := item.DecodedResult()
	if err != nil {
		return nil, err
	}

	row := cloneRow(previousData)
	for _, fp := range s.flattener.Parameters() {
		v, err := fp.FlattenedValue(decoded)
		if err != nil {
			return nil, err
		}
		row[fp.FinalColumnName()] = v
	}
	return row, nil
}
