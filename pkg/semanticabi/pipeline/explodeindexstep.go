package pipeline

import (
	"github.com/hyperarc/semanticabi/pkg/semanticabi/column"
	"github.com/hyperarc/semanticabi/pkg/semanticabi/metadata"
	"github.com/hyperarc/semanticabi/pkg/semanticabi/schema"
)

const explodeIndexColumnName = "explodeIndex"

// ExplodeIndexStep appends the row's position within the exploded array it came from, so
// downstream consumers can recover the original array ordering. It's always present, but is only
// ever non-zero for items with an @explode annotation.
type ExplodeIndexStep struct {
	SubsequentStep
	schema schema.AbiSchema
}

func NewExplodeIndexStep(previous Step) (*ExplodeIndexStep, error) {
	newSchema, err := previous.Schema().WithColumns([]column.Column{column.Uint16(explodeIndexColumnName)}, false)
	if err != nil {
		return nil, err
	}

	s := &ExplodeIndexStep{schema: newSchema}
	s.SubsequentStep = NewSubsequentStep(previous, s.innerTransformItem, nil)
	return s, nil
}

func (s *ExplodeIndexStep) Schema() schema.AbiSchema { return s.schema }

func (s *ExplodeIndexStep) innerTransformItem(
	_ *metadata.EthBlock,
	_ *metadata.EthTransaction,
	_ TransformItem,
	previousData map[string]any,
	rowIndex int,
) (map[string]any, error) {
	row := cloneRow(previousData)
	row[explodeIndexColumnName] = uint16(rowIndex)
	return row, nil
}
