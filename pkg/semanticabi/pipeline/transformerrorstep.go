package pipeline

import (
	"github.com/hyperarc/semanticabi/pkg/semanticabi/column"
	"github.com/hyperarc/semanticabi/pkg/semanticabi/metadata"
	"github.com/hyperarc/semanticabi/pkg/semanticabi/schema"
)

// TransformErrorStep is the last step of every primary item's pipeline: it appends the
// transform_error column every chain carries. Transform itself fills the column's value straight
// off the item, so this step's own row-transform is a pure passthrough.
type TransformErrorStep struct {
	SubsequentStep
	schema schema.AbiSchema
}

func NewTransformErrorStep(previous Step) (*TransformErrorStep, error) {
	newSchema, err := previous.Schema().WithColumns([]column.Column{transformErrorColumn()}, false)
	if err != nil {
		return nil, err
	}

	s := &TransformErrorStep{schema: newSchema}
	s.SubsequentStep = NewSubsequentStep(previous, s.innerTransformItem, nil)
	return s, nil
}

func (s *TransformErrorStep) Schema() schema.AbiSchema { return s.schema }

func (s *TransformErrorStep) innerTransformItem(
	_ *metadata.EthBlock,
	_ *metadata.EthTransaction,
	_ TransformItem,
	previousData map[string]any,
	_ int,
) (map[string]any, error) {
	return cloneRow(previousData), nil
}
