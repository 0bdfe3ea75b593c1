package pipeline

import (
	"github.com/hyperarc/semanticabi/pkg/semanticabi/abierr"
	"github.com/hyperarc/semanticabi/pkg/semanticabi/column"
	"github.com/hyperarc/semanticabi/pkg/semanticabi/metadata"
	"github.com/hyperarc/semanticabi/pkg/semanticabi/schema"
	"github.com/hyperarc/semanticabi/pkg/semanticabi/semantic"
)

// ExpressionListStep evaluates an item's `@expressions` entries in order, each one able to
// reference any column produced so far, including one evaluated earlier in the same list.
type ExpressionListStep struct {
	SubsequentStep
	schema      schema.AbiSchema
	expressions []*semantic.NamedExpression
}

func NewExpressionListStep(previous Step, expressions []*semantic.NamedExpression) (*ExpressionListStep, error) {
	newSchema := previous.Schema()
	for _, expr := range expressions {
		for _, name := range expr.ColumnNames() {
			if !newSchema.HasColumn(name) {
				return nil, abierr.New("unknown column referenced in expression %q: %s", expr.Name(), name)
			}
		}
		var err error
		newSchema, err = newSchema.WithColumns([]column.Column{expr.DatasetColumn()}, true)
		if err != nil {
			return nil, err
		}
	}

	s := &ExpressionListStep{schema: newSchema, expressions: expressions}
	s.SubsequentStep = NewSubsequentStep(previous, s.innerTransformItem, func() bool { return len(expressions) > 0 })
	return s, nil
}

func (s *ExpressionListStep) Schema() schema.AbiSchema { return s.schema }

func (s *ExpressionListStep) innerTransformItem(
	_ *metadata.EthBlock,
	_ *metadata.EthTransaction,
	_ TransformItem,
	previousData map[string]any,
	_ int,
) (map[string]any, error) {
	row := cloneRow(previousData)
	for _, expr := range s.expressions {
		v, err := expr.Evaluate(row)
		if err != nil {
			return nil, err
		}
		row[expr.Name()] = v
	}
	return row, nil
}
