// Package pipeline implements the step chain a primary item (an event, a function, or the
// built-in token-transfer pseudo-item) is transformed through: an initial dispatch step finds
// the raw logs/traces that match the item, and each subsequent step appends columns to the
// running schema and enriches every row in lockstep, up through matching, exploding, and
// evaluating document-level expressions.
package pipeline

import (
	"github.com/hyperarc/semanticabi/pkg/semanticabi/column"
	"github.com/hyperarc/semanticabi/pkg/semanticabi/metadata"
	"github.com/hyperarc/semanticabi/pkg/semanticabi/schema"
	"github.com/hyperarc/semanticabi/pkg/semanticabi/semantic"
)

// TransformErrorColumnName is the schema column every step chain carries for an item's latched
// transform error. It's special-cased by Transform: unlike every other column, its value comes
// directly off the TransformItem rather than through a column.Column's own row lookup.
const TransformErrorColumnName = "transform_error"

// TransformItem is the log, trace, or token transfer a row (or set of exploded rows) was
// produced from. It lazily decodes itself once, and accumulates any errors raised while
// transforming its rows so a failure in one column doesn't abort the whole row.
type TransformItem interface {
	ContractAddress() string
	InternalIndex() string
	ItemType() string
	DecodedResult() (semantic.DecodedResult, error)
	AddTransformError(err error)
	HasTransformError() bool
	TransformError() string
}

type transformItemBase struct {
	decodeFn       func() (semantic.DecodedResult, error)
	decoded        semantic.DecodedResult
	decodeErr      error
	decodedOnce    bool
	transformErrs  []string
}

func newTransformItemBase(decodeFn func() (semantic.DecodedResult, error)) transformItemBase {
	return transformItemBase{decodeFn: decodeFn}
}

func (b *transformItemBase) DecodedResult() (semantic.DecodedResult, error) {
	if !b.decodedOnce {
		b.decodedOnce = true
		if b.decodeFn != nil {
			b.decoded, b.decodeErr = b.decodeFn()
		}
	}
	return b.decoded, b.decodeErr
}

func (b *transformItemBase) AddTransformError(err error) {
	b.transformErrs = append(b.transformErrs, err.Error())
}

func (b *transformItemBase) HasTransformError() bool { return len(b.transformErrs) > 0 }

func (b *transformItemBase) TransformError() string {
	out := ""
	for i, msg := range b.transformErrs {
		if i > 0 {
			out += ", "
		}
		out += msg
	}
	return out
}

// ItemRows pairs a TransformItem with the data row(s) produced for it so far: usually one row,
// but more than one once ExplodeStep has fanned an array parameter out, or zero once every
// candidate row for the item has failed a later step.
type ItemRows struct {
	Item TransformItem
	Rows []map[string]any
}

// Step is one stage of a primary item's transform pipeline: it knows the document and item it's
// building columns for, the schema it produces, and how to turn a transaction into rows.
type Step interface {
	Abi() *semantic.SemanticAbi
	AbiItem() semantic.SemanticAbiItem
	Schema() schema.AbiSchema
	innerTransform(block *metadata.EthBlock, transaction *metadata.EthTransaction) ([]ItemRows, error)
}

// Transform runs a step's full pipeline against one transaction and assembles its final rows:
// every schema column pulls its value out of the step's transformed row data, except
// TransformErrorColumnName, which is read directly off the item. A column transform failure is
// latched onto the item (so the row still appears, with transform_error set) rather than
// dropping the row outright.
func Transform(s Step, block *metadata.EthBlock, transaction *metadata.EthTransaction) ([]map[string]any, error) {
	itemRows, err := s.innerTransform(block, transaction)
	if err != nil {
		return nil, err
	}

	cols := s.Schema().Columns()
	out := make([]map[string]any, 0, len(itemRows))

	for _, ir := range itemRows {
		for _, data := range ir.Rows {
			finalRow := make(map[string]any, len(cols))
			for _, col := range cols {
				if col.Name() == TransformErrorColumnName {
					if ir.Item.HasTransformError() {
						finalRow[col.Name()] = ir.Item.TransformError()
					} else {
						finalRow[col.Name()] = nil
					}
					continue
				}

				v, err := col.Transform(data)
				if err != nil {
					ir.Item.AddTransformError(err)
					continue
				}
				finalRow[col.Name()] = v
			}
			out = append(out, finalRow)
		}
	}

	return out, nil
}

// cloneRow makes a shallow copy of a row so a step can add columns without mutating the row a
// sibling step (or an earlier exploded copy) still holds a reference to.
func cloneRow(row map[string]any) map[string]any {
	out := make(map[string]any, len(row)+4)
	for k, v := range row {
		out[k] = v
	}
	return out
}

// transformErrorColumn is the fixed column every step chain's schema carries for
// TransformErrorColumnName; its own Transform is never actually invoked since Transform
// special-cases the column by name, but it still needs to exist so Schema().Columns() lists it.
func transformErrorColumn() column.Column {
	return column.NewString(TransformErrorColumnName, column.Nullable())
}
