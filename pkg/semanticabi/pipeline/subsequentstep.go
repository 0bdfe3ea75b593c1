package pipeline

import (
	"log/slog"

	"github.com/hyperarc/semanticabi/pkg/semanticabi/metadata"
	"github.com/hyperarc/semanticabi/pkg/semanticabi/semantic"
	"github.com/hyperarc/semanticabi/pkg/semanticabi/transformerror"
)

// InnerTransformItemFunc does one step's actual per-row work: given the previous step's row
// data for one still-healthy item, produce this step's row data (or a *transformerror.TransformError
// if the row doesn't qualify for this step, e.g. no matching sibling was found).
type InnerTransformItemFunc func(
	block *metadata.EthBlock,
	transaction *metadata.EthTransaction,
	item TransformItem,
	previousData map[string]any,
	rowIndex int,
) (map[string]any, error)

// SubsequentStep is the common base for every step after InitStep: it delegates Abi/AbiItem to
// whatever step came before it, and implements the shared "skip items that already failed,
// latch-and-log anything my own work raises" transform loop. Concrete steps embed a
// SubsequentStep and supply their own row-transforming function at construction time, since Go
// has no virtual dispatch to hook into from an embedded base.
type SubsequentStep struct {
	previous           Step
	shouldTransform    func() bool
	innerTransformItem InnerTransformItemFunc
}

// NewSubsequentStep wires a concrete step's row-transform function (and optional "should this
// step run at all" gate, nil meaning always) into the shared template. shouldTransform is
// evaluated once per call to innerTransform; when it reports false, the previous step's rows
// pass through unchanged (used by ExpressionListStep, which is a no-op for an empty expression
// list).
func NewSubsequentStep(previous Step, innerTransformItem InnerTransformItemFunc, shouldTransform func() bool) SubsequentStep {
	if shouldTransform == nil {
		shouldTransform = func() bool { return true }
	}
	return SubsequentStep{previous: previous, innerTransformItem: innerTransformItem, shouldTransform: shouldTransform}
}

func (s SubsequentStep) Abi() *semantic.SemanticAbi         { return s.previous.Abi() }
func (s SubsequentStep) AbiItem() semantic.SemanticAbiItem  { return s.previous.AbiItem() }
func (s SubsequentStep) Previous() Step                     { return s.previous }

func (s SubsequentStep) innerTransform(block *metadata.EthBlock, transaction *metadata.EthTransaction) ([]ItemRows, error) {
	previousItemRows, err := s.previous.innerTransform(block, transaction)
	if err != nil {
		return nil, err
	}
	if !s.shouldTransform() {
		return previousItemRows, nil
	}

	result := make([]ItemRows, 0, len(previousItemRows))
	for _, ir := range previousItemRows {
		if ir.Item.HasTransformError() {
			result = append(result, ir)
			continue
		}

		rows := make([]map[string]any, 0, len(ir.Rows))
		for idx, data := range ir.Rows {
			row, err := s.innerTransformItem(block, transaction, ir.Item, data, idx)
			if err != nil {
				ir.Item.AddTransformError(err)
				if !transformerror.Is(err) {
					slog.Error("unexpected error transforming item",
						"transactionHash", transaction.Hash(),
						"itemHash", s.AbiItem().Hash(),
						"error", err)
				}
				continue
			}
			rows = append(rows, row)
		}
		result = append(result, ItemRows{Item: ir.Item, Rows: rows})
	}

	return result, nil
}
