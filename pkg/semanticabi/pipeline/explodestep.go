package pipeline

import (
	"log/slog"
	"strings"

	"github.com/hyperarc/semanticabi/pkg/semanticabi/metadata"
	"github.com/hyperarc/semanticabi/pkg/semanticabi/schema"
	"github.com/hyperarc/semanticabi/pkg/semanticabi/semantic"
	"github.com/hyperarc/semanticabi/pkg/semanticabi/transformerror"
)

// ExplodeFlattenPredicate accepts a parameter if it sits on any of the @explode paths themselves
// (including each exploded array parameter, so ExplodeStep can pull its element list out), or if
// it's nested inside one of those arrays' elements (past the array, and not itself another
// array).
type ExplodeFlattenPredicate struct {
	pathParts [][]string
}

func (p ExplodeFlattenPredicate) ShouldFlatten(path []*semantic.SemanticParameter, parameter *semantic.SemanticParameter) bool {
	names := make([]string, 0, len(path)+1)
	for _, ancestor := range path {
		names = append(names, ancestor.Parameter().Name())
	}
	names = append(names, parameter.Parameter().Name())

	for _, explodeParts := range p.pathParts {
		if isPrefix(names, explodeParts) {
			return true
		}
		if isPrefix(explodeParts, names) && len(names) > len(explodeParts) && !parameter.Parameter().IsArray() {
			return true
		}
	}
	return false
}

// isPrefix reports whether prefix is a prefix of (or equal to) full.
func isPrefix(prefix, full []string) bool {
	if len(prefix) > len(full) {
		return false
	}
	for i, p := range prefix {
		if full[i] != p {
			return false
		}
	}
	return true
}

// ExplodeStep fans one decoded item's single row out into one row per element of its @explode
// arrays, a no-op for items without an @explode annotation. When an item declares more than one
// path, every exploded array must have the same length for a given row: the step zips them
// index-wise rather than producing a cross product.
type ExplodeStep struct {
	SubsequentStep
	schema     schema.AbiSchema
	explode    *semantic.Explode
	parameters []*FlattenedParameter
}

func NewExplodeStep(previous Step) (*ExplodeStep, error) {
	explode := previous.AbiItem().Properties().Explode

	s := &ExplodeStep{explode: explode}
	newSchema := previous.Schema()

	if explode != nil {
		flattener := NewParameterFlattener(previous.AbiItem(), ExplodeFlattenPredicate{pathParts: explode.PathParts()})
		s.parameters = flattener.Parameters()

		var err error
		newSchema, err = previous.Schema().WithColumns(flattener.DatasetColumns(), false)
		if err != nil {
			return nil, err
		}
	}

	s.schema = newSchema
	// ExplodeStep fans one row into many, so it can't be expressed through SubsequentStep's
	// per-row InnerTransformItemFunc template; innerTransform is overridden below instead. The
	// function passed here is never invoked.
	s.SubsequentStep = NewSubsequentStep(previous, nil, func() bool { return false })
	return s, nil
}

func (s *ExplodeStep) Schema() schema.AbiSchema { return s.schema }

func (s *ExplodeStep) innerTransform(block *metadata.EthBlock, transaction *metadata.EthTransaction) ([]ItemRows, error) {
	previousItemRows, err := s.Previous().innerTransform(block, transaction)
	if err != nil {
		return nil, err
	}
	if s.explode == nil {
		return previousItemRows, nil
	}

	result := make([]ItemRows, 0, len(previousItemRows))
	for _, ir := range previousItemRows {
		if ir.Item.HasTransformError() {
			result = append(result, ir)
			continue
		}

		if len(ir.Rows) != 1 {
			ir.Item.AddTransformError(transformerror.New("cannot explode %q: expected exactly one row, got %d", s.explodePathsLabel(), len(ir.Rows)))
			result = append(result, ItemRows{Item: ir.Item})
			continue
		}

		rows, err := s.explodeRow(ir.Item, ir.Rows[0])
		if err != nil {
			ir.Item.AddTransformError(err)
			if !transformerror.Is(err) {
				slog.Error("unexpected error exploding item",
					"transactionHash", transaction.Hash(),
					"itemHash", s.AbiItem().Hash(),
					"error", err)
			}
			result = append(result, ItemRows{Item: ir.Item})
			continue
		}
		result = append(result, ItemRows{Item: ir.Item, Rows: rows})
	}

	return result, nil
}

func (s *ExplodeStep) explodePathsLabel() string {
	return strings.Join(s.explode.Paths(), ", ")
}

func (s *ExplodeStep) explodeRow(item TransformItem, data map[string]any) ([]map[string]any, error) {
	decoded, err := item.DecodedResult()
	if err != nil {
		return nil, err
	}

	length := -1
	values := make([][]any, len(s.parameters))
	for i, fp := range s.parameters {
		vals, err := fp.FlattenedArray(decoded)
		if err != nil {
			return nil, err
		}
		if length == -1 {
			length = len(vals)
		} else if len(vals) != length {
			return nil, transformerror.New("exploded arrays for %q have mismatched lengths", s.explodePathsLabel())
		}
		values[i] = vals
	}

	if length == -1 {
		length = 0
	}

	rows := make([]map[string]any, 0, length)
	for i := 0; i < length; i++ {
		row := cloneRow(data)
		for paramIdx, fp := range s.parameters {
			row[fp.FinalColumnName()] = values[paramIdx][i]
		}
		rows = append(rows, row)
	}
	return rows, nil
}
