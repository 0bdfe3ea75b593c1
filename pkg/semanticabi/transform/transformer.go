// Package transform ties the per-item pipeline package together into the single entry point a
// caller actually wants: given a parsed semantic ABI document, build one step chain per primary
// item, union their schemas, and transform whole blocks against them.
package transform

import (
	"strings"

	"github.com/hyperarc/semanticabi/pkg/semanticabi/abierr"
	"github.com/hyperarc/semanticabi/pkg/semanticabi/column"
	"github.com/hyperarc/semanticabi/pkg/semanticabi/metadata"
	"github.com/hyperarc/semanticabi/pkg/semanticabi/pipeline"
	"github.com/hyperarc/semanticabi/pkg/semanticabi/schema"
	"github.com/hyperarc/semanticabi/pkg/semanticabi/semantic"
)

// SemanticTransformer builds and runs the transform pipeline for every primary item declared in a
// semantic ABI document.
type SemanticTransformer struct {
	abi            *semantic.SemanticAbi
	pipelineByHash map[string]pipeline.Step
	schema         schema.AbiSchema
}

// New builds a SemanticTransformer from an already-parsed and validated semantic ABI document.
func New(abi *semantic.SemanticAbi) (*SemanticTransformer, error) {
	matchSteps, err := pipeline.NewAbiMatchSteps(abi)
	if err != nil {
		return nil, err
	}

	pipelineByHash := map[string]pipeline.Step{}
	var schemas []schema.AbiSchema

	for _, event := range abi.PrimaryEvents() {
		step, err := buildPipeline(abi, pipeline.NewInitStepForEvent(abi, event), matchSteps)
		if err != nil {
			return nil, err
		}
		pipelineByHash[strings.TrimPrefix(event.Hash(), "0x")] = step
		schemas = append(schemas, step.Schema())
	}

	for _, function := range abi.PrimaryFunctions() {
		step, err := buildPipeline(abi, pipeline.NewInitStepForFunction(abi, function), matchSteps)
		if err != nil {
			return nil, err
		}
		pipelineByHash[strings.TrimPrefix(function.Hash(), "0x")] = step
		schemas = append(schemas, step.Schema())
	}

	unioned, err := unionSchemas(schemas)
	if err != nil {
		return nil, err
	}

	return &SemanticTransformer{abi: abi, pipelineByHash: pipelineByHash, schema: unioned}, nil
}

// buildPipeline wires the fixed step order every primary item's pipeline runs through, in the
// order each step's output feeds the next: default columns, parameter flattening, exploding an
// array (if declared), sibling matching, the exploded row index, the item's own expressions, the
// document's expressions, and finally the transform-error column.
func buildPipeline(abi *semantic.SemanticAbi, init pipeline.Step, matchSteps *pipeline.AbiMatchSteps) (pipeline.Step, error) {
	defaultCols, err := pipeline.NewDefaultColumnsStep(init)
	if err != nil {
		return nil, err
	}
	flattened, err := pipeline.NewFlattenParametersStep(defaultCols)
	if err != nil {
		return nil, err
	}
	exploded, err := pipeline.NewExplodeStep(flattened)
	if err != nil {
		return nil, err
	}
	matched, err := pipeline.NewMatchStep(exploded, matchSteps)
	if err != nil {
		return nil, err
	}
	explodeIndexed, err := pipeline.NewExplodeIndexStep(matched)
	if err != nil {
		return nil, err
	}
	itemExpressions, err := pipeline.NewExpressionListStep(explodeIndexed, init.AbiItem().Properties().Expressions)
	if err != nil {
		return nil, err
	}
	docExpressions, err := pipeline.NewExpressionListStep(itemExpressions, abi.Expressions())
	if err != nil {
		return nil, err
	}
	return pipeline.NewTransformErrorStep(docExpressions)
}

// unionSchemas merges every primary item's schema into one: a column name shared by two items
// must mean exactly the same column in both, or the document is invalid.
func unionSchemas(schemas []schema.AbiSchema) (schema.AbiSchema, error) {
	if len(schemas) == 0 {
		return schema.Empty(), nil
	}

	result := schemas[0]
	for _, s := range schemas[1:] {
		for _, col := range s.Columns() {
			if existing, ok := result.Column(col.Name()); ok {
				if !existing.Equal(col) {
					return schema.AbiSchema{}, abierr.New("column %q has conflicting types across items", col.Name())
				}
				continue
			}
			var err error
			result, err = result.WithColumns([]column.Column{col}, false)
			if err != nil {
				return schema.AbiSchema{}, err
			}
		}
	}
	return result, nil
}

// Schema is the unioned output schema across every primary item this document declares.
func (t *SemanticTransformer) Schema() schema.AbiSchema { return t.schema }

// ColumnMetadata is one output column's name and physical/logical type, the shape a downstream
// columnar writer (e.g. an Arrow schema builder) actually consumes.
type ColumnMetadata struct {
	Name         string
	TypeMetadata column.TypeMetadata
}

// Metadata returns the unioned schema's columns as name/type pairs, in column order.
func (t *SemanticTransformer) Metadata() []ColumnMetadata {
	cols := t.schema.Columns()
	out := make([]ColumnMetadata, len(cols))
	for i, c := range cols {
		out[i] = ColumnMetadata{Name: c.Name(), TypeMetadata: c.TypeMetadata()}
	}
	return out
}

// Chains are the EVM chains this document applies to.
func (t *SemanticTransformer) Chains() []metadata.EvmChain { return t.abi.Chains() }

// IsValidForChain reports whether this document applies to block's chain.
func (t *SemanticTransformer) IsValidForChain(chain metadata.EvmChain) bool {
	return t.abi.IsValidForChain(chain)
}

// Transform finds every transaction in block with a log or trace matching one of this document's
// primary items, runs it through that item's pipeline, and pads every resulting row out to the
// full unioned schema (a row produced by one item's pipeline won't have another item's columns).
func (t *SemanticTransformer) Transform(block *metadata.EthBlock) ([]map[string]any, error) {
	if !t.IsValidForChain(block.Chain) {
		return nil, nil
	}

	transactions, err := block.Transactions()
	if err != nil {
		return nil, err
	}

	cols := t.schema.Columns()
	var results []map[string]any

	for _, transaction := range transactions {
		logsByTopic := transaction.LogsByTopic()
		tracesByTopic := transaction.TracesByTopic()

		for hash, step := range t.pipelineByHash {
			_, hasLogs := logsByTopic[hash]
			_, hasTraces := tracesByTopic[hash]
			if !hasLogs && !hasTraces {
				continue
			}

			rows, err := pipeline.Transform(step, block, transaction)
			if err != nil {
				return nil, err
			}

			for _, row := range rows {
				for _, col := range cols {
					if _, exists := row[col.Name()]; !exists {
						row[col.Name()] = nil
					}
				}
			}
			results = append(results, rows...)
		}
	}

	return results, nil
}
