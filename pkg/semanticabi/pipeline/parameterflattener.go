package pipeline

import (
	"github.com/samber/lo"

	"github.com/hyperarc/semanticabi/pkg/semanticabi/column"
	"github.com/hyperarc/semanticabi/pkg/semanticabi/semantic"
)

// FlattenPredicate decides whether a parameter at a given path should become its own flattened
// column, or (if it's a tuple) whether its components should be visited at all.
type FlattenPredicate interface {
	ShouldFlatten(path []*semantic.SemanticParameter, parameter *semantic.SemanticParameter) bool
}

// DefaultFlattenPredicate flattens every non-array parameter. Arrays are never flattened on
// their own; they only ever contribute rows through ExplodeStep.
type DefaultFlattenPredicate struct{}

func (DefaultFlattenPredicate) ShouldFlatten(_ []*semantic.SemanticParameter, parameter *semantic.SemanticParameter) bool {
	return !parameter.Parameter().IsArray()
}

// ParameterFlattener walks a semantic item's input (and, for functions, output) parameter tree
// and builds one FlattenedParameter per primitive leaf a FlattenPredicate accepts, recursing
// into tuples (but never into excluded parameters).
type ParameterFlattener struct {
	parameters []*FlattenedParameter
}

// NewParameterFlattener builds the flattened parameter list for item under predicate.
func NewParameterFlattener(item semantic.SemanticAbiItem, predicate FlattenPredicate) *ParameterFlattener {
	pf := &ParameterFlattener{}
	pf.walk(nil, item.InputParameters(), true, predicate)
	if out := item.OutputParameters(); out != nil {
		pf.walk(nil, out, false, predicate)
	}
	return pf
}

// NewInputParameterFlattener is NewParameterFlattener restricted to an item's input parameters.
func NewInputParameterFlattener(item semantic.SemanticAbiItem, predicate FlattenPredicate) *ParameterFlattener {
	pf := &ParameterFlattener{}
	pf.walk(nil, item.InputParameters(), true, predicate)
	return pf
}

func (pf *ParameterFlattener) walk(path []*semantic.SemanticParameter, params *semantic.SemanticParameters, isInput bool, predicate FlattenPredicate) {
	if params == nil {
		return
	}

	for _, sp := range params.All() {
		if sp.IsExcluded() {
			continue
		}
		if !predicate.ShouldFlatten(path, sp) {
			continue
		}

		if components := sp.Components(); components != nil {
			childPath := make([]*semantic.SemanticParameter, len(path)+1)
			copy(childPath, path)
			childPath[len(path)] = sp
			pf.walk(childPath, components, isInput, predicate)
			continue
		}

		pf.parameters = append(pf.parameters, &FlattenedParameter{
			parameter: sp,
			path:      append([]*semantic.SemanticParameter{}, path...),
			isInput:   isInput,
		})
	}
}

// Parameters returns every flattened parameter, in traversal order.
func (pf *ParameterFlattener) Parameters() []*FlattenedParameter { return pf.parameters }

// DatasetColumns returns the schema columns every flattened parameter contributes, in the same
// order as Parameters.
func (pf *ParameterFlattener) DatasetColumns() []column.Column {
	return lo.Map(pf.parameters, func(p *FlattenedParameter, _ int) column.Column { return p.FinalDatasetColumn() })
}
