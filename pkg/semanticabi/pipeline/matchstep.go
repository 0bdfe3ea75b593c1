package pipeline

import (
	"log/slog"

	"github.com/hyperarc/semanticabi/pkg/semanticabi/abierr"
	"github.com/hyperarc/semanticabi/pkg/semanticabi/metadata"
	"github.com/hyperarc/semanticabi/pkg/semanticabi/schema"
	"github.com/hyperarc/semanticabi/pkg/semanticabi/semantic"
	"github.com/hyperarc/semanticabi/pkg/semanticabi/transformerror"
)

// matchAndStep pairs one `@matches` entry with the step that produces its candidate rows.
type matchAndStep struct {
	match *semantic.Match
	step  Step
}

// AbiMatchSteps builds (and memoizes) the step chain for every signature any primary item's
// `@matches` entries reference, so that two primary items matching the same signature share one
// step rather than re-transforming it once per reference.
type AbiMatchSteps struct {
	abi                    *semantic.SemanticAbi
	eventStepsBySignature  map[string]Step
	functionStepsBySig     map[string]Step
	transferStep           Step
}

// NewAbiMatchSteps builds the matched-item steps for every primary item in the document.
func NewAbiMatchSteps(abi *semantic.SemanticAbi) (*AbiMatchSteps, error) {
	s := &AbiMatchSteps{
		abi:                   abi,
		eventStepsBySignature: map[string]Step{},
		functionStepsBySig:    map[string]Step{},
		transferStep:          NewTokenTransferStep(),
	}

	build := func(props *semantic.SemanticAbiItemProperties) error {
		if props == nil || props.Matches == nil {
			return nil
		}
		for _, m := range props.Matches.All() {
			switch m.ItemType {
			case semantic.MatchEvent:
				if _, ok := s.eventStepsBySignature[m.Signature]; ok {
					continue
				}
				event, ok := abi.EventBySignature(m.Signature)
				if !ok {
					return abierr.New("@matches references unknown event signature %q", m.Signature)
				}
				step, err := NewFlattenParametersStep(NewInitStepForEvent(abi, event))
				if err != nil {
					return err
				}
				s.eventStepsBySignature[m.Signature] = step
			case semantic.MatchFunction:
				if _, ok := s.functionStepsBySig[m.Signature]; ok {
					continue
				}
				function, ok := abi.FunctionBySignature(m.Signature)
				if !ok {
					return abierr.New("@matches references unknown function signature %q", m.Signature)
				}
				step, err := NewFlattenParametersStep(NewInitStepForFunction(abi, function))
				if err != nil {
					return err
				}
				s.functionStepsBySig[m.Signature] = step
			case semantic.MatchTransfer:
				// the shared TokenTransferStep already covers this case.
			}
		}
		return nil
	}

	for _, e := range abi.PrimaryEvents() {
		if err := build(e.Properties()); err != nil {
			return nil, err
		}
	}
	for _, f := range abi.PrimaryFunctions() {
		if err := build(f.Properties()); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// StepsForMatches resolves the step for each of an item's `@matches` entries, in order.
func (s *AbiMatchSteps) StepsForMatches(matches *semantic.Matches) []matchAndStep {
	if matches == nil {
		return nil
	}
	out := make([]matchAndStep, 0, len(matches.All()))
	for _, m := range matches.All() {
		var step Step
		switch m.ItemType {
		case semantic.MatchEvent:
			step = s.eventStepsBySignature[m.Signature]
		case semantic.MatchFunction:
			step = s.functionStepsBySig[m.Signature]
		case semantic.MatchTransfer:
			step = s.transferStep
		}
		out = append(out, matchAndStep{match: m, step: step})
	}
	return out
}

// MatchStep joins each row of the previous step against the candidate rows of every `@matches`
// entry declared on the item, grafting matched columns in under the entry's prefix.
type MatchStep struct {
	SubsequentStep
	schema        schema.AbiSchema
	matchesAndSteps []matchAndStep
}

func NewMatchStep(previous Step, matchSteps *AbiMatchSteps) (*MatchStep, error) {
	matchesAndSteps := matchSteps.StepsForMatches(previous.AbiItem().Properties().Matches)

	newSchema := previous.Schema()
	for _, ms := range matchesAndSteps {
		if err := validateMatchPredicates(ms.match, newSchema, ms.step.Schema()); err != nil {
			return nil, err
		}
		var err error
		newSchema, err = newSchema.AppendSchemaWithRename(ms.step.Schema(), ms.match.MakePrefixedColumnName)
		if err != nil {
			return nil, err
		}
	}

	s := &MatchStep{schema: newSchema, matchesAndSteps: matchesAndSteps}
	s.SubsequentStep = NewSubsequentStep(previous, nil, func() bool {
		return previous.AbiItem().Properties().Matches != nil
	})
	return s, nil
}

func validateMatchPredicates(match *semantic.Match, sourceSchema, matchedSchema schema.AbiSchema) error {
	for _, predicate := range match.Predicates {
		for _, name := range predicate.SourceColumnNames() {
			if !sourceSchema.HasColumn(name) {
				return abierr.New("unknown source column referenced in match predicate of prefix %q: %s", match.Prefix, name)
			}
		}
		for _, name := range predicate.MatchedColumnNames() {
			if !matchedSchema.HasColumn(name) {
				return abierr.New("unknown matched column referenced in match predicate of prefix %q: %s", match.Prefix, name)
			}
		}
	}
	return nil
}

func (s *MatchStep) Schema() schema.AbiSchema { return s.schema }

func (s *MatchStep) innerTransform(block *metadata.EthBlock, transaction *metadata.EthTransaction) ([]ItemRows, error) {
	previousItemRows, err := s.Previous().innerTransform(block, transaction)
	if err != nil {
		return nil, err
	}
	if len(s.matchesAndSteps) == 0 {
		return previousItemRows, nil
	}

	result := make([]ItemRows, 0, len(previousItemRows))
	for _, ir := range previousItemRows {
		if ir.Item.HasTransformError() {
			result = append(result, ir)
			continue
		}

		rows, err := s.matchRows(block, transaction, ir.Rows)
		if err != nil {
			ir.Item.AddTransformError(err)
			if !transformerror.Is(err) {
				slog.Error("unexpected error matching item",
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

func (s *MatchStep) matchRows(block *metadata.EthBlock, transaction *metadata.EthTransaction, previousData []map[string]any) ([]map[string]any, error) {
	currentData := previousData

	for _, ms := range s.matchesAndSteps {
		if ms.match.AssertType == semantic.AssertMany && len(currentData) > 1 {
			return nil, transformerror.New("only a single row of data can be matched with a \"many\" match")
		}

		matchedStepRows, err := Transform(ms.step, block, transaction)
		if err != nil {
			return nil, err
		}

		var nextData []map[string]any
		for _, row := range currentData {
			var matched []map[string]any
			for _, candidate := range matchedStepRows {
				isMatched := true
				for _, predicate := range ms.match.Predicates {
					if !predicate.Matches(row, candidate) {
						isMatched = false
						break
					}
				}
				if isMatched {
					matched = append(matched, candidate)
				}
			}

			handled, err := handleMatches(row, matched, ms.match, ms.step)
			if err != nil {
				return nil, err
			}
			nextData = append(nextData, handled...)
		}

		currentData = nextData
	}

	return currentData, nil
}

func handleMatches(row map[string]any, matched []map[string]any, match *semantic.Match, step Step) ([]map[string]any, error) {
	switch match.AssertType {
	case semantic.AssertOnlyOne:
		if len(matched) == 0 {
			return nil, matchAssertError("no match found for \"onlyOne\" match", match)
		}
		if len(matched) > 1 {
			return nil, matchAssertError("multiple matches found for \"onlyOne\" match", match)
		}
		out := cloneRow(row)
		appendMatchedData(out, matched[0], match)
		return []map[string]any{out}, nil

	case semantic.AssertMany:
		if len(matched) == 0 {
			return nil, matchAssertError("no match found for \"many\" match", match)
		}
		out := make([]map[string]any, 0, len(matched))
		for _, candidate := range matched {
			copyRow := cloneRow(row)
			appendMatchedData(copyRow, candidate, match)
			out = append(out, copyRow)
		}
		return out, nil

	case semantic.AssertOptionalOne:
		if len(matched) > 1 {
			return nil, matchAssertError("multiple matches found for \"optionalOne\" match", match)
		}
		out := cloneRow(row)
		if len(matched) == 1 {
			appendMatchedData(out, matched[0], match)
		} else {
			for _, col := range step.Schema().Columns() {
				out[match.MakePrefixedColumnName(col.Name())] = nil
			}
		}
		return []map[string]any{out}, nil
	}

	return nil, transformerror.New("unknown assert type %q", match.AssertType)
}

func appendMatchedData(row map[string]any, matchedRow map[string]any, match *semantic.Match) {
	for name, value := range matchedRow {
		row[match.MakePrefixedColumnName(name)] = value
	}
}

func matchAssertError(msg string, match *semantic.Match) error {
	msg += " of type " + string(match.ItemType)
	if match.Signature != "" {
		msg += " with signature " + match.Signature
	}
	return transformerror.New("%s", msg)
}
