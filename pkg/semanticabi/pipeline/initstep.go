package pipeline

import (
	"strconv"
	"strings"

	"github.com/hyperarc/semanticabi/pkg/semanticabi/metadata"
	"github.com/hyperarc/semanticabi/pkg/semanticabi/schema"
	"github.com/hyperarc/semanticabi/pkg/semanticabi/semantic"
	"github.com/hyperarc/semanticabi/pkg/semanticabi/value"
)

// EventTransformItem wraps one matched log for the rest of the pipeline: its contract address is
// the log's own address, and its internal index is the log's index within the block.
type EventTransformItem struct {
	transformItemBase
	log metadata.EthLog
}

func NewEventTransformItem(event *semantic.SemanticAbiEvent, log metadata.EthLog) *EventTransformItem {
	return &EventTransformItem{
		transformItemBase: newTransformItemBase(func() (semantic.DecodedResult, error) {
			return event.DecodeResult(log)
		}),
		log: log,
	}
}

func (e *EventTransformItem) ContractAddress() string { return strings.ToLower(e.log.Address) }

func (e *EventTransformItem) InternalIndex() string {
	n, err := value.HexToInt(e.log.LogIndex)
	if err != nil {
		return e.log.LogIndex
	}
	return strconv.FormatInt(n, 10)
}

func (e *EventTransformItem) ItemType() string { return "event" }

// FunctionTransformItem wraps one matched call trace: its contract address is the trace's
// target, and its internal index is the trace's own address-derived hash.
type FunctionTransformItem struct {
	transformItemBase
	trace metadata.EthTrace
}

func NewFunctionTransformItem(function *semantic.SemanticAbiFunction, trace metadata.EthTrace) *FunctionTransformItem {
	return &FunctionTransformItem{
		transformItemBase: newTransformItemBase(func() (semantic.DecodedResult, error) {
			return function.DecodeResult(trace)
		}),
		trace: trace,
	}
}

func (f *FunctionTransformItem) ContractAddress() string { return strings.ToLower(f.trace.ToAddress()) }

func (f *FunctionTransformItem) InternalIndex() string { return f.trace.TraceHash() }

func (f *FunctionTransformItem) ItemType() string { return "function" }

// InitStep is the first step of every primary item's pipeline: it has no columns of its own and
// no upstream step to delegate to, and just finds the raw logs or traces matching its item,
// filtered to the contract addresses the document is scoped to.
type InitStep struct {
	abi     *semantic.SemanticAbi
	event   *semantic.SemanticAbiEvent
	function *semantic.SemanticAbiFunction
	schema  schema.AbiSchema
}

// NewInitStepForEvent builds the first step of an event's pipeline.
func NewInitStepForEvent(abi *semantic.SemanticAbi, event *semantic.SemanticAbiEvent) *InitStep {
	return &InitStep{abi: abi, event: event, schema: schema.Empty()}
}

// NewInitStepForFunction builds the first step of a function's pipeline.
func NewInitStepForFunction(abi *semantic.SemanticAbi, function *semantic.SemanticAbiFunction) *InitStep {
	return &InitStep{abi: abi, function: function, schema: schema.Empty()}
}

func (s *InitStep) Abi() *semantic.SemanticAbi { return s.abi }

func (s *InitStep) AbiItem() semantic.SemanticAbiItem {
	if s.event != nil {
		return s.event
	}
	return s.function
}

func (s *InitStep) Schema() schema.AbiSchema { return s.schema }

func (s *InitStep) innerTransform(block *metadata.EthBlock, transaction *metadata.EthTransaction) ([]ItemRows, error) {
	if s.event != nil {
		return s.transformEvent(transaction), nil
	}
	return s.transformFunction(transaction), nil
}

func (s *InitStep) transformEvent(transaction *metadata.EthTransaction) []ItemRows {
	hash := strings.TrimPrefix(s.event.Hash(), "0x")
	var out []ItemRows
	for _, log := range transaction.LogsByTopic()[hash] {
		if !s.abi.ShouldConsider(log.Address) {
			continue
		}
		out = append(out, ItemRows{
			Item: NewEventTransformItem(s.event, log),
			Rows: []map[string]any{{}},
		})
	}
	return out
}

func (s *InitStep) transformFunction(transaction *metadata.EthTransaction) []ItemRows {
	hash := strings.TrimPrefix(s.function.Hash(), "0x")
	var out []ItemRows
	for _, trace := range transaction.TracesByTopic()[hash] {
		if !s.abi.ShouldConsider(trace.ToAddress()) {
			continue
		}
		out = append(out, ItemRows{
			Item: NewFunctionTransformItem(s.function, trace),
			Rows: []map[string]any{{}},
		})
	}
	return out
}
