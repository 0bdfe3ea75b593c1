package semantic

import (
	"github.com/hyperarc/semanticabi/pkg/semanticabi/abi"
	"github.com/hyperarc/semanticabi/pkg/semanticabi/abierr"
	"github.com/hyperarc/semanticabi/pkg/semanticabi/metadata"
)

// ItemJSON is one event or function entry in a semantic ABI document: the standard ABI shape
// plus the `@isPrimary`/`@explode`/`@matches`/`@expressions` annotations.
type ItemJSON struct {
	Type        string           `json:"type"`
	Name        string           `json:"name"`
	Inputs      []ParameterJSON  `json:"inputs"`
	Outputs     []ParameterJSON  `json:"outputs,omitempty"`
	Extra       map[string]any   `json:"extra,omitempty"`
	IsPrimary   bool             `json:"@isPrimary,omitempty"`
	Explode     []string         `json:"@explode,omitempty"`
	Matches     []MatchJSON      `json:"@matches,omitempty"`
	Expressions []ExpressionJSON `json:"@expressions,omitempty"`
}

// SemanticAbiItemProperties are the annotations a primary item carries on top of its raw ABI
// shape: only primary items are allowed to declare `@explode`, `@matches`, or `@expressions`,
// and an item can't both explode an array and assert a MANY match (both would try to fan one
// decoded row out into several, with no defined ordering between them).
type SemanticAbiItemProperties struct {
	IsPrimary   bool
	Explode     *Explode
	Matches     *Matches
	Expressions []*NamedExpression
}

func semanticAbiItemPropertiesFromJSON(j ItemJSON, parameterSets ...*SemanticParameters) (*SemanticAbiItemProperties, error) {
	if !j.IsPrimary {
		if len(j.Explode) > 0 {
			return nil, abierr.New("item %q: @explode requires @isPrimary", j.Name)
		}
		if len(j.Matches) > 0 {
			return nil, abierr.New("item %q: @matches requires @isPrimary", j.Name)
		}
		if len(j.Expressions) > 0 {
			return nil, abierr.New("item %q: @expressions requires @isPrimary", j.Name)
		}
		return &SemanticAbiItemProperties{}, nil
	}

	props := &SemanticAbiItemProperties{IsPrimary: true}

	if len(j.Explode) > 0 {
		explode, err := ExplodeFromJSON(j.Explode, parameterSets...)
		if err != nil {
			return nil, err
		}
		props.Explode = explode
	}

	matches, err := MatchesFromJSON(j.Matches)
	if err != nil {
		return nil, err
	}
	props.Matches = matches

	if props.Explode != nil && matches.HasMany() {
		return nil, abierr.New("item %q: @explode and a MANY @matches entry cannot both be declared", j.Name)
	}

	expressions, err := ExpressionsFromJSON(j.Expressions)
	if err != nil {
		return nil, err
	}
	props.Expressions = expressions

	return props, nil
}

// SemanticAbiItem is either an event or a function entry of a semantic ABI document.
type SemanticAbiItem interface {
	Name() string
	Hash() string
	Signature() string
	// InputParameters is the semantic annotations for this item's decoded inputs.
	InputParameters() *SemanticParameters
	// OutputParameters is the semantic annotations for this item's decoded outputs, or nil for
	// an event (events have no outputs).
	OutputParameters() *SemanticParameters
	Properties() *SemanticAbiItemProperties
}

// DecodedResult is a decoded event log or function trace, normalized to the same shape so the
// pipeline can flatten parameters the same way regardless of item kind: a function additionally
// has output parameters, which an event never does.
type DecodedResult struct {
	DecodedInputJSON  map[string]any
	DecodedOutputJSON map[string]any
}

// SemanticAbiEvent is a log-decoding item.
type SemanticAbiEvent struct {
	event      *abi.Event
	parameters *SemanticParameters
	properties *SemanticAbiItemProperties
}

func SemanticAbiEventFromJSON(j ItemJSON) (*SemanticAbiEvent, error) {
	event, err := abi.EventFromJSON(abi.EventJSON{
		Name:   j.Name,
		Inputs: ParametersToAbiJSON(j.Inputs),
		Extra:  j.Extra,
	})
	if err != nil {
		return nil, err
	}

	parameters, err := SemanticParametersFromJSON(event.Inputs().All(), j.Inputs)
	if err != nil {
		return nil, err
	}

	properties, err := semanticAbiItemPropertiesFromJSON(j, parameters)
	if err != nil {
		return nil, err
	}

	return &SemanticAbiEvent{event: event, parameters: parameters, properties: properties}, nil
}

func (e *SemanticAbiEvent) Name() string      { return e.event.Name() }
func (e *SemanticAbiEvent) Hash() string      { return e.event.Hash() }
func (e *SemanticAbiEvent) Signature() string { return e.event.Signature() }

// InputParameters is the semantic annotations for this event's decoded fields.
func (e *SemanticAbiEvent) InputParameters() *SemanticParameters { return e.parameters }

// Parameters is an alias for InputParameters.
func (e *SemanticAbiEvent) Parameters() *SemanticParameters { return e.parameters }

// OutputParameters is always nil: events have no outputs.
func (e *SemanticAbiEvent) OutputParameters() *SemanticParameters { return nil }

func (e *SemanticAbiEvent) Properties() *SemanticAbiItemProperties { return e.properties }
func (e *SemanticAbiEvent) RawEvent() *abi.Event                   { return e.event }

// IsOf reports whether a raw log matches this event by hash (and, if requested, by indexed
// parameter count, to disambiguate hash collisions between differently-shaped events).
func (e *SemanticAbiEvent) IsOf(log metadata.EthLog, checkNumIndexed bool) bool {
	return e.event.IsOf(log.Topics, checkNumIndexed)
}

// Decode decodes a matching log's topics and data.
func (e *SemanticAbiEvent) Decode(log metadata.EthLog) (abi.DecodedTuple, error) {
	return e.event.Decode(log.Topics, log.Data)
}

// DecodeResult decodes a matching log into the normalized shape the pipeline flattens.
func (e *SemanticAbiEvent) DecodeResult(log metadata.EthLog) (DecodedResult, error) {
	tuple, err := e.Decode(log)
	if err != nil {
		return DecodedResult{}, err
	}
	return DecodedResult{DecodedInputJSON: tuple.ToJSON()}, nil
}

// SemanticAbiFunction is a calldata-decoding item (matched against call traces).
type SemanticAbiFunction struct {
	function         *abi.Function
	parameters       *SemanticParameters
	outputParameters *SemanticParameters
	properties       *SemanticAbiItemProperties
}

func SemanticAbiFunctionFromJSON(j ItemJSON) (*SemanticAbiFunction, error) {
	function, err := abi.FunctionFromJSON(abi.FunctionJSON{
		Type:    j.Type,
		Name:    j.Name,
		Inputs:  ParametersToAbiJSON(j.Inputs),
		Outputs: ParametersToAbiJSON(j.Outputs),
		Extra:   j.Extra,
	})
	if err != nil {
		return nil, err
	}

	parameters, err := SemanticParametersFromJSON(function.Inputs().All(), j.Inputs)
	if err != nil {
		return nil, err
	}

	outputParameters, err := SemanticParametersFromJSON(function.Outputs().All(), j.Outputs)
	if err != nil {
		return nil, err
	}

	properties, err := semanticAbiItemPropertiesFromJSON(j, parameters, outputParameters)
	if err != nil {
		return nil, err
	}

	return &SemanticAbiFunction{
		function:         function,
		parameters:       parameters,
		outputParameters: outputParameters,
		properties:       properties,
	}, nil
}

func (f *SemanticAbiFunction) Name() string      { return f.function.Name() }
func (f *SemanticAbiFunction) Hash() string      { return f.function.Hash() }
func (f *SemanticAbiFunction) Signature() string { return f.function.Signature() }

// InputParameters is the semantic annotations for this function's decoded calldata.
func (f *SemanticAbiFunction) InputParameters() *SemanticParameters { return f.parameters }

// Parameters is an alias for InputParameters.
func (f *SemanticAbiFunction) Parameters() *SemanticParameters { return f.parameters }

// OutputParameters is the semantic annotations for this function's decoded return data.
func (f *SemanticAbiFunction) OutputParameters() *SemanticParameters { return f.outputParameters }

func (f *SemanticAbiFunction) Properties() *SemanticAbiItemProperties { return f.properties }
func (f *SemanticAbiFunction) RawFunction() *abi.Function             { return f.function }

// DecodeInput decodes a matching trace's calldata.
func (f *SemanticAbiFunction) DecodeInput(trace metadata.EthTrace) (abi.DecodedTuple, error) {
	return f.function.DecodeInput(trace.Input())
}

// DecodeOutput decodes a matching trace's return data, if present.
func (f *SemanticAbiFunction) DecodeOutput(trace metadata.EthTrace) (abi.DecodedTuple, error) {
	output := trace.Output()
	if output == "" {
		return abi.DecodedTuple{}, nil
	}
	return f.function.DecodeOutput(output)
}

// DecodeResult decodes a matching trace's calldata and (if present) return data into the
// normalized shape the pipeline flattens.
func (f *SemanticAbiFunction) DecodeResult(trace metadata.EthTrace) (DecodedResult, error) {
	input, err := f.DecodeInput(trace)
	if err != nil {
		return DecodedResult{}, err
	}
	output, err := f.DecodeOutput(trace)
	if err != nil {
		return DecodedResult{}, err
	}
	return DecodedResult{DecodedInputJSON: input.ToJSON(), DecodedOutputJSON: output.ToJSON()}, nil
}
