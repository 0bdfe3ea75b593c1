package abi

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"

	"github.com/hyperarc/semanticabi/pkg/semanticabi/abierr"
)

// Item is a raw ABI entry: an event or a function (constructor/fallback/receive are modeled
// as functions with no name/output distinction that matters to decoding).
type Item interface {
	Name() string
	Inputs() Parameters
	Signature() string
	Extra() map[string]any
	Hash() string
}

type itemBase struct {
	name      string
	inputs    Parameters
	signature string
	extra     map[string]any
}

func newItemBase(name string, inputs Parameters, extra map[string]any) itemBase {
	sig := fmt.Sprintf("%s(%s)", name, strings.Join(inputs.Signatures(), ","))
	return itemBase{name: name, inputs: inputs, signature: sig, extra: extra}
}

func (b itemBase) Name() string          { return b.name }
func (b itemBase) Inputs() Parameters    { return b.inputs }
func (b itemBase) Signature() string     { return b.signature }
func (b itemBase) Extra() map[string]any { return b.extra }

// Function is a callable ABI item: a function, constructor, fallback, or receive.
type Function struct {
	itemBase
	functionType ItemType
	outputs      Parameters
	hash         string
}

// FunctionJSON is the wire shape of one function-family ABI item.
type FunctionJSON struct {
	Type    string          `json:"type"`
	Name    string          `json:"name"`
	Inputs  []ParameterJSON `json:"inputs"`
	Outputs []ParameterJSON `json:"outputs"`
	Extra   map[string]any  `json:"extra,omitempty"`
}

func FunctionFromJSON(j FunctionJSON) (*Function, error) {
	inputs, err := ParametersFromJSON(j.Inputs)
	if err != nil {
		return nil, err
	}
	outputs, err := ParametersFromJSON(j.Outputs)
	if err != nil {
		return nil, err
	}
	return NewFunction(j.Name, ItemType(j.Type), inputs, outputs, j.Extra), nil
}

func NewFunction(name string, functionType ItemType, inputs, outputs Parameters, extra map[string]any) *Function {
	base := newItemBase(name, inputs, extra)
	digest := crypto.Keccak256([]byte(base.signature))
	return &Function{
		itemBase:     base,
		functionType: functionType,
		outputs:      outputs,
		// functions only key off the first 4 bytes of the signature hash.
		hash: hex.EncodeToString(digest)[:8],
	}
}

func (f *Function) FunctionType() ItemType { return f.functionType }
func (f *Function) Outputs() Parameters    { return f.outputs }
func (f *Function) Hash() string           { return f.hash }

// DecodeInput decodes calldata (a "0x"-prefixed hex string including the 4-byte selector) into
// a tuple keyed by input parameter name.
func (f *Function) DecodeInput(input string) (DecodedTuple, error) {
	trimmed := strings.TrimPrefix(input, "0x")
	if len(trimmed) < 8 {
		return DecodedTuple{}, fmt.Errorf("input too short to contain a selector: %q", input)
	}
	data, err := hex.DecodeString(trimmed[8:])
	if err != nil {
		return DecodedTuple{}, fmt.Errorf("decoding input hex: %w", err)
	}
	values, err := decodeValues(f.inputs.All(), data)
	if err != nil {
		return DecodedTuple{}, err
	}
	return DecodedTupleFromValues(nil, f.inputs.All(), values)
}

// DecodeOutput decodes return data (a "0x"-prefixed hex string, no selector) into a tuple keyed
// by output parameter name.
func (f *Function) DecodeOutput(output string) (DecodedTuple, error) {
	trimmed := strings.TrimPrefix(output, "0x")
	data, err := hex.DecodeString(trimmed)
	if err != nil {
		return DecodedTuple{}, fmt.Errorf("decoding output hex: %w", err)
	}
	values, err := decodeValues(f.outputs.All(), data)
	if err != nil {
		return DecodedTuple{}, err
	}
	return DecodedTupleFromValues(nil, f.outputs.All(), values)
}

// Event is a log-emitting ABI item.
type Event struct {
	itemBase
	hash       string
	numIndexed int
}

// EventJSON is the wire shape of one event ABI item.
type EventJSON struct {
	Name   string          `json:"name"`
	Inputs []ParameterJSON `json:"inputs"`
	Extra  map[string]any  `json:"extra,omitempty"`
}

func EventFromJSON(j EventJSON) (*Event, error) {
	inputs, err := ParametersFromJSON(j.Inputs)
	if err != nil {
		return nil, err
	}
	return NewEvent(j.Name, inputs, j.Extra), nil
}

func NewEvent(name string, inputs Parameters, extra map[string]any) *Event {
	base := newItemBase(name, inputs, extra)
	digest := crypto.Keccak256([]byte(base.signature))
	return &Event{
		itemBase:   base,
		hash:       hex.EncodeToString(digest),
		numIndexed: len(inputs.Indexed(true)),
	}
}

func (e *Event) Hash() string      { return e.hash }
func (e *Event) NumIndexed() int   { return e.numIndexed }

// IsOf reports whether a raw log entry (with "topics" and "data" hex fields) matches this
// event, by hash and optionally by indexed-parameter count.
func (e *Event) IsOf(topics []string, checkNumIndexed bool) bool {
	if len(topics) == 0 || strings.TrimPrefix(topics[0], "0x") != e.hash {
		return false
	}
	if checkNumIndexed && (len(topics)-1) != e.numIndexed {
		return false
	}
	return true
}

// Decode decodes a log's topics and data into a tuple keyed by parameter name, reordering the
// interleaved indexed/non-indexed decode results back into declaration order.
func (e *Event) Decode(topics []string, data string) (DecodedTuple, error) {
	decodedByName := map[string]any{}

	indexedParams := e.inputs.Indexed(true)
	if len(topics)-1 < len(indexedParams) {
		return DecodedTuple{}, abierr.New("log for event %s has fewer topics than indexed parameters", e.name)
	}

	var indexedHex strings.Builder
	for _, topic := range topics[1:] {
		indexedHex.WriteString(strings.TrimPrefix(topic, "0x"))
	}
	indexedBytes, err := hex.DecodeString(indexedHex.String())
	if err != nil {
		return DecodedTuple{}, fmt.Errorf("decoding indexed topics: %w", err)
	}
	indexedValues, err := decodeValues(indexedParams, indexedBytes)
	if err != nil {
		return DecodedTuple{}, err
	}
	for i, p := range indexedParams {
		decodedByName[p.Name()] = indexedValues[i]
	}

	unindexedParams := e.inputs.Indexed(false)
	dataBytes, err := hex.DecodeString(strings.TrimPrefix(data, "0x"))
	if err != nil {
		return DecodedTuple{}, fmt.Errorf("decoding log data: %w", err)
	}
	unindexedValues, err := decodeValues(unindexedParams, dataBytes)
	if err != nil {
		return DecodedTuple{}, err
	}
	for i, p := range unindexedParams {
		decodedByName[p.Name()] = unindexedValues[i]
	}

	all := e.inputs.All()
	values := make([]any, len(all))
	for i, p := range all {
		values[i] = decodedByName[p.Name()]
	}

	return DecodedTupleFromValues(nil, all, values)
}
