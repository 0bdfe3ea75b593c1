package abi

import (
	"strings"

	"github.com/hyperarc/semanticabi/pkg/semanticabi/abierr"
)

// ParameterJSON is the wire shape of one ABI input/output entry, matching solc's standard JSON
// ABI format.
type ParameterJSON struct {
	Name       string          `json:"name"`
	Type       string          `json:"type"`
	Indexed    bool            `json:"indexed"`
	Components []ParameterJSON `json:"components,omitempty"`
}

// Parameter is one parameter of an event or function, or one component of a tuple parameter.
type Parameter interface {
	Name() string
	IsIndexed() bool
	IsArray() bool
	IsArrayOfArrays() bool
	Signature() string
}

// PrimitiveParameter is a non-tuple parameter: address, uintN, bytes, string, and their array
// forms.
type PrimitiveParameter struct {
	name          string
	isIndexed     bool
	primitiveType string
}

func NewPrimitiveParameter(name string, isIndexed bool, primitiveType string) *PrimitiveParameter {
	return &PrimitiveParameter{name: name, isIndexed: isIndexed, primitiveType: primitiveType}
}

func (p *PrimitiveParameter) Name() string      { return p.name }
func (p *PrimitiveParameter) IsIndexed() bool   { return p.isIndexed }
func (p *PrimitiveParameter) IsArray() bool     { return strings.HasSuffix(p.primitiveType, "[]") }
func (p *PrimitiveParameter) Signature() string { return p.primitiveType }
func (p *PrimitiveParameter) IsArrayOfArrays() bool {
	return strings.HasSuffix(p.primitiveType, "[][]")
}

// BaseType strips up to two trailing `[]` from the primitive type (an array or an array of
// arrays), e.g. "uint256[]" -> "uint256".
func (p *PrimitiveParameter) BaseType() string {
	return strings.TrimSuffix(strings.TrimSuffix(p.primitiveType, "[]"), "[]")
}

// TupleParameter is a struct-shaped parameter with nested components.
type TupleParameter struct {
	name            string
	isIndexed       bool
	isArray         bool
	isArrayOfArrays bool
	Components      []Parameter
}

func NewTupleParameter(name string, isIndexed, isArray, isArrayOfArrays bool, components []Parameter) *TupleParameter {
	return &TupleParameter{
		name:            name,
		isIndexed:       isIndexed,
		isArray:         isArray,
		isArrayOfArrays: isArrayOfArrays,
		Components:      components,
	}
}

func (p *TupleParameter) Name() string          { return p.name }
func (p *TupleParameter) IsIndexed() bool       { return p.isIndexed }
func (p *TupleParameter) IsArray() bool         { return p.isArray }
func (p *TupleParameter) IsArrayOfArrays() bool { return p.isArrayOfArrays }

func (p *TupleParameter) Signature() string {
	parts := make([]string, len(p.Components))
	for i, c := range p.Components {
		parts[i] = c.Signature()
	}
	sig := "(" + strings.Join(parts, ",") + ")"
	if p.isArray {
		sig += "[]"
	}
	if p.isArrayOfArrays {
		sig += "[]"
	}
	return sig
}

// Parameters is an ordered list of parameters: the inputs or outputs of an item, or the
// components of a tuple.
type Parameters struct {
	items []Parameter
}

func NewParameters(items []Parameter) Parameters { return Parameters{items: items} }

func ParametersFromJSON(elements []ParameterJSON) (Parameters, error) {
	items, err := parametersFromJSON(elements)
	if err != nil {
		return Parameters{}, err
	}
	return Parameters{items: items}, nil
}

func parametersFromJSON(elements []ParameterJSON) ([]Parameter, error) {
	parameters := make([]Parameter, 0, len(elements))
	for _, el := range elements {
		if el.Name == "" {
			return nil, abierr.New("parameter name cannot be empty")
		}

		switch el.Type {
		case "tuple", "tuple[]", "tuple[][]":
			components, err := parametersFromJSON(el.Components)
			if err != nil {
				return nil, err
			}
			parameters = append(parameters, NewTupleParameter(
				el.Name,
				el.Indexed,
				strings.HasSuffix(el.Type, "[]"),
				strings.HasSuffix(el.Type, "[][]"),
				components,
			))
		default:
			parameters = append(parameters, NewPrimitiveParameter(el.Name, el.Indexed, el.Type))
		}
	}
	return parameters, nil
}

// All returns every parameter, in declaration order.
func (p Parameters) All() []Parameter { return p.items }

// Indexed returns only the indexed (or only the non-indexed) parameters, preserving order.
func (p Parameters) Indexed(indexed bool) []Parameter {
	out := make([]Parameter, 0, len(p.items))
	for _, item := range p.items {
		if item.IsIndexed() == indexed {
			out = append(out, item)
		}
	}
	return out
}

// Signatures returns the ABI type signature of every parameter, in declaration order.
func (p Parameters) Signatures() []string {
	out := make([]string, len(p.items))
	for i, item := range p.items {
		out[i] = item.Signature()
	}
	return out
}

// SignaturesIndexed is Signatures filtered to indexed (or non-indexed) parameters.
func (p Parameters) SignaturesIndexed(indexed bool) []string {
	items := p.Indexed(indexed)
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.Signature()
	}
	return out
}
