package semantic

import (
	"github.com/hyperarc/semanticabi/pkg/semanticabi/abi"
	"github.com/hyperarc/semanticabi/pkg/semanticabi/abierr"
	"github.com/hyperarc/semanticabi/pkg/semanticabi/expression"
)

// ParameterJSON is one input/output parameter as authored in a semantic ABI document: the
// standard ABI fields plus the `@exclude`/`@transform` annotations this compiler adds on top.
type ParameterJSON struct {
	Name       string                  `json:"name"`
	Type       string                  `json:"type"`
	Indexed    bool                    `json:"indexed,omitempty"`
	Components []ParameterJSON         `json:"components,omitempty"`
	Exclude    bool                    `json:"@exclude,omitempty"`
	Transform  *ParameterTransformJSON `json:"@transform,omitempty"`
}

// ParameterTransformJSON is the wire shape of a parameter's `@transform` block.
type ParameterTransformJSON struct {
	Name       string `json:"name,omitempty"`
	Expression string `json:"expression,omitempty"`
	Type       string `json:"type,omitempty"`
}

func toAbiJSON(j ParameterJSON) abi.ParameterJSON {
	components := make([]abi.ParameterJSON, len(j.Components))
	for i, c := range j.Components {
		components[i] = toAbiJSON(c)
	}
	return abi.ParameterJSON{Name: j.Name, Type: j.Type, Indexed: j.Indexed, Components: components}
}

// ParametersToAbiJSON strips the semantic annotations off a parameter list, leaving the plain
// ABI shape used to build the underlying abi.Event/abi.Function.
func ParametersToAbiJSON(elements []ParameterJSON) []abi.ParameterJSON {
	out := make([]abi.ParameterJSON, len(elements))
	for i, el := range elements {
		out[i] = toAbiJSON(el)
	}
	return out
}

// ParameterTransform renames, re-types, and/or re-expresses a parameter's decoded value. A
// transform expression may reference only the special variable `this` (the parameter's own
// decoded value).
type ParameterTransform struct {
	name       string
	expression *expression.Expression
	dataType   *DataType
}

func parameterTransformFromJSON(j *ParameterTransformJSON) (*ParameterTransform, error) {
	if j == nil {
		return nil, nil
	}

	t := &ParameterTransform{name: j.Name}

	if j.Expression != "" {
		expr, err := expression.Parse(j.Expression)
		if err != nil {
			return nil, abierr.New("invalid @transform expression %q: %v", j.Expression, err)
		}
		for _, col := range expr.ColumnNames() {
			if col != "this" {
				return nil, abierr.New("@transform expression %q may only reference \"this\", found %q", j.Expression, col)
			}
		}
		t.expression = expr
	}

	if j.Type != "" {
		dt, err := ParseDataType(j.Type)
		if err != nil {
			return nil, err
		}
		t.dataType = &dt
	}

	return t, nil
}

func (t *ParameterTransform) Name() string { return t.name }

func (t *ParameterTransform) DataType() *DataType { return t.dataType }

// Apply runs this transform's expression (if any) against the parameter's decoded value, and
// returns the (possibly unchanged) result.
func (t *ParameterTransform) Apply(value any) (any, error) {
	if t == nil || t.expression == nil {
		return value, nil
	}
	return t.expression.Evaluate(map[string]any{"this": value})
}

// SemanticParameter pairs one decoded ABI parameter with its semantic annotations: whether it's
// excluded from output, and its optional rename/re-expression/re-type transform.
type SemanticParameter struct {
	parameter  abi.Parameter
	exclude    bool
	transform  *ParameterTransform
	components *SemanticParameters
}

func semanticParameterFromJSON(parameter abi.Parameter, j ParameterJSON) (*SemanticParameter, error) {
	tupleParam, isTuple := parameter.(*abi.TupleParameter)

	if isTuple && j.Transform != nil {
		return nil, abierr.New("tuple parameter %q cannot carry @transform", parameter.Name())
	}

	transform, err := parameterTransformFromJSON(j.Transform)
	if err != nil {
		return nil, err
	}

	sp := &SemanticParameter{parameter: parameter, exclude: j.Exclude, transform: transform}

	if isTuple {
		components, err := SemanticParametersFromJSON(tupleParam.Components, j.Components)
		if err != nil {
			return nil, err
		}
		sp.components = components
	}

	return sp, nil
}

func (p *SemanticParameter) Parameter() abi.Parameter { return p.parameter }

func (p *SemanticParameter) IsExcluded() bool { return p.exclude }

func (p *SemanticParameter) Transform() *ParameterTransform { return p.transform }

func (p *SemanticParameter) Components() *SemanticParameters { return p.components }

// OutputName is the column name this parameter decodes to: its transform's rename if present,
// otherwise its own ABI name.
func (p *SemanticParameter) OutputName() string {
	if p.transform != nil && p.transform.name != "" {
		return p.transform.name
	}
	return p.parameter.Name()
}

// SemanticParameters is the ordered, by-name-indexed set of a parameter list's semantic
// annotations, one per sibling in an abi.Parameters tree.
type SemanticParameters struct {
	byName map[string]*SemanticParameter
	order  []string
}

// SemanticParametersFromJSON zips an already-built abi.Parameter list with the raw parameter
// JSON it was built from, validating that no two siblings declare the same name.
func SemanticParametersFromJSON(parameters []abi.Parameter, elements []ParameterJSON) (*SemanticParameters, error) {
	byJSON := make(map[string]ParameterJSON, len(elements))
	for _, el := range elements {
		if _, exists := byJSON[el.Name]; exists {
			return nil, abierr.New("duplicate parameter name %q", el.Name)
		}
		byJSON[el.Name] = el
	}

	sp := &SemanticParameters{byName: map[string]*SemanticParameter{}}
	for _, parameter := range parameters {
		el, ok := byJSON[parameter.Name()]
		if !ok {
			el = ParameterJSON{Name: parameter.Name()}
		}

		semanticParam, err := semanticParameterFromJSON(parameter, el)
		if err != nil {
			return nil, err
		}

		sp.byName[parameter.Name()] = semanticParam
		sp.order = append(sp.order, parameter.Name())
	}

	return sp, nil
}

// All returns every parameter's semantic annotations, in declaration order.
func (s *SemanticParameters) All() []*SemanticParameter {
	out := make([]*SemanticParameter, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.byName[name])
	}
	return out
}

// Get looks up a parameter's semantic annotations by its ABI name.
func (s *SemanticParameters) Get(name string) (*SemanticParameter, bool) {
	p, ok := s.byName[name]
	return p, ok
}
