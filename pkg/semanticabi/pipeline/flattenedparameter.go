package pipeline

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/hyperarc/semanticabi/pkg/semanticabi/abi"
	"github.com/hyperarc/semanticabi/pkg/semanticabi/column"
	"github.com/hyperarc/semanticabi/pkg/semanticabi/semantic"
	"github.com/hyperarc/semanticabi/pkg/semanticabi/transformerror"
)

var intWidthPattern = regexp.MustCompile(`^(u?int)(\d*)$`)

// buildColumn maps a primitive ABI parameter's base Solidity type (already stripped of any
// array suffix) to the dataset column it decodes into. The go-ethereum-backed abi package has
// already normalized the decoded value itself (lowercased hex for addresses/bytes, *big.Int for
// wide integers), so this only needs to pick the right typed column, not re-derive a transform.
func buildColumn(parameter abi.Parameter, columnName string) column.Column {
	prim, ok := parameter.(*abi.PrimitiveParameter)
	if !ok {
		return column.NewString(columnName)
	}

	base := prim.BaseType()

	if m := intWidthPattern.FindStringSubmatch(base); m != nil {
		signed := m[1] == "int"
		bits := 256
		if m[2] != "" {
			bits, _ = strconv.Atoi(m[2])
		}
		return column.FromSolidityWidth(columnName, signed, bits)
	}

	switch {
	case base == "address":
		return column.NewAddressHash(columnName)
	case base == "bool":
		return column.NewBoolean(columnName, nil)
	case base == "string":
		return column.NewString(columnName)
	case strings.HasPrefix(base, "bytes"):
		return column.NewHash(columnName)
	default:
		return column.NewString(columnName)
	}
}

// FlattenedParameter is one primitive leaf of a semantic item's (possibly nested) parameter
// tree, together with the chain of tuple ancestors it's nested under: enough to navigate a
// decoded result's JSON tree and to name the column it flattens into.
type FlattenedParameter struct {
	parameter *semantic.SemanticParameter
	path      []*semantic.SemanticParameter
	isInput   bool
}

// RawColumnName is this parameter's column name before any rename: every ancestor's own ABI
// name, then this parameter's ABI name, joined with underscores.
func (f *FlattenedParameter) RawColumnName() string {
	return strings.Join(f.names(), "_")
}

// FinalColumnName is the column this parameter actually ends up under: its @transform's rename
// if one was declared, otherwise its RawColumnName.
func (f *FlattenedParameter) FinalColumnName() string {
	if t := f.parameter.Transform(); t != nil && t.Name() != "" {
		return t.Name()
	}
	return f.RawColumnName()
}

// FinalDatasetColumn is the schema column this parameter contributes: its @transform's declared
// type if one was set, otherwise the column its own ABI type maps to. Either way its value is
// read straight out of the row by name, since FlattenedValue has already applied the transform
// expression by the time the row reaches the schema.
func (f *FlattenedParameter) FinalDatasetColumn() column.Column {
	name := f.FinalColumnName()
	if t := f.parameter.Transform(); t != nil && t.DataType() != nil {
		return t.DataType().BuildColumn(name, nil)
	}
	return buildColumn(f.parameter.Parameter(), name)
}

func (f *FlattenedParameter) root(decoded semantic.DecodedResult) map[string]any {
	if f.isInput {
		return decoded.DecodedInputJSON
	}
	return decoded.DecodedOutputJSON
}

// names is every path ancestor's ABI name followed by this parameter's own ABI name.
func (f *FlattenedParameter) names() []string {
	names := make([]string, 0, len(f.path)+1)
	for _, ancestor := range f.path {
		names = append(names, ancestor.Parameter().Name())
	}
	return append(names, f.parameter.Parameter().Name())
}

// navigateSteps walks names down cur. Once a path segment is reached past a list (an exploded
// array's elements), the remaining segments are resolved against every element independently, so
// the result becomes a list itself: this lets the same path reach both a scalar sibling of an
// exploded array and a component nested inside each of the array's elements.
func navigateSteps(cur any, names []string) (any, error) {
	if len(names) == 0 {
		return cur, nil
	}

	switch v := cur.(type) {
	case map[string]any:
		next, ok := v[names[0]]
		if !ok {
			return nil, transformerror.New("missing parameter %q", names[0])
		}
		return navigateSteps(next, names[1:])
	case []any:
		out := make([]any, len(v))
		for i, el := range v {
			r, err := navigateSteps(el, names)
			if err != nil {
				return nil, err
			}
			out[i] = r
		}
		return out, nil
	default:
		return nil, transformerror.New("cannot navigate into %q", names[0])
	}
}

// navigate walks this parameter's ancestor path down decoded's JSON tree and returns the raw
// leaf value, without applying this parameter's @transform.
func (f *FlattenedParameter) navigate(decoded semantic.DecodedResult) (any, error) {
	return navigateSteps(f.root(decoded), f.names())
}

// FlattenedValue is this parameter's decoded value with its @transform expression applied, if
// any.
func (f *FlattenedParameter) FlattenedValue(decoded semantic.DecodedResult) (any, error) {
	v, err := f.navigate(decoded)
	if err != nil {
		return nil, err
	}
	return f.parameter.Transform().Apply(v)
}

// FlattenedArray is this parameter's decoded value navigated as a list: either the parameter is
// itself array-typed, or its path runs through an exploded array ancestor so navigate already
// distributed it into one value per element. Either way every element is passed through this
// parameter's @transform expression.
func (f *FlattenedParameter) FlattenedArray(decoded semantic.DecodedResult) ([]any, error) {
	v, err := f.navigate(decoded)
	if err != nil {
		return nil, err
	}

	arr, ok := v.([]any)
	if !ok {
		return nil, transformerror.New("parameter %q is not an array", f.FinalColumnName())
	}

	t := f.parameter.Transform()
	if t == nil {
		return arr, nil
	}

	out := make([]any, len(arr))
	for i, el := range arr {
		tv, err := t.Apply(el)
		if err != nil {
			return nil, err
		}
		out[i] = tv
	}
	return out, nil
}
