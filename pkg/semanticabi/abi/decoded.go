package abi

// Decoded is one decoded value, able to serialize itself back into a JSON-ish map.
type Decoded interface {
	AddToJSON(obj map[string]any) map[string]any
}

// DecodedPrimitive is a decoded leaf value: a number, address, string, bool, or bytes blob.
// bytes/bytesN values are hex-encoded (without a 0x prefix) to match the original's use of
// Python's `.hex()`.
type DecodedPrimitive struct {
	Parameter Parameter
	Value     any
}

func (d DecodedPrimitive) AddToJSON(obj map[string]any) map[string]any {
	obj[d.Parameter.Name()] = d.Value
	return obj
}

// DecodedTupleArray is a decoded list of tuple instances. Each entry in Values is the raw,
// not-yet-wrapped component value list for one tuple instance (mirroring the original's lazy
// per-element DecodedTuple construction in add_to_json).
type DecodedTupleArray struct {
	Parameter *TupleParameter
	Values    [][]any
}

func (d DecodedTupleArray) AddToJSON(obj map[string]any) map[string]any {
	tupleJSON := make([]map[string]any, 0, len(d.Values))
	for _, values := range d.Values {
		decoded, err := DecodedTupleFromValues(nil, d.Parameter.Components, values)
		if err != nil {
			continue
		}
		tupleJSON = append(tupleJSON, decoded.ToJSON())
	}
	obj[d.Parameter.Name()] = tupleJSON
	return obj
}

// DecodedTuple is a decoded struct/tuple value, or the top-level decode result of an event or
// function (in which case Parameter is nil).
type DecodedTuple struct {
	Parameter *TupleParameter
	Decoded   []Decoded
}

// DecodedTupleFromValues zips parameters with their already-decoded raw Go values (numbers,
// addresses, strings, nested component-value slices for tuples) into a Decoded tree.
func DecodedTupleFromValues(root *TupleParameter, parameters []Parameter, values []any) (DecodedTuple, error) {
	decoded := make([]Decoded, 0, len(parameters))
	for i, parameter := range parameters {
		if i >= len(values) {
			break
		}
		value := values[i]

		if tupleParam, ok := parameter.(*TupleParameter); ok {
			if tupleParam.IsArray() {
				rows, ok := value.([][]any)
				if !ok {
					rows = nil
				}
				decoded = append(decoded, DecodedTupleArray{Parameter: tupleParam, Values: rows})
				continue
			}

			childValues, _ := value.([]any)
			child, err := DecodedTupleFromValues(tupleParam, tupleParam.Components, childValues)
			if err != nil {
				return DecodedTuple{}, err
			}
			decoded = append(decoded, child)
			continue
		}

		decoded = append(decoded, DecodedPrimitive{Parameter: parameter, Value: value})
	}

	return DecodedTuple{Parameter: root, Decoded: decoded}, nil
}

func (d DecodedTuple) AddToJSON(obj map[string]any) map[string]any {
	tupleJSON := map[string]any{}
	for _, child := range d.Decoded {
		child.AddToJSON(tupleJSON)
	}

	if d.Parameter == nil {
		return tupleJSON
	}

	obj[d.Parameter.Name()] = tupleJSON
	return obj
}

func (d DecodedTuple) ToJSON() map[string]any {
	return d.AddToJSON(map[string]any{})
}
