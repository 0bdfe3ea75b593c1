package abi

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"reflect"
	"strings"

	gethabi "github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// buildArgumentMarshaling turns a Parameter into the go-ethereum ABI type descriptor needed to
// build a decodable gethabi.Type, recursing into tuple components.
func buildArgumentMarshaling(p Parameter) gethabi.ArgumentMarshaling {
	if tuple, ok := p.(*TupleParameter); ok {
		typeName := "tuple"
		if tuple.IsArray() {
			typeName = "tuple[]"
		}
		if tuple.IsArrayOfArrays() {
			typeName = "tuple[][]"
		}

		components := make([]gethabi.ArgumentMarshaling, len(tuple.Components))
		for i, c := range tuple.Components {
			components[i] = buildArgumentMarshaling(c)
		}

		return gethabi.ArgumentMarshaling{
			Name:       tuple.Name(),
			Type:       typeName,
			Components: components,
		}
	}

	prim := p.(*PrimitiveParameter)
	return gethabi.ArgumentMarshaling{
		Name: prim.Name(),
		Type: prim.primitiveType,
	}
}

func buildArguments(parameters []Parameter) (gethabi.Arguments, error) {
	args := make(gethabi.Arguments, len(parameters))
	for i, p := range parameters {
		t, err := gethabi.NewType(p.Signature(), "", argumentComponents(p))
		if err != nil {
			return nil, fmt.Errorf("building abi type for %s: %w", p.Name(), err)
		}
		// Indexed is left false even for indexed parameters: UnpackValues skips indexed
		// arguments, and callers already pass the concatenated topic words as the data.
		args[i] = gethabi.Argument{Name: p.Name(), Type: t}
	}
	return args, nil
}

func argumentComponents(p Parameter) []gethabi.ArgumentMarshaling {
	tuple, ok := p.(*TupleParameter)
	if !ok {
		return nil
	}
	marshaling := buildArgumentMarshaling(tuple)
	return marshaling.Components
}

// decodeValues decodes the ABI-encoded bytes against parameters and returns one raw Go value
// per top-level parameter, already flattened into the plain representation (strings, int64s,
// *big.Int, []any for tuples, [][]any for tuple arrays) that Decoded.go's tree builder expects.
func decodeValues(parameters []Parameter, data []byte) ([]any, error) {
	args, err := buildArguments(parameters)
	if err != nil {
		return nil, err
	}

	raw, err := args.UnpackValues(data)
	if err != nil {
		return nil, fmt.Errorf("unpacking abi values: %w", err)
	}

	out := make([]any, len(parameters))
	for i, p := range parameters {
		out[i] = convertValue(p, raw[i])
	}
	return out, nil
}

// convertValue normalizes a go-ethereum-decoded value according to the shape of parameter p:
// tuples become []any (one entry per component, in order), tuple arrays become [][]any, and
// everything else is passed through convertScalar.
func convertValue(p Parameter, v any) any {
	if tuple, ok := p.(*TupleParameter); ok {
		if tuple.IsArray() {
			rv := reflect.ValueOf(v)
			if rv.Kind() != reflect.Slice {
				return [][]any{}
			}
			rows := make([][]any, rv.Len())
			for i := 0; i < rv.Len(); i++ {
				rows[i] = tupleFields(tuple, rv.Index(i).Interface())
			}
			return rows
		}
		return tupleFields(tuple, v)
	}

	return convertScalar(v)
}

// tupleFields pulls a tuple's component values, by positional index, out of the struct value
// go-ethereum dynamically builds to hold an unpacked tuple.
func tupleFields(tuple *TupleParameter, v any) []any {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Struct {
		return make([]any, len(tuple.Components))
	}

	fields := make([]any, len(tuple.Components))
	for i, c := range tuple.Components {
		if i >= rv.NumField() {
			continue
		}
		fields[i] = convertValue(c, rv.Field(i).Interface())
	}
	return fields
}

// convertScalar turns a go-ethereum primitive decode result into the plain Go representation
// the rest of the compiler works with: lowercase hex strings for addresses/bytes, int64 for
// narrow integers, *big.Int left as-is for wide ones.
func convertScalar(v any) any {
	switch t := v.(type) {
	case common.Address:
		return strings.ToLower(t.Hex())
	case []byte:
		return hex.EncodeToString(t)
	case [32]byte:
		return hex.EncodeToString(t[:])
	case *big.Int:
		return t
	case uint8:
		return int64(t)
	case uint16:
		return int64(t)
	case uint32:
		return int64(t)
	case uint64:
		return int64(t)
	case int8:
		return int64(t)
	case int16:
		return int64(t)
	case int32:
		return int64(t)
	case int64:
		return t
	default:
		rv := reflect.ValueOf(v)
		switch rv.Kind() {
		case reflect.Array:
			if rv.Type().Elem().Kind() == reflect.Uint8 {
				buf := make([]byte, rv.Len())
				reflect.Copy(reflect.ValueOf(buf), rv)
				return hex.EncodeToString(buf)
			}
		case reflect.Slice:
			out := make([]any, rv.Len())
			for i := 0; i < rv.Len(); i++ {
				out[i] = convertScalar(rv.Index(i).Interface())
			}
			return out
		}
		return v
	}
}
