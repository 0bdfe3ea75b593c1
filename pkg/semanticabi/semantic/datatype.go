package semantic

import (
	"github.com/hyperarc/semanticabi/pkg/semanticabi/abierr"
	"github.com/hyperarc/semanticabi/pkg/semanticabi/column"
)

// DataType is the output type a `@transform` or flattened-array column can declare, each one
// mapping to a concrete column.Column factory.
type DataType string

const (
	DataTypeInt    DataType = "int"
	DataTypeDouble DataType = "double"
	DataTypeString DataType = "string"
)

func ParseDataType(s string) (DataType, error) {
	switch DataType(s) {
	case DataTypeInt, DataTypeDouble, DataTypeString:
		return DataType(s), nil
	}
	return "", abierr.New("unknown data type %q", s)
}

// BuildColumn constructs the column.Column this data type produces, optionally wrapping a
// wire-level transform (e.g. a flattened array element's ToString coercion).
func (d DataType) BuildColumn(name string, transformF column.Transform) column.Column {
	switch d {
	case DataTypeInt:
		if transformF != nil {
			return column.Int64(name, column.WithTransform(transformF))
		}
		return column.Int64(name)
	case DataTypeDouble:
		if transformF != nil {
			return column.Float64(name, column.WithTransform(transformF))
		}
		return column.Float64(name)
	case DataTypeString:
		if transformF != nil {
			return column.NewString(name, column.WithStringTransform(column.NewToString(transformF)))
		}
		return column.NewString(name)
	default:
		return column.NewString(name)
	}
}
