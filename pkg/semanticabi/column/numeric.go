package column

import (
	"fmt"
	"math/big"
)

// NumericType is the higher-order semantic meaning of a numeric column, driving both its
// default index hints and whether it's treated as a dimension or a measure.
type NumericType struct {
	Code        string
	IsDimension bool
	indexTypes  map[IndexType]struct{}
}

func (t NumericType) IndexTypes() map[IndexType]struct{} {
	if t.indexTypes != nil {
		return t.indexTypes
	}
	return indexSet(IndexRange)
}

var (
	NumericNone     = NumericType{Code: "", IsDimension: false}
	NumericCurrency = NumericType{Code: "currency", IsDimension: false}
	NumericScale    = NumericType{Code: "scale", IsDimension: false}
	NumericCount    = NumericType{Code: "count", IsDimension: false}
	NumericIndex    = NumericType{Code: "index", IsDimension: true}
	NumericEnum     = NumericType{Code: "enum", IsDimension: true, indexTypes: indexSet(IndexInverted)}
)

// NumericColumn is an integer or floating point measure/dimension column. Values wider than
// what a native Go numeric type can losslessly ingest are coerced to decimal strings, mirroring
// the silver/string-backed "CoercedNumericSilverColumn" used for uint256/int256 in the original.
type NumericColumn struct {
	base
	kind            string
	ingestType      string
	expectedType    string
	higherOrderType NumericType
	isDimension     bool
	precision       int
	scale           int
	asString        bool
}

type numericOpt func(*NumericColumn)

// WithHigherOrderType overrides the NumericType (currency/index/enum/...) attached to a column.
func WithHigherOrderType(t NumericType) numericOpt {
	return func(c *NumericColumn) { c.higherOrderType = t }
}

// WithDimension forces whether the column is treated as a dimension, overriding the default
// driven by its NumericType.
func WithDimension(isDimension bool) numericOpt {
	return func(c *NumericColumn) { c.isDimension = isDimension }
}

// WithTransform attaches a wire-level Transform to a numeric constructor.
func WithTransform(t Transform) numericOpt {
	return func(c *NumericColumn) { c.transformF = t }
}

func newNumeric(name, kind, ingestType string, opts []numericOpt) *NumericColumn {
	c := &NumericColumn{
		base:            base{name: name},
		kind:            kind,
		ingestType:      ingestType,
		expectedType:    ingestType,
		higherOrderType: NumericNone,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.isDimension = c.higherOrderType.IsDimension
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func Int8(name string, opts ...numericOpt) *NumericColumn  { return newNumeric(name, "int8", "byte", opts) }
func Int16(name string, opts ...numericOpt) *NumericColumn { return newNumeric(name, "int16", "short", opts) }
func Int32(name string, opts ...numericOpt) *NumericColumn {
	return newNumeric(name, "int32", "integer", opts)
}
func Int64(name string, opts ...numericOpt) *NumericColumn { return newNumeric(name, "int64", "long", opts) }
func Uint8(name string, opts ...numericOpt) *NumericColumn { return newNumeric(name, "uint8", "short", opts) }
func Uint16(name string, opts ...numericOpt) *NumericColumn {
	return newNumeric(name, "uint16", "integer", opts)
}
func Uint32(name string, opts ...numericOpt) *NumericColumn {
	return newNumeric(name, "uint32", "long", opts)
}
func Float32(name string, opts ...numericOpt) *NumericColumn {
	return newNumeric(name, "float32", "float", opts)
}
func Float64(name string, opts ...numericOpt) *NumericColumn {
	return newNumeric(name, "float64", "double", opts)
}

// Uint64 doesn't fit losslessly in a native 64-bit integer across the whole uint64 range, so
// it's represented as a precision-20 decimal, same as the original's DecimalDatasetColumn.
func Uint64(name string, opts ...numericOpt) *NumericColumn {
	return UnscaledInt(name, 20, 0, opts...)
}

// Int128 is the max precision decimal Go can reasonably decimal-ingest without falling back to
// string coercion; sufficient for most token supplies with up to 18 decimal places.
func Int128(name string, opts ...numericOpt) *NumericColumn {
	return UnscaledInt(name, 38, 0, opts...)
}

// Int256 always overflows a fixed-precision decimal, so it's coerced to a string.
func Int256(name string, opts ...numericOpt) *NumericColumn {
	c := newNumeric(name, "decimal_string", "string", opts)
	c.expectedType = "decimal"
	c.precision = 78
	c.asString = true
	return c
}

// UnscaledInt builds a decimal-backed numeric column with the given total precision and scale,
// falling back to Int256's string coercion once precision exceeds what a decimal128 can hold.
func UnscaledInt(name string, precision, scale int, opts ...numericOpt) *NumericColumn {
	if precision > 38 {
		c := newNumeric(name, "decimal_string", "string", opts)
		c.expectedType = "decimal"
		c.precision = precision
		c.scale = scale
		c.asString = true
		return c
	}

	c := newNumeric(name, "decimal", "decimal", opts)
	c.precision = precision
	c.scale = scale
	return c
}

// FromSolidityWidth maps a Solidity int/uint bit width to the appropriately widened numeric
// column, following the exact bucket boundaries of the original NumericDatasetColumn factory
// methods.
func FromSolidityWidth(name string, signed bool, bits int, opts ...numericOpt) *NumericColumn {
	if signed {
		switch {
		case bits > 128:
			return Int256(name, opts...)
		case bits > 64:
			return Int128(name, opts...)
		case bits > 32:
			return Int64(name, opts...)
		case bits > 16:
			return Int32(name, opts...)
		case bits > 8:
			return Int16(name, opts...)
		default:
			return Int8(name, opts...)
		}
	}

	switch {
	case bits > 64:
		// uint256-style coercion; using Int256 since it's already string-backed.
		return Int256(name, opts...)
	case bits > 32:
		return Uint64(name, opts...)
	case bits > 16:
		return Uint32(name, opts...)
	case bits > 8:
		return Uint16(name, opts...)
	default:
		return Uint8(name, opts...)
	}
}

func (c *NumericColumn) DataKind() string { return c.kind }

func (c *NumericColumn) IndexTypes() map[IndexType]struct{} {
	return c.higherOrderType.IndexTypes()
}

func (c *NumericColumn) TypeMetadata() TypeMetadata {
	return TypeMetadata{
		IngestType:   c.ingestType,
		ExpectedType: c.expectedType,
		Precision:    c.precision,
		Scale:        c.scale,
	}
}

func (c *NumericColumn) ExtendedMetadata() map[string]any {
	return map[string]any{"higherOrderType": c.higherOrderType.Code}
}

func (c *NumericColumn) AnalyticalType() AnalyticalType {
	if c.isDimension {
		return Dimension
	}
	return Measure
}

func (c *NumericColumn) Transform(row map[string]any) (any, error) {
	v, err := c.rawValue(row)
	if err != nil || v == nil {
		return nil, err
	}

	if c.asString {
		return fmt.Sprintf("%v", v), nil
	}

	if c.kind == "float32" || c.kind == "float64" {
		return toFloat64(v), nil
	}

	if bi, ok := v.(*big.Int); ok {
		return bi, nil
	}

	return v, nil
}

// toFloat64 widens an int64 or *big.Int raw value up to a float64 so a declared float/double
// column never leaks an unconverted integer type, e.g. an @expressions entry computed from a
// flattened uint256 parameter.
func toFloat64(v any) any {
	switch t := v.(type) {
	case int64:
		return float64(t)
	case *big.Int:
		f, _ := new(big.Float).SetInt(t).Float64()
		return f
	default:
		return v
	}
}

func (c *NumericColumn) Equal(other Column) bool {
	o, ok := other.(*NumericColumn)
	if !ok {
		return false
	}
	return o.name == c.name && o.kind == c.kind && o.ingestType == c.ingestType &&
		o.expectedType == c.expectedType && o.higherOrderType.Code == c.higherOrderType.Code &&
		o.isDimension == c.isDimension && o.precision == c.precision && o.scale == c.scale
}
