// Package column defines the DatasetColumn hierarchy: the typed, named output columns that
// every pipeline stage assembles into a row's schema. Each column knows how to pull its value
// out of a row map, apply an optional wire-level Transform, and coerce the result into its
// final shape.
package column

import "fmt"

// AnalyticalType classifies a column for downstream analytical consumers.
type AnalyticalType string

const (
	Dimension AnalyticalType = "dimensions"
	Measure   AnalyticalType = "measures"
	Date      AnalyticalType = "dates"
)

// IndexType is a hint about what kind of index a downstream store should build for a column.
type IndexType string

const (
	IndexInverted  IndexType = "inverted"
	IndexText      IndexType = "text"
	IndexNative    IndexType = "native"
	IndexTimestamp IndexType = "timestamp"
	IndexRange     IndexType = "range"
)

// TypeMetadata describes the physical ingest type and the logical expected type of a column,
// plus whatever type-specific extras (precision/scale, array-ness, timestamp grain) apply.
type TypeMetadata struct {
	IngestType   string
	ExpectedType string
	Precision    int
	Scale        int
	IsArray      bool
	Grain        string
}

// Transform is implemented by anything that can pull and convert a value out of a raw row
// before it's handed to a DatasetColumn for final typing.
type Transform interface {
	Transform(row map[string]any, key string) (any, error)
}

// Column is a single named, typed output column.
type Column interface {
	Name() string
	DataKind() string
	IndexTypes() map[IndexType]struct{}
	TypeMetadata() TypeMetadata
	ExtendedMetadata() map[string]any
	AnalyticalType() AnalyticalType
	// Transform pulls this column's value out of row, applying any wire-level Transform and
	// then this column's own post-processing (string coercion, decimal-to-string, etc).
	Transform(row map[string]any) (any, error)
	// Equal reports whether two columns describe the same schema position: same name, type,
	// index hints, and metadata. Used by AbiSchema when unioning sibling pipelines.
	Equal(other Column) bool
}

// base carries what every column implementation needs to pull its raw value: its own name and
// an optional Transform to run instead of a bare row[name] lookup.
type base struct {
	name       string
	transformF Transform
}

func (b base) Name() string { return b.name }

func (b base) rawValue(row map[string]any) (any, error) {
	if b.transformF != nil {
		return b.transformF.Transform(row, b.name)
	}
	if v, ok := row[b.name]; ok {
		return v, nil
	}
	return nil, nil
}

func indexSet(types ...IndexType) map[IndexType]struct{} {
	set := make(map[IndexType]struct{}, len(types))
	for _, t := range types {
		set[t] = struct{}{}
	}
	return set
}

func equalIndexSets(a, b map[IndexType]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for t := range a {
		if _, ok := b[t]; !ok {
			return false
		}
	}
	return true
}

func equalMetadata(a, b map[string]any) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		other, ok := b[k]
		if !ok || fmt.Sprintf("%v", v) != fmt.Sprintf("%v", other) {
			return false
		}
	}
	return true
}
