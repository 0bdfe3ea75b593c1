package column

import "fmt"

// TimestampColumn is either a bare epoch-seconds measure or a full timestamp dimension at a
// given grain ("s" or "ms").
type TimestampColumn struct {
	base
	isEpoch          bool
	grain            string
	isTimeSortColumn bool
}

type timestampOpt func(*TimestampColumn)

// AsTimeSortColumn flags this column as the one a downstream store should sort/partition on.
func AsTimeSortColumn() timestampOpt {
	return func(c *TimestampColumn) { c.isTimeSortColumn = true }
}

// Epoch builds an int64-seconds-since-epoch measure column.
func Epoch(name string, opts ...timestampOpt) *TimestampColumn {
	c := &TimestampColumn{base: base{name: name}, isEpoch: true}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Timestamp builds a full timestamp dimension column at the given grain, "s" or "ms".
func Timestamp(name, grain string, opts ...timestampOpt) *TimestampColumn {
	c := &TimestampColumn{base: base{name: name}, grain: grain}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *TimestampColumn) DataKind() string {
	if c.isEpoch {
		return "int64"
	}
	return "timestamp"
}

func (c *TimestampColumn) IndexTypes() map[IndexType]struct{} {
	if c.isEpoch {
		return indexSet(IndexRange)
	}
	return indexSet(IndexTimestamp)
}

func (c *TimestampColumn) TypeMetadata() TypeMetadata {
	if c.isEpoch {
		return TypeMetadata{IngestType: "long", ExpectedType: "long"}
	}
	return TypeMetadata{IngestType: "timestamp", ExpectedType: "timestamp", Grain: c.grain}
}

func (c *TimestampColumn) ExtendedMetadata() map[string]any {
	return map[string]any{"isTimeSortColumn": c.isTimeSortColumn}
}

func (c *TimestampColumn) AnalyticalType() AnalyticalType {
	if c.isEpoch {
		return Measure
	}
	return Date
}

func (c *TimestampColumn) Transform(row map[string]any) (any, error) {
	v, err := c.rawValue(row)
	if err != nil || v == nil {
		return nil, err
	}

	switch t := v.(type) {
	case int64:
		return t, nil
	case int:
		return int64(t), nil
	case float64:
		return int64(t), nil
	default:
		return nil, fmt.Errorf("column %s: expected numeric timestamp, got %T", c.name, v)
	}
}

func (c *TimestampColumn) Equal(other Column) bool {
	o, ok := other.(*TimestampColumn)
	if !ok {
		return false
	}
	return o.name == c.name && o.isEpoch == c.isEpoch && o.grain == c.grain &&
		o.isTimeSortColumn == c.isTimeSortColumn
}
