package column

// BooleanColumn is a plain true/false dimension column.
type BooleanColumn struct {
	base
}

// NewBoolean creates a BooleanColumn, optionally applying transformF before typing.
func NewBoolean(name string, transformF Transform) *BooleanColumn {
	return &BooleanColumn{base{name: name, transformF: transformF}}
}

func (c *BooleanColumn) DataKind() string { return "bool" }

func (c *BooleanColumn) IndexTypes() map[IndexType]struct{} {
	return indexSet(IndexInverted)
}

func (c *BooleanColumn) TypeMetadata() TypeMetadata {
	return TypeMetadata{IngestType: "boolean", ExpectedType: "boolean"}
}

func (c *BooleanColumn) ExtendedMetadata() map[string]any { return map[string]any{} }

func (c *BooleanColumn) AnalyticalType() AnalyticalType { return Dimension }

func (c *BooleanColumn) Transform(row map[string]any) (any, error) {
	v, err := c.rawValue(row)
	if err != nil || v == nil {
		return nil, err
	}
	if b, ok := v.(bool); ok {
		return b, nil
	}
	return v, nil
}

func (c *BooleanColumn) Equal(other Column) bool {
	o, ok := other.(*BooleanColumn)
	return ok && o.name == c.name
}
