package column

// RenamedColumn wraps an existing column and overrides only its name, delegating everything
// else (typing, indexing, transform) to the wrapped column. Used by schema.AbiSchema.AppendSchemaWithRename
// when grafting one item's schema under a `@matches` prefix.
type RenamedColumn struct {
	inner Column
	name  string
}

func NewRenamed(inner Column, name string) *RenamedColumn {
	return &RenamedColumn{inner: inner, name: name}
}

func (c *RenamedColumn) Name() string { return c.name }

func (c *RenamedColumn) DataKind() string { return c.inner.DataKind() }

func (c *RenamedColumn) IndexTypes() map[IndexType]struct{} { return c.inner.IndexTypes() }

func (c *RenamedColumn) TypeMetadata() TypeMetadata { return c.inner.TypeMetadata() }

func (c *RenamedColumn) ExtendedMetadata() map[string]any { return c.inner.ExtendedMetadata() }

func (c *RenamedColumn) AnalyticalType() AnalyticalType { return c.inner.AnalyticalType() }

func (c *RenamedColumn) Transform(row map[string]any) (any, error) {
	return c.inner.Transform(row)
}

func (c *RenamedColumn) Equal(other Column) bool {
	o, ok := other.(*RenamedColumn)
	if !ok {
		return false
	}
	return o.name == c.name && o.inner.Equal(c.inner)
}

// Unwrap returns the wrapped column, for callers that need the original identity (e.g. to
// re-derive the unrenamed column during schema union).
func (c *RenamedColumn) Unwrap() Column { return c.inner }
