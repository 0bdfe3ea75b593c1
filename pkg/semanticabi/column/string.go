package column

import "fmt"

// StringCategory is the higher-order semantic meaning of a string column, driving its default
// index hints and, for hash categories, the default lower-casing of values via HexNormalize.
type StringCategory struct {
	Code       string
	indexTypes map[IndexType]struct{}
	isHash     bool
}

func (c StringCategory) IndexTypes() map[IndexType]struct{} {
	if c.indexTypes != nil {
		return c.indexTypes
	}
	return indexSet(IndexInverted)
}

var (
	StringNone            = StringCategory{Code: ""}
	StringEnum            = StringCategory{Code: "enum"}
	StringBlob            = StringCategory{Code: "blob", indexTypes: indexSet(IndexInverted, IndexText)}
	StringBlockHash       = StringCategory{Code: "blockHash", isHash: true}
	StringTransactionHash = StringCategory{Code: "transactionHash", isHash: true}
	StringAddressHash     = StringCategory{Code: "addressHash", isHash: true}
	StringHash            = StringCategory{Code: "hash", isHash: true}
	StringSignature       = StringCategory{Code: "signature", isHash: true}
	StringID              = StringCategory{Code: "id", isHash: true}
	StringSystem          = StringCategory{Code: "system", indexTypes: map[IndexType]struct{}{}}
)

// StringColumn is a text dimension column. Hash-flavored categories (addresses, tx hashes,
// block hashes, function/event signatures, ids) default to lowercasing their value via
// HexNormalize unless the constructor is given an explicit transform.
type StringColumn struct {
	base
	category   StringCategory
	isArray    bool
	isNullable bool
}

type stringOpt func(*StringColumn)

func AsArray() stringOpt { return func(c *StringColumn) { c.isArray = true } }

func Nullable() stringOpt { return func(c *StringColumn) { c.isNullable = true } }

func WithStringTransform(t Transform) stringOpt {
	return func(c *StringColumn) { c.transformF = t }
}

func newString(name string, category StringCategory, opts []stringOpt) *StringColumn {
	c := &StringColumn{base: base{name: name}, category: category}
	if category.isHash {
		c.transformF = NewHexNormalize("")
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func NewString(name string, opts ...stringOpt) *StringColumn {
	return newString(name, StringNone, opts)
}

func NewEnum(name string, opts ...stringOpt) *StringColumn {
	return newString(name, StringEnum, opts)
}

func NewBlob(name string, opts ...stringOpt) *StringColumn {
	return newString(name, StringBlob, opts)
}

func NewBlockHash(name string, opts ...stringOpt) *StringColumn {
	return newString(name, StringBlockHash, opts)
}

func NewTransactionHash(name string, opts ...stringOpt) *StringColumn {
	return newString(name, StringTransactionHash, opts)
}

func NewAddressHash(name string, opts ...stringOpt) *StringColumn {
	return newString(name, StringAddressHash, opts)
}

func NewHash(name string, opts ...stringOpt) *StringColumn {
	return newString(name, StringHash, opts)
}

func NewSignature(name string, opts ...stringOpt) *StringColumn {
	return newString(name, StringSignature, opts)
}

func NewID(name string, opts ...stringOpt) *StringColumn {
	return newString(name, StringID, opts)
}

func NewSystemString(name string, opts ...stringOpt) *StringColumn {
	return newString(name, StringSystem, opts)
}

func (c *StringColumn) DataKind() string {
	if c.isArray {
		return "[]string"
	}
	return "string"
}

func (c *StringColumn) IndexTypes() map[IndexType]struct{} {
	return c.category.IndexTypes()
}

func (c *StringColumn) TypeMetadata() TypeMetadata {
	return TypeMetadata{IngestType: "string", ExpectedType: "string", IsArray: c.isArray}
}

func (c *StringColumn) ExtendedMetadata() map[string]any {
	return map[string]any{"category": c.category.Code, "nullable": c.isNullable}
}

func (c *StringColumn) AnalyticalType() AnalyticalType { return Dimension }

func (c *StringColumn) Transform(row map[string]any) (any, error) {
	v, err := c.rawValue(row)
	if err != nil || v == nil {
		return nil, err
	}

	if c.isArray {
		list, ok := v.([]string)
		if !ok {
			return nil, fmt.Errorf("column %s: expected []string, got %T", c.name, v)
		}
		return list, nil
	}

	s, ok := v.(string)
	if !ok {
		s = fmt.Sprintf("%v", v)
	}
	if s == "" && c.isNullable {
		return nil, nil
	}
	return s, nil
}

func (c *StringColumn) Equal(other Column) bool {
	o, ok := other.(*StringColumn)
	if !ok {
		return false
	}
	return o.name == c.name && o.category.Code == c.category.Code &&
		o.isArray == c.isArray && o.isNullable == c.isNullable
}
