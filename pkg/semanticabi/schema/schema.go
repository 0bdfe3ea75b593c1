// Package schema implements the column-schema algebra a semantic ABI document is built up
// from: appending new columns, unioning sibling pipelines, grafting a matched item's schema in
// under a renamed prefix.
package schema

import (
	"strings"

	"github.com/hyperarc/semanticabi/pkg/semanticabi/abierr"
	"github.com/hyperarc/semanticabi/pkg/semanticabi/column"
)

// AbiSchema is an ordered, name-indexed list of output columns.
type AbiSchema struct {
	columns []column.Column
	index   map[string]int
}

func New(columns []column.Column) AbiSchema {
	s := AbiSchema{columns: append([]column.Column{}, columns...)}
	s.reindex()
	return s
}

func Empty() AbiSchema { return New(nil) }

func (s *AbiSchema) reindex() {
	s.index = make(map[string]int, len(s.columns))
	for i, c := range s.columns {
		s.index[c.Name()] = i
	}
}

func (s AbiSchema) Columns() []column.Column { return s.columns }

func (s AbiSchema) Column(name string) (column.Column, bool) {
	i, ok := s.index[name]
	if !ok {
		return nil, false
	}
	return s.columns[i], true
}

func (s AbiSchema) HasColumn(name string) bool {
	_, ok := s.index[name]
	return ok
}

// WithColumns returns a new schema with columns appended. A name collision is an
// *abierr.InvalidAbiError unless allowOverwrite is set, in which case the existing column at
// that position is replaced in place.
func (s AbiSchema) WithColumns(columns []column.Column, allowOverwrite bool) (AbiSchema, error) {
	newColumns := append([]column.Column{}, s.columns...)

	for _, c := range columns {
		if i, exists := s.index[c.Name()]; exists {
			if !allowOverwrite {
				return AbiSchema{}, abierr.New("column %q already exists in schema", c.Name())
			}
			newColumns[i] = c
			continue
		}
		newColumns = append(newColumns, c)
	}

	return New(newColumns), nil
}

// AppendSchemaWithRename grafts every column of other onto this schema, renaming each one with
// renameFn (typically prefixing with a `@matches` alias) and wrapping it in a RenamedColumn so
// its original type/transform behavior is preserved under the new name.
func (s AbiSchema) AppendSchemaWithRename(other AbiSchema, renameFn func(string) string) (AbiSchema, error) {
	newColumns := append([]column.Column{}, s.columns...)

	for _, c := range other.Columns() {
		newName := renameFn(c.Name())
		if _, exists := s.index[newName]; exists {
			return AbiSchema{}, abierr.New("column %q already exists in schema", newName)
		}
		newColumns = append(newColumns, column.NewRenamed(c, newName))
	}

	return New(newColumns), nil
}

// Equal reports whether two schemas have the same columns, in the same order.
func (s AbiSchema) Equal(other AbiSchema) bool {
	if len(s.columns) != len(other.columns) {
		return false
	}
	for i, c := range s.columns {
		if !c.Equal(other.columns[i]) {
			return false
		}
	}
	return true
}

func (s AbiSchema) String() string {
	names := make([]string, len(s.columns))
	for i, c := range s.columns {
		names[i] = c.Name()
	}
	return "AbiSchema(" + strings.Join(names, ",") + ")"
}
