package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperarc/semanticabi/pkg/semanticabi/column"
)

func TestWithColumnsRejectsDuplicateNames(t *testing.T) {
	s := New([]column.Column{column.NewBoolean("flag", nil)})
	_, err := s.WithColumns([]column.Column{column.NewBoolean("flag", nil)}, false)
	require.Error(t, err)
}

func TestWithColumnsAllowsOverwrite(t *testing.T) {
	s := New([]column.Column{column.Int64("amount")})
	s2, err := s.WithColumns([]column.Column{column.Float64("amount")}, true)
	require.NoError(t, err)
	c, ok := s2.Column("amount")
	require.True(t, ok)
	assert.Equal(t, "float64", c.DataKind())
}

func TestAppendSchemaWithRenameCollision(t *testing.T) {
	s := New([]column.Column{column.NewBoolean("transfer.from", nil)})
	other := New([]column.Column{column.NewBoolean("from", nil)})

	_, err := s.AppendSchemaWithRename(other, func(name string) string { return "transfer." + name })
	require.Error(t, err)
}

func TestAppendSchemaWithRenameWrapsColumn(t *testing.T) {
	s := Empty()
	other := New([]column.Column{column.Int64("value")})

	s2, err := s.AppendSchemaWithRename(other, func(name string) string { return "t." + name })
	require.NoError(t, err)

	c, ok := s2.Column("t.value")
	require.True(t, ok)
	assert.Equal(t, "t.value", c.Name())
	assert.Equal(t, "int64", c.DataKind())
}

func TestSchemaEqual(t *testing.T) {
	a := New([]column.Column{column.Int64("x")})
	b := New([]column.Column{column.Int64("x")})
	c := New([]column.Column{column.Float64("x")})

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
}
