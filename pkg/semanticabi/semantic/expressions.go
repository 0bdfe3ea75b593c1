package semantic

import (
	"github.com/hyperarc/semanticabi/pkg/semanticabi/abierr"
	"github.com/hyperarc/semanticabi/pkg/semanticabi/column"
	"github.com/hyperarc/semanticabi/pkg/semanticabi/expression"
)

// ExpressionJSON is one named `@expressions` entry, at either item or document scope.
type ExpressionJSON struct {
	Name       string `json:"name"`
	Expression string `json:"expression"`
	Type       string `json:"type"`
}

// NamedExpression is a parsed `@expressions` entry: a new output column computed from other
// already-produced columns (or, at document scope, from metadata constants), typed by its
// declared DataType.
type NamedExpression struct {
	name     string
	expr     *expression.Expression
	dataType DataType
}

func (e *NamedExpression) Name() string { return e.name }

func (e *NamedExpression) ColumnNames() []string { return e.expr.ColumnNames() }

func (e *NamedExpression) Evaluate(row map[string]any) (any, error) {
	return e.expr.Evaluate(row)
}

// DatasetColumn is the schema column this expression contributes, built from its declared type.
func (e *NamedExpression) DatasetColumn() column.Column {
	return e.dataType.BuildColumn(e.name, nil)
}

// ExpressionsFromJSON parses a list of named expressions, rejecting duplicate names.
func ExpressionsFromJSON(elements []ExpressionJSON) ([]*NamedExpression, error) {
	seen := map[string]bool{}
	out := make([]*NamedExpression, 0, len(elements))

	for _, el := range elements {
		if el.Name == "" {
			return nil, abierr.New("@expressions entry cannot have an empty name")
		}
		if seen[el.Name] {
			return nil, abierr.New("duplicate @expressions name %q", el.Name)
		}
		seen[el.Name] = true

		dataType, err := ParseDataType(el.Type)
		if err != nil {
			return nil, abierr.New("@expressions entry %q: %v", el.Name, err)
		}

		expr, err := expression.Parse(el.Expression)
		if err != nil {
			return nil, abierr.New("invalid expression %q for %q: %v", el.Expression, el.Name, err)
		}

		out = append(out, &NamedExpression{name: el.Name, expr: expr, dataType: dataType})
	}

	return out, nil
}
