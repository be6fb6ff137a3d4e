package classifier

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/nao1215/soqlq/internal/model"
)

// ErrMissingColumnName is returned when a column or join column carries no
// column name.
var ErrMissingColumnName = errors.New("column metadata has no column name")

// exprPattern matches the generated names of unaliased aggregates.
var exprPattern = regexp.MustCompile(`^expr[0-9]+$`)

// IsGeneratedAlias reports whether name is a generated aggregate name such as
// "expr0".
func IsGeneratedAlias(name string) bool {
	return exprPattern.MatchString(name)
}

// Classify maps column metadata to fields, preserving input order.
//
//   - aggregate with join columns: one subquery field with a plain child per
//     join column
//   - join columns without aggregate: one "parent.child" field per join column
//   - aggregate: a function field named by the display name, aliased by the
//     column name unless it is generated
//   - anything else: a plain field
//
// A missing column name fails the whole classification.
func Classify(columns []model.ColumnMetadata) ([]model.Field, error) {
	fields := make([]model.Field, 0, len(columns))

	for i, col := range columns {
		if col.ColumnName == "" {
			return nil, fmt.Errorf("column %d: %w", i, ErrMissingColumnName)
		}

		switch {
		case col.HasJoinColumns() && col.Aggregate:
			children := make([]string, 0, len(col.JoinColumns))
			for j, join := range col.JoinColumns {
				if join.ColumnName == "" {
					return nil, fmt.Errorf("column %d (%s), join column %d: %w", i, col.ColumnName, j, ErrMissingColumnName)
				}
				children = append(children, join.ColumnName)
			}
			fields = append(fields, model.NewSubqueryField(col.ColumnName, children...))

		case col.HasJoinColumns():
			for j, join := range col.JoinColumns {
				if join.ColumnName == "" {
					return nil, fmt.Errorf("column %d (%s), join column %d: %w", i, col.ColumnName, j, ErrMissingColumnName)
				}
				fields = append(fields, model.NewSimpleField(col.ColumnName+"."+join.ColumnName))
			}

		case col.Aggregate:
			alias := col.ColumnName
			if IsGeneratedAlias(alias) {
				alias = ""
			}
			fields = append(fields, model.NewFunctionField(col.DisplayName, alias))

		default:
			fields = append(fields, model.NewSimpleField(col.ColumnName))
		}
	}

	return fields, nil
}
