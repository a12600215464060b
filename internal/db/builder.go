package db

import (
	"fmt"
	"strings"

	"github.com/carefinder/carefinder/internal/domain/search/filter"
)

// Columns maps logical filter fields to physical column names.
// Only mapped fields may appear in a WHERE clause.
type Columns map[string]string

// WhereBuilder renders a filter.Expression as a parameterised SQL predicate
// using '?' placeholders.
type WhereBuilder struct {
	cols  Columns
	parts []string
	args  []any
}

// NewWhere starts building a WHERE clause over the given columns.
func NewWhere(cols Columns) *WhereBuilder {
	return &WhereBuilder{cols: cols}
}

// Build renders expr. An empty expression yields an empty clause.
func (b *WhereBuilder) Build(expr filter.Expression) (string, []any, error) {
	b.parts = b.parts[:0]
	b.args = b.args[:0]

	for _, cond := range expr.Must() {
		sql, err := b.condition(cond)
		if err != nil {
			return "", nil, err
		}
		b.parts = append(b.parts, sql)
	}

	for _, group := range expr.AnyOf() {
		sql, err := b.group(group)
		if err != nil {
			return "", nil, err
		}
		b.parts = append(b.parts, sql)
	}

	for _, cond := range expr.MustNot() {
		sql, err := b.condition(cond)
		if err != nil {
			return "", nil, err
		}
		b.parts = append(b.parts, "NOT ("+sql+")")
	}

	if len(b.parts) == 0 {
		return "", nil, nil
	}
	return strings.Join(b.parts, " AND "), append([]any(nil), b.args...), nil
}

func (b *WhereBuilder) group(conds []filter.Condition) (string, error) {
	parts := make([]string, 0, len(conds))
	for _, cond := range conds {
		sql, err := b.condition(cond)
		if err != nil {
			return "", err
		}
		parts = append(parts, sql)
	}
	return "(" + strings.Join(parts, " OR ") + ")", nil
}

func (b *WhereBuilder) condition(cond filter.Condition) (string, error) {
	col, ok := b.cols[cond.Key()]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownField, cond.Key())
	}

	switch cond.Kind() {
	case filter.KindEquals:
		b.args = append(b.args, cond.Value())
		return col + " = ?", nil
	case filter.KindContains:
		b.args = append(b.args, "%"+escapeLike(cond.Value())+"%")
		return col + ` LIKE ? ESCAPE '\'`, nil
	case filter.KindRange:
		return b.rangeClause(col, cond.Range())
	case filter.KindIn:
		ph := make([]string, len(cond.Values()))
		for i, v := range cond.Values() {
			ph[i] = "?"
			b.args = append(b.args, v)
		}
		return col + " IN (" + strings.Join(ph, ", ") + ")", nil
	case filter.KindNotNull:
		return col + " IS NOT NULL", nil
	}
	return "", fmt.Errorf("%w: %s on %q", ErrUnsupportedCond, cond.Kind(), cond.Key())
}

func (b *WhereBuilder) rangeClause(col string, r *filter.Range) (string, error) {
	if r == nil {
		return "", fmt.Errorf("%w: empty range on %q", ErrUnsupportedCond, col)
	}
	var parts []string
	add := func(op string, v *float64) {
		if v != nil {
			parts = append(parts, col+" "+op+" ?")
			b.args = append(b.args, *v)
		}
	}
	add(">", r.GT())
	add(">=", r.GTE())
	add("<", r.LT())
	add("<=", r.LTE())
	if len(parts) == 0 {
		return "", fmt.Errorf("%w: empty range on %q", ErrUnsupportedCond, col)
	}
	if len(parts) == 1 {
		return parts[0], nil
	}
	return "(" + strings.Join(parts, " AND ") + ")", nil
}

// escapeLike escapes LIKE wildcards so user text matches literally.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
