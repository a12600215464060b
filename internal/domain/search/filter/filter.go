// Package filter describes relational predicates over named facility fields.
package filter

import "fmt"

// MaxConditionsPerGroup is the maximum number of conditions per filter group.
const MaxConditionsPerGroup = 32

// MaxInValues is the maximum number of values in a membership condition.
const MaxInValues = 1000

// Expression is a structured predicate: every must condition holds, at least one
// condition of every any-of group holds, and no must-not condition holds.
type Expression struct {
	must    []Condition
	anyOf   [][]Condition
	mustNot []Condition
}

// NewExpression validates and creates a filter Expression.
// Empty any-of groups are dropped (they would match nothing).
func NewExpression(must []Condition, anyOf [][]Condition, mustNot []Condition) (Expression, error) {
	if len(must) > MaxConditionsPerGroup {
		return Expression{}, fmt.Errorf("too many must conditions (max %d)", MaxConditionsPerGroup)
	}
	if len(mustNot) > MaxConditionsPerGroup {
		return Expression{}, fmt.Errorf("too many must_not conditions (max %d)", MaxConditionsPerGroup)
	}
	groups := make([][]Condition, 0, len(anyOf))
	for i, g := range anyOf {
		if len(g) > MaxConditionsPerGroup {
			return Expression{}, fmt.Errorf("too many conditions in any_of group %d (max %d)", i, MaxConditionsPerGroup)
		}
		if len(g) > 0 {
			groups = append(groups, g)
		}
	}
	return Expression{must: must, anyOf: groups, mustNot: mustNot}, nil
}

// Must returns the conjunctive conditions.
func (e Expression) Must() []Condition { return e.must }

// AnyOf returns the disjunctive groups; each group is OR-ed internally and AND-ed with the rest.
func (e Expression) AnyOf() [][]Condition { return e.anyOf }

// MustNot returns the negated conditions.
func (e Expression) MustNot() []Condition { return e.mustNot }

// IsEmpty reports whether the expression has no conditions.
func (e Expression) IsEmpty() bool {
	return len(e.must) == 0 && len(e.anyOf) == 0 && len(e.mustNot) == 0
}

// Keys returns every field referenced by the expression, in order of appearance.
func (e Expression) Keys() []string {
	var keys []string
	add := func(cs []Condition) {
		for _, c := range cs {
			keys = append(keys, c.key)
		}
	}
	add(e.must)
	for _, g := range e.anyOf {
		add(g)
	}
	add(e.mustNot)
	return keys
}

// Kind is the comparison a Condition performs.
type Kind int

// Condition kinds.
const (
	KindEquals Kind = iota + 1
	KindContains
	KindRange
	KindIn
	KindNotNull
)

// String returns a short name for the kind.
func (k Kind) String() string {
	switch k {
	case KindEquals:
		return "eq"
	case KindContains:
		return "contains"
	case KindRange:
		return "range"
	case KindIn:
		return "in"
	case KindNotNull:
		return "not_null"
	}
	return "unknown"
}

// Condition is a single filter clause on one field.
type Condition struct {
	key       string
	kind      Kind
	value     string
	values    []string
	rangeExpr *Range
}

// NewEquals creates an exact match condition.
func NewEquals(key, value string) (Condition, error) {
	if key == "" {
		return Condition{}, fmt.Errorf("filter key is required")
	}
	if value == "" {
		return Condition{}, fmt.Errorf("match value is required for key %q", key)
	}
	return Condition{key: key, kind: KindEquals, value: value}, nil
}

// NewContains creates a substring match condition.
func NewContains(key, substr string) (Condition, error) {
	if key == "" {
		return Condition{}, fmt.Errorf("filter key is required")
	}
	if substr == "" {
		return Condition{}, fmt.Errorf("substring is required for key %q", key)
	}
	return Condition{key: key, kind: KindContains, value: substr}, nil
}

// NewRange creates a numeric range condition.
func NewRange(key string, r Range) (Condition, error) {
	if key == "" {
		return Condition{}, fmt.Errorf("filter key is required")
	}
	return Condition{key: key, kind: KindRange, rangeExpr: &r}, nil
}

// NewIn creates a membership condition. At least one value is required.
func NewIn(key string, values []string) (Condition, error) {
	if key == "" {
		return Condition{}, fmt.Errorf("filter key is required")
	}
	if len(values) == 0 {
		return Condition{}, fmt.Errorf("at least one value is required for key %q", key)
	}
	if len(values) > MaxInValues {
		return Condition{}, fmt.Errorf("too many values for key %q (max %d)", key, MaxInValues)
	}
	return Condition{key: key, kind: KindIn, values: values}, nil
}

// NewNotNull creates a presence condition.
func NewNotNull(key string) (Condition, error) {
	if key == "" {
		return Condition{}, fmt.Errorf("filter key is required")
	}
	return Condition{key: key, kind: KindNotNull}, nil
}

// Key returns the field name.
func (c Condition) Key() string { return c.key }

// Kind returns the comparison kind.
func (c Condition) Kind() Kind { return c.kind }

// Value returns the equality value or substring.
func (c Condition) Value() string { return c.value }

// Values returns the membership values.
func (c Condition) Values() []string { return c.values }

// Range returns the numeric range expression.
func (c Condition) Range() *Range { return c.rangeExpr }

// Range is a numeric range with gt/gte/lt/lte boundaries.
type Range struct {
	gt  *float64
	gte *float64
	lt  *float64
	lte *float64
}

// NewRangeFilter validates and creates a Range.
// At least one boundary required. gt/gte and lt/lte are mutually exclusive.
func NewRangeFilter(gt, gte, lt, lte *float64) (Range, error) {
	if gt == nil && gte == nil && lt == nil && lte == nil {
		return Range{}, fmt.Errorf("at least one range boundary is required")
	}
	if gt != nil && gte != nil {
		return Range{}, fmt.Errorf("cannot specify both gt and gte")
	}
	if lt != nil && lte != nil {
		return Range{}, fmt.Errorf("cannot specify both lt and lte")
	}
	return Range{gt: gt, gte: gte, lt: lt, lte: lte}, nil
}

// GreaterThan is shorthand for a range with only an exclusive lower bound.
func GreaterThan(v float64) Range { return Range{gt: &v} }

// AtLeast is shorthand for a range with only an inclusive lower bound.
func AtLeast(v float64) Range { return Range{gte: &v} }

// GT returns the lower exclusive bound.
func (r Range) GT() *float64 { return r.gt }

// GTE returns the lower inclusive bound.
func (r Range) GTE() *float64 { return r.gte }

// LT returns the upper exclusive bound.
func (r Range) LT() *float64 { return r.lt }

// LTE returns the upper inclusive bound.
func (r Range) LTE() *float64 { return r.lte }
