package retrieval

import (
	"fmt"

	"github.com/carefinder/carefinder/internal/domain/facility"
	"github.com/carefinder/carefinder/internal/domain/search/filter"
	"github.com/carefinder/carefinder/internal/domain/search/request"
)

// BuildExpression turns query filters into the relational predicate.
// The result is a conjunction: active status, every recognised filter, and
// ID membership in candidates when candidates is non-empty. Age terms form a
// single disjunction group over the matching class-count fields.
func BuildExpression(f request.Filters, candidates []string, activeStatus string) (filter.Expression, error) {
	var must []filter.Condition
	add := func(c filter.Condition, err error) error {
		if err != nil {
			return err
		}
		must = append(must, c)
		return nil
	}

	if err := add(filter.NewEquals(facility.FieldStatus, activeStatus)); err != nil {
		return filter.Expression{}, fmt.Errorf("status: %w", err)
	}
	if f.District != "" {
		if err := add(filter.NewContains(facility.FieldDistrict, f.District)); err != nil {
			return filter.Expression{}, fmt.Errorf("district: %w", err)
		}
	}
	if f.Type != "" {
		if err := add(filter.NewContains(facility.FieldType, f.Type)); err != nil {
			return filter.Expression{}, fmt.Errorf("type: %w", err)
		}
	}
	if f.HasPlayground {
		if err := add(filter.NewRange(facility.FieldPlaygroundCount, filter.GreaterThan(0))); err != nil {
			return filter.Expression{}, fmt.Errorf("playground: %w", err)
		}
	}
	if f.MinCCTV != nil {
		if err := add(filter.NewRange(facility.FieldCCTVCount, filter.AtLeast(float64(*f.MinCCTV)))); err != nil {
			return filter.Expression{}, fmt.Errorf("cctv: %w", err)
		}
	}
	if f.HasVehicle {
		if err := add(filter.NewNotNull(facility.FieldVehicle)); err != nil {
			return filter.Expression{}, fmt.Errorf("vehicle: %w", err)
		}
	}
	if f.SpecialService != "" {
		if err := add(filter.NewContains(facility.FieldSpecialServices, f.SpecialService)); err != nil {
			return filter.Expression{}, fmt.Errorf("special service: %w", err)
		}
	}
	if len(candidates) > 0 {
		if err := add(filter.NewIn(facility.FieldID, candidates)); err != nil {
			return filter.Expression{}, fmt.Errorf("candidates: %w", err)
		}
	}

	var anyOf [][]filter.Condition
	if bands := f.AgeBands(); len(bands) > 0 {
		group := make([]filter.Condition, 0, len(bands))
		for _, b := range bands {
			c, err := filter.NewRange(b.ClassField(), filter.GreaterThan(0))
			if err != nil {
				return filter.Expression{}, fmt.Errorf("age: %w", err)
			}
			group = append(group, c)
		}
		anyOf = append(anyOf, group)
	}

	return filter.NewExpression(must, anyOf, nil)
}
