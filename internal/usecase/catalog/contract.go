package catalog

import (
	"context"

	"github.com/carefinder/carefinder/internal/domain/facility"
)

// Reader looks facilities up by ID.
type Reader interface {
	GetFacility(ctx context.Context, id string) (facility.Facility, error)
	ListFacilities(ctx context.Context, ids []string) ([]facility.Facility, error)
}

// Aggregator counts facilities with a given status.
type Aggregator interface {
	CountByStatus(ctx context.Context, status string) (int, error)
	CountByDistrict(ctx context.Context, status string) ([]facility.Count, error)
	CountByType(ctx context.Context, status string) ([]facility.Count, error)
}
