package ingest

import (
	"context"

	"github.com/carefinder/carefinder/internal/db"
	"github.com/carefinder/carefinder/internal/domain/facility"
)

// Writer persists facilities keyed by ID.
type Writer interface {
	UpsertFacilities(ctx context.Context, items []facility.Facility) (db.UpsertResult, error)
}
