package indexing

import (
	"context"

	"github.com/carefinder/carefinder/internal/domain/facility"
)

// Scanner lists facilities by status.
type Scanner interface {
	FacilitiesByStatus(ctx context.Context, status string) ([]facility.Facility, error)
}

// BatchEmbedder vectorizes texts. It returns len(texts) vectors even when
// it also returns an error.
type BatchEmbedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimension() int
	BatchSize() int
}
