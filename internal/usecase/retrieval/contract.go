package retrieval

import (
	"context"

	"github.com/carefinder/carefinder/internal/db"
	"github.com/carefinder/carefinder/internal/domain/facility"
	"github.com/carefinder/carefinder/internal/vectorindex"
)

// Embedder maps the search text to a query vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// VectorIndex is the read side of the loaded nearest-neighbour index.
type VectorIndex interface {
	Ready() bool
	Search(query []float32, k int) ([]vectorindex.Hit, error)
	Distances(query []float32, ids []string) (map[string]float32, error)
}

// Store runs the relational part of retrieval.
type Store interface {
	FindFacilities(ctx context.Context, q db.FacilityQuery) ([]facility.Facility, error)
}
