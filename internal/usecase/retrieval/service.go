// Package retrieval implements hybrid search: vector candidates intersected
// with relational filters over the facility registry.
package retrieval

import (
	"context"
	"fmt"
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/carefinder/carefinder/internal/db"
	"github.com/carefinder/carefinder/internal/domain"
	"github.com/carefinder/carefinder/internal/domain/facility"
	"github.com/carefinder/carefinder/internal/domain/search/mode"
	"github.com/carefinder/carefinder/internal/domain/search/request"
	"github.com/carefinder/carefinder/internal/domain/search/result"
	"github.com/carefinder/carefinder/internal/logger"
	"github.com/carefinder/carefinder/internal/metrics"
)

// Config tunes retrieval.
type Config struct {
	// Oversample multiplies the result limit to size the vector candidate set.
	Oversample int
	// RankByDistance re-sorts filtered rows by vector distance.
	RankByDistance bool
	// ActiveStatus is the status value of operating facilities.
	ActiveStatus string
}

func (c Config) withDefaults() Config {
	if c.Oversample <= 0 {
		c.Oversample = request.DefaultOversample
	}
	if c.ActiveStatus == "" {
		c.ActiveStatus = domain.ActiveStatus
	}
	return c
}

// Service runs hybrid retrieval.
type Service struct {
	store Store
	index VectorIndex
	embed Embedder
	cfg   Config
}

// New creates a retrieval service. index may be nil (relational only).
func New(store Store, index VectorIndex, embed Embedder, cfg Config) *Service {
	return &Service{store: store, index: index, embed: embed, cfg: cfg.withDefaults()}
}

// Retrieve returns at most req.Limit() active facilities matching the filters,
// restricted to the vector neighbourhood of the search text when an index is
// loaded. Failures never propagate: they yield an empty result with Err set.
func (s *Service) Retrieve(ctx context.Context, req request.Request) result.Result {
	log := logger.FromContext(ctx)
	filters := req.Filters()

	useIndex := s.index != nil && s.index.Ready()
	m := mode.Relational
	if useIndex {
		m = mode.Hybrid
	}

	var (
		candidates []string
		queryVec   []float32
	)
	if useIndex {
		vec, err := s.embed.Embed(ctx, req.SearchText())
		if err != nil {
			return result.Failed(filters, m, fmt.Errorf("embed search text: %w", err))
		}
		hits, err := s.index.Search(vec, req.Limit()*s.cfg.Oversample)
		if err != nil {
			return result.Failed(filters, m, fmt.Errorf("vector search: %w", err))
		}
		candidates = make([]string, len(hits))
		for i, h := range hits {
			candidates[i] = h.ID
		}
		queryVec = vec
		metrics.RetrievalCandidates.Observe(float64(len(candidates)))
	}

	where, err := BuildExpression(filters, candidates, s.cfg.ActiveStatus)
	if err != nil {
		return result.Failed(filters, m, fmt.Errorf("build filter: %w", err))
	}

	// Ranking needs every filtered candidate before the cut to K.
	rank := s.cfg.RankByDistance && queryVec != nil
	fetch := req.Limit()
	if rank && len(candidates) > fetch {
		fetch = len(candidates)
	}

	start := time.Now()
	records, err := s.store.FindFacilities(ctx, db.FacilityQuery{Where: where, Limit: fetch})
	if err != nil {
		return result.Failed(filters, m, fmt.Errorf("query facilities: %w", err))
	}

	if rank && len(records) > 1 {
		if err := s.rankByDistance(queryVec, records); err != nil {
			log.Warn("Distance ranking skipped", zap.Error(err))
		}
	}
	if len(records) > req.Limit() {
		records = records[:req.Limit()]
	}

	log.Debug("Retrieval finished",
		zap.String("mode", string(m)),
		zap.Int("candidates", len(candidates)),
		zap.Int("results", len(records)),
		zap.Duration("query_duration", time.Since(start)),
	)

	return result.Result{
		Records:        records,
		Candidates:     len(candidates),
		FiltersApplied: filters,
		Mode:           m,
	}
}

func (s *Service) rankByDistance(query []float32, records []facility.Facility) error {
	ids := make([]string, len(records))
	for i := range records {
		ids[i] = records[i].ID
	}
	dist, err := s.index.Distances(query, ids)
	if err != nil {
		return fmt.Errorf("distances: %w", err)
	}
	slices.SortStableFunc(records, func(a, b facility.Facility) int {
		distA, okA := dist[a.ID]
		distB, okB := dist[b.ID]
		switch {
		case okA && !okB:
			return -1
		case !okA && okB:
			return 1
		case distA < distB:
			return -1
		case distA > distB:
			return 1
		}
		return 0
	})
	return nil
}
