// Package indexing builds the facility vector index from the relational store.
package indexing

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/carefinder/carefinder/internal/domain"
	"github.com/carefinder/carefinder/internal/logger"
	"github.com/carefinder/carefinder/internal/vectorindex"
)

// DefaultWorkers is the embedding worker pool size.
const DefaultWorkers = 4

// ErrNothingToIndex is returned when no active facility has embedding text.
var ErrNothingToIndex = errors.New("no facilities to index")

// Config tunes the build.
type Config struct {
	Workers      int
	ActiveStatus string
}

// Report summarises one build.
type Report struct {
	Facilities   int
	Indexed      int
	SkippedEmpty int
	FailedChunks int
	Duration     time.Duration
}

// Service builds vector indexes.
type Service struct {
	store Scanner
	embed BatchEmbedder
	cfg   Config
}

// New creates an index builder.
func New(store Scanner, embed BatchEmbedder, cfg Config) *Service {
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}
	if cfg.ActiveStatus == "" {
		cfg.ActiveStatus = domain.ActiveStatus
	}
	return &Service{store: store, embed: embed, cfg: cfg}
}

type chunk struct {
	ids   []string
	texts []string
	vecs  [][]float32
	err   error
}

// Build embeds every active facility with non-empty embedding text and
// returns the index in store order. Chunks are embedded concurrently on a
// worker pool; a failed chunk keeps its zero vectors and is counted in
// Report.FailedChunks.
func (s *Service) Build(ctx context.Context) (*vectorindex.Index, Report, error) {
	log := logger.FromContext(ctx)
	start := time.Now()

	items, err := s.store.FacilitiesByStatus(ctx, s.cfg.ActiveStatus)
	if err != nil {
		return nil, Report{}, fmt.Errorf("list facilities: %w", err)
	}
	rep := Report{Facilities: len(items)}

	size := s.embed.BatchSize()
	var chunks []*chunk
	cur := &chunk{}
	for i := range items {
		text := items[i].EmbeddingText()
		if text == "" {
			rep.SkippedEmpty++
			continue
		}
		cur.ids = append(cur.ids, items[i].ID)
		cur.texts = append(cur.texts, text)
		if len(cur.ids) == size {
			chunks = append(chunks, cur)
			cur = &chunk{}
		}
	}
	if len(cur.ids) > 0 {
		chunks = append(chunks, cur)
	}
	if len(chunks) == 0 {
		return nil, rep, ErrNothingToIndex
	}

	pool, err := ants.NewPool(min(s.cfg.Workers, len(chunks)))
	if err != nil {
		return nil, rep, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var wg sync.WaitGroup
	for _, c := range chunks {
		wg.Add(1)
		if err := pool.Submit(func() {
			defer wg.Done()
			c.vecs, c.err = s.embed.EmbedBatch(ctx, c.texts)
		}); err != nil {
			wg.Done()
			c.err = fmt.Errorf("submit chunk: %w", err)
		}
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, rep, fmt.Errorf("build canceled: %w", err)
	}

	idx, err := vectorindex.New(s.embed.Dimension())
	if err != nil {
		return nil, rep, fmt.Errorf("create index: %w", err)
	}
	for n, c := range chunks {
		if c.err != nil {
			rep.FailedChunks++
			log.Warn("Embedding chunk failed, indexed as zero vectors",
				zap.Int("chunk", n),
				zap.Int("size", len(c.ids)),
				zap.Error(c.err),
			)
		}
		for i, id := range c.ids {
			vec := domain.ZeroVector(s.embed.Dimension())
			if i < len(c.vecs) && c.vecs[i] != nil {
				vec = c.vecs[i]
			}
			if err := idx.Add(id, vec); err != nil {
				return nil, rep, fmt.Errorf("add %s: %w", id, err)
			}
		}
	}

	rep.Indexed = idx.Len()
	rep.Duration = time.Since(start)
	log.Info("Vector index built",
		zap.Int("facilities", rep.Facilities),
		zap.Int("indexed", rep.Indexed),
		zap.Int("skipped_empty", rep.SkippedEmpty),
		zap.Int("failed_chunks", rep.FailedChunks),
		zap.Duration("duration", rep.Duration),
	)
	return idx, rep, nil
}

// BuildAndSave builds the index and writes it into dir.
func (s *Service) BuildAndSave(ctx context.Context, dir string, files vectorindex.Files) (*vectorindex.Index, Report, error) {
	idx, rep, err := s.Build(ctx)
	if err != nil {
		return nil, rep, err
	}
	if err := idx.Save(dir, files); err != nil {
		return nil, rep, fmt.Errorf("save index: %w", err)
	}
	return idx, rep, nil
}
