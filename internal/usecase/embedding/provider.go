package embedding

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/carefinder/carefinder/internal/domain"
	"github.com/carefinder/carefinder/internal/metrics"
)

// DefaultBatchSize is the number of texts sent in one provider call.
const DefaultBatchSize = 100

// Provider is the embedding function seen by retrieval and index build.
// It always returns a vector of the configured dimension: empty text maps
// to the zero vector without a provider call, and a failed call degrades to
// zero vectors. The failure is still returned so callers can record it.
type Provider struct {
	inner     domain.Embedder
	dim       int
	batchSize int
	logger    *zap.Logger
}

// NewProvider wraps the decorator chain. batchSize <= 0 uses DefaultBatchSize.
func NewProvider(inner domain.Embedder, dim, batchSize int, logger *zap.Logger) *Provider {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Provider{inner: inner, dim: dim, batchSize: batchSize, logger: logger}
}

// Dimension returns the vector width.
func (p *Provider) Dimension() int { return p.dim }

// BatchSize returns the number of texts sent per provider call.
func (p *Provider) BatchSize() int { return p.batchSize }

// Embed vectorizes one text. The returned vector is never nil.
func (p *Provider) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return domain.ZeroVector(p.dim), nil
	}

	res, err := p.inner.Embed(ctx, text)
	if err != nil {
		metrics.EmbeddingZeroVectorsTotal.Inc()
		p.logger.Warn("Embedding failed, using zero vector", zap.Error(err))
		return domain.ZeroVector(p.dim), err
	}
	if len(res.Embedding) != p.dim {
		metrics.EmbeddingZeroVectorsTotal.Inc()
		err = fmt.Errorf("got %d dimensions, want %d: %w", len(res.Embedding), p.dim, domain.ErrVectorDimMismatch)
		p.logger.Warn("Embedding has wrong dimension, using zero vector", zap.Error(err))
		return domain.ZeroVector(p.dim), err
	}
	return res.Embedding, nil
}

// EmbedBatch vectorizes texts in chunks of the configured batch size.
// The result always has len(texts) vectors. A failed chunk is replaced by
// zero vectors and the remaining chunks still run; the joined chunk errors
// are returned alongside.
func (p *Provider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	var errs []error

	for offset := 0; offset < len(texts); offset += p.batchSize {
		end := min(offset+p.batchSize, len(texts))
		if err := p.embedChunk(ctx, texts[offset:end], out[offset:end]); err != nil {
			errs = append(errs, fmt.Errorf("chunk %d-%d: %w", offset, end, err))
		}
	}

	return out, errors.Join(errs...)
}

// embedChunk fills dst with vectors for texts. Blank texts get zero vectors
// and are not sent to the provider.
func (p *Provider) embedChunk(ctx context.Context, texts []string, dst [][]float32) error {
	var (
		pending []string
		slots   []int
	)
	for i, t := range texts {
		if strings.TrimSpace(t) == "" {
			dst[i] = domain.ZeroVector(p.dim)
			continue
		}
		pending = append(pending, t)
		slots = append(slots, i)
	}
	if len(pending) == 0 {
		return nil
	}

	res, err := p.batch(ctx, pending)
	if err == nil && len(res.Embeddings) != len(pending) {
		err = fmt.Errorf("got %d embeddings for %d texts: %w",
			len(res.Embeddings), len(pending), domain.ErrEmbeddingProviderError)
	}
	if err != nil {
		metrics.EmbeddingZeroVectorsTotal.Add(float64(len(slots)))
		p.logger.Warn("Embedding chunk failed, using zero vectors",
			zap.Int("chunk_size", len(pending)),
			zap.Error(err),
		)
		for _, slot := range slots {
			dst[slot] = domain.ZeroVector(p.dim)
		}
		return err
	}

	for j, slot := range slots {
		vec := res.Embeddings[j]
		if len(vec) != p.dim {
			vec = domain.ZeroVector(p.dim)
		}
		dst[slot] = vec
	}
	return nil
}

func (p *Provider) batch(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	if be, ok := p.inner.(domain.BatchEmbedder); ok {
		return be.BatchEmbed(ctx, texts)
	}
	return domain.BatchFallback(ctx, p.inner, texts)
}
