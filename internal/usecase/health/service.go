package health

import (
	"context"

	"go.uber.org/zap"

	"github.com/carefinder/carefinder/internal/logger"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure: queries still answer.
	Degraded Status = "degraded"
	// Unhealthy indicates the database is unreachable.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
	// CheckNotLoaded marks a missing vector index. Retrieval runs relational only.
	CheckNotLoaded CheckResult = "not_loaded"
)

// Component names used as check keys.
const (
	ComponentDatabase  = "database"
	ComponentEmbedding = "embedding"
	ComponentIndex     = "vector_index"
)

// Report aggregates health check results.
type Report struct {
	Status         Status
	Checks         map[string]CheckResult
	IndexedVectors int
}

// Service coordinates health checks.
type Service struct {
	db        DBPinger
	embedding EmbeddingChecker
	index     IndexChecker
}

// New creates a Service. embedding and index can be nil.
func New(db DBPinger, embedding EmbeddingChecker, index IndexChecker) *Service {
	return &Service{db: db, embedding: embedding, index: index}
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	log := logger.FromContext(ctx)
	checks := make(map[string]CheckResult)
	status := Healthy

	if err := s.db.Ping(ctx); err != nil {
		log.Warn("Database health check failed", zap.Error(err))
		checks[ComponentDatabase] = CheckError
		status = Unhealthy
	} else {
		checks[ComponentDatabase] = CheckOK
	}

	if s.embedding != nil {
		if err := s.embedding.HealthCheck(ctx); err != nil {
			log.Warn("Embedding health check failed", zap.Error(err))
			checks[ComponentEmbedding] = CheckError
			if status == Healthy {
				status = Degraded
			}
		} else {
			checks[ComponentEmbedding] = CheckOK
		}
	}

	var vectors int
	if s.index != nil && s.index.Ready() {
		checks[ComponentIndex] = CheckOK
		vectors = s.index.Len()
	} else {
		checks[ComponentIndex] = CheckNotLoaded
	}

	return Report{Status: status, Checks: checks, IndexedVectors: vectors}
}
