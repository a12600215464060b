// Package app is the composition root shared by the CLI and the library client.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/carefinder/carefinder/internal/config"
	"github.com/carefinder/carefinder/internal/db"
	dbBadger "github.com/carefinder/carefinder/internal/db/badger"
	dbRedis "github.com/carefinder/carefinder/internal/db/redis"
	"github.com/carefinder/carefinder/internal/db/sqlite"
	"github.com/carefinder/carefinder/internal/domain"
	"github.com/carefinder/carefinder/internal/metrics"
	budgetrepo "github.com/carefinder/carefinder/internal/repository/budget"
	"github.com/carefinder/carefinder/internal/repository/embcache"
	openaiTransport "github.com/carefinder/carefinder/internal/transport/openai"
	"github.com/carefinder/carefinder/internal/usecase/answer"
	budgetuc "github.com/carefinder/carefinder/internal/usecase/budget"
	cataloguc "github.com/carefinder/carefinder/internal/usecase/catalog"
	"github.com/carefinder/carefinder/internal/usecase/completion"
	embeddinguc "github.com/carefinder/carefinder/internal/usecase/embedding"
	healthuc "github.com/carefinder/carefinder/internal/usecase/health"
	"github.com/carefinder/carefinder/internal/usecase/indexing"
	"github.com/carefinder/carefinder/internal/usecase/ingest"
	"github.com/carefinder/carefinder/internal/usecase/intent"
	pipelineuc "github.com/carefinder/carefinder/internal/usecase/pipeline"
	"github.com/carefinder/carefinder/internal/usecase/retrieval"
	usageuc "github.com/carefinder/carefinder/internal/usecase/usage"
	"github.com/carefinder/carefinder/internal/vectorindex"
)

// App holds every long-lived service. Build it once per process.
type App struct {
	Config config.Config
	Logger *zap.Logger

	Store    *sqlite.Store
	KV       db.KVStore
	Budget   *budgetuc.Tracker
	Embedder *embeddinguc.Provider
	Index    *vectorindex.Holder

	Pipeline *pipelineuc.Orchestrator
	Catalog  *cataloguc.Service
	Usage    *usageuc.Service
	Health   *healthuc.Service
	Ingest   *ingest.Service
	Indexing *indexing.Service

	closers []func() error
}

// Build connects the stores and wires the services. The vector index is
// loaded from cfg.Index.Dir; a missing or corrupt index is logged and
// retrieval runs relational only.
func Build(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterLLMMetrics()
	metrics.RegisterPipelineMetrics()
	metrics.RegisterHTTPMetrics()

	a := &App{Config: cfg, Logger: logger}

	store, err := sqlite.Open(ctx, sqlite.Config{
		Path:         cfg.Database.Path,
		MaxOpenConns: cfg.Database.MaxOpenConns,
		BusyTimeout:  time.Duration(cfg.Database.BusyTimeoutMs) * time.Millisecond,
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	a.Store = store
	a.closers = append(a.closers, store.Close)

	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("database not ready: %w", err)
	}

	if err := a.openCache(ctx); err != nil {
		_ = a.Close()
		return nil, err
	}

	// Pass nil interface (not typed nil pointer) when budget is not configured.
	var budgetChecker embeddinguc.BudgetChecker
	var budgetReader usageuc.BudgetReader
	if b := cfg.Embedding.Budget; b.Enabled() {
		action := budgetuc.ActionWarn
		if b.Action == "reject" {
			action = budgetuc.ActionReject
		}
		a.Budget = budgetuc.NewTracker(cfg.Embedding.Provider, b.DailyTokenLimit, b.MonthlyTokenLimit, action, logger)
		if a.KV != nil {
			a.Budget.WithStore(ctx, budgetrepo.New(a.KV, 0, 0))
		}
		budgetChecker = a.Budget
		budgetReader = a.Budget
	}

	base := openaiTransport.NewEmbedder(&openaiTransport.Config{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Provider:   cfg.Embedding.Provider,
		Logger:     logger,
	})
	var embedder domain.Embedder = base
	if a.KV != nil {
		embedder = embcache.New(base, a.KV, embcache.Options{
			Backend: cfg.Cache.Driver,
			Model:   cfg.Embedding.Model,
			TTL:     time.Duration(cfg.Cache.TTLHours) * time.Hour,
		}, metrics.EmbeddingCacheTotal, logger)
	}
	embedder = embeddinguc.NewInstrumentedEmbedder(
		embedder, cfg.Embedding.Provider, cfg.Embedding.Model, budgetChecker, logger,
	)
	a.Embedder = embeddinguc.NewProvider(embedder, cfg.Embedding.Dimensions, cfg.Embedding.BatchSize, logger)

	llm := completion.NewInstrumentedCompleter(
		openaiTransport.NewCompleter(&openaiTransport.Config{
			APIKey:   cfg.LLM.APIKey,
			BaseURL:  cfg.LLM.BaseURL,
			Model:    cfg.LLM.Model,
			Provider: cfg.LLM.Provider,
			Logger:   logger,
		}),
		cfg.LLM.Model, budgetChecker, logger,
	)

	a.Index = vectorindex.NewHolder(nil)
	a.LoadIndex()

	a.Pipeline = pipelineuc.New(
		intent.New(llm),
		retrieval.New(store, a.Index, a.Embedder, retrieval.Config{
			Oversample:     cfg.Retrieval.Oversample,
			RankByDistance: cfg.Retrieval.RankByDistance,
			ActiveStatus:   cfg.Retrieval.ActiveStatus,
		}),
		answer.New(llm),
		cfg.Retrieval.TopK,
	)
	a.Catalog = cataloguc.New(store, store, cfg.Retrieval.ActiveStatus)
	a.Usage = usageuc.New(budgetReader)

	var embCheck healthuc.EmbeddingChecker
	if cfg.Embedding.APIKey != "" {
		embCheck = base
	}
	a.Health = healthuc.New(store, embCheck, a.Index)
	a.Ingest = ingest.New(store, ingest.DefaultBatchSize)
	a.Indexing = indexing.New(store, a.Embedder, indexing.Config{
		Workers:      cfg.Embedding.Workers,
		ActiveStatus: cfg.Retrieval.ActiveStatus,
	})

	return a, nil
}

func (a *App) openCache(ctx context.Context) error {
	switch a.Config.Cache.Driver {
	case config.CacheRedis:
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    a.Config.Cache.Addrs,
			Password: a.Config.Cache.Password,
		})
		if err != nil {
			return fmt.Errorf("create redis store: %w", err)
		}
		a.closers = append(a.closers, func() error { s.Close(); return nil })
		if err := s.WaitForReady(ctx, time.Duration(a.Config.Database.ReadinessTimeout)*time.Second); err != nil {
			return fmt.Errorf("redis not ready: %w", err)
		}
		a.KV = s
	case config.CacheBadger:
		s, err := dbBadger.Open(dbBadger.Config{Dir: a.Config.Cache.BadgerDir}, a.Logger)
		if err != nil {
			return fmt.Errorf("open badger: %w", err)
		}
		a.closers = append(a.closers, s.Close)
		a.KV = s
	}
	if a.KV != nil {
		a.Logger.Info("Embedding cache enabled", zap.String("driver", a.Config.Cache.Driver))
	}
	return nil
}

// IndexFiles returns the configured index file names.
func (a *App) IndexFiles() vectorindex.Files {
	return vectorindex.Files{Index: a.Config.Index.IndexFile, Metadata: a.Config.Index.MetadataFile}
}

// LoadIndex (re)loads the vector index from disk into the shared holder.
// It reports whether an index is now loaded.
func (a *App) LoadIndex() bool {
	idx, err := vectorindex.Load(a.Config.Index.Dir, a.IndexFiles())
	switch {
	case errors.Is(err, domain.ErrIndexNotLoaded):
		a.Logger.Warn("No vector index found, retrieval is relational only",
			zap.String("dir", a.Config.Index.Dir))
		return false
	case err != nil:
		a.Logger.Error("Vector index unusable, retrieval is relational only",
			zap.String("dir", a.Config.Index.Dir), zap.Error(err))
		return false
	case idx.Dim() != a.Embedder.Dimension():
		a.Logger.Error("Vector index dimension does not match embedding model, ignoring it",
			zap.Int("index_dim", idx.Dim()), zap.Int("embedding_dim", a.Embedder.Dimension()))
		return false
	}

	a.Index.Swap(idx)
	a.Logger.Info("Vector index loaded",
		zap.Int("vectors", idx.Len()), zap.Int("dimension", idx.Dim()))
	return true
}

// Close releases stores in reverse order of opening.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
