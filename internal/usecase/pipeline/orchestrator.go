// Package pipeline runs the fixed four-stage query pipeline:
// analyze, retrieve, compose, finalize.
package pipeline

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/carefinder/carefinder/internal/domain/facility"
	dompipe "github.com/carefinder/carefinder/internal/domain/pipeline"
	"github.com/carefinder/carefinder/internal/domain/search/request"
	"github.com/carefinder/carefinder/internal/logger"
	"github.com/carefinder/carefinder/internal/metrics"
	"github.com/carefinder/carefinder/internal/usecase/finalize"
)

type stage struct {
	name string
	run  func(ctx context.Context, s dompipe.State) dompipe.State
}

// Orchestrator is built once at startup and shared by all callers.
// It holds no per-query state.
type Orchestrator struct {
	analyzer  Analyzer
	retriever Retriever
	composer  Composer
	topK      int
}

// New wires the stages. topK <= 0 uses the default result limit.
func New(a Analyzer, r Retriever, c Composer, topK int) *Orchestrator {
	return &Orchestrator{analyzer: a, retriever: r, composer: c, topK: topK}
}

// Run executes every stage in order and returns the terminal state.
// callerFilters override extracted filters key by key. Run never fails:
// stage errors are recorded in the state metadata.
func (o *Orchestrator) Run(ctx context.Context, query string, callerFilters request.Filters) dompipe.State {
	st := dompipe.NewState(query)
	stages := []stage{
		{dompipe.StageAnalyze, func(ctx context.Context, st dompipe.State) dompipe.State {
			return o.analyze(ctx, st, callerFilters)
		}},
		{dompipe.StageRetrieve, o.retrieve},
		{dompipe.StageCompose, o.compose},
		{dompipe.StageFinalize, o.finalize},
	}

	for _, stg := range stages {
		start := time.Now()
		before := len(st.Metadata.Errors())

		sctx := logger.With(ctx, zap.String("stage", stg.name))
		st = stg.run(sctx, st)

		elapsed := time.Since(start)
		metrics.PipelineStageDuration.WithLabelValues(stg.name).Observe(elapsed.Seconds())
		if len(st.Metadata.Errors()) > before {
			metrics.PipelineStageErrorsTotal.WithLabelValues(stg.name).Inc()
		}
		logger.FromContext(sctx).Debug("Pipeline stage finished", zap.Duration("duration", elapsed))
	}

	metrics.PipelineResults.Observe(float64(len(st.Records)))
	return st
}

func (o *Orchestrator) analyze(ctx context.Context, st dompipe.State, callerFilters request.Filters) dompipe.State {
	a, err := o.analyzer.Extract(ctx, st.Query)
	if err != nil {
		st.Metadata.AnalyzerError = err.Error()
		logger.FromContext(ctx).Warn("Query analysis failed", zap.Error(err))
	}

	st.Intent = a.Intent
	if st.Intent == "" {
		st.Intent = dompipe.IntentUnknown
	}
	st.Filters = request.Merge(a.Filters, callerFilters)
	st.Keywords = a.Keywords
	if st.Keywords == nil {
		st.Keywords = []string{}
	}
	return st
}

func (o *Orchestrator) retrieve(ctx context.Context, st dompipe.State) dompipe.State {
	res := o.retriever.Retrieve(ctx, request.New(st.Query, st.Filters, st.Keywords, o.topK))
	if res.Err != nil {
		st.Metadata.RetrieverError = res.Err.Error()
		logger.FromContext(ctx).Warn("Retrieval failed", zap.Error(res.Err))
	}

	st.Records = res.Records
	if st.Records == nil {
		st.Records = []facility.Facility{}
	}
	applied := res.FiltersApplied
	st.Metadata.FiltersApplied = &applied
	st.Metadata.VectorCandidates = res.Candidates
	st.Metadata.RetrievalMode = res.Mode
	return st
}

func (o *Orchestrator) compose(ctx context.Context, st dompipe.State) dompipe.State {
	answer, err := o.composer.Compose(ctx, st.Query, st.Records)
	if err != nil {
		st.Metadata.GeneratorError = err.Error()
	}
	st.Answer = answer
	return st
}

func (o *Orchestrator) finalize(_ context.Context, st dompipe.State) dompipe.State {
	st.Answer, st.Metadata = finalize.Finalize(st.Answer, st.Records, st.Metadata)
	return st
}
