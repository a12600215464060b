// Package intent turns a free-text query into an intent, structured filters and keywords.
package intent

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/carefinder/carefinder/internal/domain"
	"github.com/carefinder/carefinder/internal/domain/pipeline"
	"github.com/carefinder/carefinder/internal/domain/search/request"
	"github.com/carefinder/carefinder/internal/logger"
)

// Analysis is the structured reading of a query.
type Analysis struct {
	Intent   pipeline.Intent
	Filters  request.Filters
	Keywords []string
}

func emptyAnalysis() Analysis {
	return Analysis{
		Intent:   pipeline.IntentUnknown,
		Filters:  request.ParseFilters(nil),
		Keywords: []string{},
	}
}

// Service extracts intent with a single LLM call. No retries.
type Service struct {
	llm Completer
}

// New creates an intent extractor.
func New(llm Completer) *Service {
	return &Service{llm: llm}
}

// Extract analyzes the query. A blank query yields the unknown/empty
// analysis without calling the model. On any failure it returns the
// unknown/empty analysis together with the error, so callers can always proceed.
func (s *Service) Extract(ctx context.Context, query string) (Analysis, error) {
	if strings.TrimSpace(query) == "" {
		return emptyAnalysis(), nil
	}

	res, err := s.llm.Complete(ctx, domain.CompletionRequest{
		System:      systemPrompt,
		Prompt:      fmt.Sprintf(analysisPrompt, query),
		Temperature: analysisTemperature,
		MaxTokens:   analysisMaxTokens,
		JSON:        true,
		Purpose:     "intent",
	})
	if err != nil {
		return emptyAnalysis(), fmt.Errorf("analyze query: %w", err)
	}

	a, err := parseAnalysis(res.Text)
	if err != nil {
		return a, fmt.Errorf("analyze query: %w", err)
	}

	logger.FromContext(ctx).Debug("Query analyzed",
		zap.String("intent", string(a.Intent)),
		zap.Int("filters", a.Filters.Len()),
		zap.Strings("keywords", a.Keywords),
	)
	return a, nil
}
