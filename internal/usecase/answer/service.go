// Package answer writes the natural-language explanation of retrieved facilities.
package answer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/carefinder/carefinder/internal/domain"
	"github.com/carefinder/carefinder/internal/domain/facility"
	"github.com/carefinder/carefinder/internal/logger"
)

// Service composes answers with one LLM call per query.
type Service struct {
	llm Completer
}

// New creates an answer composer.
func New(llm Completer) *Service {
	return &Service{llm: llm}
}

// Compose explains records in response to query. It always returns a usable
// answer: the apology when there are no records, or a deterministic listing
// when the model fails, in which case the error is returned alongside.
func (s *Service) Compose(ctx context.Context, query string, records []facility.Facility) (string, error) {
	if len(records) == 0 {
		return ApologyMessage, nil
	}

	res, err := s.llm.Complete(ctx, domain.CompletionRequest{
		System:      systemPrompt,
		Prompt:      fmt.Sprintf(answerPrompt, query, formatRecords(records)),
		Temperature: answerTemperature,
		MaxTokens:   answerMaxTokens,
		Purpose:     "answer",
	})
	if err == nil && strings.TrimSpace(res.Text) == "" {
		err = errors.New("empty completion")
	}
	if err != nil {
		logger.FromContext(ctx).Warn("Answer generation failed, using fallback", zap.Error(err))
		return fallbackAnswer(records), fmt.Errorf("compose answer: %w", err)
	}

	return res.Text, nil
}
