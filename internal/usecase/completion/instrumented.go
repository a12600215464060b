// Package completion decorates the chat completer with budget enforcement.
package completion

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/carefinder/carefinder/internal/domain"
)

// BudgetChecker is the local interface for budget enforcement.
type BudgetChecker interface {
	Check(ctx context.Context) error
	Record(tokens int64)
}

// InstrumentedCompleter wraps a Completer with budget enforcement and logging.
// Transport metrics are recorded in transport/openai.
type InstrumentedCompleter struct {
	inner  domain.Completer
	model  string
	budget BudgetChecker
	logger *zap.Logger
}

// NewInstrumentedCompleter wraps inner. budget may be nil (unlimited).
func NewInstrumentedCompleter(inner domain.Completer, model string, budget BudgetChecker, logger *zap.Logger) *InstrumentedCompleter {
	return &InstrumentedCompleter{inner: inner, model: model, budget: budget, logger: logger}
}

// Complete checks the budget, delegates and records total tokens.
func (c *InstrumentedCompleter) Complete(ctx context.Context, req domain.CompletionRequest) (domain.CompletionResult, error) {
	if c.budget != nil {
		if err := c.budget.Check(ctx); err != nil {
			return domain.CompletionResult{}, fmt.Errorf("check budget: %w", err)
		}
	}

	start := time.Now()
	res, err := c.inner.Complete(ctx, req)
	duration := time.Since(start)

	if err != nil {
		c.logger.Error("Completion request failed",
			zap.String("model", c.model),
			zap.String("purpose", req.Purpose),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return domain.CompletionResult{}, fmt.Errorf("complete: %w", err)
	}

	if c.budget != nil && res.TotalTokens > 0 {
		c.budget.Record(int64(res.TotalTokens))
	}

	c.logger.Debug("Completion request completed",
		zap.String("model", c.model),
		zap.String("purpose", req.Purpose),
		zap.Duration("duration", duration),
		zap.Int("total_tokens", res.TotalTokens),
	)
	return res, nil
}
