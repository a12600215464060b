package intent

import (
	"context"

	"github.com/carefinder/carefinder/internal/domain"
)

// Completer is the chat completion contract used for query analysis.
type Completer interface {
	Complete(ctx context.Context, req domain.CompletionRequest) (domain.CompletionResult, error)
}
