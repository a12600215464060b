package answer

import (
	"context"

	"github.com/carefinder/carefinder/internal/domain"
)

// Completer is the chat completion contract used to write answers.
type Completer interface {
	Complete(ctx context.Context, req domain.CompletionRequest) (domain.CompletionResult, error)
}
