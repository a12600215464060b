package domain

import "context"

// Completer is the chat completion contract shared by the intent extractor
// and the answer composer.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (CompletionResult, error)
}

// CompletionRequest is a single system + user turn.
type CompletionRequest struct {
	System      string
	Prompt      string
	Temperature float32
	MaxTokens   int  // 0 leaves the provider default
	JSON        bool // ask for a JSON object response
	Purpose     string
}

// CompletionResult carries the completion text and token usage.
type CompletionResult struct {
	Text             string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}
