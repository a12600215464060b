package domain

import "errors"

var (
	// ErrNotFound signals a missing facility.
	ErrNotFound = errors.New("not found")
	// ErrInvalidRequest signals a malformed caller request.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrEmptyQuery signals a blank search query.
	ErrEmptyQuery = errors.New("empty query")
	// ErrVectorDimMismatch signals a vector dimension mismatch.
	ErrVectorDimMismatch = errors.New("vector dimension mismatch")
	// ErrIndexNotLoaded signals that no vector index is available.
	ErrIndexNotLoaded = errors.New("vector index not loaded")
	// ErrIndexCorrupt signals an index blob that disagrees with its sidecar.
	ErrIndexCorrupt = errors.New("vector index corrupt")
	// ErrBudgetExceeded signals an exhausted token budget.
	ErrBudgetExceeded = errors.New("token budget exceeded")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrLLMProviderError signals a chat completion failure.
	ErrLLMProviderError = errors.New("llm provider error")
	// ErrMalformedLLMOutput signals a completion that could not be parsed.
	ErrMalformedLLMOutput = errors.New("malformed llm output")
)
