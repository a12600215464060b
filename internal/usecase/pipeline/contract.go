package pipeline

import (
	"context"

	"github.com/carefinder/carefinder/internal/domain/facility"
	"github.com/carefinder/carefinder/internal/domain/search/request"
	"github.com/carefinder/carefinder/internal/domain/search/result"
	"github.com/carefinder/carefinder/internal/usecase/intent"
)

// Analyzer extracts intent, filters and keywords from the query.
type Analyzer interface {
	Extract(ctx context.Context, query string) (intent.Analysis, error)
}

// Retriever runs hybrid retrieval.
type Retriever interface {
	Retrieve(ctx context.Context, req request.Request) result.Result
}

// Composer writes the answer for the retrieved records.
type Composer interface {
	Compose(ctx context.Context, query string, records []facility.Facility) (string, error)
}
