package chi

import (
	"time"

	"github.com/carefinder/carefinder/internal/domain/facility"
	dompipe "github.com/carefinder/carefinder/internal/domain/pipeline"
	"github.com/carefinder/carefinder/internal/domain/search/request"
)

// ErrorCode is the machine-readable error code in ErrorResponse.
type ErrorCode string

// Error codes.
const (
	ErrorCodeBadRequest       ErrorCode = "bad_request"
	ErrorCodeUnauthorized     ErrorCode = "unauthorized"
	ErrorCodeValidationFailed ErrorCode = "validation_failed"
	ErrorCodeNotFound         ErrorCode = "not_found"
	ErrorCodeBudgetExceeded   ErrorCode = "budget_exceeded"
	ErrorCodeProviderError    ErrorCode = "provider_error"
	ErrorCodeInternalError    ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// SearchRequest is the body of POST /search.
type SearchRequest struct {
	Query   string         `json:"query"`
	Filters map[string]any `json:"filters,omitempty"`
}

// SearchResponse is the terminal pipeline state.
type SearchResponse struct {
	Query    string              `json:"query"`
	Answer   string              `json:"answer"`
	Results  []facility.Facility `json:"results"`
	Total    int                 `json:"total"`
	Intent   dompipe.Intent      `json:"intent"`
	Filters  request.Filters     `json:"filters"`
	Keywords []string            `json:"keywords"`
	Metadata dompipe.Metadata    `json:"metadata"`
}

func searchResponseFromState(st *dompipe.State) SearchResponse {
	return SearchResponse{
		Query:    st.Query,
		Answer:   st.Answer,
		Results:  st.Records,
		Total:    len(st.Records),
		Intent:   st.Intent,
		Filters:  st.Filters,
		Keywords: st.Keywords,
		Metadata: st.Metadata,
	}
}

// CompareRequest is the body of POST /compare.
type CompareRequest struct {
	IDs []string `json:"ids"`
}

// FacilityListResponse wraps a facility list.
type FacilityListResponse struct {
	Facilities []facility.Facility `json:"facilities"`
	Total      int                 `json:"total"`
}

// DistrictsResponse lists active facility counts per district.
type DistrictsResponse struct {
	Districts []facility.Count `json:"districts"`
	Total     int              `json:"total"`
}

// TypesResponse lists active facility counts per type.
type TypesResponse struct {
	Types []facility.Count `json:"types"`
	Total int              `json:"total"`
}

// BudgetStatus is the budget part of UsageResponse. TokensRemaining is -1
// when no limit applies.
type BudgetStatus struct {
	TokensLimit     int64      `json:"tokens_limit"`
	TokensRemaining int64      `json:"tokens_remaining"`
	IsExhausted     bool       `json:"is_exhausted"`
	ResetsAt        *time.Time `json:"resets_at,omitempty"`
}

// UsageResponse is the body of GET /usage.
type UsageResponse struct {
	Period        string       `json:"period"`
	PeriodStartAt *time.Time   `json:"period_start_at,omitempty"`
	PeriodEndAt   *time.Time   `json:"period_end_at,omitempty"`
	Provider      string       `json:"provider,omitempty"`
	TokensUsed    int64        `json:"tokens_used"`
	Budget        BudgetStatus `json:"budget"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status         string            `json:"status"`
	Checks         map[string]string `json:"checks"`
	IndexedVectors int               `json:"indexed_vectors"`
	Version        string            `json:"version"`
}
