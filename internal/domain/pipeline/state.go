// Package pipeline holds the state passed between query pipeline stages.
package pipeline

import (
	"github.com/carefinder/carefinder/internal/domain/facility"
	"github.com/carefinder/carefinder/internal/domain/search/mode"
	"github.com/carefinder/carefinder/internal/domain/search/request"
)

// Stage names in execution order.
const (
	StageAnalyze  = "analyze"
	StageRetrieve = "retrieve"
	StageCompose  = "compose"
	StageFinalize = "finalize"
)

// Stages lists the fixed stage order.
var Stages = []string{StageAnalyze, StageRetrieve, StageCompose, StageFinalize}

// State is the record threaded through the pipeline. All fields are always present.
type State struct {
	Query    string              `json:"query"`
	Intent   Intent              `json:"intent"`
	Filters  request.Filters     `json:"filters"`
	Keywords []string            `json:"keywords"`
	Records  []facility.Facility `json:"results"`
	Answer   string              `json:"answer"`
	Metadata Metadata            `json:"metadata"`
}

// NewState returns the initial state for a query: everything but Query empty.
func NewState(query string) State {
	return State{
		Query:    query,
		Intent:   IntentUnknown,
		Filters:  request.ParseFilters(nil),
		Keywords: []string{},
		Records:  []facility.Facility{},
	}
}

// Metadata accumulates stage diagnostics. Each stage writes only its own fields.
type Metadata struct {
	// analyze
	AnalyzerError string `json:"analyzer_error,omitempty"`

	// retrieve
	RetrieverError   string           `json:"retriever_error,omitempty"`
	FiltersApplied   *request.Filters `json:"filters_applied,omitempty"`
	VectorCandidates int              `json:"vector_candidates"`
	RetrievalMode    mode.Mode        `json:"retrieval_mode,omitempty"`

	// compose
	GeneratorError string `json:"generator_error,omitempty"`

	// finalize
	TotalResults  int                `json:"total_results"`
	AnswerLength  int                `json:"answer_length"`
	HasResults    bool               `json:"has_results"`
	ResultSummary []facility.Summary `json:"result_summary,omitempty"`
}

// Errors returns the recorded stage errors keyed by metadata field name.
func (m Metadata) Errors() map[string]string {
	out := map[string]string{}
	if m.AnalyzerError != "" {
		out["analyzer_error"] = m.AnalyzerError
	}
	if m.RetrieverError != "" {
		out["retriever_error"] = m.RetrieverError
	}
	if m.GeneratorError != "" {
		out["generator_error"] = m.GeneratorError
	}
	return out
}
