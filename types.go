package carefinder

import (
	"github.com/carefinder/carefinder/internal/domain"
	"github.com/carefinder/carefinder/internal/domain/facility"
	dompipe "github.com/carefinder/carefinder/internal/domain/pipeline"
	"github.com/carefinder/carefinder/internal/usecase/indexing"
	"github.com/carefinder/carefinder/internal/usecase/ingest"
)

// Facility is one daycare registry record.
type Facility = facility.Facility

// Stats aggregates the active registry by district and type.
type Stats = facility.Stats

// Count is a (name, count) pair.
type Count = facility.Count

// Result is the final pipeline state for one query.
// Stage failures are reported in Result.Metadata, not as an error.
type Result = dompipe.State

// Intent is the query category chosen by intent extraction.
type Intent = dompipe.Intent

// IngestReport summarises one registry load.
type IngestReport = ingest.Report

// IndexReport summarises one vector index build.
type IndexReport = indexing.Report

// Sentinel errors returned by Client methods.
var (
	ErrNotFound       = domain.ErrNotFound
	ErrInvalidRequest = domain.ErrInvalidRequest
	ErrBudgetExceeded = domain.ErrBudgetExceeded
)
