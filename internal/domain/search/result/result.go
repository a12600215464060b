package result

import (
	"github.com/carefinder/carefinder/internal/domain/facility"
	"github.com/carefinder/carefinder/internal/domain/search/mode"
	"github.com/carefinder/carefinder/internal/domain/search/request"
)

// Result is the outcome of one hybrid retrieval.
// Err is set when retrieval failed; Records is then empty.
type Result struct {
	Records        []facility.Facility
	Candidates     int
	FiltersApplied request.Filters
	Mode           mode.Mode
	Err            error
}

// Failed builds an empty result carrying err.
func Failed(filters request.Filters, m mode.Mode, err error) Result {
	return Result{
		Records:        []facility.Facility{},
		FiltersApplied: filters,
		Mode:           m,
		Err:            err,
	}
}

// Total returns the number of records.
func (r *Result) Total() int { return len(r.Records) }

// IDs returns the record IDs in order.
func (r *Result) IDs() []string {
	ids := make([]string, len(r.Records))
	for i := range r.Records {
		ids[i] = r.Records[i].ID
	}
	return ids
}
