package request

import (
	"fmt"
	"strings"
)

// Retrieval parameter limits.
const (
	// MaxQueryLength is the maximum allowed query length in bytes.
	MaxQueryLength = 4096
	DefaultTopK    = 10
	MaxTopK        = 100
	// DefaultOversample multiplies the limit to get the vector candidate count.
	DefaultOversample = 2
	MaxKeywords       = 32
)

// Request is a normalized retrieval request.
type Request struct {
	query    string
	filters  Filters
	keywords []string
	limit    int
}

// New normalizes retrieval parameters. Empty queries are allowed and
// resolve to an empty search text. Limit defaults to DefaultTopK and is
// clamped to MaxTopK; blank keywords are dropped.
func New(query string, filters Filters, keywords []string, limit int) Request {
	if limit <= 0 {
		limit = DefaultTopK
	}
	if limit > MaxTopK {
		limit = MaxTopK
	}
	kw := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if k = strings.TrimSpace(k); k != "" {
			kw = append(kw, k)
		}
		if len(kw) == MaxKeywords {
			break
		}
	}
	return Request{
		query:    strings.TrimSpace(query),
		filters:  filters,
		keywords: kw,
		limit:    limit,
	}
}

// ValidateQuery checks user-supplied query text at the API boundary.
func ValidateQuery(query string) error {
	if strings.TrimSpace(query) == "" {
		return fmt.Errorf("query is required")
	}
	if len(query) > MaxQueryLength {
		return fmt.Errorf("query too long (max %d chars)", MaxQueryLength)
	}
	return nil
}

// Query returns the trimmed query text.
func (r *Request) Query() string { return r.query }

// Filters returns the structured filters.
func (r *Request) Filters() Filters { return r.filters }

// Keywords returns the non-blank keywords.
func (r *Request) Keywords() []string { return r.keywords }

// Limit returns the maximum number of records to return.
func (r *Request) Limit() int { return r.limit }

// SearchText is the query followed by the keywords, space separated.
func (r *Request) SearchText() string {
	if len(r.keywords) == 0 {
		return r.query
	}
	parts := make([]string, 0, len(r.keywords)+1)
	if r.query != "" {
		parts = append(parts, r.query)
	}
	parts = append(parts, r.keywords...)
	return strings.Join(parts, " ")
}
