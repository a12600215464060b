package mode

// Mode is the retrieval strategy actually used for a query.
type Mode string

// Retrieval mode constants.
const (
	// Hybrid intersects vector candidates with relational filters.
	Hybrid Mode = "hybrid"
	// Relational applies filters only; used when no vector index is loaded.
	Relational Mode = "relational"
)

// IsValid checks if the mode is one of the supported values.
func (m Mode) IsValid() bool {
	return m == Hybrid || m == Relational
}
