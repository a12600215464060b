// Package vectorindex is an exact (flat) nearest-neighbour index over
// squared Euclidean distance, persisted as a binary blob plus a JSON sidecar.
package vectorindex

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/carefinder/carefinder/internal/domain"
)

// IndexType names the index kind in the sidecar.
const IndexType = "IndexFlatL2"

// Hit is one nearest-neighbour result. Distance is the squared L2 distance.
type Hit struct {
	ID       string
	Distance float32
}

// Index holds vectors row-major with an ID per row. Row i maps to ids[i].
// An Index is not safe for concurrent mutation; see Holder for shared use.
type Index struct {
	dim  int
	ids  []string
	data []float32
}

// New creates an empty index for vectors of the given dimension.
func New(dim int) (*Index, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("dimension must be positive, got %d", dim)
	}
	return &Index{dim: dim}, nil
}

// Dim returns the vector dimension.
func (x *Index) Dim() int { return x.dim }

// Len returns the number of vectors.
func (x *Index) Len() int { return len(x.ids) }

// IDs returns a copy of the row-ordered ID list.
func (x *Index) IDs() []string { return slices.Clone(x.ids) }

// Add appends a vector.
func (x *Index) Add(id string, vec []float32) error {
	if len(vec) != x.dim {
		return fmt.Errorf("%w: got %d, want %d", domain.ErrVectorDimMismatch, len(vec), x.dim)
	}
	x.ids = append(x.ids, id)
	x.data = append(x.data, vec...)
	return nil
}

// Vector returns a copy of row i.
func (x *Index) Vector(i int) []float32 {
	return slices.Clone(x.data[i*x.dim : (i+1)*x.dim])
}

// Search returns up to k rows nearest to query, closest first.
// Equal distances keep row order.
func (x *Index) Search(query []float32, k int) ([]Hit, error) {
	if len(query) != x.dim {
		return nil, fmt.Errorf("%w: got %d, want %d", domain.ErrVectorDimMismatch, len(query), x.dim)
	}
	n := len(x.ids)
	if k <= 0 || n == 0 {
		return []Hit{}, nil
	}

	type scored struct {
		row  int
		dist float32
	}
	all := make([]scored, n)
	for i := range n {
		all[i] = scored{row: i, dist: squaredL2(query, x.data[i*x.dim:(i+1)*x.dim])}
	}
	slices.SortStableFunc(all, func(a, b scored) int { return cmp.Compare(a.dist, b.dist) })

	k = min(k, n)
	hits := make([]Hit, k)
	for i := range k {
		hits[i] = Hit{ID: x.ids[all[i].row], Distance: all[i].dist}
	}
	return hits, nil
}

// Distances returns the squared distance from query to each listed ID.
// IDs not in the index are omitted.
func (x *Index) Distances(query []float32, ids []string) (map[string]float32, error) {
	if len(query) != x.dim {
		return nil, fmt.Errorf("%w: got %d, want %d", domain.ErrVectorDimMismatch, len(query), x.dim)
	}
	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	out := make(map[string]float32, len(ids))
	for i, id := range x.ids {
		if _, ok := want[id]; ok {
			out[id] = squaredL2(query, x.data[i*x.dim:(i+1)*x.dim])
		}
	}
	return out, nil
}

func squaredL2(a, b []float32) float32 {
	var sum float32
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}
