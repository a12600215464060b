package vectorindex

import (
	"sync"

	"github.com/carefinder/carefinder/internal/domain"
)

// Holder shares an immutable Index between concurrent readers and allows
// the whole index to be swapped after a rebuild.
type Holder struct {
	mu  sync.RWMutex
	idx *Index
}

// NewHolder wraps idx, which may be nil.
func NewHolder(idx *Index) *Holder {
	return &Holder{idx: idx}
}

// Swap replaces the held index and returns the previous one.
func (h *Holder) Swap(idx *Index) *Index {
	h.mu.Lock()
	defer h.mu.Unlock()
	prev := h.idx
	h.idx = idx
	return prev
}

// Ready reports whether a non-empty index is loaded.
func (h *Holder) Ready() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.idx != nil && h.idx.Len() > 0
}

// Len returns the number of vectors, 0 when nothing is loaded.
func (h *Holder) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.idx == nil {
		return 0
	}
	return h.idx.Len()
}

// Dim returns the vector dimension, 0 when nothing is loaded.
func (h *Holder) Dim() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.idx == nil {
		return 0
	}
	return h.idx.Dim()
}

// Search delegates to the held index.
func (h *Holder) Search(query []float32, k int) ([]Hit, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.idx == nil {
		return nil, domain.ErrIndexNotLoaded
	}
	return h.idx.Search(query, k)
}

// Distances delegates to the held index.
func (h *Holder) Distances(query []float32, ids []string) (map[string]float32, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.idx == nil {
		return nil, domain.ErrIndexNotLoaded
	}
	return h.idx.Distances(query, ids)
}
