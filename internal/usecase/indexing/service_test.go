package indexing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carefinder/carefinder/internal/domain"
	"github.com/carefinder/carefinder/internal/domain/facility"
	"github.com/carefinder/carefinder/internal/vectorindex"
)

// --- Mocks ---

type mockScanner struct {
	items  []facility.Facility
	err    error
	status string
}

func (m *mockScanner) FacilitiesByStatus(_ context.Context, status string) ([]facility.Facility, error) {
	m.status = status
	return m.items, m.err
}

// mockEmbedder encodes the first rune count of each text into the vector.
// Batches containing failText fail with zero vectors.
type mockEmbedder struct {
	dim      int
	batch    int
	failText string

	mu    sync.Mutex
	calls int
}

func (m *mockEmbedder) Dimension() int { return m.dim }
func (m *mockEmbedder) BatchSize() int { return m.batch }

func (m *mockEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	out := make([][]float32, len(texts))
	for i, t := range texts {
		if m.failText != "" && strings.Contains(t, m.failText) {
			for j := range out {
				out[j] = domain.ZeroVector(m.dim)
			}
			return out, errors.New("provider unavailable")
		}
		v := domain.ZeroVector(m.dim)
		v[0] = float32(len([]rune(t)))
		out[i] = v
	}
	return out, nil
}

func facilities(n int) []facility.Facility {
	out := make([]facility.Facility, n)
	for i := range out {
		out[i] = facility.Facility{
			ID:         fmt.Sprintf("F%02d", i),
			Name:       fmt.Sprintf("어린이집%d", i),
			StatusName: domain.ActiveStatus,
		}
	}
	return out
}

// --- Tests ---

func TestBuild_IndexesInStoreOrder(t *testing.T) {
	items := facilities(7)
	items[3].Name = ""
	sc := &mockScanner{items: items}
	emb := &mockEmbedder{dim: 3, batch: 2}

	idx, rep, err := New(sc, emb, Config{Workers: 3}).Build(context.Background())
	require.NoError(t, err)

	assert.Equal(t, domain.ActiveStatus, sc.status)
	assert.Equal(t, []string{"F00", "F01", "F02", "F04", "F05", "F06"}, idx.IDs())
	assert.Equal(t, 7, rep.Facilities)
	assert.Equal(t, 6, rep.Indexed)
	assert.Equal(t, 1, rep.SkippedEmpty)
	assert.Equal(t, 0, rep.FailedChunks)
	assert.Equal(t, 3, emb.calls)

	assert.Equal(t, float32(len([]rune("어린이집0"))), idx.Vector(0)[0])
}

func TestBuild_FailedChunkKeepsZeroVectors(t *testing.T) {
	items := facilities(4)
	items[2].Name = "실패어린이집"
	emb := &mockEmbedder{dim: 2, batch: 2, failText: "실패"}

	idx, rep, err := New(&mockScanner{items: items}, emb, Config{}).Build(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 4, rep.Indexed)
	assert.Equal(t, 1, rep.FailedChunks)
	assert.Equal(t, []float32{0, 0}, idx.Vector(2))
	assert.Equal(t, []float32{0, 0}, idx.Vector(3))
	assert.NotEqual(t, []float32{0, 0}, idx.Vector(0))
}

func TestBuild_NothingToIndex(t *testing.T) {
	items := facilities(2)
	for i := range items {
		items[i].Name = ""
	}

	_, rep, err := New(&mockScanner{items: items}, &mockEmbedder{dim: 2, batch: 10}, Config{}).Build(context.Background())
	require.ErrorIs(t, err, ErrNothingToIndex)
	assert.Equal(t, 2, rep.SkippedEmpty)
}

func TestBuild_StoreError(t *testing.T) {
	_, _, err := New(&mockScanner{err: errors.New("locked")}, &mockEmbedder{dim: 2, batch: 2}, Config{}).
		Build(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "locked")
}

func TestBuildAndSave_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	emb := &mockEmbedder{dim: 4, batch: 3}

	built, _, err := New(&mockScanner{items: facilities(5)}, emb, Config{Workers: 2}).
		BuildAndSave(context.Background(), dir, vectorindex.Files{})
	require.NoError(t, err)

	loaded, err := vectorindex.Load(dir, vectorindex.Files{})
	require.NoError(t, err)
	assert.Equal(t, built.IDs(), loaded.IDs())
	for i := range built.Len() {
		assert.Equal(t, built.Vector(i), loaded.Vector(i))
	}
}
