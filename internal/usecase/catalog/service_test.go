package catalog

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carefinder/carefinder/internal/db/sqlite"
	"github.com/carefinder/carefinder/internal/domain"
	"github.com/carefinder/carefinder/internal/domain/facility"
)

// --- Mocks ---

type failingAgg struct{ err error }

func (f failingAgg) CountByStatus(context.Context, string) (int, error) { return 0, f.err }
func (f failingAgg) CountByDistrict(context.Context, string) ([]facility.Count, error) {
	return nil, f.err
}
func (f failingAgg) CountByType(context.Context, string) ([]facility.Count, error) {
	return nil, f.err
}

func newService(t *testing.T) *Service {
	t.Helper()
	store, err := sqlite.Open(context.Background(), sqlite.Config{Path: filepath.Join(t.TempDir(), "catalog.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	var items []facility.Facility
	for d := range 12 {
		// district D00 has 12 facilities, D11 has 1
		for i := range 12 - d {
			items = append(items, facility.Facility{
				ID:         fmt.Sprintf("D%02d-%02d", d, i),
				Name:       fmt.Sprintf("어린이집 %d-%d", d, i),
				TypeName:   []string{"국공립", "민간", "가정"}[i%3],
				StatusName: domain.ActiveStatus,
				District:   fmt.Sprintf("D%02d", d),
			})
		}
	}
	items = append(items, facility.Facility{ID: "X1", Name: "폐원", StatusName: "폐지", District: "D00", TypeName: "국공립"})
	_, err = store.UpsertFacilities(context.Background(), items)
	require.NoError(t, err)

	return New(store, store, "")
}

// --- Tests ---

func TestGet(t *testing.T) {
	svc := newService(t)

	f, err := svc.Get(context.Background(), "D01-00")
	require.NoError(t, err)
	assert.Equal(t, "D01", f.District)

	_, err = svc.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.Get(context.Background(), " ")
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)
}

func TestCompare(t *testing.T) {
	svc := newService(t)

	got, err := svc.Compare(context.Background(), []string{"D02-01", "missing", "D00-00", "D02-01"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "D02-01", got[0].ID)
	assert.Equal(t, "D00-00", got[1].ID)

	_, err = svc.Compare(context.Background(), []string{"missing"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.Compare(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)

	many := make([]string, MaxCompare+1)
	for i := range many {
		many[i] = fmt.Sprintf("id-%d", i)
	}
	_, err = svc.Compare(context.Background(), many)
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)
}

func TestStats(t *testing.T) {
	svc := newService(t)

	st, err := svc.Stats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 78, st.Total)
	require.Len(t, st.ByDistrict, TopDistricts)
	assert.Equal(t, facility.Count{Name: "D00", Count: 12}, st.ByDistrict[0])
	assert.Len(t, st.ByType, 3)
	sum := 0
	for _, c := range st.ByType {
		sum += c.Count
	}
	assert.Equal(t, st.Total, sum)
}

func TestDistrictsAndTypes(t *testing.T) {
	svc := newService(t)

	districts, err := svc.Districts(context.Background())
	require.NoError(t, err)
	assert.Len(t, districts, 12)
	assert.Equal(t, facility.Count{Name: "D11", Count: 1}, districts[11])

	types, err := svc.Types(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "국공립", types[0].Name)
}

func TestStats_StoreError(t *testing.T) {
	boom := errors.New("boom")
	svc := New(nil, failingAgg{err: boom}, "")
	_, err := svc.Stats(context.Background())
	assert.ErrorIs(t, err, boom)
}
