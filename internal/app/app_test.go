package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/carefinder/carefinder/internal/config"
	"github.com/carefinder/carefinder/internal/vectorindex"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Config{
		Database:  config.DatabaseConfig{Path: filepath.Join(dir, "daycare.db")},
		Cache:     config.CacheConfig{BadgerDir: filepath.Join(dir, "cache")},
		Embedding: config.EmbeddingConfig{Dimensions: 4},
		Index:     config.IndexConfig{Dir: filepath.Join(dir, "index")},
	}
	cfg.ApplyDefaults()
	require.NoError(t, cfg.Validate())
	return cfg
}

func saveIndex(t *testing.T, dir string, dim int) {
	t.Helper()
	idx, err := vectorindex.New(dim)
	require.NoError(t, err)
	vec := make([]float32, dim)
	vec[0] = 1
	require.NoError(t, idx.Add("F1", vec))
	require.NoError(t, idx.Save(dir, vectorindex.Files{}))
}

func TestBuild_WithoutIndex(t *testing.T) {
	a, err := Build(context.Background(), testConfig(t), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	assert.Nil(t, a.KV)
	assert.Nil(t, a.Budget)
	assert.False(t, a.Index.Ready())
	assert.Equal(t, 4, a.Embedder.Dimension())

	rep := a.Health.Check(context.Background())
	assert.Equal(t, "not_loaded", string(rep.Checks["vector_index"]))
}

func TestBuild_LoadsMatchingIndex(t *testing.T) {
	cfg := testConfig(t)
	saveIndex(t, cfg.Index.Dir, 4)

	a, err := Build(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	assert.True(t, a.Index.Ready())
	assert.Equal(t, 1, a.Index.Len())
}

func TestBuild_IgnoresIndexWithWrongDimension(t *testing.T) {
	cfg := testConfig(t)
	saveIndex(t, cfg.Index.Dir, 8)

	a, err := Build(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	assert.False(t, a.Index.Ready())
}

func TestBuild_BadgerCacheAndBudget(t *testing.T) {
	cfg := testConfig(t)
	cfg.Cache.Driver = config.CacheBadger
	cfg.Embedding.Budget = config.BudgetConfig{DailyTokenLimit: 1000, Action: "reject"}

	a, err := Build(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	require.NotNil(t, a.KV)
	require.NotNil(t, a.Budget)
	assert.Equal(t, int64(1000), a.Budget.RemainingDaily())

	rep := a.Usage.GetReport(context.Background(), "day")
	assert.Equal(t, int64(1000), rep.Budget().TokensLimit())
}
