package db

import (
	"context"
	"time"

	"github.com/carefinder/carefinder/internal/domain/facility"
	"github.com/carefinder/carefinder/internal/domain/search/filter"
)

// Store is the relational facade combining all facility sub-interfaces.
//
//nolint:interfacebloat // facade by design -- consumers use narrow sub-interfaces (ISP)
type Store interface {
	Pinger
	FacilityQuerier
	FacilityReader
	FacilityWriter
	FacilityScanner
	Aggregator
	Close() error
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// FacilityQuery selects facilities matching Where, in store natural order, capped at Limit.
// Limit <= 0 means no cap.
type FacilityQuery struct {
	Where filter.Expression
	Limit int
}

// FacilityQuerier runs structured predicate queries.
type FacilityQuerier interface {
	FindFacilities(ctx context.Context, q FacilityQuery) ([]facility.Facility, error)
}

// FacilityReader looks facilities up by ID.
type FacilityReader interface {
	GetFacility(ctx context.Context, id string) (facility.Facility, error)
	ListFacilities(ctx context.Context, ids []string) ([]facility.Facility, error)
}

// FacilityWriter inserts or updates facilities keyed by ID.
type FacilityWriter interface {
	UpsertFacilities(ctx context.Context, items []facility.Facility) (UpsertResult, error)
}

// UpsertResult counts the rows an upsert touched.
type UpsertResult struct {
	Inserted int
	Updated  int
}

// FacilityScanner streams facilities with a given status in ID order.
type FacilityScanner interface {
	FacilitiesByStatus(ctx context.Context, status string) ([]facility.Facility, error)
}

// Aggregator computes counts over facilities with a given status.
type Aggregator interface {
	CountByStatus(ctx context.Context, status string) (int, error)
	CountByDistrict(ctx context.Context, status string) ([]facility.Count, error)
	CountByType(ctx context.Context, status string) ([]facility.Count, error)
}

// KVStore provides simple key-value operations.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	IncrBy(ctx context.Context, key string, val int64) error
	Expire(ctx context.Context, key string, ttl time.Duration, nx bool) error
}
