// Package catalog serves direct facility lookups and registry statistics.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/carefinder/carefinder/internal/db"
	"github.com/carefinder/carefinder/internal/domain"
	"github.com/carefinder/carefinder/internal/domain/facility"
)

const (
	// MaxCompare caps the IDs accepted by Compare.
	MaxCompare = 20
	// TopDistricts is the number of districts reported by Stats.
	TopDistricts = 10
)

// Service reads the facility registry.
type Service struct {
	reader       Reader
	agg          Aggregator
	activeStatus string
}

// New creates a catalog service. activeStatus "" uses domain.ActiveStatus.
func New(reader Reader, agg Aggregator, activeStatus string) *Service {
	if activeStatus == "" {
		activeStatus = domain.ActiveStatus
	}
	return &Service{reader: reader, agg: agg, activeStatus: activeStatus}
}

// Get returns one facility. Unknown IDs yield domain.ErrNotFound.
func (s *Service) Get(ctx context.Context, id string) (facility.Facility, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return facility.Facility{}, fmt.Errorf("id is required: %w", domain.ErrInvalidRequest)
	}
	f, err := s.reader.GetFacility(ctx, id)
	if err != nil {
		if errors.Is(err, db.ErrRowNotFound) {
			return facility.Facility{}, fmt.Errorf("facility %s: %w", id, domain.ErrNotFound)
		}
		return facility.Facility{}, fmt.Errorf("get facility: %w", err)
	}
	return f, nil
}

// Compare returns the known facilities among ids, in request order.
// Duplicates are collapsed. None known yields domain.ErrNotFound.
func (s *Service) Compare(ctx context.Context, ids []string) ([]facility.Facility, error) {
	uniq := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		uniq = append(uniq, id)
	}
	if len(uniq) == 0 {
		return nil, fmt.Errorf("ids are required: %w", domain.ErrInvalidRequest)
	}
	if len(uniq) > MaxCompare {
		return nil, fmt.Errorf("at most %d ids: %w", MaxCompare, domain.ErrInvalidRequest)
	}

	out, err := s.reader.ListFacilities(ctx, uniq)
	if err != nil {
		return nil, fmt.Errorf("list facilities: %w", err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no facilities found: %w", domain.ErrNotFound)
	}
	return out, nil
}

// Districts returns active facility counts per district, largest first.
func (s *Service) Districts(ctx context.Context) ([]facility.Count, error) {
	out, err := s.agg.CountByDistrict(ctx, s.activeStatus)
	if err != nil {
		return nil, fmt.Errorf("count by district: %w", err)
	}
	return out, nil
}

// Types returns active facility counts per type, largest first.
func (s *Service) Types(ctx context.Context) ([]facility.Count, error) {
	out, err := s.agg.CountByType(ctx, s.activeStatus)
	if err != nil {
		return nil, fmt.Errorf("count by type: %w", err)
	}
	return out, nil
}

// Stats returns the active total, the top districts and every type.
func (s *Service) Stats(ctx context.Context) (facility.Stats, error) {
	total, err := s.agg.CountByStatus(ctx, s.activeStatus)
	if err != nil {
		return facility.Stats{}, fmt.Errorf("count active: %w", err)
	}
	districts, err := s.Districts(ctx)
	if err != nil {
		return facility.Stats{}, err
	}
	types, err := s.Types(ctx)
	if err != nil {
		return facility.Stats{}, err
	}
	if len(districts) > TopDistricts {
		districts = districts[:TopDistricts]
	}
	return facility.Stats{Total: total, ByDistrict: districts, ByType: types}, nil
}
