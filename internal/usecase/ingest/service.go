// Package ingest loads the open-data daycare registry export into the facility store.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/carefinder/carefinder/internal/domain"
	"github.com/carefinder/carefinder/internal/domain/facility"
	"github.com/carefinder/carefinder/internal/logger"
)

// DefaultBatchSize is the number of rows upserted per transaction.
const DefaultBatchSize = 100

// Report summarises one ingestion run.
type Report struct {
	Records  int
	Inserted int
	Updated  int
	Skipped  int
}

type document struct {
	Description json.RawMessage `json:"DESCRIPTION"`
	Data        []Record        `json:"DATA"`
}

// Service converts registry rows and upserts them.
type Service struct {
	store     Writer
	batchSize int
}

// New creates an ingestion service. batchSize <= 0 uses DefaultBatchSize.
func New(store Writer, batchSize int) *Service {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Service{store: store, batchSize: batchSize}
}

// Decode reads a registry export ({"DESCRIPTION": {...}, "DATA": [...]})
// and returns the converted facilities. Rows without a centre code are
// dropped and counted in skipped.
func Decode(r io.Reader) (items []facility.Facility, skipped int, err error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var doc document
	if err := dec.Decode(&doc); err != nil {
		return nil, 0, fmt.Errorf("decode registry export: %w: %w", domain.ErrInvalidRequest, err)
	}
	if doc.Data == nil {
		return nil, 0, fmt.Errorf("registry export has no DATA key: %w", domain.ErrInvalidRequest)
	}

	items = make([]facility.Facility, 0, len(doc.Data))
	for _, rec := range doc.Data {
		f := Convert(rec)
		if f.ID == "" {
			skipped++
			continue
		}
		items = append(items, f)
	}
	return items, skipped, nil
}

// Ingest decodes r and upserts every facility in batches.
func (s *Service) Ingest(ctx context.Context, r io.Reader) (Report, error) {
	log := logger.FromContext(ctx)

	items, skipped, err := Decode(r)
	if err != nil {
		return Report{}, err
	}
	rep := Report{Records: len(items) + skipped, Skipped: skipped}

	for start := 0; start < len(items); start += s.batchSize {
		end := min(start+s.batchSize, len(items))
		res, err := s.store.UpsertFacilities(ctx, items[start:end])
		if err != nil {
			return rep, fmt.Errorf("upsert rows %d-%d: %w", start, end-1, err)
		}
		rep.Inserted += res.Inserted
		rep.Updated += res.Updated
		log.Debug("Ingest batch stored", zap.Int("processed", end), zap.Int("total", len(items)))
	}

	log.Info("Ingest finished",
		zap.Int("records", rep.Records),
		zap.Int("inserted", rep.Inserted),
		zap.Int("updated", rep.Updated),
		zap.Int("skipped", rep.Skipped),
	)
	return rep, nil
}

// Convert maps one registry row onto a Facility.
func Convert(r Record) facility.Facility {
	return facility.Facility{
		ID:              r.str("stcode"),
		Name:            r.str("crname"),
		TypeName:        r.str("crtypename"),
		StatusName:      r.str("crstatusname"),
		Address:         r.str("craddr"),
		District:        r.str("sigunname"),
		ZipCode:         r.str("zipcode"),
		Latitude:        r.coord("la"),
		Longitude:       r.coord("lo"),
		Phone:           r.str("crtelno"),
		Fax:             r.str("crfaxno"),
		Homepage:        r.str("crhome"),
		Capacity:        r.int("crcapat"),
		CurrentChildren: r.int("crchcnt"),
		ApprovedAt:      r.str("crcnfmdt"),
		AbolishedAt:     r.str("crabldt"),
		PauseBeginAt:    r.str("crpausebegindt"),
		PauseEndAt:      r.str("crpauseenddt"),
		SpecialServices: r.str("crspec"),
		Vehicle:         r.optStr("crcargbname"),
		RoomCount:       r.int("nrtrroomcnt"),
		RoomArea:        r.float("nrtrroomsize"),
		PlaygroundCount: r.int("plgrdco"),
		CCTVCount:       r.int("cctvinstlcnt"),
		StaffCount:      r.int("em_cnt_tot"),
		Classes:         r.counts("class_cnt_"),
		Children:        r.counts("child_cnt_"),
		DataDate:        r.str("datastdrdt"),
	}
}

func (r Record) counts(prefix string) facility.AgeCounts {
	return facility.AgeCounts{
		Age0:         r.int(prefix + "00"),
		Age1:         r.int(prefix + "01"),
		Age2:         r.int(prefix + "02"),
		Age3:         r.int(prefix + "03"),
		Age4:         r.int(prefix + "04"),
		Age5:         r.int(prefix + "05"),
		MixedInfant:  r.int(prefix + "m2"),
		MixedToddler: r.int(prefix + "m5"),
		Special:      r.int(prefix + "sp"),
		Total:        r.int(prefix + "tot"),
	}
}
