// Package sqlite implements the relational facility store on SQLite via sqlx.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3" // driver registration

	"github.com/carefinder/carefinder/internal/db"
	"github.com/carefinder/carefinder/internal/domain/facility"
)

// Compile-time check: Store implements db.Store.
var _ db.Store = (*Store)(nil)

// Config holds connection parameters for a SQLite store.
type Config struct {
	Path         string
	MaxOpenConns int
	BusyTimeout  time.Duration
}

// Store implements db.Store on a SQLite database file.
type Store struct {
	db  *sqlx.DB
	now func() time.Time
}

// Open connects to the database and applies the schema.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("path is required")
	}

	conn, err := sqlx.ConnectContext(ctx, "sqlite3", dsn(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		conn.SetMaxOpenConns(cfg.MaxOpenConns)
	}

	s := &Store{db: conn, now: func() time.Time { return time.Now().UTC() }}
	if err := s.migrate(ctx); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return s, nil
}

func dsn(cfg Config) string {
	busy := cfg.BusyTimeout
	if busy <= 0 {
		busy = 5 * time.Second
	}
	sep := "?"
	if strings.Contains(cfg.Path, "?") {
		sep = "&"
	}
	return fmt.Sprintf("file:%s%s_busy_timeout=%d", strings.TrimPrefix(cfg.Path, "file:"), sep, busy.Milliseconds())
}

func (s *Store) migrate(ctx context.Context) error {
	for _, stmt := range migrations {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return &db.Error{Op: db.OpMigrate, Err: err}
		}
	}
	return nil
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close: %w", err)
	}
	return nil
}

// WaitForReady polls Ping until the store responds or timeout expires.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		if err := s.Ping(ctx); err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for database: %w", ctx.Err())
		case <-ticker.C:
		}
	}
}

// FindFacilities returns facilities matching q.Where in insertion order.
// One connection is held for the query and released on every path.
func (s *Store) FindFacilities(ctx context.Context, q db.FacilityQuery) ([]facility.Facility, error) {
	where, args, err := db.NewWhere(columns).Build(q.Where)
	if err != nil {
		return nil, &db.Error{Op: db.OpQuery, Err: err}
	}

	var sb strings.Builder
	sb.WriteString("SELECT * FROM " + table)
	if where != "" {
		sb.WriteString(" WHERE " + where)
	}
	sb.WriteString(" ORDER BY id")
	if q.Limit > 0 {
		sb.WriteString(" LIMIT ?")
		args = append(args, q.Limit)
	}

	conn, err := s.db.Connx(ctx)
	if err != nil {
		return nil, &db.Error{Op: db.OpConn, Err: err}
	}
	defer func() { _ = conn.Close() }()

	var rows []row
	if err := conn.SelectContext(ctx, &rows, sb.String(), args...); err != nil {
		return nil, &db.Error{Op: db.OpQuery, Err: err}
	}
	return toDomainAll(rows), nil
}

// GetFacility returns a single facility by ID.
func (s *Store) GetFacility(ctx context.Context, id string) (facility.Facility, error) {
	var r row
	err := s.db.GetContext(ctx, &r, "SELECT * FROM "+table+" WHERE stcode = ?", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return facility.Facility{}, db.ErrRowNotFound
		}
		return facility.Facility{}, &db.Error{Op: db.OpGetRow, Err: err}
	}
	return r.toDomain(), nil
}

// ListFacilities returns the facilities with the given IDs, in the order of ids.
// Unknown IDs are skipped.
func (s *Store) ListFacilities(ctx context.Context, ids []string) ([]facility.Facility, error) {
	if len(ids) == 0 {
		return []facility.Facility{}, nil
	}
	query, args, err := sqlx.In("SELECT * FROM "+table+" WHERE stcode IN (?)", ids)
	if err != nil {
		return nil, &db.Error{Op: db.OpQuery, Err: err}
	}

	var rows []row
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
		return nil, &db.Error{Op: db.OpQuery, Err: err}
	}

	byID := make(map[string]facility.Facility, len(rows))
	for i := range rows {
		byID[rows[i].StCode] = rows[i].toDomain()
	}
	out := make([]facility.Facility, 0, len(rows))
	for _, id := range ids {
		if f, ok := byID[id]; ok {
			out = append(out, f)
			delete(byID, id)
		}
	}
	return out, nil
}

// FacilitiesByStatus returns every facility with the given status, ordered by ID.
func (s *Store) FacilitiesByStatus(ctx context.Context, status string) ([]facility.Facility, error) {
	var rows []row
	err := s.db.SelectContext(ctx, &rows,
		"SELECT * FROM "+table+" WHERE crstatusname = ? ORDER BY stcode", status)
	if err != nil {
		return nil, &db.Error{Op: db.OpQuery, Err: err}
	}
	return toDomainAll(rows), nil
}

// UpsertFacilities inserts new facilities and updates existing ones in a single transaction.
// Updates keep created_at and refresh updated_at.
func (s *Store) UpsertFacilities(ctx context.Context, items []facility.Facility) (db.UpsertResult, error) {
	var res db.UpsertResult
	if len(items) == 0 {
		return res, nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return res, &db.Error{Op: db.OpUpsert, Err: err}
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareNamedContext(ctx, upsertSQL())
	if err != nil {
		return res, &db.Error{Op: db.OpUpsert, Err: err}
	}
	defer func() { _ = stmt.Close() }()

	now := s.now()
	for i := range items {
		var exists bool
		if err := tx.GetContext(ctx, &exists,
			"SELECT EXISTS(SELECT 1 FROM "+table+" WHERE stcode = ?)", items[i].ID); err != nil {
			return db.UpsertResult{}, &db.Error{Op: db.OpUpsert, Err: err}
		}

		r := fromDomain(&items[i])
		r.CreatedAt, r.UpdatedAt = now, now
		if _, err := stmt.ExecContext(ctx, r); err != nil {
			return db.UpsertResult{}, &db.Error{Op: db.OpUpsert, Err: fmt.Errorf("stcode %s: %w", items[i].ID, err)}
		}
		if exists {
			res.Updated++
		} else {
			res.Inserted++
		}
	}

	if err := tx.Commit(); err != nil {
		return db.UpsertResult{}, &db.Error{Op: db.OpUpsert, Err: err}
	}
	return res, nil
}

func upsertSQL() string {
	cols := append([]string{"stcode"}, dataColumns...)
	cols = append(cols, "created_at", "updated_at")

	named := make([]string, len(cols))
	for i, c := range cols {
		named[i] = ":" + c
	}
	updates := make([]string, 0, len(dataColumns)+1)
	for _, c := range dataColumns {
		updates = append(updates, c+" = excluded."+c)
	}
	updates = append(updates, "updated_at = excluded.updated_at")

	return "INSERT INTO " + table + " (" + strings.Join(cols, ", ") + ") VALUES (" +
		strings.Join(named, ", ") + ") ON CONFLICT(stcode) DO UPDATE SET " + strings.Join(updates, ", ")
}

// CountByStatus returns the number of facilities with the given status.
func (s *Store) CountByStatus(ctx context.Context, status string) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM "+table+" WHERE crstatusname = ?", status); err != nil {
		return 0, &db.Error{Op: db.OpCount, Err: err}
	}
	return n, nil
}

// CountByDistrict returns facility counts per district, largest first.
func (s *Store) CountByDistrict(ctx context.Context, status string) ([]facility.Count, error) {
	return s.countBy(ctx, "sigunname", status)
}

// CountByType returns facility counts per type, largest first.
func (s *Store) CountByType(ctx context.Context, status string) ([]facility.Count, error) {
	return s.countBy(ctx, "crtypename", status)
}

func (s *Store) countBy(ctx context.Context, col, status string) ([]facility.Count, error) {
	query := "SELECT " + col + " AS name, COUNT(*) AS count FROM " + table +
		" WHERE crstatusname = ? AND " + col + " IS NOT NULL" +
		" GROUP BY " + col + " ORDER BY count DESC, name ASC"

	var out []facility.Count
	if err := s.db.SelectContext(ctx, &out, query, status); err != nil {
		return nil, &db.Error{Op: db.OpCount, Err: err}
	}
	if out == nil {
		out = []facility.Count{}
	}
	return out, nil
}

func toDomainAll(rows []row) []facility.Facility {
	out := make([]facility.Facility, len(rows))
	for i := range rows {
		out[i] = rows[i].toDomain()
	}
	return out
}
