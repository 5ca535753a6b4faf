// Package recordsource loads table snapshots from Postgres into the
// in-memory record sets the grid engine consumes. The engine itself
// never fetches; callers hand it a snapshot's records.
package recordsource

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"github.com/crmkit/datagrid"
)

// Snapshot is one fully materialized load of a table: the records the
// grid will work on, plus enough metadata to decide when to refresh.
type Snapshot struct {
	ID       string
	Table    string
	Records  []datagrid.Record
	LoadedAt time.Time
}

// Source manages the database pool and a cache of table snapshots.
// Snapshots age out after the configured TTL and are reloaded on the
// next request.
type Source struct {
	db  *sql.DB
	log *slog.Logger
	ttl time.Duration

	mu        sync.Mutex
	snapshots map[string]*Snapshot // keyed by table name

	cleanupStop chan struct{}
}

// Open connects to Postgres and starts the snapshot expiry routine.
func Open(connStr string, maxConns int, ttl time.Duration, logger *slog.Logger) (*Source, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(maxConns)
	db.SetMaxIdleConns(maxConns / 2)
	db.SetConnMaxIdleTime(ttl)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if logger == nil {
		logger = slog.Default()
	}

	s := &Source{
		db:          db,
		log:         logger,
		ttl:         ttl,
		snapshots:   make(map[string]*Snapshot),
		cleanupStop: make(chan struct{}),
	}
	s.startCleanupRoutine()
	return s, nil
}

// Close shuts down the expiry routine and the pool.
func (s *Source) Close() error {
	close(s.cleanupStop)
	return s.db.Close()
}

func (s *Source) startCleanupRoutine() {
	ticker := time.NewTicker(30 * time.Second)
	go func() {
		for {
			select {
			case <-ticker.C:
				s.evictExpired()
			case <-s.cleanupStop:
				ticker.Stop()
				return
			}
		}
	}()
}

func (s *Source) evictExpired() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for table, snap := range s.snapshots {
		if now.Sub(snap.LoadedAt) > s.ttl {
			s.log.Info("evicting expired snapshot", "table", table, "id", snap.ID)
			delete(s.snapshots, table)
		}
	}
}

// Snapshot returns the cached snapshot for a table, loading it when
// absent or expired.
func (s *Source) Snapshot(ctx context.Context, table string, fields []string) (*Snapshot, error) {
	s.mu.Lock()
	snap, ok := s.snapshots[table]
	s.mu.Unlock()

	if ok && time.Since(snap.LoadedAt) <= s.ttl {
		return snap, nil
	}
	return s.Load(ctx, table, fields)
}

// Load fetches a table into a fresh snapshot, replacing any cached
// one. An empty field list selects everything.
func (s *Source) Load(ctx context.Context, table string, fields []string) (*Snapshot, error) {
	selectList := "*"
	if len(fields) > 0 {
		selectList = strings.Join(fields, ", ")
	}
	query := fmt.Sprintf("SELECT %s FROM %s", selectList, table)

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", table, err)
	}
	defer rows.Close()

	records, err := scanRecords(rows)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", table, err)
	}

	snap := &Snapshot{
		ID:       uuid.NewString(),
		Table:    table,
		Records:  records,
		LoadedAt: time.Now(),
	}

	s.mu.Lock()
	s.snapshots[table] = snap
	s.mu.Unlock()

	s.log.Info("snapshot loaded", "table", table, "rows", len(records), "id", snap.ID)
	return snap, nil
}

// scanRecords converts result rows into grid records. Byte slices
// become strings so text columns stay searchable.
func scanRecords(rows *sql.Rows) ([]datagrid.Record, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	records := []datagrid.Record{}
	for rows.Next() {
		values := make([]interface{}, len(cols))
		pointers := make([]interface{}, len(cols))
		for i := range values {
			pointers[i] = &values[i]
		}

		if err := rows.Scan(pointers...); err != nil {
			return nil, err
		}

		rec := make(datagrid.Record, len(cols))
		for i, col := range cols {
			if b, ok := values[i].([]byte); ok {
				rec[col] = string(b)
			} else {
				rec[col] = values[i]
			}
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
