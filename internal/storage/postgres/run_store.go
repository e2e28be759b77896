// Package postgres archives index run summaries in Postgres.
package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var validTableName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// DefaultTable is used when RunStoreConfig.Table is empty.
const DefaultTable = "index_runs"

// RunStoreConfig controls the Postgres connection pool used for run rows.
type RunStoreConfig struct {
	DSN             string
	Table           string
	MaxConns        int32
	MaxConnLifetime time.Duration
}

// RunRecord is one archived run.
type RunRecord struct {
	RunID      string
	SitemapURL string
	Status     string
	StartedAt  time.Time
	FinishedAt time.Time
	Discovered int
	Unique     int
	Attempted  int
	Indexed    int
	Failed     int
	// Failures is stored as JSONB; nil is written as an empty array.
	Failures any
}

type execCloser interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	Close()
}

// RunStore writes run rows into Postgres.
type RunStore struct {
	pool  execCloser
	table string
}

// NewRunStore creates a Postgres-backed RunStore using the provided config.
func NewRunStore(ctx context.Context, cfg RunStoreConfig) (*RunStore, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("report.db_dsn is required")
	}
	table, err := tableName(cfg.Table)
	if err != nil {
		return nil, err
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return &RunStore{pool: pool, table: table}, nil
}

// NewRunStoreWithPool constructs a store from an existing pool (primarily for testing).
func NewRunStoreWithPool(pool execCloser, table string) (*RunStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	name, err := tableName(table)
	if err != nil {
		return nil, err
	}
	return &RunStore{pool: pool, table: name}, nil
}

func tableName(table string) (string, error) {
	if table == "" {
		table = DefaultTable
	}
	if !validTableName.MatchString(table) {
		return "", fmt.Errorf("invalid table name %q", table)
	}
	return table, nil
}

// Close releases the underlying pool resources.
func (s *RunStore) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

// EnsureSchema creates the run table if it does not exist.
func (s *RunStore) EnsureSchema(ctx context.Context) error {
	query := fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s (
	run_id      TEXT PRIMARY KEY,
	sitemap_url TEXT NOT NULL,
	status      TEXT NOT NULL,
	started_at  TIMESTAMPTZ NOT NULL,
	finished_at TIMESTAMPTZ NOT NULL,
	discovered  INTEGER NOT NULL,
	unique_urls INTEGER NOT NULL,
	attempted   INTEGER NOT NULL,
	indexed     INTEGER NOT NULL,
	failed      INTEGER NOT NULL,
	failures    JSONB NOT NULL DEFAULT '[]'::jsonb
)`, s.table)
	if _, err := s.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("create %s: %w", s.table, err)
	}
	return nil
}

// InsertRun inserts a run row. Re-inserting the same run ID replaces the row.
func (s *RunStore) InsertRun(ctx context.Context, rec RunRecord) error {
	if s == nil || s.pool == nil {
		return fmt.Errorf("run store is not configured")
	}
	if rec.RunID == "" {
		return fmt.Errorf("run id is required")
	}
	failures := rec.Failures
	if failures == nil {
		failures = []struct{}{}
	}
	failuresJSON, err := json.Marshal(failures)
	if err != nil {
		return fmt.Errorf("marshal failures: %w", err)
	}
	query := fmt.Sprintf(`
INSERT INTO %s (
	run_id,
	sitemap_url,
	status,
	started_at,
	finished_at,
	discovered,
	unique_urls,
	attempted,
	indexed,
	failed,
	failures
) VALUES (
	$1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11
)
ON CONFLICT (run_id) DO UPDATE SET
	status = EXCLUDED.status,
	finished_at = EXCLUDED.finished_at,
	attempted = EXCLUDED.attempted,
	indexed = EXCLUDED.indexed,
	failed = EXCLUDED.failed,
	failures = EXCLUDED.failures`, s.table)

	args := []any{
		rec.RunID,
		rec.SitemapURL,
		rec.Status,
		rec.StartedAt,
		rec.FinishedAt,
		rec.Discovered,
		rec.Unique,
		rec.Attempted,
		rec.Indexed,
		rec.Failed,
		failuresJSON,
	}
	if _, err := s.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}
