// Package state persists the capture schedule's running flag and run
// statistics in a small SQLite key-value table so they survive daemon
// restarts.
package state

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	_ "modernc.org/sqlite"
)

// RunState holds the running flag and statistics for the capture
// schedule. TotalCount never decreases while running.
type RunState struct {
	Running    bool
	LastRunAt  time.Time
	TotalCount int64
}

const (
	keyRunning   = "running"
	keyLastRunAt = "last_run_at"
	keyTotal     = "total_count"
)

const schema = `CREATE TABLE IF NOT EXISTS kv (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
)`

// Store reads and writes RunState through a SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) the state database at path.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("state: mkdir: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("state: open: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 10000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("state: %s: %w", p, err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("state: apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

// OpenMemory opens an in-memory state database for testing. It limits the
// pool to one connection (each connection to ":memory:" is a separate
// database) and registers cleanup to close it.
func OpenMemory(t testing.TB) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("state.OpenMemory: %v", err)
	}
	s.db.SetMaxOpenConns(1)
	t.Cleanup(func() { s.Close() })
	return s
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Load reads the persisted RunState. Missing keys load as zero values, so
// a fresh database yields the zero RunState.
func (s *Store) Load(ctx context.Context) (RunState, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT key, value FROM kv WHERE key IN (?, ?, ?)`,
		keyRunning, keyLastRunAt, keyTotal)
	if err != nil {
		return RunState{}, fmt.Errorf("state: load: %w", err)
	}
	defer rows.Close()

	values := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return RunState{}, fmt.Errorf("state: load: %w", err)
		}
		values[k] = v
	}
	if err := rows.Err(); err != nil {
		return RunState{}, fmt.Errorf("state: load: %w", err)
	}

	var rs RunState
	if v, ok := values[keyRunning]; ok {
		rs.Running, _ = strconv.ParseBool(v)
	}
	if v, ok := values[keyLastRunAt]; ok && v != "" {
		if ts, err := time.Parse(time.RFC3339, v); err == nil {
			rs.LastRunAt = ts
		}
	}
	if v, ok := values[keyTotal]; ok {
		rs.TotalCount, _ = strconv.ParseInt(v, 10, 64)
	}

	return rs, nil
}

// Save writes the full RunState, overwriting any previous values.
func (s *Store) Save(ctx context.Context, rs RunState) error {
	lastRun := ""
	if !rs.LastRunAt.IsZero() {
		lastRun = rs.LastRunAt.UTC().Format(time.RFC3339)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("state: save: %w", err)
	}
	defer tx.Rollback()

	pairs := map[string]string{
		keyRunning:   strconv.FormatBool(rs.Running),
		keyLastRunAt: lastRun,
		keyTotal:     strconv.FormatInt(rs.TotalCount, 10),
	}

	for k, v := range pairs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO kv (key, value) VALUES (?, ?)
			 ON CONFLICT(key) DO UPDATE SET value = excluded.value`, k, v); err != nil {
			return fmt.Errorf("state: save %s: %w", k, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("state: save: %w", err)
	}
	return nil
}
