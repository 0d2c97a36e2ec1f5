// Package journal provides a SQLite-backed operation journal for the vecthare
// CLI. Every mutating backend operation (insert, delete, purge, chunk edits)
// is recorded with its backend, collection, item count, and duration so
// operators can reconstruct what touched the stores and when. The journal is
// write-mostly: the storage layer itself never reads it on any request path.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // register "sqlite" driver
)

// Entry is one recorded backend operation.
type Entry struct {
	// Op is the logical operation name ("insert", "delete", "purge", ...).
	Op string
	// Backend is the backend discriminator ("vectra", "chroma", ...).
	Backend string
	// Collection is the logical collection id involved, if any.
	Collection string
	// Items is the number of items affected, where known.
	Items int
	// Duration is how long the operation took.
	Duration time.Duration
	// Err is the error message for a failed operation, empty on success.
	Err string
	// CreatedAt is when the entry was persisted.
	CreatedAt time.Time
}

// Journal persists and retrieves operation entries. Implementations must be
// safe for concurrent use.
type Journal interface {
	// Record persists a single entry.
	Record(ctx context.Context, e Entry) error
	// Recent returns the most recent n entries, newest-first.
	// If fewer than n entries exist, all are returned.
	Recent(ctx context.Context, n int) ([]Entry, error)
	// Close releases any resources held by the journal.
	Close() error
}

// SQLiteJournal is a Journal backed by a local SQLite database.
type SQLiteJournal struct {
	// db is the underlying database connection pool.
	db *sql.DB
}

// DefaultDBPath returns the default path for the operation journal database.
// It resolves to ~/.vecthare/journal.db, creating the directory if needed.
func DefaultDBPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("journal: could not determine home directory: %w", err)
	}
	dir := filepath.Join(home, ".vecthare")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("journal: could not create %s: %w", dir, err)
	}
	return filepath.Join(dir, "journal.db"), nil
}

// Open opens (or creates) a SQLiteJournal at the given path and runs the
// schema migration. Use ":memory:" for an in-memory database in tests.
func Open(path string) (*SQLiteJournal, error) {
	// WAL mode improves concurrent read performance and is safe for single-host use.
	dsn := path + "?_journal_mode=WAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("journal: open %s: %w", path, err)
	}
	// Limit to a single writer connection to avoid SQLITE_BUSY under concurrent writes.
	db.SetMaxOpenConns(1)

	j := &SQLiteJournal{db: db}
	if err := j.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return j, nil
}

// migrate creates the schema if it does not already exist.
func (j *SQLiteJournal) migrate() error {
	const ddl = `
CREATE TABLE IF NOT EXISTS operations (
    id           INTEGER PRIMARY KEY AUTOINCREMENT,
    op           TEXT    NOT NULL,
    backend      TEXT    NOT NULL,
    collection   TEXT    NOT NULL DEFAULT '',
    items        INTEGER NOT NULL DEFAULT 0,
    duration_ms  INTEGER NOT NULL DEFAULT 0,
    error        TEXT    NOT NULL DEFAULT '',
    created_at   INTEGER NOT NULL  -- Unix timestamp (seconds)
);
CREATE INDEX IF NOT EXISTS idx_operations_created
    ON operations (created_at);
`
	if _, err := j.db.Exec(ddl); err != nil {
		return fmt.Errorf("journal: migrate: %w", err)
	}
	return nil
}

// Record persists a single entry.
func (j *SQLiteJournal) Record(ctx context.Context, e Entry) error {
	const q = `INSERT INTO operations (op, backend, collection, items, duration_ms, error, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)`
	createdAt := e.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err := j.db.ExecContext(ctx, q,
		e.Op, e.Backend, e.Collection, e.Items, e.Duration.Milliseconds(), e.Err, createdAt.Unix())
	if err != nil {
		return fmt.Errorf("journal: record: %w", err)
	}
	return nil
}

// Recent returns the most recent n entries, newest-first.
func (j *SQLiteJournal) Recent(ctx context.Context, n int) ([]Entry, error) {
	const q = `
SELECT op, backend, collection, items, duration_ms, error, created_at
FROM   operations
ORDER  BY created_at DESC, id DESC
LIMIT  ?`

	rows, err := j.db.QueryContext(ctx, q, n)
	if err != nil {
		return nil, fmt.Errorf("journal: recent: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var durMS, ts int64
		if err := rows.Scan(&e.Op, &e.Backend, &e.Collection, &e.Items, &durMS, &e.Err, &ts); err != nil {
			return nil, fmt.Errorf("journal: recent scan: %w", err)
		}
		e.Duration = time.Duration(durMS) * time.Millisecond
		e.CreatedAt = time.Unix(ts, 0)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("journal: recent rows: %w", err)
	}
	return entries, nil
}

// Close releases the database connection pool.
func (j *SQLiteJournal) Close() error {
	if err := j.db.Close(); err != nil {
		return fmt.Errorf("journal: close: %w", err)
	}
	return nil
}
