// Package sqlite provides SQLite-based persistent storage for wildtrail:
// per-user progression snapshots, the notification inbox and the activity
// journal. Uses WAL mode for concurrent reads and crash-safe writes.
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver (no CGO required)
)

// DB wraps a SQLite connection with WAL mode and migrations.
type DB struct {
	db *sql.DB
}

// Open creates or opens the SQLite database at dir/state.db.
// Enables WAL mode, foreign keys, and 5-second busy timeout.
func Open(dir string) (*DB, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	dbPath := filepath.Join(dir, "state.db")
	dsn := dbPath + "?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	// SQLite is single-writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	d := &DB{db: db}
	if err := d.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return d, nil
}

// Close cleanly shuts down the database.
func (d *DB) Close() error {
	return d.db.Close()
}

// Ping checks database connectivity.
func (d *DB) Ping() error {
	return d.db.Ping()
}

// migrate runs idempotent schema migrations.
func (d *DB) migrate() error {
	migrations := []string{
		// One opaque, versioned JSON snapshot per user.
		`CREATE TABLE IF NOT EXISTS snapshots (
			user_id  TEXT PRIMARY KEY,
			blob     BLOB NOT NULL,
			saved_at INTEGER NOT NULL
		)`,

		// Notification inbox (policy: max N per local day, quiet hours)
		`CREATE TABLE IF NOT EXISTS notifications (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id    TEXT NOT NULL,
			type       TEXT NOT NULL,
			title      TEXT NOT NULL,
			body       TEXT NOT NULL,
			created_at INTEGER NOT NULL,
			shown      BOOLEAN DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_notif_user_created ON notifications(user_id, created_at)`,

		// Append-only journal of processed activity events
		`CREATE TABLE IF NOT EXISTS activity_log (
			id       INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id  TEXT NOT NULL,
			kind     TEXT NOT NULL,
			at       INTEGER NOT NULL,
			accepted BOOLEAN NOT NULL,
			points   INTEGER NOT NULL DEFAULT 0,
			reason   TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE INDEX IF NOT EXISTS idx_activity_user_at ON activity_log(user_id, at)`,
	}

	for _, m := range migrations {
		if _, err := d.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}
	return nil
}

// ─── Helpers ────────────────────────────────────────────────────────────────

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// unixMilli stores times at millisecond precision so journal ordering
// survives several events in one second.
func unixMilli(t time.Time) int64 {
	return t.UnixMilli()
}

func fromUnixMilli(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
