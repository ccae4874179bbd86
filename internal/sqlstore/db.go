// Package sqlstore persists portal preferences and counted records in SQLite.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS user_settings (
	user_id TEXT NOT NULL,
	key     TEXT NOT NULL,
	value   TEXT NOT NULL,
	PRIMARY KEY (user_id, key)
);
CREATE TABLE IF NOT EXISTS records (
	id    INTEGER PRIMARY KEY AUTOINCREMENT,
	model TEXT NOT NULL,
	data  TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS records_model ON records (model);
CREATE TABLE IF NOT EXISTS academic_years (
	id      INTEGER PRIMARY KEY,
	name    TEXT NOT NULL,
	is_current INTEGER NOT NULL DEFAULT 0
);
`

// DB wraps a migrated SQLite handle.
type DB struct {
	sql *sql.DB
}

// Open opens the database at dsn and applies the schema. Use ":memory:" for
// a private in-memory database.
func Open(ctx context.Context, dsn string) (*DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: open %s: %w", dsn, err)
	}
	// A single connection keeps ":memory:" databases shared across calls.
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlstore: migrate: %w", err)
	}
	return &DB{sql: db}, nil
}

// Close releases the database.
func (d *DB) Close() error {
	return d.sql.Close()
}

// Prefs returns the per-user settings store.
func (d *DB) Prefs() *Prefs {
	return &Prefs{db: d.sql}
}

// Years returns the academic year table.
func (d *DB) Years() *Years {
	return &Years{db: d.sql}
}

// Records returns the record table.
func (d *DB) Records() *Records {
	return &Records{db: d.sql}
}
