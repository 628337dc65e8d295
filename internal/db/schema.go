package db

import (
	"context"
	"database/sql"
	"fmt"
)

// baseSchema is the original items table. Columns introduced later are added
// by migrations so that databases created by older releases converge on the
// same shape.
var baseSchema = map[Dialect]string{
	SQLite: `
CREATE TABLE IF NOT EXISTS items (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    item_name   TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    location    TEXT NOT NULL DEFAULT '',
    name        TEXT NOT NULL DEFAULT 'Anonymous',
    email       TEXT NOT NULL,
    image       TEXT NOT NULL DEFAULT '',
    created_at  TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ', 'now'))
)`,
	Postgres: `
CREATE TABLE IF NOT EXISTS items (
    id          BIGSERIAL PRIMARY KEY,
    item_name   TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    location    TEXT NOT NULL DEFAULT '',
    name        TEXT NOT NULL DEFAULT 'Anonymous',
    email       TEXT NOT NULL,
    image       TEXT NOT NULL DEFAULT '',
    created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`,
}

// EnsureSchema creates the items table if it doesn't already exist.
func EnsureSchema(ctx context.Context, db *sql.DB, d Dialect) error {
	stmt, ok := baseSchema[d]
	if !ok {
		return fmt.Errorf("unsupported dialect %q", d)
	}
	if _, err := db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}
