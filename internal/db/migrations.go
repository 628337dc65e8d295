package db

import (
	"context"
	"database/sql"
	"fmt"
)

// migration adds one column. It only runs when the column is missing, which
// makes every step safe to repeat.
type migration struct {
	name   string
	table  string
	column string
	stmt   map[Dialect]string
}

// migrations is applied in order after the base schema. Append new migrations
// at the end.
var migrations = []migration{
	{
		name:   "add student number",
		table:  "items",
		column: "student_number",
		stmt: map[Dialect]string{
			SQLite:   `ALTER TABLE items ADD COLUMN student_number TEXT NOT NULL DEFAULT ''`,
			Postgres: `ALTER TABLE items ADD COLUMN student_number TEXT NOT NULL DEFAULT ''`,
		},
	},
	{
		name:   "add item type",
		table:  "items",
		column: "type",
		stmt: map[Dialect]string{
			SQLite:   `ALTER TABLE items ADD COLUMN type TEXT NOT NULL DEFAULT 'found'`,
			Postgres: `ALTER TABLE items ADD COLUMN type TEXT NOT NULL DEFAULT 'found'`,
		},
	},
	{
		name:   "add returned flag",
		table:  "items",
		column: "returned",
		stmt: map[Dialect]string{
			SQLite:   `ALTER TABLE items ADD COLUMN returned INTEGER NOT NULL DEFAULT 0`,
			Postgres: `ALTER TABLE items ADD COLUMN returned BOOLEAN NOT NULL DEFAULT FALSE`,
		},
	},
}

// Migrate ensures the base schema and applies any missing migrations.
func Migrate(ctx context.Context, db *sql.DB, d Dialect) error {
	if err := EnsureSchema(ctx, db, d); err != nil {
		return err
	}

	for i, m := range migrations {
		exists, err := columnExists(ctx, db, d, m.table, m.column)
		if err != nil {
			return fmt.Errorf("checking migration %d (%s): %w", i+1, m.name, err)
		}
		if exists {
			continue
		}
		if _, err := db.ExecContext(ctx, m.stmt[d]); err != nil {
			return fmt.Errorf("running migration %d (%s): %w", i+1, m.name, err)
		}
	}

	return nil
}

// columnExists reports whether table has the named column.
func columnExists(ctx context.Context, db *sql.DB, d Dialect, table, column string) (bool, error) {
	var query string
	switch d {
	case SQLite:
		query = `SELECT COUNT(*) FROM pragma_table_info(?) WHERE name = ?`
	case Postgres:
		query = `SELECT COUNT(*) FROM information_schema.columns
		 WHERE table_schema = current_schema() AND table_name = $1 AND column_name = $2`
	default:
		return false, fmt.Errorf("unsupported dialect %q", d)
	}

	var n int
	if err := db.QueryRowContext(ctx, query, table, column).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}
