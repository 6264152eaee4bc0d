package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// SchemaVersion is stored in the meta table and checked on load.
const SchemaVersion = "1"

// InitSchema creates all necessary tables and indexes.
func InitSchema(ctx context.Context, db *sql.DB) error {
	steps := []struct {
		name  string
		query string
	}{
		{"meta", `
		CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`},
		{"regions", `
		CREATE TABLE IF NOT EXISTS regions (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			position INTEGER NOT NULL
		);`},
		{"catalog_rows", `
		CREATE TABLE IF NOT EXISTS catalog_rows (
			id INTEGER PRIMARY KEY,
			region_id INTEGER NOT NULL REFERENCES regions(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			kind TEXT CHECK(kind IN ('institution', 'heading', 'programs')) NOT NULL,
			number TEXT NOT NULL DEFAULT '',
			name TEXT NOT NULL DEFAULT '',
			site TEXT NOT NULL DEFAULT '',
			vk TEXT NOT NULL DEFAULT '',
			address TEXT NOT NULL DEFAULT '',
			phone TEXT NOT NULL DEFAULT '',
			email TEXT NOT NULL DEFAULT '',
			title TEXT NOT NULL DEFAULT '',
			level TEXT NOT NULL DEFAULT ''
		);
		CREATE INDEX IF NOT EXISTS idx_rows_region ON catalog_rows(region_id, position);`},
		{"directions", `
		CREATE TABLE IF NOT EXISTS directions (
			row_id INTEGER NOT NULL REFERENCES catalog_rows(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			code TEXT NOT NULL DEFAULT '',
			title TEXT NOT NULL DEFAULT '',
			PRIMARY KEY (row_id, position)
		);
		CREATE INDEX IF NOT EXISTS idx_directions_code ON directions(code);`},
	}

	for _, s := range steps {
		if _, err := db.ExecContext(ctx, s.query); err != nil {
			return fmt.Errorf("failed to create %s table: %w", s.name, err)
		}
	}
	return nil
}
