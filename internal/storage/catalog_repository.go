package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/permcatalog/edu-catalog/internal/catalog"
	domerrors "github.com/permcatalog/edu-catalog/internal/errors"
)

// Meta keys.
const (
	MetaSchemaVersion = "schema_version"
	MetaBuiltAt       = "built_at"
	MetaSource        = "source"
)

// DirectionMatch is a direction found by code, with its owning institution.
type DirectionMatch struct {
	Region      string `json:"region"`
	Number      string `json:"number"`
	Institution string `json:"institution"`
	Code        string `json:"code"`
	Title       string `json:"title"`
}

// SaveDataset replaces the stored catalog with ds in a single transaction.
// Region positions follow ds.Regions(); row and direction order is preserved.
func (db *DB) SaveDataset(ctx context.Context, ds catalog.Dataset, source string) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range []string{"directions", "catalog_rows", "regions", "meta"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	regionStmt, err := tx.PrepareContext(ctx, `INSERT INTO regions (name, position) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare region insert: %w", err)
	}
	defer func() { _ = regionStmt.Close() }()

	rowStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO catalog_rows (region_id, position, kind, number, name, site, vk, address, phone, email, title, level)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare row insert: %w", err)
	}
	defer func() { _ = rowStmt.Close() }()

	dirStmt, err := tx.PrepareContext(ctx, `INSERT INTO directions (row_id, position, code, title) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare direction insert: %w", err)
	}
	defer func() { _ = dirStmt.Close() }()

	for regionPos, region := range ds.Regions() {
		res, err := regionStmt.ExecContext(ctx, region, regionPos)
		if err != nil {
			return fmt.Errorf("insert region %q: %w", region, err)
		}
		regionID, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("region id: %w", err)
		}

		for rowPos, r := range ds[region] {
			inst := r.Institution
			res, err := rowStmt.ExecContext(ctx, regionID, rowPos, r.Kind.String(),
				inst.Number, inst.Name, inst.Site, inst.Group, inst.Address, inst.Phone, inst.Email,
				r.Heading.Title, r.Programs.Level)
			if err != nil {
				return fmt.Errorf("insert row %d of %q: %w", rowPos, region, err)
			}
			rowID, err := res.LastInsertId()
			if err != nil {
				return fmt.Errorf("row id: %w", err)
			}

			dirs := inst.Directions
			if r.Kind == catalog.KindPrograms {
				dirs = r.Programs.Programs
			}
			for dirPos, d := range dirs {
				if _, err := dirStmt.ExecContext(ctx, rowID, dirPos, d.Code, d.Title); err != nil {
					return fmt.Errorf("insert direction: %w", err)
				}
			}
		}
	}

	meta := map[string]string{
		MetaSchemaVersion: SchemaVersion,
		MetaBuiltAt:       time.Now().UTC().Format(time.RFC3339),
		MetaSource:        source,
	}
	for k, v := range meta {
		if _, err := tx.ExecContext(ctx, `INSERT INTO meta (key, value) VALUES (?, ?)`, k, v); err != nil {
			return fmt.Errorf("insert meta %s: %w", k, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// LoadDataset reads the whole catalog back into memory.
// It returns ErrNotFound when the database holds no catalog.
func (db *DB) LoadDataset(ctx context.Context) (catalog.Dataset, error) {
	version, err := db.GetMeta(ctx, MetaSchemaVersion)
	if err != nil {
		return nil, err
	}
	if version != SchemaVersion {
		return nil, fmt.Errorf("%w: schema version %q, want %q", domerrors.ErrUnsupportedFormat, version, SchemaVersion)
	}

	dirs, err := db.loadDirections(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := db.conn.QueryContext(ctx, `
		SELECT r.id, g.name, r.kind, r.number, r.name, r.site, r.vk, r.address, r.phone, r.email, r.title, r.level
		FROM catalog_rows r JOIN regions g ON g.id = r.region_id
		ORDER BY g.position, r.position
	`)
	if err != nil {
		return nil, fmt.Errorf("query rows: %w", err)
	}
	defer func() { _ = rows.Close() }()

	ds := make(catalog.Dataset)
	for rows.Next() {
		var (
			id           int64
			region, kind string
			inst         catalog.Institution
			title, level string
		)
		if err := rows.Scan(&id, &region, &kind, &inst.Number, &inst.Name, &inst.Site, &inst.Group,
			&inst.Address, &inst.Phone, &inst.Email, &title, &level); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}

		var r catalog.Row
		switch kind {
		case "heading":
			r = catalog.HeadingRow(title)
		case "programs":
			r = catalog.ProgramsRow(catalog.ProgramBlock{Level: level, Programs: dirs[id]})
		default:
			inst.Directions = dirs[id]
			r = catalog.InstitutionRow(inst)
		}
		ds[region] = append(ds[region], r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	// Regions without rows still exist in the catalog.
	names, err := db.RegionNames(ctx)
	if err != nil {
		return nil, err
	}
	for _, n := range names {
		if _, ok := ds[n]; !ok {
			ds[n] = []catalog.Row{}
		}
	}

	return ds, nil
}

func (db *DB) loadDirections(ctx context.Context) (map[int64][]catalog.Direction, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT row_id, code, title FROM directions ORDER BY row_id, position`)
	if err != nil {
		return nil, fmt.Errorf("query directions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := make(map[int64][]catalog.Direction)
	for rows.Next() {
		var id int64
		var d catalog.Direction
		if err := rows.Scan(&id, &d.Code, &d.Title); err != nil {
			return nil, fmt.Errorf("scan direction: %w", err)
		}
		out[id] = append(out[id], d)
	}
	return out, rows.Err()
}

// RegionNames returns region names in stored display order.
func (db *DB) RegionNames(ctx context.Context) ([]string, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT name FROM regions ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query regions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("scan region: %w", err)
		}
		names = append(names, n)
	}
	return names, rows.Err()
}

// CountRows returns the number of rows per region.
func (db *DB) CountRows(ctx context.Context) (map[string]int, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT g.name, COUNT(r.id)
		FROM regions g LEFT JOIN catalog_rows r ON r.region_id = g.id
		GROUP BY g.id
	`)
	if err != nil {
		return nil, fmt.Errorf("count rows: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := make(map[string]int)
	for rows.Next() {
		var name string
		var n int
		if err := rows.Scan(&name, &n); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		out[name] = n
	}
	return out, rows.Err()
}

// FindByCode returns directions whose code starts with prefix, ordered by
// region and row position.
func (db *DB) FindByCode(ctx context.Context, prefix string, limit int) ([]DirectionMatch, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := db.conn.QueryContext(ctx, `
		SELECT g.name, r.number, r.name, d.code, d.title
		FROM directions d
		JOIN catalog_rows r ON r.id = d.row_id
		JOIN regions g ON g.id = r.region_id
		WHERE d.code LIKE ? ESCAPE '\'
		ORDER BY g.position, r.position, d.position
		LIMIT ?
	`, sanitizeSearchTerm(prefix)+"%", limit)
	if err != nil {
		return nil, fmt.Errorf("find by code: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []DirectionMatch
	for rows.Next() {
		var m DirectionMatch
		if err := rows.Scan(&m.Region, &m.Number, &m.Institution, &m.Code, &m.Title); err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// GetMeta returns a meta value, or an error wrapping ErrNotFound.
func (db *DB) GetMeta(ctx context.Context, key string) (string, error) {
	var v string
	err := db.conn.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("meta %q: %w", key, domerrors.ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("get meta %q: %w", key, err)
	}
	return v, nil
}
