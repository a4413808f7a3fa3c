// Package sqlite archives parsed station reports in a local SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/couchcryptid/climate-normals-etl/internal/domain"
	"github.com/couchcryptid/climate-normals-etl/internal/normals"
	_ "modernc.org/sqlite"
)

// monthlyRow is the month column value used for monthly series rows. Daily
// series are stored one row per month, 1..12.
const monthlyRow = 0

// Archive stores station reports. It implements pipeline.BatchLoader.
type Archive struct {
	db *sql.DB
}

// Open opens or creates an archive database at the given path.
func Open(path string) (*Archive, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Enable WAL mode for better concurrent access.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}

	if err := createSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &Archive{db: db}, nil
}

// Close closes the database connection.
func (a *Archive) Close() error {
	return a.db.Close()
}

func createSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS stations (
		id TEXT PRIMARY KEY,
		name TEXT,
		source TEXT,
		metadata_json TEXT NOT NULL,
		processed_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS series (
		station_id TEXT NOT NULL REFERENCES stations(id) ON DELETE CASCADE,
		category TEXT NOT NULL,
		frequency TEXT NOT NULL,
		variable TEXT NOT NULL,
		month INTEGER NOT NULL,
		values_json TEXT NOT NULL,
		PRIMARY KEY (station_id, category, frequency, variable, month)
	);

	CREATE INDEX IF NOT EXISTS idx_series_variable ON series(variable);
	`
	_, err := db.Exec(schema)
	return err
}

// LoadBatch replaces the archived rows of every station in the batch inside
// a single transaction, so replays of the same report are idempotent.
func (a *Archive) LoadBatch(ctx context.Context, reports []domain.StationReport) (err error) {
	if len(reports) == 0 {
		return nil
	}

	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for i := range reports {
		if err = insertReport(ctx, tx, &reports[i]); err != nil {
			return err
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func insertReport(ctx context.Context, tx *sql.Tx, r *domain.StationReport) error {
	meta, err := json.Marshal(r.Metadata)
	if err != nil {
		return fmt.Errorf("encode metadata for %s: %w", r.ID, err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM series WHERE station_id = ?`, r.ID); err != nil {
		return fmt.Errorf("clear series for %s: %w", r.ID, err)
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO stations (id, name, source, metadata_json, processed_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			source = excluded.source,
			metadata_json = excluded.metadata_json,
			processed_at = excluded.processed_at`,
		r.ID, r.Name, r.Source, string(meta), r.ProcessedAt.UTC().Format(time.RFC3339Nano),
	); err != nil {
		return fmt.Errorf("insert station %s: %w", r.ID, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO series (station_id, category, frequency, variable, month, values_json)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare series insert: %w", err)
	}
	defer stmt.Close()

	for category, freqs := range r.Normals {
		for frequency, vars := range freqs {
			for variable, series := range vars {
				for month, values := range seriesRows(series) {
					data, err := json.Marshal(values)
					if err != nil {
						return fmt.Errorf("encode %s/%s/%s: %w", category, frequency, variable, err)
					}
					if _, err := stmt.ExecContext(ctx, r.ID, category, frequency, variable, month, string(data)); err != nil {
						return fmt.Errorf("insert %s/%s/%s for %s: %w", category, frequency, variable, r.ID, err)
					}
				}
			}
		}
	}
	return nil
}

// seriesRows flattens a series into month-keyed rows. Empty daily months are
// stored as empty arrays so the twelve slots survive a round trip.
func seriesRows(s normals.Series) map[int][]int {
	if !s.IsDaily() {
		values := s.Monthly
		if values == nil {
			values = []int{}
		}
		return map[int][]int{monthlyRow: values}
	}
	rows := make(map[int][]int, len(s.Daily))
	for i, values := range s.Daily {
		if values == nil {
			values = []int{}
		}
		rows[i+1] = values
	}
	return rows
}

// Station reads an archived report back. It returns domain.ErrStationNotFound
// if the station has not been archived.
func (a *Archive) Station(ctx context.Context, id string) (domain.StationReport, error) {
	var (
		report      = domain.StationReport{ID: id, Normals: make(normals.Tree)}
		name        sql.NullString
		source      sql.NullString
		meta        string
		processedAt string
	)
	err := a.db.QueryRowContext(ctx,
		`SELECT name, source, metadata_json, processed_at FROM stations WHERE id = ?`, id,
	).Scan(&name, &source, &meta, &processedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.StationReport{}, fmt.Errorf("station %s: %w", id, domain.ErrStationNotFound)
	}
	if err != nil {
		return domain.StationReport{}, fmt.Errorf("query station %s: %w", id, err)
	}

	report.Source = source.String
	if err := json.Unmarshal([]byte(meta), &report.Metadata); err != nil {
		return domain.StationReport{}, fmt.Errorf("decode metadata for %s: %w", id, err)
	}
	processed, err := time.Parse(time.RFC3339Nano, processedAt)
	if err != nil {
		return domain.StationReport{}, fmt.Errorf("decode processed_at for %s: %w", id, err)
	}

	rows, err := a.db.QueryContext(ctx, `
		SELECT category, frequency, variable, month, values_json
		FROM series WHERE station_id = ?
		ORDER BY category, frequency, variable, month`, id)
	if err != nil {
		return domain.StationReport{}, fmt.Errorf("query series for %s: %w", id, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			category, frequency, variable, data string
			month                               int
			values                              []int
		)
		if err := rows.Scan(&category, &frequency, &variable, &month, &data); err != nil {
			return domain.StationReport{}, fmt.Errorf("scan series for %s: %w", id, err)
		}
		if err := json.Unmarshal([]byte(data), &values); err != nil {
			return domain.StationReport{}, fmt.Errorf("decode %s/%s/%s for %s: %w", category, frequency, variable, id, err)
		}
		addSeriesRow(report.Normals, category, frequency, variable, month, values)
	}
	if err := rows.Err(); err != nil {
		return domain.StationReport{}, fmt.Errorf("read series for %s: %w", id, err)
	}

	report = domain.EnrichStationReport(report)
	report.ProcessedAt = processed
	if name.Valid && name.String != "" {
		report.Name = name.String
	}
	return report, nil
}

func addSeriesRow(tree normals.Tree, category, frequency, variable string, month int, values []int) {
	freqs, ok := tree[category]
	if !ok {
		freqs = make(normals.Frequencies)
		tree[category] = freqs
	}
	vars, ok := freqs[frequency]
	if !ok {
		vars = make(normals.Variables)
		freqs[frequency] = vars
	}
	if month == monthlyRow {
		vars[variable] = normals.Series{Monthly: values}
		return
	}
	s, ok := vars[variable]
	if !ok {
		s = normals.Series{Daily: make([][]int, 12)}
		vars[variable] = s
	}
	if len(values) > 0 {
		s.Daily[month-1] = values
	}
}
