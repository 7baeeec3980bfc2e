// Package sqlite persists consolidated records to a local SQLite database
// using the pure-Go modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"

	"github.com/MHBws/dengue-climate-etl/internal/domain"
)

const schema = `CREATE TABLE IF NOT EXISTS consolidated_records (
	year                INTEGER NOT NULL,
	month               TEXT    NOT NULL,
	region              TEXT    NOT NULL,
	cases               INTEGER NOT NULL,
	deaths              INTEGER NOT NULL,
	avg_temperature     REAL    NOT NULL,
	total_precipitation REAL    NOT NULL,
	updated_at          TEXT    NOT NULL,
	PRIMARY KEY (year, month, region)
);`

// Sink writes consolidated records into SQLite, upserting on the
// (year, month, region) key.
type Sink struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open opens (or creates) the database at path and applies the schema.
func Open(path string, logger *slog.Logger) (*Sink, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}

	// WAL gives better behavior for the small sequential writes of a run.
	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		logger.Warn("could not set WAL mode", "error", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Sink{db: db, logger: logger}, nil
}

// UpsertBatch writes all records in one transaction, replacing existing rows
// for the same key. Returns the number of rows written.
func (s *Sink) UpsertBatch(ctx context.Context, records []*domain.ConsolidatedRecord) (int64, error) {
	if len(records) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO consolidated_records
		(year, month, region, cases, deaths, avg_temperature, total_precipitation, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (year, month, region) DO UPDATE SET
			cases = excluded.cases,
			deaths = excluded.deaths,
			avg_temperature = excluded.avg_temperature,
			total_precipitation = excluded.total_precipitation,
			updated_at = excluded.updated_at`)
	if err != nil {
		return 0, fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	now := domain.Now().UTC().Format(time.RFC3339)
	var written int64
	for _, rec := range records {
		if _, err := stmt.ExecContext(ctx,
			rec.Year, string(rec.Month), rec.Region,
			rec.Cases, rec.Deaths,
			rec.AvgTemperature, rec.TotalPrecipitation,
			now,
		); err != nil {
			return 0, fmt.Errorf("upsert %d/%s/%s: %w", rec.Year, rec.Month, rec.Region, err)
		}
		written++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return written, nil
}

// PublishBatch implements pipeline.RecordSink on top of UpsertBatch.
func (s *Sink) PublishBatch(ctx context.Context, records []*domain.ConsolidatedRecord) error {
	written, err := s.UpsertBatch(ctx, records)
	if err != nil {
		return err
	}
	s.logger.Info("sqlite sink updated", "rows", written)
	return nil
}

// Get returns the stored record for a key, or sql.ErrNoRows.
func (s *Sink) Get(ctx context.Context, key domain.Key) (*domain.ConsolidatedRecord, error) {
	rec := &domain.ConsolidatedRecord{}
	var month string
	err := s.db.QueryRowContext(ctx, `SELECT year, month, region, cases, deaths, avg_temperature, total_precipitation
		FROM consolidated_records WHERE year = ? AND month = ? AND region = ?`,
		key.Year, string(key.Month), key.Region,
	).Scan(&rec.Year, &month, &rec.Region, &rec.Cases, &rec.Deaths, &rec.AvgTemperature, &rec.TotalPrecipitation)
	if err != nil {
		return nil, err
	}
	rec.Month = domain.Month(month)
	return rec, nil
}

// Count returns the number of stored records.
func (s *Sink) Count(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM consolidated_records`).Scan(&n)
	return n, err
}

func (s *Sink) Close() error {
	return s.db.Close()
}
