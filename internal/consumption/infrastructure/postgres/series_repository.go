// Package postgres persists normalized datasets and pipeline runs in PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"energy-consumption/internal/consumption/domain"
)

// SeriesRepository stores normalized tables row by row, keeping their order in an ordinal column.
type SeriesRepository struct {
	db    *sql.DB
	clock domain.Clock
}

// NewSeriesRepository creates a repository. A nil clock uses the system clock.
func NewSeriesRepository(db *sql.DB, clock domain.Clock) *SeriesRepository {
	if clock == nil {
		clock = domain.SystemClock{}
	}
	return &SeriesRepository{db: db, clock: clock}
}

// Load returns the dataset in stored order.
func (r *SeriesRepository) Load(ctx context.Context, key string) ([]domain.NormalizedRecord, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("postgres series repo: nil db")
	}
	if key == "" {
		return nil, domain.ErrEmptyKey
	}

	var count int
	err := r.db.QueryRowContext(ctx, `
SELECT record_count
FROM energy_consumption_datasets
WHERE dataset_key = $1`, key).Scan(&count)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", domain.ErrSeriesNotFound, key)
		}
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, `
SELECT region, year, month, energy
FROM energy_consumption_series
WHERE dataset_key = $1
ORDER BY ordinal ASC`, key)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]domain.NormalizedRecord, 0, count)
	for rows.Next() {
		var rec domain.NormalizedRecord
		if err := rows.Scan(&rec.Region, &rec.Year, &rec.Month, &rec.Energy); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(records) != count {
		return nil, fmt.Errorf("%w: dataset %s has %d rows, expected %d", domain.ErrFormat, key, len(records), count)
	}
	return records, nil
}

// Save replaces the dataset in one transaction.
func (r *SeriesRepository) Save(ctx context.Context, key string, records []domain.NormalizedRecord) error {
	if r == nil || r.db == nil {
		return errors.New("postgres series repo: nil db")
	}
	if key == "" {
		return domain.ErrEmptyKey
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM energy_consumption_series WHERE dataset_key = $1`, key); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO energy_consumption_series (dataset_key, ordinal, region, year, month, energy)
VALUES ($1,$2,$3,$4,$5,$6)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for i, rec := range records {
		if _, err := stmt.ExecContext(ctx, key, i, rec.Region, rec.Year, rec.Month, rec.Energy); err != nil {
			return err
		}
	}

	now := r.clock.Now().UTC()
	if _, err := tx.ExecContext(ctx, `
INSERT INTO energy_consumption_datasets (dataset_key, record_count, created_at, updated_at)
VALUES ($1,$2,$3,$3)
ON CONFLICT (dataset_key)
DO UPDATE SET record_count = EXCLUDED.record_count, updated_at = EXCLUDED.updated_at`,
		key, len(records), now,
	); err != nil {
		return err
	}
	return tx.Commit()
}
