package postgres

import (
	"context"
	"database/sql"
	"errors"

	"energy-consumption/internal/consumption/domain"
)

// RunRepository persists pipeline runs.
type RunRepository struct {
	db *sql.DB
}

// NewRunRepository constructs a RunRepository.
func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

// RecordRun inserts a run; a run with the same id is overwritten.
func (r *RunRepository) RecordRun(ctx context.Context, run domain.Run) error {
	if r == nil || r.db == nil {
		return errors.New("postgres run repo: nil db")
	}
	if run.ID == "" {
		return errors.New("postgres run repo: empty run id")
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO pipeline_runs (
	id, stage, period_month, period_year, dataset_key, decision, status, records, error, started_at, finished_at
) VALUES (
	$1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11
)
ON CONFLICT (id)
DO UPDATE SET
	decision = EXCLUDED.decision,
	status = EXCLUDED.status,
	records = EXCLUDED.records,
	error = EXCLUDED.error,
	finished_at = EXCLUDED.finished_at`,
		run.ID, string(run.Stage), run.Period.Month, run.Period.Year, run.DatasetKey, string(run.Decision),
		run.Status, run.Records, run.Error, run.StartedAt.UTC(), run.FinishedAt.UTC(),
	)
	return err
}
