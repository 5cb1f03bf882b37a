// Package memory provides in-memory repositories for tests and dry runs.
package memory

import (
	"context"
	"errors"
	"sync"

	"energy-consumption/internal/consumption/domain"
)

// SeriesRepository is an in-memory domain.SeriesRepository.
type SeriesRepository struct {
	mu    sync.RWMutex
	data  map[string][]domain.NormalizedRecord
	saves int
}

// NewSeriesRepository constructs a repository.
func NewSeriesRepository() *SeriesRepository {
	return &SeriesRepository{data: make(map[string][]domain.NormalizedRecord)}
}

// Load returns a copy of the dataset stored under key.
func (r *SeriesRepository) Load(ctx context.Context, key string) ([]domain.NormalizedRecord, error) {
	_ = ctx
	if key == "" {
		return nil, domain.ErrEmptyKey
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	records, ok := r.data[key]
	if !ok {
		return nil, domain.ErrSeriesNotFound
	}
	return append([]domain.NormalizedRecord{}, records...), nil
}

// Save stores a copy of records under key.
func (r *SeriesRepository) Save(ctx context.Context, key string, records []domain.NormalizedRecord) error {
	_ = ctx
	if key == "" {
		return domain.ErrEmptyKey
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[key] = append([]domain.NormalizedRecord{}, records...)
	r.saves++
	return nil
}

// Saves returns the number of Save calls.
func (r *SeriesRepository) Saves() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.saves
}

// Keys returns the stored dataset keys.
func (r *SeriesRepository) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]string, 0, len(r.data))
	for k := range r.data {
		keys = append(keys, k)
	}
	return keys
}

// RunRepository keeps run records in insertion order.
type RunRepository struct {
	mu   sync.RWMutex
	runs []domain.Run
}

// NewRunRepository constructs a RunRepository.
func NewRunRepository() *RunRepository {
	return &RunRepository{}
}

// RecordRun appends a run.
func (r *RunRepository) RecordRun(ctx context.Context, run domain.Run) error {
	_ = ctx
	if run.ID == "" {
		return errors.New("memory run repo: empty id")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs = append(r.runs, run)
	return nil
}

// Runs returns recorded runs.
func (r *RunRepository) Runs() []domain.Run {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]domain.Run{}, r.runs...)
}
