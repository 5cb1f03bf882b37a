package blob

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"energy-consumption/internal/consumption/domain"
	"energy-consumption/internal/consumption/infrastructure/tablecodec"
)

const contentTypeCSV = "text/csv"

// SeriesRepository stores normalized tables as CSV objects inside a folder.
type SeriesRepository struct {
	store  Store
	folder string
}

// NewSeriesRepository constructs a SeriesRepository.
func NewSeriesRepository(store Store, folder string) (*SeriesRepository, error) {
	if store == nil {
		return nil, errors.New("blob series repo: nil store")
	}
	return &SeriesRepository{store: store, folder: folder}, nil
}

// Load reads and decodes the dataset stored under key.
func (r *SeriesRepository) Load(ctx context.Context, key string) ([]domain.NormalizedRecord, error) {
	if key == "" {
		return nil, domain.ErrEmptyKey
	}
	data, err := r.store.Get(ctx, Key(r.folder, key))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", domain.ErrSeriesNotFound, key)
		}
		return nil, err
	}
	return tablecodec.DecodeNormalized(bytes.NewReader(data))
}

// Save encodes records and writes them under key in a single put.
func (r *SeriesRepository) Save(ctx context.Context, key string, records []domain.NormalizedRecord) error {
	if key == "" {
		return domain.ErrEmptyKey
	}
	data, err := tablecodec.MarshalNormalized(records)
	if err != nil {
		return err
	}
	return r.store.Put(ctx, Key(r.folder, key), data, contentTypeCSV)
}
