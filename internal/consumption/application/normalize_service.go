package application

import (
	"context"
	"errors"

	"energy-consumption/internal/consumption/domain"
)

// normalizeSource loads the raw worksheet and converts it to normalized records.
func normalizeSource(ctx context.Context, loader domain.RawTableLoader, normalizer *domain.Normalizer, referenceYear int) ([]domain.NormalizedRecord, error) {
	table, err := loader.LoadTable(ctx)
	if err != nil {
		return nil, transferError("load raw table", err)
	}
	records, err := normalizer.Normalize(table, referenceYear)
	if err != nil {
		return nil, err
	}
	return records, nil
}

func checkSourceDeps(loader domain.RawTableLoader, repo domain.SeriesRepository) error {
	if loader == nil {
		return errors.New("consumption app: nil raw table loader")
	}
	if repo == nil {
		return errors.New("consumption app: nil series repository")
	}
	return nil
}
