package application

import (
	"context"

	"energy-consumption/internal/consumption/domain"
)

// UploadResult describes a completed upload.
type UploadResult struct {
	Period  domain.Period
	Key     string
	Records int
}

// UploadService normalizes the workbook and stores it under the period's own dataset name.
type UploadService struct {
	loader     domain.RawTableLoader
	repo       domain.SeriesRepository
	normalizer *domain.Normalizer
	opts       Options
}

// NewUploadService constructs the service. A nil normalizer uses the default labels.
func NewUploadService(loader domain.RawTableLoader, repo domain.SeriesRepository, normalizer *domain.Normalizer, opts Options) (*UploadService, error) {
	if err := checkSourceDeps(loader, repo); err != nil {
		return nil, err
	}
	if normalizer == nil {
		normalizer = domain.NewNormalizer()
	}
	return &UploadService{loader: loader, repo: repo, normalizer: normalizer, opts: opts.withDefaults()}, nil
}

// Run uploads the dataset for period.
func (s *UploadService) Run(ctx context.Context, period domain.Period, referenceYear int) (UploadResult, error) {
	run := s.opts.begin(domain.StageUpload, period)
	if err := period.Validate(); err != nil {
		return UploadResult{}, run.finish(ctx, err)
	}

	key := domain.DatasetName(period)
	run.run.DatasetKey = key
	records, err := normalizeSource(ctx, s.loader, s.normalizer, referenceYear)
	if err != nil {
		return UploadResult{}, run.finish(ctx, err)
	}
	if err := s.repo.Save(ctx, key, records); err != nil {
		return UploadResult{}, run.finish(ctx, transferError("save dataset", err))
	}

	run.run.Records = len(records)
	run.run.Decision = domain.DecisionPersist
	return UploadResult{Period: period, Key: key, Records: len(records)}, run.finish(ctx, nil)
}
