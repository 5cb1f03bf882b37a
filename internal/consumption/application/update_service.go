package application

import (
	"context"
	"fmt"

	"energy-consumption/internal/consumption/domain"
	"energy-consumption/internal/consumption/interfaces/notify"
	"energy-consumption/internal/observability/metrics"
)

// UpdateResult describes the outcome of one update workflow.
type UpdateResult struct {
	Period         domain.Period
	PreviousKey    string
	DestinationKey string
	Decision       domain.Decision
	Stale          bool
	Records        int
}

// UpdateService compares a fresh normalization against the stored dataset of the period
// and persists it under the next period only when it changed.
type UpdateService struct {
	loader     domain.RawTableLoader
	repo       domain.SeriesRepository
	normalizer *domain.Normalizer
	opts       Options
}

// NewUpdateService constructs the service. A nil normalizer uses the default labels.
func NewUpdateService(loader domain.RawTableLoader, repo domain.SeriesRepository, normalizer *domain.Normalizer, opts Options) (*UpdateService, error) {
	if err := checkSourceDeps(loader, repo); err != nil {
		return nil, err
	}
	if normalizer == nil {
		normalizer = domain.NewNormalizer()
	}
	return &UpdateService{loader: loader, repo: repo, normalizer: normalizer, opts: opts.withDefaults()}, nil
}

// Run executes Start, Compare and then Skip or Persist for period.
func (s *UpdateService) Run(ctx context.Context, period domain.Period, referenceYear int) (UpdateResult, error) {
	run := s.opts.begin(domain.StageUpdate, period)
	if err := period.Validate(); err != nil {
		return UpdateResult{}, run.finish(ctx, err)
	}

	result := UpdateResult{
		Period:         period,
		PreviousKey:    domain.DatasetName(period),
		DestinationKey: domain.DatasetName(period.Next()),
	}
	run.run.DatasetKey = result.DestinationKey

	candidate, err := normalizeSource(ctx, s.loader, s.normalizer, referenceYear)
	if err != nil {
		return UpdateResult{}, run.finish(ctx, err)
	}
	result.Records = len(candidate)
	run.run.Records = len(candidate)

	previous, err := s.repo.Load(ctx, result.PreviousKey)
	if err != nil {
		stale := fmt.Errorf("%w: %s: %w", domain.ErrStaleComparison, result.PreviousKey, err)
		run.logf("event=stale_comparison stage=%s period=%s key=%s error=%v", domain.StageUpdate, period, result.PreviousKey, stale)
		metrics.IncStaleComparison()
		result.Stale = true
	}

	if !result.Stale && !domain.HasChanged(previous, candidate) {
		result.Decision = domain.DecisionSkip
		run.run.Decision = result.Decision
		metrics.IncUpdateDecision(string(result.Decision))
		run.logf("event=update_skipped stage=%s period=%s key=%s records=%d reason=no_changes", domain.StageUpdate, period, result.PreviousKey, len(candidate))
		return result, run.finish(ctx, nil)
	}

	if err := s.repo.Save(ctx, result.DestinationKey, candidate); err != nil {
		return UpdateResult{}, run.finish(ctx, transferError("save dataset", err))
	}
	result.Decision = domain.DecisionPersist
	run.run.Decision = result.Decision
	metrics.IncUpdateDecision(string(result.Decision))

	s.publish(ctx, run, result)
	return result, run.finish(ctx, nil)
}

// publish failures are logged; the dataset is already stored.
func (s *UpdateService) publish(ctx context.Context, run *stageRun, result UpdateResult) {
	if _, nop := s.opts.Notifier.(notify.NopNotifier); nop {
		return
	}
	msg := notify.PublishMessage{
		Dataset:  result.DestinationKey,
		Period:   result.Period.Next().String(),
		Records:  result.Records,
		Decision: string(result.Decision),
	}
	if err := s.opts.Notifier.Notify(ctx, msg); err != nil {
		metrics.IncNotify(metrics.ResultError)
		run.logf("event=notify_failed stage=%s key=%s error=%v", domain.StageUpdate, result.DestinationKey, err)
		return
	}
	metrics.IncNotify(metrics.ResultSuccess)
}
