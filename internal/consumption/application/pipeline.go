package application

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"

	"energy-consumption/internal/consumption/domain"
	"energy-consumption/internal/consumption/interfaces/notify"
	"energy-consumption/internal/observability/metrics"
)

// ArtifactStore reads and writes whole files by key.
type ArtifactStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, data []byte, contentType string) error
}

// Options carries the collaborators shared by every stage.
type Options struct {
	Logger   *log.Logger
	Recorder domain.RunRecorder
	Notifier notify.Notifier
	Clock    domain.Clock
}

func (o Options) withDefaults() Options {
	if o.Clock == nil {
		o.Clock = domain.SystemClock{}
	}
	if o.Notifier == nil {
		o.Notifier = notify.NopNotifier{}
	}
	return o
}

type stageRun struct {
	opts Options
	run  domain.Run
}

func (o Options) begin(stage domain.Stage, period domain.Period) *stageRun {
	return &stageRun{
		opts: o,
		run: domain.Run{
			ID:        uuid.NewString(),
			Stage:     stage,
			Period:    period,
			StartedAt: o.Clock.Now().UTC(),
		},
	}
}

// finish records the run outcome and returns err unchanged.
func (r *stageRun) finish(ctx context.Context, err error) error {
	r.run.FinishedAt = r.opts.Clock.Now().UTC()
	result := metrics.ResultSuccess
	r.run.Status = domain.RunStatusSucceeded
	if err != nil {
		result = metrics.ResultError
		r.run.Status = domain.RunStatusFailed
		r.run.Error = err.Error()
		r.logf("event=stage_failed stage=%s period=%s key=%s error=%v", r.run.Stage, r.run.Period, r.run.DatasetKey, err)
	} else {
		r.logf("event=stage_completed stage=%s period=%s key=%s records=%d decision=%s", r.run.Stage, r.run.Period, r.run.DatasetKey, r.run.Records, r.run.Decision)
	}
	metrics.ObserveStage(string(r.run.Stage), result, r.run.FinishedAt.Sub(r.run.StartedAt))
	metrics.SetRecords(string(r.run.Stage), r.run.Records)

	if r.opts.Recorder != nil {
		if recErr := r.opts.Recorder.RecordRun(ctx, r.run); recErr != nil {
			r.logf("event=run_record_failed stage=%s run_id=%s error=%v", r.run.Stage, r.run.ID, recErr)
		}
	}
	return err
}

func (r *stageRun) logf(format string, args ...any) {
	if r.opts.Logger != nil {
		r.opts.Logger.Printf(format, args...)
	}
}

// transferError marks infrastructure failures, leaving format errors untouched.
func transferError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrFormat) || errors.Is(err, domain.ErrTransfer) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, domain.ErrTransfer, err)
}
