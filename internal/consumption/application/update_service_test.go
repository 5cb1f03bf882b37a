package application

import (
	"context"
	"errors"
	"testing"

	"energy-consumption/internal/consumption/domain"
	"energy-consumption/internal/consumption/infrastructure/memory"
)

func TestUpdateService_PersistsWhenPreviousMissing(t *testing.T) {
	repo := memory.NewSeriesRepository()
	runs := memory.NewRunRepository()
	notifier := &stubNotifier{}
	svc, err := NewUpdateService(&stubLoader{table: rawTable(2)}, repo, nil, testOptions(runs, notifier))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	period := domain.Period{Month: 12, Year: 2024}
	result, err := svc.Run(context.Background(), period, 2024)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.Decision != domain.DecisionPersist || !result.Stale {
		t.Fatalf("expected stale persist, got %+v", result)
	}
	if result.DestinationKey != "energy_consumption-1-2025.csv" {
		t.Fatalf("unexpected destination %s", result.DestinationKey)
	}
	if result.Records != 144 {
		t.Fatalf("expected 144 records, got %d", result.Records)
	}
	stored, err := repo.Load(context.Background(), result.DestinationKey)
	if err != nil {
		t.Fatalf("load destination: %v", err)
	}
	if len(stored) != 144 {
		t.Fatalf("expected 144 stored records, got %d", len(stored))
	}
	if len(notifier.msgs) != 1 || notifier.msgs[0].Dataset != result.DestinationKey || notifier.msgs[0].Period != "1-2025" {
		t.Fatalf("unexpected notifications %+v", notifier.msgs)
	}
	recorded := runs.Runs()
	if len(recorded) != 1 || recorded[0].Decision != domain.DecisionPersist || recorded[0].Status != domain.RunStatusSucceeded {
		t.Fatalf("unexpected runs %+v", recorded)
	}
}

func TestUpdateService_SkipsWhenUnchanged(t *testing.T) {
	repo := memory.NewSeriesRepository()
	notifier := &stubNotifier{}
	table := rawTable(1)
	previous, err := domain.Normalize(table, 2024)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	period := domain.Period{Month: 5, Year: 2024}
	if err := repo.Save(context.Background(), domain.DatasetName(period), previous); err != nil {
		t.Fatalf("seed: %v", err)
	}

	svc, _ := NewUpdateService(&stubLoader{table: table}, repo, nil, testOptions(nil, notifier))
	result, err := svc.Run(context.Background(), period, 2024)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.Decision != domain.DecisionSkip || result.Stale {
		t.Fatalf("expected skip, got %+v", result)
	}
	if repo.Saves() != 1 {
		t.Fatalf("expected no write on skip, saves=%d", repo.Saves())
	}
	if _, err := repo.Load(context.Background(), domain.DatasetName(period.Next())); !errors.Is(err, domain.ErrSeriesNotFound) {
		t.Fatalf("destination should not exist, got %v", err)
	}
	if len(notifier.msgs) != 0 {
		t.Fatalf("unexpected notification on skip")
	}
}

func TestUpdateService_PersistsWhenChanged(t *testing.T) {
	repo := memory.NewSeriesRepository()
	period := domain.Period{Month: 5, Year: 2024}
	previous, _ := domain.Normalize(rawTable(1), 2023)
	_ = repo.Save(context.Background(), domain.DatasetName(period), previous)

	svc, _ := NewUpdateService(&stubLoader{table: rawTable(1)}, repo, nil, testOptions(nil, nil))
	result, err := svc.Run(context.Background(), period, 2024)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.Decision != domain.DecisionPersist || result.Stale {
		t.Fatalf("expected persist, got %+v", result)
	}
	if _, err := repo.Load(context.Background(), "energy_consumption-6-2024.csv"); err != nil {
		t.Fatalf("destination not written: %v", err)
	}
}

func TestUpdateService_PreviousReadFailureIsStale(t *testing.T) {
	repo := &failingRepo{SeriesRepository: memory.NewSeriesRepository(), loadErr: errors.New("timeout")}
	svc, _ := NewUpdateService(&stubLoader{table: rawTable(1)}, repo, nil, testOptions(nil, nil))
	result, err := svc.Run(context.Background(), domain.Period{Month: 1, Year: 2024}, 2024)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !result.Stale || result.Decision != domain.DecisionPersist {
		t.Fatalf("expected stale persist, got %+v", result)
	}
}

func TestUpdateService_LoaderFailureIsTransferError(t *testing.T) {
	repo := memory.NewSeriesRepository()
	runs := memory.NewRunRepository()
	svc, _ := NewUpdateService(&stubLoader{err: errors.New("connection reset")}, repo, nil, testOptions(runs, nil))
	_, err := svc.Run(context.Background(), domain.Period{Month: 1, Year: 2024}, 2024)
	if !errors.Is(err, domain.ErrTransfer) {
		t.Fatalf("expected ErrTransfer, got %v", err)
	}
	if repo.Saves() != 0 {
		t.Fatalf("unexpected write")
	}
	recorded := runs.Runs()
	if len(recorded) != 1 || recorded[0].Status != domain.RunStatusFailed || recorded[0].Error == "" {
		t.Fatalf("expected failed run, got %+v", recorded)
	}
}

func TestUpdateService_FormatErrorAbortsBeforeWrite(t *testing.T) {
	table := rawTable(1)
	table.Header = table.Header[:13]
	repo := memory.NewSeriesRepository()
	svc, _ := NewUpdateService(&stubLoader{table: table}, repo, nil, testOptions(nil, nil))
	_, err := svc.Run(context.Background(), domain.Period{Month: 1, Year: 2024}, 2024)
	if !errors.Is(err, domain.ErrFormat) {
		t.Fatalf("expected ErrFormat, got %v", err)
	}
	if errors.Is(err, domain.ErrTransfer) {
		t.Fatalf("format error must not be reported as transfer error")
	}
	if repo.Saves() != 0 {
		t.Fatalf("unexpected write")
	}
}

func TestUpdateService_SaveFailureIsTransferError(t *testing.T) {
	repo := &failingRepo{SeriesRepository: memory.NewSeriesRepository(), saveErr: errors.New("disk full")}
	notifier := &stubNotifier{}
	svc, _ := NewUpdateService(&stubLoader{table: rawTable(1)}, repo, nil, testOptions(nil, notifier))
	_, err := svc.Run(context.Background(), domain.Period{Month: 1, Year: 2024}, 2024)
	if !errors.Is(err, domain.ErrTransfer) {
		t.Fatalf("expected ErrTransfer, got %v", err)
	}
	if len(notifier.msgs) != 0 {
		t.Fatalf("unexpected notification after failed save")
	}
}

func TestUpdateService_NotifyFailureDoesNotFailRun(t *testing.T) {
	repo := memory.NewSeriesRepository()
	notifier := &stubNotifier{err: errors.New("webhook down")}
	svc, _ := NewUpdateService(&stubLoader{table: rawTable(1)}, repo, nil, testOptions(nil, notifier))
	result, err := svc.Run(context.Background(), domain.Period{Month: 1, Year: 2024}, 2024)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.Decision != domain.DecisionPersist || len(notifier.msgs) != 1 {
		t.Fatalf("unexpected result %+v msgs=%d", result, len(notifier.msgs))
	}
}

func TestUpdateService_InvalidPeriod(t *testing.T) {
	svc, _ := NewUpdateService(&stubLoader{table: rawTable(1)}, memory.NewSeriesRepository(), nil, testOptions(nil, nil))
	if _, err := svc.Run(context.Background(), domain.Period{Month: 13, Year: 2024}, 2024); !errors.Is(err, domain.ErrInvalidPeriod) {
		t.Fatalf("expected ErrInvalidPeriod, got %v", err)
	}
}

func TestNewUpdateService_RequiresDependencies(t *testing.T) {
	if _, err := NewUpdateService(nil, memory.NewSeriesRepository(), nil, Options{}); err == nil {
		t.Fatalf("expected error for nil loader")
	}
	if _, err := NewUpdateService(&stubLoader{}, nil, nil, Options{}); err == nil {
		t.Fatalf("expected error for nil repository")
	}
}
