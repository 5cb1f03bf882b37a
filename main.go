package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/spf13/afero"

	"energy-consumption/internal/consumption/application"
	"energy-consumption/internal/consumption/domain"
	"energy-consumption/internal/consumption/infrastructure/blob"
	"energy-consumption/internal/consumption/infrastructure/postgres"
	"energy-consumption/internal/consumption/infrastructure/source"
	"energy-consumption/internal/consumption/infrastructure/tablecodec"
	"energy-consumption/internal/consumption/infrastructure/workbook"
	"energy-consumption/internal/consumption/interfaces/export"
	"energy-consumption/internal/consumption/interfaces/notify"
	"energy-consumption/internal/observability/metrics"
)

func main() {
	logger := log.New(os.Stdout, "", log.LstdFlags)

	cfg, err := application.LoadConfig()
	if err != nil {
		logger.Fatalf("config error: %v", err)
	}
	clock := domain.SystemClock{}
	period, err := cfg.Period(clock.Now())
	if err != nil {
		logger.Fatalf("period error: %v", err)
	}

	var db *sql.DB
	if cfg.DatabaseURL != "" {
		db, err = sql.Open("pgx", cfg.DatabaseURL)
		if err != nil {
			logger.Fatalf("db open error: %v", err)
		}
		defer db.Close()
		if err := db.Ping(); err != nil {
			logger.Fatalf("db ping error: %v", err)
		}
	}
	metrics.Init(db, logger)

	opts := application.Options{Logger: logger, Clock: clock}
	if db != nil {
		opts.Recorder = postgres.NewRunRepository(db)
	}
	if cfg.Notify.WebhookURL != "" {
		opts.Notifier = notify.NewWebhookNotifier(cfg.Notify.WebhookURL, notify.WithSecret(cfg.Notify.WebhookSecret))
	}

	ctx := context.Background()
	logger.Printf("event=pipeline_start stage=%s period=%s backend=%s", cfg.Stage, period, cfg.Store.Backend)
	runErr := run(ctx, cfg, period, db, opts, logger)

	pushCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	if err := metrics.Push(pushCtx, cfg.Metrics.PushgatewayURL, cfg.Metrics.Job); err != nil {
		logger.Printf("event=metrics_push_failed error=%v", err)
	}
	cancel()

	if runErr != nil {
		logger.Fatalf("event=pipeline_failed stage=%s period=%s error=%v", cfg.Stage, period, runErr)
	}
}

func run(ctx context.Context, cfg application.Config, period domain.Period, db *sql.DB, opts application.Options, logger *log.Logger) error {
	store, err := buildStore(cfg)
	if err != nil {
		return err
	}
	outputs := blob.NewFileStore(afero.NewOsFs(), cfg.OutputDir)

	switch domain.Stage(cfg.Stage) {
	case domain.StageExtract:
		pageURL := cfg.Source.PageURL
		if pageURL == "" {
			pageURL = source.DefaultPageURL
		}
		fetcher, err := source.NewFetcher(pageURL, source.WithBaseURL(cfg.Source.BaseURL))
		if err != nil {
			return err
		}
		dest, key := rawDestination(cfg, store)
		svc, err := application.NewExtractService(fetcher, dest, key, opts)
		if err != nil {
			return err
		}
		result, err := svc.Run(ctx, period)
		if err != nil {
			return err
		}
		logger.Printf("event=workbook_saved url=%s key=%s bytes=%d", result.URL, result.Key, result.Bytes)
		return nil

	case domain.StageUpload:
		loader, repo, err := sourceAndRepo(cfg, store, db, opts.Clock)
		if err != nil {
			return err
		}
		svc, err := application.NewUploadService(loader, repo, nil, opts)
		if err != nil {
			return err
		}
		_, err = svc.Run(ctx, period, cfg.ReferenceYearFor(period))
		return err

	case domain.StageUpdate:
		loader, repo, err := sourceAndRepo(cfg, store, db, opts.Clock)
		if err != nil {
			return err
		}
		svc, err := application.NewUpdateService(loader, repo, nil, opts)
		if err != nil {
			return err
		}
		result, err := svc.Run(ctx, period, cfg.ReferenceYearFor(period))
		if err != nil {
			return err
		}
		if result.Decision == domain.DecisionSkip {
			fmt.Fprintf(os.Stdout, "No changes for %s; %s not written\n", period, result.DestinationKey)
		}
		return nil

	case domain.StageProcess:
		repo, err := seriesRepository(cfg, store, db, opts.Clock)
		if err != nil {
			return err
		}
		renderers, err := buildRenderers(cfg.ExportFormats)
		if err != nil {
			return err
		}
		svc, err := application.NewProcessService(repo, outputs, renderers, os.Stdout, opts)
		if err != nil {
			return err
		}
		_, err = svc.Run(ctx, period)
		return err

	case domain.StageTrain:
		svc, err := application.NewTrainService(outputs, tablecodec.DecodeEnriched, os.Stdout, opts)
		if err != nil {
			return err
		}
		_, err = svc.Run(ctx, period)
		return err
	}
	return fmt.Errorf("unknown stage %q", cfg.Stage)
}

// buildStore returns nil for the postgres backend.
func buildStore(cfg application.Config) (blob.Store, error) {
	switch cfg.Store.Backend {
	case application.BackendFile:
		return blob.NewFileStore(afero.NewOsFs(), cfg.Store.Root), nil
	case application.BackendS3:
		creds, err := blob.ParseCredentials(cfg.Store.CredentialsJSON)
		if err != nil {
			return nil, err
		}
		return blob.NewS3Store(creds, cfg.Store.Bucket)
	case application.BackendPostgres:
		return nil, nil
	}
	return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
}

func seriesRepository(cfg application.Config, store blob.Store, db *sql.DB, clock domain.Clock) (domain.SeriesRepository, error) {
	if cfg.Store.Backend == application.BackendPostgres {
		if db == nil {
			return nil, errors.New("postgres backend requires DATABASE_URL")
		}
		return postgres.NewSeriesRepository(db, clock), nil
	}
	return blob.NewSeriesRepository(store, cfg.Store.Folder)
}

func sourceAndRepo(cfg application.Config, store blob.Store, db *sql.DB, clock domain.Clock) (domain.RawTableLoader, domain.SeriesRepository, error) {
	repo, err := seriesRepository(cfg, store, db, clock)
	if err != nil {
		return nil, nil, err
	}
	parser := workbook.NewParser(cfg.Raw.Sheet)
	if cfg.Raw.BlobKey != "" && store != nil {
		loader, err := workbook.NewBlobSource(store, cfg.Raw.BlobKey, parser)
		return loader, repo, err
	}
	loader, err := workbook.NewFileSource(cfg.Raw.FilePath, parser)
	return loader, repo, err
}

func rawDestination(cfg application.Config, store blob.Store) (application.ArtifactStore, string) {
	if cfg.Raw.BlobKey != "" && store != nil {
		return store, cfg.Raw.BlobKey
	}
	dir, name := filepath.Split(cfg.Raw.FilePath)
	return blob.NewFileStore(afero.NewOsFs(), dir), name
}

func buildRenderers(formats []string) ([]application.Renderer, error) {
	renderers := make([]application.Renderer, 0, len(formats))
	for _, format := range formats {
		switch format {
		case application.FormatCSV:
			renderers = append(renderers, application.Renderer{
				Format:      format,
				Extension:   "csv",
				ContentType: "text/csv",
				Render: func(_ domain.Period, records []domain.EnrichedRecord) ([]byte, error) {
					return tablecodec.MarshalEnriched(records)
				},
			})
		case application.FormatXLSX:
			renderers = append(renderers, application.Renderer{
				Format:      format,
				Extension:   "xlsx",
				ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
				Render:      export.BuildSeriesXLSX,
			})
		case application.FormatPDF:
			renderers = append(renderers, application.Renderer{
				Format:      format,
				Extension:   "pdf",
				ContentType: "application/pdf",
				Render:      export.BuildSeriesPDF,
			})
		default:
			return nil, fmt.Errorf("unknown export format %q", format)
		}
	}
	return renderers, nil
}
