package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"energy-consumption/internal/consumption/domain"
	"energy-consumption/internal/observability/metrics"
)

const previewRows = 5

// Renderer encodes an enriched table into one output format.
type Renderer struct {
	Format      string
	Extension   string
	ContentType string
	Render      func(period domain.Period, records []domain.EnrichedRecord) ([]byte, error)
}

// ProcessResult lists the written outputs.
type ProcessResult struct {
	Period  domain.Period
	Key     string
	Records int
	Outputs []string
}

// ProcessService enriches the stored dataset of a period and writes its processed outputs.
type ProcessService struct {
	repo      domain.SeriesRepository
	outputs   ArtifactStore
	renderers []Renderer
	preview   io.Writer
	opts      Options
}

// NewProcessService constructs the service. preview may be nil.
func NewProcessService(repo domain.SeriesRepository, outputs ArtifactStore, renderers []Renderer, preview io.Writer, opts Options) (*ProcessService, error) {
	if repo == nil {
		return nil, errors.New("process app service: nil series repository")
	}
	if outputs == nil {
		return nil, errors.New("process app service: nil output store")
	}
	if len(renderers) == 0 {
		return nil, errors.New("process app service: no renderers")
	}
	for _, r := range renderers {
		if r.Render == nil || r.Extension == "" {
			return nil, fmt.Errorf("process app service: incomplete renderer %q", r.Format)
		}
	}
	return &ProcessService{repo: repo, outputs: outputs, renderers: renderers, preview: preview, opts: opts.withDefaults()}, nil
}

// Run processes the dataset stored for period.
func (s *ProcessService) Run(ctx context.Context, period domain.Period) (ProcessResult, error) {
	run := s.opts.begin(domain.StageProcess, period)
	if err := period.Validate(); err != nil {
		return ProcessResult{}, run.finish(ctx, err)
	}

	key := domain.DatasetName(period)
	run.run.DatasetKey = key
	records, err := s.repo.Load(ctx, key)
	if err != nil {
		return ProcessResult{}, run.finish(ctx, transferError("load dataset", err))
	}
	enriched, err := domain.Enrich(records)
	if err != nil {
		return ProcessResult{}, run.finish(ctx, err)
	}

	result := ProcessResult{Period: period, Key: key, Records: len(enriched)}
	for _, renderer := range s.renderers {
		name := domain.ProcessedName(period) + "." + renderer.Extension
		if err := s.write(ctx, renderer, name, period, enriched); err != nil {
			return ProcessResult{}, run.finish(ctx, err)
		}
		result.Outputs = append(result.Outputs, name)
	}

	if s.preview != nil {
		if err := WritePreview(s.preview, enriched, previewRows); err != nil {
			return ProcessResult{}, run.finish(ctx, err)
		}
	}
	run.run.Records = len(enriched)
	return result, run.finish(ctx, nil)
}

func (s *ProcessService) write(ctx context.Context, renderer Renderer, name string, period domain.Period, records []domain.EnrichedRecord) error {
	start := s.opts.Clock.Now()
	data, err := renderer.Render(period, records)
	if err == nil {
		err = s.outputs.Put(ctx, name, data, renderer.ContentType)
		if err != nil {
			err = transferError("write "+name, err)
		}
	}
	result := metrics.ResultSuccess
	if err != nil {
		result = metrics.ResultError
	}
	metrics.ObserveExport(renderer.Format, result, s.opts.Clock.Now().Sub(start))
	return err
}

// WritePreview prints the first n enriched rows as an aligned table.
func WritePreview(w io.Writer, records []domain.EnrichedRecord, n int) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Region\tYear\tMonth\tSeason\tEnergy")
	for i, rec := range records {
		if i >= n {
			break
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%s\t%.3f\n", rec.Region, rec.Year, rec.Month, rec.Season, rec.Energy)
	}
	return tw.Flush()
}
