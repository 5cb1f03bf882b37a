package application

import (
	"bytes"
	"context"
	"errors"
	"io"

	"energy-consumption/internal/consumption/domain"
)

// EnrichedDecoder reads a processed CSV.
type EnrichedDecoder func(r io.Reader) ([]domain.EnrichedRecord, error)

// TrainService reads the processed table of a period. Model fitting is not implemented;
// the stage only checks the processed data is readable and prints its head.
type TrainService struct {
	outputs ArtifactStore
	decode  EnrichedDecoder
	out     io.Writer
	opts    Options
}

// NewTrainService constructs the service.
func NewTrainService(outputs ArtifactStore, decode EnrichedDecoder, out io.Writer, opts Options) (*TrainService, error) {
	if outputs == nil {
		return nil, errors.New("train app service: nil output store")
	}
	if decode == nil {
		return nil, errors.New("train app service: nil decoder")
	}
	if out == nil {
		out = io.Discard
	}
	return &TrainService{outputs: outputs, decode: decode, out: out, opts: opts.withDefaults()}, nil
}

// Run loads the processed CSV for period and prints its first rows.
func (s *TrainService) Run(ctx context.Context, period domain.Period) (int, error) {
	run := s.opts.begin(domain.StageTrain, period)
	if err := period.Validate(); err != nil {
		return 0, run.finish(ctx, err)
	}

	name := domain.ProcessedName(period) + "." + FormatCSV
	run.run.DatasetKey = name
	data, err := s.outputs.Get(ctx, name)
	if err != nil {
		return 0, run.finish(ctx, transferError("read processed dataset", err))
	}
	records, err := s.decode(bytes.NewReader(data))
	if err != nil {
		return 0, run.finish(ctx, err)
	}
	if err := WritePreview(s.out, records, previewRows); err != nil {
		return 0, run.finish(ctx, err)
	}
	run.run.Records = len(records)
	return len(records), run.finish(ctx, nil)
}
