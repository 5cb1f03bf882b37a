package application

import (
	"context"
	"errors"

	"energy-consumption/internal/consumption/domain"
)

const contentTypeWorkbook = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// WorkbookDownloader fetches the publisher workbook and reports its URL.
type WorkbookDownloader interface {
	Download(ctx context.Context) (string, []byte, error)
}

// ExtractResult describes the saved workbook.
type ExtractResult struct {
	URL   string
	Key   string
	Bytes int
}

// ExtractService downloads the publisher workbook into the raw location.
type ExtractService struct {
	downloader WorkbookDownloader
	dest       ArtifactStore
	key        string
	opts       Options
}

// NewExtractService constructs the service.
func NewExtractService(downloader WorkbookDownloader, dest ArtifactStore, key string, opts Options) (*ExtractService, error) {
	if downloader == nil {
		return nil, errors.New("extract app service: nil downloader")
	}
	if dest == nil {
		return nil, errors.New("extract app service: nil destination")
	}
	if key == "" {
		return nil, domain.ErrEmptyKey
	}
	return &ExtractService{downloader: downloader, dest: dest, key: key, opts: opts.withDefaults()}, nil
}

// Run downloads the workbook and stores it.
func (s *ExtractService) Run(ctx context.Context, period domain.Period) (ExtractResult, error) {
	run := s.opts.begin(domain.StageExtract, period)
	run.run.DatasetKey = s.key

	link, data, err := s.downloader.Download(ctx)
	if err != nil {
		return ExtractResult{}, run.finish(ctx, transferError("download workbook", err))
	}
	run.logf("event=workbook_downloaded stage=%s url=%s bytes=%d", domain.StageExtract, link, len(data))
	if err := s.dest.Put(ctx, s.key, data, contentTypeWorkbook); err != nil {
		return ExtractResult{}, run.finish(ctx, transferError("store workbook", err))
	}
	return ExtractResult{URL: link, Key: s.key, Bytes: len(data)}, run.finish(ctx, nil)
}
