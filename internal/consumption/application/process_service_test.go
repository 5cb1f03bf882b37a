package application

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"energy-consumption/internal/consumption/domain"
	"energy-consumption/internal/consumption/infrastructure/memory"
	"energy-consumption/internal/consumption/infrastructure/tablecodec"
)

func csvRenderer() Renderer {
	return Renderer{
		Format:      FormatCSV,
		Extension:   "csv",
		ContentType: "text/csv",
		Render: func(_ domain.Period, records []domain.EnrichedRecord) ([]byte, error) {
			return tablecodec.MarshalEnriched(records)
		},
	}
}

func TestProcessService_WritesEnrichedOutputs(t *testing.T) {
	repo := memory.NewSeriesRepository()
	period := domain.Period{Month: 6, Year: 2024}
	records, _ := domain.Normalize(rawTable(1), 2024)
	_ = repo.Save(context.Background(), domain.DatasetName(period), records)

	outputs := newMapStore()
	var rendered int
	counting := Renderer{
		Format:    FormatPDF,
		Extension: "pdf",
		Render: func(p domain.Period, records []domain.EnrichedRecord) ([]byte, error) {
			rendered = len(records)
			return []byte("%PDF-stub"), nil
		},
	}
	var preview bytes.Buffer
	svc, err := NewProcessService(repo, outputs, []Renderer{csvRenderer(), counting}, &preview, testOptions(nil, nil))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	result, err := svc.Run(context.Background(), period)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.Records != 72 || rendered != 72 {
		t.Fatalf("expected 72 enriched records, got %d/%d", result.Records, rendered)
	}
	if len(result.Outputs) != 2 || result.Outputs[0] != "energy_consumption_processed-6-2024.csv" {
		t.Fatalf("unexpected outputs %v", result.Outputs)
	}

	decoded, err := tablecodec.DecodeEnriched(bytes.NewReader(outputs.objects["energy_consumption_processed-6-2024.csv"]))
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if len(decoded) != 72 || decoded[0].Region != "Region 0" || decoded[0].Month != 1 || decoded[0].Season != domain.SeasonSummer {
		t.Fatalf("unexpected first row %+v", decoded[0])
	}

	lines := strings.Split(strings.TrimSpace(preview.String()), "\n")
	if len(lines) != previewRows+1 || !strings.HasPrefix(lines[0], "Region") {
		t.Fatalf("unexpected preview:\n%s", preview.String())
	}
}

func TestProcessService_MissingDataset(t *testing.T) {
	svc, _ := NewProcessService(memory.NewSeriesRepository(), newMapStore(), []Renderer{csvRenderer()}, nil, testOptions(nil, nil))
	_, err := svc.Run(context.Background(), domain.Period{Month: 6, Year: 2024})
	if !errors.Is(err, domain.ErrTransfer) || !errors.Is(err, domain.ErrSeriesNotFound) {
		t.Fatalf("expected transfer + not found, got %v", err)
	}
}

func TestProcessService_OutputFailure(t *testing.T) {
	repo := memory.NewSeriesRepository()
	period := domain.Period{Month: 6, Year: 2024}
	records, _ := domain.Normalize(rawTable(1), 2024)
	_ = repo.Save(context.Background(), domain.DatasetName(period), records)

	outputs := newMapStore()
	outputs.putErr = errors.New("read-only")
	svc, _ := NewProcessService(repo, outputs, []Renderer{csvRenderer()}, io.Discard, testOptions(nil, nil))
	if _, err := svc.Run(context.Background(), period); !errors.Is(err, domain.ErrTransfer) {
		t.Fatalf("expected ErrTransfer, got %v", err)
	}
}

func TestNewProcessService_RejectsIncompleteRenderer(t *testing.T) {
	_, err := NewProcessService(memory.NewSeriesRepository(), newMapStore(), []Renderer{{Format: "csv"}}, nil, Options{})
	if err == nil {
		t.Fatalf("expected error for renderer without func")
	}
}

func TestTrainService_ReadsProcessedHead(t *testing.T) {
	records, _ := domain.Normalize(rawTable(1), 2024)
	enriched, _ := domain.Enrich(records)
	data, _ := tablecodec.MarshalEnriched(enriched)

	outputs := newMapStore()
	_ = outputs.Put(context.Background(), "energy_consumption_processed-6-2024.csv", data, "text/csv")

	var out bytes.Buffer
	svc, err := NewTrainService(outputs, tablecodec.DecodeEnriched, &out, testOptions(nil, nil))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	count, err := svc.Run(context.Background(), domain.Period{Month: 6, Year: 2024})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if count != 72 {
		t.Fatalf("expected 72 rows, got %d", count)
	}
	if !strings.Contains(out.String(), "Region 0") {
		t.Fatalf("preview missing rows:\n%s", out.String())
	}
}

func TestTrainService_MissingProcessedFile(t *testing.T) {
	svc, _ := NewTrainService(newMapStore(), tablecodec.DecodeEnriched, nil, testOptions(nil, nil))
	if _, err := svc.Run(context.Background(), domain.Period{Month: 6, Year: 2024}); !errors.Is(err, domain.ErrTransfer) {
		t.Fatalf("expected ErrTransfer, got %v", err)
	}
}
