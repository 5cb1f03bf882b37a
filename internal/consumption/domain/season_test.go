package domain

import (
	"errors"
	"testing"
)

func TestSeasonForMonth(t *testing.T) {
	want := map[int]string{
		1: SeasonSummer, 2: SeasonSummer, 12: SeasonSummer,
		3: SeasonAutumn, 4: SeasonAutumn, 5: SeasonAutumn,
		6: SeasonWinter, 7: SeasonWinter, 8: SeasonWinter,
		9: SeasonSpring, 10: SeasonSpring, 11: SeasonSpring,
	}
	for month, season := range want {
		if got := SeasonForMonth(month); got != season {
			t.Fatalf("month %d: expected %s, got %s", month, season, got)
		}
	}
}

func TestEnrichSortsAndPreservesValues(t *testing.T) {
	records := []NormalizedRecord{
		{Region: "Sul", Year: 2024, Month: "March", Energy: 3},
		{Region: "Brasil", Year: 2024, Month: "December", Energy: 12},
		{Region: "Brasil", Year: 2023, Month: "July", Energy: 7},
		{Region: "Brasil", Year: 2024, Month: "January", Energy: 1},
	}
	enriched, err := Enrich(records)
	if err != nil {
		t.Fatalf("enrich: %v", err)
	}
	want := []EnrichedRecord{
		{Region: "Brasil", Year: 2023, Month: 7, Season: SeasonWinter, Energy: 7},
		{Region: "Brasil", Year: 2024, Month: 1, Season: SeasonSummer, Energy: 1},
		{Region: "Brasil", Year: 2024, Month: 12, Season: SeasonSummer, Energy: 12},
		{Region: "Sul", Year: 2024, Month: 3, Season: SeasonAutumn, Energy: 3},
	}
	if len(enriched) != len(want) {
		t.Fatalf("expected %d records, got %d", len(want), len(enriched))
	}
	for i := range want {
		if enriched[i] != want[i] {
			t.Fatalf("record %d: expected %+v, got %+v", i, want[i], enriched[i])
		}
	}
}

func TestEnrichKeepsMultisetOfNormalizedTable(t *testing.T) {
	var rows []RawRow
	rows = append(rows, testBlock("Sul", 10)...)
	rows = append(rows, testBlock(AggregateLabel, 500)...)
	records, err := Normalize(RawTable{Header: testHeader(), Rows: rows}, 2022)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	enriched, err := Enrich(records)
	if err != nil {
		t.Fatalf("enrich: %v", err)
	}
	if len(enriched) != len(records) {
		t.Fatalf("expected %d records, got %d", len(records), len(enriched))
	}

	type key struct {
		region string
		year   int
		month  int
		energy float64
	}
	counts := make(map[key]int)
	for _, rec := range records {
		month, _ := MonthNumber(rec.Month)
		counts[key{rec.Region, rec.Year, month, rec.Energy}]++
	}
	for _, rec := range enriched {
		k := key{rec.Region, rec.Year, rec.Month, rec.Energy}
		counts[k]--
		if counts[k] < 0 {
			t.Fatalf("unexpected enriched record %+v", rec)
		}
		if rec.Season != SeasonForMonth(rec.Month) {
			t.Fatalf("season mismatch for %+v", rec)
		}
	}
}

func TestEnrichRejectsUnknownMonth(t *testing.T) {
	_, err := Enrich([]NormalizedRecord{{Region: "Sul", Year: 2024, Month: "Janeiro", Energy: 1}})
	if !errors.Is(err, ErrFormat) {
		t.Fatalf("expected format error, got %v", err)
	}
}
