// Package tablecodec reads and writes normalized and enriched series as CSV tables.
package tablecodec

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"energy-consumption/internal/consumption/domain"
)

// EncodeNormalized writes records with columns Region,Year,Month,Energy.
func EncodeNormalized(w io.Writer, records []domain.NormalizedRecord) error {
	regions := make([]string, len(records))
	years := make([]int, len(records))
	months := make([]string, len(records))
	energy := make([]string, len(records))
	for i, rec := range records {
		regions[i] = rec.Region
		years[i] = rec.Year
		months[i] = rec.Month
		energy[i] = formatEnergy(rec.Energy)
	}
	df := dataframe.New(
		series.New(regions, series.String, domain.ColumnRegion),
		series.New(years, series.Int, domain.ColumnYear),
		series.New(months, series.String, domain.ColumnMonth),
		series.New(energy, series.String, domain.ColumnEnergy),
	)
	return writeFrame(w, df)
}

// EncodeEnriched writes records with columns Region,Year,Month,Season,Energy.
func EncodeEnriched(w io.Writer, records []domain.EnrichedRecord) error {
	regions := make([]string, len(records))
	years := make([]int, len(records))
	months := make([]int, len(records))
	seasons := make([]string, len(records))
	energy := make([]string, len(records))
	for i, rec := range records {
		regions[i] = rec.Region
		years[i] = rec.Year
		months[i] = rec.Month
		seasons[i] = rec.Season
		energy[i] = formatEnergy(rec.Energy)
	}
	df := dataframe.New(
		series.New(regions, series.String, domain.ColumnRegion),
		series.New(years, series.Int, domain.ColumnYear),
		series.New(months, series.Int, domain.ColumnMonth),
		series.New(seasons, series.String, domain.ColumnSeason),
		series.New(energy, series.String, domain.ColumnEnergy),
	)
	return writeFrame(w, df)
}

// MarshalNormalized encodes records into a byte slice.
func MarshalNormalized(records []domain.NormalizedRecord) ([]byte, error) {
	var buf bytes.Buffer
	if err := EncodeNormalized(&buf, records); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// MarshalEnriched encodes records into a byte slice.
func MarshalEnriched(records []domain.EnrichedRecord) ([]byte, error) {
	var buf bytes.Buffer
	if err := EncodeEnriched(&buf, records); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeNormalized parses a table written by EncodeNormalized. The header must list exactly
// the normalized columns in order; any cell that does not fit its column type is a format error.
func DecodeNormalized(r io.Reader) ([]domain.NormalizedRecord, error) {
	df, empty, err := readFrame(r, domain.NormalizedColumns, map[string]series.Type{
		domain.ColumnRegion: series.String,
		domain.ColumnYear:   series.Int,
		domain.ColumnMonth:  series.String,
		domain.ColumnEnergy: series.Float,
	})
	if err != nil {
		return nil, err
	}
	if empty {
		return []domain.NormalizedRecord{}, nil
	}

	regions := df.Col(domain.ColumnRegion).Records()
	months := df.Col(domain.ColumnMonth).Records()
	years, err := df.Col(domain.ColumnYear).Int()
	if err != nil {
		return nil, fmt.Errorf("%w: column %s: %v", domain.ErrFormat, domain.ColumnYear, err)
	}
	energy, err := floats(df.Col(domain.ColumnEnergy))
	if err != nil {
		return nil, err
	}

	records := make([]domain.NormalizedRecord, df.Nrow())
	for i := range records {
		records[i] = domain.NormalizedRecord{
			Region: regions[i],
			Year:   years[i],
			Month:  months[i],
			Energy: energy[i],
		}
	}
	return records, nil
}

// DecodeEnriched parses a table written by EncodeEnriched.
func DecodeEnriched(r io.Reader) ([]domain.EnrichedRecord, error) {
	df, empty, err := readFrame(r, domain.EnrichedColumns, map[string]series.Type{
		domain.ColumnRegion: series.String,
		domain.ColumnYear:   series.Int,
		domain.ColumnMonth:  series.Int,
		domain.ColumnSeason: series.String,
		domain.ColumnEnergy: series.Float,
	})
	if err != nil {
		return nil, err
	}
	if empty {
		return []domain.EnrichedRecord{}, nil
	}

	regions := df.Col(domain.ColumnRegion).Records()
	seasons := df.Col(domain.ColumnSeason).Records()
	years, err := df.Col(domain.ColumnYear).Int()
	if err != nil {
		return nil, fmt.Errorf("%w: column %s: %v", domain.ErrFormat, domain.ColumnYear, err)
	}
	months, err := df.Col(domain.ColumnMonth).Int()
	if err != nil {
		return nil, fmt.Errorf("%w: column %s: %v", domain.ErrFormat, domain.ColumnMonth, err)
	}
	energy, err := floats(df.Col(domain.ColumnEnergy))
	if err != nil {
		return nil, err
	}

	records := make([]domain.EnrichedRecord, df.Nrow())
	for i := range records {
		records[i] = domain.EnrichedRecord{
			Region: regions[i],
			Year:   years[i],
			Month:  months[i],
			Season: seasons[i],
			Energy: energy[i],
		}
	}
	return records, nil
}

func writeFrame(w io.Writer, df dataframe.DataFrame) error {
	if df.Err != nil {
		return df.Err
	}
	return df.WriteCSV(w)
}

// readFrame loads the CSV into a typed frame. A header-only table is reported as empty.
func readFrame(r io.Reader, columns []string, types map[string]series.Type) (dataframe.DataFrame, bool, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return dataframe.DataFrame{}, false, err
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	header, rest := splitHeader(data)
	if header == "" {
		return dataframe.DataFrame{}, false, fmt.Errorf("%w: missing header", domain.ErrFormat)
	}
	if err := checkColumns(strings.Split(header, ","), columns); err != nil {
		return dataframe.DataFrame{}, false, err
	}
	if len(bytes.TrimSpace(rest)) == 0 {
		return dataframe.DataFrame{}, true, nil
	}

	// Region labels such as "NA" are data, not missing values.
	df := dataframe.ReadCSV(bytes.NewReader(data), dataframe.WithTypes(types), dataframe.NaNValues(nil))
	if df.Err != nil {
		return dataframe.DataFrame{}, false, fmt.Errorf("%w: %v", domain.ErrFormat, df.Err)
	}
	if err := checkColumns(df.Names(), columns); err != nil {
		return dataframe.DataFrame{}, false, err
	}
	return df, false, nil
}

func splitHeader(data []byte) (string, []byte) {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	if !scanner.Scan() {
		return "", nil
	}
	line := scanner.Text()
	rest := data[min(len(line)+1, len(data)):]
	return strings.TrimSpace(line), rest
}

func checkColumns(got, want []string) error {
	if len(got) != len(want) {
		return fmt.Errorf("%w: expected columns %v, got %v", domain.ErrFormat, want, got)
	}
	for i := range want {
		if strings.TrimSpace(got[i]) != want[i] {
			return fmt.Errorf("%w: expected columns %v, got %v", domain.ErrFormat, want, got)
		}
	}
	return nil
}

func floats(s series.Series) ([]float64, error) {
	values := s.Float()
	for i, v := range values {
		if math.IsNaN(v) {
			return nil, fmt.Errorf("%w: column %s row %d: not a number", domain.ErrFormat, s.Name, i+1)
		}
	}
	return values, nil
}

func formatEnergy(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
