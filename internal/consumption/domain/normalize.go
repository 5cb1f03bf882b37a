package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Normalizer turns the block-structured publisher worksheet into long-format records.
type Normalizer struct {
	aggregateLabels map[string]struct{}
	aggregateRegion string
}

// NormalizerOption configures a Normalizer.
type NormalizerOption func(*Normalizer)

// WithAggregateLabels adds labels that identify the national aggregate row.
func WithAggregateLabels(labels ...string) NormalizerOption {
	return func(n *Normalizer) {
		for _, label := range labels {
			label = strings.TrimSpace(label)
			if label != "" {
				n.aggregateLabels[label] = struct{}{}
			}
		}
	}
}

// WithAggregateRegion overrides the identifier written for the aggregate row.
func WithAggregateRegion(region string) NormalizerOption {
	return func(n *Normalizer) {
		if region != "" {
			n.aggregateRegion = region
		}
	}
}

// NewNormalizer constructs a Normalizer recognising AggregateLabel.
func NewNormalizer(opts ...NormalizerOption) *Normalizer {
	n := &Normalizer{
		aggregateLabels: map[string]struct{}{AggregateLabel: {}},
		aggregateRegion: AggregateRegion,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

var defaultNormalizer = NewNormalizer()

// Normalize runs the default Normalizer.
func Normalize(table RawTable, referenceYear int) ([]NormalizedRecord, error) {
	return defaultNormalizer.Normalize(table, referenceYear)
}

type keptRow struct {
	region string
	year   int
	energy [12]float64
}

// Normalize validates the header, drops incomplete rows, keeps the first six rows of every
// eleven-row block, assigns years counting back from referenceYear and melts the month columns.
// Records are emitted month-major: every kept row for January, then February, and so on.
func (n *Normalizer) Normalize(table RawTable, referenceYear int) ([]NormalizedRecord, error) {
	if referenceYear <= 0 {
		return nil, fmt.Errorf("%w: reference year %d", ErrInvalidPeriod, referenceYear)
	}
	if len(table.Header) != RawColumnCount {
		return nil, fmt.Errorf("%w: expected %d columns, got %d", ErrFormat, RawColumnCount, len(table.Header))
	}

	complete, err := completeRows(table.Rows)
	if err != nil {
		return nil, err
	}

	retained := RetainedRowIndexes(len(complete))
	kept := make([]keptRow, 0, len(retained))
	for globalIndex, rowIndex := range retained {
		row := complete[rowIndex]
		k := keptRow{
			region: n.region(row.cells[0]),
			year:   YearForIndex(referenceYear, globalIndex),
		}
		for m := 0; m < 12; m++ {
			value, err := parseEnergy(row.cells[m+1])
			if err != nil {
				return nil, fmt.Errorf("%w: row %d column %s: %v", ErrFormat, row.source+1, MonthNames()[m], err)
			}
			k.energy[m] = value
		}
		kept = append(kept, k)
	}

	months := MonthNames()
	records := make([]NormalizedRecord, 0, len(kept)*len(months))
	for m, month := range months {
		for _, k := range kept {
			records = append(records, NormalizedRecord{
				Region: k.region,
				Year:   k.year,
				Month:  month,
				Energy: k.energy[m],
			})
		}
	}
	return records, nil
}

func (n *Normalizer) region(label string) string {
	if _, ok := n.aggregateLabels[strings.TrimSpace(label)]; ok {
		return n.aggregateRegion
	}
	return label
}

// RetainedRowIndexes returns the positions kept when rowCount rows are sliced into blocks of
// BlockSize and only the first KeptRowsPerBlock rows of each block survive. A trailing partial
// block keeps whatever part of its first KeptRowsPerBlock rows exists.
func RetainedRowIndexes(rowCount int) []int {
	if rowCount <= 0 {
		return nil
	}
	indexes := make([]int, 0, (rowCount/BlockSize+1)*KeptRowsPerBlock)
	for start := 0; start < rowCount; start += BlockSize {
		end := start + KeptRowsPerBlock
		if end > rowCount {
			end = rowCount
		}
		for i := start; i < end; i++ {
			indexes = append(indexes, i)
		}
	}
	return indexes
}

// YearForIndex returns the year of the retained row at globalIndex.
func YearForIndex(referenceYear, globalIndex int) int {
	return referenceYear - globalIndex/RowsPerYear
}

type completeRow struct {
	source int
	cells  RawRow
}

// completeRows drops rows with a missing cell. Cells beyond the header width must be empty.
func completeRows(rows []RawRow) ([]completeRow, error) {
	result := make([]completeRow, 0, len(rows))
	for i, row := range rows {
		for j := RawColumnCount; j < len(row); j++ {
			if strings.TrimSpace(row[j]) != "" {
				return nil, fmt.Errorf("%w: row %d has %d columns", ErrFormat, i+1, len(row))
			}
		}
		if len(row) < RawColumnCount {
			continue
		}
		missing := false
		for j := 0; j < RawColumnCount; j++ {
			if strings.TrimSpace(row[j]) == "" {
				missing = true
				break
			}
		}
		if missing {
			continue
		}
		result = append(result, completeRow{source: i, cells: row[:RawColumnCount]})
	}
	return result, nil
}

func parseEnergy(cell string) (float64, error) {
	value, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", cell)
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, fmt.Errorf("not a finite number: %q", cell)
	}
	return value, nil
}
