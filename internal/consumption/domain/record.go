package domain

import "time"

const (
	// RawColumnCount is the width of a raw row: region, twelve months, total.
	RawColumnCount = 14
	// BlockSize is the number of raw rows published per region block.
	BlockSize = 11
	// KeptRowsPerBlock is the number of leading rows of a block holding yearly data.
	KeptRowsPerBlock = 6
	// RowsPerYear is the size of a year group in the retained sequence.
	RowsPerYear = 6

	// AggregateLabel is the national total label used by the publisher.
	AggregateLabel = "TOTAL BRASIL"
	// AggregateRegion replaces AggregateLabel in normalized output.
	AggregateRegion = "Brasil"
)

// Column names of the normalized and enriched tables.
const (
	ColumnRegion = "Region"
	ColumnYear   = "Year"
	ColumnMonth  = "Month"
	ColumnSeason = "Season"
	ColumnEnergy = "Energy"
	ColumnTotal  = "Total"
)

// NormalizedColumns is the column order of a normalized table.
var NormalizedColumns = []string{ColumnRegion, ColumnYear, ColumnMonth, ColumnEnergy}

// EnrichedColumns is the column order of an enriched table.
var EnrichedColumns = []string{ColumnRegion, ColumnYear, ColumnMonth, ColumnSeason, ColumnEnergy}

// RawTable is a parsed worksheet. Header holds the first row; Rows the remaining ones.
type RawTable struct {
	Header []string
	Rows   []RawRow
}

// RawRow is one worksheet row: region label, twelve month values and a total.
type RawRow []string

// NormalizedRecord is one (region, year, month) energy figure.
type NormalizedRecord struct {
	Region string
	Year   int
	Month  string
	Energy float64
}

// EnrichedRecord is a normalized record with a numeric month and its season.
type EnrichedRecord struct {
	Region string
	Year   int
	Month  int
	Season string
	Energy float64
}

// MonthNames lists English month names in calendar order.
func MonthNames() []string {
	names := make([]string, 0, 12)
	for m := time.January; m <= time.December; m++ {
		names = append(names, m.String())
	}
	return names
}

// CanonicalColumns returns the names assigned to the raw columns.
func CanonicalColumns() []string {
	cols := make([]string, 0, RawColumnCount)
	cols = append(cols, ColumnRegion)
	cols = append(cols, MonthNames()...)
	cols = append(cols, ColumnTotal)
	return cols
}
