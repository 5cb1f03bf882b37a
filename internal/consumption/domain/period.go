package domain

import (
	"fmt"
	"time"
)

const datasetPrefix = "energy_consumption"

// Period identifies a monthly publication.
type Period struct {
	Month int
	Year  int
}

// NewPeriod validates and constructs a Period.
func NewPeriod(month, year int) (Period, error) {
	p := Period{Month: month, Year: year}
	if err := p.Validate(); err != nil {
		return Period{}, err
	}
	return p, nil
}

// PeriodOf returns the period containing t.
func PeriodOf(t time.Time) Period {
	return Period{Month: int(t.Month()), Year: t.Year()}
}

// Validate checks month and year ranges.
func (p Period) Validate() error {
	if p.Month < 1 || p.Month > 12 {
		return fmt.Errorf("%w: month %d", ErrInvalidPeriod, p.Month)
	}
	if p.Year <= 0 {
		return fmt.Errorf("%w: year %d", ErrInvalidPeriod, p.Year)
	}
	return nil
}

// Next returns the following month.
func (p Period) Next() Period {
	if p.Month == 12 {
		return Period{Month: 1, Year: p.Year + 1}
	}
	return Period{Month: p.Month + 1, Year: p.Year}
}

// Prev returns the preceding month.
func (p Period) Prev() Period {
	if p.Month == 1 {
		return Period{Month: 12, Year: p.Year - 1}
	}
	return Period{Month: p.Month - 1, Year: p.Year}
}

// String formats the period as <month>-<year>.
func (p Period) String() string {
	return fmt.Sprintf("%d-%d", p.Month, p.Year)
}

// DatasetName is the file name of the normalized table for the period.
func DatasetName(p Period) string {
	return fmt.Sprintf("%s-%s.csv", datasetPrefix, p)
}

// ProcessedName is the base name (without extension) of the enriched outputs for the period.
func ProcessedName(p Period) string {
	return fmt.Sprintf("%s_processed-%s", datasetPrefix, p)
}
