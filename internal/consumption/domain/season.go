package domain

import (
	"fmt"
	"sort"
	"time"
)

// Seasons follow the southern hemisphere calendar.
const (
	SeasonSummer = "Summer"
	SeasonAutumn = "Autumn"
	SeasonWinter = "Winter"
	SeasonSpring = "Spring"
)

var monthNumbers = func() map[string]int {
	m := make(map[string]int, 12)
	for month := time.January; month <= time.December; month++ {
		m[month.String()] = int(month)
	}
	return m
}()

// MonthNumber maps an English month name to 1..12.
func MonthNumber(name string) (int, bool) {
	n, ok := monthNumbers[name]
	return n, ok
}

// SeasonForMonth maps a month number to its season. Out-of-range months fall into Spring.
func SeasonForMonth(month int) string {
	switch month {
	case 12, 1, 2:
		return SeasonSummer
	case 3, 4, 5:
		return SeasonAutumn
	case 6, 7, 8:
		return SeasonWinter
	default:
		return SeasonSpring
	}
}

// Enrich converts month names to numbers, adds the season and sorts by region, year and month.
func Enrich(records []NormalizedRecord) ([]EnrichedRecord, error) {
	enriched := make([]EnrichedRecord, 0, len(records))
	for i, rec := range records {
		month, ok := MonthNumber(rec.Month)
		if !ok {
			return nil, fmt.Errorf("%w: record %d: unknown month %q", ErrFormat, i, rec.Month)
		}
		enriched = append(enriched, EnrichedRecord{
			Region: rec.Region,
			Year:   rec.Year,
			Month:  month,
			Season: SeasonForMonth(month),
			Energy: rec.Energy,
		})
	}
	sort.SliceStable(enriched, func(i, j int) bool {
		a, b := enriched[i], enriched[j]
		if a.Region != b.Region {
			return a.Region < b.Region
		}
		if a.Year != b.Year {
			return a.Year < b.Year
		}
		return a.Month < b.Month
	})
	return enriched, nil
}
