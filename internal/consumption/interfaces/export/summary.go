package export

import (
	"sort"

	"energy-consumption/internal/consumption/domain"
)

// AnnualTotal is the summed energy of one region over one year.
type AnnualTotal struct {
	Region string
	Year   int
	Months int
	Energy float64
}

// AnnualTotals sums energy per (Region, Year), ordered by region then year.
func AnnualTotals(records []domain.EnrichedRecord) []AnnualTotal {
	type key struct {
		region string
		year   int
	}
	index := make(map[key]int)
	totals := make([]AnnualTotal, 0)
	for _, rec := range records {
		k := key{region: rec.Region, year: rec.Year}
		i, ok := index[k]
		if !ok {
			i = len(totals)
			index[k] = i
			totals = append(totals, AnnualTotal{Region: rec.Region, Year: rec.Year})
		}
		totals[i].Months++
		totals[i].Energy += rec.Energy
	}
	sort.SliceStable(totals, func(i, j int) bool {
		if totals[i].Region != totals[j].Region {
			return totals[i].Region < totals[j].Region
		}
		return totals[i].Year < totals[j].Year
	})
	return totals
}
