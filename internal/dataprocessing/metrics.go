package dataprocessing

import (
	"math"
	"sort"

	"tradelens/pkg/contracts/domain"
)

// ComputeMetrics derives market share and year-over-year growth for each
// aggregated record and returns the result ordered ascending by year, then
// descending by export value within each year.
//
// Share uses the year's global total across all partners. A zero total is
// floored to 1, which yields a stable 0 share instead of NaN for the
// degenerate all-zero year; the distortion is a documented limitation.
//
// Growth is defined only when the same partner has a record for year-1 with
// nonzero value. The prior-year lookup goes through a map keyed by
// (year, partner) built once per run, so the whole pass is linear.
func ComputeMetrics(aggregated []domain.AggregatedRecord) []domain.MetricRecord {
	yearTotals := make(map[int]float64)
	byKey := make(map[aggregationKey]float64, len(aggregated))
	for _, rec := range aggregated {
		yearTotals[rec.Year] += rec.Value
		byKey[aggregationKey{year: rec.Year, partner: rec.Partner}] = rec.Value
	}

	records := make([]domain.MetricRecord, 0, len(aggregated))
	for _, rec := range aggregated {
		total := yearTotals[rec.Year]
		if total == 0 {
			total = 1
		}

		metric := domain.MetricRecord{
			AggregatedRecord: rec,
			Share:            rec.Value / total,
		}

		prev, ok := byKey[aggregationKey{year: rec.Year - 1, partner: rec.Partner}]
		if ok && prev != 0 {
			growth := (rec.Value - prev) / math.Abs(prev)
			metric.Growth = &growth
			metric.PrevValue = prev
		}

		records = append(records, metric)
	}

	sort.SliceStable(records, func(i, j int) bool {
		if records[i].Year != records[j].Year {
			return records[i].Year < records[j].Year
		}
		if records[i].Value != records[j].Value {
			return records[i].Value > records[j].Value
		}
		return records[i].Partner < records[j].Partner
	})
	return records
}

// DistinctYears returns the sorted distinct years present in the records.
func DistinctYears(records []domain.MetricRecord) []int {
	seen := make(map[int]struct{})
	years := make([]int, 0)
	for _, rec := range records {
		if _, ok := seen[rec.Year]; !ok {
			seen[rec.Year] = struct{}{}
			years = append(years, rec.Year)
		}
	}
	sort.Ints(years)
	return years
}
