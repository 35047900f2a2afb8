package dataprocessing

import (
	"strconv"
	"strings"

	"tradelens/pkg/contracts/domain"
)

// aggregationKey identifies one aggregation bucket. Partner matching is
// exact string equality, never fuzzy.
type aggregationKey struct {
	year    int
	partner string
}

// CleanAggregate normalizes raw records and sums export values by
// (year, partner). It returns the aggregated records in unspecified order
// (ComputeMetrics re-sorts) together with the number of rows dropped for an
// unparseable year.
//
// Dropping is silent by policy: a malformed period is a data-quality issue
// in the source file, not a reason to reject the upload.
func CleanAggregate(raw []domain.RawRecord) ([]domain.AggregatedRecord, int) {
	totals := make(map[aggregationKey]float64, len(raw))
	dropped := 0

	for _, rec := range raw {
		year, ok := extractYear(rec.Period)
		if !ok {
			dropped++
			continue
		}

		partner := strings.TrimSpace(rec.Partner)
		if partner == "" {
			partner = domain.UnknownPartner
		}

		key := aggregationKey{year: year, partner: partner}
		totals[key] += coerceValue(rec.Value)
	}

	records := make([]domain.AggregatedRecord, 0, len(totals))
	for key, value := range totals {
		records = append(records, domain.AggregatedRecord{
			Year:    key.year,
			Partner: key.partner,
			Value:   value,
		})
	}
	return records, dropped
}

// extractYear takes the first 4 characters of the period field and parses
// them as an integer. Periods like "202301" or "2023-01" both yield 2023.
func extractYear(period string) (int, bool) {
	period = strings.TrimSpace(period)
	if len(period) < 4 {
		return 0, false
	}
	year, err := strconv.Atoi(period[:4])
	if err != nil {
		return 0, false
	}
	return year, true
}

// coerceValue parses an export value that may carry thousands separators.
// Missing or unparseable values coerce to 0.
func coerceValue(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	s = strings.ReplaceAll(s, ",", "")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
