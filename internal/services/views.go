package services

import (
	"errors"
	"math"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	apierrors "tradelens/internal/errors"
	"tradelens/pkg/contracts/domain"
)

const (
	// maxScatterPoints caps the BCG view to the largest exporters so the
	// chart stays readable.
	maxScatterPoints = 35
	// maxLabeledPoints is how many of those carry a display label.
	maxLabeledPoints = 20
)

// Quadrant names for the BCG classification.
const (
	QuadrantStar         = "star"
	QuadrantCashCow      = "cash_cow"
	QuadrantQuestionMark = "question_mark"
	QuadrantDog          = "dog"
)

var validate = validator.New()

// TrendPoint is one year on the trend line: the global export total and its
// growth against the previous year's total.
type TrendPoint struct {
	Year     int      `json:"year"`
	Total    float64  `json:"total"`
	Partners int      `json:"partners"`
	Growth   *float64 `json:"growth"`
}

// BCGParams are the scatter-view filter parameters. Growth bounds clip the
// plotted value only; the underlying data is never altered.
type BCGParams struct {
	Year        int     `json:"year" validate:"required"`
	GrowthMin   float64 `json:"growth_min"`
	GrowthMax   float64 `json:"growth_max" validate:"gtefield=GrowthMin"`
	ShareMinPct float64 `json:"share_min_pct" validate:"gte=0,lte=100"`
	ShareMaxPct float64 `json:"share_max_pct" validate:"gte=0,lte=100,gtefield=ShareMinPct"`
	// Keywords is a comma-separated OR filter matched as substrings
	// against partner names.
	Keywords string `json:"keywords"`
}

// DefaultBCGParams returns the UI defaults for a year.
func DefaultBCGParams(year int) BCGParams {
	return BCGParams{
		Year:        year,
		GrowthMin:   -1.0,
		GrowthMax:   3.0,
		ShareMinPct: 0,
		ShareMaxPct: 100,
	}
}

// Validate checks the parameter ranges and returns a field-level API error
// on failure.
func (p BCGParams) Validate() error {
	err := validate.Struct(p)
	if err == nil {
		return nil
	}

	var invalid validator.ValidationErrors
	fields := []apierrors.ValidationError{}
	if errors.As(err, &invalid) {
		for _, fe := range invalid {
			fields = append(fields, apierrors.ValidationError{
				Field:   strings.ToLower(fe.Field()),
				Message: "failed validation rule: " + fe.Tag(),
			})
		}
	}
	return apierrors.NewValidationErrors(fields)
}

// BCGPoint is one plotted partner: the record plus presentation fields.
type BCGPoint struct {
	domain.MetricRecord
	// PlottedGrowth is the growth value clamped into the configured bounds.
	PlottedGrowth float64 `json:"plotted_growth"`
	Labeled       bool    `json:"labeled"`
	Quadrant      string  `json:"quadrant"`
}

// BCGView is the filtered scatter view for one year.
type BCGView struct {
	Year         int        `json:"year"`
	Params       BCGParams  `json:"params"`
	Points       []BCGPoint `json:"points"`
	TotalMatched int        `json:"total_matched"`
	MedianShare  float64    `json:"median_share"`
}

// ComputeTrend derives per-year totals from the dataset. Pure function of
// the dataset.
func ComputeTrend(dataset *domain.Dataset) []TrendPoint {
	totals := make(map[int]float64)
	partners := make(map[int]int)
	for _, rec := range dataset.Records {
		totals[rec.Year] += rec.Value
		partners[rec.Year]++
	}

	points := make([]TrendPoint, 0, len(dataset.Years))
	for _, year := range dataset.Years {
		point := TrendPoint{
			Year:     year,
			Total:    totals[year],
			Partners: partners[year],
		}
		if prev, ok := totals[year-1]; ok && prev != 0 {
			growth := (point.Total - prev) / math.Abs(prev)
			point.Growth = &growth
		}
		points = append(points, point)
	}
	return points
}

// ComputeBCG derives the scatter view: records of the selected year with a
// defined growth, after keyword and share-range filters, ordered by export
// value descending and capped at the top records. Pure function of
// (dataset, params).
func ComputeBCG(dataset *domain.Dataset, params BCGParams) *BCGView {
	keywords := splitKeywords(params.Keywords)

	matched := make([]domain.MetricRecord, 0)
	for _, rec := range dataset.Records {
		if rec.Year != params.Year || !rec.HasGrowth() {
			continue
		}
		sharePct := rec.Share * 100
		if sharePct < params.ShareMinPct || sharePct > params.ShareMaxPct {
			continue
		}
		if !matchesKeywords(rec.Partner, keywords) {
			continue
		}
		matched = append(matched, rec)
	}

	// Records arrive ordered by value within year already, but the filter
	// view must not depend on dataset ordering.
	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].Value != matched[j].Value {
			return matched[i].Value > matched[j].Value
		}
		return matched[i].Partner < matched[j].Partner
	})

	total := len(matched)
	if len(matched) > maxScatterPoints {
		matched = matched[:maxScatterPoints]
	}

	median := medianShare(matched)
	points := make([]BCGPoint, 0, len(matched))
	for i, rec := range matched {
		points = append(points, BCGPoint{
			MetricRecord:  rec,
			PlottedGrowth: clamp(rec.GrowthValue(), params.GrowthMin, params.GrowthMax),
			Labeled:       i < maxLabeledPoints,
			Quadrant:      classifyQuadrant(rec, median),
		})
	}

	return &BCGView{
		Year:         params.Year,
		Params:       params,
		Points:       points,
		TotalMatched: total,
		MedianShare:  median,
	}
}

// classifyQuadrant places a record against the plotted set's median share
// and zero growth.
func classifyQuadrant(rec domain.MetricRecord, medianShare float64) string {
	highShare := rec.Share >= medianShare
	growing := rec.GrowthValue() >= 0
	switch {
	case highShare && growing:
		return QuadrantStar
	case highShare:
		return QuadrantCashCow
	case growing:
		return QuadrantQuestionMark
	default:
		return QuadrantDog
	}
}

func medianShare(records []domain.MetricRecord) float64 {
	if len(records) == 0 {
		return 0
	}
	shares := make([]float64, len(records))
	for i, rec := range records {
		shares[i] = rec.Share
	}
	sort.Float64s(shares)
	mid := len(shares) / 2
	if len(shares)%2 == 1 {
		return shares[mid]
	}
	return (shares[mid-1] + shares[mid]) / 2
}

// splitKeywords splits the free-text filter on ASCII and fullwidth commas.
func splitKeywords(raw string) []string {
	parts := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == '，'
	})
	keywords := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			keywords = append(keywords, strings.ToLower(trimmed))
		}
	}
	return keywords
}

// matchesKeywords is an OR substring match; no keywords matches everything.
func matchesKeywords(partner string, keywords []string) bool {
	if len(keywords) == 0 {
		return true
	}
	lowered := strings.ToLower(partner)
	for _, kw := range keywords {
		if strings.Contains(lowered, kw) {
			return true
		}
	}
	return false
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
