package domain

// UnknownPartner is substituted when an input row carries no partner name.
const UnknownPartner = "unknown"

// RawRecord is one row of an uploaded trade-export file after the loose input
// has been normalized to strings at the parse boundary. Period and Value keep
// whatever the file contained (numbers are formatted without exponent
// notation); cleaning happens in the aggregator, not here.
type RawRecord struct {
	Period  string `json:"period"`
	Partner string `json:"partner"`
	Value   string `json:"value"`
}

// AggregatedRecord is the sum of all raw records sharing the same
// (year, partner) key after numeric coercion.
type AggregatedRecord struct {
	Year    int     `json:"year"`
	Partner string  `json:"partner"`
	Value   float64 `json:"value"`
}

// MetricRecord extends an AggregatedRecord with derived ratios.
//
// Share is the record's fraction of its year's global total. Growth is the
// year-over-year fractional change against the same partner's prior-year
// value; it is nil when no prior-year record exists or that record's value is
// zero. nil is distinct from zero growth. PrevValue carries the prior-year
// value the growth computation used (0 when Growth is nil).
type MetricRecord struct {
	AggregatedRecord
	Share     float64  `json:"share"`
	Growth    *float64 `json:"growth"`
	PrevValue float64  `json:"prev_value"`
}

// HasGrowth reports whether the record has a valid prior-year baseline.
func (r MetricRecord) HasGrowth() bool {
	return r.Growth != nil
}

// GrowthValue returns the growth fraction, or 0 when Growth is nil.
// Callers that must distinguish nil from zero should check HasGrowth first.
func (r MetricRecord) GrowthValue() float64 {
	if r.Growth == nil {
		return 0
	}
	return *r.Growth
}
