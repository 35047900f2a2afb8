package domain

import "time"

// Dataset is the immutable result of one pipeline run over one uploaded file.
// A new upload produces a fresh Dataset that fully replaces the previous one;
// nothing mutates a Dataset after the pipeline publishes it, so derived views
// may be recomputed from it concurrently without coordination.
type Dataset struct {
	ID         string         `json:"id"`
	Source     string         `json:"source"`
	UploadedAt time.Time      `json:"uploaded_at"`
	Records    []MetricRecord `json:"records"`

	// Years lists the distinct years present, ascending.
	Years []int `json:"years"`

	// RawCount is the number of rows the parser produced; DroppedRows is how
	// many of them were discarded for an unparseable year. Dropping is the
	// lenient-cleaning policy, not an error, but the count is kept so the UI
	// can surface data-quality information.
	RawCount    int `json:"raw_count"`
	DroppedRows int `json:"dropped_rows"`
}

// Summary is the lightweight description of a Dataset returned after an
// upload and by the summary endpoint.
type Summary struct {
	ID          string    `json:"id"`
	Source      string    `json:"source"`
	UploadedAt  time.Time `json:"uploaded_at"`
	Years       []int     `json:"years"`
	RecordCount int       `json:"record_count"`
	RawCount    int       `json:"raw_count"`
	DroppedRows int       `json:"dropped_rows"`
}

// Summarize builds the Summary for a dataset.
func (d *Dataset) Summarize() Summary {
	return Summary{
		ID:          d.ID,
		Source:      d.Source,
		UploadedAt:  d.UploadedAt,
		Years:       d.Years,
		RecordCount: len(d.Records),
		RawCount:    d.RawCount,
		DroppedRows: d.DroppedRows,
	}
}

// HasYear reports whether the dataset contains any record for the given year.
func (d *Dataset) HasYear(year int) bool {
	for _, y := range d.Years {
		if y == year {
			return true
		}
	}
	return false
}
