package exporter

import (
	"io"
	"strconv"

	"tradelens/pkg/contracts/domain"
)

// growthReportHeaders is the fixed column contract for the download file:
// raw fractions next to their percentage-formatted strings so the file works
// both for re-import and for direct reading.
var growthReportHeaders = []string{
	"年份",
	"贸易伙伴名称",
	"出口额",
	"同比增速",
	"同比增速(%)",
	"市场份额",
	"市场份额(%)",
}

// WriteGrowthReport writes the downloadable growth report: UTF-8 with BOM,
// comma-delimited, restricted to records with a defined year-over-year
// growth. Growth percentages use one decimal place, share percentages two.
func WriteGrowthReport(w io.Writer, records []domain.MetricRecord) error {
	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		if !rec.HasGrowth() {
			continue
		}
		rows = append(rows, []string{
			strconv.Itoa(rec.Year),
			rec.Partner,
			formatRaw(rec.Value),
			formatRaw(rec.GrowthValue()),
			formatPercent(rec.GrowthValue(), 1),
			formatRaw(rec.Share),
			formatPercent(rec.Share, 2),
		})
	}

	return Write(w, WriteOptions{
		Headers:   growthReportHeaders,
		Records:   rows,
		BOMPrefix: true,
	})
}

// WriteGrowthReportFile writes the growth report to a file path (batch CLI).
func WriteGrowthReportFile(path string, records []domain.MetricRecord) error {
	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		if !rec.HasGrowth() {
			continue
		}
		rows = append(rows, []string{
			strconv.Itoa(rec.Year),
			rec.Partner,
			formatRaw(rec.Value),
			formatRaw(rec.GrowthValue()),
			formatPercent(rec.GrowthValue(), 1),
			formatRaw(rec.Share),
			formatPercent(rec.Share, 2),
		})
	}

	return WriteFile(path, WriteOptions{
		Headers:   growthReportHeaders,
		Records:   rows,
		BOMPrefix: true,
	})
}
