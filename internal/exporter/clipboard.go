package exporter

import (
	"io"
	"strconv"

	"tradelens/pkg/contracts/domain"
)

// clipboardHeaders is the fixed header for the tab-separated clipboard
// export consumed by spreadsheet paste.
var clipboardHeaders = []string{
	"日期",
	"贸易伙伴名称",
	"出口额",
	"同比增速",
	"市场份额",
}

// WriteClipboard writes the currently-filtered records as tab-separated
// text: export value with thousands separators, growth and share as
// percentages. Records without growth render an empty growth cell; the BCG
// filter normally excludes them, but the format stays robust either way.
func WriteClipboard(w io.Writer, records []domain.MetricRecord) error {
	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		growth := ""
		if rec.HasGrowth() {
			growth = formatPercent(rec.GrowthValue(), 1)
		}
		rows = append(rows, []string{
			strconv.Itoa(rec.Year),
			rec.Partner,
			formatThousands(rec.Value),
			growth,
			formatPercent(rec.Share, 2),
		})
	}

	return Write(w, WriteOptions{
		Headers: clipboardHeaders,
		Records: rows,
		Comma:   '\t',
	})
}
