package dataprocessing

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"tradelens/pkg/contracts/domain"
)

// ErrUnsupportedFormat is returned for file extensions outside the
// recognized set (.csv, .xlsx, .xls, .json).
var ErrUnsupportedFormat = errors.New("unsupported file format")

// ParseError wraps the underlying parser failure for malformed input.
type ParseError struct {
	Format string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s input: %v", e.Format, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Column aliases accepted in header rows. Source files come from different
// export tools, some with Chinese headers and some with English ones, so the
// mapping is by normalized name rather than position.
var (
	periodAliases  = []string{"日期", "时间", "年月", "年份", "period", "date", "month", "year"}
	partnerAliases = []string{"贸易伙伴名称", "贸易伙伴", "伙伴名称", "partner_name", "partner", "country"}
	valueAliases   = []string{"出口额", "出口金额", "美元出口额", "export_value", "export", "value", "amount"}
)

// columnMap holds the resolved column index for each pipeline field.
// A value of -1 means the column is absent.
type columnMap struct {
	period  int
	partner int
	value   int
}

// Parse reads an uploaded file and produces raw records. The declared
// filename selects the format by extension; the contents are read fully
// before any record is returned, so a failed parse yields no partial output.
func Parse(r io.Reader, filename string) ([]domain.RawRecord, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".json":
		return parseJSON(r)
	case ".csv":
		return parseCSV(r)
	case ".xlsx", ".xls":
		return parseWorkbook(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(filename))
	}
}

// parseJSON decodes a JSON array of loosely-typed objects. Numbers are kept
// as json.Number so periods like 202301 survive without exponent formatting.
func parseJSON(r io.Reader) ([]domain.RawRecord, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var rows []map[string]any
	if err := dec.Decode(&rows); err != nil {
		return nil, &ParseError{Format: "json", Err: err}
	}

	records := make([]domain.RawRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, domain.RawRecord{
			Period:  stringifyField(row, periodAliases),
			Partner: stringifyField(row, partnerAliases),
			Value:   stringifyField(row, valueAliases),
		})
	}
	return records, nil
}

// stringifyField finds the best aliased key present in the object and
// normalizes its value to a string. Aliases are tried in priority order so
// objects carrying several candidate keys resolve deterministically.
func stringifyField(row map[string]any, aliases []string) string {
	for _, alias := range aliases {
		for key, val := range row {
			if strings.ToLower(strings.TrimSpace(key)) == alias {
				return stringifyValue(val)
			}
		}
	}
	for _, alias := range aliases {
		for key, val := range row {
			if strings.Contains(strings.ToLower(key), alias) {
				return stringifyValue(val)
			}
		}
	}
	return ""
}

func stringifyValue(val any) string {
	switch v := val.(type) {
	case string:
		return strings.TrimSpace(v)
	case json.Number:
		return v.String()
	case float64:
		// Only reachable when the decoder was not configured with
		// UseNumber; formatted without exponent for year extraction.
		return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%f", v), "0"), ".")
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", v)
	}
}

func parseCSV(r io.Reader) ([]domain.RawRecord, error) {
	reader := csv.NewReader(stripBOM(r))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, &ParseError{Format: "csv", Err: err}
	}
	return rowsToRecords(rows, "csv")
}

func parseWorkbook(r io.Reader) ([]domain.RawRecord, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, &ParseError{Format: "excel", Err: err}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &ParseError{Format: "excel", Err: errors.New("workbook has no sheets")}
	}

	// The pipeline reads the first sheet only; multi-sheet workbooks keep
	// their data on sheet one in every export tool seen so far.
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, &ParseError{Format: "excel", Err: err}
	}
	return rowsToRecords(rows, "excel")
}

// rowsToRecords converts header-plus-data rows into raw records. The first
// non-empty row defines the field names; rows with no content are skipped.
func rowsToRecords(rows [][]string, format string) ([]domain.RawRecord, error) {
	headerRow := -1
	for i, row := range rows {
		if !rowEmpty(row) {
			headerRow = i
			break
		}
	}
	if headerRow == -1 {
		return []domain.RawRecord{}, nil
	}

	cols := mapColumns(rows[headerRow])
	if cols.period == -1 || cols.value == -1 {
		return nil, &ParseError{
			Format: format,
			Err:    fmt.Errorf("header row missing period or export-value column: %v", rows[headerRow]),
		}
	}

	records := make([]domain.RawRecord, 0, len(rows)-headerRow-1)
	for _, row := range rows[headerRow+1:] {
		if rowEmpty(row) {
			continue
		}
		records = append(records, domain.RawRecord{
			Period:  cellAt(row, cols.period),
			Partner: cellAt(row, cols.partner),
			Value:   cellAt(row, cols.value),
		})
	}
	return records, nil
}

func mapColumns(header []string) columnMap {
	cols := columnMap{period: -1, partner: -1, value: -1}
	for i, name := range header {
		switch {
		case cols.period == -1 && matchesAlias(name, periodAliases):
			cols.period = i
		case cols.partner == -1 && matchesAlias(name, partnerAliases):
			cols.partner = i
		case cols.value == -1 && matchesAlias(name, valueAliases):
			cols.value = i
		}
	}
	return cols
}

// matchesAlias compares a header name against known aliases, exact match
// first, then substring, so "出口额(万美元)" still resolves to the value
// column.
func matchesAlias(name string, aliases []string) bool {
	normalized := strings.ToLower(strings.TrimSpace(name))
	if normalized == "" {
		return false
	}
	for _, alias := range aliases {
		if normalized == alias {
			return true
		}
	}
	for _, alias := range aliases {
		if strings.Contains(normalized, alias) {
			return true
		}
	}
	return false
}

func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func rowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// stripBOM removes a leading UTF-8 byte-order mark. Files exported by the
// download endpoint (and by Excel) carry one.
func stripBOM(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	if b, err := br.Peek(3); err == nil && b[0] == 0xEF && b[1] == 0xBB && b[2] == 0xBF {
		br.Discard(3)
	}
	return br
}
