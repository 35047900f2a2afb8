// Package dataprocessing implements the trade-export pipeline: parsing an
// uploaded CSV/XLSX/XLS/JSON file into raw records, cleaning and aggregating
// them by (year, partner), and deriving market-share and year-over-year
// growth metrics.
//
// The pipeline is strictly sequential. Each stage consumes the previous
// stage's complete output:
//
//	Parse -> CleanAggregate -> ComputeMetrics
//
// Cleaning is deliberately lenient: rows whose year cannot be parsed are
// dropped (and counted) rather than failing the upload, and unparseable
// export values coerce to zero. Format-level failures (unknown extension,
// malformed JSON, corrupt workbook) fail the whole run; no partial dataset is
// ever produced.
package dataprocessing
