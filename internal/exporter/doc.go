// Package exporter serializes metric records for download and for pasting
// into spreadsheet tools.
//
// The growth report is a comma-delimited, UTF-8 BOM-prefixed file restricted
// to records with a defined year-over-year growth; the BOM keeps Excel from
// mangling the Chinese column headers. The clipboard format is tab-separated
// without a BOM, one row per currently-filtered record.
package exporter
