package services

import "errors"

// Sentinel errors surfaced by services; the HTTP layer maps them onto the
// API error taxonomy.
var (
	// ErrNoDataset is returned when a view is requested before any upload.
	ErrNoDataset = errors.New("no dataset uploaded")

	// ErrYearNotFound is returned when the requested year has no records.
	ErrYearNotFound = errors.New("year not present in dataset")
)
