// Package services holds the application services between the HTTP transport
// and the data pipeline.
//
// DataService owns the current session dataset. The dataset is immutable;
// an upload builds a complete replacement before publishing it, so readers
// never observe partial state and derived views (trend, BCG scatter,
// clipboard export) are pure functions of the dataset plus filter
// parameters.
package services
