package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"tradelens/internal/dataprocessing"
	"tradelens/pkg/contracts/domain"
)

// DataService owns the current session dataset and computes derived views.
type DataService struct {
	logger    *slog.Logger
	processor *dataprocessing.Processor

	mu      sync.RWMutex
	current *domain.Dataset
}

// NewDataService creates a data service with its own pipeline processor.
func NewDataService(logger *slog.Logger) *DataService {
	if logger == nil {
		logger = slog.Default()
	}
	return &DataService{
		logger:    logger.With(slog.String("component", "data_service")),
		processor: dataprocessing.NewProcessor(logger),
	}
}

// Upload runs the pipeline over one uploaded file and, on success, replaces
// the session dataset atomically. On failure the previous dataset (or empty
// state) is left untouched.
func (s *DataService) Upload(ctx context.Context, filename string, r io.Reader) (domain.Summary, error) {
	dataset, err := s.processor.Process(ctx, filename, r)
	if err != nil {
		return domain.Summary{}, fmt.Errorf("process upload: %w", err)
	}

	s.mu.Lock()
	s.current = dataset
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "dataset replaced",
		slog.String("dataset_id", dataset.ID),
		slog.String("source", dataset.Source),
		slog.Int("records", len(dataset.Records)))

	return dataset.Summarize(), nil
}

// Dataset returns the current dataset, or ErrNoDataset before any upload.
func (s *DataService) Dataset() (*domain.Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil, ErrNoDataset
	}
	return s.current, nil
}

// Summary returns the current dataset summary.
func (s *DataService) Summary(ctx context.Context) (domain.Summary, error) {
	dataset, err := s.Dataset()
	if err != nil {
		return domain.Summary{}, err
	}
	return dataset.Summarize(), nil
}

// Records returns the full ordered metric record list.
func (s *DataService) Records(ctx context.Context) ([]domain.MetricRecord, error) {
	dataset, err := s.Dataset()
	if err != nil {
		return nil, err
	}
	return dataset.Records, nil
}

// Trend returns the per-year totals with year-over-year growth of the
// totals. The growth of the first year (or of a year following a zero
// total) is nil, mirroring the per-partner null semantics.
func (s *DataService) Trend(ctx context.Context) ([]TrendPoint, error) {
	dataset, err := s.Dataset()
	if err != nil {
		return nil, err
	}
	return ComputeTrend(dataset), nil
}

// BCG returns the share/growth scatter view for the given parameters.
func (s *DataService) BCG(ctx context.Context, params BCGParams) (*BCGView, error) {
	dataset, err := s.Dataset()
	if err != nil {
		return nil, err
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if !dataset.HasYear(params.Year) {
		return nil, fmt.Errorf("year %d: %w", params.Year, ErrYearNotFound)
	}
	return ComputeBCG(dataset, params), nil
}

// FilteredRecords returns the metric records behind the BCG view for the
// same parameters; the clipboard export serializes exactly these rows.
func (s *DataService) FilteredRecords(ctx context.Context, params BCGParams) ([]domain.MetricRecord, error) {
	view, err := s.BCG(ctx, params)
	if err != nil {
		return nil, err
	}
	records := make([]domain.MetricRecord, 0, len(view.Points))
	for _, point := range view.Points {
		records = append(records, point.MetricRecord)
	}
	return records, nil
}
