package dataprocessing

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"tradelens/pkg/contracts/domain"
)

const meterName = "tradelens"

// Processor runs the full pipeline for one uploaded file and produces an
// immutable Dataset.
type Processor struct {
	logger *slog.Logger

	rowsProcessed metric.Int64Counter
	rowsDropped   metric.Int64Counter
}

// NewProcessor creates a pipeline processor. Counter registration failures
// fall back to no-op instruments, so observability never blocks processing.
func NewProcessor(logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}

	meter := otel.Meter(meterName)
	rowsProcessed, _ := meter.Int64Counter("pipeline.rows_processed",
		metric.WithDescription("Raw rows parsed from uploaded files"))
	rowsDropped, _ := meter.Int64Counter("pipeline.rows_dropped",
		metric.WithDescription("Rows dropped for an unparseable year"))

	return &Processor{
		logger:        logger.With(slog.String("component", "processor")),
		rowsProcessed: rowsProcessed,
		rowsDropped:   rowsDropped,
	}
}

// Process parses the file, aggregates it, computes metrics, and wraps the
// result in a Dataset. On any parse failure it returns a nil dataset; the
// caller keeps whatever dataset it had before.
func (p *Processor) Process(ctx context.Context, filename string, r io.Reader) (*domain.Dataset, error) {
	start := time.Now()

	raw, err := Parse(r, filename)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filename, err)
	}

	aggregated, dropped := CleanAggregate(raw)
	records := ComputeMetrics(aggregated)

	if p.rowsProcessed != nil {
		p.rowsProcessed.Add(ctx, int64(len(raw)))
	}
	if dropped > 0 {
		if p.rowsDropped != nil {
			p.rowsDropped.Add(ctx, int64(dropped))
		}
		// Lenient cleaning: logged for visibility, never surfaced as an error.
		p.logger.WarnContext(ctx, "dropped rows with unparseable year",
			slog.String("source", filename),
			slog.Int("dropped", dropped))
	}

	dataset := &domain.Dataset{
		ID:          uuid.New().String(),
		Source:      filename,
		UploadedAt:  time.Now().UTC(),
		Records:     records,
		Years:       DistinctYears(records),
		RawCount:    len(raw),
		DroppedRows: dropped,
	}

	p.logger.InfoContext(ctx, "pipeline run complete",
		slog.String("dataset_id", dataset.ID),
		slog.String("source", filename),
		slog.Int("raw_rows", len(raw)),
		slog.Int("aggregated", len(records)),
		slog.Int("dropped", dropped),
		slog.Duration("duration", time.Since(start)))

	return dataset, nil
}
