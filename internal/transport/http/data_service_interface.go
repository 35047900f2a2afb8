package http

import (
	"context"
	"io"

	"tradelens/internal/services"
	"tradelens/pkg/contracts/domain"
)

// DataServiceInterface is what the data handler needs from the service
// layer; tests substitute a mock.
type DataServiceInterface interface {
	Upload(ctx context.Context, filename string, r io.Reader) (domain.Summary, error)
	Summary(ctx context.Context) (domain.Summary, error)
	Records(ctx context.Context) ([]domain.MetricRecord, error)
	Trend(ctx context.Context) ([]services.TrendPoint, error)
	BCG(ctx context.Context, params services.BCGParams) (*services.BCGView, error)
	FilteredRecords(ctx context.Context, params services.BCGParams) ([]domain.MetricRecord, error)
}

// RefreshNotifier receives dataset-replacement notifications; the websocket
// hub implements it.
type RefreshNotifier interface {
	BroadcastDatasetRefreshed(summary domain.Summary)
}
