package services

import (
	"context"
	"log/slog"
	"time"
)

// HealthService reports liveness and basic runtime information.
type HealthService struct {
	logger    *slog.Logger
	data      *DataService
	startedAt time.Time
	version   string
}

// HealthStatus is the health endpoint response body.
type HealthStatus struct {
	Status     string    `json:"status"`
	Version    string    `json:"version"`
	Timestamp  time.Time `json:"timestamp"`
	Uptime     string    `json:"uptime"`
	HasDataset bool      `json:"has_dataset"`
}

// NewHealthService creates a health service.
func NewHealthService(logger *slog.Logger, data *DataService, version string) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthService{
		logger:    logger.With(slog.String("component", "health_service")),
		data:      data,
		startedAt: time.Now(),
		version:   version,
	}
}

// HealthCheck returns the current health status. The service holds no
// external dependencies, so liveness is the only meaningful signal; the
// dataset flag is informational.
func (s *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	_, err := s.data.Dataset()
	return HealthStatus{
		Status:     "ok",
		Version:    s.version,
		Timestamp:  time.Now().UTC(),
		Uptime:     time.Since(s.startedAt).Round(time.Second).String(),
		HasDataset: err == nil,
	}
}
