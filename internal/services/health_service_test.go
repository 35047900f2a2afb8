package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthCheck(t *testing.T) {
	data := NewDataService(nil)
	health := NewHealthService(nil, data, "v1.0.0")

	status := health.HealthCheck(context.Background())
	assert.Equal(t, "ok", status.Status)
	assert.Equal(t, "v1.0.0", status.Version)
	assert.False(t, status.HasDataset)

	_, err := data.Upload(context.Background(), "trade.csv", strings.NewReader(sampleCSV))
	require.NoError(t, err)

	status = health.HealthCheck(context.Background())
	assert.True(t, status.HasDataset)
}
