package exporter

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradelens/pkg/contracts/domain"
)

func TestWriteClipboard(t *testing.T) {
	records := []domain.MetricRecord{
		metricRecord(2023, "Germany", 1234567.5, 0.25, growthPtr(0.1)),
	}

	var buf bytes.Buffer
	require.NoError(t, WriteClipboard(&buf, records))

	out := buf.String()
	assert.False(t, strings.HasPrefix(out, "\xEF\xBB\xBF"))

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "日期\t贸易伙伴名称\t出口额\t同比增速\t市场份额", lines[0])
	assert.Equal(t, "2023\tGermany\t1,234,567.50\t10.0%\t25.00%", lines[1])
}

func TestWriteClipboardNilGrowth(t *testing.T) {
	records := []domain.MetricRecord{
		metricRecord(2022, "France", 500, 1.0, nil),
	}

	var buf bytes.Buffer
	require.NoError(t, WriteClipboard(&buf, records))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "2022\tFrance\t500\t\t100.00%", lines[1])
}

func TestWriteClipboardEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteClipboard(&buf, nil))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	assert.Len(t, lines, 1)
}
