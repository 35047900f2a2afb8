package dataprocessing

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessorProcess(t *testing.T) {
	input := "period,partner,value\n" +
		"202301,A,\"1,000\"\n" +
		"202301,B,500\n" +
		"202201,A,800\n" +
		"invalid,C,999\n"

	p := NewProcessor(nil)
	dataset, err := p.Process(context.Background(), "trade.csv", strings.NewReader(input))
	require.NoError(t, err)
	require.NotNil(t, dataset)

	assert.NotEmpty(t, dataset.ID)
	assert.Equal(t, "trade.csv", dataset.Source)
	assert.False(t, dataset.UploadedAt.IsZero())
	assert.Equal(t, 4, dataset.RawCount)
	assert.Equal(t, 1, dataset.DroppedRows)
	assert.Equal(t, []int{2022, 2023}, dataset.Years)
	require.Len(t, dataset.Records, 3)

	// First record of the latest year carries the largest value.
	last := dataset.Records[len(dataset.Records)-2]
	assert.Equal(t, 2023, last.Year)
	assert.Equal(t, "A", last.Partner)
	assert.Equal(t, 1000.0, last.Value)
}

func TestProcessorProcessParseFailure(t *testing.T) {
	p := NewProcessor(nil)
	dataset, err := p.Process(context.Background(), "trade.pdf", strings.NewReader("x"))

	assert.Nil(t, dataset)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestProcessorProcessEmptyFile(t *testing.T) {
	p := NewProcessor(nil)
	dataset, err := p.Process(context.Background(), "trade.csv", strings.NewReader(""))

	require.NoError(t, err)
	require.NotNil(t, dataset)
	assert.Zero(t, dataset.RawCount)
	assert.Empty(t, dataset.Records)
	assert.Empty(t, dataset.Years)
}

func TestProcessorDatasetIDsUnique(t *testing.T) {
	input := "period,partner,value\n202301,A,100\n"

	p := NewProcessor(nil)
	first, err := p.Process(context.Background(), "a.csv", strings.NewReader(input))
	require.NoError(t, err)
	second, err := p.Process(context.Background(), "b.csv", strings.NewReader(input))
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
}
