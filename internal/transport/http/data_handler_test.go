package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradelens/internal/dataprocessing"
	apierrors "tradelens/internal/errors"
	"tradelens/internal/services"
	"tradelens/pkg/contracts/domain"
)

// stubDataService implements DataServiceInterface with function fields so
// each test overrides only what it needs.
type stubDataService struct {
	uploadFunc          func(ctx context.Context, filename string, r io.Reader) (domain.Summary, error)
	summaryFunc         func(ctx context.Context) (domain.Summary, error)
	recordsFunc         func(ctx context.Context) ([]domain.MetricRecord, error)
	trendFunc           func(ctx context.Context) ([]services.TrendPoint, error)
	bcgFunc             func(ctx context.Context, params services.BCGParams) (*services.BCGView, error)
	filteredRecordsFunc func(ctx context.Context, params services.BCGParams) ([]domain.MetricRecord, error)
}

func (s *stubDataService) Upload(ctx context.Context, filename string, r io.Reader) (domain.Summary, error) {
	return s.uploadFunc(ctx, filename, r)
}

func (s *stubDataService) Summary(ctx context.Context) (domain.Summary, error) {
	return s.summaryFunc(ctx)
}

func (s *stubDataService) Records(ctx context.Context) ([]domain.MetricRecord, error) {
	return s.recordsFunc(ctx)
}

func (s *stubDataService) Trend(ctx context.Context) ([]services.TrendPoint, error) {
	return s.trendFunc(ctx)
}

func (s *stubDataService) BCG(ctx context.Context, params services.BCGParams) (*services.BCGView, error) {
	return s.bcgFunc(ctx, params)
}

func (s *stubDataService) FilteredRecords(ctx context.Context, params services.BCGParams) ([]domain.MetricRecord, error) {
	return s.filteredRecordsFunc(ctx, params)
}

type stubNotifier struct {
	broadcasts []domain.Summary
}

func (n *stubNotifier) BroadcastDatasetRefreshed(summary domain.Summary) {
	n.broadcasts = append(n.broadcasts, summary)
}

func newTestHandler(service DataServiceInterface, notifier RefreshNotifier) http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := NewDataHandler(service, notifier, logger, apierrors.NewErrorHandler(logger, false), 1<<20)

	r := chi.NewRouter()
	r.Mount("/api/data", h.Routes())
	return r
}

func multipartUpload(t *testing.T, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &body, mw.FormDataContentType()
}

func decodeProblem(t *testing.T, body *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var problem map[string]interface{}
	require.NoError(t, json.Unmarshal(body.Bytes(), &problem))
	return problem
}

func TestUploadSuccess(t *testing.T) {
	summary := domain.Summary{ID: "abc", Source: "trade.csv", Years: []int{2022, 2023}, RecordCount: 3}
	var uploadedName string
	service := &stubDataService{
		uploadFunc: func(ctx context.Context, filename string, r io.Reader) (domain.Summary, error) {
			uploadedName = filename
			return summary, nil
		},
	}
	notifier := &stubNotifier{}
	handler := newTestHandler(service, notifier)

	body, contentType := multipartUpload(t, "trade.csv", "period,partner,value\n202301,A,100\n")
	req := httptest.NewRequest(http.MethodPost, "/api/data/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "trade.csv", uploadedName)
	require.Len(t, notifier.broadcasts, 1)
	assert.Equal(t, "abc", notifier.broadcasts[0].ID)

	var got domain.Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, summary.ID, got.ID)
	assert.Equal(t, summary.Years, got.Years)
}

func TestUploadMissingFileField(t *testing.T) {
	handler := newTestHandler(&stubDataService{}, nil)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("other", "value"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/data/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	problem := decodeProblem(t, rec.Body)
	assert.Equal(t, apierrors.TypeValidation, problem["type"])
}

func TestUploadUnsupportedExtension(t *testing.T) {
	handler := newTestHandler(&stubDataService{}, nil)

	body, contentType := multipartUpload(t, "trade.pdf", "not a trade file")
	req := httptest.NewRequest(http.MethodPost, "/api/data/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	problem := decodeProblem(t, rec.Body)
	assert.Equal(t, apierrors.TypeUnsupportedFormat, problem["type"])
}

func TestUploadParseFailure(t *testing.T) {
	service := &stubDataService{
		uploadFunc: func(ctx context.Context, filename string, r io.Reader) (domain.Summary, error) {
			return domain.Summary{}, &dataprocessing.ParseError{Format: "json", Err: io.ErrUnexpectedEOF}
		},
	}
	handler := newTestHandler(service, nil)

	body, contentType := multipartUpload(t, "trade.json", "{broken")
	req := httptest.NewRequest(http.MethodPost, "/api/data/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	problem := decodeProblem(t, rec.Body)
	assert.Equal(t, apierrors.TypeParseFailed, problem["type"])
}

func TestGetSummaryNoDataset(t *testing.T) {
	service := &stubDataService{
		summaryFunc: func(ctx context.Context) (domain.Summary, error) {
			return domain.Summary{}, services.ErrNoDataset
		},
	}
	handler := newTestHandler(service, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/data/summary", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	problem := decodeProblem(t, rec.Body)
	assert.Equal(t, apierrors.TypeNoDataset, problem["type"])
}

func TestGetRecords(t *testing.T) {
	service := &stubDataService{
		recordsFunc: func(ctx context.Context) ([]domain.MetricRecord, error) {
			return []domain.MetricRecord{
				{AggregatedRecord: domain.AggregatedRecord{Year: 2023, Partner: "A", Value: 100}},
			}, nil
		},
	}
	handler := newTestHandler(service, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/data/records", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var payload struct {
		Records []domain.MetricRecord `json:"records"`
		Count   int                   `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, 1, payload.Count)
	assert.Equal(t, "A", payload.Records[0].Partner)
}

func TestGetBCGParamParsing(t *testing.T) {
	var captured services.BCGParams
	service := &stubDataService{
		bcgFunc: func(ctx context.Context, params services.BCGParams) (*services.BCGView, error) {
			captured = params
			return &services.BCGView{Year: params.Year, Params: params}, nil
		},
	}
	handler := newTestHandler(service, nil)

	req := httptest.NewRequest(http.MethodGet,
		"/api/data/bcg?year=2023&growth_min=-0.5&share_max_pct=80&keywords=germany,france", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2023, captured.Year)
	assert.Equal(t, -0.5, captured.GrowthMin)
	// Unset parameters keep the defaults.
	assert.Equal(t, 3.0, captured.GrowthMax)
	assert.Equal(t, 0.0, captured.ShareMinPct)
	assert.Equal(t, 80.0, captured.ShareMaxPct)
	assert.Equal(t, "germany,france", captured.Keywords)
}

func TestGetBCGMissingYear(t *testing.T) {
	handler := newTestHandler(&stubDataService{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/data/bcg", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	problem := decodeProblem(t, rec.Body)
	assert.Equal(t, apierrors.TypeValidation, problem["type"])
}

func TestGetBCGInvalidParam(t *testing.T) {
	handler := newTestHandler(&stubDataService{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/data/bcg?year=2023&growth_min=abc", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetBCGYearNotFound(t *testing.T) {
	service := &stubDataService{
		bcgFunc: func(ctx context.Context, params services.BCGParams) (*services.BCGView, error) {
			return nil, services.ErrYearNotFound
		},
	}
	handler := newTestHandler(service, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/data/bcg?year=1999", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	problem := decodeProblem(t, rec.Body)
	assert.Equal(t, apierrors.TypeNotFound, problem["type"])
}

func TestExportGrowth(t *testing.T) {
	growth := 0.25
	service := &stubDataService{
		recordsFunc: func(ctx context.Context) ([]domain.MetricRecord, error) {
			return []domain.MetricRecord{
				{
					AggregatedRecord: domain.AggregatedRecord{Year: 2023, Partner: "A", Value: 1000},
					Share:            0.5,
					Growth:           &growth,
				},
			}, nil
		},
	}
	handler := newTestHandler(service, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/data/export/growth", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "growth_report.csv")
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte{0xEF, 0xBB, 0xBF}))
	assert.Contains(t, rec.Body.String(), "25.0%")
}

func TestExportGrowthCustomFilename(t *testing.T) {
	service := &stubDataService{
		recordsFunc: func(ctx context.Context) ([]domain.MetricRecord, error) {
			return nil, nil
		},
	}
	handler := newTestHandler(service, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/data/export/growth?filename=../../etc/report.csv", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	disposition := rec.Header().Get("Content-Disposition")
	assert.Contains(t, disposition, "report.csv")
	assert.NotContains(t, disposition, "..")
}

func TestExportClipboard(t *testing.T) {
	growth := 0.1
	service := &stubDataService{
		filteredRecordsFunc: func(ctx context.Context, params services.BCGParams) ([]domain.MetricRecord, error) {
			return []domain.MetricRecord{
				{
					AggregatedRecord: domain.AggregatedRecord{Year: 2023, Partner: "A", Value: 1000},
					Share:            0.5,
					Growth:           &growth,
				},
			}, nil
		},
	}
	handler := newTestHandler(service, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/data/export/clipboard?year=2023", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/tab-separated-values; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "2023\tA\t1,000\t10.0%\t50.00%")
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", defaultExportFilename},
		{"  ", defaultExportFilename},
		{"report.csv", "report.csv"},
		{"../../etc/passwd", "passwd"},
		{"dir/report.csv", "report.csv"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, sanitizeFilename(tt.input))
	}
}
