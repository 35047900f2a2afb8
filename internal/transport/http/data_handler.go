package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"tradelens/internal/dataprocessing"
	apierrors "tradelens/internal/errors"
	"tradelens/internal/exporter"
	"tradelens/internal/services"
	"tradelens/internal/validation"
)

// defaultExportFilename is used when the download request names no file.
const defaultExportFilename = "growth_report.csv"

// DataHandler handles upload, view and export requests.
type DataHandler struct {
	service       DataServiceInterface
	notifier      RefreshNotifier
	logger        *slog.Logger
	errorHandler  *apierrors.ErrorHandler
	validator     *validation.UploadValidator
	maxUploadSize int64
}

// NewDataHandler creates a data handler. notifier may be nil (batch tests).
func NewDataHandler(service DataServiceInterface, notifier RefreshNotifier, logger *slog.Logger, errorHandler *apierrors.ErrorHandler, maxUploadSize int64) *DataHandler {
	return &DataHandler{
		service:       service,
		notifier:      notifier,
		logger:        logger.With(slog.String("component", "data_handler")),
		errorHandler:  errorHandler,
		validator:     validation.NewUploadValidator(logger, maxUploadSize),
		maxUploadSize: maxUploadSize,
	}
}

// Routes returns the data routes.
func (h *DataHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/upload", h.Upload)
	r.Get("/summary", h.GetSummary)
	r.Get("/records", h.GetRecords)
	r.Get("/trend", h.GetTrend)
	r.Get("/bcg", h.GetBCG)
	r.Get("/export/growth", h.ExportGrowth)
	r.Get("/export/clipboard", h.ExportClipboard)

	return r
}

// Upload handles POST /api/data/upload. A successful run replaces the
// session dataset; any failure leaves the previous dataset untouched.
func (h *DataHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)

	file, header, err := r.FormFile("file")
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.errorHandler.HandleError(w, r, apierrors.ErrPayloadTooLarge)
			return
		}
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("file", "multipart field \"file\" is required"))
		return
	}
	defer file.Close()

	if err := h.validator.Validate(header.Filename, header.Size); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "processing upload",
		slog.String("filename", header.Filename),
		slog.Int64("size", header.Size))

	summary, err := h.service.Upload(r.Context(), header.Filename, file)
	if err != nil {
		h.errorHandler.HandleError(w, r, h.mapServiceError(err))
		return
	}

	if h.notifier != nil {
		h.notifier.BroadcastDatasetRefreshed(summary)
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, summary)
}

// GetSummary handles GET /api/data/summary.
func (h *DataHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Summary(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, h.mapServiceError(err))
		return
	}
	render.JSON(w, r, summary)
}

// GetRecords handles GET /api/data/records.
func (h *DataHandler) GetRecords(w http.ResponseWriter, r *http.Request) {
	records, err := h.service.Records(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, h.mapServiceError(err))
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"records": records,
		"count":   len(records),
	})
}

// GetTrend handles GET /api/data/trend.
func (h *DataHandler) GetTrend(w http.ResponseWriter, r *http.Request) {
	points, err := h.service.Trend(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, h.mapServiceError(err))
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"points": points,
		"count":  len(points),
	})
}

// GetBCG handles GET /api/data/bcg with the scatter-view filter parameters.
func (h *DataHandler) GetBCG(w http.ResponseWriter, r *http.Request) {
	params, err := parseBCGParams(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	view, err := h.service.BCG(r.Context(), params)
	if err != nil {
		h.errorHandler.HandleError(w, r, h.mapServiceError(err))
		return
	}
	render.JSON(w, r, view)
}

// ExportGrowth handles GET /api/data/export/growth: the BOM-prefixed CSV
// download of all records with a defined growth.
func (h *DataHandler) ExportGrowth(w http.ResponseWriter, r *http.Request) {
	records, err := h.service.Records(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, h.mapServiceError(err))
		return
	}

	filename := sanitizeFilename(r.URL.Query().Get("filename"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if err := exporter.WriteGrowthReport(w, records); err != nil {
		// Headers are committed; log only.
		h.logger.ErrorContext(r.Context(), "failed to stream growth report",
			slog.String("error", err.Error()))
	}
}

// ExportClipboard handles GET /api/data/export/clipboard: tab-separated
// text of the records matching the same filters as the BCG view.
func (h *DataHandler) ExportClipboard(w http.ResponseWriter, r *http.Request) {
	params, err := parseBCGParams(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	records, err := h.service.FilteredRecords(r.Context(), params)
	if err != nil {
		h.errorHandler.HandleError(w, r, h.mapServiceError(err))
		return
	}

	w.Header().Set("Content-Type", "text/tab-separated-values; charset=utf-8")
	if err := exporter.WriteClipboard(w, records); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to stream clipboard export",
			slog.String("error", err.Error()))
	}
}

// parseBCGParams reads the filter parameters from the query string,
// falling back to the UI defaults for everything but the year.
func parseBCGParams(r *http.Request) (services.BCGParams, error) {
	q := r.URL.Query()

	yearStr := q.Get("year")
	if yearStr == "" {
		return services.BCGParams{}, apierrors.ErrValidation("year", "query parameter \"year\" is required")
	}
	year, err := strconv.Atoi(yearStr)
	if err != nil {
		return services.BCGParams{}, apierrors.ErrValidation("year", "must be an integer")
	}

	params := services.DefaultBCGParams(year)
	params.Keywords = q.Get("keywords")

	for name, target := range map[string]*float64{
		"growth_min":    &params.GrowthMin,
		"growth_max":    &params.GrowthMax,
		"share_min_pct": &params.ShareMinPct,
		"share_max_pct": &params.ShareMaxPct,
	} {
		raw := q.Get(name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return services.BCGParams{}, apierrors.ErrValidation(name, "must be a number")
		}
		*target = v
	}

	return params, nil
}

// mapServiceError translates service and pipeline errors onto the API
// error taxonomy; unknown errors pass through as 500s.
func (h *DataHandler) mapServiceError(err error) error {
	var apiErr *apierrors.APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	switch {
	case errors.Is(err, services.ErrNoDataset):
		return apierrors.ErrNoDataset
	case errors.Is(err, services.ErrYearNotFound):
		return apierrors.ErrYearNotInSet
	case errors.Is(err, dataprocessing.ErrUnsupportedFormat):
		return apierrors.UnsupportedFormatError(extensionFromError(err))
	}

	var parseErr *dataprocessing.ParseError
	if errors.As(err, &parseErr) {
		return apierrors.ParseFailedError(parseErr)
	}
	return err
}

// extensionFromError pulls the quoted extension out of an unsupported
// format error message for the response details.
func extensionFromError(err error) string {
	msg := err.Error()
	if i := strings.LastIndex(msg, `"`); i > 0 {
		if j := strings.LastIndex(msg[:i], `"`); j >= 0 {
			return msg[j+1 : i]
		}
	}
	return ""
}

// sanitizeFilename strips path components from a caller-specified download
// name and applies the default when empty.
func sanitizeFilename(name string) string {
	name = filepath.Base(strings.TrimSpace(name))
	if name == "" || name == "." || name == string(filepath.Separator) {
		return defaultExportFilename
	}
	return name
}
