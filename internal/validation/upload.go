// Package validation checks uploaded files before the pipeline touches them.
package validation

import (
	"log/slog"
	"path/filepath"
	"strings"

	apierrors "tradelens/internal/errors"
)

// recognizedExtensions is the set the parser can dispatch on.
var recognizedExtensions = map[string]bool{
	".csv":  true,
	".xlsx": true,
	".xls":  true,
	".json": true,
}

// UploadValidator rejects uploads the pipeline cannot handle before any
// parsing work is done.
type UploadValidator struct {
	logger  *slog.Logger
	maxSize int64
}

// NewUploadValidator creates an upload validator.
func NewUploadValidator(logger *slog.Logger, maxSize int64) *UploadValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &UploadValidator{
		logger:  logger.With(slog.String("component", "upload_validator")),
		maxSize: maxSize,
	}
}

// Validate checks the declared filename and size. The parser re-checks the
// extension during dispatch; rejecting here keeps oversized or obviously
// wrong uploads from being read at all.
func (v *UploadValidator) Validate(filename string, size int64) error {
	ext := strings.ToLower(filepath.Ext(filename))
	if !recognizedExtensions[ext] {
		v.logger.Warn("rejected upload with unsupported extension",
			slog.String("filename", filename),
			slog.String("extension", ext))
		return apierrors.UnsupportedFormatError(ext)
	}

	if size > v.maxSize {
		v.logger.Warn("rejected oversized upload",
			slog.String("filename", filename),
			slog.Int64("size", size),
			slog.Int64("max_size", v.maxSize))
		return apierrors.ErrPayloadTooLarge
	}
	return nil
}

// RecognizedExtensions returns the accepted extension list for messages.
func RecognizedExtensions() []string {
	return []string{".csv", ".xlsx", ".xls", ".json"}
}
