// Package cli implements the command-line interface.
package cli

import (
	"errors"

	"github.com/aidanlsb/tabula/internal/apperr"
	"github.com/aidanlsb/tabula/internal/selection"
)

// Error codes for structured error responses.
// These codes are stable and can be relied upon by scripts.
const (
	// Configuration errors
	ErrConfigInvalid  = "CONFIG_INVALID"
	ErrSourceNotFound = "SOURCE_NOT_FOUND"

	// Data source errors
	ErrSourceUnavailable = "SOURCE_UNAVAILABLE"

	// Pipeline errors
	ErrValidationFailed = "VALIDATION_FAILED"
	ErrEmptyResult      = "EMPTY_RESULT"
	ErrAttributeInvalid = "ATTRIBUTE_INVALID"

	// Dataset errors
	ErrDatasetNotFound = "DATASET_NOT_FOUND"
	ErrStoreCorrupt    = "STORE_CORRUPT"

	// File errors
	ErrFileReadError  = "FILE_READ_ERROR"
	ErrFileWriteError = "FILE_WRITE_ERROR"

	// General errors
	ErrInternal = "INTERNAL_ERROR"
)

// Warning codes for non-fatal issues.
const (
	WarnDegraded  = "SOURCE_DEGRADED"
	WarnTruncated = "VIEW_TRUNCATED"
)

// classifyError maps an error from the pipeline packages to a stable code and
// an optional suggestion.
func classifyError(err error) (string, string) {
	var ve *apperr.ValidationError
	switch {
	case err == nil:
		return "", ""
	case errors.Is(err, errSourceConfig):
		return ErrSourceNotFound, "Run 'tabula source list' to see configured sources"
	case errors.Is(err, selection.ErrNotAvailable), errors.Is(err, selection.ErrNotSelected):
		return ErrAttributeInvalid, "Run 'tabula schema <table>' to see the columns"
	case errors.As(err, &ve):
		return ErrValidationFailed, ""
	case errors.Is(err, apperr.ErrEmptyResult):
		return ErrEmptyResult, "Relax or clear the filter before grouping"
	case errors.Is(err, apperr.ErrNotFound):
		return ErrDatasetNotFound, "Run 'tabula dataset list' to see saved datasets"
	case errors.Is(err, apperr.ErrSourceUnavailable):
		return ErrSourceUnavailable, "Check the [source] settings in config.toml, or pass --source sample"
	case errors.Is(err, apperr.ErrCorrupt):
		return ErrStoreCorrupt, ""
	default:
		return ErrInternal, ""
	}
}

// handleErr classifies err and reports it in the active output mode.
func handleErr(err error) error {
	code, suggestion := classifyError(err)
	return handleError(code, err, suggestion)
}
