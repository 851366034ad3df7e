package server

import (
	"errors"

	"github.com/localrivet/rivet/internal/errortypes"
	"github.com/localrivet/rivet/internal/lexicon"
	"github.com/localrivet/rivet/internal/riv"
)

// Error response codes
const (
	StatusCodeSizeMismatch     = "SIZE_MISMATCH"
	StatusCodeIndexOutOfBounds = "INDEX_OUT_OF_BOUNDS"
	StatusCodeMalformedInput   = "MALFORMED_INPUT"
	StatusCodeNotFound         = "NOT_FOUND"
	StatusCodeValidationError  = "VALIDATION_ERROR"
	StatusCodeDatabaseError    = "DATABASE_ERROR"
	StatusCodeConfigError      = "CONFIG_ERROR"
	StatusCodeInternalError    = "INTERNAL_ERROR"
)

// errorCode maps an error to the code reported in tool responses. Core
// sentinels take precedence over the AppError type wrapping them.
func errorCode(err error) string {
	switch {
	case errors.Is(err, riv.ErrSizeMismatch):
		return StatusCodeSizeMismatch
	case errors.Is(err, riv.ErrIndexOutOfBounds):
		return StatusCodeIndexOutOfBounds
	case errors.Is(err, riv.ErrMalformed):
		return StatusCodeMalformedInput
	case errors.Is(err, lexicon.ErrNotFound):
		return StatusCodeNotFound
	}

	var appErr *errortypes.AppError
	if errors.As(err, &appErr) {
		switch appErr.Type {
		case errortypes.ErrorTypeValidation:
			return StatusCodeValidationError
		case errortypes.ErrorTypeDatabase:
			return StatusCodeDatabaseError
		case errortypes.ErrorTypeConfig:
			return StatusCodeConfigError
		}
	}
	return StatusCodeInternalError
}

// storeError wraps a lexicon failure. Lookups of unknown or invalid keys are
// the caller's mistake; anything else is a database error.
func storeError(err error, message string) *errortypes.AppError {
	if errors.Is(err, lexicon.ErrNotFound) || errors.Is(err, lexicon.ErrInvalidID) {
		return errortypes.ValidationError(err, message)
	}
	return errortypes.DatabaseError(err, message)
}
