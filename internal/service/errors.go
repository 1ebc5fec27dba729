package service

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Error kinds surfaced by every reporting and rating operation. Callers match them with errors.Is.
var (
	ErrValidation = errors.New("validation failed")
	ErrForbidden  = errors.New("role not permitted")
	ErrConflict   = errors.New("conflict")
	ErrNotFound   = errors.New("not found")
	ErrStorage    = errors.New("storage unavailable")
)

// ErrFeedbackAlreadySubmitted is returned when a reviewer slot is already filled.
var ErrFeedbackAlreadySubmitted = fmt.Errorf("%w: feedback already submitted", ErrConflict)

// Kind returns the stable discriminant for err, or "internal" for anything unclassified.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrStorage):
		return "storage"
	default:
		return "internal"
	}
}

func validationError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func forbiddenError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrForbidden, fmt.Sprintf(format, args...))
}

func notFoundError(what string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, what)
}

func storageError(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrStorage, err)
}

// validateStruct runs the validator and keeps both the validation kind and the
// underlying validator.ValidationErrors in the chain.
func validateStruct(v *validator.Validate, payload interface{}) error {
	if err := v.Struct(payload); err != nil {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}
	return nil
}
