package service

import (
	"errors"
	"fmt"
)

var (
	ErrValidation      = errors.New("validation failed")
	ErrUnknownColumn   = errors.New("unknown column")
	ErrUnknownOperator = errors.New("unknown operator")
	ErrInvalidValue    = errors.New("invalid value")
	ErrSuspiciousQuery = errors.New("suspicious query")
	ErrStore           = errors.New("store error")
	ErrPanic           = errors.New("recovered from panic")
)

// ValidationError is raised before any statement reaches the store
type ValidationError struct {
	Field  string // Column or option that failed, may be empty
	Reason string
	Err    error // One of the specific sentinels above
}

func NewValidationError(field string, err error, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...), Err: err}
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s: %s", ErrValidation, e.Field, e.Reason)
	}
	return fmt.Sprintf("%s: %s", ErrValidation, e.Reason)
}

// Unwrap lets errors.Is match both ErrValidation and the specific cause
func (e *ValidationError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrValidation}
	}
	return []error{ErrValidation, e.Err}
}

// IsValidation reports whether err was rejected before reaching the store
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}
