package domain

import (
	"errors"
	"fmt"
)

var (
	// Common domain errors
	ErrNotFound           = errors.New("entity not found")
	ErrAlreadyExists      = errors.New("entity already exists")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrInvalidExecContext = errors.New("invalid executor context")
	ErrReadDatabaseRow    = errors.New("failed to read database row")
	ErrUnauthorized       = errors.New("unauthorized")

	// Pipeline errors
	ErrUnsupportedMediaType = errors.New("unsupported media type")
	ErrClaimConflict        = errors.New("job already claimed")
	ErrRetryNotAllowed      = errors.New("retry not allowed for a completed document")
	ErrEmptyModelOutput     = errors.New("empty model output")
)

// ValidationError describes why a model response did not conform to the
// extraction schema. It survives the single repair round so the job error
// always carries the first failure detail.
type ValidationError struct {
	Detail string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("extraction output failed validation: %s", e.Detail)
}

// TransportError wraps a network or provider failure while talking to the
// extraction service.
type TransportError struct {
	Provider string
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("extraction service %s: %v", e.Provider, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
