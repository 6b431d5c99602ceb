package store

import (
	"errors"
	"fmt"

	"github.com/smart-card/smartcard-api/internal/domain"
)

// Common store errors used across all store implementations.
var (
	// ErrArtifactExists is returned when a write targets an artifact that
	// has already been written. Artifacts are never overwritten.
	ErrArtifactExists = errors.New("artifact already exists")

	// ErrArtifactNotFound is returned when a requested artifact does not
	// exist. It matches domain.ErrArtifactNotFound under errors.Is.
	ErrArtifactNotFound = fmt.Errorf("stored %w", domain.ErrArtifactNotFound)

	// ErrInvalidKind is returned for an artifact kind with no file suffix.
	ErrInvalidKind = errors.New("invalid artifact kind")
)

// StoreError is a custom error type for store-specific errors with additional context.
type StoreError struct {
	ArtifactID string              // The artifact ID in on-disk form
	Kind       domain.ArtifactKind // The artifact kind
	Operation  string              // The operation that failed (e.g., "put", "copy")
	Err        error               // Original error
}

// Error implements the error interface for StoreError.
func (e *StoreError) Error() string {
	return fmt.Sprintf("%s of %s artifact %s failed: %v", e.Operation, e.Kind, e.ArtifactID, e.Err)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a new StoreError for the artifact (id, kind).
func NewStoreError(id domain.ArtifactID, kind domain.ArtifactKind, operation string, err error) *StoreError {
	return &StoreError{
		ArtifactID: id.String(),
		Kind:       kind,
		Operation:  operation,
		Err:        err,
	}
}
