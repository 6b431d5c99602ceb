package service

import (
	"errors"
	"fmt"

	"github.com/smart-card/smartcard-api/internal/domain"
	"github.com/smart-card/smartcard-api/internal/events"
)

// Service errors not covered by the domain taxonomy.
//
// Error handling principles:
// 1. Pipeline failures are wrapped in PipelineError, which unwraps to a domain sentinel
// 2. Card extraction failures are never errors; they produce a fallback domain.CardResult
// 3. The API layer maps domain sentinels to HTTP status codes
var (
	// ErrNilDependency is returned by constructors when a required
	// collaborator is missing.
	ErrNilDependency = errors.New("required dependency is nil")
)

// PipelineError records which stage failed for which artifact ID.
type PipelineError struct {
	// Stage is the pipeline stage that failed
	Stage events.Stage
	// FileID is the artifact ID in on-disk form, primary or derived
	FileID string
	// Err is the underlying error; it wraps a domain sentinel
	Err error
}

// Error implements the error interface for PipelineError.
func (e *PipelineError) Error() string {
	if e.FileID == "" {
		return fmt.Sprintf("%s stage failed: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("%s stage failed for %s: %v", e.Stage, e.FileID, e.Err)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *PipelineError) Unwrap() error {
	return e.Err
}

// newPipelineError wraps err with stage context. An error that is already a
// PipelineError is returned unchanged so the innermost stage is reported.
func newPipelineError(stage events.Stage, id domain.ArtifactID, err error) error {
	if err == nil {
		return nil
	}
	var pe *PipelineError
	if errors.As(err, &pe) {
		return err
	}
	return &PipelineError{
		Stage:  stage,
		FileID: id.String(),
		Err:    err,
	}
}

// StageOf returns the stage recorded in err, or "" when err carries none.
func StageOf(err error) events.Stage {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Stage
	}
	return ""
}

func nilDependency(name string) error {
	return fmt.Errorf("%w: %s", ErrNilDependency, name)
}
