// Package domain defines the core business entities and errors.
package domain

import "errors"

// Error taxonomy for the generation pipeline. The API layer maps these to
// HTTP status codes; callers match them with errors.Is.
var (
	// ErrMissingInput is returned when a field required by the chosen mode is
	// absent or empty. Client error.
	ErrMissingInput = errors.New("missing required input")

	// ErrInvalidMode is returned when the request mode is not one of the
	// supported generation modes. Client error.
	ErrInvalidMode = errors.New("invalid generation mode")

	// ErrUnknownTemplate is returned when direct mode names a shell template
	// that does not exist. Client error.
	ErrUnknownTemplate = errors.New("unknown template")

	// ErrGenerationFailure is returned when model invocation or HTML
	// extraction fails. Fatal for the request.
	ErrGenerationFailure = errors.New("content generation failed")

	// ErrRenderFailure is returned when rendering HTML to a raster image
	// fails. Fatal for the initial generation; surfaced as an explicit
	// failure for on-demand regeneration.
	ErrRenderFailure = errors.New("rendering failed")

	// ErrArtifactNotFound is returned when a file ID has no backing HTML.
	ErrArtifactNotFound = errors.New("artifact not found")

	// ErrInvalidArtifactID is returned when an artifact ID string cannot be
	// parsed into the addressing scheme.
	ErrInvalidArtifactID = errors.New("invalid artifact ID")
)
