package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/smart-card/smartcard-api/internal/api/shared"
	"github.com/smart-card/smartcard-api/internal/domain"
)

// genericErrorMessage is returned for any error without a dedicated message.
const genericErrorMessage = "An unexpected error occurred"

// MapErrorToStatusCode maps pipeline errors to HTTP status codes. Only the
// client errors of the taxonomy are 4xx; generation, rendering and anything
// unrecognised is a server error.
func MapErrorToStatusCode(err error) int {
	var verrs validator.ValidationErrors

	switch {
	// Checked first: a malformed artifact ID is reported as unknown, not as
	// a bad request.
	case errors.Is(err, domain.ErrArtifactNotFound):
		return http.StatusNotFound

	case errors.Is(err, domain.ErrMissingInput),
		errors.Is(err, domain.ErrInvalidMode),
		errors.Is(err, domain.ErrUnknownTemplate),
		errors.As(err, &verrs):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a client-facing message for err. Raw error
// text, which may carry model output, file paths or upstream URLs, is never
// returned.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return genericErrorMessage
	}

	var verrs validator.ValidationErrors
	switch {
	case errors.Is(err, domain.ErrArtifactNotFound):
		return "Artifact not found"
	case errors.Is(err, domain.ErrMissingInput):
		return "Missing required input"
	case errors.Is(err, domain.ErrInvalidMode):
		return "Invalid generation mode"
	case errors.Is(err, domain.ErrUnknownTemplate):
		return "Unknown template"
	case errors.As(err, &verrs):
		return SanitizeValidationError(err)
	case errors.Is(err, domain.ErrGenerationFailure):
		return "Content generation failed"
	case errors.Is(err, domain.ErrRenderFailure):
		return "Rendering failed"
	default:
		return genericErrorMessage
	}
}

// HandleAPIError writes the status and safe message for err and logs the
// redacted error. defaultMsg replaces the generic message for errors outside
// the taxonomy.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, defaultMsg string) {
	status := MapErrorToStatusCode(err)

	message := GetSafeErrorMessage(err)
	if message == genericErrorMessage && defaultMsg != "" {
		message = defaultMsg
	}

	shared.RespondWithErrorAndLog(w, r, status, message, err)
}

// SanitizeValidationError turns a validator error into a short message naming
// the first offending field.
func SanitizeValidationError(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return fmt.Sprintf("Invalid %s: %s", strings.ToLower(fe.Field()), getValidationTagMessage(fe.Tag()))
	}

	errMsg := err.Error()
	// Example format: "Key: 'GenerateRequest.Mode' Error:Field validation for 'Mode' failed on the 'oneof' tag"
	if strings.Contains(errMsg, "Field validation") {
		parts := strings.Split(errMsg, "Error:")
		if len(parts) >= 2 {
			fieldParts := strings.Split(parts[1], "'")
			if len(fieldParts) >= 3 {
				field := strings.ToLower(fieldParts[1])
				if len(fieldParts) >= 5 {
					return fmt.Sprintf("Invalid %s: %s", field, getValidationTagMessage(fieldParts[3]))
				}
				return fmt.Sprintf("Invalid %s", field)
			}
		}
	}

	return "Validation error"
}

// getValidationTagMessage maps validation tags to user-friendly error messages
func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "url", "http_url":
		return "invalid URL"
	case "min", "gte":
		return "too small"
	case "max", "lte":
		return "too large"
	case "oneof":
		return "invalid value"
	case "dive":
		return "invalid element"
	default:
		return "validation failed"
	}
}
