package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/smart-card/smartcard-api/internal/api/shared"
	"github.com/smart-card/smartcard-api/internal/domain"
	"github.com/smart-card/smartcard-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapErrorToStatusCode(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
	}{
		{
			name:           "nil error",
			err:            nil,
			expectedStatus: http.StatusInternalServerError,
		},
		{
			name:           "missing input",
			err:            fmt.Errorf("%w: prompt mode requires a prompt", domain.ErrMissingInput),
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "invalid mode",
			err:            fmt.Errorf("%w: %q", domain.ErrInvalidMode, "bogus"),
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "unknown template",
			err:            domain.ErrUnknownTemplate,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "artifact not found",
			err:            domain.ErrArtifactNotFound,
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "malformed artifact ID",
			err:            fmt.Errorf("%w: %w", domain.ErrArtifactNotFound, domain.ErrInvalidArtifactID),
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "generation failure",
			err:            fmt.Errorf("invoke stage failed for abc: %w", domain.ErrGenerationFailure),
			expectedStatus: http.StatusInternalServerError,
		},
		{
			name:           "render failure",
			err:            fmt.Errorf("%w: %w", domain.ErrRenderFailure, errors.New("browser gone")),
			expectedStatus: http.StatusInternalServerError,
		},
		{
			name:           "store error",
			err:            store.ErrArtifactExists,
			expectedStatus: http.StatusInternalServerError,
		},
		{
			name:           "validator error",
			err:            shared.ValidateRequest(GenerateRequest{Style: string(make([]byte, 65))}),
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expectedStatus, MapErrorToStatusCode(tc.err))
		})
	}
}

func TestGetSafeErrorMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{"nil error", nil, "An unexpected error occurred"},
		{"missing input", domain.ErrMissingInput, "Missing required input"},
		{"invalid mode", domain.ErrInvalidMode, "Invalid generation mode"},
		{"unknown template", domain.ErrUnknownTemplate, "Unknown template"},
		{"not found", domain.ErrArtifactNotFound, "Artifact not found"},
		{"generation failure", domain.ErrGenerationFailure, "Content generation failed"},
		{"render failure", domain.ErrRenderFailure, "Rendering failed"},
		{
			name:     "unknown error",
			err:      errors.New("open /srv/output/abc.html: permission denied"),
			expected: "An unexpected error occurred",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, GetSafeErrorMessage(tc.err))
		})
	}
}

func TestGetSafeErrorMessageNeverLeaksDetails(t *testing.T) {
	err := fmt.Errorf("%w: model said sk-abcdefghijklmnopqrstuvwxyz at /srv/output/abc.html",
		domain.ErrGenerationFailure)

	msg := GetSafeErrorMessage(err)
	assert.NotContains(t, msg, "sk-")
	assert.NotContains(t, msg, "/srv")
}

func TestHandleAPIError(t *testing.T) {
	tests := []struct {
		name            string
		err             error
		defaultMsg      string
		expectedStatus  int
		expectedMessage string
	}{
		{
			name:            "taxonomy error ignores default",
			err:             domain.ErrMissingInput,
			defaultMsg:      "Custom default message",
			expectedStatus:  http.StatusBadRequest,
			expectedMessage: "Missing required input",
		},
		{
			name:            "not found",
			err:             domain.ErrArtifactNotFound,
			defaultMsg:      "Custom default message",
			expectedStatus:  http.StatusNotFound,
			expectedMessage: "Artifact not found",
		},
		{
			name:            "unexpected error uses default",
			err:             errors.New("disk full"),
			defaultMsg:      "Friendly server error message",
			expectedStatus:  http.StatusInternalServerError,
			expectedMessage: "Friendly server error message",
		},
		{
			name:            "unexpected error without default",
			err:             errors.New("disk full"),
			expectedStatus:  http.StatusInternalServerError,
			expectedMessage: "An unexpected error occurred",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/test", nil)

			HandleAPIError(rr, req, tc.err, tc.defaultMsg)

			assert.Equal(t, tc.expectedStatus, rr.Code)

			var response map[string]interface{}
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&response))
			assert.Equal(t, tc.expectedMessage, response["error"])
		})
	}
}

func TestSanitizeValidationError(t *testing.T) {
	hot := 3.5

	tests := []struct {
		name     string
		input    interface{}
		expected string
	}{
		{
			name:     "temperature out of range",
			input:    GenerateRequest{Mode: "prompt", Temperature: &hot},
			expected: "Invalid temperature: too large",
		},
		{
			name:     "too many models",
			input:    GenerateRequest{Mode: "prompt", Models: []string{"a", "b", "c", "d", "e", "f", "g", "h", "i"}},
			expected: "Invalid models: too large",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := shared.ValidateRequest(tc.input)
			require.Error(t, err)
			assert.Equal(t, tc.expected, SanitizeValidationError(err))
		})
	}

	t.Run("validator text", func(t *testing.T) {
		err := errors.New("Key: 'GenerateRequest.Mode' Error:Field validation for 'Mode' failed on the 'oneof' tag")
		assert.Equal(t, "Invalid mode: invalid value", SanitizeValidationError(err))
	})

	t.Run("other error", func(t *testing.T) {
		assert.Equal(t, "Validation error", SanitizeValidationError(errors.New("boom")))
	})
}
