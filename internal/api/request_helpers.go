package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/smart-card/smartcard-api/internal/api/shared"
)

// FileIDParam is the chi URL parameter carrying an artifact ID.
const FileIDParam = "fileID"

// getArtifactIDParam returns the raw artifact ID from the URL path. The ID
// is parsed by the download service, which treats malformed IDs as unknown.
func getArtifactIDParam(r *http.Request) string {
	return chi.URLParam(r, FileIDParam)
}

// decodeAndValidate decodes the JSON body into dst and validates it. On
// failure it writes a 400 response and returns false.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := shared.DecodeJSON(r, dst); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return false
	}

	if err := shared.ValidateRequest(dst); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return false
	}

	return true
}
