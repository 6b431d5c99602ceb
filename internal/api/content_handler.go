package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/smart-card/smartcard-api/internal/api/shared"
)

// Summarizer condenses text with a language model.
// *service.SummaryService implements it.
type Summarizer interface {
	Summarize(ctx context.Context, content, model string) (string, error)
}

// Fetcher retrieves the readable content of a web page.
// *service.WebFetchService implements it.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// ContentHandler serves the helper endpoints that prepare card source text.
// Failures are reported in the body with success=false and HTTP 200, which
// is what existing clients expect.
type ContentHandler struct {
	summarizer Summarizer
	fetcher    Fetcher
	logger     *slog.Logger
}

// NewContentHandler creates a new ContentHandler.
func NewContentHandler(summarizer Summarizer, fetcher Fetcher, logger *slog.Logger) *ContentHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ContentHandler{
		summarizer: summarizer,
		fetcher:    fetcher,
		logger:     logger.With("component", "content_handler"),
	}
}

// Summarize handles POST /api/summarize requests.
func (h *ContentHandler) Summarize(w http.ResponseWriter, r *http.Request) {
	var req SummarizeRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	summary, err := h.summarizer.Summarize(r.Context(), req.Content, req.Model)
	if err != nil {
		h.logger.WarnContext(r.Context(), "summarize request failed",
			"trace_id", shared.GetTraceID(r.Context()),
			"error_status", MapErrorToStatusCode(err))
		shared.RespondWithJSON(w, r, http.StatusOK, SummarizeResponse{
			Success: false,
			Message: GetSafeErrorMessage(err),
		})
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, SummarizeResponse{
		Summary: summary,
		Success: true,
	})
}

// FetchWeb handles POST /api/fetch-web requests.
func (h *ContentHandler) FetchWeb(w http.ResponseWriter, r *http.Request) {
	var req WebFetchRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	content, err := h.fetcher.Fetch(r.Context(), req.URL)
	if err != nil {
		h.logger.WarnContext(r.Context(), "web fetch request failed",
			"trace_id", shared.GetTraceID(r.Context()),
			"error_status", MapErrorToStatusCode(err))
		shared.RespondWithJSON(w, r, http.StatusOK, WebFetchResponse{
			Success: false,
			Message: fetchFailureMessage(err),
		})
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, WebFetchResponse{
		Content: content,
		Success: true,
	})
}

func fetchFailureMessage(err error) string {
	if MapErrorToStatusCode(err) == http.StatusBadRequest {
		return GetSafeErrorMessage(err)
	}
	return "Failed to fetch web content"
}
