package api

import (
	"context"
	"net/http"
	"path/filepath"

	"github.com/smart-card/smartcard-api/internal/api/shared"
)

// Content types of served artifacts.
const (
	contentTypeHTML = "text/html; charset=utf-8"
	contentTypePNG  = "image/png"
)

// Downloader resolves artifact IDs to files on disk.
// *service.DownloadService implements it.
type Downloader interface {
	HTMLPath(ctx context.Context, rawID string) (string, error)
	ImagePath(ctx context.Context, rawID string) (string, error)
	CardPath(ctx context.Context, rawID string) (string, error)
}

// DownloadHandler serves stored artifacts as attachments.
type DownloadHandler struct {
	downloader Downloader
}

// NewDownloadHandler creates a new DownloadHandler.
func NewDownloadHandler(downloader Downloader) *DownloadHandler {
	return &DownloadHandler{downloader: downloader}
}

// DownloadHTML handles GET /api/download-html/{fileID} requests.
func (h *DownloadHandler) DownloadHTML(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, h.downloader.HTMLPath, contentTypeHTML)
}

// DownloadImage handles GET /api/download-image/{fileID} requests. The image
// is never rendered on demand.
func (h *DownloadHandler) DownloadImage(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, h.downloader.ImagePath, contentTypePNG)
}

// DownloadCard handles GET /api/download-card/{fileID} requests. A missing
// card is regenerated from the stored HTML before it is served.
func (h *DownloadHandler) DownloadCard(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, h.downloader.CardPath, contentTypePNG)
}

func (h *DownloadHandler) serve(
	w http.ResponseWriter,
	r *http.Request,
	resolve func(context.Context, string) (string, error),
	contentType string,
) {
	path, err := resolve(r.Context(), getArtifactIDParam(r))
	if err != nil {
		HandleAPIError(w, r, err, "Failed to retrieve artifact")
		return
	}

	shared.ServeAttachment(w, r, path, filepath.Base(path), contentType)
}
