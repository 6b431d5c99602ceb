package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/smart-card/smartcard-api/internal/platform/filestore"
)

const screenshotRoute = "/forms/chromium/screenshot/html"

// maxErrorBody bounds how much of an upstream error body is kept for logs.
const maxErrorBody = 512

// Gotenberg renders through a Gotenberg Chromium screenshot endpoint.
type Gotenberg struct {
	endpoint string
	client   *http.Client
	logger   *slog.Logger
}

// NewGotenberg returns a renderer posting to baseURL.
func NewGotenberg(baseURL string, timeout time.Duration, logger *slog.Logger) (*Gotenberg, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	u, err := url.Parse(strings.TrimSuffix(baseURL, "/"))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid gotenberg URL %q", baseURL)
	}

	return &Gotenberg{
		endpoint: u.String() + screenshotRoute,
		client:   &http.Client{Timeout: timeout},
		logger:   logger.With("component", "gotenberg_renderer"),
	}, nil
}

// Render implements Renderer.
func (g *Gotenberg) Render(ctx context.Context, htmlPath, imagePath string, width int) error {
	html, err := os.ReadFile(htmlPath)
	if err != nil {
		return fmt.Errorf("%w: read html: %v", ErrRenderFailed, err)
	}

	body, contentType, err := screenshotForm(html, width)
	if err != nil {
		return fmt.Errorf("%w: build form: %v", ErrRenderFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, body)
	if err != nil {
		return fmt.Errorf("%w: build request: %v", ErrRenderFailed, err)
	}
	req.Header.Set("Content-Type", contentType)

	start := time.Now()
	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: request: %v", ErrRenderFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		g.logger.ErrorContext(ctx, "screenshot request rejected",
			"status", resp.StatusCode,
			"body", string(detail))
		return fmt.Errorf("%w: screenshot service returned status %d", ErrRenderFailed, resp.StatusCode)
	}

	if err := filestore.WriteExclusive(imagePath, resp.Body); err != nil {
		return fmt.Errorf("%w: write image: %w", ErrRenderFailed, err)
	}

	g.logger.DebugContext(ctx, "html rendered",
		"image", imagePath,
		"width", width,
		"duration_ms", time.Since(start).Milliseconds())
	return nil
}

// screenshotForm builds the multipart body of a Chromium screenshot request.
// The document must be named index.html.
func screenshotForm(html []byte, width int) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile("files", "index.html")
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(html); err != nil {
		return nil, "", err
	}

	fields := [][2]string{
		{"width", strconv.Itoa(width)},
		{"format", "png"},
		{"optimizeForSpeed", "true"},
	}
	for _, f := range fields {
		if err := w.WriteField(f[0], f[1]); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}
