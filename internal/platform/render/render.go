// Package render turns an HTML file into a PNG screenshot.
//
// Two backends are provided: Gotenberg, a containerised Chromium exposing
// an HTTP screenshot route, and Command, which runs a local
// wkhtmltoimage-compatible binary. Both write their output through
// filestore.WriteExclusive, so an image path never holds a partial file.
package render

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/smart-card/smartcard-api/internal/config"
)

// ErrRenderFailed wraps every backend failure.
var ErrRenderFailed = errors.New("render failed")

// Renderer produces a raster image of an HTML document.
type Renderer interface {
	// Render reads htmlPath and writes a PNG of the given viewport width to
	// imagePath. A nil error means the image is complete.
	Render(ctx context.Context, htmlPath, imagePath string, width int) error
}

// New builds the renderer selected by cfg.Backend.
func New(cfg config.RenderConfig, logger *slog.Logger) (Renderer, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second

	switch cfg.Backend {
	case "gotenberg":
		return NewGotenberg(cfg.URL, timeout, logger)
	case "command":
		return NewCommand(cfg.Command, timeout, logger)
	default:
		return nil, fmt.Errorf("unknown render backend %q", cfg.Backend)
	}
}
