package mocks

import (
	"context"
	"os"
	"sync"
)

// PlaceholderImage is what MockRenderer writes when no behavior is set.
var PlaceholderImage = []byte("\x89PNG\r\n\x1a\nmock-image")

// RenderCall records one Render invocation
type RenderCall struct {
	HTMLPath  string
	ImagePath string
	Width     int
}

// MockRenderer implements service.Renderer for testing.
//
// Without RenderFn or Err it writes Image (or PlaceholderImage) to the image
// path, so downstream stages find a file.
type MockRenderer struct {
	RenderFn func(ctx context.Context, htmlPath, imagePath string, width int) error

	Image []byte
	Err   error

	mu    sync.Mutex
	calls []RenderCall
}

// Render implements the service.Renderer interface
func (m *MockRenderer) Render(ctx context.Context, htmlPath, imagePath string, width int) error {
	m.mu.Lock()
	m.calls = append(m.calls, RenderCall{HTMLPath: htmlPath, ImagePath: imagePath, Width: width})
	m.mu.Unlock()

	if m.RenderFn != nil {
		return m.RenderFn(ctx, htmlPath, imagePath, width)
	}
	if m.Err != nil {
		return m.Err
	}

	img := m.Image
	if img == nil {
		img = PlaceholderImage
	}
	return os.WriteFile(imagePath, img, 0o644)
}

// Calls returns a copy of every Render call, in order
func (m *MockRenderer) Calls() []RenderCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]RenderCall(nil), m.calls...)
}
