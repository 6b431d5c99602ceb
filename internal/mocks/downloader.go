package mocks

import (
	"context"
	"sync"

	"github.com/smart-card/smartcard-api/internal/domain"
)

// MockDownloader implements api.Downloader for testing. Paths maps a kind to
// a raw ID to a file path; IDs without an entry yield ErrArtifactNotFound.
type MockDownloader struct {
	ResolveFn func(ctx context.Context, kind domain.ArtifactKind, rawID string) (string, error)

	Paths map[domain.ArtifactKind]map[string]string

	mu    sync.Mutex
	calls []DownloadCall
}

// DownloadCall records one lookup made through a MockDownloader.
type DownloadCall struct {
	Kind  domain.ArtifactKind
	RawID string
}

// HTMLPath implements the api.Downloader interface
func (m *MockDownloader) HTMLPath(ctx context.Context, rawID string) (string, error) {
	return m.resolve(ctx, domain.KindHTML, rawID)
}

// ImagePath implements the api.Downloader interface
func (m *MockDownloader) ImagePath(ctx context.Context, rawID string) (string, error) {
	return m.resolve(ctx, domain.KindImage, rawID)
}

// CardPath implements the api.Downloader interface
func (m *MockDownloader) CardPath(ctx context.Context, rawID string) (string, error) {
	return m.resolve(ctx, domain.KindCard, rawID)
}

// Calls returns the lookups made so far
func (m *MockDownloader) Calls() []DownloadCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]DownloadCall(nil), m.calls...)
}

func (m *MockDownloader) resolve(ctx context.Context, kind domain.ArtifactKind, rawID string) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, DownloadCall{Kind: kind, RawID: rawID})
	m.mu.Unlock()

	if m.ResolveFn != nil {
		return m.ResolveFn(ctx, kind, rawID)
	}
	if path, ok := m.Paths[kind][rawID]; ok {
		return path, nil
	}
	return "", domain.ErrArtifactNotFound
}
