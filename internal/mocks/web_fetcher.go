package mocks

import (
	"context"
	"sync"
)

// MockWebFetcher implements service.WebFetcher and api.Fetcher for testing
type MockWebFetcher struct {
	FetchFn func(ctx context.Context, url string) (string, error)

	Content string
	Err     error

	mu    sync.Mutex
	count int
}

// Fetch implements the service.WebFetcher interface
func (m *MockWebFetcher) Fetch(ctx context.Context, url string) (string, error) {
	m.mu.Lock()
	m.count++
	m.mu.Unlock()

	if m.FetchFn != nil {
		return m.FetchFn(ctx, url)
	}
	return m.Content, m.Err
}

// Calls returns the number of Fetch calls so far
func (m *MockWebFetcher) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.count
}
