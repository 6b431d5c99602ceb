package mocks

import (
	"context"
	"sync"
)

// MockSummarizer implements api.Summarizer for testing
type MockSummarizer struct {
	SummarizeFn func(ctx context.Context, content, model string) (string, error)

	Summary string
	Err     error

	mu     sync.Mutex
	models []string
}

// Summarize implements the api.Summarizer interface
func (m *MockSummarizer) Summarize(ctx context.Context, content, model string) (string, error) {
	m.mu.Lock()
	m.models = append(m.models, model)
	m.mu.Unlock()

	if m.SummarizeFn != nil {
		return m.SummarizeFn(ctx, content, model)
	}
	return m.Summary, m.Err
}

// Models returns the model argument of each call so far
func (m *MockSummarizer) Models() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.models...)
}
