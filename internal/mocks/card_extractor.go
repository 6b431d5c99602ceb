package mocks

import (
	"context"
	"os"
	"sync"
)

// PlaceholderCard is what MockCardExtractor writes on success.
var PlaceholderCard = []byte("\x89PNG\r\n\x1a\nmock-card")

// ExtractCall records one ExtractCard invocation
type ExtractCall struct {
	ImagePath string
	CardPath  string
	MinArea   int
	Debug     bool
}

// MockCardExtractor implements service.CardExtractor for testing.
//
// Without ExtractCardFn or Err it writes PlaceholderCard to the card path.
type MockCardExtractor struct {
	ExtractCardFn func(ctx context.Context, imagePath, cardPath string, minArea int, debug bool) error

	Err error

	mu    sync.Mutex
	calls []ExtractCall
}

// ExtractCard implements the service.CardExtractor interface
func (m *MockCardExtractor) ExtractCard(ctx context.Context, imagePath, cardPath string, minArea int, debug bool) error {
	m.mu.Lock()
	m.calls = append(m.calls, ExtractCall{ImagePath: imagePath, CardPath: cardPath, MinArea: minArea, Debug: debug})
	m.mu.Unlock()

	if m.ExtractCardFn != nil {
		return m.ExtractCardFn(ctx, imagePath, cardPath, minArea, debug)
	}
	if m.Err != nil {
		return m.Err
	}
	return os.WriteFile(cardPath, PlaceholderCard, 0o644)
}

// Calls returns a copy of every ExtractCard call, in order
func (m *MockCardExtractor) Calls() []ExtractCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ExtractCall(nil), m.calls...)
}
