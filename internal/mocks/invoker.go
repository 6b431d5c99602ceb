package mocks

import (
	"context"
	"sync"

	"github.com/smart-card/smartcard-api/internal/generation"
)

// MockInvoker implements generation.Invoker for testing
type MockInvoker struct {
	// InvokeFn allows test cases to mock the Invoke behavior
	InvokeFn func(ctx context.Context, req generation.Request) (string, error)

	// Default response values
	Response string
	Err      error

	mu       sync.Mutex
	requests []generation.Request
}

// Invoke implements the generation.Invoker interface
func (m *MockInvoker) Invoke(ctx context.Context, req generation.Request) (string, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()

	if m.InvokeFn != nil {
		return m.InvokeFn(ctx, req)
	}
	return m.Response, m.Err
}

// Calls returns the number of Invoke calls so far
func (m *MockInvoker) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

// Requests returns a copy of every request received, in call order
func (m *MockInvoker) Requests() []generation.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]generation.Request(nil), m.requests...)
}

// Reset clears the call tracking state
func (m *MockInvoker) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = nil
}

// NewMockInvokerWithResponse creates a MockInvoker that always returns response
func NewMockInvokerWithResponse(response string) *MockInvoker {
	return &MockInvoker{Response: response}
}

// NewMockInvokerWithError creates a MockInvoker that always fails with err
func NewMockInvokerWithError(err error) *MockInvoker {
	return &MockInvoker{Err: err}
}
