package mocks

import (
	"context"
	"sync"
)

// MockTaskRunner implements service.TaskRunner by running fn on the calling
// goroutine, unless RunFn overrides it.
type MockTaskRunner struct {
	RunFn func(ctx context.Context, taskType string, fn func(ctx context.Context) error) error

	mu        sync.Mutex
	taskTypes []string
}

// Run implements the service.TaskRunner interface
func (m *MockTaskRunner) Run(ctx context.Context, taskType string, fn func(ctx context.Context) error) error {
	m.mu.Lock()
	m.taskTypes = append(m.taskTypes, taskType)
	m.mu.Unlock()

	if m.RunFn != nil {
		return m.RunFn(ctx, taskType, fn)
	}
	return fn(ctx)
}

// TaskTypes returns the task types submitted so far, in order
func (m *MockTaskRunner) TaskTypes() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.taskTypes...)
}
