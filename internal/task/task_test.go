package task

import (
	"context"
	"io"
	"log/slog"

	"github.com/google/uuid"
)

// mockTask is a Task whose behavior is set per test.
type mockTask struct {
	id     uuid.UUID
	status Status
	execFn func(ctx context.Context) error
}

func newMockTask() *mockTask {
	return &mockTask{id: uuid.New(), status: StatusPending}
}

func (m *mockTask) ID() uuid.UUID { return m.id }
func (m *mockTask) Type() string { return "mock" }
func (m *mockTask) Status() Status { return m.status }

func (m *mockTask) Execute(ctx context.Context) error {
	if m.execFn == nil {
		return nil
	}
	return m.execFn(ctx)
}

func setupTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))
}
