package task

import (
	"context"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a Task.
type Status string

const (
	StatusPending Status = "pending"
	StatusRunning Status = "running"
	StatusDone    Status = "done"
	StatusFailed  Status = "failed"
)

// Task types label offloaded pipeline stages in worker logs.
const (
	TaskTypeInvoke      = "invoke_model"
	TaskTypeRender      = "render_html"
	TaskTypeExtractCard = "extract_card"
)

// Task is one unit of work executed by a WorkerPool.
type Task interface {
	ID() uuid.UUID
	Type() string
	Status() Status
	Execute(ctx context.Context) error
}

// Source is the consuming side of a queue.
type Source interface {
	// Tasks is closed once the queue is closed and drained.
	Tasks() <-chan Task
}

// Sink is the producing side of a queue.
type Sink interface {
	// Enqueue fails with ErrQueueFull instead of waiting for capacity.
	Enqueue(task Task) error
	// EnqueueContext waits for capacity until ctx is done.
	EnqueueContext(ctx context.Context, task Task) error
	Close()
}
