package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

var (
	ErrQueueClosed = errors.New("task queue is closed")
	ErrQueueFull   = errors.New("task queue is full")
)

// TaskQueue is a bounded channel of tasks. It is both a Source and a Sink.
type TaskQueue struct {
	ch     chan Task
	logger *slog.Logger

	// Senders hold the read lock; Close takes the write lock, so the channel
	// is never closed under a blocked send.
	mu     sync.RWMutex
	closed bool
}

// NewTaskQueue returns a queue holding at most capacity pending tasks.
func NewTaskQueue(capacity int, logger *slog.Logger) *TaskQueue {
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskQueue{
		ch:     make(chan Task, capacity),
		logger: logger.With("component", "task_queue"),
	}
}

func (q *TaskQueue) Enqueue(task Task) error {
	return q.send(context.Background(), false, task)
}

// EnqueueContext blocks while the queue is full. Close waits for it to return.
func (q *TaskQueue) EnqueueContext(ctx context.Context, task Task) error {
	return q.send(ctx, true, task)
}

// send delivers task. Without wait it fails fast on a full queue; with wait
// it gives up when ctx is done.
func (q *TaskQueue) send(ctx context.Context, wait bool, task Task) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return ErrQueueClosed
	}

	if !wait {
		select {
		case q.ch <- task:
		default:
			return fmt.Errorf("%w: capacity %d", ErrQueueFull, cap(q.ch))
		}
	} else {
		select {
		case q.ch <- task:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	q.logger.Debug("task enqueued",
		"task_id", task.ID(),
		"task_type", task.Type(),
		"queue_len", len(q.ch),
		"queue_cap", cap(q.ch))
	return nil
}

func (q *TaskQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	close(q.ch)
	q.logger.Info("task queue closed")
}

func (q *TaskQueue) Tasks() <-chan Task {
	return q.ch
}
