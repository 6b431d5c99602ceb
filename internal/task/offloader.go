package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrPoolStopped is returned when the worker pool stops before a submitted
// task runs.
var ErrPoolStopped = errors.New("worker pool stopped")

// funcTask adapts a function to Task and signals completion on done.
type funcTask struct {
	id       uuid.UUID
	taskType string
	ctx      context.Context
	fn       func(ctx context.Context) error

	mu     sync.Mutex
	status Status
	err    error
	done   chan struct{}
}

func newFuncTask(ctx context.Context, taskType string, fn func(ctx context.Context) error) *funcTask {
	return &funcTask{
		id:       uuid.New(),
		taskType: taskType,
		ctx:      ctx,
		fn:       fn,
		status:   StatusPending,
		done:     make(chan struct{}),
	}
}

func (t *funcTask) ID() uuid.UUID { return t.id }
func (t *funcTask) Type() string { return t.taskType }

func (t *funcTask) Status() Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

// Execute runs fn with the submitter's context; the worker context is only
// used to skip tasks whose submitter has already given up.
func (t *funcTask) Execute(_ context.Context) (err error) {
	t.setStatus(StatusRunning)
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task panicked: %v", r)
		}
		t.finish(err)
	}()

	if err := t.ctx.Err(); err != nil {
		return err
	}
	return t.fn(t.ctx)
}

func (t *funcTask) setStatus(s Status) {
	t.mu.Lock()
	t.status = s
	t.mu.Unlock()
}

func (t *funcTask) finish(err error) {
	t.mu.Lock()
	t.err = err
	if err != nil {
		t.status = StatusFailed
	} else {
		t.status = StatusDone
	}
	t.mu.Unlock()
	close(t.done)
}

func (t *funcTask) result() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

// Offloader runs functions on the worker pool and waits for them, giving
// callers a synchronous API over bounded concurrency.
type Offloader struct {
	queue   Sink
	stopped <-chan struct{}
	logger  *slog.Logger
}

// NewOffloader returns an Offloader that submits to queue. stopped should be
// the pool's Done channel, so waiting callers are released on shutdown.
func NewOffloader(queue Sink, stopped <-chan struct{}, logger *slog.Logger) *Offloader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Offloader{
		queue:   queue,
		stopped: stopped,
		logger:  logger.With("component", "offloader"),
	}
}

// Run submits fn as a task of the given type and blocks until it finishes,
// ctx is done, or the pool stops. fn receives ctx.
func (o *Offloader) Run(ctx context.Context, taskType string, fn func(ctx context.Context) error) error {
	t := newFuncTask(ctx, taskType, fn)

	start := time.Now()
	if err := o.queue.EnqueueContext(ctx, t); err != nil {
		return fmt.Errorf("submit %s task: %w", taskType, err)
	}

	select {
	case <-t.done:
		o.logger.DebugContext(ctx, "offloaded task finished",
			"task_id", t.ID(),
			"task_type", taskType,
			"status", t.Status(),
			"duration_ms", time.Since(start).Milliseconds())
		return t.result()
	case <-ctx.Done():
		return ctx.Err()
	case <-o.stopped:
		select {
		case <-t.done:
			return t.result()
		default:
			return ErrPoolStopped
		}
	}
}

// Runner runs fn off the calling goroutine and waits for it. *Offloader
// implements it.
type Runner interface {
	Run(ctx context.Context, taskType string, fn func(ctx context.Context) error) error
}

// Submit runs fn through r and returns its value.
func Submit[T any](ctx context.Context, r Runner, taskType string, fn func(ctx context.Context) (T, error)) (T, error) {
	var value T
	err := r.Run(ctx, taskType, func(ctx context.Context) error {
		v, err := fn(ctx)
		value = v
		return err
	})
	if err != nil {
		// value may still be written by an abandoned task.
		var zero T
		return zero, err
	}
	return value, nil
}
