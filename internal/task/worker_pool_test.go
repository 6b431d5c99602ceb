package task

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewWorkerPool(t *testing.T) {
	logger := setupTestLogger()
	queue := NewTaskQueue(10, logger)

	pool := NewWorkerPool(queue, WorkerPoolConfig{WorkerCount: 5}, logger)
	assert.Equal(t, 5, pool.workers)
	assert.Nil(t, pool.onError)

	// Invalid worker counts default to 1
	pool = NewWorkerPool(queue, WorkerPoolConfig{WorkerCount: 0}, logger)
	assert.Equal(t, 1, pool.workers)

	pool = NewWorkerPool(queue, WorkerPoolConfig{WorkerCount: -5}, logger)
	assert.Equal(t, 1, pool.workers)

	assert.Equal(t, 2, DefaultWorkerPoolConfig().WorkerCount)
}

func TestWorkerPool_ProcessTasks(t *testing.T) {
	logger := setupTestLogger()
	queue := NewTaskQueue(10, logger)
	pool := NewWorkerPool(queue, WorkerPoolConfig{WorkerCount: 2}, logger)

	var (
		mu     sync.Mutex
		failed []error
	)
	pool.SetErrorHandler(func(task Task, err error) {
		mu.Lock()
		failed = append(failed, err)
		mu.Unlock()
	})
	pool.Start()
	defer pool.Stop()

	var wg sync.WaitGroup
	wg.Add(3)

	ok := newMockTask()
	ok.execFn = func(context.Context) error { wg.Done(); return nil }

	bad := newMockTask()
	bad.execFn = func(context.Context) error { wg.Done(); return errors.New("boom") }

	panicky := newMockTask()
	panicky.execFn = func(context.Context) error { wg.Done(); panic("kaboom") }

	assert.NoError(t, queue.Enqueue(ok))
	assert.NoError(t, queue.Enqueue(bad))
	assert.NoError(t, queue.Enqueue(panicky))

	waitTimeout(t, &wg, time.Second)

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(failed) == 2
	}, time.Second, 10*time.Millisecond)
}

func TestWorkerPool_StopIsIdempotent(t *testing.T) {
	logger := setupTestLogger()
	pool := NewWorkerPool(NewTaskQueue(1, logger), DefaultWorkerPoolConfig(), logger)

	pool.Start()
	pool.Start()
	pool.Stop()
	assert.NotPanics(t, pool.Stop)

	select {
	case <-pool.Done():
	default:
		t.Fatal("Done should be closed after Stop")
	}
}

func TestWorkerPool_ExitsWhenQueueClosed(t *testing.T) {
	logger := setupTestLogger()
	queue := NewTaskQueue(1, logger)
	pool := NewWorkerPool(queue, WorkerPoolConfig{WorkerCount: 3}, logger)
	pool.Start()

	queue.Close()

	finished := make(chan struct{})
	go func() {
		pool.wg.Wait()
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("workers did not exit after the queue closed")
	}
	pool.Stop()
}

func waitTimeout(t *testing.T, wg *sync.WaitGroup, d time.Duration) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(d):
		t.Fatal("timed out waiting for tasks")
	}
}
