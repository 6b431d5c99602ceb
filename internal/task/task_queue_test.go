package task

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTaskQueue(t *testing.T) {
	queue := NewTaskQueue(10, setupTestLogger())

	assert.NotNil(t, queue)
	assert.Equal(t, 10, cap(queue.ch))
	assert.False(t, queue.closed)
}

func TestEnqueue(t *testing.T) {
	queue := NewTaskQueue(2, setupTestLogger())

	task1 := newMockTask()
	assert.NoError(t, queue.Enqueue(task1))
	assert.NoError(t, queue.Enqueue(newMockTask()))

	// Queue is full now
	err := queue.Enqueue(newMockTask())
	assert.True(t, errors.Is(err, ErrQueueFull))

	received := <-queue.Tasks()
	assert.Equal(t, task1.ID(), received.ID())
}

func TestEnqueueContextWaitsForCapacity(t *testing.T) {
	queue := NewTaskQueue(1, setupTestLogger())
	require.NoError(t, queue.Enqueue(newMockTask()))

	done := make(chan error, 1)
	go func() {
		done <- queue.EnqueueContext(context.Background(), newMockTask())
	}()

	select {
	case <-done:
		t.Fatal("EnqueueContext should block while the queue is full")
	case <-time.After(50 * time.Millisecond):
	}

	<-queue.Tasks()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("EnqueueContext did not proceed after capacity freed")
	}
}

func TestEnqueueContextCancelled(t *testing.T) {
	queue := NewTaskQueue(1, setupTestLogger())
	require.NoError(t, queue.Enqueue(newMockTask()))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := queue.EnqueueContext(ctx, newMockTask())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestClose(t *testing.T) {
	queue := NewTaskQueue(2, setupTestLogger())

	queue.Close()
	assert.True(t, queue.closed)

	assert.ErrorIs(t, queue.Enqueue(newMockTask()), ErrQueueClosed)
	assert.ErrorIs(t, queue.EnqueueContext(context.Background(), newMockTask()), ErrQueueClosed)

	// Closing twice should not panic
	assert.NotPanics(t, queue.Close)

	_, ok := <-queue.Tasks()
	assert.False(t, ok)
}
