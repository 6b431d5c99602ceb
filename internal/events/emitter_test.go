package events

import (
	"context"
	"errors"
	"testing"

	"github.com/smart-card/smartcard-api/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmitWithoutHandlers(t *testing.T) {
	emitter := NewInMemoryEventEmitter(nil)
	assert.NoError(t, emitter.EmitEvent(context.Background(), NewStageEvent("abc", StagePersist, OutcomeSuccess, 0)))
}

func TestEmitDeliversInRegistrationOrder(t *testing.T) {
	l, _ := logger.NewTestLogger()
	emitter := NewInMemoryEventEmitter(l)

	var order []string
	record := func(name string) EventHandler {
		return HandlerFunc(func(_ context.Context, e *StageEvent) error {
			order = append(order, name+":"+string(e.Stage))
			return nil
		})
	}
	emitter.RegisterHandler(record("metrics"))
	emitter.RegisterHandler(record("audit"))

	event := NewStageEvent("abc", StageExtractCard, OutcomeFallback, 0)
	require.NoError(t, emitter.EmitEvent(context.Background(), event))
	assert.Equal(t, []string{"metrics:extract_card", "audit:extract_card"}, order)
}

func TestEmitContinuesPastFailingHandlers(t *testing.T) {
	l, logs := logger.NewTestLogger()
	emitter := NewInMemoryEventEmitter(l)

	errFirst := errors.New("first broke")
	errThird := errors.New("third broke")
	healthy := &MockEventHandler{}

	emitter.RegisterHandler(&MockEventHandler{HandlerError: errFirst})
	emitter.RegisterHandler(healthy)
	emitter.RegisterHandler(&MockEventHandler{HandlerError: errThird})

	err := emitter.EmitEvent(context.Background(), NewStageEvent("abc", StageRender, OutcomeFailure, 0))
	require.Error(t, err)
	assert.ErrorIs(t, err, errFirst)
	assert.ErrorIs(t, err, errThird)
	assert.Contains(t, err.Error(), "handler 2")

	assert.Equal(t, 1, healthy.HandledCount)
	assert.Len(t, logs.EntriesWithMessage("event handler failed"), 2)
}
