package mocks

import (
	"context"
	"sync"

	"github.com/smart-card/smartcard-api/internal/events"
)

// MockEventEmitter implements events.EventEmitter and records every event
type MockEventEmitter struct {
	// Err is returned from every EmitEvent call when set
	Err error

	mu     sync.Mutex
	events []*events.StageEvent
}

// EmitEvent implements the events.EventEmitter interface
func (m *MockEventEmitter) EmitEvent(ctx context.Context, event *events.StageEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return m.Err
}

// Events returns a copy of the recorded events
func (m *MockEventEmitter) Events() []*events.StageEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*events.StageEvent(nil), m.events...)
}

// EventsForStage returns the recorded events of one stage
func (m *MockEventEmitter) EventsForStage(stage events.Stage) []*events.StageEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*events.StageEvent
	for _, e := range m.events {
		if e.Stage == stage {
			out = append(out, e)
		}
	}
	return out
}
