package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Stage names one step of the generation pipeline.
type Stage string

// Pipeline stages in execution order.
const (
	StageCompose     Stage = "compose"
	StageInvoke      Stage = "invoke"
	StageExtractHTML Stage = "extract_html"
	StagePersist     Stage = "persist"
	StageRender      Stage = "render"
	StageExtractCard Stage = "extract_card"
)

// Outcome is the result of a stage.
type Outcome string

// Stage outcomes. OutcomeFallback is only reported by card extraction.
const (
	OutcomeSuccess  Outcome = "success"
	OutcomeFailure  Outcome = "failure"
	OutcomeFallback Outcome = "fallback"
)

// StageEvent reports that one pipeline stage finished for one artifact ID.
type StageEvent struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	// FileID is the artifact ID the stage worked on, primary or derived
	FileID string `json:"file_id"`

	Stage   Stage   `json:"stage"`
	Outcome Outcome `json:"outcome"`

	// Model is set for stages that ran against a specific model
	Model string `json:"model,omitempty"`

	Duration time.Duration `json:"duration"`

	// CreatedAt is the timestamp when the event was created
	CreatedAt time.Time `json:"created_at"`
}

// NewStageEvent creates a StageEvent stamped with a fresh ID and the current time.
func NewStageEvent(fileID string, stage Stage, outcome Outcome, duration time.Duration) *StageEvent {
	return &StageEvent{
		ID:        uuid.New(),
		FileID:    fileID,
		Stage:     stage,
		Outcome:   outcome,
		Duration:  duration,
		CreatedAt: time.Now(),
	}
}

// WithModel sets the model and returns the event for chaining.
func (e *StageEvent) WithModel(model string) *StageEvent {
	e.Model = model
	return e
}

// EventHandler defines an interface for components that can handle events.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	// Returns an error if the event cannot be handled successfully.
	HandleEvent(ctx context.Context, event *StageEvent) error
}

// HandlerFunc adapts a function to the EventHandler interface.
type HandlerFunc func(ctx context.Context, event *StageEvent) error

// HandleEvent calls f(ctx, event).
func (f HandlerFunc) HandleEvent(ctx context.Context, event *StageEvent) error {
	return f(ctx, event)
}

// EventEmitter defines an interface for components that can emit events.
// This allows services to publish events without direct knowledge of handlers.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	EmitEvent(ctx context.Context, event *StageEvent) error
}
