package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/smart-card/smartcard-api/internal/domain"
	"github.com/smart-card/smartcard-api/internal/generation"
	"github.com/smart-card/smartcard-api/internal/task"
)

// SummaryService condenses text into markdown notes with one model call.
type SummaryService struct {
	invoker      generation.Invoker
	runner       TaskRunner
	defaultModel string
	temperature  float64
	logger       *slog.Logger
}

// NewSummaryService creates a SummaryService that calls defaultModel, unless
// a request names another, at the given temperature.
func NewSummaryService(
	invoker generation.Invoker,
	runner TaskRunner,
	defaultModel string,
	temperature float64,
	logger *slog.Logger,
) (*SummaryService, error) {
	if invoker == nil {
		return nil, nilDependency("invoker")
	}
	if runner == nil {
		return nil, nilDependency("runner")
	}
	if defaultModel == "" {
		return nil, fmt.Errorf("%w: default model", ErrNilDependency)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &SummaryService{
		invoker:      invoker,
		runner:       runner,
		defaultModel: defaultModel,
		temperature:  temperature,
		logger:       logger.With("component", "summary_service"),
	}, nil
}

// Summarize returns a trimmed summary of content. Empty content is
// domain.ErrMissingInput; any model failure is domain.ErrGenerationFailure.
func (s *SummaryService) Summarize(ctx context.Context, content, model string) (string, error) {
	prompt, err := generation.SummaryPrompt(content)
	if err != nil {
		return "", fmt.Errorf("%w: nothing to summarize", domain.ErrMissingInput)
	}

	model = strings.TrimSpace(model)
	if model == "" {
		model = s.defaultModel
	}

	summary, err := task.Submit(ctx, s.runner, task.TaskTypeInvoke, func(ctx context.Context) (string, error) {
		return s.invoker.Invoke(ctx, generation.Request{
			Model:        model,
			Prompt:       prompt,
			SystemPrompt: generation.SummarySystemPrompt(),
			Temperature:  s.temperature,
		})
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "summary generation failed",
			"model", model,
			"content_length", len(content),
			"error", err)
		return "", fmt.Errorf("%w: summarize with %s: %w", domain.ErrGenerationFailure, model, err)
	}

	s.logger.DebugContext(ctx, "summary generated",
		"model", model,
		"content_length", len(content),
		"summary_length", len(summary))
	return strings.TrimSpace(summary), nil
}
