// Package ollama provides a generation.Invoker backed by a local or remote
// Ollama server through its native chat API.
package ollama

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"
	"github.com/smart-card/smartcard-api/internal/config"
	"github.com/smart-card/smartcard-api/internal/generation"
)

// Invoker implements generation.Invoker with the ollama api client.
type Invoker struct {
	client *api.Client
	logger *slog.Logger
}

// NewInvoker creates a client for cfg.OllamaHost. A trailing "/v1" (the
// OpenAI-compatible prefix) is stripped because the native API lives at the root.
func NewInvoker(logger *slog.Logger, cfg config.LLMConfig) (*Invoker, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if cfg.OllamaHost == "" {
		return nil, fmt.Errorf("%w: ollama host cannot be empty", generation.ErrInvalidConfig)
	}

	base := strings.TrimSuffix(strings.TrimSuffix(cfg.OllamaHost, "/"), "/v1")
	parsed, err := url.Parse(base)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("%w: invalid ollama host %q", generation.ErrInvalidConfig, cfg.OllamaHost)
	}

	httpClient := &http.Client{Timeout: time.Duration(cfg.RequestTimeoutSeconds) * time.Second}

	return &Invoker{
		client: api.NewClient(parsed, httpClient),
		logger: logger.With("component", "ollama_invoker", "host", base),
	}, nil
}

// Invoke sends a non-streaming chat request and returns the assistant message.
func (i *Invoker) Invoke(ctx context.Context, req generation.Request) (string, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return "", generation.ErrEmptyPrompt
	}

	messages := make([]api.Message, 0, 2)
	if req.SystemPrompt != "" {
		messages = append(messages, api.Message{Role: "system", Content: req.SystemPrompt})
	}
	messages = append(messages, api.Message{Role: "user", Content: req.Prompt})

	stream := false
	chatReq := &api.ChatRequest{
		Model:    req.Model,
		Messages: messages,
		Stream:   &stream,
		Options: map[string]interface{}{
			"temperature": req.Temperature,
		},
	}

	start := time.Now()
	i.logger.InfoContext(ctx, "sending chat request",
		"model", req.Model,
		"prompt_length", len(req.Prompt))

	var content strings.Builder
	var last api.ChatResponse
	err := i.client.Chat(ctx, chatReq, func(r api.ChatResponse) error {
		content.WriteString(r.Message.Content)
		last = r
		return nil
	})
	duration := time.Since(start)
	if err != nil {
		i.logger.ErrorContext(ctx, "ollama chat failed",
			"model", req.Model,
			"duration_ms", duration.Milliseconds(),
			"error", err)
		return "", fmt.Errorf("ollama chat: %w", err)
	}

	text := content.String()
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: empty message", generation.ErrInvalidResponse)
	}

	i.logger.InfoContext(ctx, "ollama chat completed",
		"model", req.Model,
		"duration_ms", duration.Milliseconds(),
		"response_length", len(text),
		"prompt_tokens", last.PromptEvalCount,
		"completion_tokens", last.EvalCount)

	return text, nil
}
