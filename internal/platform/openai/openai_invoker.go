// Package openai provides a generation.Invoker for OpenAI-compatible chat
// completion endpoints. The default deployment points it at Volcengine Ark,
// which serves the DeepSeek and Doubao models under the OpenAI wire format.
package openai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strings"
	"time"

	openaigo "github.com/sashabaranov/go-openai"
	"github.com/smart-card/smartcard-api/internal/config"
	"github.com/smart-card/smartcard-api/internal/generation"
)

// Invoker implements generation.Invoker with go-openai.
type Invoker struct {
	client *openaigo.Client
	logger *slog.Logger
}

// NewInvoker creates a client for cfg.ArkBaseURL authenticated with
// cfg.ArkAPIKey.
func NewInvoker(logger *slog.Logger, cfg config.LLMConfig) (*Invoker, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if cfg.ArkAPIKey == "" {
		return nil, fmt.Errorf("%w: ark API key cannot be empty", generation.ErrInvalidConfig)
	}
	if cfg.ArkBaseURL == "" {
		return nil, fmt.Errorf("%w: ark base URL cannot be empty", generation.ErrInvalidConfig)
	}

	clientConfig := openaigo.DefaultConfig(cfg.ArkAPIKey)
	clientConfig.BaseURL = strings.TrimSuffix(cfg.ArkBaseURL, "/")
	clientConfig.HTTPClient = &http.Client{
		Timeout: time.Duration(cfg.RequestTimeoutSeconds) * time.Second,
	}

	return &Invoker{
		client: openaigo.NewClientWithConfig(clientConfig),
		logger: logger.With("component", "openai_invoker", "base_url", clientConfig.BaseURL),
	}, nil
}

// Invoke sends one non-streaming chat completion and returns the content of
// the first choice.
func (i *Invoker) Invoke(ctx context.Context, req generation.Request) (string, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return "", generation.ErrEmptyPrompt
	}

	messages := make([]openaigo.ChatCompletionMessage, 0, 2)
	if req.SystemPrompt != "" {
		messages = append(messages, openaigo.ChatCompletionMessage{
			Role:    openaigo.ChatMessageRoleSystem,
			Content: req.SystemPrompt,
		})
	}
	messages = append(messages, openaigo.ChatCompletionMessage{
		Role:    openaigo.ChatMessageRoleUser,
		Content: req.Prompt,
	})

	start := time.Now()
	i.logger.InfoContext(ctx, "sending chat completion",
		"model", req.Model,
		"prompt_length", len(req.Prompt))

	resp, err := i.client.CreateChatCompletion(ctx, openaigo.ChatCompletionRequest{
		Model:       req.Model,
		Messages:    messages,
		Temperature: wireTemperature(req.Temperature),
	})
	duration := time.Since(start)
	if err != nil {
		i.logger.ErrorContext(ctx, "chat completion failed",
			"model", req.Model,
			"duration_ms", duration.Milliseconds(),
			"error", err)
		return "", fmt.Errorf("chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices returned", generation.ErrInvalidResponse)
	}
	choice := resp.Choices[0]
	if choice.FinishReason == openaigo.FinishReasonContentFilter {
		return "", fmt.Errorf("%w: finish reason %s", generation.ErrContentBlocked, choice.FinishReason)
	}
	if strings.TrimSpace(choice.Message.Content) == "" {
		return "", fmt.Errorf("%w: empty completion", generation.ErrInvalidResponse)
	}

	i.logger.InfoContext(ctx, "chat completion received",
		"model", req.Model,
		"duration_ms", duration.Milliseconds(),
		"response_length", len(choice.Message.Content),
		"prompt_tokens", resp.Usage.PromptTokens,
		"completion_tokens", resp.Usage.CompletionTokens)

	return choice.Message.Content, nil
}

// wireTemperature converts t for the request body. go-openai omits a zero
// temperature, which the provider reads as its own default, so zero is sent
// as the smallest positive float32 instead.
func wireTemperature(t float64) float32 {
	if t == 0 {
		return math.SmallestNonzeroFloat32
	}
	return float32(t)
}
