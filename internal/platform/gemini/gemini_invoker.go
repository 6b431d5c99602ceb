package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/smart-card/smartcard-api/internal/config"
	"github.com/smart-card/smartcard-api/internal/generation"
	"google.golang.org/genai"
)

// ContentGenerator is the subset of the genai Models service used by the
// invoker. *genai.Models satisfies it.
type ContentGenerator interface {
	GenerateContent(
		ctx context.Context,
		model string,
		contents []*genai.Content,
		config *genai.GenerateContentConfig,
	) (*genai.GenerateContentResponse, error)
}

// Invoker implements generation.Invoker over the Gemini API.
type Invoker struct {
	logger  *slog.Logger
	models  ContentGenerator
	timeout time.Duration
}

// NewInvoker validates cfg and creates a Gemini API client.
func NewInvoker(ctx context.Context, logger *slog.Logger, cfg config.LLMConfig) (*Invoker, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	logger = logger.With("component", "gemini_invoker")

	if err := validateConfig(ctx, logger, cfg); err != nil {
		return nil, err
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v", generation.ErrInvalidConfig, err)
	}

	inv := NewInvokerWithClient(logger, client.Models)
	inv.timeout = time.Duration(cfg.RequestTimeoutSeconds) * time.Second
	return inv, nil
}

// NewInvokerWithClient builds an Invoker around an existing content generator.
func NewInvokerWithClient(logger *slog.Logger, models ContentGenerator) *Invoker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Invoker{logger: logger, models: models}
}

// Invoke sends the request to Gemini and returns the concatenated text of
// the first candidate.
func (i *Invoker) Invoke(ctx context.Context, req generation.Request) (string, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return "", generation.ErrEmptyPrompt
	}

	if i.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, i.timeout)
		defer cancel()
	}

	temperature := float32(req.Temperature)
	cfg := &genai.GenerateContentConfig{Temperature: &temperature}
	if req.SystemPrompt != "" {
		cfg.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: req.SystemPrompt}},
		}
	}

	i.logger.InfoContext(ctx, "Making Gemini API call",
		"model", req.Model,
		"prompt_length", len(req.Prompt))

	start := time.Now()
	resp, err := i.models.GenerateContent(ctx, req.Model, genai.Text(req.Prompt), cfg)
	if err != nil {
		i.logger.ErrorContext(ctx, "Gemini API call error",
			"model", req.Model,
			"error", err)
		return "", fmt.Errorf("gemini generate content: %w", err)
	}

	text, err := responseText(resp)
	if err != nil {
		i.logger.WarnContext(ctx, "Gemini returned no usable content",
			"model", req.Model,
			"error", err)
		return "", err
	}

	i.logger.InfoContext(ctx, "Gemini API call successful",
		"model", req.Model,
		"response_length", len(text),
		"duration_ms", time.Since(start).Milliseconds())

	return text, nil
}

// responseText validates a response and joins the text parts of its first
// candidate. Thought parts are skipped.
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	switch {
	case resp == nil:
		return "", fmt.Errorf("%w: nil response", generation.ErrInvalidResponse)
	case len(resp.Candidates) == 0:
		return "", fmt.Errorf("%w: no content generated", generation.ErrInvalidResponse)
	case resp.Candidates[0].FinishReason == genai.FinishReasonSafety:
		return "", fmt.Errorf("%w: finish reason %s", generation.ErrContentBlocked, resp.Candidates[0].FinishReason)
	case resp.Candidates[0].Content == nil:
		return "", fmt.Errorf("%w: empty content in response", generation.ErrInvalidResponse)
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part == nil || part.Thought {
			continue
		}
		b.WriteString(part.Text)
	}

	if strings.TrimSpace(b.String()) == "" {
		return "", fmt.Errorf("%w: response has no text", generation.ErrInvalidResponse)
	}
	return b.String(), nil
}
