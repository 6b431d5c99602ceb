package gemini

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/smart-card/smartcard-api/internal/config"
	"github.com/smart-card/smartcard-api/internal/generation"
)

// validateConfig checks the settings the Gemini backend needs before a
// client is created.
func validateConfig(ctx context.Context, logger *slog.Logger, cfg config.LLMConfig) error {
	if cfg.GeminiAPIKey == "" {
		logger.ErrorContext(ctx, "Missing Gemini API key",
			"error", "GeminiAPIKey is empty")
		return fmt.Errorf("%w: gemini API key cannot be empty", generation.ErrInvalidConfig)
	}

	if cfg.RequestTimeoutSeconds <= 0 {
		logger.WarnContext(ctx, "Invalid RequestTimeoutSeconds value",
			"value", cfg.RequestTimeoutSeconds,
			"action", "requests bounded by caller context only")
	}

	return nil
}
