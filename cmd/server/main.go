// Package main implements the entry point for the smart card API server,
// which turns prompts, markdown or pasted HTML into rendered card images.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/smart-card/smartcard-api/internal/config"
	"github.com/smart-card/smartcard-api/internal/platform/logger"
)

func main() {
	if err := run(context.Background()); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

// run loads configuration, builds the application and serves until a
// shutdown signal arrives.
func run(ctx context.Context) error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	l, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	slog.Info("Server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"output_dir", cfg.Output.Dir,
		"render_backend", cfg.Render.Backend,
		"default_model", cfg.LLM.DefaultModel)

	app, err := newApplication(ctx, cfg, l, prometheus.NewRegistry())
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	return app.Run(ctx)
}
