package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/smart-card/smartcard-api/internal/cardshell"
	"github.com/smart-card/smartcard-api/internal/config"
	"github.com/smart-card/smartcard-api/internal/events"
	"github.com/smart-card/smartcard-api/internal/generation"
	"github.com/smart-card/smartcard-api/internal/platform/cardcrop"
	"github.com/smart-card/smartcard-api/internal/platform/filestore"
	"github.com/smart-card/smartcard-api/internal/platform/gemini"
	"github.com/smart-card/smartcard-api/internal/platform/jina"
	"github.com/smart-card/smartcard-api/internal/platform/metrics"
	"github.com/smart-card/smartcard-api/internal/platform/ollama"
	"github.com/smart-card/smartcard-api/internal/platform/openai"
	"github.com/smart-card/smartcard-api/internal/platform/render"
	"github.com/smart-card/smartcard-api/internal/redact"
	"github.com/smart-card/smartcard-api/internal/service"
	"github.com/smart-card/smartcard-api/internal/task"
)

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger

	metrics *metrics.Metrics
	emitter *events.InMemoryEventEmitter

	// Task handling
	queue     *task.TaskQueue
	pool      *task.WorkerPool
	offloader *task.Offloader

	// Services
	generationService *service.GenerationService
	downloadService   *service.DownloadService
	summaryService    *service.SummaryService
	webFetchService   *service.WebFetchService
}

// newApplication creates a new application instance with all dependencies
// initialized and the worker pool started. Collectors are registered on reg.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger, reg *prometheus.Registry) (*application, error) {
	app := &application{
		config:  cfg,
		logger:  logger,
		metrics: metrics.New(reg),
	}

	artifacts, err := filestore.New(cfg.Output.Dir, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open artifact store: %w", err)
	}

	composer, err := loadComposer(cfg.LLM)
	if err != nil {
		return nil, err
	}

	shell, err := cardshell.New()
	if err != nil {
		return nil, fmt.Errorf("failed to load card shell templates: %w", err)
	}

	renderer, err := render.New(cfg.Render, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize renderer: %w", err)
	}
	logger.Info("Renderer initialized", "backend", cfg.Render.Backend, "width", cfg.Render.Width)

	invoker := app.setupModelRouter(ctx)

	var tokens generation.TokenCounter
	if cfg.LLM.CountTokens {
		counter, err := generation.NewTiktokenCounter(generation.DefaultEncoding)
		if err != nil {
			// Token counting is diagnostics only.
			logger.Warn("Token counting disabled", "error", err)
		} else {
			tokens = counter
		}
	}

	app.emitter = events.NewInMemoryEventEmitter(logger)
	app.emitter.RegisterHandler(app.metrics)

	app.startTaskProcessing()

	extractor := cardcrop.New(logger)

	app.generationService, err = service.NewGenerationService(service.GenerationDeps{
		Store:         artifacts,
		Invoker:       invoker,
		Composer:      composer,
		Shell:         shell,
		Renderer:      renderer,
		Extractor:     extractor,
		Runner:        app.offloader,
		Emitter:       app.emitter,
		Tokens:        tokens,
		TokenObserver: app.metrics,
		Logger:        logger,
	}, service.GenerationOptions{
		DefaultModel:       cfg.LLM.DefaultModel,
		DefaultTemperature: cfg.LLM.DefaultTemperature,
		RenderWidth:        cfg.Render.Width,
		EagerVariantRender: cfg.Generation.EagerVariantRender,
	})
	if err != nil {
		app.cleanup()
		return nil, fmt.Errorf("failed to create generation service: %w", err)
	}

	app.downloadService, err = service.NewDownloadService(service.DownloadDeps{
		Store:     artifacts,
		Renderer:  renderer,
		Extractor: extractor,
		Runner:    app.offloader,
		Emitter:   app.emitter,
		Observer:  app.metrics,
		Logger:    logger,
	}, cfg.Render.Width)
	if err != nil {
		app.cleanup()
		return nil, fmt.Errorf("failed to create download service: %w", err)
	}

	app.summaryService, err = service.NewSummaryService(
		invoker,
		app.offloader,
		cfg.LLM.DefaultModel,
		cfg.LLM.SummaryTemperature,
		logger,
	)
	if err != nil {
		app.cleanup()
		return nil, fmt.Errorf("failed to create summary service: %w", err)
	}

	fetcher, err := jina.NewClient(cfg.Jina, time.Duration(cfg.LLM.RequestTimeoutSeconds)*time.Second, logger)
	if err != nil {
		app.cleanup()
		return nil, fmt.Errorf("failed to create web fetch client: %w", err)
	}
	if cfg.Jina.APIKey == "" {
		logger.Warn("Jina API key not set, web fetch requests will fail")
	}

	app.webFetchService, err = service.NewWebFetchService(fetcher, logger)
	if err != nil {
		app.cleanup()
		return nil, fmt.Errorf("failed to create web fetch service: %w", err)
	}

	logger.Info("Application initialized successfully")
	return app, nil
}

func loadComposer(cfg config.LLMConfig) (*generation.Composer, error) {
	if cfg.DirectivePath == "" {
		return generation.NewComposer(), nil
	}
	composer, err := generation.LoadComposer(cfg.DirectivePath)
	if err != nil {
		return nil, fmt.Errorf("failed to load prompt directive: %w", err)
	}
	return composer, nil
}

// setupModelRouter registers every backend whose credentials are configured.
// A backend without credentials is skipped with a warning; requests for its
// models then fail with generation.ErrUnknownModel.
func (app *application) setupModelRouter(ctx context.Context) *generation.Router {
	router := generation.NewRouter(app.logger)
	cfg := app.config.LLM

	register := func(backend generation.Backend, inv generation.Invoker, err error) {
		if err != nil {
			if errors.Is(err, generation.ErrInvalidConfig) {
				app.logger.Warn("LLM backend not configured, skipping",
					"backend", backend,
					"reason", err)
				return
			}
			app.logger.Error("LLM backend failed to initialize", "backend", backend, "error", err)
			return
		}
		router.Register(backend, generation.Instrument(backend, inv, app.metrics))
		app.logger.Info("LLM backend registered", "backend", backend)
	}

	ark, err := openai.NewInvoker(app.logger, cfg)
	register(generation.BackendOpenAI, ark, err)

	gem, err := gemini.NewInvoker(ctx, app.logger, cfg)
	register(generation.BackendGemini, gem, err)

	if cfg.OllamaHost != "" {
		local, err := ollama.NewInvoker(app.logger, cfg)
		register(generation.BackendOllama, local, err)
	}

	if len(router.Backends()) == 0 {
		app.logger.Warn("No LLM backend configured, prompt mode and summaries will fail")
	}
	return router
}

// startTaskProcessing starts the worker pool that runs every blocking stage.
func (app *application) startTaskProcessing() {
	cfg := app.config.Task
	app.queue = task.NewTaskQueue(cfg.QueueSize, app.logger)

	poolCfg := task.DefaultWorkerPoolConfig()
	poolCfg.WorkerCount = cfg.WorkerCount
	app.pool = task.NewWorkerPool(app.queue, poolCfg, app.logger)
	app.pool.SetErrorHandler(func(t task.Task, err error) {
		app.logger.Warn("Offloaded task failed",
			"task_id", t.ID(),
			"task_type", t.Type(),
			"error", redact.Error(err))
	})
	app.pool.Start()

	app.offloader = task.NewOffloader(app.queue, app.pool.Done(), app.logger)
	app.logger.Info("Task processing started",
		"workers", cfg.WorkerCount,
		"queue_size", cfg.QueueSize)
}

// Run starts the application server, handling lifecycle and cleanup.
// It returns an error if the server fails to start or encounters problems.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup stops background processing. In-flight stages finish; queued ones
// are dropped and their callers see task.ErrPoolStopped.
func (app *application) cleanup() {
	if app.pool != nil {
		app.pool.Stop()
	}
	app.logger.Info("Application shutdown completed")
}
