package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/smart-card/smartcard-api/internal/cardshell"
	"github.com/smart-card/smartcard-api/internal/domain"
	"github.com/smart-card/smartcard-api/internal/events"
	"github.com/smart-card/smartcard-api/internal/generation"
	"github.com/smart-card/smartcard-api/internal/store"
	"github.com/smart-card/smartcard-api/internal/task"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// PromptComposer merges the design directive with user text.
type PromptComposer interface {
	SystemPrompt() string
	Compose(userPrompt string) (string, error)
}

// DocumentShell builds HTML documents that do not come from a model:
// markdown cards for direct mode and the comparison page.
type DocumentShell interface {
	RenderMarkdown(markdown, templateName, style string) ([]byte, error)
	Compare(variants []cardshell.Variant) ([]byte, error)
}

// TokenObserver records prompt sizes.
type TokenObserver interface {
	ObservePromptTokens(model string, tokens int)
}

// GenerationOptions holds the pipeline settings taken from configuration.
type GenerationOptions struct {
	DefaultModel       string
	DefaultTemperature float64
	RenderWidth        int

	// EagerVariantRender renders and crops every secondary artifact set in
	// comparative mode. When false, secondaries are HTML only.
	EagerVariantRender bool
}

// GenerationDeps lists the collaborators of GenerationService. Tokens and
// TokenObserver are optional; everything else is required.
type GenerationDeps struct {
	Store     store.ArtifactStore
	Invoker   generation.Invoker
	Composer  PromptComposer
	Shell     DocumentShell
	Renderer  Renderer
	Extractor CardExtractor
	Runner    TaskRunner
	Emitter   events.EventEmitter

	Tokens        generation.TokenCounter
	TokenObserver TokenObserver

	Logger *slog.Logger
}

// GenerationService is the generation pipeline orchestrator.
type GenerationService struct {
	store    store.ArtifactStore
	invoker  generation.Invoker
	composer PromptComposer
	shell    DocumentShell
	runner   TaskRunner
	cards    *cardPipeline

	tokens        generation.TokenCounter
	tokenObserver TokenObserver

	opts   GenerationOptions
	logger *slog.Logger
}

// NewGenerationService creates a GenerationService.
// It returns an error if any of the required dependencies are nil.
func NewGenerationService(deps GenerationDeps, opts GenerationOptions) (*GenerationService, error) {
	switch {
	case deps.Store == nil:
		return nil, nilDependency("store")
	case deps.Invoker == nil:
		return nil, nilDependency("invoker")
	case deps.Composer == nil:
		return nil, nilDependency("composer")
	case deps.Shell == nil:
		return nil, nilDependency("shell")
	case deps.Renderer == nil:
		return nil, nilDependency("renderer")
	case deps.Extractor == nil:
		return nil, nilDependency("extractor")
	case deps.Runner == nil:
		return nil, nilDependency("runner")
	case deps.Emitter == nil:
		return nil, nilDependency("emitter")
	}
	if opts.DefaultModel == "" {
		return nil, errors.New("default model cannot be empty")
	}
	if opts.RenderWidth <= 0 {
		return nil, fmt.Errorf("render width must be positive, got %d", opts.RenderWidth)
	}

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "generation_service")

	return &GenerationService{
		store:         deps.Store,
		invoker:       deps.Invoker,
		composer:      deps.Composer,
		shell:         deps.Shell,
		runner:        deps.Runner,
		cards:         newCardPipeline(deps.Store, deps.Renderer, deps.Extractor, deps.Runner, deps.Emitter, opts.RenderWidth, logger),
		tokens:        deps.Tokens,
		tokenObserver: deps.TokenObserver,
		opts:          opts,
		logger:        logger,
	}, nil
}

// Generate runs the pipeline for req and returns the artifact set it
// produced. Stages run strictly in order: compose, invoke, extract HTML,
// persist, render, extract card. Request errors (domain.ErrMissingInput,
// domain.ErrInvalidMode) are returned before any artifact is written.
// Cancellation of ctx does not abort a run that has started.
func (s *GenerationService) Generate(ctx context.Context, req domain.GenerationRequest) (*domain.ArtifactSet, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	// Once accepted, a request runs to completion or failure even if the
	// client goes away; request values such as the trace ID are kept.
	ctx = context.WithoutCancel(ctx)

	set := &domain.ArtifactSet{ID: domain.NewArtifactID()}
	log := s.logger.With("file_id", set.ID.String(), "mode", req.Mode)

	ctx, span := s.cards.tracer.Start(ctx, "pipeline.generate",
		trace.WithAttributes(
			attribute.String("file_id", set.ID.String()),
			attribute.String("mode", string(req.Mode)),
		))
	defer span.End()

	log.InfoContext(ctx, "generation started")

	var err error
	switch req.Mode {
	case domain.ModePrompt:
		err = s.generateFromPrompt(ctx, set, req)
	case domain.ModePaste:
		err = s.persistHTML(ctx, set, []byte(req.HTMLInput))
	case domain.ModeDirect:
		err = s.generateDirect(ctx, set, req)
	default:
		err = fmt.Errorf("%w: %q", domain.ErrInvalidMode, req.Mode)
	}

	if err == nil {
		err = s.cards.renderAndExtract(ctx, set)
	}
	if err == nil && s.opts.EagerVariantRender {
		for i := range set.Secondaries {
			if err = s.cards.renderAndExtract(ctx, &set.Secondaries[i]); err != nil {
				break
			}
		}
	}

	if err != nil {
		endSpan(span, err)
		s.logFailure(ctx, log, err)
		return nil, err
	}

	log.InfoContext(ctx, "generation completed",
		"models", len(set.Secondaries),
		"card_source", set.Card.Source)
	return set, nil
}

// generateFromPrompt persists the raw prompt, then runs one model or, when
// more than one is requested, the comparative pipeline.
func (s *GenerationService) generateFromPrompt(ctx context.Context, set *domain.ArtifactSet, req domain.GenerationRequest) error {
	start := time.Now()
	prompt, err := s.composer.Compose(req.Prompt)
	if err != nil {
		s.cards.emit(ctx, set.ID, events.StageCompose, "", events.OutcomeFailure, start)
		return newPipelineError(events.StageCompose, set.ID, fmt.Errorf("%w: %w", domain.ErrMissingInput, err))
	}
	s.cards.emit(ctx, set.ID, events.StageCompose, "", events.OutcomeSuccess, start)

	set.PromptPath, err = s.persist(ctx, set.ID, domain.KindPrompt, []byte(req.Prompt))
	if err != nil {
		return err
	}

	models := req.ResolveModels(s.opts.DefaultModel)
	temperature := req.TemperatureOr(s.opts.DefaultTemperature)

	if len(models) > 1 {
		return s.compare(ctx, set, prompt, models, temperature)
	}

	html, raw, err := s.generateHTML(ctx, set.ID, models[0], prompt, temperature)
	if err != nil {
		return err
	}
	set.Model = models[0]
	set.RawResponse = raw
	return s.persistHTML(ctx, set, []byte(html))
}

// compare invokes every model in order with the same prompt, persists each
// result as the secondary set {file_id}_model_{i}, and stores a combined
// document embedding all of them as the primary HTML.
func (s *GenerationService) compare(
	ctx context.Context,
	set *domain.ArtifactSet,
	prompt string,
	models []string,
	temperature float64,
) error {
	variants := make([]cardshell.Variant, 0, len(models))
	set.Secondaries = make([]domain.ArtifactSet, 0, len(models))

	for i, model := range models {
		sub := domain.ArtifactSet{ID: set.ID.Secondary(i), Model: model}

		html, raw, err := s.generateHTML(ctx, sub.ID, model, prompt, temperature)
		if err != nil {
			return err
		}
		sub.RawResponse = raw

		if err := s.persistHTML(ctx, &sub, []byte(html)); err != nil {
			return err
		}

		set.Secondaries = append(set.Secondaries, sub)
		variants = append(variants, cardshell.Variant{
			Index:      i,
			ArtifactID: sub.ID.String(),
			Model:      model,
			HTML:       html,
		})
	}

	combined, err := s.shell.Compare(variants)
	if err != nil {
		return newPipelineError(events.StagePersist, set.ID, fmt.Errorf("%w: build comparison: %w", domain.ErrGenerationFailure, err))
	}

	set.RawResponse = "Compared models: " + strings.Join(models, ", ")
	return s.persistHTML(ctx, set, combined)
}

func (s *GenerationService) generateDirect(ctx context.Context, set *domain.ArtifactSet, req domain.GenerationRequest) error {
	start := time.Now()
	doc, err := s.shell.RenderMarkdown(req.Prompt, req.TemplateOrDefault(), req.StyleOrDefault())
	if err != nil {
		s.cards.emit(ctx, set.ID, events.StageCompose, "", events.OutcomeFailure, start)
		return newPipelineError(events.StageCompose, set.ID, err)
	}
	s.cards.emit(ctx, set.ID, events.StageCompose, "", events.OutcomeSuccess, start)
	return s.persistHTML(ctx, set, doc)
}

// generateHTML invokes model on the worker pool and extracts the HTML
// document from its response. Both failures are domain.ErrGenerationFailure.
func (s *GenerationService) generateHTML(
	ctx context.Context,
	id domain.ArtifactID,
	model, prompt string,
	temperature float64,
) (html, raw string, err error) {
	s.countTokens(ctx, id, model, prompt)

	ctx, span := s.cards.tracer.Start(ctx, "pipeline."+string(events.StageInvoke),
		trace.WithAttributes(
			attribute.String("file_id", id.String()),
			attribute.String("model", model),
		))
	defer span.End()

	start := time.Now()
	req := generation.Request{
		Model:        model,
		Prompt:       prompt,
		SystemPrompt: s.composer.SystemPrompt(),
		Temperature:  temperature,
	}
	response, err := task.Submit(ctx, s.runner, task.TaskTypeInvoke, func(ctx context.Context) (string, error) {
		return s.invoker.Invoke(ctx, req)
	})
	if err != nil {
		s.cards.emit(ctx, id, events.StageInvoke, model, events.OutcomeFailure, start)
		endSpan(span, err)
		return "", "", newPipelineError(events.StageInvoke, id,
			fmt.Errorf("%w: model %s: %w", domain.ErrGenerationFailure, model, err))
	}
	s.cards.emit(ctx, id, events.StageInvoke, model, events.OutcomeSuccess, start)

	raw = response

	start = time.Now()
	html, err = generation.ExtractHTML(raw)
	if err != nil {
		s.cards.emit(ctx, id, events.StageExtractHTML, model, events.OutcomeFailure, start)
		endSpan(span, err)
		return "", "", newPipelineError(events.StageExtractHTML, id,
			fmt.Errorf("%w: model %s: %w", domain.ErrGenerationFailure, model, err))
	}
	s.cards.emit(ctx, id, events.StageExtractHTML, model, events.OutcomeSuccess, start)

	return html, raw, nil
}

func (s *GenerationService) persistHTML(ctx context.Context, set *domain.ArtifactSet, doc []byte) error {
	path, err := s.persist(ctx, set.ID, domain.KindHTML, doc)
	if err != nil {
		return err
	}
	set.HTMLPath = path
	return nil
}

func (s *GenerationService) persist(ctx context.Context, id domain.ArtifactID, kind domain.ArtifactKind, data []byte) (string, error) {
	start := time.Now()
	path, err := s.store.Put(ctx, id, kind, data)
	if err != nil {
		s.cards.emit(ctx, id, events.StagePersist, "", events.OutcomeFailure, start)
		return "", newPipelineError(events.StagePersist, id, err)
	}
	s.cards.emit(ctx, id, events.StagePersist, "", events.OutcomeSuccess, start)
	return path, nil
}

func (s *GenerationService) countTokens(ctx context.Context, id domain.ArtifactID, model, prompt string) {
	if s.tokens == nil {
		return
	}
	n := s.tokens.CountTokens(s.composer.SystemPrompt() + prompt)
	s.logger.DebugContext(ctx, "prompt size",
		"file_id", id.String(),
		"model", model,
		"tokens", n)
	if s.tokenObserver != nil {
		s.tokenObserver.ObservePromptTokens(model, n)
	}
}

// logFailure logs client mistakes quietly and everything else at error level.
func (s *GenerationService) logFailure(ctx context.Context, log *slog.Logger, err error) {
	attrs := []any{"stage", StageOf(err), "error", err}
	switch {
	case errors.Is(err, domain.ErrMissingInput),
		errors.Is(err, domain.ErrInvalidMode),
		errors.Is(err, domain.ErrUnknownTemplate):
		log.InfoContext(ctx, "generation rejected", attrs...)
	default:
		log.ErrorContext(ctx, "generation failed", attrs...)
	}
}
