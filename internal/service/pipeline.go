package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/smart-card/smartcard-api/internal/domain"
	"github.com/smart-card/smartcard-api/internal/events"
	"github.com/smart-card/smartcard-api/internal/store"
	"github.com/smart-card/smartcard-api/internal/task"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Card extraction policy. These are fixed for the pipeline and are not
// request-configurable.
const (
	// CardMinArea is the smallest card region, in pixels, the extractor accepts.
	CardMinArea = 500

	// cardDebug keeps extractor diagnostics in the logs.
	cardDebug = true
)

const tracerName = "github.com/smart-card/smartcard-api/internal/service"

// Renderer produces a raster image of a stored HTML document.
type Renderer interface {
	// Render reads htmlPath and writes a PNG of the given width to imagePath.
	Render(ctx context.Context, htmlPath, imagePath string, width int) error
}

// CardExtractor crops the card region out of a rendered image. An error
// means no card was found; callers degrade to the full image.
type CardExtractor interface {
	ExtractCard(ctx context.Context, imagePath, cardPath string, minArea int, debug bool) error
}

// TaskRunner runs fn off the request goroutine and waits for it.
// *task.Offloader implements it.
type TaskRunner interface {
	Run(ctx context.Context, taskType string, fn func(ctx context.Context) error) error
}

// cardPipeline renders stored HTML and extracts the card. It is shared by
// initial generation and lazy regeneration on download, so the fallback
// policy is the same at both call sites.
type cardPipeline struct {
	store     store.ArtifactStore
	renderer  Renderer
	extractor CardExtractor
	runner    TaskRunner
	emitter   events.EventEmitter
	tracer    trace.Tracer
	width     int
	logger    *slog.Logger
}

func newCardPipeline(
	artifacts store.ArtifactStore,
	renderer Renderer,
	extractor CardExtractor,
	runner TaskRunner,
	emitter events.EventEmitter,
	width int,
	logger *slog.Logger,
) *cardPipeline {
	return &cardPipeline{
		store:     artifacts,
		renderer:  renderer,
		extractor: extractor,
		runner:    runner,
		emitter:   emitter,
		tracer:    otel.Tracer(tracerName),
		width:     width,
		logger:    logger,
	}
}

// renderImage renders the stored HTML of id to its image path. Failures are
// reported as domain.ErrRenderFailure.
func (p *cardPipeline) renderImage(ctx context.Context, id domain.ArtifactID) (string, error) {
	ctx, span := p.startSpan(ctx, events.StageRender, id)
	defer span.End()
	start := time.Now()

	htmlPath, err := p.store.Resolve(id, domain.KindHTML)
	if err != nil {
		p.emit(ctx, id, events.StageRender, "", events.OutcomeFailure, start)
		endSpan(span, err)
		return "", newPipelineError(events.StageRender, id, err)
	}
	imagePath := p.store.Path(id, domain.KindImage)

	err = p.runner.Run(ctx, task.TaskTypeRender, func(ctx context.Context) error {
		return p.renderer.Render(ctx, htmlPath, imagePath, p.width)
	})
	if err != nil {
		p.emit(ctx, id, events.StageRender, "", events.OutcomeFailure, start)
		endSpan(span, err)
		return "", newPipelineError(events.StageRender, id, fmt.Errorf("%w: %w", domain.ErrRenderFailure, err))
	}

	p.emit(ctx, id, events.StageRender, "", events.OutcomeSuccess, start)
	return imagePath, nil
}

// extractCard crops the card out of the stored image of id. When the
// extractor finds no card, the full image is copied to the card path and a
// fallback result is returned; only a failed copy is an error.
func (p *cardPipeline) extractCard(ctx context.Context, id domain.ArtifactID) (domain.CardResult, error) {
	ctx, span := p.startSpan(ctx, events.StageExtractCard, id)
	defer span.End()
	start := time.Now()

	imagePath := p.store.Path(id, domain.KindImage)
	cardPath := p.store.Path(id, domain.KindCard)

	err := p.runner.Run(ctx, task.TaskTypeExtractCard, func(ctx context.Context) error {
		return p.extractor.ExtractCard(ctx, imagePath, cardPath, CardMinArea, cardDebug)
	})
	if err == nil {
		p.emit(ctx, id, events.StageExtractCard, "", events.OutcomeSuccess, start)
		return domain.Cropped(cardPath), nil
	}

	// A cancelled request is not an extraction failure.
	if ctxErr := ctx.Err(); ctxErr != nil {
		endSpan(span, ctxErr)
		return domain.CardResult{}, newPipelineError(events.StageExtractCard, id, ctxErr)
	}

	p.logger.WarnContext(ctx, "card extraction failed, using full image",
		"file_id", id.String(),
		"stage", events.StageExtractCard,
		"error", err)
	span.AddEvent("card extraction fallback", trace.WithAttributes(attribute.String("reason", err.Error())))

	path, copyErr := p.store.Copy(ctx, id, domain.KindImage, domain.KindCard)
	if copyErr != nil {
		p.emit(ctx, id, events.StageExtractCard, "", events.OutcomeFailure, start)
		endSpan(span, copyErr)
		return domain.CardResult{}, newPipelineError(events.StageExtractCard, id, copyErr)
	}

	p.emit(ctx, id, events.StageExtractCard, "", events.OutcomeFallback, start)
	return domain.FullImageFallback(path), nil
}

// renderAndExtract runs both stages for set and records their outputs on it.
func (p *cardPipeline) renderAndExtract(ctx context.Context, set *domain.ArtifactSet) error {
	imagePath, err := p.renderImage(ctx, set.ID)
	if err != nil {
		return err
	}
	set.ImagePath = imagePath

	card, err := p.extractCard(ctx, set.ID)
	if err != nil {
		return err
	}
	set.Card = &card
	return nil
}

func (p *cardPipeline) startSpan(ctx context.Context, stage events.Stage, id domain.ArtifactID) (context.Context, trace.Span) {
	return p.tracer.Start(ctx, "pipeline."+string(stage),
		trace.WithAttributes(attribute.String("file_id", id.String())))
}

// emit publishes a stage event. Handler failures are logged, never returned.
func (p *cardPipeline) emit(
	ctx context.Context,
	id domain.ArtifactID,
	stage events.Stage,
	model string,
	outcome events.Outcome,
	start time.Time,
) {
	event := events.NewStageEvent(id.String(), stage, outcome, time.Since(start)).WithModel(model)
	if err := p.emitter.EmitEvent(ctx, event); err != nil {
		p.logger.WarnContext(ctx, "failed to emit stage event",
			"file_id", id.String(),
			"stage", stage,
			"error", err)
	}
}

func endSpan(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
