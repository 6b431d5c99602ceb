package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/smart-card/smartcard-api/internal/domain"
	"github.com/smart-card/smartcard-api/internal/events"
	"github.com/smart-card/smartcard-api/internal/store"
	"golang.org/x/sync/singleflight"
)

// Download results reported to a DownloadObserver.
const (
	DownloadHit         = "hit"
	DownloadRegenerated = "regenerated"
	DownloadNotFound    = "not_found"
	DownloadError       = "error"
)

// DownloadObserver records download outcomes per artifact kind.
type DownloadObserver interface {
	ObserveDownload(kind, result string)
}

// DownloadDeps lists the collaborators of DownloadService. Observer is
// optional.
type DownloadDeps struct {
	Store     store.ArtifactStore
	Renderer  Renderer
	Extractor CardExtractor
	Runner    TaskRunner
	Emitter   events.EventEmitter
	Observer  DownloadObserver
	Logger    *slog.Logger
}

// DownloadService resolves artifact IDs to stored files, regenerating a
// missing card image from the stored HTML.
type DownloadService struct {
	store    store.ArtifactStore
	cards    *cardPipeline
	observer DownloadObserver
	logger   *slog.Logger

	// regen coalesces concurrent regenerations of the same ID.
	regen singleflight.Group
}

// NewDownloadService creates a DownloadService that renders at renderWidth
// when it has to regenerate an image.
func NewDownloadService(deps DownloadDeps, renderWidth int) (*DownloadService, error) {
	switch {
	case deps.Store == nil:
		return nil, nilDependency("store")
	case deps.Renderer == nil:
		return nil, nilDependency("renderer")
	case deps.Extractor == nil:
		return nil, nilDependency("extractor")
	case deps.Runner == nil:
		return nil, nilDependency("runner")
	case deps.Emitter == nil:
		return nil, nilDependency("emitter")
	}
	if renderWidth <= 0 {
		return nil, fmt.Errorf("render width must be positive, got %d", renderWidth)
	}

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "download_service")

	return &DownloadService{
		store:    deps.Store,
		cards:    newCardPipeline(deps.Store, deps.Renderer, deps.Extractor, deps.Runner, deps.Emitter, renderWidth, logger),
		observer: deps.Observer,
		logger:   logger,
	}, nil
}

// HTMLPath returns the stored HTML document for rawID.
func (s *DownloadService) HTMLPath(ctx context.Context, rawID string) (string, error) {
	return s.resolve(ctx, rawID, domain.KindHTML)
}

// ImagePath returns the stored raster image for rawID. It never renders.
func (s *DownloadService) ImagePath(ctx context.Context, rawID string) (string, error) {
	return s.resolve(ctx, rawID, domain.KindImage)
}

// CardPath returns the card image for rawID. When the card is missing but the
// HTML exists, the image is rendered if needed and the card is extracted,
// degrading to the full image exactly as initial generation does. Later calls
// are served from disk. Unknown IDs yield domain.ErrArtifactNotFound; a failed
// render yields domain.ErrRenderFailure.
func (s *DownloadService) CardPath(ctx context.Context, rawID string) (string, error) {
	id, err := s.parse(rawID, domain.KindCard)
	if err != nil {
		return "", err
	}

	if path, err := s.store.Resolve(id, domain.KindCard); err == nil {
		s.observe(domain.KindCard, DownloadHit)
		return path, nil
	}

	if !s.store.Exists(id, domain.KindHTML) {
		s.observe(domain.KindCard, DownloadNotFound)
		return "", fmt.Errorf("%w: no html for %s", domain.ErrArtifactNotFound, id)
	}

	// The regeneration outlives any single caller: others may be waiting on it
	// and its result is kept on disk either way.
	regenCtx := context.WithoutCancel(ctx)
	v, err, shared := s.regen.Do(id.String(), func() (any, error) {
		return s.regenerateCard(regenCtx, id)
	})
	if err != nil {
		s.observe(domain.KindCard, DownloadError)
		s.logger.ErrorContext(ctx, "card regeneration failed",
			"file_id", id.String(),
			"stage", StageOf(err),
			"error", err)
		return "", err
	}

	s.observe(domain.KindCard, DownloadRegenerated)
	s.logger.DebugContext(ctx, "card served after regeneration",
		"file_id", id.String(),
		"shared", shared)
	return v.(string), nil
}

func (s *DownloadService) regenerateCard(ctx context.Context, id domain.ArtifactID) (string, error) {
	// A previous flight may have finished between the caller's check and Do.
	if path, err := s.store.Resolve(id, domain.KindCard); err == nil {
		return path, nil
	}

	s.logger.InfoContext(ctx, "regenerating card image", "file_id", id.String())

	if !s.store.Exists(id, domain.KindImage) {
		// ErrArtifactExists means a concurrent generation wrote the image first.
		if _, err := s.cards.renderImage(ctx, id); err != nil && !errors.Is(err, store.ErrArtifactExists) {
			return "", err
		}
	}

	card, err := s.cards.extractCard(ctx, id)
	if err != nil {
		if path, rerr := s.store.Resolve(id, domain.KindCard); rerr == nil {
			return path, nil
		}
		return "", err
	}
	return card.Path, nil
}

func (s *DownloadService) resolve(ctx context.Context, rawID string, kind domain.ArtifactKind) (string, error) {
	id, err := s.parse(rawID, kind)
	if err != nil {
		return "", err
	}

	path, err := s.store.Resolve(id, kind)
	if err != nil {
		s.observe(kind, DownloadNotFound)
		s.logger.DebugContext(ctx, "artifact not found",
			"file_id", id.String(),
			"kind", kind)
		return "", err
	}

	s.observe(kind, DownloadHit)
	return path, nil
}

// parse treats malformed IDs as unknown ones.
func (s *DownloadService) parse(rawID string, kind domain.ArtifactKind) (domain.ArtifactID, error) {
	id, err := domain.ParseArtifactID(rawID)
	if err != nil {
		s.observe(kind, DownloadNotFound)
		return domain.ArtifactID{}, fmt.Errorf("%w: %w", domain.ErrArtifactNotFound, err)
	}
	return id, nil
}

func (s *DownloadService) observe(kind domain.ArtifactKind, result string) {
	if s.observer != nil {
		s.observer.ObserveDownload(string(kind), result)
	}
}
