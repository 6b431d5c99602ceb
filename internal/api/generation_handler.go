package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/smart-card/smartcard-api/internal/api/shared"
	"github.com/smart-card/smartcard-api/internal/domain"
)

// Generator runs the card generation pipeline.
// *service.GenerationService implements it.
type Generator interface {
	Generate(ctx context.Context, req domain.GenerationRequest) (*domain.ArtifactSet, error)
}

// GenerationHandler handles card generation requests.
type GenerationHandler struct {
	generator Generator
	logger    *slog.Logger
}

// NewGenerationHandler creates a new GenerationHandler.
func NewGenerationHandler(generator Generator, logger *slog.Logger) *GenerationHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &GenerationHandler{
		generator: generator,
		logger:    logger.With("component", "generation_handler"),
	}
}

// Generate handles POST /api/generate requests.
func (h *GenerationHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	set, err := h.generator.Generate(r.Context(), req.ToDomain())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to generate card")
		return
	}

	h.logger.InfoContext(r.Context(), "card generated",
		"file_id", set.ID.String(),
		"mode", req.Mode,
		"variants", len(set.Secondaries))

	shared.RespondWithJSON(w, r, http.StatusOK, generationToResponse(set))
}
