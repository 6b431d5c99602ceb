package api

import (
	"strings"

	"github.com/smart-card/smartcard-api/internal/domain"
)

// Download routes. Artifact paths in responses are URLs under these prefixes.
const (
	DownloadHTMLRoute  = "/api/download-html/"
	DownloadImageRoute = "/api/download-image/"
	DownloadCardRoute  = "/api/download-card/"
)

// GenerateRequest defines the payload for the generation endpoint. Which of
// Prompt and HTMLInput is required depends on Mode and is checked by the
// domain request, so that a bad mode is reported as such.
type GenerateRequest struct {
	Mode      string `json:"mode"`
	Prompt    string `json:"prompt,omitempty"`
	HTMLInput string `json:"html_input,omitempty"`
	Template  string `json:"template,omitempty"   validate:"omitempty,max=64"`
	Style     string `json:"style,omitempty"      validate:"omitempty,max=64"`

	// Models lists the models to invoke in order. More than one selects the
	// comparative pipeline.
	Models []string `json:"models,omitempty" validate:"omitempty,max=8,dive,max=128"`

	// Model is the single-model form accepted by older clients. It is used
	// only when Models is empty.
	Model string `json:"model,omitempty" validate:"omitempty,max=128"`

	Temperature *float64 `json:"temperature,omitempty" validate:"omitempty,gte=0,lte=2"`
}

// ToDomain converts the payload to a domain request.
func (r GenerateRequest) ToDomain() domain.GenerationRequest {
	models := r.Models
	if len(models) == 0 && strings.TrimSpace(r.Model) != "" {
		models = []string{r.Model}
	}

	return domain.GenerationRequest{
		Mode:        domain.GenerationMode(strings.ToLower(strings.TrimSpace(r.Mode))),
		Prompt:      r.Prompt,
		HTMLInput:   r.HTMLInput,
		Template:    r.Template,
		Style:       r.Style,
		Models:      models,
		Temperature: r.Temperature,
	}
}

// GenerationResponse defines the successful response of the generation
// endpoint. Paths are download URLs.
type GenerationResponse struct {
	FileID     string `json:"file_id"`
	Success    bool   `json:"success"`
	HTMLPath   string `json:"html_path"`
	ImagePath  string `json:"image_path,omitempty"`
	CardPath   string `json:"card_path,omitempty"`
	CardSource string `json:"card_source,omitempty"`

	// RawLLMResponse is the model output in single-model prompt mode and the
	// list of models used in comparative mode.
	RawLLMResponse string `json:"raw_llm_response,omitempty"`

	// The secondary fields describe the second model's artifacts, the
	// variant existing clients show next to the combined document.
	SecondaryHTMLPath  string `json:"secondary_html_path,omitempty"`
	SecondaryImagePath string `json:"secondary_image_path,omitempty"`
	SecondaryCardPath  string `json:"secondary_card_path,omitempty"`

	Variants []VariantResponse `json:"variants,omitempty"`
	Message  string            `json:"message"`
}

// VariantResponse describes one model's artifacts in comparative mode.
type VariantResponse struct {
	Index      int    `json:"index"`
	Model      string `json:"model"`
	ArtifactID string `json:"artifact_id"`
	HTMLPath   string `json:"html_path"`
	ImagePath  string `json:"image_path,omitempty"`
	CardPath   string `json:"card_path,omitempty"`
	CardSource string `json:"card_source,omitempty"`
}

// secondaryVariantIndex is the variant surfaced in the secondary_* fields.
const secondaryVariantIndex = 1

// generationToResponse builds the response for a completed artifact set.
func generationToResponse(set *domain.ArtifactSet) GenerationResponse {
	id := set.ID.String()
	resp := GenerationResponse{
		FileID:         set.ID.FileID(),
		Success:        true,
		HTMLPath:       DownloadHTMLRoute + id,
		RawLLMResponse: set.RawResponse,
		Message:        "HTML card generated successfully",
	}
	if set.ImagePath != "" {
		resp.ImagePath = DownloadImageRoute + id
	}
	if set.Card != nil {
		resp.CardPath = DownloadCardRoute + id
		resp.CardSource = string(set.Card.Source)
	}

	for i := range set.Secondaries {
		v := variantToResponse(&set.Secondaries[i])
		resp.Variants = append(resp.Variants, v)
		if v.Index == secondaryVariantIndex {
			resp.SecondaryHTMLPath = v.HTMLPath
			resp.SecondaryImagePath = v.ImagePath
			resp.SecondaryCardPath = v.CardPath
		}
	}

	return resp
}

func variantToResponse(set *domain.ArtifactSet) VariantResponse {
	id := set.ID.String()
	v := VariantResponse{
		Index:      set.ID.Index(),
		Model:      set.Model,
		ArtifactID: id,
		HTMLPath:   DownloadHTMLRoute + id,
	}
	if set.ImagePath != "" {
		v.ImagePath = DownloadImageRoute + id
	}
	if set.Card != nil {
		v.CardPath = DownloadCardRoute + id
		v.CardSource = string(set.Card.Source)
	}
	return v
}

// SummarizeRequest defines the payload for the summarize endpoint. Content is
// checked by the service so that an empty body yields success=false rather
// than a validation error.
type SummarizeRequest struct {
	Content string `json:"content"`
	Model   string `json:"model,omitempty" validate:"omitempty,max=128"`
}

// SummarizeResponse defines the response of the summarize endpoint.
type SummarizeResponse struct {
	Summary string `json:"summary"`
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// WebFetchRequest defines the payload for the fetch-web endpoint.
type WebFetchRequest struct {
	URL string `json:"url"`
}

// WebFetchResponse defines the response of the fetch-web endpoint.
type WebFetchResponse struct {
	Content string `json:"content"`
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}
