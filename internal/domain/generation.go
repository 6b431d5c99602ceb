package domain

import (
	"fmt"
	"strings"
)

// GenerationMode selects how the primary HTML document is produced.
type GenerationMode string

// Supported generation modes.
const (
	// ModeDirect converts markdown to styled HTML through the card shell.
	ModeDirect GenerationMode = "direct"
	// ModePrompt asks one or more language models to write the HTML.
	ModePrompt GenerationMode = "prompt"
	// ModePaste stores caller-supplied HTML verbatim.
	ModePaste GenerationMode = "paste"
)

// Request defaults.
const (
	DefaultStyle       = "default"
	DefaultTemplate    = "card"
	DefaultTemperature = 0.7
)

// IsValid reports whether m is a supported mode.
func (m GenerationMode) IsValid() bool {
	switch m {
	case ModeDirect, ModePrompt, ModePaste:
		return true
	}
	return false
}

// GenerationRequest is a request to produce one card artifact set.
//
// Exactly one of Prompt or HTMLInput is meaningful per mode: Prompt for
// ModePrompt (free text) and ModeDirect (markdown), HTMLInput for ModePaste.
type GenerationRequest struct {
	Mode      GenerationMode
	Prompt    string
	HTMLInput string
	Template  string
	Style     string

	// Models is the ordered list of model identifiers. Empty means the
	// configured default model.
	Models []string

	// Temperature is nil when the caller did not choose one.
	Temperature *float64
}

// Validate checks the mode and the per-mode required input. It runs before
// any artifact is written or any model is invoked.
func (r *GenerationRequest) Validate() error {
	if !r.Mode.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidMode, r.Mode)
	}

	switch r.Mode {
	case ModePrompt:
		if strings.TrimSpace(r.Prompt) == "" {
			return fmt.Errorf("%w: prompt mode requires a prompt", ErrMissingInput)
		}
	case ModeDirect:
		if strings.TrimSpace(r.Prompt) == "" {
			return fmt.Errorf("%w: direct mode requires markdown in prompt", ErrMissingInput)
		}
	case ModePaste:
		if r.HTMLInput == "" {
			return fmt.Errorf("%w: paste mode requires html_input", ErrMissingInput)
		}
	}

	return nil
}

// StyleOrDefault returns the requested style or DefaultStyle.
func (r *GenerationRequest) StyleOrDefault() string {
	if s := strings.TrimSpace(r.Style); s != "" {
		return s
	}
	return DefaultStyle
}

// TemplateOrDefault returns the requested shell template or DefaultTemplate.
func (r *GenerationRequest) TemplateOrDefault() string {
	if t := strings.TrimSpace(r.Template); t != "" {
		return t
	}
	return DefaultTemplate
}

// TemperatureOr returns the requested temperature, or fallback when unset.
func (r *GenerationRequest) TemperatureOr(fallback float64) float64 {
	if r.Temperature != nil {
		return *r.Temperature
	}
	return fallback
}

// ResolveModels returns the non-blank model identifiers in request order,
// or a single-element list with defaultModel when none were supplied.
// Duplicates are kept: each occurrence gets its own secondary index.
func (r *GenerationRequest) ResolveModels(defaultModel string) []string {
	models := make([]string, 0, len(r.Models))
	for _, m := range r.Models {
		if m = strings.TrimSpace(m); m != "" {
			models = append(models, m)
		}
	}
	if len(models) == 0 {
		return []string{defaultModel}
	}
	return models
}
