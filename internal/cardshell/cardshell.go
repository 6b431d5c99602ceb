// Package cardshell wraps content in the HTML documents the renderer
// screenshots: markdown cards for direct mode, and the side-by-side
// comparison page for multi-model generation.
package cardshell

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"regexp"
	"sort"
	"strings"

	"github.com/smart-card/smartcard-api/internal/domain"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

//go:embed templates/*.html.tmpl
var templateFS embed.FS

const compareTemplate = "compare"

var styleSanitizer = regexp.MustCompile(`[^a-z0-9-]+`)

// Shell renders markdown into named document templates.
type Shell struct {
	md        goldmark.Markdown
	templates map[string]*template.Template
	compare   *template.Template
}

// New parses the embedded templates.
func New() (*Shell, error) {
	entries, err := templateFS.ReadDir("templates")
	if err != nil {
		return nil, fmt.Errorf("read templates: %w", err)
	}

	s := &Shell{
		md:        goldmark.New(goldmark.WithExtensions(extension.GFM)),
		templates: make(map[string]*template.Template),
	}

	for _, e := range entries {
		name := strings.TrimSuffix(e.Name(), ".html.tmpl")
		tmpl, err := template.ParseFS(templateFS, "templates/"+e.Name())
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		if name == compareTemplate {
			s.compare = tmpl
			continue
		}
		s.templates[name] = tmpl
	}

	if s.compare == nil {
		return nil, fmt.Errorf("missing %s template", compareTemplate)
	}
	return s, nil
}

// Templates lists the names accepted by RenderMarkdown.
func (s *Shell) Templates() []string {
	names := make([]string, 0, len(s.templates))
	for name := range s.templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type cardData struct {
	Title string
	Style string
	Body  template.HTML
}

// RenderMarkdown converts markdown (GitHub flavour) to HTML and wraps it in
// the named template with style applied as a CSS class. Raw HTML inside the
// markdown is dropped.
func (s *Shell) RenderMarkdown(markdown, templateName, style string) ([]byte, error) {
	if strings.TrimSpace(markdown) == "" {
		return nil, fmt.Errorf("%w: markdown is empty", domain.ErrMissingInput)
	}

	tmpl, ok := s.templates[templateName]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownTemplate, templateName)
	}

	var body bytes.Buffer
	if err := s.md.Convert([]byte(markdown), &body); err != nil {
		return nil, fmt.Errorf("convert markdown: %w", err)
	}

	var out bytes.Buffer
	err := tmpl.Execute(&out, cardData{
		Title: title(markdown),
		Style: sanitizeStyle(style),
		Body:  template.HTML(body.String()),
	})
	if err != nil {
		return nil, fmt.Errorf("execute template %s: %w", templateName, err)
	}
	return out.Bytes(), nil
}

// Variant is one model's output in a comparison page.
type Variant struct {
	Index      int
	ArtifactID string
	Model      string
	HTML       string
}

// Compare builds a document embedding each variant's HTML in its own inline
// frame, labelled with the model that produced it.
func (s *Shell) Compare(variants []Variant) ([]byte, error) {
	var out bytes.Buffer
	if err := s.compare.Execute(&out, variants); err != nil {
		return nil, fmt.Errorf("execute comparison template: %w", err)
	}
	return out.Bytes(), nil
}

func sanitizeStyle(style string) string {
	s := styleSanitizer.ReplaceAllString(strings.ToLower(strings.TrimSpace(style)), "-")
	s = strings.Trim(s, "-")
	if s == "" {
		return domain.DefaultStyle
	}
	return s
}

// title returns the first non-empty markdown line without heading markers.
func title(markdown string) string {
	for _, line := range strings.Split(markdown, "\n") {
		line = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(line), "#"))
		if line != "" {
			if r := []rune(line); len(r) > 80 {
				line = string(r[:80])
			}
			return line
		}
	}
	return "Card"
}
