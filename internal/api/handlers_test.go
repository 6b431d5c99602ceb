package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/go-cmp/cmp"
	"github.com/smart-card/smartcard-api/internal/api"
	"github.com/smart-card/smartcard-api/internal/api/shared"
	"github.com/smart-card/smartcard-api/internal/domain"
	"github.com/smart-card/smartcard-api/internal/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	generator  *mocks.MockGenerator
	downloader *mocks.MockDownloader
	summarizer *mocks.MockSummarizer
	fetcher    *mocks.MockWebFetcher
	router     http.Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	s := &testServer{
		generator:  &mocks.MockGenerator{},
		downloader: &mocks.MockDownloader{},
		summarizer: &mocks.MockSummarizer{},
		fetcher:    &mocks.MockWebFetcher{},
	}

	gen := api.NewGenerationHandler(s.generator, nil)
	dl := api.NewDownloadHandler(s.downloader)
	content := api.NewContentHandler(s.summarizer, s.fetcher, nil)

	r := chi.NewRouter()
	r.Post("/api/generate", gen.Generate)
	r.Get("/api/download-html/{"+api.FileIDParam+"}", dl.DownloadHTML)
	r.Get("/api/download-image/{"+api.FileIDParam+"}", dl.DownloadImage)
	r.Get("/api/download-card/{"+api.FileIDParam+"}", dl.DownloadCard)
	r.Post("/api/summarize", content.Summarize)
	r.Post("/api/fetch-web", content.FetchWeb)
	s.router = r
	return s
}

func (s *testServer) do(t *testing.T, method, target string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	req = req.WithContext(shared.SetTraceID(req.Context()))
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func mustID(t *testing.T, s string) domain.ArtifactID {
	t.Helper()
	id, err := domain.ParseArtifactID(s)
	require.NoError(t, err)
	return id
}

func TestGenerateSingleModel(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	card := domain.Cropped("/out/abc_card.png")
	s.generator.Set = &domain.ArtifactSet{
		ID:          mustID(t, "abc"),
		Model:       "deepseek-v3-250324",
		HTMLPath:    "/out/abc.html",
		ImagePath:   "/out/abc.png",
		Card:        &card,
		RawResponse: "```html\n<html></html>\n```",
	}

	temp := 0.2
	rec := s.do(t, http.MethodPost, "/api/generate", api.GenerateRequest{
		Mode:        "prompt",
		Prompt:      "Explain TCP handshakes",
		Model:       "deepseek-v3-250324",
		Temperature: &temp,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	want := api.GenerationResponse{
		FileID:         "abc",
		Success:        true,
		HTMLPath:       "/api/download-html/abc",
		ImagePath:      "/api/download-image/abc",
		CardPath:       "/api/download-card/abc",
		CardSource:     "cropped",
		RawLLMResponse: "```html\n<html></html>\n```",
		Message:        "HTML card generated successfully",
	}
	if diff := cmp.Diff(want, decode[api.GenerationResponse](t, rec)); diff != "" {
		t.Errorf("response mismatch (-want +got):\n%s", diff)
	}

	reqs := s.generator.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, domain.ModePrompt, reqs[0].Mode)
	assert.Equal(t, []string{"deepseek-v3-250324"}, reqs[0].Models, "legacy model field becomes the model list")
	require.NotNil(t, reqs[0].Temperature)
	assert.InDelta(t, 0.2, *reqs[0].Temperature, 1e-9)
}

func TestGenerateComparative(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	primary := mustID(t, "abc")
	fallback := domain.FullImageFallback("/out/abc_model_1_card.png")
	cropped := domain.Cropped("/out/abc_card.png")
	s.generator.Set = &domain.ArtifactSet{
		ID:          primary,
		HTMLPath:    "/out/abc.html",
		ImagePath:   "/out/abc.png",
		Card:        &cropped,
		RawResponse: "Compared models: m0, m1, m2",
		Secondaries: []domain.ArtifactSet{
			{ID: primary.Secondary(0), Model: "m0", HTMLPath: "/out/abc_model_0.html"},
			{
				ID:        primary.Secondary(1),
				Model:     "m1",
				HTMLPath:  "/out/abc_model_1.html",
				ImagePath: "/out/abc_model_1.png",
				Card:      &fallback,
			},
			{ID: primary.Secondary(2), Model: "m2", HTMLPath: "/out/abc_model_2.html"},
		},
	}

	rec := s.do(t, http.MethodPost, "/api/generate", api.GenerateRequest{
		Mode:   "prompt",
		Prompt: "Compare",
		Models: []string{"m0", "m1", "m2"},
		Model:  "ignored",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	got := decode[api.GenerationResponse](t, rec)
	want := api.GenerationResponse{
		FileID:             "abc",
		Success:            true,
		HTMLPath:           "/api/download-html/abc",
		ImagePath:          "/api/download-image/abc",
		CardPath:           "/api/download-card/abc",
		CardSource:         "cropped",
		RawLLMResponse:     "Compared models: m0, m1, m2",
		SecondaryHTMLPath:  "/api/download-html/abc_model_1",
		SecondaryImagePath: "/api/download-image/abc_model_1",
		SecondaryCardPath:  "/api/download-card/abc_model_1",
		Variants: []api.VariantResponse{
			{Index: 0, Model: "m0", ArtifactID: "abc_model_0", HTMLPath: "/api/download-html/abc_model_0"},
			{
				Index:      1,
				Model:      "m1",
				ArtifactID: "abc_model_1",
				HTMLPath:   "/api/download-html/abc_model_1",
				ImagePath:  "/api/download-image/abc_model_1",
				CardPath:   "/api/download-card/abc_model_1",
				CardSource: "full_image_fallback",
			},
			{Index: 2, Model: "m2", ArtifactID: "abc_model_2", HTMLPath: "/api/download-html/abc_model_2"},
		},
		Message: "HTML card generated successfully",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("response mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []string{"m0", "m1", "m2"}, s.generator.Requests()[0].Models)
}

func TestGenerateErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		body        interface{}
		err         error
		wantStatus  int
		wantMessage string
		wantCalls   int
	}{
		{
			name:        "malformed json",
			body:        `{"mode": "prompt",`,
			wantStatus:  http.StatusBadRequest,
			wantMessage: "Invalid request format",
		},
		{
			name:        "temperature out of range",
			body:        `{"mode": "prompt", "prompt": "x", "temperature": 9}`,
			wantStatus:  http.StatusBadRequest,
			wantMessage: "Invalid temperature: too large",
		},
		{
			name:        "invalid mode",
			body:        api.GenerateRequest{Mode: "telepathy"},
			err:         fmt.Errorf("%w: %q", domain.ErrInvalidMode, "telepathy"),
			wantStatus:  http.StatusBadRequest,
			wantMessage: "Invalid generation mode",
			wantCalls:   1,
		},
		{
			name:        "missing input",
			body:        api.GenerateRequest{Mode: "paste"},
			err:         fmt.Errorf("%w: paste mode requires html_input", domain.ErrMissingInput),
			wantStatus:  http.StatusBadRequest,
			wantMessage: "Missing required input",
			wantCalls:   1,
		},
		{
			name:        "unknown template",
			body:        api.GenerateRequest{Mode: "direct", Prompt: "# hi", Template: "poster"},
			err:         domain.ErrUnknownTemplate,
			wantStatus:  http.StatusBadRequest,
			wantMessage: "Unknown template",
			wantCalls:   1,
		},
		{
			name:        "generation failure",
			body:        api.GenerateRequest{Mode: "prompt", Prompt: "x"},
			err:         fmt.Errorf("%w: upstream said sk-secretsecretsecretsecret", domain.ErrGenerationFailure),
			wantStatus:  http.StatusInternalServerError,
			wantMessage: "Content generation failed",
			wantCalls:   1,
		},
		{
			name:        "render failure",
			body:        api.GenerateRequest{Mode: "paste", HTMLInput: "<p>x</p>"},
			err:         domain.ErrRenderFailure,
			wantStatus:  http.StatusInternalServerError,
			wantMessage: "Rendering failed",
			wantCalls:   1,
		},
		{
			name:        "unexpected failure",
			body:        api.GenerateRequest{Mode: "paste", HTMLInput: "<p>x</p>"},
			err:         errors.New("disk full"),
			wantStatus:  http.StatusInternalServerError,
			wantMessage: "Failed to generate card",
			wantCalls:   1,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			s := newTestServer(t)
			s.generator.Err = tc.err

			rec := s.do(t, http.MethodPost, "/api/generate", tc.body)
			assert.Equal(t, tc.wantStatus, rec.Code)

			resp := decode[shared.ErrorResponse](t, rec)
			assert.Equal(t, tc.wantMessage, resp.Error)
			assert.NotEmpty(t, resp.TraceID)
			assert.NotContains(t, rec.Body.String(), "sk-")
			assert.Len(t, s.generator.Requests(), tc.wantCalls)
		})
	}
}

func TestDownloads(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	write := func(name, content string) string {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
		return p
	}

	s := newTestServer(t)
	s.downloader.Paths = map[domain.ArtifactKind]map[string]string{
		domain.KindHTML:  {"abc": write("abc.html", "<html>abc</html>"), "abc_model_1": write("abc_model_1.html", "<p>1</p>")},
		domain.KindImage: {"abc": write("abc.png", "full")},
		domain.KindCard:  {"abc": write("abc_card.png", "card")},
	}

	tests := []struct {
		target      string
		wantType    string
		wantName    string
		wantContent string
	}{
		{"/api/download-html/abc", "text/html; charset=utf-8", "abc.html", "<html>abc</html>"},
		{"/api/download-html/abc_model_1", "text/html; charset=utf-8", "abc_model_1.html", "<p>1</p>"},
		{"/api/download-image/abc", "image/png", "abc.png", "full"},
		{"/api/download-card/abc", "image/png", "abc_card.png", "card"},
	}

	for _, tc := range tests {
		t.Run(tc.target, func(t *testing.T) {
			rec := s.do(t, http.MethodGet, tc.target, nil)
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tc.wantType, rec.Header().Get("Content-Type"))
			assert.Equal(t, "attachment; filename="+tc.wantName, rec.Header().Get("Content-Disposition"))
			assert.Equal(t, tc.wantContent, rec.Body.String())
		})
	}
}

func TestDownloadNotFound(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	for _, target := range []string{
		"/api/download-html/missing",
		"/api/download-image/missing",
		"/api/download-card/missing",
	} {
		rec := s.do(t, http.MethodGet, target, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code, target)
		assert.Equal(t, "Artifact not found", decode[shared.ErrorResponse](t, rec).Error)
	}

	calls := s.downloader.Calls()
	require.Len(t, calls, 3)
	assert.Equal(t, mocks.DownloadCall{Kind: domain.KindCard, RawID: "missing"}, calls[2])
}

func TestDownloadCardRegenerationFailure(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	s.downloader.ResolveFn = func(ctx context.Context, kind domain.ArtifactKind, rawID string) (string, error) {
		return "", fmt.Errorf("render stage failed for abc: %w", domain.ErrRenderFailure)
	}

	rec := s.do(t, http.MethodGet, "/api/download-card/abc", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Rendering failed", decode[shared.ErrorResponse](t, rec).Error)
}

func TestSummarize(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	s.summarizer.Summary = "# Notes"

	rec := s.do(t, http.MethodPost, "/api/summarize", api.SummarizeRequest{Content: "long text", Model: "gemini-2.0-flash"})
	require.Equal(t, http.StatusOK, rec.Code)

	got := decode[api.SummarizeResponse](t, rec)
	if diff := cmp.Diff(api.SummarizeResponse{Summary: "# Notes", Success: true}, got); diff != "" {
		t.Errorf("response mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []string{"gemini-2.0-flash"}, s.summarizer.Models())
}

func TestSummarizeFailuresAreReportedInBody(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		err         error
		wantMessage string
	}{
		{"empty content", domain.ErrMissingInput, "Missing required input"},
		{"model failure", fmt.Errorf("%w: timeout", domain.ErrGenerationFailure), "Content generation failed"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			s := newTestServer(t)
			s.summarizer.Err = tc.err

			rec := s.do(t, http.MethodPost, "/api/summarize", api.SummarizeRequest{})
			require.Equal(t, http.StatusOK, rec.Code)

			got := decode[api.SummarizeResponse](t, rec)
			assert.False(t, got.Success)
			assert.Empty(t, got.Summary)
			assert.Equal(t, tc.wantMessage, got.Message)
		})
	}
}

func TestFetchWeb(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	s.fetcher.Content = "Title: Example"

	rec := s.do(t, http.MethodPost, "/api/fetch-web", api.WebFetchRequest{URL: "https://example.com"})
	require.Equal(t, http.StatusOK, rec.Code)

	got := decode[api.WebFetchResponse](t, rec)
	assert.True(t, got.Success)
	assert.Equal(t, "Title: Example", got.Content)
	assert.Equal(t, 1, s.fetcher.Calls())
}

func TestFetchWebFailuresAreReportedInBody(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		err         error
		wantMessage string
	}{
		{"blank url", fmt.Errorf("%w: url is required", domain.ErrMissingInput), "Missing required input"},
		{"upstream failure", errors.New("fetch https://example.com: status 502"), "Failed to fetch web content"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			s := newTestServer(t)
			s.fetcher.Err = tc.err

			rec := s.do(t, http.MethodPost, "/api/fetch-web", api.WebFetchRequest{URL: "https://example.com"})
			require.Equal(t, http.StatusOK, rec.Code)

			got := decode[api.WebFetchResponse](t, rec)
			assert.False(t, got.Success)
			assert.Equal(t, tc.wantMessage, got.Message)
		})
	}
}
