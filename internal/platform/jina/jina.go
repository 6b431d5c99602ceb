// Package jina fetches readable page content through the Jina reader proxy,
// which returns a markdown rendering of any public URL.
package jina

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/smart-card/smartcard-api/internal/config"
)

// maxContentBytes caps how much of a page is read into memory.
const maxContentBytes = 8 << 20

var (
	// ErrNotConfigured is returned when no API key is configured.
	ErrNotConfigured = errors.New("jina API key not configured")

	// ErrFetchFailed is returned when the proxy cannot be reached or
	// answers with a non-2xx status.
	ErrFetchFailed = errors.New("web fetch failed")
)

// Client calls the reader proxy.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	logger  *slog.Logger
}

// NewClient creates a client from cfg. A missing API key is not an error
// here; Fetch reports ErrNotConfigured instead.
func NewClient(cfg config.JinaConfig, timeout time.Duration, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if cfg.BaseURL == "" {
		return nil, errors.New("jina base URL cannot be empty")
	}

	base := cfg.BaseURL
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}

	return &Client{
		baseURL: base,
		apiKey:  cfg.APIKey,
		http:    &http.Client{Timeout: timeout},
		logger:  logger.With("component", "jina_client"),
	}, nil
}

// Fetch returns the proxy's rendering of target.
func (c *Client) Fetch(ctx context.Context, target string) (string, error) {
	if c.apiKey == "" {
		return "", ErrNotConfigured
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+target, nil)
	if err != nil {
		return "", fmt.Errorf("%w: build request: %v", ErrFetchFailed, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	c.logger.InfoContext(ctx, "fetching web content", "url", target)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: upstream status %d", ErrFetchFailed, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxContentBytes))
	if err != nil {
		return "", fmt.Errorf("%w: read body: %v", ErrFetchFailed, err)
	}

	return string(body), nil
}
