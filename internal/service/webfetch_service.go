package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/smart-card/smartcard-api/internal/domain"
)

// WebFetcher returns a readable rendering of a web page.
type WebFetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// WebFetchService fetches page content for use as prompt input.
type WebFetchService struct {
	fetcher WebFetcher
	logger  *slog.Logger
}

// NewWebFetchService creates a WebFetchService.
func NewWebFetchService(fetcher WebFetcher, logger *slog.Logger) (*WebFetchService, error) {
	if fetcher == nil {
		return nil, nilDependency("fetcher")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &WebFetchService{
		fetcher: fetcher,
		logger:  logger.With("component", "webfetch_service"),
	}, nil
}

// Fetch returns the content at url. A blank url is domain.ErrMissingInput;
// fetcher errors are returned wrapped.
func (s *WebFetchService) Fetch(ctx context.Context, url string) (string, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return "", fmt.Errorf("%w: url is required", domain.ErrMissingInput)
	}

	content, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		s.logger.ErrorContext(ctx, "web fetch failed", "url", url, "error", err)
		return "", fmt.Errorf("fetch %s: %w", url, err)
	}
	return content, nil
}
