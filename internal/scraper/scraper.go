// Package scraper turns HTML documents and URLs into Markdown-flavored article
// records. It fetches pages over HTTP with an optional headless browser
// fallback, runs the Markdown rewrite on a cloned document, extracts the main
// content with readability and formats the result.
package scraper

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"go.uber.org/zap"

	"md-article-parser/internal/config"
	"md-article-parser/internal/models"
)

// Fetcher retrieves raw HTML for a URL.
// A non-200 response, a timeout or a network error is returned as an error.
type Fetcher interface {
	Fetch(ctx context.Context, targetURL string) (string, error)
}

// FetcherFunc adapts a plain function to Fetcher
type FetcherFunc func(ctx context.Context, targetURL string) (string, error)

func (f FetcherFunc) Fetch(ctx context.Context, targetURL string) (string, error) {
	return f(ctx, targetURL)
}

// Ensure Scraper implements Fetcher at compile time.
var _ Fetcher = (*Scraper)(nil)

// Scraper fetches over HTTP first and falls back to a headless browser when enabled
type Scraper struct {
	httpClient    Fetcher
	browserClient Fetcher
	logger        *zap.Logger
}

// NewScraper builds the fetcher chain from cfg. The browser fallback is only wired when cfg enables it.
func NewScraper(cfg config.ScrapeConfig, logger *zap.Logger) *Scraper {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Scraper{
		httpClient: NewHTTPClient(cfg, logger),
		logger:     logger,
	}
	if cfg.BrowserFallback {
		s.browserClient = NewBrowserClient(cfg, logger)
	}
	return s
}

// Fetch implements Fetcher
func (s *Scraper) Fetch(ctx context.Context, targetURL string) (string, error) {
	return s.ScrapeSmart(ctx, targetURL)
}

// ScrapeSmart implements the hybrid strategy: HTTP first, browser fallback
func (s *Scraper) ScrapeSmart(ctx context.Context, targetURL string) (string, error) {
	if _, err := parseHTTPURL(targetURL); err != nil {
		return "", err
	}

	httpCtx, cancel := context.WithTimeout(ctx, HTTPTimeout)
	defer cancel()

	html, err := s.httpClient.Fetch(httpCtx, targetURL)
	if err == nil {
		return html, nil
	}
	if s.browserClient == nil || !shouldUseBrowser(err) {
		return "", err
	}

	s.logger.Warn("HTTP fetch failed, falling back to browser",
		zap.String("url", targetURL),
		zap.Error(err),
	)

	browserCtx, cancel := context.WithTimeout(ctx, BrowserTimeout)
	defer cancel()

	html, browserErr := s.browserClient.Fetch(browserCtx, targetURL)
	if browserErr != nil {
		return "", fmt.Errorf("browser fallback failed after %v: %w", err, browserErr)
	}
	return html, nil
}

// shouldUseBrowser reports whether a failed HTTP fetch may succeed in a real browser.
// A browser renders any body regardless of status, so definitive statuses such as
// 404 are never retried there.
func shouldUseBrowser(err error) bool {
	if shouldTryAlternates(err) {
		return true
	}
	var timeoutErr *models.TimeoutError
	return errors.As(err, &timeoutErr)
}

// parseHTTPURL accepts absolute http and https URLs only
func parseHTTPURL(rawURL string) (*url.URL, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, &models.InvalidURLError{URL: rawURL, Err: err}
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, &models.InvalidURLError{URL: rawURL, Err: fmt.Errorf("expected absolute http(s) URL")}
	}
	return u, nil
}
