package scraper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"md-article-parser/internal/config"
	"md-article-parser/internal/models"
)

// Ensure HTTPClient implements Fetcher at compile time.
var _ Fetcher = (*HTTPClient)(nil)

type HTTPClient struct {
	client         *http.Client
	config         config.ScrapeConfig
	regexes        map[string]*regexp.Regexp
	logger         *zap.Logger
	retryBaseDelay time.Duration
}

func NewHTTPClient(cfg config.ScrapeConfig, logger *zap.Logger) *HTTPClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	maxRedirects := cfg.MaxRedirects
	if maxRedirects <= 0 {
		maxRedirects = MaxRedirects
	}

	// Configure HTTP client with connection pooling
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	}

	client := &http.Client{
		Transport: transport,
		Timeout:   time.Duration(cfg.TimeoutMs) * time.Millisecond,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return fmt.Errorf("too many redirects")
			}
			return nil
		},
	}

	return &HTTPClient{
		client:         client,
		config:         cfg,
		regexes:        config.CompileRegexes(),
		logger:         logger,
		retryBaseDelay: time.Second,
	}
}

// Fetch implements Fetcher. Alternate AMP/mobile URLs are only tried when enabled in config.
func (h *HTTPClient) Fetch(ctx context.Context, targetURL string) (string, error) {
	if h.config.TryAlternates {
		html, _, err := h.FetchWithAlternates(ctx, targetURL)
		return html, err
	}
	return h.FetchHTML(ctx, targetURL, 0)
}

// setRequestHeaders sets browser-like headers on the request. Accept-Encoding is
// left to the transport so gzip bodies are decoded transparently.
func (h *HTTPClient) setRequestHeaders(req *http.Request) {
	req.Header.Set("User-Agent", h.config.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
	req.Header.Set("Upgrade-Insecure-Requests", "1")
}

// retryWithBackoff implements exponential backoff for retries
func (h *HTTPClient) retryWithBackoff(ctx context.Context, targetURL string, retryCount int, cause error) (string, error) {
	if retryCount >= h.config.MaxRetries {
		return "", cause
	}

	delay := h.retryBaseDelay * time.Duration(1<<retryCount)
	if delay > 5*time.Second {
		delay = 5 * time.Second
	}

	h.logger.Debug("Retrying request",
		zap.String("url", targetURL),
		zap.Int("attempt", retryCount+1),
		zap.Duration("delay", delay),
	)

	select {
	case <-time.After(delay):
	case <-ctx.Done():
		return "", h.wrapTransportError(targetURL, ctx.Err())
	}
	return h.FetchHTML(ctx, targetURL, retryCount+1)
}

// FetchHTML fetches HTML content from a URL with retry logic
func (h *HTTPClient) FetchHTML(ctx context.Context, targetURL string, retryCount int) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return "", &models.InvalidURLError{URL: targetURL, Err: err}
	}

	h.setRequestHeaders(req)

	resp, err := h.client.Do(req)
	if err != nil {
		return "", h.wrapTransportError(targetURL, err)
	}
	defer resp.Body.Close()

	// Handle 5xx server errors with retry logic
	if resp.StatusCode >= 500 {
		return h.retryWithBackoff(ctx, targetURL, retryCount, &models.HTTPError{
			StatusCode: resp.StatusCode,
			URL:        targetURL,
			Err:        fmt.Errorf("HTTP %d", resp.StatusCode),
		})
	}

	if resp.StatusCode != http.StatusOK {
		return "", &models.HTTPError{
			StatusCode: resp.StatusCode,
			URL:        targetURL,
			Err:        fmt.Errorf("HTTP %d", resp.StatusCode),
		}
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType != "" && !h.regexes["htmlContentType"].MatchString(contentType) {
		return "", fmt.Errorf("non-HTML content-type: %s", contentType)
	}

	// Read response body with size limit
	reader := io.Reader(resp.Body)
	if h.config.SizeLimitBytes > 0 {
		reader = io.LimitReader(resp.Body, int64(h.config.SizeLimitBytes))
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		return "", h.wrapTransportError(targetURL, fmt.Errorf("failed to read response: %w", err))
	}

	html := string(body)
	if h.LooksLikeCFBlock(html) {
		return "", &models.CloudflareBlockError{Domain: req.URL.Hostname(), Err: fmt.Errorf("CF_BLOCKED")}
	}

	return html, nil
}

// wrapTransportError converts timeouts into TimeoutError and keeps other errors wrapped with the URL
func (h *HTTPClient) wrapTransportError(targetURL string, err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &models.TimeoutError{
			Operation: "fetch " + targetURL,
			Timeout:   (time.Duration(h.config.TimeoutMs) * time.Millisecond).String(),
			Err:       err,
		}
	}
	return fmt.Errorf("request failed: %w", err)
}

// LooksLikeCFBlock checks if HTML content indicates Cloudflare blocking
func (h *HTTPClient) LooksLikeCFBlock(html string) bool {
	return h.regexes["cfBlock"].MatchString(strings.ToLower(html))
}

// GenerateAlternateURLs creates alternative URLs for AMP/mobile fallback
func GenerateAlternateURLs(originalURL string) ([]string, error) {
	u, err := url.Parse(originalURL)
	if err != nil {
		return nil, &models.InvalidURLError{URL: originalURL, Err: err}
	}

	alternates := make([]string, 0, 4)

	// AMP prefix (/amp/path)
	if !strings.HasPrefix(u.Path, "/amp/") {
		ampURL := *u
		ampURL.Path = "/amp" + u.Path
		alternates = append(alternates, ampURL.String())
	}

	// AMP suffix (/path/amp)
	if !strings.HasSuffix(u.Path, "/amp") {
		ampURL := *u
		ampURL.Path = strings.TrimSuffix(ampURL.Path, "/") + "/amp"
		alternates = append(alternates, ampURL.String())
	}

	// Query AMP
	queryURL := *u
	query := queryURL.Query()
	query.Set("outputType", "amp")
	queryURL.RawQuery = query.Encode()
	alternates = append(alternates, queryURL.String())

	// m. subdomain
	if !strings.HasPrefix(u.Hostname(), "m.") {
		mobileURL := *u
		mobileURL.Host = "m." + u.Host
		alternates = append(alternates, mobileURL.String())
	}

	return alternates, nil
}

// shouldTryAlternates reports whether err is a block or server error worth routing around
func shouldTryAlternates(err error) bool {
	var httpErr *models.HTTPError
	if errors.As(err, &httpErr) {
		switch {
		case httpErr.StatusCode == http.StatusForbidden,
			httpErr.StatusCode == http.StatusNotAcceptable,
			httpErr.StatusCode == http.StatusUnavailableForLegalReasons,
			httpErr.StatusCode >= 500:
			return true
		}
	}
	var cfErr *models.CloudflareBlockError
	return errors.As(err, &cfErr)
}

// FetchWithAlternates tries the primary URL first, then AMP/mobile alternates in parallel.
// The first alternate that succeeds wins.
func (h *HTTPClient) FetchWithAlternates(ctx context.Context, targetURL string) (string, string, error) {
	html, err := h.FetchHTML(ctx, targetURL, 0)
	if err == nil {
		return html, targetURL, nil
	}
	if !shouldTryAlternates(err) {
		return "", "", err
	}

	alternates, altErr := GenerateAlternateURLs(targetURL)
	if altErr != nil {
		return "", "", altErr
	}

	g, gctx := errgroup.WithContext(ctx)
	type result struct {
		html string
		url  string
	}
	resultChan := make(chan result, 1)

	for _, altURL := range alternates {
		g.Go(func() error {
			html, err := h.FetchHTML(gctx, altURL, 0)
			if err != nil {
				return nil
			}
			select {
			case resultChan <- result{html: html, url: altURL}:
			default:
			}
			return nil
		})
	}

	_ = g.Wait()
	close(resultChan)

	if res, ok := <-resultChan; ok {
		h.logger.Info("Fetched alternate URL", zap.String("url", targetURL), zap.String("alternate", res.url))
		return res.html, res.url, nil
	}

	return "", "", fmt.Errorf("all alternate URLs failed: %w", err)
}
