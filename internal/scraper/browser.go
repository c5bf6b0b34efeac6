package scraper

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"md-article-parser/internal/config"
	"md-article-parser/internal/models"
)

// Ensure BrowserClient implements Fetcher at compile time.
var _ Fetcher = (*BrowserClient)(nil)

// BrowserClient renders pages in headless Chrome for sites that need JavaScript
type BrowserClient struct {
	config  config.ScrapeConfig
	regexes map[string]*regexp.Regexp
	options BrowserOptions
	logger  *zap.Logger
}

func NewBrowserClient(cfg config.ScrapeConfig, logger *zap.Logger) *BrowserClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	opts := OptimizedBrowserOptions()
	opts.UserAgent = cfg.UserAgent
	opts.BlockJS = cfg.BrowserBlockJS

	return &BrowserClient{
		config:  cfg,
		regexes: config.CompileRegexes(),
		options: opts,
		logger:  logger,
	}
}

// Fetch implements Fetcher using the optimized browser options
func (b *BrowserClient) Fetch(ctx context.Context, targetURL string) (string, error) {
	html, _, err := b.ScrapeWithBrowser(ctx, targetURL, int(BrowserTimeout.Milliseconds()))
	return html, err
}

// ScrapeWithBrowser uses chromedp to load the page, trying AMP/mobile alternates when blocked
func (b *BrowserClient) ScrapeWithBrowser(ctx context.Context, targetURL string, timeoutMs int) (string, string, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(timeoutMs)*time.Millisecond)
	defer cancel()

	allocCtx, cancel := chromedp.NewExecAllocator(ctx, BuildChromeOptions(b.options)...)
	defer cancel()

	ctx, cancel = chromedp.NewContext(allocCtx)
	defer cancel()

	err := chromedp.Run(ctx, requestBlockingAction(GetRequestBlockingScript(b.options)))
	if err != nil {
		return "", "", fmt.Errorf("failed to set up request blocking: %w", err)
	}

	html, finalURL, err := b.navigateAndExtract(ctx, targetURL)
	if err == nil && !b.LooksLikeCFBlock(html) {
		return html, finalURL, nil
	}

	alternates, altErr := GenerateAlternateURLs(targetURL)
	if altErr != nil {
		return "", "", altErr
	}

	for _, altURL := range alternates {
		html, finalURL, err := b.navigateAndExtract(ctx, altURL)
		if err == nil && !b.LooksLikeCFBlock(html) {
			b.logger.Info("Browser fetched alternate URL", zap.String("url", targetURL), zap.String("alternate", altURL))
			return html, finalURL, nil
		}
	}

	if ctx.Err() != nil {
		return "", "", &models.TimeoutError{
			Operation: "browser fetch " + targetURL,
			Timeout:   (time.Duration(timeoutMs) * time.Millisecond).String(),
			Err:       ctx.Err(),
		}
	}

	domain := ""
	if u, parseErr := parseHTTPURL(targetURL); parseErr == nil {
		domain = u.Hostname()
	}
	return "", "", &models.CloudflareBlockError{
		Domain: domain,
		Err:    fmt.Errorf("all URLs failed or were blocked by Cloudflare"),
	}
}

// requestBlockingAction registers script to run in every document the tab loads,
// before any of the page's own scripts.
func requestBlockingAction(script string) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		_, err := page.AddScriptToEvaluateOnNewDocument(script).Do(ctx)
		return err
	})
}

// navigateAndExtract navigates to a URL and returns the rendered HTML and final URL
func (b *BrowserClient) navigateAndExtract(ctx context.Context, targetURL string) (string, string, error) {
	var html string
	var finalURL string

	err := chromedp.Run(ctx, chromedp.Tasks{
		chromedp.Navigate(targetURL),
		chromedp.WaitReady("body"),
		chromedp.Location(&finalURL),
		chromedp.OuterHTML("html", &html),
	})
	if err != nil {
		return "", "", fmt.Errorf("navigation failed: %w", err)
	}

	return html, finalURL, nil
}

// LooksLikeCFBlock checks if HTML content indicates Cloudflare blocking
func (b *BrowserClient) LooksLikeCFBlock(html string) bool {
	return b.regexes["cfBlock"].MatchString(strings.ToLower(html))
}
