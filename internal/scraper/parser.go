package scraper

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"md-article-parser/internal/config"
	"md-article-parser/internal/markdown"
	"md-article-parser/internal/models"
)

// Parser is the entry point for turning markup or URLs into ArticleInfo records.
// The Parse* methods never return errors: failures are logged and reported as nil.
// The *E variants return the typed error instead.
type Parser struct {
	options   models.ParserOptions
	extractor Extractor
	fetcher   Fetcher
	formatter *Formatter
	logger    *zap.Logger
	now       func() time.Time
}

// Option configures a Parser
type Option func(*Parser)

// WithParserOptions replaces the default extraction options
func WithParserOptions(opts models.ParserOptions) Option {
	return func(p *Parser) {
		p.options = opts
	}
}

func WithKeepClasses(keep bool) Option {
	return func(p *Parser) {
		p.options.KeepClasses = keep
	}
}

func WithDisableJSONLD(disable bool) Option {
	return func(p *Parser) {
		p.options.DisableJSONLD = disable
	}
}

func WithWordsPerMinute(wpm int) Option {
	return func(p *Parser) {
		p.options.WordsPerMinute = wpm
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(p *Parser) {
		if logger != nil {
			p.logger = logger
		}
	}
}

func WithFetcher(fetcher Fetcher) Option {
	return func(p *Parser) {
		p.fetcher = fetcher
	}
}

func WithExtractor(extractor Extractor) Option {
	return func(p *Parser) {
		p.extractor = extractor
	}
}

// WithClock sets the time source for ArticleInfo timestamps
func WithClock(now func() time.Time) Option {
	return func(p *Parser) {
		p.now = now
	}
}

// NewParser creates a Parser. Options are applied over the defaults in order,
// so later options win.
func NewParser(opts ...Option) *Parser {
	p := &Parser{
		options: config.DefaultParserOptions(),
		logger:  zap.NewNop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}

	if p.options.WordsPerMinute <= 0 {
		p.options.WordsPerMinute = config.DefaultWordsPerMinute
	}
	if p.extractor == nil {
		p.extractor = NewReadabilityExtractor(p.options)
	}
	if p.fetcher == nil {
		p.fetcher = NewScraper(config.DefaultScrapeConfig(), p.logger)
	}
	p.formatter = NewFormatter(p.options.WordsPerMinute, p.now)

	return p
}

// Options returns the effective extraction options
func (p *Parser) Options() models.ParserOptions {
	return p.options
}

// ParseFromMarkup parses an HTML string. pageURL is recorded on the result and
// used to resolve relative references.
func (p *Parser) ParseFromMarkup(markup, pageURL string) *models.ArticleInfo {
	info, err := p.ParseFromMarkupE(markup, pageURL)
	if err != nil {
		p.logFailure(pageURL, err)
		return nil
	}
	return info
}

// ParseFromMarkupE is ParseFromMarkup with the failure returned
func (p *Parser) ParseFromMarkupE(markup, pageURL string) (*models.ArticleInfo, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, &models.MarkupParseError{URL: pageURL, Err: err}
	}
	return p.ParseDocumentE(doc, pageURL)
}

// ParseDocumentE rewrites a clone of doc and extracts the article from it.
// doc itself is never modified and can be parsed again with other options.
func (p *Parser) ParseDocumentE(doc *goquery.Document, pageURL string) (info *models.ArticleInfo, err error) {
	defer func() {
		if r := recover(); r != nil {
			info = nil
			err = &models.ContentExtractionError{Step: "parse", Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	clone := markdown.Clone(doc)
	if clone == nil {
		return nil, &models.MarkupParseError{URL: pageURL, Err: markdown.ErrEmptyDocument}
	}
	if err := markdown.Rewrite(clone); err != nil {
		return nil, &models.ContentExtractionError{Step: "markdown rewrite", Err: err}
	}

	article, err := p.extractor.Extract(clone.Get(0), pageURL)
	if err != nil {
		return nil, err
	}
	if article == nil {
		return nil, models.ErrNoContent
	}

	article.TextContent = StripLeadingWhitespace(article.TextContent)
	return p.formatter.Format(article, pageURL), nil
}

// ParseFromURL fetches targetURL and parses the returned markup
func (p *Parser) ParseFromURL(ctx context.Context, targetURL string) *models.ArticleInfo {
	info, err := p.ParseFromURLE(ctx, targetURL)
	if err != nil {
		p.logFailure(targetURL, err)
		return nil
	}
	return info
}

// ParseFromURLE is ParseFromURL with the failure returned
func (p *Parser) ParseFromURLE(ctx context.Context, targetURL string) (*models.ArticleInfo, error) {
	if _, err := parseHTTPURL(targetURL); err != nil {
		return nil, err
	}

	p.logger.Info("Fetching content", zap.String("url", targetURL))

	markup, err := p.fetcher.Fetch(ctx, targetURL)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", targetURL, err)
	}
	return p.ParseFromMarkupE(markup, targetURL)
}

// ParseMany parses all URLs concurrently. The result has one entry per input in
// input order; a failed URL leaves nil at its index without affecting the others.
func (p *Parser) ParseMany(ctx context.Context, urls []string) []*models.ArticleInfo {
	p.logger.Info("Processing URLs", zap.Int("count", len(urls)))

	results := make([]*models.ArticleInfo, len(urls))
	var g errgroup.Group

	for i, targetURL := range urls {
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					p.logger.Error("Panic while processing URL",
						zap.String("url", targetURL),
						zap.Any("panic", r),
					)
				}
			}()

			p.logger.Info("Processing URL",
				zap.Int("index", i+1),
				zap.Int("total", len(urls)),
				zap.String("url", targetURL),
			)

			result := p.ParseFromURL(ctx, targetURL)
			if result != nil {
				p.logger.Info("Processed", zap.String("status", "success"), zap.String("title", result.Title))
			} else {
				p.logger.Warn("Failed to process", zap.String("url", targetURL))
			}
			results[i] = result
			return nil
		})
	}
	_ = g.Wait()

	successful := 0
	for _, result := range results {
		if result != nil {
			successful++
		}
	}
	p.logger.Info("Batch completed",
		zap.String("status", "success"),
		zap.Int("successful", successful),
		zap.Int("total", len(urls)),
	)

	return results
}

// logFailure logs missing content and blocked pages at warn level and everything else at error level
func (p *Parser) logFailure(pageURL string, err error) {
	if errors.Is(err, models.ErrNoContent) {
		p.logger.Warn("No article content found", zap.String("url", pageURL))
		return
	}
	if IsCloudflareBlock(err) {
		p.logger.Warn("Blocked by site protection", zap.String("url", pageURL), zap.Error(err))
		return
	}
	p.logger.Error("Error parsing article", zap.String("url", pageURL), zap.Error(err))
}
