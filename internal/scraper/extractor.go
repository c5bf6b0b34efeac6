package scraper

import (
	stdhtml "html"
	"net/url"
	"strings"

	readability "github.com/go-shiori/go-readability"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"

	"md-article-parser/internal/models"
)

// Extractor isolates the main content region of a document.
// It returns models.ErrNoContent when the document has no readable content.
type Extractor interface {
	Extract(doc *html.Node, pageURL string) (*models.Article, error)
}

// Ensure ReadabilityExtractor implements Extractor at compile time.
var _ Extractor = (*ReadabilityExtractor)(nil)

// ReadabilityExtractor wraps go-readability
type ReadabilityExtractor struct {
	options   models.ParserOptions
	sanitizer *bluemonday.Policy
}

func NewReadabilityExtractor(opts models.ParserOptions) *ReadabilityExtractor {
	return &ReadabilityExtractor{
		options:   opts,
		sanitizer: bluemonday.StrictPolicy(),
	}
}

// Extract runs readability on doc. Metadata strings are sanitized; the text
// content is returned as serialized by readability.
func (re *ReadabilityExtractor) Extract(doc *html.Node, pageURL string) (*models.Article, error) {
	if doc == nil {
		return nil, models.ErrNoContent
	}

	pageURI, err := url.Parse(pageURL)
	if err != nil || pageURL == "" {
		pageURI = &url.URL{}
	}

	parser := re.newParser()
	article, err := parser.ParseDocument(doc, pageURI)
	if err != nil {
		return nil, &models.ContentExtractionError{Step: "readability", Err: err}
	}
	if article.Node == nil || strings.TrimSpace(article.TextContent) == "" {
		return nil, models.ErrNoContent
	}

	return &models.Article{
		Title:         re.sanitizeText(article.Title),
		Byline:        re.sanitizeText(article.Byline),
		SiteName:      re.sanitizeText(article.SiteName),
		Language:      strings.TrimSpace(article.Language),
		Excerpt:       re.sanitizeText(article.Excerpt),
		Content:       article.Content,
		TextContent:   article.TextContent,
		PublishedTime: article.PublishedTime,
	}, nil
}

// newParser maps ParserOptions onto a readability parser; zero values keep readability's defaults
func (re *ReadabilityExtractor) newParser() readability.Parser {
	parser := readability.NewParser()
	parser.KeepClasses = re.options.KeepClasses
	parser.DisableJSONLD = re.options.DisableJSONLD
	parser.Debug = re.options.Debug

	if re.options.MaxElemsToParse > 0 {
		parser.MaxElemsToParse = re.options.MaxElemsToParse
	}
	if re.options.NTopCandidates > 0 {
		parser.NTopCandidates = re.options.NTopCandidates
	}
	if re.options.CharThreshold > 0 {
		parser.CharThresholds = re.options.CharThreshold
	}
	if len(re.options.ClassesToPreserve) > 0 {
		parser.ClassesToPreserve = append(parser.ClassesToPreserve, re.options.ClassesToPreserve...)
	}

	return parser
}

// sanitizeText strips markup from metadata and normalizes whitespace
func (re *ReadabilityExtractor) sanitizeText(text string) string {
	if text == "" {
		return ""
	}

	sanitized := stdhtml.UnescapeString(re.sanitizer.Sanitize(text))
	return CleanWhitespace(sanitized)
}
