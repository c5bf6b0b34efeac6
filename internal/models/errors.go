// Package models defines typed errors for better error handling and context.
package models

import (
	"errors"
	"fmt"
)

// ErrNoContent is returned when the extractor finds no main content region.
// It is an expected negative outcome, not a failure.
var ErrNoContent = errors.New("no article content found")

// CloudflareBlockError represents a Cloudflare blocking error
type CloudflareBlockError struct {
	Domain string
	Err    error
}

func (e *CloudflareBlockError) Error() string {
	return fmt.Sprintf("blocked by Cloudflare on domain %s: %v", e.Domain, e.Err)
}

func (e *CloudflareBlockError) Unwrap() error { return e.Err }

// TimeoutError represents a timeout error
type TimeoutError struct {
	Operation string
	Timeout   string
	Err       error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("timeout during %s after %s: %v", e.Operation, e.Timeout, e.Err)
}

func (e *TimeoutError) Unwrap() error { return e.Err }

// InvalidURLError represents an invalid URL error
type InvalidURLError struct {
	URL string
	Err error
}

func (e *InvalidURLError) Error() string {
	return fmt.Sprintf("invalid URL %s: %v", e.URL, e.Err)
}

func (e *InvalidURLError) Unwrap() error { return e.Err }

// HTTPError represents an HTTP-related error
type HTTPError struct {
	StatusCode int
	URL        string
	Err        error
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d for URL %s: %v", e.StatusCode, e.URL, e.Err)
}

func (e *HTTPError) Unwrap() error { return e.Err }

// MarkupParseError represents a failure to build a document tree from markup
type MarkupParseError struct {
	URL string
	Err error
}

func (e *MarkupParseError) Error() string {
	return fmt.Sprintf("failed to parse markup for %s: %v", e.URL, e.Err)
}

func (e *MarkupParseError) Unwrap() error { return e.Err }

// ContentExtractionError represents an error during content extraction
type ContentExtractionError struct {
	Step string
	Err  error
}

func (e *ContentExtractionError) Error() string {
	return fmt.Sprintf("content extraction failed at %s: %v", e.Step, e.Err)
}

func (e *ContentExtractionError) Unwrap() error { return e.Err }
