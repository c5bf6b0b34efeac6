// Package scraper provides text processing utilities for content extraction.
package scraper

import (
	"errors"
	"math"
	"strings"

	"md-article-parser/internal/config"
	"md-article-parser/internal/models"
)

var leadingSpace = config.CompileRegexes()["leadingSpace"]

// CountWords counts whitespace-delimited tokens. Empty text has zero words.
func CountWords(text string) int {
	return len(strings.Fields(text))
}

// ReadingTime returns whole minutes needed to read wordCount words, rounded up.
// A non-positive wordsPerMinute falls back to the default reading speed.
func ReadingTime(wordCount, wordsPerMinute int) int {
	if wordCount <= 0 {
		return 0
	}
	if wordsPerMinute <= 0 {
		wordsPerMinute = config.DefaultWordsPerMinute
	}
	return int(math.Ceil(float64(wordCount) / float64(wordsPerMinute)))
}

// StripLeadingWhitespace removes indentation from every line. Whitespace-only
// lines are swallowed with it.
func StripLeadingWhitespace(text string) string {
	return leadingSpace.ReplaceAllString(text, "")
}

// CleanWhitespace removes excessive whitespace from text content
func CleanWhitespace(text string) string {
	if text == "" {
		return ""
	}

	cleaned := strings.ReplaceAll(text, "\n\n\n", "\n\n")
	cleaned = strings.ReplaceAll(cleaned, "  ", " ")
	return strings.TrimSpace(cleaned)
}

// ContainsAny checks if a string contains any of the substrings (case-insensitive)
func ContainsAny(s string, substrings []string) bool {
	sLower := strings.ToLower(s)
	for _, substr := range substrings {
		if strings.Contains(sLower, strings.ToLower(substr)) {
			return true
		}
	}
	return false
}

// IsCloudflareBlock checks if the error indicates Cloudflare blocking
func IsCloudflareBlock(err error) bool {
	if err == nil {
		return false
	}
	var cfErr *models.CloudflareBlockError
	if errors.As(err, &cfErr) {
		return true
	}
	return ContainsAny(err.Error(), CloudflarePatterns)
}
