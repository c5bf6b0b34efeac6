// Package scraper provides constants used throughout the parsing functionality.
package scraper

import "time"

// Timeout constants
const (
	HTTPTimeout    = 30 * time.Second
	BrowserTimeout = 40 * time.Second
	BatchTimeout   = 5 * time.Minute
)

// Result defaults
const (
	DefaultTitle    = "No title"
	DefaultLanguage = "en"
)

// Browser configuration
const (
	DefaultWindowWidth  = 1366
	DefaultWindowHeight = 900
	MaxRedirects        = 5
)

// Blocked domains for browser requests
var BlockedDomains = []string{
	"doubleclick",
	"googlesyndication",
	"google-analytics",
	"facebook.com/tr",
	"taboola",
	"outbrain",
	"scorecardresearch",
	"chartbeat",
	"amazon-adsystem",
}

// Cloudflare detection patterns
var CloudflarePatterns = []string{
	"CF_BLOCKED",
	"cloudflare",
	"HTTP 403",
	"all alternate URLs failed",
	"attention required",
	"cloudflare ray id",
	"what can i do to resolve this?",
	"why have i been blocked?",
	"performance & security by cloudflare",
}
