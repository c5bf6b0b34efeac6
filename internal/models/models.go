package models

import "time"

// ArticleInfo is the final result of a successful parse
type ArticleInfo struct {
	URL         string    `json:"url"`
	Title       string    `json:"title"`
	Excerpt     string    `json:"excerpt"`
	HTMLContent string    `json:"htmlContent"`
	MDContent   string    `json:"mdContent"`
	WordCount   int       `json:"wordCount"`
	ReadingTime int       `json:"readingTime"`
	SiteName    string    `json:"siteName"`
	Author      string    `json:"author"`
	Language    string    `json:"language"`
	Timestamp   time.Time `json:"timestamp"`
}

// Article is the record produced by a content extractor. Every field is optional;
// defaults are applied once, when the record is formatted into an ArticleInfo.
type Article struct {
	Title         string
	Byline        string
	SiteName      string
	Language      string
	Excerpt       string
	Content       string
	TextContent   string
	PublishedTime *time.Time
}

// ParserOptions configures content extraction
type ParserOptions struct {
	KeepClasses       bool     `json:"keepClasses" yaml:"keepClasses"`
	DisableJSONLD     bool     `json:"disableJSONLD" yaml:"disableJSONLD"`
	MaxElemsToParse   int      `json:"maxElemsToParse" yaml:"maxElemsToParse"`
	NTopCandidates    int      `json:"nbTopCandidates" yaml:"nbTopCandidates"`
	CharThreshold     int      `json:"charThreshold" yaml:"charThreshold"`
	ClassesToPreserve []string `json:"classesToPreserve" yaml:"classesToPreserve"`
	Debug             bool     `json:"debug" yaml:"debug"`
	WordsPerMinute    int      `json:"wordsPerMinute" yaml:"wordsPerMinute"`
}

// ParseRequest represents an incoming parse request for the HTTP and Lambda handlers
type ParseRequest struct {
	URL    string `json:"url"`
	Markup string `json:"markup,omitempty"`
}

// ErrorResponse represents error responses
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// BlockedResponse represents when fetching is blocked
type BlockedResponse struct {
	Error    string   `json:"error"`
	Provider string   `json:"provider"`
	Domain   string   `json:"domain"`
	Metadata Metadata `json:"metadata"`
}

// Metadata contains request metadata
type Metadata struct {
	URL        string    `json:"url"`
	ParsedAt   time.Time `json:"parsedAt"`
	DurationMs int64     `json:"durationMs"`
}

// ParseResponse is the success body of the HTTP and Lambda handlers
type ParseResponse struct {
	*ArticleInfo
	Metadata Metadata `json:"metadata"`
}
