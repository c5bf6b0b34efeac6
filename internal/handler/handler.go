// Package handler maps parse requests onto the parser and its typed errors onto
// HTTP status codes. It backs both the Cloud Run server and the Lambda function.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"md-article-parser/internal/models"
	"md-article-parser/internal/scraper"
)

// Request timeouts in milliseconds
const (
	DefaultTimeoutMs = 240000
	MinTimeoutMs     = 1000
	MaxTimeoutMs     = 240000
)

// CORSHeaders are set on every response
var CORSHeaders = map[string]string{
	"Content-Type":                 "application/json; charset=utf-8",
	"Access-Control-Allow-Origin":  "*",
	"Access-Control-Allow-Headers": "Content-Type,X-Api-Key,x-api-key",
	"Access-Control-Allow-Methods": "GET,POST,OPTIONS",
}

// Response is a status code with a JSON-encodable body
type Response struct {
	StatusCode int
	Body       any
}

// JSON encodes the response body
func (r Response) JSON() []byte {
	data, err := json.Marshal(r.Body)
	if err != nil {
		data, _ = json.Marshal(models.ErrorResponse{Error: "Failed to serialize response"})
	}
	return data
}

// Service runs parse requests
type Service struct {
	parser *scraper.Parser
	logger *zap.Logger
	now    func() time.Time
}

func NewService(parser *scraper.Parser, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{parser: parser, logger: logger, now: time.Now}
}

// Parse handles a request carrying either markup or a URL to fetch.
// Markup wins when both are present; the URL is then only recorded on the result.
func (s *Service) Parse(ctx context.Context, req models.ParseRequest, timeoutMs int) Response {
	if req.URL == "" && req.Markup == "" {
		return errorResponse(http.StatusBadRequest, "Missing \"url\" parameter or markup body", "")
	}

	ctx, cancel := context.WithTimeout(ctx, time.Duration(ClampTimeout(timeoutMs))*time.Millisecond)
	defer cancel()

	start := s.now()

	var info *models.ArticleInfo
	var err error
	if req.Markup != "" {
		info, err = s.parser.ParseFromMarkupE(req.Markup, req.URL)
	} else {
		info, err = s.parser.ParseFromURLE(ctx, req.URL)
	}

	metadata := models.Metadata{
		URL:        req.URL,
		ParsedAt:   s.now(),
		DurationMs: s.now().Sub(start).Milliseconds(),
	}

	if err != nil {
		s.logger.Warn("Parse request failed",
			zap.String("url", req.URL),
			zap.Int64("duration_ms", metadata.DurationMs),
			zap.Error(err),
		)
		return ErrorToResponse(err, metadata)
	}

	s.logger.Info("Parsed",
		zap.String("status", "success"),
		zap.String("url", req.URL),
		zap.String("title", info.Title),
		zap.Int64("duration_ms", metadata.DurationMs),
	)
	return Response{
		StatusCode: http.StatusOK,
		Body:       models.ParseResponse{ArticleInfo: info, Metadata: metadata},
	}
}

// ErrorToResponse maps parser errors onto status codes
func ErrorToResponse(err error, metadata models.Metadata) Response {
	var (
		cfErr      *models.CloudflareBlockError
		timeoutErr *models.TimeoutError
		invalidErr *models.InvalidURLError
		markupErr  *models.MarkupParseError
		httpErr    *models.HTTPError
	)

	switch {
	case errors.As(err, &cfErr):
		return Response{
			StatusCode: http.StatusUnavailableForLegalReasons,
			Body: models.BlockedResponse{
				Error:    "Blocked by site protection",
				Provider: "cloudflare",
				Domain:   cfErr.Domain,
				Metadata: metadata,
			},
		}
	case errors.As(err, &timeoutErr), errors.Is(err, context.DeadlineExceeded):
		return errorResponse(http.StatusGatewayTimeout, "Parse took too long", err.Error())
	case errors.As(err, &invalidErr):
		return errorResponse(http.StatusBadRequest, "Invalid URL format", err.Error())
	case errors.As(err, &markupErr):
		return errorResponse(http.StatusBadRequest, "Invalid markup", err.Error())
	case errors.Is(err, models.ErrNoContent):
		return errorResponse(http.StatusUnprocessableEntity, "No article content found", "")
	case errors.As(err, &httpErr):
		return errorResponse(http.StatusBadGateway, "Failed to fetch page", err.Error())
	default:
		return errorResponse(http.StatusInternalServerError, "Failed to parse", err.Error())
	}
}

// ClampTimeout bounds a requested timeout; zero or negative selects the default
func ClampTimeout(timeoutMs int) int {
	if timeoutMs <= 0 {
		return DefaultTimeoutMs
	}
	if timeoutMs > MaxTimeoutMs {
		return MaxTimeoutMs
	}
	if timeoutMs < MinTimeoutMs {
		return MinTimeoutMs
	}
	return timeoutMs
}

// ParseTimeout reads a millisecond timeout query value, returning 0 when absent or invalid
func ParseTimeout(value string) int {
	if value == "" {
		return 0
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return parsed
}

func errorResponse(statusCode int, message, details string) Response {
	return Response{
		StatusCode: statusCode,
		Body:       models.ErrorResponse{Error: message, Details: details},
	}
}
