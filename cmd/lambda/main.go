package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"

	"md-article-parser/internal/config"
	"md-article-parser/internal/handler"
	"md-article-parser/internal/logger"
	"md-article-parser/internal/models"
	"md-article-parser/internal/scraper"
)

// Soft timeout bounds in milliseconds
const (
	defaultRemainingMs = 90000
	safetyMarginMs     = 3000
	maxSoftTimeoutMs   = 70000
)

// LambdaHandler handles API Gateway proxy events
type LambdaHandler struct {
	service *handler.Service
	apiKey  string
	logger  *zap.Logger
}

func NewLambdaHandler(service *handler.Service, apiKey string, logger *zap.Logger) *LambdaHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LambdaHandler{service: service, apiKey: apiKey, logger: logger}
}

// Handler is the main Lambda handler function
func (h *LambdaHandler) Handler(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	if event.HTTPMethod == http.MethodOptions {
		return events.APIGatewayProxyResponse{StatusCode: http.StatusNoContent, Headers: handler.CORSHeaders}, nil
	}

	h.logger.Info("Request received",
		zap.String("method", event.HTTPMethod),
		zap.String("path", event.Path),
	)

	if h.apiKey == "" {
		h.logger.Error("SCRAPE_API_KEY environment variable not set")
		return respond(http.StatusInternalServerError, models.ErrorResponse{Error: "Server misconfiguration"}), nil
	}
	if key := requestAPIKey(event); key == "" || key != h.apiKey {
		return respond(http.StatusUnauthorized, models.ErrorResponse{Error: "Invalid or missing API key"}), nil
	}

	var req models.ParseRequest
	switch event.HTTPMethod {
	case http.MethodGet:
		req.URL = event.QueryStringParameters["url"]
		if req.URL == "" {
			return respond(http.StatusBadRequest, models.ErrorResponse{Error: "Missing \"url\" query parameter"}), nil
		}
	case http.MethodPost:
		body := event.Body
		if event.IsBase64Encoded {
			decoded, err := base64.StdEncoding.DecodeString(body)
			if err != nil {
				return respond(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body", Details: err.Error()}), nil
			}
			body = string(decoded)
		}
		if err := json.Unmarshal([]byte(body), &req); err != nil {
			return respond(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body", Details: err.Error()}), nil
		}
		if req.Markup == "" {
			return respond(http.StatusBadRequest, models.ErrorResponse{Error: "Missing markup body"}), nil
		}
	default:
		return respond(http.StatusMethodNotAllowed, models.ErrorResponse{Error: "Method not allowed"}), nil
	}

	resp := h.service.Parse(ctx, req, softTimeoutMs(ctx))
	return events.APIGatewayProxyResponse{
		StatusCode: resp.StatusCode,
		Headers:    handler.CORSHeaders,
		Body:       string(resp.JSON()),
	}, nil
}

// softTimeoutMs leaves a safety margin before the invocation deadline, capped at 70s
func softTimeoutMs(ctx context.Context) int {
	remaining := defaultRemainingMs
	if deadline, ok := ctx.Deadline(); ok {
		remaining = int(time.Until(deadline).Milliseconds())
	}

	soft := remaining - safetyMarginMs
	if soft < handler.MinTimeoutMs {
		soft = handler.MinTimeoutMs
	}
	if soft > maxSoftTimeoutMs {
		soft = maxSoftTimeoutMs
	}
	return soft
}

func requestAPIKey(event events.APIGatewayProxyRequest) string {
	if key := event.Headers["x-api-key"]; key != "" {
		return key
	}
	if key := event.Headers["X-Api-Key"]; key != "" {
		return key
	}
	return event.QueryStringParameters["key"]
}

func respond(statusCode int, body any) events.APIGatewayProxyResponse {
	return events.APIGatewayProxyResponse{
		StatusCode: statusCode,
		Headers:    handler.CORSHeaders,
		Body:       string(handler.Response{StatusCode: statusCode, Body: body}.JSON()),
	}
}

func main() {
	initialLogger := logger.NewDefault()

	cfg, err := config.Load(os.Getenv("MDPARSE_CONFIG"))
	if err != nil {
		initialLogger.Fatal("Failed to load config", zap.Error(err))
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		initialLogger.Fatal("Failed to create configured logger", zap.Error(err))
	}
	defer func() { _ = log.Sync() }()

	parser := scraper.NewParser(
		scraper.WithParserOptions(cfg.Parser),
		scraper.WithLogger(log),
		scraper.WithFetcher(scraper.NewScraper(cfg.Scrape, log)),
	)

	h := NewLambdaHandler(handler.NewService(parser, log), os.Getenv("SCRAPE_API_KEY"), log)
	lambda.Start(h.Handler)
}
