package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"md-article-parser/internal/config"
	"md-article-parser/internal/handler"
	"md-article-parser/internal/logger"
	"md-article-parser/internal/scraper"
)

func main() {
	// Create initial logger for startup
	initialLogger := logger.NewDefault()

	configPath := os.Getenv("MDPARSE_CONFIG")
	cfg, err := config.Load(configPath)
	if err != nil {
		initialLogger.Fatal("Failed to load config", zap.String("config_path", configPath), zap.Error(err))
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
	h := handler.NewHTTPHandler(handler.NewService(parser, log), int64(cfg.Scrape.SizeLimitBytes), log)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	mux := http.NewServeMux()
	mux.Handle("/", h)

	server := &http.Server{
		Addr:              ":" + port,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("Starting server", zap.String("port", port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error("Graceful shutdown failed", zap.Error(err))
	}
}
