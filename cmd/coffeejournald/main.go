package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/beanvault/coffee-journal/internal/async"
	"github.com/beanvault/coffee-journal/internal/common"
	"github.com/beanvault/coffee-journal/internal/export"
	"github.com/beanvault/coffee-journal/internal/llm/openai"
	"github.com/beanvault/coffee-journal/internal/ocr"
	"github.com/beanvault/coffee-journal/internal/pipeline"
	"github.com/beanvault/coffee-journal/internal/repository"
	"github.com/beanvault/coffee-journal/internal/server"
)

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := repository.Open(ctx, cfg.Database, logger)
	if err != nil {
		logger.Error("open journal store", "error", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	if err := repository.HealthCheck(ctx, db, logger); err != nil {
		logger.Error("journal store health failed", "error", err)
		os.Exit(1)
	}
	if err := repository.EnsureSchema(ctx, db); err != nil {
		logger.Error("ensure schema", "error", err)
		os.Exit(1)
	}

	entries := repository.NewEntryRepository(db, logger)
	exporter := export.NewService(entries, logger)

	engine := ocr.NewExtractor(ocr.Config{
		Tesseract:     cfg.OCR.Tesseract,
		TesseractLang: cfg.OCR.TesseractLang,
		TessdataDir:   cfg.OCR.TessdataDir,
	}, logger)

	extractor := openai.NewClient(openai.Config{
		APIKey:      cfg.LLM.APIKey,
		BaseURL:     cfg.LLM.BaseURL,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   cfg.LLM.MaxTokens,
		Timeout:     cfg.LLM.Timeout,
	}, logger)

	runner := pipeline.NewRunner(engine, extractor, logger)
	queue := async.NewScanQueue(runner, entries, logger)

	srv := server.New(cfg.Server, extractor, entries, exporter, queue, logger)
	go func() {
		if err := srv.Start(); err != nil {
			logger.Error("http serve", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	queue.Shutdown(shutdownCtx)
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown", "error", err)
	}
	logger.Info("stopped")
}
