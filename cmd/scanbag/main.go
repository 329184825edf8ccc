package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/beanvault/coffee-journal/internal/common"
	"github.com/beanvault/coffee-journal/internal/llm"
	"github.com/beanvault/coffee-journal/internal/llm/openai"
	"github.com/beanvault/coffee-journal/internal/ocr"
	"github.com/beanvault/coffee-journal/internal/pipeline"
	"github.com/beanvault/coffee-journal/internal/repository"
)

// scanbag runs the scan pipeline once from the command line: OCR the
// photo(s), extract fields, print the merged result as JSON, optionally
// append a journal entry.
func main() {
	_ = godotenv.Load()

	front := flag.String("front", "", "front photo path (required)")
	back := flag.String("back", "", "back photo path")
	serverURL := flag.String("server", "", "delegate AI extraction to a coffee-journal server (e.g. http://localhost:8080)")
	save := flag.Bool("save", false, "append the merged fields as a journal entry")
	verbose := flag.Bool("v", false, "verbose logging")
	flag.Parse()

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if *front == "" {
		fmt.Fprintln(os.Stderr, "usage: scanbag -front bag.jpg [-back back.jpg] [-server URL] [-save]")
		os.Exit(2)
	}

	cfg := common.LoadConfig()

	engine := ocr.NewExtractor(ocr.Config{
		Tesseract:     cfg.OCR.Tesseract,
		TesseractLang: cfg.OCR.TesseractLang,
		TessdataDir:   cfg.OCR.TessdataDir,
	}, logger)

	var extractor llm.FieldExtractor
	if *serverURL != "" {
		extractor = llm.NewRemote(*serverURL, nil, logger)
	} else if cfg.LLM.APIKey != "" {
		extractor = openai.NewClient(openai.Config{
			APIKey:      cfg.LLM.APIKey,
			BaseURL:     cfg.LLM.BaseURL,
			Model:       cfg.LLM.Model,
			Temperature: cfg.LLM.Temperature,
			MaxTokens:   cfg.LLM.MaxTokens,
			Timeout:     cfg.LLM.Timeout,
		}, logger)
	} else {
		logger.Warn("no OPENAI_API_KEY and no -server; heuristic extraction only")
	}

	runner := pipeline.NewRunner(engine, extractor, logger)
	runner.Progress = func(pct int) {
		if *verbose {
			fmt.Fprintf(os.Stderr, "progress: %d%%\n", pct)
		}
	}
	ctrl := pipeline.NewController(runner, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	ctrl.Request(ctx, pipeline.Inputs{FrontPath: *front, BackPath: *back})
	res := <-ctrl.Results()
	if res.Err != nil {
		fmt.Fprintf(os.Stderr, "scan failed: %v\n", res.Err)
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(res.Fields)

	if !*save {
		return
	}

	db, err := repository.Open(ctx, cfg.Database, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open journal store: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()
	if err := repository.EnsureSchema(ctx, db); err != nil {
		fmt.Fprintf(os.Stderr, "ensure schema: %v\n", err)
		os.Exit(1)
	}

	entry := &repository.Entry{Fields: res.Fields}
	if err := repository.NewEntryRepository(db, logger).Create(ctx, entry); err != nil {
		fmt.Fprintf(os.Stderr, "save entry: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "saved entry %s\n", entry.ID)
}
