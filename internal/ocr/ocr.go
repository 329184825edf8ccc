package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"time"

	"github.com/beanvault/coffee-journal/constants"
)

// Engine is what the scan pipeline depends on: one photographed surface in,
// raw text out. The pipeline never sees which OCR backend produced the text.
type Engine interface {
	Recognize(ctx context.Context, path string) (Result, error)
}

// Result is the raw text recognized from a single photo.
type Result struct {
	Text     string
	Duration time.Duration
	Warnings []string
}

type Config struct {
	Tesseract     string // binary name or absolute path; if empty -> "tesseract"
	TesseractLang string // default "eng"
	TessdataDir   string

	PSM int // e.g., 6 is good for uniform block of text
	OEM int // 1 = LSTM; leave 0 to use default
}

// Extractor runs tesseract over bag photos.
type Extractor struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewExtractor(cfg Config, logger *slog.Logger) *Extractor {
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.TesseractLang == "" {
		cfg.TesseractLang = "eng"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{cfg: cfg, runner: execRunner{logger: logger}, logger: logger}
}

var reBoxNoise = regexp.MustCompile(`(?m)^\s*[_\-]{3,}\s*$`)

// Recognize OCRs a single photo. Unsupported extensions are an error; the
// caller decides whether that fails the scan.
func (e *Extractor) Recognize(ctx context.Context, path string) (Result, error) {
	start := time.Now()
	ext := constants.NormalizeExt(filepath.Ext(path))
	if !constants.IsAllowedExt(ext) {
		e.logger.Error("unsupported scan extension", "extension", ext)
		return Result{}, fmt.Errorf("unsupported extension: %q", ext)
	}

	args := []string{path, "stdout", "-l", e.cfg.TesseractLang}
	if e.cfg.PSM > 0 {
		args = append(args, "--psm", fmt.Sprintf("%d", e.cfg.PSM))
	}
	if e.cfg.OEM > 0 {
		args = append(args, "--oem", fmt.Sprintf("%d", e.cfg.OEM))
	}
	if e.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", e.cfg.TessdataDir)
	}

	out, warnings, err := e.runner.Run(ctx, e.cfg.Tesseract, args...)
	if err != nil {
		return Result{Warnings: warnings}, fmt.Errorf("tesseract: %w", err)
	}

	// minor cleanup of obvious line noise
	txt := reBoxNoise.ReplaceAllString(string(out), "")
	return Result{Text: txt, Duration: time.Since(start), Warnings: warnings}, nil
}
