package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/beanvault/coffee-journal/internal/llm"
	"github.com/beanvault/coffee-journal/internal/ocr"
	"github.com/beanvault/coffee-journal/internal/scan"
)

// Inputs names the photo(s) for one scan run. BackPath may be empty.
type Inputs struct {
	FrontPath string
	BackPath  string
}

// Progress milestones for one scan run.
const (
	progressFrontStart = 10
	progressFrontDone  = 30
	progressBackStart  = 40
	progressOCRDone    = 60
	progressHeuristic  = 70
	progressAIDone     = 90
	progressDone       = 100
)

// Runner executes one end-to-end scan: OCR front then back (sequentially),
// normalize, heuristic extraction, AI extraction, merge. The AI stage is
// independently fault-tolerant: its failures degrade to heuristic-only
// results and never fail the run.
type Runner struct {
	Engine    ocr.Engine
	Extractor llm.FieldExtractor
	Logger    *slog.Logger
	Progress  func(pct int) // optional milestone callback
}

func NewRunner(engine ocr.Engine, extractor llm.FieldExtractor, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{Engine: engine, Extractor: extractor, Logger: logger}
}

func (r *Runner) progress(pct int) {
	if r.Progress != nil {
		r.Progress(pct)
	}
}

// RunScan performs one scan run. An OCR engine failure is the only hard
// error; empty text after normalization ends the run early with zero fields
// and no error, since an illegible photo is a normal outcome.
func (r *Runner) RunScan(ctx context.Context, in Inputs) (scan.LabelFields, error) {
	start := time.Now()

	r.progress(progressFrontStart)
	front, err := r.Engine.Recognize(ctx, in.FrontPath)
	if err != nil {
		r.progress(0)
		return scan.LabelFields{}, err
	}
	r.progress(progressFrontDone)

	combined := front.Text
	if in.BackPath != "" {
		r.progress(progressBackStart)
		back, err := r.Engine.Recognize(ctx, in.BackPath)
		if err != nil {
			r.progress(0)
			return scan.LabelFields{}, err
		}
		combined = combined + "\n" + back.Text
	}
	r.progress(progressOCRDone)

	text := scan.Normalize(combined)
	if text == "" {
		r.Logger.Info("scan.run.empty_text",
			"front", in.FrontPath,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		r.progress(0)
		return scan.LabelFields{}, nil
	}

	heuristic := scan.ExtractHeuristic(text)
	r.progress(progressHeuristic)

	var ai scan.LabelFields
	if r.Extractor != nil {
		fields, _, err := r.Extractor.ExtractLabelFields(ctx, llm.ExtractRequest{Text: text})
		if err != nil {
			// recoverable: heuristic-only results
			r.Logger.Warn("scan.run.ai_failed", "error", err)
		} else {
			ai = fields
		}
	}
	r.progress(progressAIDone)

	merged := scan.Merge(ai, heuristic)
	r.progress(progressDone)

	r.Logger.Info("scan.run.ok",
		"front", in.FrontPath,
		"back", in.BackPath,
		"text_len", len(text),
		"heuristic_fields", heuristic.Count(),
		"ai_fields", ai.Count(),
		"merged_fields", merged.Count(),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return merged, nil
}
