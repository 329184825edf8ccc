package ocr

import (
	"bytes"
	"context"
	"log/slog"
	"os/exec"
	"strings"
	"time"
)

// Runner is the seam between the extractor and the tesseract binary; tests
// substitute it to avoid shelling out. Warnings carry tesseract's stderr
// diagnostics, which it emits even on successful runs.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (stdout []byte, warnings []string, err error)
}

type execRunner struct {
	logger *slog.Logger
}

func (r execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []string, error) {
	start := time.Now()

	cmd := exec.CommandContext(ctx, name, args...)
	var out, errb bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errb

	err := cmd.Run()
	warnings := stderrWarnings(errb.String())

	if err != nil {
		r.logger.Error("ocr.exec.failed",
			"cmd", name,
			"args", strings.Join(args, " "),
			"elapsed_ms", time.Since(start).Milliseconds(),
			"error", err,
			"stderr_lines", len(warnings),
		)
		return out.Bytes(), warnings, err
	}

	r.logger.Debug("ocr.exec.ok",
		"cmd", name,
		"elapsed_ms", time.Since(start).Milliseconds(),
		"stdout_bytes", out.Len(),
		"stderr_lines", len(warnings),
	)
	return out.Bytes(), warnings, nil
}

// stderrWarnings splits stderr into trimmed non-empty lines. Tesseract writes
// progress noise like "Estimating resolution" there regardless of outcome;
// callers surface these on the scan result instead of failing on them.
func stderrWarnings(stderr string) []string {
	var lines []string
	for _, line := range strings.Split(stderr, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
