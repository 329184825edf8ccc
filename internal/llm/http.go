package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// maxResponseBytes bounds how much of a provider response we read; label
// extractions are small and a misbehaving endpoint should not balloon memory.
const maxResponseBytes = 4 << 20

// SendJSON posts a JSON body to url and returns the raw response bytes and
// status code. Provider-agnostic: callers pick the URL and auth headers. A
// non-2xx status is an error, with the body still returned so callers can log
// or parse the provider's error payload.
func SendJSON(ctx context.Context, client *http.Client, url string, body any, headers map[string]string, logger *slog.Logger) ([]byte, int, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if client == nil {
		client = &http.Client{Timeout: 45 * time.Second}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, 0, fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		logger.Error("llm.http.send_failed",
			"url", url,
			"error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, 0, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read response: %w", err)
	}

	logger.Info("llm.http.call",
		"url", url,
		"status", resp.StatusCode,
		"request_bytes", len(payload),
		"response_bytes", len(raw),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	if resp.StatusCode/100 != 2 {
		return raw, resp.StatusCode, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return raw, resp.StatusCode, nil
}
