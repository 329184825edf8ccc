package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/beanvault/coffee-journal/internal/scan"
)

// Remote is a FieldExtractor that delegates to a coffee-journal server's
// /api/extract endpoint, mirroring the browser-client split where extraction
// runs server-side. Non-2xx responses and malformed JSON surface as ordinary
// errors for the pipeline's fallback path.
type Remote struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

func NewRemote(baseURL string, client *http.Client, logger *slog.Logger) *Remote {
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Remote{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    client,
		logger:  logger,
	}
}

func (r *Remote) ExtractLabelFields(ctx context.Context, req ExtractRequest) (scan.LabelFields, []byte, error) {
	raw, status, err := SendJSON(ctx, r.http, r.baseURL+"/api/extract",
		map[string]string{"text": req.Text}, nil, r.logger)
	if err != nil {
		return scan.LabelFields{}, raw, fmt.Errorf("extract endpoint (status %d): %w", status, err)
	}
	var fields scan.LabelFields
	if err := json.Unmarshal(raw, &fields); err != nil {
		return scan.LabelFields{}, raw, fmt.Errorf("decode extract response: %w", err)
	}
	return fields, raw, nil
}
