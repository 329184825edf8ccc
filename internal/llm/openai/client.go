package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/beanvault/coffee-journal/internal/llm"
	"github.com/beanvault/coffee-journal/internal/scan"
)

// ExtractLabelFields implements llm.FieldExtractor using text-only
// chat/completions with a JSON-object response format.
func (c *Client) ExtractLabelFields(ctx context.Context, req llm.ExtractRequest) (scan.LabelFields, []byte, error) {
	rid := uuid.New().String()
	start := time.Now()

	c.logger.Info("llm.extract.start",
		"req_id", rid,
		"model", c.cfg.Model,
		"temp", c.cfg.Temperature,
		"text_len", len(req.Text),
	)

	if strings.TrimSpace(req.Text) == "" {
		return scan.LabelFields{}, nil, fmt.Errorf("empty label text")
	}

	body := map[string]any{
		"model":           c.cfg.Model,
		"temperature":     c.cfg.Temperature,
		"max_tokens":      c.cfg.MaxTokens,
		"response_format": map[string]any{"type": "json_object"},
		"messages": []map[string]any{
			{"role": "system", "content": llm.BuildSystemPrompt()},
			{"role": "user", "content": llm.BuildUserPrompt(req.Text)},
		},
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	headers := map[string]string{"Authorization": "Bearer " + c.cfg.APIKey}
	raw, _, err := llm.SendJSON(ctx, c.http, endpoint, body, headers, c.logger)
	if err != nil {
		c.logger.Error("llm.extract.http_error",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return scan.LabelFields{}, raw, err
	}

	var cc struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &cc); err != nil {
		c.logger.Error("llm.extract.decode_error",
			"req_id", rid, "error", err, "raw_bytes", len(raw),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return scan.LabelFields{}, raw, fmt.Errorf("decode openai response: %w", err)
	}
	if len(cc.Choices) == 0 {
		c.logger.Error("llm.extract.no_choices",
			"req_id", rid,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return scan.LabelFields{}, raw, fmt.Errorf("no choices in openai response")
	}
	content := []byte(strings.TrimSpace(cc.Choices[0].Message.Content))

	// Sanitize leniently first (the model echoes noise more often than it
	// breaks structure), then validate the sanitized document.
	fields, cleaned, droppedKeys, err := llm.NormalizeAndSanitizeJSON(content, c.logger)
	if err != nil {
		c.logger.Error("llm.extract.sanitize_failed",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return scan.LabelFields{}, content, fmt.Errorf("sanitize: %w", err)
	}
	if err := llm.ValidateLabelJSON(cleaned); err != nil {
		c.logger.Error("llm.extract.schema_validation_failed",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return scan.LabelFields{}, cleaned, fmt.Errorf("schema validation failed: %w", err)
	}

	c.logger.Info("llm.extract.ok",
		"req_id", rid,
		"fields", fields.Count(),
		"dropped", len(droppedKeys),
		"roaster", fields.RoasterName,
		"origin", fields.Origin,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return fields, cleaned, nil
}
