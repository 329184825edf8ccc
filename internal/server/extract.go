package server

import (
	"net/http"
	"strings"

	"github.com/beanvault/coffee-journal/internal/llm"
	"github.com/beanvault/coffee-journal/internal/scan"
)

type extractRequest struct {
	Text string `json:"text" validate:"required"`
}

// handleExtract is the AI extraction endpoint: normalized label text in,
// label fields out. Callers are expected to tolerate failures here and fall
// back to their heuristic results, so errors map to plain statuses.
func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	var req extractRequest
	if err := readJSON(r, &req); err != nil {
		s.writeError(w, r, http.StatusBadRequest, "invalid json body", err)
		return
	}
	if err := s.validate.Struct(req); err != nil {
		s.writeError(w, r, http.StatusBadRequest, "text is required", err)
		return
	}

	text := scan.Normalize(req.Text)
	if strings.TrimSpace(text) == "" {
		// nothing legible: an empty record, not an error
		writeJSON(w, http.StatusOK, scan.LabelFields{})
		return
	}

	fields, _, err := s.extractor.ExtractLabelFields(r.Context(), llm.ExtractRequest{Text: text})
	if err != nil {
		s.writeError(w, r, http.StatusBadGateway, "extraction failed", err)
		return
	}
	writeJSON(w, http.StatusOK, fields)
}
