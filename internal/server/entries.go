package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/beanvault/coffee-journal/internal/common"
	"github.com/beanvault/coffee-journal/internal/repository"
	"github.com/beanvault/coffee-journal/internal/scan"
)

type entryCreateRequest struct {
	Fields scan.LabelFields `json:"fields"`
	Rating int              `json:"rating" validate:"gte=0,lte=5"`
	Notes  string           `json:"notes" validate:"max=2000"`
}

type entryPatchRequest struct {
	Fields *scan.LabelFields `json:"fields"`
	Rating *int              `json:"rating" validate:"omitempty,gte=0,lte=5"`
	Notes  *string           `json:"notes" validate:"omitempty,max=2000"`
}

func (s *Server) handleEntryCreate(w http.ResponseWriter, r *http.Request) {
	var req entryCreateRequest
	if err := readJSON(r, &req); err != nil {
		s.writeError(w, r, http.StatusBadRequest, "invalid json body", err)
		return
	}
	if err := s.validate.Struct(req); err != nil {
		s.writeError(w, r, http.StatusBadRequest, "invalid entry", err)
		return
	}

	entry := &repository.Entry{
		Fields: cleanFields(req.Fields),
		Rating: req.Rating,
		Notes:  req.Notes,
	}
	if err := s.entries.Create(r.Context(), entry); err != nil {
		s.writeError(w, r, http.StatusInternalServerError, "create entry", err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

func (s *Server) handleEntryList(w http.ResponseWriter, r *http.Request) {
	filter := repository.EntryFilter{
		Roaster: r.URL.Query().Get("roaster"),
		Origin:  r.URL.Query().Get("origin"),
	}
	if v := r.URL.Query().Get("min_rating"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 || n > 5 {
			s.writeError(w, r, http.StatusBadRequest, "min_rating must be 0..5", err)
			return
		}
		filter.MinRating = n
	}

	entries, err := s.entries.List(r.Context(), filter)
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, "list entries", err)
		return
	}
	if entries == nil {
		entries = []*repository.Entry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleEntryGet(w http.ResponseWriter, r *http.Request) {
	id, ok := s.entryID(w, r)
	if !ok {
		return
	}
	entry, err := s.entries.GetByID(r.Context(), id)
	if err != nil {
		s.writeEntryError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// handleEntryPatch applies partial edits. User edits always win: whatever is
// sent here overwrites what the scan pipeline produced.
func (s *Server) handleEntryPatch(w http.ResponseWriter, r *http.Request) {
	id, ok := s.entryID(w, r)
	if !ok {
		return
	}
	var req entryPatchRequest
	if err := readJSON(r, &req); err != nil {
		s.writeError(w, r, http.StatusBadRequest, "invalid json body", err)
		return
	}
	if err := s.validate.Struct(req); err != nil {
		s.writeError(w, r, http.StatusBadRequest, "invalid patch", err)
		return
	}

	entry, err := s.entries.GetByID(r.Context(), id)
	if err != nil {
		s.writeEntryError(w, r, err)
		return
	}
	if req.Fields != nil {
		entry.Fields = cleanFields(*req.Fields)
	}
	if req.Rating != nil {
		entry.Rating = *req.Rating
	}
	if req.Notes != nil {
		entry.Notes = *req.Notes
	}
	if err := s.entries.Update(r.Context(), entry); err != nil {
		s.writeEntryError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (s *Server) handleEntryDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := s.entryID(w, r)
	if !ok {
		return
	}
	if err := s.entries.Delete(r.Context(), id); err != nil {
		s.writeEntryError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleEntryExport(w http.ResponseWriter, r *http.Request) {
	filter := repository.EntryFilter{
		Roaster: r.URL.Query().Get("roaster"),
		Origin:  r.URL.Query().Get("origin"),
	}
	data, err := s.exporter.ExportEntriesXLSX(r.Context(), filter)
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, "export failed", err)
		return
	}
	name := "coffee-journal-" + time.Now().UTC().Format("2006-01-02") + ".xlsx"
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) entryID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, "invalid entry id", err)
		return uuid.Nil, false
	}
	return id, true
}

func (s *Server) writeEntryError(w http.ResponseWriter, r *http.Request, err error) {
	status := common.HTTPStatus(err)
	msg := "internal error"
	if status == http.StatusNotFound {
		msg = "entry not found"
	} else if status == http.StatusBadRequest {
		msg = "invalid entry"
	}
	s.writeError(w, r, status, msg, err)
}

// cleanFields reapplies value cleaning so hand-entered fields honor the same
// invariant as extracted ones (absent or non-empty trimmed).
func cleanFields(f scan.LabelFields) scan.LabelFields {
	return f.Cleaned()
}
