package server

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/beanvault/coffee-journal/constants"
	"github.com/beanvault/coffee-journal/internal/async"
)

const maxUploadBytes = 20 << 20 // both photos combined

// handleScanUpload accepts multipart photo uploads (front, optional back),
// persists them under the upload dir, and enqueues a background scan job.
func (s *Server) handleScanUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.writeError(w, r, http.StatusBadRequest, "invalid multipart body", err)
		return
	}

	jobID := uuid.New()
	frontPath, err := s.savePhoto(r, "front", jobID)
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, "front photo is required", err)
		return
	}
	backPath, err := s.savePhoto(r, "back", jobID)
	if err != nil && err != http.ErrMissingFile {
		s.writeError(w, r, http.StatusBadRequest, "invalid back photo", err)
		return
	}

	job := async.Job{
		ID:          jobID,
		FrontPath:   frontPath,
		BackPath:    backPath,
		SubmittedAt: time.Now().UTC(),
	}
	if err := s.queue.Enqueue(r.Context(), job); err != nil {
		if errors.Is(err, async.ErrQueueClosed) {
			s.writeError(w, r, http.StatusServiceUnavailable, "server is shutting down", err)
			return
		}
		s.writeError(w, r, http.StatusInternalServerError, "enqueue scan", err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"job_id": jobID.String()})
}

func (s *Server) handleScanStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, "invalid job id", err)
		return
	}
	status, ok := s.queue.Status(id)
	if !ok {
		s.writeError(w, r, http.StatusNotFound, "job not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

// savePhoto writes one uploaded photo to disk; returns "" with
// http.ErrMissingFile when the form field is absent.
func (s *Server) savePhoto(r *http.Request, field string, jobID uuid.UUID) (string, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		return "", err
	}
	defer func(f multipart.File) { _ = f.Close() }(file)

	ext := constants.NormalizeExt(filepath.Ext(header.Filename))
	if !constants.IsAllowedExt(ext) {
		return "", fmt.Errorf("unsupported photo format: %q", ext)
	}

	if err := os.MkdirAll(s.cfg.UploadDir, 0o755); err != nil {
		return "", err
	}
	dst := filepath.Join(s.cfg.UploadDir, fmt.Sprintf("%s-%s.%s", jobID, field, ext))
	out, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	defer func(f *os.File) { _ = f.Close() }(out)

	if _, err := io.Copy(out, file); err != nil {
		return "", err
	}
	return dst, nil
}
