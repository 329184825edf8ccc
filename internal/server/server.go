package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/beanvault/coffee-journal/internal/async"
	"github.com/beanvault/coffee-journal/internal/common"
	"github.com/beanvault/coffee-journal/internal/export"
	"github.com/beanvault/coffee-journal/internal/llm"
	"github.com/beanvault/coffee-journal/internal/repository"
)

// Server wires the HTTP API: label extraction, scan uploads, and journal
// entry CRUD/export.
type Server struct {
	cfg       common.ServerConfig
	extractor llm.FieldExtractor
	entries   repository.EntryRepository
	exporter  *export.Service
	queue     *async.ScanQueue
	logger    *slog.Logger
	validate  *validator.Validate

	httpServer *http.Server
}

func New(
	cfg common.ServerConfig,
	extractor llm.FieldExtractor,
	entries repository.EntryRepository,
	exporter *export.Service,
	queue *async.ScanQueue,
	logger *slog.Logger,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		cfg:       cfg,
		extractor: extractor,
		entries:   entries,
		exporter:  exporter,
		queue:     queue,
		logger:    logger,
		validate:  validator.New(),
	}
	s.httpServer = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("POST /api/extract", s.handleExtract)
	mux.HandleFunc("POST /api/scans", s.handleScanUpload)
	mux.HandleFunc("GET /api/scans/{id}", s.handleScanStatus)
	mux.HandleFunc("POST /api/entries", s.handleEntryCreate)
	mux.HandleFunc("GET /api/entries", s.handleEntryList)
	mux.HandleFunc("GET /api/entries/export", s.handleEntryExport)
	mux.HandleFunc("GET /api/entries/{id}", s.handleEntryGet)
	mux.HandleFunc("PATCH /api/entries/{id}", s.handleEntryPatch)
	mux.HandleFunc("DELETE /api/entries/{id}", s.handleEntryDelete)
	return s.withRequestID(mux)
}

// withRequestID tags every request with a request ID and logs completion.
func (s *Server) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := uuid.New().String()
		ctx := common.WithRequestID(r.Context(), reqID)
		start := time.Now()
		next.ServeHTTP(w, r.WithContext(ctx))
		s.logger.Info("http.request",
			"req_id", reqID,
			"method", r.Method,
			"path", r.URL.Path,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
	})
}

func (s *Server) Start() error {
	s.logger.Info("http server listening", "addr", s.cfg.Addr)
	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, msg string, err error) {
	if err != nil {
		s.logger.Error("http.error",
			"req_id", common.RequestIDFromContext(r.Context()),
			"path", r.URL.Path,
			"status", status,
			"error", err,
		)
	}
	writeJSON(w, status, map[string]string{"error": msg})
}

func readJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
