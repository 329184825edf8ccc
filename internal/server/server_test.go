package server

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/beanvault/coffee-journal/internal/common"
	"github.com/beanvault/coffee-journal/internal/export"
	"github.com/beanvault/coffee-journal/internal/llm"
	"github.com/beanvault/coffee-journal/internal/ocr"
	"github.com/beanvault/coffee-journal/internal/repository"
	"github.com/beanvault/coffee-journal/internal/scan"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// stubExtractor is a canned FieldExtractor for handler tests.
type stubExtractor struct {
	fields scan.LabelFields
	err    error
}

func (x *stubExtractor) ExtractLabelFields(_ context.Context, _ llm.ExtractRequest) (scan.LabelFields, []byte, error) {
	return x.fields, nil, x.err
}

// stubEngine feeds fixed OCR text into the pipeline regardless of path.
type stubEngine struct {
	text string
}

func (e *stubEngine) Recognize(_ context.Context, _ string) (ocr.Result, error) {
	return ocr.Result{Text: e.text}, nil
}

func newTestRepo(t *testing.T) repository.EntryRepository {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, repository.EnsureSchema(context.Background(), db))
	return repository.NewEntryRepository(db, discardLogger())
}

func newTestServer(t *testing.T, extractor llm.FieldExtractor) (*Server, http.Handler) {
	t.Helper()
	repo := newTestRepo(t)
	s := New(
		common.ServerConfig{Addr: ":0", UploadDir: t.TempDir()},
		extractor,
		repo,
		export.NewService(repo, discardLogger()),
		nil,
		discardLogger(),
	)
	return s, s.routes()
}
