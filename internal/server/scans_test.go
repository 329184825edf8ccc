package server

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beanvault/coffee-journal/constants"
	"github.com/beanvault/coffee-journal/internal/async"
	"github.com/beanvault/coffee-journal/internal/common"
	"github.com/beanvault/coffee-journal/internal/export"
	"github.com/beanvault/coffee-journal/internal/pipeline"
)

func newScanTestServer(t *testing.T, text string) (*Server, http.Handler) {
	t.Helper()
	repo := newTestRepo(t)
	runner := pipeline.NewRunner(&stubEngine{text: text}, nil, discardLogger())
	queue := async.NewScanQueue(runner, repo, discardLogger(), async.WithWorkers(1))
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		queue.Shutdown(ctx)
	})

	s := New(
		common.ServerConfig{Addr: ":0", UploadDir: t.TempDir()},
		&stubExtractor{},
		repo,
		export.NewService(repo, discardLogger()),
		queue,
		discardLogger(),
	)
	return s, s.routes()
}

func multipartUpload(t *testing.T, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for field, name := range files {
		fw, err := mw.CreateFormFile(field, name)
		require.NoError(t, err)
		_, err = fw.Write([]byte("fake image bytes"))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestScanUploadAndStatus(t *testing.T) {
	_, h := newScanTestServer(t, "HAPPY GOAT COFFEE\nORIGIN: Ethiopia")

	body, contentType := multipartUpload(t, map[string]string{
		"front": "front.jpg",
		"back":  "back.png",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/scans", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusAccepted, rec.Code)

	var accepted map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &accepted))
	jobID := accepted["job_id"]
	require.NotEmpty(t, jobID)

	var status async.Status
	require.Eventually(t, func() bool {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/scans/"+jobID, nil))
		if rec.Code != http.StatusOK {
			return false
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
		return status.State == constants.ScanStatusDone
	}, 5*time.Second, 20*time.Millisecond)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/entries/"+status.EntryID.String(), nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Ethiopia")
}

func TestScanUploadRequiresFrontPhoto(t *testing.T) {
	_, h := newScanTestServer(t, "whatever")

	body, contentType := multipartUpload(t, map[string]string{"back": "back.jpg"})
	req := httptest.NewRequest(http.MethodPost, "/api/scans", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestScanUploadRejectsUnsupportedFormat(t *testing.T) {
	_, h := newScanTestServer(t, "whatever")

	body, contentType := multipartUpload(t, map[string]string{"front": "label.pdf"})
	req := httptest.NewRequest(http.MethodPost, "/api/scans", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestScanUploadDuringShutdown(t *testing.T) {
	s, h := newScanTestServer(t, "whatever")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	s.queue.Shutdown(ctx)

	body, contentType := multipartUpload(t, map[string]string{"front": "front.jpg"})
	req := httptest.NewRequest(http.MethodPost, "/api/scans", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestScanStatusUnknownJob(t *testing.T) {
	_, h := newScanTestServer(t, "whatever")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/scans/6b1e4d2e-0000-4000-8000-000000000000", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
