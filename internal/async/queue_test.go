package async

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beanvault/coffee-journal/constants"
	"github.com/beanvault/coffee-journal/internal/ocr"
	"github.com/beanvault/coffee-journal/internal/pipeline"
	"github.com/beanvault/coffee-journal/internal/repository"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type stubEngine struct {
	text string
	err  error
}

func (e *stubEngine) Recognize(_ context.Context, _ string) (ocr.Result, error) {
	if e.err != nil {
		return ocr.Result{}, e.err
	}
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

func newTestQueue(t *testing.T, engine ocr.Engine, repo repository.EntryRepository) *ScanQueue {
	t.Helper()
	runner := pipeline.NewRunner(engine, nil, discardLogger())
	q := NewScanQueue(runner, repo, discardLogger(), WithWorkers(1), WithQueueSize(4))
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		q.Shutdown(ctx)
	})
	return q
}

func waitForTerminal(t *testing.T, q *ScanQueue, id uuid.UUID) Status {
	t.Helper()
	var status Status
	require.Eventually(t, func() bool {
		s, ok := q.Status(id)
		if !ok {
			return false
		}
		status = s
		return s.State == constants.ScanStatusDone || s.State == constants.ScanStatusFailed
	}, 5*time.Second, 10*time.Millisecond)
	return status
}

func TestQueueProcessesScanIntoEntry(t *testing.T) {
	repo := newTestRepo(t)
	q := newTestQueue(t, &stubEngine{text: "HAPPY GOAT COFFEE\nORIGIN: Ethiopia"}, repo)

	job := Job{ID: uuid.New(), FrontPath: "front.jpg", SubmittedAt: time.Now()}
	require.NoError(t, q.Enqueue(context.Background(), job))

	status := waitForTerminal(t, q, job.ID)
	require.Equal(t, constants.ScanStatusDone, status.State)
	require.NotEqual(t, uuid.Nil, status.EntryID)

	entry, err := repo.GetByID(context.Background(), status.EntryID)
	require.NoError(t, err)
	assert.Equal(t, "Ethiopia", entry.Fields.Origin)
	assert.Equal(t, "HAPPY GOAT COFFEE", entry.Fields.RoasterName)
}

func TestQueueMarksFailedScans(t *testing.T) {
	repo := newTestRepo(t)
	q := newTestQueue(t, &stubEngine{err: assert.AnError}, repo)

	job := Job{ID: uuid.New(), FrontPath: "front.jpg"}
	require.NoError(t, q.Enqueue(context.Background(), job))

	status := waitForTerminal(t, q, job.ID)
	assert.Equal(t, constants.ScanStatusFailed, status.State)
	assert.NotEmpty(t, status.Error)

	entries, err := repo.List(context.Background(), repository.EntryFilter{})
	require.NoError(t, err)
	assert.Empty(t, entries, "failed scans must not write entries")
}

func TestQueueStatusUnknownJob(t *testing.T) {
	q := newTestQueue(t, &stubEngine{text: "x"}, newTestRepo(t))
	_, ok := q.Status(uuid.New())
	assert.False(t, ok)
}

func TestQueueRejectsEnqueueAfterShutdown(t *testing.T) {
	repo := newTestRepo(t)
	runner := pipeline.NewRunner(&stubEngine{text: "x"}, nil, discardLogger())
	q := NewScanQueue(runner, repo, discardLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	q.Shutdown(ctx)

	job := Job{ID: uuid.New(), FrontPath: "front.jpg"}
	assert.ErrorIs(t, q.Enqueue(context.Background(), job), ErrQueueClosed)

	_, ok := q.Status(job.ID)
	assert.False(t, ok, "rejected jobs must not leave a status behind")
}

func TestQueueShutdownDrains(t *testing.T) {
	repo := newTestRepo(t)
	runner := pipeline.NewRunner(&stubEngine{text: "ORIGIN: Kenya"}, nil, discardLogger())
	q := NewScanQueue(runner, repo, discardLogger(), WithWorkers(2))

	var ids []uuid.UUID
	for i := 0; i < 5; i++ {
		job := Job{ID: uuid.New(), FrontPath: "front.jpg"}
		ids = append(ids, job.ID)
		require.NoError(t, q.Enqueue(context.Background(), job))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	q.Shutdown(ctx)

	for _, id := range ids {
		s, ok := q.Status(id)
		require.True(t, ok)
		assert.Equal(t, constants.ScanStatusDone, s.State)
	}
}
