package async

import (
	"context"
	"errors"
	"sync"
	"time"

	"log/slog"

	"github.com/google/uuid"

	"github.com/beanvault/coffee-journal/constants"
	"github.com/beanvault/coffee-journal/internal/pipeline"
	"github.com/beanvault/coffee-journal/internal/repository"
)

// ErrQueueClosed is returned by Enqueue once Shutdown has begun; callers must
// not hand out job IDs for scans that will never run.
var ErrQueueClosed = errors.New("scan queue closed")

// Job is one queued bag scan: uploaded photo paths waiting for a worker.
type Job struct {
	ID          uuid.UUID
	FrontPath   string
	BackPath    string
	SubmittedAt time.Time
}

// Status is the externally visible state of a scan job.
type Status struct {
	State   constants.ScanStatus `json:"state"`
	EntryID uuid.UUID            `json:"entry_id,omitempty"`
	Error   string               `json:"error,omitempty"`
}

// ScanQueue runs uploaded scans through the pipeline on a worker pool and
// writes the merged fields as journal entries.
type ScanQueue struct {
	runner  *pipeline.Runner
	entries repository.EntryRepository
	logger  *slog.Logger
	workers int
	timeout time.Duration

	ch   chan Job
	wg   sync.WaitGroup
	once sync.Once

	mu     sync.Mutex
	closed bool

	statuses sync.Map // uuid.UUID -> Status
}

type Option func(*ScanQueue)

func WithWorkers(n int) Option {
	return func(q *ScanQueue) {
		if n > 0 {
			q.workers = n
		}
	}
}
func WithQueueSize(n int) Option {
	return func(q *ScanQueue) {
		if n > 0 {
			q.ch = make(chan Job, n)
		}
	}
}
func WithScanTimeout(d time.Duration) Option {
	return func(q *ScanQueue) {
		if d > 0 {
			q.timeout = d
		}
	}
}

func NewScanQueue(runner *pipeline.Runner, entries repository.EntryRepository, logger *slog.Logger, opts ...Option) *ScanQueue {
	q := &ScanQueue{
		runner:  runner,
		entries: entries,
		logger:  logger,
		workers: 2,
		timeout: 3 * time.Minute,
		ch:      make(chan Job, 64),
	}
	if q.logger == nil {
		q.logger = slog.Default()
	}
	for _, o := range opts {
		o(q)
	}
	q.start()
	return q
}

func (q *ScanQueue) start() {
	q.once.Do(func() {
		for i := 0; i < q.workers; i++ {
			q.wg.Add(1)
			go func(workerID int) {
				defer q.wg.Done()
				q.logger.Info("scan worker started", "worker_id", workerID)

				for job := range q.ch {
					q.process(workerID, job)
				}

				q.logger.Info("scan worker stopped", "worker_id", workerID)
			}(i + 1)
		}
	})
}

func (q *ScanQueue) process(workerID int, job Job) {
	q.statuses.Store(job.ID, Status{State: constants.ScanStatusRunning})

	ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
	defer cancel()

	fields, err := q.runner.RunScan(ctx, pipeline.Inputs{
		FrontPath: job.FrontPath,
		BackPath:  job.BackPath,
	})
	if err != nil {
		q.logger.Error("scan failed", "worker_id", workerID, "job_id", job.ID, "error", err)
		q.statuses.Store(job.ID, Status{State: constants.ScanStatusFailed, Error: err.Error()})
		return
	}

	entry := &repository.Entry{Fields: fields}
	if err := q.entries.Create(ctx, entry); err != nil {
		q.logger.Error("entry write failed", "worker_id", workerID, "job_id", job.ID, "error", err)
		q.statuses.Store(job.ID, Status{State: constants.ScanStatusFailed, Error: err.Error()})
		return
	}

	q.logger.Info("scan processed", "worker_id", workerID, "job_id", job.ID, "entry_id", entry.ID, "fields", fields.Count())
	q.statuses.Store(job.ID, Status{State: constants.ScanStatusDone, EntryID: entry.ID})
}

// Enqueue submits a scan job. Nil error does not mean the scan succeeded;
// poll Status with the job ID.
func (q *ScanQueue) Enqueue(_ context.Context, job Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		q.logger.Warn("cannot enqueue: queue is shutting down", "job_id", job.ID)
		return ErrQueueClosed
	}
	q.statuses.Store(job.ID, Status{State: constants.ScanStatusQueued})
	select {
	case q.ch <- job:
		q.logger.Info("queued scan", "job_id", job.ID)
	default:
		q.logger.Warn("queue full, applying backpressure", "job_id", job.ID)
		q.ch <- job
	}
	return nil
}

// Status returns the last known state of a job.
func (q *ScanQueue) Status(id uuid.UUID) (Status, bool) {
	v, ok := q.statuses.Load(id)
	if !ok {
		return Status{}, false
	}
	return v.(Status), true
}

func (q *ScanQueue) Shutdown(ctx context.Context) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.ch)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() { defer close(done); q.wg.Wait() }()

	select {
	case <-ctx.Done():
		q.logger.Warn("shutdown interrupted by context")
	case <-done:
		q.logger.Info("queue drained, shutdown complete")
	}
}
