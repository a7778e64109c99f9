package async

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/joseph-ayodele/payroll-intake/internal/reconcile"
)

// ErrQueueClosed is returned by Enqueue after Shutdown has started.
var ErrQueueClosed = errors.New("queue is shutting down")

// Job is one document waiting for reconciliation.
type Job struct {
	DocumentID string // source_documents row, empty when intake ran without a store
	Request    reconcile.Request
}

// Processor runs a document through the reconciliation pipeline.
type Processor interface {
	Process(ctx context.Context, req reconcile.Request) (reconcile.BatchResult, error)
}

// ResultHandler receives every finished job. It is called from worker goroutines.
type ResultHandler func(job Job, res reconcile.BatchResult, err error)

type ProcessorQueue struct {
	ctx     context.Context // parent of every job context
	cancel  context.CancelFunc
	proc    Processor
	handler ResultHandler
	logger  *slog.Logger
	workers int
	timeout time.Duration

	ch   chan Job
	wg   sync.WaitGroup
	once sync.Once

	mu     sync.Mutex
	closed bool
}

type Option func(*ProcessorQueue)

func WithWorkers(n int) Option {
	return func(q *ProcessorQueue) {
		if n > 0 {
			q.workers = n
		}
	}
}
func WithQueueSize(n int) Option {
	return func(q *ProcessorQueue) {
		if n > 0 {
			q.ch = make(chan Job, n)
		}
	}
}
func WithProcessTimeout(d time.Duration) Option {
	return func(q *ProcessorQueue) {
		if d > 0 {
			q.timeout = d
		}
	}
}
func WithResultHandler(h ResultHandler) Option {
	return func(q *ProcessorQueue) {
		q.handler = h
	}
}

// NewProcessorQueue starts the workers. Cancelling ctx cancels documents in flight.
func NewProcessorQueue(ctx context.Context, proc Processor, logger *slog.Logger, opts ...Option) *ProcessorQueue {
	if logger == nil {
		logger = slog.Default()
	}
	qctx, cancel := context.WithCancel(ctx)
	q := &ProcessorQueue{
		ctx:     qctx,
		cancel:  cancel,
		proc:    proc,
		logger:  logger,
		workers: 2,
		timeout: 3 * time.Minute,
		ch:      make(chan Job, 64),
	}
	for _, o := range opts {
		o(q)
	}
	q.start()
	return q
}

func (q *ProcessorQueue) start() {
	q.once.Do(func() {
		for i := 0; i < q.workers; i++ {
			q.wg.Add(1)
			go func(workerID int) {
				defer q.wg.Done()
				for job := range q.ch {
					q.run(workerID, job)
				}
				q.logger.Debug("worker stopped", "worker_id", workerID)
			}(i + 1)
		}
	})
}

func (q *ProcessorQueue) run(workerID int, job Job) {
	ctx, cancel := context.WithTimeout(q.ctx, q.timeout)
	defer cancel()

	filename := job.Request.Document.Filename
	res, err := q.proc.Process(ctx, job.Request)
	switch {
	case err != nil:
		q.logger.Error("queue.process.failed", "worker_id", workerID, "document", filename, "error", err)
	case !res.Success:
		q.logger.Warn("queue.process.rejected", "worker_id", workerID, "document", filename, "error_code", res.ErrorCode)
	default:
		q.logger.Info("queue.process.ok", "worker_id", workerID, "document", filename,
			"created", res.Created, "failed", res.Failed)
	}
	if q.handler != nil {
		q.handler(job, res, err)
	}
}

// Enqueue blocks while the buffer is full.
func (q *ProcessorQueue) Enqueue(ctx context.Context, job Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return ErrQueueClosed
	}
	select {
	case q.ch <- job:
		return nil
	default:
	}
	q.logger.Warn("queue full, applying backpressure", "document", job.Request.Document.Filename)
	select {
	case q.ch <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown stops intake and waits for queued jobs to drain. If ctx ends first,
// in-flight documents are cancelled.
func (q *ProcessorQueue) Shutdown(ctx context.Context) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	close(q.ch)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() { defer close(done); q.wg.Wait() }()

	select {
	case <-ctx.Done():
		q.cancel()
		q.logger.Warn("shutdown interrupted by context, cancelling in-flight documents")
		return ctx.Err()
	case <-done:
		q.cancel()
		q.logger.Info("queue drained, shutdown complete")
		return nil
	}
}
