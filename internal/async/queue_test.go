package async

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/joseph-ayodele/payroll-intake/internal/entity"
	"github.com/joseph-ayodele/payroll-intake/internal/reconcile"
)

type stubProcessor struct {
	mu   sync.Mutex
	seen []string
	fail string
}

func (s *stubProcessor) Process(ctx context.Context, req reconcile.Request) (reconcile.BatchResult, error) {
	s.mu.Lock()
	s.seen = append(s.seen, req.Document.Filename)
	s.mu.Unlock()
	if req.Document.Filename == s.fail {
		return reconcile.BatchResult{}, errors.New("boom")
	}
	if _, ok := ctx.Deadline(); !ok {
		return reconcile.BatchResult{}, errors.New("missing deadline")
	}
	return reconcile.BatchResult{Success: true, Filename: req.Document.Filename, Created: 1}, nil
}

func job(name string) Job {
	return Job{Request: reconcile.Request{Document: entity.SourceDocument{Filename: name}, CompanyID: "c1"}}
}

func TestQueueProcessesAllJobs(t *testing.T) {
	proc := &stubProcessor{fail: "b.pdf"}
	var mu sync.Mutex
	results := map[string]error{}
	q := NewProcessorQueue(context.Background(), proc, nil,
		WithWorkers(3),
		WithQueueSize(1),
		WithProcessTimeout(time.Second),
		WithResultHandler(func(j Job, res reconcile.BatchResult, err error) {
			mu.Lock()
			results[j.Request.Document.Filename] = err
			mu.Unlock()
		}),
	)

	ctx := context.Background()
	for _, name := range []string{"a.pdf", "b.pdf", "c.csv", "d.png"} {
		if err := q.Enqueue(ctx, job(name)); err != nil {
			t.Fatalf("enqueue %s: %v", name, err)
		}
	}
	if err := q.Shutdown(ctx); err != nil {
		t.Fatalf("shutdown: %v", err)
	}

	if len(results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(results))
	}
	if results["b.pdf"] == nil {
		t.Fatalf("expected b.pdf to fail")
	}
	for _, name := range []string{"a.pdf", "c.csv", "d.png"} {
		if results[name] != nil {
			t.Fatalf("%s: unexpected error %v", name, results[name])
		}
	}
}

func TestEnqueueAfterShutdown(t *testing.T) {
	q := NewProcessorQueue(context.Background(), &stubProcessor{}, nil)
	if err := q.Shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	if err := q.Enqueue(context.Background(), job("late.pdf")); !errors.Is(err, ErrQueueClosed) {
		t.Fatalf("expected ErrQueueClosed, got %v", err)
	}
	// second shutdown is a no-op
	if err := q.Shutdown(context.Background()); err != nil {
		t.Fatalf("second shutdown: %v", err)
	}
}

type blockingProcessor struct{ started chan struct{} }

func (b blockingProcessor) Process(ctx context.Context, req reconcile.Request) (reconcile.BatchResult, error) {
	close(b.started)
	<-ctx.Done()
	return reconcile.BatchResult{Filename: req.Document.Filename}, ctx.Err()
}

func TestCancelledParentStopsInFlightJobs(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	proc := blockingProcessor{started: make(chan struct{})}
	errs := make(chan error, 1)
	q := NewProcessorQueue(parent, proc, nil,
		WithWorkers(1),
		WithProcessTimeout(time.Minute),
		WithResultHandler(func(_ Job, _ reconcile.BatchResult, err error) { errs <- err }),
	)
	if err := q.Enqueue(context.Background(), job("slow.pdf")); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	<-proc.started
	cancel()

	select {
	case err := <-errs:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("in-flight job was not cancelled")
	}
	if err := q.Shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}

func TestShutdownDeadlineCancelsInFlightJobs(t *testing.T) {
	proc := blockingProcessor{started: make(chan struct{})}
	errs := make(chan error, 1)
	q := NewProcessorQueue(context.Background(), proc, nil,
		WithWorkers(1),
		WithProcessTimeout(time.Minute),
		WithResultHandler(func(_ Job, _ reconcile.BatchResult, err error) { errs <- err }),
	)
	if err := q.Enqueue(context.Background(), job("slow.pdf")); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	<-proc.started

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := q.Shutdown(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected shutdown deadline, got %v", err)
	}
	select {
	case err := <-errs:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("in-flight job was not cancelled")
	}
}
