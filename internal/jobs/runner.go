// Package jobs runs fire-and-forget work after the response is sent: cache
// writes, cache invalidations, image cleanup. Job failures are logged once
// and never retried; the cache TTL heals any lost invalidation.
package jobs

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Job is a named unit of background work.
type Job struct {
	Name string
	Run  func(ctx context.Context) error
}

// Runner executes submitted jobs on a single worker goroutine.
type Runner struct {
	queue  chan Job
	logger *slog.Logger
	wg     sync.WaitGroup

	mu      sync.Mutex
	stopped bool
}

// NewRunner starts the worker. queueSize bounds how many jobs may be pending;
// submissions beyond that are dropped rather than blocking a request.
func NewRunner(queueSize int, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Runner{
		queue:  make(chan Job, queueSize),
		logger: logger,
	}
	r.wg.Add(1)
	go r.work()
	return r
}

func (r *Runner) work() {
	defer r.wg.Done()
	for job := range r.queue {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := job.Run(ctx); err != nil {
			r.logger.Warn("background job failed",
				slog.String("job", job.Name), slog.String("error", err.Error()))
		}
		cancel()
	}
}

// Submit enqueues a job. It never blocks: when the queue is full or the
// runner is stopped the job is dropped with a log line.
func (r *Runner) Submit(name string, fn func(ctx context.Context) error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stopped {
		r.logger.Warn("job dropped, runner stopped", slog.String("job", name))
		return
	}

	select {
	case r.queue <- Job{Name: name, Run: fn}:
	default:
		r.logger.Warn("job dropped, queue full", slog.String("job", name))
	}
}

// Stop drains the queue and waits for the worker, up to the context deadline.
func (r *Runner) Stop(ctx context.Context) error {
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return nil
	}
	r.stopped = true
	close(r.queue)
	r.mu.Unlock()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
