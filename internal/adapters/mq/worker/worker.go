// Package worker defines worker contracts for asynchronous rating runs.
package worker

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/openultimate/ratings/internal/domain/model"
	"github.com/openultimate/ratings/pkg/logger"
	"github.com/openultimate/ratings/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerCount    = 2
	workerShutdownTimeout = 5 * time.Second
	poolShutdownTimeout   = 30 * time.Second
)

// Request abstracts what workers read off the queue.
// Using the model.RunRequest type for consistency.
type Request = model.RunRequest

// Runner executes a single rating run end to end.
type Runner interface {
	ExecuteRun(ctx context.Context, req Request) error
}

// Queue defines how workers receive run requests.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Request
}

// Worker processes run requests using the provided Runner.
type Worker interface {
	// Run starts the worker loop until ctx is canceled.
	Run(ctx context.Context)

	// Shutdown gracefully stops the worker.
	// It will process any remaining requests before stopping.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker for processing run requests.
type InMemoryWorker struct {
	queue  Queue
	runner Runner
	name   string

	// Shutdown control
	shutdown chan struct{}
	done     chan struct{}

	// Logging
	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(queue Queue, runner Runner, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:    queue,
		runner:   runner,
		name:     "worker", // default name
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Get().Named("worker"),
	}

	// Apply all options
	for _, opt := range opts {
		opt(w)
	}

	// Set up logger with worker name if not already set
	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}

	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer func() {
		close(w.done)
	}()

	reqChan := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case req, ok := <-reqChan:
			if !ok {
				// Channel closed, worker should stop
				return
			}

			if err := w.processRequest(ctx, req); err != nil {
				w.logger.Error(ctx, "error processing run", logger.Error(err))
			}
		}
	}
}

// Shutdown gracefully stops the worker.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	// Signal shutdown
	close(w.shutdown)

	// Wait for worker to finish or context to timeout
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// processRequest handles a single run request.
func (w *InMemoryWorker) processRequest(ctx context.Context, req Request) error {
	start := time.Now()
	defer func() {
		latency := time.Since(start).Milliseconds()
		metrics.RecordWorkerProcessingLatency(float64(latency))
	}()

	w.logger.Info(ctx, "executing rating run",
		logger.String("run_id", req.ID),
		logger.String("division", req.Division),
	)

	if err := w.runner.ExecuteRun(ctx, req); err != nil {
		metrics.RecordWorkerError()
		w.logger.Error(ctx, "rating run failed",
			logger.String("run_id", req.ID),
			logger.String("division", req.Division),
			logger.Error(err),
		)
		return fmt.Errorf("run %s failed: %w", req.ID, err)
	}

	w.logger.Info(ctx, "rating run completed",
		logger.String("run_id", req.ID),
		logger.String("division", req.Division),
		logger.Float64("duration_seconds", time.Since(start).Seconds()),
	)

	return nil
}

// Pool manages multiple workers.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue
	runner  Runner

	// Shutdown control
	shutdown chan struct{}

	// Logging
	logger logger.Logger
}

// NewPool creates a new worker pool.
func NewPool(workerCount int, queue Queue, runner Runner) *Pool {
	if workerCount < 1 {
		workerCount = defaultWorkerCount
	}

	pool := &Pool{
		workers:  make([]*InMemoryWorker, workerCount),
		queue:    queue,
		runner:   runner,
		shutdown: make(chan struct{}),
		logger:   logger.Get().Named("worker-pool"),
	}

	for i := 0; i < workerCount; i++ {
		pool.workers[i] = NewInMemoryWorker(
			queue,
			runner,
			WithName("worker-"+strconv.Itoa(i)),
		)
	}

	metrics.UpdateWorkerCount(workerCount)

	return pool
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, worker := range p.workers {
		go worker.Run(ctx)
	}
}

// Stop gracefully stops all workers. Closing the queue ends each worker's
// dequeue channel, so idle workers exit immediately rather than waiting out
// the shutdown timeout.
func (p *Pool) Stop() {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		_ = closer.Close()
	}

	// Wait for all workers to finish
	for _, worker := range p.workers {
		select {
		case <-worker.done:
			// Worker finished
		case <-time.After(workerShutdownTimeout):
			// Worker timeout
		}
	}
}

// Shutdown gracefully shuts down the entire worker pool.
func (p *Pool) Shutdown(ctx context.Context) error {
	// First close the queue to stop new requests
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	// Signal shutdown to all workers
	close(p.shutdown)

	// Wait for all workers to finish or context to timeout
	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	for i, worker := range p.workers {
		select {
		case <-worker.done:
		case <-shutdownCtx.Done():
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
		}
	}

	return nil
}
