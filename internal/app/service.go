// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	runqueue "github.com/openultimate/ratings/internal/adapters/mq/queue"
	workerpool "github.com/openultimate/ratings/internal/adapters/mq/worker"
	"github.com/openultimate/ratings/internal/adapters/tablestore"
	"github.com/openultimate/ratings/internal/domain/model"
	"github.com/openultimate/ratings/internal/domain/rating"
	"github.com/openultimate/ratings/pkg/logger"
	"github.com/openultimate/ratings/pkg/metrics"
)

// Service implements the API dependencies for the rating engine.
type Service struct {
	mu sync.RWMutex

	// Core components
	store      tablestore.Store
	runQueue   runqueue.Queue
	workerPool *workerpool.Pool
	algorithm  rating.Algorithm
	runs       map[string]*model.Run

	// Configuration
	dataDir     string
	queueSize   int
	workerCount int
	dropDraws   bool

	// State
	started bool
	stopCh  chan struct{}

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithDataDir sets the directory holding the CSV tables.
func WithDataDir(dir string) Option {
	return func(s *Service) {
		if dir != "" {
			s.dataDir = dir
		}
	}
}

// WithQueueSize sets the maximum size of the run queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithWorkerCount sets the number of run workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithDropDraws removes drawn games during normalization.
func WithDropDraws(drop bool) Option {
	return func(s *Service) {
		s.dropDraws = drop
	}
}

// WithAlgorithm sets the rating algorithm used for runs.
func WithAlgorithm(algo rating.Algorithm) Option {
	return func(s *Service) {
		if algo != nil {
			s.algorithm = algo
		}
	}
}

// WithStore sets a custom table store, mainly for tests.
func WithStore(store tablestore.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		dataDir:     "./data",
		queueSize:   64,
		workerCount: 2,
		runs:        make(map[string]*model.Run),
		stopCh:      make(chan struct{}),
		logger:      nil, // Will be replaced when service starts
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	// Initialize logger if not already set
	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting rating service...")

	// Initialize components
	if s.store == nil {
		s.store = tablestore.NewCSVStore(s.dataDir)
	}
	if s.algorithm == nil {
		s.algorithm = rating.NewUSAU()
	}
	s.runQueue = runqueue.NewInMemoryQueue(
		runqueue.WithCapacity(s.queueSize),
	)

	// Create and start the worker pool; the service itself executes runs.
	s.workerPool = workerpool.NewPool(s.workerCount, s.runQueue, s)
	s.workerPool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "rating service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.String("dataDir", s.dataDir),
	)

	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping rating service...")

	// Stop worker pool
	if s.workerPool != nil {
		s.workerPool.Stop()
	}

	// Close queue
	if q, ok := s.runQueue.(*runqueue.InMemoryQueue); ok {
		_ = q.Close()
	}

	// Signal cleanup loop to stop
	select {
	case <-s.stopCh:
		// Channel already closed
	default:
		close(s.stopCh)
	}

	s.started = false
	s.logger.Info(context.Background(), "rating service stopped")
}

// EnqueueRun registers a run for a division and queues it for async
// processing.
func (s *Service) EnqueueRun(ctx context.Context, division string) (model.Run, error) {
	run := model.Run{
		ID:         uuid.NewString(),
		Division:   division,
		Status:     model.RunPending,
		EnqueuedAt: time.Now().UTC(),
	}

	s.mu.Lock()
	s.runs[run.ID] = &run
	s.mu.Unlock()

	if !s.runQueue.Enqueue(ctx, model.RunRequest{ID: run.ID, Division: division}) {
		s.mu.Lock()
		delete(s.runs, run.ID)
		s.mu.Unlock()
		return model.Run{}, NewKind("service.enqueue_run", ErrQueueFull)
	}

	s.logger.Info(ctx, "run enqueued",
		logger.String("run_id", run.ID),
		logger.String("division", division),
	)
	return run, nil
}

// GetRun returns the current state of a previously enqueued run.
func (s *Service) GetRun(ctx context.Context, id string) (model.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.runs[id]
	if !ok {
		return model.Run{}, fmt.Errorf("run %s: %w", id, ErrRunNotFound)
	}
	return *run, nil
}

// ExecuteRun performs a full rating run for a division: prepare the dataset,
// fit the ratings, persist the output table. Implements the worker Runner.
func (s *Service) ExecuteRun(ctx context.Context, req model.RunRequest) error {
	start := time.Now()
	metrics.RecordRunStarted()
	s.updateRun(req.ID, func(run *model.Run) {
		run.Status = model.RunRunning
	})

	settings := s.loadSettings(ctx)

	data, err := s.prepare(ctx, req.Division, settings)
	if err != nil {
		s.failRun(req.ID, err)
		return err
	}

	solveStart := time.Now()
	ratings := rating.GetRatings(ctx, s.algorithm, data, settings)
	metrics.RecordSolveDuration(time.Since(solveStart).Seconds())
	metrics.RecordSolverIterations(rating.Iterations)

	rows := make([][]string, 0, len(ratings)+1)
	rows = append(rows, []string{"Team", "Rating"})
	for _, r := range ratings {
		rows = append(rows, []string{r.Team, strconv.FormatFloat(r.Rating, 'f', 2, 64)})
	}
	if err := s.store.SaveTable(ctx, "ratings-"+req.Division, rows); err != nil {
		err = fmt.Errorf("save ratings: %w", err)
		s.failRun(req.ID, err)
		return err
	}

	now := time.Now().UTC()
	s.updateRun(req.ID, func(run *model.Run) {
		run.Status = model.RunCompleted
		run.FinishedAt = &now
		run.Ratings = ratings
	})

	metrics.RecordRunCompleted()
	metrics.RecordRunDuration(time.Since(start).Seconds())
	return nil
}

// Ratings returns the most recently persisted ratings for a division.
func (s *Service) Ratings(ctx context.Context, division string) ([]model.TeamRating, error) {
	rows, err := s.store.LoadTable(ctx, "ratings-"+division)
	if err != nil {
		return nil, fmt.Errorf("ratings for division %s: %w", division, err)
	}

	ratings := make([]model.TeamRating, 0, len(rows))
	for i, row := range rows {
		if i == 0 || len(row) < 2 {
			continue // header or short row
		}
		value, err := strconv.ParseFloat(row[1], 64)
		if err != nil {
			continue
		}
		ratings = append(ratings, model.TeamRating{Team: row[0], Rating: value})
	}
	return ratings, nil
}

// TeamSummaries computes per-team aggregates for a division from the current
// tables.
func (s *Service) TeamSummaries(ctx context.Context, division string) ([]model.TeamSummary, error) {
	settings := s.loadSettings(ctx)
	data, err := s.prepare(ctx, division, settings)
	if err != nil {
		return nil, err
	}
	return data.TeamSummaries, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"runs":        len(s.runs),
	}

	byStatus := make(map[string]int)
	for _, run := range s.runs {
		byStatus[run.Status]++
	}
	stats["runsByStatus"] = byStatus

	if s.started {
		queueLen := s.runQueue.Len(context.Background())
		stats["queueLength"] = queueLen
		metrics.UpdateQueueSize(queueLen)
		metrics.UpdateWorkerCount(s.workerCount)
	}

	return stats
}

// updateRun mutates a run record under the service lock.
func (s *Service) updateRun(id string, fn func(*model.Run)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if run, ok := s.runs[id]; ok {
		fn(run)
	}
}

// failRun marks a run failed and records the error.
func (s *Service) failRun(id string, err error) {
	now := time.Now().UTC()
	s.updateRun(id, func(run *model.Run) {
		run.Status = model.RunFailed
		run.Error = err.Error()
		run.FinishedAt = &now
	})
	metrics.RecordRunFailed()
}
