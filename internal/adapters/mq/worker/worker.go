// Package worker defines worker contracts for asynchronous ranking
// recomputation.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"time"

	"github.com/okian/jobrank/internal/adapters/mq/queue"
	"github.com/okian/jobrank/internal/domain/model"
	"github.com/okian/jobrank/pkg/logger"
	"github.com/okian/jobrank/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerMultiplier = 2 // multiplier for runtime.NumCPU()
	workerShutdownTimeout   = 5 * time.Second
	poolShutdownTimeout     = 30 * time.Second
)

// Ranker recomputes and persists the current ranking of one job from
// everything submitted for it so far.
type Ranker interface {
	Recompute(ctx context.Context, jobID string) (model.JobRanking, error)
}

// Queue defines how workers receive recompute tasks.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.Task
}

// Worker consumes recompute tasks and drives the Ranker.
type Worker interface {
	// Run starts the worker loop until ctx is canceled.
	Run(ctx context.Context)

	// Shutdown gracefully stops the worker.
	// It will process any remaining tasks before stopping.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker for processing recompute tasks.
type InMemoryWorker struct {
	queue  Queue
	ranker Ranker
	name   string

	// Shutdown control
	shutdown chan struct{}
	done     chan struct{}

	// Logging
	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(queue Queue, ranker Ranker, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:    queue,
		ranker:   ranker,
		name:     "worker", // default name
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Get().Named("worker"),
	}

	for _, opt := range opts {
		opt(w)
	}

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

	taskChan := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case task, ok := <-taskChan:
			if !ok {
				// Channel closed, worker should stop
				return
			}

			if err := w.processTask(ctx, task); err != nil {
				w.logger.Error(ctx, "error processing recompute task", logger.Error(err))
			}
		}
	}
}

// Shutdown gracefully stops the worker.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	close(w.shutdown)

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// processTask handles a single recompute task.
func (w *InMemoryWorker) processTask(ctx context.Context, task queue.Task) error {
	start := time.Now()
	defer func() {
		latency := time.Since(start).Milliseconds()
		metrics.RecordWorkerProcessingLatency(float64(latency))
	}()

	ranking, err := w.ranker.Recompute(ctx, task.JobID)
	if err != nil {
		metrics.RecordRankingError()
		metrics.RecordWorkerError()
		w.logger.Error(ctx, "ranking recompute failed",
			logger.String("jobID", task.JobID),
			logger.Error(err),
		)
		return fmt.Errorf("recomputing ranking for job %s: %w", task.JobID, err)
	}

	metrics.RecordRankingComputed()
	w.logger.Debug(ctx, "ranking recomputed",
		logger.String("jobID", task.JobID),
		logger.Float64("finalScore", ranking.FinalScore),
		logger.String("rank", ranking.RankName),
	)
	return nil
}

// Pool manages multiple workers.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue
	ranker  Ranker

	// Shutdown control
	shutdown chan struct{}

	// Logging
	logger logger.Logger
}

// NewPool creates a new worker pool.
func NewPool(workerCount int, queue Queue, ranker Ranker) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU() * defaultWorkerMultiplier
	}

	pool := &Pool{
		workers:  make([]*InMemoryWorker, workerCount),
		queue:    queue,
		ranker:   ranker,
		shutdown: make(chan struct{}),
		logger:   logger.Get().Named("worker-pool"),
	}

	for i := 0; i < workerCount; i++ {
		pool.workers[i] = NewInMemoryWorker(
			queue,
			ranker,
			WithName("worker-"+strconv.Itoa(i)),
		)
	}

	metrics.UpdateWorkerCount(workerCount)

	return pool
}

// Size returns the number of workers in the pool.
func (p *Pool) Size() int {
	return len(p.workers)
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, worker := range p.workers {
		go worker.Run(ctx)
	}
}

// Stop gracefully stops all workers.
func (p *Pool) Stop() {
	close(p.shutdown)

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
	// First close the queue to stop new tasks
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	close(p.shutdown)

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
