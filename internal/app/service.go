// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	taskqueue "github.com/okian/jobrank/internal/adapters/mq/queue"
	workerpool "github.com/okian/jobrank/internal/adapters/mq/worker"
	"github.com/okian/jobrank/internal/adapters/repository"
	"github.com/okian/jobrank/internal/bulktest"
	"github.com/okian/jobrank/internal/domain/aggregate"
	"github.com/okian/jobrank/internal/domain/model"
	"github.com/okian/jobrank/internal/domain/scheme"
	"github.com/okian/jobrank/internal/domain/scoring"
	"github.com/okian/jobrank/pkg/logger"
	"github.com/okian/jobrank/pkg/metrics"
)

// Service wires the store, scheme, queue and worker pool into the
// scoring workflow the HTTP API exposes.
type Service struct {
	mu sync.RWMutex

	// Core components
	store      repository.Store
	schemeSt   *scheme.Store
	taskQueue  taskqueue.Queue
	aggregator *aggregate.Aggregator
	workerPool *workerpool.Pool
	bulk       *bulktest.Session

	// Active weight set used for every ranking computation. Reset to
	// the scheme defaults whenever criterion membership changes.
	weights model.WeightSet

	// Configuration
	workerCount     int
	queueSize       int
	privilegedRoles []string

	// State
	started bool
	stopCh  chan struct{}

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of worker goroutines.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum size of the recompute queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
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

// WithPrivilegedRoles sets the rater roles whose composites are
// reported individually alongside the final score.
func WithPrivilegedRoles(roles []string) Option {
	return func(s *Service) {
		if len(roles) > 0 {
			s.privilegedRoles = roles
		}
	}
}

// WithStore sets a custom store implementation.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithSchemeStore sets a custom scheme store.
func WithSchemeStore(st *scheme.Store) Option {
	return func(s *Service) {
		if st != nil {
			s.schemeSt = st
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:     runtime.NumCPU() * 2,
		queueSize:       10000,
		privilegedRoles: aggregate.DefaultPrivilegedRoles(),
		stopCh:          make(chan struct{}),
		logger:          nil, // replaced when the service starts
	}

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

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting job ranking service...")

	if s.store == nil {
		s.store = repository.NewMemStore()
	}
	if s.schemeSt == nil {
		s.schemeSt = scheme.NewStore()
	}
	s.taskQueue = taskqueue.NewInMemoryQueue(
		taskqueue.WithCapacity(s.queueSize),
		taskqueue.WithBufferSize(s.queueSize),
	)
	s.aggregator = aggregate.New(
		aggregate.WithPrivilegedRoles(s.privilegedRoles),
	)
	s.weights = s.schemeSt.DefaultWeights()
	s.bulk = bulktest.NewSession(s.schemeSt.Snapshot())

	// Criterion edits can orphan the active weight set; fall back to
	// the scheme defaults when that happens.
	s.schemeSt.Subscribe(s.onSchemeChange)

	s.workerPool = workerpool.NewPool(s.workerCount, s.taskQueue, s)
	s.workerPool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "job ranking service started",
		logger.Int("workers", s.workerPool.Size()),
		logger.Int("queueSize", s.queueSize),
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

	s.logger.Info(context.Background(), "stopping job ranking service...")

	// Close the queue first: idle workers exit when the dequeue channel
	// closes, so waiting on them before that burns the full per-worker
	// shutdown timeout.
	if q, ok := s.taskQueue.(*taskqueue.InMemoryQueue); ok {
		_ = q.Close()
	}

	if s.workerPool != nil {
		s.workerPool.Stop()
	}

	select {
	case <-s.stopCh:
		// Channel already closed
	default:
		close(s.stopCh)
	}

	s.started = false
	s.logger.Info(context.Background(), "job ranking service stopped")
}

// onSchemeChange revalidates the active weight set against the new
// criterion membership, resetting to defaults when it no longer covers.
func (s *Service) onSchemeChange(sc scheme.Scheme) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := scoring.ValidateWeights(s.weights, sc.Criteria); err != nil {
		s.logger.Warn(context.Background(),
			"active weights invalidated by scheme change, resetting to defaults",
			logger.Int("revision", sc.Revision),
			logger.Error(err),
		)
		s.weights = s.schemeSt.DefaultWeights()
	}
}

// CreateJob registers a new job order for tracking.
func (s *Service) CreateJob(ctx context.Context, job model.Job) (model.Job, error) {
	created, err := s.store.CreateJob(ctx, job)
	if err != nil {
		return model.Job{}, err
	}
	metrics.UpdateTrackedJobs(s.store.Count(ctx))
	s.logger.Info(ctx, "job created",
		logger.String("jobID", created.ID),
		logger.String("title", created.Title),
	)
	return created, nil
}

// GetJob returns a tracked job by id.
func (s *Service) GetJob(ctx context.Context, id string) (model.Job, error) {
	return s.store.Job(ctx, id)
}

// SubmitScores validates and persists one rater's factor scores for a
// job, then enqueues an asynchronous ranking recompute. The persisted
// submission is returned even though the ranking it triggers may not
// yet be visible.
func (s *Service) SubmitScores(ctx context.Context, jobID string, sub model.Submission) (model.Submission, error) {
	criteria := s.schemeSt.Criteria()
	if err := scoring.ValidateFactorScores(sub.Scores, criteria); err != nil {
		metrics.RecordSubmissionRejected()
		return model.Submission{}, err
	}
	if sub.ScoringDate.IsZero() {
		sub.ScoringDate = time.Now().UTC()
	}

	persisted, err := s.store.PersistSubmission(ctx, jobID, sub)
	if err != nil {
		if isDuplicate(err) {
			metrics.RecordSubmissionDuplicate()
		} else {
			metrics.RecordSubmissionRejected()
		}
		return model.Submission{}, err
	}
	metrics.RecordSubmissionAccepted()

	task := taskqueue.Task{JobID: jobID, EnqueuedAt: time.Now()}
	if !s.taskQueue.Enqueue(ctx, task) {
		// The submission is stored; recompute will happen on the next
		// successful enqueue for this job.
		s.logger.Warn(ctx, "recompute queue full, ranking deferred",
			logger.String("jobID", jobID),
		)
	}

	return persisted, nil
}

func isDuplicate(err error) bool {
	return errors.Is(err, repository.ErrDuplicateSubmission)
}

// Recompute recalculates the current ranking of a job from all of its
// submissions and persists the result. It implements worker.Ranker and
// is safe to run repeatedly; recomputing without new submissions
// produces an identical ranking.
func (s *Service) Recompute(ctx context.Context, jobID string) (model.JobRanking, error) {
	subs, err := s.store.FetchSubmissions(ctx, jobID)
	if err != nil {
		return model.JobRanking{}, err
	}

	sc := s.schemeSt.Snapshot()

	s.mu.RLock()
	weights := s.weights.Clone()
	s.mu.RUnlock()

	result, err := s.aggregator.Aggregate(subs, weights, sc.Criteria)
	if err != nil {
		return model.JobRanking{}, fmt.Errorf("aggregating job %s: %w", jobID, err)
	}

	rank, err := scoring.AssignRank(result.FinalScore, sc.Ranks)
	if err != nil {
		return model.JobRanking{}, fmt.Errorf("assigning rank for job %s: %w", jobID, err)
	}

	ranking := model.JobRanking{
		JobID:          jobID,
		ScoringDate:    time.Now().UTC(),
		FinalScore:     result.FinalScore,
		RankID:         rank.ID,
		RankName:       rank.Name,
		RoleComposites: result.RoleComposites,
	}
	persisted, err := s.store.PersistRanking(ctx, jobID, ranking)
	if err != nil {
		return model.JobRanking{}, err
	}

	s.refreshRankGauges(ctx, sc.Ranks)
	return persisted, nil
}

// refreshRankGauges recounts ranked jobs per rank for the dashboard.
func (s *Service) refreshRankGauges(ctx context.Context, ranks []model.Rank) {
	entries, err := s.store.Board(ctx)
	if err != nil {
		return
	}
	counts := make(map[string]int, len(ranks))
	for _, e := range entries {
		if e.Ranking != nil {
			counts[e.Ranking.RankName]++
		}
	}
	for _, r := range ranks {
		metrics.UpdateJobsByRank(r.Name, counts[r.Name])
	}
}

// GetRanking returns the current ranking for a job.
func (s *Service) GetRanking(ctx context.Context, jobID string) (model.JobRanking, error) {
	return s.store.CurrentRanking(ctx, jobID)
}

// GetRankingHistory returns all rankings computed for a job, newest first.
func (s *Service) GetRankingHistory(ctx context.Context, jobID string) ([]model.JobRanking, error) {
	return s.store.RankingHistory(ctx, jobID)
}

// Board returns every tracked job with its current ranking, ordered by
// final score descending.
func (s *Service) Board(ctx context.Context) ([]repository.BoardEntry, error) {
	return s.store.Board(ctx)
}

// Breakdown returns the per-criterion contributions behind a job's
// composite for one rater submission's scores under the active weights.
func (s *Service) Breakdown(scores model.FactorScoreSet) ([]scoring.Contribution, error) {
	criteria := s.schemeSt.Criteria()

	s.mu.RLock()
	weights := s.weights.Clone()
	s.mu.RUnlock()

	return scoring.Breakdown(scores, weights, criteria)
}

// Weights returns a copy of the active weight set.
func (s *Service) Weights() model.WeightSet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.weights.Clone()
}

// SetWeights validates and installs a new active weight set. Existing
// rankings keep their scores until their jobs are next recomputed.
func (s *Service) SetWeights(ctx context.Context, weights model.WeightSet) error {
	criteria := s.schemeSt.Criteria()
	if err := scoring.ValidateWeights(weights, criteria); err != nil {
		return err
	}

	s.mu.Lock()
	s.weights = weights.Clone()
	s.mu.Unlock()

	s.logger.Info(ctx, "active weights updated")
	return nil
}

// Scheme returns the scheme store for criterion and rank management.
func (s *Service) Scheme() *scheme.Store {
	return s.schemeSt
}

// BulkSession returns the validation batch session.
func (s *Service) BulkSession() *bulktest.Session {
	return s.bulk
}

// RunBulkReport scores every complete job in the bulk session against
// the active weights and records the match rate.
func (s *Service) RunBulkReport(ctx context.Context) (bulktest.Report, error) {
	sc := s.bulk.Scheme()

	s.mu.RLock()
	weights := s.weights.Clone()
	s.mu.RUnlock()

	report, err := bulktest.Run(s.bulk.Jobs(), weights, sc.Criteria, sc.Ranks)
	if err != nil {
		return bulktest.Report{}, err
	}

	metrics.RecordBulkRun(report.Summary.Complete, report.Summary.MatchPercentage)
	s.logger.Info(ctx, "bulk validation run completed",
		logger.Int("total", report.Summary.Total),
		logger.Int("complete", report.Summary.Complete),
		logger.Float64("matchPercentage", report.Summary.MatchPercentage),
	)
	return report, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":        s.started,
		"workerCount":    s.workerCount,
		"queueSize":      s.queueSize,
		"schemeRevision": s.schemeSt.Snapshot().Revision,
	}

	if s.started {
		queueLen := s.taskQueue.Len(ctx)
		trackedJobs := s.store.Count(ctx)

		stats["queueLength"] = queueLen
		stats["trackedJobs"] = trackedJobs

		if entries, err := s.store.Board(ctx); err == nil {
			byRank := make(map[string]int)
			for _, e := range entries {
				if e.Ranking != nil {
					byRank[e.Ranking.RankName]++
				}
			}
			stats["jobsByRank"] = byRank
		}

		metrics.UpdateQueueSize(queueLen)
		metrics.UpdateTrackedJobs(trackedJobs)
		metrics.UpdateWorkerCount(s.workerPool.Size())
	}

	return stats
}
