// Package repository defines the job/submission/ranking store interface
// and errors.
package repository

import (
	"context"

	"github.com/okian/jobrank/internal/domain/model"
)

// BoardEntry is one row of the ranked job board: a job joined with its
// current ranking, if any.
type BoardEntry struct {
	Job     model.Job
	Ranking *model.JobRanking // nil when the job has no submissions yet
}

// Store provides read/write access to jobs, submissions and rankings.
type Store interface {
	// CreateJob registers a job, assigning an id when empty.
	CreateJob(ctx context.Context, job model.Job) (model.Job, error)

	// Job returns a job by id. Returns ErrJobNotFound when unknown.
	Job(ctx context.Context, id string) (model.Job, error)

	// PersistSubmission appends a rater submission for a job and
	// assigns its sequence number. Fails with ErrDuplicateSubmission
	// if a submission with the same (job, rater, date) key exists;
	// the existing submission is never overwritten.
	PersistSubmission(ctx context.Context, jobID string, sub model.Submission) (model.Submission, error)

	// FetchSubmissions returns all submissions for a job in insertion
	// order.
	FetchSubmissions(ctx context.Context, jobID string) ([]model.Submission, error)

	// PersistRanking installs a new current ranking for a job,
	// atomically clearing IsCurrent on the previous one. Superseded
	// rankings are retained for history.
	PersistRanking(ctx context.Context, jobID string, ranking model.JobRanking) (model.JobRanking, error)

	// CurrentRanking returns the single current ranking for a job.
	// Returns ErrRankingNotFound if none has been computed.
	CurrentRanking(ctx context.Context, jobID string) (model.JobRanking, error)

	// RankingHistory returns all rankings for a job, newest first.
	RankingHistory(ctx context.Context, jobID string) ([]model.JobRanking, error)

	// Board returns every job joined with its current ranking,
	// ordered by final score descending (unranked jobs last).
	Board(ctx context.Context) ([]BoardEntry, error)

	// Count returns the number of jobs tracked in the store.
	Count(ctx context.Context) int
}
