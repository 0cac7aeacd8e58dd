package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/okian/jobrank/internal/domain/model"
)

// submissionKeyFormat renders the (rater, date) part of the duplicate
// key; dates are compared at day granularity.
const submissionDateLayout = "2006-01-02"

// jobState bundles everything the store tracks for one job.
type jobState struct {
	job         model.Job
	submissions []model.Submission
	seen        map[string]struct{} // (rater|date) duplicate keys
	rankings    []model.JobRanking  // newest last; at most one IsCurrent
}

// MemStore implements Store in memory. All reads return copies taken
// under the lock, so callers never observe partial writes; the
// submission-append and ranking-supersede paths are each a single
// critical section, which provides the read-modify-write atomicity the
// production workflow depends on.
type MemStore struct {
	mu   sync.RWMutex
	jobs map[string]*jobState
	seq  uint64 // global submission insertion counter
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{jobs: make(map[string]*jobState)}
}

// CreateJob registers a job, assigning an id when empty.
func (s *MemStore) CreateJob(_ context.Context, job model.Job) (model.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if job.ID == "" {
		job.ID = "job_" + uuid.NewString()
	}
	if _, exists := s.jobs[job.ID]; exists {
		return model.Job{}, fmt.Errorf("job %s already exists", job.ID)
	}
	s.jobs[job.ID] = &jobState{
		job:  job,
		seen: make(map[string]struct{}),
	}
	return job, nil
}

// Job returns a job by id.
func (s *MemStore) Job(_ context.Context, id string) (model.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.jobs[id]
	if !ok {
		return model.Job{}, fmt.Errorf("%w: %s", ErrJobNotFound, id)
	}
	return st.job, nil
}

// PersistSubmission appends a submission, rejecting duplicates of an
// existing (job, rater, date) key.
func (s *MemStore) PersistSubmission(_ context.Context, jobID string, sub model.Submission) (model.Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.jobs[jobID]
	if !ok {
		return model.Submission{}, fmt.Errorf("%w: %s", ErrJobNotFound, jobID)
	}
	key := sub.RaterID + "|" + sub.ScoringDate.Format(submissionDateLayout)
	if _, dup := st.seen[key]; dup {
		return model.Submission{}, fmt.Errorf("%w: rater %s already scored job %s on %s",
			ErrDuplicateSubmission, sub.RaterID, jobID, sub.ScoringDate.Format(submissionDateLayout))
	}

	s.seq++
	sub.Seq = s.seq
	sub.Scores = sub.Scores.Clone()
	st.seen[key] = struct{}{}
	st.submissions = append(st.submissions, sub)
	return sub, nil
}

// FetchSubmissions returns all submissions for a job in insertion order.
func (s *MemStore) FetchSubmissions(_ context.Context, jobID string) ([]model.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.jobs[jobID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrJobNotFound, jobID)
	}
	out := make([]model.Submission, len(st.submissions))
	for i, sub := range st.submissions {
		sub.Scores = sub.Scores.Clone()
		out[i] = sub
	}
	return out, nil
}

// PersistRanking installs a new current ranking, clearing IsCurrent on
// the previous one in the same critical section.
func (s *MemStore) PersistRanking(_ context.Context, jobID string, ranking model.JobRanking) (model.JobRanking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.jobs[jobID]
	if !ok {
		return model.JobRanking{}, fmt.Errorf("%w: %s", ErrJobNotFound, jobID)
	}
	if ranking.ID == "" {
		ranking.ID = "ranking_" + uuid.NewString()
	}
	ranking.JobID = jobID
	ranking.IsCurrent = true
	for i := range st.rankings {
		st.rankings[i].IsCurrent = false
	}
	st.rankings = append(st.rankings, ranking)
	return ranking, nil
}

// CurrentRanking returns the single current ranking for a job.
func (s *MemStore) CurrentRanking(_ context.Context, jobID string) (model.JobRanking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.jobs[jobID]
	if !ok {
		return model.JobRanking{}, fmt.Errorf("%w: %s", ErrJobNotFound, jobID)
	}
	for i := len(st.rankings) - 1; i >= 0; i-- {
		if st.rankings[i].IsCurrent {
			return st.rankings[i], nil
		}
	}
	return model.JobRanking{}, fmt.Errorf("%w: job %s has no ranking", ErrRankingNotFound, jobID)
}

// RankingHistory returns all rankings for a job, newest first.
func (s *MemStore) RankingHistory(_ context.Context, jobID string) ([]model.JobRanking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.jobs[jobID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrJobNotFound, jobID)
	}
	out := make([]model.JobRanking, len(st.rankings))
	for i, r := range st.rankings {
		out[len(st.rankings)-1-i] = r
	}
	return out, nil
}

// Board returns a sorted snapshot of every job joined with its current
// ranking: ranked jobs by score descending, unranked jobs after them.
func (s *MemStore) Board(_ context.Context) ([]BoardEntry, error) {
	s.mu.RLock()
	entries := make([]BoardEntry, 0, len(s.jobs))
	for _, st := range s.jobs {
		e := BoardEntry{Job: st.job}
		for i := len(st.rankings) - 1; i >= 0; i-- {
			if st.rankings[i].IsCurrent {
				r := st.rankings[i]
				e.Ranking = &r
				break
			}
		}
		entries = append(entries, e)
	}
	s.mu.RUnlock()

	sort.SliceStable(entries, func(i, j int) bool {
		ri, rj := entries[i].Ranking, entries[j].Ranking
		switch {
		case ri != nil && rj != nil:
			if ri.FinalScore != rj.FinalScore {
				return ri.FinalScore > rj.FinalScore
			}
			return entries[i].Job.ID < entries[j].Job.ID
		case ri != nil:
			return true
		case rj != nil:
			return false
		default:
			return entries[i].Job.ID < entries[j].Job.ID
		}
	})
	return entries, nil
}

// Count returns the number of jobs tracked in the store.
func (s *MemStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.jobs)
}
