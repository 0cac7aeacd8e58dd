package bulktest

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/jobrank/internal/domain/model"
	"github.com/okian/jobrank/internal/domain/scheme"
	"github.com/okian/jobrank/internal/domain/scoring"
)

// Sentinel kinds for session errors.
var (
	ErrJobNotFound  = errors.New("bulk test job not found")
	ErrInvalidScore = errors.New("invalid bulk test score")
	ErrUnknownRank  = errors.New("unknown expected rank")
)

// Session holds one validation batch: the imported jobs, a snapshot of
// the scheme they were imported under, and source metadata. It replaces
// the ambient "current session" global of the scoring model tooling
// with an explicit object threaded through calls.
type Session struct {
	mu sync.RWMutex

	id         string
	jobs       []Job
	snapshot   scheme.Scheme
	fileName   string
	uploadedAt time.Time
}

// NewSession creates an empty session pinned to a scheme snapshot.
func NewSession(snapshot scheme.Scheme) *Session {
	return &Session{
		id:       "session_" + uuid.NewString(),
		snapshot: snapshot,
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Scheme returns the scheme snapshot the session was created under.
func (s *Session) Scheme() scheme.Scheme {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

// Replace installs a freshly imported batch, discarding any prior jobs.
func (s *Session) Replace(jobs []Job, fileName string, snapshot scheme.Scheme) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs = append([]Job(nil), jobs...)
	s.snapshot = snapshot
	s.fileName = fileName
	s.uploadedAt = time.Now().UTC()
}

// Add appends a manually entered job.
func (s *Session) Add(job Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs = append(s.jobs, job)
}

// Jobs returns a copy of the session's jobs in import order.
func (s *Session) Jobs() []Job {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Job, len(s.jobs))
	for i, j := range s.jobs {
		j.Scores = j.Scores.Clone()
		out[i] = j
	}
	return out
}

// Job returns one job by id.
func (s *Session) Job(id string) (Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, j := range s.jobs {
		if j.ID == id {
			j.Scores = j.Scores.Clone()
			return j, nil
		}
	}
	return Job{}, fmt.Errorf("%w: %s", ErrJobNotFound, id)
}

// SetScores merges per-criterion scores into a job. Unknown criteria
// and out-of-range values are rejected without mutating the job.
func (s *Session) SetScores(id string, scores model.FactorScoreSet) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	known := make(map[string]struct{}, len(s.snapshot.Criteria))
	for _, c := range s.snapshot.Criteria {
		known[c.ID] = struct{}{}
	}
	for cid, v := range scores {
		if _, ok := known[cid]; !ok {
			return fmt.Errorf("%w: unknown criterion %q", ErrInvalidScore, cid)
		}
		if v < scoring.ScoreMin || v > scoring.ScoreMax {
			return fmt.Errorf("%w: criterion %q score %d outside [%d, %d]",
				ErrInvalidScore, cid, v, scoring.ScoreMin, scoring.ScoreMax)
		}
	}

	for i := range s.jobs {
		if s.jobs[i].ID != id {
			continue
		}
		for cid, v := range scores {
			s.jobs[i].Scores[cid] = v
		}
		return nil
	}
	return fmt.Errorf("%w: %s", ErrJobNotFound, id)
}

// SetExpectedRank records the human-expected rank for a job.
func (s *Session) SetExpectedRank(id, rankID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	found := false
	for _, r := range s.snapshot.Ranks {
		if r.ID == rankID {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("%w: %s", ErrUnknownRank, rankID)
	}

	for i := range s.jobs {
		if s.jobs[i].ID == id {
			s.jobs[i].ExpectedRankID = rankID
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrJobNotFound, id)
}

// NextIncomplete returns the first incomplete job after the given id,
// wrapping around to the start; ok is false when every job is complete.
func (s *Session) NextIncomplete(afterID string) (Job, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	start := 0
	if afterID != "" {
		for i, j := range s.jobs {
			if j.ID == afterID {
				start = i + 1
				break
			}
		}
	}
	n := len(s.jobs)
	for i := 0; i < n; i++ {
		j := s.jobs[(start+i)%n]
		if !j.Complete(s.snapshot.Criteria) {
			return j, true
		}
	}
	return Job{}, false
}

// Stats summarizes session completion progress.
type Stats struct {
	SessionID            string    `json:"session_id"`
	Total                int       `json:"total"`
	Complete             int       `json:"complete"`
	Incomplete           int       `json:"incomplete"`
	CompletionPercentage float64   `json:"completion_percentage"`
	FileName             string    `json:"file_name,omitempty"`
	UploadedAt           time.Time `json:"uploaded_at,omitempty"`
}

// Stats returns the session's completion statistics.
func (s *Session) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := Stats{
		SessionID:  s.id,
		Total:      len(s.jobs),
		FileName:   s.fileName,
		UploadedAt: s.uploadedAt,
	}
	for _, j := range s.jobs {
		if j.Complete(s.snapshot.Criteria) {
			st.Complete++
		}
	}
	st.Incomplete = st.Total - st.Complete
	if st.Total > 0 {
		st.CompletionPercentage = 100 * float64(st.Complete) / float64(st.Total)
	}
	return st
}

// Clear discards all jobs, keeping the session id and snapshot.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs = nil
	s.fileName = ""
	s.uploadedAt = time.Time{}
}
