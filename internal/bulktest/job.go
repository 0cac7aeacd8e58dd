// Package bulktest implements the offline validation mode: a batch of
// test jobs carrying human-entered factor scores and expected ranks is
// scored with a candidate weight set and compared against human
// judgment, so weights can be tuned before production use.
package bulktest

import (
	"time"

	"github.com/google/uuid"

	"github.com/okian/jobrank/internal/domain/model"
	"github.com/okian/jobrank/internal/domain/scoring"
)

// Job is one test job in a validation batch. Scores and the expected
// rank are recorded incrementally; the job only feeds the reporter once
// complete.
type Job struct {
	ID             string               `json:"id"`
	Title          string               `json:"title"`
	Organization   string               `json:"organization"`
	Scores         model.FactorScoreSet `json:"scores"`
	ExpectedRankID string               `json:"expected_rank_id,omitempty"`
	Source         string               `json:"source"` // "csv" or "manual"
	CreatedAt      time.Time            `json:"created_at"`
}

// NewJob creates a test job with a fresh identifier.
func NewJob(title, organization, source string) Job {
	return Job{
		ID:           "bulk_" + uuid.NewString(),
		Title:        title,
		Organization: organization,
		Scores:       make(model.FactorScoreSet),
		Source:       source,
		CreatedAt:    time.Now().UTC(),
	}
}

// Complete reports whether every configured criterion has a score in
// range and an expected rank is set.
func (j Job) Complete(criteria []model.Criterion) bool {
	if j.ExpectedRankID == "" {
		return false
	}
	for _, c := range criteria {
		v, ok := j.Scores[c.ID]
		if !ok || v < scoring.ScoreMin || v > scoring.ScoreMax {
			return false
		}
	}
	return true
}

// ScoredJob is a complete job after model scoring.
type ScoredJob struct {
	Job
	ModelScore    float64                `json:"model_score"`
	ModelRankID   string                 `json:"model_rank_id"`
	ModelRankName string                 `json:"model_rank_name"`
	Matched       bool                   `json:"matched"`
	Breakdown     []scoring.Contribution `json:"breakdown,omitempty"`
}
