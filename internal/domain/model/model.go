// Package model contains domain models passed between layers.
package model

import "time"

// Criterion is one scored factor of the scoring scheme, rated 1-5.
type Criterion struct {
	ID                string         `json:"id"` // unique within a scheme
	Name              string         `json:"name"`
	Description       string         `json:"description"`
	DefaultWeight     float64        `json:"default_weight"` // fractional (scheme weights sum to 1.0)
	ScaleDescriptions map[int]string `json:"scale_descriptions"` // score value (1-5) -> descriptive text
	Removable         bool           `json:"removable"` // default criteria cannot be removed
	Order             int            `json:"order"` // display order
}

// Rank is a named tier assigned from a final score via configured thresholds.
type Rank struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	MinScore float64 `json:"min_score"` // inclusive
	MaxScore float64 `json:"max_score"` // inclusive
	Color    string  `json:"color"`     // display color, e.g. "#28a745"
	Order    int     `json:"order"`     // display order
}

// WeightSet maps criterion id to a non-negative fractional weight.
// A valid set covers exactly the scheme's criteria and sums to 1.0
// within tolerance.
type WeightSet map[string]float64

// Clone returns a copy so callers cannot mutate shared state.
func (w WeightSet) Clone() WeightSet {
	out := make(WeightSet, len(w))
	for k, v := range w {
		out[k] = v
	}
	return out
}

// FactorScoreSet maps criterion id to an integer score in [1, 5].
type FactorScoreSet map[string]int

// Clone returns a copy so callers cannot mutate shared state.
func (f FactorScoreSet) Clone() FactorScoreSet {
	out := make(FactorScoreSet, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// Submission is one rater's factor scores for one job on one date.
// At most one submission per (job, rater, date) key is accepted.
type Submission struct {
	RaterID     string
	RaterRole   string // e.g. "account_manager", "sales_person", "ceo"
	ScoringDate time.Time
	Scores      FactorScoreSet
	Seq         uint64 // store-assigned insertion order; breaks same-date ties
}

// ScorerComposite is one rater's weighted composite derived from exactly
// one submission.
type ScorerComposite struct {
	RaterID   string
	Role      string
	Composite float64 // rounded to 2 decimals
}

// JobRanking is the outcome of aggregating a job's submissions.
// Exactly one ranking per job is current at any time; superseded
// rankings are retained for history with IsCurrent cleared.
type JobRanking struct {
	ID             string
	JobID          string
	ScoringDate    time.Time
	FinalScore     float64 // rounded to 2 decimals
	RankID         string
	RankName       string
	RoleComposites map[string]float64 // privileged role -> composite; absent roles omitted
	IsCurrent      bool
}

// Job is a recruitment job order being ranked.
type Job struct {
	ID         string
	Title      string
	ClientName string
	OpenedAt   time.Time
}

// DaysOpen reports how long the job has been open relative to now.
func (j Job) DaysOpen(now time.Time) int {
	d := int(now.Sub(j.OpenedAt).Hours() / 24)
	if d < 0 {
		return 0
	}
	return d
}
