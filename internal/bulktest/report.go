package bulktest

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/okian/jobrank/internal/domain/model"
	"github.com/okian/jobrank/internal/domain/scoring"
)

// Summary holds the match statistics of a validation run.
type Summary struct {
	Total           int     `json:"total"`
	Complete        int     `json:"complete"`
	Incomplete      int     `json:"incomplete"`
	Matched         int     `json:"matched"`
	Mismatched      int     `json:"mismatched"`
	MatchPercentage float64 `json:"match_percentage"` // 0 when Complete == 0
}

// Report compares model-assigned ranks against human-expected ranks
// across a batch of test jobs.
type Report struct {
	GeneratedAt time.Time   `json:"generated_at"`
	Summary     Summary     `json:"summary"`
	Matches     []ScoredJob `json:"matches"`
	Mismatches  []ScoredJob `json:"mismatches"`
	Incomplete  []Job       `json:"incomplete"`
}

// Run scores every complete job in the batch with the given weights and
// compares the model rank against the human-expected rank. Incomplete
// jobs are excluded from scoring and statistics and reported separately.
// Bulk test jobs are single-rater by construction, so each job's score
// set feeds the composite calculator directly.
func Run(jobs []Job, weights model.WeightSet, criteria []model.Criterion, ranks []model.Rank) (Report, error) {
	if err := scoring.ValidateWeights(weights, criteria); err != nil {
		return Report{}, err
	}

	r := Report{GeneratedAt: time.Now().UTC()}
	r.Summary.Total = len(jobs)
	for _, job := range jobs {
		if !job.Complete(criteria) {
			r.Incomplete = append(r.Incomplete, job)
			continue
		}
		scored, err := scoreJob(job, weights, criteria, ranks)
		if err != nil {
			return Report{}, fmt.Errorf("scoring job %s: %w", job.ID, err)
		}
		if scored.Matched {
			r.Matches = append(r.Matches, scored)
		} else {
			r.Mismatches = append(r.Mismatches, scored)
		}
	}

	r.Summary.Incomplete = len(r.Incomplete)
	r.Summary.Matched = len(r.Matches)
	r.Summary.Mismatched = len(r.Mismatches)
	r.Summary.Complete = r.Summary.Matched + r.Summary.Mismatched
	if r.Summary.Complete > 0 {
		r.Summary.MatchPercentage = 100 * float64(r.Summary.Matched) / float64(r.Summary.Complete)
	}
	return r, nil
}

func scoreJob(job Job, weights model.WeightSet, criteria []model.Criterion, ranks []model.Rank) (ScoredJob, error) {
	score, err := scoring.Composite(job.Scores, weights, criteria)
	if err != nil {
		return ScoredJob{}, err
	}
	rank, err := scoring.AssignRank(score, ranks)
	if err != nil {
		return ScoredJob{}, err
	}
	breakdown, err := scoring.Breakdown(job.Scores, weights, criteria)
	if err != nil {
		return ScoredJob{}, err
	}
	return ScoredJob{
		Job:           job,
		ModelScore:    score,
		ModelRankID:   rank.ID,
		ModelRankName: rank.Name,
		Matched:       job.ExpectedRankID == rank.ID,
		Breakdown:     breakdown,
	}, nil
}

// Filter selects which analyzed jobs a view includes.
type Filter string

// Filter values.
const (
	FilterAll        Filter = "all"
	FilterMatches    Filter = "matches"
	FilterMismatches Filter = "mismatches"
)

// SortField orders a view of analyzed jobs.
type SortField string

// SortField values.
const (
	SortByTitle        SortField = "title"
	SortByOrganization SortField = "organization"
	SortByModelScore   SortField = "model_score"
	SortByMatch        SortField = "match"
)

// Direction is a sort direction.
type Direction string

// Direction values.
const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// View returns a filtered, stably sorted copy of the analyzed jobs.
// The report itself is never mutated.
func (r Report) View(filter Filter, field SortField, dir Direction) []ScoredJob {
	var jobs []ScoredJob
	switch filter {
	case FilterMatches:
		jobs = append(jobs, r.Matches...)
	case FilterMismatches:
		jobs = append(jobs, r.Mismatches...)
	default:
		jobs = append(jobs, r.Matches...)
		jobs = append(jobs, r.Mismatches...)
	}

	less := lessFunc(field)
	sort.SliceStable(jobs, func(i, j int) bool {
		if dir == Descending {
			return less(jobs[j], jobs[i])
		}
		return less(jobs[i], jobs[j])
	})
	return jobs
}

func lessFunc(field SortField) func(a, b ScoredJob) bool {
	switch field {
	case SortByOrganization:
		return func(a, b ScoredJob) bool {
			return strings.ToLower(a.Organization) < strings.ToLower(b.Organization)
		}
	case SortByModelScore:
		return func(a, b ScoredJob) bool { return a.ModelScore < b.ModelScore }
	case SortByMatch:
		return func(a, b ScoredJob) bool { return !a.Matched && b.Matched }
	default:
		return func(a, b ScoredJob) bool {
			return strings.ToLower(a.Title) < strings.ToLower(b.Title)
		}
	}
}
