// Package aggregate reduces many raters' submissions for one job into a
// final score with per-rater deduplication and role-keyed breakdowns.
package aggregate

import (
	"errors"
	"sort"

	"github.com/okian/jobrank/internal/domain/model"
	"github.com/okian/jobrank/internal/domain/scoring"
)

// ErrEmptyCompositeSet indicates aggregation over zero retained
// submissions.
var ErrEmptyCompositeSet = errors.New("empty composite set")

// DefaultPrivilegedRoles are the roles whose composites are exposed
// individually on a ranking.
func DefaultPrivilegedRoles() []string {
	return []string{"account_manager", "sales_person", "ceo"}
}

// maxPrivilegedRoles caps the role breakdown per the scoring model.
const maxPrivilegedRoles = 3

// Aggregator combines rater submissions into a final job score.
type Aggregator struct {
	roles []string
}

// Option applies a configuration option to the Aggregator.
type Option func(*Aggregator)

// WithPrivilegedRoles sets the externally meaningful roles exposed in
// the breakdown. At most three are kept.
func WithPrivilegedRoles(roles []string) Option {
	return func(a *Aggregator) {
		if len(roles) == 0 {
			return
		}
		if len(roles) > maxPrivilegedRoles {
			roles = roles[:maxPrivilegedRoles]
		}
		a.roles = append([]string(nil), roles...)
	}
}

// New creates an Aggregator with the default privileged roles.
func New(opts ...Option) *Aggregator {
	a := &Aggregator{roles: DefaultPrivilegedRoles()}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Result is the outcome of aggregating one job's submissions.
type Result struct {
	// FinalScore is the arithmetic mean of the retained composites,
	// rounded to 2 decimals.
	FinalScore float64

	// Composites holds one entry per retained rater, ordered by
	// submission recency (oldest first).
	Composites []model.ScorerComposite

	// RoleComposites maps each privileged role carried by a retained
	// submission to that rater's composite. Roles with no retained
	// submission are absent.
	RoleComposites map[string]float64
}

// Aggregate deduplicates submissions per rater, computes one composite
// per retained submission, and reduces them to a final score plus a
// role breakdown.
//
// Dedup rule: for each rater the submission with the latest ScoringDate
// wins; same-date ties go to the highest Seq (insertion order). The
// same ordering resolves multiple raters sharing a privileged role:
// the rater whose retained submission is newest wins the role slot.
func (a *Aggregator) Aggregate(subs []model.Submission, weights model.WeightSet, criteria []model.Criterion) (Result, error) {
	retained := dedupe(subs)
	if len(retained) == 0 {
		return Result{}, ErrEmptyCompositeSet
	}

	composites := make([]model.ScorerComposite, 0, len(retained))
	roleComposites := make(map[string]float64, len(a.roles))
	var sum float64
	for _, sub := range retained {
		c, err := scoring.Composite(sub.Scores, weights, criteria)
		if err != nil {
			return Result{}, err
		}
		composites = append(composites, model.ScorerComposite{
			RaterID:   sub.RaterID,
			Role:      sub.RaterRole,
			Composite: c,
		})
		sum += c
		if a.privileged(sub.RaterRole) {
			// retained is ordered oldest-first, so later entries
			// overwrite earlier ones: last-wins.
			roleComposites[sub.RaterRole] = c
		}
	}

	return Result{
		FinalScore:     scoring.Round2(sum / float64(len(composites))),
		Composites:     composites,
		RoleComposites: roleComposites,
	}, nil
}

func (a *Aggregator) privileged(role string) bool {
	for _, r := range a.roles {
		if r == role {
			return true
		}
	}
	return false
}

// dedupe retains the newest submission per rater and returns the
// survivors ordered oldest-first by (date, seq).
func dedupe(subs []model.Submission) []model.Submission {
	latest := make(map[string]model.Submission, len(subs))
	for _, sub := range subs {
		existing, ok := latest[sub.RaterID]
		if !ok || newer(sub, existing) {
			latest[sub.RaterID] = sub
		}
	}
	retained := make([]model.Submission, 0, len(latest))
	for _, sub := range latest {
		retained = append(retained, sub)
	}
	sort.SliceStable(retained, func(i, j int) bool { return newer(retained[j], retained[i]) })
	return retained
}

// newer reports whether a supersedes b: later date, or same date with a
// higher sequence number.
func newer(a, b model.Submission) bool {
	if !a.ScoringDate.Equal(b.ScoringDate) {
		return a.ScoringDate.After(b.ScoringDate)
	}
	return a.Seq > b.Seq
}
