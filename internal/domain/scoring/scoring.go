// Package scoring implements the pure scoring computations: factor and
// weight validation, the weighted composite, and rank assignment.
//
// All functions are deterministic, synchronous and free of I/O. The
// canonical weight convention is fractional: a valid WeightSet sums to
// 1.0. Percentage inputs are converted exactly once at the boundary via
// WeightsFromPercent.
package scoring

import (
	"fmt"
	"math"
	"sort"

	"github.com/okian/jobrank/internal/domain/model"
)

// Score domain constants.
const (
	ScoreMin = 1
	ScoreMax = 5

	// WeightTolerance is the allowed deviation of a weight sum from 1.0.
	WeightTolerance = 1e-4

	// DomainMin and DomainMax bound the composite/final score domain.
	DomainMin = 1.0
	DomainMax = 5.0
)

// Round2 rounds to 2 decimal places. The fixed rounding removes
// floating-point noise before a value is compared against rank
// thresholds, preventing spurious boundary flips.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// WeightsFromPercent converts a percentage-convention weight map
// (sum 100) to the canonical fractional convention (sum 1.0).
func WeightsFromPercent(percent map[string]float64) model.WeightSet {
	out := make(model.WeightSet, len(percent))
	for id, w := range percent {
		out[id] = w / 100
	}
	return out
}

// EqualWeights returns the default weight set: an equal 1/N split
// across the given criteria.
func EqualWeights(criteria []model.Criterion) model.WeightSet {
	out := make(model.WeightSet, len(criteria))
	if len(criteria) == 0 {
		return out
	}
	w := 1.0 / float64(len(criteria))
	for _, c := range criteria {
		out[c.ID] = w
	}
	return out
}

// ValidateFactorScores checks that every configured criterion has an
// integer score in [1, 5]. A failure is a rejection; scores are never
// clamped.
func ValidateFactorScores(scores model.FactorScoreSet, criteria []model.Criterion) error {
	for _, c := range criteria {
		v, ok := scores[c.ID]
		if !ok {
			return fmt.Errorf("%w: criterion %q has no score", ErrInvalidFactorScore, c.ID)
		}
		if v < ScoreMin || v > ScoreMax {
			return fmt.Errorf("%w: criterion %q score %d outside [%d, %d]",
				ErrInvalidFactorScore, c.ID, v, ScoreMin, ScoreMax)
		}
	}
	return nil
}

// ValidateWeights checks that the weights cover exactly the configured
// criteria, are non-negative, and sum to 1.0 within WeightTolerance.
func ValidateWeights(weights model.WeightSet, criteria []model.Criterion) error {
	if len(weights) != len(criteria) {
		return fmt.Errorf("%w: got %d weights for %d criteria",
			ErrInvalidWeightSet, len(weights), len(criteria))
	}
	var sum float64
	for _, c := range criteria {
		w, ok := weights[c.ID]
		if !ok {
			return fmt.Errorf("%w: criterion %q has no weight", ErrInvalidWeightSet, c.ID)
		}
		if w < 0 {
			return fmt.Errorf("%w: criterion %q weight %v is negative", ErrInvalidWeightSet, c.ID, w)
		}
		sum += w
	}
	if math.Abs(sum-1.0) >= WeightTolerance {
		return fmt.Errorf("%w: weights sum to %v, want 1.0 within %v",
			ErrInvalidWeightSet, sum, WeightTolerance)
	}
	return nil
}

// Composite computes one rater's weighted composite score. Both inputs
// are validated first; with valid inputs the result lies in [1.0, 5.0]
// by construction and is rounded to 2 decimals.
func Composite(scores model.FactorScoreSet, weights model.WeightSet, criteria []model.Criterion) (float64, error) {
	if err := ValidateFactorScores(scores, criteria); err != nil {
		return 0, err
	}
	if err := ValidateWeights(weights, criteria); err != nil {
		return 0, err
	}
	var sum float64
	for _, c := range criteria {
		sum += float64(scores[c.ID]) * weights[c.ID]
	}
	return Round2(sum), nil
}

// Contribution is one criterion's share of a composite score.
type Contribution struct {
	CriterionID   string  `json:"criterion_id"`
	CriterionName string  `json:"criterion_name"`
	Score         int     `json:"score"`
	Weight        float64 `json:"weight"`
	Contribution  float64 `json:"contribution"` // score * weight
}

// Breakdown reports each criterion's contribution to a composite,
// ordered by the criteria's display order.
func Breakdown(scores model.FactorScoreSet, weights model.WeightSet, criteria []model.Criterion) ([]Contribution, error) {
	if err := ValidateFactorScores(scores, criteria); err != nil {
		return nil, err
	}
	if err := ValidateWeights(weights, criteria); err != nil {
		return nil, err
	}
	out := make([]Contribution, 0, len(criteria))
	for _, c := range criteria {
		out = append(out, Contribution{
			CriterionID:   c.ID,
			CriterionName: c.Name,
			Score:         scores[c.ID],
			Weight:        weights[c.ID],
			Contribution:  Round2(float64(scores[c.ID]) * weights[c.ID]),
		})
	}
	return out, nil
}

// AssignRank maps a final score to a configured rank tier. Ranks are
// evaluated by descending MinScore; the first whose MinScore does not
// exceed the score wins. A score no rank covers is a configuration
// defect and yields ErrRankNotFound rather than a default tier.
func AssignRank(finalScore float64, ranks []model.Rank) (model.Rank, error) {
	if finalScore < DomainMin || finalScore > DomainMax {
		return model.Rank{}, fmt.Errorf("%w: final score %v outside [%v, %v]",
			ErrScoreOutOfDomain, finalScore, DomainMin, DomainMax)
	}
	ordered := make([]model.Rank, len(ranks))
	copy(ordered, ranks)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].MinScore > ordered[j].MinScore
	})
	for _, r := range ordered {
		if finalScore >= r.MinScore {
			return r, nil
		}
	}
	return model.Rank{}, fmt.Errorf("%w: no rank threshold matches score %v", ErrRankNotFound, finalScore)
}
