package scoring

import "errors"

// Sentinel kinds for scoring errors. Callers match with errors.Is.
var (
	// ErrInvalidFactorScore indicates a factor score is missing,
	// non-integer, or outside [1, 5].
	ErrInvalidFactorScore = errors.New("invalid factor score")

	// ErrInvalidWeightSet indicates the weights do not cover the
	// configured criteria or their sum is outside tolerance.
	ErrInvalidWeightSet = errors.New("invalid weight set")

	// ErrScoreOutOfDomain indicates a final score outside [1.0, 5.0].
	ErrScoreOutOfDomain = errors.New("score out of domain")

	// ErrRankNotFound indicates no configured rank threshold matches a
	// valid score. This signals a configuration defect, never a
	// runtime fallback case.
	ErrRankNotFound = errors.New("rank not found")
)
