package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrJobNotFound         = errors.New("job not found")
	ErrRankingNotFound     = errors.New("ranking not found")
	ErrDuplicateSubmission = errors.New("duplicate submission")
)
