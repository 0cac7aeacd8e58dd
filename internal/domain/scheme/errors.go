package scheme

import "errors"

// Sentinel kinds for scheme errors.
var (
	ErrInvalidScheme     = errors.New("invalid scheme")
	ErrCriterionNotFound = errors.New("criterion not found")
	ErrRankNotFound      = errors.New("rank not found")
	ErrNotRemovable      = errors.New("criterion not removable")
)
