package index

import "errors"

var (
	// ErrInvalidThreshold is returned when a similarity threshold is outside [-1, 1].
	ErrInvalidThreshold = errors.New("similarity threshold must be within [-1, 1]")
)
