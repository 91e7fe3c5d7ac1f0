package types

import "errors"

// Domain errors for input validation
var (
	// ErrInvalidPath is returned when a search root path is empty or cannot
	// be resolved to an absolute path.
	ErrInvalidPath = errors.New("invalid root path")

	// ErrEmptyQuery is returned when a search is attempted with a blank term.
	ErrEmptyQuery = errors.New("search query cannot be empty")

	// ErrInvalidThreshold is returned when a similarity threshold is outside [0,100].
	ErrInvalidThreshold = errors.New("threshold must be between 0 and 100")
)
