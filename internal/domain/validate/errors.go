package validate

import "errors"

// Sentinel kinds for validation errors.
var (
	// ErrInvalidSnapshot means pre-flight checks failed and the engine
	// refused to score the snapshot.
	ErrInvalidSnapshot = errors.New("invalid scoring snapshot")
)
