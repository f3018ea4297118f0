package repository

import "errors"

// Sentinel kinds for provider errors.
var (
	ErrCommunityNotFound = errors.New("community not found")
	ErrProviderClosed    = errors.New("provider closed")
)
