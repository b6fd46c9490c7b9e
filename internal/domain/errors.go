package domain

import "errors"

// Sentinel errors for domain operations
var (
	// ErrNotFound indicates the requested resource does not exist
	ErrNotFound = errors.New("not found")

	// ErrNoRecommendations indicates the recommendation service has no
	// material for this client (a tier-selection signal, not a failure)
	ErrNoRecommendations = errors.New("no recommendations available")

	// ErrServerOffline indicates the media service is unreachable
	ErrServerOffline = errors.New("media service is unreachable")

	// ErrAuthFailed indicates the bearer credential was rejected
	ErrAuthFailed = errors.New("authentication failed")

	// ErrInvalidQuery indicates a search query was rejected before any
	// network call (term too short with no filters)
	ErrInvalidQuery = errors.New("search term too short")
)
