package domain

import "context"

// MediaClient provides access to the remote media service (see the
// endpoint table in internal/mediasvc).
type MediaClient interface {
	// HasRatingHistory reports whether the client has any rating history.
	// A 404 from the service maps to (false, nil), never an error.
	HasRatingHistory(ctx context.Context, clientID string) (bool, error)

	// CuratedMedia returns the curated/startup set shown to clients with
	// no rating history.
	CuratedMedia(ctx context.Context) ([]MediaItem, error)

	// Recommendations returns one page of personalized recommendations.
	// Returns ErrNoRecommendations when the service has no material for
	// this client (404).
	Recommendations(ctx context.Context, clientID string, cursor, limit int, refresh bool) ([]MediaItem, error)

	// MediaPage returns one page of the generic media listing.
	MediaPage(ctx context.Context, page, size int) ([]MediaItem, error)

	// Search runs a filtered search. Returned items are enriched with
	// server-side interaction state.
	Search(ctx context.Context, req SearchRequest) ([]MediaItem, error)

	// SetRating submits rating scores for the client.
	SetRating(ctx context.Context, clientID string, ratings []RatingEntry) error

	// DeleteRating removes the client's rating for one item.
	DeleteRating(ctx context.Context, clientID, mediaID string) error

	// AddWatchLater adds items to the client's watch-later list.
	AddWatchLater(ctx context.Context, clientID string, mediaIDs []string) error

	// RemoveWatchLater removes one item from the watch-later list.
	RemoveWatchLater(ctx context.Context, clientID, mediaID string) error

	// WatchLater returns one page of the watch-later list, enriched with
	// server-side interaction state.
	WatchLater(ctx context.Context, clientID string, page, size int) ([]MediaItem, error)
}

// TokenProvider supplies a fresh bearer credential for each authenticated
// request. Tokens are never cached across calls.
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
}

// Notifier surfaces fire-and-forget user notifications (toasts).
type Notifier interface {
	Success(msg string)
	Warn(msg string)
	Error(msg string)
}
