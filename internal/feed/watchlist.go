package feed

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mmcahill/reeldeck/internal/domain"
	"github.com/mmcahill/reeldeck/internal/interactions"
)

// Watchlist resolves pages of the user's watch-later list. Responses are
// enriched with server-side interaction state and hydrate the cache the
// same way search results do.
type Watchlist struct {
	client   domain.MediaClient
	cache    *interactions.Cache
	clientID string
	limit    int
	logger   *slog.Logger
}

// NewWatchlist creates a watch-later resolver.
func NewWatchlist(client domain.MediaClient, cache *interactions.Cache, clientID string, limit int, logger *slog.Logger) *Watchlist {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Watchlist{
		client:   client,
		cache:    cache,
		clientID: clientID,
		limit:    limit,
		logger:   logger,
	}
}

// FetchPage returns one page of the watch-later list. A page shorter than
// the limit is terminal.
func (w *Watchlist) FetchPage(ctx context.Context, page int) (domain.Page, error) {
	items, err := w.client.WatchLater(ctx, w.clientID, page, w.limit)
	if err != nil {
		return domain.Page{}, fmt.Errorf("watch-later page %d: %w", page, err)
	}

	HydrateCache(w.cache, items)
	w.logger.Debug("watch-later page fetched", "page", page, "count", len(items))

	return domain.Page{
		Items:    items,
		NextPage: nextIfFull(items, w.limit, page+1),
	}, nil
}
