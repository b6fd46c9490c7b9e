package gateway

import (
	"context"
	"log/slog"
	"sync"

	"github.com/mmcahill/reeldeck/internal/domain"
	"github.com/mmcahill/reeldeck/internal/interactions"
)

// BookmarkGateway mirrors RatingGateway for the watch-later list: an
// immediate optimistic cache write plus a fire-and-forget remote call,
// with the same no-rollback failure policy.
type BookmarkGateway struct {
	cache    *interactions.Cache
	client   domain.MediaClient
	notifier domain.Notifier
	clientID string
	logger   *slog.Logger

	wg sync.WaitGroup
}

// NewBookmarkGateway creates a bookmark gateway.
func NewBookmarkGateway(cache *interactions.Cache, client domain.MediaClient, notifier domain.Notifier, clientID string, logger *slog.Logger) *BookmarkGateway {
	if logger == nil {
		logger = slog.Default()
	}
	return &BookmarkGateway{
		cache:    cache,
		client:   client,
		notifier: notifier,
		clientID: clientID,
		logger:   logger,
	}
}

// Add bookmarks mediaID locally, then adds it to the remote watch-later
// list.
func (g *BookmarkGateway) Add(mediaID string) {
	g.cache.SetBookmark(mediaID, true)

	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		err := g.client.AddWatchLater(context.Background(), g.clientID, []string{mediaID})
		if err != nil {
			g.logger.Error("watch-later add failed", "mediaID", mediaID, "error", err)
			g.notifier.Error("Couldn't add to watch later")
			return
		}
		g.notifier.Success("Added to watch later")
	}()
}

// Remove writes an explicit false locally (so it overrides any
// server-hydrated true), then removes the item remotely.
func (g *BookmarkGateway) Remove(mediaID string) {
	g.cache.SetBookmark(mediaID, false)

	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		err := g.client.RemoveWatchLater(context.Background(), g.clientID, mediaID)
		if err != nil {
			g.logger.Error("watch-later remove failed", "mediaID", mediaID, "error", err)
			g.notifier.Error("Couldn't remove from watch later")
			return
		}
		g.notifier.Success("Removed from watch later")
	}()
}

// Flush blocks until every in-flight mutation has resolved.
func (g *BookmarkGateway) Flush() {
	g.wg.Wait()
}
