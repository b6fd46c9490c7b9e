package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/mmcahill/reeldeck/internal/domain"
	"github.com/mmcahill/reeldeck/internal/interactions"
)

// RatingGateway translates a rating action into an immediate optimistic
// cache write plus an asynchronous remote mutation.
//
// Remote mutations are fire-and-forget: they are never cancelled by view
// lifecycle or by a later mutation for the same item, and a failure leaves
// the optimistic cache value in place (the user re-toggles to retry). The
// cache always reflects the most recent local write regardless of the
// order remote calls resolve in.
type RatingGateway struct {
	cache    *interactions.Cache
	client   domain.MediaClient
	notifier domain.Notifier
	clientID string
	logger   *slog.Logger

	wg sync.WaitGroup
}

// NewRatingGateway creates a rating gateway.
func NewRatingGateway(cache *interactions.Cache, client domain.MediaClient, notifier domain.Notifier, clientID string, logger *slog.Logger) *RatingGateway {
	if logger == nil {
		logger = slog.Default()
	}
	return &RatingGateway{
		cache:    cache,
		client:   client,
		notifier: notifier,
		clientID: clientID,
		logger:   logger,
	}
}

// Rate stores score locally, then submits it to the service.
func (g *RatingGateway) Rate(mediaID string, score int) error {
	if !domain.ValidRating(score) {
		return fmt.Errorf("rating %d out of range", score)
	}

	g.cache.SetRating(mediaID, score)

	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		g.submitRating(mediaID, score)
	}()
	return nil
}

// Unrate clears the local entry, then deletes the rating remotely.
func (g *RatingGateway) Unrate(mediaID string) {
	g.cache.ClearRating(mediaID)

	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		g.deleteRating(mediaID)
	}()
}

// Flush blocks until every in-flight mutation has resolved; used on
// shutdown and in tests.
func (g *RatingGateway) Flush() {
	g.wg.Wait()
}

func (g *RatingGateway) submitRating(mediaID string, score int) {
	// Mutations are not cancellable once fired.
	err := g.client.SetRating(context.Background(), g.clientID, []domain.RatingEntry{{MediaID: mediaID, Score: score}})
	if err != nil {
		g.logger.Error("rating mutation failed", "mediaID", mediaID, "score", score, "error", err)
		g.notifier.Error("Couldn't save rating")
		return
	}
	if score == domain.RatingNotInterested {
		g.notifier.Success("Marked as not interested")
	} else {
		g.notifier.Success("Rating saved")
	}
}

func (g *RatingGateway) deleteRating(mediaID string) {
	err := g.client.DeleteRating(context.Background(), g.clientID, mediaID)
	if err != nil {
		g.logger.Error("rating delete failed", "mediaID", mediaID, "error", err)
		g.notifier.Error("Couldn't remove rating")
		return
	}
	g.notifier.Success("Rating removed")
}
