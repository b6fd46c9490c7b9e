package feed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/mmcahill/reeldeck/internal/domain"
)

// DefaultPageSize is the number of items requested per feed page.
const DefaultPageSize = 20

// State names the tier the feed session is routed to.
type State int

const (
	// StateNoHistory routes page 0 to curated content and later pages to
	// the generic media listing.
	StateNoHistory State = iota

	// StateRecommending routes every page to the recommendation endpoint.
	// Once entered it is never left for the rest of the session, even if
	// recommendations later return empty.
	StateRecommending
)

func (s State) String() string {
	switch s {
	case StateNoHistory:
		return "no-history"
	case StateRecommending:
		return "recommending"
	default:
		return "unknown"
	}
}

// Resolver decides, per page request, which remote endpoint backs the
// recommendation feed and normalizes the result into a uniform page.
// It is an explicit state machine over {NoHistory, Recommending}; the
// two not-found signals from the service drive the transitions.
type Resolver struct {
	client   domain.MediaClient
	clientID string
	pageSize int
	logger   *slog.Logger

	mu    sync.Mutex
	state State
}

// NewResolver creates a feed resolver for one feed session.
func NewResolver(client domain.MediaClient, clientID string, pageSize int, logger *slog.Logger) *Resolver {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		client:   client,
		clientID: clientID,
		pageSize: pageSize,
		logger:   logger,
	}
}

// State returns the current tier.
func (r *Resolver) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Reset returns the resolver to its initial state for a fresh session.
func (r *Resolver) Reset() {
	r.mu.Lock()
	r.state = StateNoHistory
	r.mu.Unlock()
}

// FetchPage returns the normalized page for index page. refresh is
// forwarded to the recommendation endpoint on page 0 only.
//
// Errors other than the two not-found signals propagate unchanged; an
// empty page at any tier is terminal.
func (r *Resolver) FetchPage(ctx context.Context, page int, refresh bool) (domain.Page, error) {
	if page == 0 {
		return r.fetchFirstPage(ctx, refresh)
	}
	return r.fetchLaterPage(ctx, page)
}

func (r *Resolver) fetchFirstPage(ctx context.Context, refresh bool) (domain.Page, error) {
	has, err := r.client.HasRatingHistory(ctx, r.clientID)
	if err != nil {
		return domain.Page{}, fmt.Errorf("rating history check: %w", err)
	}

	if !has {
		return r.curatedPage(ctx)
	}

	items, err := r.client.Recommendations(ctx, r.clientID, 0, r.pageSize, refresh)
	if errors.Is(err, domain.ErrNoRecommendations) {
		// The service has no material for this client yet; fall back to
		// curated content exactly as if there were no history.
		r.logger.Debug("no recommendations for client, falling back to curated", "clientID", r.clientID)
		return r.curatedPage(ctx)
	}
	if err != nil {
		return domain.Page{}, fmt.Errorf("recommendations page 0: %w", err)
	}

	r.setState(StateRecommending)
	return domain.Page{
		Items:      items,
		NextPage:   nextIfNonEmpty(items, 1),
		HasRatings: true,
	}, nil
}

func (r *Resolver) fetchLaterPage(ctx context.Context, page int) (domain.Page, error) {
	if r.State() == StateRecommending {
		items, err := r.client.Recommendations(ctx, r.clientID, page, r.pageSize, false)
		if err != nil {
			return domain.Page{}, fmt.Errorf("recommendations page %d: %w", page, err)
		}
		return domain.Page{
			Items:      items,
			NextPage:   nextIfNonEmpty(items, page+1),
			HasRatings: true,
		}, nil
	}

	if page == 1 {
		// The user may have rated something from the curated set during
		// page 0; re-check before deciding the tier for this page.
		has, err := r.client.HasRatingHistory(ctx, r.clientID)
		if err != nil {
			return domain.Page{}, fmt.Errorf("rating history recheck: %w", err)
		}
		if has {
			r.logger.Info("rating history appeared mid-session, switching tier", "clientID", r.clientID)
			r.setState(StateRecommending)
			// The refresh flag doubles as the from-curated signal so the
			// service regenerates from the just-submitted ratings.
			items, err := r.client.Recommendations(ctx, r.clientID, page, r.pageSize, true)
			if err != nil {
				return domain.Page{}, fmt.Errorf("recommendations page %d: %w", page, err)
			}
			return domain.Page{
				Items:      items,
				NextPage:   nextIfNonEmpty(items, page+1),
				HasRatings: true,
			}, nil
		}
	}

	items, err := r.client.MediaPage(ctx, page, r.pageSize)
	if err != nil {
		return domain.Page{}, fmt.Errorf("media page %d: %w", page, err)
	}
	return domain.Page{
		Items:    items,
		NextPage: nextIfNonEmpty(items, page+1),
	}, nil
}

func (r *Resolver) curatedPage(ctx context.Context) (domain.Page, error) {
	items, err := r.client.CuratedMedia(ctx)
	if err != nil {
		return domain.Page{}, fmt.Errorf("curated media: %w", err)
	}
	r.setState(StateNoHistory)
	return domain.Page{
		Items:    items,
		NextPage: domain.NextPageOf(1),
	}, nil
}

func (r *Resolver) setState(s State) {
	r.mu.Lock()
	r.state = s
	r.mu.Unlock()
}

func nextIfNonEmpty(items []domain.MediaItem, next int) *int {
	if len(items) == 0 {
		return nil
	}
	return domain.NextPageOf(next)
}
