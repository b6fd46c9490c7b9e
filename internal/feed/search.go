package feed

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mmcahill/reeldeck/internal/domain"
	"github.com/mmcahill/reeldeck/internal/interactions"
)

const (
	// MinTermLen is the minimum free-text length for the term to be
	// included as a filter.
	MinTermLen = 2

	// MaxGenreFilters caps how many genre tags a query may carry.
	MaxGenreFilters = 3

	// DefaultSearchLimit is the page size for search and watch-later
	// requests.
	DefaultSearchLimit = 20
)

// Query is the client-side accumulation of search criteria. Filters are
// derived from it on each fetch; the zero value is an invalid query.
type Query struct {
	Term      string
	Genres    []string
	Type      domain.MediaType // empty = both movies and series
	SortField string
	SortOrder domain.SortOrder
}

// Validate rejects queries that would produce an empty filter set before
// any network call happens.
func (q Query) Validate() error {
	if len(q.filters()) == 0 {
		return domain.ErrInvalidQuery
	}
	return nil
}

// filters maps the accumulated criteria to wire filters. A sub-2-character
// term is silently omitted; genre tags beyond the cap are dropped.
func (q Query) filters() []domain.SearchFilter {
	var filters []domain.SearchFilter

	if term := strings.TrimSpace(q.Term); len([]rune(term)) >= MinTermLen {
		filters = append(filters, domain.SearchFilter{Field: "title", Value: term})
	}

	genres := q.Genres
	if len(genres) > MaxGenreFilters {
		genres = genres[:MaxGenreFilters]
	}
	for _, g := range genres {
		filters = append(filters, domain.SearchFilter{Field: "genre", Value: g})
	}

	if q.Type != "" {
		filters = append(filters, domain.SearchFilter{Field: "type", Value: string(q.Type)})
	}

	return filters
}

// Search resolves filtered search pages and hydrates the interaction cache
// from the enriched results.
type Search struct {
	client   domain.MediaClient
	cache    *interactions.Cache
	clientID string
	limit    int
	logger   *slog.Logger
}

// NewSearch creates a search resolver.
func NewSearch(client domain.MediaClient, cache *interactions.Cache, clientID string, limit int, logger *slog.Logger) *Search {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Search{
		client:   client,
		cache:    cache,
		clientID: clientID,
		limit:    limit,
		logger:   logger,
	}
}

// FetchPage returns one page of results for q. The offset cursor is the
// running sum of items fetched so far; since every non-terminal page is
// full, that is page*limit. A page shorter than the limit is terminal.
func (s *Search) FetchPage(ctx context.Context, q Query, page int) (domain.Page, error) {
	if err := q.Validate(); err != nil {
		return domain.Page{}, err
	}

	req := domain.SearchRequest{
		Filters:   q.filters(),
		SortField: q.SortField,
		SortOrder: q.SortOrder,
		Limit:     s.limit,
		Offset:    page * s.limit,
		ClientID:  s.clientID,
	}

	items, err := s.client.Search(ctx, req)
	if err != nil {
		return domain.Page{}, fmt.Errorf("search page %d: %w", page, err)
	}

	HydrateCache(s.cache, items)
	s.logger.Debug("search page fetched", "page", page, "count", len(items))

	return domain.Page{
		Items:    items,
		NextPage: nextIfFull(items, s.limit, page+1),
	}, nil
}

// HydrateCache seeds the interaction cache from server-enriched items.
// Existing local entries are never overwritten.
func HydrateCache(cache *interactions.Cache, items []domain.MediaItem) {
	if cache == nil {
		return
	}
	for _, item := range items {
		if item.UserRating != nil {
			cache.HydrateRating(item.ID, *item.UserRating)
		}
		if item.Bookmarked != nil {
			cache.HydrateBookmark(item.ID, *item.Bookmarked)
		}
	}
}

func nextIfFull(items []domain.MediaItem, limit, next int) *int {
	if len(items) < limit {
		return nil
	}
	return domain.NextPageOf(next)
}
