package interactions

import (
	"log/slog"
	"sync"
)

// ChangeKind identifies which store a change touched.
type ChangeKind int

const (
	ChangeRating ChangeKind = iota
	ChangeBookmark
	ChangeClearAll
)

// Change describes a single cache mutation, fanned out to subscribers so
// every mounted view re-renders the affected row.
type Change struct {
	Kind    ChangeKind
	MediaID string // empty for ChangeClearAll
}

// Cache is the single source of truth for what the current user did with
// each media item. It is constructed at session start, injected into every
// view and gateway, and torn down on sign-out.
//
// A rating of 0 ("not interested") and no rating at all are distinct
// states; callers must branch on the ok result, never on the value alone.
type Cache struct {
	logger *slog.Logger

	mu        sync.RWMutex
	ratings   map[string]int
	bookmarks map[string]bool

	// Version counters bump on every effective user write and reset to
	// zero on ClearAll. Dependent query keys embed them to force refetch.
	ratingsVersion   uint64
	bookmarksVersion uint64

	subs    map[int]chan<- Change
	nextSub int
}

// NewCache creates an empty interaction cache.
func NewCache(logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{
		logger:    logger,
		ratings:   make(map[string]int),
		bookmarks: make(map[string]bool),
		subs:      make(map[int]chan<- Change),
	}
}

// SetRating stores a rating score. Writing the value already stored is a
// no-op: no version bump, no change notification.
func (c *Cache) SetRating(mediaID string, score int) {
	c.mu.Lock()
	if cur, ok := c.ratings[mediaID]; ok && cur == score {
		c.mu.Unlock()
		return
	}
	c.ratings[mediaID] = score
	c.ratingsVersion++
	c.mu.Unlock()

	c.logger.Debug("rating cached", "mediaID", mediaID, "score", score)
	c.notify(Change{Kind: ChangeRating, MediaID: mediaID})
}

// ClearRating removes the rating entry entirely, which is distinct from
// setting it to 0. Clearing an absent entry is a no-op.
func (c *Cache) ClearRating(mediaID string) {
	c.mu.Lock()
	if _, ok := c.ratings[mediaID]; !ok {
		c.mu.Unlock()
		return
	}
	delete(c.ratings, mediaID)
	c.ratingsVersion++
	c.mu.Unlock()

	c.logger.Debug("rating cleared", "mediaID", mediaID)
	c.notify(Change{Kind: ChangeRating, MediaID: mediaID})
}

// Rating returns the stored score for mediaID. ok is false when no rating
// is stored; an unknown id never panics.
func (c *Cache) Rating(mediaID string) (score int, ok bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	score, ok = c.ratings[mediaID]
	return score, ok
}

// SetBookmark stores a bookmark flag with the same idempotence rule as
// SetRating.
func (c *Cache) SetBookmark(mediaID string, bookmarked bool) {
	c.mu.Lock()
	if cur, ok := c.bookmarks[mediaID]; ok && cur == bookmarked {
		c.mu.Unlock()
		return
	}
	c.bookmarks[mediaID] = bookmarked
	c.bookmarksVersion++
	c.mu.Unlock()

	c.logger.Debug("bookmark cached", "mediaID", mediaID, "bookmarked", bookmarked)
	c.notify(Change{Kind: ChangeBookmark, MediaID: mediaID})
}

// ClearBookmark removes the bookmark entry entirely.
func (c *Cache) ClearBookmark(mediaID string) {
	c.mu.Lock()
	if _, ok := c.bookmarks[mediaID]; !ok {
		c.mu.Unlock()
		return
	}
	delete(c.bookmarks, mediaID)
	c.bookmarksVersion++
	c.mu.Unlock()

	c.notify(Change{Kind: ChangeBookmark, MediaID: mediaID})
}

// Bookmark returns the stored bookmark flag for mediaID. ok is false when
// no entry is stored, which callers must not conflate with a stored false.
func (c *Cache) Bookmark(mediaID string) (bookmarked, ok bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	bookmarked, ok = c.bookmarks[mediaID]
	return bookmarked, ok
}

// HydrateRating seeds an entry from a server-supplied user_rating field.
// A local write always wins: hydration never overwrites an existing entry
// and never bumps the version counter, so hydration occurring during a
// page fetch cannot invalidate the query that produced it.
func (c *Cache) HydrateRating(mediaID string, score int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.ratings[mediaID]; ok {
		return
	}
	c.ratings[mediaID] = score
}

// HydrateBookmark seeds an entry from a server-supplied bookmarked field,
// with the same no-override rule as HydrateRating.
func (c *Cache) HydrateBookmark(mediaID string, bookmarked bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.bookmarks[mediaID]; ok {
		return
	}
	c.bookmarks[mediaID] = bookmarked
}

// RatingsVersion returns the rating store's version counter.
func (c *Cache) RatingsVersion() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ratingsVersion
}

// BookmarksVersion returns the bookmark store's version counter.
func (c *Cache) BookmarksVersion() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.bookmarksVersion
}

// ClearAll wipes every entry and resets both version counters; used on
// sign-out and account deletion.
func (c *Cache) ClearAll() {
	c.mu.Lock()
	c.ratings = make(map[string]int)
	c.bookmarks = make(map[string]bool)
	c.ratingsVersion = 0
	c.bookmarksVersion = 0
	c.mu.Unlock()

	c.logger.Info("interaction cache cleared")
	c.notify(Change{Kind: ChangeClearAll})
}

// Subscribe registers a channel to receive change notifications. Sends are
// non-blocking: a full channel drops the notification rather than stalling
// the writer. The returned function unsubscribes.
func (c *Cache) Subscribe(ch chan<- Change) (unsubscribe func()) {
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = ch
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	}
}

func (c *Cache) notify(change Change) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, ch := range c.subs {
		select {
		case ch <- change:
		default: // Non-blocking if channel full
		}
	}
}
