package query

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/mmcahill/reeldeck/internal/domain"
)

// Status is the list state a view renders from.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusReady
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Key is the composite identity of a paginated session. Changing any
// component invalidates all fetched pages and restarts pagination from
// page 0. Version lets interaction-cache writes force dependent sessions
// to refetch.
type Key struct {
	Family    string
	Term      string
	Genres    []string
	Type      string
	SortField string
	SortOrder string
	Version   uint64
}

// String returns the canonical form used for equality and logging.
func (k Key) String() string {
	return fmt.Sprintf("%s|%s|%s|%s|%s|%s|%d",
		k.Family, k.Term, strings.Join(k.Genres, ","), k.Type, k.SortField, k.SortOrder, k.Version)
}

// Equal reports whether two keys identify the same session.
func (k Key) Equal(other Key) bool {
	return k.String() == other.String()
}

// FetchFunc fetches one page for a session.
type FetchFunc func(ctx context.Context, page int) (domain.Page, error)

// Snapshot is the read model a view renders: accumulated items plus the
// three observable states (loading, failed, ready-with-possibly-empty).
type Snapshot struct {
	Items   []domain.MediaItem
	Status  Status
	Err     error
	HasMore bool
}

// Session owns one paginated query: request deduplication, in-order page
// commits, cancellation when superseded, and key-change invalidation.
// Page p+1 is never requested before page p's result is committed.
type Session struct {
	logger *slog.Logger

	mu       sync.Mutex
	key      Key
	fetch    FetchFunc
	items    []domain.MediaItem
	next     *int // next page index to request; nil after terminal page
	started  bool
	status   Status
	err      error
	inFlight bool
	cancel   context.CancelFunc
	epoch    uint64
}

// NewSession creates a session for key backed by fetch.
func NewSession(key Key, fetch FetchFunc, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{key: key, fetch: fetch, logger: logger}
}

// Key returns the session's current key.
func (s *Session) Key() Key {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.key
}

// Snapshot returns the current read model.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]domain.MediaItem, len(s.items))
	copy(items, s.items)
	return Snapshot{
		Items:   items,
		Status:  s.status,
		Err:     s.err,
		HasMore: !s.started || s.next != nil,
	}
}

// FetchNext fetches and commits the next page. It is a no-op when a fetch
// is already in flight (deduplication), when the session is terminal, or
// when a previous fetch failed and has not been retried. Returns whether a
// page was committed.
//
// The call blocks until the fetch resolves; run it from a goroutine (a
// tea.Cmd) in UI contexts.
func (s *Session) FetchNext(ctx context.Context) (bool, error) {
	s.mu.Lock()
	if s.inFlight || s.status == StatusFailed || (s.started && s.next == nil) {
		s.mu.Unlock()
		return false, nil
	}

	page := 0
	if s.started && s.next != nil {
		page = *s.next
	}

	fetchCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.inFlight = true
	s.status = StatusLoading
	epoch := s.epoch
	fetch := s.fetch
	key := s.key
	s.mu.Unlock()

	result, err := fetch(fetchCtx, page)
	cancel()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.epoch != epoch {
		// Superseded by Reset; the result belongs to a dead key and must
		// never surface under the new one.
		s.logger.Debug("discarding superseded page", "key", key.String(), "page", page)
		return false, nil
	}

	s.inFlight = false
	if err != nil {
		s.status = StatusFailed
		s.err = err
		s.logger.Error("page fetch failed", "key", key.String(), "page", page, "error", err)
		return false, err
	}

	s.items = append(s.items, result.Items...)
	s.next = result.NextPage
	s.started = true
	s.status = StatusReady
	s.err = nil
	s.logger.Debug("page committed", "key", key.String(), "page", page, "count", len(result.Items))
	return true, nil
}

// Retry clears a failed state so FetchNext will reattempt the same page.
// Pagination stays halted until this manual step, per the no-auto-retry
// policy.
func (s *Session) Retry() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status != StatusFailed {
		return
	}
	s.status = StatusIdle
	s.err = nil
}

// Reset aborts any in-flight fetch, drops every committed page, and
// rebinds the session to a new key and fetch function.
func (s *Session) Reset(key Key, fetch FetchFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.epoch++
	s.key = key
	s.fetch = fetch
	s.items = nil
	s.next = nil
	s.started = false
	s.status = StatusIdle
	s.err = nil
	s.inFlight = false
}

// Close aborts any in-flight fetch; called when the owning view unmounts.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.epoch++
	s.inFlight = false
}
