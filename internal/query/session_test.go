package query

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcahill/reeldeck/internal/domain"
)

func pageOf(next *int, ids ...string) domain.Page {
	p := domain.Page{NextPage: next}
	for _, id := range ids {
		p.Items = append(p.Items, domain.MediaItem{ID: id})
	}
	return p
}

func TestFetchNextAccumulatesPages(t *testing.T) {
	pages := map[int]domain.Page{
		0: pageOf(domain.NextPageOf(1), "a", "b"),
		1: pageOf(nil, "c"),
	}
	var fetched []int
	s := NewSession(Key{Family: "feed"}, func(_ context.Context, page int) (domain.Page, error) {
		fetched = append(fetched, page)
		return pages[page], nil
	}, nil)

	ok, err := s.FetchNext(context.Background())
	require.NoError(t, err)
	require.True(t, ok)

	snap := s.Snapshot()
	assert.Len(t, snap.Items, 2)
	assert.True(t, snap.HasMore)
	assert.Equal(t, StatusReady, snap.Status)

	ok, err = s.FetchNext(context.Background())
	require.NoError(t, err)
	require.True(t, ok)

	snap = s.Snapshot()
	assert.Len(t, snap.Items, 3)
	assert.False(t, snap.HasMore, "nil NextPage is terminal")

	// Terminal session: further calls are no-ops.
	ok, err = s.FetchNext(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, []int{0, 1}, fetched, "pages are requested strictly in order")
}

func TestFetchNextDeduplicatesConcurrentCalls(t *testing.T) {
	release := make(chan struct{})
	var calls int
	var mu sync.Mutex
	s := NewSession(Key{Family: "feed"}, func(_ context.Context, page int) (domain.Page, error) {
		mu.Lock()
		calls++
		mu.Unlock()
		<-release
		return pageOf(nil, "a"), nil
	}, nil)

	var wg sync.WaitGroup
	wg.Add(2)
	for range 2 {
		go func() {
			defer wg.Done()
			s.FetchNext(context.Background())
		}()
	}

	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, calls, "overlapping FetchNext calls collapse to one request")
}

func TestFailedFetchHaltsPaginationUntilRetry(t *testing.T) {
	fail := true
	s := NewSession(Key{Family: "feed"}, func(_ context.Context, page int) (domain.Page, error) {
		if fail {
			return domain.Page{}, domain.ErrServerOffline
		}
		return pageOf(nil, "a"), nil
	}, nil)

	_, err := s.FetchNext(context.Background())
	require.Error(t, err)

	snap := s.Snapshot()
	assert.Equal(t, StatusFailed, snap.Status)
	assert.True(t, errors.Is(snap.Err, domain.ErrServerOffline))

	// Without Retry, nothing happens.
	ok, err := s.FetchNext(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)

	fail = false
	s.Retry()
	ok, err = s.FetchNext(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Len(t, s.Snapshot().Items, 1)
}

func TestResetInvalidatesInFlightFetch(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	oldKey := Key{Family: "search", Term: "old"}
	s := NewSession(oldKey, func(_ context.Context, page int) (domain.Page, error) {
		close(started)
		<-release
		return pageOf(domain.NextPageOf(1), "stale-1", "stale-2"), nil
	}, nil)

	done := make(chan struct{})
	go func() {
		s.FetchNext(context.Background())
		close(done)
	}()

	<-started
	newKey := Key{Family: "search", Term: "new"}
	s.Reset(newKey, func(_ context.Context, page int) (domain.Page, error) {
		return pageOf(nil, "fresh"), nil
	})
	close(release)
	<-done

	snap := s.Snapshot()
	assert.Empty(t, snap.Items, "stale pages must never surface under the new key")
	assert.True(t, s.Key().Equal(newKey))

	ok, err := s.FetchNext(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	snap = s.Snapshot()
	require.Len(t, snap.Items, 1)
	assert.Equal(t, "fresh", snap.Items[0].ID)
}

func TestResetCancelsFetchContext(t *testing.T) {
	ctxCh := make(chan context.Context, 1)
	release := make(chan struct{})
	s := NewSession(Key{Family: "feed"}, func(ctx context.Context, page int) (domain.Page, error) {
		ctxCh <- ctx
		<-release
		return domain.Page{}, ctx.Err()
	}, nil)

	go s.FetchNext(context.Background())
	fetchCtx := <-ctxCh

	s.Reset(Key{Family: "feed", Version: 1}, func(_ context.Context, _ int) (domain.Page, error) {
		return domain.Page{}, nil
	})

	select {
	case <-fetchCtx.Done():
	case <-time.After(time.Second):
		t.Fatal("in-flight fetch context was not cancelled on reset")
	}
	close(release)
}

func TestKeyComponentsChangeIdentity(t *testing.T) {
	base := Key{Family: "search", Term: "dog", Genres: []string{"drama"}, SortField: "title", SortOrder: "asc"}

	assert.True(t, base.Equal(base))
	assert.False(t, base.Equal(Key{Family: "search", Term: "cat", Genres: []string{"drama"}, SortField: "title", SortOrder: "asc"}))
	assert.False(t, base.Equal(Key{Family: "search", Term: "dog", Genres: []string{"comedy"}, SortField: "title", SortOrder: "asc"}))
	assert.False(t, base.Equal(Key{Family: "search", Term: "dog", Genres: []string{"drama"}, SortField: "year", SortOrder: "asc"}))
	assert.False(t, base.Equal(Key{Family: "search", Term: "dog", Genres: []string{"drama"}, SortField: "title", SortOrder: "desc"}))

	bumped := base
	bumped.Version = 1
	assert.False(t, base.Equal(bumped), "version bump must invalidate the session key")
}
