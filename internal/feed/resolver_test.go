package feed

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcahill/reeldeck/internal/domain"
)

// fakeClient is a scripted domain.MediaClient for resolver tests.
type fakeClient struct {
	hasHistory    bool
	historyErr    error
	historyCalls  int
	curated       []domain.MediaItem
	curatedCalls  int
	recs          map[int][]domain.MediaItem // by cursor
	recsErr       error
	recsCalls     []recCall
	generic       map[int][]domain.MediaItem // by page
	genericCalls  []int
	searchResults []domain.MediaItem
	searchErr     error
	searchReqs    []domain.SearchRequest
	watchLater    map[int][]domain.MediaItem
}

type recCall struct {
	cursor  int
	refresh bool
}

func (f *fakeClient) HasRatingHistory(_ context.Context, _ string) (bool, error) {
	f.historyCalls++
	return f.hasHistory, f.historyErr
}

func (f *fakeClient) CuratedMedia(_ context.Context) ([]domain.MediaItem, error) {
	f.curatedCalls++
	return f.curated, nil
}

func (f *fakeClient) Recommendations(_ context.Context, _ string, cursor, _ int, refresh bool) ([]domain.MediaItem, error) {
	f.recsCalls = append(f.recsCalls, recCall{cursor: cursor, refresh: refresh})
	if f.recsErr != nil {
		return nil, f.recsErr
	}
	return f.recs[cursor], nil
}

func (f *fakeClient) MediaPage(_ context.Context, page, _ int) ([]domain.MediaItem, error) {
	f.genericCalls = append(f.genericCalls, page)
	return f.generic[page], nil
}

func (f *fakeClient) Search(_ context.Context, req domain.SearchRequest) ([]domain.MediaItem, error) {
	f.searchReqs = append(f.searchReqs, req)
	return f.searchResults, f.searchErr
}

func (f *fakeClient) SetRating(_ context.Context, _ string, _ []domain.RatingEntry) error {
	return nil
}

func (f *fakeClient) DeleteRating(_ context.Context, _, _ string) error { return nil }

func (f *fakeClient) AddWatchLater(_ context.Context, _ string, _ []string) error { return nil }

func (f *fakeClient) RemoveWatchLater(_ context.Context, _, _ string) error { return nil }

func (f *fakeClient) WatchLater(_ context.Context, _ string, page, _ int) ([]domain.MediaItem, error) {
	return f.watchLater[page], nil
}

func items(ids ...string) []domain.MediaItem {
	out := make([]domain.MediaItem, len(ids))
	for i, id := range ids {
		out[i] = domain.MediaItem{ID: id, Title: "Title " + id, Type: domain.MediaTypeMovie}
	}
	return out
}

func TestPageZeroNoHistoryServesCurated(t *testing.T) {
	client := &fakeClient{hasHistory: false, curated: items("c1", "c2")}
	r := NewResolver(client, "client-1", 20, nil)

	page, err := r.FetchPage(context.Background(), 0, false)
	require.NoError(t, err)

	assert.Len(t, page.Items, 2)
	assert.False(t, page.HasRatings)
	require.NotNil(t, page.NextPage)
	assert.Equal(t, 1, *page.NextPage)
	assert.Equal(t, StateNoHistory, r.State())
	assert.Empty(t, client.recsCalls, "no recommendation call for a history-less client")
}

func TestPageZeroWithHistoryServesRecommendations(t *testing.T) {
	client := &fakeClient{
		hasHistory: true,
		recs:       map[int][]domain.MediaItem{0: items("r1", "r2", "r3")},
	}
	r := NewResolver(client, "client-1", 20, nil)

	page, err := r.FetchPage(context.Background(), 0, true)
	require.NoError(t, err)

	assert.True(t, page.HasRatings)
	require.NotNil(t, page.NextPage)
	assert.Equal(t, 1, *page.NextPage)
	assert.Equal(t, StateRecommending, r.State())
	require.Len(t, client.recsCalls, 1)
	assert.True(t, client.recsCalls[0].refresh, "refresh flag must be forwarded")
}

func TestPageZeroRecommendationNotFoundFallsBackToCurated(t *testing.T) {
	client := &fakeClient{
		hasHistory: true,
		recsErr:    domain.ErrNoRecommendations,
		curated:    items("c1"),
	}
	r := NewResolver(client, "client-1", 20, nil)

	page, err := r.FetchPage(context.Background(), 0, false)
	require.NoError(t, err)

	assert.False(t, page.HasRatings)
	assert.Equal(t, 1, client.curatedCalls)
	assert.Equal(t, StateNoHistory, r.State())
}

func TestRecommendingTierNeverFallsBack(t *testing.T) {
	client := &fakeClient{
		hasHistory: true,
		recs: map[int][]domain.MediaItem{
			0: items("r1"),
			1: items("r2"),
			2: items("r3"),
		},
	}
	r := NewResolver(client, "client-1", 20, nil)

	_, err := r.FetchPage(context.Background(), 0, false)
	require.NoError(t, err)

	for p := 1; p <= 2; p++ {
		page, err := r.FetchPage(context.Background(), p, false)
		require.NoError(t, err)
		assert.True(t, page.HasRatings)
	}
	assert.Empty(t, client.genericCalls, "must never fall back to generic listing once recommending")
}

func TestEmptyRecommendationPageIsTerminalButTierStaysSticky(t *testing.T) {
	client := &fakeClient{
		hasHistory: true,
		recs:       map[int][]domain.MediaItem{0: items("r1"), 1: nil},
	}
	r := NewResolver(client, "client-1", 20, nil)

	_, err := r.FetchPage(context.Background(), 0, false)
	require.NoError(t, err)

	page, err := r.FetchPage(context.Background(), 1, false)
	require.NoError(t, err)
	assert.Nil(t, page.NextPage, "empty page must be terminal")
	assert.Equal(t, StateRecommending, r.State(), "tier never reverts mid-session")
}

func TestPageOneRechecksHistoryAndSwitchesTier(t *testing.T) {
	// Client with no history at page 0 rates a curated item, so the
	// recheck at page 1 finds history and switches to recommendations.
	client := &fakeClient{
		hasHistory: false,
		curated:    items("c1", "c2"),
		recs:       map[int][]domain.MediaItem{1: items("r1")},
	}
	r := NewResolver(client, "client-1", 20, nil)

	page, err := r.FetchPage(context.Background(), 0, false)
	require.NoError(t, err)
	assert.False(t, page.HasRatings)

	client.hasHistory = true // rating submitted between pages

	page, err = r.FetchPage(context.Background(), 1, false)
	require.NoError(t, err)

	assert.Equal(t, 2, client.historyCalls, "page 1 must re-check history")
	assert.True(t, page.HasRatings)
	assert.Equal(t, StateRecommending, r.State())
	require.Len(t, client.recsCalls, 1)
	assert.Equal(t, 1, client.recsCalls[0].cursor)
	assert.True(t, client.recsCalls[0].refresh, "tier switch carries the from-curated signal")
	assert.Empty(t, client.genericCalls)
}

func TestPageOneStillNoHistoryFallsThroughToGeneric(t *testing.T) {
	client := &fakeClient{
		hasHistory: false,
		curated:    items("c1"),
		generic:    map[int][]domain.MediaItem{1: items("g1"), 2: items("g2")},
	}
	r := NewResolver(client, "client-1", 20, nil)

	_, err := r.FetchPage(context.Background(), 0, false)
	require.NoError(t, err)

	page, err := r.FetchPage(context.Background(), 1, false)
	require.NoError(t, err)
	assert.False(t, page.HasRatings)
	assert.Equal(t, []int{1}, client.genericCalls)

	// Pages beyond 1 go straight to the generic listing, no recheck.
	calls := client.historyCalls
	page, err = r.FetchPage(context.Background(), 2, false)
	require.NoError(t, err)
	assert.Equal(t, calls, client.historyCalls, "no history recheck past page 1")
	require.NotNil(t, page.NextPage)
	assert.Equal(t, 3, *page.NextPage)
}

func TestTransportErrorPropagates(t *testing.T) {
	client := &fakeClient{historyErr: domain.ErrServerOffline}
	r := NewResolver(client, "client-1", 20, nil)

	_, err := r.FetchPage(context.Background(), 0, false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrServerOffline))
}

func TestRecommendationErrorIsNotTreatedAsTerminal(t *testing.T) {
	client := &fakeClient{hasHistory: true, recsErr: domain.ErrServerOffline}
	r := NewResolver(client, "client-1", 20, nil)

	_, err := r.FetchPage(context.Background(), 0, false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrServerOffline))
	assert.Zero(t, client.curatedCalls, "non-404 errors must not silently fall back")
}
