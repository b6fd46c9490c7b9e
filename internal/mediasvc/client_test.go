package mediasvc

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcahill/reeldeck/internal/domain"
)

// staticTokens is a TokenProvider returning a fixed credential and
// counting how often it is asked.
type staticTokens struct {
	token string
	calls int
}

func (s *staticTokens) Token(_ context.Context) (string, error) {
	s.calls++
	return s.token, nil
}

func TestHasRatingHistoryMapsNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, &staticTokens{token: "tok"}, nil)
	has, err := c.HasRatingHistory(context.Background(), "client-1")
	require.NoError(t, err, "404 is a signal, not an error")
	assert.False(t, has)
}

func TestHasRatingHistoryFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/users/client-1/rating-history", r.URL.Path)
		w.Write([]byte(`{"rated": 12}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, &staticTokens{token: "tok"}, nil)
	has, err := c.HasRatingHistory(context.Background(), "client-1")
	require.NoError(t, err)
	assert.True(t, has)
}

func TestRecommendationsNotFoundMapsToSentinel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, &staticTokens{token: "tok"}, nil)
	_, err := c.Recommendations(context.Background(), "client-1", 0, 20, false)
	assert.True(t, errors.Is(err, domain.ErrNoRecommendations))
}

func TestRecommendationsForwardsRequestFields(t *testing.T) {
	var got recommendationsRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"media": [{"id": "m1", "title": "One", "media_type": "movie"}]}`))
	}))
	defer srv.Close()

	tokens := &staticTokens{token: "tok"}
	c := NewClient(srv.URL, tokens, nil)
	items, err := c.Recommendations(context.Background(), "client-1", 3, 20, true)
	require.NoError(t, err)

	assert.Equal(t, recommendationsRequest{ClientID: "client-1", Cursor: 3, Limit: 20, Refresh: true}, got)
	require.Len(t, items, 1)
	assert.Equal(t, "m1", items[0].ID)
	assert.Nil(t, items[0].UserRating, "feed responses carry no interaction state")
	assert.Equal(t, 1, tokens.calls, "one fresh token per request")
}

func TestInformationalEndpointsCarryNoCredential(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		w.Write([]byte(`{"media": []}`))
	}))
	defer srv.Close()

	tokens := &staticTokens{token: "tok"}
	c := NewClient(srv.URL, tokens, nil)

	_, err := c.CuratedMedia(context.Background())
	require.NoError(t, err)
	_, err = c.MediaPage(context.Background(), 2, 20)
	require.NoError(t, err)
	assert.Zero(t, tokens.calls)
}

func TestSearchReturnsEnrichedItems(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req searchRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, []searchFilter{{Field: "title", Value: "alien"}}, req.Filters)
		w.Write([]byte(`{"media": [
			{"id": "m1", "title": "Alien", "media_type": "movie", "release_date": "1979-05-25", "user_rating": 4, "bookmarked": true},
			{"id": "m2", "title": "Aliens", "media_type": "movie"}
		]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, &staticTokens{token: "tok"}, nil)
	items, err := c.Search(context.Background(), domain.SearchRequest{
		Filters:  []domain.SearchFilter{{Field: "title", Value: "alien"}},
		Limit:    20,
		ClientID: "client-1",
	})
	require.NoError(t, err)
	require.Len(t, items, 2)

	require.NotNil(t, items[0].UserRating)
	assert.Equal(t, 4, *items[0].UserRating)
	require.NotNil(t, items[0].Bookmarked)
	assert.True(t, *items[0].Bookmarked)
	assert.Equal(t, 1979, items[0].Year())

	assert.Nil(t, items[1].UserRating, "absent fields stay nil after mapping")
	assert.Nil(t, items[1].Bookmarked)
}

func TestSetRatingPayload(t *testing.T) {
	var got setRatingRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"ratings": [{"media_id": "m1", "score": 0}]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, &staticTokens{token: "tok"}, nil)
	err := c.SetRating(context.Background(), "client-1", []domain.RatingEntry{{MediaID: "m1", Score: 0}})
	require.NoError(t, err)
	assert.Equal(t, setRatingRequest{ClientID: "client-1", Ratings: []ratingEntry{{MediaID: "m1", Score: 0}}}, got)
}

func TestWatchLaterMutations(t *testing.T) {
	var addBody watchLaterRequest
	var deleteQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			require.NoError(t, json.NewDecoder(r.Body).Decode(&addBody))
		case http.MethodDelete:
			deleteQuery = r.URL.RawQuery
		}
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, &staticTokens{token: "tok"}, nil)
	require.NoError(t, c.AddWatchLater(context.Background(), "client-1", []string{"m1", "m2"}))
	require.NoError(t, c.RemoveWatchLater(context.Background(), "client-1", "m1"))

	assert.Equal(t, watchLaterRequest{ClientID: "client-1", MediaIDs: []string{"m1", "m2"}}, addBody)
	assert.Contains(t, deleteQuery, "media_id=m1")
}

func TestUnauthorizedMapsToAuthFailed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, &staticTokens{token: "bad"}, nil)
	_, err := c.WatchLater(context.Background(), "client-1", 0, 20)
	assert.True(t, errors.Is(err, domain.ErrAuthFailed))
}

func TestServerErrorDoesNotMapToTerminal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, &staticTokens{token: "tok"}, nil)
	_, err := c.MediaPage(context.Background(), 0, 20)
	require.Error(t, err)
	assert.False(t, errors.Is(err, domain.ErrNotFound))
}
