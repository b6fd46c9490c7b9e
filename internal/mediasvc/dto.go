package mediasvc

// Wire shapes for the media service API.

// mediaItem is the bare media record returned by the feed endpoints
// (curated, recommendations, generic listing).
type mediaItem struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	ReleaseDate  string   `json:"release_date"`
	PosterPath   string   `json:"poster_path"`
	BackdropPath string   `json:"backdrop_path"`
	MediaType    string   `json:"media_type"`
	Genres       []string `json:"genres"`
	Cast         []string `json:"cast,omitempty"`
	Similarity   float64  `json:"similarity_score,omitempty"`
}

// mediaSearchItem is the enriched record returned by search and
// watch-later responses; it additionally carries the server's view of the
// user's interaction state.
type mediaSearchItem struct {
	mediaItem
	UserRating *int  `json:"user_rating,omitempty"`
	Bookmarked *bool `json:"bookmarked,omitempty"`
}

type mediaResponse struct {
	Media []mediaItem `json:"media"`
}

type mediaSearchResponse struct {
	Media []mediaSearchItem `json:"media"`
}

type recommendationsRequest struct {
	ClientID string `json:"client_id"`
	Cursor   int    `json:"cursor"`
	Limit    int    `json:"limit"`
	Refresh  bool   `json:"refresh"`
}

type searchFilter struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

type searchRequest struct {
	Filters   []searchFilter `json:"filters"`
	SortField string         `json:"sort_field"`
	SortOrder string         `json:"sort_order"`
	Limit     int            `json:"limit"`
	Offset    int            `json:"offset"`
	ClientID  string         `json:"client_id"`
}

type ratingEntry struct {
	MediaID string `json:"media_id"`
	Score   int    `json:"score"`
}

type setRatingRequest struct {
	ClientID string        `json:"client_id"`
	Ratings  []ratingEntry `json:"ratings"`
}

type watchLaterRequest struct {
	ClientID string   `json:"client_id"`
	MediaIDs []string `json:"media_ids"`
}
