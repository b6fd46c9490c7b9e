package domain

import (
	"strconv"
	"strings"
)

// MediaType distinguishes content types
type MediaType string

const (
	MediaTypeMovie  MediaType = "movie"
	MediaTypeSeries MediaType = "series"
)

// Rating bounds. A score of RatingNotInterested is a real, stored rating
// ("not interested"), distinct from having no rating at all.
const (
	RatingNotInterested = 0
	RatingMax           = 5
)

// ValidRating reports whether v is a storable rating score.
func ValidRating(v int) bool {
	return v >= RatingNotInterested && v <= RatingMax
}

// MediaItem is the single internal record every endpoint response is
// normalized into. Search and watch-later responses additionally carry the
// server's view of the user's interaction state; UserRating and Bookmarked
// are nil on feed responses, which never include them.
type MediaItem struct {
	ID          string    // Opaque identifier, stable across endpoints
	Title       string    // Display title
	ReleaseDate string    // Release date as supplied (e.g. "2019-11-12")
	PosterURL   string    // Poster image reference
	BackdropURL string    // Background art reference
	Type        MediaType // Movie or series
	Genres      []string  // Genre tag set
	Cast        []string  // Optional cast list
	Similarity  float64   // Optional similarity score (0 when absent)

	// Server-supplied interaction state, present only on enriched
	// (search / watch-later) responses.
	UserRating *int
	Bookmarked *bool
}

// Year returns the release year, or 0 when the release date is missing or
// unparseable.
func (m MediaItem) Year() int {
	if len(m.ReleaseDate) < 4 {
		return 0
	}
	year, err := strconv.Atoi(m.ReleaseDate[:4])
	if err != nil {
		return 0
	}
	return year
}

// GetDescription returns secondary info for list display.
func (m MediaItem) GetDescription() string {
	parts := []string{}
	if y := m.Year(); y > 0 {
		parts = append(parts, strconv.Itoa(y))
	}
	if len(m.Genres) > 0 {
		parts = append(parts, m.Genres[0])
	}
	if m.Type == MediaTypeSeries {
		parts = append(parts, "series")
	}
	return strings.Join(parts, " · ")
}

// Page is one committed page of a paginated session.
type Page struct {
	Items []MediaItem

	// NextPage is the index to request next; nil marks the terminal page.
	NextPage *int

	// HasRatings carries the tier decision made at page 0 of a feed
	// session forward to later pages.
	HasRatings bool
}

// NextPageOf is a convenience for building Page values.
func NextPageOf(p int) *int { return &p }

// RatingEntry is one (media id, score) pair submitted to the rating
// endpoint.
type RatingEntry struct {
	MediaID string
	Score   int
}

// SortOrder for search results.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// SearchFilter is a single field/value predicate understood by the search
// endpoint.
type SearchFilter struct {
	Field string
	Value string
}

// SearchRequest is the wire-level input to the filtered search endpoint.
type SearchRequest struct {
	Filters   []SearchFilter
	SortField string
	SortOrder SortOrder
	Limit     int
	Offset    int
	ClientID  string
}
