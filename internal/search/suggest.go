package search

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	sahilm "github.com/sahilm/fuzzy"

	"github.com/mmcahill/reeldeck/internal/domain"
)

// Genre vocabulary offered by the search view. The service accepts
// free-form genre strings, so suggestion is purely a client-side aid.
var knownGenres = []string{
	"Action",
	"Adventure",
	"Animation",
	"Comedy",
	"Crime",
	"Documentary",
	"Drama",
	"Family",
	"Fantasy",
	"History",
	"Horror",
	"Music",
	"Mystery",
	"Romance",
	"Science Fiction",
	"Thriller",
	"War",
	"Western",
}

// SuggestGenres returns known genres matching the partial input,
// normalized to canonical casing. Empty input returns the full list.
func SuggestGenres(partial string) []string {
	partial = strings.TrimSpace(partial)
	if partial == "" {
		out := make([]string, len(knownGenres))
		copy(out, knownGenres)
		return out
	}

	ranks := fuzzy.RankFindNormalizedFold(partial, knownGenres)
	sort.Sort(ranks)

	out := make([]string, 0, len(ranks))
	for _, r := range ranks {
		out = append(out, r.Target)
	}
	return out
}

// CanonicalGenre resolves free-form input to the canonical genre name,
// or returns the trimmed input unchanged when nothing matches.
func CanonicalGenre(input string) string {
	input = strings.TrimSpace(input)
	if input == "" {
		return ""
	}
	for _, g := range knownGenres {
		if strings.EqualFold(g, input) {
			return g
		}
	}
	if suggestions := SuggestGenres(input); len(suggestions) > 0 {
		return suggestions[0]
	}
	return input
}

// TitleMatch is a locally filtered item with match metadata for
// highlighting.
type TitleMatch struct {
	Item           domain.MediaItem
	MatchedIndexes []int
	Score          int
}

// titleSource adapts a media slice to sahilm/fuzzy's Source interface.
type titleSource []domain.MediaItem

func (s titleSource) String(i int) string { return s[i].Title }
func (s titleSource) Len() int            { return len(s) }

// FilterByTitle ranks already-fetched items against a typed query.
// Used to narrow a loaded page without another network round trip.
func FilterByTitle(query string, items []domain.MediaItem) []TitleMatch {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}

	matches := sahilm.FindFrom(query, titleSource(items))

	results := make([]TitleMatch, len(matches))
	for i, m := range matches {
		results[i] = TitleMatch{
			Item:           items[m.Index],
			MatchedIndexes: m.MatchedIndexes,
			Score:          m.Score,
		}
	}
	return results
}
