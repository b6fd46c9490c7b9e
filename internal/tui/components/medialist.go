package components

import (
	"fmt"
	"strings"

	"github.com/mmcahill/reeldeck/internal/domain"
	"github.com/mmcahill/reeldeck/internal/interactions"
	"github.com/mmcahill/reeldeck/internal/tui/styles"
)

// loadAheadRows is how close to the bottom the cursor may get before the
// list reports that the next page should be requested.
const loadAheadRows = 5

// MediaList is a scrollable list of media items. Interaction state is
// resolved cache-first on every render: a local write always shadows
// whatever the server reported for the row.
type MediaList struct {
	cache *interactions.Cache

	items  []domain.MediaItem
	cursor int
	offset int

	width  int
	height int
}

// NewMediaList creates an empty list backed by the interaction cache.
func NewMediaList(cache *interactions.Cache) MediaList {
	return MediaList{cache: cache}
}

// SetItems replaces the list contents, clamping the cursor.
func (l *MediaList) SetItems(items []domain.MediaItem) {
	l.items = items
	if l.cursor >= len(items) {
		l.cursor = len(items) - 1
	}
	if l.cursor < 0 {
		l.cursor = 0
	}
	l.clampOffset()
}

// SetSize updates the viewport dimensions.
func (l *MediaList) SetSize(width, height int) {
	l.width = width
	l.height = height
	l.clampOffset()
}

// Len returns the number of items.
func (l *MediaList) Len() int {
	return len(l.items)
}

// Selected returns the item under the cursor.
func (l *MediaList) Selected() (domain.MediaItem, bool) {
	if l.cursor < 0 || l.cursor >= len(l.items) {
		return domain.MediaItem{}, false
	}
	return l.items[l.cursor], true
}

// MoveUp moves the cursor up one row.
func (l *MediaList) MoveUp() {
	if l.cursor > 0 {
		l.cursor--
	}
	l.clampOffset()
}

// MoveDown moves the cursor down one row.
func (l *MediaList) MoveDown() {
	if l.cursor < len(l.items)-1 {
		l.cursor++
	}
	l.clampOffset()
}

// ResetCursor returns the cursor to the top.
func (l *MediaList) ResetCursor() {
	l.cursor = 0
	l.offset = 0
}

// NearEnd reports whether the cursor is close enough to the bottom that
// the next page should be requested.
func (l *MediaList) NearEnd() bool {
	return len(l.items) > 0 && l.cursor >= len(l.items)-loadAheadRows
}

func (l *MediaList) clampOffset() {
	if l.height <= 0 {
		return
	}
	if l.cursor < l.offset {
		l.offset = l.cursor
	}
	if l.cursor >= l.offset+l.height {
		l.offset = l.cursor - l.height + 1
	}
}

// rating resolves the score to display for an item: the local cache entry
// when present, the server-enriched field otherwise.
func (l *MediaList) rating(item domain.MediaItem) (int, bool) {
	if score, ok := l.cache.Rating(item.ID); ok {
		return score, true
	}
	if item.UserRating != nil {
		return *item.UserRating, true
	}
	return 0, false
}

// bookmarked resolves the bookmark flag with the same cache-first rule.
func (l *MediaList) bookmarked(item domain.MediaItem) bool {
	if b, ok := l.cache.Bookmark(item.ID); ok {
		return b
	}
	return item.Bookmarked != nil && *item.Bookmarked
}

// View renders the visible window.
func (l *MediaList) View() string {
	if len(l.items) == 0 {
		return styles.DimStyle.Render("  Nothing here yet")
	}

	end := l.offset + l.height
	if end > len(l.items) {
		end = len(l.items)
	}

	var b strings.Builder
	for i := l.offset; i < end; i++ {
		b.WriteString(l.renderRow(l.items[i], i == l.cursor))
		if i < end-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (l *MediaList) renderRow(item domain.MediaItem, selected bool) string {
	marker := "  "
	if selected {
		marker = styles.AccentStyle.Render("> ")
	}

	typeTag := "movie"
	if item.Type == domain.MediaTypeSeries {
		typeTag = "series"
	}

	year := ""
	if y := item.Year(); y > 0 {
		year = fmt.Sprintf(" (%d)", y)
	}

	// Interaction column: not-interested beats stars beats nothing
	interaction := ""
	if score, ok := l.rating(item); ok {
		if score == domain.RatingNotInterested {
			interaction = styles.NotInterestedStyle.Render(styles.NotInterestedTag)
		} else {
			interaction = styles.RenderStars(score)
		}
	}
	if l.bookmarked(item) {
		if interaction != "" {
			interaction += " "
		}
		interaction += styles.BookmarkStyle.Render(styles.BookmarkChar)
	}

	titleWidth := l.width - 30
	if titleWidth < 10 {
		titleWidth = 10
	}
	title := styles.Truncate(item.Title+year, titleWidth)

	row := fmt.Sprintf("%s%-*s %s %s", marker, titleWidth, title, styles.DimStyle.Render(typeTag), interaction)
	if selected {
		return styles.SelectedItemStyle.Render(row)
	}
	return styles.NormalItemStyle.Render(row)
}
