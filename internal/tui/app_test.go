package tui

import (
	"testing"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"

	"github.com/mmcahill/reeldeck/internal/domain"
)

func TestParseQueryTermOnly(t *testing.T) {
	q := parseQuery("blade runner")
	assert.Equal(t, "blade runner", q.Term)
	assert.Empty(t, q.Genres)
	assert.Empty(t, string(q.Type))
}

func TestParseQueryGenreTags(t *testing.T) {
	q := parseQuery("space #scifi #horor")
	assert.Equal(t, "space", q.Term)
	assert.Contains(t, q.Genres, "Science Fiction")
	assert.Contains(t, q.Genres, "Horror")
}

func TestParseQueryTypePrefix(t *testing.T) {
	q := parseQuery("series: detective")
	assert.Equal(t, domain.MediaTypeSeries, q.Type)
	assert.Equal(t, "detective", q.Term)

	q = parseQuery("movie: heist")
	assert.Equal(t, domain.MediaTypeMovie, q.Type)
}

func TestFilterItemsNarrowsLoadedList(t *testing.T) {
	items := []domain.MediaItem{
		{ID: "m1", Title: "The Thing"},
		{ID: "m2", Title: "Thin Red Line"},
		{ID: "m3", Title: "Alien"},
	}

	got := filterItems("thin", items)
	ids := make([]string, len(got))
	for i, item := range got {
		ids[i] = item.ID
	}
	assert.Contains(t, ids, "m1")
	assert.Contains(t, ids, "m2")
	assert.NotContains(t, ids, "m3")
}

func TestFilterItemsEmptyQueryPassesThrough(t *testing.T) {
	items := []domain.MediaItem{
		{ID: "m1", Title: "Alien"},
		{ID: "m2", Title: "Aliens"},
	}
	assert.Equal(t, items, filterItems("  ", items))
}

func TestRatingKeyBindings(t *testing.T) {
	keys := DefaultKeyMap()
	bindings := []key.Binding{keys.Rate1, keys.Rate2, keys.Rate3, keys.Rate4, keys.Rate5}

	for i, b := range bindings {
		msg := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{rune('1' + i)}}
		assert.True(t, key.Matches(msg, b), "key %c must match its rating binding", '1'+i)
	}

	notInterested := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'0'}}
	assert.True(t, key.Matches(notInterested, keys.NotInterested))
	for _, b := range bindings {
		assert.False(t, key.Matches(notInterested, b), "0 is not-interested, never a star rating")
	}
}

func TestChannelNotifierDoesNotBlockWhenFull(t *testing.T) {
	ch := make(chan ToastMsg, 1)
	n := NewChannelNotifier(ch)

	n.Success("first")
	// Channel is full now; these must return immediately
	n.Success("second")
	n.Error("third")

	got := <-ch
	assert.Equal(t, "first", got.Text)
	assert.Equal(t, ToastSuccess, got.Level)
	assert.Empty(t, ch)
}

func TestChannelNotifierLevels(t *testing.T) {
	ch := make(chan ToastMsg, 3)
	n := NewChannelNotifier(ch)

	n.Success("ok")
	n.Warn("hm")
	n.Error("no")

	assert.Equal(t, ToastSuccess, (<-ch).Level)
	assert.Equal(t, ToastWarn, (<-ch).Level)
	assert.Equal(t, ToastError, (<-ch).Level)
}
