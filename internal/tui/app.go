package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mmcahill/reeldeck/internal/domain"
	"github.com/mmcahill/reeldeck/internal/feed"
	"github.com/mmcahill/reeldeck/internal/gateway"
	"github.com/mmcahill/reeldeck/internal/interactions"
	"github.com/mmcahill/reeldeck/internal/query"
	"github.com/mmcahill/reeldeck/internal/search"
	"github.com/mmcahill/reeldeck/internal/store"
	"github.com/mmcahill/reeldeck/internal/tui/components"
	"github.com/mmcahill/reeldeck/internal/tui/styles"
)

const (
	toastDuration = 3 * time.Second
	chromeHeight  = 5 // tab bar + status line + margins
)

// Deps bundles everything the TUI needs; cmd/reeldeck wires it up.
type Deps struct {
	Cache     *interactions.Cache
	Resolver  *feed.Resolver
	Search    *feed.Search
	Watchlist *feed.Watchlist
	Ratings   *gateway.RatingGateway
	Bookmarks *gateway.BookmarkGateway
	Sessions  *store.SessionStore
	ToastCh   chan ToastMsg
	Logger    *slog.Logger
}

// Model is the main Bubble Tea model for the application
type Model struct {
	deps Deps
	keys KeyMap

	view View

	feedSession      *query.Session
	searchSession    *query.Session
	watchlistSession *query.Session

	list        components.MediaList
	searchInput textinput.Model
	filterInput textinput.Model
	spinner     spinner.Model

	cacheCh     chan interactions.Change
	unsubscribe func()

	// Feed refresh counter; bumped into the feed key's Version so a manual
	// refresh discards committed pages
	refreshCount uint64

	toast    *ToastMsg
	quitting bool
	width    int
	height   int
}

// NewModel creates the application model.
func NewModel(deps Deps) Model {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	input := textinput.New()
	input.Placeholder = "title words, #genre tags, movie:/series:"
	input.CharLimit = 120

	filter := textinput.New()
	filter.Placeholder = "filter loaded titles"
	filter.Prompt = "/ "
	filter.CharLimit = 60

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.SpinnerStyle

	m := Model{
		deps:        deps,
		keys:        DefaultKeyMap(),
		view:        ViewFeed,
		list:        components.NewMediaList(deps.Cache),
		searchInput: input,
		filterInput: filter,
		spinner:     sp,
		cacheCh:     make(chan interactions.Change, 64),
	}

	m.feedSession = query.NewSession(m.feedKey(), m.feedFetch(false), deps.Logger)
	m.searchSession = query.NewSession(query.Key{Family: "search"}, emptySearchFetch, deps.Logger)
	m.watchlistSession = query.NewSession(m.watchlistKey(), deps.Watchlist.FetchPage, deps.Logger)

	m.unsubscribe = deps.Cache.Subscribe(m.cacheCh)
	return m
}

func (m *Model) feedKey() query.Key {
	return query.Key{Family: "feed", Version: m.refreshCount}
}

// feedFetch binds the resolver to a session fetch function. refresh is
// forwarded to the recommendation endpoint on page 0 only.
func (m *Model) feedFetch(refresh bool) query.FetchFunc {
	resolver := m.deps.Resolver
	return func(ctx context.Context, page int) (domain.Page, error) {
		return resolver.FetchPage(ctx, page, refresh && page == 0)
	}
}

// watchlistKey embeds the bookmark version so any watch-later toggle
// forces the list to refetch next time it is shown.
func (m *Model) watchlistKey() query.Key {
	return query.Key{Family: "watchlist", Version: m.deps.Cache.BookmarksVersion()}
}

func (m *Model) activeSession() *query.Session {
	switch m.view {
	case ViewSearch:
		return m.searchSession
	case ViewWatchlist:
		return m.watchlistSession
	default:
		return m.feedSession
	}
}

// Init starts the feed fetch and the channel listeners.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		FetchNextCmd(m.feedSession, ViewFeed),
		ListenToastCmd(m.deps.ToastCh),
		ListenCacheCmd(m.cacheCh),
		m.spinner.Tick,
	)
}

// Update handles all messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(msg.Width, msg.Height-chromeHeight)
		m.searchInput.Width = msg.Width - 10
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case PageCommittedMsg:
		if msg.View == m.view {
			m.syncList()
		}
		return m, nil

	case PageFailedMsg:
		m.deps.Logger.Warn("page fetch failed", "view", msg.View.String(), "error", msg.Err)
		return m, nil

	case ToastMsg:
		m.toast = &msg
		return m, tea.Batch(
			ListenToastCmd(m.deps.ToastCh),
			ClearToastCmd(toastDuration),
		)

	case ClearToastMsg:
		m.toast = nil
		return m, nil

	case CacheChangedMsg:
		// The list resolves interaction state from the cache at render
		// time, so a change only needs a repaint; the watchlist key is
		// rebuilt lazily on tab switch.
		return m, ListenCacheCmd(m.cacheCh)

	case SignOutDoneMsg:
		if msg.Err != nil {
			m.deps.Logger.Error("sign-out cleanup failed", "error", msg.Err)
		}
		m.quitting = true
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Local filter owns the keyboard while focused
	if m.filterInput.Focused() {
		switch {
		case msg.Type == tea.KeyEnter:
			m.filterInput.Blur()
			return m, nil
		case key.Matches(msg, m.keys.Escape):
			m.filterInput.SetValue("")
			m.filterInput.Blur()
			m.syncList()
			return m, nil
		}
		var cmd tea.Cmd
		m.filterInput, cmd = m.filterInput.Update(msg)
		m.syncList()
		return m, cmd
	}

	// Search input owns the keyboard while focused
	if m.view == ViewSearch && m.searchInput.Focused() {
		switch {
		case msg.Type == tea.KeyEnter:
			m.searchInput.Blur()
			return m.submitSearch()
		case key.Matches(msg, m.keys.Escape):
			m.searchInput.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		m.searchInput, cmd = m.searchInput.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.unsubscribe()
		m.deps.Ratings.Flush()
		m.deps.Bookmarks.Flush()
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.SignOut):
		return m, SignOutCmd(m.deps.Cache, m.deps.Sessions)

	case key.Matches(msg, m.keys.NextTab):
		return m.switchView((m.view + 1) % 3)

	case key.Matches(msg, m.keys.Up):
		m.list.MoveUp()
		return m, nil

	case key.Matches(msg, m.keys.Down):
		m.list.MoveDown()
		if m.list.NearEnd() {
			return m, FetchNextCmd(m.activeSession(), m.view)
		}
		return m, nil

	case key.Matches(msg, m.keys.Refresh):
		if m.view == ViewFeed {
			return m.refreshFeed()
		}
		return m, nil

	case key.Matches(msg, m.keys.Retry):
		if m.activeSession().Snapshot().Status == query.StatusFailed {
			return m, RetryCmd(m.activeSession(), m.view)
		}
		return m, nil

	case key.Matches(msg, m.keys.Focus):
		// The search view owns a server query; the other views get a
		// ranked local narrowing of what is already loaded
		if m.view == ViewSearch {
			m.searchInput.Focus()
		} else {
			m.filterInput.Focus()
		}
		return m, textinput.Blink

	case key.Matches(msg, m.keys.NotInterested):
		return m.rateSelected(domain.RatingNotInterested)

	case key.Matches(msg, m.keys.Unrate):
		if item, ok := m.list.Selected(); ok {
			m.deps.Ratings.Unrate(item.ID)
		}
		return m, nil

	case key.Matches(msg, m.keys.Bookmark):
		return m.toggleBookmark()
	}

	// Numeric rating keys
	for i, b := range []key.Binding{m.keys.Rate1, m.keys.Rate2, m.keys.Rate3, m.keys.Rate4, m.keys.Rate5} {
		if key.Matches(msg, b) {
			return m.rateSelected(i + 1)
		}
	}

	return m, nil
}

func (m Model) rateSelected(score int) (tea.Model, tea.Cmd) {
	item, ok := m.list.Selected()
	if !ok {
		return m, nil
	}
	if err := m.deps.Ratings.Rate(item.ID, score); err != nil {
		m.deps.Logger.Warn("rating rejected", "mediaID", item.ID, "score", score, "error", err)
	}
	return m, nil
}

func (m Model) toggleBookmark() (tea.Model, tea.Cmd) {
	item, ok := m.list.Selected()
	if !ok {
		return m, nil
	}

	bookmarked, known := m.deps.Cache.Bookmark(item.ID)
	if !known {
		bookmarked = item.Bookmarked != nil && *item.Bookmarked
	}

	if bookmarked {
		m.deps.Bookmarks.Remove(item.ID)
	} else {
		m.deps.Bookmarks.Add(item.ID)
	}
	return m, nil
}

func (m Model) switchView(v View) (tea.Model, tea.Cmd) {
	m.view = v
	m.list.ResetCursor()
	m.filterInput.SetValue("")
	m.filterInput.Blur()

	var cmd tea.Cmd
	switch v {
	case ViewWatchlist:
		// Rebind if bookmarks changed since the list was last fetched
		if !m.watchlistSession.Key().Equal(m.watchlistKey()) {
			m.watchlistSession.Reset(m.watchlistKey(), m.deps.Watchlist.FetchPage)
		}
		cmd = FetchNextCmd(m.watchlistSession, ViewWatchlist)
	case ViewSearch:
		m.searchInput.Focus()
		cmd = textinput.Blink
	}

	m.syncList()
	return m, cmd
}

func (m Model) refreshFeed() (tea.Model, tea.Cmd) {
	m.refreshCount++
	m.filterInput.SetValue("")
	m.deps.Resolver.Reset()
	m.feedSession.Reset(m.feedKey(), m.feedFetch(true))
	m.list.SetItems(nil)
	return m, FetchNextCmd(m.feedSession, ViewFeed)
}

// submitSearch parses the input line into a query and rebinds the search
// session. Words starting with # are genre tags; a leading "movie:" or
// "series:" restricts the type; the rest is the free-text term.
func (m Model) submitSearch() (tea.Model, tea.Cmd) {
	q := parseQuery(m.searchInput.Value())
	if err := q.Validate(); err != nil {
		m.toast = &ToastMsg{Level: ToastWarn, Text: "Add a search term or a #genre"}
		return m, ClearToastCmd(toastDuration)
	}

	searcher := m.deps.Search
	m.searchSession.Reset(
		query.Key{
			Family:    "search",
			Term:      q.Term,
			Genres:    q.Genres,
			Type:      string(q.Type),
			SortField: q.SortField,
			SortOrder: string(q.SortOrder),
		},
		func(ctx context.Context, page int) (domain.Page, error) {
			return searcher.FetchPage(ctx, q, page)
		},
	)
	m.list.SetItems(nil)
	return m, FetchNextCmd(m.searchSession, ViewSearch)
}

// syncList pushes the active session's items, narrowed by the local
// filter, into the list component.
func (m *Model) syncList() {
	m.list.SetItems(filterItems(m.filterInput.Value(), m.activeSession().Snapshot().Items))
}

// filterItems narrows already-loaded items with ranked fuzzy title
// matching. An empty query passes items through untouched; match order is
// the ranking, best first.
func filterItems(query string, items []domain.MediaItem) []domain.MediaItem {
	query = strings.TrimSpace(query)
	if query == "" {
		return items
	}
	matches := search.FilterByTitle(query, items)
	out := make([]domain.MediaItem, len(matches))
	for i, match := range matches {
		out[i] = match.Item
	}
	return out
}

// emptySearchFetch backs the search session before any query has been
// submitted; the session is always Reset before the first real fetch.
func emptySearchFetch(_ context.Context, _ int) (domain.Page, error) {
	return domain.Page{}, domain.ErrInvalidQuery
}

// parseQuery turns a raw input line into search criteria.
func parseQuery(raw string) feed.Query {
	var q feed.Query
	var terms []string

	for _, word := range strings.Fields(raw) {
		switch {
		case strings.HasPrefix(word, "#"):
			if g := search.CanonicalGenre(strings.TrimPrefix(word, "#")); g != "" {
				q.Genres = append(q.Genres, g)
			}
		case strings.EqualFold(word, "movie:"):
			q.Type = domain.MediaTypeMovie
		case strings.EqualFold(word, "series:"):
			q.Type = domain.MediaTypeSeries
		default:
			terms = append(terms, word)
		}
	}

	q.Term = strings.Join(terms, " ")
	return q
}

// View renders the whole screen
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.renderTabs())
	b.WriteString("\n\n")

	if m.view == ViewSearch {
		b.WriteString("  " + m.searchInput.View() + "\n\n")
	} else if m.filterInput.Focused() || m.filterInput.Value() != "" {
		b.WriteString("  " + m.filterInput.View() + "\n\n")
	}

	snap := m.activeSession().Snapshot()

	if m.view == ViewFeed && snap.Status == query.StatusReady && m.deps.Resolver.State() == feed.StateNoHistory {
		b.WriteString("  " + styles.BannerStyle.Render("Rate a few titles (1-5) to unlock personal recommendations") + "\n\n")
	}

	switch snap.Status {
	case query.StatusLoading:
		if len(snap.Items) == 0 {
			b.WriteString("  " + m.spinner.View() + styles.DimStyle.Render(" loading...") + "\n")
		} else {
			b.WriteString(m.list.View() + "\n")
		}
	case query.StatusFailed:
		b.WriteString(m.list.View() + "\n")
		b.WriteString("  " + styles.ErrorStyle.Render("Couldn't load more — press r to retry") + "\n")
	default:
		b.WriteString(m.list.View() + "\n")
	}

	b.WriteString("\n" + m.renderStatus(snap))
	return b.String()
}

func (m Model) renderTabs() string {
	names := []string{"Feed", "Search", "Watch Later"}
	tabs := make([]string, len(names))
	for i, name := range names {
		if View(i) == m.view {
			tabs[i] = styles.ActiveTabStyle.Render(name)
		} else {
			tabs[i] = styles.InactiveTabStyle.Render(name)
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) renderStatus(snap query.Snapshot) string {
	if m.toast != nil {
		switch m.toast.Level {
		case ToastError:
			return "  " + styles.ToastErrorStyle.Render(m.toast.Text)
		case ToastWarn:
			return "  " + styles.ToastWarnStyle.Render(m.toast.Text)
		default:
			return "  " + styles.ToastSuccessStyle.Render(m.toast.Text)
		}
	}

	count := fmt.Sprintf("%d items", len(snap.Items))
	if !snap.HasMore {
		count += " · end"
	}
	help := styles.HelpKeyStyle.Render("tab") + styles.HelpDescStyle.Render(" views  ") +
		styles.HelpKeyStyle.Render("1-5") + styles.HelpDescStyle.Render(" rate  ") +
		styles.HelpKeyStyle.Render("b") + styles.HelpDescStyle.Render(" watch later  ") +
		styles.HelpKeyStyle.Render("q") + styles.HelpDescStyle.Render(" quit")
	return "  " + styles.DimStyle.Render(count) + "   " + help
}
