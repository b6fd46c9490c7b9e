package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcahill/reeldeck/internal/config"
	"github.com/mmcahill/reeldeck/internal/interactions"
	"github.com/mmcahill/reeldeck/internal/query"
	"github.com/mmcahill/reeldeck/internal/store"
)

// Command factories for async operations

// FetchNextCmd requests the next page from a session. The session handles
// deduplication, so firing this on every scroll-near-end is safe.
func FetchNextCmd(s *query.Session, view View) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()

		committed, err := s.FetchNext(ctx)
		if err != nil {
			return PageFailedMsg{View: view, Err: err}
		}
		return PageCommittedMsg{View: view, Committed: committed}
	}
}

// RetryCmd clears a session's failed state and reattempts the same page
func RetryCmd(s *query.Session, view View) tea.Cmd {
	s.Retry()
	return FetchNextCmd(s, view)
}

// ListenToastCmd reads one notification from the toast channel. The handler
// re-arms it after each message.
func ListenToastCmd(ch <-chan ToastMsg) tea.Cmd {
	return func() tea.Msg {
		return <-ch
	}
}

// ListenCacheCmd reads one change from the cache subscription channel.
func ListenCacheCmd(ch <-chan interactions.Change) tea.Cmd {
	return func() tea.Msg {
		return CacheChangedMsg{Change: <-ch}
	}
}

// ClearToastCmd removes the toast after a delay
func ClearToastCmd(delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(time.Time) tea.Msg {
		return ClearToastMsg{}
	})
}

// SignOutCmd clears local interaction state, the session store, and the
// identity configuration, then signals completion
func SignOutCmd(cache *interactions.Cache, sessions *store.SessionStore) tea.Cmd {
	return func() tea.Msg {
		cache.ClearAll()

		if err := sessions.Reset(); err != nil {
			return SignOutDoneMsg{Err: err}
		}
		if err := config.ClearIdentityConfig(); err != nil {
			return SignOutDoneMsg{Err: err}
		}
		return SignOutDoneMsg{}
	}
}
