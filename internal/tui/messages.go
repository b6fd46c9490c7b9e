package tui

import (
	"github.com/mmcahill/reeldeck/internal/interactions"
)

// Message types for the TUI

// View identifies which tab a message belongs to.
type View int

const (
	ViewFeed View = iota
	ViewSearch
	ViewWatchlist
)

func (v View) String() string {
	switch v {
	case ViewFeed:
		return "feed"
	case ViewSearch:
		return "search"
	case ViewWatchlist:
		return "watchlist"
	default:
		return "unknown"
	}
}

// PageCommittedMsg signals that a session committed (or deduplicated) a page
type PageCommittedMsg struct {
	View      View
	Committed bool
}

// PageFailedMsg signals that a page fetch failed; the session stays halted
// until the user retries
type PageFailedMsg struct {
	View View
	Err  error
}

// ToastLevel is the severity of a transient notification
type ToastLevel int

const (
	ToastSuccess ToastLevel = iota
	ToastWarn
	ToastError
)

// ToastMsg carries a transient notification from a mutation gateway
type ToastMsg struct {
	Level ToastLevel
	Text  string
}

// ClearToastMsg removes the current toast
type ClearToastMsg struct{}

// CacheChangedMsg signals an interaction cache mutation
type CacheChangedMsg struct {
	Change interactions.Change
}

// SignOutDoneMsg signals that sign-out cleanup finished
type SignOutDoneMsg struct {
	Err error
}
