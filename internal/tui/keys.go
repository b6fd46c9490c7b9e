package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all key bindings
type KeyMap struct {
	Up            key.Binding
	Down          key.Binding
	NextTab       key.Binding
	Refresh       key.Binding
	Retry         key.Binding
	Rate1         key.Binding
	Rate2         key.Binding
	Rate3         key.Binding
	Rate4         key.Binding
	Rate5         key.Binding
	NotInterested key.Binding
	Unrate        key.Binding
	Bookmark      key.Binding
	Focus         key.Binding
	Escape        key.Binding
	SignOut       key.Binding
	Quit          key.Binding
}

// DefaultKeyMap returns the default key bindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up:            key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:          key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		NextTab:       key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next view")),
		Refresh:       key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "refresh feed")),
		Retry:         key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "retry")),
		Rate1:         key.NewBinding(key.WithKeys("1"), key.WithHelp("1-5", "rate")),
		Rate2:         key.NewBinding(key.WithKeys("2")),
		Rate3:         key.NewBinding(key.WithKeys("3")),
		Rate4:         key.NewBinding(key.WithKeys("4")),
		Rate5:         key.NewBinding(key.WithKeys("5")),
		NotInterested: key.NewBinding(key.WithKeys("0", "x"), key.WithHelp("0/x", "not interested")),
		Unrate:        key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "remove rating")),
		Bookmark:      key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "toggle watch later")),
		Focus:         key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search / filter")),
		Escape:        key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		SignOut:       key.NewBinding(key.WithKeys("Q"), key.WithHelp("Q", "sign out")),
		Quit:          key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}
