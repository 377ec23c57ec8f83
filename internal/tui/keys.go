package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all key bindings for the application
type KeyMap struct {
	// Navigation
	Up    key.Binding
	Down  key.Binding
	Enter key.Binding

	// Actions
	Trigger      key.Binding
	Search       key.Binding
	Pin          key.Binding
	ClearRecents key.Binding
	Quit         key.Binding
	Help         key.Binding
	Escape       key.Binding

	// Confirmations
	Confirm key.Binding
	Deny    key.Binding
}

// DefaultKeyMap returns the default key bindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "down"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "scan clipboard"),
		),
		Trigger: key.NewBinding(
			key.WithKeys("f12", " "),
			key.WithHelp("F12/space", "scan clipboard"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search recents"),
		),
		Pin: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "pin recent"),
		),
		ClearRecents: key.NewBinding(
			key.WithKeys("X"),
			key.WithHelp("X", "clear recents"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel/clear"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("y", "Y"),
			key.WithHelp("y", "load extras"),
		),
		Deny: key.NewBinding(
			key.WithKeys("n", "N", "esc"),
			key.WithHelp("n/esc", "dismiss"),
		),
	}
}

// Keys is the global key bindings instance
var Keys = DefaultKeyMap()
