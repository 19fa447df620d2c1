package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Quit     key.Binding
	Weighted key.Binding
	Reset    key.Binding
	Refresh  key.Binding
	NextCol  key.Binding
	PrevCol  key.Binding
	Sort     key.Binding
}

var keys = keyMap{
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
	Weighted: key.NewBinding(
		key.WithKeys("w"),
		key.WithHelp("w", "weighted mode"),
	),
	Reset: key.NewBinding(
		key.WithKeys("R"),
		key.WithHelp("R", "reset weights"),
	),
	Refresh: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "refresh"),
	),
	NextCol: key.NewBinding(
		key.WithKeys("right", "l"),
		key.WithHelp("→", "next column"),
	),
	PrevCol: key.NewBinding(
		key.WithKeys("left", "h"),
		key.WithHelp("←", "prev column"),
	),
	Sort: key.NewBinding(
		key.WithKeys("enter", "s"),
		key.WithHelp("enter", "sort by column"),
	),
}
