package tui

import "github.com/charmbracelet/bubbles/key"

// listKeyMap defines the key bindings of the books listing.
type listKeyMap struct {
	Up       key.Binding
	Down     key.Binding
	Open     key.Binding
	Next     key.Binding
	Previous key.Binding
	Search   key.Binding
	Done     key.Binding
	Sort     key.Binding
	Reload   key.Binding
	Help     key.Binding
}

func defaultListKeys() listKeyMap {
	return listKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Open: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open"),
		),
		Next: key.NewBinding(
			key.WithKeys("n", "right", "pgdown"),
			key.WithHelp("n/→", "next page"),
		),
		Previous: key.NewBinding(
			key.WithKeys("p", "left", "pgup"),
			key.WithHelp("p/←", "previous page"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		Done: key.NewBinding(
			key.WithKeys("enter", "esc", "tab"),
			key.WithHelp("enter/esc", "leave search"),
		),
		Sort: key.NewBinding(
			key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9"),
			key.WithHelp("1-9", "sort by column"),
		),
		Reload: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reload"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k listKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Open, k.Next, k.Previous, k.Search, k.Help}
}

// FullHelp implements help.KeyMap.
func (k listKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Open},
		{k.Next, k.Previous, k.Reload},
		{k.Search, k.Sort, k.Help},
	}
}

// detailKeyMap defines the key bindings of the detail page.
type detailKeyMap struct {
	Back   key.Binding
	Reload key.Binding
	Up     key.Binding
	Down   key.Binding
}

func defaultDetailKeys() detailKeyMap {
	return detailKeyMap{
		Back: key.NewBinding(
			key.WithKeys("esc", "backspace", "b"),
			key.WithHelp("esc/b", "back to books"),
		),
		Reload: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reload"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "scroll down"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k detailKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Back, k.Up, k.Down, k.Reload}
}

// FullHelp implements help.KeyMap.
func (k detailKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Back, k.Reload}, {k.Up, k.Down}}
}

// appKeyMap holds the bindings handled by the shell.
type appKeyMap struct {
	Quit      key.Binding
	ForceQuit key.Binding
}

func defaultAppKeys() appKeyMap {
	return appKeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		ForceQuit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
	}
}
