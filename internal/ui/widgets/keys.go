package widgets

import "github.com/charmbracelet/bubbles/key"

// TaskboardKeys holds the taskboard's navigation bindings.
type TaskboardKeys struct {
	Up     key.Binding
	Down   key.Binding
	Top    key.Binding
	Bottom key.Binding
}

// ShortHelp returns the bindings for the help bar.
func (k TaskboardKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down}
}

// FullHelp returns the bindings grouped for expanded help.
func (k TaskboardKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Up, k.Down}, {k.Top, k.Bottom}}
}

// DefaultTaskboardKeys returns the taskboard bindings.
func DefaultTaskboardKeys() TaskboardKeys {
	return TaskboardKeys{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Top: key.NewBinding(
			key.WithKeys("home", "g"),
			key.WithHelp("g", "top"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("end", "G"),
			key.WithHelp("G", "bottom"),
		),
	}
}

// SelectorKeys holds the milestone selector bindings.
type SelectorKeys struct {
	Up     key.Binding
	Down   key.Binding
	Next   key.Binding
	Select key.Binding
	Cancel key.Binding
}

// ShortHelp returns the bindings for the help bar.
func (k SelectorKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Select, k.Cancel}
}

// FullHelp returns the bindings grouped for expanded help.
func (k SelectorKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Up, k.Down, k.Next}, {k.Select, k.Cancel}}
}

// DefaultSelectorKeys returns the selector bindings.
func DefaultSelectorKeys() SelectorKeys {
	return SelectorKeys{
		Up: key.NewBinding(
			key.WithKeys("up", "k", "shift+tab"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Next: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "select"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
	}
}
