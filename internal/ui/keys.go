package ui

import "github.com/charmbracelet/bubbles/key"

// globalKeys are handled by the App before the active screen sees a key.
type globalKeys struct {
	Quit      key.Binding
	ForceQuit key.Binding
	Logout    key.Binding
	Help      key.Binding
}

func defaultGlobalKeys() globalKeys {
	return globalKeys{
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		ForceQuit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
		Logout: key.NewBinding(
			key.WithKeys("ctrl+l"),
			key.WithHelp("ctrl+l", "logout"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
	}
}

// formKeys move focus between fields and buttons.
type formKeys struct {
	Next  key.Binding
	Prev  key.Binding
	Press key.Binding
}

func defaultFormKeys() formKeys {
	return formKeys{
		Next: key.NewBinding(
			key.WithKeys("tab", "down"),
			key.WithHelp("tab", "next"),
		),
		Prev: key.NewBinding(
			key.WithKeys("shift+tab", "up"),
			key.WithHelp("shift+tab", "previous"),
		),
		Press: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "select"),
		),
	}
}

// loginKeyMap is shown on the login screen, where q types a letter.
type loginKeyMap struct {
	form   formKeys
	global globalKeys
}

func (k loginKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.form.Next, k.form.Press, k.global.ForceQuit}
}

func (k loginKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.form.Next, k.form.Prev, k.form.Press}, {k.global.ForceQuit}}
}

// listKeyMap is shown on the project list and project screens.
type listKeyMap struct {
	form   formKeys
	global globalKeys
}

func (k listKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.form.Next, k.form.Press, k.global.Logout, k.global.Quit, k.global.Help}
}

func (k listKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.form.Next, k.form.Prev, k.form.Press},
		{k.global.Logout, k.global.Quit, k.global.Help},
	}
}

// milestoneKeys are the dashboard shortcuts.
type milestoneKeys struct {
	Change  key.Binding
	Refresh key.Binding
	Back    key.Binding
}

func defaultMilestoneKeys() milestoneKeys {
	return milestoneKeys{
		Change: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "change milestone"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc", "b"),
			key.WithHelp("esc", "back"),
		),
	}
}

type milestoneKeyMap struct {
	form      formKeys
	milestone milestoneKeys
	global    globalKeys
	up, down  key.Binding
}

func (k milestoneKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.up, k.down, k.milestone.Change, k.milestone.Refresh, k.milestone.Back, k.global.Quit}
}

func (k milestoneKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down},
		{k.form.Next, k.form.Press},
		{k.milestone.Change, k.milestone.Refresh, k.milestone.Back},
		{k.global.Logout, k.global.Quit, k.global.Help},
	}
}
