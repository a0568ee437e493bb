package ui

import "github.com/charmbracelet/lipgloss"

// headerHeight, statusHeight and helpHeight are the lines reserved around
// the active screen.
const (
	headerHeight = 2
	statusHeight = 1
	helpHeight   = 1
)

var (
	accentColor = lipgloss.AdaptiveColor{Light: "4", Dark: "12"}
	dimColor    = lipgloss.AdaptiveColor{Light: "240", Dark: "245"}

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accentColor)
	headerRuleStyle = lipgloss.NewStyle().Foreground(dimColor)
	titleStyle      = lipgloss.NewStyle().Bold(true).MarginBottom(1)
	labelStyle      = lipgloss.NewStyle().Foreground(dimColor)
	cursorStyle     = lipgloss.NewStyle().Foreground(accentColor).Bold(true)
	fieldStyle      = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(dimColor).
			Padding(0, 1)
	focusedFieldStyle = fieldStyle.BorderForeground(accentColor)
)
