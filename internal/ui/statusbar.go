package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

type statusLevel int

const (
	statusNone statusLevel = iota
	statusInfo
	statusError
)

// StatusBar is the one-line notifier at the bottom of the screen. The
// latest message replaces the previous one.
type StatusBar struct {
	text  string
	level statusLevel
}

// InfoMsg shows an informational message.
func (s *StatusBar) InfoMsg(text string) {
	s.text, s.level = text, statusInfo
}

// ErrorMsg shows an error message.
func (s *StatusBar) ErrorMsg(text string) {
	s.text, s.level = text, statusError
}

// Clear removes the current message.
func (s *StatusBar) Clear() {
	s.text, s.level = "", statusNone
}

// Text returns the current message.
func (s *StatusBar) Text() string { return s.text }

// IsError reports whether the current message is an error.
func (s *StatusBar) IsError() bool { return s.level == statusError }

// View renders the bar truncated to width.
func (s *StatusBar) View(width int) string {
	if s.level == statusNone {
		return ""
	}
	style := infoStyle
	if s.level == statusError {
		style = errorStyle
	}
	text := s.text
	if width > 0 {
		text = ansi.Truncate(text, width, "…")
	}
	return style.Render(text)
}

var (
	infoStyle  = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "6", Dark: "14"})
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "1", Dark: "9"}).Bold(true)
)
