// Package widgets renders the pieces of the terminal UI. Widgets are plain
// values rendered to strings; interactive ones emit signals on a bus.
package widgets

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/smileynet/taigaterm/internal/signals"
)

// Button is a focusable label that emits signals.Click when pressed.
// Value carries whatever the button stands for (a project, a milestone).
type Button[T any] struct {
	Label string
	Value T

	bus *signals.Bus
}

// NewButton creates a button emitting on bus (signals.Default when nil).
func NewButton[T any](label string, value T, bus *signals.Bus) *Button[T] {
	if bus == nil {
		bus = signals.Default
	}
	return &Button[T]{Label: label, Value: value, bus: bus}
}

// Press emits signals.Click with the button as source.
func (b *Button[T]) Press() {
	b.bus.Emit(b, signals.Click)
}

// View renders the button, highlighted when focused.
func (b *Button[T]) View(focused bool) string {
	if focused {
		return focusedButtonStyle.Render(b.Label)
	}
	return buttonStyle.Render(b.Label)
}

// ListText renders s truncated to width (no limit when width <= 0).
func ListText(s string, width int) string {
	if width <= 0 {
		return s
	}
	return ansi.Truncate(s, width, "…")
}

// Semaphore thresholds as a fraction of the maximum.
const (
	semaphoreLow  = 1.0 / 3
	semaphoreHigh = 2.0 / 3
)

// SemaphorePercentText renders value colored by how close it is to max:
// green near max, red near zero, yellow in between. invert swaps green and
// red, for quantities where less is better.
func SemaphorePercentText(value, max float64, invert bool) string {
	text := FormatNumber(value)
	ratio := 0.0
	if max > 0 {
		ratio = value / max
	}
	good, bad := greenStyle, redStyle
	if invert {
		good, bad = redStyle, greenStyle
	}
	switch {
	case ratio >= semaphoreHigh:
		return good.Render(text)
	case ratio <= semaphoreLow:
		return bad.Render(text)
	default:
		return yellowStyle.Render(text)
	}
}

// FormatNumber prints whole numbers without decimals and others with one.
func FormatNumber(v float64) string {
	if v == float64(int64(v)) {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', 1, 64)
}

// ProgressBar renders completed/total as a bar of the given width.
// A zero total renders an empty bar.
func ProgressBar(completed, total float64, width int) string {
	if width < 8 {
		width = 8
	}
	bar := progress.New(
		progress.WithSolidFill(string(colorGreen.Dark)),
		progress.WithWidth(width),
	)
	percent := 0.0
	if total > 0 {
		percent = completed / total
	}
	return bar.ViewAs(percent)
}

// LineBox draws a rounded border around body with title set in the top edge.
// width is the outer width; body is wrapped to fit.
func LineBox(title, body string, width int) string {
	border := lipgloss.RoundedBorder()
	style := lipgloss.NewStyle().
		Border(border).
		BorderTop(false).
		BorderForeground(colorDim)
	if width > 2 {
		style = style.Width(width - 2)
	}
	box := style.Render(body)

	outer := lipgloss.Width(box)
	label := ""
	if title != "" {
		label = border.Top + " " + title + " "
	}
	if ansi.StringWidth(label) > outer-2 {
		label = ansi.Truncate(label, max(outer-2, 0), "")
	}
	fill := max(outer-2-ansi.StringWidth(label), 0)
	top := dimStyle.Render(border.TopLeft) + boldStyle.Render(label) +
		dimStyle.Render(strings.Repeat(border.Top, fill)+border.TopRight)
	return top + "\n" + box
}

// labeled stacks a caption over a value.
func labeled(caption, value string, width int) string {
	style := lipgloss.NewStyle().Width(width)
	return lipgloss.JoinVertical(lipgloss.Left, style.Render(caption), style.Render(value))
}

// cell renders s left-aligned in exactly width columns.
func cell(s string, width int) string {
	if width <= 0 {
		return ""
	}
	s = ansi.Truncate(s, width, "…")
	return s + strings.Repeat(" ", max(width-ansi.StringWidth(s), 0))
}
