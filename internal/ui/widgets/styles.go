package widgets

import "github.com/charmbracelet/lipgloss"

// Palette shared by every widget.
var (
	colorGreen  = lipgloss.AdaptiveColor{Light: "2", Dark: "10"}
	colorRed    = lipgloss.AdaptiveColor{Light: "1", Dark: "9"}
	colorYellow = lipgloss.AdaptiveColor{Light: "3", Dark: "11"}
	colorCyan   = lipgloss.AdaptiveColor{Light: "6", Dark: "14"}
	colorDim    = lipgloss.AdaptiveColor{Light: "240", Dark: "245"}
	colorAccent = lipgloss.AdaptiveColor{Light: "4", Dark: "12"}
)

var (
	greenStyle  = lipgloss.NewStyle().Foreground(colorGreen)
	redStyle    = lipgloss.NewStyle().Foreground(colorRed)
	yellowStyle = lipgloss.NewStyle().Foreground(colorYellow)
	cyanStyle   = lipgloss.NewStyle().Foreground(colorCyan)
	dimStyle    = lipgloss.NewStyle().Foreground(colorDim)
	boldStyle   = lipgloss.NewStyle().Bold(true)

	// Bold as well as red so it still stands out when colors look alike.
	overdueStyle = redStyle.Bold(true)

	focusStyle = lipgloss.NewStyle().Reverse(true)

	buttonStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorDim)
	focusedButtonStyle = buttonStyle.
				BorderForeground(colorAccent).
				Foreground(colorAccent).
				Bold(true)
)

// HexStyle returns a foreground style for a Taiga color such as "#fc8eac".
func HexStyle(color string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(ColorToHex(color)))
}

// Green renders s in the success color.
func Green(s string) string { return greenStyle.Render(s) }

// Red renders s in the failure color.
func Red(s string) string { return redStyle.Render(s) }

// Cyan renders s in the highlight color.
func Cyan(s string) string { return cyanStyle.Render(s) }

// Dim renders s de-emphasized.
func Dim(s string) string { return dimStyle.Render(s) }
