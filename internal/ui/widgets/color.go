package widgets

import (
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// DefaultForeground is returned for colors that cannot be parsed.
const DefaultForeground = "#ffffff"

// cssColors covers the named colors Taiga lets users pick for statuses and
// members.
var cssColors = map[string]string{
	"black":   "#000000",
	"white":   "#ffffff",
	"red":     "#ff0000",
	"green":   "#008000",
	"lime":    "#00ff00",
	"blue":    "#0000ff",
	"yellow":  "#ffff00",
	"cyan":    "#00ffff",
	"aqua":    "#00ffff",
	"magenta": "#ff00ff",
	"fuchsia": "#ff00ff",
	"gray":    "#808080",
	"grey":    "#808080",
	"silver":  "#c0c0c0",
	"maroon":  "#800000",
	"olive":   "#808000",
	"navy":    "#000080",
	"purple":  "#800080",
	"teal":    "#008080",
	"orange":  "#ffa500",
	"pink":    "#ffc0cb",
	"brown":   "#a52a2a",
	"gold":    "#ffd700",
	"violet":  "#ee82ee",
	"indigo":  "#4b0082",
}

// ColorToHex normalizes "#rgb", "#rrggbb" and CSS color names to a
// lowercase "#rrggbb". Anything else yields DefaultForeground.
func ColorToHex(color string) string {
	c := strings.ToLower(strings.TrimSpace(color))
	if hex, ok := cssColors[c]; ok {
		return hex
	}
	if len(c) == 4 && c[0] == '#' {
		c = "#" + string([]byte{c[1], c[1], c[2], c[2], c[3], c[3]})
	}
	parsed, err := colorful.Hex(c)
	if err != nil {
		return DefaultForeground
	}
	return parsed.Clamped().Hex()
}
