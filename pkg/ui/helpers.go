package ui

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// truncate shortens s to at most maxWidth terminal cells, appending an
// ellipsis when something was cut. Uses go-runewidth so wide characters
// count correctly.
func truncate(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= maxWidth {
		return s
	}
	if maxWidth == 1 {
		return "…"
	}
	return runewidth.Truncate(s, maxWidth-1, "") + "…"
}

// padRight pads s with spaces to exactly width cells, truncating if needed.
func padRight(s string, width int) string {
	w := runewidth.StringWidth(s)
	if w >= width {
		return truncate(s, width)
	}
	return s + strings.Repeat(" ", width-w)
}
