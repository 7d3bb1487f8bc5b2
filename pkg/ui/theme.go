package ui

import "github.com/charmbracelet/lipgloss"

// Theme holds the colors and renderer used by the browser. All colors are
// adaptive so the same theme works on light and dark terminals.
type Theme struct {
	Renderer *lipgloss.Renderer

	Primary  lipgloss.AdaptiveColor
	Text     lipgloss.AdaptiveColor
	Dim      lipgloss.AdaptiveColor
	Accent   lipgloss.AdaptiveColor
	Selected lipgloss.AdaptiveColor
}

// DefaultTheme returns the standard arbor theme for the given renderer.
func DefaultTheme(r *lipgloss.Renderer) Theme {
	return Theme{
		Renderer: r,
		Primary:  lipgloss.AdaptiveColor{Light: "#5A56E0", Dark: "#7D79F6"},
		Text:     lipgloss.AdaptiveColor{Light: "#1A1A1A", Dark: "#E8E8E8"},
		Dim:      lipgloss.AdaptiveColor{Light: "#9B9B9B", Dark: "#626262"},
		Accent:   lipgloss.AdaptiveColor{Light: "#00875F", Dark: "#2BD593"},
		Selected: lipgloss.AdaptiveColor{Light: "#DDDBFF", Dark: "#39355E"},
	}
}

// headerStyle renders the title bar.
func (t Theme) headerStyle() lipgloss.Style {
	return t.Renderer.NewStyle().Foreground(t.Primary).Bold(true)
}

// dimStyle renders secondary text.
func (t Theme) dimStyle() lipgloss.Style {
	return t.Renderer.NewStyle().Foreground(t.Dim)
}

// rowStyle renders a normal row.
func (t Theme) rowStyle() lipgloss.Style {
	return t.Renderer.NewStyle().Foreground(t.Text)
}

// selectedStyle renders the cursor row.
func (t Theme) selectedStyle() lipgloss.Style {
	return t.Renderer.NewStyle().Foreground(t.Text).Background(t.Selected).Bold(true)
}

// checkStyle renders checkbox glyphs.
func (t Theme) checkStyle() lipgloss.Style {
	return t.Renderer.NewStyle().Foreground(t.Accent)
}
