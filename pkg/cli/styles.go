package cli

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme defines the terminal color scheme.
type Theme struct {
	Primary lipgloss.Color // Main accent color
	Dim     lipgloss.Color // Dimmed/help text color
}

// DefaultTheme is the default bright green theme.
var DefaultTheme = Theme{
	Primary: lipgloss.Color("#00ff9f"),
	Dim:     lipgloss.Color("#6e7681"),
}

// Styles holds all styles derived from a theme.
type Styles struct {
	Title  lipgloss.Style
	Label  lipgloss.Style
	Border lipgloss.Style
	Help   lipgloss.Style
}

// NewStyles creates styles from a theme.
func NewStyles(t Theme) Styles {
	return Styles{
		Title:  lipgloss.NewStyle().Bold(true).Foreground(t.Primary).Padding(0, 1),
		Label:  lipgloss.NewStyle().Bold(true).Foreground(t.Primary),
		Border: lipgloss.NewStyle().Foreground(t.Primary),
		Help:   lipgloss.NewStyle().Foreground(t.Dim),
	}
}

// Rule renders a horizontal separator of the given width with an embedded
// label: ──Label──────────.
func (s Styles) Rule(label string, width int) string {
	labelText := s.Label.Render(label)
	padding := max(0, width-2-lipgloss.Width(labelText))
	return s.Border.Render("──") + labelText + s.Border.Render(strings.Repeat("─", padding))
}

// Truncate shortens s to at most width cells, appending an ellipsis when
// anything was cut. Multi-byte and wide characters are measured by cell.
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if lipgloss.Width(s) <= width {
		return s
	}
	runes := []rune(s)
	current := 0
	for i, r := range runes {
		w := lipgloss.Width(string(r))
		if current+w > width-1 {
			return string(runes[:i]) + "…"
		}
		current += w
	}
	return s
}
