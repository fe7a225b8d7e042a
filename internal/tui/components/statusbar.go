package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/pnlcast/internal/tui/theme"
)

// RenderStatusBar renders the bottom bar: key hints on the left, status on
// the right. A non-empty message replaces the hints.
func RenderStatusBar(width int, hints, message, status string) string {
	t := theme.Active

	style := lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Background(t.SurfaceHover).
		Width(width)
	msgStyle := lipgloss.NewStyle().
		Foreground(t.Orange).
		Background(t.SurfaceHover)

	left := " " + hints
	if message != "" {
		left = " " + msgStyle.Render(message)
	}
	right := status + " "

	padding := max(width-lipgloss.Width(left)-lipgloss.Width(right), 0)
	return style.Render(left + strings.Repeat(" ", padding) + right)
}
