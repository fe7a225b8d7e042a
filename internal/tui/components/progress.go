package components

import (
	"fmt"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/pnlcast/internal/tui/theme"
)

// ColorForFit returns green/yellow/red for a goodness-of-fit in [0, 1].
func ColorForFit(r2 float64) lipgloss.Color {
	t := theme.Active
	switch {
	case r2 >= 0.9:
		return t.Green
	case r2 >= 0.5:
		return t.Yellow
	default:
		return t.Red
	}
}

// FitGauge renders R² as a labeled bar. Values outside [0, 1] are clamped
// for the bar but printed as computed.
func FitGauge(label string, r2 float64, labelW, barWidth int) string {
	t := theme.Active

	pct := min(max(r2, 0), 1)
	if !finite(r2) {
		pct = 0
	}
	color := ColorForFit(pct)

	bar := progress.New(
		progress.WithSolidFill(string(color)),
		progress.WithWidth(barWidth),
		progress.WithoutPercentage(),
	)
	bar.EmptyColor = string(t.TextDim)

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(color).Background(t.Surface).Bold(true)
	spaceStyle := lipgloss.NewStyle().Background(t.Surface)

	return labelStyle.Render(fmt.Sprintf("%-*s", labelW, label)) +
		spaceStyle.Render(" ") +
		bar.ViewAs(pct) +
		spaceStyle.Render(" ") +
		valueStyle.Render(fmt.Sprintf("%.3f", r2))
}
