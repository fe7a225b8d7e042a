package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/pnlcast/internal/chart"
	"github.com/theirongolddev/pnlcast/internal/cli"
	"github.com/theirongolddev/pnlcast/internal/tui/theme"
)

// renderDataTab lists every period top to bottom, forecast rows included.
// Only actual rows are editable.
func (a App) renderDataTab(cw, h int) string {
	t := theme.Active
	st := a.snap.State
	p := a.snap.Payload

	colW := max((cw-4)/5, 10)
	head := lipgloss.NewStyle().Foreground(t.Accent).Bold(true).Width(colW).Align(lipgloss.Right)
	dim := lipgloss.NewStyle().Foreground(t.TextDim)

	var b strings.Builder
	b.WriteString(" ")
	b.WriteString(head.Align(lipgloss.Left).Render("Period"))
	for _, name := range []string{chart.SeriesRevenue, chart.SeriesExpenses, chart.SeriesProfit, chart.SeriesForecast} {
		b.WriteString(head.Render(name))
	}
	b.WriteString("\n ")
	b.WriteString(dim.Render(strings.Repeat("─", colW*5)))

	rows := len(p.Labels)
	visible := max(h-3, 1)
	first := min(max(a.row-visible/2, 0), max(rows-visible, 0))
	last := min(first+visible, rows)

	profit, _ := p.Find(chart.SeriesProfit)
	fc, hasForecast := p.Forecast()
	numStyle := lipgloss.NewStyle().Width(colW).Align(lipgloss.Right)

	for i := first; i < last; i++ {
		b.WriteString("\n ")
		if i < st.Len() {
			b.WriteString(a.gridCell(st, columns[0], i, 0, colW))
			b.WriteString(a.gridCell(st, columns[1], i, 1, colW))
			b.WriteString(a.gridCell(st, columns[2], i, 2, colW))
		} else {
			b.WriteString(numStyle.Align(lipgloss.Left).Foreground(t.Forecast).Render(p.Labels[i]))
			b.WriteString(numStyle.Render(""))
			b.WriteString(numStyle.Render(""))
		}

		if v, ok := profit.At(i); ok {
			b.WriteString(numStyle.Foreground(signTone(v)).Render(cli.FormatAmount(v) + " "))
		} else {
			b.WriteString(numStyle.Render(""))
		}
		if v, ok := fc.At(i); hasForecast && ok {
			b.WriteString(numStyle.Foreground(t.Forecast).Render(cli.FormatAmount(v) + " "))
		}
	}

	if first > 0 || last < rows {
		b.WriteString("\n ")
		b.WriteString(dim.Render(fmt.Sprintf("rows %d-%d of %d", first+1, last, rows)))
	}
	return b.String()
}
