package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/pnlcast/internal/chart"
	"github.com/theirongolddev/pnlcast/internal/cli"
	"github.com/theirongolddev/pnlcast/internal/tui/components"
	"github.com/theirongolddev/pnlcast/internal/tui/theme"
	"github.com/theirongolddev/pnlcast/internal/workbench"
)

const gridCellW = 10

func (a App) renderChartTab(cw, h int) string {
	cards := components.MetricCardRow(a.headlineMetrics(), cw)
	grid := a.renderStrip(cw)

	// Axis, x labels and legend sit below the plot.
	plotH := h - lipgloss.Height(cards) - lipgloss.Height(grid) - 4
	plot := components.LineChart(a.snap.Payload, cw-2, max(plotH, 3))

	return lipgloss.JoinVertical(lipgloss.Left, cards, " "+strings.ReplaceAll(plot, "\n", "\n "), "", grid)
}

func (a App) headlineMetrics() []components.Metric {
	t := theme.Active
	p := a.snap.Payload
	res := a.snap.Result

	last := components.Metric{Label: "Last profit", Value: cli.Undefined}
	if profit, ok := p.Find(chart.SeriesProfit); ok && len(profit.Values) > 0 {
		v := profit.Values[len(profit.Values)-1]
		last.Value = cli.FormatAmount(v)
		last.Tone = signTone(v)
		last.Note = p.Labels[profit.End()-1]
	}

	next := components.Metric{Label: "Next forecast", Value: cli.Undefined, Tone: t.Forecast}
	end := components.Metric{Label: "Horizon end", Value: cli.Undefined, Tone: t.Forecast}
	if len(res.Values) > 0 {
		next.Value = cli.FormatAmount(res.Values[0])
		end.Value = cli.FormatAmount(res.Values[len(res.Values)-1])
		if profit, ok := p.Find(chart.SeriesProfit); ok && len(profit.Values) > 0 {
			next.Note = cli.FormatDelta(res.Values[0], profit.Values[len(profit.Values)-1])
		}
		if fc, ok := p.Forecast(); ok && fc.End() > 0 {
			end.Note = p.Labels[fc.End()-1]
		}
	}

	fit := components.Metric{Label: "Fit", Value: res.Confidence()}
	if res.OK() {
		fit.Note = fmt.Sprintf("R² %.3f", res.RSquared)
		fit.Tone = components.ColorForFit(res.RSquared)
	} else {
		fit.Tone = t.Orange
		fit.Note = truncStr(res.Err.Error(), 24)
	}

	return []components.Metric{last, next, end, fit}
}

// renderStrip draws the editable series as rows with one column per period,
// scrolled so the cursor stays visible.
func (a App) renderStrip(cw int) string {
	t := theme.Active
	st := a.snap.State
	n := st.Len()
	if n == 0 {
		return lipgloss.NewStyle().Foreground(t.TextDim).Render("  no periods, press a to add one")
	}

	headW := 10
	visible := max((cw-headW-2)/gridCellW, 1)
	first := min(max(a.row-visible/2, 0), max(n-visible, 0))
	last := min(first+visible, n)

	head := lipgloss.NewStyle().Foreground(t.TextMuted).Width(headW)
	var b strings.Builder
	for ci, field := range columns {
		b.WriteString(" ")
		b.WriteString(head.Render(fieldTitle(field)))
		for i := first; i < last; i++ {
			b.WriteString(a.gridCell(st, field, i, ci, gridCellW))
		}
		if ci < len(columns)-1 {
			b.WriteString("\n")
		}
	}
	if first > 0 || last < n {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Foreground(t.TextDim).
			Render(fmt.Sprintf(" periods %d-%d of %d", first+1, last, n)))
	}
	return b.String()
}

// gridCell renders one editable cell, highlighted under the cursor.
func (a App) gridCell(st workbench.State, field workbench.Field, i, ci, w int) string {
	t := theme.Active

	text := ""
	if field == workbench.FieldLabel {
		text = st.Label(i)
	} else if v, ok := cellNumber(st, field, i); ok {
		text = cli.FormatCompact(v)
	}
	style := lipgloss.NewStyle().Width(w).Align(lipgloss.Right).Foreground(t.TextPrimary)
	switch field {
	case workbench.FieldLabel:
		style = style.Foreground(t.TextMuted)
		text = truncStr(text, w-1)
	case workbench.FieldRevenue:
		style = style.Foreground(t.Revenue)
	case workbench.FieldExpenses:
		style = style.Foreground(t.Expenses)
	}
	if i == a.row && ci == a.col {
		style = style.Background(t.AccentDim).Foreground(t.AccentBright).Bold(true)
	}
	return style.Render(text + " ")
}

func fieldTitle(f workbench.Field) string {
	switch f {
	case workbench.FieldLabel:
		return "Period"
	case workbench.FieldRevenue:
		return chart.SeriesRevenue
	case workbench.FieldExpenses:
		return chart.SeriesExpenses
	}
	return string(f)
}

func signTone(v float64) lipgloss.Color {
	if v < 0 {
		return theme.Active.Red
	}
	return theme.Active.Green
}
