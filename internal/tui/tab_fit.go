package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/pnlcast/internal/cli"
	"github.com/theirongolddev/pnlcast/internal/forecast"
	"github.com/theirongolddev/pnlcast/internal/tui/components"
	"github.com/theirongolddev/pnlcast/internal/tui/theme"
)

func (a App) renderFitTab(cw int) string {
	t := theme.Active
	res := a.snap.Result
	st := a.snap.State

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface).Width(12)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	warnStyle := lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface)

	line := func(k, v string) string {
		return labelStyle.Render(k) + valueStyle.Render(v) + "\n"
	}

	strategy := res.Strategy
	if strategy == forecast.StrategyPolynomial {
		strategy = fmt.Sprintf("%s, degree %d", strategy, st.Degree)
	}

	var b strings.Builder
	b.WriteString(line("Strategy", strategy))
	b.WriteString(line("Horizon", fmt.Sprintf("%d", res.Period)))
	b.WriteString(line("Periods", fmt.Sprintf("%d", st.Len())))

	if res.Err != nil {
		b.WriteString(labelStyle.Render("Status"))
		b.WriteString(warnStyle.Render(res.Err.Error()))
		b.WriteString("\n")
	} else {
		b.WriteString(line("Model", cli.FormatPolynomial(res.Coefficients)))
		b.WriteString(line("Confidence", res.Confidence()))
		b.WriteString(components.FitGauge("R²", res.RSquared, 11, max(min(cw/3, 40), 10)))
		b.WriteString("\n")
		if res.Degenerate {
			b.WriteString(warnStyle.Render("fit was degenerate, undefined terms set to 0"))
			b.WriteString("\n")
		}
	}

	widths := components.LayoutRow(cw, 2)
	model := components.ContentCard("Model", strings.TrimRight(b.String(), "\n"), widths[0])

	var fb strings.Builder
	labels := a.snap.Payload.Labels
	start := len(labels) - len(res.Values)
	if fc, ok := a.snap.Payload.Forecast(); ok {
		start = fc.End() - len(res.Values)
	}
	for i, v := range res.Values {
		label := ""
		if j := start + i; j >= 0 && j < len(labels) {
			label = labels[j]
		}
		color := t.Forecast
		if forecast.IsUndefined(v) {
			color = t.TextDim
		}
		fb.WriteString(labelStyle.Render(truncStr(label, 11)))
		fb.WriteString(lipgloss.NewStyle().Foreground(color).Background(t.Surface).Render(cli.FormatAmount(v)))
		if i < len(res.Values)-1 {
			fb.WriteString("\n")
		}
	}
	values := components.ContentCard("Forecast", fb.String(), widths[1])

	return components.CardRow([]string{model, values})
}
