package components

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/pnlcast/internal/chart"
	"github.com/theirongolddev/pnlcast/internal/tui/theme"
)

// Sparkline renders a unicode sparkline scaled between the smallest and
// largest finite value. Undefined values leave a gap.
func Sparkline(values []float64, color lipgloss.Color) string {
	if len(values) == 0 {
		return ""
	}
	t := theme.Active

	blocks := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		if !finite(v) {
			continue
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}

	style := lipgloss.NewStyle().Foreground(color).Background(t.Surface)

	var buf strings.Builder
	buf.Grow(len(values) * 4)
	for _, v := range values {
		if !finite(v) {
			buf.WriteRune(' ')
			continue
		}
		idx := 0
		if hi > lo {
			idx = int((v - lo) / (hi - lo) * float64(len(blocks)-1))
		}
		idx = min(max(idx, 0), len(blocks)-1)
		buf.WriteRune(blocks[idx])
	}

	return style.Render(buf.String())
}

// cell is one plotted character of a line chart.
type cell struct {
	r     rune
	color lipgloss.Color
}

// LineChart plots every series of a payload on a shared value axis. The
// forecast trace is drawn last with its own marker so it stays visible where
// it meets the profit line. height is the plot height excluding the axis,
// the label row and the legend.
func LineChart(p chart.Payload, width, height int) string {
	t := theme.Active
	dim := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	lo, hi, ok := p.Bounds()
	if !ok || len(p.Labels) == 0 {
		return dim.Render("no data")
	}
	if width < 20 || height < 3 {
		return Sparkline(profitTrend(p), t.Profit)
	}

	// The zero line is always on the axis.
	lo = math.Min(lo, 0)
	hi = math.Max(hi, 0)

	tickStep := chartTickStep(hi - lo)
	maxIntervals := max(height/2, 2)
	var floor, ceiling float64
	var numIntervals int
	for {
		floor = math.Floor(lo/tickStep) * tickStep
		ceiling = math.Ceil(hi/tickStep) * tickStep
		if ceiling == floor {
			ceiling += tickStep
		}
		numIntervals = int(math.Round((ceiling - floor) / tickStep))
		if numIntervals <= maxIntervals {
			break
		}
		tickStep *= 2
	}
	numIntervals = max(numIntervals, 1)

	rowsPerTick := max(height/numIntervals, 2)
	chartH := rowsPerTick*numIntervals + 1

	yLabelW := 4
	tickLabels := make(map[int]string)
	for i := 0; i <= numIntervals; i++ {
		lbl := formatChartLabel(floor + tickStep*float64(i))
		tickLabels[i*rowsPerTick] = lbl
		yLabelW = max(yLabelW, len(lbl)+1)
	}

	chartW := max(width-yLabelW-1, 5)
	n := len(p.Labels)

	col := func(i int) int {
		if n <= 1 {
			return 0
		}
		return i * (chartW - 1) / (n - 1)
	}
	row := func(v float64) int {
		r := int(math.Round((v - floor) / (ceiling - floor) * float64(chartH-1)))
		return min(max(r, 0), chartH-1)
	}

	grid := make([][]cell, chartH)
	for r := range grid {
		grid[r] = make([]cell, chartW)
	}

	if floor < 0 {
		zr := row(0)
		for c := range grid[zr] {
			grid[zr][c] = cell{'┄', t.TextDim}
		}
	}

	for _, s := range orderedSeries(p) {
		color := t.Series(s.Name)
		marker := '●'
		if s.Forecast {
			marker = '◆'
		}
		for i := s.Offset; i < s.End(); i++ {
			v, _ := s.At(i)
			if !finite(v) {
				continue
			}
			if next, ok := s.At(i + 1); ok && finite(next) {
				x0, x1 := col(i), col(i+1)
				for c := x0 + 1; c < x1; c++ {
					frac := float64(c-x0) / float64(x1-x0)
					grid[row(v+(next-v)*frac)][c] = cell{'·', color}
				}
			}
			grid[row(v)][col(i)] = cell{marker, color}
		}
	}

	var b strings.Builder
	for r := chartH - 1; r >= 0; r-- {
		b.WriteString(dim.Render(fmt.Sprintf("%*s", yLabelW, tickLabels[r])))
		if _, tick := tickLabels[r]; tick {
			b.WriteString(dim.Render("┤"))
		} else {
			b.WriteString(dim.Render("│"))
		}
		writeCells(&b, grid[r], t.Surface)
		b.WriteString("\n")
	}

	b.WriteString(dim.Render(strings.Repeat(" ", yLabelW)))
	b.WriteString(dim.Render("└" + strings.Repeat("─", chartW)))
	b.WriteString("\n")
	b.WriteString(dim.Render(strings.Repeat(" ", yLabelW+1)))
	b.WriteString(dim.Render(strings.TrimRight(axisLabels(p.Labels, chartW, col), " ")))
	b.WriteString("\n")
	b.WriteString(Legend(p))

	return b.String()
}

// Legend lists the series of a payload with their markers.
func Legend(p chart.Payload) string {
	t := theme.Active
	sp := lipgloss.NewStyle().Background(t.Surface)
	label := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	var parts []string
	for _, s := range orderedSeries(p) {
		marker := "●"
		if s.Forecast {
			marker = "◆"
		}
		mark := lipgloss.NewStyle().Foreground(t.Series(s.Name)).Background(t.Surface).Render(marker)
		parts = append(parts, mark+sp.Render(" ")+label.Render(s.Name))
	}
	return strings.Join(parts, sp.Render("   "))
}

// orderedSeries puts the forecast last so it is drawn on top.
func orderedSeries(p chart.Payload) []chart.Series {
	out := make([]chart.Series, 0, len(p.Series))
	var fc []chart.Series
	for _, s := range p.Series {
		if s.Forecast {
			fc = append(fc, s)
			continue
		}
		out = append(out, s)
	}
	return append(out, fc...)
}

// writeCells renders a grid row, batching runs of the same color.
func writeCells(b *strings.Builder, cells []cell, bg lipgloss.Color) {
	var run strings.Builder
	var runColor lipgloss.Color
	flush := func() {
		if run.Len() == 0 {
			return
		}
		b.WriteString(lipgloss.NewStyle().Foreground(runColor).Background(bg).Render(run.String()))
		run.Reset()
	}
	for _, c := range cells {
		r := c.r
		if r == 0 {
			r = ' '
		}
		if c.color != runColor {
			flush()
			runColor = c.color
		}
		run.WriteRune(r)
	}
	flush()
}

// axisLabels places x labels under their columns, skipping any that would
// collide with the previous one. The last label is always shown.
func axisLabels(labels []string, width int, col func(int) int) string {
	buf := []rune(strings.Repeat(" ", width))
	n := len(labels)

	place := func(i int) (int, int, bool) {
		lbl := []rune(labels[i])
		pos := col(i)
		if pos+len(lbl) > width {
			pos = width - len(lbl)
		}
		if pos < 0 {
			return 0, 0, false
		}
		return pos, pos + len(lbl), true
	}

	lastEnd := -1
	for i := 0; i < n; i++ {
		pos, end, ok := place(i)
		if !ok || pos <= lastEnd {
			continue
		}
		if i < n-1 {
			// Keep room for the final label.
			if lpos, _, lok := place(n - 1); lok && end >= lpos {
				continue
			}
		}
		copy(buf[pos:end], []rune(labels[i]))
		lastEnd = end
	}
	return string(buf)
}

// profitTrend joins actual profit with the forecast beyond it.
func profitTrend(p chart.Payload) []float64 {
	profit, ok := p.Find(chart.SeriesProfit)
	if !ok {
		return nil
	}
	out := append([]float64(nil), profit.Values...)
	if fc, ok := p.Forecast(); ok {
		for i := profit.End(); i < fc.End(); i++ {
			v, _ := fc.At(i)
			out = append(out, v)
		}
	}
	return out
}

// chartTickStep computes a nice tick interval targeting ~5 ticks.
func chartTickStep(span float64) float64 {
	if span <= 0 || !finite(span) {
		return 1
	}
	rough := span / 5
	exp := math.Floor(math.Log10(rough))
	base := math.Pow(10, exp)
	frac := rough / base

	switch {
	case frac < 1.5:
		return base
	case frac < 3.5:
		return 2 * base
	default:
		return 5 * base
	}
}

func formatChartLabel(v float64) string {
	if v < 0 {
		return "-" + formatChartLabel(-v)
	}
	switch {
	case v >= 1e9:
		if v == math.Trunc(v/1e9)*1e9 {
			return fmt.Sprintf("%.0fB", v/1e9)
		}
		return fmt.Sprintf("%.1fB", v/1e9)
	case v >= 1e6:
		if v == math.Trunc(v/1e6)*1e6 {
			return fmt.Sprintf("%.0fM", v/1e6)
		}
		return fmt.Sprintf("%.1fM", v/1e6)
	case v >= 1e3:
		if v == math.Trunc(v/1e3)*1e3 {
			return fmt.Sprintf("%.0fk", v/1e3)
		}
		return fmt.Sprintf("%.1fk", v/1e3)
	case v >= 1 || v == 0:
		return fmt.Sprintf("%.0f", v)
	default:
		return fmt.Sprintf("%.2f", v)
	}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
