package cli

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/theirongolddev/pnlcast/internal/chart"
	"github.com/theirongolddev/pnlcast/internal/forecast"
)

// TextRenderer draws payloads as a table plus a profit sparkline.
type TextRenderer struct {
	W     io.Writer
	Title string
}

// Render implements chart.Renderer.
func (r TextRenderer) Render(p chart.Payload) error {
	var b strings.Builder
	if r.Title != "" {
		b.WriteString(RenderTitle(r.Title))
		b.WriteString("\n\n")
	}
	b.WriteString(RenderTable(PayloadTable(p)))

	if trend := profitTrend(p); len(trend) > 0 {
		b.WriteString("\n  ")
		b.WriteString(mutedStyle.Render("Trend "))
		b.WriteString(RenderSparkline(trend))
		b.WriteString("\n")
	}

	_, err := io.WriteString(r.W, b.String())
	return err
}

// PayloadTable lays a payload out one label per row. The forecast column
// starts at the last actual row, where it repeats the actual profit.
func PayloadTable(p chart.Payload) Table {
	t := Table{Headers: []string{"Period"}}
	for _, s := range p.Series {
		t.Headers = append(t.Headers, s.Name)
	}

	for i, label := range p.Labels {
		row := []string{label}
		for _, s := range p.Series {
			v, ok := s.At(i)
			switch {
			case !ok:
				row = append(row, "")
			case s.Forecast:
				row = append(row, forecastStyle.Render(FormatAmount(v)))
			case s.Name == chart.SeriesProfit:
				row = append(row, RenderSigned(v))
			default:
				row = append(row, FormatAmount(v))
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t
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

// RenderDiagnostics summarizes how a forecast was produced.
func RenderDiagnostics(res forecast.Result) string {
	var b strings.Builder
	b.WriteString(RenderKeyValue("Strategy", res.Strategy))
	b.WriteString("\n")
	b.WriteString(RenderKeyValue("Horizon", fmt.Sprintf("%d", res.Period)))
	b.WriteString("\n")

	if res.Err != nil {
		b.WriteString(RenderKeyValue("Status", warnStyle.Render(res.Err.Error())))
		b.WriteString("\n")
		return b.String()
	}

	if len(res.Coefficients) > 0 {
		b.WriteString(RenderKeyValue("Model", FormatPolynomial(res.Coefficients)))
		b.WriteString("\n")
	}
	b.WriteString(RenderKeyValue("R²", fmt.Sprintf("%.4f", res.RSquared)))
	b.WriteString("\n")
	b.WriteString(RenderKeyValue("Confidence", res.Confidence()))
	b.WriteString("\n")
	if res.Degenerate {
		b.WriteString(RenderKeyValue("Warning", warnStyle.Render("fit was degenerate, undefined terms set to 0")))
		b.WriteString("\n")
	}
	return b.String()
}

// FormatPolynomial writes ascending-power coefficients as "y = a + bt + ct^2".
func FormatPolynomial(c forecast.Coefficients) string {
	var b strings.Builder
	b.WriteString("y = ")
	for i, v := range c {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			v = 0
		}
		if i > 0 {
			if v < 0 {
				b.WriteString(" - ")
				v = -v
			} else {
				b.WriteString(" + ")
			}
		}
		b.WriteString(trimFloat(v))
		switch i {
		case 0:
		case 1:
			b.WriteString("t")
		default:
			fmt.Fprintf(&b, "t^%d", i)
		}
	}
	return b.String()
}

func trimFloat(v float64) string {
	s := fmt.Sprintf("%.4f", v)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}
