package chart

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/theirongolddev/pnlcast/internal/forecast"
)

var months = []string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// Project turns historical series and a forecast result into a payload.
//
// The forecast trace starts at the last historical index with the last actual
// profit so the two lines join, then carries the predictions under newly
// generated labels. A payload is built from scratch on every call; there is
// exactly one forecast trace and its length is always period+1.
func Project(labels []string, revenue, expenses []float64, res forecast.Result) Payload {
	profit := forecast.Profit(revenue, expenses)
	n := len(profit)

	history := HistoryLabels(labels, n)
	period := len(res.Values)

	p := Payload{
		Labels: make([]string, 0, n+period),
		Series: []Series{
			{Name: SeriesRevenue, Values: clone(revenue[:n])},
			{Name: SeriesExpenses, Values: clone(expenses[:n])},
			{Name: SeriesProfit, Values: profit},
		},
	}
	p.Labels = append(p.Labels, history...)

	if n == 0 {
		// Nothing to anchor the forecast to.
		p.Labels = append(p.Labels, ContinueLabels("", period)...)
		p.Series = append(p.Series, Series{
			Name:     SeriesForecast,
			Values:   clone(res.Values),
			Forecast: true,
		})
		return p
	}

	p.Labels = append(p.Labels, ContinueLabels(history[n-1], period)...)
	fc := make([]float64, 0, period+1)
	fc = append(fc, profit[n-1])
	fc = append(fc, res.Values...)
	p.Series = append(p.Series, Series{
		Name:     SeriesForecast,
		Offset:   n - 1,
		Values:   fc,
		Forecast: true,
	})
	return p
}

// HistoryLabels returns labels when it has exactly n entries, otherwise the
// labels "1".."n".
func HistoryLabels(labels []string, n int) []string {
	if len(labels) == n {
		return clone(labels)
	}
	out := make([]string, n)
	for i := range out {
		out[i] = strconv.Itoa(i + 1)
	}
	return out
}

// ContinueLabels generates count labels following last. Integer labels count
// up, English month names continue through the calendar (keeping the
// abbreviation and case style), and anything else becomes "last+k".
func ContinueLabels(last string, count int) []string {
	if count <= 0 {
		return nil
	}
	out := make([]string, count)
	trimmed := strings.TrimSpace(last)

	if v, err := strconv.Atoi(trimmed); err == nil {
		for i := range out {
			out[i] = strconv.Itoa(v + i + 1)
		}
		return out
	}

	if idx, abbrev, upper := monthIndex(trimmed); idx >= 0 {
		for i := range out {
			name := months[(idx+i+1)%12]
			if abbrev {
				name = name[:3]
			}
			if upper {
				name = strings.ToUpper(name)
			}
			out[i] = name
		}
		return out
	}

	if trimmed == "" {
		for i := range out {
			out[i] = fmt.Sprintf("+%d", i+1)
		}
		return out
	}
	for i := range out {
		out[i] = fmt.Sprintf("%s+%d", trimmed, i+1)
	}
	return out
}

func monthIndex(label string) (idx int, abbrev, upper bool) {
	if label == "" {
		return -1, false, false
	}
	upper = label == strings.ToUpper(label)
	for i, m := range months {
		switch {
		case strings.EqualFold(label, m):
			return i, false, upper
		case strings.EqualFold(label, m[:3]):
			return i, true, upper
		}
	}
	return -1, false, false
}

func clone[T any](s []T) []T {
	out := make([]T, len(s))
	copy(out, s)
	return out
}
