// Package workbench holds the editable forecasting state and recomputes the
// chart payload after every edit.
package workbench

import (
	"errors"
	"fmt"
	"strings"

	"github.com/theirongolddev/pnlcast/internal/chart"
	"github.com/theirongolddev/pnlcast/internal/dataset"
	"github.com/theirongolddev/pnlcast/internal/forecast"
)

var (
	ErrIndex        = errors.New("index out of range")
	ErrUnknownField = errors.New("unknown field")
	ErrLastPoint    = errors.New("cannot drop the only data point")
)

// Field names an editable series.
type Field string

const (
	FieldRevenue  Field = "revenue"
	FieldExpenses Field = "expenses"
	FieldLabel    Field = "label"
)

// ParseField maps user input to a Field.
func ParseField(s string) (Field, error) {
	switch f := Field(strings.ToLower(strings.TrimSpace(s))); f {
	case FieldRevenue, FieldExpenses, FieldLabel:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownField, s)
}

// State is the complete input to a forecast. Values are never shared between
// states: every With* method returns a modified copy.
type State struct {
	Labels   []string  `json:"labels"`
	Revenue  []float64 `json:"revenue"`
	Expenses []float64 `json:"expenses"`
	Period   int       `json:"period"`
	Strategy string    `json:"strategy"`
	Degree   int       `json:"degree"`
}

// DefaultState is the seven-month sample with a one-step quadratic forecast.
func DefaultState() State {
	return FromDataset(dataset.Default(), forecast.StrategyPolynomial, forecast.DefaultDegree, 1)
}

// FromDataset builds a state from loaded data. A period stored in the dataset
// wins over the one passed in.
func FromDataset(d dataset.Dataset, strategy string, degree, period int) State {
	d = d.Clone()
	if d.Period > 0 {
		period = d.Period
	}
	return State{
		Labels:   d.Labels,
		Revenue:  d.Revenue,
		Expenses: d.Expenses,
		Period:   period,
		Strategy: strategy,
		Degree:   degree,
	}
}

// Clone returns a deep copy.
func (s State) Clone() State {
	s.Labels = append([]string(nil), s.Labels...)
	s.Revenue = append([]float64(nil), s.Revenue...)
	s.Expenses = append([]float64(nil), s.Expenses...)
	return s
}

// Len returns the number of rows shown in an editor.
func (s State) Len() int {
	return max(len(s.Revenue), len(s.Expenses))
}

// Label returns the label for row i, falling back to its 1-based index.
func (s State) Label(i int) string {
	if i >= 0 && i < len(s.Labels) && s.Labels[i] != "" {
		return s.Labels[i]
	}
	return fmt.Sprintf("%d", i+1)
}

// WithValue sets one cell. raw is coerced; non-numeric input becomes 0.
func (s State) WithValue(f Field, i int, raw any) (State, error) {
	next := s.Clone()
	switch f {
	case FieldRevenue:
		if i < 0 || i >= len(next.Revenue) {
			return s, fmt.Errorf("%w: revenue[%d]", ErrIndex, i)
		}
		next.Revenue[i] = forecast.Coerce(raw)
	case FieldExpenses:
		if i < 0 || i >= len(next.Expenses) {
			return s, fmt.Errorf("%w: expenses[%d]", ErrIndex, i)
		}
		next.Expenses[i] = forecast.Coerce(raw)
	case FieldLabel:
		if i < 0 || i >= s.Len() {
			return s, fmt.Errorf("%w: label[%d]", ErrIndex, i)
		}
		for len(next.Labels) < s.Len() {
			next.Labels = append(next.Labels, next.Label(len(next.Labels)))
		}
		next.Labels[i] = strings.TrimSpace(fmt.Sprint(raw))
	default:
		return s, fmt.Errorf("%w: %q", ErrUnknownField, f)
	}
	return next, nil
}

// WithPeriod sets the horizon. Invalid input leaves the state unchanged.
func (s State) WithPeriod(raw any) (State, error) {
	p, err := forecast.ParsePeriod(raw)
	if err != nil {
		return s, err
	}
	next := s.Clone()
	next.Period = p
	return next, nil
}

// WithStrategy switches the fit. degree < 0 keeps the current degree.
func (s State) WithStrategy(name string, degree int) (State, error) {
	if degree < 0 {
		degree = s.Degree
	}
	st, err := forecast.New(name, degree)
	if err != nil {
		return s, err
	}
	next := s.Clone()
	next.Strategy = st.Name()
	next.Degree = degree
	return next, nil
}

// Append adds a row. An empty label continues the existing labels.
func (s State) Append(label string, revenue, expenses any) State {
	next := s.Clone()
	n := s.Len()
	if label = strings.TrimSpace(label); label == "" {
		last := ""
		if n > 0 {
			last = next.Label(n - 1)
		}
		label = chart.ContinueLabels(last, 1)[0]
	}
	for len(next.Labels) < n {
		next.Labels = append(next.Labels, next.Label(len(next.Labels)))
	}
	next.Labels = append(next.Labels[:n], label)
	next.Revenue = append(pad(next.Revenue, n), forecast.Coerce(revenue))
	next.Expenses = append(pad(next.Expenses, n), forecast.Coerce(expenses))
	return next
}

// Drop removes the last row.
func (s State) Drop() (State, error) {
	n := s.Len()
	if n <= 1 {
		return s, ErrLastPoint
	}
	next := s.Clone()
	next.Revenue = next.Revenue[:min(len(next.Revenue), n-1)]
	next.Expenses = next.Expenses[:min(len(next.Expenses), n-1)]
	next.Labels = next.Labels[:min(len(next.Labels), n-1)]
	return next, nil
}

func pad(v []float64, n int) []float64 {
	for len(v) < n {
		v = append(v, 0)
	}
	return v
}

// Compute runs the configured strategy over s and projects the result.
// It has no side effects.
func Compute(s State) (forecast.Result, chart.Payload) {
	var res forecast.Result
	st, err := forecast.New(s.Strategy, s.Degree)
	if err != nil {
		res = forecast.Run(s.Revenue, s.Expenses, s.Period, nil)
		res.Err = err
	} else {
		res = forecast.Run(s.Revenue, s.Expenses, s.Period, st)
	}
	return res, chart.Project(s.Labels, s.Revenue, s.Expenses, res)
}
