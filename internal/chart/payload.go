// Package chart builds the rendering payload handed to chart sinks.
package chart

import (
	"encoding/json"
	"math"
)

// Series names used in every payload.
const (
	SeriesRevenue  = "Revenue"
	SeriesExpenses = "Expenses"
	SeriesProfit   = "Profit"
	SeriesForecast = "Forecast"
)

// Series is one named trace. Values[i] belongs to Labels[Offset+i].
type Series struct {
	Name     string
	Offset   int
	Values   []float64
	Forecast bool
}

// At returns the value aligned with label index i.
func (s Series) At(i int) (float64, bool) {
	j := i - s.Offset
	if j < 0 || j >= len(s.Values) {
		return 0, false
	}
	return s.Values[j], true
}

// End returns the label index just past the last value.
func (s Series) End() int {
	return s.Offset + len(s.Values)
}

type seriesJSON struct {
	Name     string     `json:"name"`
	Offset   int        `json:"offset"`
	Values   []*float64 `json:"values"`
	Forecast bool       `json:"forecast,omitempty"`
}

// MarshalJSON encodes non-finite values as null.
func (s Series) MarshalJSON() ([]byte, error) {
	out := seriesJSON{
		Name:     s.Name,
		Offset:   s.Offset,
		Values:   make([]*float64, len(s.Values)),
		Forecast: s.Forecast,
	}
	for i, v := range s.Values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		v := v
		out.Values[i] = &v
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes null values as NaN.
func (s *Series) UnmarshalJSON(data []byte) error {
	var in seriesJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	s.Name = in.Name
	s.Offset = in.Offset
	s.Forecast = in.Forecast
	s.Values = make([]float64, len(in.Values))
	for i, v := range in.Values {
		if v == nil {
			s.Values[i] = math.NaN()
			continue
		}
		s.Values[i] = *v
	}
	return nil
}

// Payload is everything a chart sink needs to redraw.
type Payload struct {
	Seq    uint64   `json:"seq"`
	Labels []string `json:"labels"`
	Series []Series `json:"series"`
}

// Find returns the series with the given name.
func (p Payload) Find(name string) (Series, bool) {
	for _, s := range p.Series {
		if s.Name == name {
			return s, true
		}
	}
	return Series{}, false
}

// Forecast returns the forecast trace.
func (p Payload) Forecast() (Series, bool) {
	for _, s := range p.Series {
		if s.Forecast {
			return s, true
		}
	}
	return Series{}, false
}

// Bounds returns the smallest and largest finite value across all series.
// ok is false when there are none.
func (p Payload) Bounds() (lo, hi float64, ok bool) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, s := range p.Series {
		for _, v := range s.Values {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
			ok = true
		}
	}
	if !ok {
		return 0, 0, false
	}
	return lo, hi, true
}
