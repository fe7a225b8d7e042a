package chart

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/pnlcast/internal/forecast"
)

var (
	monthLabels = []string{"January", "February", "March", "April", "May", "June", "July"}
	revenue     = []float64{100, 200, 300, 400, 500, 600, 700}
	expenses    = []float64{50, 100, 150, 200, 250, 300, 350}
)

func TestProject_JoinsForecastToLastActual(t *testing.T) {
	res := forecast.Result{Period: 2, Values: []float64{400, 450}}
	p := Project(monthLabels, revenue, expenses, res)

	assert.Equal(t, []string{
		"January", "February", "March", "April", "May", "June", "July",
		"August", "September",
	}, p.Labels)

	fc, ok := p.Forecast()
	require.True(t, ok)
	assert.Equal(t, 6, fc.Offset)
	assert.Equal(t, []float64{350, 400, 450}, fc.Values)
	assert.Equal(t, len(p.Labels), fc.End())

	profit, ok := p.Find(SeriesProfit)
	require.True(t, ok)
	last, _ := profit.At(6)
	first, _ := fc.At(6)
	assert.Equal(t, last, first)
}

func TestProject_ExactlyOneForecastTrace(t *testing.T) {
	res := forecast.Run(revenue, expenses, 3, forecast.Linear{})

	var p Payload
	for i := 0; i < 5; i++ {
		p = Project(monthLabels, revenue, expenses, res)
	}

	count := 0
	for _, s := range p.Series {
		if s.Forecast {
			count++
		}
	}
	assert.Equal(t, 1, count)
	assert.Len(t, p.Series, 4)
	assert.Len(t, p.Labels, 10)
}

func TestProject_MisalignedLabelsFallBackToIndices(t *testing.T) {
	res := forecast.Result{Period: 1, Values: []float64{1}}
	p := Project([]string{"a", "b"}, []float64{3, 4, 5}, []float64{1, 1, 1}, res)
	assert.Equal(t, []string{"1", "2", "3", "4"}, p.Labels)
}

func TestProject_DegradedResultKeepsShape(t *testing.T) {
	res := forecast.Run(revenue, expenses[:3], 2, forecast.Linear{})
	require.Error(t, res.Err)

	p := Project(monthLabels[:3], revenue[:3], expenses[:3], res)
	fc, ok := p.Forecast()
	require.True(t, ok)
	require.Len(t, fc.Values, 3)
	assert.Equal(t, 150.0, fc.Values[0])
	assert.True(t, math.IsNaN(fc.Values[1]))
}

func TestProject_DoesNotAliasInput(t *testing.T) {
	rev := []float64{1, 2, 3}
	p := Project(nil, rev, []float64{0, 0, 0}, forecast.Result{Values: []float64{4}})
	p.Series[0].Values[0] = 99
	assert.Equal(t, 1.0, rev[0])
}

func TestContinueLabels(t *testing.T) {
	tests := []struct {
		last  string
		count int
		want  []string
	}{
		{"7", 3, []string{"8", "9", "10"}},
		{"November", 3, []string{"December", "January", "February"}},
		{"dec", 2, []string{"Jan", "Feb"}},
		{"MAR", 1, []string{"APR"}},
		{"Q3", 2, []string{"Q3+1", "Q3+2"}},
		{"", 2, []string{"+1", "+2"}},
		{"July", 0, nil},
	}

	for _, tt := range tests {
		got := ContinueLabels(tt.last, tt.count)
		if len(got) != len(tt.want) {
			t.Fatalf("ContinueLabels(%q, %d) = %v, want %v", tt.last, tt.count, got, tt.want)
		}
		for i := range tt.want {
			if got[i] != tt.want[i] {
				t.Fatalf("ContinueLabels(%q, %d) = %v, want %v", tt.last, tt.count, got, tt.want)
			}
		}
	}
}

func TestSeriesJSON_NonFiniteIsNull(t *testing.T) {
	s := Series{Name: SeriesForecast, Offset: 2, Values: []float64{1, math.NaN(), math.Inf(1)}, Forecast: true}
	data, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"Forecast","offset":2,"values":[1,null,null],"forecast":true}`, string(data))

	var back Series
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, 1.0, back.Values[0])
	assert.True(t, math.IsNaN(back.Values[1]))
}

func TestPayloadBounds(t *testing.T) {
	p := Payload{Series: []Series{
		{Values: []float64{3, math.NaN(), -2}},
		{Values: []float64{10}},
	}}
	lo, hi, ok := p.Bounds()
	require.True(t, ok)
	assert.Equal(t, -2.0, lo)
	assert.Equal(t, 10.0, hi)

	_, _, ok = Payload{}.Bounds()
	assert.False(t, ok)
}

func TestLatest_DropsStalePayloads(t *testing.T) {
	var drawn []uint64
	l := NewLatest(RenderFunc(func(p Payload) error {
		drawn = append(drawn, p.Seq)
		return nil
	}))

	for _, seq := range []uint64{1, 3, 2, 3, 5, 4} {
		require.NoError(t, l.Render(Payload{Seq: seq}))
	}
	assert.Equal(t, []uint64{1, 3, 5}, drawn)

	seq, ok := l.Seq()
	assert.True(t, ok)
	assert.Equal(t, uint64(5), seq)
}

func TestLatest_FailedRenderDoesNotAdvance(t *testing.T) {
	fail := true
	l := NewLatest(RenderFunc(func(Payload) error {
		if fail {
			return errors.New("sink closed")
		}
		return nil
	}))

	assert.Error(t, l.Render(Payload{Seq: 2}))
	_, ok := l.Seq()
	assert.False(t, ok)

	fail = false
	assert.NoError(t, l.Render(Payload{Seq: 2}))
}

func TestFanout_ReturnsFirstError(t *testing.T) {
	var calls int
	ok := RenderFunc(func(Payload) error { calls++; return nil })
	bad := RenderFunc(func(Payload) error { calls++; return errors.New("boom") })

	err := Fanout{ok, bad, nil, ok}.Render(Payload{})
	assert.EqualError(t, err, "boom")
	assert.Equal(t, 3, calls)
}
