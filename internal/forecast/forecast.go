package forecast

import (
	"encoding/json"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// Result is the outcome of a forecast run.
//
// Values always holds max(Period, 0) entries. When Err is set the input was
// unusable and every value is the undefined sentinel (see IsUndefined).
type Result struct {
	Strategy     string
	Period       int
	Values       []float64
	Coefficients Coefficients

	// RSquared is the coefficient of determination of the fit over the
	// historical profit series.
	RSquared float64

	// Degenerate is set when a non-finite coefficient or prediction was
	// replaced with zero.
	Degenerate bool

	Err error
}

// OK reports whether the result was computed from valid input.
func (r Result) OK() bool { return r.Err == nil }

// Confidence grades the fit as "high", "medium" or "low". Degraded results
// report "none".
func (r Result) Confidence() string {
	switch {
	case r.Err != nil:
		return "none"
	case r.Degenerate:
		return "low"
	case r.RSquared >= 0.9:
		return "high"
	case r.RSquared >= 0.5:
		return "medium"
	default:
		return "low"
	}
}

type resultJSON struct {
	Strategy     string     `json:"strategy"`
	Period       int        `json:"period"`
	Values       []*float64 `json:"values"`
	Coefficients []*float64 `json:"coefficients,omitempty"`
	RSquared     *float64   `json:"r_squared,omitempty"`
	Degenerate   bool       `json:"degenerate,omitempty"`
	Confidence   string     `json:"confidence"`
	Error        string     `json:"error,omitempty"`
}

// MarshalJSON encodes undefined and non-finite numbers as null.
func (r Result) MarshalJSON() ([]byte, error) {
	out := resultJSON{
		Strategy:     r.Strategy,
		Period:       r.Period,
		Values:       nullable(r.Values),
		Coefficients: nullable(r.Coefficients),
		Degenerate:   r.Degenerate,
		Confidence:   r.Confidence(),
	}
	if r.Err != nil {
		out.Error = r.Err.Error()
	} else if isFinite(r.RSquared) {
		rs := r.RSquared
		out.RSquared = &rs
	}
	return json.Marshal(out)
}

func nullable(v []float64) []*float64 {
	if v == nil {
		return nil
	}
	out := make([]*float64, len(v))
	for i := range v {
		if isFinite(v[i]) {
			out[i] = &v[i]
		}
	}
	return out
}

// Undefined returns the sentinel used for values that could not be computed.
func Undefined() float64 { return math.NaN() }

// IsUndefined reports whether v is the undefined sentinel.
func IsUndefined(v float64) bool { return math.IsNaN(v) }

// Profit returns revenue[i] - expenses[i] over the common length of both
// series. Non-finite inputs count as zero.
func Profit(revenue, expenses []float64) []float64 {
	n := min(len(revenue), len(expenses))
	profit := make([]float64, n)
	for i := 0; i < n; i++ {
		profit[i] = neutral(revenue[i]) - neutral(expenses[i])
	}
	return profit
}

// Indices returns the time indices 0..n-1.
func Indices(n int) []float64 {
	x := make([]float64, n)
	for i := range x {
		x[i] = float64(i)
	}
	return x
}

// Run forecasts profit for the next period indices after the last sample.
// It never fails: invalid input yields a sentinel-filled result with Err set.
func Run(revenue, expenses []float64, period int, s Strategy) Result {
	res := Result{Period: period}
	if s != nil {
		res.Strategy = s.Name()
	}

	switch {
	case s == nil:
		return degrade(res, ErrUnknownStrategy)
	case len(revenue) != len(expenses):
		return degrade(res, fmt.Errorf("%w: revenue has %d, expenses has %d",
			ErrLengthMismatch, len(revenue), len(expenses)))
	case len(revenue) < 2:
		return degrade(res, ErrTooFewPoints)
	case period < 1:
		return degrade(res, ErrInvalidPeriod)
	}

	profit := Profit(revenue, expenses)
	n := len(profit)
	x := Indices(n)

	coeffs, err := s.Fit(x, profit)
	if err != nil {
		return degrade(res, fmt.Errorf("fitting %s: %w", s.Name(), err))
	}
	res.Coefficients = coeffs
	res.Degenerate = !coeffs.Finite()

	fitted := make([]float64, n)
	for i, xi := range x {
		v, substituted := evaluate(s, coeffs, xi)
		fitted[i] = v
		res.Degenerate = res.Degenerate || substituted
	}
	res.RSquared = rSquared(fitted, profit)

	res.Values = make([]float64, period)
	for i := 1; i <= period; i++ {
		v, substituted := evaluate(s, coeffs, float64(n-1+i))
		res.Values[i-1] = v
		res.Degenerate = res.Degenerate || substituted
	}
	return res
}

func degrade(res Result, err error) Result {
	res.Err = err
	res.Values = make([]float64, max(res.Period, 0))
	for i := range res.Values {
		res.Values[i] = Undefined()
	}
	return res
}

// rSquared handles the flat-series case gonum leaves as NaN: a perfect fit of
// a constant series is 1, anything else 0.
func rSquared(fitted, actual []float64) float64 {
	r2 := stat.RSquaredFrom(fitted, actual, nil)
	if isFinite(r2) {
		return r2
	}
	for i := range actual {
		if math.Abs(fitted[i]-actual[i]) > 1e-9 {
			return 0
		}
	}
	return 1
}
