package forecast

import (
	"encoding/json"
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ── Test helpers ────────────────────────────────────────────────────────────

var (
	sampleRevenue  = []float64{100, 200, 300, 400, 500, 600, 700}
	sampleExpenses = []float64{50, 100, 150, 200, 250, 300, 350}
)

func mustStrategy(t *testing.T, name string) Strategy {
	t.Helper()
	s, err := New(name, DefaultDegree)
	require.NoError(t, err)
	return s
}

func assertAllFinite(t *testing.T, values []float64) {
	t.Helper()
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("value[%d] = %v, want finite", i, v)
		}
	}
}

// ── Polynomial ──────────────────────────────────────────────────────────────

func TestFitPolynomial_RecoversKnownCoefficients(t *testing.T) {
	x := Indices(7)
	y := make([]float64, len(x))
	for i, xi := range x {
		y[i] = 2 + 3*xi + 4*xi*xi
	}

	c, err := FitPolynomial(x, y, 2)
	require.NoError(t, err)
	require.Len(t, c, 3)
	assert.InDelta(t, 2.0, c[0], 1e-6)
	assert.InDelta(t, 3.0, c[1], 1e-6)
	assert.InDelta(t, 4.0, c[2], 1e-6)
}

func TestFitPolynomial_DegreeIsAParameter(t *testing.T) {
	x := Indices(6)
	y := make([]float64, len(x))
	for i, xi := range x {
		y[i] = 1 - xi + 0.5*xi*xi*xi
	}

	c, err := FitPolynomial(x, y, 3)
	require.NoError(t, err)
	want := []float64{1, -1, 0, 0.5}
	require.Len(t, c, len(want))
	for i := range want {
		assert.InDelta(t, want[i], c[i], 1e-6, "c[%d]", i)
	}
}

func TestFitPolynomial_Errors(t *testing.T) {
	_, err := FitPolynomial([]float64{0, 1}, []float64{1, 2}, -1)
	assert.ErrorIs(t, err, ErrInvalidDegree)

	_, err = FitPolynomial([]float64{0, 1}, []float64{1, 2}, MaxDegree+1)
	assert.ErrorIs(t, err, ErrInvalidDegree)
	_, err = FitPolynomial([]float64{0, 1}, []float64{1, 2}, math.MaxInt)
	assert.ErrorIs(t, err, ErrInvalidDegree)

	_, err = FitPolynomial([]float64{0, 1, 2}, []float64{1, 2}, 2)
	assert.ErrorIs(t, err, ErrLengthMismatch)
}

func TestPolynomialEvaluate_SubstitutesNonFinite(t *testing.T) {
	p := Polynomial{Degree: 2}

	assert.Equal(t, 0.0, p.Evaluate(Coefficients{math.NaN(), math.NaN(), math.NaN()}, 5))
	// A non-finite coefficient counts as zero; the rest still contributes.
	assert.Equal(t, 1.0+2*3, p.Evaluate(Coefficients{1, 2, math.Inf(1)}, 3))
	assert.Equal(t, 0.0, p.Evaluate(Coefficients{math.MaxFloat64, math.MaxFloat64}, math.MaxFloat64))
}

// ── Linear ──────────────────────────────────────────────────────────────────

func TestFitLinear(t *testing.T) {
	slope, intercept, err := FitLinear(Indices(7), Profit(sampleRevenue, sampleExpenses))
	require.NoError(t, err)
	assert.InDelta(t, 50.0, slope, 1e-9)
	assert.InDelta(t, 50.0, intercept, 1e-9)
}

func TestFitLinear_IdenticalX(t *testing.T) {
	slope, intercept, err := FitLinear([]float64{3, 3, 3}, []float64{1, 2, 6})
	require.NoError(t, err)
	assert.Equal(t, 0.0, slope)
	assert.InDelta(t, 3.0, intercept, 1e-12)
}

func TestFitLinear_Errors(t *testing.T) {
	_, _, err := FitLinear(nil, nil)
	assert.ErrorIs(t, err, ErrTooFewPoints)

	_, _, err = FitLinear([]float64{1}, []float64{1, 2})
	assert.ErrorIs(t, err, ErrLengthMismatch)
}

func TestLinearCoefficientsOrder(t *testing.T) {
	var l Linear
	c, err := l.Fit([]float64{0, 1, 2}, []float64{1, 3, 5})
	require.NoError(t, err)

	slope, intercept := l.Line(c)
	assert.InDelta(t, 2.0, slope, 1e-12)
	assert.InDelta(t, 1.0, intercept, 1e-12)
	assert.InDelta(t, 1.0, c[0], 1e-12)
}

// ── Run ─────────────────────────────────────────────────────────────────────

func TestRun_LinearExample(t *testing.T) {
	res := Run(sampleRevenue, sampleExpenses, 2, mustStrategy(t, StrategyLinear))

	require.NoError(t, res.Err)
	require.Len(t, res.Values, 2)
	assert.InDelta(t, 400.0, res.Values[0], 1e-9)
	assert.InDelta(t, 450.0, res.Values[1], 1e-9)
	assert.Equal(t, "high", res.Confidence())
	assert.InDelta(t, 1.0, res.RSquared, 1e-9)
}

func TestRun_PolynomialOnLinearProfit(t *testing.T) {
	res := Run(sampleRevenue, sampleExpenses, 2, mustStrategy(t, StrategyPolynomial))

	require.NoError(t, res.Err)
	require.Len(t, res.Values, 2)
	assert.InDelta(t, 400.0, res.Values[0], 1e-6)
	assert.InDelta(t, 450.0, res.Values[1], 1e-6)
	assert.False(t, res.Degenerate)
}

func TestRun_LinearClampsLosses(t *testing.T) {
	revenue := []float64{100, 80, 60, 40, 20}
	expenses := []float64{0, 0, 0, 0, 0}

	res := Run(revenue, expenses, 3, mustStrategy(t, StrategyLinear))
	require.NoError(t, res.Err)
	for i, v := range res.Values {
		assert.GreaterOrEqual(t, v, 0.0, "value[%d]", i)
	}
	assert.Equal(t, 0.0, res.Values[1], "extrapolated -20 must clamp to 0")
	assert.Equal(t, 0.0, res.Values[2], "extrapolated -40 must clamp to 0")
}

func TestRun_PolynomialKeepsLosses(t *testing.T) {
	revenue := []float64{100, 80, 60, 40, 20}
	expenses := []float64{0, 0, 0, 0, 0}

	res := Run(revenue, expenses, 3, mustStrategy(t, StrategyPolynomial))
	require.NoError(t, res.Err)
	assert.InDelta(t, -20.0, res.Values[1], 1e-6)
	assert.InDelta(t, -40.0, res.Values[2], 1e-6)
}

func TestRun_InvalidInputDegrades(t *testing.T) {
	linear := Linear{}
	tests := []struct {
		name     string
		revenue  []float64
		expenses []float64
		period   int
		wantLen  int
		wantErr  error
	}{
		{"mismatched lengths", sampleRevenue, sampleExpenses[:6], 3, 3, ErrLengthMismatch},
		{"single point", []float64{10}, []float64{5}, 2, 2, ErrTooFewPoints},
		{"empty", nil, nil, 1, 1, ErrTooFewPoints},
		{"zero period", sampleRevenue, sampleExpenses, 0, 0, ErrInvalidPeriod},
		{"negative period", sampleRevenue, sampleExpenses, -4, 0, ErrInvalidPeriod},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Run(tt.revenue, tt.expenses, tt.period, linear)
			assert.ErrorIs(t, res.Err, tt.wantErr)
			assert.False(t, res.OK())
			assert.Equal(t, "none", res.Confidence())
			require.Len(t, res.Values, tt.wantLen)
			for _, v := range res.Values {
				assert.True(t, IsUndefined(v))
			}
		})
	}
}

func TestRun_NilStrategyDegrades(t *testing.T) {
	res := Run(sampleRevenue, sampleExpenses, 2, nil)
	assert.ErrorIs(t, res.Err, ErrUnknownStrategy)
	assert.Len(t, res.Values, 2)
}

func TestRun_SingularFitIsNeutralized(t *testing.T) {
	// Two points cannot determine a parabola: the normal equations are singular.
	res := Run([]float64{10, 20}, []float64{1, 2}, 3, Polynomial{Degree: 2})

	require.NoError(t, res.Err)
	assert.True(t, res.Degenerate)
	assert.Equal(t, "low", res.Confidence())
	require.Len(t, res.Values, 3)
	assertAllFinite(t, res.Values)
}

func TestRun_OverflowingPredictionIsDegenerate(t *testing.T) {
	// The line through (0, 0) and (1, 1e308) has finite coefficients, but its
	// value at t=2 overflows.
	res := Run([]float64{0, 1e308}, []float64{0, 0}, 1, Polynomial{Degree: 1})

	require.NoError(t, res.Err)
	require.True(t, res.Coefficients.Finite(), "coefficients %v", res.Coefficients)
	assert.Equal(t, []float64{0}, res.Values)
	assert.True(t, res.Degenerate)
}

func TestEvaluate_ReportsSubstitution(t *testing.T) {
	v, substituted := evaluate(Polynomial{Degree: 1}, Coefficients{1, 2}, 3)
	assert.Equal(t, 7.0, v)
	assert.False(t, substituted)

	v, substituted = evaluate(Polynomial{Degree: 1}, Coefficients{math.MaxFloat64, math.MaxFloat64}, 2)
	assert.Equal(t, 0.0, v)
	assert.True(t, substituted)

	v, substituted = evaluate(Linear{}, Coefficients{5, -10}, 3)
	assert.Equal(t, 0.0, v, "losses clamp without counting as a substitution")
	assert.False(t, substituted)

	v, substituted = evaluate(Linear{}, Coefficients{math.Inf(1), 1}, 3)
	assert.Equal(t, 0.0, v)
	assert.True(t, substituted)
}

func TestRun_FlatProfitIsPerfectFit(t *testing.T) {
	res := Run([]float64{5, 5, 5, 5}, []float64{5, 5, 5, 5}, 2, Linear{})
	require.NoError(t, res.Err)
	assert.Equal(t, 1.0, res.RSquared)
	assert.Equal(t, []float64{0, 0}, res.Values)
}

func TestRun_AlwaysFiniteForValidInput(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for _, name := range Names() {
		s := mustStrategy(t, name)
		for trial := 0; trial < 200; trial++ {
			n := 2 + rng.Intn(30)
			period := 1 + rng.Intn(24)
			revenue := make([]float64, n)
			expenses := make([]float64, n)
			for i := 0; i < n; i++ {
				revenue[i] = rng.Float64() * 1e4
				expenses[i] = rng.Float64() * 1e4
			}

			res := Run(revenue, expenses, period, s)
			require.NoError(t, res.Err, "%s trial %d", name, trial)
			require.Len(t, res.Values, period)
			assertAllFinite(t, res.Values)
		}
	}
}

func TestRun_DoesNotMutateInput(t *testing.T) {
	revenue := append([]float64(nil), sampleRevenue...)
	expenses := append([]float64(nil), sampleExpenses...)

	_ = Run(revenue, expenses, 4, Polynomial{Degree: 2})
	assert.Equal(t, sampleRevenue, revenue)
	assert.Equal(t, sampleExpenses, expenses)
}

func TestProfit_NonFiniteCountsAsZero(t *testing.T) {
	got := Profit([]float64{10, math.NaN(), 30}, []float64{1, 2, math.Inf(1)})
	assert.Equal(t, []float64{9, -2, 30}, got)
}

// ── Strategy registry ───────────────────────────────────────────────────────

func TestNew(t *testing.T) {
	s, err := New("Linear", 0)
	require.NoError(t, err)
	assert.Equal(t, StrategyLinear, s.Name())

	s, err = New("", 3)
	require.NoError(t, err)
	assert.Equal(t, Polynomial{Degree: 3}, s)

	_, err = New("spline", 2)
	assert.True(t, errors.Is(err, ErrUnknownStrategy))

	_, err = New(StrategyPolynomial, -1)
	assert.ErrorIs(t, err, ErrInvalidDegree)

	s, err = New(StrategyPolynomial, MaxDegree)
	require.NoError(t, err)
	assert.Equal(t, Polynomial{Degree: MaxDegree}, s)

	for _, deg := range []int{MaxDegree + 1, 200000, math.MaxInt} {
		_, err = New(StrategyPolynomial, deg)
		assert.ErrorIs(t, err, ErrInvalidDegree, "degree %d", deg)
	}
}

func TestRun_MaxDegreeStaysFinite(t *testing.T) {
	s, err := New(StrategyPolynomial, MaxDegree)
	require.NoError(t, err)

	res := Run(sampleRevenue, sampleExpenses, 3, s)
	require.NoError(t, res.Err)
	require.Len(t, res.Values, 3)
	assertAllFinite(t, res.Values)
}

func TestResultJSON(t *testing.T) {
	res := Run(sampleRevenue, sampleExpenses[:3], 2, Linear{})
	data, err := json.Marshal(res)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"values":[null,null]`)
	assert.Contains(t, string(data), `"confidence":"none"`)
	assert.Contains(t, string(data), `"error":`)

	res = Run(sampleRevenue, sampleExpenses, 2, Linear{})
	data, err = json.Marshal(res)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"strategy":"linear"`)
	assert.Contains(t, string(data), `"r_squared":`)
	assert.NotContains(t, string(data), `"error"`)
}
