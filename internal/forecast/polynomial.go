package forecast

import (
	"fmt"
	"math"

	"github.com/theirongolddev/pnlcast/internal/linsolve"
)

// Polynomial is a least-squares polynomial fit solved through the normal
// equations.
type Polynomial struct {
	Degree int
}

// Name implements Strategy.
func (p Polynomial) Name() string { return StrategyPolynomial }

// Fit implements Strategy.
func (p Polynomial) Fit(x, y []float64) (Coefficients, error) {
	return FitPolynomial(x, y, p.Degree)
}

// Evaluate implements Strategy. Non-finite coefficients count as zero and a
// non-finite result is reported as zero. Negative values are kept.
func (p Polynomial) Evaluate(c Coefficients, t float64) float64 {
	v, _ := p.evaluate(c, t)
	return v
}

func (Polynomial) evaluate(c Coefficients, t float64) (float64, bool) {
	substituted := false
	var sum float64
	for i, ci := range c {
		if !isFinite(ci) {
			substituted = true
			continue
		}
		sum += ci * math.Pow(t, float64(i))
	}
	if !isFinite(sum) {
		return 0, true
	}
	return sum, substituted
}

// FitPolynomial fits a degree-degree polynomial to (x, y). The returned
// coefficients may contain NaN or ±Inf when the normal equations are
// singular.
func FitPolynomial(x, y []float64, degree int) (Coefficients, error) {
	if !validDegree(degree) {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidDegree, degree)
	}
	if len(x) != len(y) {
		return nil, ErrLengthMismatch
	}

	n := degree + 1
	m := make([][]float64, n)
	for i := 0; i < n; i++ {
		row := make([]float64, n+1)
		for j := 0; j < n; j++ {
			var sumX float64
			for k := range x {
				sumX += math.Pow(x[k], float64(i+j))
			}
			row[j] = sumX
		}
		var sumY float64
		for k := range x {
			sumY += math.Pow(x[k], float64(i)) * y[k]
		}
		row[n] = sumY
		m[i] = row
	}

	coeffs, err := linsolve.Solve(m, n)
	if err != nil {
		return nil, fmt.Errorf("solving normal equations: %w", err)
	}
	return Coefficients(coeffs), nil
}
