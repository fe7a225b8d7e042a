package forecast

import "math"

// Linear is an ordinary least-squares line. Its predictions never go below
// zero.
type Linear struct{}

// Name implements Strategy.
func (Linear) Name() string { return StrategyLinear }

// Fit implements Strategy. The coefficients are [intercept, slope].
func (Linear) Fit(x, y []float64) (Coefficients, error) {
	slope, intercept, err := FitLinear(x, y)
	if err != nil {
		return nil, err
	}
	return Coefficients{intercept, slope}, nil
}

// Evaluate implements Strategy. Losses are clamped to zero.
func (l Linear) Evaluate(c Coefficients, t float64) float64 {
	v, _ := l.evaluate(c, t)
	return v
}

func (l Linear) evaluate(c Coefficients, t float64) (float64, bool) {
	slope, intercept := l.Line(c)
	v := slope*t + intercept
	if !isFinite(v) {
		return 0, true
	}
	return max(v, 0), false
}

// Line unpacks coefficients produced by Fit into slope and intercept.
func (Linear) Line(c Coefficients) (slope, intercept float64) {
	if len(c) > 0 {
		intercept = c[0]
	}
	if len(c) > 1 {
		slope = c[1]
	}
	return slope, intercept
}

// FitLinear computes slope and intercept for y = slope*x + intercept. When
// every x is the same the slope is zero and the intercept is the mean of y.
func FitLinear(x, y []float64) (slope, intercept float64, err error) {
	if len(x) != len(y) {
		return 0, 0, ErrLengthMismatch
	}
	n := float64(len(x))
	if n == 0 {
		return 0, 0, ErrTooFewPoints
	}

	var sumX, sumY, sumXY, sumX2 float64
	for i := range x {
		sumX += x[i]
		sumY += y[i]
		sumXY += x[i] * y[i]
		sumX2 += x[i] * x[i]
	}

	denom := n*sumX2 - sumX*sumX
	if math.Abs(denom) < 1e-10 {
		return 0, sumY / n, nil
	}

	slope = (n*sumXY - sumX*sumY) / denom
	intercept = (sumY - slope*sumX) / n
	return slope, intercept, nil
}
