// Package forecast fits profit series and extrapolates them over a horizon.
package forecast

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Strategy names accepted by New and the config file.
const (
	StrategyPolynomial = "polynomial"
	StrategyLinear     = "linear"

	// DefaultDegree is the polynomial degree used for profit-vs-time fits.
	DefaultDegree = 2

	// MaxDegree bounds the size of the normal equations.
	MaxDegree = 10
)

var (
	ErrUnknownStrategy = errors.New("unknown forecast strategy")
	ErrInvalidDegree   = fmt.Errorf("polynomial degree must be between 0 and %d", MaxDegree)
	ErrLengthMismatch  = errors.New("series have different lengths")
	ErrTooFewPoints    = errors.New("at least 2 data points are required")
	ErrInvalidPeriod   = errors.New("forecast period must be a positive integer")
)

// Coefficients are fit coefficients in ascending power order:
// c[0] + c[1]t + c[2]t^2 + ...
type Coefficients []float64

// Finite reports whether every coefficient is a finite number.
func (c Coefficients) Finite() bool {
	for _, v := range c {
		if !isFinite(v) {
			return false
		}
	}
	return true
}

// Strategy fits a curve through (x, y) samples and evaluates it at new points.
type Strategy interface {
	Name() string
	Fit(x, y []float64) (Coefficients, error)
	Evaluate(c Coefficients, t float64) float64
}

// Names lists the available strategies.
func Names() []string {
	return []string{StrategyPolynomial, StrategyLinear}
}

// New returns the strategy registered under name. degree only applies to the
// polynomial strategy.
func New(name string, degree int) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case StrategyPolynomial, "poly", "":
		if !validDegree(degree) {
			return nil, fmt.Errorf("%w: got %d", ErrInvalidDegree, degree)
		}
		return Polynomial{Degree: degree}, nil
	case StrategyLinear, "line", "ols":
		return Linear{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
}

func validDegree(d int) bool {
	return d >= 0 && d <= MaxDegree
}

// checkedEvaluator is implemented by strategies that can tell when Evaluate
// replaced a non-finite value with zero.
type checkedEvaluator interface {
	evaluate(c Coefficients, t float64) (v float64, substituted bool)
}

// evaluate runs s.Evaluate and reports whether the value was substituted.
func evaluate(s Strategy, c Coefficients, t float64) (float64, bool) {
	if ce, ok := s.(checkedEvaluator); ok {
		return ce.evaluate(c, t)
	}
	v := s.Evaluate(c, t)
	if !isFinite(v) {
		return 0, true
	}
	return v, false
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// neutral maps undetermined values to zero.
func neutral(v float64) float64 {
	if !isFinite(v) {
		return 0
	}
	return v
}
