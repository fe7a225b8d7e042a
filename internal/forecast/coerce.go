package forecast

import (
	"fmt"
	"math"
	"strings"

	"github.com/spf13/cast"
)

// Coerce converts user input into a series value. Anything that is not a
// finite number becomes 0.
func Coerce(raw any) float64 {
	if s, ok := raw.(string); ok {
		raw = strings.TrimSpace(s)
	}
	v, err := cast.ToFloat64E(raw)
	if err != nil {
		return 0
	}
	return neutral(v)
}

// CoerceAll applies Coerce to every element.
func CoerceAll[T any](raw []T) []float64 {
	out := make([]float64, len(raw))
	for i, r := range raw {
		out[i] = Coerce(r)
	}
	return out
}

// ParsePeriod converts user input into a forecast horizon. Fractional input is
// truncated toward zero; the result must be at least 1.
func ParsePeriod(raw any) (int, error) {
	if s, ok := raw.(string); ok {
		raw = strings.TrimSpace(s)
	}
	v, err := cast.ToFloat64E(raw)
	if err != nil || !isFinite(v) {
		return 0, fmt.Errorf("%w: %v", ErrInvalidPeriod, raw)
	}
	p := math.Trunc(v)
	if p < 1 || p > math.MaxInt32 {
		return 0, fmt.Errorf("%w: %v", ErrInvalidPeriod, raw)
	}
	return int(p), nil
}
