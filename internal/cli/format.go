// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Undefined is printed for values that could not be computed.
const Undefined = "n/a"

// FormatAmount formats a money-like value with thousands separators and up to
// two decimals, e.g. 1234.5 -> "1,234.50", 400 -> "400".
func FormatAmount(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Undefined
	}
	neg := v < 0
	if neg {
		v = -v
	}

	whole := math.Floor(v)
	frac := v - whole
	s := FormatNumber(int64(whole))
	if cents := int64(math.Round(frac * 100)); cents > 0 {
		if cents == 100 {
			s = FormatNumber(int64(whole) + 1)
		} else {
			s += fmt.Sprintf(".%02d", cents)
		}
	}
	if neg && s != "0" {
		return "-" + s
	}
	return s
}

// FormatCompact formats a value with human-readable suffixes.
// e.g., 1234 -> "1.2K", 1234567 -> "1.2M", 1234567890 -> "1.2B"
func FormatCompact(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Undefined
	}
	abs := math.Abs(v)

	switch {
	case abs >= 1_000_000_000:
		return fmt.Sprintf("%.1fB", v/1_000_000_000)
	case abs >= 1_000_000:
		return fmt.Sprintf("%.1fM", v/1_000_000)
	case abs >= 1_000:
		return fmt.Sprintf("%.1fK", v/1_000)
	default:
		return strconv.FormatFloat(math.Round(v*10)/10, 'f', -1, 64)
	}
}

// FormatNumber adds comma separators to an integer.
// e.g., 1234567 -> "1,234,567"
func FormatNumber(n int64) string {
	if n < 0 {
		return "-" + FormatNumber(-n)
	}

	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}

	var result strings.Builder
	remainder := len(s) % 3
	if remainder > 0 {
		result.WriteString(s[:remainder])
	}
	for i := remainder; i < len(s); i += 3 {
		if result.Len() > 0 {
			result.WriteByte(',')
		}
		result.WriteString(s[i : i+3])
	}
	return result.String()
}

// FormatPercent formats a 0-1 float as a percentage string.
func FormatPercent(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Undefined
	}
	return fmt.Sprintf("%.1f%%", f*100)
}

// FormatDelta formats the change from previous to current with a sign.
func FormatDelta(current, previous float64) string {
	delta := current - previous
	if math.IsNaN(delta) || math.IsInf(delta, 0) {
		return Undefined
	}
	if delta >= 0 {
		return "+" + FormatAmount(delta)
	}
	return "-" + FormatAmount(-delta)
}
