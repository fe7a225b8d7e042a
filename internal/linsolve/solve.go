// Package linsolve solves small dense linear systems by Gaussian elimination.
package linsolve

import (
	"errors"
	"math"
)

var (
	// ErrInvalidSize is returned when the requested system size is not positive.
	ErrInvalidSize = errors.New("linsolve: system size must be positive")
	// ErrShape is returned when the augmented matrix is smaller than n x (n+1).
	ErrShape = errors.New("linsolve: augmented matrix must be n x (n+1)")
)

// Solve solves A·x = b given as an n x (n+1) augmented matrix whose last
// column is b. Rows are reordered by partial pivoting on the largest absolute
// value in the pivot column.
//
// A zero pivot is not treated specially: the affected coefficients come back
// as ±Inf or NaN and callers decide what to substitute. The input matrix is
// copied and never modified.
func Solve(aug [][]float64, n int) ([]float64, error) {
	if n <= 0 {
		return nil, ErrInvalidSize
	}
	m, err := augmentedCopy(aug, n)
	if err != nil {
		return nil, err
	}

	for i := 0; i < n; i++ {
		pivot := i
		maxAbs := math.Abs(m[i][i])
		for k := i + 1; k < n; k++ {
			if v := math.Abs(m[k][i]); v > maxAbs {
				maxAbs = v
				pivot = k
			}
		}
		m[i], m[pivot] = m[pivot], m[i]

		for k := i + 1; k < n; k++ {
			c := -m[k][i] / m[i][i]
			for j := i; j <= n; j++ {
				if j == i {
					m[k][j] = 0 // eliminated slot is exactly zero
					continue
				}
				m[k][j] += c * m[i][j]
			}
		}
	}

	x := make([]float64, n)
	for i := n - 1; i >= 0; i-- {
		x[i] = m[i][n] / m[i][i]
		for k := i - 1; k >= 0; k-- {
			m[k][n] -= x[i] * m[k][i]
		}
	}
	return x, nil
}

func augmentedCopy(aug [][]float64, n int) ([][]float64, error) {
	if len(aug) < n {
		return nil, ErrShape
	}
	m := make([][]float64, n)
	for i := 0; i < n; i++ {
		if len(aug[i]) < n+1 {
			return nil, ErrShape
		}
		row := make([]float64, n+1)
		copy(row, aug[i][:n+1])
		m[i] = row
	}
	return m, nil
}
