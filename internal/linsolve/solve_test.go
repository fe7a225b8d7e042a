package linsolve

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestSolve_ZeroLeadingPivotSwapsRows(t *testing.T) {
	aug := [][]float64{
		{0, 1, 3},
		{1, 1, 5},
	}

	x, err := Solve(aug, 2)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, x[0], 1e-12)
	assert.InDelta(t, 3.0, x[1], 1e-12)
}

func TestSolve_KnownSystem(t *testing.T) {
	// 2x + y - z = 8, -3x - y + 2z = -11, -2x + y + 2z = -3  ->  (2, 3, -1)
	aug := [][]float64{
		{2, 1, -1, 8},
		{-3, -1, 2, -11},
		{-2, 1, 2, -3},
	}

	x, err := Solve(aug, 3)
	require.NoError(t, err)
	want := []float64{2, 3, -1}
	for i := range want {
		assert.InDelta(t, want[i], x[i], 1e-9, "x[%d]", i)
	}
}

func TestSolve_MatchesGonumReference(t *testing.T) {
	tests := []struct {
		name string
		a    [][]float64
		b    []float64
	}{
		{
			name: "diagonally dominant",
			a:    [][]float64{{10, 2, 1}, {1, 8, 3}, {2, 1, 9}},
			b:    []float64{7, -4, 6},
		},
		{
			name: "needs pivoting",
			a:    [][]float64{{1e-12, 1, 2}, {3, 4, 1}, {5, -1, 2}},
			b:    []float64{1, 2, 3},
		},
		{
			name: "normal equations for 0..6",
			a:    [][]float64{{7, 21, 91}, {21, 91, 441}, {91, 441, 2275}},
			b:    []float64{1400, 5600, 26600},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := len(tt.b)
			aug := make([][]float64, n)
			flat := make([]float64, 0, n*n)
			for i := range tt.a {
				aug[i] = append(append([]float64{}, tt.a[i]...), tt.b[i])
				flat = append(flat, tt.a[i]...)
			}

			var ref mat.VecDense
			require.NoError(t, ref.SolveVec(mat.NewDense(n, n, flat), mat.NewVecDense(n, tt.b)))

			x, err := Solve(aug, n)
			require.NoError(t, err)
			for i := 0; i < n; i++ {
				assert.InDelta(t, ref.AtVec(i), x[i], 1e-6, "x[%d]", i)
			}
		})
	}
}

func TestSolve_ZeroPivotYieldsNonFinite(t *testing.T) {
	aug := [][]float64{
		{1, 1, 2},
		{1, 1, 3},
	}

	x, err := Solve(aug, 2)
	require.NoError(t, err)

	nonFinite := 0
	for _, v := range x {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			nonFinite++
		}
	}
	if nonFinite == 0 {
		t.Fatalf("singular system solved to finite values %v", x)
	}
}

func TestSolve_InvalidSize(t *testing.T) {
	for _, n := range []int{0, -1} {
		_, err := Solve([][]float64{{1, 2}}, n)
		assert.ErrorIs(t, err, ErrInvalidSize, "n=%d", n)
	}
}

func TestSolve_Shape(t *testing.T) {
	_, err := Solve([][]float64{{1, 2}}, 2)
	assert.ErrorIs(t, err, ErrShape)

	_, err = Solve([][]float64{{1, 2}, {3}}, 2)
	assert.ErrorIs(t, err, ErrShape)
}

func TestSolve_DoesNotMutateInput(t *testing.T) {
	aug := [][]float64{
		{0, 1, 3},
		{1, 1, 5},
	}
	orig := [][]float64{
		{0, 1, 3},
		{1, 1, 5},
	}

	_, err := Solve(aug, 2)
	require.NoError(t, err)
	assert.Equal(t, orig, aug)
}
