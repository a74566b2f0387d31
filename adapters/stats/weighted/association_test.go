package weighted

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCorrelation_SelfCorrelationIsOne(t *testing.T) {
	x := []float64{1, 4, 2, 8, 5}
	w := []float64{1, 2, 0.5, 1, 3}

	assert.InDelta(t, 1.0, Correlation(x, x, w), tol)
}

func TestCorrelation_Bounded(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5, 6}
	y := []float64{2, 1, 4, 3, 7, 5}
	w := []float64{1, 0.5, 2, 1, 1.5, 1}

	r := Correlation(x, y, w)
	require.False(t, math.IsNaN(r))
	assert.GreaterOrEqual(t, r, -1.0)
	assert.LessOrEqual(t, r, 1.0)
}

func TestCorrelation_UndefinedCases(t *testing.T) {
	t.Run("fewer than two pairs", func(t *testing.T) {
		r := Correlation([]float64{1}, []float64{2}, []float64{1})
		assert.True(t, math.IsNaN(r))
	})
	t.Run("zero variance", func(t *testing.T) {
		r := Correlation([]float64{3, 3, 3}, []float64{1, 2, 3}, []float64{1, 1, 1})
		assert.True(t, math.IsNaN(r))
	})
	t.Run("zero total weight", func(t *testing.T) {
		r := Correlation([]float64{1, 2, 3}, []float64{1, 2, 3}, []float64{0, 0, 0})
		assert.True(t, math.IsNaN(r))
	})
}

func TestCorrelation_RankedInputsGiveSpearman(t *testing.T) {
	// A monotonic but non-linear relationship: rank correlation is exactly 1.
	x := []float64{1, 2, 3, 4, 5}
	y := []float64{1, 8, 27, 64, 125}
	w := []float64{1, 1, 1, 1, 1}

	rho := Correlation(Ranks(x), Ranks(y), w)
	assert.InDelta(t, 1.0, rho, tol)
}

func TestLinearRegression_ExactLine(t *testing.T) {
	x := []float64{0, 1, 2, 3, 4, 5}
	y := make([]float64, len(x))
	for i, v := range x {
		y[i] = 2*v + 3
	}

	weightSets := [][]float64{
		{1, 1, 1, 1, 1, 1},
		{0.1, 2, 5, 1, 3, 0.5},
		{100, 100, 100, 100, 100, 100},
	}
	for _, w := range weightSets {
		res := LinearRegression(x, y, w)
		assert.InDelta(t, 2.0, res.Slope, 1e-9)
		assert.InDelta(t, 3.0, res.Intercept, 1e-9)
		assert.InDelta(t, 1.0, res.R, 1e-9)
		// A perfect fit has zero residual variance, so the p-value is
		// undefined rather than zero.
		assert.True(t, math.IsNaN(res.PValue))
	}
}

func TestLinearRegression_NoisyTrendIsSignificant(t *testing.T) {
	// y = 1.5x + small alternating noise over 20 points.
	var x, y, w []float64
	for i := 0; i < 20; i++ {
		noise := 0.05
		if i%2 == 0 {
			noise = -0.05
		}
		x = append(x, float64(i))
		y = append(y, 1.5*float64(i)+noise)
		w = append(w, 1)
	}

	res := LinearRegression(x, y, w)
	assert.InDelta(t, 1.5, res.Slope, 0.01)
	require.False(t, math.IsNaN(res.PValue))
	assert.Less(t, res.PValue, 0.001)
	assert.InDelta(t, 20.0, res.NEff, tol)
}

func TestLinearRegression_UndefinedCases(t *testing.T) {
	t.Run("fewer than three observations", func(t *testing.T) {
		res := LinearRegression([]float64{1, 2}, []float64{1, 2}, []float64{1, 1})
		assert.True(t, math.IsNaN(res.Slope))
		assert.True(t, math.IsNaN(res.Intercept))
		assert.True(t, math.IsNaN(res.R))
		assert.True(t, math.IsNaN(res.PValue))
	})
	t.Run("constant x", func(t *testing.T) {
		res := LinearRegression([]float64{2, 2, 2}, []float64{1, 2, 3}, []float64{1, 1, 1})
		assert.True(t, math.IsNaN(res.Slope))
	})
	t.Run("constant y", func(t *testing.T) {
		res := LinearRegression([]float64{1, 2, 3}, []float64{5, 5, 5}, []float64{1, 1, 1})
		assert.True(t, math.IsNaN(res.Slope))
	})
	t.Run("missing rows reduce below minimum", func(t *testing.T) {
		nan := math.NaN()
		res := LinearRegression([]float64{1, 2, nan}, []float64{1, nan, 3}, []float64{1, 1, 1})
		assert.True(t, math.IsNaN(res.Slope))
	})
}

func TestRanks_TiesGetAverageRank(t *testing.T) {
	ranks := Ranks([]float64{10, 20, 20, 30})
	assert.Equal(t, []float64{1, 2.5, 2.5, 4}, ranks)
}

func TestRanks_MissingStaysMissing(t *testing.T) {
	ranks := Ranks([]float64{5, math.NaN(), 1})
	assert.Equal(t, 2.0, ranks[0])
	assert.True(t, math.IsNaN(ranks[1]))
	assert.Equal(t, 1.0, ranks[2])
}
