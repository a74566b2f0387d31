package weighted

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tol = 1e-9

func TestMean_UnitWeights(t *testing.T) {
	x := []float64{1, 2, 3, 4}
	w := []float64{1, 1, 1, 1}

	assert.InDelta(t, 2.5, Mean(x, w), tol)
	assert.InDelta(t, 4.0, EffectiveN(w), tol)
	assert.InDelta(t, 1.118033988749895, Std(x, w), 1e-9)
}

func TestMean_ZeroWeightsMaskNothing(t *testing.T) {
	// Weight zero is a valid (if silent) observation, not a missing one.
	x := []float64{1, 2, 3, 4}
	w := []float64{2, 2, 0, 0}

	assert.InDelta(t, 1.5, Mean(x, w), tol)
	assert.InDelta(t, 2.0, EffectiveN(w), tol)
}

func TestMean_MatchesUnweightedUnderUniformWeights(t *testing.T) {
	x := []float64{4.2, -1.5, 0.25, 9.75, 3.5}
	w := []float64{3, 3, 3, 3, 3}

	unweightedMean := 0.0
	for _, v := range x {
		unweightedMean += v
	}
	unweightedMean /= float64(len(x))

	varSum := 0.0
	for _, v := range x {
		d := v - unweightedMean
		varSum += d * d
	}
	unweightedStd := math.Sqrt(varSum / float64(len(x)))

	assert.InDelta(t, unweightedMean, Mean(x, w), tol)
	assert.InDelta(t, unweightedStd, Std(x, w), tol)
	assert.InDelta(t, unweightedStd/math.Sqrt(5), SEM(x, w), tol)
}

func TestMean_InvariantUnderWeightRescaling(t *testing.T) {
	x := []float64{2, 4, 8, 16}
	w := []float64{0.5, 1.5, 2.0, 0.25}

	scaled := make([]float64, len(w))
	for i, v := range w {
		scaled[i] = v * 1000
	}

	assert.InDelta(t, Mean(x, w), Mean(x, scaled), tol)
}

func TestMean_PairwiseMissingExclusion(t *testing.T) {
	nan := math.NaN()
	x := []float64{1, nan, 3, 4}
	w := []float64{1, 1, nan, 1}

	// Only rows 0 and 3 survive the joint mask.
	assert.InDelta(t, 2.5, Mean(x, w), tol)
}

func TestMean_UndefinedCases(t *testing.T) {
	nan := math.NaN()

	t.Run("all missing", func(t *testing.T) {
		assert.True(t, math.IsNaN(Mean([]float64{nan, nan}, []float64{1, 1})))
	})
	t.Run("all-zero weights", func(t *testing.T) {
		assert.True(t, math.IsNaN(Mean([]float64{1, 2}, []float64{0, 0})))
	})
	t.Run("empty input", func(t *testing.T) {
		assert.True(t, math.IsNaN(Mean(nil, nil)))
	})
}

func TestEffectiveN_BoundedByValidCount(t *testing.T) {
	cases := []struct {
		name string
		w    []float64
	}{
		{"uniform", []float64{2, 2, 2, 2}},
		{"skewed", []float64{10, 1, 1, 1}},
		{"with missing", []float64{1, math.NaN(), 3, 2}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			valid := 0
			uniform := true
			var first float64
			for _, v := range tc.w {
				if math.IsNaN(v) {
					continue
				}
				if valid == 0 {
					first = v
				} else if v != first {
					uniform = false
				}
				valid++
			}
			nEff := EffectiveN(tc.w)
			require.LessOrEqual(t, nEff, float64(valid)+tol)
			require.GreaterOrEqual(t, nEff, 0.0)
			if uniform {
				assert.InDelta(t, float64(valid), nEff, tol)
			} else {
				assert.Less(t, nEff, float64(valid))
			}
		})
	}
}

func TestSEM_SingleObservation(t *testing.T) {
	x := []float64{5}
	w := []float64{1}

	// One observation: std collapses to zero, SEM stays undefined.
	assert.InDelta(t, 0.0, Std(x, w), tol)
	assert.True(t, math.IsNaN(SEM(x, w)))
}

func TestSEM_MaskedWeightsDriveEffectiveN(t *testing.T) {
	nan := math.NaN()
	x := []float64{1, 2, nan, 4}
	w := []float64{1, 1, 100, 1}

	// The huge weight sits on a missing value and must not count.
	expected := Std(x, w) / math.Sqrt(3)
	assert.InDelta(t, expected, SEM(x, w), tol)
}
