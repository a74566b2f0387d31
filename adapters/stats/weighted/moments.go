package weighted

import "math"

// Weighted moment primitives. Every function takes an explicit weight vector
// aligned to the values; weights are relative importance only and are never
// assumed to sum to 1 or N. Missing cells (NaN in either the value or the
// weight) are excluded pairwise. Undefined results are NaN, never zero.

// Mean computes the weighted mean Σ(w·x)/Σw over the jointly non-missing
// mask. NaN when no valid pair remains or the total weight is zero.
func Mean(x, w []float64) float64 {
	sumWX, sumW := 0.0, 0.0
	n := 0
	for i := range x {
		if i >= len(w) {
			break
		}
		if math.IsNaN(x[i]) || math.IsNaN(w[i]) {
			continue
		}
		sumWX += w[i] * x[i]
		sumW += w[i]
		n++
	}
	if n == 0 || sumW == 0 {
		return math.NaN()
	}
	return sumWX / sumW
}

// Std computes the weighted population standard deviation
// sqrt(Σw·(x−mean)²/Σw). NaN when the mean is undefined.
func Std(x, w []float64) float64 {
	avg := Mean(x, w)
	if math.IsNaN(avg) {
		return math.NaN()
	}
	sumWD, sumW := 0.0, 0.0
	for i := range x {
		if i >= len(w) {
			break
		}
		if math.IsNaN(x[i]) || math.IsNaN(w[i]) {
			continue
		}
		d := x[i] - avg
		sumWD += w[i] * d * d
		sumW += w[i]
	}
	return math.Sqrt(sumWD / sumW)
}

// Variance computes the weighted population variance Σw·(x−mean)²/Σw.
func Variance(x, w []float64) float64 {
	sd := Std(x, w)
	return sd * sd
}

// EffectiveN returns Kish's effective sample size (Σw)²/Σ(w²) over the
// non-missing weights. Zero when no usable weight remains. Always at most
// the count of non-missing weights, with equality under uniform weights.
func EffectiveN(w []float64) float64 {
	sum, sumSq := 0.0, 0.0
	for _, v := range w {
		if math.IsNaN(v) {
			continue
		}
		sum += v
		sumSq += v * v
	}
	if sumSq == 0 {
		return 0
	}
	return sum * sum / sumSq
}

// SEM approximates the weighted standard error of the mean,
// Std/sqrt(n_eff), where n_eff is computed over the jointly non-missing
// mask. NaN when n_eff ≤ 1: a single observation has a defined Std of zero
// but no meaningful standard error.
func SEM(x, w []float64) float64 {
	masked := make([]float64, 0, len(w))
	for i := range x {
		if i >= len(w) {
			break
		}
		if math.IsNaN(x[i]) || math.IsNaN(w[i]) {
			continue
		}
		masked = append(masked, w[i])
	}
	nEff := EffectiveN(masked)
	if nEff <= 1 {
		return math.NaN()
	}
	return Std(x, w) / math.Sqrt(nEff)
}
