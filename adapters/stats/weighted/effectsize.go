package weighted

import "math"

// Effect magnitude tiers.
const (
	MagnitudeNegligible = "negligible"
	MagnitudeSmall      = "small"
	MagnitudeMedium     = "medium"
	MagnitudeLarge      = "large"
)

// CohensD computes a weighted Cohen's d between two groups: the difference
// of weighted means over a pooled standard deviation.
//
// The pooled SD uses the weighted group variances but the RAW counts of
// jointly valid entries as degrees of freedom ((n1−1)s1² + (n2−1)s2²)/
// (n1+n2−2). The mixed convention is carried over from the upstream
// analysis unchanged. Zero or undefined pooled SD gives d = 0.
func CohensD(g1Vals, g1W, g2Vals, g2W []float64) float64 {
	m1 := Mean(g1Vals, g1W)
	m2 := Mean(g2Vals, g2W)
	s1 := Std(g1Vals, g1W)
	s2 := Std(g2Vals, g2W)
	n1 := float64(validPairs(g1Vals, g1W))
	n2 := float64(validPairs(g2Vals, g2W))

	pooled := math.Sqrt(((n1-1)*s1*s1 + (n2-1)*s2*s2) / (n1 + n2 - 2))
	if !(pooled > 0) {
		return 0
	}
	return (m1 - m2) / pooled
}

func validPairs(x, w []float64) int {
	n := 0
	for i := range x {
		if i >= len(w) {
			break
		}
		if !math.IsNaN(x[i]) && !math.IsNaN(w[i]) {
			n++
		}
	}
	return n
}

// InterpretEffectSize maps |d| to a magnitude tier. Direction is reported
// separately; see Direction.
func InterpretEffectSize(d float64) string {
	abs := math.Abs(d)
	switch {
	case abs < 0.10:
		return MagnitudeNegligible
	case abs < 0.30:
		return MagnitudeSmall
	case abs < 0.50:
		return MagnitudeMedium
	default:
		return MagnitudeLarge
	}
}

// Direction labels the sign of an effect.
func Direction(d float64) string {
	switch {
	case d > 0:
		return "positive"
	case d < 0:
		return "negative"
	default:
		return "none"
	}
}

// SignificantCI reports whether a confidence interval excludes zero.
// Intervals with an undefined bound are never significant.
func SignificantCI(lower, upper float64) bool {
	if math.IsNaN(lower) || math.IsNaN(upper) {
		return false
	}
	return lower > 0 || upper < 0
}
