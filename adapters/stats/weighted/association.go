package weighted

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat/distuv"
)

// Correlation computes the weighted Pearson correlation
// cov(x,y)/sqrt(var(x)·var(y)) over the jointly non-missing mask.
// NaN when fewer than two valid pairs remain, the total weight is zero,
// or either variance is zero. Feed rank-transformed inputs (see Ranks)
// for a Spearman-style correlation; nothing else changes.
func Correlation(x, y, w []float64) float64 {
	var xs, ys, ws []float64
	for i := range x {
		if i >= len(y) || i >= len(w) {
			break
		}
		if math.IsNaN(x[i]) || math.IsNaN(y[i]) || math.IsNaN(w[i]) {
			continue
		}
		xs = append(xs, x[i])
		ys = append(ys, y[i])
		ws = append(ws, w[i])
	}
	if len(xs) < 2 {
		return math.NaN()
	}
	sumW := 0.0
	for _, v := range ws {
		sumW += v
	}
	if sumW == 0 {
		return math.NaN()
	}
	xBar, yBar := 0.0, 0.0
	for i := range xs {
		xBar += ws[i] * xs[i]
		yBar += ws[i] * ys[i]
	}
	xBar /= sumW
	yBar /= sumW
	cov, varX, varY := 0.0, 0.0, 0.0
	for i := range xs {
		dx := xs[i] - xBar
		dy := ys[i] - yBar
		cov += ws[i] * dx * dy
		varX += ws[i] * dx * dx
		varY += ws[i] * dy * dy
	}
	cov /= sumW
	varX /= sumW
	varY /= sumW
	if varX <= 0 || varY <= 0 {
		return math.NaN()
	}
	r := cov / math.Sqrt(varX*varY)
	// Clamp floating-point spill past ±1.
	return math.Max(-1, math.Min(1, r))
}

// Regression holds the result of a simple weighted least-squares fit.
// All fields are NaN when the fit is undefined.
type Regression struct {
	Slope     float64
	Intercept float64
	R         float64
	PValue    float64
	NEff      float64
}

func undefinedRegression() Regression {
	nan := math.NaN()
	return Regression{Slope: nan, Intercept: nan, R: nan, PValue: nan, NEff: nan}
}

// LinearRegression fits y = intercept + slope·x by weighted least squares on
// centered sums. Requires at least three jointly valid observations and
// positive Sxx and Syy, else every field is NaN.
//
// Significance uses the effective sample size rather than the raw count:
// σ² = SSE/(n_eff−2), se = sqrt(σ²/Sxx), and a two-sided Student-t p-value
// with n_eff−2 degrees of freedom. This deliberately discounts unequal
// weighting. The p-value is NaN when n_eff ≤ 2 or the slope's standard
// error is non-positive.
func LinearRegression(x, y, w []float64) Regression {
	var xs, ys, ws []float64
	for i := range x {
		if i >= len(y) || i >= len(w) {
			break
		}
		if math.IsNaN(x[i]) || math.IsNaN(y[i]) || math.IsNaN(w[i]) {
			continue
		}
		xs = append(xs, x[i])
		ys = append(ys, y[i])
		ws = append(ws, w[i])
	}
	if len(xs) < 3 {
		return undefinedRegression()
	}
	sumW := 0.0
	for _, v := range ws {
		sumW += v
	}
	if sumW == 0 {
		return undefinedRegression()
	}
	xBar, yBar := 0.0, 0.0
	for i := range xs {
		xBar += ws[i] * xs[i]
		yBar += ws[i] * ys[i]
	}
	xBar /= sumW
	yBar /= sumW
	sxx, sxy, syy := 0.0, 0.0, 0.0
	for i := range xs {
		dx := xs[i] - xBar
		dy := ys[i] - yBar
		sxx += ws[i] * dx * dx
		sxy += ws[i] * dx * dy
		syy += ws[i] * dy * dy
	}
	if sxx == 0 || syy == 0 {
		return undefinedRegression()
	}
	slope := sxy / sxx
	intercept := yBar - slope*xBar
	r := sxy / math.Sqrt(sxx*syy)

	nEff := EffectiveN(ws)
	p := math.NaN()
	if nEff > 2 {
		sse := 0.0
		for i := range xs {
			resid := ys[i] - (intercept + slope*xs[i])
			sse += ws[i] * resid * resid
		}
		// Residuals within floating-point noise of zero mean a perfect fit;
		// the t statistic is undefined there, not infinite.
		if sse <= syy*1e-12 {
			sse = 0
		}
		sigma2 := sse / (nEff - 2)
		seSlope := math.Sqrt(sigma2 / sxx)
		if seSlope > 0 && !math.IsNaN(seSlope) {
			t := slope / seSlope
			dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: nEff - 2}
			p = 2 * (1 - dist.CDF(math.Abs(t)))
		}
	}
	return Regression{Slope: slope, Intercept: intercept, R: r, PValue: p, NEff: nEff}
}

// Ranks converts values to average ranks with proper tie handling. Missing
// entries stay NaN and do not consume a rank, so ranked columns can go
// straight into Correlation for a weighted Spearman.
func Ranks(data []float64) []float64 {
	type pair struct {
		value float64
		index int
	}
	var pairs []pair
	for i, v := range data {
		if !math.IsNaN(v) {
			pairs = append(pairs, pair{value: v, index: i})
		}
	}
	sort.Slice(pairs, func(i, j int) bool {
		return pairs[i].value < pairs[j].value
	})

	ranks := make([]float64, len(data))
	for i := range ranks {
		ranks[i] = math.NaN()
	}
	i := 0
	for i < len(pairs) {
		j := i + 1
		for j < len(pairs) && pairs[j].value == pairs[i].value {
			j++
		}
		avgRank := float64(i+1) + float64(j-i-1)/2.0
		for k := i; k < j; k++ {
			ranks[pairs[k].index] = avgRank
		}
		i = j
	}
	return ranks
}
