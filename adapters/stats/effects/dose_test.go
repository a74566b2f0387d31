package effects

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"semsynth/domain/params"
)

func doseTable() params.Table {
	return params.Table{
		{Label: "a1", Op: "~", LHS: "distress", RHS: "belonging", Estimate: 0.10, SE: 0.02},
		{Label: "a1z", Op: "~", LHS: "distress", RHS: "belonging_x_credits", Estimate: 0.02, SE: 0.01},
		{Label: "a2", Op: "~", LHS: "engagement", RHS: "belonging", Estimate: 0.30, SE: 0.04},
		{Label: "c", Op: "~", LHS: "adjustment", RHS: "belonging", Estimate: 0.12, SE: 0.03},
		{Label: "cz", Op: "~", LHS: "adjustment", RHS: "belonging_x_credits", Estimate: -0.01, SE: 0.005},
	}
}

func pointAt(t *testing.T, curve params.DoseCurve, dose float64) params.DosePoint {
	t.Helper()
	for _, p := range curve.Points {
		if p.Dose == dose {
			return p
		}
	}
	t.Fatalf("no point at dose %v", dose)
	return params.DosePoint{}
}

func TestDerive_LinearExtrapolation(t *testing.T) {
	d := NewDeriver(params.DefaultDoseGrid())
	spec := params.OutcomeSpec{Outcome: "distress", MainLabel: "a1", Moderation: "a1z"}

	curve := d.DeriveOne(doseTable(), spec)
	require.Equal(t, params.StatusOK, curve.Status)
	require.Len(t, curve.Points, 17)

	// Dose 10 sits 0.2 units below the 12-credit threshold, dose 20 sits
	// 0.8 units above it.
	p10 := pointAt(t, curve, 10)
	assert.InDelta(t, 0.10+(-0.2)*0.02, p10.Effect, 1e-12)
	p20 := pointAt(t, curve, 20)
	assert.InDelta(t, 0.10+0.8*0.02, p20.Effect, 1e-12)
}

func TestDerive_ThresholdAndUnitArithmetic(t *testing.T) {
	// A grid that lands exactly on the worked doses 12 and 22.
	grid := params.DoseGrid{Min: 12, Max: 22, Step: 10, Threshold: 12, UnitWidth: 10, Inflation: 0.1, Units: "credits"}
	d := NewDeriver(grid)
	spec := params.OutcomeSpec{Outcome: "distress", MainLabel: "a1", Moderation: "a1z"}

	curve := d.DeriveOne(doseTable(), spec)
	require.Equal(t, params.StatusOK, curve.Status)
	require.Len(t, curve.Points, 2)

	p12 := pointAt(t, curve, 12)
	assert.InDelta(t, 0.10, p12.Effect, 1e-12)
	// Zero dose units: the half-width is exactly 1.96 x se.
	assert.InDelta(t, 0.10-1.96*0.02, p12.CILower, 1e-12)
	assert.InDelta(t, 0.10+1.96*0.02, p12.CIUpper, 1e-12)

	p22 := pointAt(t, curve, 22)
	assert.InDelta(t, 0.12, p22.Effect, 1e-12)
	// One dose unit above threshold inflates the half-width by 10%.
	half := 1.96 * 0.02 * 1.1
	assert.InDelta(t, 0.12-half, p22.CILower, 1e-12)
	assert.InDelta(t, 0.12+half, p22.CIUpper, 1e-12)
}

func TestDerive_CIWidensAwayFromThreshold(t *testing.T) {
	d := NewDeriver(params.DefaultDoseGrid())
	spec := params.OutcomeSpec{Outcome: "adjustment", MainLabel: "c", Moderation: "cz"}

	curve := d.DeriveOne(doseTable(), spec)
	require.Equal(t, params.StatusOK, curve.Status)

	near := pointAt(t, curve, 10)
	far := pointAt(t, curve, 80)
	assert.Greater(t, far.CIUpper-far.CILower, near.CIUpper-near.CILower)
}

func TestDerive_MissingModerationSkipsOutcomeOnly(t *testing.T) {
	d := NewDeriver(params.DefaultDoseGrid())
	specs := []params.OutcomeSpec{
		{Outcome: "distress", MainLabel: "a1", Moderation: "a1z"},
		{Outcome: "engagement", MainLabel: "a2", Moderation: "a2z"},
		{Outcome: "adjustment", MainLabel: "c", Moderation: "cz"},
	}

	// The table carries a2 but not a2z.
	curves := d.Derive(doseTable(), specs)
	require.Len(t, curves, 3)

	assert.Equal(t, params.StatusOK, curves[0].Status)
	assert.NotEmpty(t, curves[0].Points)

	assert.Equal(t, params.StatusMissingCoefficients, curves[1].Status)
	assert.Equal(t, []string{"a2z"}, curves[1].Missing)
	assert.Empty(t, curves[1].Points)
	assert.False(t, curves[1].Available())

	assert.Equal(t, params.StatusOK, curves[2].Status)
	assert.NotEmpty(t, curves[2].Points)
}

func TestDerive_MissingStandardErrorReportedWithSuffix(t *testing.T) {
	tbl := params.Table{
		{Label: "a1", Op: "~", LHS: "distress", RHS: "belonging", Estimate: 0.10, SE: math.NaN()},
		{Label: "a1z", Op: "~", LHS: "distress", RHS: "belonging_x_credits", Estimate: 0.02, SE: 0.01},
	}
	d := NewDeriver(params.DefaultDoseGrid())
	curve := d.DeriveOne(tbl, params.OutcomeSpec{Outcome: "distress", MainLabel: "a1", Moderation: "a1z"})

	assert.Equal(t, params.StatusMissingCoefficients, curve.Status)
	assert.Equal(t, []string{"a1_se"}, curve.Missing)
	assert.Empty(t, curve.Points)
}

func TestDerive_EmptyTableNamesEverything(t *testing.T) {
	d := NewDeriver(params.DefaultDoseGrid())
	curve := d.DeriveOne(nil, params.OutcomeSpec{Outcome: "distress", MainLabel: "a1", Moderation: "a1z"})

	assert.Equal(t, params.StatusMissingCoefficients, curve.Status)
	assert.Equal(t, []string{"a1", "a1z"}, curve.Missing)
}

func TestMissingLabels_DeduplicatesAcrossCurves(t *testing.T) {
	curves := []params.DoseCurve{
		{Outcome: "distress", Status: params.StatusMissingCoefficients, Missing: []string{"a1", "a1_se"}},
		{Outcome: "engagement", Status: params.StatusMissingCoefficients, Missing: []string{"a1", "a2z"}},
		{Outcome: "adjustment", Status: params.StatusOK},
	}
	assert.Equal(t, []string{"a1", "a1_se", "a2z"}, MissingLabels(curves))
}

func TestDefaultDoseGrid(t *testing.T) {
	doses := params.DefaultDoseGrid().Doses()
	require.Len(t, doses, 17)
	assert.Equal(t, 0.0, doses[0])
	assert.Equal(t, 80.0, doses[16])
}
