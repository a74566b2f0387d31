package effects

import (
	"math"

	"semsynth/domain/core"
	"semsynth/domain/params"
)

// Deriver turns main-effect and moderation parameter rows into
// dose-conditional effect curves over an evenly spaced grid.
//
// The curve is a first-order linear extrapolation with a heuristic
// CI-widening term:
//
//	dose_units = (dose − threshold) / unit_width
//	effect     = main.est + dose_units × moderation.est
//	ci_half    = 1.96 × main.se × (1 + |dose_units| × inflation)
//
// It is an approximation, not a refitted prediction interval; exported
// curves must be presented as such.
type Deriver struct {
	Grid params.DoseGrid
}

// NewDeriver creates a deriver for the given grid.
func NewDeriver(grid params.DoseGrid) *Deriver {
	return &Deriver{Grid: grid}
}

const ciZ = 1.96

// Derive produces one curve per outcome spec. Missing coefficients for one
// outcome never block its siblings: that outcome's curve carries the
// missing_coefficients status naming the absent labels (a missing standard
// error is reported as "<label>_se") and zero grid points, and derivation
// continues with the next outcome.
func (d *Deriver) Derive(t params.Table, specs []params.OutcomeSpec) []params.DoseCurve {
	curves := make([]params.DoseCurve, 0, len(specs))
	for _, spec := range specs {
		curves = append(curves, d.deriveOne(t, spec))
	}
	return curves
}

// DeriveOne derives the curve for a single outcome.
func (d *Deriver) DeriveOne(t params.Table, spec params.OutcomeSpec) params.DoseCurve {
	return d.deriveOne(t, spec)
}

func (d *Deriver) deriveOne(t params.Table, spec params.OutcomeSpec) params.DoseCurve {
	curve := params.DoseCurve{Outcome: spec.Outcome, Status: params.StatusOK}

	main, _, mainErr := EffectRow(t, spec.MainLabel)
	mod, _, modErr := EffectRow(t, spec.Moderation)

	var missing []string
	if mainErr != nil || math.IsNaN(main.Estimate) {
		missing = append(missing, spec.MainLabel.String())
	}
	if modErr != nil || math.IsNaN(mod.Estimate) {
		missing = append(missing, spec.Moderation.String())
	}
	if mainErr == nil && math.IsNaN(main.SE) {
		missing = append(missing, spec.MainLabel.String()+"_se")
	}
	if len(missing) > 0 {
		curve.Status = params.StatusMissingCoefficients
		curve.Missing = missing
		return curve
	}

	for _, dose := range d.Grid.Doses() {
		doseUnits := (dose - d.Grid.Threshold) / d.Grid.UnitWidth
		effect := main.Estimate + doseUnits*mod.Estimate
		ciHalf := ciZ * main.SE * (1 + math.Abs(doseUnits)*d.Grid.Inflation)
		curve.Points = append(curve.Points, params.DosePoint{
			Dose:    dose,
			Effect:  effect,
			CILower: effect - ciHalf,
			CIUpper: effect + ciHalf,
		})
	}
	return curve
}

// MissingLabels collects every absent label across a set of derived curves,
// deduplicated in first-seen order. Convenience for run-level validation
// blocks in exports.
func MissingLabels(curves []params.DoseCurve) []string {
	seen := make(map[string]bool)
	var out []string
	for _, c := range curves {
		for _, m := range c.Missing {
			if !seen[m] {
				seen[m] = true
				out = append(out, m)
			}
		}
	}
	return out
}

// DefaultOutcomeSpecs mirror the dissertation model's three outcomes.
func DefaultOutcomeSpecs() []params.OutcomeSpec {
	return []params.OutcomeSpec{
		{Outcome: core.OutcomeKey("distress"), MainLabel: "a1", Moderation: "a1z"},
		{Outcome: core.OutcomeKey("engagement"), MainLabel: "a2", Moderation: "a2z"},
		{Outcome: core.OutcomeKey("adjustment"), MainLabel: "c", Moderation: "cz"},
	}
}
