package params

import (
	"math"

	"semsynth/domain/core"
)

// ParameterRecord is one row of the external estimate table produced by the
// SEM fit. Read-only: the pipeline never mutates these after parsing.
// Absent numeric fields are NaN.
type ParameterRecord struct {
	Label       core.PathLabel `json:"label"`
	Op          string         `json:"op"`
	LHS         string         `json:"lhs"`
	RHS         string         `json:"rhs"`
	Estimate    float64        `json:"est"`
	SE          float64        `json:"se"`
	Z           float64        `json:"z"`
	PValue      float64        `json:"pvalue"`
	CILower     float64        `json:"ci_lower"`
	CIUpper     float64        `json:"ci_upper"`
	StdEstimate float64        `json:"std_all"`
	Group       string         `json:"group,omitempty"`
	Sig         string         `json:"sig,omitempty"`
}

// OpRegression marks a directed regression path row (lavaan "~").
const OpRegression = "~"

// Table holds parameter records in file order.
type Table []ParameterRecord

// Empty reports whether the table has no rows.
func (t Table) Empty() bool { return len(t) == 0 }

// StructuralPath is a key path extracted from the estimate table, shaped for
// downstream report writers and the JSON exporter.
type StructuralPath struct {
	ID          string   `json:"id"`
	From        string   `json:"from"`
	To          string   `json:"to"`
	Estimate    *float64 `json:"estimate"`
	SE          *float64 `json:"se"`
	Z           *float64 `json:"z"`
	PValue      *float64 `json:"pvalue"`
	StdEstimate *float64 `json:"std_estimate"`
}

// EffectRecord is a derived, labeled effect with its interval and
// classification, built from parameter records or raw group contrasts.
type EffectRecord struct {
	Label       core.PathLabel `json:"label"`
	Estimate    float64        `json:"estimate"`
	CILower     float64        `json:"ci_lower"`
	CIUpper     float64        `json:"ci_upper"`
	Significant bool           `json:"significant"`
	Direction   string         `json:"direction"`
	Magnitude   string         `json:"magnitude_tier"`
}

// DosePoint is one grid point of a dose-conditional effect curve.
type DosePoint struct {
	Dose    float64 `json:"dose"`
	Effect  float64 `json:"effect"`
	CILower float64 `json:"ci_lower"`
	CIUpper float64 `json:"ci_upper"`
}

// DeriveStatus classifies the outcome of a dose-curve derivation.
type DeriveStatus string

const (
	StatusOK                  DeriveStatus = "ok"
	StatusMissingCoefficients DeriveStatus = "missing_coefficients"
)

// DoseCurve is the derived effect-vs-dose curve for one named outcome.
// The curve is a first-order linear extrapolation of the main effect with a
// heuristic CI-widening term; it is an approximation, not a refitted
// prediction interval.
type DoseCurve struct {
	Outcome core.OutcomeKey `json:"outcome"`
	Points  []DosePoint     `json:"points"`
	Status  DeriveStatus    `json:"status"`
	Missing []string        `json:"missing,omitempty"`
}

// Available reports whether the curve was derivable.
func (c DoseCurve) Available() bool { return c.Status == StatusOK }

// DoseGrid defines the evenly spaced dose grid and the extrapolation
// constants used by the deriver.
type DoseGrid struct {
	Min       float64 `json:"min"`
	Max       float64 `json:"max"`
	Step      float64 `json:"step"`
	Threshold float64 `json:"threshold"`
	UnitWidth float64 `json:"unit_width"`
	Inflation float64 `json:"inflation"`
	Units     string  `json:"units"`
}

// DefaultDoseGrid mirrors the credit-dose grid used in the dissertation
// pipeline: 0-80 credits in steps of 5, threshold at 12 credits, 10-credit
// dose units, 10% CI inflation per unit.
func DefaultDoseGrid() DoseGrid {
	return DoseGrid{Min: 0, Max: 80, Step: 5, Threshold: 12, UnitWidth: 10, Inflation: 0.1, Units: "credits"}
}

// Doses expands the grid into its evenly spaced dose values.
func (g DoseGrid) Doses() []float64 {
	if g.Step <= 0 || g.Max < g.Min {
		return nil
	}
	var out []float64
	for d := g.Min; d <= g.Max+1e-9; d += g.Step {
		out = append(out, d)
	}
	return out
}

// OutcomeSpec names the main-effect and moderation labels for one outcome.
type OutcomeSpec struct {
	Outcome    core.OutcomeKey
	MainLabel  core.PathLabel
	Moderation core.PathLabel
}

// Ptr converts a possibly-NaN float into a JSON-friendly pointer,
// nil when undefined.
func Ptr(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}
