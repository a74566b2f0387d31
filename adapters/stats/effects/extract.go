package effects

import (
	"math"

	"semsynth/adapters/stats/weighted"
	"semsynth/domain/core"
	"semsynth/domain/params"
)

// DefaultKeyPaths are the labeled structural paths the reporting pipeline
// extracts from a main-model fit.
var DefaultKeyPaths = []core.PathLabel{
	"a1", "a1z", "a2", "a2z", "b1", "b2", "c", "cz", "g1", "g2", "g3",
}

// TotalEffectKeys are the labels carried by the total-effect model.
var TotalEffectKeys = []core.PathLabel{"c_total"}

// EffectRow returns the unique row with the given label. Zero matches is an
// ErrLabelNotFound. Duplicate labels return the first occurrence
// deterministically with ambiguous=true so callers can log the flag; a
// duplicate is never an error.
func EffectRow(t params.Table, label core.PathLabel) (rec params.ParameterRecord, ambiguous bool, err error) {
	matches := 0
	for _, row := range t {
		if row.Label == label {
			if matches == 0 {
				rec = row
			}
			matches++
		}
	}
	if matches == 0 {
		return params.ParameterRecord{}, false, core.NewLabelNotFoundError(label.String())
	}
	return rec, matches > 1, nil
}

// KeyPaths filters the table to directed regression paths with a non-empty
// label and returns one StructuralPath per wanted label actually present,
// in table order. Absent labels are silently omitted; callers must handle
// short result lists. A nil wanted list means DefaultKeyPaths.
func KeyPaths(t params.Table, wanted []core.PathLabel) []params.StructuralPath {
	if wanted == nil {
		wanted = DefaultKeyPaths
	}
	active := make(map[core.PathLabel]bool, len(wanted))
	for _, l := range wanted {
		active[l] = true
	}
	seen := make(map[core.PathLabel]bool)
	var out []params.StructuralPath
	for _, row := range t {
		if row.Op != params.OpRegression || row.Label == "" {
			continue
		}
		if !active[row.Label] || seen[row.Label] {
			continue
		}
		seen[row.Label] = true
		out = append(out, params.StructuralPath{
			ID:          row.Label.String(),
			From:        row.RHS,
			To:          row.LHS,
			Estimate:    params.Ptr(round4(row.Estimate)),
			SE:          params.Ptr(round4(row.SE)),
			Z:           params.Ptr(round3(row.Z)),
			PValue:      params.Ptr(row.PValue),
			StdEstimate: params.Ptr(round4(row.StdEstimate)),
		})
	}
	return out
}

// EffectRecordFor builds a classified effect record from the labeled row's
// point estimate and bootstrap CI. Significance means the interval excludes
// zero; rows without a CI are never significant.
func EffectRecordFor(t params.Table, label core.PathLabel) (params.EffectRecord, bool, error) {
	rec, ambiguous, err := EffectRow(t, label)
	if err != nil {
		return params.EffectRecord{}, false, err
	}
	return params.EffectRecord{
		Label:       rec.Label,
		Estimate:    rec.Estimate,
		CILower:     rec.CILower,
		CIUpper:     rec.CIUpper,
		Significant: weighted.SignificantCI(rec.CILower, rec.CIUpper),
		Direction:   weighted.Direction(rec.Estimate),
		Magnitude:   weighted.InterpretEffectSize(rec.Estimate),
	}, ambiguous, nil
}

func round4(v float64) float64 { return roundTo(v, 4) }
func round3(v float64) float64 { return roundTo(v, 3) }

func roundTo(v float64, places int) float64 {
	if math.IsNaN(v) {
		return v
	}
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}
