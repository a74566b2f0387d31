package report

import (
	"semsynth/domain/core"
	"semsynth/domain/params"
)

// FitMeasures holds the key global fit indices of one model, rounded to
// four decimals by the parser.
type FitMeasures map[string]float64

// ModelBlock is one fitted model's extracted paths plus its fit block and
// input provenance.
type ModelBlock struct {
	FitMeasures     FitMeasures             `json:"fitMeasures"`
	StructuralPaths []params.StructuralPath `json:"structuralPaths"`
	SourcePaths     map[string]string       `json:"sourcePaths,omitempty"`
}

// Bootstrap describes how the upstream fit computed its intervals. Display
// metadata only; nothing here is recomputed.
type Bootstrap struct {
	NReplicates int    `json:"n_replicates"`
	CIType      string `json:"ci_type"`
}

// ModelResults is the main-plus-total-effect payload of a reporting run.
type ModelResults struct {
	MainModel        ModelBlock `json:"mainModel"`
	TotalEffectModel ModelBlock `json:"totalEffectModel"`
	Bootstrap        Bootstrap  `json:"bootstrap"`
}

// OutcomeCoefficients are the raw inputs one dose curve was derived from,
// nil when the estimate table lacked them.
type OutcomeCoefficients struct {
	Main       *float64 `json:"main"`
	Moderation *float64 `json:"moderation"`
	SE         *float64 `json:"se"`
}

// DoseValidation summarizes derivability across all outcome curves.
type DoseValidation struct {
	Status  params.DeriveStatus `json:"status"`
	Missing []string            `json:"missing,omitempty"`
}

// DoseEffects is the dose-curve payload: grid metadata, the coefficients
// each curve was built from, the per-outcome curves, and a run-level
// validation block naming every absent coefficient.
type DoseEffects struct {
	CreditDoseRange params.DoseGrid                         `json:"creditDoseRange"`
	Coefficients    map[core.OutcomeKey]OutcomeCoefficients `json:"coefficients"`
	Curves          []params.DoseCurve                      `json:"curves"`
	Validation      DoseValidation                          `json:"validation"`
}

// CategoryShare is one level of a categorical breakdown. Pct is nil when the
// block's total weight is zero; undefined statistics export as JSON null,
// never NaN.
type CategoryShare struct {
	N   float64  `json:"n"`
	Pct *float64 `json:"pct"`
}

// NumericSummary is the unweighted five-number style summary used for the
// transfer-credit block.
type NumericSummary struct {
	Mean   float64 `json:"mean"`
	SD     float64 `json:"sd"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Median float64 `json:"median"`
}

// Indicator is a single scale item with its weighted moments, nil when the
// item has no valid observations.
type Indicator struct {
	Name  string   `json:"name"`
	Label string   `json:"label,omitempty"`
	Mean  *float64 `json:"mean"`
	SD    *float64 `json:"sd"`
}

// ScaleSummary describes one outcome scale: the composite's weighted
// moments and optionally its per-item breakdown. An all-missing composite
// keeps its entry with nil moments so one degenerate scale never blocks
// the export.
type ScaleSummary struct {
	Mean       *float64    `json:"mean"`
	SD         *float64    `json:"sd"`
	SEM        *float64    `json:"sem,omitempty"`
	Range      []float64   `json:"range,omitempty"`
	ScaleName  string      `json:"scaleName,omitempty"`
	NItems     int         `json:"n_items,omitempty"`
	Indicators []Indicator `json:"indicators,omitempty"`
}

// GroupContrast is one weighted two-group comparison on an outcome scale.
type GroupContrast struct {
	Outcome   core.OutcomeKey `json:"outcome"`
	Group     string          `json:"group"`
	CohensD   float64         `json:"cohens_d"`
	Magnitude string          `json:"magnitude"`
	Direction string          `json:"direction"`
	MeanA     *float64        `json:"mean_a"`
	MeanB     *float64        `json:"mean_b"`
}

// Descriptives is the sample-descriptives payload.
type Descriptives struct {
	N            int                                                `json:"n"`
	EffectiveN   float64                                            `json:"n_effective"`
	Weighted     bool                                               `json:"weighted"`
	Demographics map[string]map[string]CategoryShare                `json:"demographics"`
	Transfer     *NumericSummary                                    `json:"transferCredits,omitempty"`
	Outcomes     map[core.OutcomeKey]ScaleSummary                   `json:"outcomes"`
	Contrasts    []GroupContrast                                    `json:"contrasts,omitempty"`
	Correlations map[core.VariableKey]map[core.VariableKey]*float64 `json:"spearman,omitempty"`
}

// GroupComparisons maps grouping variable -> group label -> extracted paths.
type GroupComparisons map[string]map[string][]params.StructuralPath

// InputFile records provenance of one pipeline input.
type InputFile struct {
	Path       string `json:"path"`
	Exists     bool   `json:"exists"`
	ModifiedAt string `json:"modifiedAt,omitempty"`
}

// RunMetadata stamps a reporting run.
type RunMetadata struct {
	RunID       core.RunID     `json:"pipelineRunId"`
	GeneratedAt core.Timestamp `json:"generatedAt"`
	InputFiles  []InputFile    `json:"inputFiles"`
}

// Run bundles everything one reporting run produces. Effects carries the
// key-path records already resolved from the main estimate table so
// downstream rendering never re-reads the input files.
type Run struct {
	Metadata     RunMetadata           `json:"metadata"`
	ModelResults *ModelResults         `json:"modelResults,omitempty"`
	DoseEffects  *DoseEffects          `json:"doseEffects,omitempty"`
	Descriptives *Descriptives         `json:"descriptives,omitempty"`
	Groups       GroupComparisons      `json:"groupComparisons,omitempty"`
	Effects      []params.EffectRecord `json:"-"`
	Summary      string                `json:"-"`
}
