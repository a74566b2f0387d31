package app

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/montanaflynn/stats"
	"golang.org/x/sync/errgroup"

	"semsynth/adapters/stats/weighted"
	"semsynth/domain/core"
	"semsynth/domain/params"
	"semsynth/domain/report"
	"semsynth/domain/table"
	"semsynth/internal"
)

// ScaleSpec names one outcome scale: the composite is the per-row mean of
// its items, skipping missing cells row-wise.
type ScaleSpec struct {
	Outcome   core.OutcomeKey
	ScaleName string
	Range     []float64
	Items     []core.VariableKey
	Labels    map[core.VariableKey]string
}

// BinarySpec names a 0/1 demographic column and the label it reports under.
type BinarySpec struct {
	Key   core.VariableKey
	Label string
}

// ContrastSpec names one two-group comparison: the outcome composite split
// on a binary grouping column.
type ContrastSpec struct {
	Outcome core.OutcomeKey
	Group   core.VariableKey
	Label   string
}

// DescriptivesConfig selects which columns of the observation table feed
// each block of the descriptives payload. Absent columns are skipped, never
// errors, so one config serves datasets at different collection stages.
type DescriptivesConfig struct {
	WeightColumn    core.VariableKey
	Categorical     []core.VariableKey
	Binary          []BinarySpec
	TransferColumn  core.VariableKey
	Scales          []ScaleSpec
	Contrasts       []ContrastSpec
	CorrelationVars []core.VariableKey
}

// DescriptivesService computes the weighted sample-descriptives payload.
type DescriptivesService struct {
	log *internal.Logger
}

// NewDescriptivesService creates a descriptives service.
func NewDescriptivesService(log *internal.Logger) *DescriptivesService {
	return &DescriptivesService{log: log}
}

// Compute builds the full descriptives block. Scales are computed
// concurrently; everything downstream of the table is read-only.
func (s *DescriptivesService) Compute(ctx context.Context, t *table.Table, cfg DescriptivesConfig) (*report.Descriptives, error) {
	w, weightedRun := t.Weights(cfg.WeightColumn)
	if !weightedRun {
		s.log.Warn("weight column %q absent, reporting unweighted descriptives", cfg.WeightColumn)
	}

	out := &report.Descriptives{
		N:            t.RowCount(),
		EffectiveN:   weighted.EffectiveN(w),
		Weighted:     weightedRun,
		Demographics: map[string]map[string]report.CategoryShare{},
		Outcomes:     map[core.OutcomeKey]report.ScaleSummary{},
	}

	s.demographics(t, w, cfg, out)

	if cfg.TransferColumn != "" && t.HasColumn(cfg.TransferColumn) {
		summary, err := transferSummary(t, cfg.TransferColumn)
		if err != nil {
			return nil, fmt.Errorf("transfer credit summary: %w", err)
		}
		out.Transfer = summary
	}

	// Composite columns are registered up front so contrasts and the
	// correlation matrix can reference them by outcome key.
	composites := make(map[core.OutcomeKey][]float64, len(cfg.Scales))
	for _, spec := range cfg.Scales {
		items := presentColumns(t, spec.Items)
		if len(items) == 0 {
			continue
		}
		vals, err := t.RowMean(items)
		if err != nil {
			return nil, err
		}
		composites[spec.Outcome] = vals
	}

	var mu sync.Mutex
	g, _ := errgroup.WithContext(ctx)
	for _, spec := range cfg.Scales {
		spec := spec
		vals, ok := composites[spec.Outcome]
		if !ok {
			continue
		}
		g.Go(func() error {
			summary, err := s.scaleSummary(t, w, spec, vals)
			if err != nil {
				return err
			}
			mu.Lock()
			out.Outcomes[spec.Outcome] = summary
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, c := range cfg.Contrasts {
		contrast, ok := s.contrast(t, w, composites, c)
		if ok {
			out.Contrasts = append(out.Contrasts, contrast)
		}
	}

	if len(cfg.CorrelationVars) > 0 {
		out.Correlations = spearmanMatrix(t, w, composites, cfg.CorrelationVars)
	}

	return out, nil
}

func (s *DescriptivesService) demographics(t *table.Table, w []float64, cfg DescriptivesConfig, out *report.Descriptives) {
	for _, key := range cfg.Categorical {
		raw, ok := t.Text(key)
		if !ok {
			continue
		}
		counts := weighted.TextCounts(raw, w, false)
		total := 0.0
		for _, c := range counts {
			total += c.Weight
		}
		block := make(map[string]report.CategoryShare, len(counts))
		for _, c := range counts {
			block[c.Value] = report.CategoryShare{
				N:   round1(c.Weight),
				Pct: params.Ptr(round1(c.Weight / total * 100)),
			}
		}
		out.Demographics[key.String()] = block
	}

	for _, b := range cfg.Binary {
		if !t.HasColumn(b.Key) {
			continue
		}
		vals, _ := t.Column(b.Key)
		p := weighted.Proportion(vals, w)
		if math.IsNaN(p) {
			continue
		}
		totalW := 0.0
		for i, v := range vals {
			if !math.IsNaN(v) && !math.IsNaN(w[i]) {
				totalW += w[i]
			}
		}
		out.Demographics[b.Label] = map[string]report.CategoryShare{
			"yes": {N: round1(p * totalW), Pct: params.Ptr(round1(p * 100))},
			"no":  {N: round1((1 - p) * totalW), Pct: params.Ptr(round1((1 - p) * 100))},
		}
	}
}

func (s *DescriptivesService) scaleSummary(t *table.Table, w []float64, spec ScaleSpec, vals []float64) (report.ScaleSummary, error) {
	summary := report.ScaleSummary{
		Mean:      params.Ptr(round2(weighted.Mean(vals, w))),
		SD:        params.Ptr(round2(weighted.Std(vals, w))),
		SEM:       params.Ptr(weighted.SEM(vals, w)),
		Range:     spec.Range,
		ScaleName: spec.ScaleName,
		NItems:    len(presentColumns(t, spec.Items)),
	}

	for _, item := range presentColumns(t, spec.Items) {
		col, err := t.Column(item)
		if err != nil {
			return report.ScaleSummary{}, err
		}
		summary.Indicators = append(summary.Indicators, report.Indicator{
			Name:  item.String(),
			Label: spec.Labels[item],
			Mean:  params.Ptr(round2(weighted.Mean(col, w))),
			SD:    params.Ptr(round2(weighted.Std(col, w))),
		})
	}
	return summary, nil
}

func (s *DescriptivesService) contrast(t *table.Table, w []float64, composites map[core.OutcomeKey][]float64, c ContrastSpec) (report.GroupContrast, bool) {
	vals, ok := composites[c.Outcome]
	if !ok || !t.HasColumn(c.Group) {
		return report.GroupContrast{}, false
	}
	group, _ := t.Column(c.Group)

	var aVals, aW, bVals, bW []float64
	for i := range vals {
		if math.IsNaN(group[i]) {
			continue
		}
		if group[i] == 1 {
			aVals = append(aVals, vals[i])
			aW = append(aW, w[i])
		} else {
			bVals = append(bVals, vals[i])
			bW = append(bW, w[i])
		}
	}

	d := weighted.CohensD(aVals, aW, bVals, bW)
	return report.GroupContrast{
		Outcome:   c.Outcome,
		Group:     c.Label,
		CohensD:   d,
		Magnitude: weighted.InterpretEffectSize(d),
		Direction: weighted.Direction(d),
		MeanA:     params.Ptr(round2(weighted.Mean(aVals, aW))),
		MeanB:     params.Ptr(round2(weighted.Mean(bVals, bW))),
	}, true
}

// spearmanMatrix rank-transforms every variable once, then correlates pairs
// with the shared weight vector. Composite outcomes resolve by key before
// raw columns. Undefined cells (zero variance, too few pairs) are nil.
func spearmanMatrix(t *table.Table, w []float64, composites map[core.OutcomeKey][]float64, vars []core.VariableKey) map[core.VariableKey]map[core.VariableKey]*float64 {
	ranked := make(map[core.VariableKey][]float64, len(vars))
	for _, key := range vars {
		if vals, ok := composites[core.OutcomeKey(key)]; ok {
			ranked[key] = weighted.Ranks(vals)
			continue
		}
		if vals, err := t.Column(key); err == nil {
			ranked[key] = weighted.Ranks(vals)
		}
	}

	matrix := make(map[core.VariableKey]map[core.VariableKey]*float64, len(ranked))
	for a, ra := range ranked {
		row := make(map[core.VariableKey]*float64, len(ranked))
		for b, rb := range ranked {
			row[b] = params.Ptr(weighted.Correlation(ra, rb, w))
		}
		matrix[a] = row
	}
	return matrix
}

// transferSummary is deliberately unweighted: it describes the raw credit
// distribution of the enrolled sample, not the weighted pseudo-population.
func transferSummary(t *table.Table, key core.VariableKey) (*report.NumericSummary, error) {
	col, err := t.Column(key)
	if err != nil {
		return nil, err
	}
	var clean stats.Float64Data
	for _, v := range col {
		if !math.IsNaN(v) {
			clean = append(clean, v)
		}
	}
	if len(clean) == 0 {
		return nil, nil
	}

	mean, err := stats.Mean(clean)
	if err != nil {
		return nil, err
	}
	sd, err := stats.StandardDeviationSample(clean)
	if err != nil {
		sd = 0
	}
	min, err := stats.Min(clean)
	if err != nil {
		return nil, err
	}
	max, err := stats.Max(clean)
	if err != nil {
		return nil, err
	}
	median, err := stats.Median(clean)
	if err != nil {
		return nil, err
	}
	return &report.NumericSummary{
		Mean:   round1(mean),
		SD:     round1(sd),
		Min:    min,
		Max:    max,
		Median: round1(median),
	}, nil
}

func presentColumns(t *table.Table, keys []core.VariableKey) []core.VariableKey {
	var out []core.VariableKey
	for _, k := range keys {
		if t.HasColumn(k) {
			out = append(out, k)
		}
	}
	return out
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }
