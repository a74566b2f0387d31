package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"semsynth/adapters/stats/effects"
	"semsynth/domain/core"
	"semsynth/domain/params"
	"semsynth/domain/report"
	"semsynth/internal"
	"semsynth/ports"
)

// ModelInput bundles one fitted model's estimate table and fit block.
type ModelInput struct {
	Params      ports.ParameterSource
	Fit         ports.FitSource
	SourcePaths map[string]string
}

// ReportRequest defines one reporting run.
type ReportRequest struct {
	Main         ModelInput
	TotalEffect  ModelInput
	Bootstrap    report.Bootstrap
	Grid         params.DoseGrid
	OutcomeSpecs []params.OutcomeSpec
	InputFiles   []string
}

// ReportService assembles model results and dose curves from fitted-model
// exports and pushes the payloads to the configured sinks.
type ReportService struct {
	log    *internal.Logger
	charts ports.ChartDataSink
	docs   ports.DocumentSink
}

// NewReportService creates a report service.
func NewReportService(log *internal.Logger, charts ports.ChartDataSink, docs ports.DocumentSink) *ReportService {
	return &ReportService{log: log, charts: charts, docs: docs}
}

// Run executes a full reporting run: parse both models, extract key paths,
// derive dose curves, stamp metadata, and export the payloads.
func (s *ReportService) Run(ctx context.Context, req ReportRequest) (*report.Run, error) {
	runID := core.RunID(core.NewID())
	s.log.Info("reporting run %s starting", runID)

	mainTable, mainBlock, err := s.modelBlock(req.Main, effects.DefaultKeyPaths)
	if err != nil {
		return nil, fmt.Errorf("main model: %w", err)
	}
	_, totalBlock, err := s.modelBlock(req.TotalEffect, effects.TotalEffectKeys)
	if err != nil {
		return nil, fmt.Errorf("total effect model: %w", err)
	}

	results := &report.ModelResults{
		MainModel:        mainBlock,
		TotalEffectModel: totalBlock,
		Bootstrap:        req.Bootstrap,
	}
	s.log.Info("extracted %d main paths, %d total-effect paths",
		len(mainBlock.StructuralPaths), len(totalBlock.StructuralPaths))

	dose := s.doseEffects(mainTable, req)

	run := &report.Run{
		Metadata: report.RunMetadata{
			RunID:       runID,
			GeneratedAt: core.Now(),
			InputFiles:  inputFileMetadata(req.InputFiles),
		},
		ModelResults: results,
		DoseEffects:  dose,
		Effects:      keyEffectRecords(mainTable),
	}

	if err := s.charts.WriteJSON(ctx, "modelResults.json", results); err != nil {
		return nil, fmt.Errorf("write model results: %w", err)
	}
	if err := s.charts.WriteJSON(ctx, "doseEffects.json", dose); err != nil {
		return nil, fmt.Errorf("write dose effects: %w", err)
	}
	if err := s.charts.WriteJSON(ctx, "dataMetadata.json", run.Metadata); err != nil {
		return nil, fmt.Errorf("write run metadata: %w", err)
	}

	s.log.Info("reporting run %s complete", runID)
	return run, nil
}

func (s *ReportService) modelBlock(in ModelInput, wanted []core.PathLabel) (params.Table, report.ModelBlock, error) {
	tbl, err := in.Params.Read()
	if err != nil {
		return nil, report.ModelBlock{}, err
	}
	s.warnDuplicates(tbl, wanted)

	fit := map[string]float64{}
	if in.Fit != nil {
		fit, err = in.Fit.Read()
		if err != nil {
			return nil, report.ModelBlock{}, err
		}
	}

	return tbl, report.ModelBlock{
		FitMeasures:     fit,
		StructuralPaths: effects.KeyPaths(tbl, wanted),
		SourcePaths:     in.SourcePaths,
	}, nil
}

// warnDuplicates surfaces ambiguous labels once per model so a silently
// first-matched row never goes unnoticed in the logs.
func (s *ReportService) warnDuplicates(tbl params.Table, wanted []core.PathLabel) {
	for _, label := range wanted {
		if _, ambiguous, err := effects.EffectRow(tbl, label); err == nil && ambiguous {
			s.log.Warn("label %q appears more than once, using first occurrence", label)
		}
	}
}

func (s *ReportService) doseEffects(tbl params.Table, req ReportRequest) *report.DoseEffects {
	specs := req.OutcomeSpecs
	if specs == nil {
		specs = effects.DefaultOutcomeSpecs()
	}
	grid := req.Grid
	if grid == (params.DoseGrid{}) {
		grid = params.DefaultDoseGrid()
	}

	deriver := effects.NewDeriver(grid)
	curves := deriver.Derive(tbl, specs)

	coefficients := make(map[core.OutcomeKey]report.OutcomeCoefficients, len(specs))
	for _, spec := range specs {
		var c report.OutcomeCoefficients
		if rec, _, err := effects.EffectRow(tbl, spec.MainLabel); err == nil {
			c.Main = params.Ptr(rec.Estimate)
			c.SE = params.Ptr(rec.SE)
		}
		if rec, _, err := effects.EffectRow(tbl, spec.Moderation); err == nil {
			c.Moderation = params.Ptr(rec.Estimate)
		}
		coefficients[spec.Outcome] = c
	}

	validation := report.DoseValidation{Status: params.StatusOK}
	if missing := effects.MissingLabels(curves); len(missing) > 0 {
		validation = report.DoseValidation{
			Status:  params.StatusMissingCoefficients,
			Missing: missing,
		}
		s.log.Warn("dose derivation missing coefficients: %v", missing)
	}

	return &report.DoseEffects{
		CreditDoseRange: grid,
		Coefficients:    coefficients,
		Curves:          curves,
		Validation:      validation,
	}
}

// keyEffectRecords resolves the standard key paths into display-ready
// records; labels absent from the table are simply skipped.
func keyEffectRecords(tbl params.Table) []params.EffectRecord {
	var out []params.EffectRecord
	for _, label := range effects.DefaultKeyPaths {
		rec, _, err := effects.EffectRecordFor(tbl, label)
		if err != nil {
			continue
		}
		out = append(out, rec)
	}
	return out
}

func inputFileMetadata(paths []string) []report.InputFile {
	out := make([]report.InputFile, 0, len(paths))
	for _, p := range paths {
		f := report.InputFile{Path: p}
		if info, err := os.Stat(p); err == nil {
			f.Exists = true
			f.ModifiedAt = info.ModTime().Format(time.RFC3339)
		}
		out = append(out, f)
	}
	return out
}
