package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"semsynth/adapters/delimited"
	"semsynth/adapters/excel"
	"semsynth/adapters/export"
	"semsynth/adapters/markdown"
	"semsynth/app"
	"semsynth/domain/core"
	"semsynth/domain/report"
	"semsynth/internal"
	"semsynth/internal/config"
	"semsynth/ports"
)

func main() {
	// Missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "semsynth",
		Short: "Weighted effect synthesis: model extraction, dose curves, descriptives",
	}

	rootCmd.AddCommand(
		newReportCmd(),
		newDescriptivesCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newReportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "Run the full reporting pipeline and write JSON exports",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			log := internal.NewDefaultLogger()

			writer, err := export.NewJSONWriter(cfg.Output.Dir, log)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			run, err := runReport(ctx, cfg, log, writer)
			if err != nil {
				return err
			}

			if err := writeSummary(ctx, run, writer); err != nil {
				return err
			}

			groups, err := runGroups(ctx, cfg, log)
			if err != nil {
				return err
			}
			if len(groups) > 0 {
				run.Groups = groups
				if err := writer.WriteJSON(ctx, "groupComparisons.json", groups); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func newDescriptivesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "descriptives",
		Short: "Compute weighted sample descriptives from the observation table",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			log := internal.NewDefaultLogger()

			src, err := observationSource(cfg)
			if err != nil {
				return err
			}
			tbl, err := src.Read()
			if err != nil {
				return err
			}

			svc := app.NewDescriptivesService(log)
			desc, err := svc.Compute(cmd.Context(), tbl, descriptivesConfig(cfg))
			if err != nil {
				return err
			}

			writer, err := export.NewJSONWriter(cfg.Output.Dir, log)
			if err != nil {
				return err
			}
			return writer.WriteJSON(cmd.Context(), "sampleDescriptives.json", desc)
		},
	}
}

func runReport(ctx context.Context, cfg *config.Config, log *internal.Logger, writer *export.JSONWriter) (*report.Run, error) {
	mainParams := filepath.Join(cfg.Models.MainDir, "structural_parameterEstimates.txt")
	mainFit := filepath.Join(cfg.Models.MainDir, "structural_fitMeasures.txt")
	totalParams := filepath.Join(cfg.Models.TotalEffectDir, "structural_parameterEstimates.txt")
	totalFit := filepath.Join(cfg.Models.TotalEffectDir, "structural_fitMeasures.txt")

	svc := app.NewReportService(log, writer, writer)
	return svc.Run(ctx, app.ReportRequest{
		Main: app.ModelInput{
			Params:      delimited.NewParamReader(mainParams),
			Fit:         delimited.NewFitReader(mainFit),
			SourcePaths: sourcePaths(mainParams, mainFit),
		},
		TotalEffect: app.ModelInput{
			Params:      delimited.NewParamReader(totalParams),
			Fit:         delimited.NewFitReader(totalFit),
			SourcePaths: sourcePaths(totalParams, totalFit),
		},
		Bootstrap: report.Bootstrap{
			NReplicates: cfg.Models.BootstrapReplicates,
			CIType:      cfg.Models.CIType,
		},
		InputFiles: []string{mainParams, mainFit, totalParams, totalFit, cfg.Data.ObservationFile},
	})
}

func sourcePaths(params, fit string) map[string]string {
	return map[string]string{
		"parameterEstimates": params,
		"fitMeasures":        fit,
	}
}

func writeSummary(ctx context.Context, run *report.Run, writer *export.JSONWriter) error {
	md := markdown.BuildSummary(markdown.SummaryInput{
		GeneratedAt: run.Metadata.GeneratedAt.Time(),
		Bootstrap:   run.ModelResults.Bootstrap,
		Effects:     run.Effects,
		DoseCurves:  run.DoseEffects.Curves,
	})
	run.Summary = string(md)
	return writer.WriteDocument(ctx, "Plain_Language_Summary.md", md)
}

func runGroups(ctx context.Context, cfg *config.Config, log *internal.Logger) (report.GroupComparisons, error) {
	if len(cfg.Models.GroupDirs) == 0 {
		return nil, nil
	}
	var inputs []app.GroupInput
	for variable, dir := range cfg.Models.GroupDirs {
		inputs = append(inputs, app.GroupInput{
			Variable: variable,
			Combined: delimited.NewParamReader(filepath.Join(dir, "structural_parameterEstimates.txt")),
		})
	}
	svc := app.NewGroupsService(log)
	return svc.Compare(ctx, inputs)
}

func observationSource(cfg *config.Config) (ports.ObservationSource, error) {
	if cfg.Data.ObservationFile == "" {
		return nil, fmt.Errorf("OBSERVATION_FILE is required for descriptives")
	}
	if strings.EqualFold(filepath.Ext(cfg.Data.ObservationFile), ".xlsx") {
		return excel.NewReader(cfg.Data.ObservationFile, cfg.Data.Sheet), nil
	}
	return delimited.NewObservationReader(cfg.Data.ObservationFile), nil
}

// descriptivesConfig mirrors the dissertation survey's scale layout.
func descriptivesConfig(cfg *config.Config) app.DescriptivesConfig {
	return app.DescriptivesConfig{
		WeightColumn: core.VariableKey(cfg.Data.WeightColumn),
		Categorical:  []core.VariableKey{"re_all", "sex"},
		Binary: []app.BinarySpec{
			{Key: "firstgen", Label: "firstgen"},
			{Key: "pell", Label: "pell"},
			{Key: "x_FASt", Label: "fast"},
		},
		TransferColumn: "trnsfr_cr",
		Scales: []app.ScaleSpec{
			{
				Outcome:   "distress",
				ScaleName: "Mental Health & Wellness",
				Range:     []float64{1, 6},
				Items: []core.VariableKey{
					"MHWdacad", "MHWdlonely", "MHWdmental",
					"MHWdexhaust", "MHWdsleep", "MHWdfinancial",
				},
				Labels: map[core.VariableKey]string{
					"MHWdacad": "Academic Difficulties", "MHWdlonely": "Loneliness",
					"MHWdmental": "Mental Health", "MHWdexhaust": "Exhaustion",
					"MHWdsleep": "Sleep Problems", "MHWdfinancial": "Financial Stress",
				},
			},
			{
				Outcome:   "engagement",
				ScaleName: "Quality of Interactions",
				Range:     []float64{1, 7},
				Items: []core.VariableKey{
					"QIadmin", "QIstudent", "QIadvisor", "QIfaculty", "QIstaff",
				},
				Labels: map[core.VariableKey]string{
					"QIadmin": "Administrative Staff", "QIstudent": "Other Students",
					"QIadvisor": "Academic Advisors", "QIfaculty": "Faculty",
					"QIstaff": "Student Services Staff",
				},
			},
			{
				Outcome: "belonging",
				Items:   []core.VariableKey{"sbvalued", "sbmyself", "sbcommunity"},
			},
			{
				Outcome: "gains",
				Items:   []core.VariableKey{"pganalyze", "pgthink", "pgwork", "pgvalues", "pgprobsolve"},
			},
			{
				Outcome: "support",
				Items:   []core.VariableKey{"SEacademic", "SEwellness", "SEnonacad", "SEactivities", "SEdiverse"},
			},
			{
				Outcome: "satisfaction",
				Items:   []core.VariableKey{"sameinst", "evalexp"},
			},
		},
		Contrasts: []app.ContrastSpec{
			{Outcome: "distress", Group: "x_FASt", Label: "fast"},
			{Outcome: "engagement", Group: "x_FASt", Label: "fast"},
		},
		CorrelationVars: []core.VariableKey{"distress", "engagement", "belonging", "trnsfr_cr"},
	}
}
