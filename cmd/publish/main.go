package main

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"semsynth/adapters/postgres"
	"semsynth/domain/report"
	"semsynth/internal"
	"semsynth/internal/config"
	"semsynth/internal/errors"
)

// Reads a finished run's exports from the output directory and publishes
// them to postgres as one report_runs row.
func main() {
	_ = godotenv.Load()

	log := internal.NewDefaultLogger()
	cfg, err := config.Load()
	if err != nil {
		log.Error("config: %v", err)
		os.Exit(1)
	}
	if cfg.Database.URL == "" {
		log.Error("DATABASE_URL is required for publishing")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := sqlx.ConnectContext(ctx, "postgres", cfg.Database.URL)
	if err != nil {
		log.Error("connect: %v", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := postgres.Migrate(ctx, db); err != nil {
		log.Error("migrate: %v", err)
		os.Exit(1)
	}

	run, err := loadRun(cfg.Output.Dir)
	if err != nil {
		log.Error("load run: %v", err)
		os.Exit(1)
	}

	repo := postgres.NewRunRepository(db)
	if err := repo.PublishRun(ctx, *run); err != nil {
		log.Error("publish: %v", err)
		os.Exit(1)
	}
	log.Info("published run %s", run.Metadata.RunID)
}

// loadRun reassembles a report.Run from the export directory. Only the
// metadata file is mandatory; a partial run publishes whatever it produced.
func loadRun(outDir string) (*report.Run, error) {
	var run report.Run

	if err := readJSON(filepath.Join(outDir, "dataMetadata.json"), &run.Metadata); err != nil {
		return nil, errors.Wrapf(err, "reading run metadata from %s", outDir)
	}

	var results report.ModelResults
	if err := readJSON(filepath.Join(outDir, "modelResults.json"), &results); err == nil {
		run.ModelResults = &results
	}
	var dose report.DoseEffects
	if err := readJSON(filepath.Join(outDir, "doseEffects.json"), &dose); err == nil {
		run.DoseEffects = &dose
	}
	var desc report.Descriptives
	if err := readJSON(filepath.Join(outDir, "sampleDescriptives.json"), &desc); err == nil {
		run.Descriptives = &desc
	}
	var groups report.GroupComparisons
	if err := readJSON(filepath.Join(outDir, "groupComparisons.json"), &groups); err == nil {
		run.Groups = groups
	}
	if md, err := os.ReadFile(filepath.Join(outDir, "Plain_Language_Summary.md")); err == nil {
		run.Summary = string(md)
	}
	return &run, nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}
