package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"

	"semsynth/domain/core"
	"semsynth/domain/report"
	"semsynth/ports"
)

const runSchema = `
CREATE TABLE IF NOT EXISTS report_runs (
	id            TEXT PRIMARY KEY,
	generated_at  TIMESTAMPTZ NOT NULL,
	model_results JSONB,
	dose_effects  JSONB,
	descriptives  JSONB,
	group_results JSONB,
	metadata      JSONB NOT NULL,
	summary_md    TEXT,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_report_runs_generated_at ON report_runs (generated_at DESC);
`

// RunRepository stores completed reporting runs as JSONB documents, one row
// per run. It satisfies the ResultSink port for publishing and additionally
// exposes read methods for the report server.
type RunRepository struct {
	db *sqlx.DB
}

var _ ports.ResultSink = (*RunRepository)(nil)

// NewRunRepository creates a run repository over an open connection.
func NewRunRepository(db *sqlx.DB) *RunRepository {
	return &RunRepository{db: db}
}

// Migrate creates the run table if it does not exist.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, runSchema); err != nil {
		return fmt.Errorf("failed to migrate report_runs: %w", err)
	}
	return nil
}

// PublishRun upserts a run keyed by its run ID, so re-publishing a corrected
// run replaces the earlier row instead of duplicating it.
func (r *RunRepository) PublishRun(ctx context.Context, run report.Run) error {
	modelJSON, err := marshalNullable(run.ModelResults)
	if err != nil {
		return fmt.Errorf("failed to marshal model results: %w", err)
	}
	doseJSON, err := marshalNullable(run.DoseEffects)
	if err != nil {
		return fmt.Errorf("failed to marshal dose effects: %w", err)
	}
	descJSON, err := marshalNullable(run.Descriptives)
	if err != nil {
		return fmt.Errorf("failed to marshal descriptives: %w", err)
	}
	groupJSON, err := marshalNullable(run.Groups)
	if err != nil {
		return fmt.Errorf("failed to marshal group comparisons: %w", err)
	}
	metaJSON, err := json.Marshal(run.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal run metadata: %w", err)
	}

	query := `INSERT INTO report_runs (
		id, generated_at, model_results, dose_effects, descriptives, group_results, metadata, summary_md
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	ON CONFLICT (id) DO UPDATE SET
		generated_at  = EXCLUDED.generated_at,
		model_results = EXCLUDED.model_results,
		dose_effects  = EXCLUDED.dose_effects,
		descriptives  = EXCLUDED.descriptives,
		group_results = EXCLUDED.group_results,
		metadata      = EXCLUDED.metadata,
		summary_md    = EXCLUDED.summary_md`

	_, err = r.db.ExecContext(ctx, query,
		run.Metadata.RunID.String(), run.Metadata.GeneratedAt.Time(),
		modelJSON, doseJSON, descJSON, groupJSON, metaJSON, run.Summary,
	)
	if err != nil {
		return fmt.Errorf("failed to publish run: %w", err)
	}
	return nil
}

// GetRun retrieves one published run.
func (r *RunRepository) GetRun(ctx context.Context, runID core.RunID) (*report.Run, error) {
	query := `SELECT model_results, dose_effects, descriptives, group_results, metadata, COALESCE(summary_md, '')
	FROM report_runs WHERE id = $1`

	var modelJSON, doseJSON, descJSON, groupJSON, metaJSON []byte
	var summary string
	err := r.db.QueryRowContext(ctx, query, runID.String()).Scan(
		&modelJSON, &doseJSON, &descJSON, &groupJSON, &metaJSON, &summary,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, core.NewRunNotFoundError(runID.String())
		}
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	var run report.Run
	run.Summary = summary
	if err := json.Unmarshal(metaJSON, &run.Metadata); err != nil {
		return nil, fmt.Errorf("failed to unmarshal run metadata: %w", err)
	}
	if err := unmarshalNullable(modelJSON, &run.ModelResults); err != nil {
		return nil, fmt.Errorf("failed to unmarshal model results: %w", err)
	}
	if err := unmarshalNullable(doseJSON, &run.DoseEffects); err != nil {
		return nil, fmt.Errorf("failed to unmarshal dose effects: %w", err)
	}
	if err := unmarshalNullable(descJSON, &run.Descriptives); err != nil {
		return nil, fmt.Errorf("failed to unmarshal descriptives: %w", err)
	}
	if err := unmarshalNullable(groupJSON, &run.Groups); err != nil {
		return nil, fmt.Errorf("failed to unmarshal group comparisons: %w", err)
	}
	return &run, nil
}

// ListRuns returns run metadata newest-first.
func (r *RunRepository) ListRuns(ctx context.Context, limit int) ([]report.RunMetadata, error) {
	query := `SELECT metadata FROM report_runs ORDER BY generated_at DESC LIMIT $1`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var out []report.RunMetadata
	for rows.Next() {
		var metaJSON []byte
		if err := rows.Scan(&metaJSON); err != nil {
			return nil, fmt.Errorf("failed to scan run metadata: %w", err)
		}
		var meta report.RunMetadata
		if err := json.Unmarshal(metaJSON, &meta); err != nil {
			return nil, fmt.Errorf("failed to unmarshal run metadata: %w", err)
		}
		out = append(out, meta)
	}
	return out, rows.Err()
}

func marshalNullable(v any) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if string(data) == "null" {
		return nil, nil
	}
	return data, nil
}

func unmarshalNullable(data []byte, v any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, v)
}
