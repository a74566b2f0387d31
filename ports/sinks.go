package ports

import (
	"context"

	"semsynth/domain/report"
)

// ChartDataSink receives the JSON payloads a reporting run produces. The
// core calculators never import a sink implementation; absence of a sink is
// expressed by wiring the no-op variant, not by nil checks in the pipeline.
type ChartDataSink interface {
	WriteJSON(ctx context.Context, name string, payload any) error
}

// DocumentSink receives rendered documents (the plain-language summary).
type DocumentSink interface {
	WriteDocument(ctx context.Context, name string, content []byte) error
}

// ResultSink persists a completed run for later retrieval (postgres).
type ResultSink interface {
	PublishRun(ctx context.Context, run report.Run) error
}

// NoopChartDataSink discards payloads. Wired when a run computes without
// exporting, e.g. validation-only invocations.
type NoopChartDataSink struct{}

func (NoopChartDataSink) WriteJSON(context.Context, string, any) error { return nil }

// NoopDocumentSink discards documents.
type NoopDocumentSink struct{}

func (NoopDocumentSink) WriteDocument(context.Context, string, []byte) error { return nil }

// NoopResultSink drops published runs. Wired when no database is configured.
type NoopResultSink struct{}

func (NoopResultSink) PublishRun(context.Context, report.Run) error { return nil }
