package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// PipelineEvents provides spans for the recommendation pipeline stages
type PipelineEvents struct {
	tracer trace.Tracer
}

// NewPipelineEvents creates a new pipeline events tracer
func NewPipelineEvents() *PipelineEvents {
	return &PipelineEvents{
		tracer: otel.Tracer("book-recommender/pipeline"),
	}
}

// ============================================================================
// REQUEST
// ============================================================================

// TraceRecommendation creates the root span of one pipeline run
func (pe *PipelineEvents) TraceRecommendation(ctx context.Context, title, author string) (context.Context, trace.Span) {
	return pe.tracer.Start(ctx, "recommendation.run",
		trace.WithAttributes(
			attribute.String("book.title", title),
			attribute.String("book.author", author),
		),
	)
}

// RecordOutcome tags the root span with the terminal state and result size
func RecordOutcome(span trace.Span, outcome string, count int) {
	span.SetAttributes(
		attribute.String("recommendation.outcome", outcome),
		attribute.Int("recommendation.count", count),
	)
}

// ============================================================================
// STAGES
// ============================================================================

// TraceStage creates a span for a single pipeline stage
// Examples: load_ratings, load_books, merge, rank
func (pe *PipelineEvents) TraceStage(ctx context.Context, stage string) (context.Context, trace.Span) {
	return pe.tracer.Start(ctx, "pipeline."+stage,
		trace.WithAttributes(attribute.String("pipeline.stage", stage)),
	)
}

// TraceDatasetRead creates a client span for fetching a dataset from a remote store
func (pe *PipelineEvents) TraceDatasetRead(ctx context.Context, store, location string) (context.Context, trace.Span) {
	return pe.tracer.Start(ctx, "dataset.read."+store,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("dataset.store", store),
			attribute.String("dataset.location", location),
		),
	)
}

// RecordStageError records an error on a stage span
func RecordStageError(span trace.Span, err error) {
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.RecordError(err)
	}
}

var globalPipelineEvents *PipelineEvents

// GetPipelineEvents returns the global pipeline events tracer
func GetPipelineEvents() *PipelineEvents {
	if globalPipelineEvents == nil {
		globalPipelineEvents = NewPipelineEvents()
	}
	return globalPipelineEvents
}
