// Package service runs the recommendation pipeline for one request: it loads
// both datasets fresh, joins them and hands the rows to the recommender.
package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/juman-j/book-recommender/internal/dataset"
	"github.com/juman-j/book-recommender/internal/logger"
	"github.com/juman-j/book-recommender/internal/metrics"
	"github.com/juman-j/book-recommender/internal/recommender"
	"github.com/juman-j/book-recommender/internal/telemetry"
)

// Query identifies the target book. Author is a substring filter; empty
// matches every author.
type Query struct {
	Title  string
	Author string
}

// Loader reads the two datasets. *dataset.Loader implements it.
type Loader interface {
	LoadRatings(ctx context.Context, src dataset.Source) (*dataset.RatingsTable, error)
	LoadBooks(ctx context.Context, src dataset.Source) (*dataset.BooksTable, error)
}

// RecommendationService wires the dataset sources to the pipeline.
type RecommendationService struct {
	loader  Loader
	ratings dataset.Source
	books   dataset.Source
	events  *telemetry.PipelineEvents
}

// NewRecommendationService creates a service reading ratings and books from
// the given sources on every call.
func NewRecommendationService(loader Loader, ratings, books dataset.Source) *RecommendationService {
	return &RecommendationService{
		loader:  loader,
		ratings: ratings,
		books:   books,
		events:  telemetry.GetPipelineEvents(),
	}
}

// Recommend loads ratings then books, joins them and ranks recommendations
// for q. Loader errors are returned unchanged.
func (s *RecommendationService) Recommend(ctx context.Context, q Query) (recommender.Result, error) {
	ctx, span := s.events.TraceRecommendation(ctx, q.Title, q.Author)
	defer span.End()
	start := time.Now()

	var (
		ratings *dataset.RatingsTable
		books   *dataset.BooksTable
		rows    []dataset.JoinedRecord
		result  recommender.Result
	)

	err := s.stage(ctx, "load_ratings", func(ctx context.Context) (err error) {
		ratings, err = s.loader.LoadRatings(ctx, s.ratings)
		return err
	})
	if err != nil {
		telemetry.RecordStageError(span, err)
		metrics.GetRunStats().RecordRun(metrics.RunMetric{Duration: time.Since(start), Err: true})
		return recommender.Result{}, err
	}

	err = s.stage(ctx, "load_books", func(ctx context.Context) (err error) {
		books, err = s.loader.LoadBooks(ctx, s.books)
		return err
	})
	if err != nil {
		telemetry.RecordStageError(span, err)
		metrics.GetRunStats().RecordRun(metrics.RunMetric{Duration: time.Since(start), Err: true})
		return recommender.Result{}, err
	}

	_ = s.stage(ctx, "merge", func(context.Context) error {
		rows = dataset.Merge(ratings, books)
		return nil
	})

	_ = s.stage(ctx, "rank", func(context.Context) error {
		result = recommender.Recommend(rows, q.Title, q.Author)
		return nil
	})

	metrics.Get().RecommendationOutcomes.WithLabelValues(result.Outcome.String()).Inc()
	metrics.GetRunStats().RecordRun(metrics.RunMetric{
		Outcome:         result.Outcome.String(),
		Recommendations: len(result.Recommendations),
		Duration:        time.Since(start),
	})
	telemetry.RecordOutcome(span, result.Outcome.String(), len(result.Recommendations))

	logger.Log.Info("Recommendation computed",
		logger.WithBook(q.Title, q.Author),
		zap.String("outcome", result.Outcome.String()),
		zap.Int("rows", len(rows)),
		zap.Int("recommendations", len(result.Recommendations)),
	)

	return result, nil
}

// stage runs fn inside its own span and records its duration.
func (s *RecommendationService) stage(ctx context.Context, name string, fn func(context.Context) error) error {
	ctx, span := s.events.TraceStage(ctx, name)
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	metrics.Get().PipelineStageDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())

	telemetry.RecordStageError(span, err)
	return err
}
