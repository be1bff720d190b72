package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"

	"github.com/juman-j/book-recommender/internal/dataset"
	"github.com/juman-j/book-recommender/internal/logger"
	"github.com/juman-j/book-recommender/internal/metrics"
	"github.com/juman-j/book-recommender/internal/recommender"
)

// fixtureCSV returns ratings and books where users 1..8 rate "Widget" and
// "Gadget" along the same line.
func fixtureCSV() (ratings, books []byte) {
	var r strings.Builder
	r.WriteString("\"User-ID\";\"ISBN\";\"Book-Rating\"\n")
	for u := 1; u <= 8; u++ {
		fmt.Fprintf(&r, "\"%d\";\"A\";\"%d\"\n", u, u+2)
		fmt.Fprintf(&r, "\"%d\";\"B\";\"%d\"\n", u, u+1)
	}
	b := "\"ISBN\";\"Book-Title\";\"Book-Author\"\n" +
		"\"A\";\"Widget\";\"Smith\"\n" +
		"\"B\";\"Gadget\";\"Jones\"\n"
	return []byte(r.String()), []byte(b)
}

type failingLoader struct {
	failBooks bool
	err       error
	calls     []string
}

func (f *failingLoader) LoadRatings(ctx context.Context, src dataset.Source) (*dataset.RatingsTable, error) {
	f.calls = append(f.calls, "ratings")
	if !f.failBooks {
		return nil, f.err
	}
	return &dataset.RatingsTable{}, nil
}

func (f *failingLoader) LoadBooks(ctx context.Context, src dataset.Source) (*dataset.BooksTable, error) {
	f.calls = append(f.calls, "books")
	return nil, f.err
}

type RecommendationServiceSuite struct {
	suite.Suite
	svc *RecommendationService
}

func (s *RecommendationServiceSuite) SetupTest() {
	var err error
	logger.Log, err = zap.NewDevelopment()
	s.Require().NoError(err)

	metrics.Initialize().RecommendationOutcomes.Reset()

	ratings, books := fixtureCSV()
	s.svc = NewRecommendationService(
		dataset.NewLoader(),
		dataset.BytesSource{Label: "ratings.csv", Data: ratings},
		dataset.BytesSource{Label: "books.csv", Data: books},
	)
}

func (s *RecommendationServiceSuite) TestRanked() {
	result, err := s.svc.Recommend(context.Background(), Query{Title: "widget"})

	s.Require().NoError(err)
	s.Equal(recommender.OutcomeRanked, result.Outcome)
	s.Require().Len(result.Recommendations, 1)
	s.Equal("Gadget", result.Recommendations[0].Title)
	s.Equal(1.0, testutil.ToFloat64(metrics.Get().RecommendationOutcomes.WithLabelValues("ranked")))
}

func (s *RecommendationServiceSuite) TestNotFound() {
	result, err := s.svc.Recommend(context.Background(), Query{Title: "Widget", Author: "Tolkien"})

	s.Require().NoError(err)
	s.Equal(recommender.OutcomeNotFound, result.Outcome)
	s.Equal(1.0, testutil.ToFloat64(metrics.Get().RecommendationOutcomes.WithLabelValues("not_found")))
}

func (s *RecommendationServiceSuite) TestRepeatedCallsAgree() {
	first, err := s.svc.Recommend(context.Background(), Query{Title: "Widget", Author: "smith"})
	s.Require().NoError(err)
	second, err := s.svc.Recommend(context.Background(), Query{Title: "Widget", Author: "smith"})
	s.Require().NoError(err)

	s.Equal(first, second)
}

func TestRecommendationServiceSuite(t *testing.T) {
	suite.Run(t, new(RecommendationServiceSuite))
}

func TestRecommend_PropagatesLoaderErrors(t *testing.T) {
	logger.Log = zap.NewNop()
	boom := errors.New("boom")

	t.Run("ratings", func(t *testing.T) {
		loader := &failingLoader{err: boom}
		svc := NewRecommendationService(loader, dataset.FileSource("r"), dataset.FileSource("b"))

		_, err := svc.Recommend(context.Background(), Query{Title: "x"})

		assert.ErrorIs(t, err, boom)
		assert.Equal(t, []string{"ratings"}, loader.calls, "books are not read after a ratings failure")
	})

	t.Run("books", func(t *testing.T) {
		loader := &failingLoader{failBooks: true, err: boom}
		svc := NewRecommendationService(loader, dataset.FileSource("r"), dataset.FileSource("b"))

		_, err := svc.Recommend(context.Background(), Query{Title: "x"})

		assert.ErrorIs(t, err, boom)
		assert.Equal(t, []string{"ratings", "books"}, loader.calls)
	})
}

func TestRecommend_UnreadableFile(t *testing.T) {
	logger.Log = zap.NewNop()
	svc := NewRecommendationService(dataset.NewLoader(),
		dataset.FileSource(t.TempDir()+"/missing.csv"),
		dataset.FileSource(t.TempDir()+"/missing-books.csv"),
	)

	_, err := svc.Recommend(context.Background(), Query{Title: "x"})

	require.Error(t, err)
	assert.ErrorIs(t, err, dataset.ErrUnreadableFile)
}
