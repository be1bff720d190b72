package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
)

func TestNewResource_DescribesService(t *testing.T) {
	res, err := newResource(context.Background(), Config{
		ServiceName:   "book-recommender",
		Environment:   "test",
		RatingsSource: "s3://bx/BX-Book-Ratings.csv",
		BooksSource:   "data/BX-Books.csv",
		MainURL:       "/select",
	})
	require.NoError(t, err)

	set := res.Set()
	for key, want := range map[attribute.Key]string{
		"service.name":           "book-recommender",
		"deployment.environment": "test",
		"dataset.ratings.source": "s3://bx/BX-Book-Ratings.csv",
		"dataset.books.source":   "data/BX-Books.csv",
		"http.main_url":          "/select",
	} {
		v, ok := set.Value(key)
		require.True(t, ok, "missing %s", key)
		assert.Equal(t, want, v.AsString())
	}
}

func TestNewResource_SkipsEmptyAttributes(t *testing.T) {
	res, err := newResource(context.Background(), Config{ServiceName: "book-recommender"})
	require.NoError(t, err)

	_, ok := res.Set().Value("dataset.ratings.source")
	assert.False(t, ok)
}

func TestNewSampler(t *testing.T) {
	tests := []struct {
		rate float64
		want string
	}{
		{1, "AlwaysOnSampler"},
		{2, "AlwaysOnSampler"},
		{0, "AlwaysOffSampler"},
		{0.25, "TraceIDRatioBased{0.25}"},
	}
	for _, tt := range tests {
		desc := newSampler(tt.rate).Description()
		assert.Contains(t, desc, "ParentBased")
		assert.Contains(t, desc, tt.want)
	}
}
