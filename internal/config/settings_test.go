package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"MAIN_URL", "PORT", "RATINGS_PATH", "BOOKS_PATH", "REDIS_HOST", "CACHE_TTL", "RATE_LIMIT", "OTEL_ENABLED"} {
		t.Setenv(key, "")
	}

	s, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "/", s.MainURL)
	assert.Equal(t, "8000", s.Port)
	assert.Equal(t, "data/BX-Book-Ratings.csv", s.RatingsPath)
	assert.Equal(t, "data/BX-Books.csv", s.BooksPath)
	assert.Equal(t, 5*time.Minute, s.CacheTTL)
	assert.Equal(t, 10.0, s.RateLimit)
	assert.False(t, s.OTelEnabled)
	assert.False(t, s.CacheEnabled())
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("MAIN_URL", "books")
	t.Setenv("PORT", "9090")
	t.Setenv("RATINGS_PATH", "s3://bx/ratings.csv")
	t.Setenv("REDIS_HOST", "localhost")
	t.Setenv("CACHE_TTL", "30s")
	t.Setenv("OTEL_ENABLED", "true")
	t.Setenv("OTEL_SAMPLING_RATE", "0.25")

	s, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "/books", s.MainURL)
	assert.Equal(t, "9090", s.Port)
	assert.Equal(t, "s3://bx/ratings.csv", s.RatingsPath)
	assert.True(t, s.CacheEnabled())
	assert.Equal(t, 30*time.Second, s.CacheTTL)
	assert.True(t, s.OTelEnabled)
	assert.Equal(t, 0.25, s.OTelSamplingRate)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"CACHE_TTL", "forever"},
		{"RATE_LIMIT", "fast"},
		{"RATE_LIMIT", "-1"},
		{"RATE_BURST", "lots"},
		{"OTEL_ENABLED", "maybe"},
		{"OTEL_SAMPLING_RATE", "2"},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			_, err := Load()

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}

func TestLoad_EmptyValuesFallBack(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("RATE_BURST", "")
	t.Setenv("AWS_REGION", "eu-central-1")
	t.Setenv("TEMPLATE_DIR", "/srv/templates")

	s, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "8000", s.Port)
	assert.Equal(t, 20, s.RateBurst)
	assert.Equal(t, "eu-central-1", s.AWSRegion)
	assert.Equal(t, "/srv/templates", s.TemplateDir)
}

func TestLoad_RedisHostEnablesCache(t *testing.T) {
	t.Setenv("REDIS_HOST", "")
	s, err := Load()
	require.NoError(t, err)
	assert.False(t, s.CacheEnabled())

	t.Setenv("REDIS_HOST", "redis")
	t.Setenv("CACHE_TTL", "90s")
	s, err = Load()
	require.NoError(t, err)
	assert.True(t, s.CacheEnabled())
	assert.Equal(t, 90*time.Second, s.CacheTTL)
}
