package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/juman-j/book-recommender/internal/cache"
	"github.com/juman-j/book-recommender/internal/config"
	"github.com/juman-j/book-recommender/internal/handlers"
	"github.com/juman-j/book-recommender/internal/logger"
	"github.com/juman-j/book-recommender/internal/middleware"
	"github.com/juman-j/book-recommender/internal/recommender"
	"github.com/juman-j/book-recommender/internal/service"
)

type countingRecommender struct {
	mu    sync.Mutex
	calls int
}

func (c *countingRecommender) Recommend(ctx context.Context, q service.Query) (recommender.Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	return recommender.Result{Outcome: recommender.OutcomeNoRecommendations}, nil
}

type mapStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

func (m *mapStore) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.data[key]; ok {
		return v, nil
	}
	return nil, cache.ErrMiss
}

func (m *mapStore) SetEx(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func testDeps(t *testing.T) routerDeps {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger.Log = zap.NewNop()

	tmpl, err := handlers.LoadTemplates("")
	require.NoError(t, err)
	return routerDeps{
		Settings:    &config.Settings{MainURL: "/select", CacheTTL: time.Minute},
		Recommender: &countingRecommender{},
		Templates:   tmpl,
	}
}

func serve(r http.Handler, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func TestRouter_Routes(t *testing.T) {
	r := setupRouter(testDeps(t))

	tests := []struct {
		method string
		path   string
		status int
	}{
		{"GET", "/select", http.StatusOK},
		{"GET", "/health", http.StatusOK},
		{"GET", "/metrics", http.StatusOK},
		{"GET", "/stats", http.StatusOK},
		{"GET", "/api/v1/recommendations?title=widget", http.StatusOK},
		{"GET", "/api/v1/recommendations", http.StatusUnprocessableEntity},
		{"GET", "/", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := serve(r, tt.method, tt.path)
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestRouter_SetsRequestID(t *testing.T) {
	r := setupRouter(testDeps(t))

	w := serve(r, "GET", "/health")

	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestRouter_CachesAPIResponses(t *testing.T) {
	deps := testDeps(t)
	rec := deps.Recommender.(*countingRecommender)
	deps.Store = &mapStore{data: map[string][]byte{}}
	r := setupRouter(deps)

	first := serve(r, "GET", "/api/v1/recommendations?title=widget")
	second := serve(r, "GET", "/api/v1/recommendations?title=widget")

	assert.Equal(t, "MISS", first.Header().Get("X-Cache"))
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, 1, rec.calls)
}

func TestRouter_RateLimitsPages(t *testing.T) {
	deps := testDeps(t)
	deps.Limiter = middleware.NewRateLimiter(middleware.RateLimitConfig{Rate: 0.001, Burst: 1})
	defer deps.Limiter.Stop()
	r := setupRouter(deps)

	assert.Equal(t, http.StatusOK, serve(r, "GET", "/select").Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(r, "GET", "/select").Code)
	assert.Equal(t, http.StatusOK, serve(r, "GET", "/health").Code)
}
