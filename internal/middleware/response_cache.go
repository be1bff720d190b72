package middleware

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/juman-j/book-recommender/internal/cache"
	"github.com/juman-j/book-recommender/internal/logger"
)

const responseCacheName = "response_cache"

// ResponseCacheMiddleware caches successful GET responses in store for ttl.
// Only 2xx responses are cached. X-Cache: HIT/MISS is set on every response.
// Cache key is: response:{path}:{sorted query}
func ResponseCacheMiddleware(store cache.Store, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet || store == nil {
			c.Next()
			return
		}

		cacheKey := generateCacheKey(c.Request.URL.Path, c.Request.URL.Query().Encode())
		ctx := c.Request.Context()
		maxAge := fmt.Sprintf("public, max-age=%d", int(ttl.Seconds()))

		startTime := time.Now()
		cached, err := store.Get(ctx, cacheKey)
		RecordCacheOperation("GET", responseCacheName, time.Since(startTime))

		if err == nil {
			RecordCacheHit(responseCacheName)
			logger.Log.Debug("Cache hit", zap.String("key", cacheKey))
			c.Header("X-Cache", "HIT")
			c.Header("Cache-Control", maxAge)
			c.Data(http.StatusOK, "application/json; charset=utf-8", cached)
			c.Abort()
			return
		}
		if !errors.Is(err, cache.ErrMiss) {
			logger.Log.Warn("Cache read failed", zap.String("key", cacheKey), zap.Error(err))
		}
		RecordCacheMiss(responseCacheName)

		writer := &cachedResponseWriter{
			ResponseWriter: c.Writer,
			statusCode:     http.StatusOK,
			body:           &bytes.Buffer{},
		}
		c.Writer = writer
		c.Header("X-Cache", "MISS")
		c.Header("Cache-Control", maxAge)

		c.Next()

		if writer.statusCode < 200 || writer.statusCode >= 300 || writer.body.Len() == 0 {
			return
		}

		setStart := time.Now()
		if err := store.SetEx(ctx, cacheKey, writer.body.Bytes(), ttl); err != nil {
			logger.Log.Warn("Failed to write response to cache",
				zap.String("key", cacheKey),
				zap.Error(err),
			)
			return
		}
		RecordCacheOperation("SET", responseCacheName, time.Since(setStart))
		logger.Log.Debug("Response cached",
			zap.String("key", cacheKey),
			zap.Duration("ttl", ttl),
			zap.Int("size_bytes", writer.body.Len()),
		)
	}
}

// generateCacheKey creates a cache key from request path and query params
func generateCacheKey(path, query string) string {
	key := "response:" + path
	if query != "" {
		key += ":" + query
	}
	return key
}

// cachedResponseWriter intercepts response writes to capture the response body
type cachedResponseWriter struct {
	gin.ResponseWriter
	statusCode int
	body       *bytes.Buffer
}

// Write writes data to the response while capturing it for caching
func (w *cachedResponseWriter) Write(data []byte) (int, error) {
	w.body.Write(data)
	return w.ResponseWriter.Write(data)
}

// WriteString is used by gin renderers that bypass Write
func (w *cachedResponseWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// WriteHeader records the HTTP status code
func (w *cachedResponseWriter) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}
