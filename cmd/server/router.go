package main

import (
	"html/template"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/juman-j/book-recommender/internal/cache"
	"github.com/juman-j/book-recommender/internal/config"
	"github.com/juman-j/book-recommender/internal/handlers"
	"github.com/juman-j/book-recommender/internal/middleware"
)

const serviceName = "book-recommender"

// routerDeps are the collaborators built in main. Store and Limiter are
// optional.
type routerDeps struct {
	Settings    *config.Settings
	Recommender handlers.Recommender
	Templates   *template.Template
	Store       cache.Store
	Limiter     *middleware.RateLimiter
}

func setupRouter(deps routerDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.GinLoggerMiddleware())
	r.Use(middleware.MetricsMiddleware())
	if deps.Settings.OTelEnabled {
		r.Use(middleware.TracingMiddleware(serviceName))
		r.Use(middleware.SpanAttributesMiddleware())
	}

	// CORS middleware
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"*"}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID", "X-Cache", "Retry-After"}
	r.Use(cors.New(corsConfig))
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	r.SetHTMLTemplate(deps.Templates)

	h := handlers.NewHandlers(deps.Recommender, deps.Settings.MainURL)

	r.GET("/health", h.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/stats", h.Stats)

	pages := r.Group("")
	if deps.Limiter != nil {
		pages.Use(deps.Limiter.Middleware())
	}
	pages.GET(deps.Settings.MainURL, h.SelectBook)
	pages.POST("/recommendations", h.PostRecommendations)

	api := r.Group("/api/v1")
	if deps.Limiter != nil {
		api.Use(deps.Limiter.Middleware())
	}
	if deps.Store != nil {
		api.Use(middleware.ResponseCacheMiddleware(deps.Store, cacheTTL(deps.Settings)))
	}
	api.GET("/recommendations", h.GetRecommendations)

	return r
}

func cacheTTL(s *config.Settings) time.Duration {
	if s.CacheTTL <= 0 {
		return 5 * time.Minute
	}
	return s.CacheTTL
}
