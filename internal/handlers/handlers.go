// Package handlers serves the book selection form, the recommendation pages
// and the JSON API.
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/juman-j/book-recommender/internal/metrics"
	"github.com/juman-j/book-recommender/internal/recommender"
	"github.com/juman-j/book-recommender/internal/service"
)

// Recommender runs the pipeline for one query
type Recommender interface {
	Recommend(ctx context.Context, q service.Query) (recommender.Result, error)
}

// Handlers contains all HTTP handlers
type Handlers struct {
	recommender Recommender
	mainURL     string
}

// NewHandlers creates a new handlers instance. mainURL is the route of the
// selection page, linked from every result page.
func NewHandlers(rec Recommender, mainURL string) *Handlers {
	if mainURL == "" {
		mainURL = "/"
	}
	return &Handlers{recommender: rec, mainURL: mainURL}
}

// Health reports that the process is serving
// GET /health
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Stats returns in-process totals for recommendation runs
// GET /stats
func (h *Handlers) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, metrics.GetRunStats().GetStats())
}
