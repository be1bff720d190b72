package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/juman-j/book-recommender/internal/logger"
	"github.com/juman-j/book-recommender/internal/middleware"
	"github.com/juman-j/book-recommender/internal/recommender"
	"github.com/juman-j/book-recommender/internal/service"
	"github.com/juman-j/book-recommender/internal/storage"
	"github.com/juman-j/book-recommender/internal/util"
)

type pageData struct {
	MainURL         string
	Title           string
	Author          string
	Recommendations []recommender.Recommendation
	Message         string
	RequestID       string
}

// RecommendationsResponse is the JSON body of a successful lookup
type RecommendationsResponse struct {
	Status          string                       `json:"status"`
	Title           string                       `json:"title"`
	Author          string                       `json:"author"`
	Recommendations []recommender.Recommendation `json:"recommendations"`
}

type recommendationQuery struct {
	Title  string `form:"title" binding:"required"`
	Author string `form:"author"`
}

// SelectBook renders the book selection form
// GET {MAIN_URL}
func (h *Handlers) SelectBook(c *gin.Context) {
	c.HTML(http.StatusOK, "book_selection.html", pageData{MainURL: h.mainURL})
}

// PostRecommendations renders recommendations for the submitted book
// POST /recommendations
// Form fields: book_title, book_author
func (h *Handlers) PostRecommendations(c *gin.Context) {
	q := service.Query{
		Title:  c.PostForm("book_title"),
		Author: c.PostForm("book_author"),
	}
	data := pageData{MainURL: h.mainURL, Title: q.Title, Author: q.Author}

	result, err := h.recommender.Recommend(c.Request.Context(), q)
	if err != nil {
		status, message := pipelineErrorStatus(err)
		h.recordPipelineError(c, err)
		data.Message = message
		data.RequestID = c.GetString(middleware.RequestIDKey)
		c.HTML(status, "error.html", data)
		return
	}

	switch result.Outcome {
	case recommender.OutcomeNotFound:
		c.HTML(http.StatusOK, "book_not_found.html", data)
	case recommender.OutcomeNoRecommendations:
		c.HTML(http.StatusOK, "no_recommendations.html", data)
	default:
		data.Recommendations = result.Recommendations
		c.HTML(http.StatusOK, "recommendations.html", data)
	}
}

// GetRecommendations returns recommendations as JSON
// GET /api/v1/recommendations?title=...&author=...
func (h *Handlers) GetRecommendations(c *gin.Context) {
	var query recommendationQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		util.RespondValidationError(c, "title", "title is required")
		return
	}

	result, err := h.recommender.Recommend(c.Request.Context(), service.Query{
		Title:  query.Title,
		Author: query.Author,
	})
	if err != nil {
		h.recordPipelineError(c, err)
		switch status, message := pipelineErrorStatus(err); status {
		case http.StatusServiceUnavailable:
			util.RespondServiceUnavailable(c, "dataset store")
		default:
			util.RespondInternalError(c, message)
		}
		return
	}

	if result.Outcome == recommender.OutcomeNotFound {
		util.RespondNotFound(c, "book")
		return
	}

	recs := result.Recommendations
	if recs == nil {
		recs = []recommender.Recommendation{}
	}
	c.JSON(http.StatusOK, RecommendationsResponse{
		Status:          result.Outcome.String(),
		Title:           query.Title,
		Author:          query.Author,
		Recommendations: recs,
	})
}

func pipelineErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, storage.ErrUnavailable):
		return http.StatusServiceUnavailable, "The book datasets are temporarily unavailable. Please try again later."
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, "The request was interrupted before recommendations were ready."
	default:
		return http.StatusInternalServerError, "The book datasets could not be read."
	}
}

func (h *Handlers) recordPipelineError(c *gin.Context, err error) {
	_ = c.Error(err)
	errorType := "pipeline"
	if errors.Is(err, storage.ErrUnavailable) {
		errorType = "dataset_unavailable"
	}
	middleware.RecordError(errorType, c.FullPath())
	logger.Log.Error("Recommendation failed",
		logger.WithRequestID(c.GetString(middleware.RequestIDKey)),
		zap.String("path", c.FullPath()),
		zap.Error(err),
	)
}
