package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/amishk599/uxcelerator/internal/model"
)

// errNoHTML is the fixed client-error body for a request without markup.
const errNoHTML = "No HTML content provided"

// RecommendRequest is the body of POST /recommend.
type RecommendRequest struct {
	HTMLContent string `json:"htmlContent"`
	Goal        string `json:"goal"`
}

// RecommendHandler serves UX suggestions for submitted markup.
type RecommendHandler struct {
	recommender model.Recommender
	logger      *slog.Logger
}

func NewRecommendHandler(recommender model.Recommender, logger *slog.Logger) *RecommendHandler {
	return &RecommendHandler{recommender: recommender, logger: logger}
}

// Recommend answers 400 when no markup is given and 200 with a JSON array
// otherwise, including the empty array when every attempt failed.
func (h *RecommendHandler) Recommend(c *gin.Context) {
	var req RecommendRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.HTMLContent == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": errNoHTML})
		return
	}

	suggestions, err := h.recommender.Recommend(c.Request.Context(), req.HTMLContent, req.Goal)
	if err != nil {
		if errors.Is(err, model.ErrEmptyContent) {
			c.JSON(http.StatusBadRequest, gin.H{"error": errNoHTML})
			return
		}
		h.logger.Error("recommend failed", "request_id", c.GetString("request_id"), "error", err)
		suggestions = nil
	}

	if suggestions == nil {
		suggestions = []model.Suggestion{}
	}
	c.JSON(http.StatusOK, suggestions)
}

func (h *RecommendHandler) RegisterRoutes(r gin.IRouter) {
	r.POST("/recommend", h.Recommend)
}
