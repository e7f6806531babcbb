package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/typemnm/Mornoningo/internal/dto"
	"github.com/typemnm/Mornoningo/internal/service"
	"github.com/typemnm/Mornoningo/pkg/clock"
	"github.com/typemnm/Mornoningo/pkg/response"
)

type reviewService interface {
	Due(ctx context.Context, date clock.Date) (*dto.DueReviewsResponse, error)
	Recommendations(ctx context.Context) ([]service.StageRecommendation, error)
}

// ReviewHandler exposes the review schedule.
type ReviewHandler struct {
	service reviewService
}

// NewReviewHandler builds a review handler.
func NewReviewHandler(service reviewService) *ReviewHandler {
	return &ReviewHandler{service: service}
}

// Due godoc
// @Summary List reviews due on a date
// @Tags Reviews
// @Produce json
// @Param date query string false "Date (YYYY-MM-DD), defaults to today"
// @Success 200 {object} response.Envelope
// @Router /reviews/due [get]
func (h *ReviewHandler) Due(c *gin.Context) {
	date, err := dateQuery(c, "date")
	if err != nil {
		response.Error(c, err)
		return
	}
	resp, err := h.service.Due(c.Request.Context(), date)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp, nil)
}

// Recommendations godoc
// @Summary Suggested review per ladder stage
// @Tags Reviews
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /reviews/recommendations [get]
func (h *ReviewHandler) Recommendations(c *gin.Context) {
	recs, err := h.service.Recommendations(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, recs, nil)
}
