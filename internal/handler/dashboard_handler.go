package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/typemnm/Mornoningo/internal/service"
	"github.com/typemnm/Mornoningo/pkg/response"
)

type dashboardService interface {
	Home(ctx context.Context) (*service.HomeSummary, error)
	Profile(ctx context.Context) (*service.ProfileSummary, error)
	Ranking(ctx context.Context) (*service.RankingSummary, error)
}

// DashboardHandler serves the home, profile and ranking screens.
type DashboardHandler struct {
	service dashboardService
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(service dashboardService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// Home godoc
// @Summary Home summary
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /home [get]
func (h *DashboardHandler) Home(c *gin.Context) {
	summary, err := h.service.Home(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}

// Profile godoc
// @Summary Learner profile with badges and recent quizzes
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /profile [get]
func (h *DashboardHandler) Profile(c *gin.Context) {
	profile, err := h.service.Profile(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, profile, nil)
}

// Ranking godoc
// @Summary Leaderboard
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /ranking [get]
func (h *DashboardHandler) Ranking(c *gin.Context) {
	ranking, err := h.service.Ranking(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, ranking, map[string]interface{}{"myRank": ranking.MyRank})
}
