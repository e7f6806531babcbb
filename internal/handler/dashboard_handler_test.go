package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/typemnm/Mornoningo/internal/service"
	appErrors "github.com/typemnm/Mornoningo/pkg/errors"
)

type dashboardServiceMock struct {
	home    *service.HomeSummary
	profile *service.ProfileSummary
	ranking *service.RankingSummary
	err     error
}

func (m *dashboardServiceMock) Home(ctx context.Context) (*service.HomeSummary, error) {
	return m.home, m.err
}

func (m *dashboardServiceMock) Profile(ctx context.Context) (*service.ProfileSummary, error) {
	return m.profile, m.err
}

func (m *dashboardServiceMock) Ranking(ctx context.Context) (*service.RankingSummary, error) {
	return m.ranking, m.err
}

func TestDashboardHandlerHome(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewDashboardHandler(&dashboardServiceMock{home: &service.HomeSummary{UserName: "Data Rookie", DueCount: 1}})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/home", nil)

	handler.Home(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Data Rookie")
}

func TestDashboardHandlerRankingMeta(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewDashboardHandler(&dashboardServiceMock{ranking: &service.RankingSummary{MyRank: 2}})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/ranking", nil)

	handler.Ranking(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(2), decodeEnvelope(t, w)["meta"].(map[string]interface{})["myRank"])
}

func TestDashboardHandlerProfileError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewDashboardHandler(&dashboardServiceMock{err: appErrors.ErrInternal})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/profile", nil)

	handler.Profile(c)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
