package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/kanso-streaks/internal/core/services"
	"github.com/comitanigiacomo/kanso-streaks/internal/metrics"
)

type DashboardHandler struct {
	svc     *services.DashboardService
	metrics *metrics.Metrics
}

// NewDashboardHandler accepts a nil m.
func NewDashboardHandler(svc *services.DashboardService, m *metrics.Metrics) *DashboardHandler {
	return &DashboardHandler{svc: svc, metrics: m}
}

func (h *DashboardHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/dashboard/today", h.Today)
	r.GET("/habits/:id/streak", h.Streak)
}

// Today godoc
// @Summary Today's dashboard
// @Description One entry per active habit, in creation order, with completion
// @Description for the user's local today and the current and best streaks.
// @Tags dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} domain.DashboardToday
// @Failure 401 {object} ErrorResponse
// @Router /dashboard/today [get]
func (h *DashboardHandler) Today(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	view, err := h.svc.Today(c.Request.Context(), userID)
	if err != nil {
		handleError(c, err)
		return
	}

	if h.metrics != nil {
		h.metrics.DashboardHabits.Observe(float64(len(view.Habits)))
	}

	c.JSON(http.StatusOK, view)
}

// Streak godoc
// @Summary Current and best streak of one habit
// @Tags dashboard
// @Produce json
// @Security BearerAuth
// @Param id path string true "Habit ID"
// @Success 200 {object} domain.StreakResult
// @Failure 404 {object} ErrorResponse
// @Router /habits/{id}/streak [get]
func (h *DashboardHandler) Streak(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	result, err := h.svc.Streak(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
