package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/kanso-streaks/internal/core/domain"
	"github.com/comitanigiacomo/kanso-streaks/internal/core/services"
)

type StatsHandler struct {
	svc *services.StatsService
}

func NewStatsHandler(svc *services.StatsService) *StatsHandler {
	return &StatsHandler{svc: svc}
}

func (h *StatsHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/stats/weekly", h.GetWeeklyStats)
}

// GetWeeklyStats godoc
// @Summary Per-habit completion over a date range
// @Description Defaults to the seven days ending at the user's today. At most 366 days.
// @Tags stats
// @Produce json
// @Security BearerAuth
// @Param start_date query string false "YYYY-MM-DD"
// @Param end_date query string false "YYYY-MM-DD"
// @Success 200 {object} domain.WeeklyStats
// @Failure 400 {object} ErrorResponse
// @Router /stats/weekly [get]
func (h *StatsHandler) GetWeeklyStats(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	startDate, err := optionalDateQuery(c, "start_date")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid start_date format, expected YYYY-MM-DD"})
		return
	}
	endDate, err := optionalDateQuery(c, "end_date")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid end_date format, expected YYYY-MM-DD"})
		return
	}

	stats, err := h.svc.GetWeeklyStats(c.Request.Context(), domain.StatsInput{
		UserID:    userID,
		StartDate: startDate,
		EndDate:   endDate,
	})
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}
