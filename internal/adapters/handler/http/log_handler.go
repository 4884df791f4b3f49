package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/kanso-streaks/internal/core/domain"
	"github.com/comitanigiacomo/kanso-streaks/internal/core/services"
)

type LogHandler struct {
	svc *services.LogService
}

func NewLogHandler(svc *services.LogService) *LogHandler {
	return &LogHandler{svc: svc}
}

type createLogRequest struct {
	Date  domain.Date `json:"date" swaggertype:"string" example:"2024-01-01"`
	Value *int        `json:"value" example:"1"`
}

func (h *LogHandler) RegisterRoutes(r *gin.RouterGroup) {
	logs := r.Group("/habits/:id/logs")
	{
		logs.POST("", h.Create)
		logs.GET("", h.List)
		logs.DELETE("/:logID", h.Delete)
	}
}

// Create godoc
// @Summary Log a habit for a day
// @Tags logs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Habit ID"
// @Param request body createLogRequest true "Day and optional value (default 1)"
// @Success 201 {object} domain.HabitLog
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Already logged for this date, or habit archived"
// @Router /habits/{id}/logs [post]
func (h *LogHandler) Create(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req createLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	entry, err := h.svc.Create(c.Request.Context(), services.CreateLogInput{
		HabitID: c.Param("id"),
		UserID:  userID,
		Date:    req.Date,
		Value:   req.Value,
	})
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, entry)
}

// List godoc
// @Summary List a habit's logs
// @Tags logs
// @Produce json
// @Security BearerAuth
// @Param id path string true "Habit ID"
// @Param from query string false "First day, YYYY-MM-DD"
// @Param to query string false "Last day, YYYY-MM-DD"
// @Success 200 {array} domain.HabitLog
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /habits/{id}/logs [get]
func (h *LogHandler) List(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	from, err := optionalDateQuery(c, "from")
	if err != nil {
		badRequest(c, err)
		return
	}
	to, err := optionalDateQuery(c, "to")
	if err != nil {
		badRequest(c, err)
		return
	}

	logs, err := h.svc.List(c.Request.Context(), c.Param("id"), userID, from, to)
	if err != nil {
		handleError(c, err)
		return
	}

	if logs == nil {
		logs = []*domain.HabitLog{}
	}

	c.JSON(http.StatusOK, logs)
}

// Delete godoc
// @Summary Delete a log
// @Tags logs
// @Security BearerAuth
// @Param id path string true "Habit ID"
// @Param logID path string true "Log ID"
// @Success 204 "No Content"
// @Failure 404 {object} ErrorResponse
// @Router /habits/{id}/logs/{logID} [delete]
func (h *LogHandler) Delete(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), c.Param("id"), c.Param("logID"), userID); err != nil {
		handleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
