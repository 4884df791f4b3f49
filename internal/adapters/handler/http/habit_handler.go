package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/kanso-streaks/internal/core/domain"
	"github.com/comitanigiacomo/kanso-streaks/internal/core/services"
)

type HabitHandler struct {
	svc *services.HabitService
}

func NewHabitHandler(svc *services.HabitService) *HabitHandler {
	return &HabitHandler{
		svc: svc,
	}
}

type createHabitRequest struct {
	Name            string      `json:"name" binding:"required"`
	Description     string      `json:"description"`
	GoalType        string      `json:"goal_type" example:"X_PER_WEEK"`
	TargetPerPeriod *int        `json:"target_per_period" example:"3"`
	StartDate       domain.Date `json:"start_date" swaggertype:"string" example:"2024-01-01"`
}

type updateHabitRequest struct {
	Name            *string      `json:"name"`
	Description     *string      `json:"description"`
	GoalType        *string      `json:"goal_type"`
	TargetPerPeriod *int         `json:"target_per_period"`
	StartDate       *domain.Date `json:"start_date" swaggertype:"string"`
}

func (h *HabitHandler) RegisterRoutes(router *gin.RouterGroup) {
	habits := router.Group("/habits")
	{
		habits.POST("", h.Create)
		habits.GET("", h.List)
		habits.GET("/:id", h.Get)
		habits.PATCH("/:id", h.Update)
		habits.DELETE("/:id", h.Archive)
		habits.PATCH("/:id/restore", h.Restore)
	}
}

// Create godoc
// @Summary Create a habit
// @Tags habits
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body createHabitRequest true "Habit definition"
// @Success 201 {object} domain.Habit
// @Failure 400 {object} ErrorResponse
// @Router /habits [post]
func (h *HabitHandler) Create(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req createHabitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	habit, err := h.svc.Create(c.Request.Context(), services.CreateHabitInput{
		UserID:          userID,
		Name:            req.Name,
		Description:     req.Description,
		GoalType:        req.GoalType,
		TargetPerPeriod: req.TargetPerPeriod,
		StartDate:       req.StartDate,
	})
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, habit)
}

// List godoc
// @Summary List habits
// @Description Archived habits are hidden unless include_archived=true.
// @Tags habits
// @Produce json
// @Security BearerAuth
// @Param include_archived query bool false "Include archived habits"
// @Success 200 {array} domain.Habit
// @Router /habits [get]
func (h *HabitHandler) List(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	includeArchived := false
	if raw := c.Query("include_archived"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "include_archived must be a boolean"})
			return
		}
		includeArchived = parsed
	}

	list, err := h.svc.List(c.Request.Context(), userID, includeArchived)
	if err != nil {
		handleError(c, err)
		return
	}

	if list == nil {
		list = []*domain.Habit{}
	}

	c.JSON(http.StatusOK, list)
}

// Get godoc
// @Summary Get a habit
// @Tags habits
// @Produce json
// @Security BearerAuth
// @Param id path string true "Habit ID"
// @Success 200 {object} domain.Habit
// @Failure 404 {object} ErrorResponse
// @Router /habits/{id} [get]
func (h *HabitHandler) Get(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	habit, err := h.svc.Get(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, habit)
}

// Update godoc
// @Summary Partially update a habit
// @Tags habits
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Habit ID"
// @Param request body updateHabitRequest true "Fields to change"
// @Success 200 {object} domain.Habit
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /habits/{id} [patch]
func (h *HabitHandler) Update(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req updateHabitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	habit, err := h.svc.Update(c.Request.Context(), services.UpdateHabitInput{
		ID:              c.Param("id"),
		UserID:          userID,
		Name:            req.Name,
		Description:     req.Description,
		GoalType:        req.GoalType,
		TargetPerPeriod: req.TargetPerPeriod,
		StartDate:       req.StartDate,
	})
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, habit)
}

// Archive godoc
// @Summary Archive a habit
// @Description The habit and its logs are kept and can be restored.
// @Tags habits
// @Security BearerAuth
// @Param id path string true "Habit ID"
// @Success 204 "No Content"
// @Failure 404 {object} ErrorResponse
// @Router /habits/{id} [delete]
func (h *HabitHandler) Archive(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	if err := h.svc.Archive(c.Request.Context(), c.Param("id"), userID); err != nil {
		handleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Restore godoc
// @Summary Restore an archived habit
// @Tags habits
// @Produce json
// @Security BearerAuth
// @Param id path string true "Habit ID"
// @Success 200 {object} domain.Habit
// @Failure 404 {object} ErrorResponse
// @Router /habits/{id}/restore [patch]
func (h *HabitHandler) Restore(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	habit, err := h.svc.Restore(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, habit)
}
