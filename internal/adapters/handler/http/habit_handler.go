package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/kanso-analytics-engine/internal/adapters/handler/http/middleware"
	"github.com/comitanigiacomo/kanso-analytics-engine/internal/core/domain"
	"github.com/comitanigiacomo/kanso-analytics-engine/internal/core/services"
)

type HabitHandler struct {
	svc *services.HabitService
}

func NewHabitHandler(svc *services.HabitService) *HabitHandler {
	return &HabitHandler{
		svc: svc,
	}
}

type scheduleRequest struct {
	Kind         string `json:"kind" binding:"required"`
	Weekdays     []int  `json:"weekdays"`
	TimesPerWeek int    `json:"times_per_week"`
}

type createHabitRequest struct {
	Name        string          `json:"name" binding:"required"`
	Icon        string          `json:"icon"`
	Kind        string          `json:"kind" binding:"required"`
	Schedule    scheduleRequest `json:"schedule" binding:"required"`
	CategoryID  *string         `json:"category_id"`
	DailyTarget *float64        `json:"daily_target"`
	StartDate   string          `json:"start_date"`
}

type updateHabitRequest struct {
	Name        string          `json:"name" binding:"required"`
	Icon        string          `json:"icon"`
	Kind        string          `json:"kind" binding:"required"`
	Schedule    scheduleRequest `json:"schedule" binding:"required"`
	CategoryID  *string         `json:"category_id"`
	DailyTarget *float64        `json:"daily_target"`
	EndDate     *string         `json:"end_date"`
	Version     int             `json:"version"`
}

func (h *HabitHandler) RegisterRoutes(router *gin.RouterGroup) {
	habits := router.Group("/habits")
	{
		habits.POST("", h.Create)
		habits.GET("", h.List)
		habits.GET("/:id", h.Get)
		habits.PUT("/:id", h.Update)
		habits.POST("/:id/archive", h.Archive)
		habits.DELETE("/:id", h.Delete)
	}
}

func buildSchedule(req scheduleRequest) (domain.Schedule, error) {
	switch req.Kind {
	case domain.ScheduleDaily:
		return domain.NewDailySchedule(), nil
	case domain.ScheduleDaysOfWeek:
		return domain.NewDaysOfWeekSchedule(req.Weekdays)
	case domain.ScheduleTimesPerWeek:
		return domain.NewTimesPerWeekSchedule(req.TimesPerWeek)
	default:
		return domain.Schedule{}, domain.ErrInvalidScheduleKind
	}
}

func parseDay(value string) (time.Time, error) {
	return time.Parse("2006-01-02", value)
}

func writeHabitError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrHabitNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "habit not found"})
	case errors.Is(err, domain.ErrHabitConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "habit was modified by another request"})
	case errors.Is(err, domain.ErrHabitNameEmpty),
		errors.Is(err, domain.ErrHabitNameTooLong),
		errors.Is(err, domain.ErrInvalidHabitKind),
		errors.Is(err, domain.ErrMissingDailyTarget),
		errors.Is(err, domain.ErrInvalidDailyTarget),
		errors.Is(err, domain.ErrInvalidDateWindow),
		errors.Is(err, domain.ErrHabitArchived),
		errors.Is(err, domain.ErrInvalidScheduleKind),
		errors.Is(err, domain.ErrEmptyWeekdays),
		errors.Is(err, domain.ErrInvalidWeekday),
		errors.Is(err, domain.ErrInvalidTimesPerWeek):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func (h *HabitHandler) Create(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	var req createHabitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	schedule, err := buildSchedule(req.Schedule)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	startDate := time.Now().UTC()
	if req.StartDate != "" {
		startDate, err = parseDay(req.StartDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start_date format, expected YYYY-MM-DD"})
			return
		}
	}

	habit, err := h.svc.Create(c.Request.Context(), services.CreateHabitInput{
		UserID:      userID,
		Name:        req.Name,
		Icon:        req.Icon,
		Kind:        req.Kind,
		Schedule:    schedule,
		CategoryID:  req.CategoryID,
		DailyTarget: req.DailyTarget,
		StartDate:   startDate,
	})
	if err != nil {
		writeHabitError(c, err)
		return
	}

	c.JSON(http.StatusCreated, habit)
}

func (h *HabitHandler) List(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	list, err := h.svc.ListByUserID(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, list)
}

func (h *HabitHandler) Get(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	habit, err := h.svc.GetByID(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		writeHabitError(c, err)
		return
	}

	c.JSON(http.StatusOK, habit)
}

func (h *HabitHandler) Update(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	var req updateHabitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	schedule, err := buildSchedule(req.Schedule)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var endDate *time.Time
	if req.EndDate != nil && *req.EndDate != "" {
		parsed, err := parseDay(*req.EndDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end_date format, expected YYYY-MM-DD"})
			return
		}
		endDate = &parsed
	}

	habit, err := h.svc.Update(c.Request.Context(), services.UpdateHabitInput{
		ID:          c.Param("id"),
		UserID:      userID,
		Name:        req.Name,
		Icon:        req.Icon,
		Kind:        req.Kind,
		Schedule:    schedule,
		CategoryID:  req.CategoryID,
		DailyTarget: req.DailyTarget,
		EndDate:     endDate,
		Version:     req.Version,
	})
	if err != nil {
		writeHabitError(c, err)
		return
	}

	c.JSON(http.StatusOK, habit)
}

func (h *HabitHandler) Archive(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	if err := h.svc.Archive(c.Request.Context(), c.Param("id"), userID); err != nil {
		writeHabitError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *HabitHandler) Delete(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	if err := h.svc.Delete(c.Request.Context(), c.Param("id"), userID); err != nil {
		writeHabitError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
