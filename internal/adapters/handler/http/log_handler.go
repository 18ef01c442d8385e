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

type LogHandler struct {
	svc *services.LogService
}

func NewLogHandler(svc *services.LogService) *LogHandler {
	return &LogHandler{
		svc: svc,
	}
}

type createLogRequest struct {
	Date  string   `json:"date" binding:"required"`
	Value *float64 `json:"value"`
	Note  string   `json:"note"`
}

type updateLogRequest struct {
	Value   *float64 `json:"value"`
	Note    string   `json:"note"`
	Version int      `json:"version"`
}

func (h *LogHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/habits/:id/logs", h.Create)
	router.GET("/habits/:id/logs", h.List)

	logs := router.Group("/logs")
	{
		logs.PUT("/:id", h.Update)
		logs.DELETE("/:id", h.Delete)
	}
}

func writeLogError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrLogNotFound), errors.Is(err, domain.ErrHabitNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, domain.ErrUnauthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	case errors.Is(err, domain.ErrLogConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "log was modified by another request"})
	case errors.Is(err, domain.ErrNegativeValue),
		errors.Is(err, domain.ErrLogMissingDate),
		errors.Is(err, domain.ErrLogMissingHabit),
		errors.Is(err, domain.ErrInvalidLog):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func (h *LogHandler) Create(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	var req createLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	date, err := parseDay(req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date format, expected YYYY-MM-DD"})
		return
	}

	entry, err := h.svc.Create(c.Request.Context(), services.CreateLogInput{
		HabitID: c.Param("id"),
		UserID:  userID,
		Date:    date,
		Value:   req.Value,
		Note:    req.Note,
	})
	if err != nil {
		writeLogError(c, err)
		return
	}

	c.JSON(http.StatusCreated, entry)
}

func (h *LogHandler) List(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	from, to, ok := parseRange(c)
	if !ok {
		return
	}

	logs, err := h.svc.ListByHabitID(c.Request.Context(), c.Param("id"), userID, from, to)
	if err != nil {
		writeLogError(c, err)
		return
	}

	c.JSON(http.StatusOK, logs)
}

func (h *LogHandler) Update(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	var req updateLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entry, err := h.svc.Update(c.Request.Context(), services.UpdateLogInput{
		ID:      c.Param("id"),
		UserID:  userID,
		Value:   req.Value,
		Note:    req.Note,
		Version: req.Version,
	})
	if err != nil {
		writeLogError(c, err)
		return
	}

	c.JSON(http.StatusOK, entry)
}

func (h *LogHandler) Delete(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	if err := h.svc.Delete(c.Request.Context(), c.Param("id"), userID); err != nil {
		writeLogError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// parseRange reads start_date/end_date query params with the same defaults
// and guards on every range endpoint: end defaults to today, start to a
// week before end, and oversized or inverted ranges are rejected.
func parseRange(c *gin.Context) (time.Time, time.Time, bool) {
	var from, to time.Time
	var err error

	endStr := c.Query("end_date")
	if endStr == "" {
		to = time.Now().UTC()
	} else {
		to, err = parseDay(endStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end_date format, expected YYYY-MM-DD"})
			return from, to, false
		}
	}

	startStr := c.Query("start_date")
	if startStr == "" {
		from = to.AddDate(0, 0, -6)
	} else {
		from, err = parseDay(startStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start_date format, expected YYYY-MM-DD"})
			return from, to, false
		}
	}

	if from.After(to) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start_date cannot be after end_date"})
		return from, to, false
	}

	const maxDaysRange = 366
	if to.Sub(from).Hours()/24 > maxDaysRange {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date range too large, max 1 year allowed"})
		return from, to, false
	}

	return from, to, true
}
