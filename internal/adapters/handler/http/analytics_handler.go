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

type AnalyticsHandler struct {
	svc *services.AnalyticsService
}

func NewAnalyticsHandler(svc *services.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{svc: svc}
}

func (h *AnalyticsHandler) RegisterRoutes(router *gin.RouterGroup) {
	analytics := router.Group("/analytics")
	{
		analytics.GET("/dashboard", h.GetDashboard)
		analytics.GET("/habits", h.GetHabitPerformance)
		analytics.GET("/weekly", h.GetWeeklyPatterns)
		analytics.GET("/categories", h.GetCategoryPerformance)
		analytics.GET("/streaks", h.GetStreakAnalysis)
		analytics.GET("/chart", h.GetChart)
	}

	router.GET("/habits/:id/streak", h.GetHabitStreak)
}

// analyticsInput binds the shared query surface of every analytics route:
// the date range plus an optional timezone override.
func (h *AnalyticsHandler) analyticsInput(c *gin.Context) (services.AnalyticsInput, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return services.AnalyticsInput{}, false
	}

	from, to, ok := parseRange(c)
	if !ok {
		return services.AnalyticsInput{}, false
	}

	return services.AnalyticsInput{
		UserID:   userID,
		From:     from,
		To:       to,
		Timezone: c.Query("timezone"),
	}, true
}

func writeAnalyticsError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidTimezone):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid timezone"})
	case errors.Is(err, domain.ErrHabitNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "habit not found"})
	case errors.Is(err, domain.ErrUnauthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute analytics"})
	}
}

func (h *AnalyticsHandler) GetDashboard(c *gin.Context) {
	input, ok := h.analyticsInput(c)
	if !ok {
		return
	}

	dashboard, err := h.svc.GetDashboard(c.Request.Context(), input)
	if err != nil {
		writeAnalyticsError(c, err)
		return
	}

	c.JSON(http.StatusOK, dashboard)
}

func (h *AnalyticsHandler) GetHabitPerformance(c *gin.Context) {
	input, ok := h.analyticsInput(c)
	if !ok {
		return
	}

	perf, err := h.svc.GetHabitPerformance(c.Request.Context(), input)
	if err != nil {
		writeAnalyticsError(c, err)
		return
	}

	c.JSON(http.StatusOK, perf)
}

func (h *AnalyticsHandler) GetWeeklyPatterns(c *gin.Context) {
	input, ok := h.analyticsInput(c)
	if !ok {
		return
	}

	patterns, err := h.svc.GetWeeklyPatterns(c.Request.Context(), input)
	if err != nil {
		writeAnalyticsError(c, err)
		return
	}

	c.JSON(http.StatusOK, patterns)
}

func (h *AnalyticsHandler) GetCategoryPerformance(c *gin.Context) {
	input, ok := h.analyticsInput(c)
	if !ok {
		return
	}

	categories, err := h.svc.GetCategoryPerformance(c.Request.Context(), input)
	if err != nil {
		writeAnalyticsError(c, err)
		return
	}

	c.JSON(http.StatusOK, categories)
}

func (h *AnalyticsHandler) GetStreakAnalysis(c *gin.Context) {
	input, ok := h.analyticsInput(c)
	if !ok {
		return
	}

	analysis, err := h.svc.GetStreakAnalysis(c.Request.Context(), input)
	if err != nil {
		writeAnalyticsError(c, err)
		return
	}

	c.JSON(http.StatusOK, analysis)
}

func (h *AnalyticsHandler) GetChart(c *gin.Context) {
	input, ok := h.analyticsInput(c)
	if !ok {
		return
	}

	chart, err := h.svc.GetChart(c.Request.Context(), input)
	if err != nil {
		writeAnalyticsError(c, err)
		return
	}

	c.JSON(http.StatusOK, chart)
}

func (h *AnalyticsHandler) GetHabitStreak(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	asOf := time.Now()
	if asOfStr := c.Query("as_of"); asOfStr != "" {
		parsed, err := parseDay(asOfStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid as_of format, expected YYYY-MM-DD"})
			return
		}
		asOf = parsed
	}

	status, err := h.svc.GetHabitStreak(c.Request.Context(), userID, c.Param("id"), c.Query("timezone"), asOf)
	if err != nil {
		writeAnalyticsError(c, err)
		return
	}

	c.JSON(http.StatusOK, status)
}
