package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/comitanigiacomo/kanso-analytics-engine/internal/core/analytics"
	"github.com/comitanigiacomo/kanso-analytics-engine/internal/core/domain"
)

// DashboardCache is the read-through cache port for computed dashboards.
// Implementations must treat a miss as (nil, nil).
type DashboardCache interface {
	Get(ctx context.Context, key string) (*domain.Dashboard, error)
	Set(ctx context.Context, key string, dashboard *domain.Dashboard, ttl time.Duration) error
	InvalidateUser(ctx context.Context, userID string) error
}

// DashboardCacheTTL bounds how stale a cached dashboard may get; writes
// invalidate eagerly, the TTL is the backstop.
const DashboardCacheTTL = 5 * time.Minute

// AnalyticsService loads a user's habits, logs and categories, runs the
// analytics engine over them and serves the derived views. Each request
// builds its own snapshot; nothing is shared across requests except the
// serialized dashboard cache.
type AnalyticsService struct {
	habitRepo    domain.HabitRepository
	logRepo      domain.HabitLogRepository
	categoryRepo domain.CategoryRepository
	userRepo     domain.UserRepository
	cache        DashboardCache
	trends       analytics.TrendThresholds
}

func NewAnalyticsService(
	habitRepo domain.HabitRepository,
	logRepo domain.HabitLogRepository,
	categoryRepo domain.CategoryRepository,
	userRepo domain.UserRepository,
	cache DashboardCache,
) *AnalyticsService {
	return &AnalyticsService{
		habitRepo:    habitRepo,
		logRepo:      logRepo,
		categoryRepo: categoryRepo,
		userRepo:     userRepo,
		cache:        cache,
		trends:       analytics.DefaultTrendThresholds,
	}
}

// AnalyticsInput scopes one analytics request. Timezone, when set, is an
// IANA name overriding the user's preference; empty falls back to the
// user's stored timezone and then UTC.
type AnalyticsInput struct {
	UserID   string
	From     time.Time
	To       time.Time
	Timezone string
}

// resolveCalendar turns the request into an explicit calendar context.
// The user's stored preference is a best effort: a missing user or an
// unparseable stored zone degrades to UTC rather than failing the request.
func (s *AnalyticsService) resolveCalendar(ctx context.Context, input AnalyticsInput) (analytics.Calendar, string, error) {
	name := input.Timezone
	if name == "" {
		user, err := s.userRepo.GetByID(ctx, input.UserID)
		if err == nil && user.Timezone != "" {
			name = user.Timezone
		}
	}
	if name == "" {
		name = "UTC"
	}

	loc, err := time.LoadLocation(name)
	if err != nil {
		if input.Timezone != "" {
			return analytics.Calendar{}, "", domain.ErrInvalidTimezone
		}
		log.Printf("analytics: stored timezone %q unusable, falling back to UTC: %v", name, err)
		name = "UTC"
		loc = time.UTC
	}

	return analytics.NewCalendar(loc), name, nil
}

type analyticsData struct {
	habits      []*domain.Habit
	categories  []*domain.Category
	logsByHabit map[string][]*domain.HabitLog
}

// loadData fetches everything one request needs: habits, categories, and
// the range's logs in a single batched query grouped per habit.
func (s *AnalyticsService) loadData(ctx context.Context, input AnalyticsInput) (*analyticsData, error) {
	habits, err := s.habitRepo.ListByUserID(ctx, input.UserID)
	if err != nil {
		return nil, fmt.Errorf("analytics: loading habits: %w", err)
	}

	categories, err := s.categoryRepo.ListByUserID(ctx, input.UserID)
	if err != nil {
		return nil, fmt.Errorf("analytics: loading categories: %w", err)
	}

	logsByHabit := make(map[string][]*domain.HabitLog)
	if !input.From.After(input.To) {
		logs, err := s.logRepo.ListByUserIDAndDateRange(ctx, input.UserID, input.From, input.To)
		if err != nil {
			return nil, fmt.Errorf("analytics: loading logs: %w", err)
		}
		for _, l := range logs {
			logsByHabit[l.HabitID] = append(logsByHabit[l.HabitID], l)
		}
	}

	return &analyticsData{habits: habits, categories: categories, logsByHabit: logsByHabit}, nil
}

func dashboardCacheKey(input AnalyticsInput, cal analytics.Calendar, tz string) string {
	return fmt.Sprintf("dashboard:%s:%s:%s:%s", input.UserID, cal.DayKey(input.From), cal.DayKey(input.To), tz)
}

// GetDashboard computes every derived view of the range from one snapshot
// pass, consulting the cache first.
func (s *AnalyticsService) GetDashboard(ctx context.Context, input AnalyticsInput) (*domain.Dashboard, error) {
	cal, tz, err := s.resolveCalendar(ctx, input)
	if err != nil {
		return nil, err
	}

	key := dashboardCacheKey(input, cal, tz)
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, key); err != nil {
			log.Printf("analytics: dashboard cache read failed: %v", err)
		} else if cached != nil {
			return cached, nil
		}
	}

	data, err := s.loadData(ctx, input)
	if err != nil {
		return nil, err
	}

	snap := analytics.BuildSnapshot(cal, data.habits, data.logsByHabit, input.From, input.To)
	streaks := analytics.NewStreakEngine(cal, s.trends)
	agg := analytics.NewPerformanceAggregator(cal)

	dashboard := &domain.Dashboard{
		StartDate:  cal.DayKey(input.From),
		EndDate:    cal.DayKey(input.To),
		Timezone:   tz,
		Streaks:    streaks.StreakAnalysis(data.habits, data.logsByHabit, input.From, input.To),
		Habits:     agg.HabitPerformance(data.habits, data.logsByHabit, input.From, input.To),
		Weekly:     agg.WeeklyPatterns(data.habits, data.logsByHabit, input.From, input.To),
		Categories: agg.CategoryPerformance(data.habits, data.categories, data.logsByHabit, input.From, input.To),
		Chart:      snap.ChartPoints(),
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, dashboard, DashboardCacheTTL); err != nil {
			log.Printf("analytics: dashboard cache write failed: %v", err)
		}
	}

	return dashboard, nil
}

func (s *AnalyticsService) GetHabitPerformance(ctx context.Context, input AnalyticsInput) ([]domain.HabitPerformance, error) {
	cal, _, err := s.resolveCalendar(ctx, input)
	if err != nil {
		return nil, err
	}
	data, err := s.loadData(ctx, input)
	if err != nil {
		return nil, err
	}

	agg := analytics.NewPerformanceAggregator(cal)
	return agg.HabitPerformance(data.habits, data.logsByHabit, input.From, input.To), nil
}

func (s *AnalyticsService) GetWeeklyPatterns(ctx context.Context, input AnalyticsInput) (*domain.WeeklyPatterns, error) {
	cal, _, err := s.resolveCalendar(ctx, input)
	if err != nil {
		return nil, err
	}
	data, err := s.loadData(ctx, input)
	if err != nil {
		return nil, err
	}

	agg := analytics.NewPerformanceAggregator(cal)
	patterns := agg.WeeklyPatterns(data.habits, data.logsByHabit, input.From, input.To)
	return &patterns, nil
}

func (s *AnalyticsService) GetCategoryPerformance(ctx context.Context, input AnalyticsInput) ([]domain.CategoryPerformance, error) {
	cal, _, err := s.resolveCalendar(ctx, input)
	if err != nil {
		return nil, err
	}
	data, err := s.loadData(ctx, input)
	if err != nil {
		return nil, err
	}

	agg := analytics.NewPerformanceAggregator(cal)
	return agg.CategoryPerformance(data.habits, data.categories, data.logsByHabit, input.From, input.To), nil
}

func (s *AnalyticsService) GetStreakAnalysis(ctx context.Context, input AnalyticsInput) (*domain.StreakAnalysis, error) {
	cal, _, err := s.resolveCalendar(ctx, input)
	if err != nil {
		return nil, err
	}
	data, err := s.loadData(ctx, input)
	if err != nil {
		return nil, err
	}

	engine := analytics.NewStreakEngine(cal, s.trends)
	result := engine.StreakAnalysis(data.habits, data.logsByHabit, input.From, input.To)
	return &result, nil
}

func (s *AnalyticsService) GetChart(ctx context.Context, input AnalyticsInput) ([]domain.ChartPoint, error) {
	cal, _, err := s.resolveCalendar(ctx, input)
	if err != nil {
		return nil, err
	}
	data, err := s.loadData(ctx, input)
	if err != nil {
		return nil, err
	}

	snap := analytics.BuildSnapshot(cal, data.habits, data.logsByHabit, input.From, input.To)
	return snap.ChartPoints(), nil
}

// GetHabitStreak reports one habit's streak status as of a reference date,
// checking ownership. The full log history is loaded because the backward
// walk may reach arbitrarily far into the past.
func (s *AnalyticsService) GetHabitStreak(ctx context.Context, userID, habitID, timezone string, asOf time.Time) (*domain.StreakStatus, error) {
	habit, err := s.habitRepo.GetByID(ctx, habitID)
	if err != nil {
		return nil, err
	}
	if habit.UserID != userID {
		return nil, domain.ErrUnauthorized
	}

	cal, _, err := s.resolveCalendar(ctx, AnalyticsInput{UserID: userID, Timezone: timezone})
	if err != nil {
		return nil, err
	}

	logs, err := s.logRepo.ListByHabitIDAll(ctx, habitID)
	if err != nil {
		return nil, fmt.Errorf("analytics: loading logs for habit %s: %w", habitID, err)
	}

	engine := analytics.NewStreakEngine(cal, s.trends)
	status := engine.StreakStatus(habit, logs, asOf)
	return &status, nil
}
