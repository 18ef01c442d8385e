package domain

import "time"

// Trend labels for a streak history.
const (
	TrendImproving = "improving"
	TrendDeclining = "declining"
	TrendStable    = "stable"
)

// DayCompletion is the engine-owned per-day fact: which habits were due and
// which of those were done. CompletedHabitIDs is always a subset of
// ExpectedHabitIDs; CompletionRate is 0 when nothing was expected.
type DayCompletion struct {
	Date              time.Time `json:"date"`
	CompletedHabitIDs []string  `json:"completed_habit_ids"`
	ExpectedHabitIDs  []string  `json:"expected_habit_ids"`
	CompletionRate    float64   `json:"completion_rate"`
}

// ChartPoint is one day of the dashboard time series.
type ChartPoint struct {
	Date           string  `json:"date"`
	CompletionRate float64 `json:"completion_rate"`
	Completed      int     `json:"completed"`
	Expected       int     `json:"expected"`
}

// HabitPerformance is the per-habit slice of a date range.
type HabitPerformance struct {
	HabitID        string  `json:"habit_id"`
	Name           string  `json:"name"`
	Icon           string  `json:"icon"`
	CompletedDays  int     `json:"completed_days"`
	ExpectedDays   int     `json:"expected_days"`
	CompletionRate float64 `json:"completion_rate"`
}

// StreakStatus describes one habit's streak as of a reference date.
type StreakStatus struct {
	Current            int        `json:"current"`
	Longest            int        `json:"longest"`
	IsAtRisk           bool       `json:"is_at_risk"`
	LastCompletionDate *time.Time `json:"last_completion_date,omitempty"`
}

// StreakAnalysis is the portfolio-level streak summary: a day counts only
// when every expected habit was completed.
type StreakAnalysis struct {
	CurrentStreak          int     `json:"current_streak"`
	LongestStreak          int     `json:"longest_streak"`
	Trend                  string  `json:"trend"`
	ConsistencyScore       float64 `json:"consistency_score"`
	DaysWithFullCompletion int     `json:"days_with_full_completion"`
}

// WeekdayPerformance is one canonical-weekday bucket (Monday=1..Sunday=7).
type WeekdayPerformance struct {
	Weekday                int     `json:"weekday"`
	Name                   string  `json:"name"`
	CompletionRate         float64 `json:"completion_rate"`
	AverageHabitsCompleted float64 `json:"average_habits_completed"`
}

type WeeklyPatterns struct {
	Days                    []WeekdayPerformance `json:"days"`
	BestDay                 string               `json:"best_day"`
	WorstDay                string               `json:"worst_day"`
	AverageWeeklyCompletion float64              `json:"average_weekly_completion"`
}

type CategoryPerformance struct {
	CategoryID     string  `json:"category_id"`
	Name           string  `json:"name"`
	Color          string  `json:"color,omitempty"`
	HabitCount     int     `json:"habit_count"`
	CompletedDays  int     `json:"completed_days"`
	ExpectedDays   int     `json:"expected_days"`
	CompletionRate float64 `json:"completion_rate"`
}

// Dashboard bundles every derived view for one analytics request.
type Dashboard struct {
	StartDate  string                `json:"start_date"`
	EndDate    string                `json:"end_date"`
	Timezone   string                `json:"timezone"`
	Streaks    StreakAnalysis        `json:"streaks"`
	Habits     []HabitPerformance    `json:"habits"`
	Weekly     WeeklyPatterns        `json:"weekly"`
	Categories []CategoryPerformance `json:"categories"`
	Chart      []ChartPoint          `json:"chart"`
}
