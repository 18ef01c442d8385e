package http_test

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/kanso-analytics-engine/internal/core/domain"
)

// seedWeek sets up one user with a daily habit and completions on the
// first three days of April 2024.
func seedWeek(t *testing.T, env *testEnv) *domain.Habit {
	t.Helper()

	env.seedUser(t, "user-1", "giulia@example.com", "UTC")
	start := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	habit := env.seedHabit(t, "user-1", "Meditate", domain.NewDailySchedule(), start)

	for offset := 0; offset < 3; offset++ {
		env.seedLog(t, habit.ID, "user-1", start.AddDate(0, 0, offset), nil)
	}
	return habit
}

const aprilWeek = "start_date=2024-04-01&end_date=2024-04-07"

func TestGetDashboard(t *testing.T) {
	t.Run("Success: full dashboard for the range", func(t *testing.T) {
		env := newTestEnv(t)
		seedWeek(t, env)

		w := env.do(t, "GET", "/api/v1/analytics/dashboard?"+aprilWeek, "", "user-1")

		require.Equal(t, http.StatusOK, w.Code)

		var dashboard domain.Dashboard
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &dashboard))
		assert.Equal(t, "2024-04-01", dashboard.StartDate)
		assert.Equal(t, "2024-04-07", dashboard.EndDate)
		assert.Equal(t, "UTC", dashboard.Timezone)
		assert.Len(t, dashboard.Chart, 7)
		assert.Len(t, dashboard.Habits, 1)
		assert.InDelta(t, 3.0/7.0, dashboard.Habits[0].CompletionRate, 0.001)
	})

	t.Run("Success: timezone query overrides the stored zone", func(t *testing.T) {
		env := newTestEnv(t)
		seedWeek(t, env)

		w := env.do(t, "GET", "/api/v1/analytics/dashboard?"+aprilWeek+"&timezone=Asia/Tokyo", "", "user-1")

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"timezone":"Asia/Tokyo"`)
	})

	t.Run("Error: 400 on unknown timezone", func(t *testing.T) {
		env := newTestEnv(t)
		seedWeek(t, env)

		w := env.do(t, "GET", "/api/v1/analytics/dashboard?"+aprilWeek+"&timezone=Mars/Olympus", "", "user-1")

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Error: 400 on inverted range", func(t *testing.T) {
		env := newTestEnv(t)
		seedWeek(t, env)

		w := env.do(t, "GET", "/api/v1/analytics/dashboard?start_date=2024-04-07&end_date=2024-04-01", "", "user-1")

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestAnalyticsViews(t *testing.T) {
	t.Run("Success: habit performance view", func(t *testing.T) {
		env := newTestEnv(t)
		habit := seedWeek(t, env)

		w := env.do(t, "GET", "/api/v1/analytics/habits?"+aprilWeek, "", "user-1")

		require.Equal(t, http.StatusOK, w.Code)

		var habits []domain.HabitPerformance
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &habits))
		require.Len(t, habits, 1)
		assert.Equal(t, habit.ID, habits[0].HabitID)
		assert.Equal(t, 7, habits[0].ExpectedDays)
		assert.Equal(t, 3, habits[0].CompletedDays)
	})

	t.Run("Success: weekly patterns view", func(t *testing.T) {
		env := newTestEnv(t)
		seedWeek(t, env)

		w := env.do(t, "GET", "/api/v1/analytics/weekly?"+aprilWeek, "", "user-1")

		require.Equal(t, http.StatusOK, w.Code)

		var patterns domain.WeeklyPatterns
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &patterns))
		assert.Len(t, patterns.Days, 7)
		assert.NotEmpty(t, patterns.BestDay)
	})

	t.Run("Success: chart view has one point per day", func(t *testing.T) {
		env := newTestEnv(t)
		seedWeek(t, env)

		w := env.do(t, "GET", "/api/v1/analytics/chart?"+aprilWeek, "", "user-1")

		require.Equal(t, http.StatusOK, w.Code)

		var chart []domain.ChartPoint
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &chart))
		require.Len(t, chart, 7)
		assert.Equal(t, "2024-04-01", chart[0].Date)
		assert.Equal(t, 1, chart[0].Completed)
		assert.Equal(t, 0, chart[6].Completed)
	})

	t.Run("Success: streak analysis view", func(t *testing.T) {
		env := newTestEnv(t)
		seedWeek(t, env)

		w := env.do(t, "GET", "/api/v1/analytics/streaks?"+aprilWeek, "", "user-1")

		require.Equal(t, http.StatusOK, w.Code)

		var streaks domain.StreakAnalysis
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &streaks))
		assert.Equal(t, 3, streaks.DaysWithFullCompletion)
	})

	t.Run("Success: category view groups habits", func(t *testing.T) {
		env := newTestEnv(t)
		seedWeek(t, env)
		seedCategory(t, env, "user-1", "Mind")

		w := env.do(t, "GET", "/api/v1/analytics/categories?"+aprilWeek, "", "user-1")

		require.Equal(t, http.StatusOK, w.Code)
	})
}

func TestGetHabitStreak(t *testing.T) {
	t.Run("Success: streak counted up to as_of", func(t *testing.T) {
		env := newTestEnv(t)
		habit := seedWeek(t, env)

		path := "/api/v1/habits/" + habit.ID + "/streak?as_of=2024-04-03"
		w := env.do(t, "GET", path, "", "user-1")

		require.Equal(t, http.StatusOK, w.Code)

		var status domain.StreakStatus
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
		assert.Equal(t, 3, status.Current)
		assert.Equal(t, 3, status.Longest)
	})

	t.Run("Error: 403 on another user's habit", func(t *testing.T) {
		env := newTestEnv(t)
		seedWeek(t, env)
		start := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
		foreign := env.seedHabit(t, "user-2", "Swim", domain.NewDailySchedule(), start)

		w := env.do(t, "GET", "/api/v1/habits/"+foreign.ID+"/streak", "", "user-1")

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("Error: 404 on unknown habit", func(t *testing.T) {
		env := newTestEnv(t)
		seedWeek(t, env)

		w := env.do(t, "GET", "/api/v1/habits/missing/streak", "", "user-1")

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
