package http_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/kanso-analytics-engine/internal/core/domain"
)

func TestCreateHabit(t *testing.T) {
	t.Run("Success: 201 with binary daily habit", func(t *testing.T) {
		env := newTestEnv(t)

		body := `{
			"name": "Meditate",
			"kind": "binary",
			"schedule": {"kind": "daily"},
			"start_date": "2024-04-01"
		}`
		w := env.do(t, "POST", "/api/v1/habits", body, "user-1")

		require.Equal(t, http.StatusCreated, w.Code)

		var habit domain.Habit
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &habit))
		assert.NotEmpty(t, habit.ID)
		assert.Equal(t, "user-1", habit.UserID)
		assert.Equal(t, domain.ScheduleDaily, habit.Schedule.Kind)
		assert.Equal(t, 1, habit.Version)
		assert.True(t, habit.IsActive)
	})

	t.Run("Success: 201 with numeric times_per_week habit", func(t *testing.T) {
		env := newTestEnv(t)

		body := `{
			"name": "Run 5k",
			"kind": "numeric",
			"daily_target": 5,
			"schedule": {"kind": "times_per_week", "times_per_week": 3}
		}`
		w := env.do(t, "POST", "/api/v1/habits", body, "user-1")

		require.Equal(t, http.StatusCreated, w.Code)

		var habit domain.Habit
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &habit))
		assert.Equal(t, 3, habit.Schedule.TimesPerWeek)
		require.NotNil(t, habit.DailyTarget)
		assert.InDelta(t, 5.0, *habit.DailyTarget, 0.001)
	})

	t.Run("Error: 400 when numeric habit misses daily target", func(t *testing.T) {
		env := newTestEnv(t)

		body := `{"name": "Run 5k", "kind": "numeric", "schedule": {"kind": "daily"}}`
		w := env.do(t, "POST", "/api/v1/habits", body, "user-1")

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Error: 400 on unknown schedule kind", func(t *testing.T) {
		env := newTestEnv(t)

		body := `{"name": "Meditate", "kind": "binary", "schedule": {"kind": "hourly"}}`
		w := env.do(t, "POST", "/api/v1/habits", body, "user-1")

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Error: 400 on weekday out of range", func(t *testing.T) {
		env := newTestEnv(t)

		body := `{"name": "Meditate", "kind": "binary", "schedule": {"kind": "days_of_week", "weekdays": [0, 8]}}`
		w := env.do(t, "POST", "/api/v1/habits", body, "user-1")

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Error: 401 without credentials", func(t *testing.T) {
		env := newTestEnv(t)

		body := `{"name": "Meditate", "kind": "binary", "schedule": {"kind": "daily"}}`
		w := env.do(t, "POST", "/api/v1/habits", body, "")

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestListHabits(t *testing.T) {
	t.Run("Success: only the requester's habits", func(t *testing.T) {
		env := newTestEnv(t)
		start := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
		env.seedHabit(t, "user-1", "Meditate", domain.NewDailySchedule(), start)
		env.seedHabit(t, "user-1", "Read", domain.NewDailySchedule(), start)
		env.seedHabit(t, "user-2", "Swim", domain.NewDailySchedule(), start)

		w := env.do(t, "GET", "/api/v1/habits", "", "user-1")

		require.Equal(t, http.StatusOK, w.Code)

		var list []domain.Habit
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
		assert.Len(t, list, 2)
	})
}

func TestGetHabit(t *testing.T) {
	t.Run("Error: 404 for another user's habit", func(t *testing.T) {
		env := newTestEnv(t)
		start := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
		habit := env.seedHabit(t, "user-2", "Swim", domain.NewDailySchedule(), start)

		w := env.do(t, "GET", "/api/v1/habits/"+habit.ID, "", "user-1")

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestUpdateHabit(t *testing.T) {
	start := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)

	updateBody := func(version int) string {
		return fmt.Sprintf(`{
			"name": "Meditate longer",
			"kind": "binary",
			"schedule": {"kind": "days_of_week", "weekdays": [1, 3, 5]},
			"version": %d
		}`, version)
	}

	t.Run("Success: 200 with bumped version", func(t *testing.T) {
		env := newTestEnv(t)
		habit := env.seedHabit(t, "user-1", "Meditate", domain.NewDailySchedule(), start)

		w := env.do(t, "PUT", "/api/v1/habits/"+habit.ID, updateBody(habit.Version), "user-1")

		require.Equal(t, http.StatusOK, w.Code)

		var updated domain.Habit
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
		assert.Equal(t, "Meditate longer", updated.Name)
		assert.Equal(t, habit.Version+1, updated.Version)
		assert.Equal(t, domain.ScheduleDaysOfWeek, updated.Schedule.Kind)
	})

	t.Run("Error: 409 on stale version", func(t *testing.T) {
		env := newTestEnv(t)
		habit := env.seedHabit(t, "user-1", "Meditate", domain.NewDailySchedule(), start)

		first := env.do(t, "PUT", "/api/v1/habits/"+habit.ID, updateBody(habit.Version), "user-1")
		require.Equal(t, http.StatusOK, first.Code)

		second := env.do(t, "PUT", "/api/v1/habits/"+habit.ID, updateBody(habit.Version), "user-1")
		assert.Equal(t, http.StatusConflict, second.Code)
	})

	t.Run("Error: 404 for another user's habit", func(t *testing.T) {
		env := newTestEnv(t)
		habit := env.seedHabit(t, "user-2", "Swim", domain.NewDailySchedule(), start)

		w := env.do(t, "PUT", "/api/v1/habits/"+habit.ID, updateBody(habit.Version), "user-1")

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestArchiveHabit(t *testing.T) {
	t.Run("Success: 204 and habit inactive", func(t *testing.T) {
		env := newTestEnv(t)
		start := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
		habit := env.seedHabit(t, "user-1", "Meditate", domain.NewDailySchedule(), start)

		w := env.do(t, "POST", "/api/v1/habits/"+habit.ID+"/archive", "", "user-1")
		require.Equal(t, http.StatusNoContent, w.Code)

		stored, err := env.habits.GetByID(context.Background(), habit.ID)
		require.NoError(t, err)
		assert.False(t, stored.IsActive)
	})
}

func TestDeleteHabit(t *testing.T) {
	t.Run("Success: 204 and habit gone from reads", func(t *testing.T) {
		env := newTestEnv(t)
		start := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
		habit := env.seedHabit(t, "user-1", "Meditate", domain.NewDailySchedule(), start)

		w := env.do(t, "DELETE", "/api/v1/habits/"+habit.ID, "", "user-1")
		require.Equal(t, http.StatusNoContent, w.Code)

		_, err := env.habits.GetByID(context.Background(), habit.ID)
		assert.ErrorIs(t, err, domain.ErrHabitNotFound)
	})

	t.Run("Error: 404 for another user's habit", func(t *testing.T) {
		env := newTestEnv(t)
		start := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
		habit := env.seedHabit(t, "user-2", "Swim", domain.NewDailySchedule(), start)

		w := env.do(t, "DELETE", "/api/v1/habits/"+habit.ID, "", "user-1")

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
