package analytics_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/kanso-analytics-engine/internal/core/domain"
)

// April 2024 starts on a Monday, which keeps weekday assertions readable.
var (
	mon = time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	tue = mon.AddDate(0, 0, 1)
	wed = mon.AddDate(0, 0, 2)
	thu = mon.AddDate(0, 0, 3)
	fri = mon.AddDate(0, 0, 4)
	sat = mon.AddDate(0, 0, 5)
	sun = mon.AddDate(0, 0, 6)
)

func binaryHabit(t *testing.T, id, name string, sched domain.Schedule, start time.Time) *domain.Habit {
	t.Helper()

	h, err := domain.NewHabit("u1", name, "", domain.HabitKindBinary, sched, nil, start)
	require.NoError(t, err)
	h.ID = id
	return h
}

func numericHabit(t *testing.T, id, name string, target float64, sched domain.Schedule, start time.Time) *domain.Habit {
	t.Helper()

	h, err := domain.NewHabit("u1", name, "", domain.HabitKindNumeric, sched, &target, start)
	require.NoError(t, err)
	h.ID = id
	return h
}

func mwfSchedule(t *testing.T) domain.Schedule {
	t.Helper()

	s, err := domain.NewDaysOfWeekSchedule([]int{1, 3, 5})
	require.NoError(t, err)
	return s
}

func logAt(habitID string, day time.Time, value float64) *domain.HabitLog {
	return domain.NewHabitLog(habitID, "u1", day, &value)
}

func logWrittenAt(habitID string, day time.Time, value float64, writtenAt time.Time) *domain.HabitLog {
	l := logAt(habitID, day, value)
	l.CreatedAt = writtenAt
	l.UpdatedAt = writtenAt
	return l
}
