package analytics

import (
	"time"

	"github.com/comitanigiacomo/kanso-analytics-engine/internal/core/domain"
)

// CompletionEvaluator decides whether logged evidence satisfies a habit's
// completion rule on a given calendar day.
//
// Duplicate-log policy: when several logs exist for the same habit and day,
// the most recently written one is the day's authoritative value. Summing
// was rejected because it breaks idempotence: duplicating a log must never
// change the completion verdict.
type CompletionEvaluator struct {
	cal Calendar
}

func NewCompletionEvaluator(cal Calendar) CompletionEvaluator {
	return CompletionEvaluator{cal: cal}
}

// latestLogForDay returns the most recently written log matching the habit
// and calendar day, or nil. Later slice entries win timestamp ties.
func (e CompletionEvaluator) latestLogForDay(habitID string, date time.Time, logs []*domain.HabitLog) *domain.HabitLog {
	var latest *domain.HabitLog
	for _, l := range logs {
		if l == nil || l.HabitID != habitID {
			continue
		}
		if !e.cal.SameDay(l.Date, date) {
			continue
		}
		if latest == nil || !l.UpdatedAt.Before(latest.UpdatedAt) {
			latest = l
		}
	}
	return latest
}

// DailyValue returns the authoritative numeric value logged for the day,
// 0 when nothing was logged.
func (e CompletionEvaluator) DailyValue(habit *domain.Habit, date time.Time, logs []*domain.HabitLog) float64 {
	l := e.latestLogForDay(habit.ID, date, logs)
	if l == nil {
		return 0
	}
	return l.LoggedValue()
}

// IsCompleted reports whether the habit counts as done on the date.
// Binary habits need any same-day log with a positive value; numeric
// habits need the day's value to reach the daily target.
func (e CompletionEvaluator) IsCompleted(habit *domain.Habit, date time.Time, logs []*domain.HabitLog) bool {
	switch habit.Kind {
	case domain.HabitKindBinary:
		for _, l := range logs {
			if l != nil && l.HabitID == habit.ID && e.cal.SameDay(l.Date, date) && l.LoggedValue() > 0 {
				return true
			}
		}
		return false
	case domain.HabitKindNumeric:
		target := habit.TargetValue()
		if target <= 0 {
			return false
		}
		return e.DailyValue(habit, date, logs) >= target
	default:
		return false
	}
}

// DailyProgress returns completion progress in [0, 1]. Binary habits jump
// straight from 0 to 1; numeric habits report value/target clamped at 1,
// and 0 when the target is unset or non-positive.
func (e CompletionEvaluator) DailyProgress(habit *domain.Habit, date time.Time, logs []*domain.HabitLog) float64 {
	switch habit.Kind {
	case domain.HabitKindBinary:
		if e.IsCompleted(habit, date, logs) {
			return 1
		}
		return 0
	case domain.HabitKindNumeric:
		target := habit.TargetValue()
		if target <= 0 {
			return 0
		}
		progress := e.DailyValue(habit, date, logs) / target
		if progress > 1 {
			return 1
		}
		if progress < 0 {
			return 0
		}
		return progress
	default:
		return 0
	}
}
