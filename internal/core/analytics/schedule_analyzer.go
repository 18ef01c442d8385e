package analytics

import (
	"time"

	"github.com/comitanigiacomo/kanso-analytics-engine/internal/core/domain"
)

// ScheduleAnalyzer decides, for one habit and one calendar day, whether the
// habit is due that day under its recurrence rule.
type ScheduleAnalyzer struct {
	cal Calendar
}

func NewScheduleAnalyzer(cal Calendar) ScheduleAnalyzer {
	return ScheduleAnalyzer{cal: cal}
}

// matchesSchedule is the single exhaustive dispatch point over the schedule
// variants. A times_per_week habit is a candidate every day: the weekly
// quota is resolved downstream by the aggregator, not as a per-day boolean.
// A malformed schedule matches nothing.
func (a ScheduleAnalyzer) matchesSchedule(habit *domain.Habit, day time.Time) bool {
	switch habit.Schedule.Kind {
	case domain.ScheduleDaily:
		return true
	case domain.ScheduleDaysOfWeek:
		return habit.Schedule.ContainsWeekday(a.cal.WeekdayIndex(day))
	case domain.ScheduleTimesPerWeek:
		return true
	default:
		return false
	}
}

// ended reports whether the habit's declared end date lies before the day.
func (a ScheduleAnalyzer) ended(habit *domain.Habit, day time.Time) bool {
	return habit.EndDate != nil && day.After(a.cal.DayStart(*habit.EndDate))
}

// IsExpected reports whether the habit is due on the given date: the habit
// must be active, the date inside its declared start/end window, and the
// schedule must match.
func (a ScheduleAnalyzer) IsExpected(habit *domain.Habit, date time.Time) bool {
	if !habit.IsActive {
		return false
	}

	day := a.cal.DayStart(date)
	if day.Before(a.cal.DayStart(habit.StartDate)) {
		return false
	}
	if a.ended(habit, day) {
		return false
	}

	return a.matchesSchedule(habit, day)
}

// CountExpectedDays walks the inclusive range day by day and counts due
// days. The declared start date is deliberately NOT applied here: the
// caller owns the lower bound of the walk, which lets the aggregator clip
// to a habit's effective start date so retroactively logged days before the
// declared start still count as expected.
func (a ScheduleAnalyzer) CountExpectedDays(habit *domain.Habit, from, to time.Time) int {
	from = a.cal.DayStart(from)
	to = a.cal.DayStart(to)

	count := 0
	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		if habit.IsActive && !a.ended(habit, day) && a.matchesSchedule(habit, day) {
			count++
		}
	}
	return count
}

// isDue is IsExpected with a caller-supplied lower bound replacing the
// declared start date. Streak walks use it with the effective start.
func (a ScheduleAnalyzer) isDue(habit *domain.Habit, day, floor time.Time) bool {
	if !habit.IsActive || day.Before(floor) || a.ended(habit, day) {
		return false
	}
	return a.matchesSchedule(habit, day)
}
