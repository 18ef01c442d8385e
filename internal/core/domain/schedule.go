package domain

import (
	"errors"
	"sort"
)

var (
	ErrInvalidScheduleKind  = errors.New("invalid schedule kind (must be daily, days_of_week, or times_per_week)")
	ErrEmptyWeekdays        = errors.New("days_of_week schedule requires at least one weekday")
	ErrInvalidWeekday       = errors.New("invalid weekday (must be 1=Monday .. 7=Sunday)")
	ErrInvalidTimesPerWeek  = errors.New("times_per_week must be between 1 and 7")
	ErrUnexpectedWeekdays   = errors.New("weekdays are only valid for days_of_week schedules")
	ErrUnexpectedWeeklyGoal = errors.New("times_per_week is only valid for times_per_week schedules")
)

const (
	ScheduleDaily        = "daily"
	ScheduleDaysOfWeek   = "days_of_week"
	ScheduleTimesPerWeek = "times_per_week"
)

// Canonical weekday indices used everywhere in the engine, independent of
// any locale's first day of week.
const (
	WeekdayMonday = 1
	WeekdaySunday = 7
)

// Schedule is a tagged union: exactly one variant is active, selected by
// Kind. Weekdays is meaningful only for days_of_week, TimesPerWeek only
// for times_per_week.
type Schedule struct {
	Kind         string `json:"kind"`
	Weekdays     []int  `json:"weekdays,omitempty"`
	TimesPerWeek int    `json:"times_per_week,omitempty"`
}

func NewDailySchedule() Schedule {
	return Schedule{Kind: ScheduleDaily}
}

func NewDaysOfWeekSchedule(weekdays []int) (Schedule, error) {
	s := Schedule{Kind: ScheduleDaysOfWeek, Weekdays: normalizeWeekdays(weekdays)}
	if err := s.Validate(); err != nil {
		return Schedule{}, err
	}
	return s, nil
}

func NewTimesPerWeekSchedule(count int) (Schedule, error) {
	s := Schedule{Kind: ScheduleTimesPerWeek, TimesPerWeek: count}
	if err := s.Validate(); err != nil {
		return Schedule{}, err
	}
	return s, nil
}

// normalizeWeekdays dedupes and sorts, preserving invalid values so that
// Validate can still reject them.
func normalizeWeekdays(days []int) []int {
	if len(days) == 0 {
		return nil
	}

	seen := make(map[int]bool, len(days))
	var unique []int
	for _, d := range days {
		if !seen[d] {
			seen[d] = true
			unique = append(unique, d)
		}
	}

	sort.Ints(unique)
	return unique
}

func (s Schedule) Validate() error {
	switch s.Kind {
	case ScheduleDaily:
		if len(s.Weekdays) > 0 {
			return ErrUnexpectedWeekdays
		}
		if s.TimesPerWeek != 0 {
			return ErrUnexpectedWeeklyGoal
		}
	case ScheduleDaysOfWeek:
		if len(s.Weekdays) == 0 {
			return ErrEmptyWeekdays
		}
		for _, d := range s.Weekdays {
			if d < WeekdayMonday || d > WeekdaySunday {
				return ErrInvalidWeekday
			}
		}
		if s.TimesPerWeek != 0 {
			return ErrUnexpectedWeeklyGoal
		}
	case ScheduleTimesPerWeek:
		if s.TimesPerWeek < 1 || s.TimesPerWeek > 7 {
			return ErrInvalidTimesPerWeek
		}
		if len(s.Weekdays) > 0 {
			return ErrUnexpectedWeekdays
		}
	default:
		return ErrInvalidScheduleKind
	}

	return nil
}

// ContainsWeekday reports whether the canonical weekday index is part of a
// days_of_week schedule.
func (s Schedule) ContainsWeekday(weekday int) bool {
	for _, d := range s.Weekdays {
		if d == weekday {
			return true
		}
	}
	return false
}
