// Package analytics computes per-day habit satisfaction and the derived
// streak, completion-rate, weekly-pattern and category views. Everything in
// this package is a pure computation over already-loaded collections: no
// repositories, no clocks, no ambient timezone state.
package analytics

import "time"

// Calendar carries the calendar rules of one analytics request: every
// date handled by the engine is interpreted in this location. It is passed
// explicitly into every component instead of relying on time.Local.
type Calendar struct {
	loc *time.Location
}

func NewCalendar(loc *time.Location) Calendar {
	if loc == nil {
		loc = time.UTC
	}
	return Calendar{loc: loc}
}

func (c Calendar) Location() *time.Location {
	if c.loc == nil {
		return time.UTC
	}
	return c.loc
}

// DayStart normalizes an instant to midnight of its calendar day in the
// calendar's location.
func (c Calendar) DayStart(t time.Time) time.Time {
	t = t.In(c.Location())
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, c.Location())
}

func (c Calendar) SameDay(a, b time.Time) bool {
	a = a.In(c.Location())
	b = b.In(c.Location())
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

// DayKey renders the calendar day as a stable map key.
func (c Calendar) DayKey(t time.Time) string {
	return t.In(c.Location()).Format("2006-01-02")
}

// WeekdayIndex maps Go's Sunday=0 weekday numbering to the canonical
// Monday=1..Sunday=7 indices used by schedules.
func (c Calendar) WeekdayIndex(t time.Time) int {
	return (int(t.In(c.Location()).Weekday())+6)%7 + 1
}

// NextDay and PrevDay step whole calendar days. AddDate is used rather
// than adding 24h so DST transitions do not skip or repeat days.
func (c Calendar) NextDay(t time.Time) time.Time {
	return c.DayStart(t).AddDate(0, 0, 1)
}

func (c Calendar) PrevDay(t time.Time) time.Time {
	return c.DayStart(t).AddDate(0, 0, -1)
}

// DaysInRange counts the calendar days in the inclusive range, 0 when
// from is after to.
func (c Calendar) DaysInRange(from, to time.Time) int {
	from = c.DayStart(from)
	to = c.DayStart(to)

	count := 0
	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		count++
	}
	return count
}

// WeekdayOccurrences counts how often a canonical weekday occurs in the
// inclusive range.
func (c Calendar) WeekdayOccurrences(weekday int, from, to time.Time) int {
	from = c.DayStart(from)
	to = c.DayStart(to)

	count := 0
	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		if c.WeekdayIndex(day) == weekday {
			count++
		}
	}
	return count
}

var weekdayNames = [8]string{"", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// WeekdayName returns the English name of a canonical weekday index.
func WeekdayName(weekday int) string {
	if weekday < 1 || weekday > 7 {
		return ""
	}
	return weekdayNames[weekday]
}
