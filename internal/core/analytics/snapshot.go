package analytics

import (
	"sort"
	"time"

	"github.com/comitanigiacomo/kanso-analytics-engine/internal/core/domain"
)

// Snapshot is the read-optimized precomputation of a date range: one walk
// over the days produces every per-day completion fact, after which the
// dashboard views read in O(1) instead of re-scanning the logs per widget.
// A snapshot is scoped to a single analytics request and must not be
// shared across requests.
type Snapshot struct {
	cal  Calendar
	from time.Time
	to   time.Time

	days  map[string]domain.DayCompletion
	order []time.Time
}

// BuildSnapshot walks the inclusive range exactly once. Results are
// identical to calling the schedule analyzer and completion evaluator
// directly for every day; an inverted range produces an empty snapshot.
func BuildSnapshot(cal Calendar, habits []*domain.Habit, logsByHabit map[string][]*domain.HabitLog, from, to time.Time) *Snapshot {
	from = cal.DayStart(from)
	to = cal.DayStart(to)

	s := &Snapshot{
		cal:  cal,
		from: from,
		to:   to,
		days: make(map[string]domain.DayCompletion),
	}

	if from.After(to) {
		return s
	}

	sched := NewScheduleAnalyzer(cal)
	eval := NewCompletionEvaluator(cal)

	// Index logs per habit and day so the per-day evaluation only touches
	// that day's slice instead of the habit's full history.
	dayLogs := make(map[string]map[string][]*domain.HabitLog, len(logsByHabit))
	for habitID, logs := range logsByHabit {
		buckets := make(map[string][]*domain.HabitLog)
		for _, l := range logs {
			if l == nil {
				continue
			}
			key := cal.DayKey(l.Date)
			buckets[key] = append(buckets[key], l)
		}
		dayLogs[habitID] = buckets
	}

	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		key := cal.DayKey(day)

		expected := []string{}
		completed := []string{}

		for _, h := range habits {
			if !sched.IsExpected(h, day) {
				continue
			}
			expected = append(expected, h.ID)

			logs := dayLogs[h.ID][key]
			if eval.IsCompleted(h, day, logs) {
				completed = append(completed, h.ID)
			}
		}

		sort.Strings(expected)
		sort.Strings(completed)

		rate := 0.0
		if len(expected) > 0 {
			rate = float64(len(completed)) / float64(len(expected))
		}

		s.days[key] = domain.DayCompletion{
			Date:              day,
			CompletedHabitIDs: completed,
			ExpectedHabitIDs:  expected,
			CompletionRate:    rate,
		}
		s.order = append(s.order, day)
	}

	return s
}

// Day returns the precomputed completion fact for a date inside the range.
func (s *Snapshot) Day(date time.Time) (domain.DayCompletion, bool) {
	dc, ok := s.days[s.cal.DayKey(date)]
	return dc, ok
}

// CompletionRate returns the day's portfolio completion rate, 0 for days
// outside the range or with nothing expected.
func (s *Snapshot) CompletionRate(date time.Time) float64 {
	dc, ok := s.Day(date)
	if !ok {
		return 0
	}
	return dc.CompletionRate
}

// CompletedHabits returns the ids of habits completed on the day.
func (s *Snapshot) CompletedHabits(date time.Time) []string {
	dc, ok := s.Day(date)
	if !ok {
		return nil
	}
	return dc.CompletedHabitIDs
}

// ScheduledHabits returns the ids of habits due on the day.
func (s *Snapshot) ScheduledHabits(date time.Time) []string {
	dc, ok := s.Day(date)
	if !ok {
		return nil
	}
	return dc.ExpectedHabitIDs
}

// Len reports the number of days in the snapshot.
func (s *Snapshot) Len() int {
	return len(s.order)
}

// ChartPoints renders the chronological chart series of the range.
func (s *Snapshot) ChartPoints() []domain.ChartPoint {
	points := make([]domain.ChartPoint, 0, len(s.order))
	for _, day := range s.order {
		dc := s.days[s.cal.DayKey(day)]
		points = append(points, domain.ChartPoint{
			Date:           s.cal.DayKey(day),
			CompletionRate: dc.CompletionRate,
			Completed:      len(dc.CompletedHabitIDs),
			Expected:       len(dc.ExpectedHabitIDs),
		})
	}
	return points
}
