package analytics

import (
	"log"
	"sort"
	"time"

	"github.com/comitanigiacomo/kanso-analytics-engine/internal/core/domain"
)

// PerformanceAggregator combines the schedule analyzer and the completion
// evaluator across many habits and a date range.
type PerformanceAggregator struct {
	cal   Calendar
	sched ScheduleAnalyzer
	eval  CompletionEvaluator
}

func NewPerformanceAggregator(cal Calendar) *PerformanceAggregator {
	return &PerformanceAggregator{
		cal:   cal,
		sched: NewScheduleAnalyzer(cal),
		eval:  NewCompletionEvaluator(cal),
	}
}

// effectiveStart is the day the habit's expectation window opens inside
// the range: the later of the range start and the earlier of the declared
// start and the earliest log. Retroactively logged days before the
// declared start therefore still count as expected, which keeps the
// completion rate honest instead of artificially inflated.
func (a *PerformanceAggregator) effectiveStart(habit *domain.Habit, logs []*domain.HabitLog, rangeStart time.Time) time.Time {
	start := a.cal.DayStart(habit.StartDate)
	for _, l := range logs {
		if l == nil || l.HabitID != habit.ID {
			continue
		}
		if day := a.cal.DayStart(l.Date); day.Before(start) {
			start = day
		}
	}

	if start.Before(rangeStart) {
		return rangeStart
	}
	return start
}

// habitRange computes one habit's completed/expected day counts over the
// inclusive range, clipped to the habit's effective start.
func (a *PerformanceAggregator) habitRange(habit *domain.Habit, logs []*domain.HabitLog, from, to time.Time) (completed, expected int) {
	start := a.effectiveStart(habit, logs, from)

	expected = a.sched.CountExpectedDays(habit, start, to)

	for day := start; !day.After(to); day = day.AddDate(0, 0, 1) {
		if a.sched.isDue(habit, day, start) && a.eval.IsCompleted(habit, day, logs) {
			completed++
		}
	}
	return completed, expected
}

// cappedRate divides completed by expected, resolves the degenerate zero
// case to 0 and caps at 1 to absorb duplicate-log edge cases.
func cappedRate(completed, expected int) float64 {
	if expected <= 0 {
		return 0
	}
	rate := float64(completed) / float64(expected)
	if rate > 1 {
		return 1
	}
	return rate
}

// HabitPerformance computes per-habit completion rates over the inclusive
// range, sorted by descending rate. Archived habits are excluded; an empty
// or inverted range yields an empty result.
func (a *PerformanceAggregator) HabitPerformance(habits []*domain.Habit, logsByHabit map[string][]*domain.HabitLog, from, to time.Time) []domain.HabitPerformance {
	from = a.cal.DayStart(from)
	to = a.cal.DayStart(to)

	results := make([]domain.HabitPerformance, 0, len(habits))
	if from.After(to) {
		return results
	}

	for _, h := range habits {
		if !h.IsActive {
			continue
		}

		completed, expected := a.habitRange(h, logsByHabit[h.ID], from, to)

		results = append(results, domain.HabitPerformance{
			HabitID:        h.ID,
			Name:           h.Name,
			Icon:           h.Icon,
			CompletedDays:  completed,
			ExpectedDays:   expected,
			CompletionRate: cappedRate(completed, expected),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].CompletionRate > results[j].CompletionRate
	})

	return results
}

// WeeklyPatterns buckets the range by canonical weekday. Per bucket it
// reports the completion rate of due habits and the average number of
// habits completed per occurrence of that weekday; the occurrence count is
// floored at 1 so a range shorter than a week cannot divide by zero.
func (a *PerformanceAggregator) WeeklyPatterns(habits []*domain.Habit, logsByHabit map[string][]*domain.HabitLog, from, to time.Time) domain.WeeklyPatterns {
	from = a.cal.DayStart(from)
	to = a.cal.DayStart(to)

	var dueSum, doneSum [8]int
	var occurrences [8]int

	if !from.After(to) {
		for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
			wd := a.cal.WeekdayIndex(day)
			occurrences[wd]++

			for _, h := range habits {
				if !a.sched.IsExpected(h, day) {
					continue
				}
				dueSum[wd]++
				if a.eval.IsCompleted(h, day, logsByHabit[h.ID]) {
					doneSum[wd]++
				}
			}
		}
	}

	days := make([]domain.WeekdayPerformance, 0, 7)
	rateTotal := 0.0
	for wd := domain.WeekdayMonday; wd <= domain.WeekdaySunday; wd++ {
		rate := 0.0
		if dueSum[wd] > 0 {
			rate = float64(doneSum[wd]) / float64(dueSum[wd])
		}
		rateTotal += rate

		occ := occurrences[wd]
		if occ < 1 {
			occ = 1
		}

		days = append(days, domain.WeekdayPerformance{
			Weekday:                wd,
			Name:                   WeekdayName(wd),
			CompletionRate:         rate,
			AverageHabitsCompleted: float64(doneSum[wd]) / float64(occ),
		})
	}

	ranked := make([]domain.WeekdayPerformance, len(days))
	copy(ranked, days)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].CompletionRate > ranked[j].CompletionRate
	})

	return domain.WeeklyPatterns{
		Days:                    days,
		BestDay:                 ranked[0].Name,
		WorstDay:                ranked[len(ranked)-1].Name,
		AverageWeeklyCompletion: rateTotal / 7,
	}
}

// CategoryPerformance pools completed/expected days per category. Habits
// without a category land in the synthetic uncategorized bucket; a habit
// pointing at a category that does not resolve indicates a data-integrity
// problem and is dropped with a warning rather than silently merged.
func (a *PerformanceAggregator) CategoryPerformance(habits []*domain.Habit, categories []*domain.Category, logsByHabit map[string][]*domain.HabitLog, from, to time.Time) []domain.CategoryPerformance {
	from = a.cal.DayStart(from)
	to = a.cal.DayStart(to)

	byID := make(map[string]*domain.Category, len(categories))
	for _, c := range categories {
		byID[c.ID] = c
	}

	buckets := make(map[string]*domain.CategoryPerformance)
	order := []string{}

	bucketFor := func(id, name, color string) *domain.CategoryPerformance {
		if b, ok := buckets[id]; ok {
			return b
		}
		b := &domain.CategoryPerformance{CategoryID: id, Name: name, Color: color}
		buckets[id] = b
		order = append(order, id)
		return b
	}

	if !from.After(to) {
		for _, h := range habits {
			if !h.IsActive {
				continue
			}

			var bucket *domain.CategoryPerformance
			if h.CategoryID == nil {
				bucket = bucketFor(domain.UncategorizedBucket, "Uncategorized", "")
			} else if cat, ok := byID[*h.CategoryID]; ok {
				bucket = bucketFor(cat.ID, cat.Name, cat.Color)
			} else {
				log.Printf("analytics: habit %s references unknown category %s, dropping from category aggregation", h.ID, *h.CategoryID)
				continue
			}

			completed, expected := a.habitRange(h, logsByHabit[h.ID], from, to)
			bucket.HabitCount++
			bucket.CompletedDays += completed
			bucket.ExpectedDays += expected
		}
	}

	results := make([]domain.CategoryPerformance, 0, len(order))
	for _, id := range order {
		b := buckets[id]
		b.CompletionRate = cappedRate(b.CompletedDays, b.ExpectedDays)
		results = append(results, *b)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].CompletionRate > results[j].CompletionRate
	})

	return results
}
