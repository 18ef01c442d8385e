package analytics

import (
	"time"

	"github.com/comitanigiacomo/kanso-analytics-engine/internal/core/domain"
)

// TrendThresholds are the policy constants of trend classification. They
// are behaviorally load-bearing, so they live here as named configuration
// rather than inline literals.
type TrendThresholds struct {
	// Improving when currentStreak > Improving × longestStreak.
	Improving float64
	// Declining when currentStreak < Declining × longestStreak.
	Declining float64
}

var DefaultTrendThresholds = TrendThresholds{Improving: 0.8, Declining: 0.5}

// Classify labels a streak history by comparing the current run against
// the longest one.
func (t TrendThresholds) Classify(current, longest int) string {
	switch {
	case float64(current) > t.Improving*float64(longest):
		return domain.TrendImproving
	case float64(current) < t.Declining*float64(longest):
		return domain.TrendDeclining
	default:
		return domain.TrendStable
	}
}

// StreakEngine walks date ranges backward from a reference date to compute
// per-habit and portfolio-level streaks.
type StreakEngine struct {
	cal    Calendar
	sched  ScheduleAnalyzer
	eval   CompletionEvaluator
	trends TrendThresholds
}

func NewStreakEngine(cal Calendar, trends TrendThresholds) *StreakEngine {
	return &StreakEngine{
		cal:    cal,
		sched:  NewScheduleAnalyzer(cal),
		eval:   NewCompletionEvaluator(cal),
		trends: trends,
	}
}

// streakFloor is the earliest day a streak walk may reach: the earlier of
// the habit's declared start and its earliest log, so retroactive logging
// extends the walkable history.
func (s *StreakEngine) streakFloor(habit *domain.Habit, logs []*domain.HabitLog) time.Time {
	floor := s.cal.DayStart(habit.StartDate)
	for _, l := range logs {
		if l == nil || l.HabitID != habit.ID {
			continue
		}
		if day := s.cal.DayStart(l.Date); day.Before(floor) {
			floor = day
		}
	}
	return floor
}

// CurrentStreak counts consecutive completed due days ending at asOf.
// Days the schedule does not cover are skipped. The asOf day itself, when
// due but not yet completed, is skipped rather than treated as a break:
// a pending day must not destroy the run it would extend.
func (s *StreakEngine) CurrentStreak(habit *domain.Habit, logs []*domain.HabitLog, asOf time.Time) int {
	asOfDay := s.cal.DayStart(asOf)
	floor := s.streakFloor(habit, logs)

	streak := 0
	for day := asOfDay; !day.Before(floor); day = day.AddDate(0, 0, -1) {
		if !s.sched.isDue(habit, day, floor) {
			continue
		}
		if s.eval.IsCompleted(habit, day, logs) {
			streak++
			continue
		}
		if day.Equal(asOfDay) {
			continue
		}
		break
	}
	return streak
}

// StreakStatus combines the current run with the habit's longest run and
// flags a streak at risk: the asOf day is due, still open, and a run is on
// the line.
func (s *StreakEngine) StreakStatus(habit *domain.Habit, logs []*domain.HabitLog, asOf time.Time) domain.StreakStatus {
	asOfDay := s.cal.DayStart(asOf)
	floor := s.streakFloor(habit, logs)

	current := s.CurrentStreak(habit, logs, asOf)

	longest := 0
	run := 0
	var lastCompletion *time.Time

	for day := floor; !day.After(asOfDay); day = day.AddDate(0, 0, 1) {
		if !s.sched.isDue(habit, day, floor) {
			continue
		}
		if s.eval.IsCompleted(habit, day, logs) {
			run++
			if run > longest {
				longest = run
			}
			completed := day
			lastCompletion = &completed
			continue
		}
		if !day.Equal(asOfDay) {
			run = 0
		}
	}

	dueToday := s.sched.isDue(habit, asOfDay, floor)
	doneToday := dueToday && s.eval.IsCompleted(habit, asOfDay, logs)

	return domain.StreakStatus{
		Current:            current,
		Longest:            longest,
		IsAtRisk:           dueToday && !doneToday && current > 0,
		LastCompletionDate: lastCompletion,
	}
}

// StreakAnalysis computes the portfolio-level streak over the inclusive
// range: a day counts only when every habit due that day was completed.
// Days on which nothing was due neither extend nor break a run. The
// consistency score divides full-completion days by ALL calendar days in
// the range, not only the due ones; that stricter denominator is
// intentional.
func (s *StreakEngine) StreakAnalysis(habits []*domain.Habit, logsByHabit map[string][]*domain.HabitLog, from, to time.Time) domain.StreakAnalysis {
	from = s.cal.DayStart(from)
	to = s.cal.DayStart(to)

	if from.After(to) {
		return domain.StreakAnalysis{Trend: s.trends.Classify(0, 0)}
	}

	current := 0
	currentSealed := false
	running := 0
	longest := 0
	fullDays := 0

	// Backward walk: the segment adjacent to the reference date is the
	// current streak; every segment competes for the longest.
	for day := to; !day.Before(from); day = day.AddDate(0, 0, -1) {
		due := 0
		done := 0
		for _, h := range habits {
			if !s.sched.IsExpected(h, day) {
				continue
			}
			due++
			if s.eval.IsCompleted(h, day, logsByHabit[h.ID]) {
				done++
			}
		}

		if due == 0 {
			continue
		}

		if done == due {
			running++
			fullDays++
			continue
		}

		if !currentSealed {
			current = running
			currentSealed = true
		}
		if running > longest {
			longest = running
		}
		running = 0
	}

	if !currentSealed {
		current = running
	}
	if running > longest {
		longest = running
	}

	totalDays := s.cal.DaysInRange(from, to)
	consistency := 0.0
	if totalDays > 0 {
		consistency = float64(fullDays) / float64(totalDays)
	}

	return domain.StreakAnalysis{
		CurrentStreak:          current,
		LongestStreak:          longest,
		Trend:                  s.trends.Classify(current, longest),
		ConsistencyScore:       consistency,
		DaysWithFullCompletion: fullDays,
	}
}
