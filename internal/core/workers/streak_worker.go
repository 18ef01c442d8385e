package workers

import (
	"context"
	"log"
	"time"

	"github.com/comitanigiacomo/kanso-analytics-engine/internal/core/analytics"
	"github.com/comitanigiacomo/kanso-analytics-engine/internal/core/domain"
)

// Narrow ports so the worker only sees what it needs.

type HabitRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Habit, error)
	UpdateStreaks(ctx context.Context, id string, current, longest int) error
}

type LogRepository interface {
	ListByHabitIDAll(ctx context.Context, habitID string) ([]*domain.HabitLog, error)
}

type UserRepository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

type StreakJob struct {
	HabitID string
}

// StreakWorker recomputes the denormalized streak counters of a habit in
// the background after log and habit mutations. Jobs are best effort: a
// full queue drops the job and the counters catch up on the next write.
type StreakWorker struct {
	habitRepo HabitRepository
	logRepo   LogRepository
	userRepo  UserRepository
	jobs      chan StreakJob
}

func NewStreakWorker(habitRepo HabitRepository, logRepo LogRepository, userRepo UserRepository) *StreakWorker {
	return &StreakWorker{
		habitRepo: habitRepo,
		logRepo:   logRepo,
		userRepo:  userRepo,
		jobs:      make(chan StreakJob, 100),
	}
}

func (w *StreakWorker) Start(ctx context.Context) {
	go func() {
		log.Println("Streak Worker started in background...")
		for {
			select {
			case job := <-w.jobs:
				w.processJob(ctx, job)
			case <-ctx.Done():
				log.Println("Streak Worker shutting down...")
				return
			}
		}
	}()
}

func (w *StreakWorker) Enqueue(habitID string) {
	select {
	case w.jobs <- StreakJob{HabitID: habitID}:
	default:
		log.Printf("Streak Worker queue full! Dropping job for habit %s", habitID)
	}
}

// timezoneFor resolves the owner's display timezone; any failure falls
// back to UTC so a broken preference never blocks recomputation.
func (w *StreakWorker) timezoneFor(ctx context.Context, userID string) *time.Location {
	if w.userRepo == nil {
		return time.UTC
	}
	user, err := w.userRepo.GetByID(ctx, userID)
	if err != nil {
		return time.UTC
	}
	loc, err := time.LoadLocation(user.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (w *StreakWorker) processJob(ctx context.Context, job StreakJob) {
	habit, err := w.habitRepo.GetByID(ctx, job.HabitID)
	if err != nil {
		log.Printf("Worker Error fetching habit %s: %v", job.HabitID, err)
		return
	}

	logs, err := w.logRepo.ListByHabitIDAll(ctx, job.HabitID)
	if err != nil {
		log.Printf("Worker Error fetching logs for %s: %v", job.HabitID, err)
		return
	}

	cal := analytics.NewCalendar(w.timezoneFor(ctx, habit.UserID))
	engine := analytics.NewStreakEngine(cal, analytics.DefaultTrendThresholds)

	status := engine.StreakStatus(habit, logs, time.Now())

	if habit.CurrentStreak != status.Current || habit.LongestStreak != status.Longest {
		if err := w.habitRepo.UpdateStreaks(ctx, habit.ID, status.Current, status.Longest); err != nil {
			log.Printf("Worker Failed to update streak for %s: %v", job.HabitID, err)
			return
		}
		log.Printf("Streak updated for %s: Current=%d, Longest=%d", habit.Name, status.Current, status.Longest)
	}
}
