package services

import (
	"context"
	"log"
	"time"

	"github.com/comitanigiacomo/kanso-analytics-engine/internal/core/domain"
)

// LogService manages habit logs. Every mutation invalidates the user's
// cached dashboards and enqueues a streak recomputation for the habit.
type LogService struct {
	repo      domain.HabitLogRepository
	habitRepo domain.HabitRepository
	queue     StreakQueue
	cache     DashboardCache
}

func NewLogService(repo domain.HabitLogRepository, habitRepo domain.HabitRepository, queue StreakQueue, cache DashboardCache) *LogService {
	return &LogService{
		repo:      repo,
		habitRepo: habitRepo,
		queue:     queue,
		cache:     cache,
	}
}

type CreateLogInput struct {
	HabitID string
	UserID  string
	Date    time.Time
	Value   *float64
	Note    string
}

type UpdateLogInput struct {
	ID      string
	UserID  string
	Value   *float64
	Note    string
	Version int
}

func (s *LogService) afterWrite(ctx context.Context, userID, habitID string) {
	if s.queue != nil {
		s.queue.Enqueue(habitID)
	}
	if s.cache != nil {
		if err := s.cache.InvalidateUser(ctx, userID); err != nil {
			log.Printf("logs: dashboard cache invalidation failed for user %s: %v", userID, err)
		}
	}
}

func (s *LogService) Create(ctx context.Context, input CreateLogInput) (*domain.HabitLog, error) {
	entry := domain.NewHabitLog(input.HabitID, input.UserID, input.Date, input.Value)
	entry.Note = input.Note

	if err := entry.Validate(); err != nil {
		return nil, err
	}

	habit, err := s.habitRepo.GetByID(ctx, entry.HabitID)
	if err != nil {
		return nil, err
	}
	if habit.UserID != entry.UserID {
		return nil, domain.ErrUnauthorized
	}

	if err := s.repo.Create(ctx, entry); err != nil {
		return nil, err
	}

	s.afterWrite(ctx, entry.UserID, entry.HabitID)
	return entry, nil
}

func (s *LogService) GetByID(ctx context.Context, id, userID string) (*domain.HabitLog, error) {
	entry, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if entry.UserID != userID {
		return nil, domain.ErrUnauthorized
	}
	return entry, nil
}

func (s *LogService) Update(ctx context.Context, input UpdateLogInput) (*domain.HabitLog, error) {
	existing, err := s.GetByID(ctx, input.ID, input.UserID)
	if err != nil {
		return nil, err
	}

	if input.Version > 0 && existing.Version != input.Version {
		return nil, domain.ErrLogConflict
	}

	existing.Value = input.Value
	existing.Note = input.Note
	existing.Version++
	existing.UpdatedAt = time.Now().UTC()

	if err := existing.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, err
	}

	s.afterWrite(ctx, existing.UserID, existing.HabitID)
	return existing, nil
}

func (s *LogService) ListByHabitID(ctx context.Context, habitID, userID string, from, to time.Time) ([]*domain.HabitLog, error) {
	habit, err := s.habitRepo.GetByID(ctx, habitID)
	if err != nil {
		return nil, err
	}
	if habit.UserID != userID {
		return nil, domain.ErrUnauthorized
	}

	return s.repo.ListByHabitID(ctx, habitID, from, to)
}

func (s *LogService) Delete(ctx context.Context, id, userID string) error {
	entry, err := s.GetByID(ctx, id, userID)
	if err != nil {
		return err
	}

	habitID := entry.HabitID

	if err := s.repo.Delete(ctx, id, userID); err != nil {
		return err
	}

	s.afterWrite(ctx, userID, habitID)
	return nil
}
