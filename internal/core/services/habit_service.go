package services

import (
	"context"
	"log"
	"time"

	"github.com/comitanigiacomo/kanso-analytics-engine/internal/core/domain"
)

// StreakQueue decouples services from the worker implementation; log and
// habit mutations enqueue a streak recomputation through it.
type StreakQueue interface {
	Enqueue(habitID string)
}

type HabitService struct {
	repo  domain.HabitRepository
	cache DashboardCache
}

func NewHabitService(repo domain.HabitRepository, cache DashboardCache) *HabitService {
	return &HabitService{
		repo:  repo,
		cache: cache,
	}
}

type CreateHabitInput struct {
	UserID      string
	Name        string
	Icon        string
	Kind        string
	Schedule    domain.Schedule
	CategoryID  *string
	DailyTarget *float64
	StartDate   time.Time
}

type UpdateHabitInput struct {
	ID          string
	UserID      string
	Name        string
	Icon        string
	Kind        string
	Schedule    domain.Schedule
	CategoryID  *string
	DailyTarget *float64
	EndDate     *time.Time
	Version     int
}

// invalidateAnalytics drops the user's cached dashboards after a write.
// Cache trouble is logged, never surfaced: the write already succeeded.
func (s *HabitService) invalidateAnalytics(ctx context.Context, userID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateUser(ctx, userID); err != nil {
		log.Printf("habits: dashboard cache invalidation failed for user %s: %v", userID, err)
	}
}

func (s *HabitService) Create(ctx context.Context, input CreateHabitInput) (*domain.Habit, error) {
	habit, err := domain.NewHabit(input.UserID, input.Name, input.Icon, input.Kind, input.Schedule, input.DailyTarget, input.StartDate)
	if err != nil {
		return nil, err
	}
	habit.CategoryID = input.CategoryID

	if err := s.repo.Create(ctx, habit); err != nil {
		return nil, err
	}

	s.invalidateAnalytics(ctx, habit.UserID)
	return habit, nil
}

func (s *HabitService) GetByID(ctx context.Context, id, userID string) (*domain.Habit, error) {
	habit, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if habit.UserID != userID {
		return nil, domain.ErrHabitNotFound
	}
	return habit, nil
}

func (s *HabitService) ListByUserID(ctx context.Context, userID string) ([]*domain.Habit, error) {
	return s.repo.ListByUserID(ctx, userID)
}

func (s *HabitService) Update(ctx context.Context, input UpdateHabitInput) (*domain.Habit, error) {
	habit, err := s.GetByID(ctx, input.ID, input.UserID)
	if err != nil {
		return nil, err
	}

	if input.Version > 0 && habit.Version != input.Version {
		return nil, domain.ErrHabitConflict
	}

	if err := habit.Update(input.Name, input.Icon, input.Kind, input.Schedule, input.DailyTarget, input.EndDate); err != nil {
		return nil, err
	}
	habit.CategoryID = input.CategoryID
	habit.Version++

	if err := s.repo.Update(ctx, habit); err != nil {
		return nil, err
	}

	s.invalidateAnalytics(ctx, habit.UserID)
	return habit, nil
}

func (s *HabitService) Archive(ctx context.Context, id, userID string) error {
	habit, err := s.GetByID(ctx, id, userID)
	if err != nil {
		return err
	}

	habit.Archive()
	if err := s.repo.Update(ctx, habit); err != nil {
		return err
	}

	s.invalidateAnalytics(ctx, userID)
	return nil
}

func (s *HabitService) Delete(ctx context.Context, id, userID string) error {
	if _, err := s.GetByID(ctx, id, userID); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.invalidateAnalytics(ctx, userID)
	return nil
}
