package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/comitanigiacomo/kanso-analytics-engine/internal/core/domain"
)

// In-memory implementations of the repository ports, used by handler tests
// and local development. They mimic the postgres semantics: soft deletes,
// ownership checks on delete, optimistic locking on log updates.

type InMemoryHabitRepository struct {
	store map[string]*domain.Habit

	mu sync.RWMutex
}

func NewInMemoryHabitRepository() *InMemoryHabitRepository {
	return &InMemoryHabitRepository{
		store: make(map[string]*domain.Habit),
	}
}

func (r *InMemoryHabitRepository) Create(ctx context.Context, habit *domain.Habit) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	clone := *habit
	r.store[habit.ID] = &clone
	return nil
}

func (r *InMemoryHabitRepository) GetByID(ctx context.Context, id string) (*domain.Habit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	habit, ok := r.store[id]
	if !ok || habit.DeletedAt != nil {
		return nil, domain.ErrHabitNotFound
	}
	clone := *habit
	return &clone, nil
}

func (r *InMemoryHabitRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Habit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var habits []*domain.Habit
	for _, h := range r.store {
		if h.UserID == userID && h.DeletedAt == nil {
			clone := *h
			habits = append(habits, &clone)
		}
	}

	sort.Slice(habits, func(i, j int) bool {
		return habits[i].CreatedAt.After(habits[j].CreatedAt)
	})

	return habits, nil
}

func (r *InMemoryHabitRepository) Update(ctx context.Context, habit *domain.Habit) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.store[habit.ID]
	if !ok || existing.DeletedAt != nil {
		return domain.ErrHabitNotFound
	}

	clone := *habit
	r.store[habit.ID] = &clone
	return nil
}

func (r *InMemoryHabitRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	habit, ok := r.store[id]
	if !ok || habit.DeletedAt != nil {
		return domain.ErrHabitNotFound
	}

	now := time.Now().UTC()
	habit.DeletedAt = &now
	habit.UpdatedAt = now
	habit.Version++
	return nil
}

func (r *InMemoryHabitRepository) UpdateStreaks(ctx context.Context, id string, current, longest int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	habit, ok := r.store[id]
	if !ok || habit.DeletedAt != nil {
		return domain.ErrHabitNotFound
	}

	habit.CurrentStreak = current
	habit.LongestStreak = longest
	habit.UpdatedAt = time.Now().UTC()
	return nil
}

type InMemoryHabitLogRepository struct {
	store map[string]*domain.HabitLog

	mu sync.RWMutex
}

func NewInMemoryHabitLogRepository() *InMemoryHabitLogRepository {
	return &InMemoryHabitLogRepository{
		store: make(map[string]*domain.HabitLog),
	}
}

func (r *InMemoryHabitLogRepository) Create(ctx context.Context, entry *domain.HabitLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	clone := *entry
	r.store[entry.ID] = &clone
	return nil
}

func (r *InMemoryHabitLogRepository) GetByID(ctx context.Context, id string) (*domain.HabitLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.store[id]
	if !ok || entry.DeletedAt != nil {
		return nil, domain.ErrLogNotFound
	}
	clone := *entry
	return &clone, nil
}

func (r *InMemoryHabitLogRepository) Update(ctx context.Context, entry *domain.HabitLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.store[entry.ID]
	if !ok || existing.DeletedAt != nil {
		return domain.ErrLogNotFound
	}
	if existing.Version != entry.Version-1 {
		return domain.ErrLogConflict
	}

	clone := *entry
	r.store[entry.ID] = &clone
	return nil
}

func (r *InMemoryHabitLogRepository) Delete(ctx context.Context, id string, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.store[id]
	if !ok || entry.DeletedAt != nil || entry.UserID != userID {
		return domain.ErrLogNotFound
	}

	now := time.Now().UTC()
	entry.DeletedAt = &now
	entry.UpdatedAt = now
	entry.Version++
	return nil
}

func (r *InMemoryHabitLogRepository) ListByHabitID(ctx context.Context, habitID string, from, to time.Time) ([]*domain.HabitLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var logs []*domain.HabitLog
	for _, l := range r.store {
		if l.HabitID != habitID || l.DeletedAt != nil {
			continue
		}
		if l.Date.Before(from) || l.Date.After(to) {
			continue
		}
		clone := *l
		logs = append(logs, &clone)
	}

	sort.Slice(logs, func(i, j int) bool {
		return logs[i].Date.After(logs[j].Date)
	})

	return logs, nil
}

func (r *InMemoryHabitLogRepository) ListByHabitIDAll(ctx context.Context, habitID string) ([]*domain.HabitLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var logs []*domain.HabitLog
	for _, l := range r.store {
		if l.HabitID != habitID || l.DeletedAt != nil {
			continue
		}
		clone := *l
		logs = append(logs, &clone)
	}

	sort.Slice(logs, func(i, j int) bool {
		return logs[i].Date.Before(logs[j].Date)
	})

	return logs, nil
}

func (r *InMemoryHabitLogRepository) ListByUserIDAndDateRange(ctx context.Context, userID string, from, to time.Time) ([]*domain.HabitLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var logs []*domain.HabitLog
	for _, l := range r.store {
		if l.UserID != userID || l.DeletedAt != nil {
			continue
		}
		if l.Date.Before(from) || l.Date.After(to) {
			continue
		}
		clone := *l
		logs = append(logs, &clone)
	}

	sort.Slice(logs, func(i, j int) bool {
		return logs[i].Date.Before(logs[j].Date)
	})

	return logs, nil
}

type InMemoryCategoryRepository struct {
	store map[string]*domain.Category

	mu sync.RWMutex
}

func NewInMemoryCategoryRepository() *InMemoryCategoryRepository {
	return &InMemoryCategoryRepository{
		store: make(map[string]*domain.Category),
	}
}

func (r *InMemoryCategoryRepository) Create(ctx context.Context, category *domain.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	clone := *category
	r.store[category.ID] = &clone
	return nil
}

func (r *InMemoryCategoryRepository) GetByID(ctx context.Context, id string) (*domain.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	category, ok := r.store[id]
	if !ok {
		return nil, domain.ErrCategoryNotFound
	}
	clone := *category
	return &clone, nil
}

func (r *InMemoryCategoryRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var categories []*domain.Category
	for _, c := range r.store {
		if c.UserID == userID {
			clone := *c
			categories = append(categories, &clone)
		}
	}

	sort.Slice(categories, func(i, j int) bool {
		return categories[i].Name < categories[j].Name
	})

	return categories, nil
}

func (r *InMemoryCategoryRepository) Update(ctx context.Context, category *domain.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.store[category.ID]
	if !ok || existing.UserID != category.UserID {
		return domain.ErrCategoryNotFound
	}

	clone := *category
	r.store[category.ID] = &clone
	return nil
}

func (r *InMemoryCategoryRepository) Delete(ctx context.Context, id string, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	category, ok := r.store[id]
	if !ok || category.UserID != userID {
		return domain.ErrCategoryNotFound
	}

	delete(r.store, id)
	return nil
}

type InMemoryUserRepository struct {
	store   map[string]*domain.User
	byEmail map[string]string

	mu sync.RWMutex
}

func NewInMemoryUserRepository() *InMemoryUserRepository {
	return &InMemoryUserRepository{
		store:   make(map[string]*domain.User),
		byEmail: make(map[string]string),
	}
}

func (r *InMemoryUserRepository) Create(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byEmail[user.Email]; exists {
		return domain.ErrEmailAlreadyExists
	}

	clone := *user
	r.store[user.ID] = &clone
	r.byEmail[user.Email] = user.ID
	return nil
}

func (r *InMemoryUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.store[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	clone := *user
	return &clone, nil
}

func (r *InMemoryUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	clone := *r.store[id]
	return &clone, nil
}

func (r *InMemoryUserRepository) Update(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.store[user.ID]
	if !ok {
		return domain.ErrUserNotFound
	}

	if existing.Email != user.Email {
		delete(r.byEmail, existing.Email)
		r.byEmail[user.Email] = user.ID
	}

	clone := *user
	r.store[user.ID] = &clone
	return nil
}
