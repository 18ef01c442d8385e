package domain

import (
	"context"
	"errors"
	"time"
)

var (
	ErrHabitNotFound = errors.New("habit not found")
	ErrHabitConflict = errors.New("habit version conflict")
	ErrLogNotFound   = errors.New("habit log not found")
	ErrLogConflict   = errors.New("habit log version conflict")
	ErrUnauthorized  = errors.New("resource does not belong to user")
)

type HabitRepository interface {
	// Create persists a new habit definition.
	Create(ctx context.Context, habit *Habit) error

	// GetByID retrieves a habit by its unique identifier.
	GetByID(ctx context.Context, id string) (*Habit, error)

	// ListByUserID retrieves all non-deleted habits of a user, archived
	// ones included (the analytics engine filters on IsActive itself).
	ListByUserID(ctx context.Context, userID string) ([]*Habit, error)

	// Update modifies the state of an existing habit.
	Update(ctx context.Context, habit *Habit) error

	// Delete soft-deletes a habit.
	Delete(ctx context.Context, id string) error

	// UpdateStreaks persists the denormalized streak counters without
	// bumping the habit version.
	UpdateStreaks(ctx context.Context, id string, current, longest int) error
}

type HabitLogRepository interface {
	// Create persists a new log entry.
	Create(ctx context.Context, log *HabitLog) error

	// Update modifies an existing log. Implementations must apply
	// optimistic locking on Version.
	Update(ctx context.Context, log *HabitLog) error

	// Delete soft-deletes a log, checking ownership.
	Delete(ctx context.Context, id string, userID string) error

	// GetByID retrieves a single active log by its ID.
	GetByID(ctx context.Context, id string) (*HabitLog, error)

	// ListByHabitID retrieves logs for one habit inside an inclusive
	// date range, newest first.
	ListByHabitID(ctx context.Context, habitID string, from, to time.Time) ([]*HabitLog, error)

	// ListByHabitIDAll retrieves every active log of a habit. Used by
	// streak recomputation, which needs the full history.
	ListByHabitIDAll(ctx context.Context, habitID string) ([]*HabitLog, error)

	// ListByUserIDAndDateRange retrieves the logs of all of a user's
	// habits in one query so the analytics service avoids N+1 fetches.
	ListByUserIDAndDateRange(ctx context.Context, userID string, from, to time.Time) ([]*HabitLog, error)
}

type CategoryRepository interface {
	Create(ctx context.Context, category *Category) error
	GetByID(ctx context.Context, id string) (*Category, error)
	ListByUserID(ctx context.Context, userID string) ([]*Category, error)
	Update(ctx context.Context, category *Category) error

	// Delete removes a category, checking ownership. Habits that pointed
	// at it keep a dangling reference which the aggregator drops.
	Delete(ctx context.Context, id string, userID string) error
}

type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, user *User) error
}
