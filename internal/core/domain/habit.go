package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrHabitNameEmpty     = errors.New("habit name cannot be empty")
	ErrHabitNameTooLong   = errors.New("habit name is too long (max 100 chars)")
	ErrHabitInvalidUserID = errors.New("invalid user id")
	ErrInvalidHabitKind   = errors.New("invalid habit kind (must be binary or numeric)")
	ErrInvalidDailyTarget = errors.New("daily target must be positive for numeric habits")
	ErrMissingDailyTarget = errors.New("numeric habits require a daily target")
	ErrInvalidDateWindow  = errors.New("end date cannot be before start date")
	ErrHabitArchived      = errors.New("cannot update an archived habit")
)

const (
	HabitKindBinary  = "binary"
	HabitKindNumeric = "numeric"

	DefaultHabitIcon = "sparkles"
	MaxHabitNameLen  = 100
)

// Habit is a recurring commitment. CurrentStreak and LongestStreak are
// denormalized values maintained by the streak worker; the analytics engine
// never reads them.
type Habit struct {
	ID         string   `json:"id" db:"id"`
	UserID     string   `json:"user_id" db:"user_id"`
	Name       string   `json:"name" db:"name"`
	Icon       string   `json:"icon" db:"icon"`
	Kind       string   `json:"kind" db:"kind"`
	Schedule   Schedule `json:"schedule"`
	CategoryID *string  `json:"category_id,omitempty" db:"category_id"`

	// DailyTarget is set for numeric habits only.
	DailyTarget *float64 `json:"daily_target,omitempty" db:"daily_target"`

	StartDate time.Time  `json:"start_date" db:"start_date"`
	EndDate   *time.Time `json:"end_date,omitempty" db:"end_date"`
	IsActive  bool       `json:"is_active" db:"is_active"`

	CurrentStreak int `json:"current_streak" db:"current_streak"`
	LongestStreak int `json:"longest_streak" db:"longest_streak"`

	Version   int        `json:"version" db:"version"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}

func validateHabit(name, kind string, schedule Schedule, target *float64, start time.Time, end *time.Time) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return ErrHabitNameEmpty
	}
	if len(trimmed) > MaxHabitNameLen {
		return ErrHabitNameTooLong
	}

	switch kind {
	case HabitKindBinary:
	case HabitKindNumeric:
		if target == nil {
			return ErrMissingDailyTarget
		}
		if *target <= 0 {
			return ErrInvalidDailyTarget
		}
	default:
		return ErrInvalidHabitKind
	}

	if err := schedule.Validate(); err != nil {
		return err
	}

	if end != nil && end.Before(start) {
		return ErrInvalidDateWindow
	}

	return nil
}

func NewHabit(userID, name, icon, kind string, schedule Schedule, target *float64, startDate time.Time) (*Habit, error) {
	if userID == "" {
		return nil, ErrHabitInvalidUserID
	}

	if startDate.IsZero() {
		startDate = time.Now().UTC()
	}

	if err := validateHabit(name, kind, schedule, target, startDate, nil); err != nil {
		return nil, err
	}

	if icon == "" {
		icon = DefaultHabitIcon
	}

	// Binary habits ignore any supplied target.
	if kind == HabitKindBinary {
		target = nil
	}

	now := time.Now().UTC()

	return &Habit{
		ID:          uuid.NewString(),
		UserID:      userID,
		Name:        strings.TrimSpace(name),
		Icon:        icon,
		Kind:        kind,
		Schedule:    schedule,
		DailyTarget: target,
		StartDate:   startDate,
		IsActive:    true,
		Version:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

func (h *Habit) Update(name, icon, kind string, schedule Schedule, target *float64, endDate *time.Time) error {
	if !h.IsActive {
		return ErrHabitArchived
	}

	if err := validateHabit(name, kind, schedule, target, h.StartDate, endDate); err != nil {
		return err
	}

	if icon == "" {
		icon = DefaultHabitIcon
	}
	if kind == HabitKindBinary {
		target = nil
	}

	h.Name = strings.TrimSpace(name)
	h.Icon = icon
	h.Kind = kind
	h.Schedule = schedule
	h.DailyTarget = target
	h.EndDate = endDate
	h.UpdatedAt = time.Now().UTC()

	return nil
}

func (h *Habit) Archive() {
	if !h.IsActive {
		return
	}
	h.IsActive = false
	h.UpdatedAt = time.Now().UTC()
}

func (h *Habit) Restore() {
	if h.IsActive {
		return
	}
	h.IsActive = true
	h.UpdatedAt = time.Now().UTC()
}

func (h *Habit) UpdateStreak(current, longest int) {
	h.CurrentStreak = current
	h.LongestStreak = longest
	h.UpdatedAt = time.Now().UTC()
}

// TargetValue returns the daily target, or 0 when unset.
func (h *Habit) TargetValue() float64 {
	if h.DailyTarget == nil {
		return 0
	}
	return *h.DailyTarget
}
