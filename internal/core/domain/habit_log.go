package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidLog      = errors.New("invalid habit log data")
	ErrNegativeValue   = errors.New("log value cannot be negative")
	ErrLogMissingDate  = errors.New("log date is required")
	ErrLogMissingHabit = errors.New("habit_id is required")
)

// HabitLog records evidence for one habit on one day. Date carries
// day granularity; normalization to a display timezone happens in the
// analytics engine, not here. Several logs may exist for the same habit and
// day (retries, offline clients); the engine tolerates that.
type HabitLog struct {
	ID      string `json:"id" db:"id"`
	HabitID string `json:"habit_id" db:"habit_id"`
	UserID  string `json:"user_id" db:"user_id"`

	Date  time.Time `json:"date" db:"date"`
	Value *float64  `json:"value,omitempty" db:"value"`
	Note  string    `json:"note,omitempty" db:"note"`

	Version   int        `json:"version" db:"version"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}

func NewHabitLog(habitID, userID string, date time.Time, value *float64) *HabitLog {
	now := time.Now().UTC()

	return &HabitLog{
		ID:        uuid.NewString(),
		HabitID:   habitID,
		UserID:    userID,
		Date:      date.UTC(),
		Value:     value,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (l *HabitLog) Validate() error {
	if strings.TrimSpace(l.HabitID) == "" {
		return ErrLogMissingHabit
	}
	if strings.TrimSpace(l.UserID) == "" {
		return ErrInvalidLog
	}
	if l.Date.IsZero() {
		return ErrLogMissingDate
	}
	if l.Value != nil && *l.Value < 0 {
		return ErrNegativeValue
	}
	return nil
}

// LoggedValue returns the numeric value of the log, treating a missing
// value as 1 so that a bare binary check-in still counts as positive.
func (l *HabitLog) LoggedValue() float64 {
	if l.Value == nil {
		return 1
	}
	return *l.Value
}
