package domain

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrCategoryNotFound      = errors.New("category not found")
	ErrCategoryNameEmpty     = errors.New("category name cannot be empty")
	ErrCategoryInvalidColor  = errors.New("invalid category color (must be #RRGGBB)")
	ErrCategoryInvalidUserID = errors.New("invalid user id")
)

var categoryColorRegex = regexp.MustCompile(`^#([A-Fa-f0-9]{6}|[A-Fa-f0-9]{3})$`)

// UncategorizedBucket is the synthetic category id used by the aggregator
// for habits with no category assigned.
const UncategorizedBucket = "uncategorized"

type Category struct {
	ID     string `json:"id" db:"id"`
	UserID string `json:"user_id" db:"user_id"`
	Name   string `json:"name" db:"name"`
	Color  string `json:"color" db:"color"`
	Icon   string `json:"icon" db:"icon"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

func NewCategory(userID, name, color, icon string) (*Category, error) {
	if userID == "" {
		return nil, ErrCategoryInvalidUserID
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrCategoryNameEmpty
	}

	if color != "" && !categoryColorRegex.MatchString(color) {
		return nil, ErrCategoryInvalidColor
	}

	now := time.Now().UTC()

	return &Category{
		ID:        uuid.NewString(),
		UserID:    userID,
		Name:      name,
		Color:     color,
		Icon:      icon,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Rename updates the mutable fields, applying the same validation as NewCategory.
func (c *Category) Rename(name, color, icon string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrCategoryNameEmpty
	}

	if color != "" && !categoryColorRegex.MatchString(color) {
		return ErrCategoryInvalidColor
	}

	c.Name = name
	c.Color = color
	c.Icon = icon
	c.UpdatedAt = time.Now().UTC()

	return nil
}
