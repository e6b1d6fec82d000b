package domain

import (
	"strings"
	"time"
)

// MaxListNameLength is the maximum number of characters in a list name.
const MaxListNameLength = 200

// Category is the organizational bucket a list lives in.
type Category string

// Known categories.
const (
	CategoryDaily   Category = "daily"
	CategoryWeekly  Category = "weekly"
	CategoryMonthly Category = "monthly"
	CategoryYearly  Category = "yearly"
)

// Categories returns every known category in display order.
func Categories() []Category {
	return []Category{CategoryDaily, CategoryWeekly, CategoryMonthly, CategoryYearly}
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	for _, known := range Categories() {
		if c == known {
			return true
		}
	}
	return false
}

// ValidateCategory returns a ValidationError when c is not a known category.
func ValidateCategory(c Category) error {
	if !c.Valid() {
		return NewValidationError("category", "must be one of daily, weekly, monthly, yearly", ErrInvalidCategory)
	}
	return nil
}

// TaskList is a named, categorized container of tasks.
type TaskList struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name" validate:"required,max=200"`
	Category  Category  `json:"category" validate:"oneof=daily weekly monthly yearly"`
	Position  int       `json:"position" validate:"gte=0"`
	CreatedAt time.Time `json:"created_at"`
}

// NewTaskList builds an unsaved list with a trimmed name and validates it.
func NewTaskList(name string, category Category) (*TaskList, error) {
	list := &TaskList{
		Name:      strings.TrimSpace(name),
		Category:  category,
		CreatedAt: time.Now().UTC(),
	}

	if err := list.Validate(); err != nil {
		return nil, err
	}

	return list, nil
}

// Validate checks if the TaskList has valid data.
func (l *TaskList) Validate() error {
	if strings.TrimSpace(l.Name) == "" {
		return NewValidationError("name", "cannot be empty", ErrEmptyContent)
	}
	return validateStruct(l)
}

// Rename trims and validates a new name before applying it.
// The list is left unchanged when the name is invalid.
func (l *TaskList) Rename(name string) error {
	orig := l.Name
	l.Name = strings.TrimSpace(name)

	if err := l.Validate(); err != nil {
		l.Name = orig
		return err
	}

	return nil
}
