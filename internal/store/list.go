package store

import (
	"context"

	"github.com/phrazzld/todo-core/internal/domain"
)

// ListStore defines the interface for task list persistence.
type ListStore interface {
	// GetListByID retrieves a list by its unique ID.
	// Returns ErrListNotFound if the list does not exist.
	GetListByID(ctx context.Context, id int64) (*domain.TaskList, error)

	// GetListsByCategory returns the lists of a category ordered by position.
	// Returns an empty slice if the category has no lists.
	GetListsByCategory(ctx context.Context, category domain.Category) ([]*domain.TaskList, error)

	// CreateList inserts a new list at the end of its category and returns its ID.
	CreateList(ctx context.Context, name string, category domain.Category) (int64, error)

	// UpdateList renames an existing list.
	// Returns ErrListNotFound if the list does not exist.
	UpdateList(ctx context.Context, id int64, name string) error

	// DeleteList removes a list. Its tasks are removed with it.
	// Returns ErrListNotFound if the list does not exist.
	DeleteList(ctx context.Context, id int64) error
}
