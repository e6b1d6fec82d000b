package store

import (
	"context"

	"github.com/phrazzld/todo-core/internal/domain"
)

// TaskUpdate pairs a task ID with the fields to change, for batch updates.
type TaskUpdate struct {
	ID     int64
	Fields domain.TaskFields
}

// TaskRef identifies a task together with where it lived, as reported by
// operations that remove tasks.
type TaskRef struct {
	ID       int64
	ListID   int64
	ParentID *int64
	// Cascaded is set for subtasks removed only because their parent was.
	Cascaded bool
}

// TaskStore defines the interface for task data persistence.
type TaskStore interface {
	// GetTaskByID retrieves a task by its unique ID, with its subtasks populated.
	// Returns ErrTaskNotFound if the task does not exist.
	GetTaskByID(ctx context.Context, id int64) (*domain.Task, error)

	// GetTasksByList returns the top-level tasks of a list ordered by position, each
	// with its subtasks populated. When showCompleted is false completed tasks and
	// completed subtasks are left out. A limit of zero or less means no limit.
	GetTasksByList(ctx context.Context, listID int64, showCompleted bool, limit int) ([]*domain.Task, error)

	// CreateTask inserts a new task and returns the ID assigned to it.
	// When task.Position is zero the task is appended after the last task of its list.
	// Returns ErrInvalidEntity if the list or parent task does not exist.
	CreateTask(ctx context.Context, task *domain.Task) (int64, error)

	// UpdateTask applies the set fields to an existing task.
	// Returns ErrTaskNotFound if the task does not exist.
	UpdateTask(ctx context.Context, id int64, fields domain.TaskFields) error

	// DeleteTask removes a task and its subtasks.
	// Returns ErrTaskNotFound if the task does not exist.
	DeleteTask(ctx context.Context, id int64) error

	// ToggleTaskCompleted flips the completion flag of a task and returns the new state.
	// Returns ErrTaskNotFound if the task does not exist.
	ToggleTaskCompleted(ctx context.Context, id int64) (bool, error)

	// BatchUpdateTasks applies every update in a single transaction and returns the
	// number of tasks changed. Either all updates land or none do; IDs that do not
	// exist are skipped.
	BatchUpdateTasks(ctx context.Context, updates []TaskUpdate) (int, error)

	// BatchDeleteTasks removes every listed task in a single transaction and returns
	// the tasks that were removed, including subtasks removed with their parent
	// (marked Cascaded). IDs that do not exist are ignored.
	BatchDeleteTasks(ctx context.Context, ids []int64) ([]TaskRef, error)

	// SearchTasks returns up to limit tasks whose title or notes contain query,
	// case-insensitively.
	SearchTasks(ctx context.Context, query string, limit int) ([]*domain.Task, error)

	// GetTasksWithReminders returns every incomplete task that has a reminder time set.
	GetTasksWithReminders(ctx context.Context) ([]*domain.Task, error)
}
