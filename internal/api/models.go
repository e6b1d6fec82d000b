package api

import (
	"github.com/phrazzld/todo-core/internal/domain"
	"github.com/phrazzld/todo-core/internal/service"
)

// CreateListRequest defines the payload for creating a list.
type CreateListRequest struct {
	Name     string          `json:"name"     validate:"required"`
	Category domain.Category `json:"category" validate:"required"`
}

// UpdateListRequest defines the payload for renaming a list.
type UpdateListRequest struct {
	Name string `json:"name" validate:"required"`
}

// CreateTaskRequest defines the payload for creating a task. The optional
// fields are the same ones a task update accepts; list_id is taken from
// the path.
type CreateTaskRequest struct {
	Title string `json:"title" validate:"required"`
	domain.TaskFields
}

// BatchRequest names the tasks of a batch operation.
type BatchRequest struct {
	IDs       []int64 `json:"ids"       validate:"dive,gt=0"`
	Completed *bool   `json:"completed,omitempty"`
}

// IDResponse returns the ID of a created entity.
type IDResponse struct {
	ID int64 `json:"id"`
}

// UpdatedResponse reports whether a mutation changed anything.
type UpdatedResponse struct {
	Updated bool `json:"updated"`
}

// DeletedResponse reports whether a delete removed a row.
type DeletedResponse struct {
	Deleted bool `json:"deleted"`
}

// ToggleResponse carries the completion flag after a toggle.
type ToggleResponse struct {
	Completed bool `json:"completed"`
}

// CountResponse reports how many tasks a batch operation affected.
type CountResponse struct {
	Count int `json:"count"`
}

// StatsResponse reports the cache and storage counters of both services.
type StatsResponse struct {
	Tasks service.TaskStats `json:"tasks"`
	Lists service.ListStats `json:"lists"`
}

// HealthResponse is returned by the health endpoint.
type HealthResponse struct {
	Status string `json:"status"`
}
