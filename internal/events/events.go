package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Name identifies the kind of an event.
type Name string

// Event names published by the services.
const (
	TaskCreated   Name = "task_created"
	TaskUpdated   Name = "task_updated"
	TaskDeleted   Name = "task_deleted"
	TaskCompleted Name = "task_completed"
	ListCreated   Name = "list_created"
	ListUpdated   Name = "list_updated"
	ListDeleted   Name = "list_deleted"
)

// Event is a single notification. Payload holds the JSON encoding of the
// payload struct that belongs to Name.
type Event struct {
	ID        uuid.UUID       `json:"id"`
	Name      Name            `json:"name"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}

// NewEvent creates an event with a fresh ID, encoding payload as JSON.
func NewEvent(name Name, payload any) (*Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", name, err)
	}

	return &Event{
		ID:        uuid.New(),
		Name:      name,
		Payload:   raw,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// UnmarshalPayload decodes the event payload into v.
func (e *Event) UnmarshalPayload(v any) error {
	return json.Unmarshal(e.Payload, v)
}

// TaskCreatedPayload accompanies TaskCreated.
type TaskCreatedPayload struct {
	TaskID int64 `json:"task_id"`
	ListID int64 `json:"list_id"`
}

// TaskUpdatedPayload accompanies TaskUpdated. Fields names the task
// attributes present in the update.
type TaskUpdatedPayload struct {
	TaskID int64    `json:"task_id"`
	Fields []string `json:"fields"`
}

// TaskDeletedPayload accompanies TaskDeleted.
type TaskDeletedPayload struct {
	TaskID int64 `json:"task_id"`
	ListID int64 `json:"list_id"`
}

// TaskCompletedPayload accompanies TaskCompleted and carries the task's new
// completion state, which may be false when a task is re-opened.
type TaskCompletedPayload struct {
	TaskID    int64 `json:"task_id"`
	Completed bool  `json:"completed"`
}

// ListCreatedPayload accompanies ListCreated.
type ListCreatedPayload struct {
	ListID   int64  `json:"list_id"`
	Category string `json:"category"`
}

// ListUpdatedPayload accompanies ListUpdated.
type ListUpdatedPayload struct {
	ListID int64  `json:"list_id"`
	Name   string `json:"name"`
}

// ListDeletedPayload accompanies ListDeleted.
type ListDeletedPayload struct {
	ListID   int64  `json:"list_id"`
	Category string `json:"category"`
}
