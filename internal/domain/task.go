package domain

import (
	"strings"
	"time"
)

// Field limits for tasks.
const (
	MaxTitleLength      = 500
	MaxNotesLength      = 5000
	MaxMotivationLength = 500
)

// Task is a single to-do item. A task either belongs directly to a list or is a subtask
// of a top-level task in the same list; deeper nesting is not allowed.
type Task struct {
	ID                 int64          `json:"id"`
	ListID             int64          `json:"list_id" validate:"gt=0"`
	Title              string         `json:"title" validate:"required,max=500"`
	Notes              string         `json:"notes" validate:"max=5000"`
	DueDate            string         `json:"due_date" validate:"omitempty,datetime=2006-01-02"`
	StartTime          string         `json:"start_time" validate:"omitempty,datetime=15:04"`
	EndTime            string         `json:"end_time" validate:"omitempty,datetime=15:04"`
	ReminderTime       string         `json:"reminder_time" validate:"omitempty,datetime=2006-01-02 15:04"`
	Completed          bool           `json:"completed"`
	ParentID           *int64         `json:"parent_id,omitempty"`
	Position           int            `json:"position" validate:"gte=0"`
	RecurrenceType     RecurrenceType `json:"recurrence_type" validate:"oneof=none daily weekly monthly yearly custom"`
	RecurrenceInterval int            `json:"recurrence_interval" validate:"gte=1"`
	LastCompletedDate  string         `json:"last_completed_date" validate:"omitempty,datetime=2006-01-02"`
	Motivation         string         `json:"motivation" validate:"max=500"`
	CreatedAt          time.Time      `json:"created_at"`
	Subtasks           []*Task        `json:"subtasks,omitempty" validate:"-"`
}

// NewTask builds an unsaved task for the given list with a trimmed title and the
// default recurrence settings. The returned task is not validated; call Validate once
// optional fields have been applied.
func NewTask(listID int64, title string) *Task {
	return &Task{
		ListID:             listID,
		Title:              strings.TrimSpace(title),
		RecurrenceType:     RecurrenceNone,
		RecurrenceInterval: 1,
		CreatedAt:          time.Now().UTC(),
	}
}

// Validate checks if the Task has valid data.
// Returns a *ValidationError describing the first failing field.
func (t *Task) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return NewValidationError("title", "cannot be empty", ErrEmptyContent)
	}

	if err := validateStruct(t); err != nil {
		return err
	}

	if t.StartTime != "" && t.EndTime != "" {
		start, _ := time.Parse(ClockLayout, t.StartTime)
		end, _ := time.Parse(ClockLayout, t.EndTime)
		if !end.After(start) {
			return NewValidationError("end_time", "must be after start_time", ErrInvalidTimeRange)
		}
	}

	if t.ParentID != nil {
		if *t.ParentID <= 0 || (t.ID != 0 && *t.ParentID == t.ID) {
			return NewValidationError("parent_id", "must reference another task", ErrInvalidParent)
		}
		if len(t.Subtasks) > 0 {
			return NewValidationError("parent_id", "a task with subtasks cannot become a subtask", ErrInvalidParent)
		}
	}

	return nil
}

// IsSubtask reports whether the task is parented to another task.
func (t *Task) IsSubtask() bool {
	return t.ParentID != nil
}

// ReminderAt parses ReminderTime in the given location.
// The second return value is false when the task has no usable reminder.
func (t *Task) ReminderAt(loc *time.Location) (time.Time, bool) {
	if t.ReminderTime == "" {
		return time.Time{}, false
	}
	at, err := time.ParseInLocation(ReminderLayout, t.ReminderTime, loc)
	if err != nil {
		return time.Time{}, false
	}
	return at, true
}

// Clone returns a deep copy of the task, including its subtasks.
func (t *Task) Clone() *Task {
	if t == nil {
		return nil
	}

	c := *t
	if t.ParentID != nil {
		parentID := *t.ParentID
		c.ParentID = &parentID
	}
	if t.Subtasks != nil {
		c.Subtasks = make([]*Task, len(t.Subtasks))
		for i, sub := range t.Subtasks {
			c.Subtasks[i] = sub.Clone()
		}
	}
	return &c
}

// CloneTasks deep-copies a slice of tasks.
func CloneTasks(tasks []*Task) []*Task {
	if tasks == nil {
		return nil
	}
	out := make([]*Task, len(tasks))
	for i, t := range tasks {
		out[i] = t.Clone()
	}
	return out
}

// FilterCompleted returns the tasks (and subtasks) that are not completed.
// The input slice is left untouched.
func FilterCompleted(tasks []*Task) []*Task {
	out := make([]*Task, 0, len(tasks))
	for _, t := range tasks {
		if t.Completed {
			continue
		}
		c := t.Clone()
		if len(c.Subtasks) > 0 {
			c.Subtasks = FilterCompleted(c.Subtasks)
		}
		out = append(out, c)
	}
	return out
}
