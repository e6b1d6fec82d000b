package domain

import "strings"

// TaskFields is a partial update of a task. Each non-nil field is applied; nil fields are
// left as they are. The same structure carries the optional fields of a new task.
type TaskFields struct {
	ListID             *int64          `json:"list_id,omitempty"`
	Title              *string         `json:"title,omitempty"`
	Notes              *string         `json:"notes,omitempty"`
	DueDate            *string         `json:"due_date,omitempty"`
	StartTime          *string         `json:"start_time,omitempty"`
	EndTime            *string         `json:"end_time,omitempty"`
	ReminderTime       *string         `json:"reminder_time,omitempty"`
	Completed          *bool           `json:"completed,omitempty"`
	ParentID           *int64          `json:"parent_id,omitempty"`
	Position           *int            `json:"position,omitempty"`
	RecurrenceType     *RecurrenceType `json:"recurrence_type,omitempty"`
	RecurrenceInterval *int            `json:"recurrence_interval,omitempty"`
	LastCompletedDate  *string         `json:"last_completed_date,omitempty"`
	Motivation         *string         `json:"motivation,omitempty"`
}

// IsEmpty reports whether no field is set.
func (f TaskFields) IsEmpty() bool {
	return len(f.Names()) == 0
}

// Names lists the column names of the fields that are set, in a stable order.
func (f TaskFields) Names() []string {
	var names []string
	add := func(set bool, name string) {
		if set {
			names = append(names, name)
		}
	}

	add(f.ListID != nil, "list_id")
	add(f.Title != nil, "title")
	add(f.Notes != nil, "notes")
	add(f.DueDate != nil, "due_date")
	add(f.StartTime != nil, "start_time")
	add(f.EndTime != nil, "end_time")
	add(f.ReminderTime != nil, "reminder_time")
	add(f.Completed != nil, "completed")
	add(f.ParentID != nil, "parent_id")
	add(f.Position != nil, "position")
	add(f.RecurrenceType != nil, "recurrence_type")
	add(f.RecurrenceInterval != nil, "recurrence_interval")
	add(f.LastCompletedDate != nil, "last_completed_date")
	add(f.Motivation != nil, "motivation")

	return names
}

// Apply copies every set field onto t. Titles are trimmed on the way in.
func (f TaskFields) Apply(t *Task) {
	if f.ListID != nil {
		t.ListID = *f.ListID
	}
	if f.Title != nil {
		t.Title = strings.TrimSpace(*f.Title)
	}
	if f.Notes != nil {
		t.Notes = *f.Notes
	}
	if f.DueDate != nil {
		t.DueDate = *f.DueDate
	}
	if f.StartTime != nil {
		t.StartTime = *f.StartTime
	}
	if f.EndTime != nil {
		t.EndTime = *f.EndTime
	}
	if f.ReminderTime != nil {
		t.ReminderTime = *f.ReminderTime
	}
	if f.Completed != nil {
		t.Completed = *f.Completed
	}
	if f.ParentID != nil {
		parentID := *f.ParentID
		t.ParentID = &parentID
	}
	if f.Position != nil {
		t.Position = *f.Position
	}
	if f.RecurrenceType != nil {
		t.RecurrenceType = *f.RecurrenceType
	}
	if f.RecurrenceInterval != nil {
		t.RecurrenceInterval = *f.RecurrenceInterval
	}
	if f.LastCompletedDate != nil {
		t.LastCompletedDate = *f.LastCompletedDate
	}
	if f.Motivation != nil {
		t.Motivation = *f.Motivation
	}
}

// Normalized returns a copy of f with the title trimmed, matching what Apply stores.
func (f TaskFields) Normalized() TaskFields {
	if f.Title != nil {
		title := strings.TrimSpace(*f.Title)
		f.Title = &title
	}
	return f
}

// Ptr returns a pointer to v. It keeps TaskFields literals short.
func Ptr[T any](v T) *T {
	return &v
}
