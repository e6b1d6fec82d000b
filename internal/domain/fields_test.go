package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTaskFieldsNames(t *testing.T) {
	assert.True(t, TaskFields{}.IsEmpty())
	assert.Empty(t, TaskFields{}.Names())

	fields := TaskFields{
		Title:     Ptr("New title"),
		Completed: Ptr(true),
		Notes:     Ptr(""),
	}

	assert.False(t, fields.IsEmpty())
	assert.Equal(t, []string{"title", "notes", "completed"}, fields.Names())
}

func TestTaskFieldsApply(t *testing.T) {
	task := NewTask(1, "Original")
	task.Notes = "keep me"

	fields := TaskFields{
		Title:          Ptr("  Trimmed  "),
		DueDate:        Ptr("2026-10-20"),
		ParentID:       Ptr(int64(4)),
		RecurrenceType: Ptr(RecurrenceWeekly),
	}
	fields.Apply(task)

	assert.Equal(t, "Trimmed", task.Title)
	assert.Equal(t, "keep me", task.Notes)
	assert.Equal(t, "2026-10-20", task.DueDate)
	assert.Equal(t, RecurrenceWeekly, task.RecurrenceType)
	if assert.NotNil(t, task.ParentID) {
		assert.Equal(t, int64(4), *task.ParentID)
		assert.NotSame(t, fields.ParentID, task.ParentID)
	}
}

func TestTaskFieldsNormalized(t *testing.T) {
	raw := TaskFields{Title: Ptr("  padded ")}
	normalized := raw.Normalized()

	assert.Equal(t, "padded", *normalized.Title)
	assert.Equal(t, "  padded ", *raw.Title, "Normalized must not modify the receiver's title")
}
