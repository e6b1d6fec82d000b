package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsNotFoundError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{
			name:     "nil error",
			err:      nil,
			expected: false,
		},
		{
			name:     "generic error",
			err:      errors.New("some error"),
			expected: false,
		},
		{
			name:     "ErrNotFound",
			err:      ErrNotFound,
			expected: true,
		},
		{
			name:     "ErrTaskNotFound",
			err:      ErrTaskNotFound,
			expected: true,
		},
		{
			name:     "wrapped ErrListNotFound",
			err:      fmt.Errorf("failed to find list: %w", ErrListNotFound),
			expected: true,
		},
		{
			name:     "StoreError wrapping ErrTaskNotFound",
			err:      NewStoreError("task", "get", "lookup failed", ErrTaskNotFound),
			expected: true,
		},
		{
			name:     "ErrDuplicate",
			err:      ErrDuplicate,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsNotFoundError(tt.err))
		})
	}
}

func TestIsDuplicateError(t *testing.T) {
	assert.True(t, IsDuplicateError(ErrDuplicate))
	assert.True(t, IsDuplicateError(fmt.Errorf("insert: %w", ErrDuplicate)))
	assert.False(t, IsDuplicateError(ErrNotFound))
	assert.False(t, IsDuplicateError(nil))
}

func TestEntitySpecificErrorsAreDistinct(t *testing.T) {
	assert.False(t, errors.Is(ErrTaskNotFound, ErrListNotFound))
	assert.False(t, errors.Is(ErrListNotFound, ErrTaskNotFound))
	assert.ErrorIs(t, ErrTaskNotFound, ErrNotFound)
	assert.ErrorIs(t, ErrListNotFound, ErrNotFound)
}

func TestStoreError(t *testing.T) {
	t.Run("with wrapped error", func(t *testing.T) {
		cause := errors.New("disk full")
		err := NewStoreError("task", "create", "insert failed", cause)

		assert.Equal(t, "create operation on task failed: insert failed: disk full", err.Error())
		assert.ErrorIs(t, err, cause)
	})

	t.Run("without wrapped error", func(t *testing.T) {
		err := NewStoreError("list", "delete", "nothing to delete", nil)

		assert.Equal(t, "delete operation on list failed: nothing to delete", err.Error())
		assert.Nil(t, err.Unwrap())
	})

	t.Run("found with errors.As", func(t *testing.T) {
		wrapped := fmt.Errorf("batch delete: %w", NewStoreError("task", "batch_delete", "delete failed", ErrTransactionFailed))

		var storeErr *StoreError
		if assert.ErrorAs(t, wrapped, &storeErr) {
			assert.Equal(t, "batch_delete", storeErr.Operation)
		}
		assert.ErrorIs(t, wrapped, ErrTransactionFailed)
	})
}
