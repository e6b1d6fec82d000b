package redact_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/phrazzld/todo-core/internal/redact"
)

func TestString(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "empty string",
			input:    "",
			expected: "",
		},
		{
			name:     "no sensitive data",
			input:    "task service get_task failed: failed to retrieve task",
			expected: "task service get_task failed: failed to retrieve task",
		},
		{
			name:     "postgres url",
			input:    "connect postgres://todo:hunter22@db/todo failed",
			expected: "connect postgres://[REDACTED_CREDENTIAL]@db/todo failed",
		},
		{
			name:     "keyword dsn password",
			input:    "dial: user=todo password=hunter22 dbname=todo",
			expected: "dial: user=todo password=[REDACTED_CREDENTIAL] dbname=todo",
		},
		{
			name:     "sqlite dsn",
			input:    "open file:todo.db?_pragma=foreign_keys(1) failed",
			expected: "open [REDACTED_PATH] failed",
		},
		{
			name:     "postgres constraint detail",
			input:    "duplicate key value violates unique constraint (Key (name)=(Secret plans) already exists)",
			expected: "duplicate key value violates unique constraint (Key (name)=([REDACTED]) already exists)",
		},
		{
			name:     "host and port",
			input:    "dial tcp 10.0.0.12:5432: connection refused",
			expected: "dial tcp [REDACTED_HOST]: connection refused",
		},
		{
			name:     "localhost",
			input:    "dial tcp localhost:5432: i/o timeout",
			expected: "dial tcp [REDACTED_HOST]: i/o timeout",
		},
		{
			name:     "unix path",
			input:    "unable to open /var/lib/todo/todo.db",
			expected: "unable to open [REDACTED_PATH]",
		},
		{
			name:     "windows path",
			input:    `unable to open C:\Users\me\todo.db`,
			expected: "unable to open [REDACTED_PATH]",
		},
		{
			name:     "stack trace",
			input:    "panic: boom\n\ngoroutine 1 [running]:\nmain.main()\n\tmain.go:5",
			expected: "panic: boom\n\n[STACK_TRACE_REDACTED]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, redact.String(tt.input))
		})
	}
}

func TestStringRedactsStatements(t *testing.T) {
	in := "query failed: SELECT id, title FROM tasks WHERE notes LIKE '%diary%': no such column"
	out := redact.String(in)

	assert.Contains(t, out, redact.RedactedSQLPlaceholder)
	assert.NotContains(t, out, "diary")
	assert.NotContains(t, out, "tasks WHERE")
	assert.Contains(t, out, "no such column")
}

func TestError(t *testing.T) {
	assert.Equal(t, "", redact.Error(nil))

	err := fmt.Errorf("open store: %w", errors.New("postgres://admin:pw@db.internal:5432/todo unreachable"))
	out := redact.Error(err)
	assert.NotContains(t, out, "admin:pw")
	assert.NotContains(t, out, "db.internal")
	assert.Contains(t, out, "open store")
}
