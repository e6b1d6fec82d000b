package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCIHandlerAddsMetadata(t *testing.T) {
	t.Setenv("GITHUB_WORKFLOW", "ci")
	t.Setenv("GITHUB_SHA", "abc123")
	t.Setenv("GITHUB_JOB", "")

	var buf bytes.Buffer
	l := slog.New(NewCIHandler(&buf, nil)).With("component", "test").WithGroup("g")
	l.Info("hello", "k", "v")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "hello", entry["msg"])
	assert.Equal(t, "test", entry["component"])

	group, ok := entry["g"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "v", group["k"])
	assert.Equal(t, "ci", group["ci_workflow"])
	assert.Equal(t, "abc123", group["ci_commit"])
	assert.NotContains(t, group, "ci_job")
}

func TestIsInCIEnvironment(t *testing.T) {
	t.Setenv("CI", "")
	t.Setenv("GITHUB_ACTIONS", "")
	t.Setenv("GITLAB_CI", "")
	assert.False(t, isInCIEnvironment())

	t.Setenv("GITLAB_CI", "true")
	assert.True(t, isInCIEnvironment())
}
