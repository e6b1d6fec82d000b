package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/todo-core/internal/config"
)

func testConfig(dbURL string) *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Port:            8080,
			LogLevel:        "error",
			ShutdownTimeout: 5 * time.Second,
		},
		Database: config.DatabaseConfig{
			Driver:      "sqlite",
			URL:         dbURL,
			AutoMigrate: true,
		},
		Reminders: config.ReminderConfig{
			Enabled:      true,
			PollInterval: time.Second,
			Workers:      1,
			QueueSize:    8,
		},
	}
}

func TestApplicationServesUntilCancelled(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app, err := newApplication(ctx, testConfig(":memory:"), log)
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	baseURL := "http://" + ln.Addr().String()

	done := make(chan error, 1)
	go func() { done <- app.Run(ctx, ln) }()

	resp, err := http.Get(baseURL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Post(baseURL+"/api/lists", "application/json",
		strings.NewReader(`{"name":"Errands","category":"daily"}`))
	require.NoError(t, err)
	var created struct {
		ID int64 `json:"id"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	resp.Body.Close()
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, err = http.Post(fmt.Sprintf("%s/api/lists/%d/tasks", baseURL, created.ID), "application/json",
		strings.NewReader(`{"title":"Water plants","due_date":"2026-10-18","recurrence_type":"daily"}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestNewApplicationRejectsUnknownDriver(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := testConfig(":memory:")
	cfg.Database.Driver = "mysql"

	_, err := newApplication(context.Background(), cfg, log)
	assert.Error(t, err)
}

func TestMigrateCommands(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "todo.db")
	configPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(fmt.Sprintf(`
server:
  log_level: error
database:
  driver: sqlite
  url: %s
`, dbPath)), 0o600))

	for _, command := range []string{"up", "version", "status", "down", "reset"} {
		t.Run(command, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			root := newRootCmd(&stdout, &stderr)
			root.SetArgs([]string{"--config", configPath, "migrate", command})
			assert.NoError(t, root.Execute())
		})
	}

	_, err := os.Stat(dbPath)
	assert.NoError(t, err)
}

func TestMigrateRejectsMissingConfig(t *testing.T) {
	var stdout, stderr bytes.Buffer
	root := newRootCmd(&stdout, &stderr)
	root.SetArgs([]string{"--config", filepath.Join(t.TempDir(), "missing.yaml"), "migrate", "up"})

	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load configuration")
}
