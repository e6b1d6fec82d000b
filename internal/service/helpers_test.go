package service

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/phrazzld/todo-core/internal/events"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// eventLog collects dispatched events for assertions.
type eventLog struct {
	mu     sync.Mutex
	events []*events.Event
}

func (l *eventLog) HandleEvent(_ context.Context, e *events.Event) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, e)
	return nil
}

func (l *eventLog) named(name events.Name) []*events.Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []*events.Event
	for _, e := range l.events {
		if e.Name == name {
			out = append(out, e)
		}
	}
	return out
}

func (l *eventLog) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.events)
}

// record subscribes the log to every event the services publish.
func (l *eventLog) record(d *events.Dispatcher) {
	for _, name := range []events.Name{
		events.TaskCreated, events.TaskUpdated, events.TaskDeleted, events.TaskCompleted,
		events.ListCreated, events.ListUpdated, events.ListDeleted,
	} {
		d.On(name, l)
	}
}

func payloadOf[T any](t *testing.T, e *events.Event) T {
	t.Helper()
	var p T
	require.NoError(t, e.UnmarshalPayload(&p))
	return p
}
