// Package recurrence re-opens recurring tasks when they are completed.
//
// The Handler listens for task_completed events. When the completed task
// repeats, it records the completion date, moves the due date (and the
// reminder, if any) to the next occurrence and clears the completed flag
// through the task service, so caches and listeners see an ordinary update.
package recurrence

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/todo-core/internal/domain"
	"github.com/phrazzld/todo-core/internal/events"
	"github.com/phrazzld/todo-core/internal/platform/logger"
	"github.com/phrazzld/todo-core/internal/service"
)

// TaskUpdater is the part of service.TaskService the handler needs.
type TaskUpdater interface {
	GetTask(ctx context.Context, id int64, opts ...service.ReadOption) (*domain.Task, error)
	UpdateTask(ctx context.Context, id int64, fields domain.TaskFields) (bool, error)
}

// Handler advances recurring tasks on completion.
type Handler struct {
	tasks  TaskUpdater
	logger *slog.Logger
	now    func() time.Time
	loc    *time.Location
}

// Option configures a Handler.
type Option func(*Handler)

// WithClock replaces time.Now, which decides the completion date.
func WithClock(now func() time.Time) Option {
	return func(h *Handler) { h.now = now }
}

// WithLocation sets the time zone that dates are interpreted in. Defaults to time.Local.
func WithLocation(loc *time.Location) Option {
	return func(h *Handler) { h.loc = loc }
}

// NewHandler creates a Handler that updates tasks through tasks.
func NewHandler(tasks TaskUpdater, logger *slog.Logger, opts ...Option) (*Handler, error) {
	if tasks == nil {
		return nil, fmt.Errorf("task updater cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	h := &Handler{
		tasks:  tasks,
		logger: logger.With("component", "recurrence_handler"),
		now:    time.Now,
		loc:    time.Local,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// Register subscribes the handler to task_completed on d.
func (h *Handler) Register(d *events.Dispatcher) *events.Subscription {
	return d.On(events.TaskCompleted, h)
}

// HandleEvent implements events.EventHandler.
func (h *Handler) HandleEvent(ctx context.Context, event *events.Event) error {
	var payload events.TaskCompletedPayload
	if err := event.UnmarshalPayload(&payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}
	if !payload.Completed {
		return nil
	}

	log := logger.FromContextOrDefault(ctx, h.logger).With(
		slog.Int64("task_id", payload.TaskID),
		slog.String("event_id", event.ID.String()))

	task, err := h.tasks.GetTask(ctx, payload.TaskID, service.WithForceRefresh())
	if err != nil {
		if errors.Is(err, service.ErrTaskNotFound) {
			log.Debug("completed task no longer exists")
			return nil
		}
		return fmt.Errorf("failed to load completed task: %w", err)
	}
	if !task.Completed || !task.RecurrenceType.IsRecurring() {
		return nil
	}

	fields := h.NextOccurrence(task)
	if _, err := h.tasks.UpdateTask(ctx, task.ID, fields); err != nil {
		return fmt.Errorf("failed to schedule next occurrence: %w", err)
	}

	log.Info("recurring task rescheduled",
		slog.String("recurrence", string(task.RecurrenceType)),
		slog.String("due_date", *fields.DueDate))
	return nil
}

// NextOccurrence returns the update that re-opens task for its next
// occurrence. A task without a due date recurs from today.
func (h *Handler) NextOccurrence(task *domain.Task) domain.TaskFields {
	today := h.now().In(h.loc)
	todayDate := today.Format(domain.DateLayout)

	from, err := time.ParseInLocation(domain.DateLayout, task.DueDate, h.loc)
	if err != nil {
		from, _ = time.ParseInLocation(domain.DateLayout, todayDate, h.loc)
	}
	next := domain.NextDueDate(task.RecurrenceType, task.RecurrenceInterval, from)

	fields := domain.TaskFields{
		Completed:         domain.Ptr(false),
		DueDate:           domain.Ptr(next.Format(domain.DateLayout)),
		LastCompletedDate: domain.Ptr(todayDate),
	}

	if at, ok := task.ReminderAt(h.loc); ok {
		nextAt := domain.NextDueDate(task.RecurrenceType, task.RecurrenceInterval, at)
		fields.ReminderTime = domain.Ptr(nextAt.Format(domain.ReminderLayout))
	}

	return fields
}
