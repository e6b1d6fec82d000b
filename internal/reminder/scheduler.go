// Package reminder turns task reminder times into notifications.
//
// The Scheduler keeps an in-memory schedule seeded from storage and kept
// current through task events. Run polls the schedule and hands every due
// reminder to a job queue, where a worker pool calls the Notifier.
package reminder

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/phrazzld/todo-core/internal/domain"
	"github.com/phrazzld/todo-core/internal/events"
	"github.com/phrazzld/todo-core/internal/jobs"
	"github.com/phrazzld/todo-core/internal/platform/logger"
	"github.com/phrazzld/todo-core/internal/service"
)

// JobType is the job type of reminder notifications.
const JobType = "reminder"

// DefaultPollInterval is used when Config.PollInterval is not positive.
const DefaultPollInterval = 30 * time.Second

// Reminder is one scheduled notification.
type Reminder struct {
	TaskID int64     `json:"task_id"`
	ListID int64     `json:"list_id"`
	Title  string    `json:"title"`
	At     time.Time `json:"at"`
}

// TaskReader is the part of service.TaskService the scheduler needs.
type TaskReader interface {
	GetTask(ctx context.Context, id int64, opts ...service.ReadOption) (*domain.Task, error)
	TasksWithReminders(ctx context.Context) ([]*domain.Task, error)
}

// Config controls polling.
type Config struct {
	PollInterval time.Duration
	// Location is the time zone reminder times are written in. Defaults to time.Local.
	Location *time.Location
}

// Scheduler tracks pending reminders and enqueues them when they fall due.
type Scheduler struct {
	tasks    TaskReader
	queue    jobs.QueueWriter
	notifier Notifier
	logger   *slog.Logger
	interval time.Duration
	loc      *time.Location
	now      func() time.Time

	mu       sync.Mutex
	schedule map[int64]Reminder
	// fired remembers the reminder time already delivered per task so a later
	// update that keeps the same time does not deliver it again.
	fired map[int64]time.Time

	subs []*events.Subscription
}

// NewScheduler creates a Scheduler and subscribes it to task events on d.
// The subscriptions are weak: a Scheduler that is no longer referenced stops
// receiving events without calling Close.
func NewScheduler(
	tasks TaskReader,
	d *events.Dispatcher,
	queue jobs.QueueWriter,
	notifier Notifier,
	cfg Config,
	logger *slog.Logger,
) (*Scheduler, error) {
	if tasks == nil {
		return nil, fmt.Errorf("task reader cannot be nil")
	}
	if d == nil {
		return nil, fmt.Errorf("dispatcher cannot be nil")
	}
	if queue == nil {
		return nil, fmt.Errorf("job queue cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if notifier == nil {
		notifier = NewLogNotifier(logger)
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}

	s := &Scheduler{
		tasks:    tasks,
		queue:    queue,
		notifier: notifier,
		logger:   logger.With("component", "reminder_scheduler"),
		interval: cfg.PollInterval,
		loc:      cfg.Location,
		now:      time.Now,
		schedule: make(map[int64]Reminder),
		fired:    make(map[int64]time.Time),
	}

	s.subs = []*events.Subscription{
		events.OnWeak(d, events.TaskCreated, s, (*Scheduler).onTaskChanged),
		events.OnWeak(d, events.TaskUpdated, s, (*Scheduler).onTaskChanged),
		events.OnWeak(d, events.TaskCompleted, s, (*Scheduler).onTaskChanged),
		events.OnWeak(d, events.TaskDeleted, s, (*Scheduler).onTaskDeleted),
		events.OnWeak(d, events.ListDeleted, s, (*Scheduler).onListDeleted),
	}

	return s, nil
}

// Close detaches the scheduler from the dispatcher.
func (s *Scheduler) Close() {
	for _, sub := range s.subs {
		sub.Unsubscribe()
	}
}

// Seed replaces the schedule with the reminders currently in storage.
func (s *Scheduler) Seed(ctx context.Context) error {
	tasks, err := s.tasks.TasksWithReminders(ctx)
	if err != nil {
		return fmt.Errorf("failed to load reminders: %w", err)
	}

	schedule := make(map[int64]Reminder, len(tasks))
	for _, t := range tasks {
		if r, ok := s.reminderFor(t); ok {
			schedule[t.ID] = r
		}
	}

	s.mu.Lock()
	for id, r := range schedule {
		if at, ok := s.fired[id]; ok && at.Equal(r.At) {
			delete(schedule, id)
		}
	}
	s.schedule = schedule
	s.mu.Unlock()

	logger.FromContextOrDefault(ctx, s.logger).Info("reminder schedule seeded",
		slog.Int("reminders", len(schedule)))
	return nil
}

// Refresh re-reads one task and updates its schedule entry.
func (s *Scheduler) Refresh(ctx context.Context, taskID int64) error {
	task, err := s.tasks.GetTask(ctx, taskID, service.WithForceRefresh())
	if errors.Is(err, service.ErrTaskNotFound) {
		s.remove(taskID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load task %d: %w", taskID, err)
	}

	r, ok := s.reminderFor(task)

	s.mu.Lock()
	defer s.mu.Unlock()
	if !ok {
		delete(s.schedule, taskID)
		return nil
	}
	if at, done := s.fired[taskID]; done && at.Equal(r.At) {
		return nil
	}
	s.schedule[taskID] = r
	return nil
}

func (s *Scheduler) remove(taskID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.schedule, taskID)
	delete(s.fired, taskID)
}

// reminderFor reports the reminder an open task carries.
func (s *Scheduler) reminderFor(t *domain.Task) (Reminder, bool) {
	if t.Completed {
		return Reminder{}, false
	}
	at, ok := t.ReminderAt(s.loc)
	if !ok {
		return Reminder{}, false
	}
	return Reminder{TaskID: t.ID, ListID: t.ListID, Title: t.Title, At: at}, true
}

// Pending returns the scheduled reminders ordered by time.
func (s *Scheduler) Pending() []Reminder {
	s.mu.Lock()
	out := make([]Reminder, 0, len(s.schedule))
	for _, r := range s.schedule {
		out = append(out, r)
	}
	s.mu.Unlock()

	slices.SortFunc(out, byTime)
	return out
}

func byTime(a, b Reminder) int {
	if c := a.At.Compare(b.At); c != 0 {
		return c
	}
	return cmp.Compare(a.TaskID, b.TaskID)
}

// Poll enqueues every reminder due at now and reports how many were handed
// off. A reminder the queue cannot take stays scheduled for the next poll.
func (s *Scheduler) Poll(ctx context.Context, now time.Time) int {
	log := logger.FromContextOrDefault(ctx, s.logger)

	s.mu.Lock()
	var due []Reminder
	for _, r := range s.schedule {
		if !r.At.After(now) {
			due = append(due, r)
		}
	}
	s.mu.Unlock()
	slices.SortFunc(due, byTime)

	sent := 0
	for _, r := range due {
		notifier := s.notifier
		reminder := r
		job := jobs.NewFunc(JobType, func(ctx context.Context) error {
			return notifier.Notify(ctx, reminder)
		})
		if err := s.queue.Enqueue(job); err != nil {
			log.Warn("failed to enqueue reminder",
				slog.Int64("task_id", r.TaskID),
				slog.String("error", err.Error()))
			continue
		}

		s.mu.Lock()
		// The entry may have been replaced while the lock was released.
		if cur, ok := s.schedule[r.TaskID]; ok && cur.At.Equal(r.At) {
			delete(s.schedule, r.TaskID)
		}
		s.fired[r.TaskID] = r.At
		s.mu.Unlock()
		sent++
	}

	if sent > 0 {
		log.Debug("reminders enqueued", slog.Int("count", sent))
	}
	return sent
}

// Run seeds the schedule and polls it until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	if err := s.Seed(ctx); err != nil {
		return err
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("reminder scheduler started", slog.Duration("poll_interval", s.interval))
	s.Poll(ctx, s.now())
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("reminder scheduler stopped")
			return nil
		case <-ticker.C:
			s.Poll(ctx, s.now())
		}
	}
}

func (s *Scheduler) onTaskChanged(ctx context.Context, event *events.Event) error {
	var payload struct {
		TaskID int64 `json:"task_id"`
	}
	if err := event.UnmarshalPayload(&payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}
	return s.Refresh(ctx, payload.TaskID)
}

func (s *Scheduler) onTaskDeleted(_ context.Context, event *events.Event) error {
	var payload events.TaskDeletedPayload
	if err := event.UnmarshalPayload(&payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}
	s.remove(payload.TaskID)
	return nil
}

func (s *Scheduler) onListDeleted(_ context.Context, event *events.Event) error {
	var payload events.ListDeletedPayload
	if err := event.UnmarshalPayload(&payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for id, r := range s.schedule {
		if r.ListID == payload.ListID {
			delete(s.schedule, id)
			delete(s.fired, id)
		}
	}
	return nil
}
