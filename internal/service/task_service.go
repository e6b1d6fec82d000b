package service

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"sync/atomic"
	"unicode/utf8"

	"github.com/phrazzld/todo-core/internal/cache"
	"github.com/phrazzld/todo-core/internal/domain"
	"github.com/phrazzld/todo-core/internal/events"
	"github.com/phrazzld/todo-core/internal/platform/logger"
	"github.com/phrazzld/todo-core/internal/store"
)

const (
	// DefaultSearchLimit is used when SearchTasks is called without a limit.
	DefaultSearchLimit = 50
	// MinSearchQueryLength is the shortest trimmed query that reaches storage.
	MinSearchQueryLength = 2
)

// TaskStats reports cache effectiveness and storage traffic for TaskService.
type TaskStats struct {
	CacheHits   int64 `json:"cache_hits"`
	CacheMisses int64 `json:"cache_misses"`
	DBQueries   int64 `json:"db_queries"`
	CachedTasks int   `json:"cached_tasks"`
	CachedLists int   `json:"cached_lists"`
}

// TaskService provides cached, validated, event-emitting access to tasks.
type TaskService interface {
	// GetTask returns a task with its subtasks.
	// With WithoutCache or WithForceRefresh the read always reaches storage,
	// counts as a cache miss and replaces the cached entry with its result.
	// Returns ErrTaskNotFound if the task does not exist.
	GetTask(ctx context.Context, id int64, opts ...ReadOption) (*domain.Task, error)

	// GetListTasks returns the top-level tasks of a list with their subtasks.
	// Completed tasks are left out unless showCompleted is true.
	GetListTasks(ctx context.Context, listID int64, showCompleted bool, opts ...ReadOption) ([]*domain.Task, error)

	// CreateTask validates and stores a new task and returns its ID.
	CreateTask(ctx context.Context, listID int64, title string, fields domain.TaskFields) (int64, error)

	// UpdateTask applies fields to an existing task. It returns false when
	// fields is empty and nothing was written.
	UpdateTask(ctx context.Context, id int64, fields domain.TaskFields) (bool, error)

	// DeleteTask removes a task and its subtasks.
	DeleteTask(ctx context.Context, id int64) (bool, error)

	// ToggleTaskCompleted flips a task's completion flag and returns the new state.
	ToggleTaskCompleted(ctx context.Context, id int64) (bool, error)

	// SearchTasks returns up to limit tasks whose title or notes contain query.
	SearchTasks(ctx context.Context, query string, limit int) ([]*domain.Task, error)

	// BatchUpdateCompletion sets the completion flag of every listed task in
	// one storage round-trip and returns how many tasks changed.
	BatchUpdateCompletion(ctx context.Context, ids []int64, completed bool) (int, error)

	// BatchDeleteTasks removes every listed task in one storage round-trip
	// and returns how many tasks were removed.
	BatchDeleteTasks(ctx context.Context, ids []int64) (int, error)

	// TasksWithReminders returns the open tasks that carry a reminder. Uncached.
	TasksWithReminders(ctx context.Context) ([]*domain.Task, error)

	// ClearCache drops every cached entry.
	ClearCache()

	// Stats returns the service counters.
	Stats() TaskStats

	// Close detaches the service from the event dispatcher.
	Close()
}

// taskServiceImpl implements the TaskService interface.
type taskServiceImpl struct {
	tasks      store.TaskStore
	lists      store.ListStore
	dispatcher *events.Dispatcher
	logger     *slog.Logger

	taskCache *cache.Cache[int64, *domain.Task]
	listCache *cache.Cache[int64, []*domain.Task]

	// bypassed counts reads that skipped the cache; they are misses too.
	bypassed  atomic.Int64
	dbQueries atomic.Int64

	subscription *events.Subscription
}

var _ TaskService = (*taskServiceImpl)(nil)

// NewTaskService creates a TaskService. It returns an error if any of the
// required dependencies are nil.
func NewTaskService(
	tasks store.TaskStore,
	lists store.ListStore,
	dispatcher *events.Dispatcher,
	logger *slog.Logger,
) (TaskService, error) {
	if tasks == nil {
		return nil, &ServiceError{Service: "task", Operation: "create_service", Message: "tasks store cannot be nil"}
	}
	if lists == nil {
		return nil, &ServiceError{Service: "task", Operation: "create_service", Message: "lists store cannot be nil"}
	}
	if dispatcher == nil {
		return nil, &ServiceError{Service: "task", Operation: "create_service", Message: "dispatcher cannot be nil"}
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &taskServiceImpl{
		tasks:      tasks,
		lists:      lists,
		dispatcher: dispatcher,
		logger:     logger.With("component", "task_service"),
		taskCache:  cache.New[int64, *domain.Task](),
		listCache:  cache.New[int64, []*domain.Task](),
	}

	// Storage cascades list deletes to their tasks, so cached tasks of the
	// list must go as well.
	s.subscription = dispatcher.On(events.ListDeleted, events.HandlerFunc(s.handleListDeleted))

	return s, nil
}

func (s *taskServiceImpl) handleListDeleted(ctx context.Context, event *events.Event) error {
	var payload events.ListDeletedPayload
	if err := event.UnmarshalPayload(&payload); err != nil {
		return err
	}

	s.listCache.Delete(payload.ListID)
	dropped := s.taskCache.DeleteFunc(func(_ int64, t *domain.Task) bool {
		return t.ListID == payload.ListID
	})

	logger.FromContextOrDefault(ctx, s.logger).Debug("dropped cached tasks of deleted list",
		slog.Int64("list_id", payload.ListID),
		slog.Int("tasks", dropped))
	return nil
}

// Close implements TaskService.Close.
func (s *taskServiceImpl) Close() {
	s.subscription.Unsubscribe()
}

// GetTask implements TaskService.GetTask.
func (s *taskServiceImpl) GetTask(ctx context.Context, id int64, opts ...ReadOption) (*domain.Task, error) {
	o := applyReadOptions(opts)

	load := func() (*domain.Task, error) {
		s.dbQueries.Add(1)
		return s.tasks.GetTaskByID(ctx, id)
	}

	var (
		task *domain.Task
		err  error
	)
	if o.skipRead {
		s.bypassed.Add(1)
		gen := s.taskCache.Generation()
		task, err = load()
		switch {
		case err == nil:
			// A single task read always refreshes its cache entry.
			s.taskCache.SetIfCurrent(gen, id, task)
		case errors.Is(err, store.ErrTaskNotFound):
			s.taskCache.Delete(id)
		}
	} else {
		task, err = s.taskCache.Load(id, load)
	}
	if err != nil {
		if !errors.Is(err, store.ErrTaskNotFound) {
			logger.FromContextOrDefault(ctx, s.logger).Error("failed to get task",
				slog.String("error", err.Error()),
				slog.Int64("task_id", id))
		}
		return nil, newServiceError("task", "get_task", "failed to retrieve task", err)
	}

	return task.Clone(), nil
}

// GetListTasks implements TaskService.GetListTasks.
func (s *taskServiceImpl) GetListTasks(
	ctx context.Context,
	listID int64,
	showCompleted bool,
	opts ...ReadOption,
) ([]*domain.Task, error) {
	o := applyReadOptions(opts)

	// The cache always holds the unfiltered set; filtering happens per call.
	load := func() ([]*domain.Task, error) {
		s.dbQueries.Add(1)
		return s.tasks.GetTasksByList(ctx, listID, true, 0)
	}

	var (
		tasks []*domain.Task
		err   error
	)
	if o.skipRead {
		s.bypassed.Add(1)
		gen := s.listCache.Generation()
		tasks, err = load()
		if err == nil && !o.skipWrite {
			s.listCache.SetIfCurrent(gen, listID, tasks)
		}
	} else {
		tasks, err = s.listCache.Load(listID, load)
	}
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to get list tasks",
			slog.String("error", err.Error()),
			slog.Int64("list_id", listID))
		return nil, newServiceError("task", "get_list_tasks", "failed to retrieve tasks", err)
	}

	if !showCompleted {
		return domain.FilterCompleted(tasks), nil
	}
	out := domain.CloneTasks(tasks)
	if out == nil {
		out = []*domain.Task{}
	}
	return out, nil
}

// checkList confirms that a list exists.
func (s *taskServiceImpl) checkList(ctx context.Context, field string, listID int64) error {
	s.dbQueries.Add(1)
	_, err := s.lists.GetListByID(ctx, listID)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrListNotFound):
		return missingList(field, listID)
	default:
		return err
	}
}

// checkParent confirms that parentID names a top-level task in listID.
func (s *taskServiceImpl) checkParent(ctx context.Context, parentID, listID int64) error {
	s.dbQueries.Add(1)
	parent, err := s.tasks.GetTaskByID(ctx, parentID)
	switch {
	case errors.Is(err, store.ErrTaskNotFound):
		return missingTask("parent_id", parentID)
	case err != nil:
		return err
	case parent.IsSubtask():
		return domain.NewValidationError("parent_id", "subtasks cannot have subtasks", domain.ErrInvalidParent)
	case parent.ListID != listID:
		return domain.NewValidationError("parent_id", "parent task belongs to another list", domain.ErrInvalidParent)
	}
	return nil
}

// current reads a task straight from storage, turning not-found into a
// validation error on field.
func (s *taskServiceImpl) current(ctx context.Context, field string, id int64) (*domain.Task, error) {
	s.dbQueries.Add(1)
	task, err := s.tasks.GetTaskByID(ctx, id)
	if errors.Is(err, store.ErrTaskNotFound) {
		return nil, missingTask(field, id)
	}
	return task, err
}

// CreateTask implements TaskService.CreateTask.
func (s *taskServiceImpl) CreateTask(
	ctx context.Context,
	listID int64,
	title string,
	fields domain.TaskFields,
) (int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task := domain.NewTask(listID, title)
	fields.Apply(task)
	task.ListID = listID
	task.Title = strings.TrimSpace(title)

	if err := task.Validate(); err != nil {
		log.Debug("task validation failed", slog.String("error", err.Error()))
		return 0, err
	}

	if err := s.checkList(ctx, "list_id", listID); err != nil {
		return 0, s.fail(log, "create_task", "failed to verify list", err)
	}
	if task.ParentID != nil {
		if err := s.checkParent(ctx, *task.ParentID, listID); err != nil {
			return 0, s.fail(log, "create_task", "failed to verify parent task", err)
		}
	}

	s.dbQueries.Add(1)
	id, err := s.tasks.CreateTask(ctx, task)
	if err != nil {
		return 0, s.fail(log, "create_task", "failed to save task", err)
	}

	s.listCache.Delete(listID)
	if task.ParentID != nil {
		s.taskCache.Delete(*task.ParentID)
	}

	s.dispatcher.Emit(ctx, events.TaskCreated, events.TaskCreatedPayload{TaskID: id, ListID: listID})
	return id, nil
}

// UpdateTask implements TaskService.UpdateTask.
func (s *taskServiceImpl) UpdateTask(ctx context.Context, id int64, fields domain.TaskFields) (bool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	current, err := s.current(ctx, "task_id", id)
	if err != nil {
		return false, s.fail(log, "update_task", "failed to load task", err)
	}
	if fields.IsEmpty() {
		return false, nil
	}

	merged := current.Clone()
	fields.Apply(merged)
	if err := merged.Validate(); err != nil {
		log.Debug("task validation failed",
			slog.String("error", err.Error()),
			slog.Int64("task_id", id))
		return false, err
	}

	moved := merged.ListID != current.ListID
	if moved {
		if current.IsSubtask() && fields.ParentID == nil {
			return false, domain.NewValidationError("list_id", "a subtask moves with its parent", domain.ErrInvalidParent)
		}
		if err := s.checkList(ctx, "list_id", merged.ListID); err != nil {
			return false, s.fail(log, "update_task", "failed to verify list", err)
		}
	}
	if fields.ParentID != nil {
		if err := s.checkParent(ctx, *merged.ParentID, merged.ListID); err != nil {
			return false, s.fail(log, "update_task", "failed to verify parent task", err)
		}
	}

	fields = fields.Normalized()
	s.dbQueries.Add(1)
	if moved && len(current.Subtasks) > 0 {
		// Subtasks follow their parent to the new list atomically.
		updates := []store.TaskUpdate{{ID: id, Fields: fields}}
		for _, sub := range current.Subtasks {
			updates = append(updates, store.TaskUpdate{
				ID:     sub.ID,
				Fields: domain.TaskFields{ListID: domain.Ptr(merged.ListID)},
			})
		}
		_, err = s.tasks.BatchUpdateTasks(ctx, updates)
	} else {
		err = s.tasks.UpdateTask(ctx, id, fields)
	}
	if err != nil {
		return false, s.fail(log, "update_task", "failed to save task", err)
	}

	taskKeys := []int64{id}
	for _, sub := range current.Subtasks {
		taskKeys = append(taskKeys, sub.ID)
	}
	if current.ParentID != nil {
		taskKeys = append(taskKeys, *current.ParentID)
	}
	if merged.ParentID != nil {
		taskKeys = append(taskKeys, *merged.ParentID)
	}
	s.taskCache.Delete(taskKeys...)
	s.listCache.Delete(current.ListID, merged.ListID)

	s.dispatcher.Emit(ctx, events.TaskUpdated, events.TaskUpdatedPayload{TaskID: id, Fields: fields.Names()})
	return true, nil
}

// DeleteTask implements TaskService.DeleteTask.
func (s *taskServiceImpl) DeleteTask(ctx context.Context, id int64) (bool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	current, err := s.current(ctx, "task_id", id)
	if err != nil {
		return false, s.fail(log, "delete_task", "failed to load task", err)
	}

	s.dbQueries.Add(1)
	if err := s.tasks.DeleteTask(ctx, id); err != nil {
		return false, s.fail(log, "delete_task", "failed to delete task", err)
	}

	s.invalidateTask(current)
	s.dispatcher.Emit(ctx, events.TaskDeleted, events.TaskDeletedPayload{TaskID: id, ListID: current.ListID})
	// Storage removed the subtasks with their parent.
	for _, sub := range current.Subtasks {
		s.dispatcher.Emit(ctx, events.TaskDeleted, events.TaskDeletedPayload{TaskID: sub.ID, ListID: sub.ListID})
	}
	return true, nil
}

// ToggleTaskCompleted implements TaskService.ToggleTaskCompleted.
func (s *taskServiceImpl) ToggleTaskCompleted(ctx context.Context, id int64) (bool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	current, err := s.current(ctx, "task_id", id)
	if err != nil {
		return false, s.fail(log, "toggle_task_completed", "failed to load task", err)
	}

	s.dbQueries.Add(1)
	completed, err := s.tasks.ToggleTaskCompleted(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrTaskNotFound) {
			err = missingTask("task_id", id)
		}
		return false, s.fail(log, "toggle_task_completed", "failed to toggle task", err)
	}

	s.invalidateTask(current)
	s.dispatcher.Emit(ctx, events.TaskCompleted, events.TaskCompletedPayload{TaskID: id, Completed: completed})
	return completed, nil
}

// invalidateTask drops every cache entry that embeds t.
func (s *taskServiceImpl) invalidateTask(t *domain.Task) {
	keys := []int64{t.ID}
	for _, sub := range t.Subtasks {
		keys = append(keys, sub.ID)
	}
	if t.ParentID != nil {
		keys = append(keys, *t.ParentID)
	}
	s.taskCache.Delete(keys...)
	s.listCache.Delete(t.ListID)
}

// invalidateIDs drops cached entries for ids, wherever they appear, and the
// cached subtasks of ids, without asking storage where the tasks live.
func (s *taskServiceImpl) invalidateIDs(ids []int64) {
	contains := func(t *domain.Task) bool {
		if slices.Contains(ids, t.ID) {
			return true
		}
		if t.ParentID != nil && slices.Contains(ids, *t.ParentID) {
			return true
		}
		for _, sub := range t.Subtasks {
			if slices.Contains(ids, sub.ID) {
				return true
			}
		}
		return false
	}

	s.taskCache.Delete(ids...)
	s.taskCache.DeleteFunc(func(_ int64, t *domain.Task) bool { return contains(t) })
	s.listCache.DeleteFunc(func(_ int64, tasks []*domain.Task) bool {
		return slices.ContainsFunc(tasks, contains)
	})
}

// SearchTasks implements TaskService.SearchTasks.
func (s *taskServiceImpl) SearchTasks(ctx context.Context, query string, limit int) ([]*domain.Task, error) {
	query = strings.TrimSpace(query)
	if utf8.RuneCountInString(query) < MinSearchQueryLength {
		return []*domain.Task{}, nil
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	s.dbQueries.Add(1)
	tasks, err := s.tasks.SearchTasks(ctx, query, limit)
	if err != nil {
		return nil, s.fail(logger.FromContextOrDefault(ctx, s.logger), "search_tasks", "failed to search tasks", err)
	}
	return tasks, nil
}

// dedupe returns ids without repeats, keeping first occurrences in order.
func dedupe(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// BatchUpdateCompletion implements TaskService.BatchUpdateCompletion.
func (s *taskServiceImpl) BatchUpdateCompletion(ctx context.Context, ids []int64, completed bool) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	log := logger.FromContextOrDefault(ctx, s.logger)
	ids = dedupe(ids)

	updates := make([]store.TaskUpdate, len(ids))
	for i, id := range ids {
		updates[i] = store.TaskUpdate{ID: id, Fields: domain.TaskFields{Completed: domain.Ptr(completed)}}
	}

	s.dbQueries.Add(1)
	n, err := s.tasks.BatchUpdateTasks(ctx, updates)
	if err != nil {
		return 0, s.fail(log, "batch_update_completion", "failed to update tasks", err)
	}

	s.invalidateIDs(ids)
	for _, id := range ids {
		s.dispatcher.Emit(ctx, events.TaskCompleted, events.TaskCompletedPayload{TaskID: id, Completed: completed})
	}

	log.Debug("batch completion applied",
		slog.Int("requested", len(ids)),
		slog.Int("updated", n),
		slog.Bool("completed", completed))
	return n, nil
}

// BatchDeleteTasks implements TaskService.BatchDeleteTasks.
func (s *taskServiceImpl) BatchDeleteTasks(ctx context.Context, ids []int64) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	log := logger.FromContextOrDefault(ctx, s.logger)
	ids = dedupe(ids)

	s.dbQueries.Add(1)
	deleted, err := s.tasks.BatchDeleteTasks(ctx, ids)
	if err != nil {
		return 0, s.fail(log, "batch_delete_tasks", "failed to delete tasks", err)
	}

	s.invalidateIDs(ids)
	requested := 0
	for _, ref := range deleted {
		s.taskCache.Delete(ref.ID)
		s.listCache.Delete(ref.ListID)
		if ref.ParentID != nil {
			s.taskCache.Delete(*ref.ParentID)
		}
		if !ref.Cascaded {
			requested++
		}
	}
	for _, ref := range deleted {
		s.dispatcher.Emit(ctx, events.TaskDeleted, events.TaskDeletedPayload{TaskID: ref.ID, ListID: ref.ListID})
	}

	return requested, nil
}

// TasksWithReminders implements TaskService.TasksWithReminders.
func (s *taskServiceImpl) TasksWithReminders(ctx context.Context) ([]*domain.Task, error) {
	s.dbQueries.Add(1)
	tasks, err := s.tasks.GetTasksWithReminders(ctx)
	if err != nil {
		return nil, s.fail(logger.FromContextOrDefault(ctx, s.logger), "tasks_with_reminders", "failed to load reminders", err)
	}
	return tasks, nil
}

// ClearCache implements TaskService.ClearCache.
func (s *taskServiceImpl) ClearCache() {
	s.taskCache.Clear()
	s.listCache.Clear()
}

// Stats implements TaskService.Stats.
func (s *taskServiceImpl) Stats() TaskStats {
	ts := s.taskCache.Stats()
	ls := s.listCache.Stats()
	return TaskStats{
		CacheHits:   ts.Hits + ls.Hits,
		CacheMisses: ts.Misses + ls.Misses + s.bypassed.Load(),
		DBQueries:   s.dbQueries.Load(),
		CachedTasks: ts.Size,
		CachedLists: ls.Size,
	}
}

// fail logs err at the level it deserves and converts it for the caller.
func (s *taskServiceImpl) fail(log *slog.Logger, operation, message string, err error) error {
	if domain.IsValidationError(err) {
		log.Debug("task operation rejected",
			slog.String("operation", operation),
			slog.String("error", err.Error()))
		return err
	}
	log.Error(message,
		slog.String("operation", operation),
		slog.String("error", err.Error()))
	return newServiceError("task", operation, message, err)
}
