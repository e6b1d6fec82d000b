package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/phrazzld/todo-core/internal/domain"
	"github.com/phrazzld/todo-core/internal/platform/logger"
	"github.com/phrazzld/todo-core/internal/store"
)

const taskColumns = `id, list_id, parent_id, title, notes, due_date, start_time, end_time,
	reminder_time, completed, position, recurrence_type, recurrence_interval,
	last_completed_date, motivation, created_at`

// DefaultSearchLimit caps SearchTasks when the caller passes no limit.
const DefaultSearchLimit = 50

// TaskStore implements store.TaskStore on database/sql.
type TaskStore struct {
	db      *sql.DB
	dialect Dialect
	logger  *slog.Logger
}

// NewTaskStore creates a TaskStore backed by db. If logger is nil the default
// logger is used.
func NewTaskStore(db *sql.DB, dialect Dialect, logger *slog.Logger) *TaskStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &TaskStore{
		db:      db,
		dialect: dialect,
		logger:  logger.With(slog.String("component", "task_store")),
	}
}

var _ store.TaskStore = (*TaskStore)(nil)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*domain.Task, error) {
	var (
		t        domain.Task
		parentID sql.NullInt64
		recType  string
	)
	err := row.Scan(
		&t.ID,
		&t.ListID,
		&parentID,
		&t.Title,
		&t.Notes,
		&t.DueDate,
		&t.StartTime,
		&t.EndTime,
		&t.ReminderTime,
		&t.Completed,
		&t.Position,
		&recType,
		&t.RecurrenceInterval,
		&t.LastCompletedDate,
		&t.Motivation,
		&t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if parentID.Valid {
		id := parentID.Int64
		t.ParentID = &id
	}
	t.RecurrenceType = domain.RecurrenceType(recType)
	t.CreatedAt = t.CreatedAt.UTC()
	return &t, nil
}

func (s *TaskStore) queryTasks(ctx context.Context, q store.DBTX, query string, args ...any) ([]*domain.Task, error) {
	rows, err := q.QueryContext(ctx, s.dialect.Rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	tasks := make([]*domain.Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// attachSubtasks loads the subtasks of parents with one query.
func (s *TaskStore) attachSubtasks(ctx context.Context, q store.DBTX, parents []*domain.Task, showCompleted bool) error {
	if len(parents) == 0 {
		return nil
	}

	byID := make(map[int64]*domain.Task, len(parents))
	args := make([]any, 0, len(parents))
	for _, p := range parents {
		byID[p.ID] = p
		args = append(args, p.ID)
	}

	query := `SELECT ` + taskColumns + ` FROM tasks WHERE parent_id IN (` + placeholders(len(args)) + `)`
	if !showCompleted {
		query += ` AND completed = ?`
		args = append(args, false)
	}
	query += ` ORDER BY position, id`

	subtasks, err := s.queryTasks(ctx, q, query, args...)
	if err != nil {
		return err
	}
	for _, sub := range subtasks {
		if parent, ok := byID[*sub.ParentID]; ok {
			parent.Subtasks = append(parent.Subtasks, sub)
		}
	}
	return nil
}

// GetTaskByID implements store.TaskStore.GetTaskByID.
func (s *TaskStore) GetTaskByID(ctx context.Context, id int64) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = ?`
	t, err := scanTask(s.db.QueryRowContext(ctx, s.dialect.Rebind(query), id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("task not found", slog.Int64("task_id", id))
			return nil, store.ErrTaskNotFound
		}
		log.Error("failed to get task by ID",
			slog.String("error", err.Error()),
			slog.Int64("task_id", id))
		return nil, MapError(err)
	}

	if err := s.attachSubtasks(ctx, s.db, []*domain.Task{t}, true); err != nil {
		log.Error("failed to load subtasks",
			slog.String("error", err.Error()),
			slog.Int64("task_id", id))
		return nil, MapError(err)
	}
	return t, nil
}

// GetTasksByList implements store.TaskStore.GetTasksByList.
func (s *TaskStore) GetTasksByList(ctx context.Context, listID int64, showCompleted bool, limit int) ([]*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + taskColumns + ` FROM tasks WHERE list_id = ? AND parent_id IS NULL`
	args := []any{listID}
	if !showCompleted {
		query += ` AND completed = ?`
		args = append(args, false)
	}
	query += ` ORDER BY position, id`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	tasks, err := s.queryTasks(ctx, s.db, query, args...)
	if err == nil {
		err = s.attachSubtasks(ctx, s.db, tasks, showCompleted)
	}
	if err != nil {
		log.Error("failed to get tasks by list",
			slog.String("error", err.Error()),
			slog.Int64("list_id", listID))
		return nil, MapError(err)
	}

	log.Debug("retrieved tasks by list",
		slog.Int64("list_id", listID),
		slog.Int("count", len(tasks)))
	return tasks, nil
}

// CreateTask implements store.TaskStore.CreateTask.
func (s *TaskStore) CreateTask(ctx context.Context, task *domain.Task) (int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var id int64
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		position := task.Position
		if position == 0 {
			next, err := s.nextPosition(ctx, tx, task.ListID, task.ParentID)
			if err != nil {
				return err
			}
			position = next
		}

		var parentID sql.NullInt64
		if task.ParentID != nil {
			parentID = sql.NullInt64{Int64: *task.ParentID, Valid: true}
		}

		query := `INSERT INTO tasks (list_id, parent_id, title, notes, due_date, start_time, end_time,
			reminder_time, completed, position, recurrence_type, recurrence_interval,
			last_completed_date, motivation, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			RETURNING id`
		return tx.QueryRowContext(ctx, s.dialect.Rebind(query),
			task.ListID,
			parentID,
			task.Title,
			task.Notes,
			task.DueDate,
			task.StartTime,
			task.EndTime,
			task.ReminderTime,
			task.Completed,
			position,
			string(task.RecurrenceType),
			task.RecurrenceInterval,
			task.LastCompletedDate,
			task.Motivation,
			task.CreatedAt.UTC(),
		).Scan(&id)
	})
	if err != nil {
		err = MapError(err)
		if errors.Is(err, store.ErrInvalidEntity) {
			log.Warn("task references a missing list or parent",
				slog.String("error", err.Error()),
				slog.Int64("list_id", task.ListID))
			return 0, err
		}
		log.Error("failed to create task",
			slog.String("error", err.Error()),
			slog.Int64("list_id", task.ListID))
		return 0, err
	}

	log.Info("task created",
		slog.Int64("task_id", id),
		slog.Int64("list_id", task.ListID))
	return id, nil
}

func (s *TaskStore) nextPosition(ctx context.Context, q store.DBTX, listID int64, parentID *int64) (int, error) {
	query := `SELECT COALESCE(MAX(position) + 1, 0) FROM tasks WHERE list_id = ? AND parent_id IS NULL`
	args := []any{listID}
	if parentID != nil {
		query = `SELECT COALESCE(MAX(position) + 1, 0) FROM tasks WHERE parent_id = ?`
		args = []any{*parentID}
	}

	var next int
	if err := q.QueryRowContext(ctx, s.dialect.Rebind(query), args...).Scan(&next); err != nil {
		return 0, err
	}
	return next, nil
}

// assignments turns the set fields into column assignments and their values.
func assignments(f domain.TaskFields) ([]string, []any) {
	var (
		sets []string
		args []any
	)
	add := func(column string, value any) {
		sets = append(sets, column+" = ?")
		args = append(args, value)
	}

	if f.ListID != nil {
		add("list_id", *f.ListID)
	}
	if f.Title != nil {
		add("title", strings.TrimSpace(*f.Title))
	}
	if f.Notes != nil {
		add("notes", *f.Notes)
	}
	if f.DueDate != nil {
		add("due_date", *f.DueDate)
	}
	if f.StartTime != nil {
		add("start_time", *f.StartTime)
	}
	if f.EndTime != nil {
		add("end_time", *f.EndTime)
	}
	if f.ReminderTime != nil {
		add("reminder_time", *f.ReminderTime)
	}
	if f.Completed != nil {
		add("completed", *f.Completed)
	}
	if f.ParentID != nil {
		add("parent_id", *f.ParentID)
	}
	if f.Position != nil {
		add("position", *f.Position)
	}
	if f.RecurrenceType != nil {
		add("recurrence_type", string(*f.RecurrenceType))
	}
	if f.RecurrenceInterval != nil {
		add("recurrence_interval", *f.RecurrenceInterval)
	}
	if f.LastCompletedDate != nil {
		add("last_completed_date", *f.LastCompletedDate)
	}
	if f.Motivation != nil {
		add("motivation", *f.Motivation)
	}
	return sets, args
}

// updateTask runs a single update and reports whether a row changed.
func (s *TaskStore) updateTask(ctx context.Context, q store.DBTX, id int64, fields domain.TaskFields) (bool, error) {
	sets, args := assignments(fields)
	if len(sets) == 0 {
		var exists int
		err := q.QueryRowContext(ctx, s.dialect.Rebind(`SELECT 1 FROM tasks WHERE id = ?`), id).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return err == nil, err
	}

	query := `UPDATE tasks SET ` + strings.Join(sets, ", ") + ` WHERE id = ?`
	result, err := q.ExecContext(ctx, s.dialect.Rebind(query), append(args, id)...)
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// UpdateTask implements store.TaskStore.UpdateTask.
func (s *TaskStore) UpdateTask(ctx context.Context, id int64, fields domain.TaskFields) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	ok, err := s.updateTask(ctx, s.db, id, fields)
	if err != nil {
		log.Error("failed to update task",
			slog.String("error", err.Error()),
			slog.Int64("task_id", id),
			slog.Any("fields", fields.Names()))
		return MapError(err)
	}
	if !ok {
		log.Debug("task not found for update", slog.Int64("task_id", id))
		return store.ErrTaskNotFound
	}

	log.Debug("task updated",
		slog.Int64("task_id", id),
		slog.Any("fields", fields.Names()))
	return nil
}

// DeleteTask implements store.TaskStore.DeleteTask.
func (s *TaskStore) DeleteTask(ctx context.Context, id int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, s.dialect.Rebind(`DELETE FROM tasks WHERE id = ?`), id)
	if err != nil {
		log.Error("failed to delete task",
			slog.String("error", err.Error()),
			slog.Int64("task_id", id))
		return MapError(err)
	}
	if err := checkRowsAffected(result, store.ErrTaskNotFound); err != nil {
		return err
	}

	log.Info("task deleted", slog.Int64("task_id", id))
	return nil
}

// ToggleTaskCompleted implements store.TaskStore.ToggleTaskCompleted.
func (s *TaskStore) ToggleTaskCompleted(ctx context.Context, id int64) (bool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var completed bool
	query := `UPDATE tasks SET completed = NOT completed WHERE id = ? RETURNING completed`
	err := s.db.QueryRowContext(ctx, s.dialect.Rebind(query), id).Scan(&completed)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, store.ErrTaskNotFound
		}
		log.Error("failed to toggle task",
			slog.String("error", err.Error()),
			slog.Int64("task_id", id))
		return false, MapError(err)
	}

	log.Debug("task completion toggled",
		slog.Int64("task_id", id),
		slog.Bool("completed", completed))
	return completed, nil
}

// BatchUpdateTasks implements store.TaskStore.BatchUpdateTasks.
func (s *TaskStore) BatchUpdateTasks(ctx context.Context, updates []store.TaskUpdate) (int, error) {
	if len(updates) == 0 {
		return 0, nil
	}
	log := logger.FromContextOrDefault(ctx, s.logger)

	changed := 0
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		for _, u := range updates {
			ok, err := s.updateTask(ctx, tx, u.ID, u.Fields)
			if err != nil {
				return fmt.Errorf("update task %d: %w", u.ID, err)
			}
			if ok {
				changed++
			}
		}
		return nil
	})
	if err != nil {
		log.Error("batch update failed",
			slog.String("error", err.Error()),
			slog.Int("count", len(updates)))
		return 0, MapError(err)
	}

	log.Info("batch update applied",
		slog.Int("requested", len(updates)),
		slog.Int("changed", changed))
	return changed, nil
}

// BatchDeleteTasks implements store.TaskStore.BatchDeleteTasks.
func (s *TaskStore) BatchDeleteTasks(ctx context.Context, ids []int64) ([]store.TaskRef, error) {
	if len(ids) == 0 {
		return []store.TaskRef{}, nil
	}
	log := logger.FromContextOrDefault(ctx, s.logger)

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	in := placeholders(len(ids))

	var deleted []store.TaskRef
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		// Subtasks go first so the rows the foreign key would cascade are reported.
		cascaded, err := s.deleteReturning(ctx, tx,
			`DELETE FROM tasks WHERE parent_id IN (`+in+`) AND id NOT IN (`+in+`) RETURNING id, list_id, parent_id`,
			append(slices.Clone(args), args...))
		if err != nil {
			return fmt.Errorf("delete subtasks: %w", err)
		}
		for i := range cascaded {
			cascaded[i].Cascaded = true
		}

		direct, err := s.deleteReturning(ctx, tx,
			`DELETE FROM tasks WHERE id IN (`+in+`) RETURNING id, list_id, parent_id`, args)
		if err != nil {
			return fmt.Errorf("delete tasks: %w", err)
		}

		deleted = append(direct, cascaded...)
		return nil
	})
	if err != nil {
		log.Error("batch delete failed",
			slog.String("error", err.Error()),
			slog.Int("count", len(ids)))
		return nil, MapError(err)
	}

	log.Info("batch delete applied",
		slog.Int("requested", len(ids)),
		slog.Int("deleted", len(deleted)))
	return deleted, nil
}

func (s *TaskStore) deleteReturning(ctx context.Context, q store.DBTX, query string, args []any) ([]store.TaskRef, error) {
	rows, err := q.QueryContext(ctx, s.dialect.Rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	refs := make([]store.TaskRef, 0, len(args))
	for rows.Next() {
		var (
			ref      store.TaskRef
			parentID sql.NullInt64
		)
		if err := rows.Scan(&ref.ID, &ref.ListID, &parentID); err != nil {
			return nil, err
		}
		if parentID.Valid {
			id := parentID.Int64
			ref.ParentID = &id
		}
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}

// escapeLike escapes the LIKE wildcards in s using backslash.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// SearchTasks implements store.TaskStore.SearchTasks.
func (s *TaskStore) SearchTasks(ctx context.Context, query string, limit int) ([]*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	pattern := "%" + escapeLike(strings.TrimSpace(query)) + "%"
	like := s.dialect.Like()
	sqlQuery := `SELECT ` + taskColumns + ` FROM tasks
		WHERE title ` + like + ` ? ESCAPE '\' OR notes ` + like + ` ? ESCAPE '\'
		ORDER BY completed, created_at DESC, id DESC
		LIMIT ?`

	tasks, err := s.queryTasks(ctx, s.db, sqlQuery, pattern, pattern, limit)
	if err != nil {
		log.Error("failed to search tasks",
			slog.String("error", err.Error()),
			slog.String("query", query))
		return nil, MapError(err)
	}

	log.Debug("search completed",
		slog.String("query", query),
		slog.Int("results", len(tasks)))
	return tasks, nil
}

// GetTasksWithReminders implements store.TaskStore.GetTasksWithReminders.
func (s *TaskStore) GetTasksWithReminders(ctx context.Context) ([]*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + taskColumns + ` FROM tasks
		WHERE reminder_time <> '' AND completed = ?
		ORDER BY reminder_time, id`
	tasks, err := s.queryTasks(ctx, s.db, query, false)
	if err != nil {
		log.Error("failed to get tasks with reminders", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	return tasks, nil
}
