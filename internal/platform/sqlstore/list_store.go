package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/phrazzld/todo-core/internal/domain"
	"github.com/phrazzld/todo-core/internal/platform/logger"
	"github.com/phrazzld/todo-core/internal/store"
)

const listColumns = `id, name, category, position, created_at`

// ListStore implements store.ListStore on database/sql.
type ListStore struct {
	db      *sql.DB
	dialect Dialect
	logger  *slog.Logger
}

// NewListStore creates a ListStore backed by db. If logger is nil the default
// logger is used.
func NewListStore(db *sql.DB, dialect Dialect, logger *slog.Logger) *ListStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &ListStore{
		db:      db,
		dialect: dialect,
		logger:  logger.With(slog.String("component", "list_store")),
	}
}

var _ store.ListStore = (*ListStore)(nil)

func scanList(row rowScanner) (*domain.TaskList, error) {
	var (
		l        domain.TaskList
		category string
	)
	if err := row.Scan(&l.ID, &l.Name, &category, &l.Position, &l.CreatedAt); err != nil {
		return nil, err
	}
	l.Category = domain.Category(category)
	l.CreatedAt = l.CreatedAt.UTC()
	return &l, nil
}

// GetListByID implements store.ListStore.GetListByID.
func (s *ListStore) GetListByID(ctx context.Context, id int64) (*domain.TaskList, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + listColumns + ` FROM task_lists WHERE id = ?`
	l, err := scanList(s.db.QueryRowContext(ctx, s.dialect.Rebind(query), id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("list not found", slog.Int64("list_id", id))
			return nil, store.ErrListNotFound
		}
		log.Error("failed to get list by ID",
			slog.String("error", err.Error()),
			slog.Int64("list_id", id))
		return nil, MapError(err)
	}
	return l, nil
}

// GetListsByCategory implements store.ListStore.GetListsByCategory.
func (s *ListStore) GetListsByCategory(ctx context.Context, category domain.Category) ([]*domain.TaskList, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + listColumns + ` FROM task_lists WHERE category = ? ORDER BY position, id`
	rows, err := s.db.QueryContext(ctx, s.dialect.Rebind(query), string(category))
	if err != nil {
		log.Error("failed to get lists by category",
			slog.String("error", err.Error()),
			slog.String("category", string(category)))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	lists := make([]*domain.TaskList, 0)
	for rows.Next() {
		l, err := scanList(rows)
		if err != nil {
			return nil, MapError(err)
		}
		lists = append(lists, l)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	log.Debug("retrieved lists by category",
		slog.String("category", string(category)),
		slog.Int("count", len(lists)))
	return lists, nil
}

// CreateList implements store.ListStore.CreateList.
func (s *ListStore) CreateList(ctx context.Context, name string, category domain.Category) (int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `INSERT INTO task_lists (name, category, position, created_at)
		VALUES (?, ?, (SELECT COALESCE(MAX(position) + 1, 0) FROM task_lists WHERE category = ?), ?)
		RETURNING id`

	var id int64
	err := s.db.QueryRowContext(ctx, s.dialect.Rebind(query),
		strings.TrimSpace(name),
		string(category),
		string(category),
		time.Now().UTC(),
	).Scan(&id)
	if err != nil {
		log.Error("failed to create list",
			slog.String("error", err.Error()),
			slog.String("category", string(category)))
		return 0, MapError(err)
	}

	log.Info("list created",
		slog.Int64("list_id", id),
		slog.String("category", string(category)))
	return id, nil
}

// UpdateList implements store.ListStore.UpdateList.
func (s *ListStore) UpdateList(ctx context.Context, id int64, name string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, s.dialect.Rebind(`UPDATE task_lists SET name = ? WHERE id = ?`),
		strings.TrimSpace(name), id)
	if err != nil {
		log.Error("failed to update list",
			slog.String("error", err.Error()),
			slog.Int64("list_id", id))
		return MapError(err)
	}
	return checkRowsAffected(result, store.ErrListNotFound)
}

// DeleteList implements store.ListStore.DeleteList.
func (s *ListStore) DeleteList(ctx context.Context, id int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, s.dialect.Rebind(`DELETE FROM task_lists WHERE id = ?`), id)
	if err != nil {
		log.Error("failed to delete list",
			slog.String("error", err.Error()),
			slog.Int64("list_id", id))
		return MapError(err)
	}
	if err := checkRowsAffected(result, store.ErrListNotFound); err != nil {
		return err
	}

	log.Info("list deleted", slog.Int64("list_id", id))
	return nil
}
