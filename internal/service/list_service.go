package service

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"

	"github.com/phrazzld/todo-core/internal/cache"
	"github.com/phrazzld/todo-core/internal/domain"
	"github.com/phrazzld/todo-core/internal/events"
	"github.com/phrazzld/todo-core/internal/platform/logger"
	"github.com/phrazzld/todo-core/internal/store"
)

// ListStats reports cache effectiveness and storage traffic for ListService.
type ListStats struct {
	CacheHits        int64 `json:"cache_hits"`
	CacheMisses      int64 `json:"cache_misses"`
	DBQueries        int64 `json:"db_queries"`
	CachedCategories int   `json:"cached_categories"`
}

// ListService provides cached, validated, event-emitting access to task lists.
type ListService interface {
	// GetListsByCategory returns the lists of a category ordered by position.
	GetListsByCategory(ctx context.Context, category domain.Category, opts ...ReadOption) ([]*domain.TaskList, error)

	// GetList returns a single list, always read from storage.
	// Returns ErrListNotFound if the list does not exist.
	GetList(ctx context.Context, id int64) (*domain.TaskList, error)

	// CreateList validates and stores a new list and returns its ID.
	CreateList(ctx context.Context, name string, category domain.Category) (int64, error)

	// UpdateList renames a list.
	UpdateList(ctx context.Context, id int64, name string) (bool, error)

	// DeleteList removes a list together with its tasks.
	DeleteList(ctx context.Context, id int64) (bool, error)

	// ClearCache drops every cached entry.
	ClearCache()

	// Stats returns the service counters.
	Stats() ListStats
}

// listServiceImpl implements the ListService interface.
type listServiceImpl struct {
	lists      store.ListStore
	dispatcher *events.Dispatcher
	logger     *slog.Logger

	cache     *cache.Cache[domain.Category, []*domain.TaskList]
	bypassed  atomic.Int64
	dbQueries atomic.Int64
}

var _ ListService = (*listServiceImpl)(nil)

// NewListService creates a ListService. It returns an error if any of the
// required dependencies are nil.
func NewListService(lists store.ListStore, dispatcher *events.Dispatcher, logger *slog.Logger) (ListService, error) {
	if lists == nil {
		return nil, &ServiceError{Service: "list", Operation: "create_service", Message: "lists store cannot be nil"}
	}
	if dispatcher == nil {
		return nil, &ServiceError{Service: "list", Operation: "create_service", Message: "dispatcher cannot be nil"}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &listServiceImpl{
		lists:      lists,
		dispatcher: dispatcher,
		logger:     logger.With("component", "list_service"),
		cache:      cache.New[domain.Category, []*domain.TaskList](),
	}, nil
}

func cloneLists(lists []*domain.TaskList) []*domain.TaskList {
	out := make([]*domain.TaskList, len(lists))
	for i, l := range lists {
		c := *l
		out[i] = &c
	}
	return out
}

// GetListsByCategory implements ListService.GetListsByCategory.
func (s *listServiceImpl) GetListsByCategory(
	ctx context.Context,
	category domain.Category,
	opts ...ReadOption,
) ([]*domain.TaskList, error) {
	if err := domain.ValidateCategory(category); err != nil {
		return nil, err
	}
	o := applyReadOptions(opts)

	load := func() ([]*domain.TaskList, error) {
		s.dbQueries.Add(1)
		return s.lists.GetListsByCategory(ctx, category)
	}

	var (
		lists []*domain.TaskList
		err   error
	)
	if o.skipRead {
		s.bypassed.Add(1)
		gen := s.cache.Generation()
		lists, err = load()
		if err == nil && !o.skipWrite {
			s.cache.SetIfCurrent(gen, category, lists)
		}
	} else {
		lists, err = s.cache.Load(category, load)
	}
	if err != nil {
		return nil, s.fail(logger.FromContextOrDefault(ctx, s.logger), "get_lists_by_category", "failed to retrieve lists", err)
	}

	return cloneLists(lists), nil
}

// GetList implements ListService.GetList.
func (s *listServiceImpl) GetList(ctx context.Context, id int64) (*domain.TaskList, error) {
	s.dbQueries.Add(1)
	list, err := s.lists.GetListByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrListNotFound) {
			return nil, ErrListNotFound
		}
		return nil, s.fail(logger.FromContextOrDefault(ctx, s.logger), "get_list", "failed to retrieve list", err)
	}
	return list, nil
}

// current reads a list straight from storage so the category used for
// invalidation is never stale.
func (s *listServiceImpl) current(ctx context.Context, id int64) (*domain.TaskList, error) {
	s.dbQueries.Add(1)
	list, err := s.lists.GetListByID(ctx, id)
	if errors.Is(err, store.ErrListNotFound) {
		return nil, missingList("list_id", id)
	}
	return list, err
}

// CreateList implements ListService.CreateList.
func (s *listServiceImpl) CreateList(ctx context.Context, name string, category domain.Category) (int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	list, err := domain.NewTaskList(name, category)
	if err != nil {
		log.Debug("list validation failed", slog.String("error", err.Error()))
		return 0, err
	}

	s.dbQueries.Add(1)
	id, err := s.lists.CreateList(ctx, list.Name, list.Category)
	if err != nil {
		return 0, s.fail(log, "create_list", "failed to save list", err)
	}

	s.cache.Delete(list.Category)
	s.dispatcher.Emit(ctx, events.ListCreated, events.ListCreatedPayload{ListID: id, Category: string(list.Category)})
	return id, nil
}

// UpdateList implements ListService.UpdateList.
func (s *listServiceImpl) UpdateList(ctx context.Context, id int64, name string) (bool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	// Validate before touching storage.
	if _, err := domain.NewTaskList(name, domain.CategoryDaily); err != nil {
		return false, err
	}

	list, err := s.current(ctx, id)
	if err != nil {
		return false, s.fail(log, "update_list", "failed to load list", err)
	}
	if err := list.Rename(name); err != nil {
		return false, err
	}

	s.dbQueries.Add(1)
	if err := s.lists.UpdateList(ctx, id, list.Name); err != nil {
		return false, s.fail(log, "update_list", "failed to save list", err)
	}

	s.cache.Delete(list.Category)
	s.dispatcher.Emit(ctx, events.ListUpdated, events.ListUpdatedPayload{ListID: id, Name: list.Name})
	return true, nil
}

// DeleteList implements ListService.DeleteList.
func (s *listServiceImpl) DeleteList(ctx context.Context, id int64) (bool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	list, err := s.current(ctx, id)
	if err != nil {
		return false, s.fail(log, "delete_list", "failed to load list", err)
	}

	s.dbQueries.Add(1)
	if err := s.lists.DeleteList(ctx, id); err != nil {
		return false, s.fail(log, "delete_list", "failed to delete list", err)
	}

	s.cache.Delete(list.Category)
	s.dispatcher.Emit(ctx, events.ListDeleted, events.ListDeletedPayload{ListID: id, Category: string(list.Category)})
	return true, nil
}

// ClearCache implements ListService.ClearCache.
func (s *listServiceImpl) ClearCache() {
	s.cache.Clear()
}

// Stats implements ListService.Stats.
func (s *listServiceImpl) Stats() ListStats {
	st := s.cache.Stats()
	return ListStats{
		CacheHits:        st.Hits,
		CacheMisses:      st.Misses + s.bypassed.Load(),
		DBQueries:        s.dbQueries.Load(),
		CachedCategories: st.Size,
	}
}

func (s *listServiceImpl) fail(log *slog.Logger, operation, message string, err error) error {
	if domain.IsValidationError(err) {
		log.Debug("list operation rejected",
			slog.String("operation", operation),
			slog.String("error", err.Error()))
		return err
	}
	log.Error(message,
		slog.String("operation", operation),
		slog.String("error", err.Error()))
	return newServiceError("list", operation, message, err)
}
