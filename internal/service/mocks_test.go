package service

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/phrazzld/todo-core/internal/domain"
	"github.com/phrazzld/todo-core/internal/store"
)

// MockTaskStore mocks the store.TaskStore interface
type MockTaskStore struct {
	mock.Mock
}

var _ store.TaskStore = (*MockTaskStore)(nil)

func (m *MockTaskStore) GetTaskByID(ctx context.Context, id int64) (*domain.Task, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Task).Clone(), args.Error(1)
}

func (m *MockTaskStore) GetTasksByList(
	ctx context.Context,
	listID int64,
	showCompleted bool,
	limit int,
) ([]*domain.Task, error) {
	args := m.Called(ctx, listID, showCompleted, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return domain.CloneTasks(args.Get(0).([]*domain.Task)), args.Error(1)
}

func (m *MockTaskStore) CreateTask(ctx context.Context, task *domain.Task) (int64, error) {
	args := m.Called(ctx, task)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTaskStore) UpdateTask(ctx context.Context, id int64, fields domain.TaskFields) error {
	args := m.Called(ctx, id, fields)
	return args.Error(0)
}

func (m *MockTaskStore) DeleteTask(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockTaskStore) ToggleTaskCompleted(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockTaskStore) BatchUpdateTasks(ctx context.Context, updates []store.TaskUpdate) (int, error) {
	args := m.Called(ctx, updates)
	return args.Int(0), args.Error(1)
}

func (m *MockTaskStore) BatchDeleteTasks(ctx context.Context, ids []int64) ([]store.TaskRef, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]store.TaskRef), args.Error(1)
}

func (m *MockTaskStore) SearchTasks(ctx context.Context, query string, limit int) ([]*domain.Task, error) {
	args := m.Called(ctx, query, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Task), args.Error(1)
}

func (m *MockTaskStore) GetTasksWithReminders(ctx context.Context) ([]*domain.Task, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Task), args.Error(1)
}

// MockListStore mocks the store.ListStore interface
type MockListStore struct {
	mock.Mock
}

var _ store.ListStore = (*MockListStore)(nil)

func (m *MockListStore) GetListByID(ctx context.Context, id int64) (*domain.TaskList, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	l := *args.Get(0).(*domain.TaskList)
	return &l, args.Error(1)
}

func (m *MockListStore) GetListsByCategory(ctx context.Context, category domain.Category) ([]*domain.TaskList, error) {
	args := m.Called(ctx, category)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.TaskList), args.Error(1)
}

func (m *MockListStore) CreateList(ctx context.Context, name string, category domain.Category) (int64, error) {
	args := m.Called(ctx, name, category)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockListStore) UpdateList(ctx context.Context, id int64, name string) error {
	args := m.Called(ctx, id, name)
	return args.Error(0)
}

func (m *MockListStore) DeleteList(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
