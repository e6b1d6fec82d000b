package service_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/todo-core/internal/domain"
	"github.com/phrazzld/todo-core/internal/events"
	"github.com/phrazzld/todo-core/internal/platform/sqlstore"
	"github.com/phrazzld/todo-core/internal/service"
	"github.com/phrazzld/todo-core/internal/testdb"
)

type services struct {
	tasks      service.TaskService
	lists      service.ListService
	dispatcher *events.Dispatcher
}

func newServices(t *testing.T) *services {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	db, dialect := testdb.OpenSQLite(t)
	taskStore := sqlstore.NewTaskStore(db, dialect, log)
	listStore := sqlstore.NewListStore(db, dialect, log)
	d := events.NewDispatcher(log)

	tasks, err := service.NewTaskService(taskStore, listStore, d, log)
	require.NoError(t, err)
	t.Cleanup(tasks.Close)

	lists, err := service.NewListService(listStore, d, log)
	require.NoError(t, err)

	return &services{tasks: tasks, lists: lists, dispatcher: d}
}

func TestErrandsEndToEnd(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()

	listID, err := s.lists.CreateList(ctx, "Errands", domain.CategoryDaily)
	require.NoError(t, err)

	taskID, err := s.tasks.CreateTask(ctx, listID, "Buy milk", domain.TaskFields{})
	require.NoError(t, err)

	tasks, err := s.tasks.GetListTasks(ctx, listID, true)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Buy milk", tasks[0].Title)
	assert.False(t, tasks[0].Completed)

	completed, err := s.tasks.ToggleTaskCompleted(ctx, taskID)
	require.NoError(t, err)
	assert.True(t, completed)

	tasks, err = s.tasks.GetListTasks(ctx, listID, true)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.True(t, tasks[0].Completed)

	open, err := s.tasks.GetListTasks(ctx, listID, false)
	require.NoError(t, err)
	assert.Empty(t, open)
}

func TestCreateThenGetReturnsTrimmedTitle(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()

	listID, err := s.lists.CreateList(ctx, "Inbox", domain.CategoryWeekly)
	require.NoError(t, err)

	id, err := s.tasks.CreateTask(ctx, listID, "   call the bank  ", domain.TaskFields{
		DueDate:   domain.Ptr("2026-10-20"),
		StartTime: domain.Ptr("09:00"),
		EndTime:   domain.Ptr("09:30"),
	})
	require.NoError(t, err)

	task, err := s.tasks.GetTask(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "call the bank", task.Title)
	assert.Equal(t, "2026-10-20", task.DueDate)
	assert.Equal(t, listID, task.ListID)
}

func TestDeletingListDropsItsTasks(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()

	listID, err := s.lists.CreateList(ctx, "Trip", domain.CategoryYearly)
	require.NoError(t, err)
	taskID, err := s.tasks.CreateTask(ctx, listID, "Pack", domain.TaskFields{})
	require.NoError(t, err)

	_, err = s.tasks.GetTask(ctx, taskID)
	require.NoError(t, err)

	ok, err := s.lists.DeleteList(ctx, listID)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = s.tasks.GetTask(ctx, taskID)
	assert.ErrorIs(t, err, service.ErrTaskNotFound)
}

func TestSubtasksAndBatchOperations(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()

	listID, err := s.lists.CreateList(ctx, "Garden", domain.CategoryMonthly)
	require.NoError(t, err)
	parentID, err := s.tasks.CreateTask(ctx, listID, "Plant beds", domain.TaskFields{})
	require.NoError(t, err)
	subID, err := s.tasks.CreateTask(ctx, listID, "Buy seeds", domain.TaskFields{ParentID: domain.Ptr(parentID)})
	require.NoError(t, err)

	_, err = s.tasks.CreateTask(ctx, listID, "Too deep", domain.TaskFields{ParentID: domain.Ptr(subID)})
	assert.ErrorIs(t, err, domain.ErrInvalidParent)

	parent, err := s.tasks.GetTask(ctx, parentID)
	require.NoError(t, err)
	require.Len(t, parent.Subtasks, 1)
	assert.Equal(t, subID, parent.Subtasks[0].ID)

	n, err := s.tasks.BatchUpdateCompletion(ctx, []int64{subID, 9999}, true)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	parent, err = s.tasks.GetTask(ctx, parentID)
	require.NoError(t, err)
	assert.True(t, parent.Subtasks[0].Completed)

	n, err = s.tasks.BatchDeleteTasks(ctx, []int64{parentID})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = s.tasks.GetTask(ctx, subID)
	assert.ErrorIs(t, err, service.ErrTaskNotFound)
}

func TestSearchFindsTitlesAndNotes(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()

	listID, err := s.lists.CreateList(ctx, "Errands", domain.CategoryDaily)
	require.NoError(t, err)
	_, err = s.tasks.CreateTask(ctx, listID, "Buy milk", domain.TaskFields{})
	require.NoError(t, err)
	_, err = s.tasks.CreateTask(ctx, listID, "Groceries", domain.TaskFields{Notes: domain.Ptr("oat MILK, eggs")})
	require.NoError(t, err)
	_, err = s.tasks.CreateTask(ctx, listID, "100% done", domain.TaskFields{})
	require.NoError(t, err)

	found, err := s.tasks.SearchTasks(ctx, "milk", 0)
	require.NoError(t, err)
	assert.Len(t, found, 2)

	found, err = s.tasks.SearchTasks(ctx, "0%", 0)
	require.NoError(t, err)
	assert.Len(t, found, 1)

	found, err = s.tasks.SearchTasks(ctx, "m", 0)
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestConcurrentReadsAndWrites(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()

	listID, err := s.lists.CreateList(ctx, "Busy", domain.CategoryDaily)
	require.NoError(t, err)
	taskID, err := s.tasks.CreateTask(ctx, listID, "Shared", domain.TaskFields{})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				_, _ = s.tasks.GetListTasks(ctx, listID, false)
				_, _ = s.tasks.GetTask(ctx, taskID)
				_, _ = s.tasks.ToggleTaskCompleted(ctx, taskID)
			}
		}()
	}
	wg.Wait()

	// 80 toggles leave the task where it started, and no reader may keep a
	// stale entry once the writers are done.
	task, err := s.tasks.GetTask(ctx, taskID)
	require.NoError(t, err)
	assert.False(t, task.Completed)

	tasks, err := s.tasks.GetListTasks(ctx, listID, true)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.False(t, tasks[0].Completed)
}
