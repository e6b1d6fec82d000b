package sqlstore_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/todo-core/internal/domain"
	"github.com/phrazzld/todo-core/internal/store"
)

func TestListStoreCRUD(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	id := f.list(t, "  Errands ", domain.CategoryDaily)

	got, err := f.lists.GetListByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Errands", got.Name)
	assert.Equal(t, domain.CategoryDaily, got.Category)
	assert.Equal(t, 0, got.Position)

	require.NoError(t, f.lists.UpdateList(ctx, id, "Chores"))
	got, err = f.lists.GetListByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Chores", got.Name)

	require.NoError(t, f.lists.DeleteList(ctx, id))
	_, err = f.lists.GetListByID(ctx, id)
	assert.ErrorIs(t, err, store.ErrListNotFound)

	assert.ErrorIs(t, f.lists.UpdateList(ctx, id, "x"), store.ErrListNotFound)
	assert.ErrorIs(t, f.lists.DeleteList(ctx, id), store.ErrListNotFound)
}

func TestListStoreByCategory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.list(t, "first", domain.CategoryWeekly)
	f.list(t, "daily", domain.CategoryDaily)
	f.list(t, "second", domain.CategoryWeekly)

	weekly, err := f.lists.GetListsByCategory(ctx, domain.CategoryWeekly)
	require.NoError(t, err)
	require.Len(t, weekly, 2)
	assert.Equal(t, "first", weekly[0].Name)
	assert.Equal(t, 0, weekly[0].Position)
	assert.Equal(t, "second", weekly[1].Name)
	assert.Equal(t, 1, weekly[1].Position)

	yearly, err := f.lists.GetListsByCategory(ctx, domain.CategoryYearly)
	require.NoError(t, err)
	assert.NotNil(t, yearly)
	assert.Empty(t, yearly)
}

func TestListStoreRejectsUnknownCategory(t *testing.T) {
	f := newFixture(t)

	_, err := f.lists.CreateList(context.Background(), "x", domain.Category("hourly"))
	assert.ErrorIs(t, err, store.ErrInvalidEntity)
}

func TestDeleteListCascadesTasks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	listID := f.list(t, "Errands", domain.CategoryDaily)
	taskID := f.task(t, listID, "Buy milk")

	require.NoError(t, f.lists.DeleteList(ctx, listID))

	_, err := f.tasks.GetTaskByID(ctx, taskID)
	assert.ErrorIs(t, err, store.ErrTaskNotFound)
}
