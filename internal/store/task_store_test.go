package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vbonduro/hgdesk/internal/domain"
)

func newProjectWithStores(t *testing.T) (*TaskStore, *domain.Project) {
	t.Helper()
	d := openTestDB(t)
	project, err := NewProjectStore(d).Create(context.Background(), "Inbox")
	require.NoError(t, err)
	return NewTaskStore(d), project
}

func TestTaskStoreCreate(t *testing.T) {
	tasks, project := newProjectWithStores(t)

	task, err := tasks.Create(context.Background(), project.ID, "Write docs")
	require.NoError(t, err)
	assert.NotZero(t, task.ID)
	assert.Equal(t, project.ID, task.ProjectID)
	assert.Equal(t, "Write docs", task.Title)
	assert.Empty(t, task.Content)
	assert.False(t, task.Done)
}

func TestTaskStoreCreate_UnknownProject(t *testing.T) {
	tasks, _ := newProjectWithStores(t)

	_, err := tasks.Create(context.Background(), 777, "orphan")
	assert.Error(t, err)
}

func TestTaskStoreListByProjectID_NewestFirst(t *testing.T) {
	tasks, project := newProjectWithStores(t)
	ctx := context.Background()

	_, err := tasks.Create(ctx, project.ID, "older")
	require.NoError(t, err)
	_, err = tasks.Create(ctx, project.ID, "newer")
	require.NoError(t, err)

	list, err := tasks.ListByProjectID(ctx, project.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "newer", list[0].Title)
	assert.Equal(t, "older", list[1].Title)
}

func TestTaskStoreUpdate(t *testing.T) {
	tasks, project := newProjectWithStores(t)
	ctx := context.Background()

	task, err := tasks.Create(ctx, project.ID, "draft")
	require.NoError(t, err)

	require.NoError(t, tasks.Update(ctx, task.ID, "final", "# Notes", true))

	updated, err := tasks.GetByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "final", updated.Title)
	assert.Equal(t, "# Notes", updated.Content)
	assert.True(t, updated.Done)
}

func TestTaskStoreUpdate_NotFound(t *testing.T) {
	tasks, _ := newProjectWithStores(t)

	err := tasks.Update(context.Background(), 99999, "x", "", false)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTaskStoreToggle_Twice(t *testing.T) {
	tasks, project := newProjectWithStores(t)
	ctx := context.Background()

	task, err := tasks.Create(ctx, project.ID, "flip")
	require.NoError(t, err)

	once, err := tasks.Toggle(ctx, task.ID)
	require.NoError(t, err)
	assert.True(t, once.Done)

	twice, err := tasks.Toggle(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, task.Done, twice.Done)
}

func TestTaskStoreDelete(t *testing.T) {
	tasks, project := newProjectWithStores(t)
	ctx := context.Background()

	task, err := tasks.Create(ctx, project.ID, "gone")
	require.NoError(t, err)

	require.NoError(t, tasks.Delete(ctx, task.ID))

	deleted, err := tasks.GetByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Nil(t, deleted)

	assert.ErrorIs(t, tasks.Delete(ctx, task.ID), domain.ErrNotFound)
}
