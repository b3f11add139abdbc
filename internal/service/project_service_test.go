package service

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vbonduro/hgdesk/internal/db"
	"github.com/vbonduro/hgdesk/internal/domain"
	"github.com/vbonduro/hgdesk/internal/store"
)

func newTestProjectService(t *testing.T) *ProjectService {
	t.Helper()
	d, err := db.OpenForTesting()
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })

	return NewProjectService(store.NewProjectStore(d), store.NewTaskStore(d), slog.Default())
}

func TestProjectServiceCreateThenList(t *testing.T) {
	svc := newTestProjectService(t)
	ctx := context.Background()

	_, err := svc.CreateProject(ctx, "Older")
	require.NoError(t, err)
	created, err := svc.CreateProject(ctx, "Newer")
	require.NoError(t, err)

	projects, err := svc.ListProjects(ctx)
	require.NoError(t, err)
	require.Len(t, projects, 2)
	assert.Equal(t, created.ID, projects[0].ID)
	assert.Equal(t, "Older", projects[1].Name)
}

func TestProjectServiceGetProject_NotFound(t *testing.T) {
	svc := newTestProjectService(t)

	_, _, err := svc.GetProjectWithTasks(context.Background(), 404)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProjectServiceDeleteProject_Cascades(t *testing.T) {
	svc := newTestProjectService(t)
	ctx := context.Background()

	p, err := svc.CreateProject(ctx, "Release")
	require.NoError(t, err)
	task, err := svc.AddTask(ctx, p.ID, "tag 1.0")
	require.NoError(t, err)

	require.NoError(t, svc.DeleteProject(ctx, p.ID))

	_, err = svc.GetTask(ctx, task.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, svc.DeleteProject(ctx, p.ID), domain.ErrNotFound)
}

func TestProjectServiceAddTask_MissingProject(t *testing.T) {
	svc := newTestProjectService(t)

	_, err := svc.AddTask(context.Background(), 12, "lost")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProjectServiceToggleTwiceRestores(t *testing.T) {
	svc := newTestProjectService(t)
	ctx := context.Background()

	p, err := svc.CreateProject(ctx, "P")
	require.NoError(t, err)
	task, err := svc.AddTask(ctx, p.ID, "T")
	require.NoError(t, err)

	_, err = svc.ToggleTask(ctx, task.ID)
	require.NoError(t, err)
	back, err := svc.ToggleTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, task.Done, back.Done)

	_, err = svc.ToggleTask(ctx, 9999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProjectServiceUpdateTask(t *testing.T) {
	svc := newTestProjectService(t)
	ctx := context.Background()

	p, err := svc.CreateProject(ctx, "P")
	require.NoError(t, err)
	task, err := svc.AddTask(ctx, p.ID, "T")
	require.NoError(t, err)

	updated, err := svc.UpdateTask(ctx, task.ID, "T2", "body", true)
	require.NoError(t, err)
	assert.Equal(t, "T2", updated.Title)
	assert.Equal(t, "body", updated.Content)
	assert.True(t, updated.Done)

	_, err = svc.UpdateTask(ctx, 9999, "x", "", false)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProjectServiceDeleteTask(t *testing.T) {
	svc := newTestProjectService(t)
	ctx := context.Background()

	p, err := svc.CreateProject(ctx, "P")
	require.NoError(t, err)
	task, err := svc.AddTask(ctx, p.ID, "T")
	require.NoError(t, err)

	deleted, err := svc.DeleteTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, deleted.ProjectID)

	_, tasks, err := svc.GetProjectWithTasks(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, tasks)

	_, err = svc.DeleteTask(ctx, task.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
