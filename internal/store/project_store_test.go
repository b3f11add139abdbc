package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vbonduro/hgdesk/internal/db"
	"github.com/vbonduro/hgdesk/internal/domain"
)

func openTestDB(t *testing.T) *db.DB {
	t.Helper()
	d, err := db.OpenForTesting()
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })
	return d
}

func TestProjectStoreCreate(t *testing.T) {
	store := NewProjectStore(openTestDB(t))
	ctx := context.Background()

	project, err := store.Create(ctx, "Website")
	require.NoError(t, err)
	assert.NotZero(t, project.ID)
	assert.Equal(t, "Website", project.Name)
	assert.False(t, project.CreatedAt.IsZero())
}

func TestProjectStoreGetByID_Missing(t *testing.T) {
	store := NewProjectStore(openTestDB(t))

	project, err := store.GetByID(context.Background(), 4242)
	require.NoError(t, err)
	assert.Nil(t, project)
}

func TestProjectStoreList_NewestFirst(t *testing.T) {
	store := NewProjectStore(openTestDB(t))
	ctx := context.Background()

	_, err := store.Create(ctx, "First")
	require.NoError(t, err)
	_, err = store.Create(ctx, "Second")
	require.NoError(t, err)
	_, err = store.Create(ctx, "Third")
	require.NoError(t, err)

	projects, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, projects, 3)
	assert.Equal(t, "Third", projects[0].Name)
	assert.Equal(t, "Second", projects[1].Name)
	assert.Equal(t, "First", projects[2].Name)
}

func TestProjectStoreDelete_CascadesTasks(t *testing.T) {
	d := openTestDB(t)
	projects := NewProjectStore(d)
	tasks := NewTaskStore(d)
	ctx := context.Background()

	doomed, err := projects.Create(ctx, "Doomed")
	require.NoError(t, err)
	kept, err := projects.Create(ctx, "Kept")
	require.NoError(t, err)

	_, err = tasks.Create(ctx, doomed.ID, "a")
	require.NoError(t, err)
	_, err = tasks.Create(ctx, doomed.ID, "b")
	require.NoError(t, err)
	survivor, err := tasks.Create(ctx, kept.ID, "c")
	require.NoError(t, err)

	require.NoError(t, projects.Delete(ctx, doomed.ID))

	var orphans int
	require.NoError(t, d.QueryRow("SELECT COUNT(*) FROM tasks WHERE project_id = ?", doomed.ID).Scan(&orphans))
	assert.Zero(t, orphans)

	remaining, err := tasks.GetByID(ctx, survivor.ID)
	require.NoError(t, err)
	assert.NotNil(t, remaining)
}

func TestProjectStoreDelete_NotFound(t *testing.T) {
	store := NewProjectStore(openTestDB(t))

	err := store.Delete(context.Background(), 99999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
