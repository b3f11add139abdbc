package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectStoreCreateAndLookup(t *testing.T) {
	objects := NewObjectStore(openTestDB(t))
	ctx := context.Background()

	created, err := objects.Create(ctx, "1a2b3c4d-report.pdf", 2048, "abc123")
	require.NoError(t, err)
	assert.Equal(t, "1a2b3c4d-report.pdf", created.Name)
	assert.Equal(t, int64(2048), created.Size)

	byName, err := objects.GetByName(ctx, created.Name)
	require.NoError(t, err)
	require.NotNil(t, byName)
	assert.Equal(t, "abc123", byName.ShortCode)

	byCode, err := objects.GetByShortCode(ctx, "abc123")
	require.NoError(t, err)
	require.NotNil(t, byCode)
	assert.Equal(t, created.Name, byCode.Name)
}

func TestObjectStoreMissing(t *testing.T) {
	objects := NewObjectStore(openTestDB(t))
	ctx := context.Background()

	o, err := objects.GetByName(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, o)

	o, err = objects.GetByShortCode(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, o)
}

func TestObjectStoreDuplicateName(t *testing.T) {
	objects := NewObjectStore(openTestDB(t))
	ctx := context.Background()

	_, err := objects.Create(ctx, "same", 1, "c1")
	require.NoError(t, err)
	_, err = objects.Create(ctx, "same", 1, "c2")
	assert.Error(t, err)
}

func TestObjectStoreList(t *testing.T) {
	objects := NewObjectStore(openTestDB(t))
	ctx := context.Background()

	_, err := objects.Create(ctx, "one", 1, "c1")
	require.NoError(t, err)
	_, err = objects.Create(ctx, "two", 2, "c2")
	require.NoError(t, err)

	list, err := objects.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "two", list[0].Name)
}
