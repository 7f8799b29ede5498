package kvstore_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todo/internal/backend/kvstore"
	"todo/internal/store"
)

func openStore(t *testing.T, dir string, version int) *kvstore.Store {
	t.Helper()
	s, err := kvstore.Open(kvstore.Options{
		Dir:           dir,
		SchemaVersion: version,
		Logger:        log.NewStdLogger(os.Stderr),
	})
	require.NoError(t, err)
	return s
}

func TestStore_FreshStoreIsEmpty(t *testing.T) {
	s := openStore(t, t.TempDir(), 0)
	defer s.Close()

	tasks, err := s.ListAll(context.Background())
	require.NoError(t, err)
	require.NotNil(t, tasks)
	assert.Empty(t, tasks)
}

func TestStore_AddRemoveScenario(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, t.TempDir(), 0)
	defer s.Close()

	id, err := s.Add(ctx, "Buy milk")
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	tasks, err := s.ListAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []store.Task{{ID: 1, Description: "Buy milk"}}, tasks)

	id, err = s.Add(ctx, "Walk dog")
	require.NoError(t, err)
	assert.Equal(t, int64(2), id)

	tasks, err = s.ListAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []store.Task{
		{ID: 1, Description: "Buy milk"},
		{ID: 2, Description: "Walk dog"},
	}, tasks)

	require.NoError(t, s.Remove(ctx, 1))
	tasks, err = s.ListAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []store.Task{{ID: 2, Description: "Walk dog"}}, tasks)

	// Removing again is a no-op.
	require.NoError(t, s.Remove(ctx, 1))
	tasks, err = s.ListAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []store.Task{{ID: 2, Description: "Walk dog"}}, tasks)
}

func TestStore_RemoveUnknownIDLeavesStoreUnchanged(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, t.TempDir(), 0)
	defer s.Close()

	_, err := s.Add(ctx, "one")
	require.NoError(t, err)
	before, err := s.ListAll(ctx)
	require.NoError(t, err)

	for _, id := range []int64{0, -3, 2, 99} {
		require.NoError(t, s.Remove(ctx, id))
	}

	after, err := s.ListAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestStore_ReopenKeepsInsertionOrder(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s := openStore(t, dir, 0)
	_, err := s.Add(ctx, "first")
	require.NoError(t, err)
	_, err = s.Add(ctx, "second")
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s = openStore(t, dir, 0)
	defer s.Close()

	tasks, err := s.ListAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []store.Task{
		{ID: 1, Description: "first"},
		{ID: 2, Description: "second"},
	}, tasks)
}

func TestStore_IDsAreNeverReused(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s := openStore(t, dir, 0)
	_, err := s.Add(ctx, "a")
	require.NoError(t, err)
	id, err := s.Add(ctx, "b")
	require.NoError(t, err)
	require.NoError(t, s.Remove(ctx, id))

	id, err = s.Add(ctx, "c")
	require.NoError(t, err)
	assert.Equal(t, int64(3), id)
	require.NoError(t, s.Close())

	s = openStore(t, dir, 0)
	defer s.Close()
	id, err = s.Add(ctx, "d")
	require.NoError(t, err)
	assert.Equal(t, int64(4), id)
}

func TestStore_SchemaVersionChangeDropsTasks(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s := openStore(t, dir, 1)
	_, err := s.Add(ctx, "old")
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s = openStore(t, dir, 2)
	tasks, err := s.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, tasks)

	id, err := s.Add(ctx, "new")
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)
	require.NoError(t, s.Close())

	// Same version again keeps the data.
	s = openStore(t, dir, 2)
	defer s.Close()
	tasks, err = s.ListAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []store.Task{{ID: 1, Description: "new"}}, tasks)
}

func TestStore_OpenUnwritableLocation(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))

	_, err := kvstore.Open(kvstore.Options{Dir: filepath.Join(blocker, "store")})
	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrStorageInit)
}

func TestStore_CanceledContext(t *testing.T) {
	s := openStore(t, t.TempDir(), 0)
	defer s.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Add(ctx, "never")
	assert.ErrorIs(t, err, store.ErrStorageWrite)
	assert.ErrorIs(t, err, context.Canceled)

	tasks, err := s.ListAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestStore_PreservesDescriptionText(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, t.TempDir(), 0)
	defer s.Close()

	desc := "café ☕ – line one\nline two"
	id, err := s.Add(ctx, desc)
	require.NoError(t, err)

	tasks, err := s.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, store.Task{ID: id, Description: desc}, tasks[0])
}
