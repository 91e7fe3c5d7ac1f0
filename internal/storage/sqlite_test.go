package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestLoadRootsEmpty(t *testing.T) {
	store := newTestStore(t)
	paths, err := store.LoadRoots(context.Background())
	require.NoError(t, err)
	assert.Empty(t, paths)
}

func TestSaveAndLoadRootsPreservesOrder(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	want := []string{"/mnt/books", "/home/user/Downloads", "/srv/library"}
	require.NoError(t, store.SaveRoots(ctx, want))

	got, err := store.LoadRoots(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestSaveRootsReplacesPrevious(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveRoots(ctx, []string{"/old/a", "/old/b"}))
	require.NoError(t, store.SaveRoots(ctx, []string{"/new/only"}))

	got, err := store.LoadRoots(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"/new/only"}, got)
}

func TestSaveRootsEmptyClearsAll(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveRoots(ctx, []string{"/a"}))
	require.NoError(t, store.SaveRoots(ctx, nil))

	got, err := store.LoadRoots(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSettingsRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SetSetting(ctx, "threshold", "60"))
	value, err := store.GetSetting(ctx, "threshold")
	require.NoError(t, err)
	assert.Equal(t, "60", value)

	// Upsert overwrites.
	require.NoError(t, store.SetSetting(ctx, "threshold", "75"))
	value, err = store.GetSetting(ctx, "threshold")
	require.NoError(t, err)
	assert.Equal(t, "75", value)
}

func TestGetSettingMissing(t *testing.T) {
	store := newTestStore(t)
	_, err := store.GetSetting(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMigrationsIdempotent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.db")

	first, err := NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, first.SaveRoots(context.Background(), []string{"/keep"}))
	require.NoError(t, first.Close())

	// Reopening must not rerun applied migrations or drop data.
	second, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer func() { _ = second.Close() }()

	got, err := second.LoadRoots(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"/keep"}, got)
}
