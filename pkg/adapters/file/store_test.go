package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/hostflow/pkg/adapters/file"
	"github.com/aretw0/hostflow/pkg/domain"
	"github.com/aretw0/hostflow/pkg/ports"
)

var _ ports.StateStore = (*file.Store)(nil)

func TestFileStore_Contract(t *testing.T) {
	ports.RunStateStoreContract(t, file.New(t.TempDir()))
}

func TestFileStore_OverwriteKeepsOneFile(t *testing.T) {
	dir := t.TempDir()
	store := file.New(dir)
	ctx := context.Background()

	sess := domain.NewSession("ep-1", "greeting")
	require.NoError(t, store.Save(ctx, sess))

	next := sess.Clone()
	next.CurrentNodeID = "origin_story"
	next.History = append(next.History, "origin_story")
	require.NoError(t, store.Save(ctx, next))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files are cleaned up")

	loaded, err := store.Load(ctx, "ep-1")
	require.NoError(t, err)
	assert.Equal(t, "origin_story", loaded.CurrentNodeID)
	assert.Equal(t, []string{"greeting", "origin_story"}, loaded.History)
}

func TestFileStore_ListIgnoresStrayFiles(t *testing.T) {
	dir := t.TempDir()
	store := file.New(dir)
	require.NoError(t, store.Save(context.Background(), domain.NewSession("ep-2", "greeting")))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tmp-ep-3-123.json"), []byte("{}"), 0o600))

	ids, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"ep-2"}, ids)
}

func TestFileStore_MissingDirectory(t *testing.T) {
	store := file.New(filepath.Join(t.TempDir(), "never-created"))
	ids, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, ids)
	assert.NoError(t, store.Delete(context.Background(), "ghost"))
}

func TestFileStore_RejectsPathIDs(t *testing.T) {
	store := file.New(t.TempDir())
	err := store.Save(context.Background(), domain.NewSession("../escape", "greeting"))
	assert.Error(t, err)
	_, err = store.Load(context.Background(), "")
	assert.Error(t, err)
}

func TestFileStore_DefaultPath(t *testing.T) {
	assert.Equal(t, filepath.Join(".hostflow", "sessions"), file.New("").BasePath)
}
