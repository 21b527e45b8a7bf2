package fs

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/stockledger/internal/repository/blob"
)

func TestStore_PutListRenameDelete(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	store, err := New(root)
	require.NoError(t, err)
	assert.Equal(t, blob.DriverFilesystem, store.Driver())

	ref, err := store.Put(ctx, "datasheet.pdf", strings.NewReader("pdf-bytes"), "application/pdf")
	require.NoError(t, err)
	assert.Equal(t, "datasheet.pdf", ref)

	data, err := os.ReadFile(filepath.Join(root, "datasheet.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "pdf-bytes", string(data))

	_, err = store.Put(ctx, "datasheet.pdf", strings.NewReader("again"), "")
	assert.True(t, errors.Is(err, blob.ErrExists))

	require.NoError(t, store.Rename(ctx, "datasheet.pdf", "archive/ds.pdf"))
	infos, err := store.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, "archive/ds.pdf", infos[0].Name)
	assert.Equal(t, int64(9), infos[0].Size)

	infos, err = store.List(ctx, "nothing/")
	require.NoError(t, err)
	assert.Empty(t, infos)

	removed, err := store.Delete(ctx, "archive/ds.pdf")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = store.Delete(ctx, "archive/ds.pdf")
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestStore_RejectsTraversal(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)

	_, err = store.Put(context.Background(), "../escape.txt", strings.NewReader("x"), "")
	assert.True(t, errors.Is(err, blob.ErrInvalidName))

	_, err = store.Put(context.Background(), "/abs.txt", strings.NewReader("x"), "")
	assert.True(t, errors.Is(err, blob.ErrInvalidName))
}

func TestStore_RenameMissing(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)

	err = store.Rename(context.Background(), "missing.bin", "other.bin")
	assert.True(t, errors.Is(err, blob.ErrNotFound))
}
