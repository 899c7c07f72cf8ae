package blob

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStoreLifecycle(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	store, err := NewLocalStore(root)
	require.NoError(t, err)
	ctx := context.Background()

	ref, err := store.Put(ctx, 42, strings.NewReader("png-bytes"), "image/png; charset=binary")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(ref, "images/42/"))
	assert.True(t, strings.HasSuffix(ref, ".png"))

	url, err := store.URL(ctx, ref)
	require.NoError(t, err)
	assert.Empty(t, url)

	body, contentType, err := store.Open(ctx, ref)
	require.NoError(t, err)
	payload, err := io.ReadAll(body)
	require.NoError(t, err)
	require.NoError(t, body.Close())
	assert.Equal(t, "png-bytes", string(payload))
	assert.Equal(t, "image/png", contentType)

	require.NoError(t, store.Delete(ctx, ref))
	require.NoError(t, store.Delete(ctx, ref), "deleting twice is not an error")
	_, _, err = store.Open(ctx, ref)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalStoreDeleteOwner(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	store, err := NewLocalStore(root)
	require.NoError(t, err)
	ctx := context.Background()

	mine, err := store.Put(ctx, 1, strings.NewReader("a"), "image/jpeg")
	require.NoError(t, err)
	theirs, err := store.Put(ctx, 11, strings.NewReader("b"), "image/jpeg")
	require.NoError(t, err)

	require.NoError(t, store.DeleteOwner(ctx, 1))
	_, err = os.Stat(filepath.Join(root, filepath.FromSlash(mine)))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(root, filepath.FromSlash(theirs)))
	assert.NoError(t, err)
}

func TestLocalStoreRejectsTraversal(t *testing.T) {
	t.Parallel()

	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	for _, ref := range []string{"", "../secret", "images/../../secret", "other/1/a.jpg", "/images/1/a.jpg"} {
		_, _, err := store.Open(context.Background(), ref)
		assert.ErrorIs(t, err, ErrInvalidRef, "ref %q", ref)
	}
}

func TestOwnerOf(t *testing.T) {
	t.Parallel()

	assert.True(t, OwnerOf("images/5/1-a.jpg", 5))
	assert.False(t, OwnerOf("images/55/1-a.jpg", 5))
	assert.False(t, OwnerOf("images/5/../6/1-a.jpg", 5))
}
