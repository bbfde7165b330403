package cache_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/ivpm/internal/adapters/cache"
	"go.trai.ch/ivpm/internal/adapters/fs"
	"go.trai.ch/ivpm/internal/core/domain"
)

func cacheRoot(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	t.Cleanup(func() { _ = fs.SetWritable(root) })
	return root
}

// staged creates a populated directory ready to be stored.
func staged(t *testing.T, content string) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "staged")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "src"), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "src", "lib.py"), []byte(content), 0o644))
	return dir
}

func TestFilesystem_StoreAndLink(t *testing.T) {
	root := cacheRoot(t)
	c := cache.NewFilesystem(root)
	ctx := context.Background()

	ok, err := c.HasVersion(ctx, "lib", "abc123")
	require.NoError(t, err)
	assert.False(t, ok)

	src := staged(t, "v1")
	path, err := c.StoreVersion(ctx, "lib", "abc123", src)
	require.NoError(t, err)
	assert.Equal(t, domain.VersionDir(root, "lib", "abc123"), path)
	assert.NoDirExists(t, src, "the staging directory is consumed")
	assert.True(t, fs.IsReadOnly(path))

	ok, err = c.HasVersion(ctx, "lib", "abc123")
	require.NoError(t, err)
	assert.True(t, ok)

	deps := t.TempDir()
	link, err := c.LinkToDeps("lib", "abc123", deps)
	require.NoError(t, err)
	target, err := os.Readlink(link)
	require.NoError(t, err)
	assert.Equal(t, path, target)
	assert.FileExists(t, filepath.Join(link, "src", "lib.py"))
}

func TestFilesystem_StoreIsIdempotent(t *testing.T) {
	root := cacheRoot(t)
	c := cache.NewFilesystem(root)
	ctx := context.Background()

	first, err := c.StoreVersion(ctx, "lib", "v1", staged(t, "first"))
	require.NoError(t, err)

	second := staged(t, "second")
	again, err := c.StoreVersion(ctx, "lib", "v1", second)
	require.NoError(t, err)
	assert.Equal(t, first, again)
	assert.NoDirExists(t, second)

	data, err := os.ReadFile(filepath.Join(first, "src", "lib.py"))
	require.NoError(t, err)
	assert.Equal(t, "first", string(data))
}

func TestFilesystem_LinkReplacesExisting(t *testing.T) {
	root := cacheRoot(t)
	c := cache.NewFilesystem(root)
	ctx := context.Background()
	deps := t.TempDir()

	_, err := c.StoreVersion(ctx, "lib", "v1", staged(t, "1"))
	require.NoError(t, err)
	v2, err := c.StoreVersion(ctx, "lib", "v2", staged(t, "2"))
	require.NoError(t, err)

	_, err = c.LinkToDeps("lib", "v1", deps)
	require.NoError(t, err)
	link, err := c.LinkToDeps("lib", "v2", deps)
	require.NoError(t, err)

	target, err := os.Readlink(link)
	require.NoError(t, err)
	assert.Equal(t, v2, target)
}

func TestFilesystem_Activate(t *testing.T) {
	root := filepath.Join(t.TempDir(), "cache")
	c := cache.NewFilesystem(root)

	require.NoError(t, c.Activate(context.Background()))
	assert.DirExists(t, root)
	assert.Equal(t, "filesystem", c.Name())
	assert.NoError(t, c.Deactivate(context.Background(), false))
}
