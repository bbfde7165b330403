package source_test

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.trai.ch/ivpm/internal/adapters/fs"
	"go.trai.ch/ivpm/internal/adapters/git"
	"go.trai.ch/ivpm/internal/core/domain"
	"go.trai.ch/ivpm/internal/core/ports"
)

// dirCache is a minimal filesystem cache used to drive the cached flow.
type dirCache struct {
	root   string
	stores int
}

func newDirCache(t *testing.T) *dirCache {
	t.Helper()
	root := t.TempDir()
	t.Cleanup(func() { _ = fs.SetWritable(root) })
	return &dirCache{root: root}
}

func (c *dirCache) Name() string { return "test" }

func (c *dirCache) HasVersion(_ context.Context, name, version string) (bool, error) {
	_, err := os.Stat(domain.VersionDir(c.root, name, version))
	return err == nil, nil
}

func (c *dirCache) StoreVersion(_ context.Context, name, version, sourcePath string) (string, error) {
	c.stores++
	dst := domain.VersionDir(c.root, name, version)
	if err := os.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
		return "", err
	}
	if err := fs.Move(sourcePath, dst); err != nil {
		return "", err
	}
	return dst, fs.SetReadOnly(dst)
}

func (c *dirCache) LinkToDeps(name, version, depsDir string) (string, error) {
	link := domain.DepPath(depsDir, name)
	return link, fs.ReplaceSymlink(domain.VersionDir(c.root, name, version), link)
}

func (c *dirCache) Activate(context.Context) error         { return nil }
func (c *dirCache) Deactivate(context.Context, bool) error { return nil }

func newUpdateContext(t *testing.T, cache ports.CacheBackend) *ports.UpdateContext {
	t.Helper()
	return &ports.UpdateContext{
		DepsDir: filepath.Join(t.TempDir(), "packages"),
		Cache:   cache,
		Stats:   &domain.UpdateStats{},
	}
}

func requireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}
}

// newRepo creates a repository with one commit on main and returns its path
// and HEAD commit.
func newRepo(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	ctx := context.Background()
	r := git.NewRunner()

	run := func(args ...string) string {
		out, err := r.Run(ctx, dir, args...)
		require.NoError(t, err)
		return out
	}
	run("init", "-q", "-b", "main")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ivpm.yaml"), []byte("package:\n  name: lib\n"), 0o644))
	run("add", ".")
	run("-c", "user.name=test", "-c", "user.email=test@example.com", "commit", "-q", "-m", "init")
	run("tag", "v1.0")
	return dir, run("rev-parse", "HEAD")
}

func opts(kv ...any) domain.Options {
	var out domain.Options
	for i := 0; i+1 < len(kv); i += 2 {
		out = append(out, domain.Option{
			Key:     kv[i].(string),
			Value:   kv[i+1],
			SrcInfo: domain.SrcInfo{File: "ivpm.yaml", Line: 10 + i, Column: 7},
		})
	}
	return out
}
