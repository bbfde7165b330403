package source_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/ivpm/internal/adapters/fs"
	"go.trai.ch/ivpm/internal/adapters/git"
	"go.trai.ch/ivpm/internal/adapters/source"
	"go.trai.ch/ivpm/internal/core/domain"
	"go.trai.ch/ivpm/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func gitPackage(t *testing.T, h *source.GitHandler, kv ...any) *domain.Package {
	t.Helper()
	pkg, err := h.Create("lib", opts(kv...), si)
	require.NoError(t, err)
	return pkg
}

func TestGitUpdate_Editable(t *testing.T) {
	requireGit(t)
	repo, head := newRepo(t)
	h := source.NewGitHandler(git.NewRunner())
	uctx := newUpdateContext(t, nil)
	ctx := context.Background()

	pkg := gitPackage(t, h, "url", repo)
	res, err := h.Update(ctx, uctx, pkg)
	require.NoError(t, err)
	assert.False(t, res.Cacheable)
	assert.False(t, res.AlreadyLoaded)
	assert.Equal(t, filepath.Join(uctx.DepsDir, "lib"), pkg.Path)
	assert.Equal(t, head, pkg.Git().ResolvedCommit)
	assert.FileExists(t, filepath.Join(pkg.Path, "ivpm.yaml"))

	again := gitPackage(t, h, "url", repo)
	res, err = h.Update(ctx, uctx, again)
	require.NoError(t, err)
	assert.True(t, res.AlreadyLoaded)
	assert.Equal(t, head, again.Git().ResolvedCommit)
}

func TestGitUpdate_Tag(t *testing.T) {
	requireGit(t)
	repo, head := newRepo(t)
	h := source.NewGitHandler(git.NewRunner())
	uctx := newUpdateContext(t, nil)

	pkg := gitPackage(t, h, "url", repo, "tag", "v1.0", "depth", 1)
	_, err := h.Update(context.Background(), uctx, pkg)
	require.NoError(t, err)
	assert.Equal(t, head, pkg.Git().ResolvedCommit)
}

func TestGitUpdate_Cached(t *testing.T) {
	requireGit(t)
	repo, head := newRepo(t)
	h := source.NewGitHandler(git.NewRunner())
	cache := newDirCache(t)
	ctx := context.Background()

	uctx := newUpdateContext(t, cache)
	pkg := gitPackage(t, h, "url", repo, "cache", true)
	res, err := h.Update(ctx, uctx, pkg)
	require.NoError(t, err)
	assert.True(t, res.Cacheable)
	assert.False(t, res.CacheHit)
	assert.Equal(t, head, pkg.Git().ResolvedCommit)
	assert.True(t, fs.IsReadOnly(domain.VersionDir(cache.root, "lib", head[:12])))

	target, err := os.Readlink(pkg.Path)
	require.NoError(t, err)
	assert.Equal(t, domain.VersionDir(cache.root, "lib", head[:12]), target)

	other := newUpdateContext(t, cache)
	pkg = gitPackage(t, h, "url", repo, "cache", true)
	res, err = h.Update(ctx, other, pkg)
	require.NoError(t, err)
	assert.True(t, res.CacheHit)
	assert.Equal(t, 1, cache.stores)

	entries, err := os.ReadDir(domain.DownloadDir(uctx.DepsDir))
	require.NoError(t, err)
	assert.Empty(t, entries, "staging directories are removed")
}

func TestGitUpdate_EditableReplacesCachedLink(t *testing.T) {
	requireGit(t)
	repo, _ := newRepo(t)
	h := source.NewGitHandler(git.NewRunner())
	uctx := newUpdateContext(t, newDirCache(t))
	ctx := context.Background()

	_, err := h.Update(ctx, uctx, gitPackage(t, h, "url", repo, "cache", true))
	require.NoError(t, err)

	pkg := gitPackage(t, h, "url", repo, "cache", false)
	res, err := h.Update(ctx, uctx, pkg)
	require.NoError(t, err)
	assert.False(t, res.AlreadyLoaded)

	info, err := os.Lstat(pkg.Path)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestGitUpdate_CloneFailureRemovesDest(t *testing.T) {
	requireGit(t)
	h := source.NewGitHandler(git.NewRunner())
	uctx := newUpdateContext(t, nil)

	pkg := gitPackage(t, h, "url", filepath.Join(t.TempDir(), "missing"))
	_, err := h.Update(context.Background(), uctx, pkg)
	require.ErrorIs(t, err, domain.ErrGitCommandFailed)
	assert.NoDirExists(t, filepath.Join(uctx.DepsDir, "lib"))
}

func TestGitUpdate_RewritesHTTPSForLsRemote(t *testing.T) {
	ctrl := gomock.NewController(t)
	runner := mocks.NewMockGitRunner(ctrl)
	h := source.NewGitHandler(runner)
	uctx := newUpdateContext(t, newDirCache(t))

	runner.EXPECT().
		Run(gomock.Any(), "", "ls-remote", "git@github.com:org/lib.git", "refs/heads/dev").
		Return("", nil)

	pkg := gitPackage(t, h, "url", "https://github.com/org/lib.git", "branch", "dev", "cache", true)
	_, err := h.Update(context.Background(), uctx, pkg)
	assert.ErrorIs(t, err, domain.ErrGitRefNotFound)
}

func TestGitUpdate_AnonymousKeepsURL(t *testing.T) {
	ctrl := gomock.NewController(t)
	runner := mocks.NewMockGitRunner(ctrl)
	h := source.NewGitHandler(runner)
	uctx := newUpdateContext(t, newDirCache(t))
	uctx.AnonymousGit = true

	runner.EXPECT().
		Run(gomock.Any(), "", "ls-remote", "https://github.com/org/lib.git", "refs/tags/v2^{}", "refs/tags/v2").
		Return("", nil)

	pkg := gitPackage(t, h, "url", "https://github.com/org/lib.git", "tag", "v2", "cache", true)
	_, err := h.Update(context.Background(), uctx, pkg)
	assert.ErrorIs(t, err, domain.ErrGitRefNotFound)
}
