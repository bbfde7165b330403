package cache_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/ivpm/internal/adapters/cache"
	"go.trai.ch/ivpm/internal/adapters/fs"
	"go.trai.ch/ivpm/internal/core/domain"
	"go.trai.ch/ivpm/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

var keys = cache.Keys{Prefix: "ivpm", OS: "Linux"}

func newTwoTier(t *testing.T) (*cache.TwoTier, *mocks.MockRemoteCache, *mocks.MockLogger, string) {
	t.Helper()
	ctrl := gomock.NewController(t)
	remote := mocks.NewMockRemoteCache(ctrl)
	log := mocks.NewMockLogger(ctrl)
	remote.EXPECT().Name().Return("gha").AnyTimes()
	log.EXPECT().Debug(gomock.Any()).AnyTimes()
	root := cacheRoot(t)
	return cache.NewTwoTier(cache.NewFilesystem(root), remote, keys, log), remote, log, root
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "ivpm-pkg-Linux-lib-abc", keys.Package("lib", "abc"))
	assert.Equal(t, "ivpm-pyenv-Linux-3.12-h1", keys.Venv("3.12", "h1"))
	assert.Equal(t, "ivpm-pyenv-Linux-3.12-", keys.VenvPrefix("3.12"))
	assert.Equal(t, "ivpm-pip-Linux-h1", keys.Pip("h1"))
	assert.Equal(t, "ivpm-pip-Linux-", keys.PipPrefix())
}

func TestTwoTier_RemoteHitRestoresL1(t *testing.T) {
	tt, remote, _, root := newTwoTier(t)
	ctx := context.Background()

	remote.EXPECT().Lookup(ctx, "ivpm-pkg-Linux-lib-v1").Return("https://blob/lib", nil)
	remote.EXPECT().Download(ctx, "https://blob/lib", gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, dest string) error {
			return os.WriteFile(filepath.Join(dest, "lib.py"), []byte("x"), 0o644)
		})

	ok, err := tt.HasVersion(ctx, "lib", "v1")
	require.NoError(t, err)
	assert.True(t, ok)

	entry := domain.VersionDir(root, "lib", "v1")
	assert.FileExists(t, filepath.Join(entry, "lib.py"))
	assert.True(t, fs.IsReadOnly(entry))

	// The second query is answered by L1 without touching the remote.
	ok, err = tt.HasVersion(ctx, "lib", "v1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestTwoTier_ConcurrentRemoteRestore(t *testing.T) {
	tt, remote, _, root := newTwoTier(t)
	ctx := context.Background()
	files := []string{"a.py", "b.py", "c.py", "d.py"}

	remote.EXPECT().Lookup(gomock.Any(), "ivpm-pkg-Linux-lib-v1").Return("https://blob/lib", nil).AnyTimes()
	remote.EXPECT().Download(gomock.Any(), "https://blob/lib", gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, dest string) error {
			for _, name := range files {
				if err := os.WriteFile(filepath.Join(dest, name), []byte(name), 0o644); err != nil {
					return err
				}
				time.Sleep(time.Millisecond)
			}
			return nil
		}).AnyTimes()

	entry := domain.VersionDir(root, "lib", "v1")
	var wg sync.WaitGroup
	for range 8 {
		wg.Go(func() {
			ok, err := tt.HasVersion(ctx, "lib", "v1")
			assert.NoError(t, err)
			assert.True(t, ok)
			for _, name := range files {
				assert.FileExists(t, filepath.Join(entry, name))
			}
		})
	}
	wg.Wait()

	entries, err := os.ReadDir(domain.PkgDir(root, "lib"))
	require.NoError(t, err)
	require.Len(t, entries, 1, "scratch directories are removed")
	assert.Equal(t, "v1", entries[0].Name())

	restored, err := os.ReadDir(entry)
	require.NoError(t, err)
	assert.Len(t, restored, len(files))
}

func TestTwoTier_RemoteMiss(t *testing.T) {
	tt, remote, _, _ := newTwoTier(t)
	ctx := context.Background()

	remote.EXPECT().Lookup(ctx, gomock.Any()).Return("", nil)

	ok, err := tt.HasVersion(ctx, "lib", "v1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTwoTier_RemoteFailureIsAMiss(t *testing.T) {
	tt, remote, log, root := newTwoTier(t)
	ctx := context.Background()

	remote.EXPECT().Lookup(ctx, gomock.Any()).Return("https://blob/lib", nil)
	remote.EXPECT().Download(ctx, gomock.Any(), gomock.Any()).Return(errors.New("connection reset"))
	log.EXPECT().Warn(gomock.Any())

	ok, err := tt.HasVersion(ctx, "lib", "v1")
	require.NoError(t, err)
	assert.False(t, ok)

	entries, err := os.ReadDir(domain.PkgDir(root, "lib"))
	require.NoError(t, err)
	assert.Empty(t, entries, "the partial restore is removed")
}

func TestTwoTier_StoreUploadsAndDeactivateJoins(t *testing.T) {
	tt, remote, _, root := newTwoTier(t)
	ctx := context.Background()

	uploaded := make(chan string, 1)
	remote.EXPECT().Upload(gomock.Any(), "ivpm-pkg-Linux-lib-v1", domain.VersionDir(root, "lib", "v1")).
		DoAndReturn(func(_ context.Context, key, _ string) error {
			uploaded <- key
			return nil
		})

	path, err := tt.StoreVersion(ctx, "lib", "v1", staged(t, "x"))
	require.NoError(t, err)
	assert.Equal(t, domain.VersionDir(root, "lib", "v1"), path)

	require.NoError(t, tt.Deactivate(ctx, false))
	select {
	case key := <-uploaded:
		assert.Equal(t, "ivpm-pkg-Linux-lib-v1", key)
	default:
		t.Fatal("upload was not joined by Deactivate")
	}
}

func TestTwoTier_SessionArtifactsOnlyOnSuccess(t *testing.T) {
	tt, remote, _, _ := newTwoTier(t)
	ctx := context.Background()

	venv := t.TempDir()
	require.NoError(t, os.MkdirAll(tt.PipCacheDir(), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(tt.PipCacheDir(), "wheel"), []byte("w"), 0o644))
	tt.NotifyVenvRebuilt(venv, "3.12", "h1")

	require.NoError(t, tt.Deactivate(ctx, false))

	remote.EXPECT().Upload(ctx, "ivpm-pyenv-Linux-3.12-h1", venv).Return(nil)
	remote.EXPECT().Upload(ctx, "ivpm-pip-Linux-h1", tt.PipCacheDir()).Return(nil)
	require.NoError(t, tt.Deactivate(ctx, true))
}

func TestTwoTier_TryRestoreVenv(t *testing.T) {
	tt, remote, _, _ := newTwoTier(t)
	ctx := context.Background()
	venv := filepath.Join(t.TempDir(), "python")

	remote.EXPECT().Lookup(ctx, "ivpm-pyenv-Linux-3.12-h1", "ivpm-pyenv-Linux-3.12-").Return("https://blob/venv", nil)
	remote.EXPECT().Download(ctx, "https://blob/venv", venv).Return(nil)

	ok, err := tt.TryRestoreVenv(ctx, venv, "3.12", "h1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestTwoTier_ActivateRestoresWheelCache(t *testing.T) {
	tt, remote, _, _ := newTwoTier(t)
	ctx := context.Background()

	remote.EXPECT().Lookup(ctx, "ivpm-pip-Linux-", "ivpm-pip-Linux-").Return("https://blob/pip", nil)
	remote.EXPECT().Download(ctx, "https://blob/pip", tt.PipCacheDir()).Return(nil)

	require.NoError(t, tt.Activate(ctx))
}
