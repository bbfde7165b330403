package cache

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"go.trai.ch/ivpm/internal/adapters/fs"
	"go.trai.ch/ivpm/internal/core/ports"
	"golang.org/x/sync/errgroup"
)

// uploadWorkers bounds concurrent remote uploads.
const uploadWorkers = 4

const pipCacheDirName = ".pip-cache"

// TwoTier serves entries from a Filesystem (L1) and falls back to a remote
// cache (L2). Stored entries are uploaded in the background. Remote failures
// are logged and never fail a run.
type TwoTier struct {
	l1     *Filesystem
	remote ports.RemoteCache
	keys   Keys
	logger ports.Logger

	uploads *errgroup.Group

	mu     sync.Mutex
	venv   *session
	pipKey string
}

type session struct {
	dir string
	key string
}

// NewTwoTier creates a TwoTier backend.
func NewTwoTier(l1 *Filesystem, remote ports.RemoteCache, keys Keys, logger ports.Logger) *TwoTier {
	g := &errgroup.Group{}
	g.SetLimit(uploadWorkers)
	return &TwoTier{l1: l1, remote: remote, keys: keys, logger: logger, uploads: g}
}

// Name implements ports.CacheBackend.
func (t *TwoTier) Name() string { return t.remote.Name() }

// HasVersion implements ports.CacheBackend. A remote hit is restored into L1
// before returning true.
func (t *TwoTier) HasVersion(ctx context.Context, name, version string) (bool, error) {
	if ok, err := t.l1.HasVersion(ctx, name, version); ok || err != nil {
		return ok, err
	}

	key := t.keys.Package(name, version)
	url, err := t.remote.Lookup(ctx, key)
	if err != nil {
		t.logger.Warn("remote cache lookup failed for " + key + ": " + err.Error())
		return false, nil
	}
	if url == "" {
		return false, nil
	}

	tmp, err := t.l1.restoreDir(name, version)
	if err != nil {
		return false, err
	}
	if err := t.remote.Download(ctx, url, tmp); err != nil {
		_ = fs.RemoveTree(tmp)
		t.logger.Warn("remote cache download failed for " + key + ": " + err.Error())
		return false, nil
	}
	if err := t.l1.adopt(tmp, name, version); err != nil {
		return false, err
	}
	t.logger.Debug("restored " + key + " from " + t.remote.Name())
	return true, nil
}

// StoreVersion implements ports.CacheBackend.
func (t *TwoTier) StoreVersion(ctx context.Context, name, version, sourcePath string) (string, error) {
	path, err := t.l1.StoreVersion(ctx, name, version, sourcePath)
	if err != nil {
		return "", err
	}

	key := t.keys.Package(name, version)
	uploadCtx := context.WithoutCancel(ctx)
	t.uploads.Go(func() error {
		if err := t.remote.Upload(uploadCtx, key, path); err != nil {
			t.logger.Warn("remote cache upload failed for " + key + ": " + err.Error())
		}
		return nil
	})
	return path, nil
}

// LinkToDeps implements ports.CacheBackend.
func (t *TwoTier) LinkToDeps(name, version, depsDir string) (string, error) {
	return t.l1.LinkToDeps(name, version, depsDir)
}

// Activate implements ports.CacheBackend. It restores the most recent wheel
// cache of this OS when none is present locally.
func (t *TwoTier) Activate(ctx context.Context) error {
	if err := t.l1.Activate(ctx); err != nil {
		return err
	}

	dir := t.PipCacheDir()
	if entries, err := os.ReadDir(dir); err == nil && len(entries) > 0 {
		return nil
	}
	prefix := t.keys.PipPrefix()
	url, err := t.remote.Lookup(ctx, prefix, prefix)
	if err != nil || url == "" {
		return nil
	}
	if err := t.remote.Download(ctx, url, dir); err != nil {
		t.logger.Warn("wheel cache restore failed: " + err.Error())
	}
	return nil
}

// Deactivate implements ports.CacheBackend. Package uploads are always
// joined; the interpreter environment and wheel cache are uploaded only after
// a successful run.
func (t *TwoTier) Deactivate(ctx context.Context, success bool) error {
	_ = t.uploads.Wait()
	if !success {
		return nil
	}

	t.mu.Lock()
	venv, pipKey := t.venv, t.pipKey
	t.mu.Unlock()

	if venv != nil {
		if err := t.remote.Upload(ctx, venv.key, venv.dir); err != nil {
			t.logger.Warn("interpreter environment upload failed: " + err.Error())
		}
	}
	if pipKey != "" {
		if entries, err := os.ReadDir(t.PipCacheDir()); err == nil && len(entries) > 0 {
			if err := t.remote.Upload(ctx, pipKey, t.PipCacheDir()); err != nil {
				t.logger.Warn("wheel cache upload failed: " + err.Error())
			}
		}
	}
	return nil
}

// TryRestoreVenv implements ports.VenvCache.
func (t *TwoTier) TryRestoreVenv(ctx context.Context, venvDir, pyVersion, reqHash string) (bool, error) {
	url, err := t.remote.Lookup(ctx, t.keys.Venv(pyVersion, reqHash), t.keys.VenvPrefix(pyVersion))
	if err != nil {
		t.logger.Warn("interpreter environment lookup failed: " + err.Error())
		return false, nil
	}
	if url == "" {
		return false, nil
	}
	if err := t.remote.Download(ctx, url, venvDir); err != nil {
		_ = fs.RemoveTree(venvDir)
		t.logger.Warn("interpreter environment restore failed: " + err.Error())
		return false, nil
	}
	return true, nil
}

// NotifyVenvRebuilt implements ports.VenvCache.
func (t *TwoTier) NotifyVenvRebuilt(venvDir, pyVersion, reqHash string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.venv = &session{dir: venvDir, key: t.keys.Venv(pyVersion, reqHash)}
	t.pipKey = t.keys.Pip(reqHash)
}

// PipCacheDir implements ports.VenvCache.
func (t *TwoTier) PipCacheDir() string {
	return filepath.Join(t.l1.Root(), pipCacheDirName)
}
