package app_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/ivpm/internal/adapters/settings"
	"go.trai.ch/ivpm/internal/app"
	"go.trai.ch/ivpm/internal/core/domain"
	"go.trai.ch/ivpm/internal/core/ports"
	"go.trai.ch/ivpm/internal/core/ports/mocks"
	"go.trai.ch/zerr"
	"go.uber.org/mock/gomock"
)

// recorder is a Progress listener that keeps every event.
type recorder struct {
	mu     sync.Mutex
	events []domain.Event
	color  bool
}

func (r *recorder) OnEvent(ev domain.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) SetColor(color bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.color = color
}

func (r *recorder) kinds() []domain.EventKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.EventKind, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.Kind
	}
	return out
}

func (r *recorder) last() domain.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.events[len(r.events)-1]
}

type fixture struct {
	loader   *mocks.MockManifestLoader
	registry *mocks.MockSourceRegistry
	locks    *mocks.MockLockStore
	selector *mocks.MockCacheSelector
	admin    *mocks.MockCacheAdmin
	git      *mocks.MockGitRunner
	logger   *mocks.MockLogger
	python   *mocks.MockPackageHandler
	progress *recorder
	settings *settings.Settings
	app      *app.App
	dir      string
	deps     string
}

func setup(t *testing.T) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	dir := t.TempDir()
	f := &fixture{
		loader:   mocks.NewMockManifestLoader(ctrl),
		registry: mocks.NewMockSourceRegistry(ctrl),
		locks:    mocks.NewMockLockStore(ctrl),
		selector: mocks.NewMockCacheSelector(ctrl),
		admin:    mocks.NewMockCacheAdmin(ctrl),
		git:      mocks.NewMockGitRunner(ctrl),
		logger:   mocks.NewMockLogger(ctrl),
		python:   mocks.NewMockPackageHandler(ctrl),
		progress: &recorder{},
		settings: &settings.Settings{Jobs: 2, CachePrefix: settings.DefaultCachePrefix},
		dir:      dir,
		deps:     filepath.Join(dir, domain.DefaultDepsDir),
	}
	f.logger.EXPECT().Debug(gomock.Any()).AnyTimes()
	f.logger.EXPECT().Info(gomock.Any()).AnyTimes()
	f.python.EXPECT().Name().Return("python").AnyTimes()

	f.app = app.New(app.Deps{
		Loader:   f.loader,
		Registry: f.registry,
		Locks:    f.locks,
		Selector: f.selector,
		Admin:    f.admin,
		Git:      f.git,
		Logger:   f.logger,
		Progress: f.progress,
		Python:   f.python,
		Settings: f.settings,
	})
	return f
}

// project returns a root project with one git dependency in default-dev.
func (f *fixture) project() *domain.ProjInfo {
	proj := domain.NewProjInfo("top")
	proj.Dir = f.dir
	ds := domain.NewPackagesInfo(domain.DefaultDepSet)
	ds.Add(&domain.Package{
		Name: "a", Src: domain.SrcGit, ProcessDeps: true,
		Source: &domain.GitSource{URL: "https://example.com/a.git"},
	})
	proj.AddDepSet(ds)
	return proj
}

func (f *fixture) lockPath() string {
	return domain.LockPath(f.deps)
}

// expectFetch materializes git packages below the deps directory and
// reports that none of them carries a manifest.
func (f *fixture) expectFetch(fail map[string]error) {
	f.registry.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, uctx *ports.UpdateContext, pkg *domain.Package) (domain.UpdateResult, error) {
			if err := fail[pkg.Name]; err != nil {
				return domain.UpdateResult{}, err
			}
			if pkg.Src != domain.SrcPyPI {
				pkg.Path = domain.DepPath(uctx.DepsDir, pkg.Name)
			}
			return domain.UpdateResult{}, nil
		}).AnyTimes()
	f.loader.EXPECT().LoadDir(gomock.Not(f.dir)).
		Return(nil, zerr.Wrap(domain.ErrManifestNotFound, "")).AnyTimes()
}

func TestApp_Update(t *testing.T) {
	f := setup(t)
	proj := f.project()

	f.loader.EXPECT().LoadDir(f.dir).Return(proj, nil)
	f.locks.EXPECT().Read(f.lockPath()).Return(nil, zerr.Wrap(domain.ErrLockNotFound, ""))
	f.selector.EXPECT().Select(gomock.Any(), "", proj).Return(nil, nil)
	f.expectFetch(nil)

	var processed []string
	f.python.EXPECT().ProcessPkg(gomock.Any()).Do(func(p *domain.Package) {
		processed = append(processed, p.Name)
	}).AnyTimes()
	f.python.EXPECT().Update(gomock.Any(), gomock.Cond(func(info *ports.UpdateInfo) bool {
		return info.DepsDir == f.deps && info.Closure.Has("a") && info.SystemSitePackages
	})).Return(nil)
	contribution := map[string]any{"python_packages": []any{"ivpm"}}
	f.python.EXPECT().LockContribution().Return(contribution)
	f.locks.EXPECT().Write(f.lockPath(), gomock.Cond(func(c *domain.PackagesInfo) bool {
		return c.Has("a") && c.Has(domain.SelfPackageName)
	}), contribution).Return(nil)

	err := f.app.Update(context.Background(), app.UpdateOptions{
		RunOptions:         app.RunOptions{ProjectDir: f.dir},
		SystemSitePackages: true,
	})
	require.NoError(t, err)

	assert.DirExists(t, f.deps)
	assert.ElementsMatch(t, []string{"a", domain.SelfPackageName}, processed)
	assert.False(t, f.progress.color)

	last := f.progress.last()
	assert.Equal(t, domain.EventUpdateComplete, last.Kind)
	assert.Equal(t, 2, last.Summary.Total)
	assert.Equal(t, 0, last.Summary.Errors)
	assert.Contains(t, f.progress.kinds(), domain.EventPackageStart)
}

func TestApp_Update_FetchFailure(t *testing.T) {
	f := setup(t)
	proj := f.project()
	boom := errors.New("clone failed")

	f.loader.EXPECT().LoadDir(f.dir).Return(proj, nil)
	f.locks.EXPECT().Read(f.lockPath()).Return(nil, zerr.Wrap(domain.ErrLockNotFound, ""))
	f.selector.EXPECT().Select(gomock.Any(), "", proj).Return(nil, nil)
	f.expectFetch(map[string]error{"a": boom})

	err := f.app.Update(context.Background(), app.UpdateOptions{
		RunOptions:    app.RunOptions{ProjectDir: f.dir},
		SkipPyInstall: true,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrFetchFailed)
	assert.ErrorIs(t, err, boom)

	assert.Contains(t, f.progress.kinds(), domain.EventPackageError)
	last := f.progress.last()
	assert.Equal(t, domain.EventUpdateComplete, last.Kind)
	assert.Equal(t, 1, last.Summary.Errors)
}

func TestApp_Update_CacheSession(t *testing.T) {
	f := setup(t)
	proj := f.project()
	backend := mocks.NewMockCacheBackend(gomock.NewController(t))
	backend.EXPECT().Name().Return("filesystem").AnyTimes()

	f.loader.EXPECT().LoadDir(f.dir).Return(proj, nil)
	f.locks.EXPECT().Read(f.lockPath()).Return(nil, zerr.Wrap(domain.ErrLockNotFound, ""))
	f.selector.EXPECT().Select(gomock.Any(), "filesystem", proj).Return(backend, nil)
	gomock.InOrder(
		backend.EXPECT().Activate(gomock.Any()).Return(nil),
		backend.EXPECT().Deactivate(gomock.Any(), false).Return(nil),
	)
	f.expectFetch(nil)
	f.python.EXPECT().ProcessPkg(gomock.Any()).AnyTimes()
	f.python.EXPECT().Update(gomock.Any(), gomock.Any()).Return(domain.ErrInstallerFailed)

	err := f.app.Update(context.Background(), app.UpdateOptions{
		RunOptions:   app.RunOptions{ProjectDir: f.dir},
		CacheBackend: "filesystem",
	})
	require.ErrorIs(t, err, domain.ErrInstallerFailed)
}

func TestApp_Update_DriftWarnings(t *testing.T) {
	f := setup(t)
	proj := f.project()
	lock := &domain.Lock{Path: f.lockPath(), ChecksumValid: false}
	stop := errors.New("stop")

	f.loader.EXPECT().LoadDir(f.dir).Return(proj, nil)
	f.locks.EXPECT().Read(f.lockPath()).Return(lock, nil)
	f.locks.EXPECT().CheckChanges(lock, gomock.Any()).Return([]domain.LockChange{
		{Name: "a", Field: "branch", Locked: "main", Wanted: "dev"},
		{Name: "b", Field: domain.LockFieldAdded},
	})
	var warnings []string
	f.logger.EXPECT().Warn(gomock.Any()).Do(func(msg string) { warnings = append(warnings, msg) }).Times(3)
	f.selector.EXPECT().Select(gomock.Any(), "", proj).Return(nil, stop)

	err := f.app.Update(context.Background(), app.UpdateOptions{RunOptions: app.RunOptions{ProjectDir: f.dir}})
	require.ErrorIs(t, err, stop)

	require.Len(t, warnings, 3)
	assert.Contains(t, warnings[0], "checksum")
	assert.Contains(t, warnings[1], `branch changed from "main" to "dev"`)
	assert.Contains(t, warnings[2], "package b is not in the lock file")
}

func TestApp_Update_FromLock(t *testing.T) {
	f := setup(t)
	proj := f.project()
	lock := &domain.Lock{Path: f.lockPath(), ChecksumValid: true}
	pinned := domain.NewPackagesInfo("lock")
	pinned.Add(&domain.Package{
		Name: "a", Src: domain.SrcGit,
		Source: &domain.GitSource{URL: "https://example.com/a.git", Commit: "abc123"},
	})

	f.loader.EXPECT().LoadDir(f.dir).Return(proj, nil)
	f.locks.EXPECT().Read(f.lockPath()).Return(lock, nil)
	f.locks.EXPECT().Reproduce(lock).Return(pinned, nil)
	f.selector.EXPECT().Select(gomock.Any(), "", proj).Return(nil, nil)
	f.expectFetch(nil)

	err := f.app.Update(context.Background(), app.UpdateOptions{
		RunOptions:    app.RunOptions{ProjectDir: f.dir},
		FromLock:      true,
		SkipPyInstall: true,
	})
	require.NoError(t, err)
}

func TestApp_Update_DepSetNotFound(t *testing.T) {
	f := setup(t)
	f.loader.EXPECT().LoadDir(f.dir).Return(f.project(), nil)

	err := f.app.Update(context.Background(), app.UpdateOptions{
		RunOptions: app.RunOptions{ProjectDir: f.dir},
		DepSet:     "nope",
	})
	require.ErrorIs(t, err, domain.ErrDepSetNotFound)
}

func TestApp_Update_InvalidJobs(t *testing.T) {
	f := setup(t)
	err := f.app.Update(context.Background(), app.UpdateOptions{RunOptions: app.RunOptions{Jobs: -1}})
	require.ErrorIs(t, err, domain.ErrInvalidJobs)
}

func TestApp_Update_LogEvents(t *testing.T) {
	f := setup(t)
	proj := f.project()

	f.loader.EXPECT().LoadDir(f.dir).Return(proj, nil)
	f.locks.EXPECT().Read(f.lockPath()).Return(nil, zerr.Wrap(domain.ErrLockNotFound, ""))
	f.selector.EXPECT().Select(gomock.Any(), "", proj).Return(nil, nil)
	f.expectFetch(nil)
	f.locks.EXPECT().Write(f.lockPath(), gomock.Any(), gomock.Any()).Return(nil)

	err := f.app.Update(context.Background(), app.UpdateOptions{
		RunOptions:    app.RunOptions{ProjectDir: f.dir},
		SkipPyInstall: true,
		LogEvents:     true,
	})
	require.NoError(t, err)
	assert.Empty(t, f.progress.kinds())
}

func (f *fixture) expectLock(t *testing.T, packages map[string]domain.LockEntry) *domain.Lock {
	t.Helper()
	proj := f.project()
	lock := &domain.Lock{Path: f.lockPath(), Packages: packages, ChecksumValid: true}
	f.loader.EXPECT().LoadDir(f.dir).Return(proj, nil)
	f.locks.EXPECT().Read(f.lockPath()).Return(lock, nil)
	for name := range packages {
		require.NoError(t, os.MkdirAll(domain.DepPath(f.deps, name), domain.DirPerm))
	}
	return lock
}

func TestApp_Sync(t *testing.T) {
	f := setup(t)
	lock := f.expectLock(t, map[string]domain.LockEntry{
		"g":    {Src: domain.SrcGit, Branch: "main"},
		"data": {Src: domain.SrcTgz},
		"np":   {Src: domain.SrcPyPI},
	})
	dir := domain.DepPath(f.deps, "g")

	f.git.EXPECT().Run(gomock.Any(), dir, "rev-parse", "--show-toplevel").Return(dir, nil)
	f.git.EXPECT().Run(gomock.Any(), dir, "symbolic-ref", "--short", "-q", "HEAD").Return("main", nil)
	f.git.EXPECT().Run(gomock.Any(), dir, "rev-parse", "HEAD").Return("old", nil)
	f.git.EXPECT().Run(gomock.Any(), dir, "fetch", "origin").Return("", nil)
	f.git.EXPECT().Run(gomock.Any(), dir, "rev-list", "--count", "HEAD..origin/main").Return("2", nil)
	f.git.EXPECT().Run(gomock.Any(), dir, "rev-list", "--count", "origin/main..HEAD").Return("0", nil)
	f.git.EXPECT().Run(gomock.Any(), dir, "status", "--porcelain", "--untracked-files=no").Return("", nil)
	f.git.EXPECT().Run(gomock.Any(), dir, "merge", "--ff-only", "origin/main").Return("", nil)
	f.git.EXPECT().Run(gomock.Any(), dir, "rev-parse", "HEAD").Return("new", nil)
	f.locks.EXPECT().PatchAfterSync(lock.Path, gomock.Len(2)).Return(nil)

	var seen []string
	var mu sync.Mutex
	results, err := f.app.Sync(context.Background(), app.SyncOptions{
		RunOptions: app.RunOptions{ProjectDir: f.dir},
		OnResult: func(r domain.PkgSyncResult) {
			mu.Lock()
			defer mu.Unlock()
			seen = append(seen, r.Name)
		},
	})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "data", results[0].Name)
	assert.Equal(t, domain.SyncSkipped, results[0].Outcome)
	assert.Equal(t, domain.SyncSynced, results[1].Outcome)
	assert.Equal(t, "new", results[1].NewCommit)
	assert.ElementsMatch(t, []string{"data", "g"}, seen)
}

func TestApp_Sync_ErrorExit(t *testing.T) {
	f := setup(t)
	f.expectLock(t, map[string]domain.LockEntry{"g": {Src: domain.SrcGit}})
	dir := domain.DepPath(f.deps, "g")

	f.git.EXPECT().Run(gomock.Any(), dir, "rev-parse", "--show-toplevel").
		Return("", &domain.GitError{ExitCode: 128, Stderr: "not a git repository"})

	results, err := f.app.Sync(context.Background(), app.SyncOptions{
		RunOptions: app.RunOptions{ProjectDir: f.dir},
		DryRun:     true,
	})
	require.ErrorIs(t, err, domain.ErrSyncFailed)
	require.Len(t, results, 1)
	assert.Equal(t, domain.SyncError, results[0].Outcome)
}

func TestApp_Sync_MissingLock(t *testing.T) {
	f := setup(t)
	f.loader.EXPECT().LoadDir(f.dir).Return(f.project(), nil)
	f.locks.EXPECT().Read(f.lockPath()).Return(nil, zerr.Wrap(domain.ErrLockNotFound, ""))

	_, err := f.app.Sync(context.Background(), app.SyncOptions{RunOptions: app.RunOptions{ProjectDir: f.dir}})
	require.ErrorIs(t, err, domain.ErrLockNotFound)
}

func TestApp_Status(t *testing.T) {
	f := setup(t)
	f.expectLock(t, map[string]domain.LockEntry{"data": {Src: domain.SrcTgz}})

	out, err := f.app.Status(context.Background(), app.StatusOptions{RunOptions: app.RunOptions{ProjectDir: f.dir}})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, domain.VCSNone, out[0].VCS)
	assert.Empty(t, out[0].Error)
}

func TestApp_Clone(t *testing.T) {
	f := setup(t)
	t.Chdir(f.dir)
	stop := errors.New("stop after clone")

	f.git.EXPECT().Run(gomock.Any(), "", "clone", "-b", "dev", "git@github.com:org/proj.git", "proj").Return("", nil)
	f.loader.EXPECT().LoadDir("proj").Return(nil, stop)

	err := f.app.Clone(context.Background(), app.CloneOptions{
		Src:    "https://github.com/org/proj.git",
		Branch: "dev",
	})
	require.ErrorIs(t, err, stop)
}

func TestApp_Clone_Anonymous(t *testing.T) {
	f := setup(t)
	target := filepath.Join(f.dir, "ws")
	cloneErr := &domain.GitError{ExitCode: 128, Stderr: "repository not found"}

	f.git.EXPECT().Run(gomock.Any(), "", "clone", "https://github.com/org/proj.git", target).Return("", cloneErr)

	err := f.app.Clone(context.Background(), app.CloneOptions{
		Src:       "https://github.com/org/proj.git",
		Dir:       target,
		Anonymous: true,
	})
	require.ErrorIs(t, err, domain.ErrCloneFailed)
}

func TestApp_Clone_Exists(t *testing.T) {
	f := setup(t)
	err := f.app.Clone(context.Background(), app.CloneOptions{Src: "https://x/p.git", Dir: f.dir})
	require.ErrorIs(t, err, domain.ErrWorkspaceExists)
}

func TestWorkspaceName(t *testing.T) {
	tests := map[string]string{
		"https://github.com/org/proj.git":  "proj",
		"https://github.com/org/proj/":     "proj",
		"git@github.com:org/tools.git":     "tools",
		"git@github.com:single.git":        "single",
		"file:///srv/repos/local-proj.git": "local-proj",
	}
	for src, want := range tests {
		assert.Equal(t, want, app.WorkspaceName(src), src)
	}
}

func TestApp_Cache(t *testing.T) {
	f := setup(t)
	root := filepath.Join(f.dir, "cache")

	f.admin.EXPECT().Init(root).Return(nil)
	got, err := f.app.CacheInit(root)
	require.NoError(t, err)
	assert.Equal(t, root, got)

	_, err = f.app.CacheInfo("")
	require.ErrorIs(t, err, domain.ErrCacheNotConfigured)

	f.settings.CacheRoot = root
	f.admin.EXPECT().Entries(root).Return([]domain.CacheEntry{
		{Name: "zlib", Version: "1", Size: 10},
		{Name: "gtest", Version: "a", Size: 5},
		{Name: "zlib", Version: "2", Size: 20},
	}, nil)
	report, err := f.app.CacheInfo("")
	require.NoError(t, err)
	assert.Equal(t, []string{"gtest", "zlib"}, report.Packages())
	assert.Len(t, report.Versions("zlib"), 2)
	assert.Equal(t, int64(35), report.TotalSize())

	_, err = f.app.CacheClean("", -1)
	require.ErrorIs(t, err, domain.ErrInvalidAge)

	f.admin.EXPECT().CleanOlderThan(root, 7*24*time.Hour).Return([]domain.CacheEntry{{Name: "zlib", Version: "1"}}, nil)
	removed, err := f.app.CacheClean("", 7)
	require.NoError(t, err)
	require.Len(t, removed, 1)
	assert.True(t, strings.HasPrefix(removed[0].Name, "zlib"))
}
