package pyinstall_test

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/ivpm/internal/adapters/pyinstall"
	"go.trai.ch/ivpm/internal/core/domain"
	"go.trai.ch/ivpm/internal/core/ports"
	"go.trai.ch/ivpm/internal/core/ports/mocks"
	"go.trai.ch/zerr"
	"go.uber.org/mock/gomock"
)

type venvBackend struct {
	*mocks.MockCacheBackend
	*mocks.MockVenvCache
}

type fixture struct {
	depsDir   string
	installer *mocks.MockInstaller
	logger    *mocks.MockLogger
	events    *mocks.MockEventDispatcher
	handler   *pyinstall.Handler
	closure   *domain.PackagesInfo
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	f := &fixture{
		depsDir:   t.TempDir(),
		installer: mocks.NewMockInstaller(ctrl),
		logger:    mocks.NewMockLogger(ctrl),
		events:    mocks.NewMockEventDispatcher(ctrl),
		closure:   domain.NewPackagesInfo(domain.DefaultDepSet),
	}
	f.logger.EXPECT().Debug(gomock.Any()).AnyTimes()
	f.handler = pyinstall.NewHandler(f.installer, f.logger, nil)
	return f
}

func (f *fixture) add(t *testing.T, pkg *domain.Package) {
	t.Helper()
	f.closure.Add(pkg)
	f.handler.ProcessPkg(pkg)
}

func (f *fixture) addSource(t *testing.T, name string, requires ...string) {
	t.Helper()
	dir := filepath.Join(f.depsDir, name)
	require.NoError(t, os.MkdirAll(dir, domain.DirPerm))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pyproject.toml"),
		[]byte("[project]\nname = \""+name+"\"\n"), domain.FilePerm))
	f.add(t, &domain.Package{
		Name: name, Src: domain.SrcDir, Path: dir, Requires: requires,
		Source: &domain.DirSource{URL: "file://" + dir},
	})
}

func (f *fixture) info(cache ports.CacheBackend) *ports.UpdateInfo {
	return &ports.UpdateInfo{
		DepsDir: f.depsDir,
		Cache:   cache,
		Closure: f.closure,
		Events:  f.events,
	}
}

func kind(k domain.EventKind) any {
	return gomock.Cond(func(ev domain.Event) bool { return ev.Kind == k && ev.Name == pyinstall.HandlerName })
}

func TestHandler_Update_InstallsInOrder(t *testing.T) {
	f := newFixture(t)
	f.add(t, &domain.Package{Name: "numpy", Src: domain.SrcPyPI, Source: &domain.PyPISource{Version: ">=1.26"}})
	f.addSource(t, "core")
	f.addSource(t, "plugin", "core")

	venv := domain.PythonDir(f.depsDir)
	file := func(i int) string { return filepath.Join(f.depsDir, pyinstall.FileName(i)) }

	gomock.InOrder(
		f.events.EXPECT().Dispatch(kind(domain.EventVenvStart)),
		f.installer.EXPECT().EnsureEnv(gomock.Any(), venv, false).Return(true, nil),
		f.installer.EXPECT().Install(gomock.Any(), venv, file(1), nil, gomock.Any()).Return(nil),
		f.installer.EXPECT().Install(gomock.Any(), venv, file(2), nil, gomock.Any()).Return(nil),
		f.installer.EXPECT().Install(gomock.Any(), venv, file(3), nil, gomock.Any()).Return(nil),
		f.installer.EXPECT().Installed(gomock.Any(), venv).
			Return(map[string]string{"numpy": "1.26.4", "core": "0.1.0", "plugin": "0.2.0"}, nil),
		f.events.EXPECT().Dispatch(kind(domain.EventVenvComplete)),
	)

	require.NoError(t, f.handler.Update(context.Background(), f.info(nil)))

	data, err := os.ReadFile(file(1))
	require.NoError(t, err)
	assert.Equal(t, "numpy>=1.26\n", string(data))
	data, err = os.ReadFile(file(3))
	require.NoError(t, err)
	assert.Equal(t, "-e "+filepath.ToSlash(filepath.Join(f.depsDir, "plugin"))+"\n", string(data))

	contribution := f.handler.LockContribution()
	assert.Equal(t, map[string]string{"numpy": "1.26.4"}, contribution[pyinstall.LockKey])
	require.Contains(t, contribution, pyinstall.PlanKey)
	py := contribution[pyinstall.PlanKey].(map[string]any)
	assert.Equal(t, []string{"python_pkgs_1.txt", "python_pkgs_2.txt", "python_pkgs_3.txt"}, py["files"])
	assert.Equal(t, []string{"numpy"}, py["registry"])
	assert.Equal(t, []string{}, py["setup"])
	assert.Equal(t, [][]string{{"core"}, {"plugin"}}, py["layers"])
}

func TestHandler_Update_SetupDepsFirst(t *testing.T) {
	f := newFixture(t)
	f.add(t, &domain.Package{Name: "numpy", Src: domain.SrcPyPI, Source: &domain.PyPISource{}})
	f.add(t, &domain.Package{Name: "wheel", Src: domain.SrcPyPI, Source: &domain.PyPISource{}})
	setup := domain.NameSet{}
	setup.Add("wheel")
	f.closure.AddSetupDeps("numpy", setup)

	f.events.EXPECT().Dispatch(gomock.Any()).Times(2)
	f.installer.EXPECT().EnsureEnv(gomock.Any(), gomock.Any(), false).Return(false, nil)
	f.installer.EXPECT().Install(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).Times(2)
	f.installer.EXPECT().Installed(gomock.Any(), gomock.Any()).Return(map[string]string{}, nil)

	require.NoError(t, f.handler.Update(context.Background(), f.info(nil)))

	first, err := os.ReadFile(filepath.Join(f.depsDir, pyinstall.FileName(1)))
	require.NoError(t, err)
	assert.Equal(t, "wheel\n", string(first))
}

func TestHandler_Update_NothingToInstall(t *testing.T) {
	f := newFixture(t)
	f.add(t, &domain.Package{Name: "data", Src: domain.SrcDir, Path: t.TempDir(), Source: &domain.DirSource{}})

	require.NoError(t, f.handler.Update(context.Background(), f.info(nil)))

	_, err := os.Stat(filepath.Join(f.depsDir, pyinstall.FileName(1)))
	assert.True(t, os.IsNotExist(err))
	assert.Equal(t, []string{}, f.handler.LockContribution()[pyinstall.PlanKey].(map[string]any)["files"])
}

func TestHandler_Update_InstallerFailure(t *testing.T) {
	f := newFixture(t)
	f.add(t, &domain.Package{Name: "numpy", Src: domain.SrcPyPI, Source: &domain.PyPISource{}})

	installErr := zerr.Wrap(zerr.New("exit status 1"), domain.ErrInstallerFailed.Error())
	gomock.InOrder(
		f.events.EXPECT().Dispatch(kind(domain.EventVenvStart)),
		f.installer.EXPECT().EnsureEnv(gomock.Any(), gomock.Any(), true).Return(true, nil),
		f.installer.EXPECT().Install(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(installErr),
		f.events.EXPECT().Dispatch(gomock.Cond(func(ev domain.Event) bool {
			return ev.Kind == domain.EventVenvError && strings.Contains(ev.Message, "installer failed")
		})),
	)

	info := f.info(nil)
	info.SystemSitePackages = true
	err := f.handler.Update(context.Background(), info)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "installer failed")
}

func TestHandler_Update_VenvCache(t *testing.T) {
	f := newFixture(t)
	ctrl := gomock.NewController(t)
	backend := venvBackend{mocks.NewMockCacheBackend(ctrl), mocks.NewMockVenvCache(ctrl)}
	f.add(t, &domain.Package{Name: "numpy", Src: domain.SrcPyPI, Source: &domain.PyPISource{}})

	venv := domain.PythonDir(f.depsDir)
	pipEnv := []string{"PIP_CACHE_DIR=/cache/.pip-cache"}

	f.events.EXPECT().Dispatch(gomock.Any()).Times(2)
	backend.MockVenvCache.EXPECT().PipCacheDir().Return("/cache/.pip-cache").AnyTimes()
	gomock.InOrder(
		f.installer.EXPECT().PythonVersion(gomock.Any(), "").Return("3.12", nil),
		backend.MockVenvCache.EXPECT().TryRestoreVenv(gomock.Any(), venv, "3.12", gomock.Any()).Return(false, nil),
		f.installer.EXPECT().EnsureEnv(gomock.Any(), venv, false).Return(true, nil),
		f.installer.EXPECT().Install(gomock.Any(), venv, gomock.Any(), pipEnv, gomock.Any()).Return(nil),
		f.installer.EXPECT().Installed(gomock.Any(), venv).Return(map[string]string{}, nil),
		backend.MockVenvCache.EXPECT().NotifyVenvRebuilt(venv, "3.12", gomock.Len(16)),
	)

	require.NoError(t, f.handler.Update(context.Background(), f.info(backend)))
}

func TestHandler_Update_VenvRestored(t *testing.T) {
	f := newFixture(t)
	ctrl := gomock.NewController(t)
	backend := venvBackend{mocks.NewMockCacheBackend(ctrl), mocks.NewMockVenvCache(ctrl)}
	f.add(t, &domain.Package{Name: "numpy", Src: domain.SrcPyPI, Source: &domain.PyPISource{}})

	f.events.EXPECT().Dispatch(gomock.Any()).Times(2)
	backend.MockVenvCache.EXPECT().PipCacheDir().Return("").AnyTimes()
	f.installer.EXPECT().PythonVersion(gomock.Any(), "").Return("3.12", nil)
	backend.MockVenvCache.EXPECT().TryRestoreVenv(gomock.Any(), gomock.Any(), "3.12", gomock.Any()).Return(true, nil)
	f.installer.EXPECT().EnsureEnv(gomock.Any(), gomock.Any(), false).Return(false, nil)
	f.installer.EXPECT().Install(gomock.Any(), gomock.Any(), gomock.Any(), nil, gomock.Any()).Return(nil)
	f.installer.EXPECT().Installed(gomock.Any(), gomock.Any()).Return(map[string]string{}, nil)

	require.NoError(t, f.handler.Update(context.Background(), f.info(backend)))
}

func TestHandler_Update_RestoreFailureIsNotFatal(t *testing.T) {
	f := newFixture(t)
	ctrl := gomock.NewController(t)
	backend := venvBackend{mocks.NewMockCacheBackend(ctrl), mocks.NewMockVenvCache(ctrl)}
	f.add(t, &domain.Package{Name: "numpy", Src: domain.SrcPyPI, Source: &domain.PyPISource{}})

	f.events.EXPECT().Dispatch(gomock.Any()).Times(2)
	f.logger.EXPECT().Warn(gomock.Any())
	backend.MockVenvCache.EXPECT().PipCacheDir().Return("").AnyTimes()
	f.installer.EXPECT().PythonVersion(gomock.Any(), "").Return("", zerr.New("python3 not found"))
	f.installer.EXPECT().EnsureEnv(gomock.Any(), gomock.Any(), false).Return(true, nil)
	f.installer.EXPECT().Install(gomock.Any(), gomock.Any(), gomock.Any(), nil, gomock.Any()).Return(nil)
	f.installer.EXPECT().Installed(gomock.Any(), gomock.Any()).Return(map[string]string{}, nil)

	require.NoError(t, f.handler.Update(context.Background(), f.info(backend)))
}

func TestHandler_Update_ResolvesRegistryVersions(t *testing.T) {
	f := newFixture(t)
	numpy := &domain.Package{Name: "NumPy", Src: domain.SrcPyPI, Source: &domain.PyPISource{Version: ">=1.26"}}
	typing := &domain.Package{Name: "typing_extensions", Src: domain.SrcPyPI, Source: &domain.PyPISource{}}
	missing := &domain.Package{Name: "gone", Src: domain.SrcPyPI, Source: &domain.PyPISource{}}
	f.add(t, numpy)
	f.add(t, typing)
	f.add(t, missing)
	f.addSource(t, "core")

	f.events.EXPECT().Dispatch(gomock.Any()).Times(2)
	f.installer.EXPECT().EnsureEnv(gomock.Any(), gomock.Any(), false).Return(false, nil)
	f.installer.EXPECT().Install(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).Times(2)
	f.installer.EXPECT().Installed(gomock.Any(), domain.PythonDir(f.depsDir)).Return(map[string]string{
		"numpy":             "1.26.4",
		"typing-extensions": "4.12.2",
		"core":              "0.1.0",
	}, nil)

	require.NoError(t, f.handler.Update(context.Background(), f.info(nil)))

	assert.Equal(t, "1.26.4", numpy.PyPI().ResolvedVersion)
	assert.Equal(t, "4.12.2", typing.PyPI().ResolvedVersion)
	assert.Empty(t, missing.PyPI().ResolvedVersion)
	assert.Equal(t, map[string]string{
		"NumPy":             "1.26.4",
		"typing_extensions": "4.12.2",
	}, f.handler.LockContribution()[pyinstall.LockKey])
}

func TestHandler_Update_ListFailureIsNotFatal(t *testing.T) {
	f := newFixture(t)
	pkg := &domain.Package{Name: "numpy", Src: domain.SrcPyPI, Source: &domain.PyPISource{}}
	f.add(t, pkg)

	f.events.EXPECT().Dispatch(gomock.Any()).Times(2)
	f.logger.EXPECT().Warn(gomock.Any())
	f.installer.EXPECT().EnsureEnv(gomock.Any(), gomock.Any(), false).Return(false, nil)
	f.installer.EXPECT().Install(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
	f.installer.EXPECT().Installed(gomock.Any(), gomock.Any()).Return(nil, zerr.New("exit status 1"))

	require.NoError(t, f.handler.Update(context.Background(), f.info(nil)))
	assert.Empty(t, pkg.PyPI().ResolvedVersion)
	assert.Equal(t, map[string]string{}, f.handler.LockContribution()[pyinstall.LockKey])
}

func TestHandler_OutputWriter(t *testing.T) {
	ctrl := gomock.NewController(t)
	installer := mocks.NewMockInstaller(ctrl)
	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Debug(gomock.Any()).AnyTimes()

	var labels []string
	var buf strings.Builder
	output := func(name string) io.WriteCloser {
		labels = append(labels, name)
		return nopWriteCloser{&buf}
	}
	h := pyinstall.NewHandler(installer, log, output)
	h.ProcessPkg(&domain.Package{Name: "numpy", Src: domain.SrcPyPI, Source: &domain.PyPISource{}})

	installer.EXPECT().EnsureEnv(gomock.Any(), gomock.Any(), false).Return(false, nil)
	installer.EXPECT().Install(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _, _ string, _ []string, out io.Writer) error {
			_, err := out.Write([]byte("Successfully installed numpy\n"))
			return err
		})
	installer.EXPECT().Installed(gomock.Any(), gomock.Any()).Return(map[string]string{}, nil)

	require.NoError(t, h.Update(context.Background(), &ports.UpdateInfo{DepsDir: t.TempDir()}))
	assert.Equal(t, []string{"pip"}, labels)
	assert.Equal(t, "Successfully installed numpy\n", buf.String())
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }
