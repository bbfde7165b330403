package pyinstall

import (
	"bytes"
	"context"
	"errors"
	"io"
	"maps"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/natefinch/atomic"
	"go.trai.ch/ivpm/internal/adapters/fs"
	"go.trai.ch/ivpm/internal/core/domain"
	"go.trai.ch/ivpm/internal/core/ports"
	"go.trai.ch/zerr"
)

// HandlerName identifies the python handler in events and logs.
const HandlerName = "python"

// Top-level lock file keys this handler contributes. LockKey maps registry
// packages to the version pip resolved; PlanKey records the install plan.
const (
	LockKey = "python_packages"
	PlanKey = "python_requirements"
)

// OutputFunc returns a writer for installer output labelled with name.
type OutputFunc func(name string) io.WriteCloser

// Handler implements ports.PackageHandler for python packages.
type Handler struct {
	installer ports.Installer
	logger    ports.Logger
	output    OutputFunc
	now       func() time.Time

	mu        sync.Mutex
	pkgs      []*domain.Package
	seen      domain.NameSet
	plan      *Plan
	resolved  map[string]string
	pyVersion string
}

// NewHandler creates a Handler. output may be nil to discard installer output.
func NewHandler(installer ports.Installer, logger ports.Logger, output OutputFunc) *Handler {
	return &Handler{
		installer: installer,
		logger:    logger,
		output:    output,
		now:       time.Now,
		seen:      make(domain.NameSet),
	}
}

// Name implements ports.PackageHandler.
func (h *Handler) Name() string {
	return HandlerName
}

// ProcessPkg implements ports.PackageHandler.
func (h *Handler) ProcessPkg(pkg *domain.Package) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.seen.Has(pkg.Name) {
		return
	}
	h.seen.Add(pkg.Name)
	h.pkgs = append(h.pkgs, pkg)
}

// Update implements ports.PackageHandler. It writes the requirements files,
// provisions the environment and runs the installer on every file in order.
func (h *Handler) Update(ctx context.Context, info *ports.UpdateInfo) error {
	h.mu.Lock()
	pkgs := h.pkgs
	h.mu.Unlock()

	setup := make(domain.NameSet)
	if info.Closure != nil {
		setup = info.Closure.AllSetupDeps()
	}
	plan, err := buildPlan(pkgs, setup)
	if err != nil {
		return err
	}
	h.mu.Lock()
	h.plan = plan
	h.mu.Unlock()

	if len(plan.Files) == 0 {
		h.logger.Debug("no python packages to install")
		return nil
	}

	paths, err := writeFiles(info.DepsDir, plan.Files)
	if err != nil {
		return err
	}
	reqHash, err := fs.HashFiles(paths...)
	if err != nil {
		return errors.Join(domain.ErrRequirementsWriteFailed, err)
	}

	start := h.now()
	dispatch(info.Events, domain.Event{Kind: domain.EventVenvStart, Name: HandlerName})
	if err := h.provision(ctx, info, reqHash, paths); err != nil {
		dispatch(info.Events, domain.Event{Kind: domain.EventVenvError, Name: HandlerName, Message: err.Error()})
		return err
	}
	dispatch(info.Events, domain.Event{
		Kind: domain.EventVenvComplete, Name: HandlerName, Duration: h.now().Sub(start),
	})
	return nil
}

func (h *Handler) provision(ctx context.Context, info *ports.UpdateInfo, reqHash string, files []string) error {
	venvDir := domain.PythonDir(info.DepsDir)
	vc, _ := info.Cache.(ports.VenvCache)

	restored := false
	if vc != nil {
		if _, err := os.Stat(venvDir); os.IsNotExist(err) {
			restored = h.tryRestore(ctx, vc, venvDir, reqHash)
		}
	}

	created, err := h.installer.EnsureEnv(ctx, venvDir, info.SystemSitePackages)
	if err != nil {
		return err
	}

	var env []string
	if vc != nil && vc.PipCacheDir() != "" {
		env = append(env, "PIP_CACHE_DIR="+vc.PipCacheDir())
	}

	for _, file := range files {
		out := h.writer(info.SuppressOutput)
		err := h.installer.Install(ctx, venvDir, file, env, out)
		_ = out.Close()
		if err != nil {
			return err
		}
	}

	h.resolve(ctx, venvDir)

	if vc != nil && created && !restored && h.pyVersion != "" {
		vc.NotifyVenvRebuilt(venvDir, h.pyVersion, reqHash)
	}
	return nil
}

// resolve records the installed version of every registry package. A failed
// listing leaves the versions unresolved.
func (h *Handler) resolve(ctx context.Context, venvDir string) {
	installed, err := h.installer.Installed(ctx, venvDir)
	if err != nil {
		h.logger.Warn("cannot list installed python packages: " + err.Error())
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.resolved = make(map[string]string)
	for _, pkg := range h.pkgs {
		src := pkg.PyPI()
		if src == nil {
			continue
		}
		if v, ok := installed[NormalizeName(pkg.Name)]; ok {
			src.ResolvedVersion = v
			h.resolved[pkg.Name] = v
		}
	}
}

// tryRestore asks the backend for a cached environment. Failures are not
// fatal; the environment is rebuilt instead.
func (h *Handler) tryRestore(ctx context.Context, vc ports.VenvCache, venvDir, reqHash string) bool {
	version, err := h.installer.PythonVersion(ctx, "")
	if err != nil {
		h.logger.Warn("cannot determine python version, environment cache disabled: " + err.Error())
		return false
	}
	h.pyVersion = version

	restored, err := vc.TryRestoreVenv(ctx, venvDir, version, reqHash)
	if err != nil {
		h.logger.Warn("python environment restore failed: " + err.Error())
		return false
	}
	if restored {
		h.logger.Debug("restored python environment from cache")
	}
	return restored
}

func (h *Handler) writer(suppress bool) io.WriteCloser {
	if suppress || h.output == nil {
		return nopCloser{io.Discard}
	}
	return h.output("pip")
}

// LockContribution implements ports.PackageHandler.
func (h *Handler) LockContribution() map[string]any {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.plan == nil {
		return nil
	}

	files := make([]string, len(h.plan.Files))
	for i, f := range h.plan.Files {
		files[i] = f.Name
	}
	layers := make([][]string, len(h.plan.Layers))
	copy(layers, h.plan.Layers)

	resolved := make(map[string]string, len(h.resolved))
	maps.Copy(resolved, h.resolved)

	return map[string]any{
		LockKey: resolved,
		PlanKey: map[string]any{
			"files":    files,
			"setup":    nonNil(h.plan.Setup),
			"registry": nonNil(h.plan.Registry),
			"layers":   layers,
			"dists":    h.plan.Dists,
		},
	}
}

func writeFiles(depsDir string, files []RequirementsFile) ([]string, error) {
	if err := os.MkdirAll(depsDir, domain.DirPerm); err != nil {
		return nil, errors.Join(domain.ErrRequirementsWriteFailed, err)
	}
	paths := make([]string, len(files))
	for i, f := range files {
		path := filepath.Join(depsDir, f.Name)
		if err := atomic.WriteFile(path, bytes.NewReader(f.render())); err != nil {
			return nil, zerr.With(errors.Join(domain.ErrRequirementsWriteFailed, err), "path", path)
		}
		paths[i] = path
	}
	return paths, nil
}

func dispatch(d ports.EventDispatcher, ev domain.Event) {
	if d != nil {
		d.Dispatch(ev)
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }
