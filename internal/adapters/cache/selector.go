package cache

import (
	"context"
	"strings"

	"go.trai.ch/ivpm/internal/adapters/settings"
	"go.trai.ch/ivpm/internal/core/domain"
	"go.trai.ch/ivpm/internal/core/ports"
	"go.trai.ch/zerr"
)

// Backend names accepted besides the remote names.
const (
	BackendNone = "none"
	BackendAuto = "auto"
)

// Selector implements ports.CacheSelector.
type Selector struct {
	cfg     *settings.Settings
	logger  ports.Logger
	remotes []ports.RemoteCache
}

// NewSelector creates a Selector. Auto-detection tries remotes in the given
// order before settling on the filesystem backend.
func NewSelector(cfg *settings.Settings, logger ports.Logger, remotes ...ports.RemoteCache) *Selector {
	return &Selector{cfg: cfg, logger: logger, remotes: remotes}
}

// Select implements ports.CacheSelector.
func (s *Selector) Select(_ context.Context, explicit string, proj *domain.ProjInfo) (ports.CacheBackend, error) {
	var projCfg domain.CacheConfig
	if proj != nil {
		projCfg = proj.Cache
	}

	name := BackendAuto
	for _, candidate := range []string{explicit, s.cfg.CacheBackend, projCfg.Backend} {
		if c := strings.ToLower(strings.TrimSpace(candidate)); c != "" {
			name = c
			break
		}
	}

	keys := Keys{Prefix: s.cfg.CachePrefix, OS: s.cfg.RunnerOS}
	if projCfg.Prefix != "" && s.cfg.CachePrefix == settings.DefaultCachePrefix {
		keys.Prefix = projCfg.Prefix
	}

	switch name {
	case BackendNone:
		return nil, nil
	case BackendAuto:
		return s.auto(keys), nil
	case BackendFilesystem:
		l1, err := s.l1()
		if err != nil {
			return nil, err
		}
		return l1, nil
	}

	remote, ok := s.remote(name)
	if !ok {
		return nil, zerr.With(zerr.Wrap(domain.ErrUnknownCacheBackend, ""), "backend", name)
	}
	if !remote.Available() {
		return nil, zerr.With(zerr.Wrap(domain.ErrCacheBackendUnavailable, ""), "backend", name)
	}
	l1, err := s.l1()
	if err != nil {
		return nil, err
	}
	return NewTwoTier(l1, remote, keys, s.logger), nil
}

func (s *Selector) auto(keys Keys) ports.CacheBackend {
	if s.cfg.CacheRoot == "" {
		s.logger.Debug("package cache disabled: " + settings.EnvCache + " is not set")
		return nil
	}
	l1 := NewFilesystem(s.cfg.CacheRoot)
	for _, r := range s.remotes {
		if r.Available() {
			s.logger.Debug("using " + r.Name() + " remote cache")
			return NewTwoTier(l1, r, keys, s.logger)
		}
	}
	return l1
}

func (s *Selector) l1() (*Filesystem, error) {
	if s.cfg.CacheRoot == "" {
		return nil, zerr.With(zerr.Wrap(domain.ErrCacheNotConfigured, ""), "env", settings.EnvCache)
	}
	return NewFilesystem(s.cfg.CacheRoot), nil
}

func (s *Selector) remote(name string) (ports.RemoteCache, bool) {
	for _, r := range s.remotes {
		if r.Name() == name {
			return r, true
		}
	}
	return nil, false
}
