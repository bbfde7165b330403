package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/ivpm/internal/adapters/cache"     //nolint:depguard // Wired in app layer
	"go.trai.ch/ivpm/internal/adapters/detector"  //nolint:depguard // Wired in app layer
	"go.trai.ch/ivpm/internal/adapters/events"    //nolint:depguard // Wired in app layer
	"go.trai.ch/ivpm/internal/adapters/git"       //nolint:depguard // Wired in app layer
	"go.trai.ch/ivpm/internal/adapters/lockfile"  //nolint:depguard // Wired in app layer
	"go.trai.ch/ivpm/internal/adapters/logger"    //nolint:depguard // Wired in app layer
	"go.trai.ch/ivpm/internal/adapters/manifest"  //nolint:depguard // Wired in app layer
	"go.trai.ch/ivpm/internal/adapters/pyinstall" //nolint:depguard // Wired in app layer
	"go.trai.ch/ivpm/internal/adapters/settings"  //nolint:depguard // Wired in app layer
	"go.trai.ch/ivpm/internal/adapters/source"    //nolint:depguard // Wired in app layer
	"go.trai.ch/ivpm/internal/core/ports"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

func init() {
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			manifest.NodeID,
			source.NodeID,
			lockfile.NodeID,
			cache.SelectorNodeID,
			cache.AdminNodeID,
			git.NodeID,
			logger.NodeID,
			events.NodeID,
			pyinstall.NodeID,
			detector.NodeID,
			settings.NodeID,
		},
		Run: runAppNode,
	})

	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
			settings.NodeID,
		},
		Run: runComponentsNode,
	})
}

//nolint:cyclop // one lookup per dependency
func runAppNode(ctx context.Context) (*App, error) {
	var (
		d   Deps
		err error
	)
	if d.Loader, err = graft.Dep[ports.ManifestLoader](ctx); err != nil {
		return nil, err
	}
	if d.Registry, err = graft.Dep[ports.SourceRegistry](ctx); err != nil {
		return nil, err
	}
	if d.Locks, err = graft.Dep[ports.LockStore](ctx); err != nil {
		return nil, err
	}
	if d.Selector, err = graft.Dep[ports.CacheSelector](ctx); err != nil {
		return nil, err
	}
	if d.Admin, err = graft.Dep[ports.CacheAdmin](ctx); err != nil {
		return nil, err
	}
	if d.Git, err = graft.Dep[ports.GitRunner](ctx); err != nil {
		return nil, err
	}
	if d.Logger, err = graft.Dep[ports.Logger](ctx); err != nil {
		return nil, err
	}
	if d.Progress, err = graft.Dep[*events.Linear](ctx); err != nil {
		return nil, err
	}
	if d.Python, err = graft.Dep[*pyinstall.Handler](ctx); err != nil {
		return nil, err
	}
	if d.Env, err = graft.Dep[detector.Environment](ctx); err != nil {
		return nil, err
	}
	if d.Settings, err = graft.Dep[*settings.Settings](ctx); err != nil {
		return nil, err
	}
	return New(d), nil
}

func runComponentsNode(ctx context.Context) (*Components, error) {
	app, err := graft.Dep[*App](ctx)
	if err != nil {
		return nil, err
	}

	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}

	cfg, err := graft.Dep[*settings.Settings](ctx)
	if err != nil {
		return nil, err
	}

	return &Components{
		App:      app,
		Logger:   log,
		Settings: cfg,
	}, nil
}
