package cache

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/ivpm/internal/adapters/ghacache"
	"go.trai.ch/ivpm/internal/adapters/logger"
	"go.trai.ch/ivpm/internal/adapters/s3cache"
	"go.trai.ch/ivpm/internal/adapters/settings"
	"go.trai.ch/ivpm/internal/core/ports"
)

const (
	// SelectorNodeID is the unique identifier for the backend selector Graft node.
	SelectorNodeID graft.ID = "adapter.cache.selector"
	// AdminNodeID is the unique identifier for the cache admin Graft node.
	AdminNodeID graft.ID = "adapter.cache.admin"
)

func init() {
	graft.Register(graft.Node[ports.CacheSelector]{
		ID:        SelectorNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{settings.NodeID, logger.NodeID, ghacache.NodeID, s3cache.NodeID},
		Run: func(ctx context.Context) (ports.CacheSelector, error) {
			cfg, err := graft.Dep[*settings.Settings](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			gha, err := graft.Dep[*ghacache.Client](ctx)
			if err != nil {
				return nil, err
			}
			s3, err := graft.Dep[*s3cache.Client](ctx)
			if err != nil {
				return nil, err
			}
			return NewSelector(cfg, log, gha, s3), nil
		},
	})

	graft.Register(graft.Node[ports.CacheAdmin]{
		ID:        AdminNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.CacheAdmin, error) {
			return NewAdmin(), nil
		},
	})
}
