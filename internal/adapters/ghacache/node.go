package ghacache

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/ivpm/internal/adapters/settings"
)

// NodeID is the unique identifier for the Actions cache client Graft node.
const NodeID graft.ID = "adapter.ghacache"

func init() {
	graft.Register(graft.Node[*Client]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{settings.NodeID},
		Run: func(ctx context.Context) (*Client, error) {
			cfg, err := graft.Dep[*settings.Settings](ctx)
			if err != nil {
				return nil, err
			}
			return NewClient(cfg.ActionsCacheURL, cfg.ActionsRuntimeToken), nil
		},
	})
}
