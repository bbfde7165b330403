package forge

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/ivpm/internal/adapters/settings"
	"go.trai.ch/ivpm/internal/adapters/shell"
	"go.trai.ch/ivpm/internal/core/ports"
)

// NodeID is the unique identifier for the release resolver Graft node.
const NodeID graft.ID = "adapter.forge"

func init() {
	graft.Register(graft.Node[*Resolver]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{settings.NodeID, shell.NodeID},
		Run: func(ctx context.Context) (*Resolver, error) {
			cfg, err := graft.Dep[*settings.Settings](ctx)
			if err != nil {
				return nil, err
			}
			exec, err := graft.Dep[ports.Executor](ctx)
			if err != nil {
				return nil, err
			}
			var client ports.ReleaseClient = NewClient(WithToken(cfg.GitHubToken), WithUserAgent(cfg.UserAgent()))
			return NewResolver(client, DetectPlatform(ctx, exec)), nil
		},
	})
}
