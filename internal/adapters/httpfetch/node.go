package httpfetch

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/ivpm/internal/adapters/settings"
	"go.trai.ch/ivpm/internal/core/ports"
)

// NodeID is the unique identifier for the downloader Graft node.
const NodeID graft.ID = "adapter.httpfetch"

func init() {
	graft.Register(graft.Node[ports.Downloader]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{settings.NodeID},
		Run: func(ctx context.Context) (ports.Downloader, error) {
			cfg, err := graft.Dep[*settings.Settings](ctx)
			if err != nil {
				return nil, err
			}
			return NewDownloader(cfg.UserAgent()), nil
		},
	})
}
