package lockfile

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/ivpm/internal/adapters/source"
	"go.trai.ch/ivpm/internal/core/ports"
)

// NodeID is the unique identifier for the lock store Graft node.
const NodeID graft.ID = "adapter.lockfile"

func init() {
	graft.Register(graft.Node[ports.LockStore]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{source.NodeID},
		Run: func(ctx context.Context) (ports.LockStore, error) {
			registry, err := graft.Dep[ports.SourceRegistry](ctx)
			if err != nil {
				return nil, err
			}
			return NewStore(registry), nil
		},
	})
}
