package manifest

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/ivpm/internal/adapters/logger"
	"go.trai.ch/ivpm/internal/adapters/source"
	"go.trai.ch/ivpm/internal/core/ports"
)

// NodeID is the unique identifier for the manifest loader Graft node.
const NodeID graft.ID = "adapter.manifest"

func init() {
	graft.Register(graft.Node[ports.ManifestLoader]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID, source.NodeID},
		Run: func(ctx context.Context) (ports.ManifestLoader, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			registry, err := graft.Dep[ports.SourceRegistry](ctx)
			if err != nil {
				return nil, err
			}
			return NewLoader(log, registry), nil
		},
	})
}
