package source

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/ivpm/internal/adapters/archive"
	"go.trai.ch/ivpm/internal/adapters/forge"
	"go.trai.ch/ivpm/internal/adapters/git"
	"go.trai.ch/ivpm/internal/adapters/httpfetch"
	"go.trai.ch/ivpm/internal/core/ports"
)

// NodeID is the unique identifier for the source registry Graft node.
const NodeID graft.ID = "adapter.source"

func init() {
	graft.Register(graft.Node[ports.SourceRegistry]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{git.NodeID, httpfetch.NodeID, archive.NodeID, forge.NodeID},
		Run: func(ctx context.Context) (ports.SourceRegistry, error) {
			runner, err := graft.Dep[ports.GitRunner](ctx)
			if err != nil {
				return nil, err
			}
			downloader, err := graft.Dep[ports.Downloader](ctx)
			if err != nil {
				return nil, err
			}
			extractor, err := graft.Dep[ports.Extractor](ctx)
			if err != nil {
				return nil, err
			}
			releases, err := graft.Dep[*forge.Resolver](ctx)
			if err != nil {
				return nil, err
			}
			return NewDefaultRegistry(Deps{
				Git:        runner,
				Downloader: downloader,
				Extractor:  extractor,
				Releases:   releases,
			})
		},
	})
}
