package events

import (
	"context"
	"os"

	"github.com/grindlemire/graft"
	"go.trai.ch/ivpm/internal/adapters/detector"
)

// NodeID is the unique identifier for the progress listener Graft node.
const NodeID graft.ID = "adapter.events"

func init() {
	graft.Register(graft.Node[*Linear]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{detector.NodeID},
		Run: func(ctx context.Context) (*Linear, error) {
			env, err := graft.Dep[detector.Environment](ctx)
			if err != nil {
				return nil, err
			}
			return NewLinear(os.Stderr, env.Mode() == detector.ModeInteractive), nil
		},
	})
}
