package logger

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/ivpm/internal/adapters/detector"
	"go.trai.ch/ivpm/internal/core/ports"
)

// NodeID is the unique identifier for the logger Graft node.
const NodeID graft.ID = "adapter.logger"

func init() {
	graft.Register(graft.Node[ports.Logger]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{detector.NodeID},
		Run: func(ctx context.Context) (ports.Logger, error) {
			env, err := graft.Dep[detector.Environment](ctx)
			if err != nil {
				return nil, err
			}
			return newLogger(env.Mode() == detector.ModeInteractive), nil
		},
	})
}
