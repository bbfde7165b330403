package git

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/ivpm/internal/core/ports"
)

// NodeID is the unique identifier for the git runner Graft node.
const NodeID graft.ID = "adapter.git"

func init() {
	graft.Register(graft.Node[ports.GitRunner]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.GitRunner, error) {
			return NewRunner(), nil
		},
	})
}
