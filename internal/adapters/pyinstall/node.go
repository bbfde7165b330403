package pyinstall

import (
	"context"
	"io"

	"github.com/grindlemire/graft"
	"go.trai.ch/ivpm/internal/adapters/events"
	"go.trai.ch/ivpm/internal/adapters/logger"
	"go.trai.ch/ivpm/internal/adapters/shell"
	"go.trai.ch/ivpm/internal/core/ports"
)

// NodeID is the unique identifier for the python handler Graft node.
const NodeID graft.ID = "adapter.pyinstall"

func init() {
	graft.Register(graft.Node[*Handler]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{shell.NodeID, logger.NodeID, events.NodeID},
		Run: func(ctx context.Context) (*Handler, error) {
			exec, err := graft.Dep[ports.Executor](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			linear, err := graft.Dep[*events.Linear](ctx)
			if err != nil {
				return nil, err
			}
			output := func(name string) io.WriteCloser { return linear.LineWriter(name) }
			return NewHandler(NewPipInstaller(exec, DefaultPython), log, output), nil
		},
	})
}
