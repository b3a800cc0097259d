package cmd

import (
	"log/slog"

	"github.com/fluxohq/fluxo/pkg/persistence"
	"github.com/fluxohq/fluxo/pkg/workflow"
)

// NewExecutor builds a coordinator with the default node registry. A
// non-positive storeCapacity keeps the default.
func NewExecutor(p persistence.Persistence, logger *slog.Logger, storeCapacity int) *workflow.Executor {
	var opts []workflow.Option
	if storeCapacity > 0 {
		opts = append(opts, workflow.WithStoreCapacity(storeCapacity))
	}

	return workflow.NewExecutor(p, NewRegistry(logger), logger, opts...)
}
