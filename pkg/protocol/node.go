// Package protocol defines the contracts between the execution coordinator
// and pluggable node executors.
package protocol

import (
	"context"

	"github.com/fluxohq/fluxo/pkg/models"
)

// Node is one unit of work in a workflow graph. Execute receives the
// resolved input for this run and returns a JSON-compatible output map.
// External-call nodes report downstream failures as data on the output
// (so conditional nodes can route around them) and reserve the error
// return for failures that should abort the run.
type Node interface {
	ID() string
	Type() string
	Execute(ctx context.Context, ec models.ExecutionContext, input map[string]any) (map[string]any, error)
}

// Pauser marks node types that suspend the run pending an external event
// (e.g. a form submission) before producing output. On the resume path the
// node is not executed; the submission payload becomes its output.
type Pauser interface {
	PausesExecution() bool
}

// NodeFactory creates node instances and provides metadata about the node type.
type NodeFactory interface {
	// Create creates a new node instance with the given configuration.
	Create(ctx context.Context, id string, config map[string]any) (Node, error)

	// ID returns the unique identifier for this node type.
	ID() string

	// Name returns the human-readable name for this node type.
	Name() string

	// Description returns a description of what this node does.
	Description() string

	// Schema returns the JSON schema for configuring this node.
	Schema() map[string]any
}
