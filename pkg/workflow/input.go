package workflow

import (
	"fmt"

	"dario.cat/mergo"

	"github.com/fluxohq/fluxo/pkg/models"
	"github.com/fluxohq/fluxo/pkg/protocol"
)

// resolveInput builds a node's input from its incoming edges.
//
// No incoming edges means the node heads the graph and receives the trigger
// input. A single edge passes the upstream output through unchanged. With
// multiple edges the upstream outputs are merged in edge order, later edges
// overriding earlier ones on key conflicts. An edge with a target handle
// routes its upstream output under that key instead of merging at the top
// level.
func (e *Executor) resolveInput(run *runState, node *models.WorkflowNode) (map[string]any, error) {
	edges := run.incoming[node.ID]

	if len(edges) == 0 {
		return run.execution.TriggerInput, nil
	}

	if len(edges) == 1 && edges[0].TargetHandle == "" {
		return e.upstreamOutput(run, edges[0])
	}

	merged := map[string]any{}

	for _, edge := range edges {
		output, err := e.upstreamOutput(run, edge)
		if err != nil {
			return nil, err
		}

		if edge.TargetHandle != "" {
			merged[edge.TargetHandle] = output

			continue
		}

		if err := mergo.Merge(&merged, output, mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("failed to merge input from node %s: %w", edge.Source, err)
		}
	}

	return merged, nil
}

// upstreamOutput fetches one edge's source output from the store. A source
// that exists in the graph but is absent from the store was evicted, which
// is a hard failure; an edge from a node outside the graph falls back to
// the trigger input.
func (e *Executor) upstreamOutput(run *runState, edge *models.Edge) (map[string]any, error) {
	value, ok := run.store.Get(edge.Source)
	if ok {
		return asMap(value), nil
	}

	if run.workflow.NodeByID(edge.Source) != nil {
		return nil, protocol.NewCacheMissError(edge.Source, run.store.Capacity())
	}

	return run.execution.TriggerInput, nil
}

func asMap(value any) map[string]any {
	if m, ok := value.(map[string]any); ok {
		return m
	}

	return map[string]any{"value": value}
}
