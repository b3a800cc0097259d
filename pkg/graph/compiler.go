// Package graph compiles a workflow's nodes and edges into a linear,
// dependency-respecting execution order.
package graph

import (
	"github.com/fluxohq/fluxo/pkg/models"
)

// ErrorTriggerNodeType marks nodes that only run when the main order fails.
// They are excluded from the compiled order.
const ErrorTriggerNodeType = "error_trigger"

// Result holds the compiled execution order. ErrorHandlers are invoked by
// the coordinator only on failure. Unscheduled lists nodes that never
// reached zero in-degree (a cyclic subgraph, or an edge from a node outside
// the graph); they are absent from the order, and the coordinator logs them.
type Result struct {
	Order         []*models.WorkflowNode
	ErrorHandlers []*models.WorkflowNode
	Unscheduled   []string
}

// IncomingEdges returns the edges targeting each node id, preserving edge
// order. The coordinator uses this for input resolution.
func IncomingEdges(edges []*models.Edge) map[string][]*models.Edge {
	incoming := make(map[string][]*models.Edge)
	for _, edge := range edges {
		incoming[edge.Target] = append(incoming[edge.Target], edge)
	}

	return incoming
}

// Compile orders nodes with Kahn's algorithm. Ties among simultaneously
// ready nodes are broken by original node-list order, so the result is
// deterministic for a given graph.
func Compile(nodes []*models.WorkflowNode, edges []*models.Edge) Result {
	var result Result

	main := make([]*models.WorkflowNode, 0, len(nodes))

	for _, node := range nodes {
		if node.Type == ErrorTriggerNodeType {
			result.ErrorHandlers = append(result.ErrorHandlers, node)

			continue
		}

		main = append(main, node)
	}

	inMain := make(map[string]bool, len(main))
	for _, node := range main {
		inMain[node.ID] = true
	}

	inDegree := make(map[string]int, len(main))
	successors := make(map[string][]string, len(main))

	for _, edge := range edges {
		// Edges touching error handlers or unknown nodes do not constrain
		// the main order.
		if !inMain[edge.Source] || !inMain[edge.Target] {
			continue
		}

		inDegree[edge.Target]++
		successors[edge.Source] = append(successors[edge.Source], edge.Target)
	}

	queue := make([]*models.WorkflowNode, 0, len(main))
	for _, node := range main {
		if inDegree[node.ID] == 0 {
			queue = append(queue, node)
		}
	}

	byID := make(map[string]*models.WorkflowNode, len(main))
	for _, node := range main {
		byID[node.ID] = node
	}

	scheduled := make(map[string]bool, len(main))

	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]

		result.Order = append(result.Order, node)
		scheduled[node.ID] = true

		// Collect newly ready successors, then append them in node-list
		// order to keep ties deterministic.
		ready := make(map[string]bool)

		for _, successor := range successors[node.ID] {
			inDegree[successor]--
			if inDegree[successor] == 0 {
				ready[successor] = true
			}
		}

		for _, candidate := range main {
			if ready[candidate.ID] {
				queue = append(queue, byID[candidate.ID])
			}
		}
	}

	for _, node := range main {
		if !scheduled[node.ID] {
			result.Unscheduled = append(result.Unscheduled, node.ID)
		}
	}

	return result
}
