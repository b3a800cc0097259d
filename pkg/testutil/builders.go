// Package testutil provides test data builders and utilities for testing.
package testutil

import (
	"github.com/google/uuid"

	"github.com/fluxohq/fluxo/pkg/models"
)

// CreateTestNode creates a test WorkflowNode with default values that can be
// overridden.
func CreateTestNode(overrides ...func(*models.WorkflowNode)) *models.WorkflowNode {
	node := &models.WorkflowNode{
		ID:     uuid.New().String(),
		Type:   "log",
		Name:   "Test Node",
		Config: map[string]any{"message": "test", "level": "info"},
	}

	for _, override := range overrides {
		override(node)
	}

	return node
}

// WithID sets the node id.
func WithID(id string) func(*models.WorkflowNode) {
	return func(n *models.WorkflowNode) {
		n.ID = id
	}
}

// WithType sets the node type.
func WithType(nodeType string) func(*models.WorkflowNode) {
	return func(n *models.WorkflowNode) {
		n.Type = nodeType
	}
}

// WithName sets the node name.
func WithName(name string) func(*models.WorkflowNode) {
	return func(n *models.WorkflowNode) {
		n.Name = name
	}
}

// WithConfig sets the node configuration.
func WithConfig(config map[string]any) func(*models.WorkflowNode) {
	return func(n *models.WorkflowNode) {
		n.Config = config
	}
}

// WithDisabled marks the node as disabled so the coordinator skips it.
func WithDisabled() func(*models.WorkflowNode) {
	return func(n *models.WorkflowNode) {
		n.Disabled = true
	}
}

// CreateTestEdge creates an edge between two nodes.
func CreateTestEdge(source, target string, overrides ...func(*models.Edge)) *models.Edge {
	edge := &models.Edge{
		ID:     uuid.New().String(),
		Source: source,
		Target: target,
	}

	for _, override := range overrides {
		override(edge)
	}

	return edge
}

// WithTargetHandle routes the edge's output under a named input key.
func WithTargetHandle(handle string) func(*models.Edge) {
	return func(e *models.Edge) {
		e.TargetHandle = handle
	}
}

// CreateTestWorkflow creates an active workflow with the given nodes and
// edges.
func CreateTestWorkflow(nodes []*models.WorkflowNode, edges []*models.Edge, overrides ...func(*models.Workflow)) *models.Workflow {
	wf := &models.Workflow{
		ID:     uuid.New().String(),
		Name:   "Test Workflow",
		Status: models.WorkflowStatusActive,
		Nodes:  nodes,
		Edges:  edges,
	}

	for _, override := range overrides {
		override(wf)
	}

	return wf
}

// WithVariables sets workflow variables.
func WithVariables(vars map[string]any) func(*models.Workflow) {
	return func(w *models.Workflow) {
		w.Variables = vars
	}
}
