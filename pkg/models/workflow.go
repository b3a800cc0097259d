// Package models defines the core domain models for node-based workflow automation.
package models

import "time"

// WorkflowStatus represents the lifecycle state of a workflow.
type WorkflowStatus string

const (
	WorkflowStatusDraft    WorkflowStatus = "draft"    // Editable, not executable
	WorkflowStatusActive   WorkflowStatus = "active"   // Executable
	WorkflowStatusArchived WorkflowStatus = "archived" // Historical, not executable
)

// Workflow represents a node-based workflow graph. The graph is immutable
// input to an execution: the engine only ever reads it.
type Workflow struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"        validate:"required,min=3"`
	Description string          `json:"description"`
	Status      WorkflowStatus  `json:"status"      validate:"required"`
	Nodes       []*WorkflowNode `json:"nodes"`
	Edges       []*Edge         `json:"edges"`
	Variables   map[string]any  `json:"variables,omitempty"`
	Metadata    map[string]any  `json:"metadata,omitempty"`
	Owner       string          `json:"owner"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	DeletedAt   *time.Time      `json:"deleted_at,omitempty"`
}

// NodeByID returns the node with the given id, or nil.
func (w *Workflow) NodeByID(id string) *WorkflowNode {
	for _, node := range w.Nodes {
		if node.ID == id {
			return node
		}
	}

	return nil
}
