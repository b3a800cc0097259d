package web

import "github.com/fluxohq/fluxo/pkg/models"

// ExecuteRequest starts a new run, or resumes one when execution_id is set.
type ExecuteRequest struct {
	WorkflowID  string         `json:"workflow_id"  validate:"required"`
	ExecutionID string         `json:"execution_id"`
	Input       map[string]any `json:"input"`
}

// SaveWorkflowRequest creates or replaces a workflow.
type SaveWorkflowRequest struct {
	ID          string                 `json:"id"`
	Name        string                 `json:"name"        validate:"required,min=3"`
	Description string                 `json:"description"`
	Status      models.WorkflowStatus  `json:"status"`
	Nodes       []*models.WorkflowNode `json:"nodes"`
	Edges       []*models.Edge         `json:"edges"`
	Variables   map[string]any         `json:"variables"`
	Metadata    map[string]any         `json:"metadata"`
	Owner       string                 `json:"owner"`
}

// SubmitFormRequest resumes a waiting run with the submitted field data.
type SubmitFormRequest struct {
	ExecutionID string         `json:"execution_id" validate:"required"`
	Data        map[string]any `json:"data"`
	Files       []any          `json:"files"`
	Meta        map[string]any `json:"meta"`
}

// NodeTypeInfo describes a registered node type for graph editors.
type NodeTypeInfo struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Schema      map[string]any `json:"schema,omitempty"`
}
