package models

// WorkflowNode represents a typed, configured node instance in a workflow.
// The zero value of Disabled means the node runs, so graphs that never
// mention the flag execute every node.
type WorkflowNode struct {
	ID        string         `json:"id"    validate:"required"`
	Type      string         `json:"type"  validate:"required"`
	Name      string         `json:"name"`
	Config    map[string]any `json:"config"`
	PositionX int            `json:"position_x"`
	PositionY int            `json:"position_y"`
	Disabled  bool           `json:"disabled,omitempty"`
}

// Edge is a directed dependency carrying one node's output to another's
// input. Handles distinguish named ports when a node has more than one.
type Edge struct {
	ID           string `json:"id"`
	Source       string `json:"source" validate:"required"`
	Target       string `json:"target" validate:"required"`
	SourceHandle string `json:"source_handle,omitempty"`
	TargetHandle string `json:"target_handle,omitempty"`
}

// NodeStatus defines the possible states of a node execution.
type NodeStatus string

const (
	NodeStatusRunning NodeStatus = "running"
	NodeStatusSuccess NodeStatus = "success"
	NodeStatusFailed  NodeStatus = "failed"
	NodeStatusSkipped NodeStatus = "skipped"
)
