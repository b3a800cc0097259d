package models

import "time"

// ExecutionStatus represents the lifecycle state of one workflow run.
// Transitions are monotonic: running -> {waiting, success, failed},
// waiting -> running (via a matching resume), success/failed terminal.
type ExecutionStatus string

const (
	ExecutionStatusRunning ExecutionStatus = "running"
	ExecutionStatusWaiting ExecutionStatus = "waiting"
	ExecutionStatusSuccess ExecutionStatus = "success"
	ExecutionStatusFailed  ExecutionStatus = "failed"
)

// Execution tracks one invocation of a workflow graph against a trigger
// input. It is persisted after every node so a restart can recover a
// waiting run.
type Execution struct {
	ID               string              `json:"id"`
	WorkflowID       string              `json:"workflow_id"  validate:"required"`
	Status           ExecutionStatus     `json:"status"`
	TriggerInput     map[string]any      `json:"trigger_input,omitempty"`
	Logs             []ExecutionLogEntry `json:"logs"`
	WaitingForNodeID string              `json:"waiting_for_node_id,omitempty"`
	Output           any                 `json:"output,omitempty"`
	Metadata         map[string]any      `json:"metadata,omitempty"`
	StartedAt        time.Time           `json:"started_at"`
	FinishedAt       *time.Time          `json:"finished_at,omitempty"`
}

// ExecutionLogEntry records one node's execution within a run. Entries are
// append-only; the latest entry per node id is replayed into the output
// store on resume.
type ExecutionLogEntry struct {
	NodeID     string     `json:"node_id"`
	NodeName   string     `json:"node_name"`
	Status     NodeStatus `json:"status"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Input      any        `json:"input,omitempty"`
	Output     any        `json:"output,omitempty"`
	Error      string     `json:"error,omitempty"`
}

// OutputView is the read side of the output store exposed to nodes.
type OutputView interface {
	Get(key string) (any, bool)
}

// ExecutionContext carries per-run state into node executors. Nodes read
// upstream outputs through the view; only the coordinator writes.
type ExecutionContext struct {
	ID           string
	WorkflowID   string
	TriggerInput map[string]any
	Variables    map[string]any
	Outputs      OutputView
}

// TemplateContext builds the lookup map handed to the template resolver
// for the given resolved node input.
func (ec ExecutionContext) TemplateContext(input map[string]any) map[string]any {
	ctx := make(map[string]any, len(input)+4)
	for k, v := range input {
		ctx[k] = v
	}

	// Both dialects in the wild spell the current-input alias differently.
	ctx["input"] = input
	ctx["json"] = input
	ctx["trigger"] = ec.TriggerInput
	ctx["vars"] = ec.Variables
	ctx["execution"] = map[string]any{
		"id":          ec.ID,
		"workflow_id": ec.WorkflowID,
	}

	return ctx
}
