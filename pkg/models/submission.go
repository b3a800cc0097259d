package models

import "time"

// Submission records one resume payload delivered to a waiting execution.
// The idempotency key makes redelivery safe: a key seen before returns the
// original outcome without re-triggering the run.
type Submission struct {
	ID             string         `json:"id"`
	WorkflowID     string         `json:"workflow_id"`
	NodeID         string         `json:"node_id"         validate:"required"`
	ExecutionID    string         `json:"execution_id"    validate:"required"`
	IdempotencyKey string         `json:"idempotency_key" validate:"required"`
	Payload        map[string]any `json:"payload"`
	SubmittedAt    time.Time      `json:"submitted_at"`
}
