// Package events defines event types published during workflow execution.
package events

import (
	"time"

	"github.com/fluxohq/fluxo/pkg/models"
)

type EventType string

const Topic = "fluxo.executions"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	ExecutionStartedEvent   EventType = "execution.started"
	ExecutionPausedEvent    EventType = "execution.paused"
	ExecutionResumedEvent   EventType = "execution.resumed"
	ExecutionCompletedEvent EventType = "execution.completed"
	ExecutionFailedEvent    EventType = "execution.failed"
	NodeFinishedEvent       EventType = "node.finished"
	NodeFailedEvent         EventType = "node.failed"
)

type BaseEvent struct {
	ID          string    `json:"id"`
	Type        EventType `json:"type"`
	Timestamp   time.Time `json:"timestamp"`
	WorkflowID  string    `json:"workflow_id"`
	ExecutionID string    `json:"execution_id"`
}

type ExecutionStarted struct {
	BaseEvent

	TriggerInput map[string]any `json:"trigger_input,omitempty"`
	Resumed      bool           `json:"resumed"`
}

func (e ExecutionStarted) GetType() EventType {
	if e.Resumed {
		return ExecutionResumedEvent
	}

	return ExecutionStartedEvent
}

type ExecutionPaused struct {
	BaseEvent

	WaitingForNodeID string `json:"waiting_for_node_id"`
}

func (e ExecutionPaused) GetType() EventType {
	return ExecutionPausedEvent
}

type ExecutionCompleted struct {
	BaseEvent

	Output   any           `json:"output,omitempty"`
	Duration time.Duration `json:"duration"`
}

func (e ExecutionCompleted) GetType() EventType {
	return ExecutionCompletedEvent
}

type ExecutionFailed struct {
	BaseEvent

	FailedNodeID string        `json:"failed_node_id"`
	Error        string        `json:"error"`
	Duration     time.Duration `json:"duration"`
}

func (e ExecutionFailed) GetType() EventType {
	return ExecutionFailedEvent
}

type NodeFinished struct {
	BaseEvent

	NodeID     string            `json:"node_id"`
	NodeType   string            `json:"node_type"`
	Status     models.NodeStatus `json:"status"`
	DurationMs int64             `json:"duration_ms"`
	Error      string            `json:"error,omitempty"`
}

func (e NodeFinished) GetType() EventType {
	if e.Status == models.NodeStatusFailed {
		return NodeFailedEvent
	}

	return NodeFinishedEvent
}
