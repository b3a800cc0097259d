// Package errortrigger provides the failure-handler entry point. Nodes of
// this type are excluded from the main execution order and invoked only
// when a run fails, receiving a synthetic payload describing the failure.
package errortrigger

import (
	"context"
	"time"

	"github.com/fluxohq/fluxo/pkg/models"
	"github.com/fluxohq/fluxo/pkg/protocol"
)

// ErrorTriggerNode implements the Node interface for failure handling.
type ErrorTriggerNode struct {
	id string
}

// NewErrorTriggerNode creates a new error trigger node.
func NewErrorTriggerNode(id string, _ map[string]any) (*ErrorTriggerNode, error) {
	return &ErrorTriggerNode{id: id}, nil
}

// ID returns the node ID.
func (n *ErrorTriggerNode) ID() string {
	return n.id
}

// Type returns the node type.
func (n *ErrorTriggerNode) Type() string {
	return "error_trigger"
}

// Execute passes the failure payload through, stamped with the handling
// time, so downstream tooling can consume it.
func (n *ErrorTriggerNode) Execute(_ context.Context, _ models.ExecutionContext, input map[string]any) (map[string]any, error) {
	output := make(map[string]any, len(input)+1)
	for key, value := range input {
		output[key] = value
	}

	output["handled_at"] = time.Now().UTC().Format(time.RFC3339)

	return output, nil
}

// ErrorTriggerNodeFactory creates ErrorTriggerNode instances.
type ErrorTriggerNodeFactory struct{}

func (f *ErrorTriggerNodeFactory) Create(_ context.Context, id string, config map[string]any) (protocol.Node, error) {
	return NewErrorTriggerNode(id, config)
}

func (f *ErrorTriggerNodeFactory) ID() string   { return "error_trigger" }
func (f *ErrorTriggerNodeFactory) Name() string { return "Error Trigger" }

func (f *ErrorTriggerNodeFactory) Description() string {
	return "Entry point invoked when a run fails"
}

func (f *ErrorTriggerNodeFactory) Schema() map[string]any {
	return map[string]any{"type": "object"}
}

// NewErrorTriggerNodeFactory creates a new factory instance.
func NewErrorTriggerNodeFactory() protocol.NodeFactory {
	return &ErrorTriggerNodeFactory{}
}
