// Package form provides the human-input pause point for workflow graph
// execution. On first visit the coordinator parks the run as waiting; after
// a submission resumes the run, the node's output is the submitted payload.
package form

import (
	"context"

	"github.com/fluxohq/fluxo/pkg/models"
	"github.com/fluxohq/fluxo/pkg/protocol"
)

// FormNode implements the Node and Pauser interfaces.
type FormNode struct {
	id     string
	title  string
	fields []any
}

// NewFormNode creates a new form node.
func NewFormNode(id string, config map[string]any) (*FormNode, error) {
	title, ok := config["title"].(string)
	if !ok || title == "" {
		return nil, protocol.NewConfigError(id, "title", "missing required field")
	}

	fields, _ := config["fields"].([]any)

	return &FormNode{
		id:     id,
		title:  title,
		fields: fields,
	}, nil
}

// ID returns the node ID.
func (n *FormNode) ID() string {
	return n.id
}

// Type returns the node type.
func (n *FormNode) Type() string {
	return "form"
}

// PausesExecution marks the node as a pause point.
func (n *FormNode) PausesExecution() bool {
	return true
}

// Execute is the resume-path pass-through: the input is the externally
// supplied submission payload, and it becomes the output unchanged.
func (n *FormNode) Execute(_ context.Context, _ models.ExecutionContext, input map[string]any) (map[string]any, error) {
	return input, nil
}

// Title returns the form title presented to the user.
func (n *FormNode) Title() string {
	return n.title
}

// Fields returns the form field definitions.
func (n *FormNode) Fields() []any {
	return n.fields
}
