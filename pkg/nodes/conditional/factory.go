package conditional

import (
	"context"

	"github.com/fluxohq/fluxo/pkg/protocol"
)

// ConditionalNodeFactory creates ConditionalNode instances.
type ConditionalNodeFactory struct{}

// Create creates a new ConditionalNode instance.
func (f *ConditionalNodeFactory) Create(_ context.Context, id string, config map[string]any) (protocol.Node, error) {
	return NewConditionalNode(id, config)
}

// ID returns the factory ID.
func (f *ConditionalNodeFactory) ID() string {
	return "conditional"
}

// Name returns the factory name.
func (f *ConditionalNodeFactory) Name() string {
	return "Conditional"
}

// Description returns the factory description.
func (f *ConditionalNodeFactory) Description() string {
	return "Evaluates a boolean expression and annotates the input with the verdict"
}

// Schema returns the JSON schema for conditional node configuration.
func (f *ConditionalNodeFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"condition": map[string]any{
				"type":        "string",
				"description": "Expression evaluated against the node input, trigger data and variables.",
				"examples": []string{
					`input.success`,
					`input.status_code >= 200 && input.status_code < 300`,
					`len(input.items) > 0`,
				},
			},
		},
		"required": []string{"condition"},
	}
}

// NewConditionalNodeFactory creates a new factory instance.
func NewConditionalNodeFactory() protocol.NodeFactory {
	return &ConditionalNodeFactory{}
}
