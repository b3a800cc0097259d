package transform

import (
	"context"

	"github.com/fluxohq/fluxo/pkg/protocol"
)

// TransformNodeFactory creates TransformNode instances.
type TransformNodeFactory struct{}

// Create creates a new TransformNode instance.
func (f *TransformNodeFactory) Create(_ context.Context, id string, config map[string]any) (protocol.Node, error) {
	return NewTransformNode(id, config)
}

// ID returns the factory ID.
func (f *TransformNodeFactory) ID() string {
	return "transform"
}

// Name returns the factory name.
func (f *TransformNodeFactory) Name() string {
	return "Transform"
}

// Description returns the factory description.
func (f *TransformNodeFactory) Description() string {
	return "Transforms the node input with a jq expression"
}

// Schema returns the JSON schema for Transform node configuration.
func (f *TransformNodeFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"expression": map[string]any{
				"type":        "string",
				"description": "jq expression applied to the resolved node input. Template placeholders are resolved first.",
				"examples": []string{
					`{user_id: .user.id, status: "active"}`,
					`.items | length`,
					`.total / .count`,
				},
			},
		},
		"required": []string{"expression"},
	}
}

// NewTransformNodeFactory creates a new factory instance.
func NewTransformNodeFactory() protocol.NodeFactory {
	return &TransformNodeFactory{}
}
