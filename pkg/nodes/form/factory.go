package form

import (
	"context"

	"github.com/fluxohq/fluxo/pkg/protocol"
)

// FormNodeFactory creates FormNode instances.
type FormNodeFactory struct{}

// Create creates a new FormNode instance.
func (f *FormNodeFactory) Create(_ context.Context, id string, config map[string]any) (protocol.Node, error) {
	return NewFormNode(id, config)
}

// ID returns the factory ID.
func (f *FormNodeFactory) ID() string {
	return "form"
}

// Name returns the factory name.
func (f *FormNodeFactory) Name() string {
	return "Form"
}

// Description returns the factory description.
func (f *FormNodeFactory) Description() string {
	return "Pauses the run until a form submission arrives"
}

// Schema returns the JSON schema for form node configuration.
func (f *FormNodeFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"title": map[string]any{
				"type":        "string",
				"description": "Form title shown to the user.",
			},
			"description": map[string]any{
				"type": "string",
			},
			"fields": map[string]any{
				"type":        "array",
				"description": "Field definitions rendered by the form frontend.",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"name":     map[string]any{"type": "string"},
						"label":    map[string]any{"type": "string"},
						"type":     map[string]any{"type": "string"},
						"required": map[string]any{"type": "boolean"},
					},
					"required": []string{"name"},
				},
			},
		},
		"required": []string{"title"},
	}
}

// NewFormNodeFactory creates a new factory instance.
func NewFormNodeFactory() protocol.NodeFactory {
	return &FormNodeFactory{}
}
