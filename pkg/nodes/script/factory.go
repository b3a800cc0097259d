package script

import (
	"context"

	"github.com/fluxohq/fluxo/pkg/protocol"
)

// ScriptNodeFactory creates ScriptNode instances.
type ScriptNodeFactory struct{}

// Create creates a new ScriptNode instance.
func (f *ScriptNodeFactory) Create(_ context.Context, id string, config map[string]any) (protocol.Node, error) {
	return NewScriptNode(id, config)
}

// ID returns the factory ID.
func (f *ScriptNodeFactory) ID() string {
	return "script"
}

// Name returns the factory name.
func (f *ScriptNodeFactory) Name() string {
	return "Script"
}

// Description returns the factory description.
func (f *ScriptNodeFactory) Description() string {
	return "Runs a sandboxed expression against the node input and upstream outputs"
}

// Schema returns the JSON schema for script node configuration.
func (f *ScriptNodeFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"code": map[string]any{
				"type":        "string",
				"description": "Expression to evaluate. The environment contains the node input, trigger data and workflow variables.",
				"examples": []string{
					`input.price * 1.2`,
					`{total: input.a + input.b, currency: "USD"}`,
					`len(input.items) > 0 ? input.items[0] : nil`,
				},
			},
			"timeout_seconds": map[string]any{
				"type":        "number",
				"description": "Wall-clock budget. Clamped to the 30 second ceiling.",
				"default":     5,
			},
		},
		"required": []string{"code"},
	}
}

// NewScriptNodeFactory creates a new factory instance.
func NewScriptNodeFactory() protocol.NodeFactory {
	return &ScriptNodeFactory{}
}
